package query

import (
	"errors"
	"time"

	"github.com/BillixOfficial/Billix-sub006/internal/matching"
	"github.com/BillixOfficial/Billix-sub006/internal/repository"
	"github.com/BillixOfficial/Billix-sub006/internal/trust"
	"github.com/BillixOfficial/Billix-sub006/shared/cqrs"
	"github.com/BillixOfficial/Billix-sub006/shared/models"
)

// DefaultMatchLimit caps how many candidates a search returns when the
// caller doesn't ask for fewer.
const DefaultMatchLimit = 10

// MatchQueryService computes ranked mirror-partner candidates on demand.
// Results are ephemeral: nothing is persisted and two searches over the same
// data return the same ranking.
type MatchQueryService struct {
	billRepo     *repository.BillRepository
	scheduleRepo *repository.ScheduleRepository
	trustRepo    *repository.TrustWriteRepository
	swapRepo     *repository.SwapWriteRepository

	now func() time.Time
}

func NewMatchQueryService(
	billRepo *repository.BillRepository,
	scheduleRepo *repository.ScheduleRepository,
	trustRepo *repository.TrustWriteRepository,
	swapRepo *repository.SwapWriteRepository,
) *MatchQueryService {
	return &MatchQueryService{
		billRepo:     billRepo,
		scheduleRepo: scheduleRepo,
		trustRepo:    trustRepo,
		swapRepo:     swapRepo,
		now:          time.Now,
	}
}

// FindMatches scores every eligible counterpart bill against the caller's
// bill and returns the ranked top candidates. Candidates the caller could
// not actually swap with (banned counterpart, no schedule, bill outside the
// caller's tier privileges, bill locked in an open swap) are filtered before
// ranking, so every returned candidate is immediately actionable.
func (s *MatchQueryService) FindMatches(q cqrs.FindMatchesQuery) ([]models.MatchCandidate, error) {
	ownBill, err := s.billRepo.GetByID(q.BillID)
	if err != nil {
		return nil, err
	}
	if ownBill.UserID != q.UserID {
		return nil, &forbiddenError{}
	}
	ownSchedule, err := s.scheduleRepo.GetActiveByUserID(q.UserID)
	if err != nil {
		return nil, err
	}

	tier := trust.TierByOrdinal(1)
	if status, err := s.trustRepo.Get(q.UserID); err == nil {
		tier = trust.TierByOrdinal(status.Tier)
	}

	candidates, err := s.billRepo.ListActiveCandidates(q.UserID)
	if err != nil {
		return nil, err
	}

	scored := make([]matching.Candidate, 0, len(candidates))
	byBillID := make(map[string]candidateContext, len(candidates))
	for i := range candidates {
		bill := &candidates[i]
		if bill.Amount > tier.MaxSwapAmount || !trust.CategoryAllowed(tier, bill.Category) {
			continue
		}
		if banned, err := s.counterpartBanned(bill.UserID); err != nil {
			return nil, err
		} else if banned {
			continue
		}
		schedule, err := s.scheduleRepo.GetActiveByUserID(bill.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		locked, err := s.swapRepo.HasOpenSwapForBill(bill.UserID, bill.ID)
		if err != nil {
			return nil, err
		}
		if locked {
			continue
		}

		score := matching.Score(matching.Input{
			AmountA:  ownBill.Amount,
			DueDayA:  ownBill.DueDay,
			PaydaysA: ownSchedule.AnchorDays,
			AmountB:  bill.Amount,
			DueDayB:  bill.DueDay,
			PaydaysB: schedule.AnchorDays,
		})
		scored = append(scored, matching.Candidate{ID: bill.ID, Score: score})
		byBillID[bill.ID] = candidateContext{bill: bill, paydays: schedule.AnchorDays}
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultMatchLimit
	}
	ranked := matching.Rank(scored, limit)

	now := s.now()
	results := make([]models.MatchCandidate, 0, len(ranked))
	for _, c := range ranked {
		cc := byBillID[c.ID]
		start, end := matching.ExecutionWindow(ownSchedule.AnchorDays, cc.paydays, now)
		results = append(results, models.MatchCandidate{
			CounterpartUserID: cc.bill.UserID,
			CounterpartBill:   *cc.bill,
			OwnBillID:         ownBill.ID,
			Score:             c.Score,
			WindowStart:       start,
			WindowEnd:         end,
		})
	}
	return results, nil
}

type candidateContext struct {
	bill    *models.Bill
	paydays []int
}

// counterpartBanned treats a missing trust row as an unbanned starter.
func (s *MatchQueryService) counterpartBanned(userID string) (bool, error) {
	status, err := s.trustRepo.Get(userID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return status.Banned, nil
}
