package command

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/BillixOfficial/Billix-sub006/internal/clients"
	"github.com/BillixOfficial/Billix-sub006/internal/matching"
	"github.com/BillixOfficial/Billix-sub006/internal/proof"
	"github.com/BillixOfficial/Billix-sub006/internal/repository"
	swaprules "github.com/BillixOfficial/Billix-sub006/internal/swap"
	"github.com/BillixOfficial/Billix-sub006/internal/trust"
	"github.com/BillixOfficial/Billix-sub006/shared/cqrs"
	"github.com/BillixOfficial/Billix-sub006/shared/events"
	"github.com/BillixOfficial/Billix-sub006/shared/models"
	"github.com/BillixOfficial/Billix-sub006/shared/utils"
)

// MaxOpenSwaps caps how many non-terminal swaps a user may be involved in.
const MaxOpenSwaps = 3

// FeeProductID is the in-app purchase product for one side's coordination fee.
const FeeProductID = "swap_fee"

// externalCallTimeout bounds every outbound call made during a transition.
const externalCallTimeout = 15 * time.Second

// Store interfaces are declared here, on the consumer side, so the state
// machine can be exercised against in-memory fakes.

type swapStore interface {
	Create(*models.Swap) error
	GetByID(string) (*models.Swap, error)
	TransitionStatus(swapID, from, to string) error
	SetFeePaid(swapID string, sideA bool, transactionID string) error
	CompleteLeg(swapID string, sideA bool, from, to string, confidence float64, disposition, screenshotRef string, completedAt time.Time) error
	FailWithGhosts(swapID, from, ghostedBy string) error
	ListExpired(time.Time) ([]models.Swap, error)
	HasOpenSwapForBill(userID, billID string) (bool, error)
	CountOpenByUser(string) (int, error)
}

type swapViewCache interface {
	CacheSwapView(ctx context.Context, swap *models.Swap)
	InvalidateSwapView(ctx context.Context, swapID string)
}

type billStore interface {
	GetByID(string) (*models.Bill, error)
}

type scheduleStore interface {
	GetActiveByUserID(string) (*models.PaydaySchedule, error)
}

type trustStore interface {
	EnsureExists(string) error
	Get(string) (*models.TrustStatus, error)
}

type disputeStore interface {
	Create(*models.Dispute) error
}

type eventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// SwapCommandService owns the swap lifecycle. Every transition is guarded by
// the record's current status at the storage layer, so concurrent attempts
// (user calls and the deadline sweep alike) serialize per swap: one wins,
// the rest see a stale-status error and re-fetch.
type SwapCommandService struct {
	swaps     swapStore
	views     swapViewCache
	bills     billStore
	schedules scheduleStore
	trust     trustStore
	disputes  disputeStore
	publisher eventPublisher
	recognize clients.TextRecognizer
	payments  clients.PaymentAuthorizer
	analyzer  *proof.Analyzer

	// now is injected for deterministic tests.
	now func() time.Time
}

func NewSwapCommandService(
	swaps *repository.SwapWriteRepository,
	views *repository.SwapReadRepository,
	bills *repository.BillRepository,
	schedules *repository.ScheduleRepository,
	trustRepo *repository.TrustWriteRepository,
	disputes *repository.DisputeRepository,
	publisher *events.Publisher,
	recognizer clients.TextRecognizer,
	payments clients.PaymentAuthorizer,
) *SwapCommandService {
	return &SwapCommandService{
		swaps:     swaps,
		views:     views,
		bills:     bills,
		schedules: schedules,
		trust:     trustRepo,
		disputes:  disputes,
		publisher: publisher,
		recognize: recognizer,
		payments:  payments,
		analyzer:  proof.NewAnalyzer(),
		now:       time.Now,
	}
}

// CreateSwap opens a swap from a match candidate. The caller becomes side A.
// Every gate (ban, ownership, bill activity, tier limits, per-bill
// uniqueness, open-swap cap) is checked before any write.
func (s *SwapCommandService) CreateSwap(cmd cqrs.CreateSwapCommand) (*models.Swap, error) {
	if err := s.checkNotBanned(cmd.UserID); err != nil {
		return nil, err
	}

	billA, err := s.bills.GetByID(cmd.BillID)
	if err != nil {
		return nil, err
	}
	if billA.UserID != cmd.UserID {
		return nil, ErrForbidden
	}
	billB, err := s.bills.GetByID(cmd.CounterpartBillID)
	if err != nil {
		return nil, err
	}
	if billB.UserID != cmd.CounterpartUserID {
		return nil, ErrForbidden
	}
	if !billA.Active || !billB.Active {
		return nil, ErrInactiveBill
	}

	status, err := s.trust.Get(cmd.UserID)
	if err != nil {
		return nil, err
	}
	tier := trust.TierByOrdinal(status.Tier)
	if billA.Amount > tier.MaxSwapAmount || billB.Amount > tier.MaxSwapAmount {
		return nil, ErrTierAmountLimit
	}
	if !trust.CategoryAllowed(tier, billA.Category) || !trust.CategoryAllowed(tier, billB.Category) {
		return nil, ErrTierCategory
	}

	for _, pair := range [][2]string{{cmd.UserID, cmd.BillID}, {cmd.CounterpartUserID, cmd.CounterpartBillID}} {
		open, err := s.swaps.HasOpenSwapForBill(pair[0], pair[1])
		if err != nil {
			return nil, err
		}
		if open {
			return nil, ErrSwapConflict
		}
	}
	openCount, err := s.swaps.CountOpenByUser(cmd.UserID)
	if err != nil {
		return nil, err
	}
	if openCount >= MaxOpenSwaps {
		return nil, ErrMaxActiveSwaps
	}

	scheduleA, err := s.schedules.GetActiveByUserID(cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: initiator", ErrNoSchedule)
	}
	scheduleB, err := s.schedules.GetActiveByUserID(cmd.CounterpartUserID)
	if err != nil {
		return nil, fmt.Errorf("%w: counterpart", ErrNoSchedule)
	}
	windowStart, deadline := matching.ExecutionWindow(scheduleA.AnchorDays, scheduleB.AnchorDays, s.now())

	now := s.now().UTC()
	swap := &models.Swap{
		ID:          utils.GenerateID("swp"),
		Status:      models.SwapPending,
		UserAID:     cmd.UserID,
		BillAID:     billA.ID,
		AmountA:     billA.Amount,
		UserBID:     cmd.CounterpartUserID,
		BillBID:     billB.ID,
		AmountB:     billB.Amount,
		MatchScore:  cmd.MatchScore,
		WindowStart: windowStart,
		Deadline:    deadline,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.swaps.Create(swap); err != nil {
		return nil, err
	}

	ctx := context.Background()
	s.views.CacheSwapView(ctx, swap)
	if err := s.publisher.Publish(ctx, events.SwapEventsStream, events.SwapCreated, events.SwapCreatedEvent{
		SwapID:  swap.ID,
		UserAID: swap.UserAID,
		UserBID: swap.UserBID,
	}); err != nil {
		log.Printf("Failed to publish swap.created event: %v", err)
	}
	return swap, nil
}

// AcceptSwap is the counterpart confirming the match. Once both parties are
// assigned the swap advances to matched and then automatically on to
// fee_pending. A retry after a partial advance resumes from matched.
func (s *SwapCommandService) AcceptSwap(cmd cqrs.AcceptSwapCommand) (*models.Swap, error) {
	swap, err := s.swaps.GetByID(cmd.SwapID)
	if err != nil {
		return nil, err
	}
	if swap.UserBID != cmd.RequestingUserID {
		return nil, ErrForbidden
	}
	if err := s.checkNotBanned(cmd.RequestingUserID); err != nil {
		return nil, err
	}
	switch swap.Status {
	case models.SwapPending:
		if err := s.swaps.TransitionStatus(swap.ID, models.SwapPending, models.SwapMatched); err != nil {
			return nil, err
		}
	case models.SwapMatched:
		// A previous accept advanced to matched but the fee_pending write
		// failed. Resume from here so the retry can finish the job.
	default:
		return nil, ErrInvalidStatus
	}

	// Both parties are now assigned; fee collection starts immediately.
	if err := s.swaps.TransitionStatus(swap.ID, models.SwapMatched, models.SwapFeePending); err != nil {
		return nil, err
	}
	return s.refresh(swap.ID)
}

// CancelSwap is permitted only pre-fee (pending or matched) and only by the
// initiating party.
func (s *SwapCommandService) CancelSwap(cmd cqrs.CancelSwapCommand) (*models.Swap, error) {
	swap, err := s.swaps.GetByID(cmd.SwapID)
	if err != nil {
		return nil, err
	}
	if swap.UserAID != cmd.RequestingUserID {
		return nil, ErrForbidden
	}
	if swap.Status != models.SwapPending && swap.Status != models.SwapMatched {
		return nil, ErrInvalidStatus
	}

	if err := s.swaps.TransitionStatus(swap.ID, swap.Status, models.SwapCancelled); err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := s.publisher.Publish(ctx, events.SwapEventsStream, events.SwapCancelled, events.SwapCancelledEvent{
		SwapID: swap.ID,
	}); err != nil {
		log.Printf("Failed to publish swap.cancelled event: %v", err)
	}
	return s.refresh(swap.ID)
}

// PayFee authorizes the caller's coordination fee. When the second side
// pays, the swap advances to fee_paid. Re-calling after a successful charge
// is a no-op: the charge is never repeated.
func (s *SwapCommandService) PayFee(ctx context.Context, cmd cqrs.PayFeeCommand) (*models.Swap, error) {
	swap, err := s.swaps.GetByID(cmd.SwapID)
	if err != nil {
		return nil, err
	}
	sideA, err := sideOf(swap, cmd.RequestingUserID)
	if err != nil {
		return nil, err
	}
	if swap.Status != models.SwapFeePending {
		return nil, ErrInvalidStatus
	}

	// An already-paid side skips the charge but still falls through to the
	// fee_paid check: a retry after a failed status write must be able to
	// finish the transition without moving money again.
	alreadyPaid := (sideA && swap.FeeAPaid) || (!sideA && swap.FeeBPaid)
	if !alreadyPaid {
		callCtx, cancel := context.WithTimeout(ctx, externalCallTimeout)
		defer cancel()
		result, err := s.payments.Purchase(callCtx, FeeProductID, cmd.AccountToken)
		if err != nil {
			return nil, fmt.Errorf("fee authorization failed: %w", err)
		}
		if result.Outcome != clients.PurchaseAuthorized {
			return nil, fmt.Errorf("%w: %s", clients.ErrPurchaseNotAuthorized, result.Outcome)
		}

		if err := s.swaps.SetFeePaid(swap.ID, sideA, result.TransactionID); err != nil {
			// The fee was charged. Surface the storage error for explicit
			// caller retry; SetFeePaid is idempotent under the same
			// precondition.
			return nil, err
		}
	}

	updated, err := s.swaps.GetByID(swap.ID)
	if err != nil {
		return nil, err
	}
	if updated.FeeAPaid && updated.FeeBPaid {
		if err := s.swaps.TransitionStatus(swap.ID, models.SwapFeePending, models.SwapFeePaid); err != nil && !errors.Is(err, repository.ErrStaleStatus) {
			return nil, err
		}
	}
	return s.refresh(swap.ID)
}

// SubmitProof runs the caller's screenshot through recognition and analysis,
// completes their leg, and settles the swap when both legs are in: completed
// if both dispositions are auto-verified, disputed otherwise. Re-submission
// for an already-complete leg changes nothing.
func (s *SwapCommandService) SubmitProof(ctx context.Context, cmd cqrs.SubmitProofCommand) (*models.Swap, *proof.Result, error) {
	swap, err := s.swaps.GetByID(cmd.SwapID)
	if err != nil {
		return nil, nil, err
	}
	sideA, err := sideOf(swap, cmd.RequestingUserID)
	if err != nil {
		return nil, nil, err
	}

	// Idempotence: a completed leg never re-triggers analysis or transitions.
	if (sideA && swap.CompletedAAt != nil) || (!sideA && swap.CompletedBAt != nil) {
		return swap, nil, nil
	}

	otherLegStatus := swaprules.LegCompleteStatus(!sideA)
	if swap.Status != models.SwapFeePaid && swap.Status != otherLegStatus {
		return nil, nil, ErrInvalidStatus
	}

	// Side A pays bill B and vice versa; the proof is judged against the
	// counterpart's bill.
	expectedBillID, expectedAmount := swap.BillBID, swap.AmountB
	if !sideA {
		expectedBillID, expectedAmount = swap.BillAID, swap.AmountA
	}
	expectedBill, err := s.bills.GetByID(expectedBillID)
	if err != nil {
		return nil, nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, externalCallTimeout)
	defer cancel()
	lines, err := s.recognize.Recognize(callCtx, cmd.Image)
	if err != nil {
		// Recognition failure degrades to "no text found": the analyzer will
		// reject, routing the leg toward dispute instead of blocking it.
		log.Printf("Recognition failed for swap %s: %v", swap.ID, err)
		lines = nil
	}
	result := s.analyzer.Analyze(lines, expectedAmount, expectedBill.Provider, s.now())

	otherComplete := (sideA && swap.CompletedBAt != nil) || (!sideA && swap.CompletedAAt != nil)
	target := swaprules.LegCompleteStatus(sideA)
	if otherComplete {
		otherDisposition := swap.DispositionB
		if !sideA {
			otherDisposition = swap.DispositionA
		}
		if result.Disposition == proof.DispositionAutoVerified && otherDisposition == proof.DispositionAutoVerified {
			target = models.SwapCompleted
		} else {
			target = models.SwapDisputed
		}
	}

	if err := s.swaps.CompleteLeg(
		swap.ID, sideA, swap.Status, target,
		result.Confidence, result.Disposition, cmd.ScreenshotRef, s.now().UTC(),
	); err != nil {
		return nil, nil, err
	}

	switch target {
	case models.SwapCompleted:
		if err := s.publisher.Publish(ctx, events.SwapEventsStream, events.SwapCompleted, events.SwapCompletedEvent{
			SwapID:  swap.ID,
			UserAID: swap.UserAID,
			UserBID: swap.UserBID,
			OnTime:  !s.now().After(swap.Deadline),
		}); err != nil {
			log.Printf("Failed to publish swap.completed event: %v", err)
		}
	case models.SwapDisputed:
		dispute := &models.Dispute{
			ID:        utils.GenerateID("dsp"),
			SwapID:    swap.ID,
			OpenedBy:  "system",
			Reason:    "payment proof failed verification",
			Status:    models.DisputeOpen,
			CreatedAt: s.now().UTC(),
		}
		if err := s.disputes.Create(dispute); err != nil {
			log.Printf("Failed to open dispute for swap %s: %v", swap.ID, err)
		}
		if err := s.publisher.Publish(ctx, events.SwapEventsStream, events.SwapDisputed, events.SwapDisputedEvent{
			SwapID:    swap.ID,
			DisputeID: dispute.ID,
		}); err != nil {
			log.Printf("Failed to publish swap.disputed event: %v", err)
		}
	}

	updated, err := s.refresh(swap.ID)
	if err != nil {
		return nil, nil, err
	}
	return updated, &result, nil
}

// RateSwap records a 1-5 star rating of the counterpart once the swap is
// terminal. The trust ledger applies it from the event stream, keyed so a
// given rater rates a given swap at most once.
func (s *SwapCommandService) RateSwap(cmd cqrs.RateSwapCommand) error {
	if _, err := trust.RatingDelta(cmd.Stars); err != nil {
		return err
	}
	swap, err := s.swaps.GetByID(cmd.SwapID)
	if err != nil {
		return err
	}
	sideA, err := sideOf(swap, cmd.RequestingUserID)
	if err != nil {
		return err
	}
	if !swaprules.IsTerminal(swap.Status) {
		return ErrInvalidStatus
	}

	rated := swap.UserBID
	if !sideA {
		rated = swap.UserAID
	}
	return s.publisher.Publish(context.Background(), events.SwapEventsStream, events.SwapRated, events.SwapRatedEvent{
		SwapID:      swap.ID,
		RaterUserID: cmd.RequestingUserID,
		RatedUserID: rated,
		Stars:       cmd.Stars,
	})
}

// SweepDeadlines applies deadline-driven transitions to every expired swap:
// ghosting once money has moved, auto-cancel before. It is just another
// guarded-transition caller, so running it concurrently with user calls (or
// with another sweep) is safe: a stale guard means someone else already
// moved the swap, and the entry is skipped.
func (s *SwapCommandService) SweepDeadlines(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.swaps.ListExpired(now)
	if err != nil {
		return 0, err
	}

	swept := 0
	for i := range expired {
		sw := &expired[i]
		switch {
		case swaprules.Ghostable(sw.Status):
			ghosters := swaprules.Ghosters(sw)
			if err := s.swaps.FailWithGhosts(sw.ID, sw.Status, strings.Join(ghosters, ",")); err != nil {
				if errors.Is(err, repository.ErrStaleStatus) {
					continue
				}
				return swept, err
			}
			dispute := &models.Dispute{
				ID:        utils.GenerateID("dsp"),
				SwapID:    sw.ID,
				OpenedBy:  "system",
				Reason:    "execution deadline elapsed after fees were paid",
				Status:    models.DisputeOpen,
				CreatedAt: now.UTC(),
			}
			if err := s.disputes.Create(dispute); err != nil {
				log.Printf("Failed to open dispute for ghosted swap %s: %v", sw.ID, err)
			}
			if err := s.publisher.Publish(ctx, events.SwapEventsStream, events.SwapFailed, events.SwapFailedEvent{
				SwapID:         sw.ID,
				UserAID:        sw.UserAID,
				UserBID:        sw.UserBID,
				GhostedUserIDs: ghosters,
			}); err != nil {
				log.Printf("Failed to publish swap.failed event: %v", err)
			}
			s.views.InvalidateSwapView(ctx, sw.ID)
			swept++

		case swaprules.AutoCancellable(sw.Status):
			if err := s.swaps.TransitionStatus(sw.ID, sw.Status, models.SwapCancelled); err != nil {
				if errors.Is(err, repository.ErrStaleStatus) {
					continue
				}
				return swept, err
			}
			if err := s.publisher.Publish(ctx, events.SwapEventsStream, events.SwapCancelled, events.SwapCancelledEvent{
				SwapID: sw.ID,
			}); err != nil {
				log.Printf("Failed to publish swap.cancelled event: %v", err)
			}
			s.views.InvalidateSwapView(ctx, sw.ID)
			swept++
		}
	}
	return swept, nil
}

// checkNotBanned ensures the user has a trust row and is not banned.
func (s *SwapCommandService) checkNotBanned(userID string) error {
	if err := s.trust.EnsureExists(userID); err != nil {
		return err
	}
	status, err := s.trust.Get(userID)
	if err != nil {
		return err
	}
	if status.Banned {
		return fmt.Errorf("%w: %s", ErrBanned, status.BanReason)
	}
	return nil
}

// refresh re-reads the swap and refreshes its cached view.
func (s *SwapCommandService) refresh(swapID string) (*models.Swap, error) {
	swap, err := s.swaps.GetByID(swapID)
	if err != nil {
		return nil, err
	}
	s.views.CacheSwapView(context.Background(), swap)
	return swap, nil
}

// sideOf maps a user to their side of the swap, or ErrForbidden for anyone
// not involved.
func sideOf(swap *models.Swap, userID string) (bool, error) {
	switch userID {
	case swap.UserAID:
		return true, nil
	case swap.UserBID:
		return false, nil
	default:
		return false, ErrForbidden
	}
}
