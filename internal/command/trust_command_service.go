package command

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/BillixOfficial/Billix-sub006/internal/repository"
	"github.com/BillixOfficial/Billix-sub006/internal/trust"
	"github.com/BillixOfficial/Billix-sub006/shared/cqrs"
	"github.com/BillixOfficial/Billix-sub006/shared/events"
	"github.com/BillixOfficial/Billix-sub006/shared/models"
)

type trustLedgerStore interface {
	EnsureExists(userID string) error
	Get(userID string) (*models.TrustStatus, error)
	RecordSuccess(userID string, points int) error
	RecordFailure(userID string, wasGhost bool, banAtStrikes int, banReason string) error
	RecordRating(userID string, stars, pointsDelta int) error
	AdvanceTier(userID string, fromTier int) error
}

type trustViewCache interface {
	CacheTrustView(ctx context.Context, status *models.TrustStatus)
	InvalidateTrustView(ctx context.Context, userID string)
	IsEventProcessed(ctx context.Context, eventKey string) bool
	MarkEventProcessed(ctx context.Context, eventKey string)
}

// TrustCommandService is the trust ledger's write side. It consumes swap
// lifecycle events from the stream and applies point, counter and ban
// updates; graduation is the one user-initiated operation.
type TrustCommandService struct {
	ledger trustLedgerStore
	views  trustViewCache
}

func NewTrustCommandService(
	ledger *repository.TrustWriteRepository,
	views *repository.TrustReadRepository,
) *TrustCommandService {
	return &TrustCommandService{ledger: ledger, views: views}
}

// HandleSwapEvent applies a swap lifecycle event to the ledger. Redis
// Streams delivery is at-least-once, so each ledger-relevant event is keyed
// and applied exactly once; redeliveries are skipped before any mutation.
func (s *TrustCommandService) HandleSwapEvent(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.SwapCompleted:
		var data events.SwapCompletedEvent
		if err := decodeEventData(event, &data); err != nil {
			return err
		}
		eventKey := fmt.Sprintf("%s:%s", event.Type, data.SwapID)
		if s.views.IsEventProcessed(ctx, eventKey) {
			log.Printf("Event %s already processed, skipping duplicate", eventKey)
			return nil
		}
		points := trust.SuccessDelta(data.OnTime)
		for _, userID := range []string{data.UserAID, data.UserBID} {
			if err := s.applySuccess(ctx, userID, points); err != nil {
				return err
			}
		}
		s.views.MarkEventProcessed(ctx, eventKey)

	case events.SwapFailed:
		var data events.SwapFailedEvent
		if err := decodeEventData(event, &data); err != nil {
			return err
		}
		eventKey := fmt.Sprintf("%s:%s", event.Type, data.SwapID)
		if s.views.IsEventProcessed(ctx, eventKey) {
			log.Printf("Event %s already processed, skipping duplicate", eventKey)
			return nil
		}
		ghosted := make(map[string]bool, len(data.GhostedUserIDs))
		for _, id := range data.GhostedUserIDs {
			ghosted[id] = true
		}
		for _, userID := range []string{data.UserAID, data.UserBID} {
			if err := s.applyFailure(ctx, userID, ghosted[userID]); err != nil {
				return err
			}
		}
		s.views.MarkEventProcessed(ctx, eventKey)

	case events.SwapRated:
		var data events.SwapRatedEvent
		if err := decodeEventData(event, &data); err != nil {
			return err
		}
		// Keyed per (swap, rater): each party rates a swap at most once.
		eventKey := fmt.Sprintf("%s:%s:%s", event.Type, data.SwapID, data.RaterUserID)
		if s.views.IsEventProcessed(ctx, eventKey) {
			log.Printf("Event %s already processed, skipping duplicate", eventKey)
			return nil
		}
		delta, err := trust.RatingDelta(data.Stars)
		if err != nil {
			log.Printf("Dropping swap.rated event with invalid stars %d", data.Stars)
			return nil
		}
		if err := s.ledger.EnsureExists(data.RatedUserID); err != nil {
			return err
		}
		if err := s.ledger.RecordRating(data.RatedUserID, data.Stars, delta); err != nil {
			return err
		}
		s.views.InvalidateTrustView(ctx, data.RatedUserID)
		s.views.MarkEventProcessed(ctx, eventKey)
	}
	return nil
}

// Graduate advances the user one tier if every requirement of the next tier
// is met. It fails closed: the first unmet requirement aborts with its
// reason and nothing changes. The tier advance itself is preconditioned on
// the tier the check ran against, so a concurrent graduation cannot
// double-advance.
func (s *TrustCommandService) Graduate(cmd cqrs.GraduateCommand) (*models.TrustStatus, error) {
	if err := s.ledger.EnsureExists(cmd.UserID); err != nil {
		return nil, err
	}
	status, err := s.ledger.Get(cmd.UserID)
	if err != nil {
		return nil, err
	}
	if status.Banned {
		return nil, fmt.Errorf("%w: %s", ErrBanned, status.BanReason)
	}
	if _, err := trust.CheckGraduation(status); err != nil {
		return nil, err
	}
	if err := s.ledger.AdvanceTier(cmd.UserID, status.Tier); err != nil {
		return nil, err
	}
	// Warm the read model with the advanced status, like the swap side does
	// after a create.
	advanced, err := s.ledger.Get(cmd.UserID)
	if err != nil {
		return nil, err
	}
	s.views.CacheTrustView(context.Background(), advanced)
	return advanced, nil
}

func (s *TrustCommandService) applySuccess(ctx context.Context, userID string, points int) error {
	if err := s.ledger.EnsureExists(userID); err != nil {
		return err
	}
	if err := s.ledger.RecordSuccess(userID, points); err != nil {
		return err
	}
	s.views.InvalidateTrustView(ctx, userID)
	return nil
}

func (s *TrustCommandService) applyFailure(ctx context.Context, userID string, wasGhost bool) error {
	if err := s.ledger.EnsureExists(userID); err != nil {
		return err
	}
	if err := s.ledger.RecordFailure(userID, wasGhost, trust.GhostStrikesForBan, trust.BanReasonGhosting); err != nil {
		return err
	}
	s.views.InvalidateTrustView(ctx, userID)
	return nil
}

// decodeEventData re-marshals the event's loosely-typed Data field into the
// concrete payload type.
func decodeEventData(event events.Event, out any) error {
	dataBytes, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}
	if err := json.Unmarshal(dataBytes, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s event: %w", event.Type, err)
	}
	return nil
}
