package query

import (
	"context"

	"github.com/BillixOfficial/Billix-sub006/internal/repository"
	"github.com/BillixOfficial/Billix-sub006/shared/cqrs"
	"github.com/BillixOfficial/Billix-sub006/shared/models"
)

type SwapQueryService struct {
	readRepo    *repository.SwapReadRepository
	disputeRepo *repository.DisputeRepository
}

func NewSwapQueryService(readRepo *repository.SwapReadRepository, disputeRepo *repository.DisputeRepository) *SwapQueryService {
	return &SwapQueryService{readRepo: readRepo, disputeRepo: disputeRepo}
}

// GetSwap fetches a single swap view. Only the two involved parties may see it.
func (s *SwapQueryService) GetSwap(q cqrs.GetSwapQuery) (*models.SwapView, error) {
	ctx := context.Background()
	view, err := s.readRepo.GetByID(ctx, q.SwapID)
	if err != nil {
		return nil, err
	}
	if view.UserAID != q.RequestingUserID && view.UserBID != q.RequestingUserID {
		return nil, &forbiddenError{}
	}
	return view, nil
}

func (s *SwapQueryService) ListSwaps(q cqrs.ListSwapsQuery) ([]models.SwapView, error) {
	ctx := context.Background()
	return s.readRepo.ListByUserID(ctx, q.UserID)
}

// ListDisputes returns the open disputes on a swap, visible to its two
// parties only.
func (s *SwapQueryService) ListDisputes(q cqrs.ListDisputesQuery) ([]models.Dispute, error) {
	ctx := context.Background()
	view, err := s.readRepo.GetByID(ctx, q.SwapID)
	if err != nil {
		return nil, err
	}
	if view.UserAID != q.RequestingUserID && view.UserBID != q.RequestingUserID {
		return nil, &forbiddenError{}
	}
	return s.disputeRepo.ListOpenBySwapID(q.SwapID)
}
