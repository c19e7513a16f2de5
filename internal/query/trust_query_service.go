package query

import (
	"context"
	"errors"

	"github.com/BillixOfficial/Billix-sub006/internal/repository"
	"github.com/BillixOfficial/Billix-sub006/internal/trust"
	"github.com/BillixOfficial/Billix-sub006/shared/cqrs"
	"github.com/BillixOfficial/Billix-sub006/shared/models"
)

type TrustQueryService struct {
	readRepo *repository.TrustReadRepository
}

func NewTrustQueryService(readRepo *repository.TrustReadRepository) *TrustQueryService {
	return &TrustQueryService{readRepo: readRepo}
}

// GetTrustStatus returns the caller's trust view. Users who have never
// touched the ledger get a zero-value starter view instead of a 404.
func (s *TrustQueryService) GetTrustStatus(q cqrs.GetTrustStatusQuery) (*models.TrustStatusView, error) {
	ctx := context.Background()
	view, err := s.readRepo.GetByUserID(ctx, q.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		starter := trust.TierByOrdinal(1)
		return &models.TrustStatusView{
			UserID:   q.UserID,
			Tier:     starter.Ordinal,
			TierName: starter.Name,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return view, nil
}
