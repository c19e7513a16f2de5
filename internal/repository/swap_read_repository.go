package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/BillixOfficial/Billix-sub006/shared/models"
	sharedredis "github.com/BillixOfficial/Billix-sub006/shared/redis"
	goredis "github.com/redis/go-redis/v9"
)

const swapViewKeyPrefix = "swap:view:"

// SwapReadRepository serves swap views, treating Redis as the primary read
// store and falling back to PostgreSQL transparently, warming the cache on
// every cold read.
type SwapReadRepository struct {
	db    *sql.DB
	cache *sharedredis.ViewCache[models.SwapView]
}

func NewSwapReadRepository(db *sql.DB, redisClient *goredis.Client) *SwapReadRepository {
	return &SwapReadRepository{
		db:    db,
		cache: sharedredis.NewViewCache[models.SwapView](redisClient, 0),
	}
}

func swapToView(s *models.Swap) *models.SwapView {
	return &models.SwapView{
		ID:           s.ID,
		Status:       s.Status,
		UserAID:      s.UserAID,
		BillAID:      s.BillAID,
		AmountA:      s.AmountA,
		FeeAPaid:     s.FeeAPaid,
		ConfidenceA:  s.ConfidenceA,
		DispositionA: s.DispositionA,
		CompletedAAt: s.CompletedAAt,
		UserBID:      s.UserBID,
		BillBID:      s.BillBID,
		AmountB:      s.AmountB,
		FeeBPaid:     s.FeeBPaid,
		ConfidenceB:  s.ConfidenceB,
		DispositionB: s.DispositionB,
		CompletedBAt: s.CompletedBAt,
		MatchScore:   s.MatchScore,
		WindowStart:  s.WindowStart,
		Deadline:     s.Deadline,
		GhostedBy:    s.GhostedBy,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// GetByID returns a SwapView, trying Redis first then PostgreSQL.
func (r *SwapReadRepository) GetByID(ctx context.Context, swapID string) (*models.SwapView, error) {
	cacheKey := swapViewKeyPrefix + swapID

	if view, ok := r.cache.Get(ctx, cacheKey); ok {
		return view, nil
	}

	query := `SELECT ` + swapColumns + ` FROM swaps WHERE id = $1`
	swap, err := scanSwap(r.db.QueryRow(query, swapID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get swap: %w", err)
	}

	view := swapToView(swap)
	r.cache.Set(ctx, cacheKey, view)
	return view, nil
}

// ListByUserID returns all swaps involving the user, newest first.
func (r *SwapReadRepository) ListByUserID(ctx context.Context, userID string) ([]models.SwapView, error) {
	query := `
		SELECT ` + swapColumns + `
		FROM swaps
		WHERE user_a_id = $1 OR user_b_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list swaps: %w", err)
	}
	defer rows.Close()

	var views []models.SwapView
	for rows.Next() {
		s, err := scanSwap(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan swap: %w", err)
		}
		views = append(views, *swapToView(s))
	}
	return views, rows.Err()
}

// CacheSwapView stores or refreshes the Redis read model for a swap. Called
// by the command service after every transition to keep the view current.
func (r *SwapReadRepository) CacheSwapView(ctx context.Context, swap *models.Swap) {
	r.cache.Set(ctx, swapViewKeyPrefix+swap.ID, swapToView(swap))
}

// InvalidateSwapView drops the cached view, forcing the next read through
// PostgreSQL.
func (r *SwapReadRepository) InvalidateSwapView(ctx context.Context, swapID string) {
	r.cache.Delete(ctx, swapViewKeyPrefix+swapID)
}
