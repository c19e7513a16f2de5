package repository

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/BillixOfficial/Billix-sub006/internal/trust"
	"github.com/BillixOfficial/Billix-sub006/shared/models"
	sharedredis "github.com/BillixOfficial/Billix-sub006/shared/redis"
	goredis "github.com/redis/go-redis/v9"
)

const (
	trustViewKeyPrefix      = "trust:view:"
	processedEventKeyPrefix = "processed:evt:"
)

// TrustReadRepository serves trust views from Redis with PostgreSQL
// fallback, and tracks processed swap events so that at-least-once stream
// delivery never double-awards points.
type TrustReadRepository struct {
	db    *sql.DB
	redis *goredis.Client
	cache *sharedredis.ViewCache[models.TrustStatusView]
}

func NewTrustReadRepository(db *sql.DB, redisClient *goredis.Client) *TrustReadRepository {
	return &TrustReadRepository{
		db:    db,
		redis: redisClient,
		cache: sharedredis.NewViewCache[models.TrustStatusView](redisClient, 0),
	}
}

func trustToView(t *models.TrustStatus) *models.TrustStatusView {
	return &models.TrustStatusView{
		UserID:          t.UserID,
		Tier:            t.Tier,
		TierName:        trust.TierByOrdinal(t.Tier).Name,
		Points:          t.Points,
		SuccessfulSwaps: t.SuccessfulSwaps,
		TierSuccesses:   t.TierSuccesses,
		FailedSwaps:     t.FailedSwaps,
		GhostedSwaps:    t.GhostedSwaps,
		Banned:          t.Banned,
		BanReason:       t.BanReason,
		AverageRating:   t.AverageRating,
		RatingCount:     t.RatingCount,
		UpdatedAt:       t.UpdatedAt,
	}
}

// GetByUserID returns a TrustStatusView, trying Redis first then PostgreSQL.
func (r *TrustReadRepository) GetByUserID(ctx context.Context, userID string) (*models.TrustStatusView, error) {
	cacheKey := trustViewKeyPrefix + userID

	if view, ok := r.cache.Get(ctx, cacheKey); ok {
		return view, nil
	}

	query := `SELECT ` + trustColumns + ` FROM trust_status WHERE user_id = $1`
	status, err := scanTrust(r.db.QueryRow(query, userID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	view := trustToView(status)
	r.cache.Set(ctx, cacheKey, view)
	return view, nil
}

// CacheTrustView refreshes the Redis read model after a mutation.
func (r *TrustReadRepository) CacheTrustView(ctx context.Context, status *models.TrustStatus) {
	r.cache.Set(ctx, trustViewKeyPrefix+status.UserID, trustToView(status))
}

// InvalidateTrustView drops the cached view, forcing the next read through
// PostgreSQL.
func (r *TrustReadRepository) InvalidateTrustView(ctx context.Context, userID string) {
	r.cache.Delete(ctx, trustViewKeyPrefix+userID)
}

// IsEventProcessed reports whether a ledger event key has already been
// applied. Guards against duplicate delivery under at-least-once Redis
// Streams semantics.
func (r *TrustReadRepository) IsEventProcessed(ctx context.Context, eventKey string) bool {
	val, err := r.redis.Exists(ctx, processedEventKeyPrefix+eventKey).Result()
	return err == nil && val > 0
}

// MarkEventProcessed records that a ledger event has been applied. The key
// expires after 72 hours, which covers any realistic redelivery window
// from a consumer group.
func (r *TrustReadRepository) MarkEventProcessed(ctx context.Context, eventKey string) {
	key := processedEventKeyPrefix + eventKey
	if err := r.redis.Set(ctx, key, "1", 72*time.Hour).Err(); err != nil {
		log.Printf("Failed to mark event %s as processed: %v", eventKey, err)
	}
}
