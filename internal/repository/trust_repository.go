package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/BillixOfficial/Billix-sub006/shared/models"
)

// TrustWriteRepository mutates trust status rows. Point awards and counters
// are applied as atomic SQL arithmetic so two concurrent awards for the same
// user serialize at the row instead of racing through read-modify-write.
// Points saturate at zero (GREATEST) and the ban flag is only ever set,
// never cleared.
type TrustWriteRepository struct {
	db *sql.DB
}

func NewTrustWriteRepository(db *sql.DB) *TrustWriteRepository {
	return &TrustWriteRepository{db: db}
}

const trustColumns = `
	user_id, tier, points, successful_swaps, tier_successes, failed_swaps,
	ghosted_swaps, banned, ban_reason, email_verified, phone_verified,
	gov_id_verified, average_rating, rating_count, created_at, updated_at
`

func scanTrust(row interface{ Scan(...any) error }) (*models.TrustStatus, error) {
	var t models.TrustStatus
	err := row.Scan(
		&t.UserID, &t.Tier, &t.Points, &t.SuccessfulSwaps, &t.TierSuccesses,
		&t.FailedSwaps, &t.GhostedSwaps, &t.Banned, &t.BanReason,
		&t.EmailVerified, &t.PhoneVerified, &t.GovIDVerified,
		&t.AverageRating, &t.RatingCount, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// EnsureExists creates the tier-1 trust row for a user if absent.
func (r *TrustWriteRepository) EnsureExists(userID string) error {
	query := `
		INSERT INTO trust_status (user_id, tier, created_at, updated_at)
		VALUES ($1, 1, $2, $2)
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := r.db.Exec(query, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to ensure trust status: %w", err)
	}
	return nil
}

func (r *TrustWriteRepository) Get(userID string) (*models.TrustStatus, error) {
	query := `SELECT ` + trustColumns + ` FROM trust_status WHERE user_id = $1`
	status, err := scanTrust(r.db.QueryRow(query, userID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trust status: %w", err)
	}
	return status, nil
}

// RecordSuccess awards points for a completed swap and bumps the success
// counters.
func (r *TrustWriteRepository) RecordSuccess(userID string, points int) error {
	query := `
		UPDATE trust_status
		SET points = points + $2,
		    successful_swaps = successful_swaps + 1,
		    tier_successes = tier_successes + 1,
		    updated_at = NOW()
		WHERE user_id = $1
	`
	return r.execOne(query, userID, points)
}

// RecordFailure bumps the failure counter; a ghost failure also takes a
// strike and bans at the threshold, irrespective of tier or points. The ban
// decision happens inside the UPDATE so concurrent strikes cannot under-count.
func (r *TrustWriteRepository) RecordFailure(userID string, wasGhost bool, banAtStrikes int, banReason string) error {
	if !wasGhost {
		query := `
			UPDATE trust_status
			SET failed_swaps = failed_swaps + 1, updated_at = NOW()
			WHERE user_id = $1
		`
		return r.execOne(query, userID)
	}
	query := `
		UPDATE trust_status
		SET failed_swaps = failed_swaps + 1,
		    ghosted_swaps = ghosted_swaps + 1,
		    banned = banned OR (ghosted_swaps + 1 >= $2),
		    ban_reason = CASE
		        WHEN NOT banned AND ghosted_swaps + 1 >= $2 THEN $3
		        ELSE ban_reason
		    END,
		    updated_at = NOW()
		WHERE user_id = $1
	`
	return r.execOne(query, userID, banAtStrikes, banReason)
}

// RecordRating applies a star rating: a point delta saturating at zero and
// an incremental-mean update of the rolling average.
func (r *TrustWriteRepository) RecordRating(userID string, stars, pointsDelta int) error {
	query := `
		UPDATE trust_status
		SET points = GREATEST(0, points + $2),
		    average_rating = (average_rating * rating_count + $3) / (rating_count + 1),
		    rating_count = rating_count + 1,
		    updated_at = NOW()
		WHERE user_id = $1
	`
	return r.execOne(query, userID, pointsDelta, stars)
}

// AdvanceTier moves a user up one tier, guarded by the expected current
// tier, and resets the per-tier success counter. A zero-row update means
// the snapshot the graduation check ran against was stale.
func (r *TrustWriteRepository) AdvanceTier(userID string, fromTier int) error {
	query := `
		UPDATE trust_status
		SET tier = tier + 1, tier_successes = 0, updated_at = NOW()
		WHERE user_id = $1 AND tier = $2 AND banned = FALSE
	`
	result, err := r.db.Exec(query, userID, fromTier)
	if err != nil {
		return fmt.Errorf("failed to advance tier: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrStaleStatus
	}
	return nil
}

func (r *TrustWriteRepository) execOne(query string, args ...any) error {
	result, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update trust status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
