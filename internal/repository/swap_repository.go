package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/BillixOfficial/Billix-sub006/shared/models"
)

// SwapWriteRepository handles all state-mutating operations for swaps
// against the PostgreSQL write store (source of truth).
//
// Every transition method carries the expected current status as a SQL
// precondition (optimistic concurrency): an update matching zero rows means
// another writer got there first, and the caller receives ErrStaleStatus
// instead of a blind overwrite. A transition's full side-effect set (status,
// leg fields, timestamps) is a single UPDATE, so it commits atomically or
// not at all.
type SwapWriteRepository struct {
	db *sql.DB
}

func NewSwapWriteRepository(db *sql.DB) *SwapWriteRepository {
	return &SwapWriteRepository{db: db}
}

const swapColumns = `
	id, status,
	user_a_id, bill_a_id, amount_a, fee_a_paid, fee_a_transaction_id,
	screenshot_a_ref, confidence_a, disposition_a, completed_a_at,
	user_b_id, bill_b_id, amount_b, fee_b_paid, fee_b_transaction_id,
	screenshot_b_ref, confidence_b, disposition_b, completed_b_at,
	match_score, window_start, deadline, ghosted_by, created_at, updated_at
`

func scanSwap(row interface{ Scan(...any) error }) (*models.Swap, error) {
	var s models.Swap
	err := row.Scan(
		&s.ID, &s.Status,
		&s.UserAID, &s.BillAID, &s.AmountA, &s.FeeAPaid, &s.FeeATransactionID,
		&s.ScreenshotARef, &s.ConfidenceA, &s.DispositionA, &s.CompletedAAt,
		&s.UserBID, &s.BillBID, &s.AmountB, &s.FeeBPaid, &s.FeeBTransactionID,
		&s.ScreenshotBRef, &s.ConfidenceB, &s.DispositionB, &s.CompletedBAt,
		&s.MatchScore, &s.WindowStart, &s.Deadline, &s.GhostedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SwapWriteRepository) Create(swap *models.Swap) error {
	query := `
		INSERT INTO swaps (` + swapColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)
	`
	_, err := r.db.Exec(query,
		swap.ID, swap.Status,
		swap.UserAID, swap.BillAID, swap.AmountA, swap.FeeAPaid, swap.FeeATransactionID,
		swap.ScreenshotARef, swap.ConfidenceA, swap.DispositionA, swap.CompletedAAt,
		swap.UserBID, swap.BillBID, swap.AmountB, swap.FeeBPaid, swap.FeeBTransactionID,
		swap.ScreenshotBRef, swap.ConfidenceB, swap.DispositionB, swap.CompletedBAt,
		swap.MatchScore, swap.WindowStart, swap.Deadline, swap.GhostedBy, swap.CreatedAt, swap.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create swap: %w", err)
	}
	return nil
}

func (r *SwapWriteRepository) GetByID(swapID string) (*models.Swap, error) {
	query := `SELECT ` + swapColumns + ` FROM swaps WHERE id = $1`
	swap, err := scanSwap(r.db.QueryRow(query, swapID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get swap: %w", err)
	}
	return swap, nil
}

// TransitionStatus applies a plain status change guarded by the expected
// current status.
func (r *SwapWriteRepository) TransitionStatus(swapID, from, to string) error {
	query := `
		UPDATE swaps
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`
	return r.execGuarded(query, swapID, from, to)
}

// SetFeePaid records one side's coordination fee. Legal only while the swap
// sits at fee_pending and that side's flag is still false, which makes the
// call idempotent against double submissions.
func (r *SwapWriteRepository) SetFeePaid(swapID string, sideA bool, transactionID string) error {
	side := "b"
	if sideA {
		side = "a"
	}
	query := fmt.Sprintf(`
		UPDATE swaps
		SET fee_%s_paid = TRUE, fee_%s_transaction_id = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2 AND fee_%s_paid = FALSE
	`, side, side, side)
	return r.execGuarded(query, swapID, models.SwapFeePending, transactionID)
}

// CompleteLeg records a proof submission for one side and moves the swap to
// toStatus, all in one statement. The completed_at IS NULL guard makes leg
// completion idempotent: a re-submission for a finished leg matches no rows.
func (r *SwapWriteRepository) CompleteLeg(
	swapID string, sideA bool, from, to string,
	confidence float64, disposition, screenshotRef string, completedAt time.Time,
) error {
	side := "b"
	if sideA {
		side = "a"
	}
	query := fmt.Sprintf(`
		UPDATE swaps
		SET status = $3,
		    confidence_%s = $4,
		    disposition_%s = $5,
		    screenshot_%s_ref = $6,
		    completed_%s_at = $7,
		    updated_at = NOW()
		WHERE id = $1 AND status = $2 AND completed_%s_at IS NULL
	`, side, side, side, side, side)
	return r.execGuarded(query, swapID, from, to, confidence, disposition, screenshotRef, completedAt)
}

// FailWithGhosts fails a swap past its deadline and records who ghosted.
func (r *SwapWriteRepository) FailWithGhosts(swapID, from, ghostedBy string) error {
	query := `
		UPDATE swaps
		SET status = $3, ghosted_by = $4, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`
	return r.execGuarded(query, swapID, from, models.SwapFailed, ghostedBy)
}

// ListExpired returns every non-terminal swap whose deadline has elapsed.
// Used by the deadline sweep; the sweep then applies guarded transitions, so
// racing with user-initiated calls is safe.
func (r *SwapWriteRepository) ListExpired(now time.Time) ([]models.Swap, error) {
	query := `
		SELECT ` + swapColumns + `
		FROM swaps
		WHERE status NOT IN ($1, $2, $3, $4) AND deadline < $5
	`
	rows, err := r.db.Query(query,
		models.SwapCompleted, models.SwapFailed, models.SwapCancelled, models.SwapRefunded, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired swaps: %w", err)
	}
	defer rows.Close()

	var swaps []models.Swap
	for rows.Next() {
		s, err := scanSwap(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan swap: %w", err)
		}
		swaps = append(swaps, *s)
	}
	return swaps, rows.Err()
}

// HasOpenSwapForBill reports whether a non-terminal swap already involves
// this (user, bill) pair on either side. At most one may exist at a time.
func (r *SwapWriteRepository) HasOpenSwapForBill(userID, billID string) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM swaps
		WHERE status NOT IN ($1, $2, $3, $4)
		  AND ((user_a_id = $5 AND bill_a_id = $6) OR (user_b_id = $5 AND bill_b_id = $6))
	`
	var count int
	err := r.db.QueryRow(query,
		models.SwapCompleted, models.SwapFailed, models.SwapCancelled, models.SwapRefunded,
		userID, billID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count open swaps: %w", err)
	}
	return count > 0, nil
}

// CountOpenByUser counts a user's non-terminal swaps on either side.
func (r *SwapWriteRepository) CountOpenByUser(userID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM swaps
		WHERE status NOT IN ($1, $2, $3, $4)
		  AND (user_a_id = $5 OR user_b_id = $5)
	`
	var count int
	err := r.db.QueryRow(query,
		models.SwapCompleted, models.SwapFailed, models.SwapCancelled, models.SwapRefunded,
		userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count open swaps: %w", err)
	}
	return count, nil
}

func (r *SwapWriteRepository) execGuarded(query string, args ...any) error {
	result, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update swap: %w", err)
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
