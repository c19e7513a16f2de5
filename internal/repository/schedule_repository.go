package repository

import (
	"database/sql"
	"fmt"

	"github.com/BillixOfficial/Billix-sub006/shared/models"
	"github.com/lib/pq"
)

// ScheduleRepository persists payday schedules. At most one active schedule
// exists per user; Replace swaps the active row inside a transaction.
type ScheduleRepository struct {
	db *sql.DB
}

func NewScheduleRepository(db *sql.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Replace deactivates the user's current schedule (if any) and inserts the
// new one atomically.
func (r *ScheduleRepository) Replace(schedule *models.PaydaySchedule) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	deactivate := `UPDATE schedules SET active = FALSE, updated_at = NOW() WHERE user_id = $1 AND active = TRUE`
	if _, err := tx.Exec(deactivate, schedule.UserID); err != nil {
		return fmt.Errorf("failed to deactivate previous schedule: %w", err)
	}

	insert := `
		INSERT INTO schedules (id, user_id, type, anchor_days, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := tx.Exec(insert,
		schedule.ID, schedule.UserID, schedule.Type, pq.Array(schedule.AnchorDays),
		schedule.Active, schedule.CreatedAt, schedule.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert schedule: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schedule replace: %w", err)
	}
	return nil
}

// GetActiveByUserID returns the user's active schedule.
func (r *ScheduleRepository) GetActiveByUserID(userID string) (*models.PaydaySchedule, error) {
	query := `
		SELECT id, user_id, type, anchor_days, active, created_at, updated_at
		FROM schedules
		WHERE user_id = $1 AND active = TRUE
	`
	var s models.PaydaySchedule
	var days pq.Int64Array
	err := r.db.QueryRow(query, userID).Scan(
		&s.ID, &s.UserID, &s.Type, &days, &s.Active, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	s.AnchorDays = make([]int, len(days))
	for i, d := range days {
		s.AnchorDays[i] = int(d)
	}
	return &s, nil
}
