package repository

import (
	"database/sql"
	"fmt"

	"github.com/BillixOfficial/Billix-sub006/shared/models"
)

// DisputeRepository persists dispute records opened by failed verification
// or by the deadline sweep.
type DisputeRepository struct {
	db *sql.DB
}

func NewDisputeRepository(db *sql.DB) *DisputeRepository {
	return &DisputeRepository{db: db}
}

func (r *DisputeRepository) Create(dispute *models.Dispute) error {
	query := `
		INSERT INTO disputes (id, swap_id, opened_by, reason, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(query,
		dispute.ID, dispute.SwapID, dispute.OpenedBy, dispute.Reason,
		dispute.Status, dispute.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create dispute: %w", err)
	}
	return nil
}

// ListOpenBySwapID returns open disputes for a swap.
func (r *DisputeRepository) ListOpenBySwapID(swapID string) ([]models.Dispute, error) {
	query := `
		SELECT id, swap_id, opened_by, reason, status, created_at
		FROM disputes
		WHERE swap_id = $1 AND status = $2
		ORDER BY created_at
	`
	rows, err := r.db.Query(query, swapID, models.DisputeOpen)
	if err != nil {
		return nil, fmt.Errorf("failed to list disputes: %w", err)
	}
	defer rows.Close()

	var disputes []models.Dispute
	for rows.Next() {
		var d models.Dispute
		if err := rows.Scan(&d.ID, &d.SwapID, &d.OpenedBy, &d.Reason, &d.Status, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dispute: %w", err)
		}
		disputes = append(disputes, d)
	}
	return disputes, rows.Err()
}
