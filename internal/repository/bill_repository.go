package repository

import (
	"database/sql"
	"fmt"

	"github.com/BillixOfficial/Billix-sub006/shared/models"
)

// BillRepository handles bill persistence. Bills are soft-deleted: setting
// active = FALSE preserves the integrity of swaps that reference them.
type BillRepository struct {
	db *sql.DB
}

func NewBillRepository(db *sql.DB) *BillRepository {
	return &BillRepository{db: db}
}

const billColumns = `id, user_id, category, provider, amount, due_day, active, created_at, updated_at`

func scanBill(row interface{ Scan(...any) error }) (*models.Bill, error) {
	var b models.Bill
	err := row.Scan(
		&b.ID, &b.UserID, &b.Category, &b.Provider, &b.Amount, &b.DueDay,
		&b.Active, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BillRepository) Create(bill *models.Bill) error {
	query := `
		INSERT INTO bills (` + billColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(query,
		bill.ID, bill.UserID, bill.Category, bill.Provider, bill.Amount,
		bill.DueDay, bill.Active, bill.CreatedAt, bill.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create bill: %w", err)
	}
	return nil
}

func (r *BillRepository) GetByID(billID string) (*models.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE id = $1`
	bill, err := scanBill(r.db.QueryRow(query, billID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return bill, nil
}

func (r *BillRepository) Update(bill *models.Bill) error {
	query := `
		UPDATE bills
		SET provider = $2, amount = $3, due_day = $4, updated_at = $5
		WHERE id = $1 AND active = TRUE
	`
	result, err := r.db.Exec(query, bill.ID, bill.Provider, bill.Amount, bill.DueDay, bill.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
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

// Deactivate soft-deletes a bill. The row stays for swap history.
func (r *BillRepository) Deactivate(billID string) error {
	query := `UPDATE bills SET active = FALSE, updated_at = NOW() WHERE id = $1 AND active = TRUE`
	result, err := r.db.Exec(query, billID)
	if err != nil {
		return fmt.Errorf("failed to deactivate bill: %w", err)
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

func (r *BillRepository) ListByUserID(userID string) ([]models.Bill, error) {
	query := `
		SELECT ` + billColumns + `
		FROM bills
		WHERE user_id = $1 AND active = TRUE
		ORDER BY created_at DESC
	`
	return r.listBills(query, userID)
}

// ListActiveCandidates returns other users' active bills for match scoring.
// Ordered by ID so candidate generation is deterministic for a fixed store.
func (r *BillRepository) ListActiveCandidates(excludeUserID string) ([]models.Bill, error) {
	query := `
		SELECT ` + billColumns + `
		FROM bills
		WHERE user_id != $1 AND active = TRUE
		ORDER BY id
	`
	return r.listBills(query, excludeUserID)
}

func (r *BillRepository) listBills(query string, args ...any) ([]models.Bill, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var bills []models.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, *b)
	}
	return bills, rows.Err()
}
