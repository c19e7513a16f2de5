package command

import (
	"time"

	"github.com/BillixOfficial/Billix-sub006/internal/repository"
	"github.com/BillixOfficial/Billix-sub006/shared/cqrs"
	"github.com/BillixOfficial/Billix-sub006/shared/models"
	"github.com/BillixOfficial/Billix-sub006/shared/utils"
)

type billWriteStore interface {
	Create(*models.Bill) error
	GetByID(string) (*models.Bill, error)
	Update(*models.Bill) error
	Deactivate(string) error
}

type billSwapChecker interface {
	HasOpenSwapForBill(userID, billID string) (bool, error)
}

// BillCommandService owns bill writes. Bills are soft-deleted so closed
// swaps keep a valid reference, and a bill sitting in an open swap can be
// neither edited nor deactivated.
type BillCommandService struct {
	bills billWriteStore
	swaps billSwapChecker
	now   func() time.Time
}

func NewBillCommandService(bills *repository.BillRepository, swaps *repository.SwapWriteRepository) *BillCommandService {
	return &BillCommandService{bills: bills, swaps: swaps, now: time.Now}
}

func (s *BillCommandService) CreateBill(cmd cqrs.CreateBillCommand) (*models.Bill, error) {
	now := s.now().UTC()
	bill := &models.Bill{
		ID:        utils.GenerateID("bil"),
		UserID:    cmd.UserID,
		Category:  cmd.Category,
		Provider:  cmd.Provider,
		Amount:    cmd.Amount,
		DueDay:    cmd.DueDay,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.bills.Create(bill); err != nil {
		return nil, err
	}
	return bill, nil
}

func (s *BillCommandService) UpdateBill(cmd cqrs.UpdateBillCommand) (*models.Bill, error) {
	bill, err := s.guardMutable(cmd.BillID, cmd.RequestingUserID)
	if err != nil {
		return nil, err
	}

	bill.Provider = cmd.Provider
	bill.Amount = cmd.Amount
	bill.DueDay = cmd.DueDay
	bill.UpdatedAt = s.now().UTC()
	if err := s.bills.Update(bill); err != nil {
		return nil, err
	}
	return bill, nil
}

func (s *BillCommandService) DeactivateBill(cmd cqrs.DeactivateBillCommand) error {
	if _, err := s.guardMutable(cmd.BillID, cmd.RequestingUserID); err != nil {
		return err
	}
	return s.bills.Deactivate(cmd.BillID)
}

// guardMutable checks ownership and that the bill is not locked by an open
// swap.
func (s *BillCommandService) guardMutable(billID, userID string) (*models.Bill, error) {
	bill, err := s.bills.GetByID(billID)
	if err != nil {
		return nil, err
	}
	if bill.UserID != userID {
		return nil, ErrForbidden
	}
	inSwap, err := s.swaps.HasOpenSwapForBill(userID, billID)
	if err != nil {
		return nil, err
	}
	if inSwap {
		return nil, ErrSwapConflict
	}
	return bill, nil
}
