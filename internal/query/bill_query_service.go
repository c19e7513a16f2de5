package query

import (
	"github.com/BillixOfficial/Billix-sub006/internal/repository"
	"github.com/BillixOfficial/Billix-sub006/shared/cqrs"
	"github.com/BillixOfficial/Billix-sub006/shared/models"
)

type BillQueryService struct {
	billRepo     *repository.BillRepository
	scheduleRepo *repository.ScheduleRepository
}

func NewBillQueryService(billRepo *repository.BillRepository, scheduleRepo *repository.ScheduleRepository) *BillQueryService {
	return &BillQueryService{billRepo: billRepo, scheduleRepo: scheduleRepo}
}

// GetBill fetches a single bill and enforces ownership.
func (s *BillQueryService) GetBill(q cqrs.GetBillQuery) (*models.Bill, error) {
	bill, err := s.billRepo.GetByID(q.BillID)
	if err != nil {
		return nil, err
	}
	if bill.UserID != q.RequestingUserID {
		return nil, &forbiddenError{}
	}
	return bill, nil
}

func (s *BillQueryService) ListBills(q cqrs.ListBillsQuery) ([]models.Bill, error) {
	return s.billRepo.ListByUserID(q.UserID)
}

// GetSchedule returns the caller's active payday schedule.
func (s *BillQueryService) GetSchedule(q cqrs.GetScheduleQuery) (*models.PaydaySchedule, error) {
	return s.scheduleRepo.GetActiveByUserID(q.UserID)
}

// forbiddenError signals that the requesting user does not own the resource.
type forbiddenError struct{}

func (e *forbiddenError) Error() string { return "forbidden" }
