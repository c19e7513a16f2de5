package command

import (
	"sort"
	"time"

	"github.com/BillixOfficial/Billix-sub006/internal/repository"
	"github.com/BillixOfficial/Billix-sub006/shared/cqrs"
	"github.com/BillixOfficial/Billix-sub006/shared/models"
	"github.com/BillixOfficial/Billix-sub006/shared/utils"
)

type scheduleWriteStore interface {
	Replace(*models.PaydaySchedule) error
}

// ScheduleCommandService owns payday schedule writes. Setting a schedule
// replaces the previous one; a user has at most one active schedule.
type ScheduleCommandService struct {
	schedules scheduleWriteStore
	now       func() time.Time
}

func NewScheduleCommandService(schedules *repository.ScheduleRepository) *ScheduleCommandService {
	return &ScheduleCommandService{schedules: schedules, now: time.Now}
}

// anchorLimits maps schedule type to the allowed anchor-day count. A weekly
// earner sees up to five paydays land in one month; semi-monthly is exactly
// two, monthly exactly one.
var anchorLimits = map[string]struct{ min, max int }{
	models.ScheduleWeekly:      {4, 5},
	models.ScheduleBiweekly:    {2, 3},
	models.ScheduleSemiMonthly: {2, 2},
	models.ScheduleMonthly:     {1, 1},
}

// SetSchedule validates and stores the schedule. Anchor days are deduplicated
// and sorted so downstream window math sees a canonical form.
func (s *ScheduleCommandService) SetSchedule(cmd cqrs.SetScheduleCommand) (*models.PaydaySchedule, error) {
	days, err := normalizeAnchorDays(cmd.Type, cmd.AnchorDays)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	schedule := &models.PaydaySchedule{
		ID:         utils.GenerateID("sch"),
		UserID:     cmd.UserID,
		Type:       cmd.Type,
		AnchorDays: days,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.schedules.Replace(schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

func normalizeAnchorDays(scheduleType string, raw []int) ([]int, error) {
	limits, ok := anchorLimits[scheduleType]
	if !ok {
		return nil, ErrInvalidSchedule
	}

	seen := make(map[int]bool, len(raw))
	days := make([]int, 0, len(raw))
	for _, d := range raw {
		if d < 1 || d > 31 {
			return nil, ErrInvalidSchedule
		}
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	if len(days) < limits.min || len(days) > limits.max {
		return nil, ErrInvalidSchedule
	}
	sort.Ints(days)
	return days, nil
}
