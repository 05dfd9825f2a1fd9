// Package policy answers the bot's three gating questions: is a date a
// workday, is a user an admin, is a user on leave.
package policy

import (
	"context"
	"fmt"
	"time"

	"github.com/teamops/muster-bot/entity"
	"github.com/teamops/muster-bot/repository"
)

type Policy struct {
	holidayRepo *repository.HolidayRepository
	adminRepo   *repository.AdminRepository
	leaveRepo   *repository.LeaveRepository
}

func New(
	holidayRepo *repository.HolidayRepository,
	adminRepo *repository.AdminRepository,
	leaveRepo *repository.LeaveRepository,
) *Policy {
	return &Policy{
		holidayRepo: holidayRepo,
		adminRepo:   adminRepo,
		leaveRepo:   leaveRepo,
	}
}

// IsWorkday reports whether date is a weekday with no registered holiday.
func (p *Policy) IsWorkday(ctx context.Context, date time.Time) (bool, error) {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return false, nil
	}

	isHoliday, err := p.holidayRepo.Exists(ctx, date.Format(entity.DateLayout))
	if err != nil {
		return false, fmt.Errorf("holiday exists: %w", err)
	}

	return !isHoliday, nil
}

func (p *Policy) IsAdmin(ctx context.Context, userID string) (bool, error) {
	isAdmin, err := p.adminRepo.Exists(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("admin exists: %w", err)
	}

	return isAdmin, nil
}

// IsOnLeave reports whether any of the user's leave periods covers date.
// Both the start and the end date count as on leave.
func (p *Policy) IsOnLeave(ctx context.Context, userID string, date time.Time) (bool, error) {
	periods, err := p.leaveRepo.ListByUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("list leave periods: %w", err)
	}

	d := date.Format(entity.DateLayout)
	for _, period := range periods {
		if period.StartDate <= d && d <= period.EndDate {
			return true, nil
		}
	}

	return false, nil
}
