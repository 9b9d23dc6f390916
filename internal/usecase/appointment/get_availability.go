package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/medspa-api/internal/domain/appointment"
	"github.com/BruksfildServices01/medspa-api/internal/timezone"
)

type AvailabilityInput struct {
	StaffID   uint
	ServiceID uint
	Date      string
}

// GetAvailability lists the free slots of one service length for a staff
// member within business hours.
type GetAvailability struct {
	repo   domain.Repository
	tz     string
	opens  string
	closes string
	now    func() time.Time
}

func NewGetAvailability(repo domain.Repository, tz, opens, closes string) *GetAvailability {
	return &GetAvailability{repo: repo, tz: tz, opens: opens, closes: closes, now: time.Now}
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	in AvailabilityInput,
) ([]domain.TimeSlot, error) {

	svc, err := uc.repo.GetService(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}
	if _, err := uc.repo.GetStaff(ctx, in.StaffID); err != nil {
		return nil, err
	}

	day, _, err := timezone.DayRange(in.Date, uc.tz)
	if err != nil {
		return nil, err
	}
	dayStart, err := timezone.ClockOn(day, uc.opens)
	if err != nil {
		return nil, err
	}
	dayEnd, err := timezone.ClockOn(day, uc.closes)
	if err != nil {
		return nil, err
	}

	staffID := in.StaffID
	booked, _, err := uc.repo.ListAppointments(ctx, domain.ListFilter{
		StaffID: &staffID,
		From:    &dayStart,
		To:      &dayEnd,
	})
	if err != nil {
		return nil, err
	}

	var busy []domain.TimeSlot
	for _, ap := range booked {
		if domain.Status(ap.Status).IsOpen() {
			busy = append(busy, domain.TimeSlot{Start: ap.StartTime, End: ap.EndTime})
		}
	}

	return domain.FreeSlots(dayStart, dayEnd, time.Duration(svc.DurationMin)*time.Minute, busy, uc.now()), nil
}
