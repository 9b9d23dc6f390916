package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/medspa-api/internal/audit"
	domain "github.com/BruksfildServices01/medspa-api/internal/domain/appointment"
	"github.com/BruksfildServices01/medspa-api/internal/models"
)

type UpdateAppointmentInput struct {
	StaffID    *uint
	ServiceID  *uint
	LocationID *uint
	StartTime  *time.Time
	EndTime    *time.Time
	Status     *string
	Notes      *string

	ActorID uint
}

func (in UpdateAppointmentInput) reschedules() bool {
	return in.StaffID != nil || in.ServiceID != nil || in.StartTime != nil || in.EndTime != nil
}

// UpdateAppointment edits and reschedules. A new slot is checked for
// conflicts like a fresh booking.
type UpdateAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	now   func() time.Time
}

func NewUpdateAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *UpdateAppointment {
	return &UpdateAppointment{repo: repo, audit: audit, now: time.Now}
}

func (uc *UpdateAppointment) Execute(
	ctx context.Context,
	id uint,
	in UpdateAppointmentInput,
) (*models.Appointment, error) {

	var next domain.Status
	if in.Status != nil {
		s, err := domain.ParseStatus(*in.Status)
		if err != nil {
			return nil, err
		}
		next = s
	}

	var duration int
	if in.ServiceID != nil {
		svc, err := uc.repo.GetService(ctx, *in.ServiceID)
		if err != nil {
			return nil, err
		}
		duration = svc.DurationMin
	}
	if in.StaffID != nil {
		if _, err := uc.repo.GetStaff(ctx, *in.StaffID); err != nil {
			return nil, err
		}
	}

	var ap *models.Appointment
	err := uc.repo.Transaction(ctx, func(tx domain.TxRepository) error {
		current, err := tx.GetAppointmentForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if in.reschedules() {
			if err := domain.CanReschedule(domain.Status(current.Status)); err != nil {
				return err
			}

			start := current.StartTime
			if in.StartTime != nil {
				start = *in.StartTime
			}

			// keep the current length unless a new service or end is given
			end := in.EndTime
			if end == nil && in.ServiceID == nil {
				e := start.Add(current.EndTime.Sub(current.StartTime))
				end = &e
			}

			slot, err := domain.ResolveSlot(start, end, duration)
			if err != nil {
				return err
			}

			if in.StaffID != nil {
				current.StaffID = *in.StaffID
			}
			if in.ServiceID != nil {
				current.ServiceID = *in.ServiceID
			}
			current.StartTime = slot.Start
			current.EndTime = slot.End

			if err := tx.AssertNoTimeConflict(ctx, current.StaffID, slot.Start, slot.End, current.ID); err != nil {
				return err
			}
		}

		if in.LocationID != nil {
			current.LocationID = in.LocationID
		}
		if in.Notes != nil {
			current.Notes = *in.Notes
		}
		if next != "" {
			if err := domain.Apply(current, next, uc.now()); err != nil {
				return err
			}
		}

		if err := tx.UpdateAppointment(ctx, current); err != nil {
			return err
		}
		ap = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Entry{
		UserID:   &in.ActorID,
		Action:   "UPDATE",
		Table:    "appointments",
		RecordID: &ap.ID,
		Data: map[string]any{
			"staff_id":   ap.StaffID,
			"service_id": ap.ServiceID,
			"start_time": ap.StartTime,
			"end_time":   ap.EndTime,
			"status":     ap.Status,
		},
	})

	return ap, nil
}
