package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/medspa-api/internal/audit"
	domain "github.com/BruksfildServices01/medspa-api/internal/domain/appointment"
	"github.com/BruksfildServices01/medspa-api/internal/models"
	"github.com/BruksfildServices01/medspa-api/internal/policy"
)

type CancelAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	now   func() time.Time
}

func NewCancelAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *CancelAppointment {
	return &CancelAppointment{
		repo:  repo,
		audit: audit,
		now:   time.Now,
	}
}

// Execute cancels on behalf of actor. Clients may cancel only their own
// appointments.
func (uc *CancelAppointment) Execute(
	ctx context.Context,
	actor policy.Actor,
	appointmentID uint,
) (*models.Appointment, error) {

	var ap *models.Appointment
	err := uc.repo.Transaction(ctx, func(tx domain.TxRepository) error {
		current, err := tx.GetAppointmentForUpdate(ctx, appointmentID)
		if err != nil {
			return err
		}
		if err := policy.CanAccessClient(actor, current.ClientID); err != nil {
			return err
		}

		if err := domain.Cancel(current, uc.now()); err != nil {
			return err
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
		UserID:   &actor.UserID,
		Action:   "UPDATE",
		Table:    "appointments",
		RecordID: &ap.ID,
		Data:     map[string]any{"status": ap.Status},
	})

	return ap, nil
}
