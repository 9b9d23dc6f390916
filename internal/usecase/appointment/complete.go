package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/medspa-api/internal/audit"
	domain "github.com/BruksfildServices01/medspa-api/internal/domain/appointment"
	"github.com/BruksfildServices01/medspa-api/internal/models"
)

type CompleteAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	now   func() time.Time
}

func NewCompleteAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *CompleteAppointment {
	return &CompleteAppointment{
		repo:  repo,
		audit: audit,
		now:   time.Now,
	}
}

func (uc *CompleteAppointment) Execute(
	ctx context.Context,
	actorID uint,
	appointmentID uint,
) (*models.Appointment, error) {

	var ap *models.Appointment
	err := uc.repo.Transaction(ctx, func(tx domain.TxRepository) error {
		current, err := tx.GetAppointmentForUpdate(ctx, appointmentID)
		if err != nil {
			return err
		}

		if err := domain.Complete(current, uc.now()); err != nil {
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
		UserID:   &actorID,
		Action:   "UPDATE",
		Table:    "appointments",
		RecordID: &ap.ID,
		Data:     map[string]any{"status": ap.Status},
	})

	return ap, nil
}
