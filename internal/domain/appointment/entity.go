package appointment

import (
	"time"

	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/models"
)

// ===============================
// Domain Actions
// ===============================

func Confirm(ap *models.Appointment) error {
	if err := CanConfirm(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusConfirmed)
	return nil
}

func Cancel(ap *models.Appointment, now time.Time) error {
	if err := CanCancel(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCanceled)
	ap.CanceledAt = &now
	return nil
}

func Complete(ap *models.Appointment, now time.Time) error {
	if err := CanComplete(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCompleted)
	ap.CompletedAt = &now
	return nil
}

func MarkNoShow(ap *models.Appointment) error {
	if err := CanMarkNoShow(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusNoShow)
	return nil
}

// Apply moves ap to next through the matching domain action.
func Apply(ap *models.Appointment, next Status, now time.Time) error {
	switch next {
	case StatusConfirmed:
		return Confirm(ap)
	case StatusCanceled:
		return Cancel(ap, now)
	case StatusCompleted:
		return Complete(ap, now)
	case StatusNoShow:
		return MarkNoShow(ap)
	case Status(ap.Status):
		return nil
	}
	return httperr.ErrBusiness("invalid_state")
}
