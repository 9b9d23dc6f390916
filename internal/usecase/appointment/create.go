package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/medspa-api/internal/audit"
	domain "github.com/BruksfildServices01/medspa-api/internal/domain/appointment"
	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	ClientID   uint
	StaffID    uint
	ServiceID  uint
	LocationID *uint

	StartTime time.Time
	// EndTime defaults to start plus the service duration.
	EndTime *time.Time
	Notes   string

	ActorID uint
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewCreateAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *CreateAppointment {
	return &CreateAppointment{
		repo:  repo,
		audit: audit,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// 1. References
	// --------------------------------------------------
	ok, err := uc.repo.ClientExists(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, httperr.ErrBusiness("client_not_found")
	}

	svc, err := uc.repo.GetService(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.Active {
		return nil, httperr.ErrBusiness("service_inactive")
	}

	if _, err := uc.repo.GetStaff(ctx, in.StaffID); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 2. Slot
	// --------------------------------------------------
	slot, err := domain.ResolveSlot(in.StartTime, in.EndTime, svc.DurationMin)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 3. Conflict check + insert under the staff lock
	// --------------------------------------------------
	ap := &models.Appointment{
		ClientID:   in.ClientID,
		StaffID:    in.StaffID,
		ServiceID:  in.ServiceID,
		LocationID: in.LocationID,
		StartTime:  slot.Start,
		EndTime:    slot.End,
		Status:     string(domain.InitialStatus()),
		Notes:      in.Notes,
	}

	err = uc.repo.Transaction(ctx, func(tx domain.TxRepository) error {
		if err := tx.AssertNoTimeConflict(ctx, in.StaffID, slot.Start, slot.End, 0); err != nil {
			return err
		}
		return tx.CreateAppointment(ctx, ap)
	})
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 4. Audit
	// --------------------------------------------------
	uc.audit.Dispatch(audit.Entry{
		UserID:   &in.ActorID,
		Action:   "CREATE",
		Table:    "appointments",
		RecordID: &ap.ID,
		Data: map[string]any{
			"client_id":  ap.ClientID,
			"staff_id":   ap.StaffID,
			"service_id": ap.ServiceID,
			"start_time": ap.StartTime,
			"end_time":   ap.EndTime,
		},
	})

	return ap, nil
}
