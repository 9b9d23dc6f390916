package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/medspa-api/internal/models"
)

type ListFilter struct {
	ClientID   *uint
	StaffID    *uint
	LocationID *uint
	Status     string
	From       *time.Time
	To         *time.Time

	// Limit <= 0 returns every row.
	Limit  int
	Offset int
}

type Repository interface {
	Transaction(ctx context.Context, fn func(tx TxRepository) error) error

	// -------- Lookups --------
	GetService(ctx context.Context, id uint) (*models.Service, error)
	GetStaff(ctx context.Context, id uint) (*models.User, error)
	ClientExists(ctx context.Context, id uint) (bool, error)

	// -------- Appointment (read) --------
	GetAppointment(ctx context.Context, id uint) (*models.Appointment, error)
	ListAppointments(ctx context.Context, f ListFilter) ([]models.Appointment, int64, error)
}

type TxRepository interface {
	GetAppointmentForUpdate(ctx context.Context, id uint) (*models.Appointment, error)

	// AssertNoTimeConflict locks the staff member's open appointments in the
	// slot and fails with appointment_conflict when any exists. excludeID
	// skips the appointment being rescheduled.
	AssertNoTimeConflict(ctx context.Context, staffID uint, start, end time.Time, excludeID uint) error

	CreateAppointment(ctx context.Context, ap *models.Appointment) error
	UpdateAppointment(ctx context.Context, ap *models.Appointment) error
}
