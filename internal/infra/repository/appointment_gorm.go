package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/medspa-api/internal/domain/appointment"
	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

func (r *AppointmentGormRepository) Transaction(
	ctx context.Context,
	fn func(tx domain.TxRepository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&appointmentTx{db: tx})
	})
}

// --------------------------------------------------
// Lookups
// --------------------------------------------------

func (r *AppointmentGormRepository) GetService(
	ctx context.Context,
	id uint,
) (*models.Service, error) {

	var svc models.Service
	if err := r.db.WithContext(ctx).First(&svc, id).Error; err != nil {
		return nil, notFound(err, "service_not_found")
	}
	return &svc, nil
}

func (r *AppointmentGormRepository) GetStaff(
	ctx context.Context,
	id uint,
) (*models.User, error) {

	var u models.User
	if err := r.db.WithContext(ctx).
		Where("id = ? AND role IN ?", id, []string{models.RoleAdmin, models.RoleStaff}).
		First(&u).Error; err != nil {
		return nil, notFound(err, "staff_not_found")
	}
	return &u, nil
}

func (r *AppointmentGormRepository) ClientExists(
	ctx context.Context,
	id uint,
) (bool, error) {
	return exists(r.db.WithContext(ctx), &models.Client{}, id)
}

// --------------------------------------------------
// Appointment (read)
// --------------------------------------------------

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Staff").
		Preload("Service").
		Preload("Location").
		First(&ap, id).Error; err != nil {
		return nil, notFound(err, "appointment_not_found")
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) ListAppointments(
	ctx context.Context,
	f domain.ListFilter,
) ([]models.Appointment, int64, error) {

	q := r.db.WithContext(ctx).Model(&models.Appointment{})

	if f.ClientID != nil {
		q = q.Where("client_id = ?", *f.ClientID)
	}
	if f.StaffID != nil {
		q = q.Where("staff_id = ?", *f.StaffID)
	}
	if f.LocationID != nil {
		q = q.Where("location_id = ?", *f.LocationID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("start_time >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("start_time < ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var apps []models.Appointment
	if err := q.
		Preload("Client").
		Preload("Staff").
		Preload("Service").
		Order("start_time ASC").
		Scopes(paginate(f.Limit, f.Offset)).
		Find(&apps).Error; err != nil {
		return nil, 0, err
	}

	return apps, total, nil
}

// --------------------------------------------------
// Transaction scope
// --------------------------------------------------

type appointmentTx struct {
	db *gorm.DB
}

func (t *appointmentTx) GetAppointmentForUpdate(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&ap, id).Error; err != nil {
		return nil, notFound(err, "appointment_not_found")
	}
	return &ap, nil
}

func (t *appointmentTx) AssertNoTimeConflict(
	ctx context.Context,
	staffID uint,
	start time.Time,
	end time.Time,
	excludeID uint,
) error {

	// the staff row lock serializes bookings for the same staff member
	var staff models.User
	if err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&staff, staffID).Error; err != nil {
		return notFound(err, "staff_not_found")
	}

	var ids []uint
	if err := t.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where(
			"staff_id = ? AND id <> ? AND status IN ? AND start_time < ? AND end_time > ?",
			staffID,
			excludeID,
			domain.OpenStatuses(),
			end,
			start,
		).
		Limit(1).
		Pluck("id", &ids).Error; err != nil {
		return err
	}

	if len(ids) > 0 {
		return httperr.ErrConflict("appointment_conflict")
	}

	return nil
}

func (t *appointmentTx) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return t.db.WithContext(ctx).Create(ap).Error
}

func (t *appointmentTx) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return t.db.WithContext(ctx).
		Omit(clause.Associations).
		Save(ap).Error
}

// Compile-time check
var (
	_ domain.Repository   = (*AppointmentGormRepository)(nil)
	_ domain.TxRepository = (*appointmentTx)(nil)
)
