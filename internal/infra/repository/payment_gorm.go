package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/medspa-api/internal/audit"
	"github.com/BruksfildServices01/medspa-api/internal/db"
	domain "github.com/BruksfildServices01/medspa-api/internal/domain/payment"
	"github.com/BruksfildServices01/medspa-api/internal/models"
)

type PaymentGormRepository struct {
	db *gorm.DB
}

func NewPaymentGormRepository(db *gorm.DB) *PaymentGormRepository {
	return &PaymentGormRepository{db: db}
}

func (r *PaymentGormRepository) Transaction(
	ctx context.Context,
	fn func(tx domain.TxRepository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&paymentTx{db: tx, audit: audit.New(tx)})
	})
}

// --------------------------------------------------
// Reads
// --------------------------------------------------

func (r *PaymentGormRepository) GetByID(
	ctx context.Context,
	id uint,
) (*models.Payment, error) {

	var p models.Payment
	if err := r.db.WithContext(ctx).
		Preload("Client").
		First(&p, id).Error; err != nil {
		return nil, notFound(err, "payment_not_found")
	}
	return &p, nil
}

func (r *PaymentGormRepository) GetByIdempotencyKey(
	ctx context.Context,
	key string,
) (*models.Payment, error) {

	var p models.Payment
	if err := r.db.WithContext(ctx).
		Where("idempotency_key = ?", key).
		First(&p).Error; err != nil {
		return nil, notFound(err, "payment_not_found")
	}
	return &p, nil
}

func (r *PaymentGormRepository) List(
	ctx context.Context,
	f domain.ListFilter,
) ([]models.Payment, int64, error) {

	q := filterPayments(r.db.WithContext(ctx).Model(&models.Payment{}), f)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []models.Payment
	if err := q.
		Preload("Client").
		Order("created_at DESC").
		Scopes(paginate(f.Limit, f.Offset)).
		Find(&payments).Error; err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}

// filterPayments applies f to q. To is exclusive.
func filterPayments(q *gorm.DB, f domain.ListFilter) *gorm.DB {
	if f.ClientID != nil {
		q = q.Where("client_id = ?", *f.ClientID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Method != "" {
		q = q.Where("payment_method = ?", f.Method)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}
	return q
}

func (r *PaymentGormRepository) ClientExists(ctx context.Context, id uint) (bool, error) {
	return exists(r.db.WithContext(ctx), &models.Client{}, id)
}

func (r *PaymentGormRepository) AppointmentClientID(ctx context.Context, id uint) (uint, bool, error) {
	var ap models.Appointment
	err := r.db.WithContext(ctx).
		Select("id", "client_id").
		First(&ap, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return ap.ClientID, true, nil
}

func (r *PaymentGormRepository) PackageExists(ctx context.Context, id uint) (bool, error) {
	return exists(r.db.WithContext(ctx), &models.Package{}, id)
}

// --------------------------------------------------
// Transaction scope
// --------------------------------------------------

type paymentTx struct {
	db    *gorm.DB
	audit *audit.Logger
}

func (t *paymentTx) GetByIDForUpdate(
	ctx context.Context,
	id uint,
) (*models.Payment, error) {

	var p models.Payment
	if err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, id).Error; err != nil {
		return nil, notFound(err, "payment_not_found")
	}
	return &p, nil
}

func (t *paymentTx) GetByIntentIDForUpdate(
	ctx context.Context,
	intentID string,
) (*models.Payment, error) {

	var p models.Payment
	if err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("provider_intent_id = ?", intentID).
		First(&p).Error; err != nil {
		return nil, notFound(err, "payment_not_found")
	}
	return &p, nil
}

func (t *paymentTx) Create(ctx context.Context, p *models.Payment) error {
	err := t.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
	if db.IsUniqueViolation(err) {
		return domain.ErrDuplicateKey
	}
	return err
}

func (t *paymentTx) Update(ctx context.Context, p *models.Payment) error {
	return t.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

func (t *paymentTx) Audit(ctx context.Context, e audit.Entry) error {
	return t.audit.Log(ctx, e)
}

var (
	_ domain.Repository   = (*PaymentGormRepository)(nil)
	_ domain.TxRepository = (*paymentTx)(nil)
)
