package payment

import (
	"context"
	"errors"
	"time"

	"github.com/BruksfildServices01/medspa-api/internal/audit"
	"github.com/BruksfildServices01/medspa-api/internal/models"
)

// ErrDuplicateKey is returned by Create when the idempotency key is taken.
var ErrDuplicateKey = errors.New("duplicate idempotency key")

type ListFilter struct {
	ClientID *uint
	Status   string
	Method   string
	From     *time.Time
	To       *time.Time

	Limit  int
	Offset int
}

type Repository interface {
	// Transaction runs fn with a repository bound to one database transaction.
	Transaction(ctx context.Context, fn func(tx TxRepository) error) error

	GetByID(ctx context.Context, id uint) (*models.Payment, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*models.Payment, error)
	List(ctx context.Context, f ListFilter) ([]models.Payment, int64, error)

	ClientExists(ctx context.Context, clientID uint) (bool, error)
	// AppointmentClientID returns the owning client of an appointment;
	// found is false when the appointment does not exist.
	AppointmentClientID(ctx context.Context, appointmentID uint) (clientID uint, found bool, err error)
	PackageExists(ctx context.Context, packageID uint) (bool, error)
}

// TxRepository is the transactional subset. Every write goes through it
// together with its audit row.
type TxRepository interface {
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Payment, error)
	GetByIntentIDForUpdate(ctx context.Context, intentID string) (*models.Payment, error)
	Create(ctx context.Context, p *models.Payment) error
	Update(ctx context.Context, p *models.Payment) error
	Audit(ctx context.Context, e audit.Entry) error
}
