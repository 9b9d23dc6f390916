package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/medspa-api/internal/audit"
	domain "github.com/BruksfildServices01/medspa-api/internal/domain/payment"
	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/infra/lock"
	"github.com/BruksfildServices01/medspa-api/internal/models"
	"github.com/BruksfildServices01/medspa-api/internal/policy"
)

var tracer = otel.Tracer("medspa-api/usecase/payment")

const lockTTL = 30 * time.Second

// ======================================================
// INPUT / OUTPUT
// ======================================================

type CreatePaymentInput struct {
	ClientID      uint
	AppointmentID *uint
	PackageID     *uint
	LocationID    *uint

	Amount decimal.Decimal
	Tips   decimal.Decimal
	Method string

	// IdempotencyKey defaults to a fresh UUID when empty.
	IdempotencyKey string
	Actor          policy.Actor
}

type CreatePaymentOutput struct {
	Payment      *models.Payment
	ClientSecret string
	// Replayed is set when the key matched an existing payment.
	Replayed bool
}

// ======================================================
// USE CASE
// ======================================================

type CreatePayment struct {
	repo     domain.Repository
	gateway  domain.Gateway
	locker   lock.Locker
	rate     decimal.Decimal
	currency string
	now      func() time.Time
}

func NewCreatePayment(
	repo domain.Repository,
	gateway domain.Gateway,
	locker lock.Locker,
	rate decimal.Decimal,
	currency string,
) *CreatePayment {
	return &CreatePayment{
		repo:     repo,
		gateway:  gateway,
		locker:   locker,
		rate:     rate,
		currency: currency,
		now:      time.Now,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreatePayment) Execute(
	ctx context.Context,
	in CreatePaymentInput,
) (*CreatePaymentOutput, error) {

	ctx, span := tracer.Start(ctx, "CreatePayment")
	defer span.End()

	// --------------------------------------------------
	// 1. Input rules
	// --------------------------------------------------
	if !in.Amount.IsPositive() {
		return nil, httperr.ErrBusiness("invalid_amount")
	}
	if in.Tips.IsNegative() {
		return nil, httperr.ErrBusiness("invalid_tips")
	}
	method, err := domain.ParseMethod(in.Method)
	if err != nil {
		return nil, err
	}
	// clients pay by card; cash is recorded at the front desk
	if in.Actor.IsClient() && method != domain.MethodStripe {
		return nil, httperr.ErrForbidden
	}

	key := in.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}
	span.SetAttributes(
		attribute.String("payment.method", string(method)),
		attribute.String("payment.idempotency_key", key),
	)

	// --------------------------------------------------
	// 2. One request per key at a time
	// --------------------------------------------------
	release, err := uc.locker.Acquire(ctx, "payment:"+key, lockTTL)
	if errors.Is(err, lock.ErrLocked) {
		return nil, httperr.ErrConflict("payment_in_progress")
	}
	if err != nil {
		return nil, fmt.Errorf("acquire payment lock: %w", err)
	}
	defer release()

	if out, err := uc.replay(ctx, key, in.Actor); out != nil || err != nil {
		return out, err
	}

	// --------------------------------------------------
	// 3. References
	// --------------------------------------------------
	if err := uc.assertReferences(ctx, in); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 4. Local row + audit, one transaction
	// --------------------------------------------------
	now := uc.now()
	status := domain.InitialStatus(method)
	actorID := in.Actor.UserID

	p := &models.Payment{
		ClientID:       in.ClientID,
		AppointmentID:  in.AppointmentID,
		PackageID:      in.PackageID,
		LocationID:     in.LocationID,
		Amount:         in.Amount,
		Tips:           in.Tips,
		Commission:     domain.ComputeCommission(in.Amount, uc.rate),
		Currency:       uc.currency,
		PaymentMethod:  string(method),
		Status:         string(status),
		IdempotencyKey: key,
		CreatedBy:      &actorID,
	}
	if status == domain.StatusCompleted {
		p.CompletedAt = &now
	}

	err = uc.repo.Transaction(ctx, func(tx domain.TxRepository) error {
		if err := tx.Create(ctx, p); err != nil {
			return err
		}
		return tx.Audit(ctx, audit.Entry{
			UserID:   &actorID,
			Action:   "CREATE",
			Table:    "payments",
			RecordID: &p.ID,
			Data:     snapshot(p),
		})
	})
	if errors.Is(err, domain.ErrDuplicateKey) {
		// lost a race with a request holding the same key on another node
		return uc.replay(ctx, key, in.Actor)
	}
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	if method == domain.MethodCash {
		return &CreatePaymentOutput{Payment: p}, nil
	}

	// --------------------------------------------------
	// 5. Card: remote intent with the same key
	// --------------------------------------------------
	intent, err := uc.requestIntent(ctx, p)
	if errors.Is(err, errIntentUnavailable) {
		span.RecordError(err)
		if ferr := uc.markFailed(ctx, p.ID, actorID); ferr != nil {
			zap.L().Error("mark payment failed", zap.Uint("payment_id", p.ID), zap.Error(ferr))
		}
		return nil, httperr.ErrUpstream("payment_provider_error")
	}
	if err != nil {
		return nil, err
	}

	return &CreatePaymentOutput{Payment: intent.payment, ClientSecret: intent.ClientSecret}, nil
}

// errIntentUnavailable wraps provider failures from requestIntent.
var errIntentUnavailable = errors.New("payment intent unavailable")

type attachedIntent struct {
	*domain.Intent
	payment *models.Payment
}

// requestIntent creates the remote intent under the payment's idempotency
// key and stores its id. The provider returns the same intent for the same
// key, so a retry after a lost response never opens a second charge.
func (uc *CreatePayment) requestIntent(ctx context.Context, p *models.Payment) (*attachedIntent, error) {
	intent, err := uc.gateway.CreateIntent(ctx, domain.IntentRequest{
		AmountMinor:    domain.MinorUnits(p.Amount),
		Currency:       uc.currency,
		IdempotencyKey: p.IdempotencyKey,
		Metadata: map[string]string{
			"payment_id": strconv.FormatUint(uint64(p.ID), 10),
			"client_id":  strconv.FormatUint(uint64(p.ClientID), 10),
		},
	})
	if err != nil {
		zap.L().Error("payment intent failed",
			zap.Uint("payment_id", p.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", errIntentUnavailable, err)
	}

	var stored *models.Payment
	err = uc.repo.Transaction(ctx, func(tx domain.TxRepository) error {
		locked, err := tx.GetByIDForUpdate(ctx, p.ID)
		if err != nil {
			return err
		}
		if locked.ProviderIntentID != nil {
			// a webhook already attached it
			stored = locked
			return nil
		}
		locked.ProviderIntentID = &intent.ID
		if err := tx.Update(ctx, locked); err != nil {
			return err
		}
		stored = locked
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("attach payment intent: %w", err)
	}

	return &attachedIntent{Intent: intent, payment: stored}, nil
}

// replay returns the payment already stored under key, or nil when none is.
func (uc *CreatePayment) replay(ctx context.Context, key string, actor policy.Actor) (*CreatePaymentOutput, error) {
	existing, err := uc.repo.GetByIdempotencyKey(ctx, key)
	if httperr.IsBusiness(err, "payment_not_found") {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if actor.IsClient() {
		if err := policy.CanAccessClient(actor, existing.ClientID); err != nil {
			return nil, err
		}
	}

	out := &CreatePaymentOutput{Payment: existing, Replayed: true}
	if existing.PaymentMethod != string(domain.MethodStripe) {
		return out, nil
	}

	// an earlier attempt never stored its intent; ask again with the same key
	if existing.ProviderIntentID == nil &&
		(existing.Status == string(domain.StatusFailed) || existing.Status == string(domain.StatusPending)) {
		intent, err := uc.requestIntent(ctx, existing)
		if errors.Is(err, errIntentUnavailable) {
			return nil, httperr.ErrUpstream("payment_provider_error")
		}
		if err != nil {
			return nil, err
		}
		out.Payment = intent.payment
		out.ClientSecret = intent.ClientSecret
		return out, nil
	}

	if existing.Status == string(domain.StatusPending) && existing.ProviderIntentID != nil {
		intent, err := uc.gateway.GetIntent(ctx, *existing.ProviderIntentID)
		if err != nil {
			return nil, httperr.ErrUpstream("payment_provider_error")
		}
		out.ClientSecret = intent.ClientSecret
	}
	return out, nil
}

func (uc *CreatePayment) assertReferences(ctx context.Context, in CreatePaymentInput) error {
	ok, err := uc.repo.ClientExists(ctx, in.ClientID)
	if err != nil {
		return err
	}
	if !ok {
		return httperr.ErrBusiness("client_not_found")
	}

	if in.AppointmentID != nil {
		owner, ok, err := uc.repo.AppointmentClientID(ctx, *in.AppointmentID)
		if err != nil {
			return err
		}
		if !ok {
			return httperr.ErrBusiness("appointment_not_found")
		}
		if owner != in.ClientID {
			if in.Actor.IsClient() {
				return httperr.ErrForbidden
			}
			return httperr.ErrBusiness("appointment_client_mismatch")
		}
	}

	if in.PackageID != nil {
		ok, err := uc.repo.PackageExists(ctx, *in.PackageID)
		if err != nil {
			return err
		}
		if !ok {
			return httperr.ErrBusiness("package_not_found")
		}
	}

	return nil
}

func (uc *CreatePayment) markFailed(ctx context.Context, id uint, actorID uint) error {
	// the request ctx may be the reason the provider call failed
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	return uc.repo.Transaction(ctx, func(tx domain.TxRepository) error {
		p, err := tx.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		return transition(ctx, tx, p, domain.StatusFailed, &actorID, "provider_error", uc.now())
	})
}
