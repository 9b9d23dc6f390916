package payment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/medspa-api/internal/domain/payment"
	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/models"
)

// ConfirmPayment syncs a card payment with its provider intent.
type ConfirmPayment struct {
	repo    domain.Repository
	gateway domain.Gateway
	now     func() time.Time
}

func NewConfirmPayment(repo domain.Repository, gateway domain.Gateway) *ConfirmPayment {
	return &ConfirmPayment{repo: repo, gateway: gateway, now: time.Now}
}

func (uc *ConfirmPayment) Execute(
	ctx context.Context,
	paymentID uint,
	actorID uint,
) (*models.Payment, error) {

	ctx, span := tracer.Start(ctx, "ConfirmPayment")
	defer span.End()

	p, err := uc.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if p.PaymentMethod != string(domain.MethodStripe) {
		return nil, httperr.ErrBusiness("not_a_card_payment")
	}
	if p.Status == string(domain.StatusCompleted) {
		return p, nil
	}
	if p.ProviderIntentID == nil {
		return nil, httperr.ErrBusiness("payment_has_no_intent")
	}

	intent, err := uc.gateway.GetIntent(ctx, *p.ProviderIntentID)
	if err != nil {
		span.RecordError(err)
		return nil, httperr.ErrUpstream("payment_provider_error")
	}

	next, ok := domain.StatusFromIntent(intent.Status)
	if !ok {
		return p, nil
	}

	var out *models.Payment
	err = uc.repo.Transaction(ctx, func(tx domain.TxRepository) error {
		locked, err := tx.GetByIDForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		if err := transition(ctx, tx, locked, next, &actorID, "confirm", uc.now()); err != nil {
			return err
		}
		out = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}
