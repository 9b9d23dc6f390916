package payment

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/medspa-api/internal/audit"
	domain "github.com/BruksfildServices01/medspa-api/internal/domain/payment"
	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/models"
)

// HandleWebhook applies provider notifications. Repeated deliveries of the
// same event are no-ops.
type HandleWebhook struct {
	repo    domain.Repository
	gateway domain.Gateway
	now     func() time.Time
}

func NewHandleWebhook(repo domain.Repository, gateway domain.Gateway) *HandleWebhook {
	return &HandleWebhook{repo: repo, gateway: gateway, now: time.Now}
}

func (uc *HandleWebhook) Execute(
	ctx context.Context,
	payload []byte,
	signature string,
) error {

	ctx, span := tracer.Start(ctx, "HandleWebhook", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()

	ev, err := uc.gateway.ParseWebhook(payload, signature)
	if err != nil {
		zap.L().Warn("webhook rejected", zap.Error(err))
		return httperr.ErrBadRequest("invalid_signature")
	}
	span.SetAttributes(
		attribute.String("webhook.event_id", ev.ID),
		attribute.String("webhook.type", string(ev.Type)),
	)

	var next domain.Status
	switch ev.Type {
	case domain.EventIntentSucceeded:
		next = domain.StatusCompleted
	case domain.EventIntentFailed:
		next = domain.StatusFailed
	default:
		zap.L().Debug("webhook event ignored", zap.String("type", string(ev.Type)))
		return nil
	}

	if ev.IntentID == "" {
		zap.L().Warn("webhook event without intent", zap.String("event_id", ev.ID))
		return nil
	}

	err = uc.repo.Transaction(ctx, func(tx domain.TxRepository) error {
		p, attached, err := uc.lookup(ctx, tx, ev)
		if err != nil {
			return err
		}
		if attached && domain.Status(p.Status) == next {
			if err := tx.Update(ctx, p); err != nil {
				return err
			}
			data := snapshot(p)
			data["source"] = "webhook:" + ev.ID
			return tx.Audit(ctx, audit.Entry{
				Action:   "UPDATE",
				Table:    "payments",
				RecordID: &p.ID,
				Data:     data,
			})
		}
		return transition(ctx, tx, p, next, nil, "webhook:"+ev.ID, uc.now())
	})

	switch {
	case err == nil:
		return nil
	case httperr.IsBusiness(err, "payment_not_found"):
		// intents created outside this system; acknowledge so the provider stops retrying
		zap.L().Warn("webhook for unknown intent", zap.String("intent_id", ev.IntentID))
		return nil
	case httperr.IsBusiness(err, "payment_immutable"),
		httperr.IsBusiness(err, "invalid_status_transition"):
		zap.L().Info("webhook transition skipped",
			zap.String("intent_id", ev.IntentID),
			zap.String("type", string(ev.Type)),
		)
		return nil
	}

	return err
}

// lookup finds the payment for ev by intent id. When the intent id was
// never stored locally it falls back to the payment id from the intent
// metadata and attaches the intent; attached reports that case.
func (uc *HandleWebhook) lookup(
	ctx context.Context,
	tx domain.TxRepository,
	ev *domain.Event,
) (*models.Payment, bool, error) {

	p, err := tx.GetByIntentIDForUpdate(ctx, ev.IntentID)
	if err == nil || !httperr.IsBusiness(err, "payment_not_found") || ev.PaymentID == 0 {
		return p, false, err
	}

	p, err = tx.GetByIDForUpdate(ctx, ev.PaymentID)
	if err != nil {
		return nil, false, err
	}
	if p.PaymentMethod != string(domain.MethodStripe) || p.ProviderIntentID != nil {
		// metadata points at a row that cannot belong to this intent
		zap.L().Warn("webhook metadata mismatch",
			zap.String("intent_id", ev.IntentID),
			zap.Uint("payment_id", ev.PaymentID),
		)
		return nil, false, httperr.ErrNotFound("payment_not_found")
	}

	intentID := ev.IntentID
	p.ProviderIntentID = &intentID
	zap.L().Info("intent attached from webhook",
		zap.String("intent_id", intentID),
		zap.Uint("payment_id", p.ID),
	)
	return p, true, nil
}
