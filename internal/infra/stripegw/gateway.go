package stripegw

import (
	"context"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	domain "github.com/BruksfildServices01/medspa-api/internal/domain/payment"
)

// Gateway implements the card payment provider on Stripe payment intents.
type Gateway struct {
	api           *client.API
	webhookSecret string
}

// New returns a gateway. With an empty secret key, intent calls fail with
// ErrGatewayDisabled; with an empty webhook secret, every webhook is rejected.
func New(secretKey, webhookSecret string) *Gateway {
	g := &Gateway{webhookSecret: webhookSecret}
	if secretKey != "" {
		g.api = &client.API{}
		g.api.Init(secretKey, nil)
	}
	return g
}

func (g *Gateway) CreateIntent(
	ctx context.Context,
	req domain.IntentRequest,
) (*domain.Intent, error) {

	if g.api == nil {
		return nil, domain.ErrGatewayDisabled
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountMinor),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create intent: %w", err)
	}

	return toIntent(pi), nil
}

func (g *Gateway) GetIntent(ctx context.Context, id string) (*domain.Intent, error) {
	if g.api == nil {
		return nil, domain.ErrGatewayDisabled
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("stripe get intent %s: %w", id, err)
	}

	return toIntent(pi), nil
}

// ParseWebhook verifies the Stripe-Signature header and decodes the event.
func (g *Gateway) ParseWebhook(payload []byte, signature string) (*domain.Event, error) {
	if g.webhookSecret == "" {
		return nil, domain.ErrInvalidSignature
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		signature,
		g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}

	ev := &domain.Event{
		ID:   event.ID,
		Type: domain.EventType(event.Type),
	}
	if event.Data != nil {
		if id, ok := event.Data.Object["id"].(string); ok {
			ev.IntentID = id
		}
		ev.PaymentID = metadataPaymentID(event.Data.Object)
	}

	return ev, nil
}

// metadataPaymentID reads the local payment id stamped on the intent at
// creation. It lets a webhook reach a payment whose intent id was never
// stored because the create response was lost.
func metadataPaymentID(obj map[string]interface{}) uint {
	md, ok := obj["metadata"].(map[string]interface{})
	if !ok {
		return 0
	}
	raw, _ := md["payment_id"].(string)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

func toIntent(pi *stripe.PaymentIntent) *domain.Intent {
	return &domain.Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}
}

var _ domain.Gateway = (*Gateway)(nil)
