package payment

import (
	"context"
	"errors"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrGatewayDisabled  = errors.New("payment gateway not configured")
)

type IntentRequest struct {
	AmountMinor    int64
	Currency       string
	IdempotencyKey string
	Metadata       map[string]string
}

type Intent struct {
	ID           string
	ClientSecret string
	Status       string
}

type EventType string

const (
	EventIntentSucceeded EventType = "payment_intent.succeeded"
	EventIntentFailed    EventType = "payment_intent.payment_failed"
)

// Event is a verified webhook notification. IntentID is empty for events
// that do not carry a payment intent. PaymentID comes from the intent's
// metadata and is zero when absent.
type Event struct {
	ID        string
	Type      EventType
	IntentID  string
	PaymentID uint
}

// Gateway is the card payment provider.
type Gateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
	ParseWebhook(payload []byte, signature string) (*Event, error)
}

// StatusFromIntent maps a provider intent status to a local payment status.
// ok is false while the intent is still in flight.
func StatusFromIntent(intentStatus string) (Status, bool) {
	switch intentStatus {
	case "succeeded":
		return StatusCompleted, true
	case "canceled":
		return StatusFailed, true
	}
	return "", false
}
