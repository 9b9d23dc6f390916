package stripegw

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/medspa-api/internal/domain/payment"
)

const secret = "whsec_test_secret"

func sign(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

var succeeded = []byte(`{
  "id": "evt_1",
  "object": "event",
  "type": "payment_intent.succeeded",
  "data": {"object": {"id": "pi_123", "object": "payment_intent", "status": "succeeded"}}
}`)

func TestParseWebhook(t *testing.T) {
	g := New("", secret)

	ev, err := g.ParseWebhook(succeeded, sign(succeeded, secret, time.Now()))
	require.NoError(t, err)

	assert.Equal(t, "evt_1", ev.ID)
	assert.Equal(t, domain.EventIntentSucceeded, ev.Type)
	assert.Equal(t, "pi_123", ev.IntentID)
}

func TestParseWebhookPaymentIDFromMetadata(t *testing.T) {
	g := New("", secret)

	payload := []byte(`{
  "id": "evt_2",
  "object": "event",
  "type": "payment_intent.succeeded",
  "data": {"object": {"id": "pi_456", "object": "payment_intent", "metadata": {"payment_id": "42", "client_id": "7"}}}
}`)

	ev, err := g.ParseWebhook(payload, sign(payload, secret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "pi_456", ev.IntentID)
	assert.Equal(t, uint(42), ev.PaymentID)

	// no metadata
	ev, err = g.ParseWebhook(succeeded, sign(succeeded, secret, time.Now()))
	require.NoError(t, err)
	assert.Zero(t, ev.PaymentID)
}

func TestParseWebhookBadSignature(t *testing.T) {
	g := New("", secret)

	_, err := g.ParseWebhook(succeeded, sign(succeeded, "whsec_other", time.Now()))
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestParseWebhookStaleTimestamp(t *testing.T) {
	g := New("", secret)

	_, err := g.ParseWebhook(succeeded, sign(succeeded, secret, time.Now().Add(-time.Hour)))
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestParseWebhookWithoutSecret(t *testing.T) {
	g := New("", "")

	_, err := g.ParseWebhook(succeeded, sign(succeeded, "", time.Now()))
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestDisabledGateway(t *testing.T) {
	g := New("", secret)

	_, err := g.CreateIntent(context.Background(), domain.IntentRequest{AmountMinor: 100, Currency: "usd"})
	assert.ErrorIs(t, err, domain.ErrGatewayDisabled)

	_, err = g.GetIntent(context.Background(), "pi_123")
	assert.ErrorIs(t, err, domain.ErrGatewayDisabled)
}
