package payment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/medspa-api/internal/domain/payment"
	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/infra/lock"
	"github.com/BruksfildServices01/medspa-api/internal/models"
	"github.com/BruksfildServices01/medspa-api/internal/policy"
)

var (
	rate  = decimal.NewFromInt(10)
	staff = policy.Actor{UserID: 7, Role: models.RoleStaff}
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func setup() (*fakeRepo, *fakeGateway, *CreatePayment) {
	repo := newFakeRepo()
	gw := newFakeGateway()
	uc := NewCreatePayment(repo, gw, lock.Noop{}, rate, "usd")
	return repo, gw, uc
}

// ======================================================
// CreatePayment
// ======================================================

func TestCreateCashPaymentCompletesImmediately(t *testing.T) {
	repo, gw, uc := setup()

	out, err := uc.Execute(context.Background(), CreatePaymentInput{
		ClientID: 1,
		Amount:   dec("150.00"),
		Tips:     dec("20.00"),
		Method:   "cash",
		Actor:    staff,
	})
	require.NoError(t, err)

	p := out.Payment
	assert.Equal(t, "completed", p.Status)
	assert.NotNil(t, p.CompletedAt)
	assert.True(t, dec("15.00").Equal(p.Commission))
	assert.Empty(t, out.ClientSecret)
	assert.NotEmpty(t, p.IdempotencyKey)

	assert.Empty(t, gw.requests)
	assert.Equal(t, []string{"CREATE"}, repo.auditActions())
}

func TestCreateStripePaymentIsPending(t *testing.T) {
	repo, gw, uc := setup()

	out, err := uc.Execute(context.Background(), CreatePaymentInput{
		ClientID:       1,
		AppointmentID:  ptr(uint(10)),
		Amount:         dec("99.99"),
		Method:         "stripe",
		IdempotencyKey: "key-1",
		Actor:          staff,
	})
	require.NoError(t, err)

	assert.Equal(t, "pending", out.Payment.Status)
	assert.Nil(t, out.Payment.CompletedAt)
	assert.Equal(t, "pi_key-1_secret", out.ClientSecret)
	require.NotNil(t, out.Payment.ProviderIntentID)
	assert.Equal(t, "pi_key-1", *out.Payment.ProviderIntentID)

	require.Len(t, gw.requests, 1)
	assert.Equal(t, int64(9999), gw.requests[0].AmountMinor)
	assert.Equal(t, "key-1", gw.requests[0].IdempotencyKey)
	assert.Equal(t, "1", gw.requests[0].Metadata["payment_id"])

	stored, err := repo.GetByID(context.Background(), out.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, "pi_key-1", *stored.ProviderIntentID)
}

func TestCreatePaymentValidation(t *testing.T) {
	_, _, uc := setup()
	ctx := context.Background()

	_, err := uc.Execute(ctx, CreatePaymentInput{ClientID: 1, Amount: dec("0"), Method: "cash"})
	assert.True(t, httperr.IsBusiness(err, "invalid_amount"))

	_, err = uc.Execute(ctx, CreatePaymentInput{ClientID: 1, Amount: dec("-5"), Method: "cash"})
	assert.True(t, httperr.IsBusiness(err, "invalid_amount"))

	_, err = uc.Execute(ctx, CreatePaymentInput{ClientID: 1, Amount: dec("5"), Tips: dec("-1"), Method: "cash"})
	assert.True(t, httperr.IsBusiness(err, "invalid_tips"))

	_, err = uc.Execute(ctx, CreatePaymentInput{ClientID: 1, Amount: dec("5"), Method: "check"})
	assert.True(t, httperr.IsBusiness(err, "invalid_payment_method"))

	_, err = uc.Execute(ctx, CreatePaymentInput{ClientID: 99, Amount: dec("5"), Method: "cash"})
	assert.True(t, httperr.IsBusiness(err, "client_not_found"))

	_, err = uc.Execute(ctx, CreatePaymentInput{ClientID: 1, PackageID: ptr(uint(3)), Amount: dec("5"), Method: "cash"})
	assert.True(t, httperr.IsBusiness(err, "package_not_found"))
}

func TestCreatePaymentReplaysSameKey(t *testing.T) {
	repo, gw, uc := setup()
	ctx := context.Background()

	in := CreatePaymentInput{
		ClientID:       1,
		Amount:         dec("200"),
		Method:         "stripe",
		IdempotencyKey: "retry-me",
	}

	first, err := uc.Execute(ctx, in)
	require.NoError(t, err)
	second, err := uc.Execute(ctx, in)
	require.NoError(t, err)

	assert.False(t, first.Replayed)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Payment.ID, second.Payment.ID)
	assert.Equal(t, first.ClientSecret, second.ClientSecret)
	assert.Equal(t, 1, repo.count())
	assert.Len(t, gw.requests, 1)
}

func TestCreatePaymentConcurrentSameKey(t *testing.T) {
	repo, _, uc := setup()

	var wg sync.WaitGroup
	ids := make([]uint, 8)
	errs := make([]error, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := uc.Execute(context.Background(), CreatePaymentInput{
				ClientID:       1,
				Amount:         dec("50"),
				Method:         "cash",
				IdempotencyKey: "same",
			})
			errs[i] = err
			if err == nil {
				ids[i] = out.Payment.ID
			}
		}(i)
	}
	wg.Wait()

	for i := range ids {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	assert.Equal(t, 1, repo.count())
}

func TestCreatePaymentLockHeld(t *testing.T) {
	repo := newFakeRepo()
	uc := NewCreatePayment(repo, newFakeGateway(), heldLocker{}, rate, "usd")

	_, err := uc.Execute(context.Background(), CreatePaymentInput{
		ClientID: 1, Amount: dec("10"), Method: "cash", IdempotencyKey: "k",
	})
	assert.True(t, httperr.IsBusiness(err, "payment_in_progress"))
	assert.Equal(t, 0, repo.count())
}

func TestCreatePaymentProviderFailureMarksFailed(t *testing.T) {
	repo, gw, uc := setup()
	gw.createErr = errors.New("card network down")

	_, err := uc.Execute(context.Background(), CreatePaymentInput{
		ClientID: 1, Amount: dec("80"), Method: "stripe", IdempotencyKey: "k-fail",
	})

	be, ok := httperr.AsBusiness(err)
	require.True(t, ok)
	assert.Equal(t, "payment_provider_error", be.Code)
	assert.Equal(t, 502, be.Status)

	stored, err := repo.GetByIdempotencyKey(context.Background(), "k-fail")
	require.NoError(t, err)
	assert.Equal(t, "failed", stored.Status)
	assert.Equal(t, []string{"CREATE", "UPDATE"}, repo.auditActions())
}

func TestCreatePaymentLostIntentResponseRecoversOnRetry(t *testing.T) {
	repo, gw, uc := setup()
	ctx := context.Background()

	in := CreatePaymentInput{ClientID: 1, Amount: dec("80"), Method: "stripe", IdempotencyKey: "k-retry"}

	gw.createErr = errors.New("connection reset")
	_, err := uc.Execute(ctx, in)
	require.Error(t, err)

	gw.createErr = nil
	out, err := uc.Execute(ctx, in)
	require.NoError(t, err)

	assert.True(t, out.Replayed)
	assert.Equal(t, "pi_k-retry_secret", out.ClientSecret)
	require.NotNil(t, out.Payment.ProviderIntentID)
	assert.Equal(t, "pi_k-retry", *out.Payment.ProviderIntentID)
	assert.Equal(t, 1, repo.count())

	require.Len(t, gw.requests, 2)
	assert.Equal(t, gw.requests[0].IdempotencyKey, gw.requests[1].IdempotencyKey)
}

func TestCreatePaymentClientActor(t *testing.T) {
	_, _, uc := setup()
	ctx := context.Background()
	own := uint(1)
	client := policy.Actor{UserID: 30, Role: models.RoleClient, ClientID: &own}

	_, err := uc.Execute(ctx, CreatePaymentInput{ClientID: 1, Amount: dec("50"), Method: "cash", Actor: client})
	assert.ErrorIs(t, err, httperr.ErrForbidden)

	// appointment 20 belongs to client 2
	_, err = uc.Execute(ctx, CreatePaymentInput{
		ClientID: 1, AppointmentID: ptr(uint(20)), Amount: dec("50"), Method: "stripe", Actor: client,
	})
	assert.ErrorIs(t, err, httperr.ErrForbidden)

	out, err := uc.Execute(ctx, CreatePaymentInput{
		ClientID: 1, AppointmentID: ptr(uint(10)), Amount: dec("50"), Method: "stripe", Actor: client,
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", out.Payment.Status)
}

func TestCreatePaymentAppointmentOfAnotherClient(t *testing.T) {
	repo, _, uc := setup()

	_, err := uc.Execute(context.Background(), CreatePaymentInput{
		ClientID: 1, AppointmentID: ptr(uint(20)), Amount: dec("50"), Method: "cash", Actor: staff,
	})
	assert.True(t, httperr.IsBusiness(err, "appointment_client_mismatch"))

	_, err = uc.Execute(context.Background(), CreatePaymentInput{
		ClientID: 1, AppointmentID: ptr(uint(99)), Amount: dec("50"), Method: "cash", Actor: staff,
	})
	assert.True(t, httperr.IsBusiness(err, "appointment_not_found"))
	assert.Equal(t, 0, repo.count())
}

// ======================================================
// ConfirmPayment
// ======================================================

func TestConfirmPayment(t *testing.T) {
	repo, gw, create := setup()
	ctx := context.Background()

	out, err := create.Execute(ctx, CreatePaymentInput{
		ClientID: 1, Amount: dec("120"), Method: "stripe", IdempotencyKey: "c1",
	})
	require.NoError(t, err)

	confirm := NewConfirmPayment(repo, gw)

	p, err := confirm.Execute(ctx, out.Payment.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, "pending", p.Status)

	gw.setIntentStatus("pi_c1", "succeeded")
	p, err = confirm.Execute(ctx, out.Payment.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, "completed", p.Status)
	assert.NotNil(t, p.CompletedAt)
	assert.True(t, dec("12").Equal(p.Commission))

	// confirming again is a no-op
	p, err = confirm.Execute(ctx, out.Payment.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, "completed", p.Status)
	assert.Equal(t, []string{"CREATE", "UPDATE"}, repo.auditActions())
}

func TestConfirmRejectsCash(t *testing.T) {
	repo, gw, create := setup()

	out, err := create.Execute(context.Background(), CreatePaymentInput{
		ClientID: 1, Amount: dec("10"), Method: "cash",
	})
	require.NoError(t, err)

	_, err = NewConfirmPayment(repo, gw).Execute(context.Background(), out.Payment.ID, 7)
	// cash payments are already completed
	assert.True(t, httperr.IsBusiness(err, "not_a_card_payment"))
}

// ======================================================
// HandleWebhook
// ======================================================

func TestWebhookCompletesPayment(t *testing.T) {
	repo, gw, create := setup()
	ctx := context.Background()

	out, err := create.Execute(ctx, CreatePaymentInput{
		ClientID: 1, Amount: dec("300"), Method: "stripe", IdempotencyKey: "w1",
	})
	require.NoError(t, err)

	gw.event = &domain.Event{ID: "evt_1", Type: domain.EventIntentSucceeded, IntentID: "pi_w1"}
	uc := NewHandleWebhook(repo, gw)

	require.NoError(t, uc.Execute(ctx, []byte(`{}`), "valid"))
	// redelivery
	require.NoError(t, uc.Execute(ctx, []byte(`{}`), "valid"))

	p, err := repo.GetByID(ctx, out.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", p.Status)
	assert.Equal(t, []string{"CREATE", "UPDATE"}, repo.auditActions())
	assert.Nil(t, repo.audits[1].UserID)
}

func TestWebhookCompletesPaymentWhoseIntentResponseWasLost(t *testing.T) {
	repo, gw, create := setup()
	ctx := context.Background()

	gw.createErr = errors.New("timeout")
	_, err := create.Execute(ctx, CreatePaymentInput{
		ClientID: 1, Amount: dec("120"), Method: "stripe", IdempotencyKey: "k-lost",
	})
	require.Error(t, err)

	stored, err := repo.GetByIdempotencyKey(ctx, "k-lost")
	require.NoError(t, err)
	require.Equal(t, "failed", stored.Status)
	require.Nil(t, stored.ProviderIntentID)

	gw.event = &domain.Event{
		ID: "evt_9", Type: domain.EventIntentSucceeded, IntentID: "pi_k-lost", PaymentID: stored.ID,
	}
	uc := NewHandleWebhook(repo, gw)
	require.NoError(t, uc.Execute(ctx, nil, "valid"))

	p, err := repo.GetByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", p.Status)
	assert.NotNil(t, p.CompletedAt)
	require.NotNil(t, p.ProviderIntentID)
	assert.Equal(t, "pi_k-lost", *p.ProviderIntentID)

	// redelivery finds it by intent id now
	require.NoError(t, uc.Execute(ctx, nil, "valid"))
	assert.Equal(t, []string{"CREATE", "UPDATE", "UPDATE"}, repo.auditActions())
}

func TestWebhookMetadataForeignPaymentIsIgnored(t *testing.T) {
	repo, gw, create := setup()
	ctx := context.Background()

	out, err := create.Execute(ctx, CreatePaymentInput{
		ClientID: 1, Amount: dec("40"), Method: "stripe", IdempotencyKey: "k-own",
	})
	require.NoError(t, err)

	// intent id differs from the one already attached
	gw.event = &domain.Event{
		ID: "evt_10", Type: domain.EventIntentSucceeded, IntentID: "pi_other", PaymentID: out.Payment.ID,
	}
	require.NoError(t, NewHandleWebhook(repo, gw).Execute(ctx, nil, "valid"))

	p, err := repo.GetByID(ctx, out.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", p.Status)
	assert.Equal(t, "pi_k-own", *p.ProviderIntentID)
}

func TestWebhookFailureAfterCompletionIsIgnored(t *testing.T) {
	repo, gw, create := setup()
	ctx := context.Background()

	out, err := create.Execute(ctx, CreatePaymentInput{
		ClientID: 1, Amount: dec("300"), Method: "stripe", IdempotencyKey: "w2",
	})
	require.NoError(t, err)

	uc := NewHandleWebhook(repo, gw)
	gw.event = &domain.Event{ID: "evt_1", Type: domain.EventIntentSucceeded, IntentID: "pi_w2"}
	require.NoError(t, uc.Execute(ctx, nil, "valid"))

	gw.event = &domain.Event{ID: "evt_2", Type: domain.EventIntentFailed, IntentID: "pi_w2"}
	require.NoError(t, uc.Execute(ctx, nil, "valid"))

	p, err := repo.GetByID(ctx, out.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", p.Status)
}

func TestWebhookBadSignature(t *testing.T) {
	repo, gw, _ := setup()

	err := NewHandleWebhook(repo, gw).Execute(context.Background(), []byte(`{}`), "forged")

	be, ok := httperr.AsBusiness(err)
	require.True(t, ok)
	assert.Equal(t, 400, be.Status)
	assert.Equal(t, "invalid_signature", be.Code)
}

func TestWebhookUnknownIntentAndIgnoredTypes(t *testing.T) {
	repo, gw, _ := setup()
	uc := NewHandleWebhook(repo, gw)

	gw.event = &domain.Event{ID: "evt_3", Type: domain.EventIntentSucceeded, IntentID: "pi_unknown"}
	assert.NoError(t, uc.Execute(context.Background(), nil, "valid"))

	gw.event = &domain.Event{ID: "evt_4", Type: "charge.refunded", IntentID: "pi_unknown"}
	assert.NoError(t, uc.Execute(context.Background(), nil, "valid"))

	assert.Empty(t, repo.auditActions())
}

// ======================================================
// UpdatePayment
// ======================================================

func TestUpdateCompletedPaymentIsImmutable(t *testing.T) {
	repo, _, create := setup()
	ctx := context.Background()

	out, err := create.Execute(ctx, CreatePaymentInput{ClientID: 1, Amount: dec("40"), Method: "cash"})
	require.NoError(t, err)

	tips := dec("5")
	_, err = NewUpdatePayment(repo).Execute(ctx, out.Payment.ID, UpdatePaymentInput{Tips: &tips, ActorID: 7})
	assert.True(t, httperr.IsBusiness(err, "payment_immutable"))
}

func TestUpdatePendingPayment(t *testing.T) {
	repo, _, create := setup()
	ctx := context.Background()

	out, err := create.Execute(ctx, CreatePaymentInput{
		ClientID: 1, Amount: dec("40"), Method: "stripe", IdempotencyKey: "u1",
	})
	require.NoError(t, err)
	uc := NewUpdatePayment(repo)

	completed := "completed"
	_, err = uc.Execute(ctx, out.Payment.ID, UpdatePaymentInput{Status: &completed, ActorID: 7})
	assert.True(t, httperr.IsBusiness(err, "card_payment_requires_confirmation"))

	tips := dec("6.50")
	canceled := "canceled"
	p, err := uc.Execute(ctx, out.Payment.ID, UpdatePaymentInput{Tips: &tips, Status: &canceled, ActorID: 7})
	require.NoError(t, err)

	assert.Equal(t, "canceled", p.Status)
	assert.True(t, tips.Equal(p.Tips))
	// commission stays as computed at creation
	assert.True(t, dec("4").Equal(p.Commission))

	_, err = uc.Execute(ctx, out.Payment.ID, UpdatePaymentInput{Status: &completed, ActorID: 7})
	assert.True(t, httperr.IsBusiness(err, "invalid_status_transition"))
}

// ======================================================
// helpers
// ======================================================

type heldLocker struct{}

func (heldLocker) Acquire(context.Context, string, time.Duration) (func(), error) {
	return nil, lock.ErrLocked
}

func ptr[T any](v T) *T {
	return &v
}
