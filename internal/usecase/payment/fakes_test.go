package payment

import (
	"context"
	"errors"
	"sync"

	"github.com/BruksfildServices01/medspa-api/internal/audit"
	domain "github.com/BruksfildServices01/medspa-api/internal/domain/payment"
	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/models"
)

// ======================================================
// In-memory repository
// ======================================================

type fakeRepo struct {
	mu       sync.Mutex
	nextID   uint
	payments map[uint]models.Payment
	audits   []audit.Entry

	clients map[uint]bool
	// appointment id to owning client id
	appointments map[uint]uint
	packages     map[uint]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		payments:     map[uint]models.Payment{},
		clients:      map[uint]bool{1: true, 2: true},
		appointments: map[uint]uint{10: 1, 20: 2},
		packages:     map[uint]bool{},
	}
}

func (r *fakeRepo) Transaction(ctx context.Context, fn func(tx domain.TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := make(map[uint]models.Payment, len(r.payments))
	for k, v := range r.payments {
		saved[k] = v
	}
	savedAudits := len(r.audits)
	savedID := r.nextID

	if err := fn(&fakeTx{r: r}); err != nil {
		r.payments = saved
		r.audits = r.audits[:savedAudits]
		r.nextID = savedID
		return err
	}
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uint) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, httperr.ErrNotFound("payment_not_found")
	}
	return &p, nil
}

func (r *fakeRepo) GetByIdempotencyKey(_ context.Context, key string) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.IdempotencyKey == key {
			p := p
			return &p, nil
		}
	}
	return nil, httperr.ErrNotFound("payment_not_found")
}

func (r *fakeRepo) List(context.Context, domain.ListFilter) ([]models.Payment, int64, error) {
	return nil, 0, errors.New("not used")
}

func (r *fakeRepo) ClientExists(_ context.Context, id uint) (bool, error) {
	return r.clients[id], nil
}

func (r *fakeRepo) AppointmentClientID(_ context.Context, id uint) (uint, bool, error) {
	owner, ok := r.appointments[id]
	return owner, ok, nil
}

func (r *fakeRepo) PackageExists(_ context.Context, id uint) (bool, error) {
	return r.packages[id], nil
}

func (r *fakeRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payments)
}

func (r *fakeRepo) auditActions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.audits))
	for _, a := range r.audits {
		out = append(out, a.Action)
	}
	return out
}

// fakeTx runs with fakeRepo.mu held.
type fakeTx struct {
	r *fakeRepo
}

func (t *fakeTx) GetByIDForUpdate(_ context.Context, id uint) (*models.Payment, error) {
	p, ok := t.r.payments[id]
	if !ok {
		return nil, httperr.ErrNotFound("payment_not_found")
	}
	return &p, nil
}

func (t *fakeTx) GetByIntentIDForUpdate(_ context.Context, intentID string) (*models.Payment, error) {
	for _, p := range t.r.payments {
		if p.ProviderIntentID != nil && *p.ProviderIntentID == intentID {
			p := p
			return &p, nil
		}
	}
	return nil, httperr.ErrNotFound("payment_not_found")
}

func (t *fakeTx) Create(_ context.Context, p *models.Payment) error {
	for _, existing := range t.r.payments {
		if existing.IdempotencyKey == p.IdempotencyKey {
			return domain.ErrDuplicateKey
		}
	}
	t.r.nextID++
	p.ID = t.r.nextID
	t.r.payments[p.ID] = *p
	return nil
}

func (t *fakeTx) Update(_ context.Context, p *models.Payment) error {
	t.r.payments[p.ID] = *p
	return nil
}

func (t *fakeTx) Audit(_ context.Context, e audit.Entry) error {
	t.r.audits = append(t.r.audits, e)
	return nil
}

// ======================================================
// Gateway stub
// ======================================================

type fakeGateway struct {
	mu        sync.Mutex
	createErr error
	intents   map[string]*domain.Intent
	requests  []domain.IntentRequest
	event     *domain.Event
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{intents: map[string]*domain.Intent{}}
}

func (g *fakeGateway) CreateIntent(_ context.Context, req domain.IntentRequest) (*domain.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.requests = append(g.requests, req)
	if g.createErr != nil {
		return nil, g.createErr
	}

	// same key, same intent
	id := "pi_" + req.IdempotencyKey
	if in, ok := g.intents[id]; ok {
		return in, nil
	}
	in := &domain.Intent{ID: id, ClientSecret: id + "_secret", Status: "requires_payment_method"}
	g.intents[id] = in
	return in, nil
}

func (g *fakeGateway) GetIntent(_ context.Context, id string) (*domain.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	in, ok := g.intents[id]
	if !ok {
		return nil, errors.New("no such intent")
	}
	return in, nil
}

func (g *fakeGateway) ParseWebhook(payload []byte, signature string) (*domain.Event, error) {
	if signature != "valid" {
		return nil, domain.ErrInvalidSignature
	}
	return g.event, nil
}

func (g *fakeGateway) setIntentStatus(id, status string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.intents[id].Status = status
}
