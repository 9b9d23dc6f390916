package inventory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BruksfildServices01/medspa-api/internal/audit"
	domain "github.com/BruksfildServices01/medspa-api/internal/domain/inventory"
	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/infra/mailer"
	"github.com/BruksfildServices01/medspa-api/internal/models"
)

// fakeRepo serializes transactions with one mutex, standing in for the row lock.
type fakeRepo struct {
	mu            sync.Mutex
	products      map[uint]models.Product
	adjustments   []models.StockAdjustment
	notifications map[uint]*models.StockNotification
	nextNotif     uint
	audits        []audit.Entry
}

func newFakeRepo(products ...models.Product) *fakeRepo {
	r := &fakeRepo{
		products:      map[uint]models.Product{},
		notifications: map[uint]*models.StockNotification{},
	}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeRepo) Transaction(ctx context.Context, fn func(tx domain.TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	savedProducts := make(map[uint]models.Product, len(r.products))
	for k, v := range r.products {
		savedProducts[k] = v
	}
	savedAdj := len(r.adjustments)

	if err := fn(&fakeTx{r: r}); err != nil {
		r.products = savedProducts
		r.adjustments = r.adjustments[:savedAdj]
		return err
	}
	return nil
}

func (r *fakeRepo) ListLowStockProducts(context.Context) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Product
	for _, p := range r.products {
		if p.Active && p.IsLowStock() {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRepo) ListUnalerted(context.Context) ([]models.StockNotification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.StockNotification
	for _, n := range r.notifications {
		if n.Status == models.StockNotificationOpen && n.AlertedAt == nil {
			cp := *n
			cp.Product = r.products[n.ProductID]
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRepo) MarkAlerted(_ context.Context, ids []uint, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		r.notifications[id].AlertedAt = &at
	}
	return nil
}

func (r *fakeRepo) product(id uint) models.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[id]
}

func (r *fakeRepo) openFor(productID uint) []*models.StockNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.StockNotification
	for _, n := range r.notifications {
		if n.ProductID == productID && n.Status == models.StockNotificationOpen {
			out = append(out, n)
		}
	}
	return out
}

type fakeTx struct {
	r *fakeRepo
}

func (t *fakeTx) GetProductForUpdate(_ context.Context, id uint) (*models.Product, error) {
	p, ok := t.r.products[id]
	if !ok {
		return nil, httperr.ErrNotFound("product_not_found")
	}
	return &p, nil
}

func (t *fakeTx) UpdateProductStock(_ context.Context, id uint, stock int) error {
	p := t.r.products[id]
	p.CurrentStock = stock
	t.r.products[id] = p
	return nil
}

func (t *fakeTx) CreateAdjustment(_ context.Context, adj *models.StockAdjustment) error {
	adj.ID = uint(len(t.r.adjustments) + 1)
	t.r.adjustments = append(t.r.adjustments, *adj)
	return nil
}

func (t *fakeTx) EnsureOpenNotification(_ context.Context, p *models.Product) (*models.StockNotification, bool, error) {
	for _, n := range t.r.notifications {
		if n.ProductID == p.ID && n.Status == models.StockNotificationOpen {
			n.StockLevel = p.CurrentStock
			return n, false, nil
		}
	}
	t.r.nextNotif++
	n := &models.StockNotification{
		ID:         t.r.nextNotif,
		ProductID:  p.ID,
		StockLevel: p.CurrentStock,
		Threshold:  p.LowStockThreshold,
		Message:    domain.LowStockMessage(*p),
		Status:     models.StockNotificationOpen,
	}
	t.r.notifications[n.ID] = n
	return n, true, nil
}

func (t *fakeTx) ResolveOpenNotifications(_ context.Context, productID uint) (int64, error) {
	var n int64
	for _, notif := range t.r.notifications {
		if notif.ProductID == productID && notif.Status != models.StockNotificationResolved {
			notif.Status = models.StockNotificationResolved
			n++
		}
	}
	return n, nil
}

func (t *fakeTx) Audit(_ context.Context, e audit.Entry) error {
	t.r.audits = append(t.r.audits, e)
	return nil
}

type recordingMailer struct {
	sent []mailer.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}
