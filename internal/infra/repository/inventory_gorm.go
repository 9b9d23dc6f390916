package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/medspa-api/internal/audit"
	domain "github.com/BruksfildServices01/medspa-api/internal/domain/inventory"
	"github.com/BruksfildServices01/medspa-api/internal/models"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

func (r *InventoryGormRepository) Transaction(
	ctx context.Context,
	fn func(tx domain.TxRepository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&inventoryTx{db: tx, audit: audit.New(tx)})
	})
}

func (r *InventoryGormRepository) ListLowStockProducts(
	ctx context.Context,
) ([]models.Product, error) {

	var products []models.Product
	if err := r.db.WithContext(ctx).
		Where("active = ? AND current_stock <= low_stock_threshold", true).
		Order("id ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *InventoryGormRepository) ListUnalerted(
	ctx context.Context,
) ([]models.StockNotification, error) {

	var list []models.StockNotification
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Where("status = ? AND alerted_at IS NULL", models.StockNotificationOpen).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *InventoryGormRepository) MarkAlerted(
	ctx context.Context,
	ids []uint,
	at time.Time,
) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.StockNotification{}).
		Where("id IN ?", ids).
		Update("alerted_at", at).Error
}

// --------------------------------------------------
// Transaction scope
// --------------------------------------------------

type inventoryTx struct {
	db    *gorm.DB
	audit *audit.Logger
}

func (t *inventoryTx) GetProductForUpdate(
	ctx context.Context,
	id uint,
) (*models.Product, error) {

	var p models.Product
	if err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, id).Error; err != nil {
		return nil, notFound(err, "product_not_found")
	}
	return &p, nil
}

func (t *inventoryTx) UpdateProductStock(
	ctx context.Context,
	id uint,
	stock int,
) error {
	return t.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("current_stock", stock).Error
}

func (t *inventoryTx) CreateAdjustment(
	ctx context.Context,
	adj *models.StockAdjustment,
) error {
	return t.db.WithContext(ctx).Omit(clause.Associations).Create(adj).Error
}

func (t *inventoryTx) EnsureOpenNotification(
	ctx context.Context,
	p *models.Product,
) (*models.StockNotification, bool, error) {

	var n models.StockNotification
	err := t.db.WithContext(ctx).
		Where("product_id = ? AND status = ?", p.ID, models.StockNotificationOpen).
		First(&n).Error

	if err == nil {
		if n.StockLevel != p.CurrentStock {
			n.StockLevel = p.CurrentStock
			if err := t.db.WithContext(ctx).
				Model(&n).
				Update("stock_level", p.CurrentStock).Error; err != nil {
				return nil, false, err
			}
		}
		return &n, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	n = models.StockNotification{
		ProductID:  p.ID,
		StockLevel: p.CurrentStock,
		Threshold:  p.LowStockThreshold,
		Message:    domain.LowStockMessage(*p),
		Status:     models.StockNotificationOpen,
	}
	if err := t.db.WithContext(ctx).Omit(clause.Associations).Create(&n).Error; err != nil {
		return nil, false, err
	}

	return &n, true, nil
}

func (t *inventoryTx) ResolveOpenNotifications(
	ctx context.Context,
	productID uint,
) (int64, error) {

	now := time.Now()
	res := t.db.WithContext(ctx).
		Model(&models.StockNotification{}).
		Where("product_id = ? AND status IN ?", productID, []string{
			models.StockNotificationOpen,
			models.StockNotificationAcknowledged,
		}).
		Updates(map[string]any{
			"status":      models.StockNotificationResolved,
			"resolved_at": now,
		})

	return res.RowsAffected, res.Error
}

func (t *inventoryTx) Audit(ctx context.Context, e audit.Entry) error {
	return t.audit.Log(ctx, e)
}

var (
	_ domain.Repository   = (*InventoryGormRepository)(nil)
	_ domain.TxRepository = (*inventoryTx)(nil)
)
