package inventory

import (
	"context"
	"time"

	"github.com/BruksfildServices01/medspa-api/internal/audit"
	"github.com/BruksfildServices01/medspa-api/internal/models"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(tx TxRepository) error) error

	ListLowStockProducts(ctx context.Context) ([]models.Product, error)

	// ListUnalerted returns open notifications no alert was sent for yet.
	ListUnalerted(ctx context.Context) ([]models.StockNotification, error)
	MarkAlerted(ctx context.Context, ids []uint, at time.Time) error
}

type TxRepository interface {
	// GetProductForUpdate locks the product row until the transaction ends.
	GetProductForUpdate(ctx context.Context, id uint) (*models.Product, error)
	UpdateProductStock(ctx context.Context, id uint, stock int) error
	CreateAdjustment(ctx context.Context, adj *models.StockAdjustment) error

	// EnsureOpenNotification returns the product's open notification,
	// creating it when none exists. created reports which happened.
	EnsureOpenNotification(ctx context.Context, p *models.Product) (n *models.StockNotification, created bool, err error)
	ResolveOpenNotifications(ctx context.Context, productID uint) (int64, error)

	Audit(ctx context.Context, e audit.Entry) error
}
