package inventory

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/BruksfildServices01/medspa-api/internal/audit"
	domain "github.com/BruksfildServices01/medspa-api/internal/domain/inventory"
	"github.com/BruksfildServices01/medspa-api/internal/models"
)

var tracer = otel.Tracer("medspa-api/usecase/inventory")

// ======================================================
// INPUT / OUTPUT
// ======================================================

type AdjustStockInput struct {
	ProductID uint
	Type      string
	Quantity  int
	Reason    string
	Notes     string
	ActorID   uint
}

type AdjustStockOutput struct {
	Adjustment   *models.StockAdjustment   `json:"adjustment"`
	Product      *models.Product           `json:"product"`
	Notification *models.StockNotification `json:"notification,omitempty"`
}

// ======================================================
// USE CASE
// ======================================================

// AdjustStock changes a product's stock. The product row stays locked from
// read to write, so concurrent adjustments apply one after another.
type AdjustStock struct {
	repo domain.Repository
}

func NewAdjustStock(repo domain.Repository) *AdjustStock {
	return &AdjustStock{repo: repo}
}

func (uc *AdjustStock) Execute(
	ctx context.Context,
	in AdjustStockInput,
) (*AdjustStockOutput, error) {

	ctx, span := tracer.Start(ctx, "AdjustStock")
	defer span.End()
	span.SetAttributes(
		attribute.Int("product.id", int(in.ProductID)),
		attribute.String("adjustment.type", in.Type),
	)

	typ, err := domain.ParseAdjustmentType(in.Type)
	if err != nil {
		return nil, err
	}

	var out AdjustStockOutput
	err = uc.repo.Transaction(ctx, func(tx domain.TxRepository) error {
		p, err := tx.GetProductForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}

		prev := p.CurrentStock
		next, err := domain.NewStock(typ, prev, in.Quantity)
		if err != nil {
			return err
		}

		if err := tx.UpdateProductStock(ctx, p.ID, next); err != nil {
			return err
		}
		p.CurrentStock = next

		adj := &models.StockAdjustment{
			ProductID:      p.ID,
			AdjustmentType: string(typ),
			Quantity:       in.Quantity,
			PreviousStock:  prev,
			NewStock:       next,
			Reason:         strings.TrimSpace(in.Reason),
			Notes:          in.Notes,
			AdjustedBy:     in.ActorID,
		}
		if err := tx.CreateAdjustment(ctx, adj); err != nil {
			return err
		}

		if err := tx.Audit(ctx, audit.Entry{
			UserID:   &in.ActorID,
			Action:   "CREATE",
			Table:    "stock_adjustments",
			RecordID: &adj.ID,
			Data: map[string]any{
				"product_id":      p.ID,
				"adjustment_type": adj.AdjustmentType,
				"quantity":        adj.Quantity,
				"previous_stock":  prev,
				"new_stock":       next,
			},
		}); err != nil {
			return err
		}

		if p.IsLowStock() {
			n, _, err := tx.EnsureOpenNotification(ctx, p)
			if err != nil {
				return err
			}
			out.Notification = n
		} else if _, err := tx.ResolveOpenNotifications(ctx, p.ID); err != nil {
			return err
		}

		out.Adjustment = adj
		out.Product = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}
