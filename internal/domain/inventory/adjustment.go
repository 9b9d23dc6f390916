package inventory

import (
	"fmt"

	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/models"
)

// ===============================
// Adjustment Type
// ===============================

type AdjustmentType string

const (
	AdjustAdd    AdjustmentType = "add"
	AdjustRemove AdjustmentType = "remove"
	AdjustSet    AdjustmentType = "set"
)

func ParseAdjustmentType(s string) (AdjustmentType, error) {
	switch AdjustmentType(s) {
	case AdjustAdd, AdjustRemove, AdjustSet:
		return AdjustmentType(s), nil
	}
	return "", httperr.ErrBusiness("invalid_adjustment_type")
}

// NewStock applies an adjustment to prev. Removing more than is on hand
// floors at zero.
func NewStock(t AdjustmentType, prev, qty int) (int, error) {
	if qty < 0 {
		return 0, httperr.ErrBusiness("invalid_quantity")
	}

	switch t {
	case AdjustAdd:
		return prev + qty, nil
	case AdjustRemove:
		if qty > prev {
			return 0, nil
		}
		return prev - qty, nil
	case AdjustSet:
		return qty, nil
	}
	return 0, httperr.ErrBusiness("invalid_adjustment_type")
}

// ===============================
// Low stock
// ===============================

// LowStockMessage is the text stored on notifications and sent in alerts.
func LowStockMessage(p models.Product) string {
	if p.CurrentStock == 0 {
		return fmt.Sprintf("%s (%s) is out of stock", p.Name, p.SKU)
	}
	return fmt.Sprintf("%s (%s) is low on stock: %d left, threshold %d",
		p.Name, p.SKU, p.CurrentStock, p.LowStockThreshold)
}
