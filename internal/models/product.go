package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name        string          `gorm:"size:100;not null" json:"name"`
	SKU         string          `gorm:"column:sku;size:64;uniqueIndex" json:"sku"`
	Description string          `gorm:"size:255" json:"description"`
	Category    string          `gorm:"size:50" json:"category"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	Cost        decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"cost"`

	CurrentStock      int `gorm:"not null;default:0" json:"current_stock"`
	LowStockThreshold int `gorm:"not null;default:5" json:"low_stock_threshold"`

	LocationID *uint `json:"location_id"`
	Active     bool  `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p Product) IsLowStock() bool {
	return p.CurrentStock <= p.LowStockThreshold
}
