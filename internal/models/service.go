package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Service struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name            string          `gorm:"size:100;not null" json:"name"`
	Description     string          `gorm:"size:255" json:"description"`
	Category        string          `gorm:"size:50" json:"category"`
	DurationMin     int             `json:"duration_min"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	RequiresConsent bool            `gorm:"default:false" json:"requires_consent"`
	Active          bool            `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
