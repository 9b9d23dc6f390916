package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Package is a prepaid bundle of sessions.
type Package struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name         string          `gorm:"size:100;not null" json:"name"`
	Description  string          `gorm:"size:255" json:"description"`
	ServiceID    *uint           `json:"service_id"`
	Service      *Service        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"service,omitempty"`
	SessionCount int             `gorm:"default:1" json:"session_count"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Active       bool            `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
