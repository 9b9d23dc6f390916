package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Payment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ClientID uint   `gorm:"index" json:"client_id"`
	Client   Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"client"`

	AppointmentID *uint        `json:"appointment_id"`
	Appointment   *Appointment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"appointment,omitempty"`

	PackageID *uint    `json:"package_id"`
	Package   *Package `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"package,omitempty"`

	LocationID *uint `gorm:"index" json:"location_id"`

	Amount     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Tips       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"tips"`
	Commission decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"commission"`
	Currency   string          `gorm:"size:3;default:'usd'" json:"currency"`

	PaymentMethod string `gorm:"size:20;not null" json:"payment_method"`
	Status        string `gorm:"size:20;not null;index" json:"status"`

	ProviderIntentID *string `gorm:"size:255;uniqueIndex" json:"provider_intent_id"`
	IdempotencyKey   string  `gorm:"size:64;uniqueIndex;not null" json:"idempotency_key"`

	CreatedBy   *uint      `json:"created_by"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
