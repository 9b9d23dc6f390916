package models

import "time"

const (
	StockNotificationOpen         = "open"
	StockNotificationAcknowledged = "acknowledged"
	StockNotificationResolved     = "resolved"
)

type StockNotification struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ProductID uint    `gorm:"index;not null" json:"product_id"`
	Product   Product `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"product"`

	StockLevel int    `json:"stock_level"`
	Threshold  int    `json:"threshold"`
	Message    string `gorm:"size:255" json:"message"`
	Status     string `gorm:"size:20;not null;default:'open';index" json:"status"`

	AcknowledgedBy *uint      `json:"acknowledged_by"`
	AcknowledgedAt *time.Time `json:"acknowledged_at"`
	ResolvedAt     *time.Time `json:"resolved_at"`
	AlertedAt      *time.Time `json:"alerted_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
