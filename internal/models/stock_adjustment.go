package models

import "time"

// StockAdjustment is the immutable audit row written with every stock change.
type StockAdjustment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ProductID uint     `gorm:"index;not null" json:"product_id"`
	Product   *Product `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"product,omitempty"`

	AdjustmentType string `gorm:"size:10;not null" json:"adjustment_type"`
	Quantity       int    `gorm:"not null" json:"quantity"`
	PreviousStock  int    `gorm:"not null" json:"previous_stock"`
	NewStock       int    `gorm:"not null" json:"new_stock"`
	Reason         string `gorm:"size:255" json:"reason"`
	Notes          string `gorm:"type:text" json:"notes"`

	AdjustedBy uint `gorm:"not null" json:"adjusted_by"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
