package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog is append-only.
type AuditLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserID    *uint  `gorm:"index" json:"user_id"`
	Action    string `gorm:"size:50;not null;index" json:"action"`
	TableName string `gorm:"column:table_name;size:50;index" json:"table_name"`
	RecordID  *uint  `json:"record_id"`

	NewData datatypes.JSON `gorm:"type:jsonb" json:"new_data"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
