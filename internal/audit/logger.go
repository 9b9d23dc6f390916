package audit

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/medspa-api/internal/models"
)

// Entry is one audit row. Data is stored as the new_data JSON snapshot.
type Entry struct {
	UserID   *uint
	Action   string
	Table    string
	RecordID *uint
	Data     any
}

type Logger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

// WithTx binds the logger to tx so the audit row commits with the change it describes.
func (l *Logger) WithTx(tx *gorm.DB) *Logger {
	return &Logger{db: tx}
}

func (l *Logger) Log(ctx context.Context, e Entry) error {
	return l.db.WithContext(ctx).Create(BuildRow(e)).Error
}

// BuildRow converts an entry into its persisted form. Unmarshalable data is stored as null.
func BuildRow(e Entry) *models.AuditLog {
	row := &models.AuditLog{
		UserID:    e.UserID,
		Action:    e.Action,
		TableName: e.Table,
		RecordID:  e.RecordID,
	}

	if e.Data != nil {
		if b, err := json.Marshal(e.Data); err == nil {
			row.NewData = datatypes.JSON(b)
		}
	}

	return row
}
