package handlers

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/medspa-api/internal/audit"
)

// writeAudit records a CRUD change made directly by a handler. Failures are
// logged and never fail the request.
func writeAudit(
	ctx context.Context,
	db *gorm.DB,
	userID uint,
	action string,
	table string,
	recordID uint,
	data any,
) {
	err := audit.New(db).Log(ctx, audit.Entry{
		UserID:   &userID,
		Action:   action,
		Table:    table,
		RecordID: &recordID,
		Data:     data,
	})
	if err != nil {
		zap.L().Warn("audit write failed",
			zap.String("table", table),
			zap.Uint("record_id", recordID),
			zap.Error(err),
		)
	}
}
