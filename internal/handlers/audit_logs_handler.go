package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/medspa-api/internal/config"
	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/httpresp"
	"github.com/BruksfildServices01/medspa-api/internal/models"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	db *gorm.DB
	tz string
}

func NewAuditLogsHandler(db *gorm.DB, cfg *config.Config) *AuditLogsHandler {
	return &AuditLogsHandler{db: db, tz: cfg.Timezone}
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	page, limit, offset := httpresp.Pagination(c)

	from, err := parseDate(h.tz, c.Query("from"))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	to, err := parseDate(h.tz, c.Query("to"))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	q := h.db.WithContext(c.Request.Context()).Model(&models.AuditLog{})

	// --------------------------------------------------
	// Optional filters
	// --------------------------------------------------

	if action := c.Query("action"); action != "" {
		q = q.Where("action = ?", action)
	}
	if table := c.Query("table_name"); table != "" {
		q = q.Where("table_name = ?", table)
	}
	if uid := queryUint(c, "user_id"); uid != nil {
		q = q.Where("user_id = ?", *uid)
	}
	if rid := queryUint(c, "record_id"); rid != nil {
		q = q.Where("record_id = ?", *rid)
	}
	if from != nil {
		q = q.Where("created_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("created_at < ?", to.AddDate(0, 0, 1))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	var logs []models.AuditLog
	if err := q.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error; err != nil {

		httperr.FromError(c, err)
		return
	}

	httpresp.Paged(c, logs, total, page, limit)
}
