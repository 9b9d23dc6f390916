package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/medspa-api/internal/config"
	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/httpresp"
	"github.com/BruksfildServices01/medspa-api/internal/middleware"
	"github.com/BruksfildServices01/medspa-api/internal/models"
	ucInventory "github.com/BruksfildServices01/medspa-api/internal/usecase/inventory"
)

// StockHandler lists adjustments across products and manages low-stock
// notifications.
type StockHandler struct {
	db    *gorm.DB
	tz    string
	sweep *ucInventory.SweepLowStock
}

func NewStockHandler(db *gorm.DB, cfg *config.Config, sweep *ucInventory.SweepLowStock) *StockHandler {
	return &StockHandler{db: db, tz: cfg.Timezone, sweep: sweep}
}

func (h *StockHandler) ListAdjustments(c *gin.Context) {
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

	q := h.db.WithContext(c.Request.Context()).Model(&models.StockAdjustment{})
	if pid := queryUint(c, "product_id"); pid != nil {
		q = q.Where("product_id = ?", *pid)
	}
	if t := c.Query("adjustment_type"); t != "" {
		q = q.Where("adjustment_type = ?", t)
	}
	if uid := queryUint(c, "adjusted_by"); uid != nil {
		q = q.Where("adjusted_by = ?", *uid)
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

	var rows []models.StockAdjustment
	if err := q.
		Preload("Product").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {

		httperr.FromError(c, err)
		return
	}

	httpresp.Paged(c, rows, total, page, limit)
}

func (h *StockHandler) ListNotifications(c *gin.Context) {
	page, limit, offset := httpresp.Pagination(c)

	q := h.db.WithContext(c.Request.Context()).Model(&models.StockNotification{})
	switch status := c.Query("status"); status {
	case "":
		q = q.Where("status <> ?", models.StockNotificationResolved)
	case "all":
	default:
		q = q.Where("status = ?", status)
	}
	if pid := queryUint(c, "product_id"); pid != nil {
		q = q.Where("product_id = ?", *pid)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	var rows []models.StockNotification
	if err := q.
		Preload("Product").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {

		httperr.FromError(c, err)
		return
	}

	httpresp.Paged(c, rows, total, page, limit)
}

func (h *StockHandler) Acknowledge(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	n, ok := findByID[models.StockNotification](c, h.db, id, "notification_not_found")
	if !ok {
		return
	}
	if n.Status != models.StockNotificationOpen {
		httperr.FromError(c, httperr.ErrBusiness("notification_not_open"))
		return
	}

	actor := middleware.Actor(c)
	now := time.Now()

	ctx := c.Request.Context()
	res := h.db.WithContext(ctx).
		Model(&models.StockNotification{}).
		Where("id = ? AND status = ?", id, models.StockNotificationOpen).
		Updates(map[string]any{
			"status":          models.StockNotificationAcknowledged,
			"acknowledged_by": actor.UserID,
			"acknowledged_at": now,
		})
	if res.Error != nil {
		httperr.FromError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		httperr.FromError(c, httperr.ErrBusiness("notification_not_open"))
		return
	}

	n.Status = models.StockNotificationAcknowledged
	n.AcknowledgedBy = &actor.UserID
	n.AcknowledgedAt = &now

	writeAudit(ctx, h.db, actor.UserID, "UPDATE", "stock_notifications", n.ID,
		map[string]any{"status": n.Status})
	httpresp.Updated(c, "Notification acknowledged.", n)
}

// Sweep runs the low-stock sweep on demand. The same use case runs on a schedule.
func (h *StockHandler) Sweep(c *gin.Context) {
	res, err := h.sweep.Execute(c.Request.Context())
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, res)
}
