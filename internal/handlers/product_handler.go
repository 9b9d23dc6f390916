package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/medspa-api/internal/db"
	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/httpresp"
	"github.com/BruksfildServices01/medspa-api/internal/middleware"
	"github.com/BruksfildServices01/medspa-api/internal/models"
	ucInventory "github.com/BruksfildServices01/medspa-api/internal/usecase/inventory"
)

// ======================================================
// HANDLER
// ======================================================

// ProductHandler serves retail and back-bar products. Stock is never written
// here directly; it only changes through AdjustStock.
type ProductHandler struct {
	db          *gorm.DB
	adjustStock *ucInventory.AdjustStock
}

func NewProductHandler(db *gorm.DB, adjustStock *ucInventory.AdjustStock) *ProductHandler {
	return &ProductHandler{db: db, adjustStock: adjustStock}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateProductRequest struct {
	Name              string          `json:"name" binding:"required,max=100"`
	SKU               string          `json:"sku" binding:"required,max=64"`
	Description       string          `json:"description" binding:"max=255"`
	Category          string          `json:"category" binding:"max=50"`
	Price             decimal.Decimal `json:"price"`
	Cost              decimal.Decimal `json:"cost"`
	CurrentStock      int             `json:"current_stock" binding:"min=0"`
	LowStockThreshold *int            `json:"low_stock_threshold" binding:"omitempty,min=0"`
	LocationID        *uint           `json:"location_id"`
}

type UpdateProductRequest struct {
	Name              *string          `json:"name" binding:"omitempty,max=100"`
	SKU               *string          `json:"sku" binding:"omitempty,max=64"`
	Description       *string          `json:"description" binding:"omitempty,max=255"`
	Category          *string          `json:"category" binding:"omitempty,max=50"`
	Price             *decimal.Decimal `json:"price"`
	Cost              *decimal.Decimal `json:"cost"`
	LowStockThreshold *int             `json:"low_stock_threshold" binding:"omitempty,min=0"`
	LocationID        *uint            `json:"location_id"`
	Active            *bool            `json:"active"`
}

type AdjustStockRequest struct {
	AdjustmentType string `json:"adjustment_type" binding:"required,oneof=add remove set"`
	Quantity       *int   `json:"quantity" binding:"required,min=0"`
	Reason         string `json:"reason" binding:"max=255"`
	Notes          string `json:"notes"`
}

// ======================================================
// LIST / GET
// ======================================================

func (h *ProductHandler) List(c *gin.Context) {
	page, limit, offset := httpresp.Pagination(c)

	q := h.db.WithContext(c.Request.Context()).Model(&models.Product{})

	if category := strings.ToLower(strings.TrimSpace(c.Query("category"))); category != "" {
		q = q.Where("LOWER(category) = ?", category)
	}
	if search := strings.ToLower(strings.TrimSpace(c.Query("query"))); search != "" {
		like := "%" + search + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", like, like)
	}
	if loc := queryUint(c, "location_id"); loc != nil {
		q = q.Where("location_id = ?", *loc)
	}
	if c.Query("low_stock") == "true" {
		q = q.Where("current_stock <= low_stock_threshold")
	}
	switch c.Query("active") {
	case "true":
		q = q.Where("active = ?", true)
	case "false":
		q = q.Where("active = ?", false)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	var products []models.Product
	if err := q.Order("name ASC").Limit(limit).Offset(offset).Find(&products).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Paged(c, products, total, page, limit)
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, ok := findByID[models.Product](c, h.db, id, "product_not_found")
	if !ok {
		return
	}
	httpresp.OK(c, p)
}

// ======================================================
// CREATE / UPDATE / DELETE
// ======================================================

func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Price.IsNegative() || req.Cost.IsNegative() {
		httperr.FromError(c, httperr.ErrBusiness("invalid_price"))
		return
	}

	p := models.Product{
		Name:              req.Name,
		SKU:               strings.ToUpper(strings.TrimSpace(req.SKU)),
		Description:       req.Description,
		Category:          strings.ToLower(req.Category),
		Price:             req.Price,
		Cost:              req.Cost,
		CurrentStock:      req.CurrentStock,
		LowStockThreshold: 5,
		LocationID:        req.LocationID,
		Active:            true,
	}
	if req.LowStockThreshold != nil {
		p.LowStockThreshold = *req.LowStockThreshold
	}

	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Create(&p).Error; err != nil {
		if db.IsUniqueViolation(err) {
			httperr.Conflict(c, "sku_already_exists", "A product with this SKU already exists.")
			return
		}
		httperr.FromError(c, err)
		return
	}

	writeAudit(ctx, h.db, middleware.Actor(c).UserID, "CREATE", "products", p.ID, p)
	httpresp.Created(c, "Product created.", p)
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	p, ok := findByID[models.Product](c, h.db, id, "product_not_found")
	if !ok {
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.SKU != nil {
		updates["sku"] = strings.ToUpper(strings.TrimSpace(*req.SKU))
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = strings.ToLower(*req.Category)
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			httperr.FromError(c, httperr.ErrBusiness("invalid_price"))
			return
		}
		updates["price"] = *req.Price
	}
	if req.Cost != nil {
		if req.Cost.IsNegative() {
			httperr.FromError(c, httperr.ErrBusiness("invalid_price"))
			return
		}
		updates["cost"] = *req.Cost
	}
	if req.LowStockThreshold != nil {
		updates["low_stock_threshold"] = *req.LowStockThreshold
	}
	if req.LocationID != nil {
		updates["location_id"] = *req.LocationID
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if len(updates) == 0 {
		httpresp.Updated(c, "Nothing to update.", p)
		return
	}

	// column updates leave current_stock to concurrent adjustments
	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Model(p).Updates(updates).Error; err != nil {
		if db.IsUniqueViolation(err) {
			httperr.Conflict(c, "sku_already_exists", "A product with this SKU already exists.")
			return
		}
		httperr.FromError(c, err)
		return
	}

	writeAudit(ctx, h.db, middleware.Actor(c).UserID, "UPDATE", "products", p.ID, updates)

	p, ok = findByID[models.Product](c, h.db, id, "product_not_found")
	if !ok {
		return
	}
	httpresp.Updated(c, "Product updated.", p)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !deleteByID(c, h.db, &models.Product{}, id, "product_not_found") {
		return
	}

	writeAudit(c.Request.Context(), h.db, middleware.Actor(c).UserID, "DELETE", "products", id, nil)
	httpresp.NoContent(c)
}

// ======================================================
// STOCK
// ======================================================

func (h *ProductHandler) AdjustStock(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req AdjustStockRequest
	if !bindJSON(c, &req) {
		return
	}

	out, err := h.adjustStock.Execute(c.Request.Context(), ucInventory.AdjustStockInput{
		ProductID: id,
		Type:      req.AdjustmentType,
		Quantity:  *req.Quantity,
		Reason:    req.Reason,
		Notes:     req.Notes,
		ActorID:   middleware.Actor(c).UserID,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Created(c, "Stock adjusted.", out)
}

// Adjustments is the stock history of one product, newest first.
func (h *ProductHandler) Adjustments(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, ok := findByID[models.Product](c, h.db, id, "product_not_found"); !ok {
		return
	}

	page, limit, offset := httpresp.Pagination(c)
	q := h.db.WithContext(c.Request.Context()).
		Model(&models.StockAdjustment{}).
		Where("product_id = ?", id)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	var rows []models.StockAdjustment
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Paged(c, rows, total, page, limit)
}
