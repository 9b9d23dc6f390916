package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/httpresp"
	"github.com/BruksfildServices01/medspa-api/internal/middleware"
	"github.com/BruksfildServices01/medspa-api/internal/models"
)

type ServiceHandler struct {
	db *gorm.DB
}

func NewServiceHandler(db *gorm.DB) *ServiceHandler {
	return &ServiceHandler{db: db}
}

// --------- Requests ---------

type CreateServiceRequest struct {
	Name            string          `json:"name" binding:"required,max=100"`
	Description     string          `json:"description" binding:"max=255"`
	Category        string          `json:"category" binding:"max=50"`
	DurationMin     int             `json:"duration_min" binding:"required,min=1"`
	Price           decimal.Decimal `json:"price"`
	RequiresConsent bool            `json:"requires_consent"`
}

type UpdateServiceRequest struct {
	Name            *string          `json:"name,omitempty" binding:"omitempty,max=100"`
	Description     *string          `json:"description,omitempty" binding:"omitempty,max=255"`
	Category        *string          `json:"category,omitempty" binding:"omitempty,max=50"`
	DurationMin     *int             `json:"duration_min,omitempty" binding:"omitempty,min=1"`
	Price           *decimal.Decimal `json:"price,omitempty"`
	RequiresConsent *bool            `json:"requires_consent,omitempty"`
	Active          *bool            `json:"active,omitempty"`
}

// --------- Handlers ---------

func (h *ServiceHandler) List(c *gin.Context) {
	category := strings.ToLower(strings.TrimSpace(c.Query("category")))
	activeStr := strings.TrimSpace(c.Query("active"))
	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.WithContext(c.Request.Context())

	if category != "" {
		q = q.Where("LOWER(category) = ?", category)
	}

	switch activeStr {
	case "true":
		q = q.Where("active = ?", true)
	case "false":
		q = q.Where("active = ?", false)
	}

	if query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var services []models.Service
	if err := q.Order("name ASC").Find(&services).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.List(c, services)
}

func (h *ServiceHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	svc, ok := findByID[models.Service](c, h.db, id, "service_not_found")
	if !ok {
		return
	}
	httpresp.OK(c, svc)
}

func (h *ServiceHandler) Create(c *gin.Context) {
	var req CreateServiceRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Price.IsNegative() {
		httperr.FromError(c, httperr.ErrBusiness("invalid_price"))
		return
	}

	svc := models.Service{
		Name:            req.Name,
		Description:     req.Description,
		Category:        strings.ToLower(req.Category),
		DurationMin:     req.DurationMin,
		Price:           req.Price,
		RequiresConsent: req.RequiresConsent,
		Active:          true,
	}

	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Create(&svc).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	writeAudit(ctx, h.db, middleware.Actor(c).UserID, "CREATE", "services", svc.ID, svc)
	httpresp.Created(c, "Service created.", svc)
}

func (h *ServiceHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateServiceRequest
	if !bindJSON(c, &req) {
		return
	}

	svc, ok := findByID[models.Service](c, h.db, id, "service_not_found")
	if !ok {
		return
	}

	if req.Name != nil {
		svc.Name = *req.Name
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.Category != nil {
		svc.Category = strings.ToLower(*req.Category)
	}
	if req.DurationMin != nil {
		svc.DurationMin = *req.DurationMin
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			httperr.FromError(c, httperr.ErrBusiness("invalid_price"))
			return
		}
		svc.Price = *req.Price
	}
	if req.RequiresConsent != nil {
		svc.RequiresConsent = *req.RequiresConsent
	}
	if req.Active != nil {
		svc.Active = *req.Active
	}

	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Save(svc).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	writeAudit(ctx, h.db, middleware.Actor(c).UserID, "UPDATE", "services", svc.ID, svc)
	httpresp.Updated(c, "Service updated.", svc)
}

func (h *ServiceHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !deleteByID(c, h.db, &models.Service{}, id, "service_not_found") {
		return
	}

	writeAudit(c.Request.Context(), h.db, middleware.Actor(c).UserID, "DELETE", "services", id, nil)
	httpresp.NoContent(c)
}
