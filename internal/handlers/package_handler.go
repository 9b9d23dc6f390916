package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/httpresp"
	"github.com/BruksfildServices01/medspa-api/internal/middleware"
	"github.com/BruksfildServices01/medspa-api/internal/models"
)

type PackageHandler struct {
	db *gorm.DB
}

func NewPackageHandler(db *gorm.DB) *PackageHandler {
	return &PackageHandler{db: db}
}

type CreatePackageRequest struct {
	Name         string          `json:"name" binding:"required,max=100"`
	Description  string          `json:"description" binding:"max=255"`
	ServiceID    *uint           `json:"service_id"`
	SessionCount int             `json:"session_count" binding:"required,min=1"`
	Price        decimal.Decimal `json:"price"`
}

type UpdatePackageRequest struct {
	Name         *string          `json:"name" binding:"omitempty,max=100"`
	Description  *string          `json:"description" binding:"omitempty,max=255"`
	ServiceID    *uint            `json:"service_id"`
	SessionCount *int             `json:"session_count" binding:"omitempty,min=1"`
	Price        *decimal.Decimal `json:"price"`
	Active       *bool            `json:"active"`
}

func (h *PackageHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Preload("Service")
	if svc := queryUint(c, "service_id"); svc != nil {
		q = q.Where("service_id = ?", *svc)
	}
	if c.Query("active") == "true" {
		q = q.Where("active = ?", true)
	}

	var packages []models.Package
	if err := q.Order("name ASC").Find(&packages).Error; err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.List(c, packages)
}

func (h *PackageHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	pkg, ok := findByID[models.Package](c, h.db.Preload("Service"), id, "package_not_found")
	if !ok {
		return
	}
	httpresp.OK(c, pkg)
}

func (h *PackageHandler) Create(c *gin.Context) {
	var req CreatePackageRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Price.IsNegative() {
		httperr.FromError(c, httperr.ErrBusiness("invalid_price"))
		return
	}

	pkg := models.Package{
		Name:         req.Name,
		Description:  req.Description,
		ServiceID:    req.ServiceID,
		SessionCount: req.SessionCount,
		Price:        req.Price,
		Active:       true,
	}

	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Create(&pkg).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	writeAudit(ctx, h.db, middleware.Actor(c).UserID, "CREATE", "packages", pkg.ID, pkg)
	httpresp.Created(c, "Package created.", pkg)
}

func (h *PackageHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdatePackageRequest
	if !bindJSON(c, &req) {
		return
	}

	pkg, ok := findByID[models.Package](c, h.db, id, "package_not_found")
	if !ok {
		return
	}

	if req.Name != nil {
		pkg.Name = *req.Name
	}
	if req.Description != nil {
		pkg.Description = *req.Description
	}
	if req.ServiceID != nil {
		pkg.ServiceID = req.ServiceID
	}
	if req.SessionCount != nil {
		pkg.SessionCount = *req.SessionCount
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			httperr.FromError(c, httperr.ErrBusiness("invalid_price"))
			return
		}
		pkg.Price = *req.Price
	}
	if req.Active != nil {
		pkg.Active = *req.Active
	}

	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Omit(clause.Associations).Save(pkg).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	writeAudit(ctx, h.db, middleware.Actor(c).UserID, "UPDATE", "packages", pkg.ID, pkg)
	httpresp.Updated(c, "Package updated.", pkg)
}

func (h *PackageHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !deleteByID(c, h.db, &models.Package{}, id, "package_not_found") {
		return
	}

	writeAudit(c.Request.Context(), h.db, middleware.Actor(c).UserID, "DELETE", "packages", id, nil)
	httpresp.NoContent(c)
}
