package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/httpresp"
	"github.com/BruksfildServices01/medspa-api/internal/middleware"
	"github.com/BruksfildServices01/medspa-api/internal/models"
	"github.com/BruksfildServices01/medspa-api/internal/timezone"
)

type LocationHandler struct {
	db *gorm.DB
}

func NewLocationHandler(db *gorm.DB) *LocationHandler {
	return &LocationHandler{db: db}
}

type LocationRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Address  string `json:"address" binding:"max=255"`
	Phone    string `json:"phone" binding:"max=20"`
	Timezone string `json:"timezone" binding:"max=64"`
	Active   *bool  `json:"active"`
}

func (h *LocationHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context())
	if c.Query("active") == "true" {
		q = q.Where("active = ?", true)
	}

	var locations []models.Location
	if err := q.Order("name ASC").Find(&locations).Error; err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.List(c, locations)
}

func (h *LocationHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	loc, ok := findByID[models.Location](c, h.db, id, "location_not_found")
	if !ok {
		return
	}
	httpresp.OK(c, loc)
}

func (h *LocationHandler) Create(c *gin.Context) {
	var req LocationRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Timezone != "" && !timezone.IsValid(req.Timezone) {
		httperr.FromError(c, httperr.ErrBusiness("invalid_timezone"))
		return
	}

	loc := models.Location{
		Name:     req.Name,
		Address:  req.Address,
		Phone:    req.Phone,
		Timezone: req.Timezone,
		Active:   req.Active == nil || *req.Active,
	}

	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Create(&loc).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	writeAudit(ctx, h.db, middleware.Actor(c).UserID, "CREATE", "locations", loc.ID, loc)
	httpresp.Created(c, "Location created.", loc)
}

// Update replaces every editable field.
func (h *LocationHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req LocationRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Timezone != "" && !timezone.IsValid(req.Timezone) {
		httperr.FromError(c, httperr.ErrBusiness("invalid_timezone"))
		return
	}

	loc, ok := findByID[models.Location](c, h.db, id, "location_not_found")
	if !ok {
		return
	}

	loc.Name = req.Name
	loc.Address = req.Address
	loc.Phone = req.Phone
	loc.Timezone = req.Timezone
	if req.Active != nil {
		loc.Active = *req.Active
	}

	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Save(loc).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	writeAudit(ctx, h.db, middleware.Actor(c).UserID, "UPDATE", "locations", loc.ID, loc)
	httpresp.Updated(c, "Location updated.", loc)
}

func (h *LocationHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !deleteByID(c, h.db, &models.Location{}, id, "location_not_found") {
		return
	}

	writeAudit(c.Request.Context(), h.db, middleware.Actor(c).UserID, "DELETE", "locations", id, nil)
	httpresp.NoContent(c)
}
