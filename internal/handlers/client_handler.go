package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/medspa-api/internal/config"
	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/httpresp"
	"github.com/BruksfildServices01/medspa-api/internal/middleware"
	"github.com/BruksfildServices01/medspa-api/internal/models"
	"github.com/BruksfildServices01/medspa-api/internal/policy"
	"github.com/BruksfildServices01/medspa-api/internal/validators"
)

type ClientHandler struct {
	db *gorm.DB
	tz string
}

func NewClientHandler(db *gorm.DB, cfg *config.Config) *ClientHandler {
	return &ClientHandler{db: db, tz: cfg.Timezone}
}

// ======================================================
// REQUESTS
// ======================================================

type ClientRequest struct {
	FirstName   string  `json:"first_name" binding:"required,max=100"`
	LastName    string  `json:"last_name" binding:"required,max=100"`
	Email       string  `json:"email" binding:"omitempty,email"`
	Phone       string  `json:"phone" binding:"max=20"`
	DateOfBirth *string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	Notes       string  `json:"notes"`
	LocationID  *uint   `json:"location_id"`
}

type UpdateClientRequest struct {
	FirstName   *string `json:"first_name" binding:"omitempty,max=100"`
	LastName    *string `json:"last_name" binding:"omitempty,max=100"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Phone       *string `json:"phone" binding:"omitempty,max=20"`
	DateOfBirth *string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	Notes       *string `json:"notes"`
	LocationID  *uint   `json:"location_id"`
}

// ======================================================
// LIST
// ======================================================

func (h *ClientHandler) List(c *gin.Context) {
	actor := middleware.Actor(c)
	page, limit, offset := httpresp.Pagination(c)

	q := h.db.WithContext(c.Request.Context()).Model(&models.Client{})
	q = policy.ScopeToClient(q, actor, "id")

	if search := strings.ToLower(strings.TrimSpace(c.Query("query"))); search != "" {
		like := "%" + search + "%"
		q = q.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?",
			like, like, like, like,
		)
	}
	if loc := queryUint(c, "location_id"); loc != nil {
		q = q.Where("location_id = ?", *loc)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	var clients []models.Client
	if err := q.
		Order("last_name ASC, first_name ASC").
		Limit(limit).
		Offset(offset).
		Find(&clients).Error; err != nil {

		httperr.FromError(c, err)
		return
	}

	httpresp.Paged(c, clients, total, page, limit)
}

// ======================================================
// GET
// ======================================================

func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := policy.CanAccessClient(middleware.Actor(c), id); err != nil {
		httperr.FromError(c, err)
		return
	}

	client, ok := findByID[models.Client](c, h.db, id, "client_not_found")
	if !ok {
		return
	}
	httpresp.OK(c, client)
}

// ======================================================
// CREATE / UPDATE / DELETE (staff)
// ======================================================

func (h *ClientHandler) Create(c *gin.Context) {
	var req ClientRequest
	if !bindJSON(c, &req) {
		return
	}

	dob, err := parseDate(h.tz, deref(req.DateOfBirth))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	client := models.Client{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       validators.NormalizeEmail(req.Email),
		Phone:       req.Phone,
		DateOfBirth: dob,
		Notes:       req.Notes,
		LocationID:  req.LocationID,
	}

	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Create(&client).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	writeAudit(ctx, h.db, middleware.Actor(c).UserID, "CREATE", "clients", client.ID, client)
	httpresp.Created(c, "Client created.", client)
}

func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateClientRequest
	if !bindJSON(c, &req) {
		return
	}

	client, ok := findByID[models.Client](c, h.db, id, "client_not_found")
	if !ok {
		return
	}

	if req.FirstName != nil {
		client.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		client.LastName = *req.LastName
	}
	if req.Email != nil {
		client.Email = validators.NormalizeEmail(*req.Email)
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.Notes != nil {
		client.Notes = *req.Notes
	}
	if req.LocationID != nil {
		client.LocationID = req.LocationID
	}
	if req.DateOfBirth != nil {
		dob, err := parseDate(h.tz, *req.DateOfBirth)
		if err != nil {
			httperr.FromError(c, err)
			return
		}
		client.DateOfBirth = dob
	}

	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Omit(clause.Associations).Save(client).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	writeAudit(ctx, h.db, middleware.Actor(c).UserID, "UPDATE", "clients", client.ID, client)
	httpresp.Updated(c, "Client updated.", client)
}

func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !deleteByID(c, h.db, &models.Client{}, id, "client_not_found") {
		return
	}

	writeAudit(c.Request.Context(), h.db, middleware.Actor(c).UserID, "DELETE", "clients", id, nil)
	httpresp.NoContent(c)
}
