package handlers

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/medspa-api/internal/db"
	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/httpresp"
	"github.com/BruksfildServices01/medspa-api/internal/middleware"
	"github.com/BruksfildServices01/medspa-api/internal/models"
	"github.com/BruksfildServices01/medspa-api/internal/validators"
)

// UserHandler manages staff accounts. Admin only.
type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

type CreateUserRequest struct {
	Name       string `json:"name" binding:"required,max=100"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	Phone      string `json:"phone" binding:"max=20"`
	Role       string `json:"role" binding:"required,oneof=admin staff receptionist"`
	LocationID *uint  `json:"location_id"`
}

type UpdateUserRequest struct {
	Name       *string `json:"name" binding:"omitempty,max=100"`
	Phone      *string `json:"phone" binding:"omitempty,max=20"`
	Password   *string `json:"password" binding:"omitempty,min=8"`
	Role       *string `json:"role" binding:"omitempty,oneof=admin staff receptionist"`
	LocationID *uint   `json:"location_id"`
}

func (h *UserHandler) List(c *gin.Context) {
	page, limit, offset := httpresp.Pagination(c)

	q := h.db.WithContext(c.Request.Context()).Model(&models.User{})
	if role := c.Query("role"); role != "" {
		q = q.Where("role = ?", role)
	}
	if loc := queryUint(c, "location_id"); loc != nil {
		q = q.Where("location_id = ?", *loc)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	var users []models.User
	if err := q.Order("name ASC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Paged(c, users, total, page, limit)
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	user, ok := findByID[models.User](c, h.db.Preload("Location"), id, "user_not_found")
	if !ok {
		return
	}
	httpresp.OK(c, user)
}

func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        validators.NormalizeEmail(req.Email),
		PasswordHash: string(hashed),
		Phone:        req.Phone,
		Role:         req.Role,
		LocationID:   req.LocationID,
	}

	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Create(&user).Error; err != nil {
		if db.IsUniqueViolation(err) {
			httperr.Conflict(c, "email_already_registered", "Email already registered.")
			return
		}
		httperr.FromError(c, err)
		return
	}

	writeAudit(ctx, h.db, middleware.Actor(c).UserID, "CREATE", "users", user.ID,
		map[string]any{"email": user.Email, "role": user.Role})

	httpresp.Created(c, "User created.", user)
}

func (h *UserHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, ok := findByID[models.User](c, h.db, id, "user_not_found")
	if !ok {
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.LocationID != nil {
		user.LocationID = req.LocationID
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			httperr.FromError(c, err)
			return
		}
		user.PasswordHash = string(hashed)
	}

	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	writeAudit(ctx, h.db, middleware.Actor(c).UserID, "UPDATE", "users", user.ID,
		map[string]any{"role": user.Role, "location_id": user.LocationID})

	httpresp.Updated(c, "User updated.", user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	actor := middleware.Actor(c)
	if id == actor.UserID {
		httperr.Unprocessable(c, "cannot_delete_self", "You cannot delete your own account.")
		return
	}

	if !deleteByID(c, h.db, &models.User{}, id, "user_not_found") {
		return
	}

	writeAudit(c.Request.Context(), h.db, actor.UserID, "DELETE", "users", id, nil)
	httpresp.NoContent(c)
}
