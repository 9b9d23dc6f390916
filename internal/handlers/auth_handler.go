package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/medspa-api/internal/config"
	"github.com/BruksfildServices01/medspa-api/internal/db"
	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/models"
	"github.com/BruksfildServices01/medspa-api/internal/validators"
)

type AuthHandler struct {
	db     *gorm.DB
	config *config.Config

	// emailDomainOK is swapped in tests to avoid DNS lookups.
	emailDomainOK func(string) bool
	now           func() time.Time
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		db:            db,
		config:        cfg,
		emailDomainOK: validators.IsEmailDomainValid,
		now:           time.Now,
	}
}

// --------- Requests ---------

// RegisterRequest is the client self-registration form.
type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Phone     string `json:"phone" binding:"max=20"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Token  string         `json:"token"`
	User   models.User    `json:"user"`
	Client *models.Client `json:"client,omitempty"`
}

// --------- Handlers ---------

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	email := validators.NormalizeEmail(req.Email)
	if !h.emailDomainOK(email) {
		httperr.Unprocessable(c, "invalid_email_domain", "The email domain does not accept mail.")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	user := models.User{
		Name:         strings.TrimSpace(req.FirstName + " " + req.LastName),
		Email:        email,
		PasswordHash: string(hashed),
		Phone:        req.Phone,
		Role:         models.RoleClient,
	}
	var client models.Client

	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			if db.IsUniqueViolation(err) {
				return httperr.ErrConflict("email_already_registered")
			}
			return err
		}

		client = models.Client{
			UserID:    &user.ID,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     email,
			Phone:     req.Phone,
		}
		return tx.Create(&client).Error
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	token, err := h.generateToken(&user, &client.ID)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	c.JSON(http.StatusCreated, authResponse{Token: token, User: user, Client: &client})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	email := validators.NormalizeEmail(req.Email)

	var user models.User
	if err := h.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Unauthorized(c, "invalid_credentials", "Email or password is incorrect.")
			return
		}
		httperr.FromError(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		httperr.Unauthorized(c, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	var client *models.Client
	if user.Role == models.RoleClient {
		var profile models.Client
		err := h.db.WithContext(ctx).Where("user_id = ?", user.ID).First(&profile).Error
		switch {
		case err == nil:
			client = &profile
		case !errors.Is(err, gorm.ErrRecordNotFound):
			httperr.FromError(c, err)
			return
		}
	}

	var clientID *uint
	if client != nil {
		clientID = &client.ID
	}

	token, err := h.generateToken(&user, clientID)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, authResponse{Token: token, User: user, Client: client})
}

// --------- JWT ---------

func (h *AuthHandler) generateToken(user *models.User, clientID *uint) (string, error) {
	now := h.now()
	ttl := time.Duration(h.config.JWTTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
	}
	if clientID != nil {
		claims["clientId"] = *clientID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.config.JWTSecret))
}
