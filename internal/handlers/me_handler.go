package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/httpresp"
	"github.com/BruksfildServices01/medspa-api/internal/middleware"
	"github.com/BruksfildServices01/medspa-api/internal/models"
)

type MeHandler struct {
	db *gorm.DB
}

func NewMeHandler(db *gorm.DB) *MeHandler {
	return &MeHandler{db: db}
}

type meResponse struct {
	User   models.User    `json:"user"`
	Client *models.Client `json:"client,omitempty"`
}

func (h *MeHandler) GetMe(c *gin.Context) {
	actor := middleware.Actor(c)
	q := h.db.WithContext(c.Request.Context())

	var user models.User
	if err := q.Preload("Location").First(&user, actor.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Unauthorized(c, "user_not_found", "The token user no longer exists.")
			return
		}
		httperr.FromError(c, err)
		return
	}

	resp := meResponse{User: user}
	if actor.ClientID != nil {
		var client models.Client
		if err := q.First(&client, *actor.ClientID).Error; err == nil {
			resp.Client = &client
		}
	}

	httpresp.OK(c, resp)
}
