package handlers

import (
	"mime"
	"path"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/httpresp"
	"github.com/BruksfildServices01/medspa-api/internal/infra/storage"
	"github.com/BruksfildServices01/medspa-api/internal/middleware"
	"github.com/BruksfildServices01/medspa-api/internal/models"
	"github.com/BruksfildServices01/medspa-api/internal/policy"
)

// tokenVerifier is implemented by drivers that serve their own signed links.
type tokenVerifier interface {
	Verify(token string) (string, error)
}

// ======================================================
// HANDLER
// ======================================================

type FileHandler struct {
	db    *gorm.DB
	store storage.Storage
}

func NewFileHandler(db *gorm.DB, store storage.Storage) *FileHandler {
	return &FileHandler{db: db, store: store}
}

type signedURLResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

// ======================================================
// SIGNED URL
// GET /api/files/signed-url?type=consent|photo&id=..&expires=..
// ======================================================

func (h *FileHandler) SignedURL(c *gin.Context) {
	typ := c.Query("type")
	if typ != "consent" && typ != "photo" {
		httperr.BadRequest(c, "invalid_type", "Type must be consent or photo.")
		return
	}

	id, err := strconv.ParseUint(c.Query("id"), 10, 64)
	if err != nil || id == 0 {
		httperr.BadRequest(c, "invalid_id", "Invalid id.")
		return
	}

	expires := 0
	if s := c.Query("expires"); s != "" {
		expires, err = strconv.Atoi(s)
		if err != nil {
			httperr.BadRequest(c, "invalid_expires", "Invalid expires.")
			return
		}
	}

	var (
		key     string
		ownerID uint
	)

	switch typ {
	case "consent":
		form, ok := findByID[models.ConsentForm](c, h.db, uint(id), "consent_form_not_found")
		if !ok {
			return
		}
		key, ownerID = form.FileKey, form.ClientID

	case "photo":
		photo, ok := findByID[models.TreatmentPhoto](c, h.db, uint(id), "photo_not_found")
		if !ok {
			return
		}
		treatment, ok := findByID[models.Treatment](c, h.db, photo.TreatmentID, "treatment_not_found")
		if !ok {
			return
		}
		key, ownerID = photo.FileKey, treatment.ClientID
	}

	if err := policy.CanAccessClient(middleware.Actor(c), ownerID); err != nil {
		httperr.FromError(c, err)
		return
	}
	if key == "" {
		httperr.NotFound(c, "file_not_found", "File not found.")
		return
	}

	ttl := storage.ClampTTL(expires)
	url, err := h.store.SignedURL(c.Request.Context(), key, ttl)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, signedURLResponse{URL: url, ExpiresIn: int(ttl.Seconds())})
}

// ======================================================
// SIGNED DOWNLOAD (local driver only)
// GET /files/signed?token=..
// ======================================================

func (h *FileHandler) ServeSigned(c *gin.Context) {
	v, ok := h.store.(tokenVerifier)
	if !ok {
		httperr.NotFound(c, "file_not_found", "File not found.")
		return
	}

	key, err := v.Verify(c.Query("token"))
	if err != nil {
		httperr.Unauthorized(c, "invalid_token", "Invalid or expired link.")
		return
	}

	streamObject(c, h.store, key, mime.TypeByExtension(path.Ext(key)), "")
}
