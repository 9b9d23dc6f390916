package handlers

import (
	"bytes"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/httpresp"
	"github.com/BruksfildServices01/medspa-api/internal/infra/storage"
	"github.com/BruksfildServices01/medspa-api/internal/middleware"
	"github.com/BruksfildServices01/medspa-api/internal/models"
	"github.com/BruksfildServices01/medspa-api/internal/policy"
)

var consentFileTypes = []string{"application/pdf", "image/jpeg", "image/png"}

// ======================================================
// HANDLER
// ======================================================

type ConsentFormHandler struct {
	db    *gorm.DB
	store storage.Storage
	now   func() time.Time
}

func NewConsentFormHandler(db *gorm.DB, store storage.Storage) *ConsentFormHandler {
	return &ConsentFormHandler{db: db, store: store, now: time.Now}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateConsentFormRequest struct {
	ClientID      uint   `json:"client_id" binding:"required"`
	ServiceID     *uint  `json:"service_id"`
	AppointmentID *uint  `json:"appointment_id"`
	Title         string `json:"title" binding:"required,max=150"`
	Body          string `json:"body"`
}

type UpdateConsentFormRequest struct {
	Title *string `json:"title" binding:"omitempty,max=150"`
	Body  *string `json:"body"`
}

type SignConsentFormRequest struct {
	SignedName    string `json:"signed_name" binding:"required,max=150"`
	SignatureData string `json:"signature_data" binding:"required"`
}

// ======================================================
// LIST / GET
// ======================================================

func (h *ConsentFormHandler) List(c *gin.Context) {
	actor := middleware.Actor(c)
	page, limit, offset := httpresp.Pagination(c)

	q := h.db.WithContext(c.Request.Context()).Model(&models.ConsentForm{})
	q = policy.ScopeToClient(q, actor, "client_id")

	if cid := queryUint(c, "client_id"); cid != nil {
		q = q.Where("client_id = ?", *cid)
	}
	if aid := queryUint(c, "appointment_id"); aid != nil {
		q = q.Where("appointment_id = ?", *aid)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	var forms []models.ConsentForm
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&forms).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Paged(c, forms, total, page, limit)
}

// load fetches a form and checks the actor may see it.
func (h *ConsentFormHandler) load(c *gin.Context) (*models.ConsentForm, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	form, ok := findByID[models.ConsentForm](c, h.db, id, "consent_form_not_found")
	if !ok {
		return nil, false
	}
	if err := policy.CanAccessClient(middleware.Actor(c), form.ClientID); err != nil {
		httperr.FromError(c, err)
		return nil, false
	}
	return form, true
}

func (h *ConsentFormHandler) Get(c *gin.Context) {
	form, ok := h.load(c)
	if !ok {
		return
	}
	httpresp.OK(c, form)
}

// ======================================================
// CREATE / UPDATE / DELETE
// ======================================================

func (h *ConsentFormHandler) Create(c *gin.Context) {
	var req CreateConsentFormRequest
	if !bindJSON(c, &req) {
		return
	}

	form := models.ConsentForm{
		ClientID:      req.ClientID,
		ServiceID:     req.ServiceID,
		AppointmentID: req.AppointmentID,
		Title:         req.Title,
		Body:          req.Body,
		Status:        models.ConsentPending,
	}

	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Create(&form).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	writeAudit(ctx, h.db, middleware.Actor(c).UserID, "CREATE", "consent_forms", form.ID,
		map[string]any{"client_id": form.ClientID, "title": form.Title})
	httpresp.Created(c, "Consent form created.", form)
}

// Update edits the wording. Signed forms are frozen.
func (h *ConsentFormHandler) Update(c *gin.Context) {
	var req UpdateConsentFormRequest
	if !bindJSON(c, &req) {
		return
	}

	form, ok := h.load(c)
	if !ok {
		return
	}
	if form.Status == models.ConsentSigned {
		httperr.FromError(c, httperr.ErrConflict("consent_form_signed"))
		return
	}

	if req.Title != nil {
		form.Title = *req.Title
	}
	if req.Body != nil {
		form.Body = *req.Body
	}

	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Omit(clause.Associations).Save(form).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	writeAudit(ctx, h.db, middleware.Actor(c).UserID, "UPDATE", "consent_forms", form.ID,
		map[string]any{"title": form.Title})
	httpresp.Updated(c, "Consent form updated.", form)
}

func (h *ConsentFormHandler) Delete(c *gin.Context) {
	form, ok := h.load(c)
	if !ok {
		return
	}
	if !deleteByID(c, h.db, &models.ConsentForm{}, form.ID, "consent_form_not_found") {
		return
	}

	ctx := c.Request.Context()
	if form.HasFile() {
		if err := h.store.Delete(ctx, form.FileKey); err != nil {
			zap.L().Warn("consent file not removed", zap.String("key", form.FileKey), zap.Error(err))
		}
	}

	writeAudit(ctx, h.db, middleware.Actor(c).UserID, "DELETE", "consent_forms", form.ID, nil)
	httpresp.NoContent(c)
}

// ======================================================
// SIGN
// ======================================================

func (h *ConsentFormHandler) Sign(c *gin.Context) {
	var req SignConsentFormRequest
	if !bindJSON(c, &req) {
		return
	}

	form, ok := h.load(c)
	if !ok {
		return
	}

	now := h.now()
	ctx := c.Request.Context()
	res := h.db.WithContext(ctx).
		Model(&models.ConsentForm{}).
		Where("id = ? AND status = ?", form.ID, models.ConsentPending).
		Updates(map[string]any{
			"status":         models.ConsentSigned,
			"signed_name":    req.SignedName,
			"signature_data": req.SignatureData,
			"signed_at":      now,
		})
	if res.Error != nil {
		httperr.FromError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		httperr.FromError(c, httperr.ErrConflict("consent_form_signed"))
		return
	}

	form.Status = models.ConsentSigned
	form.SignedName = req.SignedName
	form.SignedAt = &now

	writeAudit(ctx, h.db, middleware.Actor(c).UserID, "SIGN", "consent_forms", form.ID,
		map[string]any{"signed_name": req.SignedName, "signed_at": now})
	httpresp.Updated(c, "Consent form signed.", form)
}

// ======================================================
// FILE
// ======================================================

// UploadFile attaches a scanned or generated document, replacing any previous one.
func (h *ConsentFormHandler) UploadFile(c *gin.Context) {
	form, ok := h.load(c)
	if !ok {
		return
	}

	up, ok := readUpload(c, "file", consentFileTypes...)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	key := storage.NewKey("consent", up.Extension, h.now())
	if err := h.store.Put(ctx, key, bytes.NewReader(up.Data), int64(len(up.Data)), up.ContentType); err != nil {
		httperr.FromError(c, err)
		return
	}

	previous := form.FileKey
	err := h.db.WithContext(ctx).
		Model(form).
		Updates(map[string]any{
			"file_key":     key,
			"file_name":    up.Filename,
			"content_type": up.ContentType,
		}).Error
	if err != nil {
		_ = h.store.Delete(ctx, key)
		httperr.FromError(c, err)
		return
	}

	form.FileKey = key
	form.FileName = up.Filename
	form.ContentType = up.ContentType

	if previous != "" {
		if err := h.store.Delete(ctx, previous); err != nil {
			zap.L().Warn("old consent file not removed", zap.String("key", previous), zap.Error(err))
		}
	}

	writeAudit(ctx, h.db, middleware.Actor(c).UserID, "UPLOAD", "consent_forms", form.ID,
		map[string]any{"file_name": up.Filename, "content_type": up.ContentType})
	httpresp.Updated(c, "File uploaded.", form)
}

func (h *ConsentFormHandler) File(c *gin.Context) {
	form, ok := h.load(c)
	if !ok {
		return
	}
	if !form.HasFile() {
		httperr.NotFound(c, "file_not_found", "File not found.")
		return
	}

	streamObject(c, h.store, form.FileKey, form.ContentType, form.FileName)
}
