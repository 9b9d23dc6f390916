package handlers

import (
	"bytes"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/medspa-api/internal/config"
	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/httpresp"
	"github.com/BruksfildServices01/medspa-api/internal/infra/imaging"
	"github.com/BruksfildServices01/medspa-api/internal/infra/storage"
	"github.com/BruksfildServices01/medspa-api/internal/middleware"
	"github.com/BruksfildServices01/medspa-api/internal/models"
	"github.com/BruksfildServices01/medspa-api/internal/policy"
)

var photoUploadTypes = []string{"image/jpeg", "image/png", "image/webp"}

// ======================================================
// HANDLER
// ======================================================

type TreatmentHandler struct {
	db    *gorm.DB
	store storage.Storage
	tz    string
	now   func() time.Time

	// find loads a treatment with its photos, answering 404 itself
	find func(c *gin.Context, id uint) (*models.Treatment, bool)
}

func NewTreatmentHandler(db *gorm.DB, store storage.Storage, cfg *config.Config) *TreatmentHandler {
	h := &TreatmentHandler{db: db, store: store, tz: cfg.Timezone, now: time.Now}
	h.find = func(c *gin.Context, id uint) (*models.Treatment, bool) {
		return findByID[models.Treatment](c, h.db.Preload("Photos"), id, "treatment_not_found")
	}
	return h
}

// ======================================================
// REQUESTS
// ======================================================

type CreateTreatmentRequest struct {
	ClientID      uint   `json:"client_id" binding:"required"`
	AppointmentID *uint  `json:"appointment_id"`
	StaffID       *uint  `json:"staff_id"`
	ServiceID     *uint  `json:"service_id"`
	TreatmentDate string `json:"treatment_date" binding:"required"`
	ProductsUsed  string `json:"products_used"`
	Subjective    string `json:"subjective"`
	Objective     string `json:"objective"`
	Assessment    string `json:"assessment"`
	Plan          string `json:"plan"`
	Notes         string `json:"notes"`
}

type UpdateTreatmentRequest struct {
	ServiceID     *uint   `json:"service_id"`
	TreatmentDate *string `json:"treatment_date"`
	ProductsUsed  *string `json:"products_used"`
	Subjective    *string `json:"subjective"`
	Objective     *string `json:"objective"`
	Assessment    *string `json:"assessment"`
	Plan          *string `json:"plan"`
	Notes         *string `json:"notes"`
}

// treatment dates may be a bare day or a full timestamp
func (h *TreatmentHandler) parseTreatmentDate(s string) (time.Time, error) {
	if t, err := parseDateTime(h.tz, s); err == nil {
		return t, nil
	}
	d, err := parseDate(h.tz, s)
	if err != nil {
		return time.Time{}, err
	}
	return *d, nil
}

// ======================================================
// LIST / GET
// ======================================================

func (h *TreatmentHandler) List(c *gin.Context) {
	actor := middleware.Actor(c)
	page, limit, offset := httpresp.Pagination(c)

	q := h.db.WithContext(c.Request.Context()).Model(&models.Treatment{})
	q = policy.ScopeToClient(q, actor, "client_id")

	if cid := queryUint(c, "client_id"); cid != nil {
		q = q.Where("client_id = ?", *cid)
	}
	if sid := queryUint(c, "staff_id"); sid != nil {
		q = q.Where("staff_id = ?", *sid)
	}
	if aid := queryUint(c, "appointment_id"); aid != nil {
		q = q.Where("appointment_id = ?", *aid)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	var rows []models.Treatment
	if err := q.
		Preload("Photos").
		Order("treatment_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {

		httperr.FromError(c, err)
		return
	}

	httpresp.Paged(c, rows, total, page, limit)
}

func (h *TreatmentHandler) load(c *gin.Context) (*models.Treatment, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	t, ok := h.find(c, id)
	if !ok {
		return nil, false
	}
	if err := policy.CanAccessClient(middleware.Actor(c), t.ClientID); err != nil {
		httperr.FromError(c, err)
		return nil, false
	}
	return t, true
}

func (h *TreatmentHandler) Get(c *gin.Context) {
	t, ok := h.load(c)
	if !ok {
		return
	}
	httpresp.OK(c, t)
}

// ======================================================
// CREATE / UPDATE / DELETE
// ======================================================

func (h *TreatmentHandler) Create(c *gin.Context) {
	actor := middleware.Actor(c)

	var req CreateTreatmentRequest
	if !bindJSON(c, &req) {
		return
	}

	date, err := h.parseTreatmentDate(req.TreatmentDate)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	staffID := actor.UserID
	if req.StaffID != nil {
		staffID = *req.StaffID
	}

	t := models.Treatment{
		ClientID:      req.ClientID,
		AppointmentID: req.AppointmentID,
		StaffID:       staffID,
		ServiceID:     req.ServiceID,
		TreatmentDate: date,
		ProductsUsed:  req.ProductsUsed,
		Subjective:    req.Subjective,
		Objective:     req.Objective,
		Assessment:    req.Assessment,
		Plan:          req.Plan,
		Notes:         req.Notes,
	}

	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Create(&t).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	// clinical text stays out of the audit trail
	writeAudit(ctx, h.db, actor.UserID, "CREATE", "treatments", t.ID,
		map[string]any{"client_id": t.ClientID, "staff_id": t.StaffID, "treatment_date": t.TreatmentDate})
	httpresp.Created(c, "Treatment created.", t)
}

func (h *TreatmentHandler) Update(c *gin.Context) {
	var req UpdateTreatmentRequest
	if !bindJSON(c, &req) {
		return
	}

	t, ok := h.load(c)
	if !ok {
		return
	}

	if req.TreatmentDate != nil {
		date, err := h.parseTreatmentDate(*req.TreatmentDate)
		if err != nil {
			httperr.FromError(c, err)
			return
		}
		t.TreatmentDate = date
	}
	if req.ServiceID != nil {
		t.ServiceID = req.ServiceID
	}
	assign(&t.ProductsUsed, req.ProductsUsed)
	assign(&t.Subjective, req.Subjective)
	assign(&t.Objective, req.Objective)
	assign(&t.Assessment, req.Assessment)
	assign(&t.Plan, req.Plan)
	assign(&t.Notes, req.Notes)

	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Omit(clause.Associations).Save(t).Error; err != nil {
		httperr.FromError(c, err)
		return
	}

	writeAudit(ctx, h.db, middleware.Actor(c).UserID, "UPDATE", "treatments", t.ID,
		map[string]any{"treatment_date": t.TreatmentDate})
	httpresp.Updated(c, "Treatment updated.", t)
}

func (h *TreatmentHandler) Delete(c *gin.Context) {
	t, ok := h.load(c)
	if !ok {
		return
	}
	if !deleteByID(c, h.db, &models.Treatment{}, t.ID, "treatment_not_found") {
		return
	}

	ctx := c.Request.Context()
	for _, p := range t.Photos {
		if err := h.store.Delete(ctx, p.FileKey); err != nil {
			zap.L().Warn("treatment photo not removed", zap.String("key", p.FileKey), zap.Error(err))
		}
	}

	writeAudit(ctx, h.db, middleware.Actor(c).UserID, "DELETE", "treatments", t.ID, nil)
	httpresp.NoContent(c)
}

// ======================================================
// PHOTOS
// ======================================================

// UploadPhoto stores a before/after photo re-encoded as WebP. Re-encoding
// drops EXIF metadata such as GPS position.
func (h *TreatmentHandler) UploadPhoto(c *gin.Context) {
	t, ok := h.load(c)
	if !ok {
		return
	}

	kind := c.DefaultPostForm("kind", "other")
	switch kind {
	case "before", "after", "other":
	default:
		httperr.Validation(c, httperr.FieldError("kind", "must be one of: before after other"))
		return
	}

	up, ok := readUpload(c, "photo", photoUploadTypes...)
	if !ok {
		return
	}

	img, err := imaging.Normalize(bytes.NewReader(up.Data), imaging.MaxDimension)
	if errors.Is(err, imaging.ErrUnsupportedImage) {
		httperr.Validation(c, httperr.FieldError("photo", "could not be decoded"))
		return
	}
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	ctx := c.Request.Context()
	key := storage.NewKey("photos", ".webp", h.now())
	if err := h.store.Put(ctx, key, bytes.NewReader(img.Data), int64(len(img.Data)), imaging.ContentType); err != nil {
		httperr.FromError(c, err)
		return
	}

	photo := models.TreatmentPhoto{
		TreatmentID: t.ID,
		Kind:        kind,
		FileKey:     key,
		ContentType: imaging.ContentType,
		Width:       img.Width,
		Height:      img.Height,
	}
	if err := h.db.WithContext(ctx).Create(&photo).Error; err != nil {
		_ = h.store.Delete(ctx, key)
		httperr.FromError(c, err)
		return
	}

	writeAudit(ctx, h.db, middleware.Actor(c).UserID, "UPLOAD", "treatment_photos", photo.ID,
		map[string]any{"treatment_id": t.ID, "kind": kind})
	httpresp.Created(c, "Photo uploaded.", photo)
}

func (h *TreatmentHandler) photo(c *gin.Context) (*models.TreatmentPhoto, bool) {
	t, ok := h.load(c)
	if !ok {
		return nil, false
	}
	photoID, ok := paramID(c, "photoId")
	if !ok {
		return nil, false
	}
	for i := range t.Photos {
		if t.Photos[i].ID == photoID {
			return &t.Photos[i], true
		}
	}
	httperr.NotFound(c, "photo_not_found", "Resource not found.")
	return nil, false
}

func (h *TreatmentHandler) Photo(c *gin.Context) {
	p, ok := h.photo(c)
	if !ok {
		return
	}
	streamObject(c, h.store, p.FileKey, p.ContentType, "")
}

func (h *TreatmentHandler) DeletePhoto(c *gin.Context) {
	p, ok := h.photo(c)
	if !ok {
		return
	}
	if !deleteByID(c, h.db, &models.TreatmentPhoto{}, p.ID, "photo_not_found") {
		return
	}

	ctx := c.Request.Context()
	if err := h.store.Delete(ctx, p.FileKey); err != nil {
		zap.L().Warn("treatment photo not removed", zap.String("key", p.FileKey), zap.Error(err))
	}

	writeAudit(ctx, h.db, middleware.Actor(c).UserID, "DELETE", "treatment_photos", p.ID, nil)
	httpresp.NoContent(c)
}
