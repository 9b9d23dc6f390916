package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/medspa-api/internal/config"
	domain "github.com/BruksfildServices01/medspa-api/internal/domain/appointment"
	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/httpresp"
	"github.com/BruksfildServices01/medspa-api/internal/middleware"
	"github.com/BruksfildServices01/medspa-api/internal/models"
	"github.com/BruksfildServices01/medspa-api/internal/policy"
	ucAppointment "github.com/BruksfildServices01/medspa-api/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	db   *gorm.DB
	repo domain.Repository
	tz   string

	create       *ucAppointment.CreateAppointment
	update       *ucAppointment.UpdateAppointment
	cancel       *ucAppointment.CancelAppointment
	complete     *ucAppointment.CompleteAppointment
	list         *ucAppointment.ListAppointments
	availability *ucAppointment.GetAvailability
}

func NewAppointmentHandler(
	db *gorm.DB,
	repo domain.Repository,
	cfg *config.Config,
	create *ucAppointment.CreateAppointment,
	update *ucAppointment.UpdateAppointment,
	cancel *ucAppointment.CancelAppointment,
	complete *ucAppointment.CompleteAppointment,
	list *ucAppointment.ListAppointments,
	availability *ucAppointment.GetAvailability,
) *AppointmentHandler {
	return &AppointmentHandler{
		db:           db,
		repo:         repo,
		tz:           cfg.Timezone,
		create:       create,
		update:       update,
		cancel:       cancel,
		complete:     complete,
		list:         list,
		availability: availability,
	}
}

// ======================================================
// REQUESTS
// ======================================================

// Times are RFC3339 or "YYYY-MM-DD HH:MM" in the clinic timezone.
type CreateAppointmentRequest struct {
	ClientID   uint    `json:"client_id"`
	StaffID    uint    `json:"staff_id" binding:"required"`
	ServiceID  uint    `json:"service_id" binding:"required"`
	LocationID *uint   `json:"location_id"`
	StartTime  string  `json:"start_time" binding:"required"`
	EndTime    *string `json:"end_time"`
	Notes      string  `json:"notes"`
}

type UpdateAppointmentRequest struct {
	StaffID    *uint   `json:"staff_id"`
	ServiceID  *uint   `json:"service_id"`
	LocationID *uint   `json:"location_id"`
	StartTime  *string `json:"start_time"`
	EndTime    *string `json:"end_time"`
	Status     *string `json:"status" binding:"omitempty,oneof=scheduled confirmed completed canceled no_show"`
	Notes      *string `json:"notes"`
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	actor := middleware.Actor(c)

	var req CreateAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	// clients book for themselves only
	clientID := req.ClientID
	if actor.IsClient() {
		if actor.ClientID == nil {
			httperr.Forbidden(c)
			return
		}
		clientID = *actor.ClientID
	}
	if clientID == 0 {
		httperr.Validation(c, httperr.FieldError("client_id", "is required"))
		return
	}

	start, err := parseDateTime(h.tz, req.StartTime)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	end, err := parseOptionalDateTime(h.tz, req.EndTime)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	ap, err := h.create.Execute(c.Request.Context(), ucAppointment.CreateAppointmentInput{
		ClientID:   clientID,
		StaffID:    req.StaffID,
		ServiceID:  req.ServiceID,
		LocationID: req.LocationID,
		StartTime:  start,
		EndTime:    end,
		Notes:      req.Notes,
		ActorID:    actor.UserID,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Created(c, "Appointment created.", ap)
}

// ======================================================
// LIST / GET
// ======================================================

// List accepts date=YYYY-MM-DD or month=YYYY-MM, or an explicit from/to range.
func (h *AppointmentHandler) List(c *gin.Context) {
	actor := middleware.Actor(c)
	page, limit, offset := httpresp.Pagination(c)

	from, err := parseDate(h.tz, c.Query("from"))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	to, err := parseDate(h.tz, c.Query("to"))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	if to != nil {
		next := to.AddDate(0, 0, 1)
		to = &next
	}

	f := domain.ListFilter{
		ClientID:   queryUint(c, "client_id"),
		StaffID:    queryUint(c, "staff_id"),
		LocationID: queryUint(c, "location_id"),
		Status:     c.Query("status"),
		From:       from,
		To:         to,
		Limit:      limit,
		Offset:     offset,
	}
	if actor.IsClient() {
		if actor.ClientID == nil {
			httperr.Forbidden(c)
			return
		}
		f.ClientID = actor.ClientID
	}

	rows, total, err := h.list.Execute(c.Request.Context(), ucAppointment.ListAppointmentsInput{
		Filter: f,
		Date:   c.Query("date"),
		Month:  c.Query("month"),
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Paged(c, rows, total, page, limit)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ap, err := h.repo.GetAppointment(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	if err := policy.CanAccessClient(middleware.Actor(c), ap.ClientID); err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// ======================================================
// UPDATE / CANCEL / COMPLETE / DELETE
// ======================================================

func (h *AppointmentHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	start, err := parseOptionalDateTime(h.tz, req.StartTime)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	end, err := parseOptionalDateTime(h.tz, req.EndTime)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	ap, err := h.update.Execute(c.Request.Context(), id, ucAppointment.UpdateAppointmentInput{
		StaffID:    req.StaffID,
		ServiceID:  req.ServiceID,
		LocationID: req.LocationID,
		StartTime:  start,
		EndTime:    end,
		Status:     req.Status,
		Notes:      req.Notes,
		ActorID:    middleware.Actor(c).UserID,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Updated(c, "Appointment updated.", ap)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ap, err := h.cancel.Execute(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Updated(c, "Appointment canceled.", ap)
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ap, err := h.complete.Execute(c.Request.Context(), middleware.Actor(c).UserID, id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Updated(c, "Appointment completed.", ap)
}

func (h *AppointmentHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !deleteByID(c, h.db, &models.Appointment{}, id, "appointment_not_found") {
		return
	}

	writeAudit(c.Request.Context(), h.db, middleware.Actor(c).UserID, "DELETE", "appointments", id, nil)
	httpresp.NoContent(c)
}

// ======================================================
// AVAILABILITY
// ======================================================

type availabilityResponse struct {
	Date      string            `json:"date"`
	StaffID   uint              `json:"staff_id"`
	ServiceID uint              `json:"service_id"`
	Slots     []domain.TimeSlot `json:"slots"`
}

func (h *AppointmentHandler) Availability(c *gin.Context) {
	staffID := queryUint(c, "staff_id")
	serviceID := queryUint(c, "service_id")
	date := c.Query("date")

	if staffID == nil || serviceID == nil || date == "" {
		httperr.BadRequest(c, "missing_parameters", "staff_id, service_id and date are required.")
		return
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		httperr.BadRequest(c, "invalid_date", "Date must be YYYY-MM-DD.")
		return
	}

	slots, err := h.availability.Execute(c.Request.Context(), ucAppointment.AvailabilityInput{
		StaffID:   *staffID,
		ServiceID: *serviceID,
		Date:      date,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, availabilityResponse{
		Date:      date,
		StaffID:   *staffID,
		ServiceID: *serviceID,
		Slots:     slots,
	})
}
