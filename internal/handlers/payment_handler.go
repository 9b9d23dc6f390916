package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/medspa-api/internal/config"
	domain "github.com/BruksfildServices01/medspa-api/internal/domain/payment"
	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/httpresp"
	"github.com/BruksfildServices01/medspa-api/internal/middleware"
	"github.com/BruksfildServices01/medspa-api/internal/policy"
	ucPayment "github.com/BruksfildServices01/medspa-api/internal/usecase/payment"
)

const idempotencyHeader = "Idempotency-Key"

// ======================================================
// HANDLER
// ======================================================

type PaymentHandler struct {
	repo domain.Repository
	tz   string

	create  *ucPayment.CreatePayment
	update  *ucPayment.UpdatePayment
	confirm *ucPayment.ConfirmPayment
}

func NewPaymentHandler(
	repo domain.Repository,
	cfg *config.Config,
	create *ucPayment.CreatePayment,
	update *ucPayment.UpdatePayment,
	confirm *ucPayment.ConfirmPayment,
) *PaymentHandler {
	return &PaymentHandler{
		repo:    repo,
		tz:      cfg.Timezone,
		create:  create,
		update:  update,
		confirm: confirm,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreatePaymentRequest struct {
	ClientID      uint             `json:"client_id"`
	AppointmentID *uint            `json:"appointment_id"`
	PackageID     *uint            `json:"package_id"`
	LocationID    *uint            `json:"location_id"`
	Amount        *decimal.Decimal `json:"amount" binding:"required"`
	Tips          *decimal.Decimal `json:"tips"`
	PaymentMethod string           `json:"payment_method" binding:"required,oneof=stripe cash"`
}

type UpdatePaymentRequest struct {
	Tips   *decimal.Decimal `json:"tips"`
	Status *string          `json:"status" binding:"omitempty,oneof=pending completed canceled failed"`
}

type createPaymentResponse struct {
	Payment      any    `json:"payment"`
	ClientSecret string `json:"client_secret,omitempty"`
}

// ======================================================
// CREATE
// ======================================================

// Create records a payment. A repeated Idempotency-Key returns the payment
// stored under it with 200 instead of charging again.
func (h *PaymentHandler) Create(c *gin.Context) {
	actor := middleware.Actor(c)

	var req CreatePaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	key := c.GetHeader(idempotencyHeader)
	if len(key) > 64 {
		httperr.BadRequest(c, "invalid_idempotency_key", "Idempotency-Key must be at most 64 characters.")
		return
	}

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

	tips := decimal.Zero
	if req.Tips != nil {
		tips = *req.Tips
	}

	out, err := h.create.Execute(c.Request.Context(), ucPayment.CreatePaymentInput{
		ClientID:       clientID,
		AppointmentID:  req.AppointmentID,
		PackageID:      req.PackageID,
		LocationID:     req.LocationID,
		Amount:         *req.Amount,
		Tips:           tips,
		Method:         req.PaymentMethod,
		IdempotencyKey: key,
		Actor:          actor,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	// a replayed key may belong to another client's payment
	if err := policy.CanAccessClient(actor, out.Payment.ClientID); err != nil {
		httperr.FromError(c, err)
		return
	}

	resp := createPaymentResponse{Payment: out.Payment, ClientSecret: out.ClientSecret}
	if out.Replayed {
		c.JSON(http.StatusOK, httpresp.MessageResponse{Message: "Payment already recorded.", Data: resp})
		return
	}
	httpresp.Created(c, "Payment created.", resp)
}

// ======================================================
// LIST / GET
// ======================================================

func (h *PaymentHandler) List(c *gin.Context) {
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
		ClientID: queryUint(c, "client_id"),
		Status:   c.Query("status"),
		Method:   c.Query("payment_method"),
		From:     from,
		To:       to,
		Limit:    limit,
		Offset:   offset,
	}
	if actor.IsClient() {
		if actor.ClientID == nil {
			httperr.Forbidden(c)
			return
		}
		f.ClientID = actor.ClientID
	}

	rows, total, err := h.repo.List(c.Request.Context(), f)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Paged(c, rows, total, page, limit)
}

func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	p, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	if err := policy.CanAccessClient(middleware.Actor(c), p.ClientID); err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, p)
}

// ======================================================
// UPDATE / CONFIRM
// ======================================================

func (h *PaymentHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdatePaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.update.Execute(c.Request.Context(), id, ucPayment.UpdatePaymentInput{
		Tips:    req.Tips,
		Status:  req.Status,
		ActorID: middleware.Actor(c).UserID,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Updated(c, "Payment updated.", p)
}

// Confirm is called by the checkout page once the card step finishes.
func (h *PaymentHandler) Confirm(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	actor := middleware.Actor(c)
	ctx := c.Request.Context()

	existing, err := h.repo.GetByID(ctx, id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	if err := policy.CanAccessClient(actor, existing.ClientID); err != nil {
		httperr.FromError(c, err)
		return
	}

	p, err := h.confirm.Execute(ctx, id, actor.UserID)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Updated(c, "Payment status synced.", p)
}
