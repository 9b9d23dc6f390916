package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	ucPayment "github.com/BruksfildServices01/medspa-api/internal/usecase/payment"
)

// Stripe rejects larger webhook bodies itself.
const maxWebhookBody = 1 << 16

type WebhookHandler struct {
	handle *ucPayment.HandleWebhook
}

func NewWebhookHandler(handle *ucPayment.HandleWebhook) *WebhookHandler {
	return &WebhookHandler{handle: handle}
}

// Stripe needs the raw body for the signature check, so nothing binds it first.
func (h *WebhookHandler) Stripe(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		httperr.BadRequest(c, "invalid_payload", "Could not read request body.")
		return
	}

	if err := h.handle.Execute(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		httperr.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
