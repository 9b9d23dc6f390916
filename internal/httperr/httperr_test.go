package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type createThing struct {
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	PaymentMethod string  `json:"payment_method" binding:"required,oneof=stripe cash"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) HTTPError {
	t.Helper()
	var body HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestValidationListsEveryField(t *testing.T) {
	r := gin.New()
	r.POST("/things", func(c *gin.Context) {
		var req createThing
		if err := c.ShouldBindJSON(&req); err != nil {
			Validation(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/things", strings.NewReader(`{"amount":0,"payment_method":"paypal"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "validation_failed", body.Code)
	assert.Equal(t, "is required", body.Errors["amount"])
	assert.Equal(t, "must be one of: stripe cash", body.Errors["payment_method"])
}

func TestValidationMalformedJSON(t *testing.T) {
	r := gin.New()
	r.POST("/things", func(c *gin.Context) {
		var req createThing
		if err := c.ShouldBindJSON(&req); err != nil {
			Validation(c, err)
			return
		}
	})

	req := httptest.NewRequest(http.MethodPost, "/things", strings.NewReader(`{"amount":`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestFromErrorMapsBusinessStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{ErrBusiness("invalid_amount"), http.StatusUnprocessableEntity, "invalid_amount"},
		{ErrNotFound("payment_not_found"), http.StatusNotFound, "payment_not_found"},
		{fmt.Errorf("wrapped: %w", ErrForbidden), http.StatusForbidden, "forbidden"},
		{ErrConflict("time_conflict"), http.StatusConflict, "time_conflict"},
		{ErrUpstream("payment_provider_error"), http.StatusBadGateway, "payment_provider_error"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		FromError(c, tc.err)

		assert.Equal(t, tc.status, rec.Code, tc.code)
		assert.Equal(t, tc.code, decode(t, rec).Code)
	}
}

func TestFromErrorHidesUnexpectedErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	FromError(c, errors.New("pq: password authentication failed for user medspa"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "internal_error", body.Code)
	assert.NotContains(t, body.Message, "password")
}

func TestToSnake(t *testing.T) {
	assert.Equal(t, "payment_method", toSnake("PaymentMethod"))
	assert.Equal(t, "amount", toSnake("Amount"))
	assert.Equal(t, "client_id", toSnake("ClientID"))
	assert.Equal(t, "http_status", toSnake("HTTPStatus"))
}

func TestValidationFieldErrors(t *testing.T) {
	r := gin.New()
	r.POST("/things", func(c *gin.Context) {
		Validation(c, FieldError("client_id", "is required"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/things", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "is required", decode(t, rec).Errors["client_id"])
}
