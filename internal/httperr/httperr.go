package httperr

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type HTTPError struct {
	Code    string            `json:"error_code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Forbidden(c *gin.Context) {
	Write(c, http.StatusForbidden, "forbidden", "You are not allowed to access this resource.")
}

func Conflict(c *gin.Context, code, message string) {
	Write(c, http.StatusConflict, code, message)
}

func Unprocessable(c *gin.Context, code, message string) {
	Write(c, http.StatusUnprocessableEntity, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

// FieldErrors is a validation failure detected after binding, keyed by field.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for k, v := range e {
		parts = append(parts, k+" "+v)
	}
	return strings.Join(parts, "; ")
}

func FieldError(field, message string) error {
	return FieldErrors{field: message}
}

// Validation answers 422 with one message per offending field.
func Validation(c *gin.Context, err error) {
	body := HTTPError{
		Code:    "validation_failed",
		Message: "The given data was invalid.",
		Errors:  map[string]string{},
	}

	var verrs validator.ValidationErrors
	var ferrs FieldErrors
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.As(err, &verrs):
		for _, fe := range verrs {
			body.Errors[fieldName(fe)] = fieldMessage(fe)
		}
	case errors.As(err, &ferrs):
		for k, v := range ferrs {
			body.Errors[k] = v
		}
	case errors.As(err, &typeErr):
		body.Errors[typeErr.Field] = "has an invalid type"
	case errors.As(err, &syntaxErr):
		body.Errors["body"] = "is not valid JSON"
	default:
		body.Errors["body"] = err.Error()
	}

	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, body)
}

// FromError maps an error returned by a use case or repository to a response.
// Anything that is not a BusinessError is logged and answered with a generic 500.
func FromError(c *gin.Context, err error) {
	if be, ok := AsBusiness(err); ok {
		status := be.Status
		if status == 0 {
			status = http.StatusUnprocessableEntity
		}
		Write(c, status, be.Code, humanize(be.Code))
		return
	}

	zap.L().Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	Internal(c, "internal_error", "Unexpected server error.")
}

func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return toSnake(ns)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "datetime":
		return "must match format " + fe.Param()
	}
	return "is invalid"
}

func toSnake(s string) string {
	rs := []rune(s)
	var b strings.Builder
	for i, r := range rs {
		if unicode.IsUpper(r) {
			if i > 0 && rs[i-1] != '.' {
				prevLower := unicode.IsLower(rs[i-1]) || unicode.IsDigit(rs[i-1])
				nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
				if prevLower || (nextLower && unicode.IsUpper(rs[i-1])) {
					b.WriteByte('_')
				}
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func humanize(code string) string {
	s := strings.ReplaceAll(code, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:] + "."
}
