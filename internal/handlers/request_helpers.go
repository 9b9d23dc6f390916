package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/medspa-api/internal/db"
	"github.com/BruksfildServices01/medspa-api/internal/httperr"
)

// paramID reads a positive numeric path parameter and answers 400 otherwise.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		httperr.BadRequest(c, "invalid_"+name, "Invalid "+name+".")
		return 0, false
	}
	return uint(id), true
}

// queryUint returns nil for a missing or malformed value.
func queryUint(c *gin.Context, name string) *uint {
	v, err := strconv.ParseUint(c.Query(name), 10, 64)
	if err != nil || v == 0 {
		return nil
	}
	id := uint(v)
	return &id
}

// bindJSON binds the body and answers 422 with field errors on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httperr.Validation(c, err)
		return false
	}
	return true
}

// findByID loads one row or answers 404 with code.
func findByID[T any](c *gin.Context, q *gorm.DB, id uint, code string) (*T, bool) {
	var row T
	if err := q.WithContext(c.Request.Context()).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, code, "Resource not found.")
			return nil, false
		}
		httperr.FromError(c, err)
		return nil, false
	}
	return &row, true
}

// deleteByID removes one row of model and answers 204, 404 when nothing
// matched, or 409 when other rows still reference it.
func deleteByID(c *gin.Context, q *gorm.DB, model any, id uint, code string) bool {
	res := q.WithContext(c.Request.Context()).Delete(model, id)
	if res.Error != nil {
		if db.IsForeignKeyViolation(res.Error) {
			httperr.Conflict(c, "resource_in_use", "The record is still referenced by other records.")
			return false
		}
		httperr.FromError(c, res.Error)
		return false
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, code, "Resource not found.")
		return false
	}
	return true
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// assign copies src into dst when the request carried the field.
func assign[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
