package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/infra/storage"
)

const maxUploadBytes = 10 << 20

type upload struct {
	Data        []byte
	ContentType string
	Extension   string
	Filename    string
}

// readUpload reads the multipart field into memory and sniffs its type from
// the content, ignoring what the client declared.
func readUpload(c *gin.Context, field string, allowed ...string) (*upload, bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		httperr.Validation(c, httperr.FieldError(field, "is required"))
		return nil, false
	}
	if fh.Size > maxUploadBytes {
		httperr.Validation(c, httperr.FieldError(field, fmt.Sprintf("must be at most %d MB", maxUploadBytes>>20)))
		return nil, false
	}

	f, err := fh.Open()
	if err != nil {
		httperr.FromError(c, err)
		return nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		httperr.FromError(c, err)
		return nil, false
	}
	if len(data) > maxUploadBytes {
		httperr.Validation(c, httperr.FieldError(field, fmt.Sprintf("must be at most %d MB", maxUploadBytes>>20)))
		return nil, false
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowed...) {
		httperr.Validation(c, httperr.FieldError(field, "has an unsupported file type"))
		return nil, false
	}

	return &upload{
		Data:        data,
		ContentType: mt.String(),
		Extension:   mt.Extension(),
		Filename:    fh.Filename,
	}, true
}

// streamObject copies a stored object to the response.
func streamObject(c *gin.Context, store storage.Storage, key, contentType, filename string) {
	rc, err := store.Open(c.Request.Context(), key)
	if errors.Is(err, storage.ErrNotFound) {
		httperr.NotFound(c, "file_not_found", "File not found.")
		return
	}
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	defer rc.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	headers := map[string]string{
		"Cache-Control":          "private, no-store",
		"X-Content-Type-Options": "nosniff",
	}
	if filename != "" {
		headers["Content-Disposition"] = fmt.Sprintf("inline; filename=%q", filename)
	}

	c.DataFromReader(http.StatusOK, -1, contentType, rc, headers)
}
