package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/medspa-api/internal/infra/storage"
)

// presignOnly stands in for a driver that signs its own links, like S3.
type presignOnly struct{}

func (presignOnly) Put(context.Context, string, io.Reader, int64, string) error { return nil }
func (presignOnly) Open(context.Context, string) (io.ReadCloser, error) {
	return nil, storage.ErrNotFound
}
func (presignOnly) Delete(context.Context, string) error { return nil }
func (presignOnly) SignedURL(context.Context, string, time.Duration) (string, error) {
	return "https://bucket.example.com/x", nil
}

func fileRouter(store storage.Storage) *gin.Engine {
	h := NewFileHandler(nil, store)
	r := gin.New()
	r.GET("/files/signed", h.ServeSigned)
	r.GET("/api/files/signed-url", h.SignedURL)
	return r
}

func newLocalStore(t *testing.T) *storage.Local {
	t.Helper()
	l, err := storage.NewLocal(t.TempDir(), "signing-secret", "/files/signed")
	require.NoError(t, err)
	return l
}

func TestServeSignedStreamsFile(t *testing.T) {
	store := newLocalStore(t)
	key := "photos/2025/03/p.webp"
	require.NoError(t, store.Put(context.Background(), key, strings.NewReader("RIFFxxxxWEBP"), 12, "image/webp"))

	link, err := store.SignedURL(context.Background(), key, time.Minute)
	require.NoError(t, err)

	rec := serve(fileRouter(store), httptest.NewRequest(http.MethodGet, link, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/webp", rec.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "RIFFxxxxWEBP", rec.Body.String())
}

func TestServeSignedRejectsExpiredToken(t *testing.T) {
	store := newLocalStore(t)
	token, err := store.Sign("photos/2025/03/p.webp", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	rec := serve(fileRouter(store), httptest.NewRequest(http.MethodGet, "/files/signed?token="+url.QueryEscape(token), nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_token", decodeError(t, rec).Code)
}

func TestServeSignedMissingObject(t *testing.T) {
	store := newLocalStore(t)
	link, err := store.SignedURL(context.Background(), "consent/2025/03/gone.pdf", time.Minute)
	require.NoError(t, err)

	rec := serve(fileRouter(store), httptest.NewRequest(http.MethodGet, link, nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "file_not_found", decodeError(t, rec).Code)
}

func TestServeSignedUnavailableForPresigningDrivers(t *testing.T) {
	rec := serve(fileRouter(presignOnly{}), httptest.NewRequest(http.MethodGet, "/files/signed?token=abc", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSignedURLValidatesQuery(t *testing.T) {
	r := fileRouter(presignOnly{})

	cases := map[string]string{
		"/api/files/signed-url?type=invoice&id=1":         "invalid_type",
		"/api/files/signed-url?type=photo":                "invalid_id",
		"/api/files/signed-url?type=consent&id=0":         "invalid_id",
		"/api/files/signed-url?type=photo&id=3&expires=x": "invalid_expires",
	}
	for path, code := range cases {
		rec := serve(r, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Equal(t, code, decodeError(t, rec).Code, path)
	}
}
