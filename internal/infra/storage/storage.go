package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/medspa-api/internal/config"
)

var (
	ErrNotFound   = errors.New("object not found")
	ErrInvalidKey = errors.New("invalid object key")
)

// Storage keeps private files such as consent PDFs and treatment photos.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// SignedURL returns a time-limited download link for key.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// New builds the driver selected by STORAGE_DRIVER.
func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.StorageDriver {
	case "", "local":
		return NewLocal(cfg.StorageLocalDir, cfg.SignedURLSecret, "/files/signed")
	case "s3":
		return NewS3(ctx, S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

// NewKey returns a unique key under prefix, e.g. consent/2025/03/<uuid>.pdf.
func NewKey(prefix, ext string, now time.Time) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return path.Join(prefix, now.Format("2006/01"), uuid.NewString()+strings.ToLower(ext))
}

// cleanKey rejects absolute keys and keys escaping the storage root.
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	k := path.Clean(key)
	if k == "." || k == ".." || strings.HasPrefix(k, "../") {
		return "", ErrInvalidKey
	}
	return k, nil
}

// ===============================
// Signed URL expiry
// ===============================

const (
	MinSignedURLTTL     = 60 * time.Second
	MaxSignedURLTTL     = 3600 * time.Second
	DefaultSignedURLTTL = 15 * time.Minute
)

// ClampTTL bounds a requested expiry in seconds. Zero selects the default.
func ClampTTL(seconds int) time.Duration {
	if seconds == 0 {
		return DefaultSignedURLTTL
	}
	ttl := time.Duration(seconds) * time.Second
	if ttl < MinSignedURLTTL {
		return MinSignedURLTTL
	}
	if ttl > MaxSignedURLTTL {
		return MaxSignedURLTTL
	}
	return ttl
}
