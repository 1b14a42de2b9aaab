package storage

import (
	"context"
	"io"
	"strings"
	"time"
)

// Service stores user avatar objects in remote object storage.
type Service interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	GetObjectURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// ObjectKey extracts the object key from an s3://bucket/key location as
// produced by Upload. Any other string (including plain https URLs) reports
// false.
func ObjectKey(location string) (string, bool) {
	rest, ok := strings.CutPrefix(location, "s3://")
	if !ok {
		return "", false
	}
	_, key, ok := strings.Cut(rest, "/")
	if !ok || key == "" {
		return "", false
	}
	return key, true
}
