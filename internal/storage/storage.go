// Package storage persists uploaded media files on local disk or in Cloudflare R2.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/blockpress/internal/config"
)

// ErrInvalidKey is returned for empty keys or keys that escape the storage root.
var ErrInvalidKey = errors.New("invalid storage key")

// Storage 抽象媒体文件的写入与删除。
type Storage interface {
	// Put stores the object and returns its public URL.
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	Delete(ctx context.Context, key string) error
}

// New picks the backend configured by cfg.
func New(cfg config.AppConfig) (Storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverR2:
		return NewR2Storage(cfg.Storage), nil
	case config.StorageDriverLocal, "":
		return NewLocalStorage(cfg.UploadDir, cfg.UploadURLPath), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func cleanKey(key string) (string, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" || strings.Contains(trimmed, "..") || strings.HasPrefix(trimmed, "/") {
		return "", ErrInvalidKey
	}
	return path.Clean(trimmed), nil
}
