// Package storage hosts issue photos and hands back their public URL.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/campus-fixit/issue-service/internal/config"
)

// Providers accepted by STORAGE_PROVIDER.
const (
	ProviderLocal = "local"
	ProviderS3    = "s3"
)

// Image is an uploaded photo before it has been hosted.
type Image struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}

// ImageUploader stores an image and returns the URL clients can load it from.
type ImageUploader interface {
	Upload(ctx context.Context, img Image) (string, error)
}

// New selects the backend configured in cfg. publicURL is the service's
// externally reachable base URL, used by the local backend.
func New(cfg config.StorageConfig, publicURL string) (ImageUploader, error) {
	switch cfg.Provider {
	case ProviderLocal, "":
		base := cfg.PublicBaseURL
		if base == "" {
			base = strings.TrimRight(publicURL, "/") + "/uploads"
		}
		return NewLocalUploader(cfg.LocalDir, cfg.Folder, base)
	case ProviderS3:
		return NewS3Uploader(cfg)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

// objectKey builds "<folder>/<uuid><ext>" so client file names never reach the host.
func objectKey(folder, filename, contentType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		if sub := strings.TrimPrefix(contentType, "image/"); sub != contentType && sub != "" {
			ext = "." + strings.SplitN(sub, "+", 2)[0]
		}
	}
	name := uuid.NewString() + ext
	if folder == "" {
		return name
	}
	return path.Join(folder, name)
}
