package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalUploader writes images below a directory that the API serves statically.
type LocalUploader struct {
	root    string
	folder  string
	baseURL string
}

// NewLocalUploader ensures root exists.
func NewLocalUploader(root, folder, baseURL string) (*LocalUploader, error) {
	if root == "" {
		return nil, fmt.Errorf("local storage directory is empty")
	}
	if err := os.MkdirAll(filepath.Join(root, folder), 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalUploader{root: root, folder: folder, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (l *LocalUploader) Upload(ctx context.Context, img Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := objectKey(l.folder, img.Filename, img.ContentType)
	dst := filepath.Join(l.root, filepath.FromSlash(key))

	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, img.Body); err != nil {
		f.Close()
		_ = os.Remove(dst)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(dst)
		return "", err
	}
	return l.baseURL + "/" + key, nil
}
