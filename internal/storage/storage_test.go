package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-fixit/issue-service/internal/config"
)

func TestLocalUploaderWritesFileAndReturnsURL(t *testing.T) {
	root := t.TempDir()
	uploader, err := NewLocalUploader(root, "campus-fixit", "http://localhost:3000/uploads/")
	require.NoError(t, err)

	url, err := uploader.Upload(context.Background(), Image{
		Filename:    "Leak.PNG",
		ContentType: "image/png",
		Body:        bytes.NewReader([]byte("png-bytes")),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:3000/uploads/campus-fixit/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	key := strings.TrimPrefix(url, "http://localhost:3000/uploads/")
	content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(content))
}

func TestLocalUploaderHonoursCancelledContext(t *testing.T) {
	uploader, err := NewLocalUploader(t.TempDir(), "", "http://x/uploads")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = uploader.Upload(ctx, Image{Filename: "a.jpg", Body: bytes.NewReader(nil)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestObjectKeyDerivesExtensionFromContentType(t *testing.T) {
	key := objectKey("campus-fixit", "blob", "image/svg+xml")
	assert.True(t, strings.HasPrefix(key, "campus-fixit/"))
	assert.True(t, strings.HasSuffix(key, ".svg"))

	assert.NotContains(t, objectKey("", "noext", "application/octet-stream"), ".")
}

func TestNewSelectsLocalByDefault(t *testing.T) {
	uploader, err := New(config.StorageConfig{LocalDir: t.TempDir(), Folder: "f"}, "http://api.test/")
	require.NoError(t, err)
	local, ok := uploader.(*LocalUploader)
	require.True(t, ok)
	assert.Equal(t, "http://api.test/uploads", local.baseURL)

	_, err = New(config.StorageConfig{Provider: "ftp"}, "")
	assert.Error(t, err)
}

type fakeS3 struct {
	s3iface.S3API
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3UploaderPutsObject(t *testing.T) {
	api := &fakeS3{}
	uploader := newS3Uploader(api, "bucket", "campus-fixit", "https://cdn.example.com/")

	url, err := uploader.Upload(context.Background(), Image{
		Filename:    "photo.jpg",
		ContentType: "image/jpeg",
		Body:        bytes.NewReader([]byte("jpeg")),
	})
	require.NoError(t, err)
	assert.Equal(t, "bucket", aws.StringValue(api.input.Bucket))
	assert.Equal(t, "image/jpeg", aws.StringValue(api.input.ContentType))
	assert.Equal(t, "https://cdn.example.com/"+aws.StringValue(api.input.Key), url)
	assert.Equal(t, "jpeg", string(api.body))
}

func TestS3UploaderWrapsError(t *testing.T) {
	api := &fakeS3{err: errors.New("denied")}
	uploader := newS3Uploader(api, "bucket", "", "https://cdn")

	_, err := uploader.Upload(context.Background(), Image{Filename: "a.png", Body: bytes.NewReader(nil)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
}
