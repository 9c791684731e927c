package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/campus-fixit/issue-service/internal/config"
)

// S3Uploader puts images into an S3-compatible bucket with public-read ACL.
type S3Uploader struct {
	api     s3iface.S3API
	bucket  string
	folder  string
	baseURL string
}

// NewS3Uploader builds a session from static credentials when given, and from
// the default AWS chain otherwise.
func NewS3Uploader(cfg config.StorageConfig) (*S3Uploader, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.S3Region)}
	if cfg.S3AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.S3AccessKeyID, cfg.S3SecretKey, "")
	}
	if cfg.S3Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.S3Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}

	base := cfg.PublicBaseURL
	if base == "" {
		if cfg.S3Endpoint != "" {
			base = strings.TrimRight(cfg.S3Endpoint, "/") + "/" + cfg.S3Bucket
		} else {
			base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
		}
	}
	return newS3Uploader(s3.New(sess), cfg.S3Bucket, cfg.Folder, base), nil
}

func newS3Uploader(api s3iface.S3API, bucket, folder, baseURL string) *S3Uploader {
	return &S3Uploader{api: api, bucket: bucket, folder: folder, baseURL: strings.TrimRight(baseURL, "/")}
}

func (u *S3Uploader) Upload(ctx context.Context, img Image) (string, error) {
	key := objectKey(u.folder, img.Filename, img.ContentType)
	_, err := u.api.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(u.bucket),
		Key:          aws.String(key),
		Body:         img.Body,
		ContentType:  aws.String(img.ContentType),
		CacheControl: aws.String("public, max-age=31536000"),
		ACL:          aws.String(s3.ObjectCannedACLPublicRead),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return u.baseURL + "/" + key, nil
}
