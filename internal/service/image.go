package service

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smartbites/backend/config"
)

// ObjectPutter is the slice of the S3 API the archive needs
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ImageArchive keeps a copy of photos sent with suggestion requests
type ImageArchive struct {
	client ObjectPutter
	bucket string
	logger *zap.Logger
}

// NewImageArchive creates a new ImageArchive instance
func NewImageArchive(s3Config *config.S3Config, logger *zap.Logger) *ImageArchive {
	return &ImageArchive{
		client: s3Config.Client,
		bucket: s3Config.BucketName,
		logger: logger.Named("image_archive"),
	}
}

// NewImageArchiveWithClient is used when the client is built elsewhere
func NewImageArchiveWithClient(client ObjectPutter, bucket string, logger *zap.Logger) *ImageArchive {
	return &ImageArchive{client: client, bucket: bucket, logger: logger.Named("image_archive")}
}

// Store uploads data under suggestions/<owner>/<uuid><ext> and returns the key
func (a *ImageArchive) Store(ctx context.Context, owner string, filename string, data []byte) (string, error) {
	if owner == "" {
		owner = "anonymous"
	}
	contentType := http.DetectContentType(data)
	ext := path.Ext(filename)
	if ext == "" {
		ext = extensionFor(contentType)
	}
	key := fmt.Sprintf("suggestions/%s/%s%s", owner, uuid.NewString(), ext)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to S3: %w", err)
	}

	a.logger.Debug("archived suggestion image", zap.String("key", key), zap.Int("bytes", len(data)))
	return key, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
