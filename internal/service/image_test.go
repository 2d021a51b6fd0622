package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (p *recordingPutter) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.input = params
	p.body, _ = io.ReadAll(params.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestImageArchive_Store(t *testing.T) {
	ctx := context.Background()
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	t.Run("should upload under the owner's prefix", func(t *testing.T) {
		putter := &recordingPutter{}
		archive := NewImageArchiveWithClient(putter, "smartbites-images", zap.NewNop())

		key, err := archive.Store(ctx, "user-1", "lunch.PNG", png)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(key, "suggestions/user-1/"))
		assert.True(t, strings.HasSuffix(key, ".PNG"))

		assert.Equal(t, "smartbites-images", aws.ToString(putter.input.Bucket))
		assert.Equal(t, key, aws.ToString(putter.input.Key))
		assert.Equal(t, "image/png", aws.ToString(putter.input.ContentType))
		assert.Equal(t, png, putter.body)
	})

	t.Run("should file anonymous uploads separately and infer the extension", func(t *testing.T) {
		putter := &recordingPutter{}
		archive := NewImageArchiveWithClient(putter, "bucket", zap.NewNop())

		key, err := archive.Store(ctx, "", "", png)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(key, "suggestions/anonymous/"))
		assert.True(t, strings.HasSuffix(key, ".png"))
	})

	t.Run("should return upload errors", func(t *testing.T) {
		putter := &recordingPutter{err: errors.New("access denied")}
		archive := NewImageArchiveWithClient(putter, "bucket", zap.NewNop())

		_, err := archive.Store(ctx, "user-1", "a.jpg", png)
		assert.ErrorContains(t, err, "access denied")
	})
}
