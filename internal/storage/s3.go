package storage

import (
	a "campusshare/api/aws"
	"campusshare/api/internal/apperr"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

const (
	minMultipartSize = 6 << 20
	cleanupTimeout   = 30 * time.Second
)

// S3 keeps blobs as objects in a bucket. The stored path is the object key.
type S3 struct {
	client *a.S3Client
	limits Limits
	now    func() time.Time
}

func NewS3(c *a.S3Client, l Limits) *S3 {
	return &S3{
		client: c,
		limits: l,
		now:    time.Now,
	}
}

func (s *S3) Put(ctx context.Context, r io.Reader, size int64, originalName string) (*Blob, error) {
	ext, err := s.limits.CheckName(originalName)
	if err != nil {
		return nil, err
	}

	if err := s.limits.CheckSize(size); err != nil {
		return nil, err
	}

	mime, body, err := sniff(r)
	if err != nil {
		return nil, err
	}

	key := StoredName(originalName, s.now())

	input := &s3.PutObjectInput{
		Bucket:        s.client.Bucket,
		Key:           aws.String(key),
		Body:          s.limits.reader(body),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(mime.String()),
	}

	if size > minMultipartSize {
		uploader := manager.NewUploader(s.client.C, func(u *manager.Uploader) {
			u.Concurrency = 5
			u.PartSize = 5 << 20
		})
		_, err = uploader.Upload(ctx, input)
	} else {
		_, err = s.client.C.PutObject(ctx, input)
	}
	if err != nil {
		s.cleanup(key)

		if errors.Is(err, apperr.ErrPayloadTooLarge) {
			return nil, fmt.Errorf("%w: maximum is %d bytes", apperr.ErrPayloadTooLarge, s.limits.MaxSize)
		}

		return nil, fmt.Errorf("%w: failed to upload object, %v", apperr.ErrStoreFailure, err)
	}

	return &Blob{
		Name:        key,
		Path:        key,
		Ext:         ext,
		ContentType: mime.String(),
		Size:        size,
	}, nil
}

// cleanup removes what a failed upload may have left behind. A partial object
// can't exist after a failed PutObject, but the multipart uploader may abort late.
// The request context may already be gone so it gets its own.
func (s *S3) cleanup(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	if err := s.Delete(ctx, key); err != nil {
		zap.L().Warn("Failed to cleanup after failed upload", zap.String("key", key), zap.Error(err))
	}
}

func (s *S3) Open(ctx context.Context, key string) (*Object, error) {
	out, err := s.client.C.GetObject(ctx, &s3.GetObjectInput{
		Bucket: s.client.Bucket,
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: object %s is missing", apperr.ErrNotFound, key)
		}

		return nil, fmt.Errorf("%w: failed to get object, %v", apperr.ErrStoreFailure, err)
	}

	return &Object{
		Body: out.Body,
		Size: aws.ToInt64(out.ContentLength),
	}, nil
}

func (s *S3) Delete(ctx context.Context, key string) error {
	_, err := s.client.C.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: s.client.Bucket,
		Key:    aws.String(key),
	})
	if err != nil && !isNotFound(err) {
		return err
	}

	return nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "NotFound" || apiErr.ErrorCode() == "NoSuchKey"
	}

	return false
}
