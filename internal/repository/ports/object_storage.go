package ports

import (
	"context"
	"io"
)

type ObjectStorage interface {
	Put(ctx context.Context, bucket, objectKey string, reader io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, bucket, objectKey string) error
	PublicURL(bucket, objectKey string) string
}
