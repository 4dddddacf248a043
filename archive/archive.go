// Package archive uploads rendered charts to a Google Cloud Storage
// bucket. The archive step is optional and failures here degrade only
// the archive, never the analysis run.
package archive

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

type putFunc func(ctx context.Context, object string, data []byte) error

// Uploader copies local chart files into a bucket under a fixed prefix.
type Uploader struct {
	bucket  string
	prefix  string
	client  *storage.Client
	breaker *gobreaker.CircuitBreaker[struct{}]
	logger  *zap.Logger
	put     putFunc
}

// NewUploader builds a GCS client and a circuit breaker around it.
// Client options pass through, so tests and alternate credentials can
// inject their own.
func NewUploader(ctx context.Context, bucket, prefix string, logger *zap.Logger, opts ...option.ClientOption) (*Uploader, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	u := &Uploader{
		bucket: bucket,
		prefix: prefix,
		client: client,
		logger: logger,
	}
	u.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "chart-archive",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
	})
	u.put = u.putObject
	return u, nil
}

// UploadFile copies one local file into the bucket, keeping its base
// name under the uploader's prefix.
func (u *Uploader) UploadFile(ctx context.Context, localPath string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", localPath, err)
	}
	object := path.Join(u.prefix, filepath.Base(localPath))

	_, err = u.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, u.put(ctx, object, data)
	})
	if err != nil {
		return fmt.Errorf("upload %s to gs://%s/%s: %w", localPath, u.bucket, object, err)
	}

	u.logger.Info("archived chart",
		zap.String("file", localPath),
		zap.String("bucket", u.bucket),
		zap.String("object", object))
	return nil
}

// UploadAll uploads every path, logging and continuing on per-file
// failures. Returns how many uploads succeeded.
func (u *Uploader) UploadAll(ctx context.Context, paths []string) int {
	uploaded := 0
	for _, p := range paths {
		if err := u.UploadFile(ctx, p); err != nil {
			u.logger.Warn("chart archive failed", zap.Error(err))
			continue
		}
		uploaded++
	}
	return uploaded
}

// Close releases the underlying client.
func (u *Uploader) Close() error {
	if u.client == nil {
		return nil
	}
	return u.client.Close()
}

func (u *Uploader) putObject(ctx context.Context, object string, data []byte) error {
	w := u.client.Bucket(u.bucket).Object(object).NewWriter(ctx)
	w.ContentType = "image/png"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
