package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore publishes calendars to Cloud Storage so calendar clients can
// subscribe to a public object URL.
type GCSStore struct {
	client *gcs.Client
}

// NewGCS creates a Cloud Storage client. With an empty credentialsFile the
// default application credentials are used.
func NewGCS(ctx context.Context, credentialsFile string) (*GCSStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	return &GCSStore{client: client}, nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

func (s *GCSStore) Put(ctx context.Context, bucket, object string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	writer := s.client.Bucket(bucket).Object(object).NewWriter(ctx)
	writer.ContentType = contentType(object)
	writer.CacheControl = "public, max-age=300"

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return fmt.Errorf("writing gs://%s/%s: %w", bucket, object, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing gs://%s/%s: %w", bucket, object, err)
	}
	return nil
}

func (s *GCSStore) Get(ctx context.Context, bucket, object string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	reader, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening gs://%s/%s: %w", bucket, object, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading gs://%s/%s: %w", bucket, object, err)
	}
	return data, nil
}

func contentType(object string) string {
	switch path.Ext(object) {
	case ".ics":
		return "text/calendar; charset=utf-8"
	case ".csv":
		return "text/csv; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
