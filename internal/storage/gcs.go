package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"go.uber.org/zap"
)

type gcsStore struct {
	log    *zap.Logger
	client *gcs.Client
	bucket string
}

// NewGCSStore opens a Google Cloud Storage backed store. Credentials come
// from the ambient environment (ADC).
func NewGCSStore(ctx context.Context, log *zap.Logger, bucket string) (Store, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return &gcsStore{
		log:    log.Named("storage.gcs"),
		client: client,
		bucket: bucket,
	}, nil
}

func (s *gcsStore) GetBytes(ctx context.Context, key string) ([]byte, error) {
	reader, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("%w: open %s: %v", ErrStorage, key, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrStorage, key, err)
	}
	return data, nil
}

func (s *gcsStore) PutBytes(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	writer := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("%w: write %s: %v", ErrStorage, key, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%w: finalize %s: %v", ErrStorage, key, err)
	}

	url := fmt.Sprintf("gs://%s/%s", s.bucket, key)
	s.log.Debug("object written", zap.String("key", key), zap.Int("bytes", len(data)))
	return url, nil
}

func (s *gcsStore) Delete(ctx context.Context, key string) error {
	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("%w: delete %s: %v", ErrStorage, key, err)
	}
	return nil
}
