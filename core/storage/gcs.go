package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
)

// GCSStore uploads artifacts to a Google Cloud Storage bucket.
type GCSStore struct {
	client *gcs.Client
	bucket string
	prefix string
	public bool
}

type GCSOption func(*GCSStore)

// WithObjectPrefix stores objects under a "directory" of the bucket.
func WithObjectPrefix(prefix string) GCSOption {
	return func(s *GCSStore) {
		s.prefix = prefix
	}
}

// WithPublicRead grants read access to everyone on uploaded objects.
func WithPublicRead() GCSOption {
	return func(s *GCSStore) {
		s.public = true
	}
}

func NewGCSStore(ctx context.Context, bucket string, opts ...GCSOption) (*GCSStore, error) {
	c, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	s := &GCSStore{client: c, bucket: bucket}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *GCSStore) Close() error { return s.client.Close() }

func (s *GCSStore) Save(ctx context.Context, name string, contentType string, data []byte) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}

	objectName := s.prefix + name
	obj := s.client.Bucket(s.bucket).Object(objectName)

	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to upload artifact: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finish upload: %w", err)
	}

	if s.public {
		if err := obj.ACL().Set(ctx, gcs.AllUsers, gcs.RoleReader); err != nil {
			return "", fmt.Errorf("failed to make artifact public: %w", err)
		}
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, objectName), nil
}
