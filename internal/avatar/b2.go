package avatar

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/kurin/blazer/b2"
)

const b2KeyPrefix = "profile_pics/"

// B2Storage keeps avatars in a Backblaze B2 bucket.
type B2Storage struct {
	bucket  *b2.Bucket
	baseURL string
}

func NewB2Storage(ctx context.Context, keyID, appKey, bucketName, baseURL string) (*B2Storage, error) {
	client, err := b2.NewClient(ctx, keyID, appKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create b2 client: %w", err)
	}
	bucket, err := client.Bucket(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}
	return &B2Storage{bucket: bucket, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *B2Storage) Save(ctx context.Context, name string, data []byte) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	w := s.bucket.Object(b2KeyPrefix + name).NewWriter(ctx)
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		cancel()
		w.Close()
		return fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}
	return nil
}

func (s *B2Storage) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.bucket.Object(b2KeyPrefix + name).Attrs(ctx)
	if b2.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *B2Storage) URL(name string) string {
	if s.baseURL != "" {
		return s.baseURL + "/" + b2KeyPrefix + name
	}
	return s.bucket.Object(b2KeyPrefix + name).URL()
}
