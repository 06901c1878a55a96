package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

type GCSConfig struct {
	Bucket    string
	CDNDomain string
	// Path to a service account file, or the JSON itself. Empty uses
	// application default credentials.
	Credentials string
}

// GCSStore keeps media in a single Cloud Storage bucket, one prefix per kind.
type GCSStore struct {
	client    *storage.Client
	bucket    string
	cdnDomain string
	logger    *slog.Logger
}

func NewGCSStore(ctx context.Context, cfg GCSConfig, logger *slog.Logger) (*GCSStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("media: bucket name is required")
	}

	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	if creds := strings.TrimSpace(cfg.Credentials); creds != "" {
		if strings.HasPrefix(creds, "{") {
			opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
		} else {
			opts = append(opts, option.WithCredentialsFile(creds))
		}
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &GCSStore{
		client:    client,
		bucket:    cfg.Bucket,
		cdnDomain: cfg.CDNDomain,
		logger:    logger.With("component", "gcs_media_store", "bucket", cfg.Bucket),
	}, nil
}

func (s *GCSStore) Upload(ctx context.Context, kind Kind, file File) (*Object, error) {
	if file.Body == nil || file.Size == 0 {
		return nil, ErrEmptyFile
	}

	key := objectKey(kind, file.Name)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentTypeFor(file)
	if _, err := io.Copy(w, file.Body); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to write object %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize object %q: %w", key, err)
	}

	s.logger.Info("Uploaded media", "key", key, "size", file.Size)

	return &Object{ID: key, URL: s.publicURL(key)}, nil
}

// Delete removes the object. A missing object counts as deleted.
func (s *GCSStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	err := s.client.Bucket(s.bucket).Object(id).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete object %q: %w", id, err)
	}
	return nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

func (s *GCSStore) publicURL(key string) string {
	if s.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", s.cdnDomain, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, key)
}

func objectKey(kind Kind, name string) string {
	return path.Join(string(kind), uuid.NewString()+strings.ToLower(path.Ext(name)))
}
