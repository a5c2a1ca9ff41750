// Package source delivers statement text to the pipeline, either from
// the local filesystem or from Google Cloud Storage.
package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

const uploadTimeout = 2 * time.Minute

// Fetcher retrieves statement text by URI. The GCS-backed Service
// implements it; tests substitute a stub.
type Fetcher interface {
	FetchText(ctx context.Context, uri string) (string, error)
}

// Service reads and writes statement text in Google Cloud Storage. It
// assumes Application Default Credentials are configured.
type Service struct{}

// NewService creates a GCS-backed source service.
func NewService() *Service {
	return &Service{}
}

var _ Fetcher = (*Service)(nil)

// FetchText downloads the statement text behind a gs:// URI.
func (s *Service) FetchText(ctx context.Context, uri string) (string, error) {
	bucketName, objectPath, err := splitURI(uri)
	if err != nil {
		return "", err
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	rc, err := client.Bucket(bucketName).Object(objectPath).NewReader(ctx)
	if err != nil {
		return "", fmt.Errorf("open object %s/%s: %w", bucketName, objectPath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read object %s/%s: %w", bucketName, objectPath, err)
	}
	return string(data), nil
}

// UploadFile uploads a local file to the bucket under objectName.
func (s *Service) UploadFile(ctx context.Context, bucketName, objectName, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open file %q: %w", filePath, err)
	}
	defer f.Close()

	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return fmt.Errorf("copy file to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize upload: %w", err)
	}
	return nil
}

// FileNameFromURI extracts the file name from a gs:// URI,
// e.g. "gs://bucket/folder/statement.txt" → "statement.txt".
// Non-URI inputs fall through to their path base.
func FileNameFromURI(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return path.Base(trimmed)
	}
	return path.Base(parts[1])
}

// IsGCSURI reports whether the input names a GCS object.
func IsGCSURI(uri string) bool {
	return strings.HasPrefix(uri, "gs://")
}

func splitURI(uri string) (bucket, object string, err error) {
	if !IsGCSURI(uri) {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}
