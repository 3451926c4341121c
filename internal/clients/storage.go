// Package clients holds HTTP clients for external collaborators.
package clients

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sagarchy-05/ecommerce-backend/internal/config"
)

// ObjectStorage stores an uploaded blob and returns its public URL.
type ObjectStorage interface {
	Put(ctx context.Context, key string, contentType string, data []byte) (string, error)
}

// HTTPObjectStorage implements ObjectStorage against an S3-style HTTP
// object store with public-read buckets.
type HTTPObjectStorage struct {
	baseURL    string
	bucket     string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHTTPObjectStorage(cfg config.StorageConfig, logger *slog.Logger) *HTTPObjectStorage {
	return &HTTPObjectStorage{
		baseURL: cfg.BaseURL,
		bucket:  cfg.Bucket,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

func (c *HTTPObjectStorage) Put(ctx context.Context, key string, contentType string, data []byte) (string, error) {
	objectURL := fmt.Sprintf("%s/%s/%s", c.baseURL, c.bucket, url.PathEscape(key))

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, objectURL, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("object upload failed", "key", key, "error", err)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("object store returned status %d", resp.StatusCode)
	}

	c.logger.Info("object uploaded", "key", key, "bytes", len(data))
	return objectURL, nil
}

// ObjectKey builds a collision-resistant key for an uploaded file.
func ObjectKey(prefix, filename string) string {
	return fmt.Sprintf("%s/%d_%s", prefix, time.Now().UnixNano(), filename)
}
