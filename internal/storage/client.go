package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lumina-app/lumina-import-go/pkg/errors"
	"go.uber.org/zap"
)

// Client talks to an S3-style object store over its REST surface. The bucket
// is fixed by configuration; the store is assumed already authenticated via a
// bearer key.
type Client struct {
	httpClient *http.Client
	endpoint   string
	bucket     string
	apiKey     string
	logger     *zap.Logger
}

type Config struct {
	Endpoint string
	Bucket   string
	APIKey   string
}

func NewClient(cfg Config, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		endpoint:   strings.TrimSuffix(cfg.Endpoint, "/"),
		bucket:     cfg.Bucket,
		apiKey:     cfg.APIKey,
		logger:     logger,
	}
}

// Upload writes an object under the configured bucket.
func (c *Client) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.endpoint, c.bucket, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return errors.NewStorageError("failed to build upload request", "upload", key, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewStorageError("upload request failed", "upload", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("Object upload rejected",
			zap.String("key", key),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return errors.NewStorageError(fmt.Sprintf("upload rejected with status %d", resp.StatusCode), "upload", key, nil)
	}

	return nil
}

// PublicURL returns the public retrieval URL for an uploaded object.
func (c *Client) PublicURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.endpoint, c.bucket, key)
}
