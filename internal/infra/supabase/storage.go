package supabase

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ============================================================
// Storage: public bucket uploads
// ============================================================

// Storage uploads objects into one public bucket.
type Storage struct {
	client *Client
	bucket string
}

// NewStorage binds a bucket on the given client.
func NewStorage(client *Client, bucket string) *Storage {
	return &Storage{client: client, bucket: bucket}
}

func (s *Storage) objectURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.client.baseURL, s.bucket, strings.TrimLeft(objectPath, "/"))
}

// PublicURL is the unauthenticated download URL of objectPath.
func (s *Storage) PublicURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.client.baseURL, s.bucket, strings.TrimLeft(objectPath, "/"))
}

// Upload stores body at objectPath. Existing objects are never overwritten.
func (s *Storage) Upload(ctx context.Context, objectPath, contentType string, body io.Reader, cacheControl time.Duration) error {
	ctx, span := tracer.Start(ctx, "Supabase.Upload")
	defer span.End()

	c := s.client
	return c.write(ctx, "storage", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.objectURL(objectPath), body)
		if err != nil {
			return err
		}
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.bearer(ctx))
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Cache-Control", "max-age="+strconv.Itoa(int(cacheControl.Seconds())))
		req.Header.Set("x-upsert", "false")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Error("supabase: upload failed",
				zap.String("bucket", s.bucket),
				zap.String("path", objectPath),
				zap.Error(err),
			)
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			raw, _ := io.ReadAll(resp.Body)
			c.logger.Warn("supabase: upload non-2xx",
				zap.String("bucket", s.bucket),
				zap.String("path", objectPath),
				zap.Int("status", resp.StatusCode),
				zap.String("body", string(raw)),
			)
			return &apiError{Status: resp.StatusCode, Body: string(raw)}
		}

		c.logger.Debug("supabase: upload OK",
			zap.String("bucket", s.bucket),
			zap.String("path", objectPath),
		)
		return nil
	})
}
