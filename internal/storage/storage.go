package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"

	"microcasa/internal/config"
	"microcasa/internal/telemetry"
)

// ErrNotFound is returned for a snapshot the session never exported.
var ErrNotFound = errors.New("export not found")

// Client archives telemetry snapshots in the exports bucket.
type Client struct {
	backend Provider
	bucket  string
}

func New(cfg *config.Config) (*Client, error) {
	var backend Provider

	switch cfg.Storage.Provider {
	case "local", "":
		backend = NewLocalProvider(cfg.Storage.LocalStorage)
	case "s3", "b2":
		s3Config := &aws.Config{
			Credentials:      credentials.NewStaticCredentials(cfg.Storage.KeyID, cfg.Storage.AppKey, ""),
			Region:           aws.String(cfg.Storage.Region),
			S3ForcePathStyle: aws.Bool(true),
		}
		if cfg.Storage.Endpoint != "" {
			s3Config.Endpoint = aws.String(cfg.Storage.Endpoint)
		}
		sess, err := session.NewSession(s3Config)
		if err != nil {
			return nil, fmt.Errorf("s3 session: %w", err)
		}
		backend = NewS3Provider(sess)
	default:
		return nil, fmt.Errorf("unsupported storage provider %q", cfg.Storage.Provider)
	}

	return NewWithProvider(backend, cfg.Storage.BucketExports), nil
}

func NewWithProvider(backend Provider, bucket string) *Client {
	return &Client{backend: backend, bucket: bucket}
}

// ExportKey names the CSV snapshot of a session taken at t.
func ExportKey(sessionID string, t time.Time) string {
	return fmt.Sprintf("%s/%s.csv", sessionID, t.UTC().Format("20060102T150405.000Z"))
}

// ExportTelemetry writes the table as CSV and returns the object key.
func (c *Client) ExportTelemetry(ctx context.Context, sessionID string, at time.Time, rows []telemetry.Reading) (string, error) {
	var buf bytes.Buffer
	if err := telemetry.WriteCSV(&buf, rows); err != nil {
		return "", err
	}

	key := ExportKey(sessionID, at)
	if err := c.backend.Put(ctx, c.bucket, key, bytes.NewReader(buf.Bytes()), "text/csv"); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return key, nil
}

// ListExports returns the keys exported for a session.
func (c *Client) ListExports(ctx context.Context, sessionID string) ([]string, error) {
	return c.backend.List(ctx, c.bucket, sessionID+"/")
}

func (c *Client) DownloadExport(ctx context.Context, key string) (*FileObject, error) {
	return c.backend.Get(ctx, c.bucket, key)
}

// DeleteExport removes one snapshot of the session.
func (c *Client) DeleteExport(ctx context.Context, sessionID, file string) error {
	keys, err := c.ListExports(ctx, sessionID)
	if err != nil {
		return err
	}
	key := sessionID + "/" + file
	if !slices.Contains(keys, key) {
		return ErrNotFound
	}
	if err := c.backend.Delete(ctx, c.bucket, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
