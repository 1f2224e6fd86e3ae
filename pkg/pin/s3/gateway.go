// Package s3 implements the pin gateway over Amazon S3 or S3-compatible
// object storage, for deployments that keep content in their own bucket
// instead of a pinning service.
//
// Keys are content-addressed: the handle is the SHA-256 of the bytes, so
// pinning identical content twice stores one object and unpinning is a
// plain DeleteObject.
package s3

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/zeroten/pindex/internal/logger"
	"github.com/zeroten/pindex/pkg/metadata"
)

// Gateway is an S3-backed metadata.PinGateway.
//
// Thread safety: the underlying S3 client is safe for concurrent use; the
// gateway holds no other state.
type Gateway struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
}

// Config contains configuration for the S3 gateway.
type Config struct {
	// Client is the configured S3 client
	Client *s3.Client

	// Bucket is the S3 bucket name
	Bucket string

	// KeyPrefix is an optional prefix for all object keys
	// Example: "pindex/content/" results in keys like "pindex/content/ab12..."
	KeyPrefix string
}

// New creates an S3 gateway and verifies bucket access. The bucket must
// already exist.
func New(ctx context.Context, cfg Config) (*Gateway, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cfg.Client == nil {
		return nil, fmt.Errorf("S3 client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	_, err := cfg.Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(cfg.Bucket),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to access bucket %q: %w", cfg.Bucket, err)
	}

	return &Gateway{
		client:    cfg.Client,
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
	}, nil
}

// Pin stores content and returns its SHA-256 digest as the handle.
//
// The content is buffered in memory to compute the digest before upload;
// pinned payloads are files a user just submitted, not bulk data.
func (g *Gateway) Pin(ctx context.Context, name string, content io.Reader) (metadata.ContentHandle, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}

	sum := sha256.Sum256(data)
	handle := metadata.ContentHandle(hex.EncodeToString(sum[:]))

	_, err = g.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(g.objectKey(handle)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store content %s: %w", handle, err)
	}

	logger.Debug("pinned %s as s3://%s/%s", name, g.bucket, g.objectKey(handle))
	return handle, nil
}

// Unpin deletes the object behind handle. A missing object is success;
// unpin is idempotent.
func (g *Gateway) Unpin(ctx context.Context, handle metadata.ContentHandle) error {
	_, err := g.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(g.objectKey(handle)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil
		}
		return fmt.Errorf("failed to delete content %s: %w", handle, err)
	}
	return nil
}

func (g *Gateway) objectKey(handle metadata.ContentHandle) string {
	return g.keyPrefix + string(handle)
}
