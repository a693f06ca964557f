// Package artifact stores rendered ticket images in an S3-compatible object
// store under deterministic keys, so a retried render overwrites instead of
// duplicating.
package artifact

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/faxmemaybe/backend/domain"
	"github.com/faxmemaybe/backend/internal/config"
)

// TicketKey derives the deterministic object key for a submission's ticket.
func TicketKey(localID string) string {
	return fmt.Sprintf("todo-tickets/todo-%s.png", localID)
}

// Store writes ticket artifacts to a bucket.
type Store struct {
	client *s3.Client
	bucket string
	logger *zap.Logger
}

// NewStore builds the object-store client. A custom endpoint switches the
// client to path-style addressing for R2 and other S3-compatible stores.
func NewStore(ctx context.Context, cfg config.ArtifactConfig, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Store{
		client: client,
		bucket: cfg.Bucket,
		logger: logger,
	}, nil
}

// Put writes the artifact under key. Writes are idempotent by key: retrying
// the same submission overwrites the previous object.
func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return domain.WrapError(domain.ErrCodeStorage, "failed to store ticket artifact", err)
	}

	s.logger.Debug("artifact stored", zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}
