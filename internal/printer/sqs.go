// Package printer dispatches print jobs to the receipt printer's FIFO queue.
// Every job references a stored ticket artifact; the physical printer client
// drains the queue asynchronously.
package printer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.uber.org/zap"

	"github.com/faxmemaybe/backend/domain"
	"github.com/faxmemaybe/backend/internal/config"
)

type printMessage struct {
	ArtifactKey string `json:"artifact_key"`
	TodoID      string `json:"todo_id"`
	SubmittedAt string `json:"submitted_at"`
}

// Queue sends print jobs to an SQS FIFO queue.
type Queue struct {
	client   *sqs.Client
	queueURL string
	groupID  string
	logger   *zap.Logger
	now      func() time.Time
}

// NewQueue builds the print queue client.
func NewQueue(ctx context.Context, cfg config.PrinterConfig, logger *zap.Logger) (*Queue, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, err
	}

	groupID := cfg.GroupID
	if groupID == "" {
		groupID = "todo-printer"
	}

	return &Queue{
		client:   sqs.NewFromConfig(awsCfg),
		queueURL: cfg.QueueURL,
		groupID:  groupID,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Enqueue sends exactly one message referencing the stored artifact. The
// deduplication id is derived from the local id and dispatch time, and all
// jobs share one message group so the printer receives them in submission
// order. On failure the artifact stays stored for later re-dispatch.
func (q *Queue) Enqueue(ctx context.Context, artifactKey, todoID string) error {
	body, err := json.Marshal(printMessage{
		ArtifactKey: artifactKey,
		TodoID:      todoID,
		SubmittedAt: q.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return domain.WrapError(domain.ErrCodeDispatch, "failed to encode print job", err)
	}

	_, err = q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:               aws.String(q.queueURL),
		MessageBody:            aws.String(string(body)),
		MessageGroupId:         aws.String(q.groupID),
		MessageDeduplicationId: aws.String(fmt.Sprintf("%s-%d", todoID, q.now().Unix())),
	})
	if err != nil {
		return domain.WrapError(domain.ErrCodeDispatch, "failed to enqueue print job", err)
	}

	q.logger.Info("print job dispatched", zap.String("todo_id", todoID), zap.String("artifact_key", artifactKey))
	return nil
}
