package consumer

import (
	"Mnemo/internal/database/kafka"
	"Mnemo/internal/memory/service"
	"Mnemo/internal/models"
	"Mnemo/pkg/logger"
	"context"
	"encoding/json"
)

// FactBatchMessage is the wire format of one fact batch on the intake topic.
// Upstream extraction publishes every fact it pulled out of a conversational
// turn as a single message, so in-batch deduplication sees the whole turn.
type FactBatchMessage struct {
	UserID string                 `json:"user_id"`
	Facts  []service.StoreRequest `json:"facts"`
}

// KafkaConsumer consumes fact batches from a Kafka topic and feeds them into
// the memory write pipeline.
type KafkaConsumer struct {
	kafkaClient   *kafka.KafkaClient
	memoryService *service.MemoryService
	logger        *logger.Logger
}

// NewKafkaConsumer creates a new KafkaConsumer.
func NewKafkaConsumer(kafkaClient *kafka.KafkaClient, memoryService *service.MemoryService, logger *logger.Logger) *KafkaConsumer {
	return &KafkaConsumer{
		kafkaClient:   kafkaClient,
		memoryService: memoryService,
		logger:        logger,
	}
}

// Start starts the consumer loop. It returns immediately; the loop exits when
// ctx is cancelled.
func (c *KafkaConsumer) Start(ctx context.Context) {
	go func() {
		for {
			msg, err := c.kafkaClient.Reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					c.logger.Info("stopping fact batch consumer")
					return
				}
				c.logger.WithError(models.ErrorInfo{Message: err.Error()}).Error("failed to fetch message")
				continue
			}

			var batch FactBatchMessage
			if err := json.Unmarshal(msg.Value, &batch); err != nil {
				// A malformed message will never parse; commit it so the
				// partition does not wedge.
				c.logger.WithError(models.ErrorInfo{Message: err.Error()}).WithPayload(map[string]interface{}{
					"topic":     msg.Topic,
					"partition": msg.Partition,
					"offset":    msg.Offset,
				}).Error("failed to unmarshal fact batch")
			} else {
				c.handleBatch(ctx, &batch)
			}

			if err := c.kafkaClient.Reader.CommitMessages(ctx, msg); err != nil {
				c.logger.WithError(models.ErrorInfo{Message: err.Error()}).Error("failed to commit message")
			}
		}
	}()
}

// handleBatch runs one fact batch through the pipeline and logs the outcome
// per fact. Rejections are normal outcomes here, not processing failures.
func (c *KafkaConsumer) handleBatch(ctx context.Context, batch *FactBatchMessage) {
	if batch.UserID == "" {
		c.logger.Warn("dropping fact batch without user_id")
		return
	}

	results := c.memoryService.StoreBatch(ctx, batch.UserID, batch.Facts)

	stored := 0
	for i, res := range results {
		if res.Stored() {
			stored++
			continue
		}
		c.logger.WithUser(batch.UserID).WithPayload(map[string]interface{}{
			"status":  string(res.Status),
			"index":   i,
			"message": res.Message,
		}).Debug("fact not stored")
	}

	c.logger.WithUser(batch.UserID).WithPayload(map[string]interface{}{
		"received": len(batch.Facts),
		"stored":   stored,
	}).Info("fact batch processed")
}
