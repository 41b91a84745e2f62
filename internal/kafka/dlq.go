package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/jittakal/bufstore/internal/errors"
	"github.com/jittakal/bufstore/pkg/ingest"
	"github.com/jittakal/bufstore/pkg/sample"
)

// Ensure implementation satisfies interface at compile time.
var _ ingest.DLQPublisher = (*DLQPublisher)(nil)

// DLQRecord represents a failed sample published to the dead letter queue.
type DLQRecord struct {
	OriginalValue     json.RawMessage `json:"original_value"`
	OriginalTopic     string          `json:"original_topic"`
	OriginalPartition int32           `json:"original_partition"`
	OriginalOffset    int64           `json:"original_offset"`
	FailureReason     string          `json:"failure_reason"`
	FailureTimestamp  time.Time       `json:"failure_timestamp"`
	ConsumerID        string          `json:"consumer_id"`
}

// DLQConfig contains DLQ configuration.
type DLQConfig struct {
	Enabled     bool
	TopicSuffix string
	MaxRetries  int
}

// DLQMetricsCollector defines metrics operations for the DLQ publisher.
type DLQMetricsCollector interface {
	IncDLQMessages(topic string)
}

// DLQPublisher publishes failed samples to a dead letter queue.
type DLQPublisher struct {
	producer   sarama.SyncProducer
	config     DLQConfig
	logger     *slog.Logger
	metrics    DLQMetricsCollector
	mu         sync.RWMutex
	closed     bool
	consumerID string
}

// NewDLQPublisher creates a new DLQ publisher. When the DLQ is disabled
// the returned publisher accepts publishes as no-ops.
func NewDLQPublisher(
	bootstrapServers []string,
	securityConfig ConsumerConfig,
	dlqConfig DLQConfig,
	logger *slog.Logger,
	metrics DLQMetricsCollector,
	consumerID string,
) (*DLQPublisher, error) {
	if !dlqConfig.Enabled {
		logger.Info("DLQ is disabled")
		return &DLQPublisher{
			config:     dlqConfig,
			logger:     logger,
			metrics:    metrics,
			consumerID: consumerID,
		}, nil
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V2_8_0_0
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1

	// Security configuration (reuse consumer security)
	if err := configureSecurity(saramaConfig, securityConfig); err != nil {
		return nil, fmt.Errorf("failed to configure security: %w", err)
	}

	producer, err := sarama.NewSyncProducer(bootstrapServers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync producer: %w", err)
	}

	logger.Info("DLQ publisher created",
		"bootstrap_servers", bootstrapServers,
		"topic_suffix", dlqConfig.TopicSuffix,
		"max_retries", dlqConfig.MaxRetries,
	)

	return &DLQPublisher{
		producer:   producer,
		config:     dlqConfig,
		logger:     logger,
		metrics:    metrics,
		consumerID: consumerID,
	}, nil
}

// Publish publishes a failed sample payload to the DLQ.
func (p *DLQPublisher) Publish(
	ctx context.Context,
	value []byte,
	metadata sample.KafkaMetadata,
	reason string,
) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.config.Enabled {
		p.logger.Debug("DLQ disabled, skipping publish")
		return nil
	}

	if p.closed {
		return errors.ErrConsumerClosed
	}

	dlqTopic := metadata.Topic + p.config.TopicSuffix

	record := DLQRecord{
		OriginalValue:     jsonSafeValue(value),
		OriginalTopic:     metadata.Topic,
		OriginalPartition: metadata.Partition,
		OriginalOffset:    metadata.Offset,
		FailureReason:     reason,
		FailureTimestamp:  time.Now().UTC(),
		ConsumerID:        p.consumerID,
	}

	dlqData, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal DLQ record: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: dlqTopic,
		Key:   sarama.StringEncoder(dlqKey(metadata)),
		Value: sarama.ByteEncoder(dlqData),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("failure_reason"),
				Value: []byte(reason),
			},
			{
				Key:   []byte("original_topic"),
				Value: []byte(metadata.Topic),
			},
			{
				Key:   []byte("consumer_id"),
				Value: []byte(p.consumerID),
			},
		},
		Timestamp: time.Now(),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.Error("failed to publish to DLQ",
			"error", err,
			"dlq_topic", dlqTopic,
			"original_offset", metadata.Offset,
		)
		return fmt.Errorf("failed to send message to DLQ: %w", err)
	}

	if p.metrics != nil {
		p.metrics.IncDLQMessages(metadata.Topic)
	}

	p.logger.Info("published sample to DLQ",
		"dlq_topic", dlqTopic,
		"partition", partition,
		"offset", offset,
		"original_offset", metadata.Offset,
		"reason", reason,
	)

	return nil
}

// Close closes the DLQ publisher.
func (p *DLQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true
	p.logger.Info("closing DLQ publisher")

	if p.producer != nil {
		if err := p.producer.Close(); err != nil {
			p.logger.Error("error closing producer", "error", err)
			return err
		}
	}

	p.logger.Info("DLQ publisher closed")
	return nil
}

// dlqKey builds a deterministic message key from the original coordinates,
// so replays of the same failed message land on the same partition.
func dlqKey(metadata sample.KafkaMetadata) string {
	return fmt.Sprintf("%s-%d-%d", metadata.Topic, metadata.Partition, metadata.Offset)
}

// jsonSafeValue embeds the original payload in the record. Payloads that
// are not valid JSON are wrapped as a JSON string so the record itself
// stays decodable.
func jsonSafeValue(value []byte) json.RawMessage {
	if json.Valid(value) {
		return json.RawMessage(value)
	}
	quoted, err := json.Marshal(string(value))
	if err != nil {
		return json.RawMessage(`""`)
	}
	return json.RawMessage(quoted)
}
