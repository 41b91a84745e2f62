// Package ingest defines interfaces for Kafka sample consumption.
//
// This package provides abstractions for consuming samples from Kafka
// and managing consumer lifecycle.
package ingest

import (
	"context"

	"github.com/jittakal/bufstore/pkg/sample"
)

// Consumer reads samples from Kafka topics.
type Consumer interface {
	// Subscribe subscribes to one or more topics.
	Subscribe(ctx context.Context, topics []string) error

	// Consume starts consuming messages from subscribed topics.
	// Returns channels for samples and errors.
	Consume(ctx context.Context) (<-chan *sample.ConsumedSample, <-chan error, error)

	// Commit commits the offset for a partition.
	Commit(ctx context.Context, partition sample.PartitionID, offset int64) error

	// Close closes the consumer and releases resources.
	Close() error
}

// DLQPublisher publishes failed samples to a dead letter queue.
type DLQPublisher interface {
	// Publish sends a raw message to the DLQ with error information.
	Publish(ctx context.Context, value []byte, metadata sample.KafkaMetadata, reason string) error

	// Close closes the publisher and releases resources.
	Close() error
}
