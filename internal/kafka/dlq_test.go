package kafka

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jittakal/bufstore/internal/errors"
	"github.com/jittakal/bufstore/pkg/sample"
)

func TestNewDLQPublisher_Disabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	publisher, err := NewDLQPublisher(
		[]string{"localhost:9092"},
		ConsumerConfig{SecurityProtocol: "PLAINTEXT"},
		DLQConfig{Enabled: false},
		logger,
		nil,
		"bufstore-test",
	)
	if err != nil {
		t.Fatalf("NewDLQPublisher() error = %v", err)
	}

	// Publishing to a disabled DLQ is a no-op
	metadata := sample.KafkaMetadata{Topic: "samples", Partition: 0, Offset: 7}
	if err := publisher.Publish(context.Background(), []byte(`{"label":"x"}`), metadata, "validation_failed"); err != nil {
		t.Errorf("Publish() on disabled DLQ error = %v, want nil", err)
	}

	if err := publisher.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
	if err := publisher.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}
}

func TestDLQPublisher_PublishClosed(t *testing.T) {
	publisher := &DLQPublisher{
		config: DLQConfig{Enabled: true, TopicSuffix: ".dlq"},
		logger: slog.New(slog.NewTextHandler(os.Stdout, nil)),
		closed: true,
	}

	metadata := sample.KafkaMetadata{Topic: "samples", Partition: 1, Offset: 3}
	err := publisher.Publish(context.Background(), []byte(`{}`), metadata, "validation_failed")
	if !goerrors.Is(err, errors.ErrConsumerClosed) {
		t.Errorf("Publish() on closed publisher error = %v, want ErrConsumerClosed", err)
	}
}

func TestDLQKey(t *testing.T) {
	tests := []struct {
		name     string
		metadata sample.KafkaMetadata
		want     string
	}{
		{
			name:     "standard coordinates",
			metadata: sample.KafkaMetadata{Topic: "samples", Partition: 2, Offset: 1042},
			want:     "samples-2-1042",
		},
		{
			name:     "zero offset",
			metadata: sample.KafkaMetadata{Topic: "sensor.readings", Partition: 0, Offset: 0},
			want:     "sensor.readings-0-0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dlqKey(tt.metadata); got != tt.want {
				t.Errorf("dlqKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJSONSafeValue(t *testing.T) {
	tests := []struct {
		name  string
		value []byte
		want  string
	}{
		{
			name:  "valid json object",
			value: []byte(`{"label":"temperature","value":21.5}`),
			want:  `{"label":"temperature","value":21.5}`,
		},
		{
			name:  "valid json scalar",
			value: []byte(`42`),
			want:  `42`,
		},
		{
			name:  "invalid json wrapped as string",
			value: []byte(`not json at all`),
			want:  `"not json at all"`,
		},
		{
			name:  "empty payload",
			value: []byte{},
			want:  `""`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := jsonSafeValue(tt.value)
			if string(got) != tt.want {
				t.Errorf("jsonSafeValue() = %s, want %s", got, tt.want)
			}
			if !json.Valid(got) {
				t.Errorf("jsonSafeValue() produced invalid JSON: %s", got)
			}
		})
	}
}

func TestDLQRecord_Serialization(t *testing.T) {
	record := DLQRecord{
		OriginalValue:     json.RawMessage(`{"label":"temperature","value":"hot"}`),
		OriginalTopic:     "samples",
		OriginalPartition: 3,
		OriginalOffset:    99,
		FailureReason:     "validation_failed",
		FailureTimestamp:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		ConsumerID:        "bufstore-1",
	}

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got DLQRecord
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if string(got.OriginalValue) != string(record.OriginalValue) {
		t.Errorf("OriginalValue = %s, want %s", got.OriginalValue, record.OriginalValue)
	}
	if got.OriginalTopic != record.OriginalTopic {
		t.Errorf("OriginalTopic = %v, want %v", got.OriginalTopic, record.OriginalTopic)
	}
	if got.OriginalPartition != record.OriginalPartition {
		t.Errorf("OriginalPartition = %v, want %v", got.OriginalPartition, record.OriginalPartition)
	}
	if got.OriginalOffset != record.OriginalOffset {
		t.Errorf("OriginalOffset = %v, want %v", got.OriginalOffset, record.OriginalOffset)
	}
	if got.FailureReason != record.FailureReason {
		t.Errorf("FailureReason = %v, want %v", got.FailureReason, record.FailureReason)
	}
	if !got.FailureTimestamp.Equal(record.FailureTimestamp) {
		t.Errorf("FailureTimestamp = %v, want %v", got.FailureTimestamp, record.FailureTimestamp)
	}
	if got.ConsumerID != record.ConsumerID {
		t.Errorf("ConsumerID = %v, want %v", got.ConsumerID, record.ConsumerID)
	}
}

func TestDLQTopicName(t *testing.T) {
	tests := []struct {
		name        string
		sourceTopic string
		suffix      string
		want        string
	}{
		{
			name:        "standard suffix",
			sourceTopic: "samples",
			suffix:      ".dlq",
			want:        "samples.dlq",
		},
		{
			name:        "custom suffix",
			sourceTopic: "readings",
			suffix:      "-dead-letter",
			want:        "readings-dead-letter",
		},
		{
			name:        "topic with dots",
			sourceTopic: "sensors.rack1.samples",
			suffix:      ".dlq",
			want:        "sensors.rack1.samples.dlq",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.sourceTopic + tt.suffix
			if got != tt.want {
				t.Errorf("DLQ topic name = %v, want %v", got, tt.want)
			}
		})
	}
}
