package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/IBM/sarama"
	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
	"github.com/jaswdr/faker"
	"github.com/spf13/cobra"

	"github.com/jittakal/bufstore/pkg/sample"
)

var (
	feedBrokers  []string
	feedTopic    string
	feedCount    int
	feedLabels   []string
	feedRate     int
	feedEnvelope string
	feedKind     string
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Publish fake samples to a Kafka topic",
	Long: `Feed publishes fake samples to a Kafka topic, either as plain
sample JSON or wrapped in a CloudEvents envelope with the label as the
subject. Labels rotate round-robin and key the messages, so one buffer's
samples stay in order on one partition.

Examples:
  bufctl feed --brokers localhost:9092 --topic buffer.samples -n 100
  bufctl feed --topic buffer.samples --label temperature --label humidity --rate 10
  bufctl feed --topic buffer.samples --envelope cloudevents --kind price`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFeed(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	feedCmd.Flags().StringSliceVar(&feedBrokers, "brokers", []string{"localhost:9092"}, "Kafka bootstrap servers")
	feedCmd.Flags().StringVar(&feedTopic, "topic", "", "target topic")
	feedCmd.Flags().IntVarP(&feedCount, "count", "n", 100, "number of samples")
	feedCmd.Flags().StringSliceVar(&feedLabels, "label", []string{"temperature"}, "buffer labels, rotated round-robin")
	feedCmd.Flags().IntVar(&feedRate, "rate", 0, "samples per second, 0 publishes as fast as possible")
	feedCmd.Flags().StringVar(&feedEnvelope, "envelope", "plain", "message envelope (plain, cloudevents)")
	feedCmd.Flags().StringVar(&feedKind, "kind", "float", "value kind (mixed, float, word, price)")
	_ = feedCmd.MarkFlagRequired("topic")
}

func runFeed(ctx context.Context, out io.Writer) error {
	if feedCount <= 0 {
		return fmt.Errorf("count must be positive, got %d", feedCount)
	}
	if feedEnvelope != "plain" && feedEnvelope != "cloudevents" {
		return fmt.Errorf("unsupported envelope mode: %s", feedEnvelope)
	}
	if err := validateKind(feedKind); err != nil {
		return err
	}
	if len(feedLabels) == 0 {
		return fmt.Errorf("at least one label is required")
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(feedBrokers, saramaConfig)
	if err != nil {
		return fmt.Errorf("failed to create producer: %w", err)
	}
	defer producer.Close()

	var throttle <-chan time.Time
	if feedRate > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(feedRate))
		defer ticker.Stop()
		throttle = ticker.C
	}

	fk := faker.New()
	for i := 0; i < feedCount; i++ {
		if throttle != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-throttle:
			}
		}

		label := feedLabels[i%len(feedLabels)]
		msg, err := buildMessage(feedTopic, label, fakeValue(fk, feedKind, i), feedEnvelope)
		if err != nil {
			return err
		}

		partition, offset, err := producer.SendMessage(msg)
		if err != nil {
			return fmt.Errorf("failed to send sample %d: %w", i, err)
		}
		logger.Debug("published sample",
			"label", label,
			"partition", partition,
			"offset", offset,
		)
	}

	fmt.Fprintf(out, "published %d samples to %s\n", feedCount, feedTopic)
	return nil
}

// buildMessage wraps one value for the wire in the requested envelope.
func buildMessage(topic, label string, value any, envelope string) (*sarama.ProducerMessage, error) {
	if envelope == "cloudevents" {
		event := cloudevents.NewEvent()
		event.SetSpecVersion(cloudevents.VersionV1)
		event.SetID(uuid.New().String())
		event.SetType("io.bufstore.sample")
		event.SetSource("bufctl/feed")
		event.SetSubject(label)
		event.SetTime(time.Now().UTC())
		if err := event.SetData(cloudevents.ApplicationJSON, value); err != nil {
			return nil, fmt.Errorf("failed to set event data: %w", err)
		}

		body, err := json.Marshal(event)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal event: %w", err)
		}
		return &sarama.ProducerMessage{
			Topic: topic,
			Key:   sarama.StringEncoder(label),
			Value: sarama.ByteEncoder(body),
			Headers: []sarama.RecordHeader{
				{Key: []byte("ce_specversion"), Value: []byte(event.SpecVersion())},
				{Key: []byte("ce_type"), Value: []byte(event.Type())},
				{Key: []byte("ce_source"), Value: []byte(event.Source())},
				{Key: []byte("ce_id"), Value: []byte(event.ID())},
			},
		}, nil
	}

	body, err := json.Marshal(sample.Sample{Label: label, Value: value, At: time.Now().UTC()})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sample: %w", err)
	}
	return &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(label),
		Value: sarama.ByteEncoder(body),
	}, nil
}
