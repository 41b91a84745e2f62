package main

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jittakal/bufstore/internal/archive"
	"github.com/jittakal/bufstore/internal/codec"
	"github.com/jittakal/bufstore/internal/config"
	"github.com/jittakal/bufstore/internal/errors"
	"github.com/jittakal/bufstore/internal/kafka"
	"github.com/jittakal/bufstore/internal/observability"
	"github.com/jittakal/bufstore/internal/server"
	"github.com/jittakal/bufstore/internal/storage"
	"github.com/jittakal/bufstore/internal/validator"
	"github.com/jittakal/bufstore/pkg/buffer"
	"github.com/jittakal/bufstore/pkg/sample"
)

// shutdownGrace bounds the final buffer drain and HTTP shutdown.
const shutdownGrace = 30 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}

func run() error {
	// Parse command-line flags
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	// Load configuration
	// Priority: CLI flag > CONFIG_PATH env var > default path
	var cfgPath string
	if *configPath != "" {
		cfgPath = *configPath
	} else if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		cfgPath = envPath
	} else {
		cfgPath = "config/application.yaml"
	}

	loader := config.NewLoader()
	cfg, err := loader.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize observability
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	logger.Info("starting buffer store",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	// Track cleanup functions, released in reverse order on return
	type cleanup struct {
		name string
		fn   func() error
	}
	var cleanups []cleanup
	addCleanup := func(name string, fn func() error) {
		cleanups = append(cleanups, cleanup{name: name, fn: fn})
		logger.Debug("registered cleanup", "component", name)
	}
	defer func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			if err := cleanups[i].fn(); err != nil {
				logger.Error("cleanup failed", "component", cleanups[i].name, "error", err)
			}
		}
		logger.Info("application stopped")
	}()

	// Initialize sample validator
	sampleValidator := validator.NewSampleValidator(
		cfg.Buffers.Labels,
		cfg.Buffers.Strict,
		cfg.Buffers.AllowNull,
	)

	// Resolve snapshot format and codec
	format, err := sample.ParseFormat(cfg.Snapshot.Format)
	if err != nil {
		return fmt.Errorf("failed to parse snapshot format: %w", err)
	}
	var comma rune
	if cfg.Snapshot.Delimiter != "" {
		comma = []rune(cfg.Snapshot.Delimiter)[0]
	}
	codecFactory := codec.NewFactory(format, cfg.Snapshot.Compression, comma)

	// Initialize storage
	writer, err := storage.NewWriter(cfg.Storage, codecFactory, logger, metrics)
	if err != nil {
		return fmt.Errorf("failed to create storage writer: %w", err)
	}
	addCleanup("storage-writer", writer.Close)

	router := storage.NewRouterFor(cfg.Storage)
	policy := storage.NewPolicy(storage.PolicyConfig{
		MaxSamples: cfg.Snapshot.MaxSamples,
		Interval:   cfg.Snapshot.Interval,
	})

	// Initialize infrastructure
	consumerConfig := kafka.ConsumerConfig{
		BootstrapServers:    cfg.Kafka.BootstrapServers,
		GroupID:             cfg.Kafka.GroupID,
		SecurityProtocol:    cfg.Kafka.SecurityProtocol,
		SASLMechanism:       cfg.Kafka.SASLMechanism,
		SASLUsername:        cfg.Kafka.SASLUsername,
		SASLPassword:        cfg.Kafka.SASLPassword,
		AutoOffsetReset:     cfg.Kafka.AutoOffsetReset,
		EnableAutoCommit:    cfg.Kafka.EnableAutoCommit,
		MaxPollIntervalMS:   cfg.Kafka.MaxPollIntervalMS,
		SessionTimeoutMS:    cfg.Kafka.SessionTimeoutMS,
		HeartbeatIntervalMS: cfg.Kafka.HeartbeatIntervalMS,
		Envelope:            cfg.Kafka.Envelope,
	}
	consumer, err := kafka.NewSaramaConsumer(consumerConfig, logger, metrics)
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}
	addCleanup("kafka-consumer", consumer.Close)

	dlqConfig := kafka.DLQConfig{
		Enabled:     cfg.DLQ.Enabled,
		TopicSuffix: cfg.DLQ.TopicSuffix,
		MaxRetries:  cfg.DLQ.MaxRetries,
	}
	dlqPublisher, err := kafka.NewDLQPublisher(cfg.Kafka.BootstrapServers, consumerConfig, dlqConfig, logger, metrics, cfg.App.Name)
	if err != nil {
		return fmt.Errorf("failed to create DLQ publisher: %w", err)
	}
	addCleanup("dlq-publisher", dlqPublisher.Close)

	// Initialize the buffer set and snapshotter
	snapshotter, err := archive.NewSnapshotter(archive.Config{
		Labels:     cfg.Buffers.Labels,
		Capacity:   cfg.Buffers.Capacity,
		Format:     format,
		ClearAfter: cfg.Snapshot.ClearAfter,
	}, writer, router, policy, logger, metrics)
	if err != nil {
		return fmt.Errorf("failed to create snapshotter: %w", err)
	}

	// Start HTTP server
	health := newServiceHealth()
	httpServer := server.NewServer(
		cfg.Server.HealthPort,
		cfg.Server.MetricsPort,
		health,
		registry,
		logger,
	)
	if err := httpServer.Start(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	addCleanup("http-server", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return httpServer.Shutdown(ctx)
	})

	logger.Info("application started successfully")

	// Subscribe to topics
	if err := consumer.Subscribe(context.Background(), cfg.Kafka.Topics); err != nil {
		return fmt.Errorf("failed to subscribe to topics: %w", err)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start consuming
	sampleChan, errorChan, err := consumer.Consume(ctx)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	health.set("consumer", "connected")
	health.markReady(true)

	// Start consume loop in background
	consumeErrChan := make(chan error, 1)
	go func() {
		consumeErrChan <- processSamples(ctx, sampleChan, errorChan, cfg.Snapshot.Interval, sampleValidator, snapshotter, dlqPublisher, logger, metrics)
	}()

	// Wait for termination signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("received termination signal")
	case err := <-consumeErrChan:
		if err != nil {
			logger.Error("consume error", "error", err)
			return err
		}
	}

	// Graceful shutdown
	logger.Info("initiating graceful shutdown")
	health.markReady(false)
	health.set("consumer", "stopping")
	cancel()

	// Capture whatever the buffers still hold before closing
	drainCtx, drainCancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer drainCancel()
	if err := snapshotter.SnapshotAll(drainCtx); err != nil {
		logger.Error("failed to drain buffers", "error", err)
	}
	if err := snapshotter.Close(); err != nil {
		logger.Error("failed to close snapshotter", "error", err)
	}

	return nil
}

// processSamples is the service event loop. It validates consumed samples,
// routes them into buffers, lets the snapshot policy decide when to capture,
// and commits offsets. Invalid and unroutable samples go to the DLQ and are
// committed so they are not redelivered.
func processSamples(
	ctx context.Context,
	sampleChan <-chan *sample.ConsumedSample,
	errorChan <-chan error,
	interval time.Duration,
	sampleValidator *validator.SampleValidator,
	snapshotter *archive.Snapshotter,
	dlq *kafka.DLQPublisher,
	logger *slog.Logger,
	metrics *observability.Metrics,
) error {
	// The ticker catches interval policies when traffic pauses. A nil
	// channel never fires, so zero disables it.
	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("context cancelled, stopping processing")
			return nil

		case err := <-errorChan:
			if err != nil {
				logger.Error("consumer error", "error", err)
			}

		case <-tick:
			for _, label := range snapshotter.Labels() {
				if err := snapshotter.MaybeSnapshot(ctx, label); err != nil {
					logger.Error("periodic snapshot failed", "label", label, "error", err)
				}
			}

		case consumed, ok := <-sampleChan:
			if !ok {
				logger.Info("sample channel closed")
				return nil
			}
			handleSample(ctx, consumed, sampleValidator, snapshotter, dlq, logger, metrics)
		}
	}
}

func handleSample(
	ctx context.Context,
	consumed *sample.ConsumedSample,
	sampleValidator *validator.SampleValidator,
	snapshotter *archive.Snapshotter,
	dlq *kafka.DLQPublisher,
	logger *slog.Logger,
	metrics *observability.Metrics,
) {
	smp := consumed.Sample
	partition := sample.PartitionID{
		Topic:     consumed.Metadata.Topic,
		Partition: consumed.Metadata.Partition,
	}

	// Validate sample
	if err := sampleValidator.Validate(smp); err != nil {
		reason := "invalid"
		var vErr *errors.ValidationError
		if goerrors.As(err, &vErr) {
			reason = vErr.Field
		}
		metrics.IncValidationErrors(smp.Label, reason)
		logger.Warn("invalid sample",
			"topic", partition.Topic,
			"partition", partition.Partition,
			"offset", consumed.Metadata.Offset,
			"error", err,
		)
		publishToDLQ(ctx, dlq, smp, consumed.Metadata, "validation_failed", logger)
		commitSample(consumed, partition, logger, metrics)
		return
	}

	// Route into the buffer
	if err := snapshotter.Ingest(smp); err != nil {
		ingestErr := &errors.IngestError{
			PartitionID: partition,
			Offset:      consumed.Metadata.Offset,
			Label:       smp.Label,
			Err:         err,
		}
		if goerrors.Is(err, buffer.ErrUnknownLabel) {
			// Non-strict mode admits unknown labels this far; they can
			// never be buffered, so dead-letter and skip.
			metrics.IncValidationErrors(smp.Label, "unknown_label")
			logger.Warn("sample for unknown buffer", "error", ingestErr)
			publishToDLQ(ctx, dlq, smp, consumed.Metadata, "unknown_label", logger)
			commitSample(consumed, partition, logger, metrics)
			return
		}
		// Leave the offset uncommitted so the sample is redelivered.
		logger.Error("failed to buffer sample", "error", ingestErr)
		return
	}

	// Let the policy decide whether this buffer is due for capture
	if err := snapshotter.MaybeSnapshot(ctx, smp.Label); err != nil {
		logger.Error("snapshot failed", "label", smp.Label, "error", err)
	}

	commitSample(consumed, partition, logger, metrics)
}

func publishToDLQ(
	ctx context.Context,
	dlq *kafka.DLQPublisher,
	smp *sample.Sample,
	metadata sample.KafkaMetadata,
	reason string,
	logger *slog.Logger,
) {
	if dlq == nil {
		return
	}
	value, err := json.Marshal(smp)
	if err != nil {
		logger.Error("failed to marshal sample for DLQ", "label", smp.Label, "error", err)
		return
	}
	if err := dlq.Publish(ctx, value, metadata, reason); err != nil {
		logger.Error("failed to publish to DLQ",
			"topic", metadata.Topic,
			"offset", metadata.Offset,
			"error", err,
		)
	}
}

func commitSample(
	consumed *sample.ConsumedSample,
	partition sample.PartitionID,
	logger *slog.Logger,
	metrics *observability.Metrics,
) {
	if consumed.CommitFunc == nil {
		return
	}
	if err := consumed.CommitFunc(); err != nil {
		metrics.IncOffsetCommits(partition.Topic, partition.Partition, "failed")
		logger.Error("failed to commit offset",
			"topic", partition.Topic,
			"partition", partition.Partition,
			"offset", consumed.Metadata.Offset,
			"error", err,
		)
		return
	}
	metrics.IncOffsetCommits(partition.Topic, partition.Partition, "success")
}

// serviceHealth implements server.HealthChecker. The event loop updates it
// while the probe handlers read it, hence the lock.
type serviceHealth struct {
	mu     sync.RWMutex
	ready  bool
	checks map[string]string
}

var _ server.HealthChecker = (*serviceHealth)(nil)

func newServiceHealth() *serviceHealth {
	return &serviceHealth{
		checks: map[string]string{
			"consumer": "starting",
			"storage":  "ready",
		},
	}
}

func (h *serviceHealth) Liveness() bool {
	return true
}

func (h *serviceHealth) Readiness(ctx context.Context) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ready
}

func (h *serviceHealth) GetStatus() map[string]string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	status := make(map[string]string, len(h.checks))
	for k, v := range h.checks {
		status[k] = v
	}
	return status
}

func (h *serviceHealth) markReady(ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = ready
}

func (h *serviceHealth) set(component, status string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[component] = status
}
