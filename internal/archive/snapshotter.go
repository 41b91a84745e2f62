// Package archive orchestrates buffer ingestion and snapshot capture.
//
// The Snapshotter routes validated samples into their labeled buffers,
// tracks per-label write statistics, and captures buffer snapshots to
// storage when the configured policy fires or on demand.
package archive

import (
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jittakal/bufstore/internal/errors"
	"github.com/jittakal/bufstore/pkg/buffer"
	"github.com/jittakal/bufstore/pkg/sample"
	"github.com/jittakal/bufstore/pkg/storage"
)

// MetricsCollector defines metrics operations for buffer ingestion.
type MetricsCollector interface {
	IncSamplesBuffered(label string)
	SetBufferSize(label string, count float64)
	IncBufferEvictions(label string)
}

// Config contains snapshotter settings.
type Config struct {
	Labels     []string
	Capacity   int // 0 keeps the buffer default
	Format     sample.Format
	ClearAfter bool
}

// Snapshotter owns the buffer set and captures snapshots to storage.
//
// A Snapshotter performs no internal locking; the service event loop
// serializes all calls.
type Snapshotter struct {
	manager    *buffer.Manager[any]
	writer     storage.Writer
	router     storage.Router
	policy     storage.SnapshotPolicy
	logger     *slog.Logger
	metrics    MetricsCollector
	format     sample.Format
	clearAfter bool
	stats      map[string]*sample.FileStats
	closed     bool
}

// NewSnapshotter creates a snapshotter with one buffer per configured label.
func NewSnapshotter(
	cfg Config,
	writer storage.Writer,
	router storage.Router,
	policy storage.SnapshotPolicy,
	logger *slog.Logger,
	metrics MetricsCollector,
) (*Snapshotter, error) {
	if len(cfg.Labels) == 0 {
		return nil, fmt.Errorf("at least one buffer label is required")
	}
	if writer == nil || router == nil || policy == nil {
		return nil, fmt.Errorf("writer, router and policy are required")
	}

	manager := buffer.NewManager[any](cfg.Labels...)
	if cfg.Capacity > 0 {
		for _, label := range manager.Labels() {
			buf, err := manager.Buffer(label)
			if err != nil {
				return nil, err
			}
			if err := buf.SetCapacity(cfg.Capacity); err != nil {
				return nil, fmt.Errorf("failed to size buffer %q: %w", label, err)
			}
		}
	}

	logger.Info("snapshotter created",
		"labels", manager.Labels(),
		"capacity", cfg.Capacity,
		"format", cfg.Format,
		"clear_after", cfg.ClearAfter,
	)

	return &Snapshotter{
		manager:    manager,
		writer:     writer,
		router:     router,
		policy:     policy,
		logger:     logger,
		metrics:    metrics,
		format:     cfg.Format,
		clearAfter: cfg.ClearAfter,
		stats:      make(map[string]*sample.FileStats),
	}, nil
}

// Labels returns the configured buffer labels in construction order.
func (s *Snapshotter) Labels() []string {
	return s.manager.Labels()
}

// Stats returns a copy of the per-label statistics accumulated since the
// last snapshot. The second return is false when nothing has been buffered
// for the label since then.
func (s *Snapshotter) Stats(label string) (sample.FileStats, bool) {
	st, ok := s.stats[label]
	if !ok {
		return sample.FileStats{}, false
	}
	return *st, true
}

// Ingest routes a validated sample into its labeled buffer and updates
// statistics. An unknown label is reported as an error without touching
// any buffer.
func (s *Snapshotter) Ingest(smp *sample.Sample) error {
	if s.closed {
		return errors.ErrSnapshotterClosed
	}

	buf, err := s.manager.Buffer(smp.Label)
	if err != nil {
		return fmt.Errorf("failed to buffer sample: %w", err)
	}

	// A full buffer drops its oldest element on Add
	evicting := buf.Len() == buf.Capacity()
	buf.Add(smp.Value)

	if s.metrics != nil {
		if evicting {
			s.metrics.IncBufferEvictions(smp.Label)
		}
		s.metrics.IncSamplesBuffered(smp.Label)
		s.metrics.SetBufferSize(smp.Label, float64(buf.Len()))
	}

	now := time.Now().UTC()
	st, ok := s.stats[smp.Label]
	if !ok {
		st = &sample.FileStats{FirstWriteTime: now}
		s.stats[smp.Label] = st
	}
	st.RecordCount++
	st.LastWriteTime = now

	return nil
}

// MaybeSnapshot captures the labeled buffer when the snapshot policy fires.
// Labels with nothing buffered since the last snapshot are left alone.
func (s *Snapshotter) MaybeSnapshot(ctx context.Context, label string) error {
	if s.closed {
		return errors.ErrSnapshotterClosed
	}

	st, ok := s.stats[label]
	if !ok {
		return nil
	}
	if !s.policy.ShouldSnapshot(*st) {
		return nil
	}

	_, err := s.Snapshot(ctx, label)
	return err
}

// Snapshot captures the labeled buffer to storage and returns the number
// of bytes written. Empty buffers are skipped without error.
func (s *Snapshotter) Snapshot(ctx context.Context, label string) (int64, error) {
	if s.closed {
		return 0, errors.ErrSnapshotterClosed
	}

	buf, err := s.manager.Buffer(label)
	if err != nil {
		return 0, err
	}
	if buf.IsEmpty() {
		s.logger.Debug("skipping snapshot of empty buffer", "label", label)
		return 0, nil
	}

	snap := &sample.Snapshot{
		Label:    label,
		Capacity: buf.Capacity(),
		TakenAt:  time.Now().UTC(),
		Values:   buf.Values(),
	}

	path := s.router.Route(label, snap.TakenAt.Unix())
	written, err := s.writer.Write(ctx, snap, path, s.format)
	if err != nil {
		return 0, &errors.SnapshotError{Label: label, Format: s.format, Err: err}
	}

	if s.clearAfter {
		buf.Clear()
		if s.metrics != nil {
			s.metrics.SetBufferSize(label, 0)
		}
	}
	delete(s.stats, label)

	s.logger.Info("captured buffer snapshot",
		"label", label,
		"records", len(snap.Values),
		"bytes", written,
		"path", path,
	)

	return written, nil
}

// SnapshotAll captures every buffer, continuing past per-label failures.
// Used by the interval ticker and the shutdown drain.
func (s *Snapshotter) SnapshotAll(ctx context.Context) error {
	if s.closed {
		return errors.ErrSnapshotterClosed
	}

	var errs []error
	for _, label := range s.manager.Labels() {
		if _, err := s.Snapshot(ctx, label); err != nil {
			s.logger.Error("failed to snapshot buffer", "label", label, "error", err)
			errs = append(errs, err)
		}
	}
	return goerrors.Join(errs...)
}

// Close marks the snapshotter closed. Later calls return
// ErrSnapshotterClosed.
func (s *Snapshotter) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.logger.Info("snapshotter closed")
	return nil
}
