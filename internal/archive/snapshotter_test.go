package archive

import (
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/jittakal/bufstore/internal/errors"
	"github.com/jittakal/bufstore/pkg/sample"
	"github.com/jittakal/bufstore/pkg/storage"
)

// mockWriter implements storage.Writer for testing.
type mockWriter struct {
	snapshots []*sample.Snapshot
	paths     []string
	formats   []sample.Format
	err       error
	closed    bool
}

func (w *mockWriter) Write(ctx context.Context, snap *sample.Snapshot, path string, format sample.Format) (int64, error) {
	if w.err != nil {
		return 0, w.err
	}
	w.snapshots = append(w.snapshots, snap)
	w.paths = append(w.paths, path)
	w.formats = append(w.formats, format)
	return 64, nil
}

func (w *mockWriter) Close() error {
	w.closed = true
	return nil
}

// stubRouter implements storage.Router for testing.
type stubRouter struct{}

func (stubRouter) Route(label string, takenAt int64) string {
	return fmt.Sprintf("buffers/label=%s/", label)
}

// stubPolicy implements storage.SnapshotPolicy for testing.
type stubPolicy struct {
	should bool
}

func (p stubPolicy) ShouldSnapshot(stats sample.FileStats) bool {
	return p.should
}

// mockMetricsCollector implements MetricsCollector for testing.
type mockMetricsCollector struct {
	buffered  map[string]int
	evictions map[string]int
	sizes     map[string]float64
}

func newMockMetricsCollector() *mockMetricsCollector {
	return &mockMetricsCollector{
		buffered:  make(map[string]int),
		evictions: make(map[string]int),
		sizes:     make(map[string]float64),
	}
}

func (m *mockMetricsCollector) IncSamplesBuffered(label string)           { m.buffered[label]++ }
func (m *mockMetricsCollector) SetBufferSize(label string, count float64) { m.sizes[label] = count }
func (m *mockMetricsCollector) IncBufferEvictions(label string)           { m.evictions[label]++ }

var _ storage.Writer = (*mockWriter)(nil)
var _ storage.Router = stubRouter{}
var _ storage.SnapshotPolicy = stubPolicy{}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestNewSnapshotter(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		writer  storage.Writer
		wantErr bool
	}{
		{
			name:   "valid config",
			cfg:    Config{Labels: []string{"temperature"}, Format: sample.FormatJSON},
			writer: &mockWriter{},
		},
		{
			name:   "explicit capacity",
			cfg:    Config{Labels: []string{"temperature"}, Capacity: 8, Format: sample.FormatJSON},
			writer: &mockWriter{},
		},
		{
			name:    "no labels",
			cfg:     Config{Format: sample.FormatJSON},
			writer:  &mockWriter{},
			wantErr: true,
		},
		{
			name:    "nil writer",
			cfg:     Config{Labels: []string{"temperature"}, Format: sample.FormatJSON},
			writer:  nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSnapshotter(tt.cfg, tt.writer, stubRouter{}, stubPolicy{}, testLogger(), nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewSnapshotter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got := len(s.Labels()); got != len(tt.cfg.Labels) {
				t.Errorf("Labels() count = %d, want %d", got, len(tt.cfg.Labels))
			}
		})
	}
}

func TestSnapshotter_Ingest(t *testing.T) {
	metrics := newMockMetricsCollector()
	s, err := NewSnapshotter(
		Config{Labels: []string{"temperature", "humidity"}, Format: sample.FormatJSON},
		&mockWriter{}, stubRouter{}, stubPolicy{}, testLogger(), metrics,
	)
	if err != nil {
		t.Fatalf("NewSnapshotter() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := s.Ingest(&sample.Sample{Label: "temperature", Value: float64(i)}); err != nil {
			t.Fatalf("Ingest() error = %v", err)
		}
	}

	if metrics.buffered["temperature"] != 3 {
		t.Errorf("buffered count = %d, want 3", metrics.buffered["temperature"])
	}
	if metrics.sizes["temperature"] != 3 {
		t.Errorf("buffer size gauge = %v, want 3", metrics.sizes["temperature"])
	}

	stats, ok := s.Stats("temperature")
	if !ok {
		t.Fatal("Stats() ok = false, want true after ingest")
	}
	if stats.RecordCount != 3 {
		t.Errorf("RecordCount = %d, want 3", stats.RecordCount)
	}
	if stats.FirstWriteTime.IsZero() || stats.LastWriteTime.IsZero() {
		t.Error("write times should be set after ingest")
	}

	// Unseen label has no stats
	if _, ok := s.Stats("humidity"); ok {
		t.Error("Stats() ok = true for label with no samples")
	}
}

func TestSnapshotter_IngestUnknownLabel(t *testing.T) {
	metrics := newMockMetricsCollector()
	s, err := NewSnapshotter(
		Config{Labels: []string{"temperature"}, Format: sample.FormatJSON},
		&mockWriter{}, stubRouter{}, stubPolicy{}, testLogger(), metrics,
	)
	if err != nil {
		t.Fatalf("NewSnapshotter() error = %v", err)
	}

	if err := s.Ingest(&sample.Sample{Label: "voltage", Value: 1.0}); err == nil {
		t.Error("Ingest() with unknown label expected error, got nil")
	}
	if metrics.buffered["voltage"] != 0 {
		t.Error("unknown label should not be counted as buffered")
	}
}

func TestSnapshotter_IngestEviction(t *testing.T) {
	metrics := newMockMetricsCollector()
	s, err := NewSnapshotter(
		Config{Labels: []string{"temperature"}, Capacity: 2, Format: sample.FormatJSON},
		&mockWriter{}, stubRouter{}, stubPolicy{}, testLogger(), metrics,
	)
	if err != nil {
		t.Fatalf("NewSnapshotter() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := s.Ingest(&sample.Sample{Label: "temperature", Value: float64(i)}); err != nil {
			t.Fatalf("Ingest() error = %v", err)
		}
	}

	if metrics.evictions["temperature"] != 1 {
		t.Errorf("evictions = %d, want 1", metrics.evictions["temperature"])
	}
	if metrics.sizes["temperature"] != 2 {
		t.Errorf("buffer size gauge = %v, want capacity bound 2", metrics.sizes["temperature"])
	}
}

func TestSnapshotter_Snapshot(t *testing.T) {
	writer := &mockWriter{}
	s, err := NewSnapshotter(
		Config{Labels: []string{"temperature"}, Capacity: 8, Format: sample.FormatCSV},
		writer, stubRouter{}, stubPolicy{}, testLogger(), nil,
	)
	if err != nil {
		t.Fatalf("NewSnapshotter() error = %v", err)
	}

	s.Ingest(&sample.Sample{Label: "temperature", Value: 21.5})
	s.Ingest(&sample.Sample{Label: "temperature", Value: 22.0})

	written, err := s.Snapshot(context.Background(), "temperature")
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if written != 64 {
		t.Errorf("Snapshot() written = %d, want 64", written)
	}

	if len(writer.snapshots) != 1 {
		t.Fatalf("writer received %d snapshots, want 1", len(writer.snapshots))
	}
	snap := writer.snapshots[0]
	if snap.Label != "temperature" {
		t.Errorf("snapshot label = %v, want temperature", snap.Label)
	}
	if snap.Capacity != 8 {
		t.Errorf("snapshot capacity = %d, want 8", snap.Capacity)
	}
	if len(snap.Values) != 2 {
		t.Errorf("snapshot values = %d, want 2", len(snap.Values))
	}
	if snap.TakenAt.IsZero() {
		t.Error("snapshot TakenAt should be set")
	}
	if writer.paths[0] != "buffers/label=temperature/" {
		t.Errorf("routed path = %v, want buffers/label=temperature/", writer.paths[0])
	}
	if writer.formats[0] != sample.FormatCSV {
		t.Errorf("format = %v, want csv", writer.formats[0])
	}

	// Statistics reset after a successful snapshot
	if _, ok := s.Stats("temperature"); ok {
		t.Error("Stats() ok = true after snapshot, want reset")
	}

	// Buffer contents are retained without clear_after
	written, err = s.Snapshot(context.Background(), "temperature")
	if err != nil {
		t.Fatalf("second Snapshot() error = %v", err)
	}
	if written == 0 {
		t.Error("second Snapshot() skipped a retained buffer")
	}
}

func TestSnapshotter_SnapshotClearAfter(t *testing.T) {
	writer := &mockWriter{}
	metrics := newMockMetricsCollector()
	s, err := NewSnapshotter(
		Config{Labels: []string{"temperature"}, Format: sample.FormatJSON, ClearAfter: true},
		writer, stubRouter{}, stubPolicy{}, testLogger(), metrics,
	)
	if err != nil {
		t.Fatalf("NewSnapshotter() error = %v", err)
	}

	s.Ingest(&sample.Sample{Label: "temperature", Value: 1.0})

	if _, err := s.Snapshot(context.Background(), "temperature"); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if metrics.sizes["temperature"] != 0 {
		t.Errorf("buffer size gauge = %v, want 0 after clear", metrics.sizes["temperature"])
	}

	// Cleared buffer is skipped on the next capture
	written, err := s.Snapshot(context.Background(), "temperature")
	if err != nil {
		t.Fatalf("Snapshot() of cleared buffer error = %v", err)
	}
	if written != 0 {
		t.Errorf("Snapshot() of cleared buffer written = %d, want 0", written)
	}
	if len(writer.snapshots) != 1 {
		t.Errorf("writer received %d snapshots, want 1", len(writer.snapshots))
	}
}

func TestSnapshotter_SnapshotEmpty(t *testing.T) {
	writer := &mockWriter{}
	s, err := NewSnapshotter(
		Config{Labels: []string{"temperature"}, Format: sample.FormatJSON},
		writer, stubRouter{}, stubPolicy{}, testLogger(), nil,
	)
	if err != nil {
		t.Fatalf("NewSnapshotter() error = %v", err)
	}

	written, err := s.Snapshot(context.Background(), "temperature")
	if err != nil {
		t.Errorf("Snapshot() of empty buffer error = %v, want nil", err)
	}
	if written != 0 {
		t.Errorf("Snapshot() of empty buffer written = %d, want 0", written)
	}
	if len(writer.snapshots) != 0 {
		t.Error("writer should not be called for an empty buffer")
	}
}

func TestSnapshotter_SnapshotUnknownLabel(t *testing.T) {
	s, err := NewSnapshotter(
		Config{Labels: []string{"temperature"}, Format: sample.FormatJSON},
		&mockWriter{}, stubRouter{}, stubPolicy{}, testLogger(), nil,
	)
	if err != nil {
		t.Fatalf("NewSnapshotter() error = %v", err)
	}

	if _, err := s.Snapshot(context.Background(), "voltage"); err == nil {
		t.Error("Snapshot() with unknown label expected error, got nil")
	}
}

func TestSnapshotter_SnapshotWriteError(t *testing.T) {
	writer := &mockWriter{err: fmt.Errorf("upload failed")}
	s, err := NewSnapshotter(
		Config{Labels: []string{"temperature"}, Format: sample.FormatJSON},
		writer, stubRouter{}, stubPolicy{}, testLogger(), nil,
	)
	if err != nil {
		t.Fatalf("NewSnapshotter() error = %v", err)
	}

	s.Ingest(&sample.Sample{Label: "temperature", Value: 1.0})

	_, err = s.Snapshot(context.Background(), "temperature")
	if err == nil {
		t.Fatal("Snapshot() expected error, got nil")
	}

	var snapErr *errors.SnapshotError
	if !goerrors.As(err, &snapErr) {
		t.Fatalf("Snapshot() error type = %T, want *errors.SnapshotError", err)
	}
	if snapErr.Label != "temperature" {
		t.Errorf("SnapshotError.Label = %v, want temperature", snapErr.Label)
	}
	if snapErr.Format != sample.FormatJSON {
		t.Errorf("SnapshotError.Format = %v, want json", snapErr.Format)
	}

	// Statistics survive a failed snapshot so the policy can retry
	if _, ok := s.Stats("temperature"); !ok {
		t.Error("Stats() ok = false after failed snapshot, want retained")
	}
}

func TestSnapshotter_MaybeSnapshot(t *testing.T) {
	tests := []struct {
		name       string
		should     bool
		ingest     bool
		wantWrites int
	}{
		{
			name:       "policy fires",
			should:     true,
			ingest:     true,
			wantWrites: 1,
		},
		{
			name:       "policy holds",
			should:     false,
			ingest:     true,
			wantWrites: 0,
		},
		{
			name:       "nothing buffered",
			should:     true,
			ingest:     false,
			wantWrites: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer := &mockWriter{}
			s, err := NewSnapshotter(
				Config{Labels: []string{"temperature"}, Format: sample.FormatJSON},
				writer, stubRouter{}, stubPolicy{should: tt.should}, testLogger(), nil,
			)
			if err != nil {
				t.Fatalf("NewSnapshotter() error = %v", err)
			}

			if tt.ingest {
				s.Ingest(&sample.Sample{Label: "temperature", Value: 1.0})
			}

			if err := s.MaybeSnapshot(context.Background(), "temperature"); err != nil {
				t.Fatalf("MaybeSnapshot() error = %v", err)
			}
			if len(writer.snapshots) != tt.wantWrites {
				t.Errorf("writes = %d, want %d", len(writer.snapshots), tt.wantWrites)
			}
		})
	}
}

func TestSnapshotter_SnapshotAll(t *testing.T) {
	writer := &mockWriter{}
	s, err := NewSnapshotter(
		Config{Labels: []string{"temperature", "humidity", "pressure"}, Format: sample.FormatJSON},
		writer, stubRouter{}, stubPolicy{}, testLogger(), nil,
	)
	if err != nil {
		t.Fatalf("NewSnapshotter() error = %v", err)
	}

	s.Ingest(&sample.Sample{Label: "temperature", Value: 1.0})
	s.Ingest(&sample.Sample{Label: "pressure", Value: 101.3})

	if err := s.SnapshotAll(context.Background()); err != nil {
		t.Fatalf("SnapshotAll() error = %v", err)
	}

	// Only the two non-empty buffers are captured
	if len(writer.snapshots) != 2 {
		t.Fatalf("writer received %d snapshots, want 2", len(writer.snapshots))
	}
	labels := map[string]bool{}
	for _, snap := range writer.snapshots {
		labels[snap.Label] = true
	}
	if !labels["temperature"] || !labels["pressure"] {
		t.Errorf("captured labels = %v, want temperature and pressure", labels)
	}
}

func TestSnapshotter_SnapshotAllError(t *testing.T) {
	writer := &mockWriter{err: fmt.Errorf("storage unavailable")}
	s, err := NewSnapshotter(
		Config{Labels: []string{"temperature", "humidity"}, Format: sample.FormatJSON},
		writer, stubRouter{}, stubPolicy{}, testLogger(), nil,
	)
	if err != nil {
		t.Fatalf("NewSnapshotter() error = %v", err)
	}

	s.Ingest(&sample.Sample{Label: "temperature", Value: 1.0})
	s.Ingest(&sample.Sample{Label: "humidity", Value: 55.0})

	if err := s.SnapshotAll(context.Background()); err == nil {
		t.Error("SnapshotAll() expected error when writes fail, got nil")
	}
}

func TestSnapshotter_Closed(t *testing.T) {
	s, err := NewSnapshotter(
		Config{Labels: []string{"temperature"}, Format: sample.FormatJSON},
		&mockWriter{}, stubRouter{}, stubPolicy{}, testLogger(), nil,
	)
	if err != nil {
		t.Fatalf("NewSnapshotter() error = %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}

	ctx := context.Background()
	if err := s.Ingest(&sample.Sample{Label: "temperature", Value: 1.0}); !goerrors.Is(err, errors.ErrSnapshotterClosed) {
		t.Errorf("Ingest() after close error = %v, want ErrSnapshotterClosed", err)
	}
	if _, err := s.Snapshot(ctx, "temperature"); !goerrors.Is(err, errors.ErrSnapshotterClosed) {
		t.Errorf("Snapshot() after close error = %v, want ErrSnapshotterClosed", err)
	}
	if err := s.MaybeSnapshot(ctx, "temperature"); !goerrors.Is(err, errors.ErrSnapshotterClosed) {
		t.Errorf("MaybeSnapshot() after close error = %v, want ErrSnapshotterClosed", err)
	}
	if err := s.SnapshotAll(ctx); !goerrors.Is(err, errors.ErrSnapshotterClosed) {
		t.Errorf("SnapshotAll() after close error = %v, want ErrSnapshotterClosed", err)
	}
}
