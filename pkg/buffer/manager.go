package buffer

import (
	"encoding/json"
	"fmt"
	"os"
)

// Manager owns a fixed set of named buffers and delegates bulk operations
// across them. The label set is established at construction and never
// changes; every buffer starts empty with DefaultCapacity.
//
// Like Buffer, a Manager performs no internal locking.
type Manager[T any] struct {
	labels  []string
	buffers map[string]*Buffer[T]
}

// NewManager creates one buffer per label. Duplicate labels collapse to a
// single buffer at their first position.
func NewManager[T any](labels ...string) *Manager[T] {
	m := &Manager[T]{
		labels:  make([]string, 0, len(labels)),
		buffers: make(map[string]*Buffer[T], len(labels)),
	}
	for _, label := range labels {
		if _, ok := m.buffers[label]; ok {
			continue
		}
		m.labels = append(m.labels, label)
		m.buffers[label] = New[T](label)
	}
	return m
}

// Labels returns the configured labels in construction order.
func (m *Manager[T]) Labels() []string {
	out := make([]string, len(m.labels))
	copy(out, m.labels)
	return out
}

// Len returns the number of owned buffers.
func (m *Manager[T]) Len() int {
	return len(m.buffers)
}

// Buffer returns the named buffer for direct use.
func (m *Manager[T]) Buffer(label string) (*Buffer[T], error) {
	buf, ok := m.buffers[label]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	return buf, nil
}

// Clear empties the named buffer.
func (m *Manager[T]) Clear(label string) error {
	buf, err := m.Buffer(label)
	if err != nil {
		return err
	}
	buf.Clear()
	return nil
}

// Data returns a copy of the named buffer's contents, oldest first.
func (m *Manager[T]) Data(label string) ([]T, error) {
	buf, err := m.Buffer(label)
	if err != nil {
		return nil, err
	}
	return buf.Values(), nil
}

// Copy replaces the target buffer's contents with a copy of the source's.
// The source is unaffected, and later mutation of either buffer leaves the
// other unchanged.
func (m *Manager[T]) Copy(source, target string) error {
	src, err := m.Buffer(source)
	if err != nil {
		return err
	}
	dst, err := m.Buffer(target)
	if err != nil {
		return err
	}
	dst.Replace(src.Values())
	return nil
}

// Move copies the source buffer's contents into the target and clears the
// source.
func (m *Manager[T]) Move(source, target string) error {
	if err := m.Copy(source, target); err != nil {
		return err
	}
	return m.Clear(source)
}

// ImportJSON reads a JSON array of values from path and replaces the named
// buffer's contents with it. A missing file surfaces the underlying read
// error; malformed content surfaces a parse error. File contents are not
// schema-validated beyond being a well-formed array.
func (m *Manager[T]) ImportJSON(label, path string) error {
	buf, err := m.Buffer(label)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	var values []T
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	buf.Replace(values)
	return nil
}

// ExportJSON writes the named buffer's contents to path as a single JSON
// array. A failed write leaves the file in an unspecified state.
func (m *Manager[T]) ExportJSON(label, path string) error {
	buf, err := m.Buffer(label)
	if err != nil {
		return err
	}
	data, err := json.Marshal(buf.Values())
	if err != nil {
		return fmt.Errorf("failed to encode buffer %q: %w", label, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
