// Package buffer implements bounded labeled buffers with FIFO eviction.
package buffer

import (
	"fmt"
	"slices"
)

// DefaultCapacity bounds buffers created without an explicit capacity.
const DefaultCapacity = 65535

// Buffer is a labeled, capacity-bounded ordered sequence. Elements keep
// insertion order, oldest first; appending to a full buffer evicts the
// oldest element rather than failing. The zero value is not usable, use
// New or NewWithCapacity.
//
// A Buffer performs no internal locking. Callers sharing one across
// goroutines must serialize access themselves.
type Buffer[T any] struct {
	label    string
	capacity int
	elems    []T
}

// New creates an empty buffer with the given label and DefaultCapacity.
func New[T any](label string) *Buffer[T] {
	return &Buffer[T]{
		label:    label,
		capacity: DefaultCapacity,
	}
}

// NewWithCapacity creates an empty buffer with an explicit capacity.
func NewWithCapacity[T any](label string, capacity int) (*Buffer[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	return &Buffer[T]{
		label:    label,
		capacity: capacity,
	}, nil
}

// Label returns the buffer's identifying label, fixed at construction.
func (b *Buffer[T]) Label() string {
	return b.label
}

// Capacity returns the maximum element count before eviction triggers.
func (b *Buffer[T]) Capacity() int {
	return b.capacity
}

// SetCapacity changes the capacity bound. When the new capacity is below
// the current length, the oldest elements are evicted so the length bound
// holds on return.
func (b *Buffer[T]) SetCapacity(capacity int) error {
	if capacity <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	b.capacity = capacity
	if len(b.elems) > capacity {
		b.elems = slices.Clone(b.elems[len(b.elems)-capacity:])
	}
	return nil
}

// Len returns the number of stored elements.
func (b *Buffer[T]) Len() int {
	return len(b.elems)
}

// IsEmpty reports whether the buffer holds no elements.
func (b *Buffer[T]) IsEmpty() bool {
	return len(b.elems) == 0
}

// Values returns a copy of the contents, oldest first. The result never
// aliases internal state.
func (b *Buffer[T]) Values() []T {
	out := make([]T, len(b.elems))
	copy(out, b.elems)
	return out
}

// Add appends v at the end. A full buffer evicts its oldest element first;
// Add never fails.
func (b *Buffer[T]) Add(v T) {
	if len(b.elems) == b.capacity {
		copy(b.elems, b.elems[1:])
		b.elems[len(b.elems)-1] = v
		return
	}
	b.elems = append(b.elems, v)
}

// Delete removes the element at index. Negative indices count from the
// end; anything outside [-len, len-1] is ErrOutOfRange.
func (b *Buffer[T]) Delete(index int) error {
	i, ok := normIndex(index, len(b.elems))
	if !ok {
		return fmt.Errorf("%w: delete index %d with length %d", ErrOutOfRange, index, len(b.elems))
	}
	b.elems = append(b.elems[:i], b.elems[i+1:]...)
	return nil
}

// Clear removes all elements. Capacity is unchanged.
func (b *Buffer[T]) Clear() {
	b.elems = nil
}

// Replace discards the current contents and adopts a copy of values; the
// buffer never aliases the caller's slice. Inputs longer than the capacity
// keep only the trailing elements, matching eviction order.
func (b *Buffer[T]) Replace(values []T) {
	if len(values) > b.capacity {
		values = values[len(values)-b.capacity:]
	}
	b.elems = slices.Clone(values)
}

// Current returns the most recent element. The second return is false when
// the buffer is empty.
func (b *Buffer[T]) Current() (T, bool) {
	if len(b.elems) == 0 {
		var zero T
		return zero, false
	}
	return b.elems[len(b.elems)-1], true
}

// Previous returns the second most recent element. The second return is
// false when fewer than two elements exist.
func (b *Buffer[T]) Previous() (T, bool) {
	if len(b.elems) < 2 {
		var zero T
		return zero, false
	}
	return b.elems[len(b.elems)-2], true
}

// Value returns the element at index. Negative indices count from the end,
// as for Delete.
func (b *Buffer[T]) Value(index int) (T, error) {
	i, ok := normIndex(index, len(b.elems))
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: index %d with length %d", ErrOutOfRange, index, len(b.elems))
	}
	return b.elems[i], nil
}

// IndexOf returns the index of the first element equal to v by value
// equality, scanning from the oldest element, or -1 when none matches. A
// sole occurrence matches too; no earlier duplicate is required.
func (b *Buffer[T]) IndexOf(v T) int {
	for i := range b.elems {
		if equal(b.elems[i], v) {
			return i
		}
	}
	return -1
}

// Find returns the index of the first element satisfying pred, or -1.
func (b *Buffer[T]) Find(pred func(T) bool) int {
	for i, v := range b.elems {
		if pred(v) {
			return i
		}
	}
	return -1
}

// Filter returns the elements satisfying pred, in buffer order. The buffer
// is not modified.
func (b *Buffer[T]) Filter(pred func(T) bool) []T {
	out := make([]T, 0, len(b.elems))
	for _, v := range b.elems {
		if pred(v) {
			out = append(out, v)
		}
	}
	return out
}

// Reverse reverses the element order in place.
func (b *Buffer[T]) Reverse() {
	slices.Reverse(b.elems)
}

// Sort orders the elements in place by natural ordering: numeric elements
// by value, strings lexicographically, bools false before true. The sort
// is stable. Mixed or unordered element kinds report ErrNotComparable and
// leave the buffer unchanged.
func (b *Buffer[T]) Sort(descending bool) error {
	if err := sameClass(b.elems); err != nil {
		return err
	}
	slices.SortStableFunc(b.elems, func(a, c T) int {
		n, _ := order(a, c)
		if descending {
			return -n
		}
		return n
	})
	return nil
}

// SortStableFunc orders the elements in place using cmp, keeping equal
// elements in their original order. It covers key-based orderings the
// natural Sort cannot express.
func (b *Buffer[T]) SortStableFunc(cmp func(a, b T) int) {
	slices.SortStableFunc(b.elems, cmp)
}

// Resample returns every step-th element starting from the oldest. A
// negative step walks from the newest element backwards. A zero step is
// ErrOutOfRange. The buffer is not modified.
func (b *Buffer[T]) Resample(step int) ([]T, error) {
	if step == 0 {
		return nil, fmt.Errorf("%w: resample step must be non-zero", ErrOutOfRange)
	}
	if step > 0 {
		return strided(b.elems, 0, len(b.elems), step), nil
	}
	return strided(b.elems, len(b.elems)-1, -len(b.elems)-1, step), nil
}

// Slice returns the elements over [start, end). Out-of-range bounds clamp
// rather than fail, and negative bounds count from the end. The buffer is
// not modified.
func (b *Buffer[T]) Slice(start, end int) []T {
	return strided(b.elems, start, end, 1)
}

// Stride returns the elements over [start, end) with the given step,
// following the same clamping rules as Slice. A zero step is ErrOutOfRange.
func (b *Buffer[T]) Stride(start, end, step int) ([]T, error) {
	if step == 0 {
		return nil, fmt.Errorf("%w: stride step must be non-zero", ErrOutOfRange)
	}
	return strided(b.elems, start, end, step), nil
}

// Unique returns the distinct elements by value equality, in
// first-occurrence order. The buffer is not modified.
func (b *Buffer[T]) Unique() []T {
	out := make([]T, 0, len(b.elems))
	for _, v := range b.elems {
		found := false
		for _, u := range out {
			if equal(u, v) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, v)
		}
	}
	return out
}
