package buffer

import (
	"fmt"
	"math"
)

// Delta returns currentValue minus previousValue. Fewer than two elements
// is ErrEmpty; a non-numeric operand is ErrNotNumeric.
func (b *Buffer[T]) Delta() (float64, error) {
	if len(b.elems) < 2 {
		return 0, fmt.Errorf("%w: delta needs two elements, have %d", ErrEmpty, len(b.elems))
	}
	cur, err := numericAt(b.elems, len(b.elems)-1)
	if err != nil {
		return 0, err
	}
	prev, err := numericAt(b.elems, len(b.elems)-2)
	if err != nil {
		return 0, err
	}
	return cur - prev, nil
}

// DiffAt returns the element at index to minus the element at index from.
// Negative indices count from the end. Invalid indices are ErrOutOfRange;
// non-numeric operands are ErrNotNumeric.
func (b *Buffer[T]) DiffAt(from, to int) (float64, error) {
	i, ok := normIndex(from, len(b.elems))
	if !ok {
		return 0, fmt.Errorf("%w: index %d with length %d", ErrOutOfRange, from, len(b.elems))
	}
	j, ok := normIndex(to, len(b.elems))
	if !ok {
		return 0, fmt.Errorf("%w: index %d with length %d", ErrOutOfRange, to, len(b.elems))
	}
	a, err := numericAt(b.elems, i)
	if err != nil {
		return 0, err
	}
	c, err := numericAt(b.elems, j)
	if err != nil {
		return 0, err
	}
	return c - a, nil
}

// HasDifference reports whether the two most recent elements differ by
// value equality. Fewer than two elements reports false.
func (b *Buffer[T]) HasDifference() bool {
	if len(b.elems) < 2 {
		return false
	}
	return !equal(b.elems[len(b.elems)-1], b.elems[len(b.elems)-2])
}

// HasNonNumericDifference is HasDifference under its historical name; the
// equality check works for any element kind.
func (b *Buffer[T]) HasNonNumericDifference() bool {
	return b.HasDifference()
}

// HasNumericDifference reports whether the two most recent elements differ
// by more than epsilon. Fewer than two elements reports false without
// error; non-numeric elements are ErrNotNumeric.
func (b *Buffer[T]) HasNumericDifference(epsilon float64) (bool, error) {
	if len(b.elems) < 2 {
		return false, nil
	}
	cur, err := numericAt(b.elems, len(b.elems)-1)
	if err != nil {
		return false, err
	}
	prev, err := numericAt(b.elems, len(b.elems)-2)
	if err != nil {
		return false, err
	}
	return math.Abs(cur-prev) > epsilon, nil
}

// Max returns the maximum element by natural ordering. An empty buffer is
// ErrEmpty; mixed or unordered kinds are ErrNotComparable.
func (b *Buffer[T]) Max() (T, error) {
	return b.extreme(1)
}

// Min returns the minimum element by natural ordering. An empty buffer is
// ErrEmpty; mixed or unordered kinds are ErrNotComparable.
func (b *Buffer[T]) Min() (T, error) {
	return b.extreme(-1)
}

func (b *Buffer[T]) extreme(sign int) (T, error) {
	var zero T
	if len(b.elems) == 0 {
		return zero, fmt.Errorf("%w: no extreme of zero elements", ErrEmpty)
	}
	if err := sameClass(b.elems); err != nil {
		return zero, err
	}
	best := b.elems[0]
	for _, v := range b.elems[1:] {
		n, _ := order(v, best)
		if n*sign > 0 {
			best = v
		}
	}
	return best, nil
}

// Mean returns the arithmetic mean of all elements. An empty buffer is
// ErrEmpty; any non-numeric element is ErrNotNumeric.
func (b *Buffer[T]) Mean() (float64, error) {
	if len(b.elems) == 0 {
		return 0, fmt.Errorf("%w: no mean of zero elements", ErrEmpty)
	}
	sum := 0.0
	for i := range b.elems {
		v, err := numericAt(b.elems, i)
		if err != nil {
			return 0, err
		}
		sum += v
	}
	return sum / float64(len(b.elems)), nil
}

func numericAt[T any](elems []T, i int) (float64, error) {
	v, ok := asFloat(any(elems[i]))
	if !ok {
		return 0, fmt.Errorf("%w: element %d is %T", ErrNotNumeric, i, elems[i])
	}
	return v, nil
}
