package buffer

import (
	"fmt"
	"reflect"
	"strings"
)

// Element classes used to decide whether two values are mutually ordered.
const (
	classNumeric = iota
	classString
	classBool
	classOther
)

// asFloat reports the numeric value of v. All integer and float kinds
// qualify; everything else does not.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func classOf(v any) int {
	if _, ok := asFloat(v); ok {
		return classNumeric
	}
	switch v.(type) {
	case string:
		return classString
	case bool:
		return classBool
	default:
		return classOther
	}
}

func className(class int) string {
	switch class {
	case classNumeric:
		return "numeric"
	case classString:
		return "string"
	case classBool:
		return "bool"
	default:
		return "unordered"
	}
}

// equal reports value equality. Numeric elements compare by value across
// kinds (an int 1 equals a float64 1); everything else compares by deep
// equality, which also covers decoded JSON trees.
func equal[T any](a, b T) bool {
	if x, ok := asFloat(any(a)); ok {
		y, ok := asFloat(any(b))
		return ok && x == y
	}
	if _, ok := asFloat(any(b)); ok {
		return false
	}
	return reflect.DeepEqual(a, b)
}

// order compares two values of the same class. Callers must have verified
// the class with sameClass first; mixed classes report ErrNotComparable.
func order[T any](a, b T) (int, error) {
	av, aok := asFloat(any(a))
	bv, bok := asFloat(any(b))
	if aok && bok {
		switch {
		case av < bv:
			return -1, nil
		case av > bv:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if as, ok := any(a).(string); ok {
		if bs, ok := any(b).(string); ok {
			return strings.Compare(as, bs), nil
		}
	}
	if ab, ok := any(a).(bool); ok {
		if bb, ok := any(b).(bool); ok {
			switch {
			case !ab && bb:
				return -1, nil
			case ab && !bb:
				return 1, nil
			default:
				return 0, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %T and %T", ErrNotComparable, a, b)
}

// sameClass verifies that every element belongs to one ordered class.
func sameClass[T any](elems []T) error {
	if len(elems) < 1 {
		return nil
	}
	first := classOf(any(elems[0]))
	if first == classOther {
		return fmt.Errorf("%w: %T has no natural order", ErrNotComparable, elems[0])
	}
	for _, v := range elems[1:] {
		class := classOf(any(v))
		if class == classOther {
			return fmt.Errorf("%w: %T has no natural order", ErrNotComparable, v)
		}
		if class != first {
			return fmt.Errorf("%w: mixed %s and %s elements",
				ErrNotComparable, className(first), className(class))
		}
	}
	return nil
}

// normIndex resolves a possibly negative index against length n.
func normIndex(index, n int) (int, bool) {
	if index < 0 {
		index += n
	}
	return index, index >= 0 && index < n
}

// clampIndex normalizes a strided-slice bound against length n using the
// given clamp window (0..n for a positive step, -1..n-1 for a negative one).
func clampIndex(i, n, lower, upper int) int {
	if i < 0 {
		i += n
		if i < lower {
			i = lower
		}
		return i
	}
	if i > upper {
		i = upper
	}
	return i
}

// strided extracts elements over [start, end) with the given non-zero step,
// following standard strided-slice rules (bounds clamp, negative bounds
// count from the end, negative step walks backwards).
func strided[T any](elems []T, start, end, step int) []T {
	n := len(elems)
	lower, upper := 0, n
	if step < 0 {
		lower, upper = -1, n-1
	}
	start = clampIndex(start, n, lower, upper)
	end = clampIndex(end, n, lower, upper)

	out := make([]T, 0, stridedLen(start, end, step))
	if step > 0 {
		for i := start; i < end; i += step {
			out = append(out, elems[i])
		}
	} else {
		for i := start; i > end; i += step {
			out = append(out, elems[i])
		}
	}
	return out
}

func stridedLen(start, end, step int) int {
	if step > 0 {
		if end <= start {
			return 0
		}
		return (end - start + step - 1) / step
	}
	if start <= end {
		return 0
	}
	return (start - end - step - 1) / -step
}
