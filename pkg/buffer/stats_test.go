package buffer

import (
	"errors"
	"math"
	"testing"
)

func TestBuffer_Delta(t *testing.T) {
	buf := New[int]("values")
	buf.Add(1)
	buf.Add(2)
	buf.Add(3)

	got, err := buf.Delta()
	if err != nil {
		t.Fatalf("Delta() error = %v", err)
	}
	if got != 1 {
		t.Errorf("Delta() = %v, want 1", got)
	}
}

func TestBuffer_DeltaErrors(t *testing.T) {
	buf := New[int]("values")
	if _, err := buf.Delta(); !errors.Is(err, ErrEmpty) {
		t.Errorf("Delta() on empty buffer error = %v, want ErrEmpty", err)
	}

	buf.Add(1)
	if _, err := buf.Delta(); !errors.Is(err, ErrEmpty) {
		t.Errorf("Delta() with one element error = %v, want ErrEmpty", err)
	}

	words := New[string]("names")
	words.Add("apple")
	words.Add("banana")
	if _, err := words.Delta(); !errors.Is(err, ErrNotNumeric) {
		t.Errorf("Delta() on strings error = %v, want ErrNotNumeric", err)
	}
}

func TestBuffer_DiffAt(t *testing.T) {
	buf := New[float64]("values")
	for _, v := range []float64{1.5, 4.0, 2.0} {
		buf.Add(v)
	}

	got, err := buf.DiffAt(0, 2)
	if err != nil {
		t.Fatalf("DiffAt(0, 2) error = %v", err)
	}
	if got != 0.5 {
		t.Errorf("DiffAt(0, 2) = %v, want 0.5", got)
	}

	// Negative indexes resolve from the end.
	got, err = buf.DiffAt(-3, -1)
	if err != nil {
		t.Fatalf("DiffAt(-3, -1) error = %v", err)
	}
	if got != 0.5 {
		t.Errorf("DiffAt(-3, -1) = %v, want 0.5", got)
	}

	if _, err := buf.DiffAt(0, 3); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("DiffAt(0, 3) error = %v, want ErrOutOfRange", err)
	}
}

func TestBuffer_HasDifference(t *testing.T) {
	buf := New[string]("names")

	if buf.HasDifference() {
		t.Error("HasDifference() on empty buffer = true, want false")
	}

	buf.Add("apple")
	if buf.HasDifference() {
		t.Error("HasDifference() with one element = true, want false")
	}

	buf.Add("banana")
	if !buf.HasDifference() {
		t.Error("HasDifference() = false, want true")
	}
	if !buf.HasNonNumericDifference() {
		t.Error("HasNonNumericDifference() = false, want true")
	}

	buf.Add("banana")
	if buf.HasDifference() {
		t.Error("HasDifference() with repeated tail = true, want false")
	}
}

func TestBuffer_HasNumericDifference(t *testing.T) {
	buf := New[float64]("values")

	got, err := buf.HasNumericDifference(0.1)
	if err != nil {
		t.Fatalf("HasNumericDifference() error = %v", err)
	}
	if got {
		t.Error("HasNumericDifference() on empty buffer = true, want false")
	}

	buf.Add(1.0)
	buf.Add(1.05)
	got, err = buf.HasNumericDifference(0.1)
	if err != nil {
		t.Fatalf("HasNumericDifference() error = %v", err)
	}
	if got {
		t.Error("HasNumericDifference(0.1) = true for delta 0.05, want false")
	}

	buf.Add(1.25)
	got, err = buf.HasNumericDifference(0.1)
	if err != nil {
		t.Fatalf("HasNumericDifference() error = %v", err)
	}
	if !got {
		t.Error("HasNumericDifference(0.1) = false for delta 0.2, want true")
	}

	words := New[string]("names")
	words.Add("a")
	words.Add("b")
	if _, err := words.HasNumericDifference(0.1); !errors.Is(err, ErrNotNumeric) {
		t.Errorf("HasNumericDifference() on strings error = %v, want ErrNotNumeric", err)
	}
}

func TestBuffer_MaxMin(t *testing.T) {
	buf := New[int]("values")
	for _, v := range []int{1, 3, 2} {
		buf.Add(v)
	}

	max, err := buf.Max()
	if err != nil {
		t.Fatalf("Max() error = %v", err)
	}
	if max != 3 {
		t.Errorf("Max() = %d, want 3", max)
	}

	min, err := buf.Min()
	if err != nil {
		t.Fatalf("Min() error = %v", err)
	}
	if min != 1 {
		t.Errorf("Min() = %d, want 1", min)
	}
}

func TestBuffer_MaxMinStrings(t *testing.T) {
	buf := New[string]("names")
	for _, v := range []string{"pear", "apple", "quince"} {
		buf.Add(v)
	}

	max, err := buf.Max()
	if err != nil {
		t.Fatalf("Max() error = %v", err)
	}
	if max != "quince" {
		t.Errorf("Max() = %q, want quince", max)
	}

	min, err := buf.Min()
	if err != nil {
		t.Fatalf("Min() error = %v", err)
	}
	if min != "apple" {
		t.Errorf("Min() = %q, want apple", min)
	}
}

func TestBuffer_MaxMinErrors(t *testing.T) {
	empty := New[int]("values")
	if _, err := empty.Max(); !errors.Is(err, ErrEmpty) {
		t.Errorf("Max() on empty buffer error = %v, want ErrEmpty", err)
	}
	if _, err := empty.Min(); !errors.Is(err, ErrEmpty) {
		t.Errorf("Min() on empty buffer error = %v, want ErrEmpty", err)
	}

	mixed := New[any]("mixed")
	mixed.Add(1)
	mixed.Add("a")
	if _, err := mixed.Max(); !errors.Is(err, ErrNotComparable) {
		t.Errorf("Max() on mixed elements error = %v, want ErrNotComparable", err)
	}
	if _, err := mixed.Min(); !errors.Is(err, ErrNotComparable) {
		t.Errorf("Min() on mixed elements error = %v, want ErrNotComparable", err)
	}
}

func TestBuffer_Mean(t *testing.T) {
	buf := New[int]("values")
	for _, v := range []int{1, 2, 3} {
		buf.Add(v)
	}

	got, err := buf.Mean()
	if err != nil {
		t.Fatalf("Mean() error = %v", err)
	}
	if math.Abs(got-2.0) > 1e-9 {
		t.Errorf("Mean() = %v, want 2.0", got)
	}
}

func TestBuffer_MeanErrors(t *testing.T) {
	empty := New[int]("values")
	if _, err := empty.Mean(); !errors.Is(err, ErrEmpty) {
		t.Errorf("Mean() on empty buffer error = %v, want ErrEmpty", err)
	}

	words := New[string]("names")
	words.Add("a")
	if _, err := words.Mean(); !errors.Is(err, ErrNotNumeric) {
		t.Errorf("Mean() on strings error = %v, want ErrNotNumeric", err)
	}
}

func TestBuffer_MixedNumericKinds(t *testing.T) {
	// Ints, unsigned ints and floats share one numeric class.
	buf := New[any]("mixed")
	buf.Add(1)
	buf.Add(uint8(2))
	buf.Add(3.5)

	max, err := buf.Max()
	if err != nil {
		t.Fatalf("Max() error = %v", err)
	}
	if v, _ := asFloat(max); v != 3.5 {
		t.Errorf("Max() = %v, want 3.5", max)
	}

	mean, err := buf.Mean()
	if err != nil {
		t.Fatalf("Mean() error = %v", err)
	}
	if math.Abs(mean-6.5/3) > 1e-9 {
		t.Errorf("Mean() = %v, want %v", mean, 6.5/3)
	}

	delta, err := buf.Delta()
	if err != nil {
		t.Fatalf("Delta() error = %v", err)
	}
	if delta != 1.5 {
		t.Errorf("Delta() = %v, want 1.5", delta)
	}
}
