// Package buffer provides a bounded, labeled, append-mostly sequence
// container with first-in-first-out eviction, plus a manager for a fixed
// collection of named buffers.
//
// # Buffer
//
// Buffer holds an ordered sequence of values under a capacity bound. When
// an append would exceed the capacity, the oldest element is evicted
// instead of failing:
//
//	buf := buffer.New[int]("pressure")
//	buf.Add(1)
//	buf.Add(2)
//	buf.Add(3)
//
//	cur, _ := buf.Current()   // 3
//	prev, _ := buf.Previous() // 2
//	d, _ := buf.Delta()       // 1
//
// Values of any type are supported; numeric operations (Delta, DiffAt,
// Mean, HasNumericDifference) gate their operands behind a runtime check
// and report ErrNotNumeric for incompatible elements. Ordering operations
// (Sort, Max, Min) likewise report ErrNotComparable when elements are not
// mutually ordered.
//
// # Lookups and transforms
//
// Index-returning lookups use the -1 sentinel rather than an error:
//
//	buf.IndexOf(2)                        // 1
//	buf.Find(func(v int) bool { return v > 2 }) // 2
//	buf.IndexOf(99)                       // -1
//
// Slice, Stride, and Resample follow standard strided-slice rules: bounds
// clamp instead of failing, negative bounds count from the end, and a
// negative step walks backwards:
//
//	buf.Slice(0, 2)    // the two oldest elements
//	buf.Resample(2)    // every second element
//	buf.Resample(-1)   // reversed copy
//
// # Manager
//
// Manager owns one buffer per configured label, created together at
// construction; the label set never changes afterwards:
//
//	mgr := buffer.NewManager[float64]("A", "B", "C")
//
//	a, _ := mgr.Buffer("A")
//	a.Add(1.5)
//
//	mgr.Copy("A", "B") // B now holds a copy of A's contents
//	mgr.Move("B", "C") // C holds the copy, B is empty
//
// Buffers import and export their contents as a single JSON array through
// the manager, and export delimited text directly:
//
//	mgr.ExportJSON("A", "a.json")
//	mgr.ImportJSON("C", "a.json")
//	a.ExportDelimited("a.csv", ',')
//
// # Concurrency
//
// Neither Buffer nor Manager locks internally; all operations are
// synchronous and single-threaded by contract. Callers sharing instances
// across goroutines must serialize access, as the service layer in this
// repository does by funneling all buffer access through one goroutine.
package buffer
