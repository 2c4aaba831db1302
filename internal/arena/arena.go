// Package arena implements an append-only bump allocator sized in MB
// (spec 4.8), grounded on the same fixed-size, pre-sized-from-a-budget
// slice pattern the teacher uses for its transposition and pawn hash
// tables (internal/engine/transposition.go, internal/engine/pawnhash.go):
// reserve a slice up front from a memory budget, hand out stable integer
// handles into it, and treat running out as an explicit, recoverable
// condition rather than a panic.
//
// A single arena is homogeneous in T; the MCTS tree (internal/mcts)
// composes several of them (one per node/edge/bridge-column type) rather
// than storing mixed types behind raw pointers, which keeps the package
// free of unsafe — the same tradeoff sfnnue makes with its own
// unsafe_Sizeof helper ("to avoid importing unsafe") in
// sfnnue/nnue_common.go.
package arena

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrOutOfMemory is returned by Add/AddSlice when the arena's reserved
// capacity is exhausted. Spec 4.8: "Failure is explicit — search callers
// treat OOM as a signal to stop searching and return the best move found
// so far."
var ErrOutOfMemory = errors.New("arena: out of memory")

// Index is a typed handle to a single T stored in an Arena[T].
type Index[T any] int32

// NullIndex returns the handle representing "absent" for T (spec 4.9's
// edges with "no child").
func NullIndex[T any]() Index[T] { return -1 }

// Valid reports whether idx refers to a live element.
func (idx Index[T]) Valid() bool { return idx >= 0 }

// SliceIndex is a typed handle to a contiguous run of T inside an
// Arena[T], returned by AddSlice.
type SliceIndex[T any] struct {
	Start int32
	Len   int32
}

// Valid reports whether s refers to a non-empty run.
func (s SliceIndex[T]) Valid() bool { return s.Len > 0 }

// Arena is a bump allocator over a single element type T: a slice
// reserved up front to its MB budget, handed out as stable Index/
// SliceIndex handles that never move (the backing slice is never
// reallocated; Add past capacity fails instead).
type Arena[T any] struct {
	items []T
	max   int
}

// New reserves an Arena[T] sized to hold at most maxBytes worth of T.
// At least one element of headroom is always reserved so a degenerate
// zero-byte budget doesn't make the arena permanently unusable.
func New[T any](maxBytes int) *Arena[T] {
	sz := elemSize[T]()
	n := maxBytes / sz
	if n < 1 {
		n = 1
	}
	return &Arena[T]{items: make([]T, 0, n), max: n}
}

func elemSize[T any]() int {
	var zero T
	sz := int(reflect.TypeOf(&zero).Elem().Size())
	if sz == 0 {
		sz = 1
	}
	return sz
}

// Add appends v, returning its handle, or ErrOutOfMemory if the arena's
// budget is exhausted.
func (a *Arena[T]) Add(v T) (Index[T], error) {
	if len(a.items) >= a.max {
		return NullIndex[T](), ErrOutOfMemory
	}
	a.items = append(a.items, v)
	return Index[T](len(a.items) - 1), nil
}

// AddSlice appends vs as a single contiguous run, returning its handle,
// or ErrOutOfMemory if the remaining budget can't hold all of vs (no
// partial allocation is made).
func (a *Arena[T]) AddSlice(vs []T) (SliceIndex[T], error) {
	if len(vs) == 0 {
		return SliceIndex[T]{}, nil
	}
	if len(a.items)+len(vs) > a.max {
		return SliceIndex[T]{}, ErrOutOfMemory
	}
	start := len(a.items)
	a.items = append(a.items, vs...)
	return SliceIndex[T]{Start: int32(start), Len: int32(len(vs))}, nil
}

// Get returns a pointer to the element at idx, for in-place mutation.
// Callers must not retain the pointer past a Reset.
func (a *Arena[T]) Get(idx Index[T]) *T {
	return &a.items[idx]
}

// GetSlice returns the run at idx as a slice sharing the arena's backing
// array; mutations through it are visible to later Get/GetSlice calls.
func (a *Arena[T]) GetSlice(idx SliceIndex[T]) []T {
	return a.items[idx.Start : idx.Start+idx.Len]
}

// Len reports how many elements are currently allocated.
func (a *Arena[T]) Len() int { return len(a.items) }

// Cap reports the arena's reserved element capacity.
func (a *Arena[T]) Cap() int { return a.max }

// Reset discards every allocation without releasing the reserved
// backing array, so the arena can be reused for the next search (spec
// 4.9: "the root caller may choose to reset the arena").
func (a *Arena[T]) Reset() {
	a.items = a.items[:0]
}

// Stats reports the arena's occupancy in both element and byte terms
// (spec 4.8: "bytes allocated, bytes in structs vs slices, padding
// waste").
type Stats struct {
	Elements int
	Capacity int
	Bytes    int64
	MaxBytes int64
}

// Stats returns the current occupancy of a.
func (a *Arena[T]) Stats() Stats {
	sz := int64(elemSize[T]())
	return Stats{
		Elements: len(a.items),
		Capacity: a.max,
		Bytes:    sz * int64(len(a.items)),
		MaxBytes: sz * int64(a.max),
	}
}

// String renders s as a human-readable summary, e.g. "12.0/64.0 MB
// (18%)", the way the teacher sizes its hash tables in MB without
// pulling in a byte-formatting dependency.
func (s Stats) String() string {
	pct := 0
	if s.MaxBytes > 0 {
		pct = int(100 * s.Bytes / s.MaxBytes)
	}
	return fmt.Sprintf("%.1f/%.1f MB (%d%%)", float64(s.Bytes)/1e6, float64(s.MaxBytes)/1e6, pct)
}
