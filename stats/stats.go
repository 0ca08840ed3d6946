package stats

import (
	"fmt"

	"github.com/rangeflow-io/rangeflow/scalar"
)

type precisionKind int8

const (
	absent precisionKind = iota
	exact
	inexact
)

// Precision is a count-like value tagged with how much it can be trusted:
// Exact (measured), Inexact (estimated or bounded), or Absent. It replaces
// sentinel values like -1 so that "no information" stays distinguishable
// from a real zero.
type Precision[T any] struct {
	kind  precisionKind
	value T
}

func Exact[T any](v T) Precision[T] {
	return Precision[T]{kind: exact, value: v}
}

func Inexact[T any](v T) Precision[T] {
	return Precision[T]{kind: inexact, value: v}
}

func Absent[T any]() Precision[T] {
	return Precision[T]{}
}

// Value returns the wrapped value; ok is false when absent.
func (p Precision[T]) Value() (T, bool) {
	return p.value, p.kind != absent
}

func (p Precision[T]) IsExact() bool  { return p.kind == exact }
func (p Precision[T]) IsAbsent() bool { return p.kind == absent }

// ToInexact demotes an exact value to an estimate, keeping absence.
func (p Precision[T]) ToInexact() Precision[T] {
	if p.kind == exact {
		p.kind = inexact
	}
	return p
}

func (p Precision[T]) String() string {
	switch p.kind {
	case exact:
		return fmt.Sprintf("Exact(%v)", p.value)
	case inexact:
		return fmt.Sprintf("Inexact(%v)", p.value)
	}
	return "Absent"
}

// ColumnStatistics holds what is known about one column's values. Every
// field is independently optional; a zero ColumnStatistics means nothing is
// known.
type ColumnStatistics struct {
	MinValue      Precision[scalar.Value]
	MaxValue      Precision[scalar.Value]
	DistinctCount Precision[uint64]
	NullCount     Precision[uint64]
}
