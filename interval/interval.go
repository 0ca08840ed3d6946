package interval

import (
	"fmt"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/pkg/errors"

	cerr "github.com/rangeflow-io/rangeflow/common/errors"
	"github.com/rangeflow-io/rangeflow/scalar"
)

// Interval is a closed range [Lower, Upper] over a single scalar type. A
// typed-null endpoint means that side is unbounded; [null, null] carries no
// information at all. A degenerate [v, v] is a known constant.
type Interval struct {
	Lower scalar.Value
	Upper scalar.Value
}

// New builds an interval and validates endpoint ordering when both ends are
// concrete.
func New(lower, upper scalar.Value) (Interval, error) {
	if !lower.IsNull() && !upper.IsNull() {
		c, err := scalar.Compare(lower, upper)
		if err != nil {
			return Interval{}, err
		}
		if c > 0 {
			return Interval{}, errors.Wrapf(cerr.ErrEmptyInterval,
				"lower %v exceeds upper %v", lower, upper)
		}
	}
	return Interval{Lower: lower, Upper: upper}, nil
}

// Unbounded returns the no-information interval [null, null] of dt.
func Unbounded(dt arrow.DataType) Interval {
	return Interval{Lower: scalar.Null(dt), Upper: scalar.Null(dt)}
}

// Point returns the degenerate interval [v, v].
func Point(v scalar.Value) Interval {
	return Interval{Lower: v, Upper: v}
}

func CertainlyTrue() Interval  { return Point(scalar.NewBool(true)) }
func CertainlyFalse() Interval { return Point(scalar.NewBool(false)) }

// Uncertain is the boolean interval [false, true].
func Uncertain() Interval {
	return Interval{Lower: scalar.NewBool(false), Upper: scalar.NewBool(true)}
}

// DataType returns the scalar type of the interval's endpoints. Typed nulls
// still carry their type, so this is well defined for unbounded intervals.
func (iv Interval) DataType() arrow.DataType {
	if iv.Lower.DataType() != nil {
		return iv.Lower.DataType()
	}
	return iv.Upper.DataType()
}

// IsBoolean reports whether the interval ranges over booleans.
func (iv Interval) IsBoolean() bool {
	return scalar.IsBoolean(iv.DataType())
}

func (iv Interval) IsCertainlyTrue() bool {
	return iv.Lower.IsTrue() && iv.Upper.IsTrue()
}

func (iv Interval) IsCertainlyFalse() bool {
	return iv.Lower.IsFalse() && iv.Upper.IsFalse()
}

// ContainsTrue reports whether a boolean interval admits true. An unbounded
// endpoint admits everything.
func (iv Interval) ContainsTrue() bool {
	return iv.Upper.IsNull() || iv.Upper.IsTrue()
}

// ContainsFalse reports whether a boolean interval admits false.
func (iv Interval) ContainsFalse() bool {
	return iv.Lower.IsNull() || iv.Lower.IsFalse()
}

// Equal reports endpoint-wise equality.
func Equal(a, b Interval) bool {
	return scalar.Equal(a.Lower, b.Lower) && scalar.Equal(a.Upper, b.Upper)
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%v, %v]", iv.Lower, iv.Upper)
}

// maxLower picks the tighter (greater) of two lower bounds, where null is
// minus infinity.
func maxLower(a, b scalar.Value) (scalar.Value, error) {
	if a.IsNull() {
		return b, nil
	}
	if b.IsNull() {
		return a, nil
	}
	c, err := scalar.Compare(a, b)
	if err != nil {
		return scalar.Value{}, err
	}
	if c >= 0 {
		return a, nil
	}
	return b, nil
}

// minUpper picks the tighter (smaller) of two upper bounds, where null is
// plus infinity.
func minUpper(a, b scalar.Value) (scalar.Value, error) {
	if a.IsNull() {
		return b, nil
	}
	if b.IsNull() {
		return a, nil
	}
	c, err := scalar.Compare(a, b)
	if err != nil {
		return scalar.Value{}, err
	}
	if c <= 0 {
		return a, nil
	}
	return b, nil
}

// Intersect returns the overlap of a and b. ok is false when the overlap is
// empty, which callers interpret as an infeasible constraint.
func Intersect(a, b Interval) (Interval, bool, error) {
	lower, err := maxLower(a.Lower, b.Lower)
	if err != nil {
		return Interval{}, false, err
	}
	upper, err := minUpper(a.Upper, b.Upper)
	if err != nil {
		return Interval{}, false, err
	}
	if !lower.IsNull() && !upper.IsNull() {
		c, err := scalar.Compare(lower, upper)
		if err != nil {
			return Interval{}, false, err
		}
		if c > 0 {
			return Interval{}, false, nil
		}
	}
	return Interval{Lower: lower, Upper: upper}, true, nil
}

// Cardinality estimates how many values the interval admits: an exact count
// for discrete domains, a width for continuous ones. ok is false when either
// endpoint is unbounded or the type is uncountable (e.g. strings).
func (iv Interval) Cardinality() (float64, bool) {
	if iv.Lower.IsNull() || iv.Upper.IsNull() {
		return 0, false
	}
	if lb, ok := iv.Lower.Bool(); ok {
		ub, _ := iv.Upper.Bool()
		n := 1.0
		if ub && !lb {
			n = 2.0
		}
		return n, true
	}
	d, err := scalar.Distance(iv.Lower, iv.Upper)
	if err != nil {
		return 0, false
	}
	if scalar.IsDiscrete(iv.DataType()) {
		return d + 1, true
	}
	return d, true
}

// CardinalityRatio compares a refined interval against the one it was
// narrowed from, yielding that column's selectivity contribution in [0, 1].
// When the initial interval carries no usable information (unbounded,
// zero-width, or uncountable) the ratio is 1.0 so that missing statistics
// never bias the estimate downward.
func CardinalityRatio(initial, refined Interval) (float64, error) {
	if Equal(initial, refined) {
		return 1.0, nil
	}
	// Differing intervals over incomparable types is a malformed pair.
	if _, _, err := Intersect(initial, refined); err != nil {
		return 0, err
	}
	initialCard, ok := initial.Cardinality()
	if !ok || initialCard <= 0 {
		return 1.0, nil
	}
	refinedCard, ok := refined.Cardinality()
	if !ok {
		return 1.0, nil
	}
	ratio := refinedCard / initialCard
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return ratio, nil
}
