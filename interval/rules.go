package interval

import (
	"github.com/apache/arrow/go/v12/arrow"
	"github.com/pkg/errors"

	cerr "github.com/rangeflow-io/rangeflow/common/errors"
	"github.com/rangeflow-io/rangeflow/expr"
	"github.com/rangeflow-io/rangeflow/scalar"
)

// cmpKnown compares two endpoint values. known is false when either side is
// unbounded, in which case no ordering can be asserted.
func cmpKnown(a, b scalar.Value) (c int, known bool, err error) {
	if a.IsNull() || b.IsNull() {
		return 0, false, nil
	}
	c, err = scalar.Compare(a, b)
	return c, err == nil, err
}

// EvaluateComparison computes the boolean interval of `left op right`.
func EvaluateComparison(op expr.Op, left, right Interval) (Interval, error) {
	switch op {
	case expr.Gt:
		return evaluateGreater(left, right, true)
	case expr.GtEq:
		return evaluateGreater(left, right, false)
	case expr.Lt:
		return evaluateGreater(right, left, true)
	case expr.LtEq:
		return evaluateGreater(right, left, false)
	case expr.Eq:
		return evaluateEqual(left, right)
	case expr.NotEq:
		eq, err := evaluateEqual(left, right)
		if err != nil {
			return Interval{}, err
		}
		return EvaluateNot(eq)
	}
	return Interval{}, errors.Wrapf(cerr.ErrUnsupportedExpr, "%v is not a comparison", op)
}

func evaluateGreater(left, right Interval, strict bool) (Interval, error) {
	// left is certainly greater when its lowest value beats right's highest.
	c, known, err := cmpKnown(left.Lower, right.Upper)
	if err != nil {
		return Interval{}, err
	}
	if known && (c > 0 || (!strict && c == 0)) {
		return CertainlyTrue(), nil
	}
	// left is certainly not greater when its highest value cannot beat
	// right's lowest.
	c, known, err = cmpKnown(left.Upper, right.Lower)
	if err != nil {
		return Interval{}, err
	}
	if known && (c < 0 || (strict && c == 0)) {
		return CertainlyFalse(), nil
	}
	return Uncertain(), nil
}

func evaluateEqual(left, right Interval) (Interval, error) {
	if !left.Lower.IsNull() && scalar.Equal(left.Lower, left.Upper) &&
		scalar.Equal(left.Lower, right.Lower) && scalar.Equal(left.Upper, right.Upper) {
		return CertainlyTrue(), nil
	}
	_, disjoint, err := disjointIntervals(left, right)
	if err != nil {
		return Interval{}, err
	}
	if disjoint {
		return CertainlyFalse(), nil
	}
	return Uncertain(), nil
}

func disjointIntervals(a, b Interval) (Interval, bool, error) {
	overlap, ok, err := Intersect(a, b)
	return overlap, err == nil && !ok, err
}

// EvaluateNot flips a boolean interval.
func EvaluateNot(iv Interval) (Interval, error) {
	if !iv.IsBoolean() {
		return Interval{}, errors.Wrapf(cerr.ErrIncompatibleIntervals, "NOT over %v", iv.DataType())
	}
	switch {
	case iv.IsCertainlyTrue():
		return CertainlyFalse(), nil
	case iv.IsCertainlyFalse():
		return CertainlyTrue(), nil
	}
	return Uncertain(), nil
}

// EvaluateLogic computes the boolean interval of `left op right` for AND/OR.
func EvaluateLogic(op expr.Op, left, right Interval) (Interval, error) {
	if !left.IsBoolean() || !right.IsBoolean() {
		return Interval{}, errors.Wrapf(cerr.ErrIncompatibleIntervals,
			"%v over %v and %v", op, left.DataType(), right.DataType())
	}
	leftTrue, rightTrue := !left.ContainsFalse(), !right.ContainsFalse()
	leftFalse, rightFalse := !left.ContainsTrue(), !right.ContainsTrue()
	switch op {
	case expr.And:
		switch {
		case leftTrue && rightTrue:
			return CertainlyTrue(), nil
		case leftFalse || rightFalse:
			return CertainlyFalse(), nil
		}
		return Uncertain(), nil
	case expr.Or:
		switch {
		case leftTrue || rightTrue:
			return CertainlyTrue(), nil
		case leftFalse && rightFalse:
			return CertainlyFalse(), nil
		}
		return Uncertain(), nil
	}
	return Interval{}, errors.Wrapf(cerr.ErrUnsupportedExpr, "%v is not a logical operator", op)
}

// EvaluateArithmetic computes the interval of `left op right` for +/-.
func EvaluateArithmetic(op expr.Op, left, right Interval) (Interval, error) {
	switch op {
	case expr.Plus:
		lower, err := addBound(left.Lower, right.Lower)
		if err != nil {
			return Interval{}, err
		}
		upper, err := addBound(left.Upper, right.Upper)
		if err != nil {
			return Interval{}, err
		}
		return Interval{Lower: lower, Upper: upper}, nil
	case expr.Minus:
		lower, err := subBound(left.Lower, right.Upper)
		if err != nil {
			return Interval{}, err
		}
		upper, err := subBound(left.Upper, right.Lower)
		if err != nil {
			return Interval{}, err
		}
		return Interval{Lower: lower, Upper: upper}, nil
	}
	return Interval{}, errors.Wrapf(cerr.ErrUnsupportedExpr, "no interval arithmetic for %v", op)
}

func addBound(a, b scalar.Value) (scalar.Value, error) {
	if a.IsNull() || b.IsNull() {
		return scalar.Null(pickType(a, b)), nil
	}
	return scalar.Add(a, b)
}

func subBound(a, b scalar.Value) (scalar.Value, error) {
	if a.IsNull() || b.IsNull() {
		return scalar.Null(pickType(a, b)), nil
	}
	return scalar.Sub(a, b)
}

func pickType(a, b scalar.Value) arrow.DataType {
	if a.DataType() != nil {
		return a.DataType()
	}
	return b.DataType()
}

// PropagateComparison narrows the operand intervals of `left op right` given
// the interval the comparison is known to evaluate inside. Only an exact
// boolean target narrows anything. feasible is false when a narrowed operand
// becomes empty.
func PropagateComparison(op expr.Op, target, left, right Interval) (newLeft, newRight Interval, feasible bool, err error) {
	if target.IsCertainlyFalse() {
		negated, ok := negate(op)
		if !ok {
			return left, right, true, nil
		}
		return PropagateComparison(negated, CertainlyTrue(), left, right)
	}
	if !target.IsCertainlyTrue() {
		return left, right, true, nil
	}

	switch op {
	case expr.Eq:
		overlap, ok, err := Intersect(left, right)
		if err != nil || !ok {
			return left, right, ok, err
		}
		return overlap, overlap, true, nil
	case expr.NotEq:
		// A hole cannot be cut out of a closed interval; only the fully
		// pinned contradiction is detectable.
		if !left.Lower.IsNull() && scalar.Equal(left.Lower, left.Upper) &&
			scalar.Equal(left.Lower, right.Lower) && scalar.Equal(left.Upper, right.Upper) {
			return left, right, false, nil
		}
		return left, right, true, nil
	case expr.Gt:
		return propagateGreater(left, right, true)
	case expr.GtEq:
		return propagateGreater(left, right, false)
	case expr.Lt:
		newRight, newLeft, feasible, err = propagateGreater(right, left, true)
		return newLeft, newRight, feasible, err
	case expr.LtEq:
		newRight, newLeft, feasible, err = propagateGreater(right, left, false)
		return newLeft, newRight, feasible, err
	}
	return left, right, true, nil
}

// propagateGreater narrows for an asserted `left > right` (strict) or
// `left >= right`. Strictness tightens by one unit on discrete domains and
// keeps the closed endpoint on continuous ones.
func propagateGreater(left, right Interval, strict bool) (Interval, Interval, bool, error) {
	newLeft, newRight := left, right

	if !right.Lower.IsNull() {
		floor := right.Lower
		if strict {
			var err error
			if floor, err = stepUp(floor); err != nil {
				return left, right, true, err
			}
		}
		iv, ok, err := Intersect(left, Interval{Lower: floor, Upper: scalar.Null(left.DataType())})
		if err != nil || !ok {
			return left, right, ok, err
		}
		newLeft = iv
	}
	if !left.Upper.IsNull() {
		ceil := left.Upper
		if strict {
			var err error
			if ceil, err = stepDown(ceil); err != nil {
				return left, right, true, err
			}
		}
		iv, ok, err := Intersect(right, Interval{Lower: scalar.Null(right.DataType()), Upper: ceil})
		if err != nil || !ok {
			return newLeft, right, ok, err
		}
		newRight = iv
	}
	return newLeft, newRight, true, nil
}

func stepUp(v scalar.Value) (scalar.Value, error) {
	step, ok := scalar.Step(v.DataType())
	if !ok {
		return v, nil
	}
	return scalar.Add(v, step)
}

func stepDown(v scalar.Value) (scalar.Value, error) {
	step, ok := scalar.Step(v.DataType())
	if !ok {
		return v, nil
	}
	return scalar.Sub(v, step)
}

func negate(op expr.Op) (expr.Op, bool) {
	switch op {
	case expr.Eq:
		return expr.NotEq, true
	case expr.NotEq:
		return expr.Eq, true
	case expr.Lt:
		return expr.GtEq, true
	case expr.LtEq:
		return expr.Gt, true
	case expr.Gt:
		return expr.LtEq, true
	case expr.GtEq:
		return expr.Lt, true
	}
	return op, false
}

// PropagateLogic narrows the operands of AND/OR given the value the
// combination is known to take.
func PropagateLogic(op expr.Op, target, left, right Interval) (newLeft, newRight Interval, feasible bool, err error) {
	newLeft, newRight = left, right
	switch {
	case op == expr.And && target.IsCertainlyTrue():
		if newLeft, feasible, err = narrow(left, CertainlyTrue()); err != nil || !feasible {
			return left, right, feasible, err
		}
		if newRight, feasible, err = narrow(right, CertainlyTrue()); err != nil || !feasible {
			return left, right, feasible, err
		}
	case op == expr.And && target.IsCertainlyFalse():
		// Only narrows when one side is already pinned true.
		if left.IsCertainlyTrue() {
			if newRight, feasible, err = narrow(right, CertainlyFalse()); err != nil || !feasible {
				return left, right, feasible, err
			}
		} else if right.IsCertainlyTrue() {
			if newLeft, feasible, err = narrow(left, CertainlyFalse()); err != nil || !feasible {
				return left, right, feasible, err
			}
		}
	case op == expr.Or && target.IsCertainlyFalse():
		if newLeft, feasible, err = narrow(left, CertainlyFalse()); err != nil || !feasible {
			return left, right, feasible, err
		}
		if newRight, feasible, err = narrow(right, CertainlyFalse()); err != nil || !feasible {
			return left, right, feasible, err
		}
	case op == expr.Or && target.IsCertainlyTrue():
		if left.IsCertainlyFalse() {
			if newRight, feasible, err = narrow(right, CertainlyTrue()); err != nil || !feasible {
				return left, right, feasible, err
			}
		} else if right.IsCertainlyFalse() {
			if newLeft, feasible, err = narrow(left, CertainlyTrue()); err != nil || !feasible {
				return left, right, feasible, err
			}
		}
	}
	return newLeft, newRight, true, nil
}

func narrow(iv, with Interval) (Interval, bool, error) {
	out, ok, err := Intersect(iv, with)
	if err != nil || !ok {
		return iv, ok, err
	}
	return out, true, nil
}

// PropagateNot narrows the operand of NOT.
func PropagateNot(target, child Interval) (Interval, bool, error) {
	switch {
	case target.IsCertainlyTrue():
		return narrow(child, CertainlyFalse())
	case target.IsCertainlyFalse():
		return narrow(child, CertainlyTrue())
	}
	return child, true, nil
}

// PropagateArithmetic narrows the operands of +/- given the interval the
// result is known to lie in.
func PropagateArithmetic(op expr.Op, target, left, right Interval) (newLeft, newRight Interval, feasible bool, err error) {
	newLeft, newRight = left, right
	switch op {
	case expr.Plus:
		// left = target - right, right = target - left.
		fromLeft, err := EvaluateArithmetic(expr.Minus, target, right)
		if err != nil {
			return left, right, true, err
		}
		if newLeft, feasible, err = narrow(left, fromLeft); err != nil || !feasible {
			return left, right, feasible, err
		}
		fromRight, err := EvaluateArithmetic(expr.Minus, target, left)
		if err != nil {
			return newLeft, right, true, err
		}
		if newRight, feasible, err = narrow(right, fromRight); err != nil || !feasible {
			return left, right, feasible, err
		}
	case expr.Minus:
		// left = target + right, right = left - target.
		fromLeft, err := EvaluateArithmetic(expr.Plus, target, right)
		if err != nil {
			return left, right, true, err
		}
		if newLeft, feasible, err = narrow(left, fromLeft); err != nil || !feasible {
			return left, right, feasible, err
		}
		fromRight, err := EvaluateArithmetic(expr.Minus, left, target)
		if err != nil {
			return newLeft, right, true, err
		}
		if newRight, feasible, err = narrow(right, fromRight); err != nil || !feasible {
			return left, right, feasible, err
		}
	default:
		return left, right, true, errors.Wrapf(cerr.ErrUnsupportedExpr, "cannot invert %v", op)
	}
	return newLeft, newRight, true, nil
}
