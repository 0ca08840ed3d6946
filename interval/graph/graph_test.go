package graph

import (
	"testing"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerr "github.com/rangeflow-io/rangeflow/common/errors"
	"github.com/rangeflow-io/rangeflow/expr"
	"github.com/rangeflow-io/rangeflow/interval"
	"github.com/rangeflow-io/rangeflow/scalar"
)

var testSchema = arrow.NewSchema([]arrow.Field{
	{Name: "a", Type: arrow.PrimitiveTypes.Int64},
	{Name: "b", Type: arrow.PrimitiveTypes.Int64},
}, nil)

func colA() *expr.Column { return expr.NewColumn("a", 0) }
func colB() *expr.Column { return expr.NewColumn("b", 1) }

func mustInterval(t *testing.T, lo, hi int64) interval.Interval {
	iv, err := interval.New(scalar.NewInt64(lo), scalar.NewInt64(hi))
	require.NoError(t, err)
	return iv
}

func TestNewSharesEqualSubexpressions(t *testing.T) {
	// a appears in both conjuncts but gets a single node:
	// a, 5, (a > 5), 10, (a < 10), AND.
	e := expr.NewBinary(expr.And,
		expr.NewBinary(expr.Gt, colA(), expr.Int64(5)),
		expr.NewBinary(expr.Lt, colA(), expr.Int64(10)))
	g, err := New(e, testSchema)
	require.NoError(t, err)
	require.Equal(t, 6, g.Len())

	// The root is the last node.
	pairs := g.GatherNodeIndices([]expr.Expr{e})
	require.Len(t, pairs, 1)
	require.Equal(t, g.Len()-1, pairs[0].Index)
}

func TestGatherNodeIndices(t *testing.T) {
	e := expr.NewBinary(expr.Gt, colA(), expr.Int64(5))
	g, err := New(e, testSchema)
	require.NoError(t, err)

	pairs := g.GatherNodeIndices([]expr.Expr{colA(), colA(), colB()})
	require.Len(t, pairs, 1)
	assert.True(t, expr.Equal(colA(), pairs[0].Expr))
}

func TestUpdateRangesNarrowsColumn(t *testing.T) {
	e := expr.NewBinary(expr.Gt, colA(), expr.Int64(50))
	g, err := New(e, testSchema)
	require.NoError(t, err)

	pairs := g.GatherNodeIndices([]expr.Expr{colA()})
	require.Len(t, pairs, 1)

	result, err := g.UpdateRanges([]Binding{{Index: pairs[0].Index, Interval: mustInterval(t, 0, 100)}})
	require.NoError(t, err)
	require.Equal(t, Success, result)
	require.True(t, interval.Equal(mustInterval(t, 51, 100), g.Interval(pairs[0].Index)))

	// The root keeps its evaluated interval rather than the assertion target.
	rootPairs := g.GatherNodeIndices([]expr.Expr{e})
	require.Len(t, rootPairs, 1)
	require.True(t, interval.Equal(interval.Uncertain(), g.Interval(rootPairs[0].Index)))
}

func TestUpdateRangesExactTrueRoot(t *testing.T) {
	e := expr.NewBinary(expr.GtEq, colA(), expr.Int64(0))
	g, err := New(e, testSchema)
	require.NoError(t, err)

	pairs := g.GatherNodeIndices([]expr.Expr{colA()})
	result, err := g.UpdateRanges([]Binding{{Index: pairs[0].Index, Interval: mustInterval(t, 0, 100)}})
	require.NoError(t, err)
	require.Equal(t, Success, result)

	rootPairs := g.GatherNodeIndices([]expr.Expr{e})
	require.True(t, g.Interval(rootPairs[0].Index).IsCertainlyTrue())
	require.True(t, interval.Equal(mustInterval(t, 0, 100), g.Interval(pairs[0].Index)))
}

func TestUpdateRangesInfeasible(t *testing.T) {
	e := expr.NewBinary(expr.Eq, expr.Int64(1), expr.Int64(2))
	g, err := New(e, testSchema)
	require.NoError(t, err)

	result, err := g.UpdateRanges(nil)
	require.NoError(t, err)
	require.Equal(t, Infeasible, result)
}

func TestUpdateRangesNonInvertible(t *testing.T) {
	e := expr.NewBinary(expr.Gt,
		expr.NewBinary(expr.Multiply, colA(), expr.Int64(2)),
		expr.Int64(10))
	g, err := New(e, testSchema)
	require.NoError(t, err)

	result, err := g.UpdateRanges(nil)
	require.NoError(t, err)
	require.Equal(t, CannotPropagate, result)
}

func TestUpdateRangesNonBooleanRoot(t *testing.T) {
	e := expr.NewBinary(expr.Plus, colA(), expr.Int64(1))
	g, err := New(e, testSchema)
	require.NoError(t, err)

	pairs := g.GatherNodeIndices([]expr.Expr{colA()})
	result, err := g.UpdateRanges([]Binding{{Index: pairs[0].Index, Interval: mustInterval(t, 0, 100)}})
	require.NoError(t, err)
	require.Equal(t, CannotPropagate, result)
}

func TestUpdateRangesInfeasibleSeed(t *testing.T) {
	e := expr.NewBinary(expr.Gt, colA(), expr.Int64(500))
	g, err := New(e, testSchema)
	require.NoError(t, err)

	pairs := g.GatherNodeIndices([]expr.Expr{colA()})
	result, err := g.UpdateRanges([]Binding{{Index: pairs[0].Index, Interval: mustInterval(t, 0, 100)}})
	require.NoError(t, err)
	require.Equal(t, Infeasible, result)
}

func TestUnknownColumnTolerated(t *testing.T) {
	// A reference outside the schema stays untyped and unbounded; the pass
	// still completes.
	e := expr.NewBinary(expr.Gt, expr.NewColumn("missing", 9), expr.Int64(5))
	g, err := New(e, testSchema)
	require.NoError(t, err)

	result, err := g.UpdateRanges(nil)
	require.NoError(t, err)
	require.Equal(t, Success, result)
}

func TestEmptyGraph(t *testing.T) {
	var g Graph
	_, err := g.UpdateRanges(nil)
	require.True(t, errors.Is(err, cerr.ErrEmptyGraph))
}

func TestNotExpression(t *testing.T) {
	// NOT (a > 90) asserted true forces a <= 90.
	e := expr.NewNot(expr.NewBinary(expr.Gt, colA(), expr.Int64(90)))
	g, err := New(e, testSchema)
	require.NoError(t, err)

	pairs := g.GatherNodeIndices([]expr.Expr{colA()})
	result, err := g.UpdateRanges([]Binding{{Index: pairs[0].Index, Interval: mustInterval(t, 0, 100)}})
	require.NoError(t, err)
	require.Equal(t, Success, result)
	require.True(t, interval.Equal(mustInterval(t, 0, 90), g.Interval(pairs[0].Index)))
}
