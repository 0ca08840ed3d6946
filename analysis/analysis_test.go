package analysis_test

import (
	"testing"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rangeflow-io/rangeflow/analysis"
	cerr "github.com/rangeflow-io/rangeflow/common/errors"
	"github.com/rangeflow-io/rangeflow/expr"
	"github.com/rangeflow-io/rangeflow/interval"
	"github.com/rangeflow-io/rangeflow/scalar"
	"github.com/rangeflow-io/rangeflow/stats"
)

var intSchema = arrow.NewSchema([]arrow.Field{
	{Name: "a", Type: arrow.PrimitiveTypes.Int64},
	{Name: "b", Type: arrow.PrimitiveTypes.Int64},
}, nil)

func intStats(min, max int64) stats.ColumnStatistics {
	return stats.ColumnStatistics{
		MinValue: stats.Exact(scalar.NewInt64(min)),
		MaxValue: stats.Exact(scalar.NewInt64(max)),
	}
}

func intContext(t *testing.T) analysis.Context {
	ctx, err := analysis.TryFromStatistics(intSchema, []stats.ColumnStatistics{
		intStats(0, 100),
		intStats(0, 100),
	})
	require.NoError(t, err)
	return ctx
}

func colA() *expr.Column { return expr.NewColumn("a", 0) }
func colB() *expr.Column { return expr.NewColumn("b", 1) }

func mustInterval(t *testing.T, lo, hi scalar.Value) interval.Interval {
	iv, err := interval.New(lo, hi)
	require.NoError(t, err)
	return iv
}

func TestAnalyzeGreaterThan(t *testing.T) {
	ctx := intContext(t)
	out, err := analysis.Analyze(expr.NewBinary(expr.Gt, colA(), expr.Int64(50)), ctx)
	require.NoError(t, err)

	require.NotNil(t, out.Selectivity)
	assert.InDelta(t, 50.0/101.0, *out.Selectivity, 1e-9)
	assert.True(t, interval.Equal(
		mustInterval(t, scalar.NewInt64(51), scalar.NewInt64(100)),
		out.Boundaries[0].Interval))
	assert.True(t, interval.Equal(
		mustInterval(t, scalar.NewInt64(0), scalar.NewInt64(100)),
		out.Boundaries[1].Interval))

	// The input context is untouched.
	assert.Nil(t, ctx.Selectivity)
	assert.True(t, interval.Equal(
		mustInterval(t, scalar.NewInt64(0), scalar.NewInt64(100)),
		ctx.Boundaries[0].Interval))
}

func TestAnalyzeInfeasible(t *testing.T) {
	ctx := intContext(t)
	out, err := analysis.Analyze(expr.NewBinary(expr.Eq, expr.Int64(1), expr.Int64(2)), ctx)
	require.NoError(t, err)

	require.NotNil(t, out.Selectivity)
	assert.Equal(t, 0.0, *out.Selectivity)
	assert.True(t, interval.Equal(ctx.Boundaries[0].Interval, out.Boundaries[0].Interval))
}

func TestAnalyzeConjunction(t *testing.T) {
	ctx := intContext(t)
	e := expr.NewBinary(expr.And,
		expr.NewBinary(expr.Gt, colA(), expr.Int64(50)),
		expr.NewBinary(expr.Lt, colB(), expr.Int64(25)))
	out, err := analysis.Analyze(e, ctx)
	require.NoError(t, err)

	require.NotNil(t, out.Selectivity)
	assert.InDelta(t, (50.0/101.0)*(25.0/101.0), *out.Selectivity, 1e-9)
	assert.True(t, interval.Equal(
		mustInterval(t, scalar.NewInt64(51), scalar.NewInt64(100)),
		out.Boundaries[0].Interval))
	assert.True(t, interval.Equal(
		mustInterval(t, scalar.NewInt64(0), scalar.NewInt64(24)),
		out.Boundaries[1].Interval))
}

func TestAnalyzeAlwaysTrue(t *testing.T) {
	ctx := intContext(t)
	out, err := analysis.Analyze(expr.NewBinary(expr.GtEq, colA(), expr.Int64(0)), ctx)
	require.NoError(t, err)

	require.NotNil(t, out.Selectivity)
	assert.Equal(t, 1.0, *out.Selectivity)
	assert.True(t, interval.Equal(ctx.Boundaries[0].Interval, out.Boundaries[0].Interval))
}

func TestAnalyzeCannotPropagate(t *testing.T) {
	ctx := intContext(t)
	e := expr.NewBinary(expr.Gt,
		expr.NewBinary(expr.Multiply, colA(), expr.Int64(2)),
		expr.Int64(10))
	out, err := analysis.Analyze(e, ctx)
	require.NoError(t, err)

	require.NotNil(t, out.Selectivity)
	assert.Equal(t, 1.0, *out.Selectivity)
	assert.True(t, interval.Equal(ctx.Boundaries[0].Interval, out.Boundaries[0].Interval))
}

func TestAnalyzeFloatKeepsClosedEndpoint(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "x", Type: arrow.PrimitiveTypes.Float64},
	}, nil)
	ctx, err := analysis.TryFromStatistics(schema, []stats.ColumnStatistics{{
		MinValue: stats.Exact(scalar.NewFloat64(0)),
		MaxValue: stats.Exact(scalar.NewFloat64(100)),
	}})
	require.NoError(t, err)

	out, err := analysis.Analyze(
		expr.NewBinary(expr.Gt, expr.NewColumn("x", 0), expr.Float64(50)), ctx)
	require.NoError(t, err)

	require.NotNil(t, out.Selectivity)
	assert.InDelta(t, 0.5, *out.Selectivity, 1e-9)
	assert.True(t, interval.Equal(
		mustInterval(t, scalar.NewFloat64(50), scalar.NewFloat64(100)),
		out.Boundaries[0].Interval))
}

func TestAnalyzeMissingStatistics(t *testing.T) {
	// No min/max known: the boundary is unbounded and contributes ratio 1.
	ctx, err := analysis.TryFromStatistics(intSchema, []stats.ColumnStatistics{
		{}, intStats(0, 100),
	})
	require.NoError(t, err)
	require.True(t, ctx.Boundaries[0].Interval.Lower.IsNull())
	require.True(t, ctx.Boundaries[0].Interval.Upper.IsNull())

	out, err := analysis.Analyze(expr.NewBinary(expr.Gt, colA(), expr.Int64(50)), ctx)
	require.NoError(t, err)
	require.NotNil(t, out.Selectivity)
	assert.Equal(t, 1.0, *out.Selectivity)
	// The propagated lower bound still shows up in the refined boundary.
	assert.True(t, scalar.Equal(scalar.NewInt64(51), out.Boundaries[0].Interval.Lower))
}

func TestAnalyzeUnknownColumn(t *testing.T) {
	ctx := intContext(t)
	e := expr.NewBinary(expr.Gt, expr.NewColumn("missing", 7), expr.Int64(5))
	out, err := analysis.Analyze(e, ctx)
	require.NoError(t, err)
	require.NotNil(t, out.Selectivity)
	assert.Equal(t, 1.0, *out.Selectivity)
}

func TestTryFromStatisticsMismatch(t *testing.T) {
	_, err := analysis.TryFromStatistics(intSchema, []stats.ColumnStatistics{intStats(0, 1)})
	require.True(t, errors.Is(err, cerr.ErrStatisticsMismatch))
}

func TestTryFromColumnUnsupportedType(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "v", Type: &arrow.FixedSizeBinaryType{ByteWidth: 16}},
	}, nil)
	_, err := analysis.TryFromColumn(schema, stats.ColumnStatistics{}, 0)
	require.True(t, errors.Is(err, cerr.ErrUnsupportedType))
}

func TestWithSelectivityCopies(t *testing.T) {
	ctx := intContext(t)
	out := ctx.WithSelectivity(0.25)
	require.NotNil(t, out.Selectivity)
	assert.Equal(t, 0.25, *out.Selectivity)
	assert.Nil(t, ctx.Selectivity)
}
