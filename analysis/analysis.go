package analysis

import (
	"github.com/apache/arrow/go/v12/arrow"
	"github.com/pkg/errors"

	cerr "github.com/rangeflow-io/rangeflow/common/errors"
	"github.com/rangeflow-io/rangeflow/common/log"
	"github.com/rangeflow-io/rangeflow/expr"
	"github.com/rangeflow-io/rangeflow/interval"
	"github.com/rangeflow-io/rangeflow/interval/graph"
	"github.com/rangeflow-io/rangeflow/scalar"
	"github.com/rangeflow-io/rangeflow/stats"
)

// ExprBoundaries is what is currently known about one column: its identity,
// the interval its values lie in, and how many distinct values it may take.
type ExprBoundaries struct {
	Column        expr.Column
	Interval      interval.Interval
	DistinctCount stats.Precision[uint64]
}

// TryFromColumn builds the boundary for one schema column from its
// statistics. A missing min or max becomes the field type's typed null, the
// "no information" endpoint; a field type this library cannot order fails
// with a conversion error.
func TryFromColumn(schema *arrow.Schema, colStats stats.ColumnStatistics, colIndex int) (ExprBoundaries, error) {
	field := schema.Field(colIndex)
	empty, err := scalar.Default(field.Type)
	if err != nil {
		return ExprBoundaries{}, errors.Wrapf(err, "column %q", field.Name)
	}
	lower, upper := empty, empty
	if v, ok := colStats.MinValue.Value(); ok {
		lower = v
	}
	if v, ok := colStats.MaxValue.Value(); ok {
		upper = v
	}
	return ExprBoundaries{
		Column:        expr.Column{Name: field.Name, Index: colIndex},
		Interval:      interval.Interval{Lower: lower, Upper: upper},
		DistinctCount: colStats.DistinctCount,
	}, nil
}

// Context carries the per-column boundaries an analysis starts from and, on
// results, the estimated selectivity. Contexts are immutable: every
// transformation returns a fresh value and never touches the boundaries it
// was given, so concurrent analyses need no coordination.
type Context struct {
	Schema     *arrow.Schema
	Boundaries []ExprBoundaries
	// Selectivity is the estimated fraction of rows a predicate selects,
	// between 0.0 (selects nothing) and 1.0 (selects everything). Nil until
	// an analysis has produced one.
	Selectivity *float64
}

func NewContext(schema *arrow.Schema, boundaries []ExprBoundaries) Context {
	return Context{Schema: schema, Boundaries: boundaries}
}

// WithSelectivity returns a copy of the context carrying the given value.
func (c Context) WithSelectivity(selectivity float64) Context {
	c.Selectivity = &selectivity
	return c
}

// TryFromStatistics builds a context with one boundary per schema column, in
// schema order. statistics must be index-aligned with the schema fields.
func TryFromStatistics(schema *arrow.Schema, statistics []stats.ColumnStatistics) (Context, error) {
	if len(statistics) != len(schema.Fields()) {
		return Context{}, errors.Wrapf(cerr.ErrStatisticsMismatch,
			"%d statistics for %d fields", len(statistics), len(schema.Fields()))
	}
	boundaries := make([]ExprBoundaries, 0, len(statistics))
	for i, colStats := range statistics {
		b, err := TryFromColumn(schema, colStats, i)
		if err != nil {
			return Context{}, err
		}
		boundaries = append(boundaries, b)
	}
	return NewContext(schema, boundaries), nil
}

// Analyze tightens the context's column boundaries under the assumption that
// e holds, and estimates e's selectivity by comparing the initial and final
// boundaries. The estimate treats columns as mutually independent and their
// values as uniformly distributed and unsorted.
//
// An infeasible predicate yields the original boundaries with selectivity
// 0.0; a predicate the solver cannot reason about yields the original
// boundaries with selectivity 1.0, so missing information never biases the
// estimate downward.
func Analyze(e expr.Expr, ctx Context) (Context, error) {
	g, err := graph.New(e, ctx.Schema)
	if err != nil {
		return Context{}, errors.Wrapf(err, "building interval graph for %v", e)
	}

	columns := expr.CollectColumns(e)
	targets := make([]expr.Expr, 0, len(columns))
	for _, c := range columns {
		targets = append(targets, c)
	}
	pairs := g.GatherNodeIndices(targets)

	// Bind each column node to its boundary. References with no matching
	// boundary (derived or unregistered columns) stay unconstrained.
	var bindings []graph.Binding
	for _, p := range pairs {
		col, ok := p.Expr.(*expr.Column)
		if !ok {
			continue
		}
		for i := range ctx.Boundaries {
			if col.Matches(&ctx.Boundaries[i].Column) {
				bindings = append(bindings, graph.Binding{Index: p.Index, Interval: ctx.Boundaries[i].Interval})
				break
			}
		}
	}

	result, err := g.UpdateRanges(bindings)
	if err != nil {
		return Context{}, err
	}
	log.Debug("propagation finished",
		log.String("expr", e.String()),
		log.String("result", result.String()))

	switch result {
	case graph.Success:
		return shrinkBoundaries(e, g, ctx, pairs)
	case graph.Infeasible:
		return ctx.WithSelectivity(0.0), nil
	default: // graph.CannotPropagate
		return ctx.WithSelectivity(1.0), nil
	}
}

// shrinkBoundaries overwrites each bound column's interval with the
// propagated one, reads the root's final interval, and derives the
// selectivity from the initial and refined boundaries.
func shrinkBoundaries(e expr.Expr, g *graph.Graph, ctx Context, pairs []graph.ExprNodePair) (Context, error) {
	refined := make([]ExprBoundaries, len(ctx.Boundaries))
	copy(refined, ctx.Boundaries)
	for _, p := range pairs {
		col, ok := p.Expr.(*expr.Column)
		if !ok {
			continue
		}
		for i := range refined {
			if col.Matches(&refined[i].Column) {
				refined[i].Interval = g.Interval(p.Index)
				break
			}
		}
	}

	rootPairs := g.GatherNodeIndices([]expr.Expr{e})
	if len(rootPairs) == 0 {
		// The graph was built from e, so e must be a node. Anything else is
		// a construction defect, not a caller mistake.
		return Context{}, errors.Wrapf(cerr.ErrEmptyGraph, "root %v not found after propagation", e)
	}
	rootInterval := g.Interval(rootPairs[0].Index)

	selectivity, err := calculateSelectivity(rootInterval.Lower, rootInterval.Upper, refined, ctx.Boundaries)
	if err != nil {
		return Context{}, err
	}
	return NewContext(ctx.Schema, refined).WithSelectivity(selectivity), nil
}

// calculateSelectivity turns the propagated root interval plus the initial
// and refined boundaries into one number in [0, 1].
//
// An exact boolean root short-circuits: [true, true] means every row
// satisfies the predicate, [false, false] means none does. Otherwise each
// column contributes the cardinality ratio of its refined interval to its
// initial one, and the ratios multiply: with columns assumed independent and
// uniform, the joint probability of all narrowings is the product of the
// marginal ones. That assumption is deliberate and only approximate for
// correlated or skewed data.
func calculateSelectivity(lower, upper scalar.Value, refined, initial []ExprBoundaries) (float64, error) {
	switch {
	case lower.IsTrue() && upper.IsTrue():
		return 1.0, nil
	case lower.IsFalse() && upper.IsFalse():
		return 0.0, nil
	}
	selectivity := 1.0
	for i := range refined {
		ratio, err := interval.CardinalityRatio(initial[i].Interval, refined[i].Interval)
		if err != nil {
			return 0, errors.Wrapf(err, "column %q", refined[i].Column.Name)
		}
		selectivity *= ratio
	}
	return selectivity, nil
}
