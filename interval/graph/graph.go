package graph

import (
	"github.com/apache/arrow/go/v12/arrow"
	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"

	cerr "github.com/rangeflow-io/rangeflow/common/errors"
	"github.com/rangeflow-io/rangeflow/expr"
	"github.com/rangeflow-io/rangeflow/interval"
	"github.com/rangeflow-io/rangeflow/scalar"
)

// PropagationResult is the outcome of one propagation pass.
type PropagationResult int8

const (
	// Success: node intervals were tightened and are internally consistent.
	Success PropagationResult = iota
	// Infeasible: no value can satisfy the expression under the seeded bounds.
	Infeasible
	// CannotPropagate: the solver made no determination, e.g. the expression
	// contains an operator it cannot invert or is not boolean at the root.
	CannotPropagate
)

func (r PropagationResult) String() string {
	switch r {
	case Success:
		return "Success"
	case Infeasible:
		return "Infeasible"
	case CannotPropagate:
		return "CannotPropagate"
	}
	return "Unknown"
}

type node struct {
	expr     expr.Expr
	interval interval.Interval
	children []int
}

// Graph is a constraint-propagation graph over one predicate expression:
// one node per distinct sub-expression (structurally equal sub-expressions
// share a node), children edges mirroring the tree, nodes indexed so that a
// child's index is always smaller than its parent's. The root is the last
// node. A Graph is built for a single UpdateRanges call and then read;
// it is not safe for concurrent use and not meant to be reused.
type Graph struct {
	nodes      []node
	root       int
	invertible bool
}

// ExprNodePair binds a sub-expression to its node index.
type ExprNodePair struct {
	Expr  expr.Expr
	Index int
}

// Binding seeds a node with a known interval before propagation.
type Binding struct {
	Index    int
	Interval interval.Interval
}

// New builds the graph for e. Column leaves take their type from schema when
// the reference resolves (matching name at the referenced ordinal, falling
// back to a name lookup); unresolved references stay untyped and simply never
// constrain anything. Unsupported expression kinds fail construction.
func New(e expr.Expr, schema *arrow.Schema) (*Graph, error) {
	g := &Graph{invertible: true}
	root, err := g.add(e, schema)
	if err != nil {
		return nil, err
	}
	g.root = root
	return g, nil
}

func (g *Graph) add(e expr.Expr, schema *arrow.Schema) (int, error) {
	for i := range g.nodes {
		if expr.Equal(g.nodes[i].expr, e) {
			return i, nil
		}
	}
	switch x := e.(type) {
	case *expr.Column:
		return g.push(e, interval.Unbounded(columnType(x, schema))), nil
	case *expr.Literal:
		return g.push(e, interval.Point(x.Value)), nil
	case *expr.Binary:
		if x.Op == expr.Multiply || x.Op == expr.Divide {
			g.invertible = false
		}
		left, err := g.add(x.Left, schema)
		if err != nil {
			return 0, err
		}
		right, err := g.add(x.Right, schema)
		if err != nil {
			return 0, err
		}
		idx := g.push(e, interval.Unbounded(nil))
		g.nodes[idx].children = []int{left, right}
		return idx, nil
	case *expr.Not:
		child, err := g.add(x.Input, schema)
		if err != nil {
			return 0, err
		}
		idx := g.push(e, interval.Unbounded(nil))
		g.nodes[idx].children = []int{child}
		return idx, nil
	}
	return 0, errors.Wrapf(cerr.ErrUnsupportedExpr, "cannot graph %T", e)
}

func (g *Graph) push(e expr.Expr, iv interval.Interval) int {
	g.nodes = append(g.nodes, node{expr: e, interval: iv})
	return len(g.nodes) - 1
}

func columnType(c *expr.Column, schema *arrow.Schema) arrow.DataType {
	if schema == nil {
		return nil
	}
	fields := schema.Fields()
	if c.Index >= 0 && c.Index < len(fields) && fields[c.Index].Name == c.Name {
		if dt := fields[c.Index].Type; scalar.Supported(dt) {
			return dt
		}
		return nil
	}
	for _, f := range fields {
		if f.Name == c.Name && scalar.Supported(f.Type) {
			return f.Type
		}
	}
	return nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// GatherNodeIndices maps the given sub-expressions to node indices. Only
// exact structural matches are returned; expressions with no node are
// silently absent from the result, and duplicate inputs yield one pair.
func (g *Graph) GatherNodeIndices(exprs []expr.Expr) []ExprNodePair {
	matched := bitset.New(uint(len(g.nodes)))
	var out []ExprNodePair
	for _, e := range exprs {
		for i := range g.nodes {
			if expr.Equal(g.nodes[i].expr, e) {
				if !matched.Test(uint(i)) {
					matched.Set(uint(i))
					out = append(out, ExprNodePair{Expr: e, Index: i})
				}
				break
			}
		}
	}
	return out
}

// Interval reads a node's current interval. Meaningful after UpdateRanges.
func (g *Graph) Interval(index int) interval.Interval {
	return g.nodes[index].interval
}

// UpdateRanges seeds the given nodes, evaluates every node's interval bottom
// up, and, when the root can be asserted true, narrows the leaves top down.
// The root keeps its evaluated interval; "the root is true" is only the
// propagation target, so a caller can still observe an uncertain root.
func (g *Graph) UpdateRanges(bindings []Binding) (PropagationResult, error) {
	if len(g.nodes) == 0 {
		return CannotPropagate, errors.Wrap(cerr.ErrEmptyGraph, "update ranges")
	}
	if !g.invertible {
		return CannotPropagate, nil
	}

	for _, b := range bindings {
		if b.Index < 0 || b.Index >= len(g.nodes) {
			return CannotPropagate, errors.Wrapf(cerr.ErrEmptyGraph, "binding index %d out of range", b.Index)
		}
		iv, ok, err := interval.Intersect(g.nodes[b.Index].interval, b.Interval)
		if err != nil {
			return CannotPropagate, err
		}
		if !ok {
			return Infeasible, nil
		}
		g.nodes[b.Index].interval = iv
	}

	if err := g.evaluateBounds(); err != nil {
		return CannotPropagate, err
	}

	rootIv := g.nodes[g.root].interval
	if !rootIv.IsBoolean() {
		return CannotPropagate, nil
	}
	if rootIv.IsCertainlyFalse() {
		return Infeasible, nil
	}

	feasible, err := g.propagateConstraints()
	if err != nil {
		return CannotPropagate, err
	}
	if !feasible {
		return Infeasible, nil
	}
	return Success, nil
}

// evaluateBounds recomputes every internal node's interval from its children,
// in ascending index order (children always precede parents).
func (g *Graph) evaluateBounds() error {
	for i := range g.nodes {
		iv, err := g.evaluateNode(i)
		if err != nil {
			return err
		}
		g.nodes[i].interval = iv
	}
	return nil
}

func (g *Graph) evaluateNode(i int) (interval.Interval, error) {
	n := g.nodes[i]
	switch x := n.expr.(type) {
	case *expr.Column, *expr.Literal:
		return n.interval, nil
	case *expr.Not:
		return interval.EvaluateNot(g.nodes[n.children[0]].interval)
	case *expr.Binary:
		left := g.nodes[n.children[0]].interval
		right := g.nodes[n.children[1]].interval
		switch {
		case x.Op.IsComparison():
			return interval.EvaluateComparison(x.Op, left, right)
		case x.Op.IsLogical():
			return interval.EvaluateLogic(x.Op, left, right)
		case x.Op.IsArithmetic():
			return interval.EvaluateArithmetic(x.Op, left, right)
		}
	}
	return interval.Interval{}, errors.Wrapf(cerr.ErrUnsupportedExpr, "cannot evaluate %v", n.expr)
}

// propagateConstraints walks parents before children (descending index) and
// narrows each node's operands. The root's effective interval is its
// evaluated one intersected with [true, true].
func (g *Graph) propagateConstraints() (bool, error) {
	target, ok, err := interval.Intersect(g.nodes[g.root].interval, interval.CertainlyTrue())
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	for i := len(g.nodes) - 1; i >= 0; i-- {
		n := g.nodes[i]
		nodeIv := n.interval
		if i == g.root {
			nodeIv = target
		}
		switch x := n.expr.(type) {
		case *expr.Column, *expr.Literal:
			continue
		case *expr.Not:
			child, feasible, err := interval.PropagateNot(nodeIv, g.nodes[n.children[0]].interval)
			if err != nil || !feasible {
				return feasible, err
			}
			g.nodes[n.children[0]].interval = child
		case *expr.Binary:
			left := g.nodes[n.children[0]].interval
			right := g.nodes[n.children[1]].interval
			var newLeft, newRight interval.Interval
			var feasible bool
			switch {
			case x.Op.IsComparison():
				newLeft, newRight, feasible, err = interval.PropagateComparison(x.Op, nodeIv, left, right)
			case x.Op.IsLogical():
				newLeft, newRight, feasible, err = interval.PropagateLogic(x.Op, nodeIv, left, right)
			case x.Op.IsArithmetic():
				newLeft, newRight, feasible, err = interval.PropagateArithmetic(x.Op, nodeIv, left, right)
			default:
				return false, errors.Wrapf(cerr.ErrUnsupportedExpr, "cannot propagate through %v", x.Op)
			}
			if err != nil || !feasible {
				return feasible, err
			}
			g.nodes[n.children[0]].interval = newLeft
			g.nodes[n.children[1]].interval = newRight
		}
	}
	return true, nil
}
