package expr

import (
	"fmt"

	"github.com/rangeflow-io/rangeflow/scalar"
)

// Op identifies a binary operator.
type Op int8

const (
	Eq Op = iota
	NotEq
	Lt
	LtEq
	Gt
	GtEq
	And
	Or
	Plus
	Minus
	Multiply
	Divide
)

var opSymbols = map[Op]string{
	Eq:       "=",
	NotEq:    "!=",
	Lt:       "<",
	LtEq:     "<=",
	Gt:       ">",
	GtEq:     ">=",
	And:      "AND",
	Or:       "OR",
	Plus:     "+",
	Minus:    "-",
	Multiply: "*",
	Divide:   "/",
}

func (o Op) String() string {
	if s, ok := opSymbols[o]; ok {
		return s
	}
	return fmt.Sprintf("op(%d)", o)
}

// IsComparison reports whether o compares two values into a boolean.
func (o Op) IsComparison() bool {
	switch o {
	case Eq, NotEq, Lt, LtEq, Gt, GtEq:
		return true
	}
	return false
}

// IsLogical reports whether o combines two booleans.
func (o Op) IsLogical() bool {
	return o == And || o == Or
}

// IsArithmetic reports whether o combines two numeric values.
func (o Op) IsArithmetic() bool {
	switch o {
	case Plus, Minus, Multiply, Divide:
		return true
	}
	return false
}

// Expr is a node of a predicate tree. Implementations are the closed set of
// variants below; consumers dispatch with a type switch rather than
// reflection.
type Expr interface {
	fmt.Stringer
	Children() []Expr
}

// Column references a schema column by name and ordinal position. Both must
// match for two references to be considered the same column.
type Column struct {
	Name  string
	Index int
}

func NewColumn(name string, index int) *Column {
	return &Column{Name: name, Index: index}
}

func (c *Column) Children() []Expr { return nil }

func (c *Column) String() string {
	return fmt.Sprintf("%s@%d", c.Name, c.Index)
}

// Matches reports whether another column reference denotes the same column.
func (c *Column) Matches(other *Column) bool {
	return other != nil && c.Name == other.Name && c.Index == other.Index
}

// Literal is a constant scalar value.
type Literal struct {
	Value scalar.Value
}

func NewLiteral(v scalar.Value) *Literal {
	return &Literal{Value: v}
}

func Int64(v int64) *Literal     { return NewLiteral(scalar.NewInt64(v)) }
func Float64(v float64) *Literal { return NewLiteral(scalar.NewFloat64(v)) }
func Bool(v bool) *Literal       { return NewLiteral(scalar.NewBool(v)) }
func Str(v string) *Literal      { return NewLiteral(scalar.NewString(v)) }

func (l *Literal) Children() []Expr { return nil }

func (l *Literal) String() string { return l.Value.String() }

// Binary applies Op to two operands.
type Binary struct {
	Op    Op
	Left  Expr
	Right Expr
}

func NewBinary(op Op, left, right Expr) *Binary {
	return &Binary{Op: op, Left: left, Right: right}
}

func (b *Binary) Children() []Expr { return []Expr{b.Left, b.Right} }

func (b *Binary) String() string {
	return fmt.Sprintf("(%v %v %v)", b.Left, b.Op, b.Right)
}

// Not negates a boolean operand.
type Not struct {
	Input Expr
}

func NewNot(input Expr) *Not { return &Not{Input: input} }

func (n *Not) Children() []Expr { return []Expr{n.Input} }

func (n *Not) String() string { return fmt.Sprintf("NOT %v", n.Input) }

// Equal reports structural equality of two expression trees.
func Equal(a, b Expr) bool {
	switch x := a.(type) {
	case *Column:
		y, ok := b.(*Column)
		return ok && x.Matches(y)
	case *Literal:
		y, ok := b.(*Literal)
		return ok && scalar.Equal(x.Value, y.Value)
	case *Binary:
		y, ok := b.(*Binary)
		return ok && x.Op == y.Op && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *Not:
		y, ok := b.(*Not)
		return ok && Equal(x.Input, y.Input)
	}
	return false
}

// CollectColumns returns every distinct column referenced by e, in first
// appearance order.
func CollectColumns(e Expr) []*Column {
	var out []*Column
	var walk func(Expr)
	walk = func(e Expr) {
		if c, ok := e.(*Column); ok {
			for _, seen := range out {
				if seen.Matches(c) {
					return
				}
			}
			out = append(out, c)
			return
		}
		for _, child := range e.Children() {
			walk(child)
		}
	}
	walk(e)
	return out
}
