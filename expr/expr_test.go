package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rangeflow-io/rangeflow/scalar"
)

func TestString(t *testing.T) {
	e := NewBinary(And,
		NewBinary(Gt, NewColumn("a", 0), Int64(50)),
		NewBinary(Lt, NewColumn("b", 1), Float64(0.5)))
	assert.Equal(t, "((a@0 > 50) AND (b@1 < 0.5))", e.String())
	assert.Equal(t, "NOT a@0", NewNot(NewColumn("a", 0)).String())
}

func TestOpKinds(t *testing.T) {
	for _, op := range []Op{Eq, NotEq, Lt, LtEq, Gt, GtEq} {
		assert.True(t, op.IsComparison(), op.String())
		assert.False(t, op.IsLogical(), op.String())
		assert.False(t, op.IsArithmetic(), op.String())
	}
	assert.True(t, And.IsLogical())
	assert.True(t, Or.IsLogical())
	for _, op := range []Op{Plus, Minus, Multiply, Divide} {
		assert.True(t, op.IsArithmetic(), op.String())
	}
}

func TestEqual(t *testing.T) {
	a := NewBinary(Gt, NewColumn("a", 0), Int64(50))
	b := NewBinary(Gt, NewColumn("a", 0), Int64(50))
	require.True(t, Equal(a, b))
	require.False(t, Equal(a, NewBinary(GtEq, NewColumn("a", 0), Int64(50))))
	require.False(t, Equal(a, NewBinary(Gt, NewColumn("a", 1), Int64(50))))
	require.False(t, Equal(a, NewBinary(Gt, NewColumn("a", 0), Int64(51))))
	require.True(t, Equal(NewLiteral(scalar.NewString("x")), Str("x")))
	require.False(t, Equal(Int64(1), Float64(1)))
}

func TestCollectColumns(t *testing.T) {
	a := NewColumn("a", 0)
	b := NewColumn("b", 1)
	e := NewBinary(And,
		NewBinary(Gt, a, Int64(1)),
		NewBinary(Or,
			NewBinary(Lt, b, Int64(9)),
			NewBinary(Eq, NewColumn("a", 0), Int64(4))))

	cols := CollectColumns(e)
	require.Len(t, cols, 2)
	assert.True(t, cols[0].Matches(a))
	assert.True(t, cols[1].Matches(b))

	assert.Empty(t, CollectColumns(Int64(3)))
}
