package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taipan-snake/souffle/internal/ast"
	"github.com/taipan-snake/souffle/internal/index"
	"github.com/taipan-snake/souffle/internal/ramir"
)

func TestTranslateVariable(t *testing.T) {
	idx := index.New()
	idx.AddVarRef("x", index.Location{Level: 2, Col: 1})
	tr := New(idx)

	got, err := tr.Translate(&ast.Variable{Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, ramir.TupleElement{Level: 2, Col: 1}, got)
}

func TestTranslateUngroundedVariableFails(t *testing.T) {
	tr := New(index.New())
	_, err := tr.Translate(&ast.Variable{Name: "z"})
	require.Error(t, err)
}

func TestTranslateUnnamedVariable(t *testing.T) {
	tr := New(index.New())
	got, err := tr.Translate(&ast.UnnamedVariable{})
	require.NoError(t, err)
	assert.Equal(t, ramir.UndefValue{}, got)
}

func TestTranslateConstant(t *testing.T) {
	tr := New(index.New())
	got, err := tr.Translate(&ast.Constant{Index: 42})
	require.NoError(t, err)
	assert.Equal(t, ramir.Number{Value: 42}, got)
}

func TestTranslateIntrinsicFunctor(t *testing.T) {
	tr := New(index.New())
	got, err := tr.Translate(&ast.IntrinsicFunctor{
		Op:   "+",
		Args: []ast.Argument{&ast.Constant{Index: 1}, &ast.Constant{Index: 2}},
	})
	require.NoError(t, err)
	op, ok := got.(ramir.IntrinsicOperator)
	require.True(t, ok)
	assert.Equal(t, "+", op.Op)
	assert.Len(t, op.Args, 2)
}

func TestTranslateCounterAndIteration(t *testing.T) {
	tr := New(index.New())

	got, err := tr.Translate(&ast.Counter{})
	require.NoError(t, err)
	assert.Equal(t, ramir.AutoIncrement{}, got)

	got, err = tr.Translate(&ast.IterationNumber{})
	require.NoError(t, err)
	assert.Equal(t, ramir.IterationNumber{}, got)
}

func TestTranslateRecordInit(t *testing.T) {
	idx := index.New()
	idx.AddVarRef("x", index.Location{Level: 0, Col: 0})
	tr := New(idx)

	got, err := tr.Translate(&ast.RecordInit{Args: []ast.Argument{&ast.Variable{Name: "x"}, &ast.Constant{Index: 5}}})
	require.NoError(t, err)
	pack, ok := got.(ramir.PackRecord)
	require.True(t, ok)
	assert.Len(t, pack.Args, 2)
}

func TestTranslateAggregatorUsesResultLocation(t *testing.T) {
	idx := index.New()
	agg := &ast.Aggregator{Op: ast.AggCount, Body: &ast.Atom{Name: "r"}}
	idx.SetAggregatorLocation(agg, index.Location{Level: 4, Col: 0})
	tr := New(idx)

	got, err := tr.Translate(agg)
	require.NoError(t, err)
	assert.Equal(t, ramir.TupleElement{Level: 4, Col: 0}, got)
}

func TestTranslateSubroutineArgument(t *testing.T) {
	tr := New(index.New())
	got, err := tr.Translate(&ast.SubroutineArgument{Index: 3})
	require.NoError(t, err)
	assert.Equal(t, ramir.SubroutineArgument{Index: 3}, got)
}
