package nonrecursive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taipan-snake/souffle/internal/ast"
	"github.com/taipan-snake/souffle/internal/clause"
	"github.com/taipan-snake/souffle/internal/ramir"
)

func newLowering() *Lowering {
	return New(clause.New(ramir.NewRelationTable()))
}

func noneRecur(*ast.Clause) bool { return false }

// p(x) :- q(x). non-recursive, non-incremental: one translated clause.
func TestLowerClassical(t *testing.T) {
	cl := &ast.Clause{
		Head: &ast.Atom{Name: "p", Args: []ast.Argument{&ast.Variable{Name: "x"}}},
		Body: []ast.Literal{&ast.Atom{Name: "q", Args: []ast.Argument{&ast.Variable{Name: "x"}}}},
	}
	stmt, err := newLowering().Lower("p", []*ast.Clause{cl}, noneRecur, Options{})
	require.NoError(t, err)
	query, ok := stmt.(ramir.Query)
	require.True(t, ok)
	_, ok = query.Op.(ramir.Scan)
	assert.True(t, ok)
}

func TestLowerSkipsRecursiveClauses(t *testing.T) {
	cl := &ast.Clause{
		Head: &ast.Atom{Name: "p", Args: []ast.Argument{&ast.Variable{Name: "x"}}},
		Body: []ast.Literal{&ast.Atom{Name: "q", Args: []ast.Argument{&ast.Variable{Name: "x"}}}},
	}
	stmt, err := newLowering().Lower("p", []*ast.Clause{cl}, func(*ast.Clause) bool { return true }, Options{})
	require.NoError(t, err)
	assert.Nil(t, stmt)
}

func TestLowerProfileWrapsTimerAndSize(t *testing.T) {
	cl := &ast.Clause{
		Head: &ast.Atom{Name: "p", Args: []ast.Argument{&ast.Variable{Name: "x"}}},
		Body: []ast.Literal{&ast.Atom{Name: "q", Args: []ast.Argument{&ast.Variable{Name: "x"}}}},
	}
	stmt, err := newLowering().Lower("p", []*ast.Clause{cl}, noneRecur, Options{Profile: true})
	require.NoError(t, err)
	seq, ok := stmt.(ramir.Sequence)
	require.True(t, ok)
	require.Len(t, seq.Stmts, 2)
	_, ok = seq.Stmts[0].(ramir.LogRelationTimer)
	assert.True(t, ok)
	_, ok = seq.Stmts[1].(ramir.LogSize)
	assert.True(t, ok)
}

// Insertion-classified incremental clause: one specialised clone per
// positive body position, none reinsertion (skipped).
func TestLowerIncrementalInsertionProducesOneClonePerAtom(t *testing.T) {
	annot := func(base []ast.Argument) []ast.Argument {
		return append(append([]ast.Argument{}, base...), &ast.IterationNumber{}, &ast.Constant{Index: 0}, &ast.Constant{Index: 1})
	}
	cl := &ast.Clause{
		Head: &ast.Atom{Name: "path", Args: annot([]ast.Argument{&ast.Variable{Name: "x"}, &ast.Variable{Name: "z"}})},
		Body: []ast.Literal{
			&ast.Atom{Name: "edge", Args: annot([]ast.Argument{&ast.Variable{Name: "x"}, &ast.Variable{Name: "y"}})},
			&ast.Atom{Name: "path", Args: annot([]ast.Argument{&ast.Variable{Name: "y"}, &ast.Variable{Name: "z"}})},
		},
	}
	stmt, err := newLowering().Lower("path", []*ast.Clause{cl}, noneRecur, Options{Incremental: true})
	require.NoError(t, err)
	seq, ok := stmt.(ramir.Sequence)
	require.True(t, ok)
	assert.Len(t, seq.Stmts, 2, "one clone per positive atom position")
}

func TestLowerIncrementalReinsertionSkipped(t *testing.T) {
	annot := func(base []ast.Argument) []ast.Argument {
		return append(append([]ast.Argument{}, base...), &ast.IterationNumber{}, &ast.Constant{Index: 1}, &ast.Constant{Index: 1})
	}
	cl := &ast.Clause{
		Head: &ast.Atom{Name: "path", Args: annot([]ast.Argument{&ast.Variable{Name: "x"}, &ast.Variable{Name: "z"}})},
		Body: []ast.Literal{
			&ast.Atom{Name: "edge", Args: annot([]ast.Argument{&ast.Variable{Name: "x"}, &ast.Variable{Name: "z"}})},
		},
	}
	stmt, err := newLowering().Lower("path", []*ast.Clause{cl}, noneRecur, Options{Incremental: true})
	require.NoError(t, err)
	assert.Nil(t, stmt)
}
