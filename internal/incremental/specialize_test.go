package incremental

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taipan-snake/souffle/internal/ast"
)

// path(x,z,@iter,0,1) :- edge(x,y,@iter,0,1), path(y,z,@iter,0,1).
func joinClause(headName string, prev, cur int64) *ast.Clause {
	annot := func(base []ast.Argument) []ast.Argument {
		return append(append([]ast.Argument{}, base...), &ast.IterationNumber{}, &ast.Constant{Index: prev}, &ast.Constant{Index: cur})
	}
	return &ast.Clause{
		Head: &ast.Atom{Name: headName, Args: annot([]ast.Argument{&ast.Variable{Name: "x"}, &ast.Variable{Name: "z"}})},
		Body: []ast.Literal{
			&ast.Atom{Name: "edge", Args: annot([]ast.Argument{&ast.Variable{Name: "x"}, &ast.Variable{Name: "y"}})},
			&ast.Atom{Name: "path", Args: annot([]ast.Argument{&ast.Variable{Name: "y"}, &ast.Variable{Name: "z"}})},
		},
	}
}

func TestInsertAtomCloneRetargetsHeadAndDriver(t *testing.T) {
	cl := joinClause("path", 0, 1)
	specialized, err := InsertAtomClone(cl, 0)
	require.NoError(t, err)

	assert.Equal(t, "diff_plus@_path", specialized.Head.Name)
	driveAtom := specialized.Body[0].(*ast.Atom)
	assert.Equal(t, "diff_plus_count@_edge", driveAtom.Name)

	other := specialized.Body[1].(*ast.Atom)
	assert.Equal(t, "diff_applied@_path", other.Name)

	for _, lit := range specialized.Body {
		_, isNeg := lit.(*ast.Negation)
		assert.False(t, isNeg, "negations must be cleared")
	}
}

func TestDeleteAtomCloneUsesDeletionCountRole(t *testing.T) {
	cl := joinClause("path", 1, -1)
	specialized, err := DeleteAtomClone(cl, 1)
	require.NoError(t, err)

	assert.Equal(t, "diff_minus@_path", specialized.Head.Name)
	driveAtom := specialized.Body[1].(*ast.Atom)
	assert.Equal(t, "diff_minus_count@_path", driveAtom.Name)
}

func TestInsertAtomCloneOutOfRange(t *testing.T) {
	cl := joinClause("path", 0, 1)
	_, err := InsertAtomClone(cl, 5)
	assert.Error(t, err)
}

// path(x,z,@iter,0,1) :- edge(x,y,@iter,0,1), !blocked(y,z,@iter,0,1).
func negationClause() *ast.Clause {
	annot := func(base []ast.Argument) []ast.Argument {
		return append(append([]ast.Argument{}, base...), &ast.IterationNumber{}, &ast.Constant{Index: 0}, &ast.Constant{Index: 1})
	}
	return &ast.Clause{
		Head: &ast.Atom{Name: "path", Args: annot([]ast.Argument{&ast.Variable{Name: "x"}, &ast.Variable{Name: "z"}})},
		Body: []ast.Literal{
			&ast.Atom{Name: "edge", Args: annot([]ast.Argument{&ast.Variable{Name: "x"}, &ast.Variable{Name: "y"}})},
			&ast.Negation{Atom: &ast.Atom{Name: "blocked", Args: annot([]ast.Argument{&ast.Variable{Name: "y"}, &ast.Variable{Name: "z"}})}},
		},
	}
}

func TestInsertNegationCloneConvertsDriverToPositiveNegation(t *testing.T) {
	cl := negationClause()
	specialized, err := InsertNegationClone(cl, 0)
	require.NoError(t, err)

	assert.Equal(t, "diff_plus@_path", specialized.Head.Name)
	pn, ok := specialized.Body[1].(*ast.PositiveNegation)
	require.True(t, ok)
	assert.Equal(t, "diff_minus_count@_blocked", pn.Atom.Name)

	positive := specialized.Body[0].(*ast.Atom)
	assert.Equal(t, "diff_applied@_edge", positive.Name)
}

func TestDeleteNegationCloneOutOfRange(t *testing.T) {
	cl := negationClause()
	_, err := DeleteNegationClone(cl, 3)
	assert.Error(t, err)
}
