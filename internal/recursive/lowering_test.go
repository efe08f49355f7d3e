package recursive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taipan-snake/souffle/internal/ast"
	"github.com/taipan-snake/souffle/internal/clause"
	"github.com/taipan-snake/souffle/internal/nonrecursive"
	"github.com/taipan-snake/souffle/internal/ramir"
)

func newLowering() *Lowering {
	translator := clause.New(ramir.NewRelationTable())
	return New(translator, nonrecursive.New(translator))
}

func recurAll(*ast.Clause) bool { return true }

// path(x,z) :- path(x,y), edge(y,z). — the textbook recursive rule, member
// of its own singleton SCC {path}.
func pathClause() *ast.Clause {
	return &ast.Clause{
		Head: &ast.Atom{Name: "path", Args: []ast.Argument{&ast.Variable{Name: "x"}, &ast.Variable{Name: "z"}}},
		Body: []ast.Literal{
			&ast.Atom{Name: "path", Args: []ast.Argument{&ast.Variable{Name: "x"}, &ast.Variable{Name: "y"}}},
			&ast.Atom{Name: "edge", Args: []ast.Argument{&ast.Variable{Name: "y"}, &ast.Variable{Name: "z"}}},
		},
	}
}

func TestLowerClassicalProducesSequenceWithLoop(t *testing.T) {
	clauses := map[string][]*ast.Clause{"path": {pathClause()}}
	stmt, err := newLowering().Lower(0, []string{"path"}, clauses, recurAll, Options{})
	require.NoError(t, err)

	seq, ok := stmt.(ramir.Sequence)
	require.True(t, ok)
	require.Len(t, seq.Stmts, 3, "preamble, loop, postamble")

	_, ok = seq.Stmts[1].(ramir.Loop)
	assert.True(t, ok)

	drop, ok := seq.Stmts[2].(ramir.Drop)
	require.True(t, ok, "single-relation postamble collapses to its one Drop")
	assert.Equal(t, "@delta_path", drop.Rel.Name)
}

func TestClassicalLoopBodyOneClonePerSCCPosition(t *testing.T) {
	cl := pathClause()
	lw := newLowering()
	stmts, err := lw.classicalLoopClauses(cl, func(name string) bool { return name == "path" }, Options{})
	require.NoError(t, err)
	// Only "path" (position 0) is in-S; "edge" is an external EDB.
	assert.Len(t, stmts, 1)
}

func TestClassicalLoopBodySkipsAtomsOutsideSCC(t *testing.T) {
	cl := pathClause()
	lw := newLowering()
	stmts, err := lw.classicalLoopClauses(cl, func(string) bool { return false }, Options{})
	require.NoError(t, err)
	assert.Empty(t, stmts)
}

// Incremental insertion-classified recursive rule.
func incrementalPathClause(prev, cur int64) *ast.Clause {
	annot := func(base []ast.Argument) []ast.Argument {
		return append(append([]ast.Argument{}, base...), &ast.IterationNumber{}, &ast.Constant{Index: prev}, &ast.Constant{Index: cur})
	}
	return &ast.Clause{
		Head: &ast.Atom{Name: "path", Args: annot([]ast.Argument{&ast.Variable{Name: "x"}, &ast.Variable{Name: "z"}})},
		Body: []ast.Literal{
			&ast.Atom{Name: "path", Args: annot([]ast.Argument{&ast.Variable{Name: "x"}, &ast.Variable{Name: "y"}})},
			&ast.Atom{Name: "edge", Args: annot([]ast.Argument{&ast.Variable{Name: "y"}, &ast.Variable{Name: "z"}})},
		},
	}
}

func TestIncrementalInsertionDispatch(t *testing.T) {
	cl := incrementalPathClause(0, 1)
	lw := newLowering()
	stmts, err := lw.incrementalLoopClauses(cl, func(name string) bool { return name == "path" }, Options{Incremental: true})
	require.NoError(t, err)
	assert.Len(t, stmts, 1, "one clone for the single in-S positive position")
}

func TestIncrementalReinsertionDispatch(t *testing.T) {
	cl := incrementalPathClause(1, 1)
	lw := newLowering()
	stmts, err := lw.incrementalLoopClauses(cl, func(name string) bool { return name == "path" }, Options{Incremental: true})
	require.NoError(t, err)
	assert.Len(t, stmts, 1)
}

func TestBuildExitIncrementalAddsSubroutineCondition(t *testing.T) {
	lw := newLowering()
	exit := lw.buildExit(0, []string{"path"}, Options{Incremental: true}).(ramir.Exit)
	conj, ok := exit.Cond.(ramir.CondConjunction)
	require.True(t, ok)
	_, ok = conj.RHS.(ramir.SubroutineCondition)
	assert.True(t, ok)
}

func TestBuildExitClassicalUsesNewEmptiness(t *testing.T) {
	lw := newLowering()
	exit := lw.buildExit(0, []string{"path"}, Options{}).(ramir.Exit)
	empty, ok := exit.Cond.(ramir.EmptinessCheck)
	require.True(t, ok)
	assert.Equal(t, "@new_path", empty.Rel.Name)
}

func TestBuildUpdateTableIncludesIncrementalMerges(t *testing.T) {
	lw := newLowering()
	seq := lw.buildUpdateTable([]string{"path"}, Options{Incremental: true}).(ramir.Sequence)
	assert.Greater(t, len(seq.Stmts), 3)
}
