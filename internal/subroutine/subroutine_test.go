package subroutine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taipan-snake/souffle/internal/ast"
	"github.com/taipan-snake/souffle/internal/ramir"
)

func TestSubroutineNameConventions(t *testing.T) {
	assert.Equal(t, "path_0_subproof", SubproofName("path", 0))
	assert.Equal(t, "path_0_negation_subproof", NegationSubproofName("path", 0))
	assert.Equal(t, "scc_2_exit", ExitCondName(2))
	assert.Equal(t, "incremental_cleanup", IncrementalCleanupName)
}

// annotated builds `name(baseArgs..., ruleOrIter, heights...)`.
func annotated(name string, base []ast.Argument, extra ...ast.Argument) *ast.Atom {
	return &ast.Atom{Name: name, Args: append(append([]ast.Argument{}, base...), extra...)}
}

func TestBindSubproofArgsSubtreeHeights(t *testing.T) {
	// path(x,y,rule,h) :- edge(x,y,rule2,h2). under subtree-heights (1 col).
	cl := &ast.Clause{
		Head: annotated("path",
			[]ast.Argument{&ast.Variable{Name: "x"}, &ast.Variable{Name: "y"}},
			&ast.Variable{Name: "rule"}, &ast.Variable{Name: "h"}),
		Body: []ast.Literal{
			annotated("edge",
				[]ast.Argument{&ast.Variable{Name: "x"}, &ast.Variable{Name: "y"}},
				&ast.Variable{Name: "rule2"}, &ast.Variable{Name: "h2"}),
		},
	}
	cp := bindSubproofArgs(cl, 1)

	// original body atom + 2 head bindings + 1 height binding
	require.Len(t, cp.Body, 4)

	headEq := cp.Body[1].(*ast.BinaryConstraint)
	assert.Equal(t, ast.OpEQ, headEq.Op)
	assert.Equal(t, 0, headEq.RHS.(*ast.SubroutineArgument).Index)

	heightEq := cp.Body[3].(*ast.BinaryConstraint)
	assert.Equal(t, ast.OpEQ, heightEq.Op)
	assert.Equal(t, 2, heightEq.RHS.(*ast.SubroutineArgument).Index, "height arg index continues after the 2 head bindings")
}

func TestBindSubproofArgsFlatProvenance(t *testing.T) {
	cl := &ast.Clause{
		Head: annotated("path", []ast.Argument{&ast.Variable{Name: "x"}}, &ast.Variable{Name: "rule"}),
		Body: []ast.Literal{
			annotated("edge", []ast.Argument{&ast.Variable{Name: "x"}}, &ast.Variable{Name: "rule2"}),
		},
	}
	cp := bindSubproofArgs(cl, 0)
	require.Len(t, cp.Body, 3) // atom + 1 head binding + 1 flat height bound

	flat := cp.Body[2].(*ast.BinaryConstraint)
	assert.Equal(t, ast.OpLT, flat.Op)
	assert.Equal(t, 1, flat.RHS.(*ast.SubroutineArgument).Index)
}

func TestEraseAggregatorsReplacesWithFreshVariables(t *testing.T) {
	body := []ast.Literal{
		&ast.Atom{Name: "q", Args: []ast.Argument{
			&ast.Variable{Name: "x"},
			&ast.Aggregator{Op: ast.AggCount, Body: &ast.Atom{Name: "r", Args: []ast.Argument{&ast.Variable{Name: "x"}}}},
		}},
	}
	out := eraseAggregators(body)
	atom := out[0].(*ast.Atom)
	v, ok := atom.Args[1].(*ast.Variable)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(v.Name, "@level_num"))
	// original untouched
	_, stillAgg := body[0].(*ast.Atom).Args[1].(*ast.Aggregator)
	assert.True(t, stillAgg)
}

func TestBindNegationArgsMapsDistinctVariablesInOrder(t *testing.T) {
	body := []ast.Literal{
		&ast.Atom{Name: "q", Args: []ast.Argument{&ast.Variable{Name: "x"}, &ast.Variable{Name: "y"}}},
		&ast.Negation{Atom: &ast.Atom{Name: "r", Args: []ast.Argument{&ast.Variable{Name: "y"}, &ast.Variable{Name: "z"}}}},
	}
	out := bindNegationArgs(body)

	q := out[0].(*ast.Atom)
	assert.Equal(t, 0, q.Args[0].(*ast.SubroutineArgument).Index)
	assert.Equal(t, 1, q.Args[1].(*ast.SubroutineArgument).Index)

	r := out[1].(*ast.Negation)
	assert.Equal(t, 1, r.Atom.Args[0].(*ast.SubroutineArgument).Index, "y reuses its first-occurrence index")
	assert.Equal(t, 2, r.Atom.Args[1].(*ast.SubroutineArgument).Index)
}

func TestNegationSubproofBuildsTwoStatementsPerLiteral(t *testing.T) {
	cl := &ast.Clause{
		Head: &ast.Atom{Name: "blocked", Args: []ast.Argument{&ast.Variable{Name: "x"}}},
		Body: []ast.Literal{
			&ast.Atom{Name: "q", Args: []ast.Argument{&ast.Variable{Name: "x"}}},
			&ast.Negation{Atom: &ast.Atom{Name: "r", Args: []ast.Argument{&ast.Variable{Name: "x"}}}},
		},
	}
	stmt, err := NegationSubproof(cl)
	require.NoError(t, err)

	seq, ok := stmt.(ramir.Sequence)
	require.True(t, ok)
	require.Len(t, seq.Stmts, 4)

	firstQuery := seq.Stmts[0].(ramir.Query)
	filter := firstQuery.Op.(ramir.Filter)
	exists, ok := filter.Cond.(ramir.ExistenceCheck)
	require.True(t, ok)
	assert.Equal(t, "q", exists.Rel.Name)

	lastQuery := seq.Stmts[3].(ramir.Query)
	ret := lastQuery.Op.(ramir.SubroutineReturnValue)
	assert.True(t, ret.Terminating, "fallback of the final literal terminates the subroutine")
}

func TestIncrementalCleanupMergesClearsAndResetsCounts(t *testing.T) {
	relations := ramir.NewRelationTable()
	relations.GetOrCreate("p", []ramir.RamAttribute{{Name: "x"}, {Name: "iter"}, {Name: "prev"}, {Name: "cur"}}, 0, "")

	stmt, err := IncrementalCleanup(relations, []string{"p"})
	require.NoError(t, err)

	seq := stmt.(ramir.Sequence)
	assert.Len(t, seq.Stmts, 10, "2 merges + 7 clears + 1 reset query")

	resetQuery := seq.Stmts[len(seq.Stmts)-1].(ramir.Query)
	scan := resetQuery.Op.(ramir.Scan)
	project := scan.Child.(ramir.Project)
	require.Len(t, project.Values, 4)
	assert.Equal(t, ramir.Number{Value: -1}, project.Values[2])
	assert.Equal(t, ramir.Number{Value: -1}, project.Values[3])
}

func TestIncrementalExitCondShape(t *testing.T) {
	stmt := IncrementalExitCond("scc_0_@max_iter")
	seq := stmt.(ramir.Sequence)
	require.Len(t, seq.Stmts, 2)

	scan := seq.Stmts[0].(ramir.Query).Op.(ramir.Scan)
	assert.Equal(t, "scc_0_@max_iter", scan.Rel.Name)
	filter := scan.Child.(ramir.Filter)
	cond := filter.Cond.(ramir.Constraint)
	assert.Equal(t, ast.OpGE, cond.Op)

	done := seq.Stmts[1].(ramir.Query).Op.(ramir.SubroutineReturnValue)
	assert.Equal(t, []ramir.RamExpression{ramir.Number{Value: 1}}, done.Values)
}
