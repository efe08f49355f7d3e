package driver_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taipan-snake/souffle/internal/analysis"
	"github.com/taipan-snake/souffle/internal/ast"
	"github.com/taipan-snake/souffle/internal/config"
	"github.com/taipan-snake/souffle/internal/driver"
	"github.com/taipan-snake/souffle/internal/ramir"
	"github.com/taipan-snake/souffle/internal/ramlog"
)

// fakeGraph implements analysis.SCCGraph for a two-SCC reachability program:
// SCC 0 = {edge} (non-recursive, input), SCC 1 = {path} (recursive, output).
type fakeGraph struct{}

func (fakeGraph) NumberOfSCCs() int { return 2 }
func (fakeGraph) InternalRelations(scc analysis.SCCIndex) []string {
	if scc == 0 {
		return []string{"edge"}
	}
	return []string{"path"}
}
func (fakeGraph) IsRecursive(scc analysis.SCCIndex) bool { return scc == 1 }
func (fakeGraph) ExternalOutputPredecessorRelations(analysis.SCCIndex) []string    { return nil }
func (fakeGraph) ExternalNonOutputPredecessorRelations(analysis.SCCIndex) []string { return nil }
func (fakeGraph) InternalNonOutputRelationsWithExternalSuccessors(analysis.SCCIndex) []string {
	return nil
}
func (fakeGraph) InternalInputRelations(scc analysis.SCCIndex) []string {
	if scc == 0 {
		return []string{"edge"}
	}
	return nil
}
func (fakeGraph) InternalOutputRelations(scc analysis.SCCIndex) []string {
	if scc == 1 {
		return []string{"path"}
	}
	return nil
}
func (fakeGraph) SCCOf(relation string) analysis.SCCIndex {
	if relation == "edge" {
		return 0
	}
	return 1
}

type fakeOrder struct{}

func (fakeOrder) Order() []analysis.SCCIndex { return []analysis.SCCIndex{0, 1} }

type fakeSchedule struct{}

func (fakeSchedule) Expired(int, string) bool { return false }

type fakeRecursionOracle struct{ recursive map[*ast.Clause]bool }

func (f fakeRecursionOracle) Recursive(cl *ast.Clause) bool { return f.recursive[cl] }

func reachabilityRelations() ([]*ast.Relation, *ast.Clause, *ast.Clause) {
	edge := &ast.Relation{
		Name:            "edge",
		Attributes:      []ast.Attribute{{Name: "x"}, {Name: "y"}},
		QualifierInput:  true,
	}

	baseCase := &ast.Clause{
		Head: &ast.Atom{Name: "path", Args: []ast.Argument{&ast.Variable{Name: "x"}, &ast.Variable{Name: "y"}}},
		Body: []ast.Literal{
			&ast.Atom{Name: "edge", Args: []ast.Argument{&ast.Variable{Name: "x"}, &ast.Variable{Name: "y"}}},
		},
	}
	transitive := &ast.Clause{
		Head: &ast.Atom{Name: "path", Args: []ast.Argument{&ast.Variable{Name: "x"}, &ast.Variable{Name: "y"}}},
		Body: []ast.Literal{
			&ast.Atom{Name: "path", Args: []ast.Argument{&ast.Variable{Name: "x"}, &ast.Variable{Name: "z"}}},
			&ast.Atom{Name: "edge", Args: []ast.Argument{&ast.Variable{Name: "z"}, &ast.Variable{Name: "y"}}},
		},
	}
	path := &ast.Relation{
		Name:            "path",
		Attributes:      []ast.Attribute{{Name: "x"}, {Name: "y"}},
		QualifierOutput: true,
		Clauses:         []*ast.Clause{baseCase, transitive},
	}

	return []*ast.Relation{edge, path}, baseCase, transitive
}

func TestRunBuildsCreateLoadBodyStoreSequence(t *testing.T) {
	relations, baseCase, transitive := reachabilityRelations()
	recur := fakeRecursionOracle{recursive: map[*ast.Clause]bool{baseCase: false, transitive: true}}

	d := driver.New(config.New(), ramlog.New(false))
	program, err := d.Run(relations, fakeGraph{}, fakeOrder{}, fakeSchedule{}, recur)
	require.NoError(t, err)
	require.NotNil(t, program)

	main, ok := program.Main.(ramir.Sequence)
	require.True(t, ok, "two non-empty SCC sequences should not collapse to a single statement")
	require.Len(t, main.Stmts, 2)

	edgeSCC := main.Stmts[0].(ramir.Sequence)
	require.GreaterOrEqual(t, len(edgeSCC.Stmts), 2)
	create, ok := edgeSCC.Stmts[0].(ramir.Create)
	require.True(t, ok)
	assert.Equal(t, "edge", create.Rel.Name)
	load, ok := edgeSCC.Stmts[1].(ramir.Load)
	require.True(t, ok)
	assert.Equal(t, "edge", load.Rel.Name)

	pathSCC := main.Stmts[1].(ramir.Sequence)
	var sawPathCreate, sawDeltaCreate, sawNewCreate, sawStore bool
	for _, s := range pathSCC.Stmts {
		switch v := s.(type) {
		case ramir.Create:
			switch v.Rel.Name {
			case "path":
				sawPathCreate = true
			case "@delta_path":
				sawDeltaCreate = true
			case "@new_path":
				sawNewCreate = true
			}
		case ramir.Store:
			if v.Rel.Name == "path" {
				sawStore = true
			}
		}
	}
	assert.True(t, sawPathCreate)
	assert.True(t, sawDeltaCreate)
	assert.True(t, sawNewCreate)
	assert.True(t, sawStore, "path is the SCC's output relation and must be stored")

	assert.Equal(t, program.Subroutine("path_0_subproof"), ramir.RamStatement(nil), "no subproofs registered without provenance")
}

func TestRunRegistersProvenanceSubproofsAndExitCond(t *testing.T) {
	relations, baseCase, transitive := reachabilityRelations()
	recur := fakeRecursionOracle{recursive: map[*ast.Clause]bool{baseCase: false, transitive: true}}

	cfg := config.New(config.WithProvenance(true))
	d := driver.New(cfg, ramlog.New(false))
	program, err := d.Run(relations, fakeGraph{}, fakeOrder{}, fakeSchedule{}, recur)
	require.NoError(t, err)

	names := program.SubroutineNames()
	assert.Contains(t, names, "path_0_subproof")
	assert.Contains(t, names, "path_0_negation_subproof")
	assert.Contains(t, names, "path_1_subproof")
	assert.Contains(t, names, "path_1_negation_subproof")
	assert.NotContains(t, names, "edge_0_subproof", "edge has no clauses of its own in this fixture")
	assert.Contains(t, names, "scc_1_exit")
}

func TestRunIncrementalDefersStoresPastCleanup(t *testing.T) {
	relations, baseCase, transitive := reachabilityRelations()
	recur := fakeRecursionOracle{recursive: map[*ast.Clause]bool{baseCase: false, transitive: true}}

	// Incremental mode reads three trailing annotation arguments
	// (@iteration, @prev_count, @current_count) on every atom; annotate
	// the fixture's clauses as insertions (prev=0, cur=1).
	for _, cl := range []*ast.Clause{baseCase, transitive} {
		atoms := []*ast.Atom{cl.Head}
		for _, lit := range cl.Body {
			atoms = append(atoms, lit.(*ast.Atom))
		}
		for _, a := range atoms {
			a.Args = append(a.Args, &ast.IterationNumber{}, &ast.Constant{Index: 0}, &ast.Constant{Index: 1})
		}
	}

	cfg := config.New(config.WithIncremental(true))
	d := driver.New(cfg, ramlog.New(false))
	program, err := d.Run(relations, fakeGraph{}, fakeOrder{}, fakeSchedule{}, recur)
	require.NoError(t, err)

	main := program.Main.(ramir.Sequence)
	last := main.Stmts[len(main.Stmts)-1]
	require.IsType(t, ramir.Store{}, last, "the final Main statement must be the deferred store of path, after cleanup")

	assert.NotNil(t, program.Subroutine("incremental_cleanup"))
}

// TestRunIsDeterministic checks spec.md §8 property 4: translating two
// independently-built but semantically identical ASTs through two fresh
// Drivers must produce structurally identical RAM programs (statement
// trees only reference relations by name, so pointer identity in the
// source AST cannot leak into the result).
func TestRunIsDeterministic(t *testing.T) {
	cfg := config.New(config.WithProvenance(true))

	build := func() *ramir.RamProgram {
		relations, baseCase, transitive := reachabilityRelations()
		recur := fakeRecursionOracle{recursive: map[*ast.Clause]bool{baseCase: false, transitive: true}}
		d := driver.New(cfg, ramlog.New(false))
		program, err := d.Run(relations, fakeGraph{}, fakeOrder{}, fakeSchedule{}, recur)
		require.NoError(t, err)
		return program
	}

	first := build()
	second := build()

	if diff := cmp.Diff(first.Main, second.Main); diff != "" {
		t.Fatalf("Main statement tree differs between runs (-first +second):\n%s", diff)
	}
	assert.Equal(t, first.SubroutineNames(), second.SubroutineNames())
	for _, name := range first.SubroutineNames() {
		if diff := cmp.Diff(first.Subroutine(name), second.Subroutine(name)); diff != "" {
			t.Fatalf("subroutine %q differs between runs (-first +second):\n%s", name, diff)
		}
	}
}
