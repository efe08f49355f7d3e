package main

import (
	"github.com/taipan-snake/souffle/internal/analysis"
	"github.com/taipan-snake/souffle/internal/ast"
)

// demoGraph is the two-SCC reachability program used to exercise the
// driver end to end: `edge` is an EDB input, `path` is its transitive
// closure (spec.md scenarios E2/E3). Full source parsing and SCC
// analysis are out of scope (spec.md §1), so this graph is hand-built
// rather than computed.
type demoGraph struct{}

func (demoGraph) NumberOfSCCs() int { return 2 }

func (demoGraph) InternalRelations(scc analysis.SCCIndex) []string {
	if scc == 0 {
		return []string{"edge"}
	}
	return []string{"path"}
}

func (demoGraph) IsRecursive(scc analysis.SCCIndex) bool { return scc == 1 }

func (demoGraph) ExternalOutputPredecessorRelations(analysis.SCCIndex) []string { return nil }

func (demoGraph) ExternalNonOutputPredecessorRelations(analysis.SCCIndex) []string { return nil }

func (demoGraph) InternalNonOutputRelationsWithExternalSuccessors(analysis.SCCIndex) []string {
	return nil
}

func (demoGraph) InternalInputRelations(scc analysis.SCCIndex) []string {
	if scc == 0 {
		return []string{"edge"}
	}
	return nil
}

func (demoGraph) InternalOutputRelations(scc analysis.SCCIndex) []string {
	if scc == 1 {
		return []string{"path"}
	}
	return nil
}

func (demoGraph) SCCOf(relation string) analysis.SCCIndex {
	if relation == "edge" {
		return 0
	}
	return 1
}

type demoOrder struct{}

func (demoOrder) Order() []analysis.SCCIndex { return []analysis.SCCIndex{0, 1} }

// demoSchedule never expires a relation: the demo program is small enough
// that dropping storage mid-run buys nothing worth showing.
type demoSchedule struct{}

func (demoSchedule) Expired(int, string) bool { return false }

// demoRecursionOracle marks path's self-referential clause recursive and
// everything else not, matching the shape a real precedence analysis
// would report for this program.
type demoRecursionOracle struct {
	recursive map[*ast.Clause]bool
}

func (o demoRecursionOracle) Recursive(cl *ast.Clause) bool { return o.recursive[cl] }

// demoProgram builds `edge(x,y)` (EDB) and
//
//	path(x,y) :- edge(x,y).
//	path(x,y) :- path(x,z), edge(z,y).
//
// together with the analysis results a real precedence/SCC pass would
// have produced for it.
func demoProgram() ([]*ast.Relation, analysis.SCCGraph, analysis.TopoOrder, analysis.Schedule, analysis.RecursionOracle) {
	edge := &ast.Relation{
		Name:           "edge",
		Attributes:     []ast.Attribute{{Name: "x", Type: "number"}, {Name: "y", Type: "number"}},
		QualifierInput: true,
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
		Attributes:      []ast.Attribute{{Name: "x", Type: "number"}, {Name: "y", Type: "number"}},
		QualifierOutput: true,
		Clauses:         []*ast.Clause{baseCase, transitive},
	}

	recur := demoRecursionOracle{recursive: map[*ast.Clause]bool{baseCase: false, transitive: true}}
	return []*ast.Relation{edge, path}, demoGraph{}, demoOrder{}, demoSchedule{}, recur
}
