// Package analysis declares the read-only analysis results the translator
// consumes but never computes: SCC graph, topological order, relation
// expiry schedule, recursion oracle, type environment (spec.md §6).
// Precedence/SCC analysis, recursion detection, and relation-expiry
// scheduling are out of scope (spec.md §1) — these are the fixed
// interfaces a real analysis pass implements upstream of the translator.
package analysis

import "github.com/taipan-snake/souffle/internal/ast"

// SCCIndex identifies one strongly-connected component in the dependency
// graph over IDB relations, in the graph's own numbering.
type SCCIndex int

// SCCGraph is the read-only dependency-graph view the driver (C9) walks.
type SCCGraph interface {
	NumberOfSCCs() int
	InternalRelations(scc SCCIndex) []string
	IsRecursive(scc SCCIndex) bool
	ExternalOutputPredecessorRelations(scc SCCIndex) []string
	ExternalNonOutputPredecessorRelations(scc SCCIndex) []string
	InternalNonOutputRelationsWithExternalSuccessors(scc SCCIndex) []string
	InternalInputRelations(scc SCCIndex) []string
	InternalOutputRelations(scc SCCIndex) []string
	SCCOf(relation string) SCCIndex
}

// TopoOrder iterates SCCs in a topological order consistent with SCCGraph.
type TopoOrder interface {
	Order() []SCCIndex
}

// Schedule reports whether a relation's storage may be dropped once its
// SCC has been fully processed.
type Schedule interface {
	Expired(index int, relation string) bool
}

// RecursionOracle reports whether a clause participates in recursion
// within its relation's SCC (spec.md §6 "recursive(clause)").
type RecursionOracle interface {
	Recursive(clause *ast.Clause) bool
}

// TypeEnv exposes only the type-qualifier string the translator needs
// (spec.md §6): "the translator only asks for the type qualifier string".
type TypeEnv interface {
	Qualifier(name string) ast.Type
}
