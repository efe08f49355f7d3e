// Package index implements C2, ValueIndex: per-clause mutable state
// mapping each variable occurrence to a (level, column) location, plus
// record-unpack positions and aggregator result positions (spec.md §4.2).
//
// Grounded on mwelt-contki's Mu (map[Variable]Term): the same
// map-keyed-by-variable-name idiom, generalised from "variable to ground
// term at evaluation time" to "variable to compile-time tuple location".
package index

import (
	"github.com/taipan-snake/souffle/internal/ast"
	"github.com/taipan-snake/souffle/internal/ramir"
	"github.com/taipan-snake/souffle/internal/rerr"
)

// Location is a single (level, column) occurrence of a variable, with an
// optional relation reference recording which relation was scanned there.
type Location struct {
	Level  int
	Col    int
	RelRef *ramir.RamRelationReference
}

// Index is the ValueIndex for one clause translation; its lifetime is the
// duration of a single ClauseTranslator.Translate call (spec.md §5).
type Index struct {
	varRefs          map[string][]Location
	recordDefs       map[*ast.RecordInit]Location
	aggLocs          map[string]Location // keyed by Aggregator.StructKey(), not pointer identity
	aggregatorLevels map[int]bool
}

func New() *Index {
	return &Index{
		varRefs:          make(map[string][]Location),
		recordDefs:       make(map[*ast.RecordInit]Location),
		aggLocs:          make(map[string]Location),
		aggregatorLevels: make(map[int]bool),
	}
}

// AddVarRef records that variable name occurs at loc.
func (idx *Index) AddVarRef(name string, loc Location) {
	idx.varRefs[name] = append(idx.varRefs[name], loc)
}

// Occurrences returns every recorded location of name, in the order they
// were added (definition point first).
func (idx *Index) Occurrences(name string) []Location {
	return idx.varRefs[name]
}

// Variables returns every distinct variable name that has at least one
// recorded occurrence, in map iteration order, which is unspecified and
// can differ between calls on the same instance.
func (idx *Index) Variables() []string {
	out := make([]string, 0, len(idx.varRefs))
	for name := range idx.varRefs {
		out = append(out, name)
	}
	return out
}

// SetRecordDefinition records that the record built by node must be
// unpacked at loc.
func (idx *Index) SetRecordDefinition(node *ast.RecordInit, loc Location) {
	idx.recordDefs[node] = loc
}

// RecordDefinition returns the unpack location for node, if any.
func (idx *Index) RecordDefinition(node *ast.RecordInit) (Location, bool) {
	loc, ok := idx.recordDefs[node]
	return loc, ok
}

// SetAggregatorLocation records where the result of every aggregator
// structurally equal to node is bound (spec.md §4.5.1: "deduplicated by
// structural equality" — keyed by StructKey, not pointer identity, so two
// distinct AST nodes computing the same aggregate share one location).
func (idx *Index) SetAggregatorLocation(node *ast.Aggregator, loc Location) {
	idx.aggLocs[node.StructKey()] = loc
	idx.aggregatorLevels[loc.Level] = true
}

// AggregatorLocation returns the result location shared by every
// aggregator structurally equal to node.
func (idx *Index) AggregatorLocation(node *ast.Aggregator) (Location, bool) {
	loc, ok := idx.aggLocs[node.StructKey()]
	return loc, ok
}

// IsAggregator reports whether level corresponds to an aggregation rather
// than a scan/unpack.
func (idx *Index) IsAggregator(level int) bool {
	return idx.aggregatorLevels[level]
}

// DefinitionPoint returns the first recorded occurrence of a variable —
// its ValueTranslator binding site — or a SchemaViolation error if the
// variable was never indexed (spec.md §4.3 UngroundedVariable).
func (idx *Index) DefinitionPoint(name string, loc ast.Argument) (Location, error) {
	occs := idx.varRefs[name]
	if len(occs) == 0 {
		return Location{}, rerr.UngroundedVariable(name, sourceLocOf(loc))
	}
	return occs[0], nil
}

func sourceLocOf(a ast.Argument) rerr.SourceLoc {
	if v, ok := a.(*ast.Variable); ok {
		return v.Loc
	}
	return rerr.SourceLoc{}
}
