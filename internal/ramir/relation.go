// Package ramir defines the emitted Relational Algebra Machine program:
// the statement/operation/condition/expression tree a back-end executor
// runs (spec.md §3). Every owned node has exactly one parent; the only
// cross-tree reference is RamRelationReference, a by-name borrow resolved
// through the program's relation table (spec.md §5, §9 "owning trees").
package ramir

import "github.com/taipan-snake/souffle/internal/ast"

// RamAttribute is one named, typed column of a RamRelation.
type RamAttribute struct {
	Name string
	Type ast.Type
}

// RamRelation is a unique-by-name relation record owned by a RamProgram
// (spec.md §3 invariant 1). NumHeights is the provenance subtree-height
// column count; it is 0 when provenance is inactive.
type RamRelation struct {
	Name           string
	Attributes     []RamAttribute
	NumHeights     int
	Representation ast.Representation
}

func (r *RamRelation) Arity() int { return len(r.Attributes) }

// Ref returns a borrow of this relation by name.
func (r *RamRelation) Ref() RamRelationReference {
	return RamRelationReference{Name: r.Name}
}

// RamRelationReference is a borrow of a RamRelation by name; many
// references may point at the same relation (spec.md §3, §5).
type RamRelationReference struct {
	Name string
}

// RelationTable is the program's keyed, insertion-order-preserving table
// of relations (spec.md §9 "Relation table"). Creation is idempotent: the
// same name + arity + attrs returns the existing record.
type RelationTable struct {
	order []string
	byName map[string]*RamRelation
}

func NewRelationTable() *RelationTable {
	return &RelationTable{byName: make(map[string]*RamRelation)}
}

// GetOrCreate returns the existing relation record for name, or creates
// one from the supplied attributes/heights/representation if absent.
func (t *RelationTable) GetOrCreate(name string, attrs []RamAttribute, numHeights int, repr ast.Representation) *RamRelation {
	if existing, ok := t.byName[name]; ok {
		return existing
	}
	rel := &RamRelation{Name: name, Attributes: attrs, NumHeights: numHeights, Representation: repr}
	t.byName[name] = rel
	t.order = append(t.order, name)
	return rel
}

// Lookup returns the relation named name, or nil if it was never created.
func (t *RelationTable) Lookup(name string) *RamRelation { return t.byName[name] }

// Names returns relation names in insertion order (spec.md §9 determinism).
func (t *RelationTable) Names() []string {
	return append([]string(nil), t.order...)
}

// Contains reports whether name was ever created.
func (t *RelationTable) Contains(name string) bool {
	_, ok := t.byName[name]
	return ok
}
