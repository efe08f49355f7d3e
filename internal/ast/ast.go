// Package ast defines the validated, typed logic-program tree the
// translator consumes (spec.md §3, §6). It is read-only to the core:
// nodes expose getters, Clone (deep copy), Apply (tree rewrite), and
// source-location reporting, the way mwelt-contki's Term/Atom interface
// pair exposes a tag method and nothing else — generalised here from a
// fixed-arity RDF triple to arbitrary-arity relations with a full
// argument-expression language.
package ast

import "github.com/taipan-snake/souffle/internal/rerr"

// Type is the type-qualifier string the translator consults via
// TypeEnv.Qualifier — it never inspects more of the type system than that
// (spec.md §6).
type Type string

// Representation selects a relation's storage representation (e.g. btree,
// brie, eqrel); the translator only threads it through to RamRelation.
type Representation string

const (
	ReprDefault Representation = ""
	ReprBTree   Representation = "btree"
	ReprBrie    Representation = "brie"
	ReprEqrel   Representation = "eqrel"
)

// Attribute is one typed, named column of a Relation.
type Attribute struct {
	Name string
	Type Type
}

// Relation is a top-level IDB/EDB declaration together with its clauses.
type Relation struct {
	Name                string
	Attributes          []Attribute
	Representation      Representation
	QualifierInput       bool
	QualifierOutput      bool
	NumberOfHeightParams int
	Clauses              []*Clause
	Loc                  rerr.SourceLoc
}

func (r *Relation) Arity() int { return len(r.Attributes) }

// Clone deep-copies a Relation, including every Clause.
func (r *Relation) Clone() *Relation {
	cp := *r
	cp.Attributes = append([]Attribute(nil), r.Attributes...)
	cp.Clauses = make([]*Clause, len(r.Clauses))
	for i, c := range r.Clauses {
		cp.Clauses[i] = c.Clone()
	}
	return &cp
}

// Clause is a single rule or fact: head :- body.
type Clause struct {
	Head          *Atom
	Body          []Literal
	ExecutionPlan *ExecutionPlan
	Loc           rerr.SourceLoc
}

// ExecutionPlan is a user-supplied atom reordering for one clause version
// (spec.md §4.5.4). Order is 1-indexed, matching the source-language
// surface syntax; the translator converts to 0-indexed internally.
type ExecutionPlan struct {
	Version int
	Order   []int // 1-indexed positions, len == number of body atoms
}

func (c *Clause) IsFact() bool { return len(c.Body) == 0 }
func (c *Clause) IsRule() bool { return len(c.Body) > 0 }

// GetAtoms returns the positive (non-negated) atom literals in body order.
func (c *Clause) GetAtoms() []*Atom {
	var out []*Atom
	for _, l := range c.Body {
		if a, ok := l.(*Atom); ok {
			out = append(out, a)
		}
	}
	return out
}

// GetNegations returns the Negation literals in body order.
func (c *Clause) GetNegations() []*Negation {
	var out []*Negation
	for _, l := range c.Body {
		if n, ok := l.(*Negation); ok {
			out = append(out, n)
		}
	}
	return out
}

func (c *Clause) GetBodyLiterals() []Literal { return c.Body }
func (c *Clause) GetExecutionPlan() *ExecutionPlan { return c.ExecutionPlan }

// ReorderAtoms returns a clone of c with its positive atoms permuted
// according to a 1-indexed permutation (spec.md §4.5.4); non-atom literals
// keep their relative position.
func (c *Clause) ReorderAtoms(perm []int) *Clause {
	cp := c.Clone()
	atoms := cp.GetAtoms()
	if len(perm) != len(atoms) {
		return cp
	}
	reordered := make([]*Atom, len(atoms))
	for i, p := range perm {
		reordered[i] = atoms[p-1]
	}
	j := 0
	for i, l := range cp.Body {
		if _, ok := l.(*Atom); ok {
			cp.Body[i] = reordered[j]
			j++
		}
	}
	cp.ExecutionPlan = nil
	return cp
}

// Clone deep-copies a Clause and its body literals.
func (c *Clause) Clone() *Clause {
	cp := &Clause{Head: c.Head.cloneAtom(), Loc: c.Loc}
	if c.ExecutionPlan != nil {
		ep := *c.ExecutionPlan
		ep.Order = append([]int(nil), c.ExecutionPlan.Order...)
		cp.ExecutionPlan = &ep
	}
	cp.Body = make([]Literal, len(c.Body))
	for i, l := range c.Body {
		cp.Body[i] = l.Clone()
	}
	return cp
}

// Literal is the tagged union over body literals (spec.md §3): Atom,
// Negation, BinaryConstraint, Conjunction, Disjunction, ExistenceCheck,
// PositiveNegation, SubsumptionNegation.
type Literal interface {
	Clone() Literal
	Apply(Mapper) Literal
	Location() rerr.SourceLoc
	isLiteral()
}

// Mapper rewrites an Argument during Apply-based tree rewrites.
type Mapper func(Argument) Argument

// Atom is a literal naming a relation with a list of argument expressions;
// as a top-level body literal it becomes a Scan in C5. As the head of a
// Clause it is never itself a Literal but shares the same shape.
type Atom struct {
	Name string
	Args []Argument
	Loc  rerr.SourceLoc
}

func (a *Atom) Arity() int               { return len(a.Args) }
func (a *Atom) Location() rerr.SourceLoc  { return a.Loc }
func (a *Atom) isLiteral()                {}
func (a *Atom) Clone() Literal            { return a.cloneAtom() }
func (a *Atom) cloneAtom() *Atom {
	cp := &Atom{Name: a.Name, Loc: a.Loc}
	cp.Args = make([]Argument, len(a.Args))
	for i, arg := range a.Args {
		cp.Args[i] = arg.Clone()
	}
	return cp
}
func (a *Atom) Apply(m Mapper) Literal {
	cp := a.cloneAtom()
	for i, arg := range cp.Args {
		cp.Args[i] = arg.Apply(m)
	}
	return cp
}

// Negation is classical negation-as-failure over an atom: `!atom`.
type Negation struct {
	Atom *Atom
	Loc  rerr.SourceLoc
}

func (n *Negation) Location() rerr.SourceLoc { return n.Loc }
func (n *Negation) isLiteral()                {}
func (n *Negation) Clone() Literal {
	return &Negation{Atom: n.Atom.cloneAtom(), Loc: n.Loc}
}
func (n *Negation) Apply(m Mapper) Literal {
	return &Negation{Atom: n.Atom.Apply(m).(*Atom), Loc: n.Loc}
}

// PositiveNegation negates an existence check that itself ignores negative
// polarity bookkeeping — used by the incremental rewriting (spec.md §4.6).
type PositiveNegation struct {
	Atom *Atom
	Loc  rerr.SourceLoc
}

func (n *PositiveNegation) Location() rerr.SourceLoc { return n.Loc }
func (n *PositiveNegation) isLiteral()                {}
func (n *PositiveNegation) Clone() Literal {
	return &PositiveNegation{Atom: n.Atom.cloneAtom(), Loc: n.Loc}
}
func (n *PositiveNegation) Apply(m Mapper) Literal {
	return &PositiveNegation{Atom: n.Atom.Apply(m).(*Atom), Loc: n.Loc}
}

// ExistenceCheck asks whether any tuple matching Atom exists, without
// binding new variables from it.
type ExistenceCheck struct {
	Atom *Atom
	Loc  rerr.SourceLoc
}

func (n *ExistenceCheck) Location() rerr.SourceLoc { return n.Loc }
func (n *ExistenceCheck) isLiteral()                {}
func (n *ExistenceCheck) Clone() Literal {
	return &ExistenceCheck{Atom: n.Atom.cloneAtom(), Loc: n.Loc}
}
func (n *ExistenceCheck) Apply(m Mapper) Literal {
	return &ExistenceCheck{Atom: n.Atom.Apply(m).(*Atom), Loc: n.Loc}
}

// SubsumptionNegation is a guarded existence check that ignores the
// trailing K annotation columns (provenance height/rule or incremental
// counts) when testing for existence.
type SubsumptionNegation struct {
	Atom *Atom
	K    int
	Loc  rerr.SourceLoc
}

func (n *SubsumptionNegation) Location() rerr.SourceLoc { return n.Loc }
func (n *SubsumptionNegation) isLiteral()                {}
func (n *SubsumptionNegation) Clone() Literal {
	return &SubsumptionNegation{Atom: n.Atom.cloneAtom(), K: n.K, Loc: n.Loc}
}
func (n *SubsumptionNegation) Apply(m Mapper) Literal {
	return &SubsumptionNegation{Atom: n.Atom.Apply(m).(*Atom), K: n.K, Loc: n.Loc}
}

// BinaryOp enumerates the binary constraint operators BinaryConstraint
// supports; ValueTranslator/ConstraintTranslator pass it through opaquely.
type BinaryOp string

const (
	OpEQ BinaryOp = "="
	OpNE BinaryOp = "!="
	OpLT BinaryOp = "<"
	OpLE BinaryOp = "<="
	OpGT BinaryOp = ">"
	OpGE BinaryOp = ">="
)

// BinaryConstraint compares two argument expressions.
type BinaryConstraint struct {
	Op       BinaryOp
	LHS, RHS Argument
	Loc      rerr.SourceLoc
}

func (b *BinaryConstraint) Location() rerr.SourceLoc { return b.Loc }
func (b *BinaryConstraint) isLiteral()                {}
func (b *BinaryConstraint) Clone() Literal {
	return &BinaryConstraint{Op: b.Op, LHS: b.LHS.Clone(), RHS: b.RHS.Clone(), Loc: b.Loc}
}
func (b *BinaryConstraint) Apply(m Mapper) Literal {
	return &BinaryConstraint{Op: b.Op, LHS: b.LHS.Apply(m), RHS: b.RHS.Apply(m), Loc: b.Loc}
}

// Conjunction combines two literals with logical AND.
type Conjunction struct {
	LHS, RHS Literal
	Loc      rerr.SourceLoc
}

func (c *Conjunction) Location() rerr.SourceLoc { return c.Loc }
func (c *Conjunction) isLiteral()                {}
func (c *Conjunction) Clone() Literal {
	return &Conjunction{LHS: c.LHS.Clone(), RHS: c.RHS.Clone(), Loc: c.Loc}
}
func (c *Conjunction) Apply(m Mapper) Literal {
	return &Conjunction{LHS: c.LHS.Apply(m), RHS: c.RHS.Apply(m), Loc: c.Loc}
}

// Disjunction combines two literals with logical OR.
type Disjunction struct {
	LHS, RHS Literal
	Loc      rerr.SourceLoc
}

func (d *Disjunction) Location() rerr.SourceLoc { return d.Loc }
func (d *Disjunction) isLiteral()                {}
func (d *Disjunction) Clone() Literal {
	return &Disjunction{LHS: d.LHS.Clone(), RHS: d.RHS.Clone(), Loc: d.Loc}
}
func (d *Disjunction) Apply(m Mapper) Literal {
	return &Disjunction{LHS: d.LHS.Apply(m), RHS: d.RHS.Apply(m), Loc: d.Loc}
}
