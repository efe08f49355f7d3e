package ast

import (
	"fmt"

	"github.com/taipan-snake/souffle/internal/rerr"
)

// Argument is the tagged union over argument expressions (spec.md §3):
// Variable, UnnamedVariable, Constant, IntrinsicFunctor, UserFunctor,
// Counter, IterationNumber, RecordInit, Aggregator, SubroutineArgument.
// Mirrors mwelt-contki's Term interface (Constant | Variable), generalised
// with the richer expression language AstTranslator.cpp's ValueTranslator
// visitor handles.
type Argument interface {
	Clone() Argument
	Apply(Mapper) Argument
	isArgument()
}

// Variable names a clause-local variable; its first occurrence (in body
// scan order) is its definition point (ValueIndex.DefinitionPoint).
type Variable struct {
	Name string
	Loc  rerr.SourceLoc
}

func (v *Variable) isArgument()          {}
func (v *Variable) Clone() Argument      { return &Variable{Name: v.Name, Loc: v.Loc} }
func (v *Variable) Apply(m Mapper) Argument { return m(v) }

// UnnamedVariable is `_`: it never binds and always lowers to UndefValue.
type UnnamedVariable struct {
	Loc rerr.SourceLoc
}

func (u *UnnamedVariable) isArgument()            {}
func (u *UnnamedVariable) Clone() Argument        { return &UnnamedVariable{Loc: u.Loc} }
func (u *UnnamedVariable) Apply(m Mapper) Argument { return m(u) }

// Constant is a symbol-table index into an interned constant pool.
type Constant struct {
	Index int64
	Loc   rerr.SourceLoc
}

func (c *Constant) isArgument()            {}
func (c *Constant) Clone() Argument        { return &Constant{Index: c.Index, Loc: c.Loc} }
func (c *Constant) Apply(m Mapper) Argument { return m(c) }

// IntrinsicFunctor applies a built-in operator (+, -, cat, ...) to args.
type IntrinsicFunctor struct {
	Op   string
	Args []Argument
	Loc  rerr.SourceLoc
}

func (f *IntrinsicFunctor) isArgument() {}
func (f *IntrinsicFunctor) Clone() Argument {
	return &IntrinsicFunctor{Op: f.Op, Args: cloneArgs(f.Args), Loc: f.Loc}
}
func (f *IntrinsicFunctor) Apply(m Mapper) Argument {
	return m(&IntrinsicFunctor{Op: f.Op, Args: applyArgs(f.Args, m), Loc: f.Loc})
}

// UserFunctor applies a user-defined (stateful/external) function.
type UserFunctor struct {
	Name       string
	ReturnType Type
	Args       []Argument
	Loc        rerr.SourceLoc
}

func (f *UserFunctor) isArgument() {}
func (f *UserFunctor) Clone() Argument {
	return &UserFunctor{Name: f.Name, ReturnType: f.ReturnType, Args: cloneArgs(f.Args), Loc: f.Loc}
}
func (f *UserFunctor) Apply(m Mapper) Argument {
	return m(&UserFunctor{Name: f.Name, ReturnType: f.ReturnType, Args: applyArgs(f.Args, m), Loc: f.Loc})
}

// Counter lowers to AutoIncrement: a fresh integer on every evaluation.
type Counter struct{ Loc rerr.SourceLoc }

func (c *Counter) isArgument()            {}
func (c *Counter) Clone() Argument        { return &Counter{Loc: c.Loc} }
func (c *Counter) Apply(m Mapper) Argument { return m(c) }

// IterationNumber lowers to the current semi-naïve round number.
type IterationNumber struct{ Loc rerr.SourceLoc }

func (i *IterationNumber) isArgument()            {}
func (i *IterationNumber) Clone() Argument        { return &IterationNumber{Loc: i.Loc} }
func (i *IterationNumber) Apply(m Mapper) Argument { return m(i) }

// RecordInit packs its arguments into a record value; each nested RecordInit
// also becomes an unpack level when it appears inside a scan chain (spec.md
// §4.5.1).
type RecordInit struct {
	Args []Argument
	Loc  rerr.SourceLoc
}

func (r *RecordInit) isArgument() {}
func (r *RecordInit) Clone() Argument {
	return &RecordInit{Args: cloneArgs(r.Args), Loc: r.Loc}
}
func (r *RecordInit) Apply(m Mapper) Argument {
	return m(&RecordInit{Args: applyArgs(r.Args, m), Loc: r.Loc})
}

// AggregateOp enumerates the supported aggregate functions.
type AggregateOp string

const (
	AggCount AggregateOp = "count"
	AggSum   AggregateOp = "sum"
	AggMin   AggregateOp = "min"
	AggMax   AggregateOp = "max"
	AggMean  AggregateOp = "mean"
)

// Aggregator computes Op over Target for each binding of Body (a single
// atom literal, per spec.md §7's "aggregator body with more than one atom"
// schema violation); its result is bound at a dedicated level (spec.md
// §4.5.1).
type Aggregator struct {
	Op     AggregateOp
	Target Argument // nil for count
	Body   *Atom
	Loc    rerr.SourceLoc
}

func (a *Aggregator) isArgument() {}
func (a *Aggregator) Clone() Argument {
	cp := &Aggregator{Op: a.Op, Body: a.Body.cloneAtom(), Loc: a.Loc}
	if a.Target != nil {
		cp.Target = a.Target.Clone()
	}
	return cp
}
func (a *Aggregator) Apply(m Mapper) Argument {
	cp := &Aggregator{Op: a.Op, Body: a.Body.Apply(m).(*Atom), Loc: a.Loc}
	if a.Target != nil {
		cp.Target = a.Target.Apply(m)
	}
	return m(cp)
}

// StructKey returns a value usable as a map key for structural-equality
// dedup of aggregator nodes during the depth-first post-order walk in
// spec.md §4.5.1 ("deduplicated by structural equality").
func (a *Aggregator) StructKey() string {
	key := string(a.Op) + "|" + a.Body.Name
	for _, arg := range a.Body.Args {
		key += "|" + argKey(arg)
	}
	if a.Target != nil {
		key += "|t:" + argKey(a.Target)
	}
	return key
}

func argKey(a Argument) string {
	switch v := a.(type) {
	case *Variable:
		return "var:" + v.Name
	case *UnnamedVariable:
		return "_"
	case *Constant:
		return fmt.Sprintf("const:%d", v.Index)
	case *Counter:
		return "counter"
	case *IterationNumber:
		return "iter"
	case *SubroutineArgument:
		return "subarg"
	case *Aggregator:
		return "agg:" + v.StructKey()
	default:
		return "complex"
	}
}

// SubroutineArgument refers to the i-th argument passed into a subproof /
// negation-subproof subroutine (spec.md §4.8).
type SubroutineArgument struct {
	Index int
	Loc   rerr.SourceLoc
}

func (s *SubroutineArgument) isArgument()            {}
func (s *SubroutineArgument) Clone() Argument        { return &SubroutineArgument{Index: s.Index, Loc: s.Loc} }
func (s *SubroutineArgument) Apply(m Mapper) Argument { return m(s) }

func cloneArgs(args []Argument) []Argument {
	out := make([]Argument, len(args))
	for i, a := range args {
		out[i] = a.Clone()
	}
	return out
}

func applyArgs(args []Argument, m Mapper) []Argument {
	out := make([]Argument, len(args))
	for i, a := range args {
		out[i] = a.Apply(m)
	}
	return out
}
