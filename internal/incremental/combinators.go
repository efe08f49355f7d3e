// Package incremental holds the clause-cloning combinators shared by
// NonRecursiveLowering (C6) and RecursiveLowering (C7): relation
// retargeting, annotation-column classification, and the constraint
// shapes the insertion/deletion/reinsertion specialisations repeat
// (spec.md §4.6, §4.7).
//
// Grounded on IncrementalTransformer.cpp's clause-rewriting helpers; no
// teacher equivalent exists since mwelt-contki's DRed implementation
// (dred.go) mutates a live multiset directly rather than rewriting clause
// trees, so the shape here follows original_source rather than the
// teacher.
package incremental

import (
	"fmt"

	"github.com/taipan-snake/souffle/internal/ast"
	"github.com/taipan-snake/souffle/internal/namer"
	"github.com/taipan-snake/souffle/internal/rerr"
)

// Class is the incremental clause classification spec.md §4.6 derives
// from a retargeted head's trailing (@prev_count, @current_count)
// constant columns.
type Class int

const (
	ClassReinsertion Class = iota
	ClassInsertion
	ClassDeletion
)

func (c Class) String() string {
	switch c {
	case ClassReinsertion:
		return "reinsertion"
	case ClassInsertion:
		return "insertion"
	case ClassDeletion:
		return "deletion"
	default:
		return "unknown"
	}
}

// Classify inspects head's trailing two annotation columns — compile-time
// constants under the incremental transformer's contract — and returns
// the clause's class (spec.md §4.6 table).
func Classify(head *ast.Atom) (Class, error) {
	if len(head.Args) < 3 {
		return 0, rerr.MissingAnnotationColumns(head.Name)
	}
	prev, ok1 := head.Args[len(head.Args)-2].(*ast.Constant)
	cur, ok2 := head.Args[len(head.Args)-1].(*ast.Constant)
	if !ok1 || !ok2 {
		return 0, rerr.Wrap(rerr.ConfigContradiction, rerr.MissingAnnotationColumns(head.Name),
			"relation %q annotation columns are not compile-time constants", head.Name)
	}
	switch {
	case prev.Index == 1 && cur.Index == 1:
		return ClassReinsertion, nil
	case cur.Index == 1:
		return ClassInsertion, nil
	case cur.Index == -1:
		return ClassDeletion, nil
	default:
		return 0, rerr.New(rerr.ConfigContradiction,
			"relation %q has unclassifiable annotation columns (prev=%d, cur=%d)", head.Name, prev.Index, cur.Index)
	}
}

// IterationArg, PrevCountArg, CurrentCountArg return clones of an
// incremental atom's trailing three annotation arguments.
func IterationArg(a *ast.Atom) ast.Argument    { return a.Args[len(a.Args)-3].Clone() }
func PrevCountArg(a *ast.Atom) ast.Argument    { return a.Args[len(a.Args)-2].Clone() }
func CurrentCountArg(a *ast.Atom) ast.Argument { return a.Args[len(a.Args)-1].Clone() }

// AtomPositions returns the Body index of every positive Atom literal, in
// body order — "body position i" in spec.md §4.6/§4.7 indexes into this
// slice, not into Body directly.
func AtomPositions(cl *ast.Clause) []int {
	var out []int
	for i, l := range cl.Body {
		if _, ok := l.(*ast.Atom); ok {
			out = append(out, i)
		}
	}
	return out
}

// NegationPositions returns the Body index of every Negation literal.
func NegationPositions(cl *ast.Clause) []int {
	var out []int
	for i, l := range cl.Body {
		if _, ok := l.(*ast.Negation); ok {
			out = append(out, i)
		}
	}
	return out
}

// RetargetHead returns a clone of cl with its head relation renamed.
func RetargetHead(cl *ast.Clause, name string) *ast.Clause {
	cp := cl.Clone()
	cp.Head.Name = name
	return cp
}

// RetargetAtomAt returns a clone of cl with the atom at Body index
// bodyIdx renamed to name.
func RetargetAtomAt(cl *ast.Clause, bodyIdx int, name string) *ast.Clause {
	cp := cl.Clone()
	atom, ok := cp.Body[bodyIdx].(*ast.Atom)
	if !ok {
		panic(fmt.Sprintf("incremental: body index %d is not an atom", bodyIdx))
	}
	atom.Name = name
	return cp
}

// RetargetNegationAt renames the atom of the Negation literal at Body
// index bodyIdx, optionally converting it to a PositiveNegation when
// asPositive is true (spec.md §4.6 step 3/6: "must be present in
// Δ_applied via a PositiveNegation").
func RetargetNegationAt(cl *ast.Clause, bodyIdx int, name string, asPositive bool) *ast.Clause {
	cp := cl.Clone()
	neg, ok := cp.Body[bodyIdx].(*ast.Negation)
	if !ok {
		panic(fmt.Sprintf("incremental: body index %d is not a negation", bodyIdx))
	}
	neg.Atom.Name = name
	if asPositive {
		cp.Body[bodyIdx] = &ast.PositiveNegation{Atom: neg.Atom, Loc: neg.Loc}
	}
	return cp
}

// AppendLiteral returns a clone of cl with lit appended to the body.
func AppendLiteral(cl *ast.Clause, lit ast.Literal) *ast.Clause {
	cp := cl.Clone()
	cp.Body = append(cp.Body, lit)
	return cp
}

// PrependLiteral returns a clone of cl with lit made the first body
// literal (spec.md §4.7 reinsertion: "reorder so this literal leads").
func PrependLiteral(cl *ast.Clause, lit ast.Literal) *ast.Clause {
	cp := cl.Clone()
	cp.Body = append([]ast.Literal{lit}, cp.Body...)
	return cp
}

// ClearNegations drops every Negation literal from the body (spec.md
// §4.6 step 7: "clear original negations").
func ClearNegations(cl *ast.Clause) *ast.Clause {
	cp := cl.Clone()
	out := cp.Body[:0]
	for _, l := range cp.Body {
		if _, ok := l.(*ast.Negation); ok {
			continue
		}
		out = append(out, l)
	}
	cp.Body = out
	return cp
}

// CountBound builds `arg <op> Constant(value)`, used for the
// prev_count/current_count threshold constraints (spec.md §4.6 step 2:
// "prev_count_i ≤ 0 and cur_count_i > 0").
func CountBound(arg ast.Argument, op ast.BinaryOp, value int64) ast.Literal {
	return &ast.BinaryConstraint{Op: op, LHS: arg, RHS: &ast.Constant{Index: value}}
}

// Int64 returns a pointer to v, for AnnotatedAtom's optional bound
// arguments.
func Int64(v int64) *int64 { return &v }

// AnnotatedAtom builds a fresh lookup atom `name(_,...,_, prev, cur)`
// with originalArity don't-care columns, a don't-care iteration column,
// and prev/cur fixed to constants where non-nil (nil leaves that column
// a wildcard) — the `R[_, prev=1, cur=0]`-style existence checks spec.md
// §4.6 repeats.
func AnnotatedAtom(name string, originalArity int, prev, cur *int64) *ast.Atom {
	args := make([]ast.Argument, originalArity+3)
	for i := range args[:originalArity] {
		args[i] = &ast.UnnamedVariable{}
	}
	args[originalArity] = &ast.UnnamedVariable{}
	if prev != nil {
		args[originalArity+1] = &ast.Constant{Index: *prev}
	} else {
		args[originalArity+1] = &ast.UnnamedVariable{}
	}
	if cur != nil {
		args[originalArity+2] = &ast.Constant{Index: *cur}
	} else {
		args[originalArity+2] = &ast.UnnamedVariable{}
	}
	return &ast.Atom{Name: name, Args: args}
}

// CloneAtomAs clones atom's arguments under a new relation name — used
// for dedup lookups that must correlate with the *same* variable
// bindings as atom (e.g. `Negation(head)` in semi-naïve dedup), as
// opposed to AnnotatedAtom's wildcard columns.
func CloneAtomAs(atom *ast.Atom, name string) *ast.Atom {
	args := make([]ast.Argument, len(atom.Args))
	for i, a := range atom.Args {
		args[i] = a.Clone()
	}
	return &ast.Atom{Name: name, Args: args}
}

// AnnotatedAtomFrom clones atom's original (non-annotation) columns,
// renames it, and forces its trailing prev/cur columns to constants
// where non-nil — the correlated form of AnnotatedAtom used when the
// check must match the same tuple atom is bound to, not an arbitrary
// tuple of the relation (spec.md §4.6 step 3's "original tuple must not
// already exist positively").
func AnnotatedAtomFrom(atom *ast.Atom, name string, prev, cur *int64) *ast.Atom {
	baseArity := len(atom.Args) - 3
	args := make([]ast.Argument, baseArity+3)
	for i := 0; i < baseArity; i++ {
		args[i] = atom.Args[i].Clone()
	}
	args[baseArity] = &ast.UnnamedVariable{}
	if prev != nil {
		args[baseArity+1] = &ast.Constant{Index: *prev}
	} else {
		args[baseArity+1] = &ast.UnnamedVariable{}
	}
	if cur != nil {
		args[baseArity+2] = &ast.Constant{Index: *cur}
	} else {
		args[baseArity+2] = &ast.UnnamedVariable{}
	}
	return &ast.Atom{Name: name, Args: args}
}

// CountAtom clones atom and reuses its existing annotation columns
// against a relation of role (e.g. Δ⁺Rᵢ_count), for driving a
// specialised clone's body position from a `*_count` auxiliary
// (spec.md §4.6 step 2, §4.7 reinsertion).
func CountAtom(atom *ast.Atom, role namer.Role) *ast.Atom {
	cp := atom.Clone().(*ast.Atom)
	cp.Name = namer.Name(atom.Name, role)
	return cp
}
