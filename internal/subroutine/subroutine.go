// Package subroutine implements C8, SubroutineSynth: the four subroutine
// bodies the driver registers alongside the main program — Subproof,
// NegationSubproof, IncrementalCleanup, IncrementalExitCond (spec.md
// §4.8).
//
// mwelt-contki has no analogue for any of these: its DRed pass (dred.go)
// mutates the live database directly rather than emitting a callable
// subroutine, and it carries no provenance at all. This package follows
// ProvenanceTransformer.cpp (Subproof/NegationSubproof) and
// IncrementalTransformer.cpp (IncrementalCleanup/IncrementalExitCond)
// directly, expressed through the same builder idiom C5 uses.
package subroutine

import (
	"fmt"
	"strings"

	"github.com/taipan-snake/souffle/internal/ast"
	"github.com/taipan-snake/souffle/internal/clause"
	"github.com/taipan-snake/souffle/internal/index"
	"github.com/taipan-snake/souffle/internal/namer"
	"github.com/taipan-snake/souffle/internal/ramir"
	"github.com/taipan-snake/souffle/internal/rerr"
	"github.com/taipan-snake/souffle/internal/values"
)

func relRef(name string) ramir.RamRelationReference { return ramir.RamRelationReference{Name: name} }

// Name conventions (spec.md §4.9 "register subroutines").
func SubproofName(head string, clauseIndex int) string {
	return fmt.Sprintf("%s_%d_subproof", head, clauseIndex)
}

func NegationSubproofName(head string, clauseIndex int) string {
	return fmt.Sprintf("%s_%d_negation_subproof", head, clauseIndex)
}

func ExitCondName(sccIndex int) string {
	return fmt.Sprintf("scc_%d_exit", sccIndex)
}

const IncrementalCleanupName = "incremental_cleanup"

// Subproof builds the subproof(args...) subroutine for cl: given the head's
// original argument values as SubroutineArgument bindings, and each body
// atom's provenance height column(s) bound the same way, it returns the
// body's own translated argument values — the witness of how the head was
// derived (spec.md §4.8).
func Subproof(clauses *clause.Translator, cl *ast.Clause, numHeightCols int) (ramir.RamStatement, error) {
	specialized := bindSubproofArgs(cl, numHeightCols)
	return clauses.Translate(specialized, clause.Options{
		Provenance:        true,
		NumHeightCols:     numHeightCols,
		ProvenanceVariant: true,
		ExecutionVersion:  -1,
	})
}

// bindSubproofArgs clones cl, replaces every original (non-annotation)
// head argument with an equality constraint against the corresponding
// SubroutineArgument, then walks the body atoms in order adding a
// height-matching constraint per atom: one EQ per height column under
// subtree-heights provenance (numHeightCols > 0), or a single LT under
// flat provenance (spec.md §4.8).
//
// Body atoms are assumed to carry the same trailing annotation shape as
// the head (rule number + numHeightCols heights) once provenance is
// active; the translator has no independent source for a body atom's own
// height-column width, so this mirrors the head's, matching the shape
// every body relation shares within one provenance-enabled program.
func bindSubproofArgs(cl *ast.Clause, numHeightCols int) *ast.Clause {
	cp := cl.Clone()

	annotationWidth := 1 + numHeightCols
	originalArity := len(cp.Head.Args) - annotationWidth
	if originalArity < 0 {
		originalArity = len(cp.Head.Args)
	}
	for i := 0; i < originalArity; i++ {
		cp.Body = append(cp.Body, &ast.BinaryConstraint{
			Op:  ast.OpEQ,
			LHS: cp.Head.Args[i].Clone(),
			RHS: &ast.SubroutineArgument{Index: i},
		})
	}

	levelIndex := originalArity
	subtreeHeights := numHeightCols > 0
	for _, atom := range cp.GetAtoms() {
		if subtreeHeights {
			for h := 0; h < numHeightCols; h++ {
				col := atom.Arity() - annotationWidth + 1 + h // skip the rule-number column
				if col < 0 || col >= atom.Arity() {
					continue
				}
				cp.Body = append(cp.Body, &ast.BinaryConstraint{
					Op:  ast.OpEQ,
					LHS: atom.Args[col].Clone(),
					RHS: &ast.SubroutineArgument{Index: levelIndex},
				})
				levelIndex++
			}
			continue
		}
		col := atom.Arity() - 1
		if col < 0 {
			continue
		}
		cp.Body = append(cp.Body, &ast.BinaryConstraint{
			Op:  ast.OpLT,
			LHS: atom.Args[col].Clone(),
			RHS: &ast.SubroutineArgument{Index: levelIndex},
		})
		levelIndex++
	}
	return cp
}

// NegationSubproof builds the negation_subproof(args...) subroutine for
// cl: a sequence of independent per-literal probes, one per body literal
// in order, each testing whether that single literal currently holds and
// returning its position if so, or a raw record of its (substituted)
// values otherwise — the caller uses whichever literal reports failure as
// the reason the head's negation held (spec.md §4.8).
func NegationSubproof(cl *ast.Clause) (ramir.RamStatement, error) {
	body := bindNegationArgs(eraseAggregators(cl.Body))

	var stmts []ramir.RamStatement
	for i, lit := range body {
		terminatingFallback := i == len(body)-1
		stmt, err := negationProbe(i, lit, terminatingFallback)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt...)
	}
	return ramir.Seq(stmts...), nil
}

// eraseAggregators replaces every Aggregator argument with a fresh
// "@level_num" variable: negation-subproof only cares whether a literal
// holds, never an aggregate's value, and the synthetic name marks it for
// exclusion from the distinct-variable collection pass below.
func eraseAggregators(body []ast.Literal) []ast.Literal {
	n := 0
	fresh := func(ast.Argument) ast.Argument {
		v := &ast.Variable{Name: fmt.Sprintf("@level_num%d", n)}
		n++
		return v
	}
	mapper := func(a ast.Argument) ast.Argument {
		if _, ok := a.(*ast.Aggregator); ok {
			return fresh(a)
		}
		return a
	}
	out := make([]ast.Literal, len(body))
	for i, lit := range body {
		out[i] = lit.Apply(mapper)
	}
	return out
}

// bindNegationArgs collects the distinct non-synthetic variables occurring
// across body, in first-occurrence order, and substitutes each with a
// SubroutineArgument at its collection index (spec.md §4.8 "maps each to a
// SubroutineArgument(k)").
func bindNegationArgs(body []ast.Literal) []ast.Literal {
	seen := map[string]bool{}
	var order []string
	var walkArg func(ast.Argument)
	walkArg = func(a ast.Argument) {
		switch v := a.(type) {
		case *ast.Variable:
			if strings.HasPrefix(v.Name, "@level_num") {
				return
			}
			if !seen[v.Name] {
				seen[v.Name] = true
				order = append(order, v.Name)
			}
		case *ast.IntrinsicFunctor:
			for _, arg := range v.Args {
				walkArg(arg)
			}
		case *ast.UserFunctor:
			for _, arg := range v.Args {
				walkArg(arg)
			}
		case *ast.RecordInit:
			for _, arg := range v.Args {
				walkArg(arg)
			}
		}
	}
	var walkLit func(ast.Literal)
	walkLit = func(l ast.Literal) {
		switch v := l.(type) {
		case *ast.Atom:
			for _, arg := range v.Args {
				walkArg(arg)
			}
		case *ast.Negation:
			for _, arg := range v.Atom.Args {
				walkArg(arg)
			}
		case *ast.BinaryConstraint:
			walkArg(v.LHS)
			walkArg(v.RHS)
		case *ast.Conjunction:
			walkLit(v.LHS)
			walkLit(v.RHS)
		case *ast.Disjunction:
			walkLit(v.LHS)
			walkLit(v.RHS)
		}
	}
	for _, lit := range body {
		walkLit(lit)
	}

	argIndex := make(map[string]int, len(order))
	for i, name := range order {
		argIndex[name] = i
	}
	mapper := func(a ast.Argument) ast.Argument {
		v, ok := a.(*ast.Variable)
		if !ok {
			return a
		}
		i, ok := argIndex[v.Name]
		if !ok {
			return a // "@level_num..." placeholders stay, resolved to Undef at translate time
		}
		return &ast.SubroutineArgument{Index: i}
	}
	out := make([]ast.Literal, len(body))
	for i, lit := range body {
		out[i] = lit.Apply(mapper)
	}
	return out
}

// plainTranslate lowers args with no ValueIndex bindings available: every
// remaining node must already be a SubroutineArgument, Constant,
// UnnamedVariable, or a composite of those; a leftover "@level_num..."
// variable (an erased aggregator nobody referenced) lowers to UndefValue.
func plainTranslate(args []ast.Argument) ([]ramir.RamExpression, error) {
	vt := values.New(index.New())
	out := make([]ramir.RamExpression, len(args))
	for i, a := range args {
		if v, ok := a.(*ast.Variable); ok && strings.HasPrefix(v.Name, "@level_num") {
			out[i] = ramir.UndefValue{}
			continue
		}
		val, err := vt.Translate(a)
		if err != nil {
			return nil, err
		}
		out[i] = val
	}
	return out, nil
}

// negationProbe builds the two-statement Filter/fallback pair for one body
// literal (spec.md §4.8): if the literal currently holds, return its
// position (terminating the subroutine); otherwise fall through to an
// unconditional record of the literal's substituted values.
func negationProbe(litNumber int, lit ast.Literal, terminatingFallback bool) ([]ramir.RamStatement, error) {
	switch l := lit.(type) {
	case *ast.Atom:
		vals, err := plainTranslate(l.Args)
		if err != nil {
			return nil, err
		}
		found := ramir.Query{Op: ramir.Filter{
			Cond:  ramir.ExistenceCheck{Rel: relRef(l.Name), Values: vals},
			Child: ramir.SubroutineReturnValue{Values: []ramir.RamExpression{ramir.Number{Value: int64(litNumber)}}, Terminating: true},
		}}
		fallback := ramir.Query{Op: ramir.SubroutineReturnValue{
			Values:      append([]ramir.RamExpression{ramir.UndefValue{}}, vals...),
			Terminating: terminatingFallback,
		}}
		return []ramir.RamStatement{found, fallback}, nil

	case *ast.Negation:
		vals, err := plainTranslate(l.Atom.Args)
		if err != nil {
			return nil, err
		}
		found := ramir.Query{Op: ramir.Filter{
			Cond:  ramir.CondNegation{Inner: ramir.ExistenceCheck{Rel: relRef(l.Atom.Name), Values: vals}},
			Child: ramir.SubroutineReturnValue{Values: []ramir.RamExpression{ramir.Number{Value: int64(litNumber)}}, Terminating: true},
		}}
		fallback := ramir.Query{Op: ramir.SubroutineReturnValue{
			Values:      append([]ramir.RamExpression{ramir.UndefValue{}}, vals...),
			Terminating: terminatingFallback,
		}}
		return []ramir.RamStatement{found, fallback}, nil

	case *ast.BinaryConstraint:
		vt := values.New(index.New())
		lhs, err := vt.Translate(l.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := vt.Translate(l.RHS)
		if err != nil {
			return nil, err
		}
		found := ramir.Query{Op: ramir.Filter{
			Cond:  ramir.Constraint{Op: l.Op, LHS: lhs, RHS: rhs},
			Child: ramir.SubroutineReturnValue{Values: []ramir.RamExpression{ramir.Number{Value: int64(litNumber)}}, Terminating: true},
		}}
		fallback := ramir.Query{Op: ramir.SubroutineReturnValue{
			Values:      []ramir.RamExpression{ramir.UndefValue{}, lhs, rhs},
			Terminating: terminatingFallback,
		}}
		return []ramir.RamStatement{found, fallback}, nil

	default:
		return nil, rerr.New(rerr.SchemaViolation, "negation subproof: unsupported body literal %T at position %d", lit, litNumber)
	}
}

// cleanupRoles are the seven per-relation auxiliaries reset every
// incremental epoch (spec.md §4.8): the current-epoch snapshot, the two
// diff sets, and their applied views.
var cleanupRoles = []namer.Role{
	namer.Delta,
	namer.Indexed,
	namer.DeltaPlus,
	namer.DeltaMinus,
	namer.DeltaPlusApplied,
	namer.DeltaMinusApplied,
	namer.DeltaApplied,
}

// IncrementalCleanup builds the incremental_cleanup subroutine: merge each
// relation's pending Δ⁻/Δ⁺ into its base storage, clear the seven
// per-relation auxiliaries, then reset every remaining tuple's trailing
// (@prev_count, @current_count) columns to (-1, -1) so the storage layer
// treats it as settled ahead of the next epoch (spec.md §4.8).
func IncrementalCleanup(relations *ramir.RelationTable, names []string) (ramir.RamStatement, error) {
	var stmts []ramir.RamStatement
	for _, r := range names {
		rel := relations.Lookup(r)
		if rel == nil {
			return nil, rerr.UnknownRelation(r)
		}
		stmts = append(stmts,
			ramir.Merge{Into: relRef(r), From: relRef(namer.Name(r, namer.DeltaMinus))},
			ramir.Merge{Into: relRef(r), From: relRef(namer.Name(r, namer.DeltaPlus))},
		)
		for _, role := range cleanupRoles {
			stmts = append(stmts, ramir.Clear{Rel: relRef(namer.Name(r, role))})
		}
		stmts = append(stmts, resetCounts(rel))
	}
	return ramir.Seq(stmts...), nil
}

// resetCounts rewrites every tuple of rel in place, keeping its original
// columns and setting the trailing (@prev_count, @current_count) pair to
// (-1, -1).
func resetCounts(rel *ramir.RamRelation) ramir.RamStatement {
	arity := rel.Arity()
	original := arity - 3
	if original < 0 {
		original = 0
	}
	vals := make([]ramir.RamExpression, 0, arity)
	for c := 0; c < original; c++ {
		vals = append(vals, ramir.TupleElement{Level: 0, Col: c})
	}
	if arity-original >= 1 {
		vals = append(vals, ramir.TupleElement{Level: 0, Col: original})
	}
	vals = append(vals, ramir.Number{Value: -1}, ramir.Number{Value: -1})
	return ramir.Query{Op: ramir.Scan{
		Rel:   relRef(rel.Name),
		Level: 0,
		Child: ramir.Project{Rel: relRef(rel.Name), Values: vals},
	}}
}

// IncrementalExitCond builds the scc_i_exit subroutine: it returns 0
// (false as a SubroutineCondition, so the loop keeps running) while
// maxIterRelation — the per-SCC 1-ary table of the highest iteration
// column observed across its members — still reports an iteration at or
// beyond the caller's argument 0, and returns 1 (true, the loop may
// exit) otherwise (spec.md §4.8).
func IncrementalExitCond(maxIterRelation string) ramir.RamStatement {
	stillRunning := ramir.Query{Op: ramir.Scan{
		Rel:   relRef(maxIterRelation),
		Level: 0,
		Child: ramir.Filter{
			Cond:  ramir.Constraint{Op: ast.OpGE, LHS: ramir.TupleElement{Level: 0, Col: 0}, RHS: ramir.SubroutineArgument{Index: 0}},
			Child: ramir.SubroutineReturnValue{Values: []ramir.RamExpression{ramir.Number{Value: 0}}, Terminating: true},
		},
	}}
	done := ramir.Query{Op: ramir.SubroutineReturnValue{Values: []ramir.RamExpression{ramir.Number{Value: 1}}, Terminating: true}}
	return ramir.Sequence{Stmts: []ramir.RamStatement{stillRunning, done}}
}
