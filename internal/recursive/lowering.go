// Package recursive implements C7, RecursiveLowering: the per-SCC
// semi-naïve fixpoint loop, including the incremental reinsertion/
// insertion/deletion loop-body dispatch (spec.md §4.7).
//
// Grounded on mwelt-contki's Program.eval outer `for !changed` loop
// (delta/new swap each round) and dred.go's over-deletion-then-
// rederivation shape for the incremental reinsertion path; neither
// teacher file threads compile-time iteration bounds, so that part
// follows IncrementalTransformer.cpp.
package recursive

import (
	"fmt"

	"github.com/taipan-snake/souffle/internal/ast"
	"github.com/taipan-snake/souffle/internal/clause"
	"github.com/taipan-snake/souffle/internal/incremental"
	"github.com/taipan-snake/souffle/internal/namer"
	"github.com/taipan-snake/souffle/internal/nonrecursive"
	"github.com/taipan-snake/souffle/internal/ramir"
	"github.com/taipan-snake/souffle/internal/rerr"
)

// Options configures one Lower call (spec.md §6).
type Options struct {
	Provenance  bool
	Incremental bool
	SkipDedup   bool
	Profile     bool
	DebugReport bool
	// NumHeightCols maps a relation name to its provenance height-column
	// count, consulted per clause's own head relation.
	NumHeightCols map[string]int
}

// Lowering lowers one SCC's recursive clauses.
type Lowering struct {
	clauses *clause.Translator
	nonrec  *nonrecursive.Lowering
}

func New(clauses *clause.Translator, nonrec *nonrecursive.Lowering) *Lowering {
	return &Lowering{clauses: clauses, nonrec: nonrec}
}

func relRef(name string) ramir.RamRelationReference { return ramir.RamRelationReference{Name: name} }

// Lower builds Sequence(preamble, Loop(parallel-body, clear, Exit, update), postamble)
// for one SCC (spec.md §4.7 "Statement shape").
func (l *Lowering) Lower(sccIndex int, relations []string, clausesByRelation map[string][]*ast.Clause, recur func(*ast.Clause) bool, opts Options) (ramir.RamStatement, error) {
	inS := func(name string) bool {
		for _, r := range relations {
			if r == name {
				return true
			}
		}
		return false
	}

	preamble, err := l.buildPreamble(sccIndex, relations, clausesByRelation, recur, opts)
	if err != nil {
		return nil, err
	}

	loopBody, err := l.buildLoopBody(relations, clausesByRelation, recur, inS, opts)
	if err != nil {
		return nil, err
	}

	clearTable := l.buildClearTable(relations, opts)
	updateTable := l.buildUpdateTable(relations, opts)
	exit := l.buildExit(sccIndex, relations, opts)

	loop := ramir.Loop{Body: loopBody, Clear: clearTable, Exit: exit, Update: updateTable}
	postamble := l.buildPostamble(relations, opts)

	return ramir.Seq(preamble, loop, postamble), nil
}

// buildPreamble runs non-recursive lowering for every member relation,
// seeds the incremental auxiliaries, and seeds the classical semi-naïve
// delta (spec.md §4.7 "Preamble").
func (l *Lowering) buildPreamble(sccIndex int, relations []string, clausesByRelation map[string][]*ast.Clause, recur func(*ast.Clause) bool, opts Options) (ramir.RamStatement, error) {
	var stmts []ramir.RamStatement

	for _, r := range relations {
		stmt, err := l.nonrec.Lower(r, clausesByRelation[r], recur, nonrecursive.Options{
			Provenance:    opts.Provenance,
			Incremental:   opts.Incremental,
			SkipDedup:     opts.SkipDedup,
			Profile:       opts.Profile,
			DebugReport:   opts.DebugReport,
			NumHeightCols: opts.NumHeightCols[r],
		})
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}

	for _, r := range relations {
		if opts.Incremental {
			stmts = append(stmts, incrementalSeedStatements(r)...)
		}
		if opts.Incremental {
			stmts = append(stmts, ramir.PositiveMerge{Into: relRef(namer.Name(r, namer.Delta)), From: relRef(namer.Name(r, namer.Indexed))})
		} else {
			stmts = append(stmts, ramir.Merge{Into: relRef(namer.Name(r, namer.Delta)), From: relRef(r)})
		}
	}

	if opts.Incremental {
		stmt, err := l.buildMaxIterQuery(sccIndex, relations)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}

	return ramir.Seq(stmts...), nil
}

// incrementalSeedStatements builds the seed sequence for one relation's
// indexed, applied and count auxiliaries and their little-delta copies
// (spec.md §4.7 preamble bullet 2).
func incrementalSeedStatements(r string) []ramir.RamStatement {
	base := relRef(r)
	return []ramir.RamStatement{
		ramir.Merge{Into: relRef(namer.Name(r, namer.Indexed)), From: base},
		ramir.Merge{Into: relRef(namer.Name(r, namer.DeltaPlusApplied)), From: base},
		ramir.Merge{Into: relRef(namer.Name(r, namer.DeltaPlusApplied)), From: relRef(namer.Name(r, namer.DeltaPlus))},
		ramir.Merge{Into: relRef(namer.Name(r, namer.DeltaMinusApplied)), From: base},
		ramir.Merge{Into: relRef(namer.Name(r, namer.DeltaMinusApplied)), From: relRef(namer.Name(r, namer.DeltaMinus))},
		ramir.Merge{Into: relRef(namer.Name(r, namer.DeltaApplied)), From: base},
		ramir.Merge{Into: relRef(namer.Name(r, namer.DeltaApplied)), From: relRef(namer.Name(r, namer.DeltaMinus))},
		ramir.Merge{Into: relRef(namer.Name(r, namer.DeltaApplied)), From: relRef(namer.Name(r, namer.DeltaPlus))},
		ramir.Merge{Into: relRef(namer.Name(r, namer.DeltaPlusCount)), From: relRef(namer.Name(r, namer.DeltaPlus))},
		ramir.SemiMerge{Into: relRef(namer.Name(r, namer.DeltaPlusCount)), From: relRef(namer.Name(r, namer.DeltaMinusApplied))},
		ramir.Merge{Into: relRef(namer.Name(r, namer.DeltaMinusCount)), From: relRef(namer.Name(r, namer.DeltaMinus))},
		ramir.SemiMerge{Into: relRef(namer.Name(r, namer.DeltaMinusCount)), From: relRef(namer.Name(r, namer.DeltaPlusApplied))},
		ramir.Merge{Into: relRef(namer.Name(r, namer.LittleDeltaApplied)), From: relRef(namer.Name(r, namer.DeltaApplied))},
		ramir.Merge{Into: relRef(namer.Name(r, namer.LittleDeltaMinusApplied)), From: relRef(namer.Name(r, namer.Delta))},
		ramir.Merge{Into: relRef(namer.Name(r, namer.LittleDeltaMinusApplied)), From: relRef(namer.Name(r, namer.DeltaMinus))},
		ramir.Merge{Into: relRef(namer.Name(r, namer.LittleDeltaPlusCount)), From: relRef(namer.Name(r, namer.DeltaPlus))},
		ramir.SemiMerge{Into: relRef(namer.Name(r, namer.LittleDeltaPlusCount)), From: relRef(namer.Name(r, namer.DeltaMinusApplied))},
		ramir.Merge{Into: relRef(namer.Name(r, namer.LittleDeltaMinusCount)), From: relRef(namer.Name(r, namer.DeltaMinus))},
		ramir.SemiMerge{Into: relRef(namer.Name(r, namer.LittleDeltaMinusCount)), From: relRef(namer.Name(r, namer.DeltaPlusApplied))},
	}
}

// buildMaxIterQuery synthesises the scc_i_@max_iter relation: one row per
// member relation holding that relation's max @iteration value (spec.md
// §4.7 preamble bullet 4; IncrementalExitCond, §4.8, scans every row). The
// @iteration column is the first of the three trailing annotation columns
// (spec.md §3 invariant 5: @iteration, @prev_count, @current_count), so it
// sits at arity-3, not column 0.
func (l *Lowering) buildMaxIterQuery(sccIndex int, relations []string) (ramir.RamStatement, error) {
	name := fmt.Sprintf("scc_%d_@max_iter", sccIndex)
	var stmts []ramir.RamStatement
	for _, r := range relations {
		rel := l.clauses.Relations().Lookup(r)
		if rel == nil {
			return nil, rerr.New(rerr.SchemaViolation, "buildMaxIterQuery: relation %q not in relation table", r)
		}
		iterCol := rel.Arity() - 3
		if iterCol < 0 {
			return nil, rerr.New(rerr.SchemaViolation, "buildMaxIterQuery: relation %q arity %d too small for annotation columns", r, rel.Arity())
		}
		stmts = append(stmts, ramir.Query{Op: ramir.Aggregate{
			Fn:    "max",
			Rel:   relRef(r),
			Expr:  ramir.TupleElement{Level: 0, Col: iterCol},
			Cond:  ramir.True{},
			Level: 0,
			Child: ramir.Project{Rel: relRef(name), Values: []ramir.RamExpression{ramir.TupleElement{Level: 0, Col: 0}}},
		}})
	}
	return ramir.Seq(stmts...), nil
}

// buildLoopBody emits, per member relation and per recursive clause, the
// classical or incremental specialisations, accumulated into a single
// Parallel block (spec.md §4.7 "Loop body").
func (l *Lowering) buildLoopBody(relations []string, clausesByRelation map[string][]*ast.Clause, recur func(*ast.Clause) bool, inS func(string) bool, opts Options) (ramir.RamStatement, error) {
	var stmts []ramir.RamStatement
	for _, r := range relations {
		for _, cl := range clausesByRelation[r] {
			if !recur(cl) {
				continue
			}
			var produced []ramir.RamStatement
			var err error
			if opts.Incremental {
				produced, err = l.incrementalLoopClauses(cl, inS, opts)
			} else {
				produced, err = l.classicalLoopClauses(cl, inS, opts)
			}
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, produced...)
		}
	}
	return ramir.Parallel{Stmts: stmts}, nil
}

// classicalLoopClauses implements spec.md §4.7 "Classical" loop body: for
// each in-S body position j, retarget head to new_R, body[j] to Δ_R'j,
// guard with a (subsumption) negation against the head, and anti-join
// against every later in-S position's delta.
func (l *Lowering) classicalLoopClauses(cl *ast.Clause, inS func(string) bool, opts Options) ([]ramir.RamStatement, error) {
	atomIdxs := incremental.AtomPositions(cl)
	var out []ramir.RamStatement
	for j, bj := range atomIdxs {
		atomJ := cl.Body[bj].(*ast.Atom)
		if !inS(atomJ.Name) {
			continue
		}
		cp := incremental.RetargetHead(cl, namer.Name(cl.Head.Name, namer.New))
		cp = incremental.RetargetAtomAt(cp, bj, namer.Name(atomJ.Name, namer.Delta))

		numHeights := opts.NumHeightCols[cl.Head.Name]
		if opts.Provenance {
			cp = incremental.AppendLiteral(cp, &ast.SubsumptionNegation{
				Atom: incremental.CloneAtomAs(cl.Head, cl.Head.Name),
				K:    1 + numHeights,
			})
		} else {
			cp = incremental.AppendLiteral(cp, &ast.Negation{Atom: incremental.CloneAtomAs(cl.Head, cl.Head.Name)})
		}

		for k, bk := range atomIdxs {
			if k <= j {
				continue
			}
			atomK := cl.Body[bk].(*ast.Atom)
			if !inS(atomK.Name) {
				continue
			}
			cp = incremental.AppendLiteral(cp, &ast.Negation{
				Atom: incremental.CloneAtomAs(atomK, namer.Name(atomK.Name, namer.Delta)),
			})
		}

		stmt, err := l.translateSpecialized(cp, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, stmt)
	}
	return out, nil
}

// incrementalLoopClauses dispatches cl's incremental class to the
// reinsertion, insertion, or deletion loop-body construction (spec.md
// §4.7 "Incremental").
func (l *Lowering) incrementalLoopClauses(cl *ast.Clause, inS func(string) bool, opts Options) ([]ramir.RamStatement, error) {
	class, err := incremental.Classify(cl.Head)
	if err != nil {
		return nil, err
	}
	switch class {
	case incremental.ClassReinsertion:
		return l.reinsertionClauses(cl, inS, opts)
	case incremental.ClassInsertion:
		return l.insertionClauses(cl, inS, opts)
	case incremental.ClassDeletion:
		return l.deletionClauses(cl, inS, opts)
	default:
		return nil, rerr.New(rerr.ConfigContradiction, "unclassified incremental clause for %q", cl.Head.Name)
	}
}

// reinsertionClauses implements spec.md §4.7 "Reinsertion": head →
// new_Δ⁺R, every body position retargeted to Δ_applied, guarded by a
// subsumption negation on Δ_applied(head) and a "deletion drove the
// count to ≤0" literal reordered to lead; then one clone per in-S
// positive position j with body[j] retargeted to δΔ_applied and
// iteration-bound guards on the later in-S positions.
func (l *Lowering) reinsertionClauses(cl *ast.Clause, inS func(string) bool, opts Options) ([]ramir.RamStatement, error) {
	base := incremental.RetargetHead(cl, namer.Name(cl.Head.Name, namer.NewDeltaPlus))
	atomIdxs := incremental.AtomPositions(base)
	for _, bj := range atomIdxs {
		atomJ := base.Body[bj].(*ast.Atom)
		base = incremental.RetargetAtomAt(base, bj, namer.Name(atomJ.Name, namer.DeltaApplied))
	}
	base = incremental.AppendLiteral(base, &ast.SubsumptionNegation{
		Atom: incremental.AnnotatedAtomFrom(cl.Head, namer.Name(cl.Head.Name, namer.DeltaApplied), nil, nil),
		K:    1,
	})
	deletedDriven := incremental.AnnotatedAtomFrom(cl.Head, namer.Name(cl.Head.Name, namer.DeltaMinusCount), nil, nil)
	base = incremental.PrependLiteral(base, &ast.BinaryConstraint{
		Op:  ast.OpLE,
		LHS: incremental.CurrentCountArg(deletedDriven),
		RHS: &ast.Constant{Index: 0},
	})
	base = incremental.PrependLiteral(base, &ast.ExistenceCheck{Atom: deletedDriven})

	var out []ramir.RamStatement
	atomIdxsOrig := incremental.AtomPositions(cl)
	for j, bj := range atomIdxsOrig {
		atomJ := cl.Body[bj].(*ast.Atom)
		if !inS(atomJ.Name) {
			continue
		}
		cp := base.Clone()
		// Recompute body indices on the clone: body shape mirrors cl's
		// positive-atom ordering plus the two prepended literals, so
		// bj shifts by +2.
		shifted := bj + 2
		cp = incremental.RetargetAtomAt(cp, shifted, namer.Name(atomJ.Name, namer.LittleDeltaApplied))
		for k, bk := range atomIdxsOrig {
			if k <= j {
				continue
			}
			atomK := cl.Body[bk].(*ast.Atom)
			if !inS(atomK.Name) {
				continue
			}
			cp = incremental.AppendLiteral(cp, &ast.BinaryConstraint{
				Op:  ast.OpLT,
				LHS: iterationColumnOf(atomK),
				RHS: iterationMinusOne(),
			})
		}
		stmt, err := l.translateSpecialized(cp, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, stmt)
	}
	return out, nil
}

// iterationMinusOne builds `@iteration - 1`, the semi-naïve round bound
// used to restrict later in-S positions to the previous round's delta
// (spec.md §4.7 "iteration < current - 1").
func iterationMinusOne() ast.Argument {
	return &ast.IntrinsicFunctor{Op: "-", Args: []ast.Argument{&ast.IterationNumber{}, &ast.Constant{Index: 1}}}
}

// iterationColumnOf returns a clone of atom's @iteration column, used to
// build the "< @iteration - 1" semi-naïve restriction.
func iterationColumnOf(atom *ast.Atom) ast.Argument {
	return incremental.IterationArg(atom)
}

// insertionClauses implements spec.md §4.7 "Insertion": the §4.6
// insertion clone per in-S positive position i (see diffClauses), with
// position i retargeted to δΔ⁺_count and iteration < current-1 guards on
// later in-S positions. The other body positions keep the Δ_applied
// relation the §4.6 clone gave them; none is retargeted to δΔ_applied.
func (l *Lowering) insertionClauses(cl *ast.Clause, inS func(string) bool, opts Options) ([]ramir.RamStatement, error) {
	return l.diffClauses(cl, inS, opts, namer.LittleDeltaPlusCount, true)
}

// deletionClauses is the symmetric deletion-side construction (spec.md
// §4.7 "Deletion").
func (l *Lowering) deletionClauses(cl *ast.Clause, inS func(string) bool, opts Options) ([]ramir.RamStatement, error) {
	return l.diffClauses(cl, inS, opts, namer.LittleDeltaMinusCount, false)
}

// diffClauses builds one clone per in-S positive position i: the §4.6
// insertion/deletion atom-clone driven by position i, head retargeted to
// new_Δ⁺R (insertion) or new_Δ⁻R (deletion), guarded against
// Δ_applied(head), position i itself further
// retargeted to its little-delta count role, and every later in-S
// position j>i restricted to the previous round via an iteration bound
// (spec.md §4.7 "Insertion"/"Deletion").
func (l *Lowering) diffClauses(cl *ast.Clause, inS func(string) bool, opts Options, littleCountRole namer.Role, insertion bool) ([]ramir.RamStatement, error) {
	atomIdxs := incremental.AtomPositions(cl)
	var out []ramir.RamStatement
	for i, bi := range atomIdxs {
		atomI := cl.Body[bi].(*ast.Atom)
		if !inS(atomI.Name) {
			continue
		}

		var base *ast.Clause
		var err error
		if insertion {
			base, err = incremental.InsertAtomClone(cl, i)
		} else {
			base, err = incremental.DeleteAtomClone(cl, i)
		}
		if err != nil {
			return nil, err
		}
		headRole := namer.NewDeltaPlus
		if !insertion {
			headRole = namer.NewDeltaMinus
		}
		base = incremental.RetargetHead(base, namer.Name(cl.Head.Name, headRole))
		base = incremental.AppendLiteral(base, &ast.SubsumptionNegation{
			Atom: incremental.AnnotatedAtomFrom(cl.Head, namer.Name(cl.Head.Name, namer.DeltaApplied), nil, nil),
			K:    1,
		})
		if bi < len(base.Body) {
			if atom, ok := base.Body[bi].(*ast.Atom); ok {
				atom.Name = namer.Name(atomI.Name, littleCountRole)
			}
		}

		for k, bk := range atomIdxs {
			if k <= i {
				continue
			}
			atomK := cl.Body[bk].(*ast.Atom)
			if !inS(atomK.Name) {
				continue
			}
			if bk < len(base.Body) {
				if atom, ok := base.Body[bk].(*ast.Atom); ok {
					base = incremental.AppendLiteral(base, &ast.BinaryConstraint{
						Op:  ast.OpLT,
						LHS: incremental.IterationArg(atom),
						RHS: iterationMinusOne(),
					})
				}
			}
		}

		stmt, err := l.translateSpecialized(base, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, stmt)
	}
	return out, nil
}

func (l *Lowering) translateSpecialized(cl *ast.Clause, opts Options) (ramir.RamStatement, error) {
	stmt, err := l.clauses.Translate(cl, clause.Options{
		Provenance:       opts.Provenance,
		NumHeightCols:    opts.NumHeightCols[cl.Head.Name],
		SkipDedup:        opts.SkipDedup,
		ExecutionVersion: 0,
	})
	if err != nil {
		return nil, err
	}
	if opts.DebugReport {
		stmt = ramir.DebugInfo{Body: stmt, Text: fmt.Sprintf("recursive clause for %s", cl.Head.Name)}
	}
	return stmt, nil
}

// buildClearTable clears every Δ/δΔ auxiliary each round under
// incremental mode (spec.md §4.7 "Per-round tables").
func (l *Lowering) buildClearTable(relations []string, opts Options) ramir.RamStatement {
	if !opts.Incremental {
		return nil
	}
	var stmts []ramir.RamStatement
	roles := []namer.Role{
		namer.DeltaPlus, namer.DeltaMinus,
		namer.LittleDeltaApplied, namer.LittleDeltaMinusApplied,
		namer.LittleDeltaPlusCount, namer.LittleDeltaMinusCount,
	}
	for _, r := range relations {
		for _, role := range roles {
			stmts = append(stmts, ramir.Clear{Rel: relRef(namer.Name(r, role))})
		}
	}
	return ramir.Seq(stmts...)
}

// buildUpdateTable implements spec.md §4.7 "update_table".
func (l *Lowering) buildUpdateTable(relations []string, opts Options) ramir.RamStatement {
	var stmts []ramir.RamStatement
	for _, r := range relations {
		stmts = append(stmts,
			ramir.Merge{Into: relRef(r), From: relRef(namer.Name(r, namer.New))},
			ramir.Swap{A: relRef(namer.Name(r, namer.Delta)), B: relRef(namer.Name(r, namer.New))},
			ramir.Clear{Rel: relRef(namer.Name(r, namer.New))},
		)
		if opts.Incremental {
			stmts = append(stmts,
				ramir.Merge{Into: relRef(namer.Name(r, namer.DeltaPlus)), From: relRef(namer.Name(r, namer.NewDeltaPlus))},
				ramir.Merge{Into: relRef(namer.Name(r, namer.DeltaMinus)), From: relRef(namer.Name(r, namer.NewDeltaMinus))},
				ramir.Merge{Into: relRef(namer.Name(r, namer.DeltaApplied)), From: relRef(namer.Name(r, namer.NewDeltaPlus))},
				ramir.Merge{Into: relRef(namer.Name(r, namer.DeltaApplied)), From: relRef(namer.Name(r, namer.NewDeltaMinus))},
				ramir.Merge{Into: relRef(namer.Name(r, namer.DeltaPlusCount)), From: relRef(namer.Name(r, namer.NewDeltaPlus))},
				ramir.Merge{Into: relRef(namer.Name(r, namer.DeltaMinusCount)), From: relRef(namer.Name(r, namer.NewDeltaMinus))},
				ramir.Clear{Rel: relRef(namer.Name(r, namer.NewDeltaPlus))},
				ramir.Clear{Rel: relRef(namer.Name(r, namer.NewDeltaMinus))},
			)
		}
	}
	return ramir.Seq(stmts...)
}

// buildExit implements spec.md §4.7 "Exit".
func (l *Lowering) buildExit(sccIndex int, relations []string, opts Options) ramir.RamStatement {
	var cond ramir.RamCondition = ramir.True{}
	first := true
	addCond := func(c ramir.RamCondition) {
		if first {
			cond = c
			first = false
			return
		}
		cond = ramir.CondConjunction{LHS: cond, RHS: c}
	}
	for _, r := range relations {
		if opts.Incremental {
			addCond(ramir.EmptinessCheck{Rel: relRef(namer.Name(r, namer.NewDeltaPlus))})
			addCond(ramir.EmptinessCheck{Rel: relRef(namer.Name(r, namer.NewDeltaMinus))})
		} else {
			addCond(ramir.EmptinessCheck{Rel: relRef(namer.Name(r, namer.New))})
		}
	}
	if opts.Incremental {
		addCond(ramir.SubroutineCondition{
			Name: fmt.Sprintf("scc_%d_exit", sccIndex),
			Args: []ramir.RamExpression{ramir.IterationNumber{}},
		})
	}
	return ramir.Exit{Cond: cond, Now: false}
}

// buildPostamble drops auxiliary tables for relations (spec.md §4.7
// "Postamble"). Classical mode drops only each relation's δ table;
// @new_ is not dropped. Incremental mode drops the roles listed below;
// @new_, the new_Δ⁺/new_Δ⁻ tables and the temp little-delta table are
// not dropped.
func (l *Lowering) buildPostamble(relations []string, opts Options) ramir.RamStatement {
	if !opts.Incremental {
		var stmts []ramir.RamStatement
		for _, r := range relations {
			stmts = append(stmts, ramir.Drop{Rel: relRef(namer.Name(r, namer.Delta))})
		}
		return ramir.Seq(stmts...)
	}
	roles := []namer.Role{
		namer.Delta, namer.Indexed, namer.DeltaPlus, namer.DeltaMinus,
		namer.DeltaPlusApplied, namer.DeltaMinusApplied, namer.DeltaApplied,
		namer.DeltaPlusCount, namer.DeltaMinusCount,
		namer.LittleDeltaPlusCount, namer.LittleDeltaMinusCount,
		namer.LittleDeltaApplied, namer.LittleDeltaMinusApplied,
	}
	var stmts []ramir.RamStatement
	for _, r := range relations {
		for _, role := range roles {
			stmts = append(stmts, ramir.Drop{Rel: relRef(namer.Name(r, role))})
		}
	}
	return ramir.Seq(stmts...)
}
