// Package driver implements C9, the Driver: the top-level orchestration
// that walks the consumed SCC graph in topological order and emits one
// RamProgram (spec.md §4.9).
//
// Grounded on mwelt-contki's top-level example()/TestDRed() flow —
// register the program, evaluate it, run DRed, commit — generalised from
// "call the runtime evaluator once" to "emit the create/load/body/merge/
// store/drop statement sequence a real executor will later run". No
// teacher file threads a topological SCC order or a subroutine table;
// those follow AstTranslator.cpp's translateProgram directly.
package driver

import (
	"fmt"
	"path/filepath"

	"github.com/taipan-snake/souffle/internal/analysis"
	"github.com/taipan-snake/souffle/internal/ast"
	"github.com/taipan-snake/souffle/internal/clause"
	"github.com/taipan-snake/souffle/internal/config"
	"github.com/taipan-snake/souffle/internal/namer"
	"github.com/taipan-snake/souffle/internal/nonrecursive"
	"github.com/taipan-snake/souffle/internal/ramir"
	"github.com/taipan-snake/souffle/internal/ramlog"
	"github.com/taipan-snake/souffle/internal/recursive"
	"github.com/taipan-snake/souffle/internal/rerr"
	"github.com/taipan-snake/souffle/internal/subroutine"
)

func relRef(name string) ramir.RamRelationReference { return ramir.RamRelationReference{Name: name} }

// Driver owns the shared relation table and the C6/C7 lowering passes built
// against it, and produces one RamProgram per Run.
type Driver struct {
	cfg     config.Config
	log     *ramlog.Logger
	program *ramir.RamProgram
	clauses *clause.Translator
	nonrec  *nonrecursive.Lowering
	rec     *recursive.Lowering

	// baseRelations tracks declared relation names in the order they're
	// created, excluding the namer-derived auxiliaries GetOrCreate also
	// registers into the same table — IncrementalCleanup (spec.md §4.8)
	// needs exactly this set, not every name in the relation table.
	baseRelations []string
}

// New builds a Driver against a fresh, empty RamProgram.
func New(cfg config.Config, log *ramlog.Logger) *Driver {
	program := ramir.NewProgram()
	clauses := clause.New(program.Relations)
	nonrec := nonrecursive.New(clauses)
	rec := recursive.New(clauses, nonrec)
	return &Driver{cfg: cfg, log: log, program: program, clauses: clauses, nonrec: nonrec, rec: rec}
}

// Run walks graph's SCCs in order's topological order, emitting create/
// load/body/merge/store/drop statements for each and registering every
// subproof/negation-subproof/cleanup/exit-condition subroutine the active
// config requires (spec.md §4.9).
func (d *Driver) Run(relations []*ast.Relation, graph analysis.SCCGraph, order analysis.TopoOrder, schedule analysis.Schedule, recur analysis.RecursionOracle) (*ramir.RamProgram, error) {
	byName := make(map[string]*ast.Relation, len(relations))
	clausesByRelation := make(map[string][]*ast.Clause, len(relations))
	heightCols := make(map[string]int, len(relations))
	for _, r := range relations {
		byName[r.Name] = r
		clausesByRelation[r.Name] = r.Clauses
		heightCols[r.Name] = r.NumberOfHeightParams
	}

	sccs := order.Order()
	var main []ramir.RamStatement
	var pendingStores []ramir.RamStatement

	for i, idx := range sccs {
		sccStmt, deferredStores, err := d.runSCC(idx, byName, clausesByRelation, heightCols, graph, schedule, recur)
		if err != nil {
			return nil, err
		}
		main = append(main, sccStmt)
		pendingStores = append(pendingStores, deferredStores...)

		if d.cfg.Incremental() && i == len(sccs)-1 {
			cleanup, err := subroutine.IncrementalCleanup(d.program.Relations, d.baseRelations)
			if err != nil {
				return nil, err
			}
			d.program.AddSubroutine(subroutine.IncrementalCleanupName, cleanup)
			// incremental_cleanup is a side-effecting maintenance pass, not a
			// boolean predicate (its body ends in Clear/Project statements,
			// never a SubroutineReturnValue), so it cannot be invoked through
			// Exit(SubroutineCondition(...)) the way scc_i_exit is. It is
			// registered under its name for external inspection and its
			// statements are run inline here, where spec.md's step 9 places
			// the call.
			main = append(main, cleanup)
			main = append(main, pendingStores...)
		}
	}

	body := ramir.Seq(main...)
	if d.cfg.Profile() {
		body = ramir.LogTimer{Body: body, Message: "@t-program"}
	}
	d.program.Main = body
	return d.program, nil
}

// runSCC builds one SCC's statement sequence and returns its deferred
// store statements separately, since incremental mode defers every store
// until after the final cleanup pass (spec.md §4.9 steps 7 and 9).
func (d *Driver) runSCC(idx analysis.SCCIndex, byName map[string]*ast.Relation, clausesByRelation map[string][]*ast.Clause, heightCols map[string]int, graph analysis.SCCGraph, schedule analysis.Schedule, recur analysis.RecursionOracle) (ramir.RamStatement, []ramir.RamStatement, error) {
	sccRelations := graph.InternalRelations(idx)
	recursiveSCC := graph.IsRecursive(idx)
	d.log.SCCStart(int(idx), recursiveSCC, sccRelations)
	defer d.log.SCCDone(int(idx))

	var stmts []ramir.RamStatement

	create, err := d.declareRelations(sccRelations, byName, recursiveSCC)
	if err != nil {
		return nil, nil, err
	}
	stmts = append(stmts, create...)

	stmts = append(stmts, d.loadStatements(idx, graph)...)

	body, err := d.bodyStatement(idx, sccRelations, clausesByRelation, recursiveSCC, recur, heightCols)
	if err != nil {
		return nil, nil, err
	}
	stmts = append(stmts, body)

	if !recursiveSCC && d.cfg.Incremental() {
		stmts = append(stmts, d.nonRecursivePostMerges(sccRelations)...)
	}

	if recursiveSCC {
		d.program.AddSubroutine(subroutine.ExitCondName(int(idx)), subroutine.IncrementalExitCond(fmt.Sprintf("scc_%d_@max_iter", idx)))
	}

	if err := d.registerSubproofs(sccRelations, clausesByRelation, heightCols); err != nil {
		return nil, nil, err
	}

	stores := d.storeStatements(idx, graph)
	var deferredStores []ramir.RamStatement
	if d.cfg.Incremental() {
		// Deferred to the very end (Run appends these after the final
		// cleanup pass); dropStatements is a no-op under incremental mode
		// regardless, so no ordering hazard against it here.
		deferredStores = stores
	} else {
		stmts = append(stmts, stores...)
	}
	stmts = append(stmts, d.dropStatements(idx, sccRelations, schedule)...)

	seq := ramir.Seq(stmts...)
	if d.cfg.Profile() {
		seq = ramir.LogTimer{Body: seq, Message: fmt.Sprintf("@t-scc-%d", idx)}
	}
	return seq, deferredStores, nil
}

// ramAttributes appends the active annotation columns to relation's own
// attributes: provenance's (@rule_number, height...) when provenance is
// on, then incremental's (@iteration, @prev_count, @current_count) when
// incremental is on. With both options on, both shapes are appended in
// that order.
func (d *Driver) ramAttributes(rel *ast.Relation) []ramir.RamAttribute {
	out := make([]ramir.RamAttribute, 0, rel.Arity()+3)
	for _, a := range rel.Attributes {
		out = append(out, ramir.RamAttribute{Name: a.Name, Type: a.Type})
	}
	if d.cfg.Provenance() {
		out = append(out, ramir.RamAttribute{Name: "@rule_number", Type: "number"})
		for h := 0; h < rel.NumberOfHeightParams; h++ {
			out = append(out, ramir.RamAttribute{Name: fmt.Sprintf("@level_num%d", h), Type: "number"})
		}
	}
	if d.cfg.Incremental() {
		out = append(out,
			ramir.RamAttribute{Name: "@iteration", Type: "number"},
			ramir.RamAttribute{Name: "@prev_count", Type: "number"},
			ramir.RamAttribute{Name: "@current_count", Type: "number"},
		)
	}
	return out
}

// incrementalAuxRoles are the seven auxiliaries every incremental relation
// carries regardless of recursion (spec.md §4.9 step 1); distinct from
// SubroutineSynth's cleanupRoles, which name the epoch-reset set rather
// than the declaration set (see DESIGN.md).
var incrementalAuxRoles = []namer.Role{
	namer.DeltaPlus, namer.DeltaMinus,
	namer.DeltaPlusApplied, namer.DeltaMinusApplied, namer.DeltaApplied,
	namer.DeltaPlusCount, namer.DeltaMinusCount,
}

var recursiveBaseRoles = []namer.Role{namer.Delta, namer.New}

var recursiveIncrementalAuxRoles = []namer.Role{
	namer.Indexed, namer.NewDeltaPlus, namer.NewDeltaMinus,
	namer.LittleDeltaPlusCount, namer.LittleDeltaMinusCount,
	namer.LittleDeltaApplied, namer.LittleDeltaMinusApplied,
	namer.TempLittleDeltaApplied,
}

// declareRelations builds every Create statement for sccRelations: the base
// relation, its seven incremental auxiliaries when active, and (for a
// recursive SCC) δ/new plus the further incremental recursive auxiliaries
// (spec.md §4.9 step 1).
func (d *Driver) declareRelations(sccRelations []string, byName map[string]*ast.Relation, recursiveSCC bool) ([]ramir.RamStatement, error) {
	var stmts []ramir.RamStatement
	for _, r := range sccRelations {
		astRel, ok := byName[r]
		if !ok {
			return nil, rerr.UnknownRelation(r)
		}
		base := d.program.Relations.GetOrCreate(r, d.ramAttributes(astRel), astRel.NumberOfHeightParams, astRel.Representation)
		stmts = append(stmts, ramir.Create{Rel: base.Ref()})
		d.baseRelations = append(d.baseRelations, r)

		if d.cfg.Incremental() {
			for _, role := range incrementalAuxRoles {
				stmts = append(stmts, d.declareAux(base, role))
			}
		}
		if recursiveSCC {
			for _, role := range recursiveBaseRoles {
				stmts = append(stmts, d.declareAux(base, role))
			}
			if d.cfg.Incremental() {
				for _, role := range recursiveIncrementalAuxRoles {
					stmts = append(stmts, d.declareAux(base, role))
				}
			}
		}
	}
	return stmts, nil
}

func (d *Driver) declareAux(base *ramir.RamRelation, role namer.Role) ramir.RamStatement {
	aux := d.program.Relations.GetOrCreate(namer.Name(base.Name, role), base.Attributes, base.NumHeights, base.Representation)
	return ramir.Create{Rel: aux.Ref()}
}

// loadStatements loads a SCC's own EDB inputs (into ΔR⁺ instead of R when
// incremental, so R only gains them via the post-body/loop merges every
// other statement expects) and, when an engine is configured, every
// external predecessor relation the SCC reads (spec.md §4.9 steps 2-3).
func (d *Driver) loadStatements(idx analysis.SCCIndex, graph analysis.SCCGraph) []ramir.RamStatement {
	var stmts []ramir.RamStatement
	for _, r := range graph.InternalInputRelations(idx) {
		target := r
		if d.cfg.Incremental() {
			target = namer.Name(r, namer.DeltaPlus)
		}
		stmts = append(stmts, ramir.Load{Rel: relRef(target), IO: d.factIO(r)})
	}
	if d.cfg.HasEngine() {
		for _, r := range graph.ExternalOutputPredecessorRelations(idx) {
			stmts = append(stmts, ramir.Load{Rel: relRef(r), IO: d.engineIO()})
		}
		for _, r := range graph.ExternalNonOutputPredecessorRelations(idx) {
			stmts = append(stmts, ramir.Load{Rel: relRef(r), IO: d.engineIO()})
		}
	}
	return stmts
}

func (d *Driver) factIO(r string) ramir.IODirective {
	return ramir.IODirective{IO: "file", Filename: filepath.Join(d.cfg.FactDir(), r+".facts"), Delimiter: "\t"}
}

func (d *Driver) engineIO() ramir.IODirective {
	return ramir.IODirective{IO: d.cfg.Engine(), Intermediate: true}
}

// bodyStatement runs C7 for a recursive SCC (which itself invokes C6 for
// the SCC's own non-recursive clauses in its preamble) or C6 directly for a
// non-recursive one (spec.md §4.9 step 5).
func (d *Driver) bodyStatement(idx analysis.SCCIndex, sccRelations []string, clausesByRelation map[string][]*ast.Clause, recursiveSCC bool, recur analysis.RecursionOracle, heightCols map[string]int) (ramir.RamStatement, error) {
	if recursiveSCC {
		return d.rec.Lower(int(idx), sccRelations, clausesByRelation, recur.Recursive, recursive.Options{
			Provenance:    d.cfg.Provenance(),
			Incremental:   d.cfg.Incremental(),
			SkipDedup:     d.cfg.SkipProvenanceDedup(),
			Profile:       d.cfg.Profile(),
			DebugReport:   d.cfg.DebugReport(),
			NumHeightCols: heightCols,
		})
	}

	var stmts []ramir.RamStatement
	for _, r := range sccRelations {
		stmt, err := d.nonrec.Lower(r, clausesByRelation[r], recur.Recursive, nonrecursive.Options{
			Provenance:    d.cfg.Provenance(),
			Incremental:   d.cfg.Incremental(),
			SkipDedup:     d.cfg.SkipProvenanceDedup(),
			Profile:       d.cfg.Profile(),
			DebugReport:   d.cfg.DebugReport(),
			NumHeightCols: heightCols[r],
		})
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return ramir.Seq(stmts...), nil
}

// nonRecursivePostMerges materialises a non-recursive SCC's incremental
// output: its clauses write directly into ΔR⁺/ΔR⁻ (internal/incremental's
// specializeAtom retargets the head there, with no new_R intermediate,
// since there is no loop), so R and the rest of its incrementalAuxRoles
// only gain those tuples once these merges run (spec.md §4.9 step 6; same
// schedule as the recursive preamble's incrementalSeedStatements, minus the
// Indexed/Little*/TempLittle* roles that only exist inside a loop).
func (d *Driver) nonRecursivePostMerges(sccRelations []string) []ramir.RamStatement {
	var stmts []ramir.RamStatement
	for _, r := range sccRelations {
		stmts = append(stmts,
			ramir.Merge{Into: relRef(r), From: relRef(namer.Name(r, namer.DeltaPlus))},
			ramir.Merge{Into: relRef(r), From: relRef(namer.Name(r, namer.DeltaMinus))},
			ramir.Merge{Into: relRef(namer.Name(r, namer.DeltaPlusApplied)), From: relRef(r)},
			ramir.Merge{Into: relRef(namer.Name(r, namer.DeltaPlusApplied)), From: relRef(namer.Name(r, namer.DeltaPlus))},
			ramir.Merge{Into: relRef(namer.Name(r, namer.DeltaMinusApplied)), From: relRef(r)},
			ramir.Merge{Into: relRef(namer.Name(r, namer.DeltaMinusApplied)), From: relRef(namer.Name(r, namer.DeltaMinus))},
			ramir.Merge{Into: relRef(namer.Name(r, namer.DeltaApplied)), From: relRef(r)},
			ramir.Merge{Into: relRef(namer.Name(r, namer.DeltaApplied)), From: relRef(namer.Name(r, namer.DeltaMinus))},
			ramir.Merge{Into: relRef(namer.Name(r, namer.DeltaApplied)), From: relRef(namer.Name(r, namer.DeltaPlus))},
			ramir.Merge{Into: relRef(namer.Name(r, namer.DeltaPlusCount)), From: relRef(namer.Name(r, namer.DeltaPlus))},
			ramir.SemiMerge{Into: relRef(namer.Name(r, namer.DeltaPlusCount)), From: relRef(namer.Name(r, namer.DeltaMinusApplied))},
			ramir.Merge{Into: relRef(namer.Name(r, namer.DeltaMinusCount)), From: relRef(namer.Name(r, namer.DeltaMinus))},
			ramir.SemiMerge{Into: relRef(namer.Name(r, namer.DeltaMinusCount)), From: relRef(namer.Name(r, namer.DeltaPlusApplied))},
		)
	}
	return stmts
}

// storeStatements builds one Store per output relation the SCC produces
// (spec.md §4.9 step 7); the caller defers emission under incremental mode.
func (d *Driver) storeStatements(idx analysis.SCCIndex, graph analysis.SCCGraph) []ramir.RamStatement {
	var stmts []ramir.RamStatement
	for _, r := range graph.InternalOutputRelations(idx) {
		stmts = append(stmts, ramir.Store{Rel: relRef(r), IO: d.outputIO(r)})
	}
	return stmts
}

func (d *Driver) outputIO(r string) ramir.IODirective {
	if d.cfg.StdoutOutput() {
		return ramir.IODirective{IO: "stdoutprintsize"}
	}
	return ramir.IODirective{IO: "file", Filename: filepath.Join(d.cfg.OutputDir(), r+".csv"), Delimiter: "\t"}
}

// dropStatements releases an expired relation's storage once its SCC has
// finished, unless provenance or incremental mode needs it retained for a
// later subproof or cleanup pass (spec.md §4.9 step 8).
func (d *Driver) dropStatements(idx analysis.SCCIndex, sccRelations []string, schedule analysis.Schedule) []ramir.RamStatement {
	if d.cfg.Provenance() || d.cfg.Incremental() {
		return nil
	}
	var stmts []ramir.RamStatement
	for _, r := range sccRelations {
		if schedule.Expired(int(idx), r) {
			stmts = append(stmts, ramir.Drop{Rel: relRef(r)})
		}
	}
	return stmts
}

// registerSubproofs registers a subproof/negation-subproof pair for every
// clause of every relation in sccRelations when provenance is active
// (spec.md §4.9 "register subroutines").
func (d *Driver) registerSubproofs(sccRelations []string, clausesByRelation map[string][]*ast.Clause, heightCols map[string]int) error {
	if !d.cfg.Provenance() {
		return nil
	}
	for _, r := range sccRelations {
		for i, cl := range clausesByRelation[r] {
			subproof, err := subroutine.Subproof(d.clauses, cl, heightCols[r])
			if err != nil {
				return err
			}
			d.program.AddSubroutine(subroutine.SubproofName(r, i), subproof)

			negation, err := subroutine.NegationSubproof(cl)
			if err != nil {
				return err
			}
			d.program.AddSubroutine(subroutine.NegationSubproofName(r, i), negation)
		}
	}
	return nil
}
