// Package clause implements C5, ClauseTranslator: full lowering of one
// AST clause into a RAM statement — nested scans/unpacks, filters,
// aggregates, and a projection into the head relation, plus the
// provenance variant that returns bound body values instead of
// projecting (spec.md §4.5).
//
// Grounded on mwelt-contki's Rule.eval, which folds body atoms into a
// single Omega via repeated Omega.join (`result = result.join(&omegas[i])`)
// — the compile-time analogue built here rebinds an accumulator op the
// same way (spec.md §9 "builder over mutation") instead of mutating a
// multiset in place.
package clause

import (
	"sort"

	"github.com/taipan-snake/souffle/internal/ast"
	"github.com/taipan-snake/souffle/internal/constraints"
	"github.com/taipan-snake/souffle/internal/index"
	"github.com/taipan-snake/souffle/internal/ramir"
	"github.com/taipan-snake/souffle/internal/rerr"
	"github.com/taipan-snake/souffle/internal/values"
)

// Options configures one Translate call (spec.md §4.5, §6).
type Options struct {
	// Provenance activates the trailing rule-number+height annotation
	// columns and the provenance dedup filter (subject to SkipDedup).
	Provenance bool
	// NumHeightCols is the head relation's provenance subtree-height
	// column count (0 for flat provenance).
	NumHeightCols int
	// SkipDedup mirrors config.SkipProvenanceDedup(): compile/dl-program/
	// generate presence turns off the provenance dedup filter.
	SkipDedup bool
	// ProvenanceVariant emits SubroutineReturnValue instead of Project
	// (spec.md §4.5.5), used by C8's subproof/negation-subproof synthesis.
	ProvenanceVariant bool
	// ProfileTag, when non-empty, is attached to every Scan this clause
	// emits (spec.md §3 Scan "[profile_tag]").
	ProfileTag string
	// ExecutionVersion selects which attached ExecutionPlan (if any)
	// applies to this translation (spec.md §4.5.4); -1 matches any plan.
	ExecutionVersion int
}

// Translator lowers ast.Clause values against a shared relation table.
type Translator struct {
	relations *ramir.RelationTable
}

func New(relations *ramir.RelationTable) *Translator {
	return &Translator{relations: relations}
}

// Relations returns the shared relation table this translator was built
// with, so C6/C7/C9 callers that hold the same Translator can register
// auxiliary relations (Δ⁺, @new_, ...) against the one table instance.
func (t *Translator) Relations() *ramir.RelationTable {
	return t.relations
}

func relRef(name string) ramir.RamRelationReference {
	return ramir.RamRelationReference{Name: name}
}

// Translate lowers clause cl per spec.md §4.5, returning a Fact statement
// for a fact clause or a Query wrapping the built operation tree for a
// rule.
func (t *Translator) Translate(cl *ast.Clause, opts Options) (ramir.RamStatement, error) {
	if plan := cl.ExecutionPlan; plan != nil && (opts.ExecutionVersion < 0 || plan.Version == opts.ExecutionVersion) {
		reordered := cl.ReorderAtoms(plan.Order)
		return t.Translate(reordered, opts)
	}

	if cl.IsFact() {
		idx := index.New()
		vt := values.New(idx)
		vals, err := vt.TranslateAll(cl.Head.Args)
		if err != nil {
			return nil, err
		}
		return ramir.Fact{Rel: relRef(cl.Head.Name), Values: vals}, nil
	}

	b := &builder{cl: cl, opts: opts, relations: t.relations, idx: index.New(), elided: map[ast.Literal]bool{}}
	op, err := b.build()
	if err != nil {
		return nil, err
	}
	return ramir.Query{Op: op}, nil
}

// nestingKind distinguishes the two op_nesting entry shapes spec.md §4.5.1
// produces: a scan of a stored atom, or an unpack of a record column.
type nestingKind int

const (
	nestScan nestingKind = iota
	nestUnpack
)

type constFilter struct {
	col   int
	value int64
}

type nestingEntry struct {
	kind        nestingKind
	level       int
	rel         ramir.RamRelationReference // nestScan only
	arity       int
	constFilter []constFilter
	source      ramir.RamExpression // nestUnpack only: TupleElement of parent location
	allUnnamed  bool                // nestScan only
}

type aggEntry struct {
	node  *ast.Aggregator
	level int
}

// argAggFilter records that atom-level `level` argument `col` is itself an
// aggregator (spec.md §4.5.3 step 3).
type argAggFilter struct {
	level int
	col   int
	node  *ast.Aggregator
}

type builder struct {
	cl        *ast.Clause
	opts      Options
	relations *ramir.RelationTable
	idx       *index.Index

	nextLevel int
	nesting   []nestingEntry
	aggOrder  []aggEntry
	argAggs   []argAggFilter
	elided    map[ast.Literal]bool
}

func (b *builder) build() (ramir.RamOperation, error) {
	if err := b.assignAtomLevels(); err != nil {
		return nil, err
	}
	if err := b.assignAggregatorLevels(); err != nil {
		return nil, err
	}
	b.bindAggregatorVariables()

	vt := values.New(b.idx)
	ct := constraints.New(vt, b.provenanceConstraintOpts()...)

	op, err := b.buildInnermost(vt)
	if err != nil {
		return nil, err
	}
	op, err = b.wrapEquivalence(op)
	if err != nil {
		return nil, err
	}
	op, err = b.wrapBodyConstraints(op, ct)
	if err != nil {
		return nil, err
	}
	op, err = b.wrapAggregatorArgConstraints(op)
	if err != nil {
		return nil, err
	}
	op, err = b.wrapAggregates(op, vt, ct)
	if err != nil {
		return nil, err
	}
	if b.cl.Head.Arity() == 0 {
		op = ramir.Break{Cond: ramir.CondNegation{Inner: ramir.EmptinessCheck{Rel: relRef(b.cl.Head.Name)}}, Child: op}
	}
	op, err = b.wrapScans(op)
	if err != nil {
		return nil, err
	}
	if b.cl.Head.Arity() == 0 {
		op = ramir.Filter{Cond: ramir.EmptinessCheck{Rel: relRef(b.cl.Head.Name)}, Child: op}
	}
	return op, nil
}

func (b *builder) provenanceConstraintOpts() []constraints.Option {
	if !b.opts.Provenance {
		return nil
	}
	return []constraints.Option{constraints.WithProvenance(func(string) int { return b.opts.NumHeightCols })}
}

// assignAtomLevels implements spec.md §4.5.1's first pass: one fresh level
// per body atom in order, recursing into RecordInit arguments for nested
// unpack levels.
func (b *builder) assignAtomLevels() error {
	for _, atom := range b.cl.GetAtoms() {
		level := b.nextLevel
		b.nextLevel++
		rel := relRef(atom.Name)
		entry := nestingEntry{kind: nestScan, level: level, rel: rel, arity: atom.Arity()}
		allUnnamed := atom.Arity() > 0
		for col, arg := range atom.Args {
			if err := b.assignArgLevel(arg, level, col, &rel, &entry); err != nil {
				return err
			}
			if _, ok := arg.(*ast.UnnamedVariable); !ok {
				allUnnamed = false
			}
		}
		entry.allUnnamed = allUnnamed
		b.nesting = append(b.nesting, entry)
	}
	return nil
}

// assignArgLevel handles one atom argument at (level, col): binds
// Variables, records constant-equality filters, recurses into RecordInit
// for a nested unpack level, and records Aggregator arguments for the
// step-3 equality filter.
func (b *builder) assignArgLevel(arg ast.Argument, level, col int, rel *ramir.RamRelationReference, entry *nestingEntry) error {
	switch a := arg.(type) {
	case *ast.Variable:
		b.idx.AddVarRef(a.Name, index.Location{Level: level, Col: col, RelRef: rel})
	case *ast.UnnamedVariable:
		// no binding, no filter
	case *ast.Constant:
		entry.constFilter = append(entry.constFilter, constFilter{col: col, value: a.Index})
	case *ast.RecordInit:
		return b.assignRecordLevel(a, level, col)
	case *ast.Aggregator:
		b.argAggs = append(b.argAggs, argAggFilter{level: level, col: col, node: a})
	default:
		// IntrinsicFunctor/UserFunctor/Counter/IterationNumber/
		// SubroutineArgument as a direct pattern-position argument are
		// not bindable positions; they carry no location and are left
		// unfiltered, matching the source's treatment of atom arguments
		// as pure match patterns.
	}
	return nil
}

// assignRecordLevel gives a nested RecordInit its own unpack level and
// recurses into its fields (spec.md §4.5.1).
func (b *builder) assignRecordLevel(rec *ast.RecordInit, parentLevel, parentCol int) error {
	level := b.nextLevel
	b.nextLevel++
	b.idx.SetRecordDefinition(rec, index.Location{Level: parentLevel, Col: parentCol})
	entry := nestingEntry{
		kind:   nestUnpack,
		level:  level,
		arity:  len(rec.Args),
		source: ramir.TupleElement{Level: parentLevel, Col: parentCol},
	}
	dummyRel := ramir.RamRelationReference{}
	for col, arg := range rec.Args {
		if err := b.assignArgLevel(arg, level, col, &dummyRel, &entry); err != nil {
			return err
		}
	}
	b.nesting = append(b.nesting, entry)
	return nil
}

// assignAggregatorLevels walks every literal (body and head) collecting
// Aggregator nodes in depth-first post-order, deduplicated by structural
// equality, then gives each a fresh level whose column 0 is its result
// (spec.md §4.5.1).
func (b *builder) assignAggregatorLevels() error {
	seen := map[string]bool{}
	var aggs []*ast.Aggregator
	var walkArg func(ast.Argument)
	walkArg = func(a ast.Argument) {
		switch v := a.(type) {
		case *ast.Aggregator:
			for _, arg := range v.Body.Args {
				walkArg(arg)
			}
			if v.Target != nil {
				walkArg(v.Target)
			}
			key := v.StructKey()
			if !seen[key] {
				seen[key] = true
				aggs = append(aggs, v)
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
		case *ast.PositiveNegation:
			for _, arg := range v.Atom.Args {
				walkArg(arg)
			}
		case *ast.ExistenceCheck:
			for _, arg := range v.Atom.Args {
				walkArg(arg)
			}
		case *ast.SubsumptionNegation:
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
	for _, lit := range b.cl.Body {
		walkLit(lit)
	}
	for _, arg := range b.cl.Head.Args {
		walkArg(arg)
	}

	for _, agg := range aggs {
		level := b.nextLevel
		b.nextLevel++
		loc := index.Location{Level: level, Col: 0}
		b.idx.SetAggregatorLocation(agg, loc)
		dummyRel := relRef(agg.Body.Name)
		entry := nestingEntry{}
		for col, arg := range agg.Body.Args {
			if err := b.assignArgLevel(arg, level, col, &dummyRel, &entry); err != nil {
				return err
			}
		}
		b.aggOrder = append(b.aggOrder, aggEntry{node: agg, level: level})
	}
	return nil
}

// bindAggregatorVariables implements the "n = count : {...}" binding
// pattern: a BinaryConstraint equating a Variable directly to an
// Aggregator is a definition, not a runtime check, so the variable's
// occurrences resolve through the aggregator's location and the literal
// itself is elided from the body-constraint pass.
func (b *builder) bindAggregatorVariables() {
	for _, lit := range b.cl.Body {
		bc, ok := lit.(*ast.BinaryConstraint)
		if !ok || bc.Op != ast.OpEQ {
			continue
		}
		var v *ast.Variable
		var agg *ast.Aggregator
		if vv, ok := bc.LHS.(*ast.Variable); ok {
			if a, ok := bc.RHS.(*ast.Aggregator); ok {
				v, agg = vv, a
			}
		} else if vv, ok := bc.RHS.(*ast.Variable); ok {
			if a, ok := bc.LHS.(*ast.Aggregator); ok {
				v, agg = vv, a
			}
		}
		if v == nil || agg == nil {
			continue
		}
		loc, ok := b.idx.AggregatorLocation(agg)
		if !ok {
			continue
		}
		b.idx.AddVarRef(v.Name, loc)
		b.elided[lit] = true
	}
}

// buildInnermost implements spec.md §4.5.2: a Project into the head
// relation (or a SubroutineReturnValue under the provenance variant),
// gated by the provenance dedup filter when active.
func (b *builder) buildInnermost(vt *values.Translator) (ramir.RamOperation, error) {
	if b.opts.ProvenanceVariant {
		return b.buildProvenanceReturn(vt)
	}

	headVals, err := vt.TranslateAll(b.cl.Head.Args)
	if err != nil {
		return nil, err
	}
	var op ramir.RamOperation = ramir.Project{Rel: relRef(b.cl.Head.Name), Values: headVals}

	if b.opts.Provenance && !b.opts.SkipDedup && !headHasCounter(b.cl.Head) {
		annotationWidth := 1 + b.opts.NumHeightCols
		nonAnnotation := headVals
		if annotationWidth <= len(headVals) {
			nonAnnotation = headVals[:len(headVals)-annotationWidth]
		}
		checkVals := append(append([]ramir.RamExpression(nil), nonAnnotation...), undefN(annotationWidth)...)
		cond := ramir.CondNegation{Inner: ramir.ExistenceCheck{Rel: relRef(b.cl.Head.Name), Values: checkVals}}
		op = ramir.Filter{Cond: cond, Child: op}
	}
	return op, nil
}

func undefN(n int) []ramir.RamExpression {
	out := make([]ramir.RamExpression, n)
	for i := range out {
		out[i] = ramir.UndefValue{}
	}
	return out
}

func headHasCounter(head *ast.Atom) bool {
	for _, a := range head.Args {
		if _, ok := a.(*ast.Counter); ok {
			return true
		}
	}
	return false
}

// buildProvenanceReturn implements spec.md §4.5.5: a return of the
// concatenation of every body literal's argument translations, with
// SubsumptionNegation bodies contributing Number(-1) for their annotation
// columns.
func (b *builder) buildProvenanceReturn(vt *values.Translator) (ramir.RamOperation, error) {
	var vals []ramir.RamExpression
	for _, lit := range b.cl.Body {
		switch l := lit.(type) {
		case *ast.Atom:
			vs, err := vt.TranslateAll(l.Args)
			if err != nil {
				return nil, err
			}
			vals = append(vals, vs...)
		case *ast.SubsumptionNegation:
			vals = append(vals, ramir.Number{Value: -1})
		}
	}
	return ramir.SubroutineReturnValue{Values: vals}, nil
}

// wrapEquivalence implements spec.md §4.5.3 step 1: every occurrence of a
// multiply-occurring variable beyond its definition point gets an
// equality filter against the definition point, unless the occurrence is
// at an aggregator level.
func (b *builder) wrapEquivalence(op ramir.RamOperation) (ramir.RamOperation, error) {
	names := b.idx.Variables()
	sort.Strings(names)
	for _, name := range names {
		occs := b.idx.Occurrences(name)
		if len(occs) < 2 {
			continue
		}
		first := occs[0]
		for _, occ := range occs[1:] {
			if b.idx.IsAggregator(occ.Level) {
				continue
			}
			cond := ramir.Constraint{
				Op:  ast.OpEQ,
				LHS: ramir.TupleElement{Level: first.Level, Col: first.Col},
				RHS: ramir.TupleElement{Level: occ.Level, Col: occ.Col},
			}
			op = ramir.Filter{Cond: cond, Child: op}
		}
	}
	return op, nil
}

// wrapBodyConstraints implements spec.md §4.5.3 step 2: every non-atom
// body literal (other than an elided aggregator-binding constraint)
// becomes a Filter.
func (b *builder) wrapBodyConstraints(op ramir.RamOperation, ct *constraints.Translator) (ramir.RamOperation, error) {
	for _, lit := range b.cl.Body {
		if _, isAtom := lit.(*ast.Atom); isAtom {
			continue
		}
		if b.elided[lit] {
			continue
		}
		cond, err := ct.Translate(lit)
		if err != nil {
			return nil, err
		}
		op = ramir.Filter{Cond: cond, Child: op}
	}
	return op, nil
}

// wrapAggregatorArgConstraints implements spec.md §4.5.3 step 3: an atom
// argument that is itself an aggregator gets an equality filter against
// that aggregator's result column.
func (b *builder) wrapAggregatorArgConstraints(op ramir.RamOperation) (ramir.RamOperation, error) {
	for _, aa := range b.argAggs {
		loc, ok := b.idx.AggregatorLocation(aa.node)
		if !ok {
			return nil, rerr.NewAt(rerr.SchemaViolation, aa.node.Loc, "aggregator argument has no assigned location")
		}
		cond := ramir.Constraint{
			Op:  ast.OpEQ,
			LHS: ramir.TupleElement{Level: aa.level, Col: aa.col},
			RHS: ramir.TupleElement{Level: loc.Level, Col: loc.Col},
		}
		op = ramir.Filter{Cond: cond, Child: op}
	}
	return op, nil
}

// wrapAggregates implements spec.md §4.5.3 step 4: innermost aggregator
// first, each wraps op in an Aggregate over its body's constraints
// (conjoined, defaulting to True) and target expression (defaulting to
// UndefValue for count).
func (b *builder) wrapAggregates(op ramir.RamOperation, vt *values.Translator, ct *constraints.Translator) (ramir.RamOperation, error) {
	for _, ae := range b.aggOrder {
		var cond ramir.RamCondition = ramir.True{}
		if ae.node.Body.Arity() > 0 {
			// Constant/equality filters on the aggregator body's own
			// arguments (assigned in assignAggregatorLevels) surface as
			// ordinary equivalence/constant filters already threaded
			// through the shared idx; the aggregate condition itself
			// covers any constant columns of the body atom.
			var filters []ramir.RamCondition
			for col, arg := range ae.node.Body.Args {
				if c, ok := arg.(*ast.Constant); ok {
					filters = append(filters, ramir.Constraint{
						Op:  ast.OpEQ,
						LHS: ramir.TupleElement{Level: ae.level, Col: col},
						RHS: ramir.Number{Value: c.Index},
					})
				}
			}
			for _, f := range filters {
				if _, isTrue := cond.(ramir.True); isTrue {
					cond = f
				} else {
					cond = ramir.CondConjunction{LHS: cond, RHS: f}
				}
			}
		}
		var target ramir.RamExpression = ramir.UndefValue{}
		if ae.node.Target != nil {
			v, err := vt.Translate(ae.node.Target)
			if err != nil {
				return nil, err
			}
			target = v
		}
		op = ramir.Aggregate{
			Child: op,
			Fn:    string(ae.node.Op),
			Rel:   relRef(ae.node.Body.Name),
			Expr:  target,
			Cond:  cond,
			Level: ae.level,
		}
	}
	_ = ct // reserved for aggregate bodies with non-atom constraints in a future extension
	return op, nil
}

// wrapScans implements spec.md §4.5.3 step 5: process op_nesting entries
// from last-assigned to first, so the first body atom ends up outermost
// (a nested-loop join with the first atom as the outer loop).
func (b *builder) wrapScans(op ramir.RamOperation) (ramir.RamOperation, error) {
	for i := len(b.nesting) - 1; i >= 0; i-- {
		entry := b.nesting[i]
		for _, cf := range entry.constFilter {
			cond := ramir.Constraint{
				Op:  ast.OpEQ,
				LHS: ramir.TupleElement{Level: entry.level, Col: cf.col},
				RHS: ramir.Number{Value: cf.value},
			}
			op = ramir.Filter{Cond: cond, Child: op}
		}

		switch entry.kind {
		case nestUnpack:
			op = ramir.UnpackRecord{Child: op, Level: entry.level, Source: entry.source, Arity: entry.arity}
		case nestScan:
			op = ramir.Filter{Cond: ramir.CondNegation{Inner: ramir.EmptinessCheck{Rel: entry.rel}}, Child: op}
			if entry.arity > 0 && !entry.allUnnamed {
				op = ramir.Scan{Rel: entry.rel, Level: entry.level, Child: op, ProfileTag: b.opts.ProfileTag}
			}
		}
	}
	return op, nil
}
