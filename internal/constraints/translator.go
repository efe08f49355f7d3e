// Package constraints implements C4, ConstraintTranslator: lowering of an
// AST literal (other than a plain body atom) to a RamCondition (spec.md
// §4.4).
//
// Grounded on mwelt-contki's Mu.compatible/negCompatible (equality and
// incompatibility tests between two variable bindings), generalised to the
// full BinaryConstraint/Negation/ExistenceCheck/Subsumption literal set;
// the negation and subsumption cases have no teacher analogue and follow
// AstTranslator.cpp's ConstraintTranslator visitor instead.
package constraints

import (
	"github.com/taipan-snake/souffle/internal/ast"
	"github.com/taipan-snake/souffle/internal/ramir"
	"github.com/taipan-snake/souffle/internal/rerr"
	"github.com/taipan-snake/souffle/internal/values"
)

// Translator lowers non-atom body literals for one clause translation.
type Translator struct {
	values         *values.Translator
	provenance     bool
	numHeightCols  func(relation string) int // provenance annotation width for Negation drop
}

// Option configures a Translator.
type Option func(*Translator)

// WithProvenance marks provenance mode active: Negation drops the
// trailing rule-number + height annotation columns before checking
// existence (spec.md §4.4).
func WithProvenance(numHeightCols func(relation string) int) Option {
	return func(t *Translator) {
		t.provenance = true
		t.numHeightCols = numHeightCols
	}
}

func New(v *values.Translator, opts ...Option) *Translator {
	t := &Translator{values: v}
	for _, o := range opts {
		o(t)
	}
	return t
}

// relRef builds a relation reference by name; the atom's arity is not
// re-validated here — C5's Scan/Project construction is where arity is
// cross-checked against the relation table.
func relRef(name string) ramir.RamRelationReference {
	return ramir.RamRelationReference{Name: name}
}

// Translate lowers literal lit. A plain *ast.Atom is not a condition on
// its own — spec.md §4.4 says body atoms become Scans in C5 — so
// Translate rejects it.
func (t *Translator) Translate(lit ast.Literal) (ramir.RamCondition, error) {
	switch l := lit.(type) {
	case *ast.BinaryConstraint:
		lhs, err := t.values.Translate(l.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := t.values.Translate(l.RHS)
		if err != nil {
			return nil, err
		}
		return ramir.Constraint{Op: l.Op, LHS: lhs, RHS: rhs}, nil

	case *ast.Conjunction:
		lhs, err := t.Translate(l.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := t.Translate(l.RHS)
		if err != nil {
			return nil, err
		}
		return ramir.CondConjunction{LHS: lhs, RHS: rhs}, nil

	case *ast.Disjunction:
		lhs, err := t.Translate(l.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := t.Translate(l.RHS)
		if err != nil {
			return nil, err
		}
		return ramir.CondDisjunction{LHS: lhs, RHS: rhs}, nil

	case *ast.Negation:
		vals, err := t.negationValues(l.Atom)
		if err != nil {
			return nil, err
		}
		if len(vals) == 0 {
			return ramir.CondNegation{Inner: ramir.EmptinessCheck{Rel: relRef(l.Atom.Name)}}, nil
		}
		return ramir.CondNegation{Inner: ramir.ExistenceCheck{Rel: relRef(l.Atom.Name), Values: vals}}, nil

	case *ast.PositiveNegation:
		vals, err := t.values.TranslateAll(l.Atom.Args)
		if err != nil {
			return nil, err
		}
		return ramir.CondNegation{Inner: ramir.PositiveExistenceCheck{Rel: relRef(l.Atom.Name), Values: vals}}, nil

	case *ast.ExistenceCheck:
		vals, err := t.values.TranslateAll(l.Atom.Args)
		if err != nil {
			return nil, err
		}
		return ramir.PositiveExistenceCheck{Rel: relRef(l.Atom.Name), Values: vals}, nil

	case *ast.SubsumptionNegation:
		vals, err := t.values.TranslateAll(l.Atom.Args)
		if err != nil {
			return nil, err
		}
		return ramir.CondNegation{Inner: ramir.SubsumptionExistenceCheck{Rel: relRef(l.Atom.Name), Values: vals}}, nil

	case *ast.Atom:
		return nil, rerr.NewAt(rerr.SchemaViolation, l.Loc,
			"atom %q used as a condition: body atoms lower to scans, not conditions", l.Name)

	default:
		return nil, rerr.New(rerr.SchemaViolation, "unsupported literal node %T", lit)
	}
}

// negationValues lowers a negated atom's arguments, ignoring the trailing
// provenance annotation columns when active: the non-annotation args are
// translated normally and the dropped columns come back as UndefValue
// placeholders, restoring the relation's full arity (spec.md §4.4: "values
// ++ [Undef]*annotation" — a negation check must not care which rule or
// height produced a matching tuple, but its ExistenceCheck still needs one
// value per column).
func (t *Translator) negationValues(a *ast.Atom) ([]ramir.RamExpression, error) {
	args := a.Args
	drop := 0
	if t.provenance && t.numHeightCols != nil {
		drop = 1 + t.numHeightCols(a.Name)
		if drop > len(args) {
			drop = len(args)
		}
		args = args[:len(args)-drop]
	}
	vals, err := t.values.TranslateAll(args)
	if err != nil {
		return nil, err
	}
	for i := 0; i < drop; i++ {
		vals = append(vals, ramir.UndefValue{})
	}
	return vals, nil
}
