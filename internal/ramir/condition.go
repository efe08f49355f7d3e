package ramir

import "github.com/taipan-snake/souffle/internal/ast"

// RamCondition is the tagged union over emitted boolean conditions
// (spec.md §3): True, Conjunction, Disjunction, Negation, Constraint,
// EmptinessCheck, ExistenceCheck, PositiveExistenceCheck,
// SubsumptionExistenceCheck, SubroutineCondition.
type RamCondition interface {
	isRamCondition()
}

// True is the vacuous condition, used where C4 returns "no constraint".
type True struct{}

func (True) isRamCondition() {}

// CondConjunction combines two conditions with logical AND.
type CondConjunction struct{ LHS, RHS RamCondition }

func (CondConjunction) isRamCondition() {}

// CondDisjunction combines two conditions with logical OR.
type CondDisjunction struct{ LHS, RHS RamCondition }

func (CondDisjunction) isRamCondition() {}

// CondNegation negates a condition.
type CondNegation struct{ Inner RamCondition }

func (CondNegation) isRamCondition() {}

// Constraint compares two lowered expressions with a binary operator.
type Constraint struct {
	Op       ast.BinaryOp
	LHS, RHS RamExpression
}

func (Constraint) isRamCondition() {}

// EmptinessCheck tests whether a relation currently holds no tuples.
type EmptinessCheck struct{ Rel RamRelationReference }

func (EmptinessCheck) isRamCondition() {}

// ExistenceCheck tests whether a tuple matching Values exists in Rel,
// honouring negative (incremental/provenance) annotation semantics.
type ExistenceCheck struct {
	Rel    RamRelationReference
	Values []RamExpression
}

func (ExistenceCheck) isRamCondition() {}

// PositiveExistenceCheck is an existence check bound to require a strictly
// positive incremental annotation (spec.md §4.4, §4.6).
type PositiveExistenceCheck struct {
	Rel    RamRelationReference
	Values []RamExpression
}

func (PositiveExistenceCheck) isRamCondition() {}

// SubsumptionExistenceCheck tests existence while ignoring the trailing K
// annotation columns (spec.md §4.4).
type SubsumptionExistenceCheck struct {
	Rel    RamRelationReference
	Values []RamExpression
}

func (SubsumptionExistenceCheck) isRamCondition() {}

// SubroutineCondition invokes a named subroutine (e.g. an exit-condition
// subroutine) and treats a non-zero return as true.
type SubroutineCondition struct {
	Name string
	Args []RamExpression
}

func (SubroutineCondition) isRamCondition() {}
