package ramir

// RamOperation is the nested query-plan tree (spec.md §3): Scan,
// UnpackRecord, Aggregate, Filter, Break, Project, SubroutineReturnValue.
// Built bottom-up by a functional builder (spec.md §9 "builder over
// mutation") — each wrapping step produces a new operation whose child is
// the previous one.
type RamOperation interface {
	isRamOperation()
}

// Scan iterates every tuple of Rel, binding it at Level, for each tuple
// running Child. ProfileTag is non-empty only under the profile option.
type Scan struct {
	Rel        RamRelationReference
	Level      int
	Child      RamOperation
	ProfileTag string
}

func (Scan) isRamOperation() {}

// UnpackRecord destructures the record value produced by Source into Arity
// fields, binding them at Level, then runs Child.
type UnpackRecord struct {
	Child  RamOperation
	Level  int
	Source RamExpression
	Arity  int
}

func (UnpackRecord) isRamOperation() {}

// Aggregate computes Fn over Expr for every tuple of Rel satisfying Cond,
// binding the scalar result at column 0 of Level, then runs Child.
type Aggregate struct {
	Child RamOperation
	Fn    string
	Rel   RamRelationReference
	Expr  RamExpression
	Cond  RamCondition
	Level int
}

func (Aggregate) isRamOperation() {}

// Filter runs Child only if Cond holds.
type Filter struct {
	Cond  RamCondition
	Child RamOperation
}

func (Filter) isRamOperation() {}

// Break runs Child but stops the enclosing Scan once Cond holds — used to
// terminate a scan after a nullary head has fired once (spec.md §4.5.3).
type Break struct {
	Cond  RamCondition
	Child RamOperation
}

func (Break) isRamOperation() {}

// Project writes one tuple of Values into Rel — the innermost operation of
// a classical (non-provenance) clause translation.
type Project struct {
	Rel    RamRelationReference
	Values []RamExpression
}

func (Project) isRamOperation() {}

// SubroutineReturnValue returns Values from the enclosing subroutine;
// Terminating marks the final return of a subroutine's query sequence
// (spec.md §4.5.5, §4.8).
type SubroutineReturnValue struct {
	Values      []RamExpression
	Terminating bool
}

func (SubroutineReturnValue) isRamOperation() {}
