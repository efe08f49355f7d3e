package ramir

import "sort"

// RamProgram owns a main RamStatement, the relation table, and a mapping
// from subroutine name to body (spec.md §3 "Lifecycle"). Created empty by
// the driver, populated during SCC iteration, returned to the caller at
// the end.
type RamProgram struct {
	Relations   *RelationTable
	Main        RamStatement
	subroutines map[string]RamStatement
	subOrder    []string
}

func NewProgram() *RamProgram {
	return &RamProgram{
		Relations:   NewRelationTable(),
		subroutines: make(map[string]RamStatement),
	}
}

// AddSubroutine registers a subroutine body under name. Re-registering the
// same name overwrites the body but does not duplicate its position in
// SubroutineNames.
func (p *RamProgram) AddSubroutine(name string, body RamStatement) {
	if _, exists := p.subroutines[name]; !exists {
		p.subOrder = append(p.subOrder, name)
	}
	p.subroutines[name] = body
}

// Subroutine returns the body registered under name, or nil.
func (p *RamProgram) Subroutine(name string) RamStatement {
	return p.subroutines[name]
}

// SubroutineNames returns every registered subroutine name in sorted order
// (spec.md §9 "the program exposes a sorted mapping from subroutine name
// to body").
func (p *RamProgram) SubroutineNames() []string {
	out := append([]string(nil), p.subOrder...)
	sort.Strings(out)
	return out
}
