// Package namer implements C1, RelationNamer: a pure function from a base
// relation name and a role tag to a deterministic auxiliary relation name
// (spec.md §4.1). The prefix alphabet is fixed as part of the external
// interface so a back-end compiler's relation tables are stable.
//
// Grounded on IncrementalTransformer.cpp's naming scheme; mwelt-contki has
// no equivalent (its relation names are plain string constants), so the
// concrete prefixes below follow that source directly.
package namer

// Role enumerates every auxiliary relation role spec.md §4.1 and §3
// invariant 4 name.
type Role int

const (
	Base Role = iota
	Delta
	New
	Indexed
	DeltaPlus
	DeltaMinus
	NewDeltaPlus
	NewDeltaMinus
	DeltaPlusApplied
	DeltaMinusApplied
	DeltaApplied
	DeltaPlusCount
	DeltaMinusCount
	LittleDeltaPlusCount
	LittleDeltaMinusCount
	LittleDeltaApplied
	LittleDeltaMinusApplied
	TempLittleDeltaApplied
)

var prefixes = map[Role]string{
	Base:                    "",
	Delta:                   "@delta_",
	New:                     "@new_",
	Indexed:                 "@indexed_",
	DeltaPlus:               "diff_plus@_",
	DeltaMinus:              "diff_minus@_",
	NewDeltaPlus:            "@new_diff_plus@_",
	NewDeltaMinus:           "@new_diff_minus@_",
	DeltaPlusApplied:        "diff_plus_applied@_",
	DeltaMinusApplied:       "diff_minus_applied@_",
	DeltaApplied:            "diff_applied@_",
	DeltaPlusCount:          "diff_plus_count@_",
	DeltaMinusCount:         "diff_minus_count@_",
	LittleDeltaPlusCount:    "@delta_diff_plus_count@_",
	LittleDeltaMinusCount:   "@delta_diff_minus_count@_",
	LittleDeltaApplied:      "@delta_diff_applied@_",
	LittleDeltaMinusApplied: "@delta_diff_minus_applied@_",
	TempLittleDeltaApplied:  "@temp_delta_diff_applied@_",
}

// Name deterministically derives the auxiliary relation name for base
// under role. Base relations (role Base) are returned unchanged.
func Name(base string, role Role) string {
	prefix, ok := prefixes[role]
	if !ok {
		panic("namer: unknown role")
	}
	if role == Base {
		return base
	}
	return prefix + base
}
