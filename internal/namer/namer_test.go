package namer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameDeterministic(t *testing.T) {
	assert.Equal(t, "path", Name("path", Base))
	assert.Equal(t, "@delta_path", Name("path", Delta))
	assert.Equal(t, Name("path", Delta), Name("path", Delta))
}

func TestNameDistinctRolesDistinctNames(t *testing.T) {
	seen := make(map[string]Role)
	roles := []Role{
		Base, Delta, New, Indexed, DeltaPlus, DeltaMinus, NewDeltaPlus, NewDeltaMinus,
		DeltaPlusApplied, DeltaMinusApplied, DeltaApplied, DeltaPlusCount, DeltaMinusCount,
		LittleDeltaPlusCount, LittleDeltaMinusCount, LittleDeltaApplied, LittleDeltaMinusApplied,
		TempLittleDeltaApplied,
	}
	for _, r := range roles {
		n := Name("R", r)
		if other, ok := seen[n]; ok {
			t.Fatalf("role %v and %v both produced name %q", r, other, n)
		}
		seen[n] = r
	}
}

func TestNamePanicsOnUnknownRole(t *testing.T) {
	assert.Panics(t, func() { Name("R", Role(9999)) })
}
