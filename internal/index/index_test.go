package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taipan-snake/souffle/internal/ast"
	"github.com/taipan-snake/souffle/internal/rerr"
)

func TestDefinitionPointFirstOccurrenceWins(t *testing.T) {
	idx := New()
	idx.AddVarRef("x", Location{Level: 0, Col: 0})
	idx.AddVarRef("x", Location{Level: 1, Col: 2})

	loc, err := idx.DefinitionPoint("x", &ast.Variable{Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, Location{Level: 0, Col: 0}, loc)
}

func TestDefinitionPointUngrounded(t *testing.T) {
	idx := New()
	_, err := idx.DefinitionPoint("y", &ast.Variable{Name: "y"})
	require.Error(t, err)
	assert.True(t, rerr.Is(err, rerr.SchemaViolation))
}

func TestAggregatorLevelTracking(t *testing.T) {
	idx := New()
	agg := &ast.Aggregator{Op: ast.AggCount, Body: &ast.Atom{Name: "r"}}
	idx.SetAggregatorLocation(agg, Location{Level: 3, Col: 0})

	assert.True(t, idx.IsAggregator(3))
	assert.False(t, idx.IsAggregator(0))

	loc, ok := idx.AggregatorLocation(agg)
	require.True(t, ok)
	assert.Equal(t, 3, loc.Level)
}
