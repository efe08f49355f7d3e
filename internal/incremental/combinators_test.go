package incremental

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taipan-snake/souffle/internal/ast"
)

func annotatedHead(name string, prev, cur int64) *ast.Atom {
	return &ast.Atom{Name: name, Args: []ast.Argument{
		&ast.Variable{Name: "x"},
		&ast.IterationNumber{},
		&ast.Constant{Index: prev},
		&ast.Constant{Index: cur},
	}}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name       string
		prev, cur  int64
		want       Class
	}{
		{"reinsertion", 1, 1, ClassReinsertion},
		{"insertion", 0, 1, ClassInsertion},
		{"deletion", 1, -1, ClassDeletion},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Classify(annotatedHead("r", tc.prev, tc.cur))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClassifyMissingColumns(t *testing.T) {
	_, err := Classify(&ast.Atom{Name: "r", Args: []ast.Argument{&ast.Variable{Name: "x"}}})
	assert.Error(t, err)
}

func TestClassifyNonConstantAnnotation(t *testing.T) {
	head := &ast.Atom{Name: "r", Args: []ast.Argument{
		&ast.Variable{Name: "x"}, &ast.IterationNumber{}, &ast.Variable{Name: "p"}, &ast.Constant{Index: 1},
	}}
	_, err := Classify(head)
	assert.Error(t, err)
}

func TestAtomAndNegationPositions(t *testing.T) {
	cl := &ast.Clause{
		Head: &ast.Atom{Name: "r"},
		Body: []ast.Literal{
			&ast.Atom{Name: "a"},
			&ast.Negation{Atom: &ast.Atom{Name: "b"}},
			&ast.Atom{Name: "c"},
		},
	}
	assert.Equal(t, []int{0, 2}, AtomPositions(cl))
	assert.Equal(t, []int{1}, NegationPositions(cl))
}

func TestRetargetHeadAndAtom(t *testing.T) {
	cl := &ast.Clause{
		Head: &ast.Atom{Name: "r"},
		Body: []ast.Literal{&ast.Atom{Name: "a", Args: []ast.Argument{&ast.Variable{Name: "x"}}}},
	}
	retargeted := RetargetHead(cl, "new_r")
	assert.Equal(t, "new_r", retargeted.Head.Name)
	assert.Equal(t, "r", cl.Head.Name, "original clause untouched")

	atomRetargeted := RetargetAtomAt(cl, 0, "delta_a")
	assert.Equal(t, "delta_a", atomRetargeted.Body[0].(*ast.Atom).Name)
	assert.Equal(t, "a", cl.Body[0].(*ast.Atom).Name, "original clause untouched")
}

func TestAppendPrependClearNegations(t *testing.T) {
	cl := &ast.Clause{
		Head: &ast.Atom{Name: "r"},
		Body: []ast.Literal{
			&ast.Atom{Name: "a"},
			&ast.Negation{Atom: &ast.Atom{Name: "b"}},
		},
	}
	appended := AppendLiteral(cl, &ast.Atom{Name: "c"})
	assert.Len(t, appended.Body, 3)
	assert.Equal(t, "c", appended.Body[2].(*ast.Atom).Name)

	prepended := PrependLiteral(cl, &ast.Atom{Name: "z"})
	assert.Equal(t, "z", prepended.Body[0].(*ast.Atom).Name)

	cleared := ClearNegations(cl)
	assert.Len(t, cleared.Body, 1)
	assert.Equal(t, "a", cleared.Body[0].(*ast.Atom).Name)
}

func TestAnnotatedAtomFromCorrelatesColumns(t *testing.T) {
	atom := &ast.Atom{Name: "edge", Args: []ast.Argument{
		&ast.Variable{Name: "x"}, &ast.Variable{Name: "y"},
		&ast.IterationNumber{}, &ast.Constant{Index: 0}, &ast.Constant{Index: 1},
	}}
	got := AnnotatedAtomFrom(atom, "delta_edge", Int64(1), Int64(0))
	require.Len(t, got.Args, 5)
	assert.Equal(t, "x", got.Args[0].(*ast.Variable).Name)
	assert.Equal(t, "y", got.Args[1].(*ast.Variable).Name)
	assert.IsType(t, &ast.UnnamedVariable{}, got.Args[2])
	assert.Equal(t, int64(1), got.Args[3].(*ast.Constant).Index)
	assert.Equal(t, int64(0), got.Args[4].(*ast.Constant).Index)
}

func TestAnnotatedAtomIsWildcard(t *testing.T) {
	got := AnnotatedAtom("edge", 2, Int64(1), nil)
	require.Len(t, got.Args, 5)
	assert.IsType(t, &ast.UnnamedVariable{}, got.Args[0])
	assert.IsType(t, &ast.UnnamedVariable{}, got.Args[1])
	assert.Equal(t, int64(1), got.Args[3].(*ast.Constant).Index)
	assert.IsType(t, &ast.UnnamedVariable{}, got.Args[4])
}

func TestCloneAtomAsPreservesBindings(t *testing.T) {
	atom := &ast.Atom{Name: "edge", Args: []ast.Argument{&ast.Variable{Name: "x"}, &ast.Constant{Index: 3}}}
	cloned := CloneAtomAs(atom, "delta_edge")
	assert.Equal(t, "delta_edge", cloned.Name)
	assert.Equal(t, "x", cloned.Args[0].(*ast.Variable).Name)
	assert.Equal(t, int64(3), cloned.Args[1].(*ast.Constant).Index)
}
