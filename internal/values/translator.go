// Package values implements C3, ValueTranslator: lowering of an AST
// argument expression to a RamExpression using the ValueIndex (spec.md
// §4.3).
//
// Grounded on mwelt-contki's Atom.applyMapping, which switches over
// Variable vs. Constant to build a ground Atom from a Mu binding —
// generalised here to the full Argument variant list and to compile-time
// TupleElement locations instead of runtime term substitution.
package values

import (
	"github.com/taipan-snake/souffle/internal/ast"
	"github.com/taipan-snake/souffle/internal/index"
	"github.com/taipan-snake/souffle/internal/ramir"
	"github.com/taipan-snake/souffle/internal/rerr"
)

// Translator lowers Argument nodes for one clause, consulting idx for
// variable/record/aggregator locations.
type Translator struct {
	idx *index.Index
}

func New(idx *index.Index) *Translator {
	return &Translator{idx: idx}
}

// Translate lowers a single argument (spec.md §4.3).
func (t *Translator) Translate(arg ast.Argument) (ramir.RamExpression, error) {
	switch a := arg.(type) {
	case *ast.Variable:
		loc, err := t.idx.DefinitionPoint(a.Name, a)
		if err != nil {
			return nil, err
		}
		return ramir.TupleElement{Level: loc.Level, Col: loc.Col}, nil

	case *ast.UnnamedVariable:
		return ramir.UndefValue{}, nil

	case *ast.Constant:
		return ramir.Number{Value: a.Index}, nil

	case *ast.IntrinsicFunctor:
		args, err := t.TranslateAll(a.Args)
		if err != nil {
			return nil, err
		}
		return ramir.IntrinsicOperator{Op: a.Op, Args: args}, nil

	case *ast.UserFunctor:
		args, err := t.TranslateAll(a.Args)
		if err != nil {
			return nil, err
		}
		return ramir.UserDefinedOperator{Name: a.Name, Type: string(a.ReturnType), Args: args}, nil

	case *ast.Counter:
		return ramir.AutoIncrement{}, nil

	case *ast.IterationNumber:
		return ramir.IterationNumber{}, nil

	case *ast.RecordInit:
		args, err := t.TranslateAll(a.Args)
		if err != nil {
			return nil, err
		}
		return ramir.PackRecord{Args: args}, nil

	case *ast.Aggregator:
		loc, ok := t.idx.AggregatorLocation(a)
		if !ok {
			return nil, rerr.NewAt(rerr.SchemaViolation, a.Loc, "aggregator result has no assigned location")
		}
		return ramir.TupleElement{Level: loc.Level, Col: loc.Col}, nil

	case *ast.SubroutineArgument:
		return ramir.SubroutineArgument{Index: a.Index}, nil

	default:
		return nil, rerr.NewAt(rerr.SchemaViolation, rerr.SourceLoc{}, "unsupported argument node %T", arg)
	}
}

// TranslateAll lowers a slice of arguments in order, stopping at the first
// error.
func (t *Translator) TranslateAll(args []ast.Argument) ([]ramir.RamExpression, error) {
	out := make([]ramir.RamExpression, len(args))
	for i, a := range args {
		v, err := t.Translate(a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
