// Package nonrecursive implements C6, NonRecursiveLowering: translation
// of one relation's non-recursive clauses, including the incremental
// insertion/deletion specialisation that synthesises one clone per body
// position before handing each to C5 (spec.md §4.6).
//
// Grounded on mwelt-contki's Program.eval, which runs every non-recursive
// Rule.eval once per relation before entering the fixpoint loop; the
// incremental specialisation pass has no teacher analogue and follows
// IncrementalTransformer.cpp instead.
package nonrecursive

import (
	"fmt"

	"github.com/taipan-snake/souffle/internal/ast"
	"github.com/taipan-snake/souffle/internal/clause"
	"github.com/taipan-snake/souffle/internal/incremental"
	"github.com/taipan-snake/souffle/internal/ramir"
)

// Options configures one Lower call (spec.md §6).
type Options struct {
	Provenance    bool
	Incremental   bool
	SkipDedup     bool
	Profile       bool
	DebugReport   bool
	NumHeightCols int
}

// Lowering lowers non-recursive clauses through a shared C5 translator.
type Lowering struct {
	clauses *clause.Translator
}

func New(clauses *clause.Translator) *Lowering {
	return &Lowering{clauses: clauses}
}

func relRef(name string) ramir.RamRelationReference { return ramir.RamRelationReference{Name: name} }

// Lower translates relation's non-recursive clauses (spec.md §4.6). recur
// reports whether a clause belongs to a recursive SCC, so a relation's
// full clause list can be passed directly: recursive clauses are skipped
// here and handled by C7.
func (l *Lowering) Lower(relation string, clauses []*ast.Clause, recur func(*ast.Clause) bool, opts Options) (ramir.RamStatement, error) {
	var stmts []ramir.RamStatement
	for _, cl := range clauses {
		if recur(cl) {
			continue
		}
		if opts.Incremental {
			specialized, err := l.lowerIncrementalClause(cl, opts)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, specialized...)
			continue
		}
		stmt, err := l.translateOne(cl, opts)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}

	if len(stmts) == 0 {
		return nil, nil
	}
	body := ramir.Seq(stmts...)
	if opts.Profile {
		body = ramir.LogRelationTimer{Body: body, Message: fmt.Sprintf("@t-nonrecursive-%s", relation), Rel: relRef(relation)}
		body = ramir.Seq(body, ramir.LogSize{Rel: relRef(relation), Message: fmt.Sprintf("@c-nonrecursive-%s", relation)})
	}
	return body, nil
}

func (l *Lowering) translateOne(cl *ast.Clause, opts Options) (ramir.RamStatement, error) {
	stmt, err := l.clauses.Translate(cl, clause.Options{
		Provenance:       opts.Provenance,
		NumHeightCols:    opts.NumHeightCols,
		SkipDedup:        opts.SkipDedup,
		ExecutionVersion: 0,
	})
	if err != nil {
		return nil, err
	}
	if opts.DebugReport {
		stmt = ramir.DebugInfo{Body: stmt, Text: debugText(cl)}
	}
	return stmt, nil
}

func debugText(cl *ast.Clause) string {
	return fmt.Sprintf("clause for %s/%d", cl.Head.Name, cl.Head.Arity())
}

// lowerIncrementalClause classifies cl and synthesises one specialised
// clone per body position per spec.md §4.6. Reinsertion clauses are
// skipped in non-recursive lowering (see DESIGN.md open question: matches
// the source's commented-out handling).
func (l *Lowering) lowerIncrementalClause(cl *ast.Clause, opts Options) ([]ramir.RamStatement, error) {
	class, err := incremental.Classify(cl.Head)
	if err != nil {
		return nil, err
	}
	if class == incremental.ClassReinsertion {
		return nil, nil
	}

	atomIdxs := incremental.AtomPositions(cl)
	negIdxs := incremental.NegationPositions(cl)
	var out []ramir.RamStatement

	for i := range atomIdxs {
		var specialized *ast.Clause
		var err error
		if class == incremental.ClassInsertion {
			specialized, err = incremental.InsertAtomClone(cl, i)
		} else {
			specialized, err = incremental.DeleteAtomClone(cl, i)
		}
		if err != nil {
			return nil, err
		}
		stmt, err := l.translateOne(specialized, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, stmt)
	}

	for i := range negIdxs {
		var specialized *ast.Clause
		var err error
		if class == incremental.ClassInsertion {
			specialized, err = incremental.InsertNegationClone(cl, i)
		} else {
			specialized, err = incremental.DeleteNegationClone(cl, i)
		}
		if err != nil {
			return nil, err
		}
		stmt, err := l.translateOne(specialized, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, stmt)
	}

	return out, nil
}
