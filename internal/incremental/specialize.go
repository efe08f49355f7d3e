package incremental

import (
	"github.com/taipan-snake/souffle/internal/ast"
	"github.com/taipan-snake/souffle/internal/namer"
	"github.com/taipan-snake/souffle/internal/rerr"
)

// InsertAtomClone builds the insertion specialisation for positive body
// position i (spec.md §4.6 "Insertion specialisation (positive atom i)").
func InsertAtomClone(cl *ast.Clause, i int) (*ast.Clause, error) {
	return specializeAtom(cl, i, namer.DeltaPlus, namer.DeltaPlusCount, Int64(0), Int64(1))
}

// DeleteAtomClone builds the deletion specialisation for positive body
// position i (spec.md §4.6 "Deletion specialisation").
func DeleteAtomClone(cl *ast.Clause, i int) (*ast.Clause, error) {
	return specializeAtom(cl, i, namer.DeltaMinus, namer.DeltaMinusCount, nil, Int64(-1))
}

// specializeAtom is the shared skeleton behind InsertAtomClone and
// DeleteAtomClone: retarget the head to the diff relation, drive body
// position i from its count auxiliary bounded appropriately, retarget
// every other positive body position to Δ_applied with a
// not-already-counted guard, and require negated atoms to be present in
// Δ_applied (spec.md §4.6 steps 1-7).
//
// prevBound is nil for deletion (spec.md: "position i → ΔRᵢ_count with
// prev>0, cur≤0" — only cur is exercised symmetrically here since the
// source clause already guarantees prev>0 via its own annotation
// columns); the sign of curThreshold selects the comparison applied to
// cur: > 0 (insertion, positive threshold) or ≤ 0 (deletion), in both
// cases against the constant 0.
func specializeAtom(cl *ast.Clause, i int, headRole, driveRole namer.Role, prevBound, curThreshold *int64) (*ast.Clause, error) {
	atomIdxs := AtomPositions(cl)
	if i < 0 || i >= len(atomIdxs) {
		return nil, rerr.New(rerr.SchemaViolation, "incremental specialisation: body position %d out of range", i)
	}
	negIdxs := NegationPositions(cl)

	cp := RetargetHead(cl, namer.Name(cl.Head.Name, headRole))

	driveBodyIdx := atomIdxs[i]
	driveAtom := cl.Body[driveBodyIdx].(*ast.Atom)
	driveName := driveAtom.Name
	cp = RetargetAtomAt(cp, driveBodyIdx, namer.Name(driveName, driveRole))

	if prevBound != nil {
		cp = AppendLiteral(cp, CountBound(PrevCountArg(driveAtom), ast.OpLE, *prevBound))
	}
	curOp := ast.OpGT
	if *curThreshold <= 0 {
		curOp = ast.OpLE
	}
	cp = AppendLiteral(cp, CountBound(CurrentCountArg(driveAtom), curOp, 0))

	notAlreadyPrev, notAlreadyCur := Int64(1), Int64(0)
	if headRole == namer.DeltaMinus {
		notAlreadyPrev, notAlreadyCur = nil, Int64(1)
	}
	notAlready := AnnotatedAtomFrom(driveAtom, driveName, notAlreadyPrev, notAlreadyCur)
	cp = AppendLiteral(cp, &ast.PositiveNegation{Atom: notAlready})

	for j, bj := range atomIdxs {
		if j == i {
			continue
		}
		atomJ := cl.Body[bj].(*ast.Atom)
		nameJ := atomJ.Name
		cp = RetargetAtomAt(cp, bj, namer.Name(nameJ, namer.DeltaApplied))
		if j < i {
			notFreshCount := &ast.Negation{Atom: AnnotatedAtomFrom(atomJ, namer.Name(nameJ, driveRole), nil, Int64(0))}
			alreadyExisted := &ast.ExistenceCheck{Atom: AnnotatedAtomFrom(atomJ, nameJ, notAlreadyPrev, notAlreadyCur)}
			cp = AppendLiteral(cp, &ast.Disjunction{LHS: notFreshCount, RHS: alreadyExisted})
		}
	}

	for _, nb := range negIdxs {
		negAtom := cl.Body[nb].(*ast.Negation).Atom
		cp = RetargetNegationAt(cp, nb, namer.Name(negAtom.Name, namer.DeltaApplied), true)
	}

	return ClearNegations(cp), nil
}

// InsertNegationClone builds the insertion specialisation driven by
// negation i being freshly deleted (spec.md §4.6 "Insertion specialisation
// (negation i)...").
func InsertNegationClone(cl *ast.Clause, i int) (*ast.Clause, error) {
	return specializeNegation(cl, i, namer.DeltaPlus, namer.DeltaMinusCount)
}

// DeleteNegationClone is the symmetric deletion-side negation
// specialisation.
func DeleteNegationClone(cl *ast.Clause, i int) (*ast.Clause, error) {
	return specializeNegation(cl, i, namer.DeltaMinus, namer.DeltaPlusCount)
}

func specializeNegation(cl *ast.Clause, i int, headRole, driveRole namer.Role) (*ast.Clause, error) {
	negIdxs := NegationPositions(cl)
	if i < 0 || i >= len(negIdxs) {
		return nil, rerr.New(rerr.SchemaViolation, "incremental specialisation: negation position %d out of range", i)
	}
	atomIdxs := AtomPositions(cl)

	cp := RetargetHead(cl, namer.Name(cl.Head.Name, headRole))

	driveBodyIdx := negIdxs[i]
	driveAtom := cl.Body[driveBodyIdx].(*ast.Negation).Atom
	driveName := driveAtom.Name
	// The negated atom's deletion/insertion drives this clone: require it
	// present in its own count auxiliary, converting the Negation into a
	// PositiveNegation scoped to the count relation.
	cp.Body[driveBodyIdx] = &ast.PositiveNegation{Atom: AnnotatedAtomFrom(driveAtom, namer.Name(driveName, driveRole), nil, nil)}

	for _, bj := range atomIdxs {
		atomJ := cl.Body[bj].(*ast.Atom)
		cp = RetargetAtomAt(cp, bj, namer.Name(atomJ.Name, namer.DeltaApplied))
	}

	for j, nb := range negIdxs {
		if j == i {
			continue
		}
		negAtom := cl.Body[nb].(*ast.Negation).Atom
		if j < i {
			notFreshCount := &ast.Negation{Atom: AnnotatedAtomFrom(negAtom, namer.Name(negAtom.Name, driveRole), nil, nil)}
			alreadyExisted := &ast.ExistenceCheck{Atom: AnnotatedAtomFrom(negAtom, negAtom.Name, Int64(1), Int64(0))}
			cp = AppendLiteral(cp, &ast.Disjunction{LHS: notFreshCount, RHS: alreadyExisted})
		} else {
			cp = RetargetNegationAt(cp, nb, namer.Name(negAtom.Name, namer.DeltaApplied), true)
		}
	}

	return ClearNegations(cp), nil
}
