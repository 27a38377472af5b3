// Package codegen turns a decomposition result (P2D or LZD factor
// matrices) into an hir.Module, instantiating one FBlock per output row
// and wiring the per-stage pipeline the way ccgen.py's generators do.
package codegen

import (
	"fmt"

	"github.com/oisee/shiftaddc/pkg/csd"
	"github.com/oisee/shiftaddc/pkg/hir"
)

// fblockTerm is one signed, shifted contribution to an FBlock's output.
type fblockTerm struct {
	ref      hir.Ref
	position int
	positive bool
}

// FBlock builds the signal computing sum_i row[i] * inputs[i] at the
// fixed-point format (w total bits, d fractional bits), decomposing each
// nonzero row entry into its CSD shift terms and branching on the total
// term count exactly the way the original's gen_fblock does: a single
// term is a direct (possibly negated) connection, two terms pick
// add2/sub2 by sign, three route through the ternary adder, and four or
// more fold through a balanced accumulation tree (spec §4.7).
func FBlock(b *hir.Builder, inputs []hir.Ref, row []float64, w, d int) (hir.Ref, error) {
	if len(row) != len(inputs) {
		return hir.Ref{}, fmt.Errorf("codegen: fblock row length %d does not match %d inputs", len(row), len(inputs))
	}

	var terms []fblockTerm
	for i, coeff := range row {
		if coeff == 0 {
			continue
		}
		shifts, err := csd.ShiftsOf(coeff, w, d)
		if err != nil {
			return hir.Ref{}, fmt.Errorf("codegen: fblock row entry %d: %w", i, err)
		}
		for _, sh := range shifts {
			pos := sh.Position
			if pos < -d {
				// Clamp: a shift beyond the available fractional bits
				// would discard a term entirely; keep it at the least
				// significant representable position instead of
				// silently dropping precision the matrix asked for.
				pos = -d
			}
			terms = append(terms, fblockTerm{ref: inputs[i], position: pos, positive: sh.Positive})
		}
	}

	switch len(terms) {
	case 0:
		return b.Constant(0, w, d)
	case 1:
		return shiftedTerm(terms[0])
	case 2:
		a, err := shiftedTerm(terms[0])
		if err != nil {
			return hir.Ref{}, err
		}
		c, err := termShiftOnly(terms[1])
		if err != nil {
			return hir.Ref{}, err
		}
		if terms[1].positive {
			return a.Add(c)
		}
		return a.Sub(c)
	case 3:
		// add3's lead operand is added unconditionally (no sign slot of its
		// own), so the lead must be whichever term is positive; the other
		// two's raw signs go into sign1/sign2. Falls back to terms[2] as
		// lead when neither terms[0] nor terms[1] is positive, matching
		// gen_fblock's own fallback.
		leadIdx := 2
		switch {
		case terms[0].positive:
			leadIdx = 0
		case terms[1].positive:
			leadIdx = 1
		}
		others := make([]fblockTerm, 0, 2)
		for i, t := range terms {
			if i != leadIdx {
				others = append(others, t)
			}
		}
		base, err := termShiftOnly(terms[leadIdx])
		if err != nil {
			return hir.Ref{}, err
		}
		t1, err := termShiftOnly(others[0])
		if err != nil {
			return hir.Ref{}, err
		}
		t2, err := termShiftOnly(others[1])
		if err != nil {
			return hir.Ref{}, err
		}
		return base.Add3(t1, t2, flipSign(others[0].positive), flipSign(others[1].positive))
	default:
		refs := make([]hir.Ref, len(terms))
		for i, t := range terms {
			r, err := shiftedTerm(t)
			if err != nil {
				return hir.Ref{}, err
			}
			refs[i] = r
		}
		return hir.Acc(b, refs, false)
	}
}

func flipSign(positive bool) int {
	if positive {
		return 1
	}
	return -1
}

// shiftedTerm materializes a term as a single signal: shifted into
// position and complemented if its sign is negative.
func shiftedTerm(t fblockTerm) (hir.Ref, error) {
	s, err := t.ref.Shift(t.position, true)
	if err != nil {
		return hir.Ref{}, err
	}
	if t.positive {
		return s, nil
	}
	return s.Complement()
}

// termShiftOnly shifts a term into position without applying its sign;
// callers that fold sign into an add/sub/add3 operand selection use this
// instead of pre-negating the operand.
func termShiftOnly(t fblockTerm) (hir.Ref, error) {
	return t.ref.Shift(t.position, true)
}
