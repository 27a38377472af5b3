package decomp

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/oisee/shiftaddc/pkg/csd"
)

// PowerOfTwoFactor is the concrete body of the power-of-two factor finder
// P2D's solver loop calls once per slice per iteration (spec §4.3's
// "external" dp2d contract). Given the current slice target and the
// running approximation (both r×c), it returns a square r×r matrix w such
// that target ≈ w·approx, built row by row via greedy matching pursuit:
// each row picks up to e source rows of approx, each weighted by the
// single signed power-of-two coefficient that best reduces the residual.
//
// This realizes the "operand cap E" from spec §4.3 as row sparsity: a row
// of w has at most e non-zero entries, each itself a one-term CSD value,
// so a row of w contributes at most e shift-add terms downstream in
// gen_fblock — matching its documented assumption that P2D factor rows
// never exceed E accumulated terms.
func PowerOfTwoFactor(target, approx *mat.Dense, e int) *mat.Dense {
	r, c := target.Dims()
	ar, ac := approx.Dims()
	if ar != r || ac != c {
		panic("decomp: PowerOfTwoFactor shape mismatch between target and approx")
	}
	w := mat.NewDense(r, r, nil)

	approxRows := make([][]float64, r)
	for j := 0; j < r; j++ {
		approxRows[j] = make([]float64, c)
		mat.Row(approxRows[j], j, approx)
	}

	for i := 0; i < r; i++ {
		residual := make([]float64, c)
		mat.Row(residual, i, target)

		used := make(map[int]bool, e)
		for term := 0; term < e; term++ {
			best := -1
			bestCoef := 0.0
			bestReduction := 0.0
			for j := 0; j < r; j++ {
				if used[j] {
					continue
				}
				norm := floats.Dot(approxRows[j], approxRows[j])
				if norm == 0 {
					continue
				}
				raw := floats.Dot(residual, approxRows[j]) / norm
				coef := nearestSignedPowerOfTwo(raw)
				if coef == 0 {
					continue
				}
				reduction := reductionScore(residual, approxRows[j], coef)
				if reduction > bestReduction {
					bestReduction = reduction
					best = j
					bestCoef = coef
				}
			}
			if best < 0 {
				break
			}
			used[best] = true
			w.Set(i, best, bestCoef)
			for k := 0; k < c; k++ {
				residual[k] -= bestCoef * approxRows[best][k]
			}
		}
	}
	return w
}

func reductionScore(residual, row []float64, coef float64) float64 {
	before := floats.Dot(residual, residual)
	trial := make([]float64, len(residual))
	copy(trial, residual)
	for k := range trial {
		trial[k] -= coef * row[k]
	}
	after := floats.Dot(trial, trial)
	return before - after
}

// nearestSignedPowerOfTwo returns the value ±2^k closest to v in log space,
// restricted to a realistic shift range; 0 if v rounds to nothing
// meaningful (|v| below the smallest representable magnitude).
func nearestSignedPowerOfTwo(v float64) float64 {
	if v == 0 {
		return 0
	}
	const minShift, maxShift = -31, 31
	sign := 1.0
	if v < 0 {
		sign = -1.0
	}
	shift := int(math.Round(math.Log2(math.Abs(v))))
	if shift < minShift {
		return 0
	}
	if shift > maxShift {
		shift = maxShift
	}
	return sign * math.Ldexp(1, shift)
}

// QuantizeEntry re-expresses a real coefficient as a sum of at most e
// signed powers of two via the same greedy matching pursuit, used when an
// individual matrix entry (rather than a whole row) must be capped to e
// CSD-style terms; returned as (position, positive) pairs compatible with
// csd.Shift.
func QuantizeEntry(v float64, e int) []csd.Shift {
	var shifts []csd.Shift
	residual := v
	for term := 0; term < e && residual != 0; term++ {
		coef := nearestSignedPowerOfTwo(residual)
		if coef == 0 {
			break
		}
		shifts = append(shifts, csd.Shift{
			Position: int(math.Round(math.Log2(math.Abs(coef)))),
			Positive: coef > 0,
		})
		residual -= coef
	}
	return shifts
}
