package csd

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SQNR computes the signal-to-quantization-noise ratio, in dB, between a
// target matrix and an approximation of the same shape:
//
//	10 * log10(‖target‖² / ‖target−approx‖²)
//
// Returns +Inf when target and approx are bit-identical, the success
// sentinel callers check for convergence.
func SQNR(target, approx *mat.Dense) float64 {
	tr, tc := target.Dims()
	ar, ac := approx.Dims()
	if tr != ar || tc != ac {
		panic("csd: SQNR dimension mismatch")
	}
	diff := mat.NewDense(tr, tc, nil)
	diff.Sub(target, approx)

	sigPower := frobeniusNormSquared(target)
	noisePower := frobeniusNormSquared(diff)
	if noisePower == 0 {
		return math.Inf(1)
	}
	return 10 * math.Log10(sigPower/noisePower)
}

func frobeniusNormSquared(m *mat.Dense) float64 {
	r, c := m.Dims()
	sum := 0.0
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, m)
		sum += floats.Dot(row, row)
	}
	return sum
}

// AdderCount returns the minimal number of adders needed to realize a
// sparse matrix w in the shift-add interpretation: one addition per extra
// non-zero CSD term beyond the first, summed over rows. totalBits and
// fracBits fix the grid used to CSD-encode each entry.
func AdderCount(w *mat.Dense, totalBits, fracBits int) int {
	r, c := w.Dims()
	adds := 0
	for i := 0; i < r; i++ {
		weight := 0
		for j := 0; j < c; j++ {
			v := w.At(i, j)
			if v == 0 {
				continue
			}
			shifts, err := ShiftsOf(v, totalBits, fracBits)
			if err != nil {
				// Value out of range for the grid still costs at least
				// one term; treat it as weight 1 rather than fail the
				// whole count (adder_count is a reporting metric only).
				weight++
				continue
			}
			weight += len(shifts)
		}
		if weight > 1 {
			adds += weight - 1
		}
	}
	return adds
}
