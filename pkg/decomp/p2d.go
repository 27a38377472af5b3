// Package decomp implements the P2D (sliced power-of-two) and LZD
// (Lempel-Ziv-inspired) matrix decomposition engines.
package decomp

import (
	"gonum.org/v1/gonum/mat"

	"github.com/oisee/shiftaddc/pkg/csd"
	"github.com/oisee/shiftaddc/pkg/matrix"
)

// P2DConfig mirrors the teacher's flag-driven Config-struct style
// (search.Config, stoke.Config): one struct per subsystem, defaults
// applied by the caller rather than a global singleton.
type P2DConfig struct {
	E           int     // operand cap per factor row, 2 or 3
	Slices      []int   // column widths per slice, must sum to M's column count
	SQNRTarget  float64 // dB, default 48
	MaxIters    int     // P_max, default 200
	TotalBits   int     // W
	FracBits    int     // D
	Verbose     bool
}

// DefaultP2DConfig returns the spec's stated defaults (§6 configuration
// surface): SQNR target 48dB, iteration cap 200.
func DefaultP2DConfig() P2DConfig {
	return P2DConfig{E: 2, SQNRTarget: 48, MaxIters: 200, TotalBits: 8, FracBits: 4}
}

// P2DResult is the structured, nullable result spec §7 requires for
// ConvergenceFailure: a zero Result with Converged == false signals the
// iteration cap was exceeded rather than panicking or returning an error,
// since exceeding P_max is an expected, retry-able outcome, not a fatal
// programmer error.
type P2DResult struct {
	Factors   [][]*matrix.Matrix // per slice, ordered factor chain (identity-seeded)
	SQNR      float64
	TotalAdds int
	Iters     int
	Converged bool
}

// DecomposeP2D is the Go port of original_source's decomp_p2d: for each
// slice it repeatedly calls the power-of-two factor finder, accumulates
// the running approximation, and stops once the concatenated approximation
// meets the SQNR target or the iteration cap is exceeded.
func DecomposeP2D(m *matrix.Matrix, cfg P2DConfig) P2DResult {
	rows, _ := m.Dims()
	slices, err := matrix.SliceColumns(m, cfg.Slices)
	if err != nil {
		return P2DResult{}
	}

	factors := make([][]*matrix.Matrix, len(slices))
	approxes := make([]*matrix.Matrix, len(slices))
	for s, slice := range slices {
		_, sc := slice.Dims()
		_ = sc
		factors[s] = []*matrix.Matrix{matrix.Identity(rows)}
		approxes[s] = identityLike(rows, sliceCols(slice))
	}

	totalAdds := 0
	p := 0
	snr := 0.0
	for snr < cfg.SQNRTarget {
		p++
		for s, slice := range slices {
			w := PowerOfTwoFactor(slice.Dense(), approxes[s].Dense(), cfg.E)
			wm := matrix.FromDense(w)
			approxes[s] = matrix.Mul(wm, approxes[s])
			factors[s] = append(factors[s], wm)
			totalAdds += csd.AdderCount(w, cfg.TotalBits, cfg.FracBits)
		}
		full, err := matrix.ConcatColumns(approxes)
		if err != nil {
			return P2DResult{}
		}
		snr = csd.SQNR(m.Dense(), full.Dense())
		if p > cfg.MaxIters {
			return P2DResult{Iters: p, Converged: false}
		}
	}
	return P2DResult{Factors: factors, SQNR: snr, TotalAdds: totalAdds, Iters: p, Converged: true}
}

func sliceCols(m *matrix.Matrix) int {
	_, c := m.Dims()
	return c
}

// identityLike mirrors np.eye(rows, cols): ones on the leading diagonal up
// to min(rows, cols), zero elsewhere — the "padded identity" seed for a
// slice's running approximation (spec §4.3 step 2).
func identityLike(rows, cols int) *matrix.Matrix {
	d := mat.NewDense(rows, cols, nil)
	n := rows
	if cols < n {
		n = cols
	}
	for i := 0; i < n; i++ {
		d.Set(i, i, 1)
	}
	return matrix.FromDense(d)
}

// GenerateSlicings supplements the dropped generate_all_slicings helper:
// a complete implementation needs a way to produce candidate slice-width
// vectors summing to tot with every entry in [1, maxWidth], not just
// consume one handed in on the command line. Ported from
// original_source/decomp.py's BFS-style enumeration.
func GenerateSlicings(tot, maxWidth int) [][]int {
	var done [][]int
	factors := make([]int, maxWidth)
	for i := range factors {
		factors[i] = i + 1
	}

	type state []int
	queue := make([]state, 0, maxWidth)
	for _, f := range factors {
		if f == tot {
			done = append(done, []int{f})
			continue
		}
		queue = append(queue, state{f})
	}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		sum := 0
		for _, v := range s {
			sum += v
		}
		for _, f := range factors {
			if sum+f > tot {
				continue
			}
			x := make(state, len(s)+1)
			copy(x, s)
			x[len(s)] = f
			if sum+f == tot {
				done = append(done, []int(x))
			} else {
				queue = append(queue, x)
			}
		}
	}
	return done
}
