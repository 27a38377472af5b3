package decomp

import (
	"github.com/oisee/shiftaddc/pkg/matrix"
)

// LZDConfig mirrors P2DConfig's shape, one struct per subsystem.
type LZDConfig struct {
	SQNRTarget float64
	MaxAdd     int
	Verbose    bool
}

// DefaultLZDConfig applies spec §6's stated defaults.
func DefaultLZDConfig() LZDConfig {
	return LZDConfig{SQNRTarget: 48, MaxAdd: 280}
}

// LZDResult is the structured, nullable decomposition result (spec §7
// ConvergenceFailure): Converged is false when the addition budget was
// exhausted before the SQNR target was met.
type LZDResult struct {
	Factors    []*matrix.Matrix // ordered 2-sparse node-construction factors
	Projection *matrix.Matrix   // final projection P_j
	SQNR       float64
	TotalAdds  int
	Converged  bool
}

// DecomposeLZD is the Go port of original_source's decomp_lzd: delegates
// to the dictionary-coded solver (dlzd) and assembles its result into the
// factor-chain shape the hardware generators consume (spec §4.4: "the
// pipeline concatenates W_list ∪ {P_j}").
func DecomposeLZD(m *matrix.Matrix, cfg LZDConfig) LZDResult {
	solved := dlzd(m.Dense(), cfg.SQNRTarget, cfg.MaxAdd)
	factors := make([]*matrix.Matrix, len(solved.Factors))
	for i, f := range solved.Factors {
		factors[i] = matrix.FromDense(f)
	}
	snr := sqnrOf(m.Dense(), solved.Approx)
	return LZDResult{
		Factors:    factors,
		Projection: matrix.FromDense(solved.Projection),
		SQNR:       snr,
		TotalAdds:  solved.Adds,
		Converged:  snr >= cfg.SQNRTarget,
	}
}

// FactorChain returns the factor sequence consumed by gen_lzd: the
// 2-sparse node-construction factors followed by the final projection.
func (r LZDResult) FactorChain() []*matrix.Matrix {
	return append(append([]*matrix.Matrix{}, r.Factors...), r.Projection)
}
