package decomp

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// nodeFingerprint is a coarse, fixed-size signature of a node's
// contribution vector, used to deduplicate candidate combinations during
// the dictionary search below. Adapted from the teacher's
// pkg/search/fingerprint.go FingerprintMap: there, a fixed-size byte
// array fingerprinted an instruction sequence's effect on machine state to
// prune duplicate search branches; here the same fixed-size-key/bucket
// idea fingerprints a node's coefficient vector to prune duplicate
// dictionary entries instead.
type nodeFingerprint [8]byte

func fingerprintOf(v []float64) nodeFingerprint {
	var fp nodeFingerprint
	for i := 0; i < len(fp) && i < len(v); i++ {
		q := int8(math.Round(clamp(v[i]*16, -127, 127)))
		fp[i] = byte(q)
	}
	return fp
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// fingerprintDict tracks which node fingerprints already exist, the way
// FingerprintMap tracked which instruction-effect fingerprints had already
// been enumerated — here it lets dlzd skip re-deriving a combination that
// reproduces a node already in the dictionary.
type fingerprintDict struct {
	seen map[nodeFingerprint]int // fingerprint -> node index
}

func newFingerprintDict() *fingerprintDict {
	return &fingerprintDict{seen: make(map[nodeFingerprint]int)}
}

func (d *fingerprintDict) lookup(v []float64) (int, bool) {
	idx, ok := d.seen[fingerprintOf(v)]
	return idx, ok
}

func (d *fingerprintDict) add(v []float64, idx int) {
	d.seen[fingerprintOf(v)] = idx
}

// lzdShifts is the candidate shift magnitudes tried per combination step;
// kept small since each additional candidate multiplies search cost.
var lzdShifts = []int{0, -1, -2, 1}

// LZDSolveResult holds the dictionary-coded factor chain the global LZD
// decomposition produces: an ordered list of 2-sparse node-construction
// factors plus the final projection.
type LZDSolveResult struct {
	Approx    *mat.Dense // r×c reconstruction
	Factors   []*mat.Dense
	Projection *mat.Dense
	Adds      int
}

// dlzd is the concrete body of the external dictionary-coded 2-sparse
// factor search (original_source's computationcoding.lzdecomp.fastlzdecomp,
// consumed opaquely by decomp_lzd). It greedily grows a pool of
// intermediate nodes — starting from the c unit input vectors — each new
// node formed as a signed-power-of-two combination of two earlier nodes,
// picking at each step the combination that most reduces the aggregate
// residual against every row of M once projected. Stops when the
// reconstructed SQNR meets sqnrTarget or the addition budget is spent.
func dlzd(m *mat.Dense, sqnrTarget float64, maxAdd int) LZDSolveResult {
	rows, cols := m.Dims()
	nodes := make([][]float64, cols)
	for j := 0; j < cols; j++ {
		v := make([]float64, cols)
		v[j] = 1
		nodes[j] = v
	}
	dict := newFingerprintDict()
	for j, v := range nodes {
		dict.add(v, j)
	}

	var factors []*mat.Dense
	adds := 0

	targetRows := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		targetRows[i] = make([]float64, cols)
		mat.Row(targetRows[i], i, m)
	}

	for adds < maxAdd {
		proj, _ := fitProjection(targetRows, nodes, 2)
		approx := reconstruct(proj, nodes, rows, cols)
		snr := sqnrOf(m, approx)
		if snr >= sqnrTarget {
			return LZDSolveResult{Approx: approx, Factors: factors, Projection: proj, Adds: adds}
		}

		na, nb, sa, sb, va, vb, gain := bestCombination(nodes, targetRows)
		if na < 0 {
			break // no combination improves the fit further
		}
		newVec := make([]float64, cols)
		for k := range newVec {
			newVec[k] = sa*math.Ldexp(1, va)*nodes[na][k] + sb*math.Ldexp(1, vb)*nodes[nb][k]
		}
		if _, exists := dict.lookup(newVec); exists {
			break // the dictionary has converged onto itself; stop rather than loop
		}
		_ = gain

		n := len(nodes)
		row := mat.NewDense(1, n, nil)
		row.Set(0, na, sa*math.Ldexp(1, va))
		row.Set(0, nb, sb*math.Ldexp(1, vb))
		factors = append(factors, row)
		nodes = append(nodes, newVec)
		dict.add(newVec, len(nodes)-1)
		adds++
	}

	proj, _ := fitProjection(targetRows, nodes, 2)
	approx := reconstruct(proj, nodes, rows, cols)
	return LZDSolveResult{Approx: approx, Factors: factors, Projection: proj, Adds: adds}
}

// bestCombination tries every pair of existing nodes with a small set of
// signed power-of-two scales and returns the one whose addition to the
// dictionary most reduces the best-fit residual against every target row.
func bestCombination(nodes [][]float64, targetRows [][]float64) (na, nb int, sa, sb float64, va, vb int, gain float64) {
	na, nb = -1, -1
	baseline := residualAfterFit(targetRows, nodes, 2)
	n := len(nodes)
	cols := len(nodes[0])
	for a := 0; a < n; a++ {
		for b := a; b < n; b++ {
			for _, pa := range lzdShifts {
				for _, pb := range lzdShifts {
					for _, signA := range []float64{1, -1} {
						for _, signB := range []float64{1, -1} {
							trial := make([]float64, cols)
							ca := signA * math.Ldexp(1, pa)
							cb := signB * math.Ldexp(1, pb)
							for k := 0; k < cols; k++ {
								trial[k] = ca*nodes[a][k] + cb*nodes[b][k]
							}
							trialNodes := append(append([][]float64{}, nodes...), trial)
							residual := residualAfterFit(targetRows, trialNodes, 2)
							g := baseline - residual
							if g > gain {
								gain = g
								na, nb = a, b
								sa, sb = signA, signB
								va, vb = pa, pb
							}
						}
					}
				}
			}
		}
	}
	return
}

// fitProjection finds, for each target row, the e-term matching-pursuit
// best fit over the current node dictionary and assembles it into a
// projection matrix.
func fitProjection(targetRows [][]float64, nodes [][]float64, e int) (*mat.Dense, int) {
	rows := len(targetRows)
	n := len(nodes)
	cols := len(targetRows[0])
	proj := mat.NewDense(rows, n, nil)
	for i := 0; i < rows; i++ {
		residual := make([]float64, cols)
		copy(residual, targetRows[i])
		used := make(map[int]bool, e)
		for t := 0; t < e; t++ {
			best := -1
			bestCoef := 0.0
			bestReduction := 0.0
			for j := 0; j < n; j++ {
				if used[j] {
					continue
				}
				norm := floats.Dot(nodes[j], nodes[j])
				if norm == 0 {
					continue
				}
				raw := floats.Dot(residual, nodes[j]) / norm
				coef := nearestSignedPowerOfTwo(raw)
				if coef == 0 {
					continue
				}
				r := reductionScore(residual, nodes[j], coef)
				if r > bestReduction {
					bestReduction = r
					best = j
					bestCoef = coef
				}
			}
			if best < 0 {
				break
			}
			used[best] = true
			proj.Set(i, best, bestCoef)
			for k := range residual {
				residual[k] -= bestCoef * nodes[best][k]
			}
		}
	}
	return proj, rows
}

func residualAfterFit(targetRows [][]float64, nodes [][]float64, e int) float64 {
	proj, rows := fitProjection(targetRows, nodes, e)
	cols := len(targetRows[0])
	sum := 0.0
	for i := 0; i < rows; i++ {
		approxRow := make([]float64, cols)
		for j := 0; j < len(nodes); j++ {
			c := proj.At(i, j)
			if c == 0 {
				continue
			}
			for k := 0; k < cols; k++ {
				approxRow[k] += c * nodes[j][k]
			}
		}
		for k := 0; k < cols; k++ {
			d := targetRows[i][k] - approxRow[k]
			sum += d * d
		}
	}
	return sum
}

func reconstruct(proj *mat.Dense, nodes [][]float64, rows, cols int) *mat.Dense {
	out := mat.NewDense(rows, cols, nil)
	n := len(nodes)
	for i := 0; i < rows; i++ {
		for j := 0; j < n; j++ {
			c := proj.At(i, j)
			if c == 0 {
				continue
			}
			for k := 0; k < cols; k++ {
				out.Set(i, k, out.At(i, k)+c*nodes[j][k])
			}
		}
	}
	return out
}

func sqnrOf(target, approx *mat.Dense) float64 {
	r, c := target.Dims()
	sig, noise := 0.0, 0.0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			t := target.At(i, j)
			d := t - approx.At(i, j)
			sig += t * t
			noise += d * d
		}
	}
	if noise == 0 {
		return math.Inf(1)
	}
	return 10 * math.Log10(sig/noise)
}
