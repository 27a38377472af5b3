package decomp

import (
	"math"
	"math/rand/v2"

	"github.com/oisee/shiftaddc/pkg/matrix"
)

// sliceCost scores a slicing candidate: a diverged (non-converging)
// candidate is penalized heavily, matching the teacher's Cost function
// shape (a large per-mismatch penalty dominating a secondary size term).
func sliceCost(res P2DResult) int {
	if !res.Converged {
		return 1_000_000 + res.Iters
	}
	return res.TotalAdds
}

// SliceMutator applies random mutations to a slice-width vector: split a
// slice in two, merge two adjacent slices, or grow/shrink one slice at the
// expense of its neighbor. Adapted from the teacher's pkg/stoke/mutator.go
// Mutator, whose weighted replace/swap/delete/insert/change-immediate
// moves become split/merge/grow/shrink moves over a different domain
// object (instruction sequences there, slice-width vectors here).
type SliceMutator struct {
	rng      *rand.Rand
	maxWidth int
}

// NewSliceMutator creates a mutator bounding any single slice to maxWidth
// columns.
func NewSliceMutator(rng *rand.Rand, maxWidth int) *SliceMutator {
	return &SliceMutator{rng: rng, maxWidth: maxWidth}
}

// Mutate returns a new slicing derived from seq by one random move. The
// input is never modified.
func (m *SliceMutator) Mutate(seq []int) []int {
	switch m.rng.IntN(3) {
	case 0:
		return m.split(seq)
	case 1:
		return m.merge(seq)
	default:
		return m.shift(seq)
	}
}

func (m *SliceMutator) split(seq []int) []int {
	candidates := make([]int, 0, len(seq))
	for i, w := range seq {
		if w >= 2 {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return copyInts(seq)
	}
	i := candidates[m.rng.IntN(len(candidates))]
	left := 1 + m.rng.IntN(seq[i]-1)
	out := make([]int, 0, len(seq)+1)
	out = append(out, seq[:i]...)
	out = append(out, left, seq[i]-left)
	out = append(out, seq[i+1:]...)
	return out
}

func (m *SliceMutator) merge(seq []int) []int {
	if len(seq) < 2 {
		return copyInts(seq)
	}
	i := m.rng.IntN(len(seq) - 1)
	merged := seq[i] + seq[i+1]
	if merged > m.maxWidth {
		return copyInts(seq)
	}
	out := make([]int, 0, len(seq)-1)
	out = append(out, seq[:i]...)
	out = append(out, merged)
	out = append(out, seq[i+2:]...)
	return out
}

func (m *SliceMutator) shift(seq []int) []int {
	if len(seq) < 2 {
		return copyInts(seq)
	}
	out := copyInts(seq)
	i := m.rng.IntN(len(out) - 1)
	if out[i] > 1 && out[i+1] < m.maxWidth {
		out[i]--
		out[i+1]++
	} else if out[i+1] > 1 && out[i] < m.maxWidth {
		out[i+1]--
		out[i]++
	}
	return out
}

func copyInts(seq []int) []int {
	out := make([]int, len(seq))
	copy(out, seq)
	return out
}

// SliceOptChain is a Metropolis-Hastings search over slicing vectors,
// adapted from the teacher's pkg/stoke/mcmc.go Chain: same accept/anneal
// structure, mutating slicing vectors instead of instruction sequences
// and scoring with sliceCost/P2D convergence instead of Cost/ExhaustiveCheck.
type SliceOptChain struct {
	current     []int
	best        []int
	cost        int
	bestCost    int
	temperature float64
	rng         *rand.Rand
	mutator     *SliceMutator
	m           *matrix.Matrix
	base        P2DConfig

	Accepted int64
	Rejected int64
}

// NewSliceOptChain seeds a chain from an initial slicing.
func NewSliceOptChain(m *matrix.Matrix, base P2DConfig, initial []int, temperature float64, seed uint64) *SliceOptChain {
	rng := rand.New(rand.NewPCG(seed, seed^0xC5D1C5D1))
	_, cols := m.Dims()
	cfg := base
	cfg.Slices = initial
	cost := sliceCost(DecomposeP2D(m, cfg))
	return &SliceOptChain{
		current:     copyInts(initial),
		best:        copyInts(initial),
		cost:        cost,
		bestCost:    cost,
		temperature: temperature,
		rng:         rng,
		mutator:     NewSliceMutator(rng, cols),
		m:           m,
		base:        base,
	}
}

// Step performs one MCMC iteration over the slicing space.
func (c *SliceOptChain) Step(decay float64) bool {
	candidate := c.mutator.Mutate(c.current)
	cfg := c.base
	cfg.Slices = candidate
	newCost := sliceCost(DecomposeP2D(c.m, cfg))
	delta := newCost - c.cost

	accepted := false
	if delta <= 0 {
		accepted = true
	} else if c.temperature > 0 {
		prob := math.Exp(-float64(delta) / c.temperature)
		if c.rng.Float64() < prob {
			accepted = true
		}
	}

	if accepted {
		c.current = candidate
		c.cost = newCost
		c.Accepted++
		if newCost < c.bestCost {
			c.best = copyInts(candidate)
			c.bestCost = newCost
		}
	} else {
		c.Rejected++
	}
	c.temperature *= decay
	return accepted
}

// Best returns the best slicing found and its cost.
func (c *SliceOptChain) Best() ([]int, int) {
	return c.best, c.bestCost
}
