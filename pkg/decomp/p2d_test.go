package decomp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oisee/shiftaddc/pkg/matrix"
)

func TestDecomposeP2DConvergesOnIdentity(t *testing.T) {
	m := matrix.Identity(4)
	cfg := DefaultP2DConfig()
	cfg.Slices = []int{4}
	res := DecomposeP2D(m, cfg)
	require.True(t, res.Converged)
	require.GreaterOrEqual(t, res.SQNR, cfg.SQNRTarget)
	require.Len(t, res.Factors, 1)
}

func TestDecomposeP2DRespectsMaxIters(t *testing.T) {
	// An unreachable target (SQNR target far beyond what E=2 greedy
	// matching pursuit can realize in a handful of iterations) should
	// report a convergence failure rather than loop forever.
	m := matrix.New(2, 2, []float64{0.123456, 0.654321, -0.918273, 0.0001})
	cfg := DefaultP2DConfig()
	cfg.Slices = []int{2}
	cfg.SQNRTarget = 500
	cfg.MaxIters = 2
	res := DecomposeP2D(m, cfg)
	require.False(t, res.Converged)
	require.Greater(t, res.Iters, cfg.MaxIters)
}

func TestDecomposeP2DSliceWidthMismatchReturnsZeroResult(t *testing.T) {
	m := matrix.New(2, 3, []float64{1, 2, 3, 4, 5, 6})
	cfg := DefaultP2DConfig()
	cfg.Slices = []int{1, 1} // sums to 2, not 3
	res := DecomposeP2D(m, cfg)
	require.False(t, res.Converged)
	require.Nil(t, res.Factors)
}

func TestGenerateSlicingsSumToTotal(t *testing.T) {
	slicings := GenerateSlicings(4, 4)
	require.NotEmpty(t, slicings)
	for _, s := range slicings {
		sum := 0
		for _, w := range s {
			require.GreaterOrEqual(t, w, 1)
			require.LessOrEqual(t, w, 4)
			sum += w
		}
		require.Equal(t, 4, sum)
	}
}

func TestGenerateSlicingsIncludesSingleSlice(t *testing.T) {
	slicings := GenerateSlicings(3, 3)
	found := false
	for _, s := range slicings {
		if len(s) == 1 && s[0] == 3 {
			found = true
		}
	}
	require.True(t, found, "expected the trivial single-slice [3] among candidates")
}
