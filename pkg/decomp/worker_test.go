package decomp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oisee/shiftaddc/pkg/matrix"
)

func TestSlicingWorkerPoolFindsBestConvergedSlicing(t *testing.T) {
	m := matrix.Identity(4)
	candidates := GenerateSlicings(4, 4)
	wp := NewSlicingWorkerPool(2)
	cfg := DefaultP2DConfig()
	best := wp.RunSlicingSearch(m, candidates, cfg, false)
	require.NotNil(t, best)
	require.True(t, best.Result.Converged)
	require.Equal(t, best, wp.Best())
}

func TestNewSlicingWorkerPoolDefaultsWorkerCount(t *testing.T) {
	wp := NewSlicingWorkerPool(0)
	require.Greater(t, wp.NumWorkers, 0)
}

func TestSlicingWorkerPoolReturnsNilWhenNothingConverges(t *testing.T) {
	m := matrix.New(2, 2, []float64{0.1111, 0.2222, 0.3333, 0.4444})
	cfg := DefaultP2DConfig()
	cfg.SQNRTarget = 1000
	cfg.MaxIters = 1
	wp := NewSlicingWorkerPool(1)
	best := wp.RunSlicingSearch(m, [][]int{{2}}, cfg, false)
	require.Nil(t, best)
}
