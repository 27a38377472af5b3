package decomp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oisee/shiftaddc/pkg/matrix"
)

func TestDecomposeLZDConvergesOnIdentity(t *testing.T) {
	m := matrix.Identity(2)
	cfg := DefaultLZDConfig()
	cfg.SQNRTarget = 40
	cfg.MaxAdd = 4
	res := DecomposeLZD(m, cfg)
	require.True(t, res.Converged)
	require.GreaterOrEqual(t, res.SQNR, cfg.SQNRTarget)
}

func TestDecomposeLZDReportsBudgetExhaustion(t *testing.T) {
	m := matrix.New(2, 2, []float64{0.123456, 0.654321, -0.918273, 0.0001})
	cfg := DefaultLZDConfig()
	cfg.SQNRTarget = 1000 // unreachable within the tiny budget below
	cfg.MaxAdd = 1
	res := DecomposeLZD(m, cfg)
	require.False(t, res.Converged)
	require.LessOrEqual(t, res.TotalAdds, cfg.MaxAdd)
}

func TestFactorChainAppendsProjectionLast(t *testing.T) {
	res := LZDResult{
		Factors:    []*matrix.Matrix{matrix.Identity(1)},
		Projection: matrix.Identity(1),
	}
	chain := res.FactorChain()
	require.Len(t, chain, 2)
	require.Same(t, res.Projection, chain[1])
}
