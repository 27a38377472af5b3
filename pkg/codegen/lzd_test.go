package codegen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oisee/shiftaddc/pkg/decomp"
	"github.com/oisee/shiftaddc/pkg/hir"
	"github.com/oisee/shiftaddc/pkg/matrix"
)

func TestExtractEdgesDecodesSignedPowersOfTwo(t *testing.T) {
	edges := extractEdges([]float64{0.5, 0, -0.25})
	require.Len(t, edges, 2)
	require.Equal(t, 0, edges[0].Source)
	require.Equal(t, 1, edges[0].Sign)
	require.Equal(t, -1, edges[0].Shift)
	require.Equal(t, 2, edges[1].Source)
	require.Equal(t, -1, edges[1].Sign)
	require.Equal(t, -2, edges[1].Shift)
}

func TestExtractEdgesAllZeroRowIsEmpty(t *testing.T) {
	require.Empty(t, extractEdges([]float64{0, 0}))
}

func TestGeneratePipelineLZDOnIdentity(t *testing.T) {
	m := matrix.Identity(2)
	cfg := decomp.DefaultLZDConfig()
	cfg.SQNRTarget = 40
	cfg.MaxAdd = 4
	res := decomp.DecomposeLZD(m, cfg)
	require.True(t, res.Converged)

	b := hir.NewBuilder()
	b.NewModule("lzd_pipeline")
	input := []hir.Ref{newInput(t, b, "in0", 8), newInput(t, b, "in1", 8)}

	outputs, err := GeneratePipelineLZD(b, input, res, 8, 4, LZDConfig{FixShiftBug: false})
	require.NoError(t, err)
	require.Len(t, outputs, 2)
	for _, out := range outputs {
		sig := b.Module(out.Mod).Signal(out.ID)
		require.Equal(t, 1, sig.Buffer)
	}
}

func TestGeneratePipelineLZDFixShiftBugToggleBothRun(t *testing.T) {
	m := matrix.Identity(2)
	cfg := decomp.DefaultLZDConfig()
	cfg.SQNRTarget = 40
	cfg.MaxAdd = 4
	res := decomp.DecomposeLZD(m, cfg)

	for _, fix := range []bool{false, true} {
		b := hir.NewBuilder()
		b.NewModule("lzd_pipeline")
		input := []hir.Ref{newInput(t, b, "in0", 8), newInput(t, b, "in1", 8)}
		_, err := GeneratePipelineLZD(b, input, res, 8, 4, LZDConfig{FixShiftBug: fix})
		require.NoError(t, err)
	}
}

func TestDelayedSignalReusesCacheForSameSourceAndLayer(t *testing.T) {
	b := hir.NewBuilder()
	b.NewModule("m")
	in := newInput(t, b, "a", 8)
	sigs := []hir.Ref{in}
	layers := []int{0}
	cache := make(map[[2]int]hir.Ref)

	first, err := delayedSignal(b, sigs, layers, cache, 0, 3)
	require.NoError(t, err)
	second, err := delayedSignal(b, sigs, layers, cache, 0, 3)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID, "same (source, targetLayer) should reuse the cached register chain")
}

func TestDelayedSignalNoBufferNeeded(t *testing.T) {
	b := hir.NewBuilder()
	b.NewModule("m")
	in := newInput(t, b, "a", 8)
	sigs := []hir.Ref{in}
	layers := []int{0}
	cache := make(map[[2]int]hir.Ref)

	out, err := delayedSignal(b, sigs, layers, cache, 0, 1)
	require.NoError(t, err)
	require.Equal(t, in.ID, out.ID)
}
