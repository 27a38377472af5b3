package emit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oisee/shiftaddc/pkg/hir"
)

func buildAdderModule(t *testing.T) (*hir.Builder, *hir.Module) {
	t.Helper()
	b := hir.NewBuilder()
	b.NewModule("adder")
	w := 8
	a, err := b.NewSignal("a", &w)
	require.NoError(t, err)
	c, err := b.NewSignal("c", &w)
	require.NoError(t, err)
	sum, err := a.Add(c)
	require.NoError(t, err)
	b.RegisterOutput(sum)
	m, err := b.PopModule()
	require.NoError(t, err)
	require.NoError(t, hir.DetermineWidths(m))
	return b, m
}

func TestRenderModuleEntityAndArchitecture(t *testing.T) {
	b, m := buildAdderModule(t)
	src, err := RenderModule(b, m)
	require.NoError(t, err)
	require.Contains(t, src, "entity adder is")
	require.Contains(t, src, "end entity adder;")
	require.Contains(t, src, "architecture behavioral of adder is")
	require.Contains(t, src, "clk : in std_logic")
	require.Contains(t, src, "a : in std_logic_vector(7 downto 0);")
	require.Contains(t, src, "c : in std_logic_vector(7 downto 0);")
}

func TestRenderModuleEmitsAddExpression(t *testing.T) {
	b, m := buildAdderModule(t)
	src, err := RenderModule(b, m)
	require.NoError(t, err)
	require.Contains(t, src, "resize(signed(a), 8) + resize(signed(c), 8)")
}

func TestRenderModuleEmitsSyncProcessOnlyWhenBuffered(t *testing.T) {
	b, m := buildAdderModule(t)
	src, err := RenderModule(b, m)
	require.NoError(t, err)
	require.Contains(t, src, "sync: process(clk)")
	require.Contains(t, src, "_b0 <=")
}

func TestRenderModuleOmitsSyncProcessWithoutBuffers(t *testing.T) {
	b := hir.NewBuilder()
	b.NewModule("plain")
	w := 4
	a, err := b.NewSignal("a", &w)
	require.NoError(t, err)
	c, err := b.NewSignal("c", &w)
	require.NoError(t, err)
	_, err = a.Add(c)
	require.NoError(t, err)
	m, err := b.PopModule()
	require.NoError(t, err)
	require.NoError(t, hir.DetermineWidths(m))

	src, err := RenderModule(b, m)
	require.NoError(t, err)
	require.False(t, strings.Contains(src, "sync: process"))
}

func TestBlockExprUnknownKindErrors(t *testing.T) {
	b := hir.NewBuilder()
	b.NewModule("m")
	w := 4
	a, err := b.NewSignal("a", &w)
	require.NoError(t, err)
	out, err := b.NewSignal("out", &w)
	require.NoError(t, err)
	m, err := b.PopModule()
	require.NoError(t, err)

	blk := &hir.Block{Kind: hir.ExternalHDL, Name: "ext0", Inputs: []hir.SignalID{a.ID}, Outputs: []hir.SignalID{out.ID}}
	_, err = blockExpr(m, blk)
	require.Error(t, err)
}

func TestShiftExprDirections(t *testing.T) {
	require.Equal(t, "std_logic_vector(shift_left(unsigned(a), 2))", shiftExpr("a", 2, false, 8))
	require.Equal(t, "std_logic_vector(shift_right(signed(a), 2))", shiftExpr("a", -2, true, 8))
	require.Equal(t, "std_logic_vector(shift_right(unsigned(a), 2))", shiftExpr("a", -2, false, 8))
}
