package hir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetermineWidthsPropagatesPassThroughDeps(t *testing.T) {
	b := NewBuilder()
	m := b.Module(b.NewModule("m"))
	w := 8
	a, err := b.NewSignal("a", &w)
	require.NoError(t, err)
	out, err := b.NewSignal("out", nil)
	require.NoError(t, err)
	out.sig().Deps = append(out.sig().Deps, WidthDep{Other: a.ID, Delta: 0})

	require.NoError(t, DetermineWidths(m))
	wOut, err := out.Width()
	require.NoError(t, err)
	require.Equal(t, 8, wOut)
}

func TestDetermineWidthsSumsMultipleDeps(t *testing.T) {
	b := NewBuilder()
	m := b.Module(b.NewModule("m"))
	wa, wc := 3, 5
	a, err := b.NewSignal("a", &wa)
	require.NoError(t, err)
	c, err := b.NewSignal("c", &wc)
	require.NoError(t, err)
	out, err := b.NewSignal("out", nil)
	require.NoError(t, err)
	out.sig().Deps = append(out.sig().Deps,
		WidthDep{Other: a.ID, Delta: 0},
		WidthDep{Other: c.ID, Delta: 0},
	)

	require.NoError(t, DetermineWidths(m))
	w, err := out.Width()
	require.NoError(t, err)
	require.Equal(t, 8, w)
}

func TestDetermineWidthsIndeterminateErrors(t *testing.T) {
	b := NewBuilder()
	m := b.Module(b.NewModule("m"))
	a, err := b.NewSignal("lonely", nil)
	require.NoError(t, err)
	a.sig().Deps = append(a.sig().Deps, WidthDep{Other: SignalID(99), Delta: 0})

	err = DetermineWidths(m)
	require.Error(t, err)
	var werr *ErrWidthIndeterminate
	require.ErrorAs(t, err, &werr)
	require.Equal(t, "lonely", werr.Signal)
}

func TestDetermineWidthsChainsThroughTransitiveDeps(t *testing.T) {
	b := NewBuilder()
	m := b.Module(b.NewModule("m"))
	wa := 4
	a, err := b.NewSignal("a", &wa)
	require.NoError(t, err)
	mid, err := b.NewSignal("mid", nil)
	require.NoError(t, err)
	mid.sig().Deps = append(mid.sig().Deps, WidthDep{Other: a.ID, Delta: 1})
	out, err := b.NewSignal("out", nil)
	require.NoError(t, err)
	out.sig().Deps = append(out.sig().Deps, WidthDep{Other: mid.ID, Delta: 2})

	require.NoError(t, DetermineWidths(m))
	w, err := out.Width()
	require.NoError(t, err)
	require.Equal(t, 7, w) // 4 + 1 + 2
}
