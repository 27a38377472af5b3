package hir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewModulePushesOntoStack(t *testing.T) {
	b := NewBuilder()
	id := b.NewModule("top")
	top, err := b.Top()
	require.NoError(t, err)
	require.Equal(t, id, top.ID)
	require.Equal(t, "top", top.Name)
}

func TestPopModuleEmptyStackErrors(t *testing.T) {
	b := NewBuilder()
	_, err := b.PopModule()
	require.ErrorIs(t, err, ErrModuleStackEmpty)
}

func TestPopModuleReturnsAndClosesTop(t *testing.T) {
	b := NewBuilder()
	b.NewModule("m1")
	m, err := b.PopModule()
	require.NoError(t, err)
	require.Equal(t, "m1", m.Name)
	_, err = b.Top()
	require.ErrorIs(t, err, ErrModuleStackEmpty)
}

func TestNewSignalAutoNamesWhenEmpty(t *testing.T) {
	b := NewBuilder()
	b.NewModule("m")
	r1, err := b.NewSignal("", nil)
	require.NoError(t, err)
	r2, err := b.NewSignal("", nil)
	require.NoError(t, err)
	require.NotEqual(t, r1.Name(), r2.Name())
}

func TestNewModuleResetsNameCounter(t *testing.T) {
	b := NewBuilder()
	b.NewModule("m1")
	r1, err := b.NewSignal("", nil)
	require.NoError(t, err)

	b.NewModule("m2")
	r2, err := b.NewSignal("", nil)
	require.NoError(t, err)

	require.Equal(t, r1.Name(), r2.Name(), "signal auto-naming should reset per module")
}

func TestModuleLookupByID(t *testing.T) {
	b := NewBuilder()
	id := b.NewModule("m")
	require.Equal(t, "m", b.Module(id).Name)
	require.Nil(t, b.Module(ModuleID(99)))
}

func TestRegisterOutputSetsBuffer(t *testing.T) {
	b := NewBuilder()
	b.NewModule("m")
	w := 4
	r, err := b.NewSignal("out", &w)
	require.NoError(t, err)
	require.Equal(t, 0, r.sig().Buffer)
	b.RegisterOutput(r)
	require.Equal(t, 1, r.sig().Buffer)
}
