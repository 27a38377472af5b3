package hir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddForcedPortDeduplicates(t *testing.T) {
	b := NewBuilder()
	b.NewModule("m")
	a := newTestSignal(t, b, "a", 4)
	m, _ := b.Top()
	m.AddForcedPort(a.ID, PortIn)
	m.AddForcedPort(a.ID, PortOut) // second call for the same signal is a no-op
	require.Len(t, m.ForcedPorts, 1)
	require.Equal(t, PortIn, m.ForcedPorts[0].Dir)
}

func TestSignalLookupOutOfRange(t *testing.T) {
	b := NewBuilder()
	b.NewModule("m")
	m, _ := b.Top()
	require.Nil(t, m.Signal(SignalID(42)))
}

func TestBlockKindString(t *testing.T) {
	require.Equal(t, "add2", Add2.String())
	require.Equal(t, "add3", TernaryAdd.String())
	require.Equal(t, "unknown", BlockKind(999).String())
}
