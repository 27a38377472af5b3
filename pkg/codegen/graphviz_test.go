package codegen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeCriticalPathMarksBackwardReachability(t *testing.T) {
	// 2 inputs, 1 constructed node (depends on input 0), 1 terminal
	// (depends on the constructed node). Input 1 feeds nothing.
	nodeEdges := [][]Edge{{{Source: 0, Sign: 1, Shift: 0}}}
	termEdges := [][]Edge{{{Source: 2, Sign: 1, Shift: 0}}}

	critical := ComputeCriticalPath(2, nodeEdges, termEdges)
	require.True(t, critical[0], "input 0 feeds the terminal transitively")
	require.True(t, critical[2], "the constructed node is on the path")
	require.True(t, critical[3], "the terminal itself is always marked")
	require.False(t, critical[1], "input 1 is never referenced")
}

func TestLZDGraphDOTProducesValidDigraph(t *testing.T) {
	nodeEdges := [][]Edge{{{Source: 0, Sign: 1, Shift: -1}}}
	termEdges := [][]Edge{{{Source: 2, Sign: 1, Shift: 0}}}
	critical := ComputeCriticalPath(2, nodeEdges, termEdges)

	out, err := LZDGraphDOT(2, nodeEdges, termEdges, critical)
	require.NoError(t, err)
	require.Contains(t, out, "digraph")
	require.Contains(t, out, "in0")
	require.Contains(t, out, "out0")
	require.Contains(t, out, "purple")
}

func TestLZDGraphDOTUncriticalEdgeHasNoColorAttribute(t *testing.T) {
	nodeEdges := [][]Edge{{{Source: 1, Sign: 1, Shift: 0}}} // depends on input 1, not on the critical path
	termEdges := [][]Edge{{{Source: 2, Sign: 1, Shift: 0}}}
	// Mark only input 0 and the terminal critical, leaving the node/edge via input 1 uncolored.
	critical := map[int]bool{0: true, 3: true}

	out, err := LZDGraphDOT(2, nodeEdges, termEdges, critical)
	require.NoError(t, err)
	require.NotContains(t, out, "purple")
}
