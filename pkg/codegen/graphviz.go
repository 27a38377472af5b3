package codegen

import (
	"fmt"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"
)

// lzdNode wraps a gonum graph node ID with the display attributes
// gen_lzd's dropped print_graph visualization assigned: teal for inputs
// and terminals, point-shaped for inserted buffers.
type lzdNode struct {
	id    int64
	label string
	kind  string // "input", "node", "buffer", "terminal"
}

func (n lzdNode) ID() int64 { return n.id }

func (n lzdNode) Attributes() []encoding.Attribute {
	attrs := []encoding.Attribute{{Key: "label", Value: n.label}}
	switch n.kind {
	case "input", "terminal":
		attrs = append(attrs, encoding.Attribute{Key: "color", Value: "teal"}, encoding.Attribute{Key: "style", Value: "filled"})
	case "buffer":
		attrs = append(attrs, encoding.Attribute{Key: "shape", Value: "point"})
	}
	return attrs
}

// lzdEdge tags an edge purple when it lies on the graph's critical path,
// the other attribute print_graph computed: the set of nodes reachable
// backward from the terminals (see ComputeCriticalPath).
type lzdEdge struct {
	f, t     lzdNode
	critical bool
}

func (e lzdEdge) From() graph.Node         { return e.f }
func (e lzdEdge) To() graph.Node           { return e.t }
func (e lzdEdge) ReversedEdge() graph.Edge { return lzdEdge{e.t, e.f, e.critical} }

func (e lzdEdge) Attributes() []encoding.Attribute {
	if e.critical {
		return []encoding.Attribute{{Key: "color", Value: "purple"}}
	}
	return nil
}

// ComputeCriticalPath marks every node reachable backward from the
// terminal outputs (the original's definition of the graph's critical
// path for coloring purposes): true for every node index that feeds,
// directly or transitively, at least one terminal.
func ComputeCriticalPath(numInputs int, nodeEdges [][]Edge, termEdges [][]Edge) map[int]bool {
	critical := make(map[int]bool)
	base := numInputs + len(nodeEdges)

	var mark func(idx int)
	mark = func(idx int) {
		if critical[idx] {
			return
		}
		critical[idx] = true
		if idx < numInputs || idx >= base {
			return
		}
		for _, e := range nodeEdges[idx-numInputs] {
			mark(e.Source)
		}
	}
	for i := range termEdges {
		critical[base+i] = true
		for _, e := range termEdges[i] {
			mark(e.Source)
		}
	}
	return critical
}

// LZDGraphDOT renders the dependency graph GeneratePipelineLZD walked
// (inputs, dictionary nodes, and projection terminals) as Graphviz DOT
// text, supplementing the original's dropped print_graph debug
// visualization with the pack's own graph/encoding/dot support. A node is
// on the critical path when critical[idx] is set, the equivalent of the
// original's backward-reachability-from-terminals coloring pass.
func LZDGraphDOT(numInputs int, nodeEdges [][]Edge, termEdges [][]Edge, critical map[int]bool) (string, error) {
	g := simple.NewDirectedGraph()

	nodeAt := make(map[int]lzdNode)
	nodeFor := func(idx int, kind, label string) lzdNode {
		if n, ok := nodeAt[idx]; ok {
			return n
		}
		n := lzdNode{id: int64(idx), label: label, kind: kind}
		nodeAt[idx] = n
		g.AddNode(n)
		return n
	}
	sourceNode := func(idx int) lzdNode {
		if idx < numInputs {
			return nodeFor(idx, "input", fmt.Sprintf("in%d", idx))
		}
		return nodeFor(idx, "node", fmt.Sprintf("n%d", idx))
	}

	for i := 0; i < numInputs; i++ {
		nodeFor(i, "input", fmt.Sprintf("in%d", i))
	}
	for i, edges := range nodeEdges {
		idx := numInputs + i
		n := nodeFor(idx, "node", fmt.Sprintf("n%d", idx))
		for _, e := range edges {
			src := sourceNode(e.Source)
			g.SetEdge(lzdEdge{f: src, t: n, critical: critical[e.Source] && critical[idx]})
		}
	}
	base := numInputs + len(nodeEdges)
	for i, edges := range termEdges {
		idx := base + i
		n := nodeFor(idx, "terminal", fmt.Sprintf("out%d", i))
		for _, e := range edges {
			src := sourceNode(e.Source)
			g.SetEdge(lzdEdge{f: src, t: n, critical: critical[e.Source] && critical[idx]})
		}
	}

	data, err := dot.Marshal(g, "lzd", "", "  ")
	if err != nil {
		return "", fmt.Errorf("codegen: marshaling LZD graph: %w", err)
	}
	return string(data), nil
}
