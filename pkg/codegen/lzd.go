package codegen

import (
	"fmt"
	"math"

	"github.com/oisee/shiftaddc/pkg/decomp"
	"github.com/oisee/shiftaddc/pkg/hir"
)

// LZDConfig controls the hardware pipeline generated from an LZD
// decomposition.
type LZDConfig struct {
	// FixShiftBug selects between the original generator's documented
	// behavior (false, default) — both operands of a combining adder are
	// shifted by the *first* edge's shift amount — and the corrected
	// behavior (true) where each operand is shifted by its own edge's
	// amount. Design Notes flags this as a likely bug in the original
	// rather than a deliberate convention, so it is surfaced here as an
	// explicit opt-in instead of being silently reproduced or silently
	// fixed.
	FixShiftBug bool
}

// Edge is one dependency of a dictionary node or projection output on an
// earlier node: source index, sign, and shift amount, carried explicitly
// instead of as an ambiguous 2-tuple/4-tuple (the original's gen_lzd
// stores `edges.append([na, ne])`, a 2-tuple, yet later indexes a[3] for
// the shift — a real inconsistency this type resolves by constructing
// the edge correctly in the first place).
type Edge struct {
	Source int
	Sign   int
	Shift  int
}

// extractEdges decodes a sparse row of the factor/projection matrix
// (each nonzero entry a single signed power of two, per the LZD solver's
// node-construction contract) into its dependency edges.
func extractEdges(row []float64) []Edge {
	var edges []Edge
	for i, v := range row {
		if v == 0 {
			continue
		}
		sign := 1
		if v < 0 {
			sign = -1
		}
		shift := int(math.Round(math.Log2(math.Abs(v))))
		edges = append(edges, Edge{Source: i, Sign: sign, Shift: shift})
	}
	return edges
}

// GeneratePipelineLZD instantiates the hardware pipeline an LZDResult
// describes, following ccgen.py's gen_lzd five-step structure: dependency
// extraction from the factor chain, layer assignment by longest path from
// the inputs, terminal-node discovery from the projection matrix, buffer
// insertion to realign operands that skip layers, and finally per-node
// code emission.
func GeneratePipelineLZD(b *hir.Builder, input []hir.Ref, result decomp.LZDResult, w, d int, cfg LZDConfig) ([]hir.Ref, error) {
	c := len(input)

	// Step 1: dependency extraction.
	nodeEdges := make([][]Edge, len(result.Factors))
	for i, f := range result.Factors {
		nodeEdges[i] = extractEdges(f.Row(0))
	}

	// Step 2: layer assignment — inputs sit at layer 0, each constructed
	// node one layer past the deepest edge it depends on.
	layers := make([]int, c+len(result.Factors))
	for i := 0; i < c; i++ {
		layers[i] = 0
	}
	for i, edges := range nodeEdges {
		maxL := 0
		for _, e := range edges {
			if layers[e.Source] > maxL {
				maxL = layers[e.Source]
			}
		}
		layers[c+i] = maxL + 1
	}

	// Step 3: terminal-node discovery from the projection rows.
	pRows, _ := result.Projection.Dims()
	termEdges := make([][]Edge, pRows)
	outputLayer := 0
	for i := 0; i < pRows; i++ {
		termEdges[i] = extractEdges(result.Projection.Row(i))
		for _, e := range termEdges[i] {
			if layers[e.Source]+1 > outputLayer {
				outputLayer = layers[e.Source] + 1
			}
		}
	}

	sigs := make([]hir.Ref, c, c+len(result.Factors))
	copy(sigs, input)

	// Step 4+5: buffer insertion and code emission, one dictionary node
	// per layer-ordered pass.
	bufCache := make(map[[2]int]hir.Ref)
	for i, edges := range nodeEdges {
		targetLayer := layers[c+i]
		out, err := combineNode(b, sigs, layers, bufCache, edges, targetLayer, cfg)
		if err != nil {
			return nil, fmt.Errorf("codegen: lzd node %d: %w", i, err)
		}
		sigs = append(sigs, out)
	}

	outputs := make([]hir.Ref, pRows)
	for i, edges := range termEdges {
		out, err := combineNode(b, sigs, layers, bufCache, edges, outputLayer, cfg)
		if err != nil {
			return nil, fmt.Errorf("codegen: lzd output %d: %w", i, err)
		}
		b.RegisterOutput(out)
		outputs[i] = out
	}
	return outputs, nil
}

// delayedSignal returns the signal realizing edge source's value as seen
// from targetLayer, inserting a chain of register copies when the
// source's native layer is more than one layer behind. Reuses an
// already-built chain for the same (source, targetLayer) pair, matching
// the original's same-source-same-layer buffer-reuse dictionary.
func delayedSignal(b *hir.Builder, sigs []hir.Ref, layers []int, cache map[[2]int]hir.Ref, source, targetLayer int) (hir.Ref, error) {
	need := targetLayer - 1 - layers[source]
	if need <= 0 {
		return sigs[source], nil
	}
	key := [2]int{source, targetLayer}
	if cached, ok := cache[key]; ok {
		return cached, nil
	}
	cur := sigs[source]
	for k := 0; k < need; k++ {
		next, err := cur.Copy("")
		if err != nil {
			return hir.Ref{}, err
		}
		b.RegisterOutput(next)
		cur = next
	}
	cache[key] = cur
	return cur, nil
}

// combineNode realizes one 2-sparse (or degenerate 1-sparse) dependency
// list as a single output signal, applying FixShiftBug's choice of
// per-operand vs. shared-first-edge shift amounts.
func combineNode(b *hir.Builder, sigs []hir.Ref, layers []int, cache map[[2]int]hir.Ref, edges []Edge, targetLayer int, cfg LZDConfig) (hir.Ref, error) {
	if len(edges) == 0 {
		return b.Constant(0, 1, 0)
	}
	terms := make([]hir.Ref, len(edges))
	for i, e := range edges {
		src, err := delayedSignal(b, sigs, layers, cache, e.Source, targetLayer)
		if err != nil {
			return hir.Ref{}, err
		}
		shift := e.Shift
		if !cfg.FixShiftBug {
			shift = edges[0].Shift
		}
		shifted, err := src.Shift(shift, true)
		if err != nil {
			return hir.Ref{}, err
		}
		if e.Sign < 0 {
			shifted, err = shifted.Complement()
			if err != nil {
				return hir.Ref{}, err
			}
		}
		terms[i] = shifted
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return hir.Acc(b, terms, false)
}
