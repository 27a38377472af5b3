package codegen

import (
	"fmt"

	"github.com/oisee/shiftaddc/pkg/decomp"
	"github.com/oisee/shiftaddc/pkg/hir"
)

// GeneratePipelineP2D instantiates the hardware pipeline a P2DResult
// describes: input split into per-slice column ranges, each slice's
// factor chain realized as a sequence of FBlock layers over a zero-padded
// length-`rows` vector, and the per-slice final vectors accumulated
// row-wise into a registered output vector (ported from ccgen.py's
// gen_p2d).
func GeneratePipelineP2D(b *hir.Builder, input []hir.Ref, result decomp.P2DResult, sliceWidths []int, w, d, rows int) ([]hir.Ref, error) {
	if len(result.Factors) != len(sliceWidths) {
		return nil, fmt.Errorf("codegen: p2d result has %d slices, widths list has %d", len(result.Factors), len(sliceWidths))
	}

	sliceVecs := make([][]hir.Ref, len(sliceWidths))
	start := 0
	for s, sw := range sliceWidths {
		if start+sw > len(input) {
			return nil, fmt.Errorf("codegen: slice widths exceed input length %d", len(input))
		}
		sliceInput := input[start : start+sw]
		start += sw

		v := make([]hir.Ref, rows)
		for i := 0; i < rows; i++ {
			if i < sw {
				v[i] = sliceInput[i]
				continue
			}
			zero, err := b.Constant(0, 1, 0)
			if err != nil {
				return nil, err
			}
			v[i] = zero
		}

		chain := result.Factors[s]
		for _, factor := range chain[1:] { // chain[0] is the identity seed, no hardware for it
			fr, _ := factor.Dims()
			newV := make([]hir.Ref, fr)
			for r := 0; r < fr; r++ {
				out, err := FBlock(b, v, factor.Row(r), w, d)
				if err != nil {
					return nil, fmt.Errorf("codegen: p2d slice %d layer row %d: %w", s, r, err)
				}
				newV[r] = out
			}
			v = newV
		}
		sliceVecs[s] = v
	}

	outputs := make([]hir.Ref, rows)
	for r := 0; r < rows; r++ {
		perRow := make([]hir.Ref, len(sliceVecs))
		for s := range sliceVecs {
			perRow[s] = sliceVecs[s][r]
		}
		acc, err := hir.Acc(b, perRow, false)
		if err != nil {
			return nil, fmt.Errorf("codegen: p2d output row %d accumulation: %w", r, err)
		}
		b.RegisterOutput(acc)
		outputs[r] = acc
	}
	return outputs, nil
}
