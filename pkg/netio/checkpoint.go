// Package netio handles the decomposition pipeline's filesystem
// boundary: progress checkpoints and CSV matrix import/export.
package netio

import (
	"encoding/gob"
	"os"
)

// Checkpoint holds a P2D slicing search's best-so-far state: best slicing,
// its adder total, slicings tried, iteration, SQNR target and whether the
// run converged. It carries no LZD state, and nothing restarts a search
// from it; the CLI writes one and prints one back. Adapted from the teacher's pkg/result/checkpoint.go: same
// gob-encoded save/load pair, repurposed from a Z80 instruction-sequence
// search's rule list to a slicing search's best-so-far state.
type Checkpoint struct {
	BestSlicing    []int
	BestTotalAdds  int
	SlicingsTried  int
	Iteration      int
	SQNRTarget     float64
	Converged      bool
}

func init() {
	gob.Register(Checkpoint{})
}

// SaveCheckpoint writes decomposition progress to path.
func SaveCheckpoint(path string, ckpt *Checkpoint) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(ckpt)
}

// LoadCheckpoint restores decomposition progress from path.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var ckpt Checkpoint
	if err := gob.NewDecoder(f).Decode(&ckpt); err != nil {
		return nil, err
	}
	return &ckpt, nil
}
