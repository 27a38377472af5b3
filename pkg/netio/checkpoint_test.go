package netio

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveLoadCheckpointRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ckpt.gob")
	want := &Checkpoint{
		BestSlicing:   []int{2, 2, 4},
		BestTotalAdds: 7,
		SlicingsTried: 42,
		Iteration:     3,
		SQNRTarget:    48,
		Converged:     true,
	}
	require.NoError(t, SaveCheckpoint(path, want))

	got, err := LoadCheckpoint(path)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestLoadCheckpointMissingFileErrors(t *testing.T) {
	_, err := LoadCheckpoint(filepath.Join(t.TempDir(), "does-not-exist.gob"))
	require.Error(t, err)
}
