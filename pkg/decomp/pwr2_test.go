package decomp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/oisee/shiftaddc/pkg/csd"
)

func TestNearestSignedPowerOfTwo(t *testing.T) {
	require.Equal(t, 0.0, nearestSignedPowerOfTwo(0))
	require.Equal(t, 0.5, nearestSignedPowerOfTwo(0.5))
	require.Equal(t, -1.0, nearestSignedPowerOfTwo(-0.9))
	require.Equal(t, 4.0, nearestSignedPowerOfTwo(3.1))
}

func TestPowerOfTwoFactorRowsRespectOperandCap(t *testing.T) {
	target := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
	approx := mat.NewDense(3, 3, []float64{
		1, 0.2, 0.1,
		0.2, 1, 0.1,
		0.1, 0.1, 1,
	})
	w := PowerOfTwoFactor(target, approx, 2)
	r, c := w.Dims()
	for i := 0; i < r; i++ {
		nonzero := 0
		for j := 0; j < c; j++ {
			if w.At(i, j) != 0 {
				nonzero++
			}
		}
		require.LessOrEqual(t, nonzero, 2)
	}
}

func TestPowerOfTwoFactorShapeMismatchPanics(t *testing.T) {
	target := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	approx := mat.NewDense(3, 2, []float64{1, 0, 0, 1, 0, 0})
	require.Panics(t, func() { PowerOfTwoFactor(target, approx, 2) })
}

func TestQuantizeEntryReconstructsApproximately(t *testing.T) {
	for _, v := range []float64{0.75, -0.375, 1.0, 0} {
		shifts := QuantizeEntry(v, 3)
		sum := 0.0
		for _, s := range shifts {
			term := math.Ldexp(1, s.Position)
			if !s.Positive {
				term = -term
			}
			sum += term
		}
		require.InDelta(t, v, sum, 0.05)
	}
}

func TestQuantizeEntryNeverExceedsOperandCap(t *testing.T) {
	shifts := QuantizeEntry(0.999999, 2)
	require.LessOrEqual(t, len(shifts), 2)
	for _, s := range shifts {
		require.IsType(t, csd.Shift{}, s)
	}
}
