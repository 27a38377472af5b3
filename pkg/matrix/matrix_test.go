package matrix

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdentity(t *testing.T) {
	m := Identity(3)
	r, c := m.Dims()
	require.Equal(t, 3, r)
	require.Equal(t, 3, c)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			require.Equal(t, want, m.At(i, j))
		}
	}
}

func TestMul(t *testing.T) {
	a := New(2, 2, []float64{1, 2, 3, 4})
	b := Identity(2)
	out := Mul(a, b)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			require.Equal(t, a.At(i, j), out.At(i, j))
		}
	}
}

func TestSliceColumnsThenConcatRoundTrips(t *testing.T) {
	m := New(2, 5, []float64{
		1, 2, 3, 4, 5,
		6, 7, 8, 9, 10,
	})
	slices, err := SliceColumns(m, []int{2, 3})
	require.NoError(t, err)
	require.Len(t, slices, 2)

	r0, c0 := slices[0].Dims()
	require.Equal(t, 2, r0)
	require.Equal(t, 2, c0)
	require.Equal(t, 3.0, slices[1].At(0, 0))

	rejoined, err := ConcatColumns(slices)
	require.NoError(t, err)
	rr, rc := rejoined.Dims()
	require.Equal(t, 2, rr)
	require.Equal(t, 5, rc)
	for i := 0; i < 2; i++ {
		for j := 0; j < 5; j++ {
			require.Equal(t, m.At(i, j), rejoined.At(i, j))
		}
	}
}

func TestSliceColumnsWidthMismatch(t *testing.T) {
	m := New(1, 3, []float64{1, 2, 3})
	_, err := SliceColumns(m, []int{1, 1})
	require.Error(t, err)
}

func TestConcatColumnsRowMismatch(t *testing.T) {
	a := New(1, 2, []float64{1, 2})
	b := New(2, 2, []float64{1, 2, 3, 4})
	_, err := ConcatColumns([]*Matrix{a, b})
	require.Error(t, err)
}

func TestConcatColumnsEmpty(t *testing.T) {
	_, err := ConcatColumns(nil)
	require.Error(t, err)
}

func TestTranspose(t *testing.T) {
	m := New(2, 3, []float64{1, 2, 3, 4, 5, 6})
	tr := Transpose(m)
	r, c := tr.Dims()
	require.Equal(t, 3, r)
	require.Equal(t, 2, c)
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			require.Equal(t, m.At(i, j), tr.At(j, i))
		}
	}
}

func TestRowAndCol(t *testing.T) {
	m := New(2, 3, []float64{1, 2, 3, 4, 5, 6})
	require.Equal(t, []float64{1, 2, 3}, m.Row(0))
	require.Equal(t, []float64{2, 5}, m.Col(1))
}
