package linalg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVector(t *testing.T) {
	// Block addressing
	{
		v := NewVector(3, 2)
		v.SetValue(1, 0, 2.5)
		v.IncrementValue(1, 0, 0.5)
		assert.Equal(t, 3.0, v.Value(1, 0))
		assert.Equal(t, 0.0, v.Value(1, 1))
		assert.Equal(t, 6, v.Len())
	}
	// IncrementValues over a span
	{
		v := NewVector(2, 4)
		v.IncrementValues(1, 1, []float64{1, 2, 3})
		assert.Equal(t, []float64{0, 0, 0, 0, 0, 1, 2, 3}, v.Data())
		v.IncrementValues(1, 1, []float64{1, 2, 3})
		assert.Equal(t, 2.0, v.Value(1, 1))
	}
	// Scale and Sum
	{
		v := NewVector(2, 2)
		v.SetAll(2)
		v.Scale(0.5)
		assert.Equal(t, 4.0, v.Sum())
	}
	// RMSE skips zero reference entries
	{
		a := NewVector(1, 3)
		b := NewVector(1, 3)
		b.SetValue(0, 0, 2)
		a.SetValue(0, 0, 1)
		assert.InDelta(t, 0.5, RMSE(a, b), 1e-14)
	}
}

func TestMatrix(t *testing.T) {
	// Increment accumulates, Clear discards
	{
		m := NewMatrix(2, 2)
		m.IncrementValue(0, 0, 0, 0, 1.5)
		m.IncrementValue(0, 0, 0, 0, 0.5)
		assert.Equal(t, 2.0, m.Value(0, 0))
		m.Clear()
		assert.Equal(t, 0.0, m.Value(0, 0))
	}
	// Cell-major unknown ordering: (cellFrom, gFrom) -> (cellTo, gTo)
	{
		m := NewMatrix(2, 2)
		m.IncrementValue(1, 0, 0, 1, 3.0)
		assert.Equal(t, 3.0, m.Value(1, 2))
	}
	// MulVec against a dense hand computation
	{
		m := NewMatrix(2, 1)
		m.IncrementValue(0, 0, 0, 0, 2)
		m.IncrementValue(1, 0, 0, 0, -1)
		m.IncrementValue(0, 0, 1, 0, -1)
		m.IncrementValue(1, 0, 1, 0, 2)
		m.Finalize()
		x := NewVector(2, 1)
		x.SetValue(0, 0, 1)
		x.SetValue(1, 0, 2)
		out := NewVector(2, 1)
		m.MulVec(x, out)
		assert.InDelta(t, 0.0, out.Value(0, 0), 1e-14) // 2*1 - 1*2
		assert.InDelta(t, 3.0, out.Value(1, 0), 1e-14) // -1*1 + 2*2
	}
}
