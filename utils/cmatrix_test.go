package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCMatrix(t *testing.T) {
	// ConjTranspose
	{
		M := NewCMatrix(2, 3, []complex128{
			1 + 1i, 2, 3,
			4, 5 - 2i, 6,
		})
		A := M.ConjTranspose()
		aNr, aNc := A.Dims()
		assert.Equal(t, 3, aNr)
		assert.Equal(t, 2, aNc)
		assert.Equal(t, 1-1i, A.At(0, 0))
		assert.Equal(t, 5+2i, A.At(1, 1))
		assert.Equal(t, complex128(6), A.At(2, 1))
	}
	// SliceRows / SliceCols
	{
		M := NewCMatrix(2, 3, []complex128{
			1, 2, 3,
			4, 5, 6,
		})
		A := M.SliceRows(Index{1, 0})
		assert.Equal(t, []complex128{4, 5, 6, 1, 2, 3}, A.DataP)
		B := M.SliceCols(Index{2, 0})
		assert.Equal(t, []complex128{3, 1, 6, 4}, B.DataP)
	}
	// SubMatrix gathers a coupling block
	{
		M := NewCMatrix(3, 3, []complex128{
			1, 2, 3,
			4, 5, 6,
			7, 8, 9,
		})
		A := M.SubMatrix(Index{0, 2}, Index{1})
		assert.Equal(t, []complex128{2, 8}, A.DataP)
	}
	// Mul and MulVec agree
	{
		M := NewCMatrix(2, 2, []complex128{
			1 + 1i, 2,
			0, 3 - 1i,
		})
		v := NewCVector(2, []complex128{1, 1i})
		mv := M.MulVec(v)
		assert.Equal(t, []complex128{(1 + 1i) + 2i, (3 - 1i) * 1i}, mv.DataP)
		prod := M.Mul(NewCMatrix(2, 1, []complex128{1, 1i}))
		assert.InDelta(t, 0, prod.Col(0).Subtract(mv).Norm(), 1.e-14)
	}
	// Read only protection
	{
		M := NewCMatrix(1, 1)
		M.SetReadOnly("M")
		assert.Panics(t, func() { M.Set(0, 0, 1) })
	}
}

func TestCVector(t *testing.T) {
	// Subset then Scatter round trip
	{
		v := NewCVector(5, []complex128{10, 11, 12, 13, 14})
		I := Index{1, 3}
		sub := v.Subset(I)
		assert.Equal(t, []complex128{11, 13}, sub.DataP)
		g := sub.Scatter(5, I)
		assert.Equal(t, []complex128{0, 11, 0, 13, 0}, g.DataP)
	}
	// Hermitian Dot
	{
		a := NewCVector(2, []complex128{1i, 1})
		b := NewCVector(2, []complex128{1i, 0})
		assert.Equal(t, complex128(1), a.Dot(b))
		assert.InDelta(t, 1.4142135623730951, a.Norm(), 1.e-14)
	}
	// AddScaled
	{
		a := NewCVector(2, []complex128{1, 0})
		x := NewCVector(2, []complex128{0, 1})
		a.AddScaled(2i, x)
		assert.Equal(t, []complex128{1, 2i}, a.DataP)
	}
}

func TestIndex(t *testing.T) {
	I := NewRange(0, 4)
	J := Index{3, 4, 5}
	assert.Equal(t, Index{3, 4}, I.Intersect(J))
	assert.Equal(t, Index{0, 1, 2}, I.Difference(J))
	assert.Equal(t, Index{0, 1, 2, 3, 4, 5}, I.Union(J))
	assert.Equal(t, 2, J.Find(5))
	assert.Equal(t, -1, J.Find(99))
	assert.Error(t, J.ValidateBounds(5))
	assert.NoError(t, J.ValidateBounds(6))
	pos := J.PositionMap()
	assert.Equal(t, 1, pos[4])
}
