package array

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/gocbfm/utils"
)

func TestLayout(t *testing.T) {
	// Disconnected: interiors equal full sets, implicit single
	// sub-array, no neighbors
	{
		full := []utils.Index{
			utils.NewRange(0, 2),
			utils.NewRange(3, 5),
		}
		l, err := NewLayout(6, 1, full, nil, true, true)
		assert.NoError(t, err)
		assert.Equal(t, 2, l.NumDomains())
		assert.Equal(t, [][]int{{0, 1}}, l.SubArrays)
		assert.Equal(t, l.Domains[0].Full, l.Domains[0].Interior)
		assert.Empty(t, l.Domains[0].Interface)
		assert.Empty(t, l.Neighbors(0))
		assert.Equal(t, 1, l.MaxPorts())
	}
	// Disconnected layouts must partition the unknown range
	{
		full := []utils.Index{
			utils.NewRange(0, 2),
			utils.NewRange(3, 4), // unknown 5 unclaimed
		}
		_, err := NewLayout(6, 1, full, nil, true, true)
		assert.Error(t, err)
	}
	// Disconnected layouts reject shared unknowns
	{
		full := []utils.Index{
			utils.NewRange(0, 3),
			utils.NewRange(3, 5),
		}
		_, err := NewLayout(6, 1, full, nil, true, true)
		assert.Error(t, err)
	}
	// Interconnected: shared unknown 3 is interface for both owners
	{
		full := []utils.Index{
			utils.NewRange(0, 3),
			utils.NewRange(3, 6),
		}
		l, err := NewLayout(7, 1, full, [][]int{{0, 1}}, false, false)
		assert.NoError(t, err)
		assert.Equal(t, utils.Index{3}, l.Domains[0].Interface)
		assert.Equal(t, utils.Index{3}, l.Domains[1].Interface)
		assert.Equal(t, utils.Index{0, 1, 2}, l.Domains[0].Interior)
		assert.Equal(t, []int{1}, l.Neighbors(0))
		assert.Equal(t, []int{0}, l.Neighbors(1))
		assert.Equal(t, 2, l.MaxPorts())
	}
	// Every domain must belong to a generating sub-array
	{
		full := []utils.Index{
			utils.NewRange(0, 3),
			utils.NewRange(3, 6),
		}
		_, err := NewLayout(7, 1, full, [][]int{{0}}, false, false)
		assert.Error(t, err)
	}
	// Active flags default on and toggle per configuration
	{
		full := []utils.Index{
			utils.NewRange(0, 1),
			utils.NewRange(2, 3),
		}
		l, err := NewLayout(4, 2, full, nil, true, true)
		assert.NoError(t, err)
		assert.True(t, l.Active(1, 0))
		l.SetActive(1, 0, false)
		assert.False(t, l.Active(1, 0))
		assert.True(t, l.Active(1, 1))
	}
}

func TestUniform(t *testing.T) {
	var (
		full = []utils.Index{
			utils.NewRange(0, 1),
			utils.NewRange(2, 3),
		}
		Z0 = utils.NewCMatrix(2, 2, []complex128{
			2 + 1i, 0.5,
			0.5, 2 + 1i,
		})
	)
	l, err := NewLayout(4, 1, full, nil, true, true)
	assert.NoError(t, err)
	// Identical blocks validate
	{
		u := CheckUniform(l, func(d int) utils.CMatrix { return Z0 })
		assert.True(t, u.OK)
		assert.Equal(t, 2, u.Size)
	}
	// Deviating block fails fast with a reason
	{
		Z1 := Z0.Copy()
		Z1.Set(0, 0, 3)
		u := CheckUniform(l, func(d int) utils.CMatrix {
			if d == 0 {
				return Z0
			}
			return Z1
		})
		assert.False(t, u.OK)
		assert.NotEmpty(t, u.Reason)
	}
	// Declared non-identical never reuses
	{
		l2, err := NewLayout(4, 1, full, nil, true, false)
		assert.NoError(t, err)
		u := CheckUniform(l2, func(d int) utils.CMatrix { return Z0 })
		assert.False(t, u.OK)
	}
	// Interconnected never reuses
	{
		fullI := []utils.Index{
			utils.NewRange(0, 2),
			utils.NewRange(2, 4),
		}
		l3, err := NewLayout(5, 1, fullI, [][]int{{0, 1}}, false, true)
		assert.NoError(t, err)
		u := CheckUniform(l3, func(d int) utils.CMatrix { return Z0 })
		assert.False(t, u.OK)
	}
}
