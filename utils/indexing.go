package utils

import (
	"fmt"
	"sort"
)

type Index []int

func NewIndex(N int) (I Index) {
	return make(Index, N)
}

func NewRange(imin, imax int) (I Index) {
	var (
		size = imax - imin + 1 // INCLUSIVE RANGE
	)
	I = make(Index, size)
	for i := range I {
		I[i] = i + imin
	}
	return
}

func NewRangeOffset(imin, imax int) (I Index) {
	// Input range is "1 based" and converted to zero based index
	return NewRange(imin-1, imax-1)
}

func (I Index) Copy() (R Index) {
	R = make(Index, len(I))
	copy(R, I)
	return
}

func (I Index) Contains(val int) bool {
	for _, ind := range I {
		if ind == val {
			return true
		}
	}
	return false
}

func (I Index) Find(val int) (pos int) {
	// Position of val within I, -1 if absent
	for i, ind := range I {
		if ind == val {
			return i
		}
	}
	return -1
}

func (I Index) Min() (min int) {
	min = I[0]
	for _, ind := range I {
		if ind < min {
			min = ind
		}
	}
	return
}

func (I Index) Max() (max int) {
	max = I[0]
	for _, ind := range I {
		if ind > max {
			max = ind
		}
	}
	return
}

func (I Index) Intersect(J Index) (R Index) {
	var (
		inJ = make(map[int]struct{}, len(J))
	)
	for _, ind := range J {
		inJ[ind] = struct{}{}
	}
	for _, ind := range I {
		if _, present := inJ[ind]; present {
			R = append(R, ind)
		}
	}
	return
}

func (I Index) Difference(J Index) (R Index) {
	// Members of I not present in J, preserving I's ordering
	var (
		inJ = make(map[int]struct{}, len(J))
	)
	for _, ind := range J {
		inJ[ind] = struct{}{}
	}
	for _, ind := range I {
		if _, present := inJ[ind]; !present {
			R = append(R, ind)
		}
	}
	return
}

func (I Index) Union(J Index) (R Index) {
	var (
		seen = make(map[int]struct{}, len(I)+len(J))
	)
	for _, ind := range I {
		if _, present := seen[ind]; !present {
			seen[ind] = struct{}{}
			R = append(R, ind)
		}
	}
	for _, ind := range J {
		if _, present := seen[ind]; !present {
			seen[ind] = struct{}{}
			R = append(R, ind)
		}
	}
	return
}

func (I Index) Sorted() (R Index) {
	R = I.Copy()
	sort.Ints(R)
	return
}

func (I Index) ValidateBounds(N int) (err error) {
	for _, ind := range I {
		if ind < 0 || ind > N-1 {
			err = fmt.Errorf("index out of bounds: index = %d, max_bounds = %d", ind, N-1)
			return
		}
	}
	return
}

// PositionMap maps a global index to its position within I, used when
// gathering/scattering domain-local coefficient vectors.
func (I Index) PositionMap() (pos map[int]int) {
	pos = make(map[int]int, len(I))
	for i, ind := range I {
		pos[ind] = i
	}
	return
}
