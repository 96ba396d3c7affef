package moment

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/notargets/gocbfm/array"
	"github.com/notargets/gocbfm/utils"
)

// Synthetic linear-array problems used by the solve command and the
// tests, in place of an impedance matrix extracted from a full-wave
// solver. The fill is a distance-decay coupling model: strong
// diagonally dominant self terms with off-diagonal magnitude falling
// as 1/(1+d)^2 in unknown separation, which keeps every self block
// nonsingular and makes the self blocks of equal-size elements exactly
// identical.
const (
	selfTerm = 4 + 2i
	coupling = -1 + 0.25i
)

func fillImpedance(N int) (Z utils.CMatrix) {
	Z = utils.NewCMatrix(N, N)
	for i := 0; i < N; i++ {
		for j := 0; j < N; j++ {
			if i == j {
				Z.Set(i, j, selfTerm)
			} else {
				d := float64(i - j)
				if d < 0 {
					d = -d
				}
				Z.Set(i, j, coupling/complex((1+d)*(1+d), 0))
			}
		}
	}
	return
}

func fillExcitation(N, S int) (Y utils.CMatrix) {
	Y = utils.NewCMatrix(N, S)
	for s := 0; s < S; s++ {
		for i := 0; i < N; i++ {
			theta := 2 * math.Pi * float64(i*(s+1)) / float64(N)
			Y.Set(i, s, cmplx.Exp(complex(0, -theta)))
		}
	}
	return
}

// NewLinearArray builds a disconnected array of numElems identical
// elements with perElem unknowns each, one generating sub-array.
func NewLinearArray(numElems, perElem, numConfigs int) (l *array.Layout, p *DenseProvider, err error) {
	if numElems < 1 || perElem < 1 {
		err = fmt.Errorf("array must have at least one element with one unknown, have %d x %d", numElems, perElem)
		return
	}
	var (
		N    = numElems * perElem
		full = make([]utils.Index, numElems)
	)
	for e := 0; e < numElems; e++ {
		full[e] = utils.NewRange(e*perElem, (e+1)*perElem-1)
	}
	if l, err = array.NewLayout(N, numConfigs, full, nil, true, true); err != nil {
		return
	}
	p, err = NewDenseProvider(fillImpedance(N), fillExcitation(N, numConfigs))
	return
}

// NewInterconnectedArray builds a chain of numElems elements where
// each adjacent pair shares one boundary unknown, grouped into
// generating sub-arrays of consecutive pairs.
func NewInterconnectedArray(numElems, perElem, numConfigs int) (l *array.Layout, p *DenseProvider, err error) {
	if numElems < 2 || perElem < 2 {
		err = fmt.Errorf("interconnected array needs at least 2 elements of 2 unknowns, have %d x %d", numElems, perElem)
		return
	}
	var (
		stride = perElem - 1
		N      = numElems*stride + 1
		full   = make([]utils.Index, numElems)
	)
	for e := 0; e < numElems; e++ {
		full[e] = utils.NewRange(e*stride, e*stride+perElem-1)
	}
	var subArrays [][]int
	for e := 0; e < numElems; e += 2 {
		if e+1 < numElems {
			subArrays = append(subArrays, []int{e, e + 1})
		} else {
			subArrays = append(subArrays, []int{e})
		}
	}
	if l, err = array.NewLayout(N, numConfigs, full, subArrays, false, false); err != nil {
		return
	}
	p, err = NewDenseProvider(fillImpedance(N), fillExcitation(N, numConfigs))
	return
}
