package utils

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/cmplxs"
)

// CVector is a dense complex coefficient vector, the storage unit for
// a single MBF over a domain's unknowns.
type CVector struct {
	DataP []complex128
}

func NewCVector(n int, dataO ...[]complex128) (R CVector) {
	var data []complex128
	if len(dataO) != 0 {
		data = dataO[0]
		if len(data) != n {
			err := fmt.Errorf("mismatch in allocation: NewCVector n = %v, len(data[0]) = %v", n, len(data))
			panic(err)
		}
	} else {
		data = make([]complex128, n)
	}
	R = CVector{DataP: data}
	return
}

func (v CVector) Len() int { return len(v.DataP) }

func (v CVector) At(i int) complex128 { return v.DataP[i] }

func (v CVector) IsEmpty() bool { return len(v.DataP) == 0 }

func (v CVector) Set(i int, val complex128) CVector { // Changes receiver
	v.DataP[i] = val
	return v
}

func (v CVector) Copy() (R CVector) { // Does not change receiver
	R = NewCVector(v.Len())
	copy(R.DataP, v.DataP)
	return
}

func (v CVector) Scale(a complex128) CVector { // Changes receiver
	cmplxs.Scale(a, v.DataP)
	return v
}

func (v CVector) Add(a CVector) CVector { // Changes receiver
	cmplxs.Add(v.DataP, a.DataP)
	return v
}

func (v CVector) Subtract(a CVector) CVector { // Changes receiver
	cmplxs.Sub(v.DataP, a.DataP)
	return v
}

// AddScaled accumulates a*x into the receiver, the complex axpy used
// by the Gram-Schmidt sweeps.
func (v CVector) AddScaled(a complex128, x CVector) CVector { // Changes receiver
	cmplxs.AddScaled(v.DataP, a, x.DataP)
	return v
}

// Dot is the Hermitian inner product conj(v)·a.
func (v CVector) Dot(a CVector) (d complex128) {
	if v.Len() != a.Len() {
		panic(fmt.Errorf("dimension mismatch in Dot: %d vs %d", v.Len(), a.Len()))
	}
	for i, val := range v.DataP {
		d += cmplx.Conj(val) * a.DataP[i]
	}
	return
}

func (v CVector) Norm() (nrm float64) {
	for _, val := range v.DataP {
		nrm += real(val)*real(val) + imag(val)*imag(val)
	}
	nrm = math.Sqrt(nrm)
	return
}

func (v CVector) MaxAbs() (max float64) {
	for _, val := range v.DataP {
		if a := cmplx.Abs(val); a > max {
			max = a
		}
	}
	return
}

func (v CVector) IsZero() bool {
	for _, val := range v.DataP {
		if val != 0 {
			return false
		}
	}
	return true
}

// Subset gathers v at the index positions in I.
func (v CVector) Subset(I Index) (R CVector) { // Does not change receiver
	R = NewCVector(len(I))
	for i, ind := range I {
		R.DataP[i] = v.DataP[ind]
	}
	return
}

// Scatter expands a domain-local vector to global length N, zero away
// from the domain's unknowns.
func (v CVector) Scatter(N int, I Index) (R CVector) { // Does not change receiver
	if len(I) != v.Len() {
		panic(fmt.Errorf("dimension mismatch in Scatter: len(I) = %d, len(v) = %d", len(I), v.Len()))
	}
	R = NewCVector(N)
	for i, ind := range I {
		R.DataP[ind] = v.DataP[i]
	}
	return
}
