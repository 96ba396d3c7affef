package utils

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// CLU is an LU factorization of a complex square matrix, computed via
// gonum's real LU on the 2n x 2n block embedding
//
//	[ Re(A)  -Im(A) ]
//	[ Im(A)   Re(A) ]
//
// which satisfies A(x+iy) = b+ic iff the embedding maps [x y] to [b c].
// One factorization serves any number of back-substitutions, which is
// what allows a single self-impedance factorization to be shared across
// domains and solution configurations.
type CLU struct {
	n  int
	lu *mat.LU
}

func NewCLU(A CMatrix) (c *CLU, err error) {
	var (
		nr, nc = A.Dims()
	)
	if nr != nc {
		err = fmt.Errorf("matrix must be square for LU, is [%d,%d]", nr, nc)
		return
	}
	E := mat.NewDense(2*nr, 2*nr, nil)
	for i := 0; i < nr; i++ {
		for j := 0; j < nr; j++ {
			re, im := real(A.At(i, j)), imag(A.At(i, j))
			E.Set(i, j, re)
			E.Set(i, j+nr, -im)
			E.Set(i+nr, j, im)
			E.Set(i+nr, j+nr, re)
		}
	}
	c = &CLU{n: nr, lu: &mat.LU{}}
	c.lu.Factorize(E)
	if logDet, _ := c.lu.LogDet(); math.IsInf(logDet, -1) || math.IsNaN(logDet) {
		c = nil
		err = fmt.Errorf("matrix is singular, cannot factorize")
	}
	return
}

func (c *CLU) Dim() int { return c.n }

// Solve back-substitutes a single right hand side. A mat.Condition
// error from a near-singular system is passed through so the caller
// can attribute it to a specific domain.
func (c *CLU) Solve(b CVector) (x CVector, err error) {
	var (
		n = c.n
	)
	if b.Len() != n {
		err = fmt.Errorf("RHS length %d does not match system dimension %d", b.Len(), n)
		return
	}
	rhs := mat.NewVecDense(2*n, nil)
	for i := 0; i < n; i++ {
		rhs.SetVec(i, real(b.DataP[i]))
		rhs.SetVec(i+n, imag(b.DataP[i]))
	}
	sol := mat.NewVecDense(2*n, nil)
	if err = c.lu.SolveVecTo(sol, false, rhs); err != nil {
		err = fmt.Errorf("LU back-substitution failed: %w", err)
		return
	}
	x = NewCVector(n)
	for i := 0; i < n; i++ {
		x.DataP[i] = complex(sol.AtVec(i), sol.AtVec(i+n))
	}
	return
}

// SolveMulti back-substitutes each column of B.
func (c *CLU) SolveMulti(B CMatrix) (X CMatrix, err error) {
	var (
		nr, nc = B.Dims()
		col    CVector
	)
	if nr != c.n {
		err = fmt.Errorf("RHS rows %d do not match system dimension %d", nr, c.n)
		return
	}
	X = NewCMatrix(nr, nc)
	for j := 0; j < nc; j++ {
		if col, err = c.Solve(B.Col(j)); err != nil {
			return
		}
		X.SetCol(j, col)
	}
	return
}
