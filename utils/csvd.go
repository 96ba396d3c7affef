package utils

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// CSVD holds the thin left singular system of a complex matrix A:
// U (orthonormal columns, one per nonzero singular direction) and the
// singular values S in descending order.
//
// It is computed from the Hermitian Gram matrix G = A^H A. The real
// symmetric embedding
//
//	[ Re(G)  -Im(G) ]
//	[ Im(G)   Re(G) ]
//
// has the property that [x y] is an eigenvector with eigenvalue l iff
// z = x+iy is an eigenvector of G with the same eigenvalue, so the
// complex eigenproblem reduces to gonum's EigenSym. Every eigenvalue
// appears twice in the embedding (z and iz map to distinct real
// eigenvectors); the duplicates are removed by Gram-Schmidt rejection
// against the vectors already accepted.
type CSVD struct {
	U CMatrix
	S []float64
}

// dropTol rejects singular directions below S[0]*dropTol as numerical
// null space. The Gram product squares the conditioning of A, so the
// resolvable ratio floor is sqrt(machine eps), not machine eps.
const dropTol = 1.e-7

func NewCSVD(A CMatrix) (svd CSVD, err error) {
	var (
		nr, nc = A.Dims()
	)
	if nr == 0 || nc == 0 {
		err = fmt.Errorf("cannot factorize empty matrix [%d,%d]", nr, nc)
		return
	}
	G := A.ConjTranspose().Mul(A) // nc x nc, Hermitian PSD
	E := mat.NewSymDense(2*nc, nil)
	for i := 0; i < nc; i++ {
		for j := i; j < nc; j++ {
			re, im := real(G.At(i, j)), imag(G.At(i, j))
			E.SetSym(i, j, re)
			E.SetSym(i+nc, j+nc, re)
			// Off-diagonal antisymmetric block: E[i][j+nc] = -im
			E.SetSym(i, j+nc, -im)
			if i != j {
				E.SetSym(j, i+nc, im)
			}
		}
	}
	var eig mat.EigenSym
	if !eig.Factorize(E, true) {
		err = fmt.Errorf("eigendecomposition of Gram embedding failed")
		return
	}
	var (
		vals = eig.Values(nil) // Ascending order
		vecs = mat.NewDense(2*nc, 2*nc, nil)
	)
	eig.VectorsTo(vecs)

	// A true iz duplicate projects to machine noise; any genuinely new
	// direction within a degenerate eigenspace keeps an O(1) residual.
	const normFloor = 1.e-6
	var (
		V []CVector // Right singular vectors of A, deduplicated
		S []float64
	)
	for k := 2*nc - 1; k >= 0 && len(V) < nc; k-- {
		if vals[k] <= 0 {
			break
		}
		z := NewCVector(nc)
		for i := 0; i < nc; i++ {
			z.DataP[i] = complex(vecs.At(i, k), vecs.At(i+nc, k))
		}
		// Reject the iz duplicate of a vector already accepted
		for _, u := range V {
			z.AddScaled(-u.Dot(z), u)
		}
		if z.Norm() < normFloor {
			continue
		}
		z.Scale(complex(1./z.Norm(), 0))
		V = append(V, z)
		S = append(S, math.Sqrt(vals[k]))
	}
	if len(S) == 0 {
		err = fmt.Errorf("matrix has no nonzero singular values")
		return
	}
	// Drop the numerical null space, then map to the left side via
	// u_k = A v_k / s_k
	var rank int
	for rank = 0; rank < len(S); rank++ {
		if S[rank] < S[0]*dropTol {
			break
		}
	}
	svd.S = S[:rank]
	svd.U = NewCMatrix(nr, rank)
	for k := 0; k < rank; k++ {
		u := A.MulVec(V[k]).Scale(complex(1./svd.S[k], 0))
		// Re-orthonormalize against earlier columns for machine
		// precision orthogonality of the output basis
		for j := 0; j < k; j++ {
			uj := svd.U.Col(j)
			u.AddScaled(-uj.Dot(u), uj)
		}
		u.Scale(complex(1./u.Norm(), 0))
		svd.U.SetCol(k, u)
	}
	return
}

// Rank returns the number of singular values at or above
// S[0]*10^(-strictness). A larger strictness keeps more directions.
func (svd CSVD) Rank(strictness float64) (rank int) {
	var (
		cutoff = svd.S[0] * math.Pow(10, -strictness)
	)
	for _, s := range svd.S {
		if s >= cutoff {
			rank++
		}
	}
	return
}
