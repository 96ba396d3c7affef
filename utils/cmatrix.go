package utils

import (
	"bytes"
	"fmt"
	"math"
	"math/cmplx"
)

// CMatrix is a dense complex matrix stored row-major, the complex
// counterpart of gonum's mat.Dense for the impedance sub-blocks and
// MBF candidate matrices in this solver.
type CMatrix struct {
	DataP    []complex128
	nr, nc   int
	readOnly bool
	name     string
}

func NewCMatrix(nr, nc int, dataO ...[]complex128) (R CMatrix) {
	var data []complex128
	if len(dataO) != 0 {
		data = dataO[0]
		if len(data) != nr*nc {
			err := fmt.Errorf("mismatch in allocation: NewCMatrix nr,nc = %v,%v, len(data[0]) = %v", nr, nc, len(data))
			panic(err)
		}
	} else {
		data = make([]complex128, nr*nc)
	}
	R = CMatrix{
		DataP: data,
		nr:    nr,
		nc:    nc,
		name:  "unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

func (m CMatrix) Dims() (nr, nc int) { return m.nr, m.nc }

func (m CMatrix) At(i, j int) complex128 { return m.DataP[i*m.nc+j] }

func (m CMatrix) IsEmpty() bool { return len(m.DataP) == 0 }

func (m *CMatrix) SetReadOnly(name ...string) CMatrix {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

func (m CMatrix) Set(i, j int, val complex128) CMatrix { // Changes receiver
	m.checkWritable()
	m.DataP[i*m.nc+j] = val
	return m
}

func (m CMatrix) Copy() (R CMatrix) { // Does not change receiver
	R = NewCMatrix(m.nr, m.nc)
	copy(R.DataP, m.DataP)
	return
}

func (m CMatrix) Scale(a complex128) CMatrix { // Changes receiver
	m.checkWritable()
	for i, val := range m.DataP {
		m.DataP[i] = a * val
	}
	return m
}

func (m CMatrix) Add(A CMatrix) CMatrix { // Changes receiver
	m.checkWritable()
	m.checkDims(A)
	for i, val := range A.DataP {
		m.DataP[i] += val
	}
	return m
}

func (m CMatrix) Subtract(A CMatrix) CMatrix { // Changes receiver
	m.checkWritable()
	m.checkDims(A)
	for i, val := range A.DataP {
		m.DataP[i] -= val
	}
	return m
}

func (m CMatrix) Mul(A CMatrix) (R CMatrix) { // Does not change receiver
	if m.nc != A.nr {
		panic(fmt.Errorf("dimension mismatch in Mul: [%d,%d] x [%d,%d]", m.nr, m.nc, A.nr, A.nc))
	}
	R = NewCMatrix(m.nr, A.nc)
	for i := 0; i < m.nr; i++ {
		for k := 0; k < m.nc; k++ {
			mik := m.DataP[i*m.nc+k]
			if mik == 0 {
				continue
			}
			for j := 0; j < A.nc; j++ {
				R.DataP[i*A.nc+j] += mik * A.DataP[k*A.nc+j]
			}
		}
	}
	return
}

func (m CMatrix) MulVec(v CVector) (R CVector) { // Does not change receiver
	if m.nc != v.Len() {
		panic(fmt.Errorf("dimension mismatch in MulVec: [%d,%d] x [%d]", m.nr, m.nc, v.Len()))
	}
	R = NewCVector(m.nr)
	for i := 0; i < m.nr; i++ {
		var sum complex128
		for j := 0; j < m.nc; j++ {
			sum += m.DataP[i*m.nc+j] * v.DataP[j]
		}
		R.DataP[i] = sum
	}
	return
}

func (m CMatrix) ConjTranspose() (R CMatrix) { // Does not change receiver
	R = NewCMatrix(m.nc, m.nr)
	for i := 0; i < m.nr; i++ {
		for j := 0; j < m.nc; j++ {
			R.DataP[j*m.nr+i] = cmplx.Conj(m.DataP[i*m.nc+j])
		}
	}
	return
}

func (m CMatrix) SliceRows(I Index) (R CMatrix) { // Does not change receiver
	var (
		maxIndex = m.nr - 1
	)
	R = NewCMatrix(len(I), m.nc)
	for iNewRow, i := range I {
		if i > maxIndex || i < 0 {
			fmt.Printf("index out of bounds: index = %d, max_bounds = %d\n", i, maxIndex)
			panic("unable to subset rows from matrix")
		}
		copy(R.DataP[iNewRow*m.nc:(iNewRow+1)*m.nc], m.DataP[i*m.nc:(i+1)*m.nc])
	}
	return
}

func (m CMatrix) SliceCols(J Index) (R CMatrix) { // Does not change receiver
	var (
		maxIndex = m.nc - 1
	)
	R = NewCMatrix(m.nr, len(J))
	for jNewCol, j := range J {
		if j > maxIndex || j < 0 {
			fmt.Printf("index out of bounds: index = %d, max_bounds = %d\n", j, maxIndex)
			panic("unable to subset columns from matrix")
		}
		for i := 0; i < m.nr; i++ {
			R.DataP[i*len(J)+jNewCol] = m.DataP[i*m.nc+j]
		}
	}
	return
}

// SubMatrix gathers the (RI, CI) cross-section, e.g. the coupling
// block Z[m's unknowns, n's unknowns] out of a global matrix.
func (m CMatrix) SubMatrix(RI, CI Index) (R CMatrix) { // Does not change receiver
	R = NewCMatrix(len(RI), len(CI))
	for iR, i := range RI {
		for jR, j := range CI {
			R.DataP[iR*len(CI)+jR] = m.DataP[i*m.nc+j]
		}
	}
	return
}

func (m CMatrix) Col(j int) (R CVector) {
	R = NewCVector(m.nr)
	for i := 0; i < m.nr; i++ {
		R.DataP[i] = m.DataP[i*m.nc+j]
	}
	return
}

func (m CMatrix) SetCol(j int, v CVector) CMatrix { // Changes receiver
	m.checkWritable()
	if v.Len() != m.nr {
		panic(fmt.Errorf("dimension mismatch in SetCol: matrix has %d rows, vector has %d", m.nr, v.Len()))
	}
	for i := 0; i < m.nr; i++ {
		m.DataP[i*m.nc+j] = v.DataP[i]
	}
	return m
}

func (m CMatrix) FrobNorm() (nrm float64) {
	for _, val := range m.DataP {
		nrm += real(val)*real(val) + imag(val)*imag(val)
	}
	nrm = math.Sqrt(nrm)
	return
}

func (m CMatrix) MaxAbsDiff(A CMatrix) (max float64) {
	m.checkDims(A)
	for i, val := range m.DataP {
		if d := cmplx.Abs(val - A.DataP[i]); d > max {
			max = d
		}
	}
	return
}

func (m CMatrix) Print(msg ...string) (s string) {
	var (
		buf = bytes.Buffer{}
	)
	if len(msg) != 0 {
		buf.WriteString(fmt.Sprintf("%s = \n", msg[0]))
	}
	for i := 0; i < m.nr; i++ {
		for j := 0; j < m.nc; j++ {
			buf.WriteString(fmt.Sprintf("%10.6f%+10.6fi ", real(m.At(i, j)), imag(m.At(i, j))))
		}
		buf.WriteString("\n")
	}
	return buf.String()
}

func (m CMatrix) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt made to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

func (m CMatrix) checkDims(A CMatrix) {
	if m.nr != A.nr || m.nc != A.nc {
		panic(fmt.Errorf("dimension mismatch: [%d,%d] vs [%d,%d]", m.nr, m.nc, A.nr, A.nc))
	}
}
