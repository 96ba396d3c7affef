package moment

import (
	"fmt"

	"github.com/notargets/gocbfm/utils"
)

// Provider supplies the impedance and excitation sub-blocks the MBF
// generator consumes. Blocks are addressed by explicit unknown index
// sets so an implementation can recompute entries on demand instead of
// holding the full matrix in memory.
type Provider interface {
	// Dims reports the total unknown count N and the number of
	// solution configurations S.
	Dims() (N, S int)
	// SelfBlock is the impedance restricted to (I, I).
	SelfBlock(I utils.Index) utils.CMatrix
	// CouplingBlock is the impedance restricted to (rows, cols),
	// rows and cols drawn from two different domains.
	CouplingBlock(rows, cols utils.Index) utils.CMatrix
	// Excitation is configuration s of the excitation set restricted
	// to I.
	Excitation(I utils.Index, s int) utils.CVector
}

// DenseProvider serves blocks from a fully materialized N x N
// impedance matrix and N x S excitation matrix.
type DenseProvider struct {
	Z utils.CMatrix
	Y utils.CMatrix
}

func NewDenseProvider(Z, Y utils.CMatrix) (p *DenseProvider, err error) {
	var (
		zNr, zNc = Z.Dims()
		yNr, _   = Y.Dims()
	)
	if zNr != zNc {
		err = fmt.Errorf("impedance matrix must be square, is [%d,%d]", zNr, zNc)
		return
	}
	if yNr != zNr {
		err = fmt.Errorf("excitation rows %d do not match impedance dimension %d", yNr, zNr)
		return
	}
	Z.SetReadOnly("Z")
	Y.SetReadOnly("Y")
	p = &DenseProvider{Z: Z, Y: Y}
	return
}

func (p *DenseProvider) Dims() (N, S int) {
	N, _ = p.Z.Dims()
	_, S = p.Y.Dims()
	return
}

func (p *DenseProvider) SelfBlock(I utils.Index) utils.CMatrix {
	return p.Z.SubMatrix(I, I)
}

func (p *DenseProvider) CouplingBlock(rows, cols utils.Index) utils.CMatrix {
	return p.Z.SubMatrix(rows, cols)
}

func (p *DenseProvider) Excitation(I utils.Index, s int) utils.CVector {
	return p.Y.Col(s).Subset(I)
}
