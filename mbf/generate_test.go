package mbf

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/gocbfm/array"
	"github.com/notargets/gocbfm/moment"
	"github.com/notargets/gocbfm/utils"
)

func TestPreFlight(t *testing.T) {
	l, p, err := moment.NewLinearArray(2, 3, 1)
	assert.NoError(t, err)
	// Secondary MBFs with coupling disabled is semantically
	// incompatible and must abort before any numerical work
	_, err = NewEngine(l, p, Config{ComputeSecondary: true, CouplingDisabled: true})
	assert.Error(t, err)
	// Coupling disabled without secondary MBFs is fine
	_, err = NewEngine(l, p, Config{CouplingDisabled: true})
	assert.NoError(t, err)
}

func TestPrimaryResidual(t *testing.T) {
	// Single disconnected domain: the primary MBF is the exact
	// solution of the domain-local system
	l, p, err := moment.NewLinearArray(1, 5, 1)
	assert.NoError(t, err)
	e, err := NewEngine(l, p, Config{})
	assert.NoError(t, err)
	r, err := e.Generate()
	assert.NoError(t, err)

	assert.Equal(t, 1, r.PrimaryCount[0][0])
	J := r.Primary[0][0][0]
	Zdd := p.SelfBlock(l.Domains[0].Full)
	Vd := p.Excitation(l.Domains[0].Full, 0)
	resid := Zdd.MulVec(J).Subtract(Vd)
	assert.InDelta(t, 0, resid.Norm(), 1.e-10)
}

func TestIdenticalDomainScenario(t *testing.T) {
	// 4 identical disconnected domains, 1 configuration, all active,
	// secondary MBFs disabled: 4 primary MBFs from a single reused
	// factorization, 0 secondary MBFs, and each domain reduces to
	// exactly its own normalized primary
	l, p, err := moment.NewLinearArray(4, 3, 1)
	assert.NoError(t, err)
	e, err := NewEngine(l, p, Config{Reduce: true, Threshold: 6})
	assert.NoError(t, err)
	r, err := e.Generate()
	assert.NoError(t, err)

	assert.Equal(t, 1, r.Stats.Factorizations)
	assert.Equal(t, 4, r.Stats.PrimaryTotal)
	assert.Equal(t, 0, r.Stats.SecondaryTotal)
	assert.Nil(t, r.Secondary)
	for d := 0; d < 4; d++ {
		assert.Equal(t, 1, r.ReducedCount[d][0])
		// The retained vector spans the primary up to a unit phase
		u := r.Reduced[d][0].Col(0)
		prim := r.Primary[d][0][0].Scatter(l.N, l.Domains[d].Full)
		prim.Scale(complex(1./prim.Norm(), 0))
		assert.InDelta(t, 1, cmplx.Abs(u.Dot(prim)), 1.e-10)
	}
}

func TestInactiveDomainScenario(t *testing.T) {
	// 3 identical disconnected domains, middle domain inactive,
	// secondary MBFs enabled: the outer domains induce on each other
	// only, and the inactive domain contributes and receives nothing
	l, p, err := moment.NewLinearArray(3, 3, 1)
	assert.NoError(t, err)
	l.SetActive(1, 0, false)
	e, err := NewEngine(l, p, Config{ComputeSecondary: true, Reduce: true, Threshold: 6})
	assert.NoError(t, err)
	r, err := e.Generate()
	assert.NoError(t, err)

	assert.Equal(t, 2, r.Stats.PrimaryTotal)
	assert.Equal(t, 0, r.PrimaryCount[1][0])
	assert.Equal(t, 0, r.SecondaryCount[1][0])
	assert.Equal(t, 1, r.SecondaryCount[0][0])
	assert.Equal(t, 1, r.SecondaryCount[2][0])
	// No secondary MBF is attributed to the inactive inducer
	assert.True(t, r.Secondary[0][1][0].IsEmpty())
	assert.True(t, r.Secondary[2][1][0].IsEmpty())
	assert.False(t, r.Secondary[0][2][0].IsEmpty())
	assert.False(t, r.Secondary[2][0][0].IsEmpty())
	// Self coupling never exists
	for m := 0; m < 3; m++ {
		assert.Nil(t, r.Secondary[m][m])
	}
	// The inactive domain's reduced set is empty
	assert.Equal(t, 0, r.ReducedCount[1][0])
	assert.True(t, r.Reduced[1][0].IsEmpty())
}

func TestSecondarySign(t *testing.T) {
	// The stored secondary satisfies Z_mm*J = -Z_mn*J_prim(n), the
	// negative sign belonging to the excitation model
	l, p, err := moment.NewLinearArray(2, 3, 1)
	assert.NoError(t, err)
	e, err := NewEngine(l, p, Config{ComputeSecondary: true})
	assert.NoError(t, err)
	r, err := e.Generate()
	assert.NoError(t, err)

	var (
		m, n = 0, 1
		Jm   = r.Secondary[m][n][0]
		Jn   = r.Primary[n][0][0]
		Zmm  = p.SelfBlock(l.Domains[m].Full)
		Zmn  = p.CouplingBlock(l.Domains[m].Full, l.Domains[n].Full)
	)
	lhs := Zmm.MulVec(Jm)
	rhs := Zmn.MulVec(Jn).Scale(-1)
	assert.InDelta(t, 0, lhs.Subtract(rhs).Norm(), 1.e-10)
}

func TestWindowingExactness(t *testing.T) {
	// Two interconnected domains sharing one unknown: the generated
	// coefficient at the shared index is exactly half the coefficient
	// of the unwindowed domain-local solve
	l, p, err := moment.NewInterconnectedArray(2, 4, 1)
	assert.NoError(t, err)
	e, err := NewEngine(l, p, Config{})
	assert.NoError(t, err)
	r, err := e.Generate()
	assert.NoError(t, err)

	var (
		d     = 0
		full  = l.Domains[d].Full
		iface = l.Domains[d].Interface
	)
	assert.Len(t, iface, 1)
	lu, err := utils.NewCLU(p.SelfBlock(full))
	assert.NoError(t, err)
	raw, err := lu.Solve(p.Excitation(full, 0))
	assert.NoError(t, err)

	J := r.Primary[d][e.selfPort[d]][0]
	pos := full.PositionMap()
	for _, g := range full {
		want := raw.DataP[pos[g]]
		if iface.Contains(g) {
			want *= 0.5
		}
		assert.InDelta(t, 0, cmplx.Abs(J.DataP[pos[g]]-want), 1.e-12)
	}
	// Interconnected layouts never reuse one factorization
	assert.Equal(t, 2, r.Stats.Factorizations)
}

func TestInterconnectedPorts(t *testing.T) {
	// Each domain of a two-element generating sub-array sees its own
	// port plus the neighbor's port through the shared unknown
	l, p, err := moment.NewInterconnectedArray(2, 4, 1)
	assert.NoError(t, err)
	e, err := NewEngine(l, p, Config{ComputeSecondary: true})
	assert.NoError(t, err)
	r, err := e.Generate()
	assert.NoError(t, err)

	assert.Equal(t, 2, r.MaxPorts)
	for d := 0; d < 2; d++ {
		assert.Equal(t, 2, r.PrimaryCount[d][0])
		assert.False(t, r.Primary[d][0][0].IsEmpty())
		assert.False(t, r.Primary[d][1][0].IsEmpty())
	}
	// Secondary coupling draws on the inducer's interior unknowns
	Jn := r.Primary[1][e.selfPort[1]][0]
	Zmn := p.CouplingBlock(l.Domains[0].Full, l.Domains[1].Interior)
	V := Zmn.MulVec(Jn.Subset(e.interiorPos[1])).Scale(-1)
	Zmm := p.SelfBlock(l.Domains[0].Full)
	lhs := Zmm.MulVec(unwindowed(e, 0, r.Secondary[0][1][0]))
	assert.InDelta(t, 0, lhs.Subtract(V).Norm(), 1.e-10)
}

// unwindowed undoes the interface halving for residual verification.
func unwindowed(e *Engine, d int, J utils.CVector) (R utils.CVector) {
	R = J.Copy()
	for _, p := range e.interfacePos[d] {
		R.DataP[p] *= 2
	}
	return
}

func TestReducedOrthonormality(t *testing.T) {
	l, p, err := moment.NewLinearArray(3, 4, 2)
	assert.NoError(t, err)
	e, err := NewEngine(l, p, Config{ComputeSecondary: true, Reduce: true, Threshold: 8})
	assert.NoError(t, err)
	r, err := e.Generate()
	assert.NoError(t, err)

	for d := 0; d < 3; d++ {
		for s := 0; s < 2; s++ {
			U := r.Reduced[d][s]
			_, nc := U.Dims()
			assert.True(t, nc >= 1)
			for i := 0; i < nc; i++ {
				for j := 0; j < nc; j++ {
					d0 := U.Col(i).Dot(U.Col(j))
					if i == j {
						d0 -= 1
					}
					assert.InDelta(t, 0, cmplx.Abs(d0), 1.e-8)
				}
			}
		}
	}
}

func TestReductionCompleteness(t *testing.T) {
	// At maximal threshold every candidate is reconstructible from
	// the reduced basis
	l, p, err := moment.NewLinearArray(3, 4, 1)
	assert.NoError(t, err)
	e, err := NewEngine(l, p, Config{ComputeSecondary: true, Reduce: true, Threshold: math.Inf(1)})
	assert.NoError(t, err)
	r, err := e.Generate()
	assert.NoError(t, err)

	for d := 0; d < 3; d++ {
		var candidates []utils.CVector
		candidates = append(candidates, r.Primary[d][0][0].Scatter(l.N, l.Domains[d].Full))
		for n := 0; n < 3; n++ {
			if n == d {
				continue
			}
			candidates = append(candidates, r.Secondary[d][n][0].Scatter(l.N, l.Domains[d].Full))
		}
		U := r.Reduced[d][0]
		_, nc := U.Dims()
		for _, c := range candidates {
			proj := utils.NewCVector(l.N)
			for k := 0; k < nc; k++ {
				u := U.Col(k)
				proj.AddScaled(u.Dot(c), u)
			}
			assert.InDelta(t, 0, proj.Subtract(c).Norm(), 1.e-8*math.Max(1, c.Norm()))
		}
	}
}

func TestReductionDisabledPassthrough(t *testing.T) {
	l, p, err := moment.NewLinearArray(2, 3, 1)
	assert.NoError(t, err)
	e, err := NewEngine(l, p, Config{ComputeSecondary: true})
	assert.NoError(t, err)
	r, err := e.Generate()
	assert.NoError(t, err)

	for d := 0; d < 2; d++ {
		// 1 primary + 1 secondary pass through unmodified
		assert.Equal(t, 2, r.ReducedCount[d][0])
		first := r.Reduced[d][0].Col(0)
		prim := r.Primary[d][0][0].Scatter(l.N, l.Domains[d].Full)
		assert.InDelta(t, 0, first.Subtract(prim).Norm(), 1.e-14)
	}
}

func TestSingularDomainFailure(t *testing.T) {
	// A singular self-impedance block surfaces as a failure naming
	// the offending domain instead of a silent abort
	var (
		N = 4
		Z = utils.NewCMatrix(N, N)
		Y = utils.NewCMatrix(N, 1)
	)
	for i := 0; i < N; i++ {
		Y.Set(i, 0, 1)
	}
	Z.Set(0, 0, 2+1i)
	Z.Set(1, 1, 2+1i)
	// Domain 1's block (indices 2,3) stays zero - singular
	full := []utils.Index{utils.NewRange(0, 1), utils.NewRange(2, 3)}
	l, err := array.NewLayout(N, 1, full, nil, true, false)
	assert.NoError(t, err)
	p, err := moment.NewDenseProvider(Z, Y)
	assert.NoError(t, err)
	e, err := NewEngine(l, p, Config{})
	assert.NoError(t, err)
	_, err = e.Generate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "domain 1")
}

func BenchmarkGenerate(b *testing.B) {
	l, p, err := moment.NewLinearArray(8, 12, 2)
	if err != nil {
		b.Fatal(err)
	}
	e, err := NewEngine(l, p, Config{ComputeSecondary: true, Reduce: true, Threshold: 4, ParallelDegree: 4})
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err = e.Generate(); err != nil {
			b.Fatal(err)
		}
	}
}
