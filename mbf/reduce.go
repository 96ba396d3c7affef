package mbf

import (
	"fmt"
	"time"

	"github.com/notargets/gocbfm/utils"
)

// reducePass compresses each domain's candidate set (primary plus any
// secondary vectors) into an orthonormal truncated basis of global
// length columns. With reduction disabled the candidates pass through
// unmodified, still with a well-defined count.
func (e *Engine) reducePass(r *Result, s int) (err error) {
	var (
		t0 = time.Now()
	)
	if err = e.eachDomain(func(d int) error {
		return e.reduceDomain(r, d, s)
	}); err != nil {
		return
	}
	r.Stats.PerConfig[s].Reduce = time.Since(t0)
	return
}

func (e *Engine) reduceDomain(r *Result, d, s int) (err error) {
	var (
		l    = e.layout
		full = l.Domains[d].Full
		cols []utils.CVector
	)
	for q := 0; q < r.MaxPorts; q++ {
		if v := r.Primary[d][q][s]; !v.IsEmpty() {
			cols = append(cols, v)
		}
	}
	if r.Secondary != nil {
		for n := range r.Secondary[d] {
			if r.Secondary[d][n] == nil {
				continue // the m == n slot
			}
			if v := r.Secondary[d][n][s]; !v.IsEmpty() {
				cols = append(cols, v)
			}
		}
	}
	if len(cols) == 0 {
		// Inactive domain: empty reduced set, zero count
		return
	}
	C := utils.NewCMatrix(len(full), len(cols))
	for j, v := range cols {
		C.SetCol(j, v)
	}
	if !e.cfg.Reduce {
		r.Reduced[d][s] = scatterCols(C, l.N, full)
		r.ReducedCount[d][s] = len(cols)
		return
	}
	if C.FrobNorm() == 0 {
		// Active but unexcited domain: all candidates are zero and no
		// direction survives
		return
	}
	var svd utils.CSVD
	if svd, err = utils.NewCSVD(C); err != nil {
		return fmt.Errorf("reduction failed for domain %d, configuration %d: %w", d, s, err)
	}
	keep := svd.Rank(e.cfg.Threshold)
	U := svd.U.SliceCols(utils.NewRange(0, keep-1))
	r.Reduced[d][s] = scatterCols(U, l.N, full)
	r.ReducedCount[d][s] = keep
	return
}

// scatterCols expands domain-local columns to global length N, zero
// outside the domain's unknowns. Scattering preserves inner products,
// so an orthonormal local basis stays orthonormal globally.
func scatterCols(C utils.CMatrix, N int, I utils.Index) (G utils.CMatrix) {
	var (
		_, nc = C.Dims()
	)
	G = utils.NewCMatrix(N, nc)
	for j := 0; j < nc; j++ {
		G.SetCol(j, C.Col(j).Scatter(N, I))
	}
	return
}
