package mbf

import (
	"fmt"
	"sync"
	"time"

	"github.com/notargets/gocbfm/array"
	"github.com/notargets/gocbfm/utils"
)

// Generate runs the full MBF pipeline: factorization, then per
// configuration a complete primary pass, a complete secondary pass
// (when enabled) and the reduction. The ordering contract is strict:
// configurations are processed one at a time, and the secondary pass
// for a configuration starts only after its primary pass has finished
// for every domain, since any domain may act as an inducing source
// for any other. Within each pass the domains are sharded across go
// routines and joined at a barrier.
func (e *Engine) Generate() (r *Result, err error) {
	var (
		l = e.layout
	)
	r = newResult(l, e.cfg)
	var hw *hwProfiler
	if e.cfg.HWCounters {
		hw = startHWProfile()
	}
	if err = e.factorize(&r.Stats); err != nil {
		return nil, err
	}
	if e.cfg.Verbose {
		if e.uniform.OK {
			fmt.Printf("Identical domains validated: reusing 1 factorization of %d unknowns across %d domains\n",
				e.uniform.Size, l.NumDomains())
		} else {
			fmt.Printf("Per-domain factorization (%s): %d factorizations\n",
				e.uniform.Reason, r.Stats.Factorizations)
		}
	}
	for s := 0; s < l.NumConfigs; s++ {
		if err = e.primaryPass(r, s); err != nil {
			return nil, err
		}
		if e.cfg.ComputeSecondary {
			if err = e.secondaryPass(r, s); err != nil {
				return nil, err
			}
		}
		if err = e.reducePass(r, s); err != nil {
			return nil, err
		}
		if e.cfg.Verbose {
			st := r.Stats.PerConfig[s]
			fmt.Printf("Configuration %d: primary %v, secondary %v, reduction %v\n",
				s, st.Primary, st.Secondary, st.Reduce)
		}
	}
	r.Stats.totalize(r)
	if hw != nil {
		r.Stats.Hardware = hw.stop()
	}
	return
}

func (e *Engine) parallelDegree() (np int) {
	np = e.cfg.ParallelDegree
	if np <= 0 {
		np = e.layout.NumDomains()
	}
	return
}

// eachDomain runs work(d) for every domain, sharded over the buckets
// of a PartitionMap with a WaitGroup barrier at the end. The first
// error encountered in any bucket is returned after the join.
func (e *Engine) eachDomain(work func(d int) error) (err error) {
	var (
		pm   = utils.NewPartitionMap(e.parallelDegree(), e.layout.NumDomains())
		wg   = sync.WaitGroup{}
		errs = make([]error, pm.ParallelDegree)
	)
	for np := 0; np < pm.ParallelDegree; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			dMin, dMax := pm.GetBucketRange(np)
			for d := dMin; d < dMax; d++ {
				if errs[np] = work(d); errs[np] != nil {
					return
				}
			}
		}(np)
	}
	wg.Wait()
	for _, bucketErr := range errs {
		if bucketErr != nil {
			return bucketErr
		}
	}
	return
}

// factorize prepares the self-impedance factorizations, reusing a
// single one across all domains only when the identical-domain
// precondition validates.
func (e *Engine) factorize(st *Stats) (err error) {
	var (
		t0 = time.Now()
		l  = e.layout
	)
	e.uniform = array.CheckUniform(l, func(d int) utils.CMatrix {
		return e.prov.SelfBlock(l.Domains[d].Full)
	})
	if e.uniform.OK {
		if e.sharedLU, err = utils.NewCLU(e.prov.SelfBlock(l.Domains[0].Full)); err != nil {
			return fmt.Errorf("factorization of representative domain 0 failed: %w", err)
		}
		st.Factorizations = 1
		st.FactorizeTime = time.Since(t0)
		return
	}
	e.lus = make([]*utils.CLU, l.NumDomains())
	err = e.eachDomain(func(d int) (errD error) {
		if e.lus[d], errD = utils.NewCLU(e.prov.SelfBlock(l.Domains[d].Full)); errD != nil {
			return fmt.Errorf("factorization of domain %d failed: %w", d, errD)
		}
		return
	})
	if err != nil {
		return
	}
	st.Factorizations = l.NumDomains()
	st.FactorizeTime = time.Since(t0)
	return
}

// primaryPass solves the domain-local systems of every active domain
// for configuration s.
func (e *Engine) primaryPass(r *Result, s int) (err error) {
	var (
		t0 = time.Now()
	)
	if err = e.eachDomain(func(d int) error {
		return e.generatePrimary(r, d, s)
	}); err != nil {
		return
	}
	r.Stats.PerConfig[s].Primary = time.Since(t0)
	return
}

func (e *Engine) generatePrimary(r *Result, d, s int) (err error) {
	var (
		l = e.layout
	)
	if !l.Active(d, s) {
		// Defined zero-contribution state: vectors stay empty and the
		// count stays zero
		return
	}
	for q, member := range e.ports(d) {
		if member != d && !l.Active(member, s) {
			continue
		}
		V := e.portExcitation(d, member, s)
		if V.IsEmpty() {
			continue // port does not reach this domain
		}
		var J utils.CVector
		if J, err = e.lu(d).Solve(V); err != nil {
			return fmt.Errorf("primary solve failed for domain %d, configuration %d: %w", d, s, err)
		}
		e.window(d, J)
		r.Primary[d][q][s] = J
		r.PrimaryCount[d][s]++
	}
	return
}

// portExcitation is configuration s of the excitation restricted to
// d's unknowns; for a neighboring port of d's generating sub-array
// only the unknowns that port drives are retained.
func (e *Engine) portExcitation(d, member, s int) (V utils.CVector) {
	var (
		l    = e.layout
		full = l.Domains[d].Full
	)
	if member == d {
		return e.prov.Excitation(full, s)
	}
	overlap := full.Intersect(l.Domains[member].Full)
	if len(overlap) == 0 {
		return
	}
	var (
		Ym  = e.prov.Excitation(overlap, s)
		pos = full.PositionMap()
	)
	V = utils.NewCVector(len(full))
	for k, g := range overlap {
		V.DataP[pos[g]] = Ym.DataP[k]
	}
	return
}

// secondaryPass computes, for every active receiving domain m, the
// current induced by the primary MBF of every other active domain.
// All primaries of configuration s exist before this runs.
func (e *Engine) secondaryPass(r *Result, s int) (err error) {
	var (
		t0 = time.Now()
	)
	if err = e.eachDomain(func(m int) error {
		return e.generateSecondary(r, m, s)
	}); err != nil {
		return
	}
	r.Stats.PerConfig[s].Secondary = time.Since(t0)
	return
}

func (e *Engine) generateSecondary(r *Result, m, s int) (err error) {
	var (
		l  = e.layout
		ND = l.NumDomains()
	)
	if !l.Active(m, s) {
		return
	}
	for n := 0; n < ND; n++ {
		if n == m || !l.Active(n, s) {
			continue
		}
		Jn := r.Primary[n][e.selfPort[n]][s]
		if Jn.IsEmpty() {
			continue
		}
		// Interconnected structures couple through the inducer's
		// interior unknowns only; its interface unknowns belong
		// equally to the receiver's side of the overlap
		var (
			cols utils.Index
			Jsrc utils.CVector
		)
		if l.Disconnected {
			cols, Jsrc = l.Domains[n].Full, Jn
		} else {
			cols, Jsrc = l.Domains[n].Interior, Jn.Subset(e.interiorPos[n])
		}
		if len(cols) == 0 {
			continue
		}
		Zmn := e.prov.CouplingBlock(l.Domains[m].Full, cols)
		// The radiated coupling field opposes the source; the negative
		// sign is part of the excitation model and is baked into the
		// stored vector
		V := Zmn.MulVec(Jsrc).Scale(-1)
		var J utils.CVector
		if J, err = e.lu(m).Solve(V); err != nil {
			return fmt.Errorf("secondary solve failed for domain %d (inducer %d), configuration %d: %w", m, n, s, err)
		}
		e.window(m, J)
		r.Secondary[m][n][s] = J
		r.SecondaryCount[m][s]++
	}
	return
}
