package mbf

import (
	"fmt"

	"github.com/notargets/gocbfm/array"
	"github.com/notargets/gocbfm/moment"
	"github.com/notargets/gocbfm/utils"
)

// Config selects which MBF stages run and how aggressively the
// reduction truncates.
type Config struct {
	// ComputeSecondary adds the mutual-coupling MBFs of every
	// active inducing neighbor to each domain's candidate set
	ComputeSecondary bool
	// CouplingDisabled drops all inter-domain coupling from the
	// model. Requesting secondary MBFs at the same time is a fatal
	// configuration error
	CouplingDisabled bool
	// Reduce orthonormalizes and truncates each domain's candidate
	// set via SVD; when false the raw candidates pass through
	Reduce bool
	// Threshold is the reduction strictness t: singular directions
	// with sigma_k >= sigma_1*10^(-t) survive. Larger t keeps more
	// directions - a fidelity/size trade-off, not correctness
	Threshold float64
	// ParallelDegree caps the go routines used per stage; <= 0
	// selects one bucket per domain
	ParallelDegree int
	Verbose        bool
	// HWCounters samples CPU hardware counters over the run where the
	// platform supports it (Linux perf events)
	HWCounters bool
}

// Result is the complete, immutable output of one generation run.
// Containers are sized up front from the domain, port and
// configuration counts.
type Result struct {
	N          int
	NumConfigs int
	MaxPorts   int

	// Primary[d][q][s] is the current induced on domain d by its
	// port-q self excitation in configuration s; empty when d is
	// inactive or port q does not reach d. Vectors are local to d's
	// full index set.
	Primary      [][][]utils.CVector
	PrimaryCount [][]int // [d][s]

	// Secondary[m][n][s] is the current induced on m by mutual
	// coupling from n's primary; nil when secondary generation is
	// off. No entry exists for m == n.
	Secondary      [][][]utils.CVector
	SecondaryCount [][]int // [m][s]

	// Reduced[d][s] holds the retained basis as orthonormal columns
	// of global length N, zero outside d's unknowns.
	Reduced      [][]utils.CMatrix
	ReducedCount [][]int // [d][s]

	Stats Stats
}

// Engine generates the reduced macro basis functions for one layout,
// impedance/excitation provider and configuration set.
type Engine struct {
	layout *array.Layout
	prov   moment.Provider
	cfg    Config

	uniform  array.Uniform
	sharedLU *utils.CLU   // Set iff uniform.OK
	lus      []*utils.CLU // Per-domain factorizations otherwise

	// Per-domain local positions of the interior and interface
	// subsets within the full index set
	interiorPos  []utils.Index
	interfacePos []utils.Index
	selfPort     []int // Port slot of each domain within its sub-array
}

func NewEngine(l *array.Layout, prov moment.Provider, cfg Config) (e *Engine, err error) {
	// Pre-flight: secondary MBFs are built from inter-domain coupling;
	// with coupling globally disabled the combination is meaningless
	// and must abort before any numerical work
	if cfg.ComputeSecondary && cfg.CouplingDisabled {
		err = fmt.Errorf("unsupported configuration: secondary MBF generation requested while mutual coupling is disabled")
		return
	}
	var (
		N, S = prov.Dims()
		ND   = l.NumDomains()
	)
	if N != l.N {
		err = fmt.Errorf("provider has %d unknowns, layout has %d", N, l.N)
		return
	}
	if S < l.NumConfigs {
		err = fmt.Errorf("provider carries %d configurations, layout requires %d", S, l.NumConfigs)
		return
	}
	e = &Engine{
		layout:       l,
		prov:         prov,
		cfg:          cfg,
		interiorPos:  make([]utils.Index, ND),
		interfacePos: make([]utils.Index, ND),
		selfPort:     make([]int, ND),
	}
	for d := 0; d < ND; d++ {
		var (
			dom = &l.Domains[d]
			pos = dom.Full.PositionMap()
		)
		for _, i := range dom.Interior {
			e.interiorPos[d] = append(e.interiorPos[d], pos[i])
		}
		for _, i := range dom.Interface {
			e.interfacePos[d] = append(e.interfacePos[d], pos[i])
		}
		// Port slot of d within its own port list: disconnected
		// domains have the single self port
		if l.Disconnected {
			e.selfPort[d] = 0
		} else {
			e.selfPort[d] = portSlot(l.SubArrays[dom.SubArray], d)
		}
	}
	return
}

func portSlot(members []int, d int) (slot int) {
	for q, member := range members {
		if member == d {
			return q
		}
	}
	panic(fmt.Errorf("domain %d missing from its own sub-array", d))
}

// ports lists the excitation ports reaching domain d: its sub-array
// members when interconnected, just d itself when disconnected.
func (e *Engine) ports(d int) []int {
	if e.layout.Disconnected {
		return []int{d}
	}
	return e.layout.SubArrays[e.layout.Domains[d].SubArray]
}

func newResult(l *array.Layout, cfg Config) (r *Result) {
	var (
		ND = l.NumDomains()
		S  = l.NumConfigs
		P  = l.MaxPorts()
	)
	r = &Result{
		N:            l.N,
		NumConfigs:   S,
		MaxPorts:     P,
		Primary:      make([][][]utils.CVector, ND),
		PrimaryCount: make([][]int, ND),
		Reduced:      make([][]utils.CMatrix, ND),
		ReducedCount: make([][]int, ND),
	}
	for d := 0; d < ND; d++ {
		r.Primary[d] = make([][]utils.CVector, P)
		for q := 0; q < P; q++ {
			r.Primary[d][q] = make([]utils.CVector, S)
		}
		r.PrimaryCount[d] = make([]int, S)
		r.Reduced[d] = make([]utils.CMatrix, S)
		r.ReducedCount[d] = make([]int, S)
	}
	if cfg.ComputeSecondary {
		r.Secondary = make([][][]utils.CVector, ND)
		r.SecondaryCount = make([][]int, ND)
		for m := 0; m < ND; m++ {
			r.Secondary[m] = make([][]utils.CVector, ND)
			for n := 0; n < ND; n++ {
				if n != m {
					r.Secondary[m][n] = make([]utils.CVector, S)
				}
			}
			r.SecondaryCount[m] = make([]int, S)
		}
	}
	r.Stats.PerConfig = make([]StageTimes, S)
	return
}

// lu returns the factorization used for domain d's self-impedance
// back-substitutions.
func (e *Engine) lu(d int) *utils.CLU {
	if e.sharedLU != nil {
		return e.sharedLU
	}
	return e.lus[d]
}

// window halves the interface-unknown coefficients of a domain-local
// solution on interconnected structures, cancelling the double count
// of unknowns shared by two overlapping domains. Disconnected layouts
// have no interface unknowns and are never windowed.
func (e *Engine) window(d int, J utils.CVector) {
	if e.layout.Disconnected {
		return
	}
	for _, p := range e.interfacePos[d] {
		J.DataP[p] *= 0.5
	}
}
