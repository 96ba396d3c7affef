package array

import (
	"fmt"

	"github.com/james-bowman/sparse"

	"github.com/notargets/gocbfm/utils"
)

// Domain is one array element or structural block: an ordered set of
// global unknown indices, the interior subset (unknowns not shared
// with any neighbor), and membership in a generating sub-array.
type Domain struct {
	Full      utils.Index
	Interior  utils.Index
	Interface utils.Index // Full minus Interior, halved by windowing
	SubArray  int
}

// Layout partitions the N global unknowns into domains and groups
// domains into generating sub-arrays. For a disconnected structure the
// index sets partition [0,N) and there is exactly one generating
// sub-array holding every domain; interconnected structures may share
// interface unknowns between neighboring domains.
type Layout struct {
	N            int
	Domains      []Domain
	SubArrays    [][]int // sub-array index -> member domain indices
	Disconnected bool
	Identical    bool // declared by the builder, validated by Uniform

	NumConfigs int
	active     [][]bool // [domain][config]
	neighbors  [][]int  // domains sharing at least one unknown
}

func NewLayout(N, NumConfigs int, full []utils.Index, subArrays [][]int,
	disconnected, identical bool) (l *Layout, err error) {
	var (
		ND = len(full)
	)
	if ND == 0 {
		err = fmt.Errorf("layout must contain at least one domain")
		return
	}
	if NumConfigs < 1 {
		err = fmt.Errorf("layout must carry at least one solution configuration")
		return
	}
	l = &Layout{
		N:            N,
		Domains:      make([]Domain, ND),
		SubArrays:    subArrays,
		Disconnected: disconnected,
		Identical:    identical,
		NumConfigs:   NumConfigs,
		active:       make([][]bool, ND),
		neighbors:    make([][]int, ND),
	}
	if disconnected && len(subArrays) == 0 {
		// Disconnected problems are a single generating sub-array
		// containing all domains
		members := make([]int, ND)
		for d := range members {
			members[d] = d
		}
		l.SubArrays = [][]int{members}
	}
	for d, I := range full {
		if len(I) == 0 {
			err = fmt.Errorf("domain %d has an empty index set", d)
			return
		}
		if err = I.ValidateBounds(N); err != nil {
			err = fmt.Errorf("domain %d: %w", d, err)
			return
		}
		l.Domains[d].Full = I.Copy()
		l.Domains[d].SubArray = -1
		l.active[d] = make([]bool, NumConfigs)
		for s := range l.active[d] {
			l.active[d][s] = true
		}
	}
	for g, members := range l.SubArrays {
		for _, d := range members {
			if d < 0 || d > ND-1 {
				err = fmt.Errorf("sub-array %d references domain %d, have %d domains", g, d, ND)
				return
			}
			if l.Domains[d].SubArray != -1 {
				err = fmt.Errorf("domain %d appears in sub-arrays %d and %d", d, l.Domains[d].SubArray, g)
				return
			}
			l.Domains[d].SubArray = g
		}
	}
	for d := range l.Domains {
		if l.Domains[d].SubArray == -1 {
			err = fmt.Errorf("domain %d belongs to no generating sub-array", d)
			return
		}
	}
	if err = l.splitInteriors(); err != nil {
		return
	}
	return
}

// splitInteriors builds the unknown->domain incidence matrix and
// derives each domain's interior/interface split from the unknowns
// claimed by more than one domain.
func (l *Layout) splitInteriors() (err error) {
	var (
		ND        = len(l.Domains)
		incidence = sparse.NewDOK(l.N, ND)
		total     int
	)
	for d := range l.Domains {
		for _, i := range l.Domains[d].Full {
			incidence.Set(i, d, 1)
		}
		total += len(l.Domains[d].Full)
	}
	var (
		csr    = incidence.ToCSR()
		shared = make([]bool, l.N)
		nOwned int
	)
	for i := 0; i < l.N; i++ {
		owners := csr.RowNNZ(i)
		if owners > 0 {
			nOwned++
		}
		if owners > 1 {
			shared[i] = true
		}
		if l.Disconnected && owners > 1 {
			err = fmt.Errorf("disconnected layout has unknown %d shared by %d domains", i, owners)
			return
		}
	}
	if l.Disconnected && (nOwned != l.N || total != l.N) {
		err = fmt.Errorf("disconnected layout must partition all %d unknowns, covered %d", l.N, nOwned)
		return
	}
	for d := range l.Domains {
		var interior, iface utils.Index
		for _, i := range l.Domains[d].Full {
			if shared[i] {
				iface = append(iface, i)
			} else {
				interior = append(interior, i)
			}
		}
		l.Domains[d].Interior = interior
		l.Domains[d].Interface = iface
	}
	// Neighbor adjacency from co-ownership of shared unknowns
	for d := range l.Domains {
		seen := make(map[int]struct{})
		for _, i := range l.Domains[d].Interface {
			for n := 0; n < ND; n++ {
				if n != d && csr.At(i, n) != 0 {
					seen[n] = struct{}{}
				}
			}
		}
		for n := 0; n < ND; n++ {
			if _, present := seen[n]; present {
				l.neighbors[d] = append(l.neighbors[d], n)
			}
		}
	}
	return
}

func (l *Layout) NumDomains() int { return len(l.Domains) }

// Neighbors lists the domains sharing at least one unknown with d.
func (l *Layout) Neighbors(d int) []int { return l.neighbors[d] }

// SetActive flags domain d in or out of configuration s. Inactive
// domains contribute zero primary vectors and are excluded as coupling
// sources; this is a defined state, not an error.
func (l *Layout) SetActive(d, s int, active bool) {
	l.active[d][s] = active
}

func (l *Layout) Active(d, s int) bool {
	return l.active[d][s]
}

// MaxPorts is the largest generating sub-array cardinality, bounding
// the per-domain primary MBF storage. Disconnected layouts have a
// single excitation port per domain.
func (l *Layout) MaxPorts() (P int) {
	if l.Disconnected {
		return 1
	}
	for _, members := range l.SubArrays {
		if len(members) > P {
			P = len(members)
		}
	}
	return
}
