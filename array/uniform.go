package array

import (
	"fmt"

	"github.com/notargets/gocbfm/utils"
)

// Uniform is the validated precondition gating reuse of one
// self-impedance factorization across every domain. The assumption
// "all domains are structurally identical" is checked here once, not
// trusted inline: every domain must carry the same unknown count and
// the same self-impedance block as the representative domain 0.
type Uniform struct {
	OK     bool
	Size   int    // Unknowns per domain when OK
	Reason string // Why reuse was rejected, empty when OK
}

// blockTol bounds the allowed per-entry deviation between
// self-impedance blocks, relative to the representative block scale.
const blockTol = 1.e-10

func CheckUniform(l *Layout, selfBlock func(d int) utils.CMatrix) (u Uniform) {
	if !l.Disconnected {
		u.Reason = "domains are interconnected"
		return
	}
	if !l.Identical {
		u.Reason = "layout does not declare identical elements"
		return
	}
	var (
		size = len(l.Domains[0].Full)
	)
	for d := 1; d < len(l.Domains); d++ {
		if len(l.Domains[d].Full) != size {
			u.Reason = fmt.Sprintf("domain %d has %d unknowns, domain 0 has %d",
				d, len(l.Domains[d].Full), size)
			return
		}
	}
	var (
		Z0    = selfBlock(0)
		scale = Z0.FrobNorm()
	)
	if scale == 0 {
		u.Reason = "representative self-impedance block is zero"
		return
	}
	for d := 1; d < len(l.Domains); d++ {
		if diff := selfBlock(d).MaxAbsDiff(Z0); diff > blockTol*scale {
			u.Reason = fmt.Sprintf("self-impedance of domain %d deviates from domain 0 by %8.2e", d, diff)
			return
		}
	}
	u.OK = true
	u.Size = size
	return
}
