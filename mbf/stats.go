package mbf

import (
	"fmt"
	"time"
)

// StageTimes is the elapsed wall time of each generation stage for
// one solution configuration.
type StageTimes struct {
	Primary   time.Duration
	Secondary time.Duration
	Reduce    time.Duration
}

// Stats reports per-stage timing and aggregate MBF counts for one
// generation run. The counts are reporting data, not inputs to the
// algorithm.
type Stats struct {
	Factorizations int
	FactorizeTime  time.Duration
	PerConfig      []StageTimes

	PrimaryTotal   int
	SecondaryTotal int
	ReducedTotal   int

	Hardware string // Optional hardware-counter summary, Linux only
}

func (st *Stats) totalize(r *Result) {
	for d := range r.PrimaryCount {
		for s := range r.PrimaryCount[d] {
			st.PrimaryTotal += r.PrimaryCount[d][s]
			st.ReducedTotal += r.ReducedCount[d][s]
		}
	}
	for m := range r.SecondaryCount {
		for s := range r.SecondaryCount[m] {
			st.SecondaryTotal += r.SecondaryCount[m][s]
		}
	}
}

func (st Stats) Print() {
	fmt.Printf("%d\t\t= Factorizations (%v)\n", st.Factorizations, st.FactorizeTime)
	fmt.Printf("%d\t\t= Primary MBFs\n", st.PrimaryTotal)
	fmt.Printf("%d\t\t= Secondary MBFs\n", st.SecondaryTotal)
	fmt.Printf("%d\t\t= Reduced MBFs\n", st.ReducedTotal)
	for s, stage := range st.PerConfig {
		fmt.Printf("Configuration %d: primary %v, secondary %v, reduction %v\n",
			s, stage.Primary, stage.Secondary, stage.Reduce)
	}
	if st.Hardware != "" {
		fmt.Printf("Hardware counters: %s\n", st.Hardware)
	}
}
