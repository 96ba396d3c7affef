//go:build linux
// +build linux

package mbf

import (
	"fmt"
	"os"

	perf "github.com/hodgesds/perf-utils"
)

// hwProfiler samples CPU cycle and instruction counts over a
// generation run via Linux perf events.
type hwProfiler struct {
	p perf.HardwareProfiler
}

func startHWProfile() (h *hwProfiler) {
	p, err := perf.NewHardwareProfiler(os.Getpid(), -1,
		perf.CpuCyclesProfiler|perf.CpuInstrProfiler)
	if p == nil || (err != nil && !p.HasProfilers()) {
		return nil
	}
	if err = p.Start(); err != nil {
		return nil
	}
	return &hwProfiler{p: p}
}

func (h *hwProfiler) stop() (summary string) {
	profile := &perf.HardwareProfile{}
	if err := h.p.Profile(profile); err == nil {
		if profile.CPUCycles != nil && profile.Instructions != nil {
			summary = fmt.Sprintf("cycles = %d, instructions = %d",
				*profile.CPUCycles, *profile.Instructions)
		}
	}
	_ = h.p.Stop()
	return
}
