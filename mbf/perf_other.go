//go:build !linux
// +build !linux

package mbf

// Hardware counters are a Linux perf-events feature; elsewhere the
// request is silently a no-op.
type hwProfiler struct{}

func startHWProfile() (h *hwProfiler) { return nil }

func (h *hwProfiler) stop() (summary string) { return }
