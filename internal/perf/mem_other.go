//go:build !linux

package perf

// On non-Linux platforms fall back to the Go heap high-water mark.
func peakRSSBytes() uint64 { return heapBytes() }
