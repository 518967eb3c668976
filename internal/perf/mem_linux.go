//go:build linux

package perf

import "golang.org/x/sys/unix"

// peakRSSBytes reads the process's high-water RSS from the kernel.
// ru_maxrss is reported in kilobytes on Linux.
func peakRSSBytes() uint64 {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return heapBytes()
	}
	return uint64(ru.Maxrss) * 1024
}
