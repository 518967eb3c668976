// Package progress defines the per-chunk telemetry callback handed to the
// executor, plus a terminal progress-bar adapter.
package progress

import (
	"os"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Update is delivered after each chunk completes.
type Update struct {
	Stage       string
	ChunkID     int
	ElapsedSec  float64
	BPProcessed int
	Throughput  float64 // bp/s for this chunk
	MemoryMB    float64
	Pct         float64 // overall run progress, 0..100
}

// Func receives progress updates. A nil Func is always safe to call via
// Notify.
type Func func(Update)

// Notify invokes f if non-nil.
func (f Func) Notify(u Update) {
	if f != nil {
		f(u)
	}
}

// FromPct adapts a legacy single-number callback.
func FromPct(fn func(pct float64)) Func {
	return func(u Update) { fn(u.Pct) }
}

// Bar returns a Func driving an mpb progress bar over totalChunks, plus a
// wait function to call once the run is done.
func Bar(totalChunks int) (Func, func()) {
	p := mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
	bar := p.AddBar(int64(totalChunks),
		mpb.PrependDecorators(
			decor.Name("chunks: "),
			decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncSpace),
		),
	)
	fn := func(u Update) { bar.Increment() }
	return fn, p.Wait
}
