// Package perf aggregates per-chunk, per-detector, and per-stage timings for
// one pipeline run. All Record* methods are safe for concurrent use from the
// coordinator's collection callbacks and are idempotent: recording the same
// chunk or (chunk, detector) twice keeps the last value rather than double
// counting.
package perf

import (
	"sort"
	"sync"
	"time"
)

type chunkTiming struct {
	elapsed time.Duration
	motifs  int
	bp      int
}

type detectorKey struct {
	chunkID int
	name    string
}

type detectorTiming struct {
	elapsed time.Duration
	bp      int
}

// Monitor accumulates telemetry. The zero value is not usable; call New.
type Monitor struct {
	mu        sync.Mutex
	started   time.Time
	chunks    map[int]chunkTiming
	detectors map[detectorKey]detectorTiming
	stages    map[string]time.Duration
	peakBytes uint64
	issues    int
}

func New() *Monitor {
	return &Monitor{
		started:   time.Now(),
		chunks:    map[int]chunkTiming{},
		detectors: map[detectorKey]detectorTiming{},
		stages:    map[string]time.Duration{},
	}
}

// RecordChunk records the wall time and yield of one chunk.
func (m *Monitor) RecordChunk(chunkID int, elapsed time.Duration, motifCount, bpCount int) {
	m.mu.Lock()
	m.chunks[chunkID] = chunkTiming{elapsed: elapsed, motifs: motifCount, bp: bpCount}
	m.mu.Unlock()
}

// RecordDetector records one detector's time on one chunk.
func (m *Monitor) RecordDetector(chunkID int, name string, elapsed time.Duration, bpCount int) {
	m.mu.Lock()
	m.detectors[detectorKey{chunkID, name}] = detectorTiming{elapsed: elapsed, bp: bpCount}
	m.mu.Unlock()
}

// RecordStage records the wall time of a named pipeline stage. Re-recording
// a stage replaces its value.
func (m *Monitor) RecordStage(name string, elapsed time.Duration) {
	m.mu.Lock()
	m.stages[name] = elapsed
	m.mu.Unlock()
}

// AddIssues bumps the count of recovered validation issues (failed detector
// windows, dropped chunks, degraded pool runs).
func (m *Monitor) AddIssues(n int) {
	m.mu.Lock()
	m.issues += n
	m.mu.Unlock()
}

// SampleMemory reads the process's current peak RSS and keeps the maximum
// seen so far. Cheap enough to call once per chunk completion.
func (m *Monitor) SampleMemory() {
	b := peakRSSBytes()
	m.mu.Lock()
	if b > m.peakBytes {
		m.peakBytes = b
	}
	m.mu.Unlock()
}

// PeakMemoryMB returns the largest memory sample seen so far.
func (m *Monitor) PeakMemoryMB() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return float64(m.peakBytes) / (1 << 20)
}

// DetectorStat is one row of the per-detector breakdown.
type DetectorStat struct {
	Name       string        `json:"name"`
	Cumulative time.Duration `json:"cumulative"`
	Percent    float64       `json:"percent"`
	BP         int           `json:"bp"`
}

// StageStat is one named stage's wall time.
type StageStat struct {
	Name    string        `json:"name"`
	Elapsed time.Duration `json:"elapsed"`
}

// Snapshot is the run's performance summary.
type Snapshot struct {
	TotalElapsed     time.Duration  `json:"total_elapsed"`
	TotalBP          int            `json:"total_bp"`
	ThroughputBPS    float64        `json:"throughput_bps"`
	PeakMemoryMB     float64        `json:"peak_memory_mb"`
	ChunkCount       int            `json:"chunk_count"`
	AvgChunkTime     time.Duration  `json:"avg_chunk_time"`
	Detectors        []DetectorStat `json:"detectors"`
	SlowestDetector  string         `json:"slowest_detector"`
	Stages           []StageStat    `json:"stages"`
	ValidationIssues int            `json:"validation_issues"`
	MotifCount       int            `json:"motif_count"`
}

// Snapshot computes the summary from everything recorded so far.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		TotalElapsed:     time.Since(m.started),
		PeakMemoryMB:     float64(m.peakBytes) / (1 << 20),
		ChunkCount:       len(m.chunks),
		ValidationIssues: m.issues,
	}

	var chunkTotal time.Duration
	for _, c := range m.chunks {
		snap.TotalBP += c.bp
		snap.MotifCount += c.motifs
		chunkTotal += c.elapsed
	}
	if n := len(m.chunks); n > 0 {
		snap.AvgChunkTime = chunkTotal / time.Duration(n)
	}
	if s := snap.TotalElapsed.Seconds(); s > 0 {
		snap.ThroughputBPS = float64(snap.TotalBP) / s
	}

	byName := map[string]*DetectorStat{}
	var detTotal time.Duration
	for k, d := range m.detectors {
		st, ok := byName[k.name]
		if !ok {
			st = &DetectorStat{Name: k.name}
			byName[k.name] = st
		}
		st.Cumulative += d.elapsed
		st.BP += d.bp
		detTotal += d.elapsed
	}
	for _, st := range byName {
		if detTotal > 0 {
			st.Percent = 100 * float64(st.Cumulative) / float64(detTotal)
		}
		snap.Detectors = append(snap.Detectors, *st)
	}
	sort.Slice(snap.Detectors, func(i, j int) bool {
		if snap.Detectors[i].Cumulative != snap.Detectors[j].Cumulative {
			return snap.Detectors[i].Cumulative > snap.Detectors[j].Cumulative
		}
		return snap.Detectors[i].Name < snap.Detectors[j].Name
	})
	if len(snap.Detectors) > 0 {
		snap.SlowestDetector = snap.Detectors[0].Name
	}

	for name, el := range m.stages {
		snap.Stages = append(snap.Stages, StageStat{Name: name, Elapsed: el})
	}
	sort.Slice(snap.Stages, func(i, j int) bool { return snap.Stages[i].Name < snap.Stages[j].Name })

	return snap
}
