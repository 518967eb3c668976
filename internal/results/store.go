// Package results is the append-only, disk-backed store for detected
// motifs. Hits are streamed to a line-delimited JSON file so the full
// result set is never resident in memory; summary statistics are computed
// in one forward pass and cached until the next append.
package results

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"motifscan/internal/motif"
	"motifscan/internal/perf"
)

// ErrFinalized reports an append to a store whose run has been closed out
// with a performance snapshot.
var ErrFinalized = errors.New("results: store is finalized")

// Store keeps one <id>.hits.jsonl file plus one <id>.summary.json file.
type Store struct {
	mu        sync.Mutex
	id        string
	hitsPath  string
	sumPath   string
	f         *os.File
	bw        *bufio.Writer
	enc       *json.Encoder
	count     int
	cached    *Summary
	finalized bool
}

// Open creates or reopens the hit store for sequence id under dir. A
// persisted summary file marks the store finalized; reopening keeps it
// terminal, so appends keep failing with ErrFinalized across processes.
func Open(dir, id string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("results: open %s: %w", dir, err)
	}
	s := &Store{
		id:       id,
		hitsPath: filepath.Join(dir, id+".hits.jsonl"),
		sumPath:  filepath.Join(dir, id+".summary.json"),
	}
	if _, err := os.Stat(s.sumPath); err == nil {
		s.finalized = true
	}
	f, err := os.OpenFile(s.hitsPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("results: open hits: %w", err)
	}
	s.f = f
	s.bw = bufio.NewWriterSize(f, 64<<10)
	s.enc = json.NewEncoder(s.bw)
	return s, nil
}

// Finalized reports whether the store's run has been closed out.
func (s *Store) Finalized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finalized
}

// Append writes one motif. O(1) amortized; the cached summary is
// invalidated.
func (s *Store) Append(m motif.Motif) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(m)
}

// AppendBatch writes motifs in order.
func (s *Store) AppendBatch(ms []motif.Motif) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range ms {
		if err := s.appendLocked(m); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) appendLocked(m motif.Motif) error {
	if s.finalized {
		return ErrFinalized
	}
	if err := s.enc.Encode(m); err != nil {
		return fmt.Errorf("results: append: %w", err)
	}
	s.count++
	s.cached = nil
	return nil
}

// Flush forces buffered hits to disk.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *Store) flushLocked() error {
	if err := s.bw.Flush(); err != nil {
		return fmt.Errorf("results: flush: %w", err)
	}
	return nil
}

// Close flushes and releases the backing file. The store must not be used
// afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.flushLocked(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}

// Iter reads motifs forward from the start of the backing file, calling fn
// for each until EOF, the limit is hit, or fn returns an error. It is
// restartable: every call begins at the first hit. limit <= 0 means no
// limit.
func (s *Store) Iter(limit int, fn func(motif.Motif) error) error {
	if err := s.Flush(); err != nil {
		return err
	}
	f, err := os.Open(s.hitsPath)
	if err != nil {
		return fmt.Errorf("results: open for read: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(bufio.NewReaderSize(f, 64<<10))
	n := 0
	for {
		if limit > 0 && n >= limit {
			return nil
		}
		var m motif.Motif
		if err := dec.Decode(&m); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("results: decode hit %d: %w", n, err)
		}
		if err := fn(m); err != nil {
			return err
		}
		n++
	}
}

// Count returns the number of motifs appended through this handle.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// AttachPerformance finalizes the run: the summary is computed, the
// performance snapshot is attached, and both are written to the summary
// file. Further appends fail with ErrFinalized.
func (s *Store) AttachPerformance(snap perf.Snapshot) error {
	sum, err := s.Summary()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finalized = true

	out := FinalReport{Sequence: s.id, Summary: sum, Performance: snap}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("results: encode summary: %w", err)
	}
	if err := os.WriteFile(s.sumPath, b, 0o644); err != nil {
		return fmt.Errorf("results: write summary: %w", err)
	}
	return nil
}

// FinalReport is the terminal record of one analyzed sequence.
type FinalReport struct {
	Sequence    string        `json:"sequence"`
	Summary     Summary       `json:"summary"`
	Performance perf.Snapshot `json:"performance"`
}

// ReadFinalReport loads the finalized summary file for id under dir.
func ReadFinalReport(dir, id string) (FinalReport, error) {
	b, err := os.ReadFile(filepath.Join(dir, id+".summary.json"))
	if err != nil {
		return FinalReport{}, fmt.Errorf("results: read summary: %w", err)
	}
	var r FinalReport
	if err := json.Unmarshal(b, &r); err != nil {
		return FinalReport{}, fmt.Errorf("results: decode summary: %w", err)
	}
	return r, nil
}
