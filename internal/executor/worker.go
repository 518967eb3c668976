package executor

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"motifscan/internal/detect"
	"motifscan/internal/motif"
	"motifscan/internal/seqctx"
	"motifscan/internal/seqstore"
)

// workerOut is the only thing a worker hands back to the coordinator:
// small metadata plus the path of its private spill file. Motifs
// themselves never cross the worker boundary in memory.
type workerOut struct {
	chunkID  int
	spill    string // "" when the chunk yielded nothing
	count    int
	bp       int
	elapsed  time.Duration
	detTimes map[string]time.Duration
	issues   int
	err      error // recovered chunk-local failure
	fatal    error // corrupt storage; aborts the whole run
	canceled bool
}

// processChunk is the worker entry point. It receives only owned scalar
// data (sequence id, sequence length, chunk coordinates) and opens its own
// reader on the sequence file.
func (e *Executor) processChunk(ctx context.Context, seqID string, seqLen int, c chunkItem) *workerOut {
	out := &workerOut{chunkID: c.id, bp: c.end - c.start}
	if ctx.Err() != nil {
		out.canceled = true
		return out
	}
	start := time.Now()

	text, err := e.seqs.ReadRange(seqID, c.start, c.end)
	if err != nil {
		out.err = err
		out.elapsed = time.Since(start)
		e.log.Errorf("chunk %d: read [%d,%d): %v", c.id, c.start, c.end, err)
		out.issues++
		return out
	}
	if err := seqstore.CheckSanitized(text); err != nil {
		out.fatal = fmt.Errorf("chunk %d at %d: %w", c.id, c.start, err)
		return out
	}

	cctx := seqctx.New(text)
	windows := e.table.Windows(cctx.Seq())
	res := detect.Dispatch(cctx, windows, seqID, e.reg, e.log)
	out.issues += res.Issues
	out.detTimes = res.Timings

	kept := res.Motifs[:0]
	for _, m := range res.Motifs {
		// A motif touching an interior chunk edge may be a truncated
		// fragment of a longer one. The overlap guarantees the
		// neighboring chunk sees it whole, so it is dropped here.
		if m.Start == 0 && c.start > 0 {
			continue
		}
		if m.End == len(text) && c.end < seqLen {
			continue
		}
		m = m.Translate(c.start)
		m.ID = fmt.Sprintf("%s_%s_%d_%d", m.Class, m.Subclass, m.Start, m.End)
		kept = append(kept, m)
	}

	if len(kept) > 0 {
		path, err := e.spill(kept)
		if err != nil {
			// Treat like a failed chunk: it contributes zero motifs.
			out.err = err
			out.issues++
			e.log.Errorf("chunk %d: spill: %v", c.id, err)
		} else {
			out.spill = path
			out.count = len(kept)
		}
	}
	out.elapsed = time.Since(start)
	return out
}

// spill writes motifs (global coordinates) to a private temporary JSONL
// file and returns its path.
func (e *Executor) spill(ms []motif.Motif) (string, error) {
	f, err := os.CreateTemp(e.cfg.TempDir, "motifscan-chunk-*.jsonl")
	if err != nil {
		return "", fmt.Errorf("executor: create spill: %w", err)
	}
	bw := bufio.NewWriterSize(f, 64<<10)
	enc := json.NewEncoder(bw)
	for _, m := range ms {
		if err := enc.Encode(m); err != nil {
			f.Close()
			os.Remove(f.Name())
			return "", fmt.Errorf("executor: write spill: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("executor: flush spill: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("executor: close spill: %w", err)
	}
	return f.Name(), nil
}

// readSpill streams the spill file back, calling fn per motif.
func readSpill(path string, fn func(motif.Motif) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("executor: open spill: %w", err)
	}
	defer f.Close()
	dec := json.NewDecoder(bufio.NewReaderSize(f, 64<<10))
	for {
		var m motif.Motif
		if err := dec.Decode(&m); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("executor: decode spill: %w", err)
		}
		if err := fn(m); err != nil {
			return err
		}
	}
}
