// Package executor runs the chunked scanning pipeline: it builds the chunk
// work list for a strategy plan, fans chunks out to a bounded worker pool,
// and merges per-chunk spill files into the results store with
// deterministic cross-chunk deduplication. On any pool-level failure the
// remaining chunks are re-run sequentially; individual chunk failures are
// recovered and counted, never fatal.
package executor

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"motifscan/internal/detect"
	"motifscan/internal/perf"
	"motifscan/internal/progress"
	"motifscan/internal/results"
	"motifscan/internal/seed"
	"motifscan/internal/seqstore"
	"motifscan/internal/strategy"
	"motifscan/internal/xlog"
)

// DefaultWorkerCap bounds the default pool size; detection is CPU-bound and
// memory per in-flight chunk is a macro chunk's worth.
const DefaultWorkerCap = 4

// Config controls one Executor.
type Config struct {
	Workers    int           // pool size; <=0 means min(DefaultWorkerCap, NumCPU)
	Sequential bool          // skip the pool entirely
	Timeout    time.Duration // overall wait on worker completion; 0 = none
	TempDir    string        // spill file directory; "" = os.TempDir()
}

// Executor wires the stores, the seed table, and the detector registry
// together for repeated runs.
type Executor struct {
	seqs  *seqstore.Store
	table *seed.Table
	reg   *detect.Registry
	mon   *perf.Monitor
	log   *xlog.Logger
	cfg   Config
}

func New(seqs *seqstore.Store, table *seed.Table, reg *detect.Registry, mon *perf.Monitor, log *xlog.Logger, cfg Config) *Executor {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkerCap
		if n := runtime.NumCPU(); n < cfg.Workers {
			cfg.Workers = n
		}
	}
	return &Executor{seqs: seqs, table: table, reg: reg, mon: mon, log: log, cfg: cfg}
}

// chunkItem is one unit of parallel work, in global coordinates
// (half-open).
type chunkItem struct {
	id    int
	start int
	end   int
}

// Report summarizes one run.
type Report struct {
	Chunks   int
	Motifs   int // unique motifs written to the results store
	Deduped  int // duplicates dropped at chunk boundaries
	Issues   int // recovered failures (detector windows, dropped chunks)
	Degraded bool // set when the pool failed and the run fell back to sequential
}

// buildChunks enumerates the chunk list for a plan, finest tier first.
func buildChunks(length int, plan strategy.Plan) []chunkItem {
	if plan.Mode == strategy.ModeDirect || len(plan.Tiers) == 0 {
		return []chunkItem{{id: 0, start: 0, end: length}}
	}
	var chunks []chunkItem
	for _, tier := range plan.Tiers {
		for _, b := range seqstore.ChunkBounds(length, tier.ChunkSize, tier.Overlap) {
			chunks = append(chunks, chunkItem{id: len(chunks), start: b[0], end: b[1]})
		}
	}
	return chunks
}

// PlanChunks reports how many chunks a plan decomposes a sequence of the
// given length into. Useful for sizing progress output before a run.
func PlanChunks(length int, plan strategy.Plan) int {
	return len(buildChunks(length, plan))
}

// Run executes the plan against sequence seqID, streaming unique motifs
// into hits. It returns a Report; the error is non-nil only for fatal
// conditions (unknown sequence, corrupt storage, canceled context).
func (e *Executor) Run(ctx context.Context, seqID string, plan strategy.Plan, hits *results.Store, onProgress progress.Func) (Report, error) {
	meta, err := e.seqs.Metadata(seqID)
	if err != nil {
		return Report{}, err
	}

	buildStart := time.Now()
	chunks := buildChunks(meta.Length, plan)
	e.mon.RecordStage("build", time.Since(buildStart))
	e.log.Debugf("plan %s: %d chunks over %d bp", plan.Mode, len(chunks), meta.Length)

	rep := Report{Chunks: len(chunks)}

	dispatchStart := time.Now()
	outs := make([]*workerOut, len(chunks))
	var done atomic.Int64

	collect := func(out *workerOut) {
		e.mon.RecordChunk(out.chunkID, out.elapsed, out.count, out.bp)
		for name, d := range out.detTimes {
			e.mon.RecordDetector(out.chunkID, name, d, out.bp)
		}
		if out.issues > 0 {
			e.mon.AddIssues(out.issues)
		}
		e.mon.SampleMemory()
		n := done.Add(1)
		sec := out.elapsed.Seconds()
		tp := 0.0
		if sec > 0 {
			tp = float64(out.bp) / sec
		}
		onProgress.Notify(progress.Update{
			Stage:       "dispatch",
			ChunkID:     out.chunkID,
			ElapsedSec:  sec,
			BPProcessed: out.bp,
			Throughput:  tp,
			MemoryMB:    e.mon.PeakMemoryMB(),
			Pct:         100 * float64(n) / float64(len(chunks)),
		})
	}

	if !e.cfg.Sequential {
		if err := e.runPool(ctx, seqID, meta.Length, chunks, outs, collect); err != nil {
			if !errors.Is(err, errPoolDegraded) {
				return rep, err
			}
			rep.Degraded = true
		}
	}

	// Sequential path: primary when Sequential is set, fallback for any
	// chunk the pool did not finish.
	for i, c := range chunks {
		if outs[i] != nil && !outs[i].canceled {
			continue
		}
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		out := e.processChunk(ctx, seqID, meta.Length, c)
		if out.fatal != nil {
			return rep, out.fatal
		}
		outs[i] = out
		collect(out)
	}
	e.mon.RecordStage("dispatch", time.Since(dispatchStart))

	mergeStart := time.Now()
	unique, dup, err := e.merge(outs, hits)
	e.mon.RecordStage("merge", time.Since(mergeStart))
	if err != nil {
		return rep, err
	}
	rep.Motifs = unique
	rep.Deduped = dup
	for _, out := range outs {
		rep.Issues += out.issues
	}
	if rep.Degraded {
		e.mon.AddIssues(1)
		e.log.Warnf("worker pool degraded; run completed sequentially")
	}
	return rep, nil
}

// errPoolDegraded signals that the parallel phase gave up and the caller
// must fall back to sequential execution for unfinished chunks.
var errPoolDegraded = errors.New("executor: worker pool degraded")

// runPool runs chunks on the bounded pool. Chunk-local failures stay inside
// their workerOut; only corrupt storage and parent-context cancellation
// abort. A collection timeout converts to errPoolDegraded.
func (e *Executor) runPool(ctx context.Context, seqID string, seqLen int, chunks []chunkItem, outs []*workerOut, collect func(*workerOut)) error {
	pctx := ctx
	var cancel context.CancelFunc
	if e.cfg.Timeout > 0 {
		pctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(pctx)
	sem := semaphore.NewWeighted(int64(e.cfg.Workers))

	var poolErr error
	for i, c := range chunks {
		if err := sem.Acquire(gctx, 1); err != nil {
			poolErr = err
			break
		}
		i, c := i, c
		g.Go(func() error {
			defer sem.Release(1)
			out := e.processChunk(gctx, seqID, seqLen, c)
			outs[i] = out
			if out.fatal != nil {
				return out.fatal
			}
			if !out.canceled {
				collect(out)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		poolErr = err
	}

	if poolErr == nil {
		return nil
	}
	// Parent cancellation and corrupt storage are fatal; anything else
	// (collection timeout included) degrades to sequential.
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(poolErr, seqstore.ErrCorruptStorage) {
		return poolErr
	}
	e.log.Warnf("worker pool failure: %v; falling back to sequential execution", poolErr)
	return fmt.Errorf("%w: %v", errPoolDegraded, poolErr)
}
