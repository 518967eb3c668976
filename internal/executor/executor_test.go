package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"motifscan/internal/detect"
	"motifscan/internal/motif"
	"motifscan/internal/perf"
	"motifscan/internal/progress"
	"motifscan/internal/results"
	"motifscan/internal/seed"
	"motifscan/internal/seqctx"
	"motifscan/internal/seqstore"
	"motifscan/internal/strategy"
	"motifscan/internal/xlog"
)

// aTractTable seeds only the a_tract class, permissively.
func aTractTable(t *testing.T) *seed.Table {
	t.Helper()
	tab, err := seed.NewTable([]seed.Seed{
		{Pattern: "AAAAAAAAAA", Classes: []string{"a_tract"}, Epsilon: 100, MaxExtension: 50, MinSamples: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	return tab
}

func aTractRegistry(t *testing.T) *detect.Registry {
	t.Helper()
	reg, err := detect.NewRegistry(&detect.ATract{MinRun: 8})
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

// tiledSequence builds ATCGATCG filler of the given length with a run of
// exactly 12 As planted at each offset in inserts. G guards on both sides
// keep the filler from extending a run past its intended bounds.
func tiledSequence(length int, inserts ...int) string {
	b := []byte(strings.Repeat("ATCGATCG", length/8+1))[:length]
	for _, off := range inserts {
		if off > 0 {
			b[off-1] = 'G'
		}
		copy(b[off:off+12], strings.Repeat("A", 12))
		if off+12 < length {
			b[off+12] = 'G'
		}
	}
	return string(b)
}

// plantRun writes an n-base poly-A run at off with G guards on both sides.
func plantRun(b []byte, off, n int) {
	if off > 0 {
		b[off-1] = 'G'
	}
	copy(b[off:off+n], strings.Repeat("A", n))
	if off+n < len(b) {
		b[off+n] = 'G'
	}
}

type fixture struct {
	store  *seqstore.Store
	exec   *Executor
	hits   *results.Store
	id     string
	seqDir string
}

func newFixture(t *testing.T, sequence string, cfg Config) *fixture {
	t.Helper()
	seqDir := t.TempDir()
	store, err := seqstore.Open(seqDir)
	if err != nil {
		t.Fatal(err)
	}
	meta, err := store.Save(strings.NewReader(sequence), "test")
	if err != nil {
		t.Fatal(err)
	}
	hits, err := results.Open(t.TempDir(), meta.ID)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { hits.Close() })
	cfg.TempDir = t.TempDir()
	exec := New(store, aTractTable(t), aTractRegistry(t), perf.New(), xlog.Discard(), cfg)
	return &fixture{store: store, exec: exec, hits: hits, id: meta.ID, seqDir: seqDir}
}

func collectKeys(t *testing.T, hits *results.Store) map[motif.Key]motif.Motif {
	t.Helper()
	out := map[motif.Key]motif.Motif{}
	err := hits.Iter(0, func(m motif.Motif) error {
		if _, dup := out[m.Key()]; dup {
			t.Errorf("duplicate key %+v in results", m.Key())
		}
		out[m.Key()] = m
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func singleTier(chunkSize, overlap int) strategy.Plan {
	return strategy.Plan{Mode: strategy.ModeSingle, Tiers: []strategy.TierConfig{{ChunkSize: chunkSize, Overlap: overlap}}}
}

func TestBoundaryMotifFoundExactlyOnce(t *testing.T) {
	// Motif planted inside the overlap window between chunks 0 and 1.
	fx := newFixture(t, tiledSequence(5000, 940), Config{Workers: 2})
	rep, err := fx.exec.Run(context.Background(), fx.id, singleTier(1000, 100), fx.hits, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := collectKeys(t, fx.hits)
	if len(got) != 1 {
		t.Fatalf("motifs = %d (%v), want exactly 1", len(got), got)
	}
	want := motif.Key{Class: "a_tract", Subclass: "a_run", Start: 940, End: 952}
	if _, ok := got[want]; !ok {
		t.Fatalf("missing %+v, got %v", want, got)
	}
	if rep.Deduped == 0 {
		t.Error("expected the overlap duplicate to be counted as deduped")
	}
}

func TestTruncatedBoundaryFragmentsSuppressed(t *testing.T) {
	// A run crossing a chunk edge is seen truncated by one chunk and whole
	// by its neighbor. Only the whole run may reach the results store.
	b := []byte(tiledSequence(5000))
	plantRun(b, 990, 12)  // crosses the right edge of chunk [0,1000)
	plantRun(b, 2692, 20) // crosses the left edge of chunk [2700,3700)
	fx := newFixture(t, string(b), Config{Workers: 2})
	if _, err := fx.exec.Run(context.Background(), fx.id, singleTier(1000, 100), fx.hits, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := collectKeys(t, fx.hits)
	want := []motif.Key{
		{Class: "a_tract", Subclass: "a_run", Start: 990, End: 1002},
		{Class: "a_tract", Subclass: "a_run", Start: 2692, End: 2712},
	}
	if len(got) != len(want) {
		t.Fatalf("motifs = %v, want %d whole runs", got, len(want))
	}
	for _, k := range want {
		if _, ok := got[k]; !ok {
			t.Errorf("missing whole run %+v", k)
		}
	}
}

func TestCoverageAcrossAllOffsets(t *testing.T) {
	// One 12-bp motif at several positions including chunk boundaries;
	// overlap >= motif length - 1 guarantees each is seen whole.
	inserts := []int{0, 500, 988, 1100, 1976, 2488}
	fx := newFixture(t, tiledSequence(2500, inserts...), Config{Workers: 3})
	if _, err := fx.exec.Run(context.Background(), fx.id, singleTier(1000, 100), fx.hits, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := collectKeys(t, fx.hits)
	if len(got) != len(inserts) {
		t.Fatalf("motifs = %d, want %d: %v", len(got), len(inserts), got)
	}
	for _, off := range inserts {
		k := motif.Key{Class: "a_tract", Subclass: "a_run", Start: off, End: off + 12}
		if _, ok := got[k]; !ok {
			t.Errorf("motif at %d not found", off)
		}
	}
}

func TestDirectModeSingleChunk(t *testing.T) {
	fx := newFixture(t, tiledSequence(900, 100), Config{})
	rep, err := fx.exec.Run(context.Background(), fx.id, strategy.Plan{Mode: strategy.ModeDirect}, fx.hits, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Chunks != 1 {
		t.Errorf("chunks = %d, want 1", rep.Chunks)
	}
	if got := collectKeys(t, fx.hits); len(got) != 1 {
		t.Errorf("motifs = %v, want 1", got)
	}
}

func TestMultiTierPlanStillUnique(t *testing.T) {
	// Two tiers rescan the same bases; dedup must keep each finding once.
	inserts := []int{300, 940, 1700}
	plan := strategy.Plan{
		Mode: strategy.ModeDouble,
		Tiers: []strategy.TierConfig{
			{ChunkSize: 1000, Overlap: 100},
			{ChunkSize: 2000, Overlap: 200},
		},
	}
	fx := newFixture(t, tiledSequence(3000, inserts...), Config{Workers: 2})
	rep, err := fx.exec.Run(context.Background(), fx.id, plan, fx.hits, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := collectKeys(t, fx.hits)
	if len(got) != len(inserts) {
		t.Fatalf("motifs = %d, want %d", len(got), len(inserts))
	}
	if rep.Deduped == 0 {
		t.Error("double-tier rescan should have deduped something")
	}
}

func TestFallbackEquivalence(t *testing.T) {
	sequence := tiledSequence(4000, 100, 940, 2300, 3500)

	run := func(cfg Config) map[motif.Key]motif.Motif {
		fx := newFixture(t, sequence, cfg)
		if _, err := fx.exec.Run(context.Background(), fx.id, singleTier(1000, 100), fx.hits, nil); err != nil {
			t.Fatalf("Run(%+v): %v", cfg, err)
		}
		return collectKeys(t, fx.hits)
	}

	par := run(Config{Workers: 4})
	seq := run(Config{Sequential: true})
	if len(par) != len(seq) {
		t.Fatalf("parallel %d motifs, sequential %d", len(par), len(seq))
	}
	for k := range par {
		if _, ok := seq[k]; !ok {
			t.Errorf("key %+v only found in parallel run", k)
		}
	}
}

func TestTimeoutDegradesToSequential(t *testing.T) {
	fx := newFixture(t, tiledSequence(4000, 940), Config{Workers: 2, Timeout: time.Nanosecond})
	rep, err := fx.exec.Run(context.Background(), fx.id, singleTier(1000, 100), fx.hits, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !rep.Degraded {
		t.Error("expected a degraded run")
	}
	if got := collectKeys(t, fx.hits); len(got) != 1 {
		t.Errorf("motifs = %v, want 1 despite degradation", got)
	}
}

func TestCanceledContextAborts(t *testing.T) {
	fx := newFixture(t, tiledSequence(4000, 940), Config{Workers: 2})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := fx.exec.Run(ctx, fx.id, singleTier(1000, 100), fx.hits, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestCorruptStorageIsFatal(t *testing.T) {
	fx := newFixture(t, tiledSequence(4000, 940), Config{Workers: 2})
	// Sneak whitespace into the stored file behind the store's back.
	seqPath := filepath.Join(fx.seqDir, fx.id+".seq")
	b, err := os.ReadFile(seqPath)
	if err != nil {
		t.Fatal(err)
	}
	b[1500] = '\n'
	if err := os.WriteFile(seqPath, b, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = fx.exec.Run(context.Background(), fx.id, singleTier(1000, 100), fx.hits, nil)
	if !errors.Is(err, seqstore.ErrCorruptStorage) {
		t.Fatalf("err = %v, want ErrCorruptStorage", err)
	}
}

func TestProgressCallback(t *testing.T) {
	fx := newFixture(t, tiledSequence(4000, 940), Config{Workers: 2})
	var mu sync.Mutex
	var updates int
	var lastPct, minMem float64
	fn := func(u progress.Update) {
		mu.Lock()
		defer mu.Unlock()
		updates++
		if u.Pct > lastPct {
			lastPct = u.Pct
		}
		if minMem == 0 || u.MemoryMB < minMem {
			minMem = u.MemoryMB
		}
	}
	if _, err := fx.exec.Run(context.Background(), fx.id, singleTier(1000, 100), fx.hits, progress.Func(fn)); err != nil {
		t.Fatal(err)
	}
	if updates == 0 {
		t.Fatal("no progress updates delivered")
	}
	if lastPct != 100 {
		t.Errorf("final pct = %v, want 100", lastPct)
	}
	if minMem <= 0 {
		t.Errorf("memory = %v MB in updates, want > 0", minMem)
	}
}

func TestDetectorFailureContributesZeroMotifs(t *testing.T) {
	store, err := seqstore.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	meta, err := store.Save(strings.NewReader(tiledSequence(2000, 500)), "bad")
	if err != nil {
		t.Fatal(err)
	}
	hits, err := results.Open(t.TempDir(), meta.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer hits.Close()

	reg, err := detect.NewRegistry(failingDetector{})
	if err != nil {
		t.Fatal(err)
	}
	exec := New(store, aTractTable(t), reg, perf.New(), xlog.Discard(), Config{Workers: 2, TempDir: t.TempDir()})
	rep, err := exec.Run(context.Background(), meta.ID, singleTier(1000, 100), hits, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Motifs != 0 {
		t.Errorf("motifs = %d, want 0", rep.Motifs)
	}
	if rep.Issues == 0 {
		t.Error("expected recovered issues to be counted")
	}
}

type failingDetector struct{}

func (failingDetector) Name() string { return "a_tract" }
func (failingDetector) Scan(*seqctx.Context) ([]motif.Motif, error) {
	return nil, errors.New("synthetic detector failure")
}
