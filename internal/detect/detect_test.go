package detect

import (
	"errors"
	"strings"
	"testing"

	"motifscan/internal/motif"
	"motifscan/internal/seed"
	"motifscan/internal/seqctx"
	"motifscan/internal/xlog"
)

type stubDetector struct {
	name string
	err  error
	hits []motif.Motif
}

func (s *stubDetector) Name() string { return s.name }
func (s *stubDetector) Scan(*seqctx.Context) ([]motif.Motif, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.hits, nil
}

func TestRegistryDuplicate(t *testing.T) {
	if _, err := NewRegistry(&stubDetector{name: "x"}, &stubDetector{name: "x"}); err == nil {
		t.Fatal("duplicate class should fail")
	}
}

func TestRegistryFilter(t *testing.T) {
	r, err := NewRegistry(&stubDetector{name: "a"}, &stubDetector{name: "b"})
	if err != nil {
		t.Fatal(err)
	}
	f, err := r.Filter([]string{"b"})
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if got := f.Classes(); len(got) != 1 || got[0] != "b" {
		t.Errorf("classes = %v, want [b]", got)
	}
	if _, err := r.Filter([]string{"nope"}); err == nil {
		t.Error("unknown class should fail")
	}
	// nil allow-list keeps everything
	all, err := r.Filter(nil)
	if err != nil || len(all.Classes()) != 2 {
		t.Errorf("nil filter = %v, %v", all.Classes(), err)
	}
}

func TestDispatchTranslatesWindowCoords(t *testing.T) {
	hit := motif.Motif{Class: "a", Subclass: "s", Start: 2, End: 6, Length: 4, Strand: "+"}
	reg, _ := NewRegistry(&stubDetector{name: "a", hits: []motif.Motif{hit}})

	c := seqctx.New([]byte(strings.Repeat("N", 100)))
	windows := map[string][]seed.Window{"a": {{Start: 40, End: 59}}}

	res := Dispatch(c, windows, "test", reg, xlog.Discard())
	if len(res.Motifs) != 1 {
		t.Fatalf("motifs = %d, want 1", len(res.Motifs))
	}
	if res.Motifs[0].Start != 42 || res.Motifs[0].End != 46 {
		t.Errorf("coords = [%d,%d), want [42,46)", res.Motifs[0].Start, res.Motifs[0].End)
	}
}

func TestDispatchRecoversDetectorError(t *testing.T) {
	boom := errors.New("boom")
	reg, _ := NewRegistry(
		&stubDetector{name: "bad", err: boom},
		&stubDetector{name: "good", hits: []motif.Motif{{Class: "good", Start: 0, End: 1}}},
	)
	c := seqctx.New([]byte("ACGTACGTACGT"))
	windows := map[string][]seed.Window{
		"bad":  {{Start: 0, End: 5}},
		"good": {{Start: 0, End: 5}},
	}
	res := Dispatch(c, windows, "test", reg, xlog.Discard())
	if res.Issues != 1 {
		t.Errorf("issues = %d, want 1", res.Issues)
	}
	if len(res.Motifs) != 1 || res.Motifs[0].Class != "good" {
		t.Errorf("motifs = %+v, want the good hit only", res.Motifs)
	}
}

func TestDispatchSkipsUnregisteredClass(t *testing.T) {
	reg, _ := NewRegistry(&stubDetector{name: "a"})
	c := seqctx.New([]byte("ACGT"))
	res := Dispatch(c, map[string][]seed.Window{"mystery": {{Start: 0, End: 3}}}, "t", reg, xlog.Discard())
	if len(res.Motifs) != 0 || res.Issues != 0 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestGQuadruplex(t *testing.T) {
	d := NewGQuadruplex(3, 7)
	seq := "TT" + "GGGA" + "GGGTT" + "GGGC" + "GGG" + "TTTT"
	got, err := d.Scan(seqctx.New([]byte(seq)))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("hits = %+v, want 1", got)
	}
	if got[0].Start != 2 || got[0].Subclass != "g4" || got[0].Strand != "+" {
		t.Errorf("hit = %+v", got[0])
	}
	if got[0].Score <= 0 {
		t.Errorf("score = %v, want > 0", got[0].Score)
	}
}

func TestGQuadruplexMinusStrand(t *testing.T) {
	d := NewGQuadruplex(3, 7)
	seq := "AA" + "CCCT" + "CCCT" + "CCCT" + "CCC" + "AA"
	got, err := d.Scan(seqctx.New([]byte(seq)))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Strand != "-" || got[0].Subclass != "c4" {
		t.Fatalf("hits = %+v, want one minus-strand hit", got)
	}
}

func TestZDNA(t *testing.T) {
	d := &ZDNA{MinLength: 10, MinScore: 8}
	seq := "AAAA" + strings.Repeat("GC", 8) + "AAAA"
	got, err := d.Scan(seqctx.New([]byte(seq)))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("hits = %+v, want 1", got)
	}
	// The tract runs through the trailing C->A step (still alternating).
	if got[0].Start != 4 || got[0].End != 21 || got[0].Subclass != "alternating_gc" {
		t.Errorf("hit = %+v", got[0])
	}
}

func TestZDNARejectsShortTract(t *testing.T) {
	d := &ZDNA{MinLength: 10, MinScore: 8}
	got, err := d.Scan(seqctx.New([]byte("AAAAGCGCAAAA")))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("hits = %+v, want none", got)
	}
}

func TestATract(t *testing.T) {
	d := &ATract{MinRun: 8}
	got, err := d.Scan(seqctx.New([]byte("CC" + strings.Repeat("A", 9) + "CC" + strings.Repeat("T", 8) + "C")))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("hits = %+v, want 2", got)
	}
	if got[0].Subclass != "a_run" || got[0].Start != 2 || got[0].Length != 9 {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Subclass != "t_run" || got[1].Length != 8 {
		t.Errorf("second = %+v", got[1])
	}
}

func TestCurvedDNA(t *testing.T) {
	d := &CurvedDNA{MinTract: 4, MinTracts: 3}
	// Three 5-bp A tracts with centers 10 bp apart.
	unit := "AAAAA" + "GCGCG"
	seq := strings.Repeat(unit, 3) + "GCGCGCGC"
	got, err := d.Scan(seqctx.New([]byte(seq)))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("hits = %+v, want 1", got)
	}
	if got[0].Score != 3 || got[0].Start != 0 || got[0].End != 25 {
		t.Errorf("hit = %+v", got[0])
	}
}
