package seqctx

import (
	"bytes"
	"testing"
)

func TestNewUppercases(t *testing.T) {
	in := []byte("acGtN")
	c := New(in)
	if !bytes.Equal(c.Seq(), []byte("ACGTN")) {
		t.Fatalf("seq = %q", c.Seq())
	}
	if c.Len() != 5 {
		t.Errorf("len = %d", c.Len())
	}
	// Input must not be mutated.
	if !bytes.Equal(in, []byte("acGtN")) {
		t.Errorf("input mutated: %q", in)
	}
}

func TestGCPrefixSums(t *testing.T) {
	c := New([]byte("GGCCAATT"))
	c.EnableGC()
	if gc := c.GC(0, 8); gc != 0.5 {
		t.Errorf("GC(0,8) = %v, want 0.5", gc)
	}
	if gc := c.GC(0, 4); gc != 1.0 {
		t.Errorf("GC(0,4) = %v, want 1", gc)
	}
	if gc := c.GC(4, 8); gc != 0.0 {
		t.Errorf("GC(4,8) = %v, want 0", gc)
	}
}

func TestGCWithoutPrefixSums(t *testing.T) {
	c := New([]byte("GCAT"))
	if gc := c.GC(0, 4); gc != 0.5 {
		t.Errorf("GC = %v, want 0.5", gc)
	}
}

func TestGCClampsRange(t *testing.T) {
	c := New([]byte("GGGG"))
	c.EnableGC()
	if gc := c.GC(-5, 99); gc != 1.0 {
		t.Errorf("GC = %v, want 1", gc)
	}
	if gc := c.GC(3, 3); gc != 0 {
		t.Errorf("empty range GC = %v, want 0", gc)
	}
}

func TestSlice(t *testing.T) {
	c := New([]byte("AAACCCGGG"))
	s := c.Slice(3, 6)
	if string(s.Seq()) != "CCC" {
		t.Fatalf("slice = %q", s.Seq())
	}
	s2 := c.Slice(-2, 99)
	if s2.Len() != 9 {
		t.Errorf("clamped slice len = %d", s2.Len())
	}
}
