// Package seqctx wraps one chunk of sequence text with the preprocessing
// every detector would otherwise repeat: uppercasing is done once at
// construction, the length is cached, and local GC content is answerable in
// O(1) after an optional O(n) prefix-sum build.
package seqctx

// Context is the read-only view of one chunk handed to detectors.
type Context struct {
	seq []byte
	gc  []int32 // gc[i] = count of G/C in seq[:i]; nil until EnableGC
}

// New copies seq, uppercases it if needed, and returns a Context. The input
// slice is never retained.
func New(seq []byte) *Context {
	up := make([]byte, len(seq))
	copy(up, seq)
	for i, b := range up {
		if b >= 'a' && b <= 'z' {
			up[i] = b - ('a' - 'A')
		}
	}
	return &Context{seq: up}
}

// Seq returns the uppercased chunk text. Callers must not mutate it.
func (c *Context) Seq() []byte { return c.seq }

// Len returns the cached chunk length.
func (c *Context) Len() int { return len(c.seq) }

// Slice returns a Context over seq[start:end] sharing the parent's bytes.
// The sub-context starts without prefix sums; detectors that need local
// composition call EnableGC themselves.
func (c *Context) Slice(start, end int) *Context {
	if start < 0 {
		start = 0
	}
	if end > len(c.seq) {
		end = len(c.seq)
	}
	return &Context{seq: c.seq[start:end]}
}

// EnableGC builds the prefix-sum array. Calling it more than once is a no-op.
func (c *Context) EnableGC() {
	if c.gc != nil {
		return
	}
	gc := make([]int32, len(c.seq)+1)
	for i, b := range c.seq {
		gc[i+1] = gc[i]
		if b == 'G' || b == 'C' {
			gc[i+1]++
		}
	}
	c.gc = gc
}

// GC returns the fraction of G/C bases in seq[start:end). It is O(1) when
// EnableGC has been called and falls back to a direct scan otherwise.
func (c *Context) GC(start, end int) float64 {
	if start < 0 {
		start = 0
	}
	if end > len(c.seq) {
		end = len(c.seq)
	}
	if end <= start {
		return 0
	}
	if c.gc != nil {
		return float64(c.gc[end]-c.gc[start]) / float64(end-start)
	}
	n := 0
	for _, b := range c.seq[start:end] {
		if b == 'G' || b == 'C' {
			n++
		}
	}
	return float64(n) / float64(end-start)
}
