package detect

import (
	"motifscan/internal/motif"
	"motifscan/internal/seqctx"
)

// ZDNA scores alternating purine-pyrimidine tracts with a dinucleotide
// weight table: GC/CG steps count 3, other alternating steps count 1. A
// maximal tract is reported when it is long enough and its score clears
// MinScore.
type ZDNA struct {
	MinLength int // minimum tract length in bp
	MinScore  int
}

func (d *ZDNA) Name() string { return "z_dna" }

func isPurine(b byte) bool     { return b == 'A' || b == 'G' }
func isPyrimidine(b byte) bool { return b == 'C' || b == 'T' }

// alternating reports whether the a->b step switches between purine and
// pyrimidine, and its weight.
func zStep(a, b byte) (int, bool) {
	switch {
	case isPurine(a) && isPyrimidine(b), isPyrimidine(a) && isPurine(b):
		if (a == 'G' && b == 'C') || (a == 'C' && b == 'G') {
			return 3, true
		}
		return 1, true
	}
	return 0, false
}

func (d *ZDNA) Scan(c *seqctx.Context) ([]motif.Motif, error) {
	seq := c.Seq()
	var out []motif.Motif

	i := 0
	for i < len(seq)-1 {
		score, ok := zStep(seq[i], seq[i+1])
		if !ok {
			i++
			continue
		}
		start := i
		gcSteps := 0
		if score == 3 {
			gcSteps = 1
		}
		j := i + 1
		for j < len(seq)-1 {
			w, ok := zStep(seq[j], seq[j+1])
			if !ok {
				break
			}
			score += w
			if w == 3 {
				gcSteps++
			}
			j++
		}
		end := j + 1 // exclusive
		if end-start >= d.MinLength && score >= d.MinScore {
			sub := "mixed"
			if gcSteps*2 >= end-start-1 {
				sub = "alternating_gc"
			}
			out = append(out, motif.Motif{
				Class:    "z_dna",
				Subclass: sub,
				Start:    start,
				End:      end,
				Length:   end - start,
				Score:    float64(score),
				Strand:   "+",
			})
		}
		i = end
	}
	return out, nil
}
