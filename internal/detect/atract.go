package detect

import (
	"motifscan/internal/motif"
	"motifscan/internal/seqctx"
)

// ATract reports homopolymeric A or T runs of at least MinRun bases.
type ATract struct {
	MinRun int
}

func (d *ATract) Name() string { return "a_tract" }

func (d *ATract) Scan(c *seqctx.Context) ([]motif.Motif, error) {
	seq := c.Seq()
	var out []motif.Motif

	i := 0
	for i < len(seq) {
		b := seq[i]
		if b != 'A' && b != 'T' {
			i++
			continue
		}
		j := i
		for j < len(seq) && seq[j] == b {
			j++
		}
		if j-i >= d.MinRun {
			sub := "a_run"
			if b == 'T' {
				sub = "t_run"
			}
			out = append(out, motif.Motif{
				Class:    "a_tract",
				Subclass: sub,
				Start:    i,
				End:      j,
				Length:   j - i,
				Score:    float64(j - i),
				Strand:   "+",
			})
		}
		i = j
	}
	return out, nil
}
