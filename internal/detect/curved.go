package detect

import (
	"motifscan/internal/motif"
	"motifscan/internal/seqctx"
)

// CurvedDNA looks for phased A/T tracts: MinTracts or more runs of length
// >= MinTract whose centers repeat with roughly the helical period (10 bp,
// +/-2). Phased tracts bend the helix additively.
type CurvedDNA struct {
	MinTract  int // minimum length of one tract
	MinTracts int // minimum tracts in phase
}

func (d *CurvedDNA) Name() string { return "curved_dna" }

type tract struct {
	start, end int // half-open
}

func (t tract) center() int { return (t.start + t.end) / 2 }

func (d *CurvedDNA) Scan(c *seqctx.Context) ([]motif.Motif, error) {
	seq := c.Seq()

	var tracts []tract
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
		if j-i >= d.MinTract {
			tracts = append(tracts, tract{start: i, end: j})
		}
		i = j
	}

	const period, tolerance = 10, 2

	var out []motif.Motif
	for i := 0; i < len(tracts); {
		run := 1
		for i+run < len(tracts) {
			gap := tracts[i+run].center() - tracts[i+run-1].center()
			if gap < period-tolerance || gap > period+tolerance {
				break
			}
			run++
		}
		if run >= d.MinTracts {
			start := tracts[i].start
			end := tracts[i+run-1].end
			out = append(out, motif.Motif{
				Class:    "curved_dna",
				Subclass: "phased_a_tract",
				Start:    start,
				End:      end,
				Length:   end - start,
				Score:    float64(run),
				Strand:   "+",
			})
		}
		i += run
	}
	return out, nil
}
