package detect

import (
	"regexp"
	"strconv"

	"motifscan/internal/motif"
	"motifscan/internal/seqctx"
)

// GQuadruplex finds four G-runs (or C-runs on the minus strand) separated
// by short loops. The scoring here is a deliberately simple collaborator
// stand-in: match length weighted by local G+C content.
type GQuadruplex struct {
	MinRun  int // minimum G-run length, typically 3
	MaxLoop int // maximum loop length, typically 7

	plus, minus *regexp.Regexp
}

// NewGQuadruplex compiles the strand patterns up front so Scan is
// read-only and safe to call from any worker.
func NewGQuadruplex(minRun, maxLoop int) *GQuadruplex {
	return &GQuadruplex{
		MinRun:  minRun,
		MaxLoop: maxLoop,
		plus:    regexp.MustCompile(gqPattern('G', minRun, maxLoop)),
		minus:   regexp.MustCompile(gqPattern('C', minRun, maxLoop)),
	}
}

func (d *GQuadruplex) Name() string { return "g_quadruplex" }

func gqPattern(base byte, run, loop int) string {
	b := string(base)
	g := b + "{" + strconv.Itoa(run) + ",}"
	l := "[ACGT]{1," + strconv.Itoa(loop) + "}"
	return g + l + g + l + g + l + g
}

func (d *GQuadruplex) Scan(c *seqctx.Context) ([]motif.Motif, error) {
	c.EnableGC()

	var out []motif.Motif
	for _, sr := range []struct {
		strand string
		re     *regexp.Regexp
	}{{"+", d.plus}, {"-", d.minus}} {
		for _, loc := range sr.re.FindAllIndex(c.Seq(), -1) {
			start, end := loc[0], loc[1]
			out = append(out, motif.Motif{
				Class:    "g_quadruplex",
				Subclass: gqSubclass(sr.strand),
				Start:    start,
				End:      end,
				Length:   end - start,
				Score:    float64(end-start) * c.GC(start, end),
				Strand:   sr.strand,
			})
		}
	}
	return out, nil
}

func gqSubclass(strand string) string {
	if strand == "+" {
		return "g4"
	}
	return "c4"
}
