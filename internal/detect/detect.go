// Package detect holds the detector boundary: the Detector capability
// implemented by per-class scanners, a closed registry mapping class names
// to detectors, and the dispatcher that runs detectors over candidate
// windows and translates coordinates back to the chunk frame.
package detect

import (
	"fmt"
	"sort"
	"time"

	"motifscan/internal/motif"
	"motifscan/internal/seed"
	"motifscan/internal/seqctx"
	"motifscan/internal/xlog"
)

// Detector scans one window of sequence for a single motif class. Scan must
// be pure with respect to global state: re-invocable and side-effect-free,
// so the executor may run it from any worker. Returned coordinates are
// local to the given context.
type Detector interface {
	Name() string
	Scan(c *seqctx.Context) ([]motif.Motif, error)
}

// Registry is the closed class-name -> Detector table, built once at
// startup and read-only afterwards.
type Registry struct {
	m map[string]Detector
}

// NewRegistry builds a registry from detectors. Duplicate class names are
// an error.
func NewRegistry(detectors ...Detector) (*Registry, error) {
	r := &Registry{m: make(map[string]Detector, len(detectors))}
	for _, d := range detectors {
		if _, dup := r.m[d.Name()]; dup {
			return nil, fmt.Errorf("detect: duplicate detector %q", d.Name())
		}
		r.m[d.Name()] = d
	}
	return r, nil
}

// Default returns the registry of built-in reference detectors.
func Default() *Registry {
	r, err := NewRegistry(
		NewGQuadruplex(3, 7),
		&ZDNA{MinLength: 10, MinScore: 8},
		&ATract{MinRun: 8},
		&CurvedDNA{MinTract: 4, MinTracts: 3},
	)
	if err != nil {
		panic(err) // built-in names are distinct
	}
	return r
}

// Get returns the detector for class.
func (r *Registry) Get(class string) (Detector, bool) {
	d, ok := r.m[class]
	return d, ok
}

// Classes returns the registered class names, sorted.
func (r *Registry) Classes() []string {
	out := make([]string, 0, len(r.m))
	for c := range r.m {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Filter returns a registry restricted to the allow-list. A nil or empty
// list means all classes. Unknown names are an error.
func (r *Registry) Filter(allow []string) (*Registry, error) {
	if len(allow) == 0 {
		return r, nil
	}
	out := &Registry{m: make(map[string]Detector, len(allow))}
	for _, class := range allow {
		d, ok := r.m[class]
		if !ok {
			return nil, fmt.Errorf("detect: unknown class %q (known: %v)", class, r.Classes())
		}
		out.m[class] = d
	}
	return out, nil
}

// Result is what Dispatch returns for one chunk.
type Result struct {
	Motifs  []motif.Motif // chunk-local coordinates
	Issues  int           // recovered detector failures
	Timings map[string]time.Duration
}

// Dispatch invokes the class detector on every (class, window) pair and
// translates returned coordinates from window-local to chunk-local. A
// failing detector invocation is logged and counted; that window
// contributes zero motifs and the run continues. Classes are visited in
// sorted order so output order is deterministic.
func Dispatch(c *seqctx.Context, windows map[string][]seed.Window, seqName string, reg *Registry, log *xlog.Logger) Result {
	res := Result{Timings: map[string]time.Duration{}}

	classes := make([]string, 0, len(windows))
	for class := range windows {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	for _, class := range classes {
		det, ok := reg.Get(class)
		if !ok {
			continue // seeded class with no enabled detector
		}
		start := time.Now()
		for _, w := range windows[class] {
			sub := c.Slice(w.Start, w.End+1)
			ms, err := det.Scan(sub)
			if err != nil {
				log.Warnf("detector %s failed on %s[%d,%d]: %v", class, seqName, w.Start, w.End, err)
				res.Issues++
				continue
			}
			for _, m := range ms {
				res.Motifs = append(res.Motifs, m.Translate(w.Start))
			}
		}
		res.Timings[class] += time.Since(start)
	}
	return res
}
