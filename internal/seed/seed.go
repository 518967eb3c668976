// Package seed implements the multi-pattern pre-filter that narrows the
// search space before full-resolution detection: exact k-mer seeds run
// through one Aho-Corasick automaton, regex seeds through compiled stdlib
// regexps, and the resulting per-class hit positions are clustered and
// extended into candidate windows.
package seed

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

// Seed is one cheap, low-specificity pattern. Exact seeds are fixed-length
// k-mers over ACGT; regex seeds are short structural patterns. A seed may
// belong to multiple classes, in which case its hit positions are shared
// across all of them.
type Seed struct {
	Pattern      string   `toml:"pattern"`
	IsRegex      bool     `toml:"regex"`
	Classes      []string `toml:"classes"`
	MaxExtension int      `toml:"max_extension"`
	Epsilon      int      `toml:"epsilon"`
	MinSamples   int      `toml:"min_samples"`
}

// Params are the clustering parameters resolved for one class. When a class
// is seeded by multiple entries the resolution biases toward over-inclusion:
// largest epsilon, largest extension, smallest min-samples.
type Params struct {
	Epsilon      int
	MaxExtension int
	MinSamples   int
}

// Table is the immutable, explicitly constructed seed configuration. Build
// one with NewTable and share it freely; it is safe for concurrent use.
type Table struct {
	seeds  []Seed
	exact  []int // indexes into seeds
	regex  []compiledRegex
	ac     []acNode
	params map[string]Params
}

type compiledRegex struct {
	seedIdx int
	re      *regexp.Regexp
}

// NewTable validates and compiles seeds. Exact patterns are normalized to
// uppercase and must be nonempty ACGT strings; regex patterns are compiled
// case-insensitively.
func NewTable(seeds []Seed) (*Table, error) {
	t := &Table{params: map[string]Params{}}
	for i, s := range seeds {
		if len(s.Classes) == 0 {
			return nil, fmt.Errorf("seed: pattern %q has no classes", s.Pattern)
		}
		if s.Pattern == "" {
			return nil, fmt.Errorf("seed: empty pattern (entry %d)", i)
		}
		if s.IsRegex {
			re, err := regexp.Compile("(?i)" + s.Pattern)
			if err != nil {
				return nil, fmt.Errorf("seed: compile %q: %w", s.Pattern, err)
			}
			t.regex = append(t.regex, compiledRegex{seedIdx: len(t.seeds), re: re})
		} else {
			s.Pattern = strings.ToUpper(s.Pattern)
			for _, b := range []byte(s.Pattern) {
				if baseIdx(b) < 0 {
					return nil, fmt.Errorf("seed: exact pattern %q contains non-ACGT byte %q", s.Pattern, b)
				}
			}
			t.exact = append(t.exact, len(t.seeds))
		}
		t.seeds = append(t.seeds, s)

		for _, class := range s.Classes {
			p, ok := t.params[class]
			if !ok {
				p = Params{Epsilon: s.Epsilon, MaxExtension: s.MaxExtension, MinSamples: s.MinSamples}
			} else {
				if s.Epsilon > p.Epsilon {
					p.Epsilon = s.Epsilon
				}
				if s.MaxExtension > p.MaxExtension {
					p.MaxExtension = s.MaxExtension
				}
				if s.MinSamples < p.MinSamples {
					p.MinSamples = s.MinSamples
				}
			}
			t.params[class] = p
		}
	}
	t.ac = buildAC(t.seeds, t.exact)
	return t, nil
}

// ClassParams resolves clustering parameters for class. The second return
// is false if no seed owns the class.
func (t *Table) ClassParams(class string) (Params, bool) {
	p, ok := t.params[class]
	return p, ok
}

// Classes returns every class owned by at least one seed.
func (t *Table) Classes() []string {
	out := make([]string, 0, len(t.params))
	for c := range t.params {
		out = append(out, c)
	}
	return out
}

// LoadTOML reads a [[seed]] array from path.
func LoadTOML(path string) ([]Seed, error) {
	var doc struct {
		Seed []Seed `toml:"seed"`
	}
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, fmt.Errorf("seed: load %s: %w", path, err)
	}
	if len(doc.Seed) == 0 {
		return nil, fmt.Errorf("seed: %s defines no seeds", path)
	}
	return doc.Seed, nil
}

// Default returns the built-in seed set covering the reference detector
// classes. Kept deliberately over-inclusive: a missed candidate cannot be
// recovered downstream.
func Default() []Seed {
	return []Seed{
		{Pattern: "GCGCGCGCGC", Classes: []string{"z_dna"}, Epsilon: 150, MaxExtension: 60, MinSamples: 2},
		{Pattern: "CGCGCGCGCG", Classes: []string{"z_dna"}, Epsilon: 150, MaxExtension: 60, MinSamples: 2},
		{Pattern: "CACACACACA", Classes: []string{"z_dna"}, Epsilon: 120, MaxExtension: 50, MinSamples: 2},
		{Pattern: "TGTGTGTGTG", Classes: []string{"z_dna"}, Epsilon: 120, MaxExtension: 50, MinSamples: 2},
		{Pattern: "AAAAAAAAAA", Classes: []string{"a_tract", "curved_dna"}, Epsilon: 120, MaxExtension: 50, MinSamples: 1},
		{Pattern: "TTTTTTTTTT", Classes: []string{"a_tract", "curved_dna"}, Epsilon: 120, MaxExtension: 50, MinSamples: 1},
		{Pattern: "GGG[ACGT]{1,7}GGG", IsRegex: true, Classes: []string{"g_quadruplex"}, Epsilon: 40, MaxExtension: 60, MinSamples: 2},
		{Pattern: "CCC[ACGT]{1,7}CCC", IsRegex: true, Classes: []string{"g_quadruplex"}, Epsilon: 40, MaxExtension: 60, MinSamples: 2},
	}
}
