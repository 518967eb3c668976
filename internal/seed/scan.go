package seed

import "github.com/twotwotwo/sorts/sortutil"

// Scan runs every seed over seq and returns hit start positions per class,
// sorted and deduplicated. A seed owned by several classes contributes the
// same positions to each of them.
func (t *Table) Scan(seq []byte) map[string][]int {
	perSeed := make([][]int, len(t.seeds))

	t.scanExact(seq, func(si, pos int) {
		perSeed[si] = append(perSeed[si], pos)
	})
	for _, cr := range t.regex {
		for _, loc := range cr.re.FindAllIndex(seq, -1) {
			perSeed[cr.seedIdx] = append(perSeed[cr.seedIdx], loc[0])
		}
	}

	byClass := map[string][]int{}
	for si, positions := range perSeed {
		if len(positions) == 0 {
			continue
		}
		for _, class := range t.seeds[si].Classes {
			byClass[class] = append(byClass[class], positions...)
		}
	}
	for class, positions := range byClass {
		sortutil.Ints(positions)
		byClass[class] = dedupSorted(positions)
	}
	return byClass
}

// Windows runs the full pre-filter: seed scan, per-class clustering with
// the class's resolved parameters, then window extension and merge. Classes
// with no surviving cluster are absent from the result.
func (t *Table) Windows(seq []byte) map[string][]Window {
	hits := t.Scan(seq)
	if len(hits) == 0 {
		return nil
	}
	out := map[string][]Window{}
	for class, positions := range hits {
		p, ok := t.params[class]
		if !ok {
			continue
		}
		clusters := ClusterPositions(positions, p.Epsilon, p.MinSamples)
		if len(clusters) == 0 {
			continue
		}
		wins := ExtendAndMerge(clusters, p.MaxExtension, len(seq))
		if len(wins) > 0 {
			out[class] = wins
		}
	}
	return out
}

func dedupSorted(a []int) []int {
	if len(a) < 2 {
		return a
	}
	w := 1
	for i := 1; i < len(a); i++ {
		if a[i] != a[i-1] {
			a[w] = a[i]
			w++
		}
	}
	return a[:w]
}
