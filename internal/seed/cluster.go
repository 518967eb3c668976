package seed

import "sort"

// Cluster is an inclusive interval over seed-hit positions in which
// consecutive hits are within epsilon of one another.
type Cluster struct {
	Start int
	End   int
	Count int // number of member positions
}

// Window is a candidate sub-region selected for full-resolution detection.
// Inclusive on both ends.
type Window struct {
	Start int
	End   int
}

// ClusterPositions groups positions with a single left-to-right pass: a
// new cluster starts whenever the gap to the previous position exceeds
// epsilon, and a cluster is kept only if it accumulated at least
// minSamples members. The input is not modified; unsorted input is sorted
// first, so the result is independent of input order.
func ClusterPositions(positions []int, epsilon, minSamples int) []Cluster {
	if len(positions) == 0 {
		return nil
	}
	if minSamples < 1 {
		minSamples = 1
	}
	sorted := positions
	if !sort.IntsAreSorted(sorted) {
		sorted = append([]int(nil), positions...)
		sort.Ints(sorted)
	}

	var out []Cluster
	cur := Cluster{Start: sorted[0], End: sorted[0], Count: 1}
	for _, p := range sorted[1:] {
		if p-cur.End > epsilon {
			if cur.Count >= minSamples {
				out = append(out, cur)
			}
			cur = Cluster{Start: p, End: p, Count: 1}
			continue
		}
		if p != cur.End {
			cur.Count++
		}
		cur.End = p
	}
	if cur.Count >= minSamples {
		out = append(out, cur)
	}
	return out
}

// ExtendAndMerge widens each cluster by maxExtension on both sides, clips
// to [0, seqLen-1], sorts by start, and merges any interval whose start is
// at or before the previous interval's end.
func ExtendAndMerge(clusters []Cluster, maxExtension, seqLen int) []Window {
	if len(clusters) == 0 || seqLen <= 0 {
		return nil
	}
	wins := make([]Window, 0, len(clusters))
	for _, c := range clusters {
		w := Window{Start: c.Start - maxExtension, End: c.End + maxExtension}
		if w.Start < 0 {
			w.Start = 0
		}
		if w.End > seqLen-1 {
			w.End = seqLen - 1
		}
		if w.End < w.Start {
			continue
		}
		wins = append(wins, w)
	}
	sort.Slice(wins, func(i, j int) bool {
		if wins[i].Start != wins[j].Start {
			return wins[i].Start < wins[j].Start
		}
		return wins[i].End < wins[j].End
	})

	merged := wins[:0]
	for _, w := range wins {
		if n := len(merged); n > 0 && w.Start <= merged[n-1].End {
			if w.End > merged[n-1].End {
				merged[n-1].End = w.End
			}
			continue
		}
		merged = append(merged, w)
	}
	return merged
}
