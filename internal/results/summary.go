package results

import (
	"math"
	"sort"

	"motifscan/internal/motif"
)

// Summary is the incremental statistics block for one hit store.
type Summary struct {
	TotalCount           int            `json:"total_count"`
	ClassDistribution    map[string]int `json:"class_distribution"`
	SubclassDistribution map[string]int `json:"subclass_distribution"`
	CoverageBP           int            `json:"coverage_bp"`
	AvgScore             float64        `json:"avg_score"`
	ScoreMin             float64        `json:"score_min"`
	ScoreMax             float64        `json:"score_max"`
}

// Summary computes the statistics in one streaming pass over the hit file
// and caches the result until the next append. Coverage counts each genomic
// base at most once, merging overlapping hit intervals with a sort-sweep.
// The sweep buffers one interval per hit, so memory is proportional to the
// hit count rather than sequence length; counts and score moments stay O(1).
func (s *Store) Summary() (Summary, error) {
	s.mu.Lock()
	if s.cached != nil {
		sum := *s.cached
		s.mu.Unlock()
		return sum, nil
	}
	s.mu.Unlock()

	sum := Summary{
		ClassDistribution:    map[string]int{},
		SubclassDistribution: map[string]int{},
		ScoreMin:             math.Inf(1),
		ScoreMax:             math.Inf(-1),
	}
	var scoreSum float64
	var spans [][2]int

	err := s.Iter(0, func(m motif.Motif) error {
		sum.TotalCount++
		sum.ClassDistribution[m.Class]++
		sum.SubclassDistribution[m.Class+"/"+m.Subclass]++
		scoreSum += m.Score
		if m.Score < sum.ScoreMin {
			sum.ScoreMin = m.Score
		}
		if m.Score > sum.ScoreMax {
			sum.ScoreMax = m.Score
		}
		spans = append(spans, [2]int{m.Start, m.End})
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	if sum.TotalCount == 0 {
		sum.ScoreMin, sum.ScoreMax = 0, 0
	} else {
		sum.AvgScore = scoreSum / float64(sum.TotalCount)
	}
	sum.CoverageBP = coverage(spans)

	s.mu.Lock()
	s.cached = &sum
	s.mu.Unlock()
	return sum, nil
}

// coverage returns the total length of the union of half-open spans.
func coverage(spans [][2]int) int {
	if len(spans) == 0 {
		return 0
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i][0] < spans[j][0] })
	total := 0
	curStart, curEnd := spans[0][0], spans[0][1]
	for _, sp := range spans[1:] {
		if sp[0] > curEnd {
			total += curEnd - curStart
			curStart, curEnd = sp[0], sp[1]
			continue
		}
		if sp[1] > curEnd {
			curEnd = sp[1]
		}
	}
	return total + (curEnd - curStart)
}
