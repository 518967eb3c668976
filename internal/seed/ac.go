package seed

// Aho-Corasick automaton over the 4-letter alphabet for all exact seeds.
// States live in a flat slice; next[ch] is fully populated after the BFS so
// scanning never walks failure links explicitly.

type acNode struct {
	next [4]int
	fail int
	out  []int // seed indexes (into Table.seeds) ending at this state
}

func baseIdx(b byte) int {
	switch b {
	case 'A', 'a':
		return 0
	case 'C', 'c':
		return 1
	case 'G', 'g':
		return 2
	case 'T', 't':
		return 3
	}
	return -1
}

func buildAC(seeds []Seed, exact []int) []acNode {
	nodes := make([]acNode, 1)
	for i := range nodes[0].next {
		nodes[0].next[i] = -1
	}

	// goto function
	for _, si := range exact {
		state := 0
		for _, b := range []byte(seeds[si].Pattern) {
			ix := baseIdx(b)
			if nodes[state].next[ix] == -1 {
				nodes[state].next[ix] = len(nodes)
				var nn acNode
				for k := range nn.next {
					nn.next[k] = -1
				}
				nodes = append(nodes, nn)
			}
			state = nodes[state].next[ix]
		}
		nodes[state].out = append(nodes[state].out, si)
	}

	// failure links (BFS), densifying next as we go
	queue := make([]int, 0, len(nodes))
	for ch := 0; ch < 4; ch++ {
		nx := nodes[0].next[ch]
		if nx != -1 {
			nodes[nx].fail = 0
			queue = append(queue, nx)
		} else {
			nodes[0].next[ch] = 0
		}
	}
	for qh := 0; qh < len(queue); qh++ {
		r := queue[qh]
		for ch := 0; ch < 4; ch++ {
			s := nodes[r].next[ch]
			if s != -1 {
				queue = append(queue, s)
				f := nodes[r].fail
				nodes[s].fail = nodes[f].next[ch]
				nodes[s].out = append(nodes[s].out, nodes[nodes[s].fail].out...)
			} else {
				nodes[r].next[ch] = nodes[nodes[r].fail].next[ch]
			}
		}
	}
	return nodes
}

// scanExact runs the automaton over seq and calls emit(seedIdx, startPos)
// for every exact seed occurrence. Non-ACGT bytes reset the automaton.
func (t *Table) scanExact(seq []byte, emit func(seedIdx, pos int)) {
	if len(t.exact) == 0 {
		return
	}
	state := 0
	for i := 0; i < len(seq); i++ {
		ix := baseIdx(seq[i])
		if ix < 0 {
			state = 0
			continue
		}
		state = t.ac[state].next[ix]
		for _, si := range t.ac[state].out {
			emit(si, i-(len(t.seeds[si].Pattern)-1))
		}
	}
}
