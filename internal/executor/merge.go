package executor

import (
	"os"

	"github.com/zeebo/wyhash"

	"motifscan/internal/motif"
	"motifscan/internal/results"
)

// seenSeed keys the dedup hash; fixed so runs are reproducible.
const seenSeed = 0x6d6f746966 // "motif"

// merge reads every chunk's spill file in ascending chunk order, drops
// motifs whose identity key was already claimed by an earlier chunk, and
// appends the survivors to hits. Reading in chunk order makes the owner of
// a boundary motif deterministic across runs. Spill files are deleted as
// they are consumed.
//
// The seen-set stores 64-bit wyhash digests of the identity key instead of
// the keys themselves, keeping its footprint small on chromosome-scale
// hit counts.
func (e *Executor) merge(outs []*workerOut, hits *results.Store) (unique, duplicates int, err error) {
	seen := make(map[uint64]struct{}, 1<<12)
	for _, out := range outs {
		if out == nil || out.spill == "" {
			continue
		}
		err := readSpill(out.spill, func(m motif.Motif) error {
			h := wyhash.Hash(m.Key().Bytes(), seenSeed)
			if _, dup := seen[h]; dup {
				duplicates++
				return nil
			}
			seen[h] = struct{}{}
			unique++
			return hits.Append(m)
		})
		os.Remove(out.spill)
		out.spill = ""
		if err != nil {
			return unique, duplicates, err
		}
	}
	if err := hits.Flush(); err != nil {
		return unique, duplicates, err
	}
	return unique, duplicates, nil
}
