// Package strategy selects the chunking plan for a sequence from its length
// alone. Short sequences are analyzed directly; longer ones are partitioned
// into overlapping chunks at one, two, or three size tiers (micro < meso <
// macro), each tier with its own chunk size and overlap.
package strategy

import "fmt"

// TierConfig is one immutable chunk-size/overlap pair.
type TierConfig struct {
	ChunkSize int
	Overlap   int
}

// Tiers holds the three configured scales.
type Tiers struct {
	Micro TierConfig
	Meso  TierConfig
	Macro TierConfig
}

// Thresholds are the ascending length cut-points between plans.
type Thresholds struct {
	Direct     int // below this: no chunking
	SingleTier int // below this: micro only
	DoubleTier int // below this: meso+micro; at or above: macro+meso+micro
}

// Mode names the selected plan.
type Mode int

const (
	ModeDirect Mode = iota
	ModeSingle
	ModeDouble
	ModeTriple
)

func (m Mode) String() string {
	switch m {
	case ModeDirect:
		return "direct"
	case ModeSingle:
		return "single"
	case ModeDouble:
		return "double"
	case ModeTriple:
		return "triple"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Plan is the selected chunking strategy. Tiers are ordered finest first
// and empty for ModeDirect.
type Plan struct {
	Mode  Mode
	Tiers []TierConfig
}

// belowThreshold encodes the exact-threshold policy: a sequence whose
// length equals a threshold maps to the next, coarser plan. All threshold
// comparisons in Select go through this one function.
func belowThreshold(length, threshold int) bool { return length < threshold }

// DefaultTiers are sized so micro chunks fit comfortably in cache-friendly
// memory while macro chunks keep per-chunk overhead negligible on
// chromosome-scale input.
func DefaultTiers() Tiers {
	return Tiers{
		Micro: TierConfig{ChunkSize: 50_000, Overlap: 2_000},
		Meso:  TierConfig{ChunkSize: 200_000, Overlap: 10_000},
		Macro: TierConfig{ChunkSize: 1_000_000, Overlap: 50_000},
	}
}

// DefaultThresholds match the default tier sizes.
func DefaultThresholds() Thresholds {
	return Thresholds{Direct: 100_000, SingleTier: 5_000_000, DoubleTier: 50_000_000}
}

// Validate checks ordering and tier sanity.
func Validate(th Thresholds, tiers Tiers) error {
	if !(th.Direct < th.SingleTier && th.SingleTier < th.DoubleTier) {
		return fmt.Errorf("strategy: thresholds must ascend, got %d/%d/%d", th.Direct, th.SingleTier, th.DoubleTier)
	}
	for _, tc := range []struct {
		name string
		c    TierConfig
	}{{"micro", tiers.Micro}, {"meso", tiers.Meso}, {"macro", tiers.Macro}} {
		if tc.c.ChunkSize <= 0 {
			return fmt.Errorf("strategy: %s chunk size must be positive", tc.name)
		}
		if tc.c.Overlap < 0 || tc.c.Overlap >= tc.c.ChunkSize {
			return fmt.Errorf("strategy: %s overlap %d must be in [0,%d)", tc.name, tc.c.Overlap, tc.c.ChunkSize)
		}
	}
	if !(tiers.Micro.ChunkSize < tiers.Meso.ChunkSize && tiers.Meso.ChunkSize < tiers.Macro.ChunkSize) {
		return fmt.Errorf("strategy: tiers must ascend micro < meso < macro")
	}
	return nil
}

// Select is a pure function of sequence length, thresholds, and tier
// configuration. An exact threshold length selects the coarser plan.
func Select(length int, th Thresholds, tiers Tiers) Plan {
	switch {
	case belowThreshold(length, th.Direct):
		return Plan{Mode: ModeDirect}
	case belowThreshold(length, th.SingleTier):
		return Plan{Mode: ModeSingle, Tiers: []TierConfig{tiers.Micro}}
	case belowThreshold(length, th.DoubleTier):
		return Plan{Mode: ModeDouble, Tiers: []TierConfig{tiers.Micro, tiers.Meso}}
	default:
		return Plan{Mode: ModeTriple, Tiers: []TierConfig{tiers.Micro, tiers.Meso, tiers.Macro}}
	}
}
