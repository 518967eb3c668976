package strategy

import "testing"

func TestSelectBoundaries(t *testing.T) {
	th := Thresholds{Direct: 100, SingleTier: 1000, DoubleTier: 10000}
	tiers := Tiers{
		Micro: TierConfig{ChunkSize: 50, Overlap: 5},
		Meso:  TierConfig{ChunkSize: 200, Overlap: 20},
		Macro: TierConfig{ChunkSize: 1000, Overlap: 100},
	}

	tests := []struct {
		length int
		want   Mode
	}{
		{99, ModeDirect},
		{100, ModeSingle}, // exact threshold goes up
		{101, ModeSingle},
		{999, ModeSingle},
		{1000, ModeDouble},
		{1001, ModeDouble},
		{9999, ModeDouble},
		{10000, ModeTriple},
		{10001, ModeTriple},
	}
	for _, tc := range tests {
		if got := Select(tc.length, th, tiers); got.Mode != tc.want {
			t.Errorf("Select(%d) = %v, want %v", tc.length, got.Mode, tc.want)
		}
	}
}

func TestSelectTierLists(t *testing.T) {
	th := Thresholds{Direct: 100, SingleTier: 1000, DoubleTier: 10000}
	tiers := DefaultTiers()

	if p := Select(50, th, tiers); len(p.Tiers) != 0 {
		t.Errorf("direct plan has tiers: %+v", p)
	}
	if p := Select(500, th, tiers); len(p.Tiers) != 1 || p.Tiers[0] != tiers.Micro {
		t.Errorf("single plan = %+v", p)
	}
	if p := Select(5000, th, tiers); len(p.Tiers) != 2 || p.Tiers[1] != tiers.Meso {
		t.Errorf("double plan = %+v", p)
	}
	if p := Select(50000, th, tiers); len(p.Tiers) != 3 || p.Tiers[2] != tiers.Macro {
		t.Errorf("triple plan = %+v", p)
	}
}

func TestValidate(t *testing.T) {
	good := DefaultThresholds()
	if err := Validate(good, DefaultTiers()); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if err := Validate(Thresholds{Direct: 10, SingleTier: 10, DoubleTier: 20}, DefaultTiers()); err == nil {
		t.Error("non-ascending thresholds should fail")
	}
	bad := DefaultTiers()
	bad.Micro.Overlap = bad.Micro.ChunkSize
	if err := Validate(good, bad); err == nil {
		t.Error("overlap >= chunk size should fail")
	}
	swapped := DefaultTiers()
	swapped.Micro.ChunkSize = swapped.Macro.ChunkSize + 1
	if err := Validate(good, swapped); err == nil {
		t.Error("non-ascending tiers should fail")
	}
}

func TestModeString(t *testing.T) {
	if ModeDirect.String() != "direct" || ModeTriple.String() != "triple" {
		t.Error("mode names wrong")
	}
}
