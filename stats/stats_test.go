package stats

import "testing"

func TestAggregateAddsTraitLayers(t *testing.T) {
	base := NewBlock(map[string]float64{"hp": 10, "speed": 40})
	hostile := NewBlock(map[string]float64{"damage": 5, "hp": 2})
	quick := NewBlock(map[string]float64{"speed": 20})

	total := Aggregate(base,
		Contribution{Source: SourceKey{Layer: LayerTrait, ID: "quick", Order: 1}, Stats: quick},
		Contribution{Source: SourceKey{Layer: LayerTrait, ID: "hostile", Order: 0}, Stats: hostile},
	)

	if got := total.Get("hp", 0); got != 12 {
		t.Fatalf("expected hp 12, got %.2f", got)
	}
	if got := total.Get("speed", 0); got != 60 {
		t.Fatalf("expected speed 60, got %.2f", got)
	}
	if got := total.Get("damage", 0); got != 5 {
		t.Fatalf("expected damage 5, got %.2f", got)
	}
	if got := base.Get("hp", 0); got != 10 {
		t.Fatalf("expected base block to stay untouched, got hp %.2f", got)
	}
}

func TestAggregateIgnoresUnknownLayers(t *testing.T) {
	total := Aggregate(Block{}, Contribution{
		Source: SourceKey{Layer: LayerCount, ID: "bogus"},
		Stats:  NewBlock(map[string]float64{"hp": 99}),
	})
	if total.Has("hp") {
		t.Fatalf("expected out-of-range layer to be skipped")
	}
}

func TestDerivedDefaults(t *testing.T) {
	empty := Block{}
	if got := MaxHealth(empty); got != 1 {
		t.Fatalf("expected default max health 1, got %.2f", got)
	}
	if got := MaxHealth(NewBlock(map[string]float64{"hp": -4})); got != 1 {
		t.Fatalf("expected max health floor 1, got %.2f", got)
	}
	if got := Speed(empty, 80); got != 80 {
		t.Fatalf("expected template speed fallback 80, got %.2f", got)
	}
	if got := Speed(NewBlock(map[string]float64{"speed": 0.2}), 80); got != 1 {
		t.Fatalf("expected speed floor 1, got %.2f", got)
	}
}

func TestApplyDamage(t *testing.T) {
	if got := ApplyDamage(10, 3); got != 7 {
		t.Fatalf("expected 7, got %.2f", got)
	}
	if got := ApplyDamage(10, 25); got != 0 {
		t.Fatalf("expected floor at 0, got %.2f", got)
	}
	if got := ApplyDamage(10, -5); got != 10 {
		t.Fatalf("expected negative damage to be ignored, got %.2f", got)
	}
	if got := ApplyDamage(10, 0); got != 10 {
		t.Fatalf("expected zero damage to be ignored, got %.2f", got)
	}
}

func TestKeysSorted(t *testing.T) {
	b := NewBlock(map[string]float64{"speed": 1, "damage": 2, "hp": 3})
	keys := b.Keys()
	want := []string{"damage", "hp", "speed"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(keys))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("expected key %q at %d, got %q", want[i], i, keys[i])
		}
	}
}
