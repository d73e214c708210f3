package catalog

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func TestLoadEmbeddedDefault(t *testing.T) {
	reg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(reg.Categories()) == 0 {
		t.Fatalf("expected categories in embedded mapping")
	}
	for _, c := range reg.Categories() {
		if _, ok := reg.Table(c); !ok {
			t.Fatalf("missing table for %q", c)
		}
	}
}

func TestRoleBucketSplitFollowsWeights(t *testing.T) {
	reg, err := Parse([]byte(`{"Tech":{"primary":["A","B"],"secondary":["C"],"weights":[0.7,0.3]}}`), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rng := newRand(42)
	const draws = 100_000
	primary := 0
	for i := 0; i < draws; i++ {
		role, bucket := reg.SelectRole(rng, "Tech")
		if bucket == BucketPrimary {
			primary++
			if role != "A" && role != "B" {
				t.Fatalf("primary draw returned %q", role)
			}
		} else if role != "C" {
			t.Fatalf("secondary draw returned %q", role)
		}
	}
	share := float64(primary) / draws
	if math.Abs(share-0.7) > 0.02 {
		t.Fatalf("primary share = %.4f, want 0.70 +/- 0.02", share)
	}
}

func TestSelectIsDeterministicForSeed(t *testing.T) {
	reg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	a := newRand(7)
	b := newRand(7)
	for i := 0; i < 50; i++ {
		if x, y := reg.Select(a), reg.Select(b); x != y {
			t.Fatalf("draw %d differs: %+v vs %+v", i, x, y)
		}
	}
}

func TestSelectSeniorityWithinTierBounds(t *testing.T) {
	rng := newRand(3)
	seen := map[Tier]int{}
	for i := 0; i < 3000; i++ {
		tier, years := SelectSeniority(rng)
		bound := tier.Years()
		if years < bound.Min || years > bound.Max {
			t.Fatalf("tier %s years %d outside [%d,%d]", tier, years, bound.Min, bound.Max)
		}
		if TierForYears(years) != tier {
			t.Fatalf("TierForYears(%d) = %s, want %s", years, TierForYears(years), tier)
		}
		seen[tier]++
	}
	for _, tier := range Tiers() {
		if seen[tier] < 800 {
			t.Fatalf("tier %s drawn %d times, expected roughly uniform", tier, seen[tier])
		}
	}
}

func TestCategoryWeights(t *testing.T) {
	mapping := []byte(`{
		"A":{"primary":["a"],"secondary":["b"],"weights":[0.5,0.5]},
		"B":{"primary":["c"],"secondary":["d"],"weights":[0.5,0.5]}
	}`)
	reg, err := Parse(mapping, map[string]float64{"a": 1.0, "B": 0})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rng := newRand(11)
	for i := 0; i < 1000; i++ {
		if c := reg.SelectCategory(rng); c != "A" {
			t.Fatalf("SelectCategory = %q, want A", c)
		}
	}
}

func TestParseRejectsInvalidTables(t *testing.T) {
	tests := []struct {
		name    string
		mapping string
		weights map[string]float64
	}{
		{name: "bad json", mapping: `{`},
		{name: "empty", mapping: `{}`},
		{name: "weights do not sum", mapping: `{"A":{"primary":["a"],"secondary":["b"],"weights":[0.6,0.6]}}`},
		{name: "wrong weight count", mapping: `{"A":{"primary":["a"],"secondary":["b"],"weights":[1.0]}}`},
		{name: "negative weight", mapping: `{"A":{"primary":["a"],"secondary":["b"],"weights":[1.5,-0.5]}}`},
		{name: "empty bucket", mapping: `{"A":{"primary":["a"],"secondary":[],"weights":[0.5,0.5]}}`},
		{name: "unknown weighted category", mapping: `{"A":{"primary":["a"],"secondary":["b"],"weights":[0.5,0.5]}}`, weights: map[string]float64{"Z": 1}},
		{name: "category weighted twice", mapping: `{"A":{"primary":["a"],"secondary":["b"],"weights":[0.5,0.5]}}`, weights: map[string]float64{"A": 0.5, "a": 0.5}},
		{name: "category weights do not sum", mapping: `{"A":{"primary":["a"],"secondary":["b"],"weights":[0.5,0.5]}}`, weights: map[string]float64{"A": 0.4}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.mapping), tt.weights)
			var cfgErr ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("does-not-exist.json", nil)
	var cfgErr ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}
