package contact

import (
	"strings"
	"testing"
)

func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate(42)
	b := Generate(42)
	if a != b {
		t.Fatalf("expected identical contact for same seed: %+v vs %+v", a, b)
	}
	if Generate(43) == a {
		t.Fatalf("expected a different contact for a different seed")
	}
}

func TestGenerateFillsEveryField(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		info := Generate(seed)
		if info.Name == "" || info.Email == "" || info.Phone == "" {
			t.Fatalf("seed %d: missing field in %+v", seed, info)
		}
		if !strings.Contains(info.Email, "@") {
			t.Fatalf("seed %d: unexpected email %q", seed, info.Email)
		}
		if !strings.Contains(info.Location, ", ") {
			t.Fatalf("seed %d: location should be \"City, ST\", got %q", seed, info.Location)
		}
	}
}
