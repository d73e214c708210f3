package catalog

import "math/rand/v2"

// Tier is a seniority band.
type Tier string

const (
	TierJunior Tier = "junior"
	TierMid    Tier = "mid"
	TierSenior Tier = "senior"
)

// YearsRange is an inclusive years-of-experience bound.
type YearsRange struct {
	Min int
	Max int
}

var tiers = []Tier{TierJunior, TierMid, TierSenior}

var tierYears = map[Tier]YearsRange{
	TierJunior: {Min: 1, Max: 4},
	TierMid:    {Min: 5, Max: 10},
	TierSenior: {Min: 11, Max: 18},
}

// Tiers returns all tiers from junior to senior.
func Tiers() []Tier {
	return append([]Tier(nil), tiers...)
}

// Years returns the experience bound of a tier.
func (t Tier) Years() YearsRange {
	return tierYears[t]
}

// TierForYears maps a years-of-experience value onto its tier.
func TierForYears(years int) Tier {
	switch {
	case years <= tierYears[TierJunior].Max:
		return TierJunior
	case years <= tierYears[TierMid].Max:
		return TierMid
	default:
		return TierSenior
	}
}

// SelectSeniority picks a tier uniformly, then years uniformly within it.
func SelectSeniority(rng *rand.Rand) (Tier, int) {
	tier := tiers[rng.IntN(len(tiers))]
	bound := tierYears[tier]
	return tier, bound.Min + rng.IntN(bound.Max-bound.Min+1)
}
