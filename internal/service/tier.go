package service

import "math"

// tierStep pairs an exclusive upper volume bound with the tier label
// for volumes below it.
type tierStep struct {
	upper float64
	label string
}

// tierTable is the fixed tier ladder. Bounds are strictly increasing;
// the exact thresholds are part of the observable contract. Volumes at
// or above the last bound stay in the final tier, which is unbounded.
var tierTable = []tierStep{
	{10000, "Bronze I"},
	{50000, "Bronze II"},
	{100000, "Bronze III"},
	{200000, "Argent I"},
	{400000, "Argent II"},
	{600000, "Argent III"},
	{800000, "Or I"},
	{1200000, "Or II"},
	{1600000, "Or III"},
	{2000000, "Diamant I"},
	{2600000, "Diamant II"},
	{3200000, "Diamant III"},
	{4000000, "Mythique I"},
	{5000000, "Mythique II"},
	{6000000, "Mythique III"},
	{7500000, "Légendaire I"},
	{9000000, "Légendaire II"},
	{10000000, "Légendaire III"},
	{12000000, "Élite I"},
	{15000000, "Élite II"},
	{18000000, "Élite III"},
	{22000000, "Maître I"},
	{27000000, "Maître II"},
	{32000000, "Maître III"},
	{38000000, "Titan I"},
	{45000000, "Titan II"},
	{52000000, "Titan III"},
	{60000000, "Ombre I"},
	{75000000, "Ombre II"},
	{100000000, "Ombre III"},
}

// TierFor returns the tier label for a training volume. The final
// tier is unbounded and holds every volume at or above the last
// threshold; below that, the label of the first bound strictly
// greater than the volume wins, with volumes between the
// second-to-last bound and the final threshold staying in the
// second-to-last tier.
func TierFor(volume float64) string {
	last := tierTable[len(tierTable)-1]
	if volume >= last.upper {
		return last.label
	}
	for _, step := range tierTable[:len(tierTable)-1] {
		if volume < step.upper {
			return step.label
		}
	}
	return tierTable[len(tierTable)-2].label
}

// ScoreFor returns the integer score derived from a training volume,
// the floor of volume/10.
func ScoreFor(volume float64) int64 {
	return int64(math.Floor(volume / 10))
}
