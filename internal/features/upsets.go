package features

import "math"

// IsUpset reports whether rank r1 beating rank r2 counts as an upset:
// an unranked team over a top-20 side, or a ranked team over a side
// ranked more than 10 spots better. Unranked is NaN in compiled
// feature rows; a negative sentinel is accepted too. An unranked r2
// can never be upset.
func IsUpset(r1, r2 float64) bool {
	unranked := math.IsNaN(r1) || r1 < 0
	return (unranked && 0 < r2 && r2 <= 20) || (r1 > 0 && r2 > 0 && r1-r2 > 10)
}

// UpsetProbability converts a row's win probability for team 1 into
// the probability of an upset outcome, or 0 when neither result would
// be one.
func UpsetProbability(rank1, rank2, prob float64) float64 {
	if IsUpset(rank1, rank2) {
		return prob
	}
	if IsUpset(rank2, rank1) {
		return 1 - prob
	}
	return 0
}
