// Package ratings defines the boundary to the iterative efficiency
// solver. The solver consumes the season-stats structure and rewrites
// it in place, adding adjusted fields without removing anything the
// aggregator put there.
package ratings

import "github.com/fortuna/hardwood/internal/season"

// AdvStatNames are the advanced-stat suffixes the solver corrects for
// opponent strength, each present in an offensive ("Tcorro") and a
// defensive ("Tcorrd") adjusted key.
var AdvStatNames = []string{"eff", "astr", "orbp", "tovr", "efgp", "ftr"}

// Adjusted keys shared between the solver and the feature compiler.
const (
	KeyPace   = "pace"
	KeyNetEff = "Tneteff"
)

// SolveOptions carries the per-run tuning the daily update computes
// from how much of the season has been played.
type SolveOptions struct {
	// ConvParam damps the iteration, approaching 1 as games accumulate.
	ConvParam float64
	// PreseasonBlend is the weight still given to preseason priors,
	// decaying to 0 over the season.
	PreseasonBlend float64
}

// Solver computes opponent-adjusted efficiency ratings over the
// season-stats structure.
type Solver interface {
	ComputeEfficiencyRatings(stats season.SeasonStats, opts SolveOptions) error
}

// Passthrough is the identity solver: it copies each team's raw derived
// metrics into the adjusted keys without opponent correction, so the
// pipeline runs end to end when the iterative solver is not wired in.
type Passthrough struct{}

// ComputeEfficiencyRatings writes raw rates under the adjusted keys.
func (Passthrough) ComputeEfficiencyRatings(stats season.SeasonStats, _ SolveOptions) error {
	for _, year := range stats.Seasons() {
		for _, teamID := range stats.TeamIDs(year) {
			ts := stats[year][teamID]
			adv := season.DeriveAdvanced(ts)
			if ts.Adjusted == nil {
				ts.Adjusted = make(map[string]float64)
			}
			ts.Adjusted[KeyPace] = adv.RawPace
			ts.Adjusted[KeyNetEff] = adv.Own.Eff - adv.Opp.Eff
			for _, name := range AdvStatNames {
				ts.Adjusted["Tcorro"+name] = sideRate(&adv.Own, name)
				ts.Adjusted["Tcorrd"+name] = sideRate(&adv.Opp, name)
			}
		}
	}
	return nil
}

func sideRate(s *season.SideRates, name string) float64 {
	switch name {
	case "eff":
		return s.Eff
	case "astr":
		return s.Astr
	case "orbp":
		return s.Orbp
	case "tovr":
		return s.Tovr
	case "efgp":
		return s.Efgp
	case "ftr":
		return s.Ftr
	default:
		return 0
	}
}
