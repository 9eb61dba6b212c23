// Package features projects game records and season stats into flat
// rows for model training.
package features

import (
	"database/sql"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/fortuna/hardwood/internal/gameid"
	"github.com/fortuna/hardwood/internal/ratings"
	"github.com/fortuna/hardwood/internal/season"
	"github.com/fortuna/hardwood/internal/store"
)

// Orientation selects which team becomes the reference side of a
// feature row.
type Orientation string

const (
	// OrientRandom picks the reference team uniformly at random so the
	// result labels are class-balanced.
	OrientRandom Orientation = "random"

	// OrientAlphabetical makes the lexicographically smaller team code
	// the reference, for deterministic output.
	OrientAlphabetical Orientation = "alphabetical"
)

// RateDiffs holds the corrected advanced-stat differentials between
// the two teams of a row, one value per stat.
type RateDiffs struct {
	Eff  float64 `json:"eff"`
	Astr float64 `json:"astr"`
	Orbp float64 `json:"orbp"`
	Tovr float64 `json:"tovr"`
	Efgp float64 `json:"efgp"`
	Ftr  float64 `json:"ftr"`
}

// FeatureRow is one training example. All relative quantities are
// signed from team 1's perspective; ranks are NaN when the team was
// unranked.
type FeatureRow struct {
	Season int       `json:"season"`
	Date   time.Time `json:"date"`
	GID    string    `json:"gid"`
	TID1   string    `json:"tid1"`
	TID2   string    `json:"tid2"`

	Result   int     `json:"result"` // 1 when team 1 won
	Margin   int     `json:"margin"`
	TotScore int     `json:"totscore"`
	HA       int     `json:"ha"` // +1 team 1 home, -1 away, 0 neutral
	Rank1    float64 `json:"rank1"`
	Rank2    float64 `json:"rank2"`
	Poss     float64 `json:"poss"` // regulation-normalized possessions

	Pace1      float64 `json:"pace1"`
	Pace2      float64 `json:"pace2"`
	EffDiff    float64 `json:"effdiff"`
	RawEffDiff float64 `json:"raweffdiff"`
	EffSum     float64 `json:"effsum"`
	NetEffSum  float64 `json:"neteffsum"`

	Off RateDiffs `json:"off"` // offensive corrected-stat differentials
	Def RateDiffs `json:"def"` // defensive corrected-stat differentials
}

// Compile turns game records plus aggregated season stats into feature
// rows. The pseudo-random source is explicit so callers control
// determinism; it is required for random orientation and ignored
// otherwise. An unrecognized orientation is a configuration error.
func Compile(games []store.GameRecord, stats season.SeasonStats, orient Orientation, rng *rand.Rand) ([]FeatureRow, error) {
	switch orient {
	case OrientRandom:
		if rng == nil {
			return nil, fmt.Errorf("random orientation requires a rand source")
		}
	case OrientAlphabetical:
	default:
		return nil, fmt.Errorf("illegal orientation %q", orient)
	}

	rows := make([]FeatureRow, 0, len(games))
	for i := range games {
		g := &games[i]

		ts1 := stats.Get(g.Season, g.WTeamID)
		ts2 := stats.Get(g.Season, g.LTeamID)
		if ts1 == nil || ts2 == nil {
			return nil, fmt.Errorf("game %s: no season stats for a participant",
				gameid.Canonical(g.DateString(), g.WTeamID, g.LTeamID))
		}

		var refWon bool
		switch orient {
		case OrientRandom:
			refWon = rng.Intn(2) == 1
		case OrientAlphabetical:
			refWon = g.WTeamID < g.LTeamID
		}

		mult := 1
		if !refWon {
			mult = -1
			ts1, ts2 = ts2, ts1
		}

		row := FeatureRow{
			Season:   g.Season,
			Date:     g.Date,
			GID:      gameid.Canonical(g.DateString(), g.WTeamID, g.LTeamID),
			TID1:     ts1.TeamID,
			TID2:     ts2.TeamID,
			Margin:   (g.WScore - g.LScore) * mult,
			TotScore: g.WScore + g.LScore,
			HA:       locSign(g.WLoc) * mult,
			Poss:     g.Possessions() / (1 + 0.125*float64(g.NumOT)),
		}
		if refWon {
			row.Result = 1
			row.Rank1, row.Rank2 = nullRank(g.WRank), nullRank(g.LRank)
		} else {
			row.Rank1, row.Rank2 = nullRank(g.LRank), nullRank(g.WRank)
		}

		adj1 := adjustedOf(ts1)
		adj2 := adjustedOf(ts2)
		row.Pace1 = adj1(ratings.KeyPace)
		row.Pace2 = adj2(ratings.KeyPace)
		row.EffDiff = adj1(ratings.KeyNetEff) - adj2(ratings.KeyNetEff)
		row.EffSum = adj1("Tcorroeff") + adj1("Tcorrdeff") + adj2("Tcorroeff") + adj2("Tcorrdeff")
		row.NetEffSum = adj1("Tcorroeff") - adj1("Tcorrdeff") + adj2("Tcorroeff") - adj2("Tcorrdeff")

		adv1 := season.DeriveAdvanced(ts1)
		adv2 := season.DeriveAdvanced(ts2)
		row.RawEffDiff = (adv1.Own.Eff - adv1.Opp.Eff) - (adv2.Own.Eff - adv2.Opp.Eff)

		row.Off = rateDiffs(adj1, adj2, "Tcorro")
		row.Def = rateDiffs(adj1, adj2, "Tcorrd")

		rows = append(rows, row)
	}

	return rows, nil
}

// adjustedOf returns a lookup over a team's solver-written fields.
// A field the solver has not produced reads as NaN, consistent with
// how degenerate ratios propagate.
func adjustedOf(ts *season.TeamSeasonStats) func(string) float64 {
	return func(key string) float64 {
		if v, ok := ts.Adjusted[key]; ok {
			return v
		}
		return math.NaN()
	}
}

func rateDiffs(adj1, adj2 func(string) float64, prefix string) RateDiffs {
	diff := func(name string) float64 {
		return adj1(prefix+name) - adj2(prefix+name)
	}
	return RateDiffs{
		Eff:  diff("eff"),
		Astr: diff("astr"),
		Orbp: diff("orbp"),
		Tovr: diff("tovr"),
		Efgp: diff("efgp"),
		Ftr:  diff("ftr"),
	}
}

// locSign maps the winner's location to a signed home indicator:
// home +1, neutral 0, away -1.
func locSign(wloc string) int {
	switch wloc {
	case store.LocHome:
		return 1
	case store.LocAway:
		return -1
	default:
		return 0
	}
}

func nullRank(r sql.NullInt32) float64 {
	if r.Valid {
		return float64(r.Int32)
	}
	return math.NaN()
}
