// Package season folds canonical game records into per-team season
// accumulators and derives normalized efficiency metrics from them.
package season

import (
	"sort"

	"github.com/fortuna/hardwood/internal/store"
)

// Totals holds one side's cumulative box-score sums for a team season.
// A team carries two: its own production and what its opponents did
// against it.
type Totals struct {
	Score int `json:"score"`
	FGM   int `json:"fgm"`
	FGA   int `json:"fga"`
	FGM3  int `json:"fgm3"`
	FGA3  int `json:"fga3"`
	FTM   int `json:"ftm"`
	FTA   int `json:"fta"`
	OR    int `json:"or"`
	DR    int `json:"dr"`
	Ast   int `json:"ast"`
	TO    int `json:"to"`
	Stl   int `json:"stl"`
	Blk   int `json:"blk"`
	PF    int `json:"pf"`
}

// Accrue adds one game's score and stat line to the running totals.
func (t *Totals) Accrue(score int, s store.StatLine) {
	t.Score += score
	t.FGM += s.FGM
	t.FGA += s.FGA
	t.FGM3 += s.FGM3
	t.FGA3 += s.FGA3
	t.FTM += s.FTM
	t.FTA += s.FTA
	t.OR += s.OR
	t.DR += s.DR
	t.Ast += s.Ast
	t.TO += s.TO
	t.Stl += s.Stl
	t.Blk += s.Blk
	t.PF += s.PF
}

// TeamSeasonStats is the mutable accumulator for one (season, team)
// pair. The aggregator exclusively owns and mutates it; derived views
// are computed fresh from a snapshot and never fed back.
type TeamSeasonStats struct {
	Season int    `json:"season"`
	TeamID string `json:"team_id"`

	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	TotOT   int     `json:"tot_ot"`
	TotPoss float64 `json:"tot_poss"`

	Own Totals `json:"own"` // this team's production ("T"-prefixed)
	Opp Totals `json:"opp"` // opponents' production against it ("O"-prefixed)

	// Parallel per-game history, chronological when the input stream
	// is chronological. Each slice has length Wins+Losses.
	Opponents []string  `json:"opponents"`
	Scores    [][2]int  `json:"scores"`
	Locations []string  `json:"locations"`
	Poss      []float64 `json:"poss"`
	OTs       []int     `json:"ots"`

	// Adjusted is written by the external efficiency solver: corrected
	// ratings, pace, rank. The solver adds keys and never removes any.
	Adjusted map[string]float64 `json:"adjusted,omitempty"`
}

// Games returns the number of games folded in so far.
func (ts *TeamSeasonStats) Games() int {
	return ts.Wins + ts.Losses
}

// SeasonStats maps season -> team -> accumulator. It is the structure
// handed to the external efficiency solver, which rewrites it in place.
type SeasonStats map[int]map[string]*TeamSeasonStats

// Get returns the accumulator for a team season, or nil when the team
// has no games recorded.
func (s SeasonStats) Get(season int, teamID string) *TeamSeasonStats {
	if teams, ok := s[season]; ok {
		return teams[teamID]
	}
	return nil
}

// ensure lazily initializes an accumulator on first sight, with all
// counters zero and history empty.
func (s SeasonStats) ensure(season int, teamID string) *TeamSeasonStats {
	teams, ok := s[season]
	if !ok {
		teams = make(map[string]*TeamSeasonStats)
		s[season] = teams
	}
	ts, ok := teams[teamID]
	if !ok {
		ts = &TeamSeasonStats{
			Season:   season,
			TeamID:   teamID,
			Adjusted: make(map[string]float64),
		}
		teams[teamID] = ts
	}
	return ts
}

// Seasons returns the seasons present, ascending.
func (s SeasonStats) Seasons() []int {
	years := make([]int, 0, len(s))
	for year := range s {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}

// TeamIDs returns the teams recorded for a season, sorted.
func (s SeasonStats) TeamIDs(season int) []string {
	teams := s[season]
	ids := make([]string, 0, len(teams))
	for id := range teams {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
