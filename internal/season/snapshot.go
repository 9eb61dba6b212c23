package season

import "encoding/json"

// SnapshotRow is the tabular view of one team season: raw totals plus
// the freshly derived advanced metrics and whatever the efficiency
// solver has written back. Built only at the serialization boundary
// (cache, API, CSV export); the accumulators stay the single source of
// truth.
type SnapshotRow struct {
	Season  int     `json:"season"`
	TeamID  string  `json:"team_id"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	TotOT   int     `json:"tot_ot"`
	TotPoss float64 `json:"tot_poss"`

	Own Totals `json:"own"`
	Opp Totals `json:"opp"`

	Adv      AdvancedStats      `json:"adv"`
	Adjusted map[string]float64 `json:"adjusted,omitempty"`
}

// MarshalJSON carries the adjusted map as nullable values. The solver
// writes NaN for keys it could not fit, and a literal NaN would abort
// the encoder for the entire snapshot.
func (r SnapshotRow) MarshalJSON() ([]byte, error) {
	type alias SnapshotRow
	var adj map[string]*float64
	if r.Adjusted != nil {
		adj = make(map[string]*float64, len(r.Adjusted))
		for k, v := range r.Adjusted {
			adj[k] = rateOrNull(v)
		}
	}
	return json.Marshal(struct {
		alias
		Adjusted map[string]*float64 `json:"adjusted,omitempty"`
	}{alias(r), adj})
}

func (r *SnapshotRow) UnmarshalJSON(data []byte) error {
	type alias SnapshotRow
	var raw struct {
		alias
		Adjusted map[string]*float64 `json:"adjusted"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = SnapshotRow(raw.alias)
	if raw.Adjusted != nil {
		r.Adjusted = make(map[string]float64, len(raw.Adjusted))
		for k, v := range raw.Adjusted {
			r.Adjusted[k] = rateOrNaN(v)
		}
	}
	return nil
}

// Snapshot flattens the season-stats structure into rows ordered by
// season, then team.
func Snapshot(stats SeasonStats) []SnapshotRow {
	var rows []SnapshotRow
	for _, year := range stats.Seasons() {
		for _, teamID := range stats.TeamIDs(year) {
			rows = append(rows, SnapshotTeam(stats[year][teamID]))
		}
	}
	return rows
}

// SnapshotTeam builds the tabular view of a single accumulator.
func SnapshotTeam(ts *TeamSeasonStats) SnapshotRow {
	return SnapshotRow{
		Season:   ts.Season,
		TeamID:   ts.TeamID,
		Wins:     ts.Wins,
		Losses:   ts.Losses,
		TotOT:    ts.TotOT,
		TotPoss:  ts.TotPoss,
		Own:      ts.Own,
		Opp:      ts.Opp,
		Adv:      DeriveAdvanced(ts),
		Adjusted: ts.Adjusted,
	}
}
