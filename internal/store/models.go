package store

import (
	"database/sql"
	"time"
)

// DateLayout is the calendar-date format used everywhere a game date is
// rendered as text (canonical game IDs, the persisted game table, URLs).
const DateLayout = "2006-01-02"

// Location codes, always recorded relative to the declared winner.
const (
	LocHome    = "H"
	LocAway    = "A"
	LocNeutral = "N"
)

// Game type codes as stored in the game table.
const (
	TypeRegular    = "RG"
	TypeConfTourny = "CT"
)

// StatNames lists the box-score counting stats in persisted column order.
// Each appears twice per game row, once for the winner and once for the loser.
var StatNames = []string{
	"FGM", "FGA", "FGM3", "FGA3", "FTM", "FTA",
	"OR", "DR", "Ast", "TO", "Stl", "Blk", "PF",
}

// StatLine holds one side's box-score counting stats for a single game.
// DR is derived at extraction time (total rebounds minus offensive).
type StatLine struct {
	FGM  int `json:"fgm"`
	FGA  int `json:"fga"`
	FGM3 int `json:"fgm3"`
	FGA3 int `json:"fga3"`
	FTM  int `json:"ftm"`
	FTA  int `json:"fta"`
	OR   int `json:"or"`
	DR   int `json:"dr"`
	Ast  int `json:"ast"`
	TO   int `json:"to"`
	Stl  int `json:"stl"`
	Blk  int `json:"blk"`
	PF   int `json:"pf"`
}

// GameRecord is one canonical, deduplicated game. The winning team is
// always the side with the higher final score, regardless of which
// team's page the row was extracted from.
type GameRecord struct {
	Season  int       `json:"season"`
	Date    time.Time `json:"date"`
	Type    string    `json:"type"`
	WTeamID string    `json:"w_team_id"`
	WScore  int       `json:"w_score"`
	LTeamID string    `json:"l_team_id"`
	LScore  int       `json:"l_score"`
	WLoc    string    `json:"w_loc"`
	NumOT   int       `json:"num_ot"`
	WStats  StatLine  `json:"w_stats"`
	LStats  StatLine  `json:"l_stats"`

	// Poss and the AP ranks are populated when loading from game_data;
	// rows read from the flat game table leave them unset. Absent ranks
	// stay null and are carried through rather than failing.
	Poss  float64       `json:"poss,omitempty"`
	WRank sql.NullInt32 `json:"w_rank,omitempty"`
	LRank sql.NullInt32 `json:"l_rank,omitempty"`
}

// DateString renders the game date in table format.
func (g *GameRecord) DateString() string {
	return g.Date.Format(DateLayout)
}

// Possessions returns the externally supplied possession count when
// present, otherwise the standard estimate from the winner's line:
// FGA + 0.44*FTA - OR + TO.
func (g *GameRecord) Possessions() float64 {
	if g.Poss > 0 {
		return g.Poss
	}
	w := g.WStats
	return float64(w.FGA) + 0.44*float64(w.FTA) - float64(w.OR) + float64(w.TO)
}

// FlipLoc mirrors a location code across the home/away axis. Neutral
// sites are unchanged. Used when re-orienting a row from the loser's
// page, and when recording the loser's side of a game in season stats.
func FlipLoc(loc string) string {
	switch loc {
	case LocHome:
		return LocAway
	case LocAway:
		return LocHome
	default:
		return loc
	}
}
