package sportsref

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// rawStatKeys are the site's data-stat codes for the box-score cells,
// in the order they map onto store.StatNames (pts excluded, handled
// separately for winner orientation).
var rawStatKeys = []string{
	"pts", "fg", "fga", "fg3", "fg3a", "ft", "fta",
	"orb", "trb", "ast", "stl", "blk", "tov", "pf",
}

// GamelogRow is one structured row from a team's per-game log page.
// Fields that the page renders without a hyperlink come back empty;
// the extractor decides whether that makes the row skippable.
type GamelogRow struct {
	// Date in YYYY-MM-DD form. Empty when the date cell carries no
	// hyperlink (header and separator rows).
	Date string

	// Opponent team code from the opponent link. Empty when the cell
	// has no identifiable opponent.
	Opponent string

	// Location raw code: "" (home), "@" (away) or "N" (neutral).
	Location string

	// Result is the game-result cell text with its optional overtime
	// suffix, e.g. "W (2 OT)".
	Result string

	// Stats and OppStats hold the box-score cells as stringified
	// integers keyed by the site's stat code. Absent cells are absent
	// keys and default to zero downstream.
	Stats    map[string]string
	OppStats map[string]string
}

// ScheduleTypes maps a game date to the schedule page's game type
// string ("REG", "CTOURN", ...).
type ScheduleTypes map[string]string

// ParseGamelog turns a gamelog page into structured rows. Rows without
// a tr id are table chrome and are dropped here; everything else is
// passed through for the extractor to judge.
func ParseGamelog(doc *goquery.Document) []GamelogRow {
	var rows []GamelogRow

	doc.Find("table#sgl-basic tbody tr").Each(func(i int, tr *goquery.Selection) {
		if _, ok := tr.Attr("id"); !ok {
			return
		}

		row := GamelogRow{
			Stats:    make(map[string]string),
			OppStats: make(map[string]string),
		}

		dateCell := tr.Find("td[data-stat=date_game]")
		if link := dateCell.Find("a"); link.Length() > 0 {
			row.Date = strings.TrimSpace(link.Text())
		}

		oppCell := tr.Find("td[data-stat=opp_id]")
		if link := oppCell.Find("a"); link.Length() > 0 {
			if href, ok := link.Attr("href"); ok {
				row.Opponent = teamFromHref(href)
			}
		}

		row.Location = strings.TrimSpace(tr.Find("td[data-stat=game_location]").Text())
		row.Result = strings.TrimSpace(tr.Find("td[data-stat=game_result]").Text())

		for _, key := range rawStatKeys {
			if v := strings.TrimSpace(tr.Find("td[data-stat=" + key + "]").Text()); v != "" {
				row.Stats[key] = v
			}
			if v := strings.TrimSpace(tr.Find("td[data-stat=opp_" + key + "]").Text()); v != "" {
				row.OppStats[key] = v
			}
		}

		rows = append(rows, row)
	})

	return rows
}

// ParseSchedule extracts the per-date game-type lookup from a team's
// schedule page. Dates come from the sort key the site puts on the
// date cell.
func ParseSchedule(doc *goquery.Document) ScheduleTypes {
	types := make(ScheduleTypes)

	doc.Find("table#schedule tbody tr").Each(func(i int, tr *goquery.Selection) {
		date, ok := tr.Find("td[data-stat=date_game]").Attr("csk")
		if !ok || date == "" {
			return
		}
		gtype := strings.TrimSpace(tr.Find("td[data-stat=game_type]").Text())
		if gtype != "" {
			types[date] = gtype
		}
	})

	return types
}

// ParseTeamList extracts every D-I team code from a season's
// school-stats page.
func ParseTeamList(doc *goquery.Document) []string {
	var teams []string

	doc.Find("table#basic_school_stats tbody td[data-stat=school_name]").Each(func(i int, td *goquery.Selection) {
		link := td.Find("a")
		if link.Length() == 0 {
			return
		}
		if href, ok := link.Attr("href"); ok {
			if team := teamFromHref(href); team != "" {
				teams = append(teams, team)
			}
		}
	})

	return teams
}

// teamFromHref pulls the team code out of a school link like
// "/cbb/schools/purdue/2020.html".
func teamFromHref(href string) string {
	parts := strings.Split(href, "/")
	if len(parts) > 3 {
		return parts[3]
	}
	return ""
}
