package sportsref

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fortuna/hardwood/internal/gameid"
	"github.com/fortuna/hardwood/internal/store"
)

// ExtractOptions controls which rows of a gamelog are turned into game
// records.
type ExtractOptions struct {
	Season int

	// StartDate and EndDate bound extraction inclusively. Zero values
	// disable the bound.
	StartDate time.Time
	EndDate   time.Time
}

// ExtractTeamGames converts one team's gamelog rows into canonical game
// records, resolving game type against the schedule lookup and skipping
// games the index has already admitted. The skipped count reports those
// duplicate rejections. The index is mutated as records are admitted,
// so calls must be sequential within a pass.
//
// A row that fails to parse aborts the whole extraction: the returned
// error names the team and date, and the caller must discard the
// partial result rather than merge it. A caller tolerating per-team
// failures should pass an index overlay and commit it only on success,
// or the aborted batch's registrations shadow the opponents' rows.
func ExtractTeamGames(team string, rows []GamelogRow, types ScheduleTypes, opts ExtractOptions, index *gameid.DateIndex) ([]store.GameRecord, int, error) {
	var games []store.GameRecord
	var skipped int

	for i := range rows {
		row := &rows[i]

		// Header/separator rows render the date without a hyperlink.
		if row.Date == "" {
			continue
		}
		// Non-D-I opponents have no identifiable team page.
		if row.Opponent == "" {
			continue
		}

		date, err := time.Parse(store.DateLayout, row.Date)
		if err != nil {
			return nil, 0, fmt.Errorf("team %s: bad game date %q: %w", team, row.Date, err)
		}

		if !opts.StartDate.IsZero() && date.Before(opts.StartDate) {
			continue
		}
		if !opts.EndDate.IsZero() && date.After(opts.EndDate) {
			continue
		}

		// The same game reappears on the opponent's page, sometimes
		// filed under the previous local date.
		if !index.Admit(row.Date, team, row.Opponent) {
			skipped++
			continue
		}

		gtype := resolveGameType(row.Date, types, opts.EndDate)

		loc, err := normalizeLocation(row.Location)
		if err != nil {
			return nil, 0, fmt.Errorf("team %s vs %s on %s: %w", team, row.Opponent, row.Date, err)
		}

		numOT, err := parseOvertimes(row.Result)
		if err != nil {
			return nil, 0, fmt.Errorf("team %s vs %s on %s: %w", team, row.Opponent, row.Date, err)
		}

		pts, line, err := parseStatLine(row.Stats)
		if err != nil {
			return nil, 0, fmt.Errorf("team %s vs %s on %s: %w", team, row.Opponent, row.Date, err)
		}
		oppPts, oppLine, err := parseStatLine(row.OppStats)
		if err != nil {
			return nil, 0, fmt.Errorf("team %s vs %s on %s: %w", team, row.Opponent, row.Date, err)
		}

		g := store.GameRecord{
			Season: opts.Season,
			Date:   date,
			Type:   gtype,
			NumOT:  numOT,
		}

		// The higher-scoring side is the winner regardless of whose
		// page produced the row. Location is recorded relative to the
		// winner, so a loss flips home and away.
		if pts > oppPts {
			g.WTeamID, g.WScore, g.WStats = team, pts, line
			g.LTeamID, g.LScore, g.LStats = row.Opponent, oppPts, oppLine
			g.WLoc = loc
		} else {
			g.WTeamID, g.WScore, g.WStats = row.Opponent, oppPts, oppLine
			g.LTeamID, g.LScore, g.LStats = team, pts, line
			g.WLoc = store.FlipLoc(loc)
		}

		games = append(games, g)
	}

	return games, skipped, nil
}

// resolveGameType maps the schedule page's game type onto the two-letter
// table code. Before February every game is regular season, so an
// end-date filter ending earlier skips the lookup entirely; with no
// filter, a date outside the lookup's window also defaults to regular
// season.
func resolveGameType(date string, types ScheduleTypes, endDate time.Time) string {
	if !endDate.IsZero() && endDate.Month() < time.February {
		return store.TypeRegular
	}

	gtype, ok := types[date]
	if !ok {
		return store.TypeRegular
	}
	switch gtype {
	case "REG":
		return store.TypeRegular
	case "CTOURN":
		return store.TypeConfTourny
	default:
		return gtype
	}
}

// normalizeLocation maps the site's raw location code to the table
// code. Anything outside the three known codes is a parse error, never
// a silent default.
func normalizeLocation(raw string) (string, error) {
	switch raw {
	case "":
		return store.LocHome, nil
	case "@":
		return store.LocAway, nil
	case "N":
		return store.LocNeutral, nil
	default:
		return "", fmt.Errorf("unrecognized location code %q", raw)
	}
}

// parseOvertimes reads the overtime count from the result cell's
// parenthetical suffix, e.g. "W (2 OT)". No suffix means regulation.
func parseOvertimes(result string) (int, error) {
	open := strings.Index(result, "(")
	if open < 0 {
		return 0, nil
	}

	fields := strings.Fields(strings.TrimLeft(result[open+1:], " "))
	if len(fields) == 0 {
		return 0, fmt.Errorf("malformed overtime suffix in %q", result)
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, fmt.Errorf("malformed overtime suffix in %q", result)
	}
	return n, nil
}

// parseStatLine assembles one side's box score from the raw cells.
// Absent cells count as zero; a cell that is present but not an
// integer is a parse error.
func parseStatLine(cells map[string]string) (int, store.StatLine, error) {
	var line store.StatLine

	get := func(key string) (int, error) {
		v, ok := cells[key]
		if !ok || v == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("stat %s: bad value %q", key, v)
		}
		return n, nil
	}

	var pts, trb int
	var err error
	for _, set := range []struct {
		key string
		dst *int
	}{
		{"pts", &pts},
		{"fg", &line.FGM},
		{"fga", &line.FGA},
		{"fg3", &line.FGM3},
		{"fg3a", &line.FGA3},
		{"ft", &line.FTM},
		{"fta", &line.FTA},
		{"orb", &line.OR},
		{"trb", &trb},
		{"ast", &line.Ast},
		{"tov", &line.TO},
		{"stl", &line.Stl},
		{"blk", &line.Blk},
		{"pf", &line.PF},
	} {
		if *set.dst, err = get(set.key); err != nil {
			return 0, line, err
		}
	}

	line.DR = trb - line.OR

	return pts, line, nil
}
