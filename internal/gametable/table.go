// Package gametable reads, merges and writes the persisted game table:
// one comma-separated row per canonical game, sorted by date.
package gametable

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/fortuna/hardwood/internal/store"
)

// tableHeader is the fixed 35-column header of the game table. Field
// values never contain the delimiter, so no escaping is applied.
var tableHeader = []string{
	"Season", "DayNum", "Type", "WTeamID", "WScore", "LTeamID", "LScore", "WLoc", "NumOT",
	"WFGM", "WFGA", "WFGM3", "WFGA3", "WFTM", "WFTA", "WOR", "WDR", "WAst", "WTO", "WStl", "WBlk", "WPF",
	"LFGM", "LFGA", "LFGM3", "LFGA3", "LFTM", "LFTA", "LOR", "LDR", "LAst", "LTO", "LStl", "LBlk", "LPF",
}

// ReadTable parses a persisted game table.
func ReadTable(r io.Reader) ([]store.GameRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(tableHeader)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) == 0 || header[0] != "Season" {
		return nil, fmt.Errorf("unexpected header %v", header)
	}

	var games []store.GameRecord
	for line := 2; ; line++ {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		g, err := decodeRow(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		games = append(games, g)
	}

	return games, nil
}

// WriteTable writes the header and every game, sorted by date with the
// given order preserved within each date.
func WriteTable(w io.Writer, games []store.GameRecord) error {
	sorted := make([]store.GameRecord, len(games))
	copy(sorted, games)
	SortByDate(sorted)

	cw := csv.NewWriter(w)
	if err := cw.Write(tableHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i := range sorted {
		if err := cw.Write(encodeRow(&sorted[i])); err != nil {
			return fmt.Errorf("writing game %s: %w", sorted[i].DateString(), err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SortByDate orders games chronologically, keeping the existing order
// within a date.
func SortByDate(games []store.GameRecord) {
	sort.SliceStable(games, func(i, j int) bool {
		return games[i].Date.Before(games[j].Date)
	})
}

func encodeRow(g *store.GameRecord) []string {
	fields := make([]string, 0, len(tableHeader))
	fields = append(fields,
		strconv.Itoa(g.Season), g.DateString(), g.Type,
		g.WTeamID, strconv.Itoa(g.WScore),
		g.LTeamID, strconv.Itoa(g.LScore),
		g.WLoc, strconv.Itoa(g.NumOT),
	)
	for _, line := range []*store.StatLine{&g.WStats, &g.LStats} {
		fields = append(fields,
			strconv.Itoa(line.FGM), strconv.Itoa(line.FGA),
			strconv.Itoa(line.FGM3), strconv.Itoa(line.FGA3),
			strconv.Itoa(line.FTM), strconv.Itoa(line.FTA),
			strconv.Itoa(line.OR), strconv.Itoa(line.DR),
			strconv.Itoa(line.Ast), strconv.Itoa(line.TO),
			strconv.Itoa(line.Stl), strconv.Itoa(line.Blk),
			strconv.Itoa(line.PF),
		)
	}
	return fields
}

func decodeRow(fields []string) (store.GameRecord, error) {
	var g store.GameRecord

	ints := make([]int, len(fields))
	for i, f := range fields {
		switch i {
		case 1, 2, 3, 5, 7: // DayNum, Type, WTeamID, LTeamID, WLoc
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return g, fmt.Errorf("column %s: bad value %q", tableHeader[i], f)
		}
		ints[i] = n
	}

	date, err := time.Parse(store.DateLayout, fields[1])
	if err != nil {
		return g, fmt.Errorf("bad date %q: %w", fields[1], err)
	}

	g.Season = ints[0]
	g.Date = date
	g.Type = fields[2]
	g.WTeamID = fields[3]
	g.WScore = ints[4]
	g.LTeamID = fields[5]
	g.LScore = ints[6]
	g.WLoc = fields[7]
	g.NumOT = ints[8]

	for side, line := range []*store.StatLine{&g.WStats, &g.LStats} {
		base := 9 + side*13
		line.FGM, line.FGA = ints[base], ints[base+1]
		line.FGM3, line.FGA3 = ints[base+2], ints[base+3]
		line.FTM, line.FTA = ints[base+4], ints[base+5]
		line.OR, line.DR = ints[base+6], ints[base+7]
		line.Ast, line.TO = ints[base+8], ints[base+9]
		line.Stl, line.Blk, line.PF = ints[base+10], ints[base+11], ints[base+12]
	}

	return g, nil
}
