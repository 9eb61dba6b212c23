package gametable

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fortuna/hardwood/internal/store"
)

func game(date, wteam, lteam string, wscore, lscore int) store.GameRecord {
	d, _ := time.Parse(store.DateLayout, date)
	return store.GameRecord{
		Season:  2020,
		Date:    d,
		Type:    store.TypeRegular,
		WTeamID: wteam,
		WScore:  wscore,
		LTeamID: lteam,
		LScore:  lscore,
		WLoc:    store.LocHome,
		WStats:  store.StatLine{FGM: 25, FGA: 55, OR: 10, DR: 20, TO: 9},
		LStats:  store.StatLine{FGM: 24, FGA: 60, OR: 12, DR: 16, TO: 11},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	games := []store.GameRecord{
		game("2020-01-15", "purdue", "indiana", 70, 65),
		game("2020-01-18", "duke", "unc", 80, 78),
	}

	var buf bytes.Buffer
	if err := WriteTable(&buf, games); err != nil {
		t.Fatalf("write: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "Season,DayNum,Type,WTeamID,WScore,LTeamID,LScore,WLoc,NumOT,") {
		t.Errorf("header mismatch: %q", strings.SplitN(out, "\n", 2)[0])
	}

	got, err := ReadTable(strings.NewReader(out))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d games; want 2", len(got))
	}
	if got[0].WTeamID != "purdue" || got[0].WScore != 70 || got[0].WStats.FGA != 55 {
		t.Errorf("first game = %+v", got[0])
	}
	if got[1].LStats.DR != 16 {
		t.Errorf("second game LDR = %d; want 16", got[1].LStats.DR)
	}
}

func TestReadTableEmpty(t *testing.T) {
	got, err := ReadTable(strings.NewReader(""))
	if err != nil || got != nil {
		t.Errorf("ReadTable(empty) = %v, %v; want nil, nil", got, err)
	}
}

func TestMergeFirstSeenWins(t *testing.T) {
	prior := []store.GameRecord{game("2020-01-15", "purdue", "indiana", 70, 65)}

	// Re-extracted copy of the same game with a differing score: the
	// prior row must survive verbatim.
	dup := game("2020-01-15", "purdue", "indiana", 99, 1)
	fresh := []store.GameRecord{dup, game("2020-01-10", "duke", "unc", 80, 78)}

	merged := Merge(prior, fresh)
	if len(merged) != 2 {
		t.Fatalf("got %d games; want 2", len(merged))
	}
	if merged[0].WTeamID != "duke" {
		t.Errorf("merged not sorted by date: first is %s", merged[0].WTeamID)
	}
	if merged[1].WScore != 70 {
		t.Errorf("prior row overwritten: WScore = %d; want 70", merged[1].WScore)
	}
}

func TestMergeAdjacentDayDuplicate(t *testing.T) {
	prior := []store.GameRecord{game("2020-01-15", "gonzaga", "hawaii", 70, 65)}
	fresh := []store.GameRecord{game("2020-01-16", "gonzaga", "hawaii", 70, 65)}

	merged := Merge(prior, fresh)
	if len(merged) != 1 {
		t.Errorf("got %d games; want 1 (adjacent-day duplicate dropped)", len(merged))
	}
}

func TestMergeKeepsInsertionOrderWithinDate(t *testing.T) {
	prior := []store.GameRecord{
		game("2020-01-15", "purdue", "indiana", 70, 65),
	}
	fresh := []store.GameRecord{
		game("2020-01-15", "duke", "unc", 80, 78),
		game("2020-01-15", "kansas", "baylor", 66, 60),
	}

	merged := Merge(prior, fresh)
	if len(merged) != 3 {
		t.Fatalf("got %d games; want 3", len(merged))
	}
	order := []string{merged[0].WTeamID, merged[1].WTeamID, merged[2].WTeamID}
	want := []string{"purdue", "duke", "kansas"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v; want %v", order, want)
		}
	}
}
