package features

import (
	"database/sql"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/fortuna/hardwood/internal/ratings"
	"github.com/fortuna/hardwood/internal/season"
	"github.com/fortuna/hardwood/internal/store"
)

func featureGame(date, wteam, lteam string, wscore, lscore int, wloc string) store.GameRecord {
	d, _ := time.Parse(store.DateLayout, date)
	return store.GameRecord{
		Season:  2020,
		Date:    d,
		Type:    store.TypeRegular,
		WTeamID: wteam,
		WScore:  wscore,
		LTeamID: lteam,
		LScore:  lscore,
		WLoc:    wloc,
		WStats:  store.StatLine{FGM: 25, FGA: 55, FGM3: 8, FGA3: 20, FTM: 12, FTA: 16, OR: 10, DR: 20, Ast: 15, TO: 9},
		LStats:  store.StatLine{FGM: 24, FGA: 60, FGM3: 5, FGA3: 18, FTM: 12, FTA: 15, OR: 12, DR: 16, Ast: 12, TO: 11},
	}
}

// solvedStats aggregates the games and runs the passthrough solver so
// the adjusted keys the compiler reads are populated.
func solvedStats(t *testing.T, games []store.GameRecord) season.SeasonStats {
	t.Helper()
	stats := season.Aggregate(games)
	if err := (ratings.Passthrough{}).ComputeEfficiencyRatings(stats, ratings.SolveOptions{}); err != nil {
		t.Fatalf("solver: %v", err)
	}
	return stats
}

func TestCompileAlphabeticalSignConvention(t *testing.T) {
	// Same pairing with opposite winners: the reference side must be
	// the lexicographically smaller code both times.
	games := []store.GameRecord{
		featureGame("2020-01-15", "aardvark", "zebra", 70, 65, store.LocHome),
		featureGame("2020-01-20", "zebra", "aardvark", 80, 72, store.LocHome),
	}
	stats := solvedStats(t, games)

	rows, err := Compile(games, stats, OrientAlphabetical, nil)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows; want 2", len(rows))
	}

	for i, row := range rows {
		if row.TID1 != "aardvark" || row.TID2 != "zebra" {
			t.Errorf("row %d orientation = %s/%s; want aardvark/zebra", i, row.TID1, row.TID2)
		}
	}
	// aardvark won game one by 5 at home, lost game two by 8 at zebra.
	if rows[0].Result != 1 || rows[0].Margin != 5 || rows[0].HA != 1 {
		t.Errorf("row 0 = result %d margin %d HA %d; want 1, 5, 1", rows[0].Result, rows[0].Margin, rows[0].HA)
	}
	if rows[1].Result != 0 || rows[1].Margin != -8 || rows[1].HA != -1 {
		t.Errorf("row 1 = result %d margin %d HA %d; want 0, -8, -1", rows[1].Result, rows[1].Margin, rows[1].HA)
	}

	// Differentials flip reference consistently: both rows subtract
	// zebra's rating from aardvark's.
	if math.Abs(rows[0].EffDiff-rows[1].EffDiff) > 1e-9 {
		t.Errorf("effdiff differs across rows: %v vs %v", rows[0].EffDiff, rows[1].EffDiff)
	}
	if math.Abs(rows[0].Off.Eff-rows[1].Off.Eff) > 1e-9 {
		t.Errorf("off eff diff differs across rows: %v vs %v", rows[0].Off.Eff, rows[1].Off.Eff)
	}
}

func TestCompileRandomDeterministicWithSeed(t *testing.T) {
	games := []store.GameRecord{
		featureGame("2020-01-15", "purdue", "indiana", 70, 65, store.LocHome),
		featureGame("2020-01-20", "duke", "unc", 80, 72, store.LocNeutral),
	}
	stats := solvedStats(t, games)

	a, err := Compile(games, stats, OrientRandom, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	b, err := Compile(games, stats, OrientRandom, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	for i := range a {
		if a[i].TID1 != b[i].TID1 || a[i].Result != b[i].Result {
			t.Errorf("row %d differs across identically seeded runs", i)
		}
	}
}

func TestCompileRejectsBadConfig(t *testing.T) {
	games := []store.GameRecord{featureGame("2020-01-15", "purdue", "indiana", 70, 65, store.LocHome)}
	stats := solvedStats(t, games)

	if _, err := Compile(games, stats, Orientation("chronological"), nil); err == nil {
		t.Error("unknown orientation accepted")
	}
	if _, err := Compile(games, stats, OrientRandom, nil); err == nil {
		t.Error("random orientation without a rand source accepted")
	}
}

func TestCompileMissingTeamStats(t *testing.T) {
	games := []store.GameRecord{featureGame("2020-01-15", "purdue", "indiana", 70, 65, store.LocHome)}
	if _, err := Compile(games, make(season.SeasonStats), OrientAlphabetical, nil); err == nil {
		t.Error("expected error for missing season stats")
	}
}

func TestCompileRanksCarriedOrNaN(t *testing.T) {
	g := featureGame("2020-01-15", "purdue", "indiana", 70, 65, store.LocHome)
	g.WRank = sql.NullInt32{Int32: 12, Valid: true}
	games := []store.GameRecord{g}
	stats := solvedStats(t, games)

	rows, err := Compile(games, stats, OrientAlphabetical, nil)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	// indiana is the reference team and was unranked.
	if !math.IsNaN(rows[0].Rank1) {
		t.Errorf("rank1 = %v; want NaN for unranked", rows[0].Rank1)
	}
	if rows[0].Rank2 != 12 {
		t.Errorf("rank2 = %v; want 12", rows[0].Rank2)
	}
}

func TestCompileNormalizesOvertimePossessions(t *testing.T) {
	g := featureGame("2020-01-15", "purdue", "indiana", 70, 65, store.LocHome)
	g.NumOT = 2
	games := []store.GameRecord{g}
	stats := solvedStats(t, games)

	rows, err := Compile(games, stats, OrientAlphabetical, nil)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	want := g.Possessions() / 1.25
	if math.Abs(rows[0].Poss-want) > 1e-9 {
		t.Errorf("poss = %v; want %v", rows[0].Poss, want)
	}
}
