package season

import (
	"math"
	"testing"
)

func sampleStats() *TeamSeasonStats {
	return &TeamSeasonStats{
		Season: 2020,
		TeamID: "purdue",
		Wins:   20,
		Losses: 10,
		TotOT:  4,
		Own:    Totals{Score: 2200, FGM: 800, FGA: 1800, FGM3: 200, FGA3: 600, FTM: 400, FTA: 550, OR: 300, DR: 700, Ast: 450, TO: 350, Stl: 180, Blk: 90, PF: 500},
		Opp:    Totals{Score: 2000, FGM: 720, FGA: 1750, FGM3: 180, FGA3: 580, FTM: 380, FTA: 500, OR: 280, DR: 650, Ast: 400, TO: 380, Stl: 160, Blk: 80, PF: 520},
	}
}

func TestDeriveAdvancedRecoversScore(t *testing.T) {
	ts := sampleStats()
	adv := DeriveAdvanced(ts)

	// Score = eff * poss / 100 within floating tolerance.
	got := adv.Own.Eff * adv.Own.Poss / 100
	if math.Abs(got-float64(ts.Own.Score)) > 1e-6 {
		t.Errorf("eff*poss/100 = %v; want %d", got, ts.Own.Score)
	}

	wantPoss := 1800 + 0.44*550 - 300 + 350
	if math.Abs(adv.Own.Poss-wantPoss) > 1e-9 {
		t.Errorf("own poss = %v; want %v", adv.Own.Poss, wantPoss)
	}
}

func TestDeriveAdvancedOrbpBounds(t *testing.T) {
	ts := sampleStats()
	adv := DeriveAdvanced(ts)

	// Own ORB% uses the opponents' defensive rebounds.
	want := 300.0 / (300 + 650)
	if math.Abs(adv.Own.Orbp-want) > 1e-9 {
		t.Errorf("own orbp = %v; want %v", adv.Own.Orbp, want)
	}
	for _, v := range []float64{adv.Own.Orbp, adv.Opp.Orbp} {
		if v < 0 || v > 1 {
			t.Errorf("orbp = %v; want within [0,1]", v)
		}
	}
}

func TestDeriveAdvancedRawPace(t *testing.T) {
	ts := sampleStats()
	adv := DeriveAdvanced(ts)

	want := 0.5 * (adv.Own.Poss + adv.Opp.Poss) / (20 + 10 + 0.125*4)
	if math.Abs(adv.RawPace-want) > 1e-9 {
		t.Errorf("rawpace = %v; want %v", adv.RawPace, want)
	}
}

func TestDeriveAdvancedDegenerateIsNaN(t *testing.T) {
	// A team with nothing recorded: every denominator is zero.
	empty := &TeamSeasonStats{Season: 2020, TeamID: "newschool"}
	adv := DeriveAdvanced(empty)

	if !math.IsNaN(adv.Own.Efgp) {
		t.Errorf("efgp = %v; want NaN for zero attempts", adv.Own.Efgp)
	}
	if !math.IsNaN(adv.Own.Eff) {
		t.Errorf("eff = %v; want NaN for zero possessions", adv.Own.Eff)
	}
	if !math.IsNaN(adv.Own.Orbp) {
		t.Errorf("orbp = %v; want NaN for zero rebounds", adv.Own.Orbp)
	}
}

func TestDegenerateTeamDoesNotPoisonOthers(t *testing.T) {
	stats := make(SeasonStats)
	stats.ensure(2020, "newschool")
	healthy := stats.ensure(2020, "purdue")
	*healthy = *sampleStats()

	rows := Snapshot(stats)
	if len(rows) != 2 {
		t.Fatalf("got %d rows; want 2", len(rows))
	}
	for _, row := range rows {
		switch row.TeamID {
		case "newschool":
			if !math.IsNaN(row.Adv.Own.Efgp) {
				t.Errorf("newschool efgp = %v; want NaN", row.Adv.Own.Efgp)
			}
		case "purdue":
			if math.IsNaN(row.Adv.Own.Efgp) {
				t.Error("purdue efgp is NaN; degenerate team leaked")
			}
		}
	}
}

func TestSnapshotOrdering(t *testing.T) {
	stats := make(SeasonStats)
	stats.ensure(2021, "duke")
	stats.ensure(2020, "purdue")
	stats.ensure(2020, "indiana")

	rows := Snapshot(stats)
	if len(rows) != 3 {
		t.Fatalf("got %d rows; want 3", len(rows))
	}
	if rows[0].Season != 2020 || rows[0].TeamID != "indiana" {
		t.Errorf("first row = %d/%s; want 2020/indiana", rows[0].Season, rows[0].TeamID)
	}
	if rows[2].Season != 2021 || rows[2].TeamID != "duke" {
		t.Errorf("last row = %d/%s; want 2021/duke", rows[2].Season, rows[2].TeamID)
	}
}
