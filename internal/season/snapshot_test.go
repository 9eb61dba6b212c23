package season

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/fortuna/hardwood/internal/store"
)

// A team whose box-score cells are all zero (forfeits, partial source
// rows) derives NaN rates. The snapshot must still serialize, with the
// degenerate rates carried as null, and round back to NaN.
func TestSnapshotJSONSurvivesDegenerateRates(t *testing.T) {
	g := testGame("2020-01-15", "purdue", "forfeit", 70, 0, 0)
	g.LStats = store.StatLine{}

	stats := Aggregate([]store.GameRecord{g})
	stats.Get(2020, "forfeit").Adjusted = map[string]float64{
		"pace": 61.5,
		"oeff": math.NaN(),
	}

	rows := Snapshot(stats)
	data, err := json.Marshal(rows)
	if err != nil {
		t.Fatalf("marshal with degenerate rates: %v", err)
	}
	if !strings.Contains(string(data), `"efgp":null`) {
		t.Error("degenerate eFG% not encoded as null")
	}

	var back []SnapshotRow
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	var forfeit, purdue *SnapshotRow
	for i := range back {
		switch back[i].TeamID {
		case "forfeit":
			forfeit = &back[i]
		case "purdue":
			purdue = &back[i]
		}
	}
	if forfeit == nil || purdue == nil {
		t.Fatal("round trip lost a team row")
	}

	if !math.IsNaN(forfeit.Adv.Own.Efgp) || !math.IsNaN(forfeit.Adv.Own.Eff) {
		t.Error("null rates should round-trip back to NaN")
	}
	if forfeit.Adjusted["pace"] != 61.5 {
		t.Errorf("adjusted pace = %v; want 61.5", forfeit.Adjusted["pace"])
	}
	if !math.IsNaN(forfeit.Adjusted["oeff"]) {
		t.Error("NaN adjusted key should round-trip back to NaN")
	}

	// The healthy side's rates survive untouched.
	wantEfgp := (25.0 + 0.5*8) / 55
	if math.Abs(purdue.Adv.Own.Efgp-wantEfgp) > 1e-9 {
		t.Errorf("purdue eFG%% = %v; want %v", purdue.Adv.Own.Efgp, wantEfgp)
	}
}
