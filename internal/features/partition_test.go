package features

import (
	"testing"
	"time"

	"github.com/fortuna/hardwood/internal/store"
)

func seasonGame(season int, date string) store.GameRecord {
	d, _ := time.Parse(store.DateLayout, date)
	return store.GameRecord{Season: season, Date: d, WTeamID: "a", LTeamID: "b"}
}

func TestPartitionBySeason(t *testing.T) {
	games := []store.GameRecord{
		seasonGame(2019, "2018-11-10"),
		seasonGame(2019, "2018-12-01"),
		seasonGame(2019, "2019-01-15"),
		seasonGame(2019, "2019-02-20"),
		seasonGame(2020, "2019-11-12"),
		seasonGame(2020, "2020-01-05"),
	}

	first, second := PartitionBySeason(games, 0.5)
	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("split sizes = %d/%d; want 3/3", len(first), len(second))
	}
	// Each season contributes its own early portion.
	wantFirst := []int{0, 1, 4}
	for i, idx := range wantFirst {
		if first[i] != idx {
			t.Errorf("first[%d] = %d; want %d", i, first[i], idx)
		}
	}
}

func TestPartitionBySeasonEmptyAndFull(t *testing.T) {
	games := []store.GameRecord{seasonGame(2020, "2019-11-12"), seasonGame(2020, "2020-01-05")}

	first, second := PartitionBySeason(games, 0)
	if len(first) != 0 || len(second) != 2 {
		t.Errorf("frac 0: sizes %d/%d; want 0/2", len(first), len(second))
	}
	first, second = PartitionBySeason(games, 1)
	if len(first) != 2 || len(second) != 0 {
		t.Errorf("frac 1: sizes %d/%d; want 2/0", len(first), len(second))
	}
}

func TestSplitByYears(t *testing.T) {
	rows := []FeatureRow{
		{Season: 2018}, {Season: 2019}, {Season: 2020}, {Season: 2019},
	}
	train, test := SplitByYears(rows, []int{2018, 2019}, []int{2020})
	if len(train) != 3 {
		t.Errorf("train size = %d; want 3", len(train))
	}
	if len(test) != 1 || test[0].Season != 2020 {
		t.Errorf("test = %+v; want single 2020 row", test)
	}
}
