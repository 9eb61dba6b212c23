package gametable

import (
	"github.com/fortuna/hardwood/internal/gameid"
	"github.com/fortuna/hardwood/internal/store"
)

// Merge combines a previously persisted table with newly extracted
// rows. Prior rows are kept verbatim and always win: a new row whose
// canonical ID is already present (including under the adjacent
// calendar day) is dropped. The result is sorted by date, prior rows
// before new ones within each date.
func Merge(prior, fresh []store.GameRecord) []store.GameRecord {
	merged := make([]store.GameRecord, 0, len(prior)+len(fresh))
	index := gameid.NewDateIndex()

	for i := range prior {
		g := prior[i]
		if index.Admit(g.DateString(), g.WTeamID, g.LTeamID) {
			merged = append(merged, g)
		}
	}
	for i := range fresh {
		g := fresh[i]
		if index.Admit(g.DateString(), g.WTeamID, g.LTeamID) {
			merged = append(merged, g)
		}
	}

	SortByDate(merged)
	return merged
}
