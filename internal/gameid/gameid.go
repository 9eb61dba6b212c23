// Package gameid assigns canonical identifiers to games and tracks
// which identifiers have already been admitted during an ingestion
// pass. The same physical game is fetched independently from both
// participants' pages, and sports-reference occasionally files it
// under two different local dates, so dedup checks the previous
// calendar day's bucket as well.
package gameid

import (
	"time"

	"github.com/fortuna/hardwood/internal/store"
)

// Canonical returns the unique game ID for a date and team pair, like
// "2020-02-15_indiana_purdue". The team codes are sorted so the ID is
// independent of which team's page produced the row.
func Canonical(date, t1, t2 string) string {
	if t2 < t1 {
		t1, t2 = t2, t1
	}
	return date + "_" + t1 + "_" + t2
}

// DateIndex is the registry of admitted game IDs, bucketed by date.
// Admission mutates the bucket for the record's date, so records for a
// given date must be consumed sequentially, never in parallel.
type DateIndex struct {
	buckets map[string]map[string]struct{}
	parent  *DateIndex
}

// NewDateIndex returns an empty index.
func NewDateIndex() *DateIndex {
	return &DateIndex{buckets: make(map[string]map[string]struct{})}
}

// FromRecords seeds an index with every game already present in a
// previously persisted table, so re-extraction yields no duplicates.
func FromRecords(games []store.GameRecord) *DateIndex {
	ix := NewDateIndex()
	for i := range games {
		g := &games[i]
		ix.Register(g.DateString(), g.WTeamID, g.LTeamID)
	}
	return ix
}

// Register records a game ID in its date bucket without any duplicate
// check. Used when seeding from rows that are already canonical.
func (ix *DateIndex) Register(date, t1, t2 string) {
	gid := Canonical(date, t1, t2)
	bucket, ok := ix.buckets[date]
	if !ok {
		bucket = make(map[string]struct{})
		ix.buckets[date] = bucket
	}
	bucket[gid] = struct{}{}
}

// Overlay returns an index whose admissions stay local until Commit
// folds them into the receiver. A caller that may abort mid-batch
// admits against the overlay and commits only on success, so a
// discarded batch leaves no registrations behind.
func (ix *DateIndex) Overlay() *DateIndex {
	return &DateIndex{
		buckets: make(map[string]map[string]struct{}),
		parent:  ix,
	}
}

// Commit folds an overlay's admissions into its parent. Committing an
// index with no parent is a no-op.
func (ix *DateIndex) Commit() {
	if ix.parent == nil {
		return
	}
	for date, bucket := range ix.buckets {
		dst, ok := ix.parent.buckets[date]
		if !ok {
			dst = make(map[string]struct{}, len(bucket))
			ix.parent.buckets[date] = dst
		}
		for gid := range bucket {
			dst[gid] = struct{}{}
		}
	}
	ix.buckets = make(map[string]map[string]struct{})
}

// Seen reports whether the game is already recorded under its own date
// or, to catch the site's date-boundary artifact, under the previous
// calendar day. Overlays consult their parent chain as well.
func (ix *DateIndex) Seen(date, t1, t2 string) bool {
	if ix.contains(date, Canonical(date, t1, t2)) {
		return true
	}
	prev := previousDay(date)
	return ix.contains(prev, Canonical(prev, t1, t2))
}

func (ix *DateIndex) contains(date, gid string) bool {
	if bucket, ok := ix.buckets[date]; ok {
		if _, dup := bucket[gid]; dup {
			return true
		}
	}
	if ix.parent != nil {
		return ix.parent.contains(date, gid)
	}
	return false
}

// Admit checks for a duplicate and, when the game is new, registers it
// before returning. The check and the registration form one critical
// section: a second extraction of the same game within the same pass
// must observe the first.
func (ix *DateIndex) Admit(date, t1, t2 string) bool {
	if ix.Seen(date, t1, t2) {
		return false
	}
	ix.Register(date, t1, t2)
	return true
}

// previousDay shifts a YYYY-MM-DD date string back one calendar day.
// An unparseable date has no adjacent bucket, so it maps to itself.
func previousDay(date string) string {
	d, err := time.Parse(store.DateLayout, date)
	if err != nil {
		return date
	}
	return d.AddDate(0, 0, -1).Format(store.DateLayout)
}
