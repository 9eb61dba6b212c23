package season

import "github.com/fortuna/hardwood/internal/store"

// Aggregate folds an ordered stream of game records into per-team
// season accumulators. Accrual is symmetric: the winner's own totals
// take the winner's line and its opponent totals take the loser's
// line, and vice versa. All counters are order-independent sums; only
// the history slices depend on input order, staying chronological when
// the input is.
func Aggregate(games []store.GameRecord) SeasonStats {
	stats := make(SeasonStats)
	for i := range games {
		Fold(stats, &games[i])
	}
	return stats
}

// Fold adds a single game to the accumulators, initializing both
// participants on first sight.
func Fold(stats SeasonStats, g *store.GameRecord) {
	w := stats.ensure(g.Season, g.WTeamID)
	l := stats.ensure(g.Season, g.LTeamID)

	w.Own.Accrue(g.WScore, g.WStats)
	w.Opp.Accrue(g.LScore, g.LStats)
	l.Own.Accrue(g.LScore, g.LStats)
	l.Opp.Accrue(g.WScore, g.WStats)

	w.Wins++
	l.Losses++
	w.TotOT += g.NumOT
	l.TotOT += g.NumOT

	// One possession count per game, credited to both sides.
	poss := g.Possessions()
	w.TotPoss += poss
	l.TotPoss += poss

	w.Opponents = append(w.Opponents, g.LTeamID)
	l.Opponents = append(l.Opponents, g.WTeamID)
	w.Scores = append(w.Scores, [2]int{g.WScore, g.LScore})
	l.Scores = append(l.Scores, [2]int{g.LScore, g.WScore})
	w.Locations = append(w.Locations, g.WLoc)
	l.Locations = append(l.Locations, store.FlipLoc(g.WLoc))
	w.Poss = append(w.Poss, poss)
	l.Poss = append(l.Poss, poss)
	w.OTs = append(w.OTs, g.NumOT)
	l.OTs = append(l.OTs, g.NumOT)
}
