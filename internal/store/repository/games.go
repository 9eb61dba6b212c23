package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fortuna/hardwood/internal/gameid"
	"github.com/fortuna/hardwood/internal/store"
)

// GameRepository handles game data access
type GameRepository struct {
	db *store.Database
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *store.Database) *GameRepository {
	return &GameRepository{db: db}
}

const gameColumns = `gid, season, game_date, game_type, wteam, wscore, lteam, lscore, wloc, numot,
	wfgm, wfga, wfgm3, wfga3, wftm, wfta, wor, wdr, wast, wto, wstl, wblk, wpf,
	lfgm, lfga, lfgm3, lfga3, lftm, lfta, lor, ldr, last, lto, lstl, lblk, lpf,
	poss, wrank, lrank`

// Insert stores a game keyed on its canonical ID. Re-inserting the
// same game is a no-op, so repeated scrapes of overlapping date ranges
// are safe.
func (r *GameRepository) Insert(ctx context.Context, g *store.GameRecord) error {
	query := `
		INSERT INTO games (` + gameColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23,
			$24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34, $35, $36,
			$37, $38, $39)
		ON CONFLICT (gid) DO NOTHING
	`

	gid := gameid.Canonical(g.DateString(), g.WTeamID, g.LTeamID)
	var poss sql.NullFloat64
	if g.Poss > 0 {
		poss = sql.NullFloat64{Float64: g.Poss, Valid: true}
	}

	w, l := &g.WStats, &g.LStats
	_, err := r.db.DB().ExecContext(ctx, query,
		gid, g.Season, g.Date, g.Type, g.WTeamID, g.WScore, g.LTeamID, g.LScore, g.WLoc, g.NumOT,
		w.FGM, w.FGA, w.FGM3, w.FGA3, w.FTM, w.FTA, w.OR, w.DR, w.Ast, w.TO, w.Stl, w.Blk, w.PF,
		l.FGM, l.FGA, l.FGM3, l.FGA3, l.FTM, l.FTA, l.OR, l.DR, l.Ast, l.TO, l.Stl, l.Blk, l.PF,
		poss, g.WRank, g.LRank,
	)
	if err != nil {
		return fmt.Errorf("inserting game %s: %w", gid, err)
	}

	return nil
}

// InsertAll stores a batch of games inside one transaction.
func (r *GameRepository) InsertAll(ctx context.Context, games []store.GameRecord) error {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO games (` + gameColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23,
			$24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34, $35, $36,
			$37, $38, $39)
		ON CONFLICT (gid) DO NOTHING
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := range games {
		g := &games[i]
		gid := gameid.Canonical(g.DateString(), g.WTeamID, g.LTeamID)
		var poss sql.NullFloat64
		if g.Poss > 0 {
			poss = sql.NullFloat64{Float64: g.Poss, Valid: true}
		}
		w, l := &g.WStats, &g.LStats
		_, err := stmt.ExecContext(ctx,
			gid, g.Season, g.Date, g.Type, g.WTeamID, g.WScore, g.LTeamID, g.LScore, g.WLoc, g.NumOT,
			w.FGM, w.FGA, w.FGM3, w.FGA3, w.FTM, w.FTA, w.OR, w.DR, w.Ast, w.TO, w.Stl, w.Blk, w.PF,
			l.FGM, l.FGA, l.FGM3, l.FGA3, l.FTM, l.FTA, l.OR, l.DR, l.Ast, l.TO, l.Stl, l.Blk, l.PF,
			poss, g.WRank, g.LRank,
		)
		if err != nil {
			return fmt.Errorf("inserting game %s: %w", gid, err)
		}
	}

	return tx.Commit()
}

// GetBySeason returns all games in a season ordered by date.
func (r *GameRepository) GetBySeason(ctx context.Context, season int) ([]store.GameRecord, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE season = $1
		ORDER BY game_date, gid
	`

	rows, err := r.db.DB().QueryContext(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("querying season games: %w", err)
	}
	defer rows.Close()

	return r.scanGames(rows)
}

// GetBySeasonBefore returns a season's games with dates strictly
// before the cutoff, ordered by date. This is the load used when
// computing ratings as of a given day.
func (r *GameRepository) GetBySeasonBefore(ctx context.Context, season int, before time.Time) ([]store.GameRecord, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE season = $1 AND game_date < $2
		ORDER BY game_date, gid
	`

	rows, err := r.db.DB().QueryContext(ctx, query, season, before)
	if err != nil {
		return nil, fmt.Errorf("querying season games: %w", err)
	}
	defer rows.Close()

	return r.scanGames(rows)
}

// GetByDate returns all games on a specific date
func (r *GameRepository) GetByDate(ctx context.Context, date time.Time) ([]store.GameRecord, error) {
	startOfDay := date.Truncate(24 * time.Hour)
	endOfDay := startOfDay.Add(24 * time.Hour)

	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE game_date >= $1 AND game_date < $2
		ORDER BY gid
	`

	rows, err := r.db.DB().QueryContext(ctx, query, startOfDay, endOfDay)
	if err != nil {
		return nil, fmt.Errorf("querying games: %w", err)
	}
	defer rows.Close()

	return r.scanGames(rows)
}

// GetByTeam returns a team's games in a season, most recent first.
func (r *GameRepository) GetByTeam(ctx context.Context, teamID string, season int, limit int) ([]store.GameRecord, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE (wteam = $1 OR lteam = $1) AND season = $2
		ORDER BY game_date DESC
		LIMIT $3
	`

	rows, err := r.db.DB().QueryContext(ctx, query, teamID, season, limit)
	if err != nil {
		return nil, fmt.Errorf("querying team games: %w", err)
	}
	defer rows.Close()

	return r.scanGames(rows)
}

// CountBySeason returns the number of stored games for a season.
func (r *GameRepository) CountBySeason(ctx context.Context, season int) (int, error) {
	var n int
	err := r.db.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM games WHERE season = $1", season).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting season games: %w", err)
	}
	return n, nil
}

// scanGames scans multiple game rows
func (r *GameRepository) scanGames(rows *sql.Rows) ([]store.GameRecord, error) {
	var games []store.GameRecord
	for rows.Next() {
		var g store.GameRecord
		var gid string
		var poss sql.NullFloat64
		w, l := &g.WStats, &g.LStats
		err := rows.Scan(
			&gid, &g.Season, &g.Date, &g.Type, &g.WTeamID, &g.WScore, &g.LTeamID, &g.LScore, &g.WLoc, &g.NumOT,
			&w.FGM, &w.FGA, &w.FGM3, &w.FGA3, &w.FTM, &w.FTA, &w.OR, &w.DR, &w.Ast, &w.TO, &w.Stl, &w.Blk, &w.PF,
			&l.FGM, &l.FGA, &l.FGM3, &l.FGA3, &l.FTM, &l.FTA, &l.OR, &l.DR, &l.Ast, &l.TO, &l.Stl, &l.Blk, &l.PF,
			&poss, &g.WRank, &g.LRank,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning game: %w", err)
		}
		if poss.Valid {
			g.Poss = poss.Float64
		}
		games = append(games, g)
	}

	return games, rows.Err()
}
