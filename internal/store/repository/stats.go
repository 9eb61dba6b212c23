package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fortuna/hardwood/internal/season"
	"github.com/fortuna/hardwood/internal/store"
)

// StatsRepository persists computed season stat snapshots.
type StatsRepository struct {
	db *store.Database
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *store.Database) *StatsRepository {
	return &StatsRepository{db: db}
}

// SaveSnapshot writes a season's stat rows, replacing any prior
// snapshot for the same teams.
func (r *StatsRepository) SaveSnapshot(ctx context.Context, snap []season.SnapshotRow) error {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO team_season_stats (season, team_id, snapshot)
		VALUES ($1, $2, $3)
		ON CONFLICT (season, team_id) DO UPDATE SET
			snapshot = EXCLUDED.snapshot,
			updated_at = NOW()
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for i := range snap {
		row := &snap[i]
		payload, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("encoding snapshot for %s: %w", row.TeamID, err)
		}
		if _, err := stmt.ExecContext(ctx, row.Season, row.TeamID, payload); err != nil {
			return fmt.Errorf("upserting snapshot for %s: %w", row.TeamID, err)
		}
	}

	return tx.Commit()
}

// GetSeason returns all stored stat rows for a season, alphabetical by
// team.
func (r *StatsRepository) GetSeason(ctx context.Context, seasonYear int) ([]season.SnapshotRow, error) {
	rows, err := r.db.DB().QueryContext(ctx,
		"SELECT snapshot FROM team_season_stats WHERE season = $1 ORDER BY team_id", seasonYear)
	if err != nil {
		return nil, fmt.Errorf("querying season stats: %w", err)
	}
	defer rows.Close()

	var snap []season.SnapshotRow
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		var row season.SnapshotRow
		if err := json.Unmarshal(payload, &row); err != nil {
			return nil, fmt.Errorf("decoding snapshot: %w", err)
		}
		snap = append(snap, row)
	}

	return snap, rows.Err()
}

// GetTeam returns one team's stored stat row for a season.
func (r *StatsRepository) GetTeam(ctx context.Context, seasonYear int, teamID string) (*season.SnapshotRow, error) {
	var payload []byte
	err := r.db.DB().QueryRowContext(ctx,
		"SELECT snapshot FROM team_season_stats WHERE season = $1 AND team_id = $2",
		seasonYear, teamID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no stats for %s in %d", teamID, seasonYear)
	}
	if err != nil {
		return nil, fmt.Errorf("querying team stats: %w", err)
	}

	var row season.SnapshotRow
	if err := json.Unmarshal(payload, &row); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &row, nil
}
