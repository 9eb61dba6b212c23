package repository

import (
	"context"
	"fmt"

	"github.com/fortuna/hardwood/internal/store"
)

// TeamRepository handles team data access
type TeamRepository struct {
	db *store.Database
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *store.Database) *TeamRepository {
	return &TeamRepository{db: db}
}

// UpsertSeason replaces the team list for one season.
func (r *TeamRepository) UpsertSeason(ctx context.Context, season int, teamIDs []string) error {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM teams WHERE season = $1", season); err != nil {
		return fmt.Errorf("clearing season teams: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO teams (team_id, season) VALUES ($1, $2)")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, id := range teamIDs {
		if _, err := stmt.ExecContext(ctx, id, season); err != nil {
			return fmt.Errorf("inserting team %s: %w", id, err)
		}
	}

	return tx.Commit()
}

// GetBySeason returns the team IDs active in a season, alphabetical.
func (r *TeamRepository) GetBySeason(ctx context.Context, season int) ([]string, error) {
	rows, err := r.db.DB().QueryContext(ctx,
		"SELECT team_id FROM teams WHERE season = $1 ORDER BY team_id", season)
	if err != nil {
		return nil, fmt.Errorf("querying teams: %w", err)
	}
	defer rows.Close()

	var teams []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning team: %w", err)
		}
		teams = append(teams, id)
	}

	return teams, rows.Err()
}
