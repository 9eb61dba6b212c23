package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Database represents the PostgreSQL connection used for game and
// season-stat persistence.
type Database struct {
	conn *sql.DB
	dsn  string
}

// NewDatabase opens a connection pool and verifies it with a ping.
func NewDatabase(dsn string) (*Database, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{
		conn: db,
		dsn:  dsn,
	}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// DB returns the underlying *sql.DB for queries
func (db *Database) DB() *sql.DB {
	return db.conn
}

type migration struct {
	version string
	sql     string
}

// The schema is small enough to carry inline rather than shipping
// migration files alongside the binary.
var migrations = []migration{
	{
		version: "001_create_games.sql",
		sql: `
			CREATE TABLE IF NOT EXISTS games (
				gid VARCHAR(80) PRIMARY KEY,
				season INTEGER NOT NULL,
				game_date DATE NOT NULL,
				game_type VARCHAR(3) NOT NULL,
				wteam VARCHAR(64) NOT NULL,
				wscore INTEGER NOT NULL,
				lteam VARCHAR(64) NOT NULL,
				lscore INTEGER NOT NULL,
				wloc CHAR(1) NOT NULL,
				numot INTEGER NOT NULL DEFAULT 0,
				wfgm INTEGER NOT NULL, wfga INTEGER NOT NULL,
				wfgm3 INTEGER NOT NULL, wfga3 INTEGER NOT NULL,
				wftm INTEGER NOT NULL, wfta INTEGER NOT NULL,
				wor INTEGER NOT NULL, wdr INTEGER NOT NULL,
				wast INTEGER NOT NULL, wto INTEGER NOT NULL,
				wstl INTEGER NOT NULL, wblk INTEGER NOT NULL, wpf INTEGER NOT NULL,
				lfgm INTEGER NOT NULL, lfga INTEGER NOT NULL,
				lfgm3 INTEGER NOT NULL, lfga3 INTEGER NOT NULL,
				lftm INTEGER NOT NULL, lfta INTEGER NOT NULL,
				lor INTEGER NOT NULL, ldr INTEGER NOT NULL,
				last INTEGER NOT NULL, lto INTEGER NOT NULL,
				lstl INTEGER NOT NULL, lblk INTEGER NOT NULL, lpf INTEGER NOT NULL,
				poss DOUBLE PRECISION,
				wrank INTEGER,
				lrank INTEGER,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)
		`,
	},
	{
		version: "002_create_games_indexes.sql",
		sql: `
			CREATE INDEX IF NOT EXISTS idx_games_season_date ON games (season, game_date);
			CREATE INDEX IF NOT EXISTS idx_games_wteam ON games (season, wteam);
			CREATE INDEX IF NOT EXISTS idx_games_lteam ON games (season, lteam)
		`,
	},
	{
		version: "003_create_teams.sql",
		sql: `
			CREATE TABLE IF NOT EXISTS teams (
				team_id VARCHAR(64) NOT NULL,
				season INTEGER NOT NULL,
				display_name VARCHAR(128) NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				PRIMARY KEY (team_id, season)
			)
		`,
	},
	{
		version: "004_create_team_season_stats.sql",
		sql: `
			CREATE TABLE IF NOT EXISTS team_season_stats (
				season INTEGER NOT NULL,
				team_id VARCHAR(64) NOT NULL,
				snapshot JSONB NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				PRIMARY KEY (season, team_id)
			)
		`,
	},
}

// RunMigrations executes all migrations in order
func (db *Database) RunMigrations() error {
	log.Println("Running database migrations...")

	if err := db.createMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, m := range migrations {
		if err := db.runMigration(m); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", m.version, err)
		}
	}

	log.Println("✓ All migrations completed successfully")

	return nil
}

// createMigrationsTable creates a table to track which migrations have been run
func (db *Database) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	_, err := db.conn.Exec(query)
	return err
}

// runMigration runs a single migration if it hasn't been applied yet
func (db *Database) runMigration(m migration) error {
	var exists bool
	err := db.conn.QueryRow("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", m.version).Scan(&exists)
	if err != nil {
		return err
	}

	if exists {
		log.Printf("  ⊘ Skipping %s (already applied)", m.version)
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.sql); err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}

	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES ($1)", m.version); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Printf("  ✓ Applied %s", m.version)
	return nil
}

// HealthCheck performs a health check on the database
func (db *Database) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	return db.conn.PingContext(ctx)
}
