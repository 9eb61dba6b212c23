// Command scrape is the file-to-file pipeline CLI. It covers the same
// stages the service runs on a schedule: pulling team lists, scraping
// game data into a CSV table, aggregating season stats, and compiling
// training features.
//
// Usage:
//
//	scrape teams --season 2026
//	scrape gamedata --season 2026 --table games_2026.csv --start 2026-01-01 --end 2026-01-31
//	scrape aggregate --table games_2026.csv --out stats_2026.json
//	scrape traindata --table games_2026.csv --out features_2026.csv --orient alphabetical
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/fortuna/hardwood/internal/features"
	"github.com/fortuna/hardwood/internal/gametable"
	"github.com/fortuna/hardwood/internal/ingest"
	"github.com/fortuna/hardwood/internal/ratings"
	"github.com/fortuna/hardwood/internal/season"
	"github.com/fortuna/hardwood/internal/sportsref"
	"github.com/fortuna/hardwood/internal/store"
)

func main() {
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "scrape",
		Short: "College basketball data pipeline CLI",
	}

	root.AddCommand(teamsCmd())
	root.AddCommand(gamedataCmd())
	root.AddCommand(aggregateCmd())
	root.AddCommand(traindataCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func teamsCmd() *cobra.Command {
	var seasonYear int
	cmd := &cobra.Command{
		Use:   "teams",
		Short: "Fetch the season's team list",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := sportsref.NewClient("")
			defer client.Close()

			si, err := ingest.NewSeasonIngester(ingest.Config{Client: client})
			if err != nil {
				return err
			}

			teams, err := si.FetchTeams(context.Background(), seasonYear)
			if err != nil {
				return err
			}
			for _, team := range teams {
				fmt.Println(team)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&seasonYear, "season", 0, "Season year (required)")
	cmd.MarkFlagRequired("season")
	return cmd
}

func gamedataCmd() *cobra.Command {
	var (
		seasonYear int
		tablePath  string
		startStr   string
		endStr     string
		workers    int
		overwrite  bool
	)
	cmd := &cobra.Command{
		Use:   "gamedata",
		Short: "Scrape games into a CSV table, merging with prior contents",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := sportsref.ExtractOptions{Season: seasonYear}
			var err error
			if startStr != "" {
				if opts.StartDate, err = time.Parse(store.DateLayout, startStr); err != nil {
					return fmt.Errorf("bad --start: %w", err)
				}
			}
			if endStr != "" {
				if opts.EndDate, err = time.Parse(store.DateLayout, endStr); err != nil {
					return fmt.Errorf("bad --end: %w", err)
				}
			}

			// Overwrite mode skips the prior table: every game found on
			// the site is fresh and the file is rebuilt from scratch.
			var prior []store.GameRecord
			if !overwrite {
				if prior, err = readTableFile(tablePath); err != nil {
					return err
				}
			}

			client := sportsref.NewClient("")
			defer client.Close()

			si, err := ingest.NewSeasonIngester(ingest.Config{Client: client, Workers: workers})
			if err != nil {
				return err
			}

			ctx := context.Background()
			teams, err := si.FetchTeams(ctx, seasonYear)
			if err != nil {
				return err
			}

			result, err := si.IngestSeason(ctx, teams, prior, opts)
			if err != nil {
				return err
			}
			for team, ferr := range result.FailedTeams {
				log.Printf("⚠️  %s: %v", team, ferr)
			}

			if err := writeTableFile(tablePath, result.Merged); err != nil {
				return err
			}
			log.Printf("✓ %s: %d games (%d new)", tablePath, len(result.Merged), len(result.Fresh))
			return nil
		},
	}
	cmd.Flags().IntVar(&seasonYear, "season", 0, "Season year (required)")
	cmd.Flags().StringVar(&tablePath, "table", "", "Game table CSV path (required)")
	cmd.Flags().StringVar(&startStr, "start", "", "Earliest game date, YYYY-MM-DD")
	cmd.Flags().StringVar(&endStr, "end", "", "Latest game date, YYYY-MM-DD")
	cmd.Flags().IntVar(&workers, "workers", ingest.DefaultWorkers, "Concurrent page fetches")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Rebuild the table instead of merging with its contents")
	cmd.MarkFlagRequired("season")
	cmd.MarkFlagRequired("table")
	return cmd
}

func aggregateCmd() *cobra.Command {
	var tablePath, outPath string
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Aggregate a game table into season stat snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			games, err := readTableFile(tablePath)
			if err != nil {
				return err
			}

			stats := season.Aggregate(games)
			if err := (ratings.Passthrough{}).ComputeEfficiencyRatings(stats, ratings.SolveOptions{}); err != nil {
				return err
			}

			out, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("creating %s: %w", outPath, err)
			}
			defer out.Close()

			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(season.Snapshot(stats)); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}
			log.Printf("✓ %s: stats for %d games", outPath, len(games))
			return nil
		},
	}
	cmd.Flags().StringVar(&tablePath, "table", "", "Game table CSV path (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "Output JSON path (required)")
	cmd.MarkFlagRequired("table")
	cmd.MarkFlagRequired("out")
	return cmd
}

func traindataCmd() *cobra.Command {
	var (
		tablePath, outPath string
		orient             string
		seed               int64
	)
	cmd := &cobra.Command{
		Use:   "traindata",
		Short: "Compile a game table into training feature rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			games, err := readTableFile(tablePath)
			if err != nil {
				return err
			}

			stats := season.Aggregate(games)
			if err := (ratings.Passthrough{}).ComputeEfficiencyRatings(stats, ratings.SolveOptions{}); err != nil {
				return err
			}

			var rng *rand.Rand
			if features.Orientation(orient) == features.OrientRandom {
				rng = rand.New(rand.NewSource(seed))
			}

			rows, err := features.Compile(games, stats, features.Orientation(orient), rng)
			if err != nil {
				return err
			}

			out, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("creating %s: %w", outPath, err)
			}
			defer out.Close()

			if err := features.WriteCSV(out, rows); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}
			log.Printf("✓ %s: %d feature rows", outPath, len(rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&tablePath, "table", "", "Game table CSV path (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "Output CSV path (required)")
	cmd.Flags().StringVar(&orient, "orient", string(features.OrientAlphabetical), "Row orientation: alphabetical or random")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "Seed for random orientation")
	cmd.MarkFlagRequired("table")
	cmd.MarkFlagRequired("out")
	return cmd
}

// readTableFile loads a game table CSV. A missing file is an empty
// table so first runs work without setup.
func readTableFile(path string) ([]store.GameRecord, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	games, err := gametable.ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return games, nil
}

func writeTableFile(path string, games []store.GameRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := gametable.WriteTable(f, games); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
