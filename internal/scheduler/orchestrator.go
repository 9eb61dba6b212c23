package scheduler

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/fortuna/hardwood/internal/cache"
	"github.com/fortuna/hardwood/internal/ingest"
	"github.com/fortuna/hardwood/internal/metrics"
	"github.com/fortuna/hardwood/internal/publisher"
	"github.com/fortuna/hardwood/internal/ratings"
	"github.com/fortuna/hardwood/internal/season"
	"github.com/fortuna/hardwood/internal/sportsref"
	"github.com/fortuna/hardwood/internal/store"
	"github.com/fortuna/hardwood/internal/store/repository"
)

// Config holds scheduler configuration
type Config struct {
	DailyUpdateHour   int           // Default: 7 (7 AM, after west coast games post)
	Season            int           // e.g. 2026 for the 2025-26 season
	EnableDailyUpdate bool          // Default: true
	MaxRetries        int           // Default: 3
	RetryDelay        time.Duration // Default: 5s
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() *Config {
	return &Config{
		DailyUpdateHour:   7,
		Season:            currentSeason(time.Now()),
		EnableDailyUpdate: true,
		MaxRetries:        3,
		RetryDelay:        5 * time.Second,
	}
}

// currentSeason maps a date to its season year: seasons are labeled by
// the calendar year they end in, rolling over in August.
func currentSeason(now time.Time) int {
	if now.Month() >= time.August {
		return now.Year() + 1
	}
	return now.Year()
}

// Orchestrator runs the daily pipeline: scrape yesterday's games,
// rebuild the season table, recompute ratings, and push the results to
// the cache and event streams.
type Orchestrator struct {
	db        *store.Database
	cache     *cache.RedisCache
	publisher *publisher.RedisPublisher
	ingester  *ingest.SeasonIngester
	solver    ratings.Solver
	recorder  *metrics.Recorder
	config    *Config

	gameRepo  *repository.GameRepository
	teamRepo  *repository.TeamRepository
	statsRepo *repository.StatsRepository

	// OnRefresh runs after each successful stats refresh, used to fan
	// results out to websocket subscribers.
	OnRefresh func(seasonYear int, snap []season.SnapshotRow)

	cancel context.CancelFunc
}

// NewOrchestrator creates a scheduler orchestrator
func NewOrchestrator(db *store.Database, rc *cache.RedisCache, pub *publisher.RedisPublisher, solver ratings.Solver, recorder *metrics.Recorder, config *Config) (*Orchestrator, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if solver == nil {
		solver = ratings.Passthrough{}
	}
	if recorder == nil {
		recorder = metrics.NewRecorder()
	}

	gameRepo := repository.NewGameRepository(db)
	teamRepo := repository.NewTeamRepository(db)

	ingester, err := ingest.NewSeasonIngester(ingest.Config{
		Client:    sportsref.NewClient(""),
		GameRepo:  gameRepo,
		TeamRepo:  teamRepo,
		Publisher: pub,
		Recorder:  recorder,
	})
	if err != nil {
		return nil, err
	}

	return &Orchestrator{
		db:        db,
		cache:     rc,
		publisher: pub,
		ingester:  ingester,
		solver:    solver,
		recorder:  recorder,
		config:    config,
		gameRepo:  gameRepo,
		teamRepo:  teamRepo,
		statsRepo: repository.NewStatsRepository(db),
	}, nil
}

// Start begins the daily update loop and blocks until the context is
// cancelled.
func (o *Orchestrator) Start(ctx context.Context) {
	log.Printf("Scheduler started: season %d, daily update %v at %02d:00",
		o.config.Season, o.config.EnableDailyUpdate, o.config.DailyUpdateHour)

	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	if o.config.EnableDailyUpdate {
		go o.runDailyUpdate(ctx)
	}

	<-ctx.Done()
	log.Println("Scheduler stopping...")
}

// Stop gracefully stops the scheduler
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
}

// runDailyUpdate fires the pipeline once a day at the configured hour.
func (o *Orchestrator) runDailyUpdate(ctx context.Context) {
	for {
		now := time.Now()
		nextRun := time.Date(now.Year(), now.Month(), now.Day(), o.config.DailyUpdateHour, 0, 0, 0, now.Location())
		if now.After(nextRun) {
			nextRun = nextRun.Add(24 * time.Hour)
		}

		log.Printf("→ Next daily update: %s (in %v)",
			nextRun.Format("2006-01-02 15:04:05"), time.Until(nextRun).Round(time.Second))

		select {
		case <-ctx.Done():
			log.Println("→ Daily update loop stopped")
			return
		case <-time.After(time.Until(nextRun)):
			o.runWithRetry(ctx)
		}
	}
}

func (o *Orchestrator) runWithRetry(ctx context.Context) {
	for attempt := 1; attempt <= o.config.MaxRetries; attempt++ {
		err := o.RunDailyUpdate(ctx)
		if err == nil {
			return
		}
		log.Printf("⚠️  Daily update attempt %d/%d failed: %v", attempt, o.config.MaxRetries, err)

		if attempt < o.config.MaxRetries {
			select {
			case <-ctx.Done():
				return
			case <-time.After(o.config.RetryDelay):
			}
		}
	}
	log.Printf("❌ Daily update gave up after %d attempts", o.config.MaxRetries)
}

// RunDailyUpdate executes one pipeline pass: ingest yesterday's games
// and refresh the season's stats.
func (o *Orchestrator) RunDailyUpdate(ctx context.Context) error {
	start := time.Now()
	yesterday := time.Now().AddDate(0, 0, -1).Truncate(24 * time.Hour)
	log.Printf("═══ Daily update: ingesting games from %s ═══", yesterday.Format(store.DateLayout))

	teams, err := o.teamRepo.GetBySeason(ctx, o.config.Season)
	if err != nil {
		return fmt.Errorf("loading team list: %w", err)
	}
	if len(teams) == 0 {
		teams, err = o.ingester.FetchTeams(ctx, o.config.Season)
		if err != nil {
			return fmt.Errorf("fetching team list: %w", err)
		}
	}

	prior, err := o.gameRepo.GetBySeason(ctx, o.config.Season)
	if err != nil {
		return fmt.Errorf("loading prior games: %w", err)
	}

	result, err := o.ingester.IngestSeason(ctx, teams, prior, sportsref.ExtractOptions{
		Season:    o.config.Season,
		StartDate: yesterday,
		EndDate:   yesterday,
	})
	if err != nil {
		return fmt.Errorf("ingesting games: %w", err)
	}

	if err := o.RefreshStats(ctx, result.Merged); err != nil {
		return err
	}

	log.Printf("✓ Daily update complete in %v (%d new games)",
		time.Since(start).Round(time.Second), len(result.Fresh))
	return nil
}

// RefreshStats rebuilds season stats and ratings from a game table and
// pushes the snapshot everywhere downstream.
func (o *Orchestrator) RefreshStats(ctx context.Context, games []store.GameRecord) error {
	start := time.Now()

	stats := season.Aggregate(games)
	if err := o.solver.ComputeEfficiencyRatings(stats, solveOptions(len(games))); err != nil {
		return fmt.Errorf("computing efficiency ratings: %w", err)
	}

	snap := season.Snapshot(stats)
	if err := o.statsRepo.SaveSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("saving stats snapshot: %w", err)
	}

	if o.cache != nil {
		if err := o.cache.SetSeasonSnapshot(ctx, o.config.Season, snap); err != nil {
			log.Printf("⚠️  Failed to cache season snapshot: %v", err)
		}
	}

	if o.publisher != nil {
		event := publisher.StatsRefreshedEvent{
			Season: o.config.Season,
			Teams:  len(snap),
			Games:  len(games),
		}
		if err := o.publisher.PublishStatsRefreshed(ctx, event); err != nil {
			log.Printf("⚠️  Failed to publish stats refresh: %v", err)
		}
	}

	if o.OnRefresh != nil {
		o.OnRefresh(o.config.Season, snap)
	}

	o.recorder.StatsRefresh(time.Since(start))
	log.Printf("✓ Stats refreshed: %d teams from %d games", len(snap), len(games))
	return nil
}

// solveOptions scales the solver's knobs with how far into the season
// the table is. Early on the correction is damped and blended toward
// preseason priors; by mid season the priors have washed out.
func solveOptions(numGames int) ratings.SolveOptions {
	n := float64(numGames)
	return ratings.SolveOptions{
		ConvParam:      0.9 + 0.1*math.Min(1000, n)/1000,
		PreseasonBlend: math.Pow(math.Max(0, 1-n/5400), 2.6),
	}
}
