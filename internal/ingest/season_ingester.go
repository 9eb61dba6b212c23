package ingest

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/fortuna/hardwood/internal/gameid"
	"github.com/fortuna/hardwood/internal/gametable"
	"github.com/fortuna/hardwood/internal/metrics"
	"github.com/fortuna/hardwood/internal/publisher"
	"github.com/fortuna/hardwood/internal/sportsref"
	"github.com/fortuna/hardwood/internal/store"
	"github.com/fortuna/hardwood/internal/store/repository"
)

// DefaultWorkers bounds concurrent page fetches. The client rate
// limiter spaces requests out regardless, so this only controls how
// many fetches can be in flight waiting for their slot.
const DefaultWorkers = 4

// SeasonIngester pulls gamelog and schedule pages for every team in a
// season, extracts game records, and merges them with what is already
// known. The database, publisher, and recorder are optional so the CLI
// can run file-to-file without infrastructure.
type SeasonIngester struct {
	client    *sportsref.Client
	gameRepo  *repository.GameRepository
	teamRepo  *repository.TeamRepository
	publisher *publisher.RedisPublisher
	recorder  *metrics.Recorder
	workers   int
}

// Config wires a SeasonIngester.
type Config struct {
	Client    *sportsref.Client
	GameRepo  *repository.GameRepository
	TeamRepo  *repository.TeamRepository
	Publisher *publisher.RedisPublisher
	Recorder  *metrics.Recorder
	Workers   int
}

// NewSeasonIngester creates a season ingester.
func NewSeasonIngester(cfg Config) (*SeasonIngester, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("season ingester requires a sportsref client")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	recorder := cfg.Recorder
	if recorder == nil {
		recorder = metrics.NewRecorder()
	}
	return &SeasonIngester{
		client:    cfg.Client,
		gameRepo:  cfg.GameRepo,
		teamRepo:  cfg.TeamRepo,
		publisher: cfg.Publisher,
		recorder:  recorder,
		workers:   workers,
	}, nil
}

// FetchTeams pulls the season's team list and, when a team repository
// is configured, persists it.
func (si *SeasonIngester) FetchTeams(ctx context.Context, season int) ([]string, error) {
	si.recorder.FetchAttempt("teamlist")
	doc, err := si.client.FetchTeamList(ctx, season)
	if err != nil {
		si.recorder.FetchError("teamlist")
		return nil, fmt.Errorf("fetching team list for %d: %w", season, err)
	}

	teams := sportsref.ParseTeamList(doc)
	if len(teams) == 0 {
		return nil, fmt.Errorf("team list for %d parsed empty", season)
	}

	if si.teamRepo != nil {
		if err := si.teamRepo.UpsertSeason(ctx, season, teams); err != nil {
			return nil, fmt.Errorf("storing team list for %d: %w", season, err)
		}
	}

	log.Printf("[ingest] Season %d: %d teams", season, len(teams))
	return teams, nil
}

// Result is the outcome of one season ingest pass.
type Result struct {
	// Fresh holds the games extracted this pass, after dedup against
	// both the prior table and each other.
	Fresh []store.GameRecord

	// Merged is the prior table plus Fresh, date sorted.
	Merged []store.GameRecord

	// Duplicates counts gamelog rows rejected by the index, mostly the
	// opponent-page mirror of an already admitted game.
	Duplicates int

	// FailedTeams maps team IDs to the error that aborted their
	// extraction. Failures do not stop the pass.
	FailedTeams map[string]error
}

// pages carries one team's fetched documents to the extraction stage.
type pages struct {
	team  string
	rows  []sportsref.GamelogRow
	types sportsref.ScheduleTypes
	err   error
}

// IngestSeason fetches every team's pages concurrently, then extracts
// sequentially against a shared duplicate index seeded from the prior
// table. Extraction order follows the input team order, so results are
// deterministic for a given prior table and team list.
func (si *SeasonIngester) IngestSeason(ctx context.Context, teams []string, prior []store.GameRecord, opts sportsref.ExtractOptions) (*Result, error) {
	fetched := make([]pages, len(teams))

	var wg sync.WaitGroup
	sem := make(chan struct{}, si.workers)
	for i, team := range teams {
		wg.Add(1)
		go func(i int, team string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			fetched[i] = si.fetchTeamPages(ctx, team, opts.Season)
		}(i, team)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	index := gameid.FromRecords(prior)
	result := &Result{FailedTeams: make(map[string]error)}

	for i := range fetched {
		p := &fetched[i]
		if p.err != nil {
			log.Printf("[ingest] %s: fetch failed: %v", p.team, p.err)
			result.FailedTeams[p.team] = p.err
			continue
		}

		// Admissions go to an overlay so an extraction that aborts
		// partway leaves no registrations behind; otherwise the
		// opponents' mirror rows would be dropped as duplicates and
		// the games lost for the whole pass.
		overlay := index.Overlay()
		games, skipped, err := sportsref.ExtractTeamGames(p.team, p.rows, p.types, opts, overlay)
		if err != nil {
			log.Printf("[ingest] %s: extraction failed: %v", p.team, err)
			si.recorder.ParseError(opts.Season)
			result.FailedTeams[p.team] = err
			continue
		}
		overlay.Commit()
		result.Duplicates += skipped
		result.Fresh = append(result.Fresh, games...)
	}

	si.recorder.GamesIngested(opts.Season, len(result.Fresh))
	si.recorder.DuplicatesSkipped(opts.Season, result.Duplicates)
	result.Merged = gametable.Merge(prior, result.Fresh)

	if si.gameRepo != nil && len(result.Fresh) > 0 {
		if err := si.gameRepo.InsertAll(ctx, result.Fresh); err != nil {
			return nil, fmt.Errorf("persisting season %d games: %w", opts.Season, err)
		}
	}

	if si.publisher != nil {
		event := publisher.GamesIngestedEvent{
			Season:   opts.Season,
			NewGames: len(result.Fresh),
			Teams:    len(teams),
		}
		if !opts.EndDate.IsZero() {
			event.Date = opts.EndDate.Format(store.DateLayout)
		}
		if err := si.publisher.PublishGamesIngested(ctx, event); err != nil {
			log.Printf("[ingest] publish failed: %v", err)
		}
	}

	log.Printf("[ingest] Season %d: %d new games, %d teams failed",
		opts.Season, len(result.Fresh), len(result.FailedTeams))

	return result, nil
}

func (si *SeasonIngester) fetchTeamPages(ctx context.Context, team string, season int) pages {
	p := pages{team: team}

	si.recorder.FetchAttempt("gamelog")
	gamelogDoc, err := si.client.FetchGamelog(ctx, team, season)
	if err != nil {
		si.recorder.FetchError("gamelog")
		p.err = fmt.Errorf("gamelog: %w", err)
		return p
	}
	p.rows = sportsref.ParseGamelog(gamelogDoc)

	si.recorder.FetchAttempt("schedule")
	scheduleDoc, err := si.client.FetchSchedule(ctx, team, season)
	if err != nil {
		si.recorder.FetchError("schedule")
		p.err = fmt.Errorf("schedule: %w", err)
		return p
	}
	p.types = sportsref.ParseSchedule(scheduleDoc)

	return p
}
