package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fortuna/hardwood/internal/sportsref"
	"github.com/fortuna/hardwood/internal/store"
)

func gamelogTR(id int, date, opponent, loc, result string, pts, oppPts int) string {
	return fmt.Sprintf(`
<tr id="sgl-basic.%d">
  <td data-stat="date_game"><a href="/x">%s</a></td>
  <td data-stat="opp_id"><a href="/cbb/schools/%s/2020.html">X</a></td>
  <td data-stat="game_location">%s</td>
  <td data-stat="game_result">%s</td>
  <td data-stat="pts">%d</td><td data-stat="opp_pts">%d</td>
  <td data-stat="fg">25</td><td data-stat="fga">55</td>
  <td data-stat="trb">30</td><td data-stat="orb">10</td>
  <td data-stat="opp_fg">24</td><td data-stat="opp_fga">60</td>
  <td data-stat="opp_trb">28</td><td data-stat="opp_orb">12</td>
</tr>`, id, date, opponent, loc, result, pts, oppPts)
}

func gamelogTable(rows ...string) string {
	return `<table id="sgl-basic"><tbody>` + strings.Join(rows, "\n") + `</tbody></table>`
}

func gamelogPage(opponent, loc, result string, pts, oppPts int) string {
	return gamelogTable(gamelogTR(1, "2020-01-15", opponent, loc, result, pts, oppPts))
}

const schedulePage = `
<table id="schedule"><tbody>
<tr>
  <td data-stat="date_game" csk="2020-01-15">Wed, Jan 15, 2020</td>
  <td data-stat="game_type">REG</td>
</tr>
</tbody></table>`

const teamListPage = `
<table id="basic_school_stats"><tbody>
<tr><td data-stat="school_name"><a href="/cbb/schools/purdue/2020.html">Purdue</a></td></tr>
<tr><td data-stat="school_name"><a href="/cbb/schools/indiana/2020.html">Indiana</a></td></tr>
</tbody></table>`

// testSite serves the handful of pages an ingest pass requests.
func testSite(t *testing.T, pages map[string]string) *sportsref.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	client := sportsref.NewClient(srv.URL)
	client.SetRequestInterval(time.Millisecond)
	t.Cleanup(client.Close)
	return client
}

func TestIngestSeasonDeduplicatesAcrossTeams(t *testing.T) {
	// Both teams report the same game, each from their own side.
	client := testSite(t, map[string]string{
		"/schools/purdue/2020-gamelogs.html":  gamelogPage("indiana", "", "W", 70, 65),
		"/schools/purdue/2020-schedule.html":  schedulePage,
		"/schools/indiana/2020-gamelogs.html": gamelogPage("purdue", "@", "L", 65, 70),
		"/schools/indiana/2020-schedule.html": schedulePage,
	})

	si, err := NewSeasonIngester(Config{Client: client, Workers: 2})
	if err != nil {
		t.Fatalf("new ingester: %v", err)
	}

	result, err := si.IngestSeason(context.Background(), []string{"purdue", "indiana"}, nil,
		sportsref.ExtractOptions{Season: 2020})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if len(result.FailedTeams) != 0 {
		t.Fatalf("failed teams: %v", result.FailedTeams)
	}
	if len(result.Fresh) != 1 {
		t.Fatalf("got %d fresh games; want 1 (mirror row deduplicated)", len(result.Fresh))
	}
	g := result.Fresh[0]
	if g.WTeamID != "purdue" || g.LTeamID != "indiana" || g.WLoc != store.LocHome {
		t.Errorf("game = %+v; want purdue over indiana at home", g)
	}
	if len(result.Merged) != 1 {
		t.Errorf("merged table has %d games; want 1", len(result.Merged))
	}
	if result.Duplicates != 1 {
		t.Errorf("duplicates = %d; want 1 for the mirror row", result.Duplicates)
	}
}

func TestIngestSeasonSkipsKnownGames(t *testing.T) {
	client := testSite(t, map[string]string{
		"/schools/purdue/2020-gamelogs.html": gamelogPage("indiana", "", "W", 70, 65),
		"/schools/purdue/2020-schedule.html": schedulePage,
	})

	si, err := NewSeasonIngester(Config{Client: client})
	if err != nil {
		t.Fatalf("new ingester: %v", err)
	}

	d, _ := time.Parse(store.DateLayout, "2020-01-15")
	prior := []store.GameRecord{{
		Season: 2020, Date: d, Type: store.TypeRegular,
		WTeamID: "purdue", WScore: 70, LTeamID: "indiana", LScore: 65,
		WLoc: store.LocHome,
	}}

	result, err := si.IngestSeason(context.Background(), []string{"purdue"}, prior,
		sportsref.ExtractOptions{Season: 2020})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if len(result.Fresh) != 0 {
		t.Errorf("got %d fresh games; want 0 (already in prior table)", len(result.Fresh))
	}
	if len(result.Merged) != 1 {
		t.Errorf("merged table has %d games; want 1", len(result.Merged))
	}
}

func TestIngestSeasonRecordsFailedTeams(t *testing.T) {
	client := testSite(t, map[string]string{
		"/schools/purdue/2020-gamelogs.html": gamelogPage("indiana", "", "W", 70, 65),
		"/schools/purdue/2020-schedule.html": schedulePage,
		// no pages for gonzaga
	})

	si, err := NewSeasonIngester(Config{Client: client})
	if err != nil {
		t.Fatalf("new ingester: %v", err)
	}

	result, err := si.IngestSeason(context.Background(), []string{"purdue", "gonzaga"}, nil,
		sportsref.ExtractOptions{Season: 2020})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if len(result.Fresh) != 1 {
		t.Errorf("got %d fresh games; want 1 from the healthy team", len(result.Fresh))
	}
	if _, ok := result.FailedTeams["gonzaga"]; !ok {
		t.Errorf("gonzaga missing from failed teams: %v", result.FailedTeams)
	}
}

func TestIngestSeasonFailedTeamDoesNotShadowOpponents(t *testing.T) {
	// Purdue's page carries a clean row against Indiana followed by a
	// row with a location code the extractor rejects, so the whole team
	// aborts. The clean row's admission must not survive the abort, or
	// Indiana's mirror of the same game would be dropped as a duplicate
	// and the game lost entirely.
	purdue := gamelogTable(
		gamelogTR(1, "2020-01-15", "indiana", "", "W", 70, 65),
		gamelogTR(2, "2020-01-18", "rutgers", "X", "W", 80, 60),
	)
	client := testSite(t, map[string]string{
		"/schools/purdue/2020-gamelogs.html":  purdue,
		"/schools/purdue/2020-schedule.html":  schedulePage,
		"/schools/indiana/2020-gamelogs.html": gamelogPage("purdue", "@", "L", 65, 70),
		"/schools/indiana/2020-schedule.html": schedulePage,
	})

	si, err := NewSeasonIngester(Config{Client: client})
	if err != nil {
		t.Fatalf("new ingester: %v", err)
	}

	result, err := si.IngestSeason(context.Background(), []string{"purdue", "indiana"}, nil,
		sportsref.ExtractOptions{Season: 2020})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if _, ok := result.FailedTeams["purdue"]; !ok {
		t.Fatalf("purdue missing from failed teams: %v", result.FailedTeams)
	}
	if len(result.Fresh) != 1 {
		t.Fatalf("got %d fresh games; want 1 recovered from indiana's page", len(result.Fresh))
	}
	g := result.Fresh[0]
	if g.WTeamID != "purdue" || g.LTeamID != "indiana" || g.WLoc != store.LocHome {
		t.Errorf("game = %+v; want purdue over indiana at home", g)
	}
	if result.Duplicates != 0 {
		t.Errorf("duplicates = %d; want 0, the aborted admission must not count", result.Duplicates)
	}
}

func TestFetchTeams(t *testing.T) {
	client := testSite(t, map[string]string{
		"/seasons/2020-school-stats.html": teamListPage,
	})

	si, err := NewSeasonIngester(Config{Client: client})
	if err != nil {
		t.Fatalf("new ingester: %v", err)
	}

	teams, err := si.FetchTeams(context.Background(), 2020)
	if err != nil {
		t.Fatalf("fetch teams: %v", err)
	}
	if len(teams) != 2 || teams[0] != "purdue" {
		t.Errorf("teams = %v; want [purdue indiana]", teams)
	}
}
