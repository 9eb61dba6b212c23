package rest

import (
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"github.com/fortuna/hardwood/internal/cache"
	"github.com/fortuna/hardwood/internal/features"
	"github.com/fortuna/hardwood/internal/ratings"
	"github.com/fortuna/hardwood/internal/season"
	"github.com/fortuna/hardwood/internal/store"
	"github.com/fortuna/hardwood/internal/store/repository"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	db        *store.Database
	cache     *cache.RedisCache
	solver    ratings.Solver
	gameRepo  *repository.GameRepository
	teamRepo  *repository.TeamRepository
	statsRepo *repository.StatsRepository
}

// NewHandler creates a new handler. The cache is optional; when nil
// every stats read goes to the database.
func NewHandler(db *store.Database, rc *cache.RedisCache, solver ratings.Solver) *Handler {
	if solver == nil {
		solver = ratings.Passthrough{}
	}
	return &Handler{
		db:        db,
		cache:     rc,
		solver:    solver,
		gameRepo:  repository.NewGameRepository(db),
		teamRepo:  repository.NewTeamRepository(db),
		statsRepo: repository.NewStatsRepository(db),
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.db.HealthCheck(); err != nil {
		respondError(w, http.StatusServiceUnavailable, "Database unreachable", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "hardwood",
	})
}

// GetSeasonStats returns every team's stat snapshot for a season,
// cache first.
func (h *Handler) GetSeasonStats(w http.ResponseWriter, r *http.Request) {
	seasonYear, ok := h.seasonVar(w, r)
	if !ok {
		return
	}

	if h.cache != nil {
		snap, err := h.cache.GetSeasonSnapshot(r.Context(), seasonYear)
		if err == nil {
			respondJSON(w, http.StatusOK, snap)
			return
		}
		if !errors.Is(err, redis.Nil) {
			respondError(w, http.StatusInternalServerError, "Cache read failed", err)
			return
		}
	}

	snap, err := h.statsRepo.GetSeason(r.Context(), seasonYear)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch season stats", err)
		return
	}
	if len(snap) == 0 {
		respondError(w, http.StatusNotFound, "No stats for season", nil)
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

// GetTeamStats returns one team's stat snapshot for a season.
func (h *Handler) GetTeamStats(w http.ResponseWriter, r *http.Request) {
	seasonYear, ok := h.seasonVar(w, r)
	if !ok {
		return
	}
	teamID := mux.Vars(r)["teamID"]

	row, err := h.statsRepo.GetTeam(r.Context(), seasonYear, teamID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Team stats not found", err)
		return
	}

	respondJSON(w, http.StatusOK, row)
}

// GetGamesByDate returns all games on a specific date
func (h *Handler) GetGamesByDate(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		dateStr = time.Now().Format(store.DateLayout)
	}

	date, err := time.Parse(store.DateLayout, dateStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	games, err := h.gameRepo.GetByDate(r.Context(), date)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch games", err)
		return
	}

	respondJSON(w, http.StatusOK, games)
}

// GetTeams returns the team list for a season.
func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	seasonYear, ok := h.seasonQuery(w, r)
	if !ok {
		return
	}

	teams, err := h.teamRepo.GetBySeason(r.Context(), seasonYear)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch teams", err)
		return
	}

	respondJSON(w, http.StatusOK, teams)
}

// GetTeamGames returns a team's games for a season, most recent first.
func (h *Handler) GetTeamGames(w http.ResponseWriter, r *http.Request) {
	seasonYear, ok := h.seasonQuery(w, r)
	if !ok {
		return
	}
	teamID := mux.Vars(r)["teamID"]

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 200 {
			limit = l
		}
	}

	games, err := h.gameRepo.GetByTeam(r.Context(), teamID, seasonYear, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch team games", err)
		return
	}

	respondJSON(w, http.StatusOK, games)
}

// GetTrainingFeatures compiles training feature rows for a season and
// streams them as CSV. Orientation defaults to alphabetical so
// repeated requests return identical rows; ?orient=random draws a
// fresh seed per request.
func (h *Handler) GetTrainingFeatures(w http.ResponseWriter, r *http.Request) {
	seasonYear, ok := h.seasonQuery(w, r)
	if !ok {
		return
	}

	orient := features.OrientAlphabetical
	var rng *rand.Rand
	switch features.Orientation(r.URL.Query().Get("orient")) {
	case "", features.OrientAlphabetical:
	case features.OrientRandom:
		orient = features.OrientRandom
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	default:
		respondError(w, http.StatusBadRequest, "Invalid orient (use alphabetical or random)", nil)
		return
	}

	games, err := h.gameRepo.GetBySeason(r.Context(), seasonYear)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch season games", err)
		return
	}
	if len(games) == 0 {
		respondError(w, http.StatusNotFound, "No games for season", nil)
		return
	}

	stats := season.Aggregate(games)
	if err := h.solver.ComputeEfficiencyRatings(stats, ratings.SolveOptions{}); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to compute ratings", err)
		return
	}

	rows, err := features.Compile(games, stats, orient, rng)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to compile features", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)
	if err := features.WriteCSV(w, rows); err != nil {
		log.Printf("[rest] streaming features: %v", err)
	}
}

func (h *Handler) seasonVar(w http.ResponseWriter, r *http.Request) (int, bool) {
	seasonYear, err := strconv.Atoi(mux.Vars(r)["season"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid season", err)
		return 0, false
	}
	return seasonYear, true
}

func (h *Handler) seasonQuery(w http.ResponseWriter, r *http.Request) (int, bool) {
	seasonStr := r.URL.Query().Get("season")
	if seasonStr == "" {
		respondError(w, http.StatusBadRequest, "Missing season parameter", nil)
		return 0, false
	}
	seasonYear, err := strconv.Atoi(seasonStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid season", err)
		return 0, false
	}
	return seasonYear, true
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
