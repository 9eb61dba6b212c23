package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the pipeline's instruments behind a dedicated
// registry so tests can build isolated recorders.
type Recorder struct {
	registry *prometheus.Registry

	gamesIngested     *prometheus.CounterVec
	duplicatesSkipped *prometheus.CounterVec
	parseErrors       *prometheus.CounterVec
	fetchAttempts     *prometheus.CounterVec
	fetchErrors       *prometheus.CounterVec
	refreshDuration   prometheus.Histogram
	requestDuration   *prometheus.HistogramVec
}

// NewRecorder builds a Recorder with all instruments registered.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()

	r := &Recorder{
		registry: reg,
		gamesIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hardwood_games_ingested_total",
			Help: "Unique games accepted by the extractor.",
		}, []string{"season"}),
		duplicatesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hardwood_duplicates_skipped_total",
			Help: "Gamelog rows rejected as duplicates of an admitted game.",
		}, []string{"season"}),
		parseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hardwood_parse_errors_total",
			Help: "Gamelog rows that failed extraction.",
		}, []string{"season"}),
		fetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hardwood_fetch_attempts_total",
			Help: "Page fetches against the stats site.",
		}, []string{"kind"}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hardwood_fetch_errors_total",
			Help: "Page fetches that failed after the headless fallback.",
		}, []string{"kind"}),
		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hardwood_stats_refresh_duration_seconds",
			Help:    "Wall time of a full season stats refresh.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hardwood_http_request_duration_seconds",
			Help:    "REST request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}

	reg.MustRegister(
		r.gamesIngested,
		r.duplicatesSkipped,
		r.parseErrors,
		r.fetchAttempts,
		r.fetchErrors,
		r.refreshDuration,
		r.requestDuration,
	)

	return r
}

// Handler exposes the recorder's registry for a /metrics endpoint.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) GamesIngested(season, n int) {
	r.gamesIngested.WithLabelValues(strconv.Itoa(season)).Add(float64(n))
}

func (r *Recorder) DuplicatesSkipped(season, n int) {
	r.duplicatesSkipped.WithLabelValues(strconv.Itoa(season)).Add(float64(n))
}

func (r *Recorder) ParseError(season int) {
	r.parseErrors.WithLabelValues(strconv.Itoa(season)).Inc()
}

func (r *Recorder) FetchAttempt(kind string) {
	r.fetchAttempts.WithLabelValues(kind).Inc()
}

func (r *Recorder) FetchError(kind string) {
	r.fetchErrors.WithLabelValues(kind).Inc()
}

func (r *Recorder) StatsRefresh(d time.Duration) {
	r.refreshDuration.Observe(d.Seconds())
}

func (r *Recorder) HTTPRequest(method, path, status string, d time.Duration) {
	r.requestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}
