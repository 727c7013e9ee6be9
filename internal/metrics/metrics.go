package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// UsersTotal is the number of registered users, refreshed by the stats scheduler.
	UsersTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "users_total",
			Help: "Number of registered users",
		},
	)

	// TournamentsTotal is the number of tournaments, refreshed by the stats scheduler.
	TournamentsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tournaments_total",
			Help: "Number of tournaments",
		},
	)

	// TournamentOpsTotal counts tournament operations by kind (create, join, join_rejected, leave).
	TournamentOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tournament_operations_total",
			Help: "Total number of tournament operations by kind",
		},
		[]string{"op"},
	)
)

var (
	uuidPathSegment = regexp.MustCompile(`/[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}(/|$)`)
	initOnce        sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, UsersTotal, TournamentsTotal, TournamentOpsTotal)
	})
}

// NormalizePath reduces cardinality by replacing UUID path segments with {id}.
// E.g. /api/tournaments/9f6e.../join -> /api/tournaments/{id}/join.
func NormalizePath(path string) string {
	return uuidPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// IncTournamentOps increments the tournament operation counter for op.
func IncTournamentOps(op string) {
	TournamentOpsTotal.WithLabelValues(op).Inc()
}

// SetUsersTotal updates the registered users gauge.
func SetUsersTotal(n int64) {
	UsersTotal.Set(float64(n))
}

// SetTournamentsTotal updates the tournaments gauge.
func SetTournamentsTotal(n int64) {
	TournamentsTotal.Set(float64(n))
}
