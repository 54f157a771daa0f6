package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RDAPLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "namevet_rdap_lookups_total",
			Help: "RDAP domain lookups by suffix and outcome (available, taken, unknown)",
		},
		[]string{"suffix", "outcome"},
	)

	RDAPLookupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "namevet_rdap_lookup_duration_seconds",
			Help:    "Duration of RDAP domain lookups in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8},
		},
		[]string{"suffix"},
	)

	DirectorySearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "namevet_directory_searches_total",
			Help: "Business directory searches by outcome (ok, error, skipped)",
		},
		[]string{"outcome"},
	)

	CandidatesValidatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "namevet_candidates_validated_total",
			Help: "Validated candidate names by result bucket",
		},
		[]string{"bucket"},
	)

	EscalationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "namevet_escalations_total",
			Help: "Candidate batches regenerated because no name survived the primary check",
		},
	)
)

// RecordLookup counts one RDAP lookup.
func RecordLookup(suffix, outcome string, d time.Duration) {
	RDAPLookupsTotal.WithLabelValues(suffix, outcome).Inc()
	RDAPLookupDuration.WithLabelValues(suffix).Observe(d.Seconds())
}

// RecordSearch counts one directory search.
func RecordSearch(outcome string) {
	DirectorySearchesTotal.WithLabelValues(outcome).Inc()
}

// RecordCandidate counts one validated candidate.
func RecordCandidate(bucket string) {
	CandidatesValidatedTotal.WithLabelValues(bucket).Inc()
}

// Server encapsulates an HTTP server for Prometheus metrics.
type Server struct {
	srv *http.Server
}

// Start begins listening on port and exposes /metrics. Listen errors are
// logged, not returned, since metrics are never required for a run.
func Start(port int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "port", port, "err", err)
		}
	}()

	return &Server{srv: srv}
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s == nil || s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
