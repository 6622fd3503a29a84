// Package metrics exposes processing counters over Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Set holds the counters maintained by the aggregation pipeline.
type Set struct {
	BatchesProcessed prometheus.Counter
	EventsProcessed  *prometheus.CounterVec
	EventsSkipped    *prometheus.CounterVec
	DecodeFailures   prometheus.Counter
	SweepTruncations prometheus.Counter
	ChainNotFound    prometheus.Counter
}

// New registers the counter set on the given registerer.
func New(reg prometheus.Registerer) *Set {
	factory := promauto.With(reg)
	return &Set{
		BatchesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "dataset_batches_processed_total",
			Help: "Batches fully decoded and dispatched.",
		}),
		EventsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dataset_events_processed_total",
			Help: "Events handled, by event type.",
		}, []string{"type"}),
		EventsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dataset_events_skipped_total",
			Help: "Events skipped without mutation, by event type.",
		}, []string{"type"}),
		DecodeFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "dataset_batch_decode_failures_total",
			Help: "Batches aborted by a decode error.",
		}),
		SweepTruncations: factory.NewCounter(prometheus.CounterOpts{
			Name: "dataset_tick_sweep_truncations_total",
			Help: "Tick-crossing sweeps abandoned at the iteration cap.",
		}),
		ChainNotFound: factory.NewCounter(prometheus.CounterOpts{
			Name: "dataset_chain_reads_not_found_total",
			Help: "Contract reads answered by a revert.",
		}),
	}
}

// Serve exposes /metrics on addr until the listener fails.
func Serve(addr string, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("metrics listener starting", zap.String("addr", addr))
	return server.ListenAndServe()
}
