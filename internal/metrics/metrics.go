package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SweepsTotal counts completed sweeps by source and outcome
	SweepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "indexer_sweeps_total",
			Help: "Total number of sweeps",
		},
		[]string{"source", "status"},
	)

	// SweepDuration tracks full sweep processing time
	SweepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "indexer_sweep_duration_seconds",
			Help:    "Sweep processing duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// EventsProcessed counts applied events by kind
	EventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "indexer_events_processed_total",
			Help: "Total number of events applied",
		},
		[]string{"source", "event_type"},
	)

	// LastIndexedBlock tracks the committed high-water mark per source
	LastIndexedBlock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "indexer_last_indexed_block",
			Help: "Last fully indexed block number by source",
		},
		[]string{"source"},
	)

	// RPCErrorsTotal counts failed chain RPC calls
	RPCErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "indexer_rpc_errors_total",
			Help: "Total number of failed RPC calls",
		},
		[]string{"component"},
	)

	// MetadataFetches counts token metadata fetch attempts by outcome
	MetadataFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "indexer_metadata_fetches_total",
			Help: "Total number of token metadata fetch attempts",
		},
		[]string{"status"},
	)

	// CompetitionTxsSent counts competition transactions submitted by the scheduler
	CompetitionTxsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "indexer_competition_txs_sent_total",
			Help: "Total number of competition transactions sent",
		},
		[]string{"method", "status"},
	)
)
