package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Ledger calls by operation and outcome code",
		},
		[]string{"op", "outcome"},
	)
	GamesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_games_created_total",
			Help: "Games created since start",
		},
	)
	DecryptionPending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_decryption_pending",
			Help: "1 while a decryption request is outstanding",
		},
	)
	RevealLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ledger_reveal_latency_seconds",
			Help:    "Time from reveal request to oracle callback",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		},
	)
)

func init() {
	prometheus.MustRegister(Operations, GamesCreated, DecryptionPending, RevealLatency)
}

func observe(op string, err error) {
	Operations.WithLabelValues(op, Code(err)).Inc()
}
