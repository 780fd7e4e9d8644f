// Package metrics exposes Prometheus instrumentation for the client engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SubmittedTransactions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fraudwatch_transactions_submitted_total",
		Help: "Transactions submitted for scoring",
	})

	FailedSubmissions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fraudwatch_transactions_failed_total",
		Help: "Submissions rolled back after an API or transport failure",
	})

	FraudAlerts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fraudwatch_fraud_alerts_total",
		Help: "Fraud or high-risk alerts raised",
	})

	LedgerRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fraudwatch_ledger_refreshes_total",
		Help: "Full ledger refreshes by outcome",
	}, []string{"outcome"})

	SubmissionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fraudwatch_submission_duration_seconds",
		Help:    "End-to-end submission latency including scoring",
		Buckets: prometheus.DefBuckets,
	})
)

// Handler returns the scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
