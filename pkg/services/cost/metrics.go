package cost

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cost_atlas"

// Fetch outcomes
const (
	OutcomeOK          = "ok"
	OutcomeUnavailable = "unavailable"
	OutcomeInvalidData = "invalid_data"
)

// Metrics holds the collectors of the report pipeline. A nil *Metrics records nothing.
type Metrics struct {
	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	fetchRetries  *prometheus.CounterVec
	rowsSkipped   *prometheus.CounterVec
	reports       *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		fetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_fetches_total",
			Help:      "Cost source fetches by outcome.",
		}, []string{"source", "outcome"}),
		fetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_fetch_duration_seconds",
			Help:      "Duration of cost source fetches including retries.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"source"}),
		fetchRetries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_fetch_retries_total",
			Help:      "Retried cost source fetch attempts.",
		}, []string{"source"}),
		rowsSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_skipped_total",
			Help:      "Raw rows dropped for a missing amount.",
		}, []string{"source"}),
		reports: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Assembled reports by completeness.",
		}, []string{"status"}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_cache_lookups_total",
			Help:      "Report cache lookups by result.",
		}, []string{"result"}),
	}
}

func (m *Metrics) observeFetch(source, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(source, outcome).Inc()
	m.fetchDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

func (m *Metrics) observeRetry(source string) {
	if m == nil {
		return
	}
	m.fetchRetries.WithLabelValues(source).Inc()
}

func (m *Metrics) observeSkipped(source string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.rowsSkipped.WithLabelValues(source).Add(float64(n))
}

func (m *Metrics) observeReport(complete bool) {
	if m == nil {
		return
	}
	status := "complete"
	if !complete {
		status = "partial"
	}
	m.reports.WithLabelValues(status).Inc()
}

func (m *Metrics) observeCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}
