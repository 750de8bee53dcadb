package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "streetlight_map_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	fetchTotal     *prometheus.CounterVec
	fetchLatency   *prometheus.HistogramVec
	fetchRetries   *prometheus.CounterVec
	staleResponses prometheus.Counter
	rejectedRecs   prometheus.Counter
	activeViews    prometheus.Gauge
)

// Init registers the map view metrics with the default registry. Safe to
// call more than once.
func Init() {
	registerOnce.Do(func() {
		fetchTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "source_fetch_total",
				Help: "Streetlight source fetches by operation and result",
			},
			[]string{"op", "result"},
		)
		fetchLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "source_fetch_latency_seconds",
				Help:    "Streetlight source fetch latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		)
		fetchRetries = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "source_fetch_retries_total",
				Help: "Automatic fetch retries by operation",
			},
			[]string{"op"},
		)
		staleResponses = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "stale_bounds_responses_total",
				Help: "Bounds responses discarded because a newer request superseded them",
			},
		)
		rejectedRecs = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "rejected_records_total",
				Help: "Streetlight records that could not be turned into markers",
			},
		)
		activeViews = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "active_views",
				Help: "Open map view sessions",
			},
		)

		prometheus.MustRegister(
			fetchTotal,
			fetchLatency,
			fetchRetries,
			staleResponses,
			rejectedRecs,
			activeViews,
		)
	})
}

func ObserveFetch(op string, started time.Time, err error) {
	if fetchTotal == nil {
		return
	}
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	fetchTotal.WithLabelValues(op, result).Inc()
	fetchLatency.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

func IncFetchRetry(op string) {
	if fetchRetries == nil {
		return
	}
	fetchRetries.WithLabelValues(op).Inc()
}

func IncStaleResponse() {
	if staleResponses == nil {
		return
	}
	staleResponses.Inc()
}

func AddRejectedRecords(n int) {
	if rejectedRecs == nil || n <= 0 {
		return
	}
	rejectedRecs.Add(float64(n))
}

func SetActiveViews(n int) {
	if activeViews == nil {
		return
	}
	activeViews.Set(float64(n))
}
