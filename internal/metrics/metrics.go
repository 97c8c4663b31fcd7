package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "invoicedesk_"

	ResultSuccess = "success"
	ResultError   = "error"

	CacheHit   = "hit"
	CacheStale = "stale"
	CacheMiss  = "miss"
)

var (
	registerOnce sync.Once

	statsQueryTotal   *prometheus.CounterVec
	statsQueryLatency *prometheus.HistogramVec
	statsCacheTotal   *prometheus.CounterVec
	skippedRecords    *prometheus.CounterVec

	documentsTotal *prometheus.CounterVec

	reportExportTotal *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
)

// Init registers the collectors with the default registry. Calls after the
// first are no-ops; observations before Init are dropped.
func Init() {
	registerOnce.Do(func() {
		statsQueryTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "stats_aggregations_total",
				Help: "Total quarterly stats aggregations by result",
			},
			[]string{"result"},
		)
		statsQueryLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "stats_aggregation_latency_seconds",
				Help:    "Quarterly stats aggregation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		statsCacheTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "stats_cache_lookups_total",
				Help: "Stats cache lookups by outcome",
			},
			[]string{"outcome"},
		)
		skippedRecords = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "stats_anomalous_records_total",
				Help: "Records skipped or coerced during aggregation by collection and reason",
			},
			[]string{"collection", "reason"},
		)
		documentsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "documents_total",
				Help: "Documents created or deleted by kind",
			},
			[]string{"kind", "op"},
		)
		reportExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_exports_total",
				Help: "Quarterly report exports by format",
			},
			[]string{"format"},
		)
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"route", "status"},
		)

		prometheus.MustRegister(
			statsQueryTotal,
			statsQueryLatency,
			statsCacheTotal,
			skippedRecords,
			documentsTotal,
			reportExportTotal,
			httpRequests,
		)
	})
}

// ObserveAggregation records one stats aggregation and its duration.
func ObserveAggregation(result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if statsQueryTotal != nil {
		statsQueryTotal.WithLabelValues(result).Inc()
	}
	if statsQueryLatency != nil {
		statsQueryLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

func IncStatsCache(outcome string) {
	if statsCacheTotal != nil {
		statsCacheTotal.WithLabelValues(outcome).Inc()
	}
}

// AddAnomalousRecords counts records excluded or coerced while aggregating.
func AddAnomalousRecords(collection, reason string, count int) {
	if count <= 0 || skippedRecords == nil {
		return
	}
	skippedRecords.WithLabelValues(collection, reason).Add(float64(count))
}

func IncDocument(kind, op string) {
	if documentsTotal != nil {
		documentsTotal.WithLabelValues(kind, op).Inc()
	}
}

func IncReportExport(format string) {
	if reportExportTotal != nil {
		reportExportTotal.WithLabelValues(format).Inc()
	}
}

func IncHTTPRequest(route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	if httpRequests != nil {
		httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	}
}
