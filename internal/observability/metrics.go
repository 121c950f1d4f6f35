package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpDurationHistogram *prometheus.HistogramVec
	syncPhaseCounter      *prometheus.CounterVec
	pagesFetchedCounter   *prometheus.CounterVec
	rowsUpsertedCounter   *prometheus.CounterVec
	workerRunCounter      *prometheus.CounterVec
	orderCountDropCounter prometheus.Counter
)

// Init registers all Prometheus collectors.
func Init() {
	registerOnce.Do(func() {
		httpDurationHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"})

		syncPhaseCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sync_phase_total",
			Help: "Sync phase outcomes per tenant run",
		}, []string{"phase", "result"})

		pagesFetchedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sync_pages_fetched_total",
			Help: "Remote pages fetched during sync",
		}, []string{"entity"})

		rowsUpsertedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sync_rows_upserted_total",
			Help: "Rows written by the reconcilers",
		}, []string{"entity"})

		workerRunCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_runs_total",
			Help: "Background worker run outcomes",
		}, []string{"worker", "result"})

		orderCountDropCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sync_order_count_dropped_to_zero_total",
			Help: "Times a tenant's order count went from non-zero to zero across a sync run",
		})

		prometheus.MustRegister(
			httpDurationHistogram,
			syncPhaseCounter,
			pagesFetchedCounter,
			rowsUpsertedCounter,
			workerRunCounter,
			orderCountDropCounter,
		)
	})
}

func ObserveHTTP(method, path string, status int, duration time.Duration) {
	if httpDurationHistogram == nil {
		return
	}
	httpDurationHistogram.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

func IncrementSyncPhase(phase, result string) {
	if syncPhaseCounter == nil {
		return
	}
	syncPhaseCounter.WithLabelValues(phase, result).Inc()
}

func AddPagesFetched(entity string, n int) {
	if pagesFetchedCounter == nil {
		return
	}
	pagesFetchedCounter.WithLabelValues(entity).Add(float64(n))
}

func AddRowsUpserted(entity string, n int) {
	if rowsUpsertedCounter == nil {
		return
	}
	rowsUpsertedCounter.WithLabelValues(entity).Add(float64(n))
}

func IncrementWorkerRun(worker, result string) {
	if workerRunCounter == nil {
		return
	}
	workerRunCounter.WithLabelValues(worker, result).Inc()
}

func IncrementOrderCountDrop() {
	if orderCountDropCounter == nil {
		return
	}
	orderCountDropCounter.Inc()
}
