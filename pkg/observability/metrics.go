package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks total number of HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rspdash_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "code"},
	)

	// RequestDuration tracks request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rspdash_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// ActiveRequests tracks currently active requests
	ActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rspdash_http_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"route"},
	)

	// DatasetLoads counts dataset loads by result ("ok" or "error")
	DatasetLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rspdash_dataset_loads_total",
			Help: "Total number of dataset loads",
		},
		[]string{"result"},
	)

	// DatasetLoadDuration tracks how long a full load takes
	DatasetLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rspdash_dataset_load_duration_seconds",
			Help:    "Dataset load duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// DatasetRecords is the record count of the active dataset
	DatasetRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rspdash_dataset_records",
			Help: "Number of records in the active dataset",
		},
	)

	// DatasetLoadedAt is the unix time of the last successful load
	DatasetLoadedAt = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rspdash_dataset_loaded_timestamp_seconds",
			Help: "Unix time of the last successful dataset load",
		},
	)

	// ChartsBuilt counts chart payloads by year mode and whether they had data
	ChartsBuilt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rspdash_charts_built_total",
			Help: "Total number of chart payloads built",
		},
		[]string{"mode", "no_data"},
	)
)

// ObserveLoad records the outcome of one dataset load.
func ObserveLoad(start time.Time, records int, err error) {
	DatasetLoadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		DatasetLoads.WithLabelValues("error").Inc()
		return
	}
	DatasetLoads.WithLabelValues("ok").Inc()
	DatasetRecords.Set(float64(records))
	DatasetLoadedAt.Set(float64(time.Now().Unix()))
}

// ObserveChart records one built chart.
func ObserveChart(mode string, noData bool) {
	ChartsBuilt.WithLabelValues(mode, strconv.FormatBool(noData)).Inc()
}

// Metrics wraps next with request metrics labelled by route.
func Metrics(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Track active requests
		ActiveRequests.WithLabelValues(route).Inc()
		defer ActiveRequests.WithLabelValues(route).Dec()

		start := time.Now()
		rec := NewStatusRecorder(w)
		next.ServeHTTP(rec, r)

		RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		RequestsTotal.WithLabelValues(route, strconv.Itoa(rec.Status())).Inc()
	})
}

// StatusRecorder remembers the status code written through it.
type StatusRecorder struct {
	http.ResponseWriter
	status int
}

// NewStatusRecorder wraps w.
func NewStatusRecorder(w http.ResponseWriter) *StatusRecorder {
	if rec, ok := w.(*StatusRecorder); ok {
		return rec
	}
	return &StatusRecorder{ResponseWriter: w}
}

// WriteHeader implements http.ResponseWriter.
func (r *StatusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

// Write implements http.ResponseWriter.
func (r *StatusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// Status returns the written status, 200 if none was written.
func (r *StatusRecorder) Status() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *StatusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
