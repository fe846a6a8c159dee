package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	httpErrorsTotal       *prometheus.CounterVec
	auditEventsTotal      *prometheus.CounterVec
	enrollmentRejections  *prometheus.CounterVec
	uploadRequestsTotal   *prometheus.CounterVec
	uploadRejectedTotal   *prometheus.CounterVec
	uploadLatencySeconds  prometheus.Histogram
	dashboardCacheLookups *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		auditEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_events_total",
			Help: "Audited mutating calls by action and outcome.",
		}, []string{"action", "outcome"})

		enrollmentRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enrollment_rejections_total",
			Help: "Enrollment attempts rejected by validation.",
		}, []string{"reason"})

		uploadRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "document_uploads_total",
			Help: "Stored document uploads by detected type.",
		}, []string{"type"})

		uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "document_uploads_rejected_total",
			Help: "Rejected document uploads by reason.",
		}, []string{"reason"})

		uploadLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "document_upload_latency_seconds",
			Help:    "Time spent validating and storing document uploads.",
			Buckets: prometheus.DefBuckets,
		})

		dashboardCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_cache_lookups_total",
			Help: "Dashboard summary cache lookups by result.",
		}, []string{"result"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			auditEventsTotal,
			enrollmentRejections,
			uploadRequestsTotal,
			uploadRejectedTotal,
			uploadLatencySeconds,
			dashboardCacheLookups,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// AuditEvents counts audit outcomes.
func AuditEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return auditEventsTotal
}

// EnrollmentRejections counts rejected enrollment attempts.
func EnrollmentRejections() *prometheus.CounterVec {
	RegisterMetrics()
	return enrollmentRejections
}

// UploadRequests counts stored uploads.
func UploadRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRequestsTotal
}

// UploadRejected counts rejected uploads.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejectedTotal
}

// UploadLatency observes upload durations.
func UploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return uploadLatencySeconds
}

// DashboardCacheLookups counts dashboard cache hits and misses.
func DashboardCacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return dashboardCacheLookups
}
