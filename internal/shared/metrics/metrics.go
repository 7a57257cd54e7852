package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	documentsUploadedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "documents_uploaded_total",
			Help: "Total number of accepted document uploads",
		},
		[]string{"file_type"},
	)

	documentAnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "document_analyses_total",
			Help: "Total number of finished document analyses",
		},
		[]string{"classification", "status"},
	)

	documentAnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "document_analysis_duration_seconds",
			Help:    "Duration of document analysis from upload to terminal status",
			Buckets: prometheus.DefBuckets,
		},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"handler", "method", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler", "method"},
	)
)

var registerOnce sync.Once

// Register registers all Prometheus collectors. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			documentsUploadedTotal,
			documentAnalysesTotal,
			documentAnalysisDuration,
			httpRequestsTotal,
			httpRequestDuration,
		)
	})
}

// IncDocumentUploaded increments the accepted upload counter.
func IncDocumentUploaded(fileType string) {
	documentsUploadedTotal.WithLabelValues(fileType).Inc()
}

// IncAnalysisFinished increments the analyses counter for a terminal status.
func IncAnalysisFinished(classification, status string) {
	documentAnalysesTotal.WithLabelValues(classification, status).Inc()
}

// ObserveAnalysisDuration records the duration of one pipeline run.
func ObserveAnalysisDuration(d time.Duration) {
	if d < 0 {
		d = 0
	}
	documentAnalysisDuration.Observe(d.Seconds())
}

// HTTP records request counts and latencies per matched route.
func HTTP() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		handler := c.FullPath()
		if handler == "" {
			handler = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(handler, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(handler, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes metrics in Prometheus exposition format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
