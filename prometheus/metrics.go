// Package prometheus exposes Prometheus collectors for the docqa pipeline
// and decorators that feed them.
package prometheus

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/docqa"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ docqa.JobObserver = (*Metrics)(nil)

// Metrics holds the collectors registered for one process.
type Metrics struct {
	jobsTotal          *prometheus.CounterVec
	jobsInProgress     prometheus.Gauge
	pagesTotal         *prometheus.CounterVec
	pageBytesTotal     *prometheus.CounterVec
	embedTextsTotal    prometheus.Counter
	embedDuration      *prometheus.HistogramVec
	completionDuration *prometheus.HistogramVec
	httpRequestsTotal  *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

// NewMetrics registers the docqa collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		jobsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docqa_jobs_total",
				Help: "Total number of job state transitions, labeled by queue and state.",
			},
			[]string{"queue", "state"},
		),
		jobsInProgress: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "docqa_jobs_in_progress",
				Help: "Number of jobs currently running.",
			},
		),
		pagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docqa_pages_total",
				Help: "Total number of pages read, labeled by site and status.",
			},
			[]string{"site", "status"},
		),
		pageBytesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docqa_page_bytes_total",
				Help: "Total bytes of extracted page content, labeled by site.",
			},
			[]string{"site"},
		),
		embedTextsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "docqa_embedded_texts_total",
				Help: "Total number of texts sent to the embedding model.",
			},
		),
		embedDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docqa_embed_duration_seconds",
				Help:    "Histogram of embedding model call latencies, labeled by status.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"status"},
		),
		completionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docqa_completion_duration_seconds",
				Help:    "Histogram of text completion latencies, labeled by status.",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"status"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		),
	}
}

// Handler returns an http.Handler exposing the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// ObserveJob counts a job state transition.
func (m *Metrics) ObserveJob(job *docqa.Job) {
	m.jobsTotal.WithLabelValues(job.Queue, string(job.State)).Inc()
	switch {
	case job.State == docqa.JobInProgress:
		m.jobsInProgress.Inc()
	case job.State.Terminal() && job.StartedAt != nil:
		m.jobsInProgress.Dec()
	}
}

// Middleware is a chi middleware that records HTTP request metrics.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		route := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		m.httpRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(ww.status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// SanitizeSite returns the lowercase hostname of rawURL, or "unknown".
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
