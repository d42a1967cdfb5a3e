package observability

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type Metrics struct {
	reg *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	aggregateLatency   *prometheus.HistogramVec
	aggregateConflicts *prometheus.CounterVec
	aggregateRetries   *prometheus.CounterVec

	paymentReturns     *prometheus.CounterVec
	enrollmentsGranted *prometheus.CounterVec
	lessonCompletions  *prometheus.CounterVec
	certificatesIssued prometheus.Counter
	certificateLookups *prometheus.CounterVec

	pgStats *prometheus.GaugeVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	v := strings.TrimSpace(os.Getenv("METRICS_ENABLED"))
	if v == "" {
		return false
	}
	return strings.EqualFold(v, "true") || v == "1" || strings.EqualFold(v, "yes")
}

func Current() *Metrics {
	return instance
}

// Init builds the process-wide metrics set once.
func Init(log *logger.Logger) *Metrics {
	initOnce.Do(func() {
		instance = New(prometheus.NewRegistry())
		if log != nil {
			log.Info("metrics initialized")
		}
	})
	return instance
}

// New registers every collector on reg. Tests pass a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "coursemarket_api_requests_total",
			Help: "HTTP requests by method, route template, access tier and status.",
		}, []string{"method", "route", "access", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "coursemarket_api_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "access", "status"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "coursemarket_api_requests_in_flight",
			Help: "HTTP requests currently being served.",
		}),
		aggregateLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "coursemarket_aggregate_operation_duration_seconds",
			Help:    "Aggregate write latency by operation and outcome.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation", "status"}),
		aggregateConflicts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "coursemarket_aggregate_conflicts_total",
			Help: "Aggregate writes that hit a concurrency conflict.",
		}, []string{"operation"}),
		aggregateRetries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "coursemarket_aggregate_retries_total",
			Help: "Aggregate writes retried after a conflict.",
		}, []string{"operation"}),
		paymentReturns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "coursemarket_payment_returns_total",
			Help: "Gateway return callbacks by outcome.",
		}, []string{"outcome"}),
		enrollmentsGranted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "coursemarket_enrollments_granted_total",
			Help: "Enrollments created by source.",
		}, []string{"source"}),
		lessonCompletions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "coursemarket_lesson_completions_total",
			Help: "Lesson completion requests by effect.",
		}, []string{"effect"}),
		certificatesIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "coursemarket_certificates_issued_total",
			Help: "Certificates issued.",
		}),
		certificateLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "coursemarket_certificate_lookups_total",
			Help: "Public certificate lookups by cache result.",
		}, []string{"result"}),
		pgStats: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "coursemarket_postgres_pool",
			Help: "database/sql pool statistics.",
		}, []string{"stat"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// StartServer exposes /metrics on a dedicated listener until ctx is done.
func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil || strings.TrimSpace(addr) == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) && log != nil {
			log.Warn("metrics server stopped", "error", err)
		}
	}()
}

func (m *Metrics) ObserveAPI(method, route, access, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.WithLabelValues(method, route, access, status).Inc()
	m.apiLatency.WithLabelValues(method, route, access, status).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveAggregateOperation(operation, status string, dur time.Duration) {
	if m == nil || operation == "" {
		return
	}
	if status == "" {
		status = "unknown"
	}
	m.aggregateLatency.WithLabelValues(operation, status).Observe(dur.Seconds())
}

func (m *Metrics) IncAggregateConflict(operation string) {
	if m == nil || operation == "" {
		return
	}
	m.aggregateConflicts.WithLabelValues(operation).Inc()
}

func (m *Metrics) IncAggregateRetry(operation string) {
	if m == nil || operation == "" {
		return
	}
	m.aggregateRetries.WithLabelValues(operation).Inc()
}

// IncPaymentReturn counts a processed gateway return. outcome is one of
// success, gateway_failure, replay, invalid_signature or malformed.
func (m *Metrics) IncPaymentReturn(outcome string) {
	if m == nil {
		return
	}
	m.paymentReturns.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncEnrollmentGranted(source string) {
	if m == nil {
		return
	}
	m.enrollmentsGranted.WithLabelValues(source).Inc()
}

func (m *Metrics) IncLessonCompletion(effect string) {
	if m == nil {
		return
	}
	m.lessonCompletions.WithLabelValues(effect).Inc()
}

func (m *Metrics) IncCertificateIssued() {
	if m == nil {
		return
	}
	m.certificatesIssued.Inc()
}

func (m *Metrics) IncCertificateLookup(result string) {
	if m == nil {
		return
	}
	m.certificateLookups.WithLabelValues(result).Inc()
}

// StartPostgresCollector samples connection pool stats until ctx is done.
func (m *Metrics) StartPostgresCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		if log != nil {
			log.Warn("pool collector disabled", "error", err)
		}
		return
	}
	go func() {
		ticker := time.NewTicker(scrapeInterval())
		defer ticker.Stop()
		for {
			st := sqlDB.Stats()
			m.pgStats.WithLabelValues("open").Set(float64(st.OpenConnections))
			m.pgStats.WithLabelValues("in_use").Set(float64(st.InUse))
			m.pgStats.WithLabelValues("idle").Set(float64(st.Idle))
			m.pgStats.WithLabelValues("wait_count").Set(float64(st.WaitCount))
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

func scrapeInterval() time.Duration {
	v := strings.TrimSpace(os.Getenv("METRICS_SCRAPE_INTERVAL"))
	if v == "" {
		return 15 * time.Second
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	return 15 * time.Second
}
