package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mtax/declaration-engine/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the prometheus collectors of the mtax server.
type Metrics struct {
	calculations        *prometheus.CounterVec
	calculationDuration *prometheus.HistogramVec
	declarationsSaved   *prometheus.CounterVec
	eventsPublished     *prometheus.CounterVec
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. A nil reg gets a fresh registry so tests
// and multiple servers in one process do not collide.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mtax_declaration_calculations_total",
			Help: "Declaration calculations by expense method and outcome.",
		}, []string{"method", "outcome"}),
		calculationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mtax_declaration_calculation_duration_seconds",
			Help:    "Time spent reading the ledger and computing a declaration.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method"}),
		declarationsSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mtax_declarations_saved_total",
			Help: "Declarations appended to history by status.",
		}, []string{"status"}),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mtax_events_published_total",
			Help: "Declaration events published to the broker by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mtax_http_requests_total",
			Help: "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mtax_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.calculations,
		m.calculationDuration,
		m.declarationsSaved,
		m.eventsPublished,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// ObserveCalculation implements calculation.Recorder.
func (m *Metrics) ObserveCalculation(method domain.ExpenseMethod, outcome string, elapsed time.Duration) {
	label := string(method)
	if !method.Valid() {
		label = "invalid"
	}
	m.calculations.WithLabelValues(label, outcome).Inc()
	m.calculationDuration.WithLabelValues(label).Observe(elapsed.Seconds())
}

// DeclarationSaved counts a declaration appended to history.
func (m *Metrics) DeclarationSaved(status domain.DeclarationStatus) {
	m.declarationsSaved.WithLabelValues(string(status)).Inc()
}

// EventPublished counts a broker publish attempt.
func (m *Metrics) EventPublished(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.eventsPublished.WithLabelValues(result).Inc()
}

// GinMiddleware records request counts and latency per matched route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		m.httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
