package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors exported on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec

	ticketsCreated    *prometheus.CounterVec
	approvalDecisions *prometheus.CounterVec
	transitions       *prometheus.CounterVec
	schemaLoads       *prometheus.CounterVec
	validationErrors  *prometheus.CounterVec
	classifierHits    *prometheus.CounterVec
	overdueTickets    prometheus.Gauge
}

// NewMetrics registers all collectors on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of HTTP error responses by error code",
		}, []string{"method", "route", "code"}),
		ticketsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tickets_created_total",
			Help: "Tickets created by initial status",
		}, []string{"status"}),
		approvalDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ticket_approval_decisions_total",
			Help: "Approval decisions by action",
		}, []string{"action"}),
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ticket_status_transitions_total",
			Help: "Status transitions by source and target status",
		}, []string{"from", "to"}),
		schemaLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "template_schema_loads_total",
			Help: "Template field schema loads by result",
		}, []string{"result"}),
		validationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ticket_validation_failures_total",
			Help: "Rejected ticket submissions by failing field",
		}, []string{"field"}),
		classifierHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "classifier_rule_hits_total",
			Help: "Classification suggestions by matched rule",
		}, []string{"rule"}),
		overdueTickets: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tickets_overdue",
			Help: "Non-closed tickets past their SLA due time at the last sweep",
		}),
	}
}

// Registry exposes the registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(method, route, code).Inc()
}

func (m *Metrics) TicketCreated(status string) {
	if m == nil {
		return
	}
	m.ticketsCreated.WithLabelValues(status).Inc()
}

func (m *Metrics) ApprovalDecided(action string) {
	if m == nil {
		return
	}
	m.approvalDecisions.WithLabelValues(action).Inc()
}

func (m *Metrics) StatusChanged(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

// SchemaLoaded records a field schema load; result is "ok" or "error".
func (m *Metrics) SchemaLoaded(result string) {
	if m == nil {
		return
	}
	m.schemaLoads.WithLabelValues(result).Inc()
}

func (m *Metrics) ValidationFailed(field string) {
	if m == nil {
		return
	}
	m.validationErrors.WithLabelValues(field).Inc()
}

// ClassifierHit records the rule that produced a suggestion; rule is "none" on a miss.
func (m *Metrics) ClassifierHit(rule string) {
	if m == nil {
		return
	}
	m.classifierHits.WithLabelValues(rule).Inc()
}

// SetOverdueTickets publishes the latest overdue sweep result.
func (m *Metrics) SetOverdueTickets(n int) {
	if m == nil {
		return
	}
	m.overdueTickets.Set(float64(n))
}
