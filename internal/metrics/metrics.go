// Package metrics exposes Prometheus instrumentation for the ledger service,
// the HTTP surface and outbound messaging.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Command results.
const (
	ResultCommitted = "committed"
	ResultRejected  = "rejected"
	ResultFailed    = "failed"
)

// Outbound message statuses.
const (
	StatusSent  = "sent"
	StatusError = "error"
)

const (
	bucketStart1ms = 0.001
	bucketFactor2  = 2
	bucketCount15  = 15
)

// Metrics holds every collector the service records into. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	commandsTotal          *prometheus.CounterVec
	commandDuration        *prometheus.HistogramVec
	persistenceErrorsTotal *prometheus.CounterVec
	integrityIssuesTotal   *prometheus.CounterVec
	animalsGauge           *prometheus.GaugeVec
	expectingGauge         prometheus.Gauge
	overdueGauge           prometheus.Gauge
	httpRequestsTotal      *prometheus.CounterVec
	httpRequestDuration    *prometheus.HistogramVec
	outboundMessagesTotal  *prometheus.CounterVec
	reportsTotal           *prometheus.CounterVec

	collectors []prometheus.Collector
}

// New creates the collectors and registers them on registry.
func New(registry prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "herd_ledger_commands_total",
			Help: "Ledger commands by operation and result",
		},
		[]string{"op", "result"}, // result: committed, rejected, failed
	)
	m.commandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "herd_ledger_command_duration_seconds",
			Help:    "Time taken to apply and persist a command",
			Buckets: prometheus.ExponentialBuckets(bucketStart1ms, bucketFactor2, bucketCount15),
		},
		[]string{"op"},
	)
	m.persistenceErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "herd_ledger_persistence_errors_total",
			Help: "Failed loads and saves of the ledger state",
		},
		[]string{"operation"},
	)
	m.integrityIssuesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "herd_ledger_integrity_violations_total",
			Help: "Integrity violations found in loaded state",
		},
		[]string{"kind"},
	)
	m.animalsGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "herd_ledger_active_animals",
			Help: "Active animals by species",
		},
		[]string{"species"},
	)
	m.expectingGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "herd_ledger_open_breedings",
		Help: "Breeding records not yet delivered",
	})
	m.overdueGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "herd_ledger_overdue_breedings",
		Help: "Open breeding records past the end of their due window",
	})
	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "herd_ledger_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "code"},
	)
	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "herd_ledger_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.ExponentialBuckets(bucketStart1ms, bucketFactor2, bucketCount15),
		},
		[]string{"method", "route"},
	)
	m.outboundMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "herd_ledger_outbound_messages_total",
			Help: "WhatsApp messages sent by status",
		},
		[]string{"status"},
	)
	m.reportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "herd_ledger_reports_total",
			Help: "Daily herd reports generated by sink and status",
		},
		[]string{"sink", "status"},
	)

	m.collectors = []prometheus.Collector{
		m.commandsTotal,
		m.commandDuration,
		m.persistenceErrorsTotal,
		m.integrityIssuesTotal,
		m.animalsGauge,
		m.expectingGauge,
		m.overdueGauge,
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.outboundMessagesTotal,
		m.reportsTotal,
	}
}

// Describe implements the Collector interface
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordCommand counts one command and observes how long it took.
func (m *Metrics) RecordCommand(op, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.commandsTotal.WithLabelValues(op, result).Inc()
	m.commandDuration.WithLabelValues(op).Observe(d.Seconds())
}

// RecordPersistenceError counts a failed load or save.
func (m *Metrics) RecordPersistenceError(operation string) {
	if m == nil {
		return
	}
	m.persistenceErrorsTotal.WithLabelValues(operation).Inc()
}

// RecordIntegrityViolation counts one violation of the given kind.
func (m *Metrics) RecordIntegrityViolation(kind string) {
	if m == nil {
		return
	}
	m.integrityIssuesTotal.WithLabelValues(kind).Inc()
}

// SetHerd replaces the herd gauges. Species missing from bySpecies drop to zero.
func (m *Metrics) SetHerd(bySpecies map[string]int, expecting, overdue int) {
	if m == nil {
		return
	}
	m.animalsGauge.Reset()
	for species, n := range bySpecies {
		m.animalsGauge.WithLabelValues(species).Set(float64(n))
	}
	m.expectingGauge.Set(float64(expecting))
	m.overdueGauge.Set(float64(overdue))
}

// RecordHTTPRequest counts a served request.
func (m *Metrics) RecordHTTPRequest(method, route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordOutbound counts an outbound WhatsApp message.
func (m *Metrics) RecordOutbound(status string) {
	if m == nil {
		return
	}
	m.outboundMessagesTotal.WithLabelValues(status).Inc()
}

// RecordReport counts a report delivered to sink (mongodb, sheets, whatsapp).
func (m *Metrics) RecordReport(sink, status string) {
	if m == nil {
		return
	}
	m.reportsTotal.WithLabelValues(sink, status).Inc()
}
