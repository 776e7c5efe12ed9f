// Package metrics exposes the Prometheus instruments the service records
// into. All instruments live in a private registry so tests can construct
// a Metrics value without colliding with the global default registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config controls metric naming.
type Config struct {
	Namespace   string
	ServiceName string
}

func DefaultConfig(serviceName string) Config {
	return Config{
		Namespace:   "readiness",
		ServiceName: serviceName,
	}
}

// Metrics bundles every instrument the service writes to. Fields are
// grouped by the subsystem that records them.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	kafkaPublishTotal    *prometheus.CounterVec
	kafkaPublishDuration *prometheus.HistogramVec

	mongoOperationsTotal   *prometheus.CounterVec
	mongoOperationDuration *prometheus.HistogramVec

	outboxPending         prometheus.Gauge
	outboxPublishTotal    *prometheus.CounterVec
	outboxPublishDuration *prometheus.HistogramVec
	outboxRetriesTotal    *prometheus.CounterVec

	readinessEvaluations *prometheus.CounterVec
	readinessScore       *prometheus.GaugeVec
	websocketSubscribers *prometheus.GaugeVec
	broadcastPushes      *prometheus.CounterVec
	expiryScansTotal     prometheus.Counter
	expiredMarkedTotal   prometheus.Counter
	assignmentsCreated   *prometheus.CounterVec
}

// New builds a Metrics value with its own registry. The registry also
// carries the standard Go runtime and process collectors.
func New(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(registry)
	ns := cfg.Namespace
	constLabels := prometheus.Labels{"service": cfg.ServiceName}

	m := &Metrics{registry: registry}

	m.httpRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace:   ns,
		Name:        "http_requests_total",
		Help:        "HTTP requests served, by method, route template and status.",
		ConstLabels: constLabels,
	}, []string{"method", "path", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   ns,
		Name:        "http_request_duration_seconds",
		Help:        "HTTP request latency.",
		ConstLabels: constLabels,
		Buckets:     []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path"})
	m.httpRequestsInFlight = factory.NewGauge(prometheus.GaugeOpts{
		Namespace:   ns,
		Name:        "http_requests_in_flight",
		Help:        "HTTP requests currently being handled.",
		ConstLabels: constLabels,
	})

	m.kafkaPublishTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace:   ns,
		Name:        "kafka_publish_total",
		Help:        "Kafka publish attempts, by topic, event type and result.",
		ConstLabels: constLabels,
	}, []string{"topic", "event_type", "result"})
	m.kafkaPublishDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   ns,
		Name:        "kafka_publish_duration_seconds",
		Help:        "Kafka publish latency.",
		ConstLabels: constLabels,
		Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"topic"})

	m.mongoOperationsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace:   ns,
		Name:        "mongodb_operations_total",
		Help:        "MongoDB operations, by collection, operation and result.",
		ConstLabels: constLabels,
	}, []string{"collection", "operation", "result"})
	m.mongoOperationDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   ns,
		Name:        "mongodb_operation_duration_seconds",
		Help:        "MongoDB operation latency.",
		ConstLabels: constLabels,
		Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"collection", "operation"})

	m.outboxPending = factory.NewGauge(prometheus.GaugeOpts{
		Namespace:   ns,
		Name:        "outbox_pending_events",
		Help:        "Events staged in the outbox awaiting relay to Kafka.",
		ConstLabels: constLabels,
	})
	m.outboxPublishTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace:   ns,
		Name:        "outbox_publish_total",
		Help:        "Outbox relay attempts, by event type and result.",
		ConstLabels: constLabels,
	}, []string{"event_type", "result"})
	m.outboxPublishDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   ns,
		Name:        "outbox_publish_duration_seconds",
		Help:        "Latency of a single outbox event delivery.",
		ConstLabels: constLabels,
		Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"event_type"})
	m.outboxRetriesTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace:   ns,
		Name:        "outbox_retries_total",
		Help:        "Outbox deliveries that failed and were scheduled for retry.",
		ConstLabels: constLabels,
	}, []string{"event_type"})

	m.readinessEvaluations = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace:   ns,
		Name:        "evaluations_total",
		Help:        "Readiness evaluations performed, by staffing outcome.",
		ConstLabels: constLabels,
	}, []string{"understaffed"})
	m.readinessScore = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   ns,
		Name:        "unit_score",
		Help:        "Last computed readiness score per unit.",
		ConstLabels: constLabels,
	}, []string{"unit_id"})
	m.websocketSubscribers = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   ns,
		Name:        "websocket_subscribers",
		Help:        "Live websocket subscribers per unit.",
		ConstLabels: constLabels,
	}, []string{"unit_id"})
	m.broadcastPushes = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace:   ns,
		Name:        "broadcast_pushes_total",
		Help:        "Report pushes to websocket subscribers, by result.",
		ConstLabels: constLabels,
	}, []string{"result"})
	m.expiryScansTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace:   ns,
		Name:        "certification_expiry_scans_total",
		Help:        "Certification expiry sweeps completed.",
		ConstLabels: constLabels,
	})
	m.expiredMarkedTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace:   ns,
		Name:        "certifications_expired_total",
		Help:        "Certifications marked expired by the sweep.",
		ConstLabels: constLabels,
	})
	m.assignmentsCreated = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace:   ns,
		Name:        "assignments_created_total",
		Help:        "Shift assignments created, by unit type.",
		ConstLabels: constLabels,
	}, []string{"unit_type"})

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *Metrics) IncrementHTTPRequestsInFlight() { m.httpRequestsInFlight.Inc() }
func (m *Metrics) DecrementHTTPRequestsInFlight() { m.httpRequestsInFlight.Dec() }

func (m *Metrics) RecordKafkaPublish(topic, eventType string, success bool, duration time.Duration) {
	m.kafkaPublishTotal.WithLabelValues(topic, eventType, resultLabel(success)).Inc()
	m.kafkaPublishDuration.WithLabelValues(topic).Observe(duration.Seconds())
}

func (m *Metrics) RecordMongoDBOperation(collection, operation string, success bool, duration time.Duration) {
	m.mongoOperationsTotal.WithLabelValues(collection, operation, resultLabel(success)).Inc()
	m.mongoOperationDuration.WithLabelValues(collection, operation).Observe(duration.Seconds())
}

func (m *Metrics) SetOutboxPending(count int) {
	m.outboxPending.Set(float64(count))
}

func (m *Metrics) RecordOutboxPublish(eventType string, success bool, duration time.Duration) {
	m.outboxPublishTotal.WithLabelValues(eventType, resultLabel(success)).Inc()
	m.outboxPublishDuration.WithLabelValues(eventType).Observe(duration.Seconds())
}

func (m *Metrics) RecordOutboxRetry(eventType string) {
	m.outboxRetriesTotal.WithLabelValues(eventType).Inc()
}

// RecordReadinessEvaluation counts the evaluation and keeps the most
// recent score visible per unit.
func (m *Metrics) RecordReadinessEvaluation(unitID string, score float64, understaffed bool) {
	m.readinessEvaluations.WithLabelValues(strconv.FormatBool(understaffed)).Inc()
	m.readinessScore.WithLabelValues(unitID).Set(score)
}

func (m *Metrics) SetWebsocketSubscribers(unitID string, count int) {
	m.websocketSubscribers.WithLabelValues(unitID).Set(float64(count))
}

func (m *Metrics) RecordBroadcastPush(success bool) {
	m.broadcastPushes.WithLabelValues(resultLabel(success)).Inc()
}

// RecordExpiryScan counts one completed sweep and the certifications it
// flipped to EXPIRED.
func (m *Metrics) RecordExpiryScan(marked int) {
	m.expiryScansTotal.Inc()
	m.expiredMarkedTotal.Add(float64(marked))
}

func (m *Metrics) RecordAssignmentCreated(unitType string) {
	m.assignmentsCreated.WithLabelValues(unitType).Inc()
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
