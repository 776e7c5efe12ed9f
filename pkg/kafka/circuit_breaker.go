package kafka

import (
	"context"
	"log/slog"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/cloudevents"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/logging"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/metrics"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/resilience"
)

// CircuitBreakerProducer guards an InstrumentedProducer so a broker outage
// sheds publishes quickly instead of stacking up blocked writers.
type CircuitBreakerProducer struct {
	producer *InstrumentedProducer
	breaker  *resilience.CircuitBreaker
	logger   *logging.Logger
}

// NewCircuitBreakerProducer wraps producer with the default breaker policy,
// widened to 5 half-open probes so recovery is confirmed on real traffic.
func NewCircuitBreakerProducer(producer *InstrumentedProducer, logger *logging.Logger) *CircuitBreakerProducer {
	config := resilience.DefaultCircuitBreakerConfig("kafka-producer")
	config.MaxRequests = 5

	slogLogger := slog.Default()
	if logger != nil && logger.Logger != nil {
		slogLogger = logger.Logger
	}

	return &CircuitBreakerProducer{
		producer: producer,
		breaker:  resilience.NewCircuitBreaker(config, slogLogger),
		logger:   logger,
	}
}

// PublishEvent publishes through the breaker.
func (p *CircuitBreakerProducer) PublishEvent(ctx context.Context, topic string, event *cloudevents.CloudEvent) error {
	_, err := p.breaker.Execute(ctx, func() (interface{}, error) {
		return nil, p.producer.PublishEvent(ctx, topic, event)
	})
	return err
}

// PublishEventAsync publishes asynchronously. The breaker state is checked
// up front; failures reported by the callback are fed back into the breaker.
func (p *CircuitBreakerProducer) PublishEventAsync(ctx context.Context, topic string, event *cloudevents.CloudEvent, callback func(error)) {
	if p.breaker.IsOpen() {
		if callback != nil {
			callback(resilience.ErrCircuitOpen)
		}
		return
	}

	p.producer.PublishEventAsync(ctx, topic, event, func(err error) {
		if err != nil {
			_, _ = p.breaker.Execute(ctx, func() (interface{}, error) {
				return nil, err
			})
		}
		if callback != nil {
			callback(err)
		}
	})
}

// Close closes the underlying producer.
func (p *CircuitBreakerProducer) Close() error {
	return p.producer.Close()
}

// Underlying exposes the wrapped producer for callers that must bypass the
// breaker, like the outbox relay which does its own retry accounting.
func (p *CircuitBreakerProducer) Underlying() *InstrumentedProducer {
	return p.producer
}

// NewProductionProducer assembles the full publish chain: base producer,
// metrics and logging instrumentation, then the circuit breaker.
func NewProductionProducer(config *Config, m *metrics.Metrics, logger *logging.Logger) *CircuitBreakerProducer {
	return NewCircuitBreakerProducer(NewInstrumentedProducer(NewProducer(config), m, logger), logger)
}
