package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/kafka"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/logging"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/metrics"
)

// PublisherConfig tunes the relay loop.
type PublisherConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

// DefaultPublisherConfig polls once a second, 100 events per batch.
func DefaultPublisherConfig() *PublisherConfig {
	return &PublisherConfig{
		PollInterval: 1 * time.Second,
		BatchSize:    100,
	}
}

// Publisher relays staged outbox events to Kafka on a polling loop. Failed
// deliveries are retried on later polls until the event exhausts its retry
// budget.
type Publisher struct {
	repo      Repository
	producer  *kafka.InstrumentedProducer
	logger    *logging.Logger
	metrics   *metrics.Metrics
	interval  time.Duration
	batchSize int

	mu      sync.Mutex
	running bool

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// NewPublisher builds a relay over the given repository and producer. A nil
// config uses DefaultPublisherConfig.
func NewPublisher(repo Repository, producer *kafka.InstrumentedProducer, logger *logging.Logger, m *metrics.Metrics, config *PublisherConfig) *Publisher {
	if config == nil {
		config = DefaultPublisherConfig()
	}

	return &Publisher{
		repo:      repo,
		producer:  producer,
		logger:    logger,
		metrics:   m,
		interval:  config.PollInterval,
		batchSize: config.BatchSize,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Start launches the relay loop. It errors if the publisher is already
// running.
func (p *Publisher) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("outbox publisher already running")
	}
	p.running = true
	p.mu.Unlock()

	p.logger.Info("Starting outbox publisher", "interval", p.interval, "batchSize", p.batchSize)

	go p.run(ctx)
	return nil
}

// Stop signals the loop and waits for it to drain the in-flight batch.
func (p *Publisher) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return fmt.Errorf("outbox publisher not running")
	}
	p.mu.Unlock()

	close(p.stopCh)
	<-p.stoppedCh

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	p.logger.Info("Outbox publisher stopped")
	return nil
}

func (p *Publisher) run(ctx context.Context) {
	defer close(p.stoppedCh)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.relayBatch(ctx)
		case <-p.stopCh:
			return
		case <-ctx.Done():
			p.logger.Info("Outbox publisher context cancelled")
			return
		}
	}
}

// relayBatch delivers one batch of undelivered events. Each event's outcome
// is recorded independently so a poisoned event cannot block the rest of the
// batch.
func (p *Publisher) relayBatch(ctx context.Context) {
	events, err := p.repo.FindUnpublished(ctx, p.batchSize)
	if err != nil {
		p.logger.WithError(err).Error("Failed to load undelivered outbox events")
		return
	}

	if p.metrics != nil {
		p.metrics.SetOutboxPending(len(events))
	}
	if len(events) == 0 {
		return
	}

	for _, event := range events {
		duration, err := p.deliver(ctx, event)
		if err != nil {
			p.logger.WithError(err).Error("Failed to deliver outbox event",
				"eventId", event.ID,
				"eventType", event.EventType,
				"aggregateId", event.AggregateID,
			)
			if p.metrics != nil {
				p.metrics.RecordOutboxPublish(event.EventType, false, duration)
				p.metrics.RecordOutboxRetry(event.EventType)
			}
			if err := p.repo.IncrementRetry(ctx, event.ID, err.Error()); err != nil {
				p.logger.WithError(err).Error("Failed to record outbox retry", "eventId", event.ID)
			}
			continue
		}

		if p.metrics != nil {
			p.metrics.RecordOutboxPublish(event.EventType, true, duration)
		}
		if err := p.repo.MarkPublished(ctx, event.ID); err != nil {
			// The event will be delivered again on the next poll;
			// consumers must tolerate the duplicate.
			p.logger.WithError(err).Error("Failed to mark outbox event as published", "eventId", event.ID)
		}
	}
}

func (p *Publisher) deliver(ctx context.Context, event *OutboxEvent) (time.Duration, error) {
	start := time.Now()

	cloudEvent, err := event.ToCloudEvent()
	if err != nil {
		return time.Since(start), fmt.Errorf("failed to decode staged payload: %w", err)
	}

	if err := p.producer.PublishEvent(ctx, event.Topic, cloudEvent); err != nil {
		return time.Since(start), fmt.Errorf("failed to publish to Kafka: %w", err)
	}

	duration := time.Since(start)
	p.logger.Info("Delivered outbox event",
		"eventId", event.ID,
		"eventType", event.EventType,
		"topic", event.Topic,
		"duration", duration,
	)
	return duration, nil
}
