package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/logging"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/metrics"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/internal/domain"
)

// messageType tags every frame pushed to subscribers
const messageType = "unit_readiness"

// subscriberBuffer is the per-subscriber channel depth. A subscriber
// that falls this far behind is pruned rather than blocking the hub.
const subscriberBuffer = 16

// changeQueueSize bounds the pending change notifications
const changeQueueSize = 256

// Envelope is the frame format pushed to live subscribers
type Envelope struct {
	Type string                  `json:"type"`
	Data *domain.ReadinessReport `json:"data"`
}

// ReportSource computes the current readiness report for a unit
type ReportSource interface {
	UnitReport(ctx context.Context, unitID string) (*domain.ReadinessReport, error)
}

// ReportSourceFunc adapts a function to the ReportSource interface
type ReportSourceFunc func(ctx context.Context, unitID string) (*domain.ReadinessReport, error)

func (f ReportSourceFunc) UnitReport(ctx context.Context, unitID string) (*domain.ReadinessReport, error) {
	return f(ctx, unitID)
}

// Subscriber is one live dashboard connection watching a unit
type Subscriber struct {
	unitID string
	ch     chan []byte
}

// UnitID returns the unit the subscriber is watching
func (s *Subscriber) UnitID() string { return s.unitID }

// Messages returns the channel of marshaled readiness frames. The
// channel is closed when the subscriber is removed.
func (s *Subscriber) Messages() <-chan []byte { return s.ch }

// Hub fans readiness updates out to per-unit subscriber sets. Change
// notifications arrive on a queue and are coalesced into fresh report
// pushes by a dispatcher goroutine.
type Hub struct {
	source  ReportSource
	metrics *metrics.Metrics
	logger  *logging.Logger

	mu   sync.RWMutex
	subs map[string]map[*Subscriber]struct{}

	changes   chan string
	stopCh    chan struct{}
	stoppedCh chan struct{}
	running   bool
	runMu     sync.Mutex
}

// NewHub creates a new Hub
func NewHub(source ReportSource, m *metrics.Metrics, logger *logging.Logger) *Hub {
	return &Hub{
		source:    source,
		metrics:   m,
		logger:    logger,
		subs:      make(map[string]map[*Subscriber]struct{}),
		changes:   make(chan string, changeQueueSize),
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Start launches the dispatcher goroutine
func (h *Hub) Start(ctx context.Context) error {
	h.runMu.Lock()
	defer h.runMu.Unlock()

	if h.running {
		return fmt.Errorf("broadcast hub already running")
	}
	h.running = true

	h.logger.Info("Starting broadcast hub")
	go h.run(ctx)
	return nil
}

// Stop shuts down the dispatcher and closes all subscriber channels
func (h *Hub) Stop() error {
	h.runMu.Lock()
	defer h.runMu.Unlock()

	if !h.running {
		return nil
	}
	h.running = false

	close(h.stopCh)
	<-h.stoppedCh

	h.mu.Lock()
	for unitID, set := range h.subs {
		for sub := range set {
			close(sub.ch)
		}
		delete(h.subs, unitID)
	}
	h.mu.Unlock()

	h.logger.Info("Stopped broadcast hub")
	return nil
}

// UnitChanged queues a refresh for the unit. Never blocks: if the
// queue is full the notification is dropped and the next change wins.
func (h *Hub) UnitChanged(unitID string) {
	select {
	case h.changes <- unitID:
	default:
		h.logger.Warn("Broadcast change queue full, dropping notification", "unitId", unitID)
	}
}

// Subscribe registers a subscriber for a unit and delivers the current
// readiness snapshot before any change-driven pushes
func (h *Hub) Subscribe(ctx context.Context, unitID string) (*Subscriber, error) {
	report, err := h.source.UnitReport(ctx, unitID)
	if err != nil {
		return nil, err
	}

	frame, err := marshalEnvelope(report)
	if err != nil {
		return nil, err
	}

	sub := &Subscriber{
		unitID: unitID,
		ch:     make(chan []byte, subscriberBuffer),
	}
	sub.ch <- frame

	h.mu.Lock()
	set, ok := h.subs[unitID]
	if !ok {
		set = make(map[*Subscriber]struct{})
		h.subs[unitID] = set
	}
	set[sub] = struct{}{}
	count := len(set)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.SetWebsocketSubscribers(unitID, count)
	}
	h.logger.Info("Subscriber joined", "unitId", unitID, "subscribers", count)

	return sub, nil
}

// Unsubscribe removes a subscriber and closes its channel
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	set, ok := h.subs[sub.unitID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, member := set[sub]; !member {
		h.mu.Unlock()
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.unitID)
	}
	count := len(set)
	h.mu.Unlock()

	close(sub.ch)

	if h.metrics != nil {
		h.metrics.SetWebsocketSubscribers(sub.unitID, count)
	}
	h.logger.Info("Subscriber left", "unitId", sub.unitID, "subscribers", count)
}

// SubscriberCount returns the number of live subscribers for a unit
func (h *Hub) SubscriberCount(unitID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[unitID])
}

// Refresh recomputes the unit's readiness and pushes it to every
// subscriber. Units with no subscribers cost nothing: the report is
// never computed.
func (h *Hub) Refresh(ctx context.Context, unitID string) {
	h.mu.RLock()
	count := len(h.subs[unitID])
	h.mu.RUnlock()

	if count == 0 {
		return
	}

	report, err := h.source.UnitReport(ctx, unitID)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to compute readiness for broadcast", "unitId", unitID)
		return
	}

	frame, err := marshalEnvelope(report)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal readiness frame", "unitId", unitID)
		return
	}

	h.push(ctx, unitID, frame)
}

// push delivers a frame to each subscriber of the unit, pruning any
// subscriber whose buffer is full
func (h *Hub) push(ctx context.Context, unitID string, frame []byte) {
	h.mu.Lock()
	set := h.subs[unitID]
	stale := make([]*Subscriber, 0)
	delivered := 0
	for sub := range set {
		select {
		case sub.ch <- frame:
			delivered++
		default:
			stale = append(stale, sub)
		}
	}
	for _, sub := range stale {
		delete(set, sub)
		close(sub.ch)
	}
	if len(set) == 0 {
		delete(h.subs, unitID)
	}
	remaining := len(set)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.SetWebsocketSubscribers(unitID, remaining)
		for i := 0; i < delivered; i++ {
			h.metrics.RecordBroadcastPush(true)
		}
		for range stale {
			h.metrics.RecordBroadcastPush(false)
		}
	}

	h.logger.BroadcastPush(ctx, unitID, delivered, len(stale) == 0)
	if len(stale) > 0 {
		h.logger.Warn("Pruned slow subscribers", "unitId", unitID, "pruned", len(stale))
	}
}

func (h *Hub) run(ctx context.Context) {
	defer close(h.stoppedCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.stopCh:
			return
		case unitID := <-h.changes:
			h.Refresh(ctx, unitID)
		}
	}
}

func marshalEnvelope(report *domain.ReadinessReport) ([]byte, error) {
	frame, err := json.Marshal(Envelope{Type: messageType, Data: report})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal readiness envelope: %w", err)
	}
	return frame, nil
}
