package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/logging"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/internal/domain"
)

type countingSource struct {
	calls   int64
	reports map[string]*domain.ReadinessReport
	err     error
}

func (s *countingSource) UnitReport(ctx context.Context, unitID string) (*domain.ReadinessReport, error) {
	atomic.AddInt64(&s.calls, 1)
	if s.err != nil {
		return nil, s.err
	}
	report, ok := s.reports[unitID]
	if !ok {
		return nil, errors.New("unit not found: " + unitID)
	}
	return report, nil
}

func (s *countingSource) callCount() int64 {
	return atomic.LoadInt64(&s.calls)
}

func testReport(unitID string, score int) *domain.ReadinessReport {
	return &domain.ReadinessReport{
		UnitID:         unitID,
		UnitName:       "Medic 12",
		UnitType:       "MEDIC",
		ReadinessScore: score,
		StaffRequired:  2,
		StaffPresent:   2,
		Timestamp:      time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func newTestHub(source ReportSource) *Hub {
	logger := logging.New(logging.DefaultConfig("test"))
	return NewHub(source, nil, logger)
}

func receiveFrame(t *testing.T, sub *Subscriber) Envelope {
	t.Helper()
	select {
	case frame, ok := <-sub.Messages():
		if !ok {
			t.Fatal("subscriber channel closed")
		}
		var env Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			t.Fatalf("unmarshal frame: %v", err)
		}
		return env
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
	}
	return Envelope{}
}

func TestSubscribeDeliversSnapshot(t *testing.T) {
	source := &countingSource{reports: map[string]*domain.ReadinessReport{
		"unit-1": testReport("unit-1", 85),
	}}
	hub := newTestHub(source)

	sub, err := hub.Subscribe(context.Background(), "unit-1")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer hub.Unsubscribe(sub)

	env := receiveFrame(t, sub)
	if env.Type != "unit_readiness" {
		t.Errorf("expected frame type unit_readiness, got %s", env.Type)
	}
	if env.Data == nil || env.Data.ReadinessScore != 85 {
		t.Errorf("expected snapshot score 85, got %+v", env.Data)
	}
	if hub.SubscriberCount("unit-1") != 1 {
		t.Errorf("expected 1 subscriber, got %d", hub.SubscriberCount("unit-1"))
	}
}

func TestSubscribeUnknownUnit(t *testing.T) {
	source := &countingSource{reports: map[string]*domain.ReadinessReport{}}
	hub := newTestHub(source)

	if _, err := hub.Subscribe(context.Background(), "unit-404"); err == nil {
		t.Fatal("expected error for unknown unit")
	}
	if hub.SubscriberCount("unit-404") != 0 {
		t.Error("failed subscribe should not register a subscriber")
	}
}

func TestRefreshPushesToSubscribers(t *testing.T) {
	report := testReport("unit-1", 85)
	source := &countingSource{reports: map[string]*domain.ReadinessReport{
		"unit-1": report,
	}}
	hub := newTestHub(source)

	sub, err := hub.Subscribe(context.Background(), "unit-1")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer hub.Unsubscribe(sub)
	receiveFrame(t, sub)

	report.ReadinessScore = 60
	hub.Refresh(context.Background(), "unit-1")

	env := receiveFrame(t, sub)
	if env.Data.ReadinessScore != 60 {
		t.Errorf("expected refreshed score 60, got %d", env.Data.ReadinessScore)
	}
}

func TestRefreshSkipsUnitsWithoutSubscribers(t *testing.T) {
	source := &countingSource{reports: map[string]*domain.ReadinessReport{
		"unit-1": testReport("unit-1", 85),
	}}
	hub := newTestHub(source)

	hub.Refresh(context.Background(), "unit-1")

	if source.callCount() != 0 {
		t.Errorf("expected no report computation without subscribers, got %d calls", source.callCount())
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	source := &countingSource{reports: map[string]*domain.ReadinessReport{
		"unit-1": testReport("unit-1", 85),
	}}
	hub := newTestHub(source)

	sub, err := hub.Subscribe(context.Background(), "unit-1")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	receiveFrame(t, sub)

	hub.Unsubscribe(sub)

	if _, ok := <-sub.Messages(); ok {
		t.Error("expected closed channel after Unsubscribe")
	}
	if hub.SubscriberCount("unit-1") != 0 {
		t.Errorf("expected 0 subscribers, got %d", hub.SubscriberCount("unit-1"))
	}

	// Double Unsubscribe must be a no-op
	hub.Unsubscribe(sub)
}

func TestPushPrunesSlowSubscribers(t *testing.T) {
	source := &countingSource{reports: map[string]*domain.ReadinessReport{
		"unit-1": testReport("unit-1", 85),
	}}
	hub := newTestHub(source)

	sub, err := hub.Subscribe(context.Background(), "unit-1")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	// Fill the buffer without draining; the snapshot already occupies
	// one slot.
	for i := 0; i < subscriberBuffer-1; i++ {
		hub.Refresh(context.Background(), "unit-1")
	}
	if hub.SubscriberCount("unit-1") != 1 {
		t.Fatal("subscriber should survive while its buffer has room")
	}

	hub.Refresh(context.Background(), "unit-1")

	if hub.SubscriberCount("unit-1") != 0 {
		t.Errorf("expected slow subscriber to be pruned, got %d", hub.SubscriberCount("unit-1"))
	}

	// Drain: buffered frames then the close
	for range sub.Messages() {
	}
}

func TestDispatcherRefreshesOnUnitChanged(t *testing.T) {
	report := testReport("unit-1", 85)
	source := &countingSource{reports: map[string]*domain.ReadinessReport{
		"unit-1": report,
	}}
	hub := newTestHub(source)

	if err := hub.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer hub.Stop()

	sub, err := hub.Subscribe(context.Background(), "unit-1")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	receiveFrame(t, sub)

	report.ReadinessScore = 40
	hub.UnitChanged("unit-1")

	env := receiveFrame(t, sub)
	if env.Data.ReadinessScore != 40 {
		t.Errorf("expected pushed score 40, got %d", env.Data.ReadinessScore)
	}
}

func TestStopClosesSubscribers(t *testing.T) {
	source := &countingSource{reports: map[string]*domain.ReadinessReport{
		"unit-1": testReport("unit-1", 85),
	}}
	hub := newTestHub(source)

	if err := hub.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	sub, err := hub.Subscribe(context.Background(), "unit-1")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	receiveFrame(t, sub)

	if err := hub.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if _, ok := <-sub.Messages(); ok {
		t.Error("expected subscriber channel closed after Stop")
	}

	// Stop is idempotent
	if err := hub.Stop(); err != nil {
		t.Fatalf("second Stop failed: %v", err)
	}
}
