package cloudevents

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventFactory stamps envelopes with a fixed source URI so every event
// from one deployment is attributable to it.
type EventFactory struct {
	source string
}

func NewEventFactory(source string) *EventFactory {
	return &EventFactory{source: source}
}

// CreateEvent wraps data in a v1.0 envelope with a fresh ID and UTC
// timestamp. The context is accepted for future trace propagation and
// is not consulted today.
func (f *EventFactory) CreateEvent(ctx context.Context, eventType, subject string, data interface{}) *CloudEvent {
	return &CloudEvent{
		SpecVersion:     "1.0",
		Type:            eventType,
		Source:          f.source,
		Subject:         subject,
		ID:              uuid.New().String(),
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
		Data:            data,
	}
}

// CreateReadinessEvaluatedEvent builds the envelope for a completed
// unit evaluation, tagged with the unit so subscribers can filter.
func (f *EventFactory) CreateReadinessEvaluatedEvent(ctx context.Context, unitID string, score, staffRequired, staffPresent int, isUnderstaffed bool, evaluatedAt time.Time) *CloudEvent {
	data := ReadinessEvaluatedData{
		UnitID:         unitID,
		ReadinessScore: score,
		StaffRequired:  staffRequired,
		StaffPresent:   staffPresent,
		IsUnderstaffed: isUnderstaffed,
		EvaluatedAt:    evaluatedAt,
	}
	return f.CreateEvent(ctx, ReadinessEvaluated, "unit/"+unitID, data).WithUnit(unitID)
}

// CreateExpiryScanCompletedEvent builds the envelope summarising one
// certification expiry sweep.
func (f *EventFactory) CreateExpiryScanCompletedEvent(ctx context.Context, expiredCertifications, markedUnqualified int, affectedUnits []string, completedAt time.Time) *CloudEvent {
	data := ExpiryScanCompletedData{
		ExpiredCertifications: expiredCertifications,
		MarkedUnqualified:     markedUnqualified,
		AffectedUnits:         affectedUnits,
		CompletedAt:           completedAt,
	}
	return f.CreateEvent(ctx, ExpiryScanCompleted, "certifications/expiry-scan", data)
}
