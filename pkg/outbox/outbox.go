package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/cloudevents"
)

// maxDeliveryAttempts caps how often a failed event is retried before the
// relay skips it. Skipped events stay in the collection for inspection.
const maxDeliveryAttempts = 10

// OutboxEvent is a CloudEvent staged for delivery. It is written in the same
// MongoDB transaction as the aggregate it describes, then relayed to Kafka
// by the Publisher.
type OutboxEvent struct {
	ID            string          `bson:"_id" json:"id"`
	AggregateID   string          `bson:"aggregateId" json:"aggregateId"`
	AggregateType string          `bson:"aggregateType" json:"aggregateType"`
	EventType     string          `bson:"eventType" json:"eventType"`
	Topic         string          `bson:"topic" json:"topic"`
	Payload       json.RawMessage `bson:"payload" json:"payload"`
	CreatedAt     time.Time       `bson:"createdAt" json:"createdAt"`
	PublishedAt   *time.Time      `bson:"publishedAt,omitempty" json:"publishedAt,omitempty"`
	RetryCount    int             `bson:"retryCount" json:"retryCount"`
	LastError     string          `bson:"lastError,omitempty" json:"lastError,omitempty"`
	MaxRetries    int             `bson:"maxRetries" json:"maxRetries"`
}

// NewOutboxEventFromCloudEvent stages a CloudEvent for the given aggregate
// and topic.
func NewOutboxEventFromCloudEvent(aggregateID, aggregateType, topic string, event *cloudevents.CloudEvent) (*OutboxEvent, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	return &OutboxEvent{
		ID:            uuid.New().String(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     event.Type,
		Topic:         topic,
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
		MaxRetries:    maxDeliveryAttempts,
	}, nil
}

// ToCloudEvent decodes the staged payload back into a CloudEvent.
func (e *OutboxEvent) ToCloudEvent() (*cloudevents.CloudEvent, error) {
	var event cloudevents.CloudEvent
	if err := json.Unmarshal(e.Payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
