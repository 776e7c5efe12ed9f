package outbox

import "context"

// Repository persists staged events and tracks their delivery state.
type Repository interface {
	// SaveAll stages events atomically with the caller's transaction context.
	SaveAll(ctx context.Context, events []*OutboxEvent) error

	// FindUnpublished returns undelivered events in creation order, oldest
	// first, skipping events that exhausted their retries.
	FindUnpublished(ctx context.Context, limit int) ([]*OutboxEvent, error)

	// MarkPublished records a successful delivery.
	MarkPublished(ctx context.Context, eventID string) error

	// IncrementRetry records a failed delivery attempt and its error.
	IncrementRetry(ctx context.Context, eventID string, errorMsg string) error
}
