package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/cloudevents"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/outbox"
	outboxMongo "github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/outbox/mongodb"
)

// newStagedOutbox builds the outbox repository the aggregate repositories
// stage events into, ensuring its indexes up front so the first Save does
// not race the TTL index creation.
func newStagedOutbox(db *mongo.Database) *outboxMongo.OutboxRepository {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	repo := outboxMongo.NewOutboxRepository(db)
	_ = repo.EnsureIndexes(ctx)
	return repo
}

// inTransaction runs fn inside a multi-document transaction so the
// aggregate write and its staged outbox rows commit or roll back as one.
func inTransaction(ctx context.Context, db *mongo.Database, fn func(mongo.SessionContext) error) error {
	session, err := db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}

// stageOutbox writes the envelopes as outbox rows in the caller's
// transaction. A nil or empty slice is a no-op.
func stageOutbox(sessCtx mongo.SessionContext, repo *outboxMongo.OutboxRepository, aggregateID, aggregateType, topic string, envelopes []*cloudevents.CloudEvent) error {
	if len(envelopes) == 0 {
		return nil
	}
	rows := make([]*outbox.OutboxEvent, 0, len(envelopes))
	for _, envelope := range envelopes {
		row, err := outbox.NewOutboxEventFromCloudEvent(aggregateID, aggregateType, topic, envelope)
		if err != nil {
			return fmt.Errorf("stage outbox event %s: %w", envelope.Type, err)
		}
		rows = append(rows, row)
	}
	if err := repo.SaveAll(sessCtx, rows); err != nil {
		return fmt.Errorf("save outbox events: %w", err)
	}
	return nil
}
