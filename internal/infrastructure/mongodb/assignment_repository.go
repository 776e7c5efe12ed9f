package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/cloudevents"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/kafka"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/metrics"
	sharedMongo "github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/mongodb"
	outboxMongo "github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/outbox/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/internal/domain"
)

type AssignmentRepository struct {
	collection   *mongo.Collection
	db           *mongo.Database
	outboxRepo   *outboxMongo.OutboxRepository
	eventFactory *cloudevents.EventFactory
	metrics      *metrics.Metrics
}

func NewAssignmentRepository(db *mongo.Database, eventFactory *cloudevents.EventFactory, m *metrics.Metrics) *AssignmentRepository {
	repo := &AssignmentRepository{
		collection:   db.Collection("assignments"),
		db:           db,
		outboxRepo:   newStagedOutbox(db),
		eventFactory: eventFactory,
		metrics:      m,
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *AssignmentRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "assignmentId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "unitId", Value: 1}}},
		{Keys: bson.D{{Key: "personnelId", Value: 1}}},
		{Keys: bson.D{{Key: "assignmentStatus", Value: 1}}},
		{Keys: bson.D{
			{Key: "unitId", Value: 1},
			{Key: "assignmentStatus", Value: 1},
			{Key: "shiftStart", Value: 1},
		}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

func (r *AssignmentRepository) observe(operation string, start time.Time, err error) {
	if r.metrics != nil {
		r.metrics.RecordMongoDBOperation("assignments", operation, err == nil, time.Since(start))
	}
}

// Save upserts the assignment and stages its pending domain events in
// the same transaction. Envelopes carry the unit extension so the
// readiness consumer can route without unmarshalling the payload.
func (r *AssignmentRepository) Save(ctx context.Context, assignment *domain.UnitAssignment) error {
	start := time.Now()
	assignment.UpdatedAt = sharedMongo.Now()

	err := inTransaction(ctx, r.db, func(sessCtx mongo.SessionContext) error {
		filter := bson.M{"assignmentId": assignment.AssignmentID}
		update := bson.M{"$set": assignment}
		if _, err := r.collection.UpdateOne(sessCtx, filter, update, options.Update().SetUpsert(true)); err != nil {
			return fmt.Errorf("upsert assignment %s: %w", assignment.AssignmentID, err)
		}

		var envelopes []*cloudevents.CloudEvent
		for _, event := range assignment.GetDomainEvents() {
			switch e := event.(type) {
			case *domain.AssignmentCreatedEvent:
				envelopes = append(envelopes, r.eventFactory.CreateEvent(sessCtx, e.EventType(), "assignment/"+e.AssignmentID, e).WithUnit(assignment.UnitID))
			case *domain.AssignmentEndedEvent:
				envelopes = append(envelopes, r.eventFactory.CreateEvent(sessCtx, e.EventType(), "assignment/"+e.AssignmentID, e).WithUnit(assignment.UnitID))
			}
		}
		if err := stageOutbox(sessCtx, r.outboxRepo, assignment.AssignmentID, "UnitAssignment", kafka.Topics.AssignmentsEvents, envelopes); err != nil {
			return err
		}

		assignment.ClearDomainEvents()
		return nil
	})

	r.observe("save", start, err)
	return err
}

func (r *AssignmentRepository) FindByID(ctx context.Context, assignmentID string) (*domain.UnitAssignment, error) {
	start := time.Now()
	filter := bson.M{"assignmentId": assignmentID}

	var assignment domain.UnitAssignment
	err := r.collection.FindOne(ctx, filter).Decode(&assignment)
	if err == mongo.ErrNoDocuments {
		r.observe("findOne", start, nil)
		return nil, nil
	}
	r.observe("findOne", start, err)
	return &assignment, err
}

func (r *AssignmentRepository) FindByUnit(ctx context.Context, unitID string) ([]*domain.UnitAssignment, error) {
	start := time.Now()
	filter := bson.M{"unitId": unitID}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(sharedMongo.SortAscending("shiftStart")))
	if err != nil {
		r.observe("find", start, err)
		return nil, err
	}
	defer cursor.Close(ctx)
	var assignments []*domain.UnitAssignment
	err = cursor.All(ctx, &assignments)
	r.observe("find", start, err)
	return assignments, err
}

// FindByPersonnel returns a responder's assignment history, most
// recent shift first.
func (r *AssignmentRepository) FindByPersonnel(ctx context.Context, personnelID string) ([]*domain.UnitAssignment, error) {
	start := time.Now()
	filter := bson.M{"personnelId": personnelID}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(sharedMongo.SortDescending("shiftStart")))
	if err != nil {
		r.observe("find", start, err)
		return nil, err
	}
	defer cursor.Close(ctx)
	var assignments []*domain.UnitAssignment
	err = cursor.All(ctx, &assignments)
	r.observe("find", start, err)
	return assignments, err
}

// FindOnShift returns every assignment currently in ON_SHIFT status,
// across all units.
func (r *AssignmentRepository) FindOnShift(ctx context.Context) ([]*domain.UnitAssignment, error) {
	start := time.Now()
	filter := bson.M{"assignmentStatus": domain.AssignmentOnShift}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(sharedMongo.SortAscending("shiftStart")))
	if err != nil {
		r.observe("find", start, err)
		return nil, err
	}
	defer cursor.Close(ctx)
	var assignments []*domain.UnitAssignment
	err = cursor.All(ctx, &assignments)
	r.observe("find", start, err)
	return assignments, err
}

