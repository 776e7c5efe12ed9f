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

type PersonnelRepository struct {
	collection   *mongo.Collection
	db           *mongo.Database
	outboxRepo   *outboxMongo.OutboxRepository
	eventFactory *cloudevents.EventFactory
	metrics      *metrics.Metrics
}

func NewPersonnelRepository(db *mongo.Database, eventFactory *cloudevents.EventFactory, m *metrics.Metrics) *PersonnelRepository {
	repo := &PersonnelRepository{
		collection:   db.Collection("personnel"),
		db:           db,
		outboxRepo:   newStagedOutbox(db),
		eventFactory: eventFactory,
		metrics:      m,
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *PersonnelRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "personnelId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "availabilityStatus", Value: 1}}},
		{Keys: bson.D{{Key: "stationId", Value: 1}}},
		{Keys: bson.D{{Key: "currentUnitId", Value: 1}}},
		{Keys: bson.D{{Key: "certifications", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

func (r *PersonnelRepository) observe(operation string, start time.Time, err error) {
	if r.metrics != nil {
		r.metrics.RecordMongoDBOperation("personnel", operation, err == nil, time.Since(start))
	}
}

// Save upserts the person and stages their pending domain events for
// relay, all in one transaction. Events are cleared only after a
// successful commit.
func (r *PersonnelRepository) Save(ctx context.Context, person *domain.Personnel) error {
	start := time.Now()
	person.UpdatedAt = sharedMongo.Now()

	err := inTransaction(ctx, r.db, func(sessCtx mongo.SessionContext) error {
		filter := bson.M{"personnelId": person.PersonnelID}
		update := bson.M{"$set": person}
		if _, err := r.collection.UpdateOne(sessCtx, filter, update, options.Update().SetUpsert(true)); err != nil {
			return fmt.Errorf("upsert personnel %s: %w", person.PersonnelID, err)
		}

		envelopes := r.envelopes(sessCtx, person)
		if err := stageOutbox(sessCtx, r.outboxRepo, person.PersonnelID, "Personnel", kafka.Topics.PersonnelEvents, envelopes); err != nil {
			return err
		}

		person.ClearDomainEvents()
		return nil
	})

	r.observe("save", start, err)
	return err
}

// envelopes wraps the person's pending domain events in CloudEvents.
// Unknown event kinds are skipped.
func (r *PersonnelRepository) envelopes(ctx context.Context, person *domain.Personnel) []*cloudevents.CloudEvent {
	var envelopes []*cloudevents.CloudEvent
	for _, event := range person.GetDomainEvents() {
		switch e := event.(type) {
		case *domain.PersonnelRegisteredEvent:
			envelopes = append(envelopes, r.eventFactory.CreateEvent(ctx, e.EventType(), "personnel/"+e.PersonnelID, e))
		case *domain.PersonnelAvailabilityChangedEvent:
			envelopes = append(envelopes, r.eventFactory.CreateEvent(ctx, e.EventType(), "personnel/"+e.PersonnelID, e))
		case *domain.PersonnelMarkedUnqualifiedEvent:
			envelopes = append(envelopes, r.eventFactory.CreateEvent(ctx, e.EventType(), "personnel/"+e.PersonnelID, e))
		}
	}
	return envelopes
}

func (r *PersonnelRepository) FindByID(ctx context.Context, personnelID string) (*domain.Personnel, error) {
	start := time.Now()
	filter := bson.M{"personnelId": personnelID}

	var person domain.Personnel
	err := r.collection.FindOne(ctx, filter).Decode(&person)
	if err == mongo.ErrNoDocuments {
		r.observe("findOne", start, nil)
		return nil, nil
	}
	r.observe("findOne", start, err)
	return &person, err
}

func (r *PersonnelRepository) FindAll(ctx context.Context, limit, offset int) ([]*domain.Personnel, error) {
	start := time.Now()
	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64(offset)).
		SetSort(sharedMongo.SortAscending("name"))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		r.observe("find", start, err)
		return nil, err
	}
	defer cursor.Close(ctx)
	var personnel []*domain.Personnel
	err = cursor.All(ctx, &personnel)
	r.observe("find", start, err)
	return personnel, err
}

func (r *PersonnelRepository) Count(ctx context.Context) (int64, error) {
	start := time.Now()
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	r.observe("count", start, err)
	return count, err
}

func (r *PersonnelRepository) FindByAvailability(ctx context.Context, status domain.AvailabilityStatus) ([]*domain.Personnel, error) {
	start := time.Now()
	filter := bson.M{"availabilityStatus": status}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		r.observe("find", start, err)
		return nil, err
	}
	defer cursor.Close(ctx)
	var personnel []*domain.Personnel
	err = cursor.All(ctx, &personnel)
	r.observe("find", start, err)
	return personnel, err
}

// FindWithExpirations returns personnel that hold at least one
// certification with a recorded expiry date. This is the expiry scan's
// working set.
func (r *PersonnelRepository) FindWithExpirations(ctx context.Context) ([]*domain.Personnel, error) {
	start := time.Now()
	filter := bson.M{
		"certExpirations": bson.M{"$exists": true, "$ne": bson.M{}},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		r.observe("find", start, err)
		return nil, err
	}
	defer cursor.Close(ctx)
	var personnel []*domain.Personnel
	err = cursor.All(ctx, &personnel)
	r.observe("find", start, err)
	return personnel, err
}

// GetOutboxRepository exposes the shared outbox store so the relay can
// poll it. Every aggregate repository stages into the same collection.
func (r *PersonnelRepository) GetOutboxRepository() *outboxMongo.OutboxRepository {
	return r.outboxRepo
}
