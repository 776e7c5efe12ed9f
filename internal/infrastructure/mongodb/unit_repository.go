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

type UnitRepository struct {
	collection   *mongo.Collection
	db           *mongo.Database
	outboxRepo   *outboxMongo.OutboxRepository
	eventFactory *cloudevents.EventFactory
	metrics      *metrics.Metrics
}

func NewUnitRepository(db *mongo.Database, eventFactory *cloudevents.EventFactory, m *metrics.Metrics) *UnitRepository {
	repo := &UnitRepository{
		collection:   db.Collection("units"),
		db:           db,
		outboxRepo:   newStagedOutbox(db),
		eventFactory: eventFactory,
		metrics:      m,
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *UnitRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "unitId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "type", Value: 1}}},
		{Keys: bson.D{{Key: "active", Value: 1}}},
		{Keys: bson.D{{Key: "stationId", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

func (r *UnitRepository) observe(operation string, start time.Time, err error) {
	if r.metrics != nil {
		r.metrics.RecordMongoDBOperation("units", operation, err == nil, time.Since(start))
	}
}

// Save upserts the unit and stages its pending domain events in the
// same transaction.
func (r *UnitRepository) Save(ctx context.Context, unit *domain.Unit) error {
	start := time.Now()
	unit.UpdatedAt = sharedMongo.Now()

	err := inTransaction(ctx, r.db, func(sessCtx mongo.SessionContext) error {
		filter := bson.M{"unitId": unit.UnitID}
		update := bson.M{"$set": unit}
		if _, err := r.collection.UpdateOne(sessCtx, filter, update, options.Update().SetUpsert(true)); err != nil {
			return fmt.Errorf("upsert unit %s: %w", unit.UnitID, err)
		}

		var envelopes []*cloudevents.CloudEvent
		for _, event := range unit.GetDomainEvents() {
			switch e := event.(type) {
			case *domain.UnitCreatedEvent:
				envelopes = append(envelopes, r.eventFactory.CreateEvent(sessCtx, e.EventType(), "unit/"+e.UnitID, e).WithUnit(unit.UnitID))
			case *domain.UnitConfigurationChangedEvent:
				envelopes = append(envelopes, r.eventFactory.CreateEvent(sessCtx, e.EventType(), "unit/"+e.UnitID, e).WithUnit(unit.UnitID))
			}
		}
		if err := stageOutbox(sessCtx, r.outboxRepo, unit.UnitID, "Unit", kafka.Topics.UnitsEvents, envelopes); err != nil {
			return err
		}

		unit.ClearDomainEvents()
		return nil
	})

	r.observe("save", start, err)
	return err
}

func (r *UnitRepository) FindByID(ctx context.Context, unitID string) (*domain.Unit, error) {
	start := time.Now()
	filter := bson.M{"unitId": unitID}

	var unit domain.Unit
	err := r.collection.FindOne(ctx, filter).Decode(&unit)
	if err == mongo.ErrNoDocuments {
		r.observe("findOne", start, nil)
		return nil, nil
	}
	r.observe("findOne", start, err)
	return &unit, err
}

func (r *UnitRepository) FindAll(ctx context.Context, limit, offset int) ([]*domain.Unit, error) {
	start := time.Now()
	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64(offset)).
		SetSort(sharedMongo.SortAscending("unitName"))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		r.observe("find", start, err)
		return nil, err
	}
	defer cursor.Close(ctx)
	var units []*domain.Unit
	err = cursor.All(ctx, &units)
	r.observe("find", start, err)
	return units, err
}

func (r *UnitRepository) Count(ctx context.Context) (int64, error) {
	start := time.Now()
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	r.observe("count", start, err)
	return count, err
}

func (r *UnitRepository) FindActive(ctx context.Context) ([]*domain.Unit, error) {
	start := time.Now()
	filter := bson.M{"active": true}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(sharedMongo.SortAscending("unitName")))
	if err != nil {
		r.observe("find", start, err)
		return nil, err
	}
	defer cursor.Close(ctx)
	var units []*domain.Unit
	err = cursor.All(ctx, &units)
	r.observe("find", start, err)
	return units, err
}

