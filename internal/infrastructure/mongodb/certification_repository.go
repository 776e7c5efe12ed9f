package mongodb

import (
	"context"
	"time"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/metrics"
	sharedMongo "github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/internal/domain"
)

// CertificationRepository persists the certification catalog. Catalog
// entries carry no domain events, so writes skip the outbox.
type CertificationRepository struct {
	collection *mongo.Collection
	metrics    *metrics.Metrics
}

func NewCertificationRepository(db *mongo.Database, m *metrics.Metrics) *CertificationRepository {
	repo := &CertificationRepository{
		collection: db.Collection("certifications"),
		metrics:    m,
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *CertificationRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "certificationId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

func (r *CertificationRepository) observe(operation string, start time.Time, err error) {
	if r.metrics != nil {
		r.metrics.RecordMongoDBOperation("certifications", operation, err == nil, time.Since(start))
	}
}

func (r *CertificationRepository) Save(ctx context.Context, cert *domain.Certification) error {
	start := time.Now()
	opts := options.Update().SetUpsert(true)
	filter := bson.M{"certificationId": cert.CertificationID}
	update := bson.M{"$set": cert}

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	r.observe("save", start, err)
	return err
}

func (r *CertificationRepository) FindByID(ctx context.Context, certificationID string) (*domain.Certification, error) {
	start := time.Now()
	filter := bson.M{"certificationId": certificationID}

	var cert domain.Certification
	err := r.collection.FindOne(ctx, filter).Decode(&cert)
	if err == mongo.ErrNoDocuments {
		r.observe("findOne", start, nil)
		return nil, nil
	}
	r.observe("findOne", start, err)
	return &cert, err
}

func (r *CertificationRepository) FindAll(ctx context.Context) ([]*domain.Certification, error) {
	start := time.Now()
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(sharedMongo.SortAscending("name")))
	if err != nil {
		r.observe("find", start, err)
		return nil, err
	}
	defer cursor.Close(ctx)
	var certs []*domain.Certification
	err = cursor.All(ctx, &certs)
	r.observe("find", start, err)
	return certs, err
}

