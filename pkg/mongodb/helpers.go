package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// Now returns the current time in UTC. Persistence timestamps are
// always stored in UTC so sort order is stable across replicas.
func Now() time.Time {
	return time.Now().UTC()
}

// SortAscending builds a single-field ascending sort document.
func SortAscending(field string) bson.D {
	return bson.D{{Key: field, Value: 1}}
}

// SortDescending builds a single-field descending sort document.
func SortDescending(field string) bson.D {
	return bson.D{{Key: field, Value: -1}}
}
