package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dairyherd/internal/domain/models"
)

// HealthRepository persists health records.
type HealthRepository struct {
	coll *mongo.Collection
}

// NewHealthRepository builds a health record repository on the store.
func NewHealthRepository(store *Store) *HealthRepository {
	return &HealthRepository{coll: store.db.Collection(collHealthRecords)}
}

// Insert stores one health record.
func (r *HealthRepository) Insert(ctx context.Context, rec models.HealthRecord) error {
	if _, err := r.coll.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("failed to insert health record: %w", err)
	}
	return nil
}

// ListByCattle returns a page of one cattle's health records, newest
// first, optionally narrowed to one record type, plus the total count.
func (r *HealthRepository) ListByCattle(ctx context.Context, orgID, cattleID string, recordType models.HealthRecordType, page, limit int64) ([]models.HealthRecord, int64, error) {
	query := bson.M{"organization_id": orgID, "cattle_id": cattleID}
	if recordType != "" {
		query["record_type"] = recordType
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count health records: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list health records: %w", err)
	}
	defer cursor.Close(ctx)

	var recs []models.HealthRecord
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode health records: %w", err)
	}
	return recs, total, nil
}

// Stats counts one cattle's health records by type, optionally
// restricted to [from, to].
func (r *HealthRepository) Stats(ctx context.Context, orgID, cattleID string, from, to *time.Time) (models.HealthStats, error) {
	base := bson.M{"organization_id": orgID, "cattle_id": cattleID}
	if from != nil && to != nil {
		base["timestamp"] = bson.M{"$gte": *from, "$lte": *to}
	}

	count := func(recordType models.HealthRecordType) (int64, error) {
		query := bson.M{}
		for k, v := range base {
			query[k] = v
		}
		if recordType != "" {
			query["record_type"] = recordType
		}
		return r.coll.CountDocuments(ctx, query)
	}

	var stats models.HealthStats
	var err error
	if stats.TotalRecords, err = count(""); err != nil {
		return stats, fmt.Errorf("failed to count health records: %w", err)
	}
	if stats.DiseaseCount, err = count(models.HealthDisease); err != nil {
		return stats, fmt.Errorf("failed to count disease records: %w", err)
	}
	if stats.InjectionCount, err = count(models.HealthInjection); err != nil {
		return stats, fmt.Errorf("failed to count injection records: %w", err)
	}
	if stats.CheckupCount, err = count(models.HealthCheckup); err != nil {
		return stats, fmt.Errorf("failed to count checkup records: %w", err)
	}
	return stats, nil
}

// Recent returns one cattle's latest health records, optionally
// restricted to [from, to].
func (r *HealthRepository) Recent(ctx context.Context, orgID, cattleID string, from, to *time.Time, limit int64) ([]models.HealthRecord, error) {
	query := bson.M{"organization_id": orgID, "cattle_id": cattleID}
	if from != nil && to != nil {
		query["timestamp"] = bson.M{"$gte": *from, "$lte": *to}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent health records: %w", err)
	}
	defer cursor.Close(ctx)

	var recs []models.HealthRecord
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("failed to decode recent health records: %w", err)
	}
	return recs, nil
}

// Alerts returns DISEASE records since the given instant across the
// organization, newest first, optionally narrowed to a set of cattle
// ids (nil means all).
func (r *HealthRepository) Alerts(ctx context.Context, orgID string, since time.Time, cattleIDs []string) ([]models.HealthRecord, error) {
	query := bson.M{
		"organization_id": orgID,
		"record_type":     models.HealthDisease,
		"timestamp":       bson.M{"$gte": since},
	}
	if cattleIDs != nil {
		query["cattle_id"] = bson.M{"$in": cattleIDs}
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query health alerts: %w", err)
	}
	defer cursor.Close(ctx)

	var recs []models.HealthRecord
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("failed to decode health alerts: %w", err)
	}
	return recs, nil
}
