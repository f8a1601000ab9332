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

// FeedingRepository persists feeding records.
type FeedingRepository struct {
	coll *mongo.Collection
}

// NewFeedingRepository builds a feeding repository on the store.
func NewFeedingRepository(store *Store) *FeedingRepository {
	return &FeedingRepository{coll: store.db.Collection(collFeedings)}
}

// Insert stores one feeding record.
func (r *FeedingRepository) Insert(ctx context.Context, rec models.FeedingRecord) error {
	if _, err := r.coll.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("failed to insert feeding record: %w", err)
	}
	return nil
}

// InsertMany stores a batch of feeding records in one write.
func (r *FeedingRepository) InsertMany(ctx context.Context, recs []models.FeedingRecord) error {
	docs := make([]any, 0, len(recs))
	for _, rec := range recs {
		docs = append(docs, rec)
	}
	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert feeding records: %w", err)
	}
	return nil
}

// ListByCattle returns a page of one cattle's feeding records, newest
// first, plus the total count.
func (r *FeedingRepository) ListByCattle(ctx context.Context, orgID, cattleID string, page, limit int64) ([]models.FeedingRecord, int64, error) {
	query := bson.M{"organization_id": orgID, "cattle_id": cattleID}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count feeding records: %w", err)
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
		return nil, 0, fmt.Errorf("failed to list feeding records: %w", err)
	}
	defer cursor.Close(ctx)

	var recs []models.FeedingRecord
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode feeding records: %w", err)
	}
	return recs, total, nil
}

// Stats aggregates one cattle's feeding counts and quantities,
// optionally restricted to [from, to].
func (r *FeedingRepository) Stats(ctx context.Context, orgID, cattleID string, from, to *time.Time) (models.FeedingStats, error) {
	match := bson.M{"organization_id": orgID, "cattle_id": cattleID}
	if from != nil && to != nil {
		match["timestamp"] = bson.M{"$gte": *from, "$lte": *to}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":            nil,
			"total_feedings": bson.M{"$sum": 1},
			"total_quantity": bson.M{"$sum": "$quantity"},
			"water_given_count": bson.M{"$sum": bson.M{
				"$cond": bson.A{"$water_given", 1, 0},
			}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return models.FeedingStats{}, fmt.Errorf("failed to aggregate feeding stats: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		TotalFeedings   int64   `bson:"total_feedings"`
		TotalQuantity   float64 `bson:"total_quantity"`
		WaterGivenCount int64   `bson:"water_given_count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return models.FeedingStats{}, fmt.Errorf("failed to decode feeding stats: %w", err)
	}

	var stats models.FeedingStats
	if len(rows) > 0 {
		stats.TotalFeedings = rows[0].TotalFeedings
		stats.TotalQuantity = rows[0].TotalQuantity
		stats.WaterGivenCount = rows[0].WaterGivenCount
		if stats.TotalFeedings > 0 {
			stats.AverageQuantity = stats.TotalQuantity / float64(stats.TotalFeedings)
		}
	}
	return stats, nil
}

// Recent returns one cattle's latest feeding records, optionally
// restricted to [from, to].
func (r *FeedingRepository) Recent(ctx context.Context, orgID, cattleID string, from, to *time.Time, limit int64) ([]models.FeedingRecord, error) {
	query := bson.M{"organization_id": orgID, "cattle_id": cattleID}
	if from != nil && to != nil {
		query["timestamp"] = bson.M{"$gte": *from, "$lte": *to}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent feedings: %w", err)
	}
	defer cursor.Close(ctx)

	var recs []models.FeedingRecord
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("failed to decode recent feedings: %w", err)
	}
	return recs, nil
}
