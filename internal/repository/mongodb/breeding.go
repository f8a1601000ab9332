package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dairyherd/internal/domain/models"
)

// BreedingRepository persists semination and pregnancy records.
type BreedingRepository struct {
	seminations *mongo.Collection
	pregnancies *mongo.Collection
}

// NewBreedingRepository builds a breeding repository on the store.
func NewBreedingRepository(store *Store) *BreedingRepository {
	return &BreedingRepository{
		seminations: store.db.Collection(collSeminations),
		pregnancies: store.db.Collection(collPregnancies),
	}
}

// InsertSemination stores a new semination record.
func (r *BreedingRepository) InsertSemination(ctx context.Context, rec models.SeminationRecord) error {
	if _, err := r.seminations.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("failed to insert semination record: %w", err)
	}
	return nil
}

// FindSeminationByID returns the semination record with the given id
// inside the organization, or nil when absent.
func (r *BreedingRepository) FindSeminationByID(ctx context.Context, orgID, id string) (*models.SeminationRecord, error) {
	var rec models.SeminationRecord
	err := r.seminations.FindOne(ctx, bson.M{"_id": id, "organization_id": orgID}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find semination record %s: %w", id, err)
	}
	return &rec, nil
}

// FindOpenSemination returns the unresolved semination record (check
// outcome not yet recorded) for a cattle, or nil when none exists.
func (r *BreedingRepository) FindOpenSemination(ctx context.Context, orgID, cattleID string) (*models.SeminationRecord, error) {
	var rec models.SeminationRecord
	query := bson.M{"organization_id": orgID, "cattle_id": cattleID, "is_pregnant": nil}
	err := r.seminations.FindOne(ctx, query).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find open semination for cattle %s: %w", cattleID, err)
	}
	return &rec, nil
}

// UpdateSeminationOutcome records the pregnancy check result on a
// semination record. CheckDate is deliberately untouched.
func (r *BreedingRepository) UpdateSeminationOutcome(ctx context.Context, orgID, id string, isPregnant bool, checkedAt time.Time, notes string) error {
	update := bson.M{"$set": bson.M{
		"is_pregnant": isPregnant,
		"checked_at":  checkedAt,
		"notes":       notes,
	}}
	res, err := r.seminations.UpdateOne(ctx, bson.M{"_id": id, "organization_id": orgID}, update)
	if err != nil {
		return fmt.Errorf("failed to update semination record %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("semination record %s not found for update", id)
	}
	return nil
}

// ListSeminationsByCattle returns the semination history of a cattle,
// newest first.
func (r *BreedingRepository) ListSeminationsByCattle(ctx context.Context, orgID, cattleID string) ([]models.SeminationRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "semination_date", Value: -1}})
	cursor, err := r.seminations.Find(ctx, bson.M{"organization_id": orgID, "cattle_id": cattleID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list seminations for cattle %s: %w", cattleID, err)
	}
	defer cursor.Close(ctx)

	var recs []models.SeminationRecord
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("failed to decode semination list: %w", err)
	}
	return recs, nil
}

// DueChecks returns every semination record across all tenants whose
// check date has passed without an outcome being recorded. Used by the
// daily pregnancy-check sweep; API callers go through PendingChecks.
func (r *BreedingRepository) DueChecks(ctx context.Context, asOf time.Time) ([]models.SeminationRecord, error) {
	query := bson.M{"check_date": bson.M{"$lte": asOf}, "is_pregnant": nil}
	opts := options.Find().SetSort(bson.D{{Key: "check_date", Value: 1}})
	cursor, err := r.seminations.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query due pregnancy checks: %w", err)
	}
	defer cursor.Close(ctx)

	var recs []models.SeminationRecord
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("failed to decode due checks: %w", err)
	}
	return recs, nil
}

// PendingChecks returns due, unresolved semination records within one
// organization.
func (r *BreedingRepository) PendingChecks(ctx context.Context, orgID string, asOf time.Time) ([]models.SeminationRecord, error) {
	query := bson.M{
		"organization_id": orgID,
		"check_date":      bson.M{"$lte": asOf},
		"is_pregnant":     nil,
	}
	opts := options.Find().SetSort(bson.D{{Key: "check_date", Value: 1}})
	cursor, err := r.seminations.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending checks: %w", err)
	}
	defer cursor.Close(ctx)

	var recs []models.SeminationRecord
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("failed to decode pending checks: %w", err)
	}
	return recs, nil
}

// InsertPregnancy stores a new pregnancy record.
func (r *BreedingRepository) InsertPregnancy(ctx context.Context, rec models.PregnancyRecord) error {
	if _, err := r.pregnancies.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("failed to insert pregnancy record: %w", err)
	}
	return nil
}

// FindPregnancyByID returns the pregnancy record with the given id
// inside the organization, or nil when absent.
func (r *BreedingRepository) FindPregnancyByID(ctx context.Context, orgID, id string) (*models.PregnancyRecord, error) {
	var rec models.PregnancyRecord
	err := r.pregnancies.FindOne(ctx, bson.M{"_id": id, "organization_id": orgID}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find pregnancy record %s: %w", id, err)
	}
	return &rec, nil
}

// FindInProgressPregnancy returns the IN_PROGRESS pregnancy record for
// a cattle, or nil when none exists.
func (r *BreedingRepository) FindInProgressPregnancy(ctx context.Context, orgID, cattleID string) (*models.PregnancyRecord, error) {
	var rec models.PregnancyRecord
	query := bson.M{"organization_id": orgID, "cattle_id": cattleID, "status": models.PregnancyInProgress}
	err := r.pregnancies.FindOne(ctx, query).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find in-progress pregnancy for cattle %s: %w", cattleID, err)
	}
	return &rec, nil
}

// MarkDelivered transitions a pregnancy record to DELIVERED, guarded
// on the current status so concurrent deliveries cannot both win.
func (r *BreedingRepository) MarkDelivered(ctx context.Context, orgID, id string, deliveredAt time.Time, calfID, notes string) error {
	query := bson.M{"_id": id, "organization_id": orgID, "status": models.PregnancyInProgress}
	update := bson.M{"$set": bson.M{
		"status":               models.PregnancyDelivered,
		"actual_delivery_date": deliveredAt,
		"calf_id":              calfID,
		"notes":                notes,
	}}
	res, err := r.pregnancies.UpdateOne(ctx, query, update)
	if err != nil {
		return fmt.Errorf("failed to mark pregnancy %s delivered: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("pregnancy record %s not in progress", id)
	}
	return nil
}

// MarkSeparated transitions a pregnancy record to SEPARATED, guarded
// on the DELIVERED status.
func (r *BreedingRepository) MarkSeparated(ctx context.Context, orgID, id, notes string) error {
	query := bson.M{"_id": id, "organization_id": orgID, "status": models.PregnancyDelivered}
	update := bson.M{"$set": bson.M{
		"status": models.PregnancySeparated,
		"notes":  notes,
	}}
	res, err := r.pregnancies.UpdateOne(ctx, query, update)
	if err != nil {
		return fmt.Errorf("failed to mark pregnancy %s separated: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("pregnancy record %s not delivered", id)
	}
	return nil
}

// ListPregnanciesByCattle returns the pregnancy history of a cattle,
// newest first.
func (r *BreedingRepository) ListPregnanciesByCattle(ctx context.Context, orgID, cattleID string) ([]models.PregnancyRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.pregnancies.Find(ctx, bson.M{"organization_id": orgID, "cattle_id": cattleID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list pregnancies for cattle %s: %w", cattleID, err)
	}
	defer cursor.Close(ctx)

	var recs []models.PregnancyRecord
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("failed to decode pregnancy list: %w", err)
	}
	return recs, nil
}

// DueSeparations returns every DELIVERED pregnancy record across all
// tenants whose delivery happened at least the separation window ago.
func (r *BreedingRepository) DueSeparations(ctx context.Context, cutoff time.Time) ([]models.PregnancyRecord, error) {
	query := bson.M{
		"status":               models.PregnancyDelivered,
		"actual_delivery_date": bson.M{"$lte": cutoff},
	}
	cursor, err := r.pregnancies.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query due separations: %w", err)
	}
	defer cursor.Close(ctx)

	var recs []models.PregnancyRecord
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("failed to decode due separations: %w", err)
	}
	return recs, nil
}

// UpcomingDeliveries returns IN_PROGRESS pregnancy records expected to
// deliver within [from, to].
func (r *BreedingRepository) UpcomingDeliveries(ctx context.Context, from, to time.Time) ([]models.PregnancyRecord, error) {
	query := bson.M{
		"status":                 models.PregnancyInProgress,
		"expected_delivery_date": bson.M{"$gte": from, "$lte": to},
	}
	cursor, err := r.pregnancies.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming deliveries: %w", err)
	}
	defer cursor.Close(ctx)

	var recs []models.PregnancyRecord
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("failed to decode upcoming deliveries: %w", err)
	}
	return recs, nil
}

// CountPregnancies returns the pregnancy pipeline counts for one
// organization, optionally narrowed to one assignee's cattle ids.
func (r *BreedingRepository) CountPregnancies(ctx context.Context, orgID string, cattleIDs []string, now time.Time) (models.PregnancyStats, error) {
	base := bson.M{"organization_id": orgID}
	if cattleIDs != nil {
		base["cattle_id"] = bson.M{"$in": cattleIDs}
	}

	count := func(extra bson.M) (int64, error) {
		query := bson.M{}
		for k, v := range base {
			query[k] = v
		}
		for k, v := range extra {
			query[k] = v
		}
		return r.pregnancies.CountDocuments(ctx, query)
	}

	var stats models.PregnancyStats
	var err error
	if stats.Total, err = count(bson.M{}); err != nil {
		return stats, fmt.Errorf("failed to count pregnancies: %w", err)
	}
	if stats.InProgress, err = count(bson.M{"status": models.PregnancyInProgress}); err != nil {
		return stats, fmt.Errorf("failed to count in-progress pregnancies: %w", err)
	}
	if stats.Delivered, err = count(bson.M{"status": models.PregnancyDelivered}); err != nil {
		return stats, fmt.Errorf("failed to count delivered pregnancies: %w", err)
	}
	if stats.Separated, err = count(bson.M{"status": models.PregnancySeparated}); err != nil {
		return stats, fmt.Errorf("failed to count separated pregnancies: %w", err)
	}
	if stats.PendingDeliveries, err = count(bson.M{
		"status":                 models.PregnancyInProgress,
		"expected_delivery_date": bson.M{"$lte": now},
	}); err != nil {
		return stats, fmt.Errorf("failed to count pending deliveries: %w", err)
	}
	return stats, nil
}
