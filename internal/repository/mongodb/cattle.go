package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dairyherd/internal/domain/models"
)

// CattleRepository persists cattle documents. Every lookup filters by
// organization id; a caller can never see another tenant's herd.
type CattleRepository struct {
	coll *mongo.Collection
}

// NewCattleRepository builds a cattle repository on the store.
func NewCattleRepository(store *Store) *CattleRepository {
	return &CattleRepository{coll: store.db.Collection(collCattle)}
}

// Insert stores a new cattle document.
func (r *CattleRepository) Insert(ctx context.Context, c models.Cattle) error {
	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("failed to insert cattle: %w", err)
	}
	return nil
}

// FindByID returns the cattle with the given id inside the
// organization, or nil when absent.
func (r *CattleRepository) FindByID(ctx context.Context, orgID, id string) (*models.Cattle, error) {
	var c models.Cattle
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "organization_id": orgID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find cattle %s: %w", id, err)
	}
	return &c, nil
}

// FindByTag returns the cattle with the given tag number inside the
// organization, or nil when absent. Tag numbers are unique per tenant.
func (r *CattleRepository) FindByTag(ctx context.Context, orgID, tagNumber string) (*models.Cattle, error) {
	var c models.Cattle
	err := r.coll.FindOne(ctx, bson.M{"tag_number": tagNumber, "organization_id": orgID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find cattle by tag %s: %w", tagNumber, err)
	}
	return &c, nil
}

// List returns a page of cattle plus the total count for the filter.
func (r *CattleRepository) List(ctx context.Context, orgID string, filter models.CattleFilter) ([]models.Cattle, int64, error) {
	query := bson.M{"organization_id": orgID}
	if filter.AssignedUserID != "" {
		query["assigned_user_id"] = filter.AssignedUserID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: filter.Search, Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"tag_number": pattern},
			bson.M{"breed": pattern},
		}
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count cattle: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list cattle: %w", err)
	}
	defer cursor.Close(ctx)

	var cattle []models.Cattle
	if err := cursor.All(ctx, &cattle); err != nil {
		return nil, 0, fmt.Errorf("failed to decode cattle list: %w", err)
	}
	return cattle, total, nil
}

// Update replaces mutable cattle fields.
func (r *CattleRepository) Update(ctx context.Context, c models.Cattle) error {
	update := bson.M{"$set": bson.M{
		"name":             c.Name,
		"breed":            c.Breed,
		"status":           c.Status,
		"photo_url":        c.PhotoURL,
		"assigned_user_id": c.AssignedUserID,
		"updated_at":       c.UpdatedAt,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": c.ID, "organization_id": c.OrganizationID}, update)
	if err != nil {
		return fmt.Errorf("failed to update cattle %s: %w", c.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("cattle %s not found for update", c.ID)
	}
	return nil
}

// UpdateStatus sets the lifecycle status of one cattle.
func (r *CattleRepository) UpdateStatus(ctx context.Context, orgID, id string, status models.CattleStatus) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "organization_id": orgID},
		bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return fmt.Errorf("failed to update cattle %s status: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("cattle %s not found for status update", id)
	}
	return nil
}

// ListIDsByAssignee returns the ids of every cattle assigned to the
// given user inside the organization.
func (r *CattleRepository) ListIDsByAssignee(ctx context.Context, orgID, userID string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.coll.Find(ctx, bson.M{"organization_id": orgID, "assigned_user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list cattle ids for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode cattle id list: %w", err)
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// UpdateAssignment sets the assigned user of one cattle.
func (r *CattleRepository) UpdateAssignment(ctx context.Context, orgID, id, userID string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "organization_id": orgID},
		bson.M{"$set": bson.M{"assigned_user_id": userID}})
	if err != nil {
		return fmt.Errorf("failed to assign cattle %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("cattle %s not found for assignment", id)
	}
	return nil
}
