package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dairyherd/internal/domain/models"
)

// OrganizationRepository persists tenant organizations.
type OrganizationRepository struct {
	coll *mongo.Collection
}

// NewOrganizationRepository builds an organization repository on the store.
func NewOrganizationRepository(store *Store) *OrganizationRepository {
	return &OrganizationRepository{coll: store.db.Collection(collOrganizations)}
}

// Insert stores a new organization.
func (r *OrganizationRepository) Insert(ctx context.Context, org models.Organization) error {
	if _, err := r.coll.InsertOne(ctx, org); err != nil {
		return fmt.Errorf("failed to insert organization: %w", err)
	}
	return nil
}

// FindByID returns the organization with the given id, or nil when
// absent.
func (r *OrganizationRepository) FindByID(ctx context.Context, id string) (*models.Organization, error) {
	var org models.Organization
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&org)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find organization %s: %w", id, err)
	}
	return &org, nil
}

// List returns a page of organizations plus the total count.
func (r *OrganizationRepository) List(ctx context.Context, page, limit int64) ([]models.Organization, int64, error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count organizations: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer cursor.Close(ctx)

	var orgs []models.Organization
	if err := cursor.All(ctx, &orgs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode organization list: %w", err)
	}
	return orgs, total, nil
}
