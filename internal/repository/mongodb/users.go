package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"dairyherd/internal/domain/models"
)

// UserRepository persists user accounts.
type UserRepository struct {
	coll *mongo.Collection
}

// NewUserRepository builds a user repository on the store.
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{coll: store.db.Collection(collUsers)}
}

// Insert stores a new user.
func (r *UserRepository) Insert(ctx context.Context, u models.User) error {
	if _, err := r.coll.InsertOne(ctx, u); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// FindByID returns the user with the given id, or nil when absent.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user %s: %w", id, err)
	}
	return &u, nil
}

// FindByUsername returns the user with the given username, or nil when
// absent.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user %s: %w", username, err)
	}
	return &u, nil
}

// ExistsByUsernameOrEmail reports whether a user with the given
// username or email already exists inside the organization.
func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, orgID, username, email string) (bool, error) {
	query := bson.M{
		"organization_id": orgID,
		"$or": bson.A{
			bson.M{"username": username},
			bson.M{"email": email},
		},
	}
	count, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return count > 0, nil
}

// UpdateRole changes a user's role.
func (r *UserRepository) UpdateRole(ctx context.Context, id string, role models.Role) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return fmt.Errorf("failed to update role for user %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s not found for role update", id)
	}
	return nil
}

// UpdateFCMToken stores the push device token for a user.
func (r *UserRepository) UpdateFCMToken(ctx context.Context, id, token string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"fcm_token": token}})
	if err != nil {
		return fmt.Errorf("failed to update fcm token for user %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s not found for fcm token update", id)
	}
	return nil
}
