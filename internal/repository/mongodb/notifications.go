package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dairyherd/internal/domain/models"
)

// NotificationRepository persists durable in-app notifications.
type NotificationRepository struct {
	coll *mongo.Collection
}

// NewNotificationRepository builds a notification repository on the store.
func NewNotificationRepository(store *Store) *NotificationRepository {
	return &NotificationRepository{coll: store.db.Collection(collNotifications)}
}

// Insert stores a new notification.
func (r *NotificationRepository) Insert(ctx context.Context, n models.Notification) error {
	if _, err := r.coll.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// ListByUser returns a page of a user's notifications, newest first,
// plus the total count.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, page, limit int64) ([]models.Notification, int64, error) {
	query := bson.M{"user_id": userID}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, 0, fmt.Errorf("failed to decode notification list: %w", err)
	}
	return notifications, total, nil
}

// MarkRead flags one of the user's notifications as read. Returns the
// number of matched documents so callers can distinguish a miss.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string) (int64, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return 0, fmt.Errorf("failed to mark notification %s read: %w", id, err)
	}
	return res.MatchedCount, nil
}
