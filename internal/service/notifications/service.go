// Package notifications persists the durable notification inbox and
// dispatches push deliveries through the FCM client. Delivery is
// fire-and-forget: failures are logged by callers and never retried.
package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dairyherd/internal/domain/apperr"
	"dairyherd/internal/domain/models"
	"dairyherd/pkg/clients/fcm"
)

// Repository is the persistence surface of the notification inbox.
type Repository interface {
	Insert(ctx context.Context, n models.Notification) error
	ListByUser(ctx context.Context, userID string, page, limit int64) ([]models.Notification, int64, error)
	MarkRead(ctx context.Context, id, userID string) (int64, error)
}

// UserDirectory resolves users and their device tokens.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateFCMToken(ctx context.Context, id, token string) error
}

// Service implements the notification dispatcher and inbox.
type Service struct {
	repo   Repository
	users  UserDirectory
	pusher fcm.Client
	logger *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewService wires a new notifications service. pusher may be nil when
// push delivery is not configured; notifications are then durable
// only.
func NewService(repo Repository, users UserDirectory, pusher fcm.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		users:  users,
		pusher: pusher,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Persist stores a durable notification in the user's inbox.
func (s *Service) Persist(ctx context.Context, userID, cattleID string, typ models.NotificationType, title, message string) (*models.Notification, error) {
	n := models.Notification{
		ID:        s.newID(),
		UserID:    userID,
		CattleID:  cattleID,
		Type:      typ,
		Title:     title,
		Message:   message,
		CreatedAt: s.now(),
	}
	if err := s.repo.Insert(ctx, n); err != nil {
		return nil, err
	}
	return &n, nil
}

// Deliver attempts a push notification to the user's registered
// device. Users without a device token, and deployments without a
// configured pusher, are silently skipped.
func (s *Service) Deliver(ctx context.Context, userID, title, body string, metadata map[string]string) error {
	if s.pusher == nil {
		return nil
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil || user.FCMToken == "" {
		s.logger.Debug("push skipped, no device token", zap.String("user_id", userID))
		return nil
	}

	_, err = s.pusher.Send(ctx, fcm.SendRequest{
		Token: user.FCMToken,
		Title: title,
		Body:  body,
		Data:  metadata,
	})
	return err
}

// List returns a page of the actor's inbox, newest first, plus the
// total count.
func (s *Service) List(ctx context.Context, actor models.Actor, page, limit int64) ([]models.Notification, int64, error) {
	return s.repo.ListByUser(ctx, actor.UserID, page, limit)
}

// MarkRead flags one of the actor's notifications as read.
func (s *Service) MarkRead(ctx context.Context, actor models.Actor, id string) error {
	matched, err := s.repo.MarkRead(ctx, id, actor.UserID)
	if err != nil {
		return err
	}
	if matched == 0 {
		return apperr.NotFound("notification %s not found", id)
	}
	return nil
}

// RegisterDevice stores the actor's push device token.
func (s *Service) RegisterDevice(ctx context.Context, actor models.Actor, token string) error {
	if token == "" {
		return apperr.Validation("fcmToken is required")
	}
	return s.users.UpdateFCMToken(ctx, actor.UserID, token)
}
