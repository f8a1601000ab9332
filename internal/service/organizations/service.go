// Package organizations manages tenant organizations.
package organizations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dairyherd/internal/domain/apperr"
	"dairyherd/internal/domain/models"
)

// Repository is the persistence surface for organizations.
type Repository interface {
	Insert(ctx context.Context, org models.Organization) error
	FindByID(ctx context.Context, id string) (*models.Organization, error)
	List(ctx context.Context, page, limit int64) ([]models.Organization, int64, error)
}

// Service implements organization management.
type Service struct {
	repo   Repository
	logger *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewService wires a new organizations service instance.
func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Create registers a new organization. Admin only.
func (s *Service) Create(ctx context.Context, actor models.Actor, name string) (*models.Organization, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Forbidden("admin access required")
	}
	if name == "" {
		return nil, apperr.Validation("name is required")
	}

	org := models.Organization{
		ID:        s.newID(),
		Name:      name,
		CreatedAt: s.now(),
	}
	if err := s.repo.Insert(ctx, org); err != nil {
		return nil, err
	}

	s.logger.Info("organization created", zap.String("organization_id", org.ID))
	return &org, nil
}

// Get returns one organization by id.
func (s *Service) Get(ctx context.Context, id string) (*models.Organization, error) {
	org, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, apperr.NotFound("organization %s not found", id)
	}
	return org, nil
}

// List returns a page of organizations plus the total count.
func (s *Service) List(ctx context.Context, page, limit int64) ([]models.Organization, int64, error) {
	return s.repo.List(ctx, page, limit)
}

// FindByID is the lookup consumed by the auth service when validating
// registrations.
func (s *Service) FindByID(ctx context.Context, id string) (*models.Organization, error) {
	return s.repo.FindByID(ctx, id)
}
