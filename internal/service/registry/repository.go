package registry

import (
	"context"

	"dairyherd/internal/domain/models"
)

// Repository is the persistence surface of the cattle registry.
type Repository interface {
	Insert(ctx context.Context, c models.Cattle) error
	FindByID(ctx context.Context, orgID, id string) (*models.Cattle, error)
	FindByTag(ctx context.Context, orgID, tagNumber string) (*models.Cattle, error)
	List(ctx context.Context, orgID string, filter models.CattleFilter) ([]models.Cattle, int64, error)
	Update(ctx context.Context, c models.Cattle) error
	UpdateStatus(ctx context.Context, orgID, id string, status models.CattleStatus) error
	UpdateAssignment(ctx context.Context, orgID, id, userID string) error
	ListIDsByAssignee(ctx context.Context, orgID, userID string) ([]string, error)
}

// UserDirectory resolves user references when validating assignments.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}
