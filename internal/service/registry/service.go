// Package registry owns cattle identity, lineage and the status
// field: herd CRUD for the API plus the narrow mutation surface the
// breeding lifecycle engine drives.
package registry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dairyherd/internal/domain/apperr"
	"dairyherd/internal/domain/models"
)

// Service implements the cattle registry.
type Service struct {
	repo   Repository
	users  UserDirectory
	logger *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewService wires a new registry instance.
func NewService(repo Repository, users UserDirectory, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		users:  users,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// List returns the herd page visible to the actor. Regular users only
// see cattle assigned to them.
func (s *Service) List(ctx context.Context, actor models.Actor, filter models.CattleFilter) ([]models.Cattle, int64, error) {
	if !actor.IsAdmin() {
		filter.AssignedUserID = actor.UserID
	}
	return s.repo.List(ctx, actor.OrganizationID, filter)
}

// Get returns one cattle with access verified.
func (s *Service) Get(ctx context.Context, actor models.Actor, id string) (*models.Cattle, error) {
	cattle, err := s.repo.FindByID(ctx, actor.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	if cattle == nil {
		return nil, apperr.NotFound("cattle %s not found", id)
	}
	if !actor.IsAdmin() && cattle.AssignedUserID != actor.UserID {
		return nil, apperr.Forbidden("access denied to cattle %s", id)
	}
	return cattle, nil
}

// CreateInput carries the fields of a new cattle entry.
type CreateInput struct {
	TagNumber      string
	Name           string
	Breed          string
	Gender         models.Gender
	DateOfBirth    time.Time
	ParentID       string
	AssignedUserID string
}

// Create registers a new cattle. Admin only; the tag number must be
// unique within the organization and parent and assignee, when given,
// must exist in the same organization.
func (s *Service) Create(ctx context.Context, actor models.Actor, in CreateInput) (*models.Cattle, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Forbidden("admin access required")
	}
	if in.TagNumber == "" {
		return nil, apperr.Validation("tagNumber is required")
	}
	if in.Name == "" {
		return nil, apperr.Validation("name is required")
	}
	if in.Gender != models.GenderFemale && in.Gender != models.GenderMale {
		return nil, apperr.Validation("gender must be FEMALE or MALE")
	}
	if in.DateOfBirth.IsZero() {
		return nil, apperr.Validation("dateOfBirth is required")
	}

	existing, err := s.repo.FindByTag(ctx, actor.OrganizationID, in.TagNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("tag number %s already exists", in.TagNumber)
	}

	if in.ParentID != "" {
		parent, err := s.repo.FindByID(ctx, actor.OrganizationID, in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, apperr.Validation("parent cattle %s not found", in.ParentID)
		}
	}

	if in.AssignedUserID != "" {
		if err := s.checkAssignee(ctx, actor.OrganizationID, in.AssignedUserID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	cattle := models.Cattle{
		ID:             s.newID(),
		TagNumber:      in.TagNumber,
		Name:           in.Name,
		Breed:          in.Breed,
		Gender:         in.Gender,
		DateOfBirth:    in.DateOfBirth,
		ParentID:       in.ParentID,
		AssignedUserID: in.AssignedUserID,
		OrganizationID: actor.OrganizationID,
		Status:         models.StatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, cattle); err != nil {
		return nil, err
	}

	s.logger.Info("cattle registered",
		zap.String("cattle_id", cattle.ID),
		zap.String("tag_number", cattle.TagNumber))

	return &cattle, nil
}

// UpdateInput carries the mutable cattle fields. Empty fields are left
// unchanged.
type UpdateInput struct {
	Name           string
	Breed          string
	Status         models.CattleStatus
	PhotoURL       string
	AssignedUserID string
}

// Update changes the mutable details of one cattle.
func (s *Service) Update(ctx context.Context, actor models.Actor, id string, in UpdateInput) (*models.Cattle, error) {
	cattle, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if in.AssignedUserID != "" {
		if err := s.checkAssignee(ctx, actor.OrganizationID, in.AssignedUserID); err != nil {
			return nil, err
		}
		cattle.AssignedUserID = in.AssignedUserID
	}
	if in.Name != "" {
		cattle.Name = in.Name
	}
	if in.Breed != "" {
		cattle.Breed = in.Breed
	}
	if in.Status != "" {
		cattle.Status = in.Status
	}
	if in.PhotoURL != "" {
		cattle.PhotoURL = in.PhotoURL
	}
	cattle.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, *cattle); err != nil {
		return nil, err
	}
	return cattle, nil
}

// Delete tombstones a cattle as DECEASED. Cattle rows are never hard
// deleted. Admin only.
func (s *Service) Delete(ctx context.Context, actor models.Actor, id string) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("admin access required")
	}
	cattle, err := s.repo.FindByID(ctx, actor.OrganizationID, id)
	if err != nil {
		return err
	}
	if cattle == nil {
		return apperr.NotFound("cattle %s not found", id)
	}
	if err := s.repo.UpdateStatus(ctx, actor.OrganizationID, id, models.StatusDeceased); err != nil {
		return err
	}
	s.logger.Info("cattle tombstoned", zap.String("cattle_id", id))
	return nil
}

// Assign hands a cattle to a user. Admin only.
func (s *Service) Assign(ctx context.Context, actor models.Actor, id, userID string) (*models.Cattle, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Forbidden("admin access required")
	}
	cattle, err := s.repo.FindByID(ctx, actor.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	if cattle == nil {
		return nil, apperr.NotFound("cattle %s not found", id)
	}
	if err := s.checkAssignee(ctx, actor.OrganizationID, userID); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateAssignment(ctx, actor.OrganizationID, id, userID); err != nil {
		return nil, err
	}
	cattle.AssignedUserID = userID
	return cattle, nil
}

// FindByID is the lookup consumed by the lifecycle engine. No access
// check beyond tenant scoping; the engine re-verifies the actor
// itself.
func (s *Service) FindByID(ctx context.Context, orgID, id string) (*models.Cattle, error) {
	return s.repo.FindByID(ctx, orgID, id)
}

// UpdateStatus mutates one cattle's lifecycle status on behalf of the
// engine.
func (s *Service) UpdateStatus(ctx context.Context, orgID, id string, status models.CattleStatus) error {
	return s.repo.UpdateStatus(ctx, orgID, id, status)
}

// CreateCalf registers the offspring row created at delivery. The
// engine supplies a fully populated cattle; the registry only enforces
// tag uniqueness.
func (s *Service) CreateCalf(ctx context.Context, calf models.Cattle) error {
	existing, err := s.repo.FindByTag(ctx, calf.OrganizationID, calf.TagNumber)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperr.Conflict("tag number %s already exists", calf.TagNumber)
	}
	return s.repo.Insert(ctx, calf)
}

// ListIDsByAssignee returns the ids of cattle assigned to one user.
func (s *Service) ListIDsByAssignee(ctx context.Context, orgID, userID string) ([]string, error) {
	return s.repo.ListIDsByAssignee(ctx, orgID, userID)
}

func (s *Service) checkAssignee(ctx context.Context, orgID, userID string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil || user.OrganizationID != orgID {
		return apperr.Validation("assigned user %s not found", userID)
	}
	return nil
}
