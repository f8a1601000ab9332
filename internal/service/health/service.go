// Package health keeps the per-cattle health log: diseases,
// injections and checkups, with org-wide disease alerts for the recent
// window.
package health

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dairyherd/internal/domain/apperr"
	"dairyherd/internal/domain/models"
)

const (
	recentLimit = 5
	// alertWindowDays is how far back the disease alert feed looks.
	alertWindowDays = 30
)

// Repository is the persistence surface of the health log.
type Repository interface {
	Insert(ctx context.Context, rec models.HealthRecord) error
	ListByCattle(ctx context.Context, orgID, cattleID string, recordType models.HealthRecordType, page, limit int64) ([]models.HealthRecord, int64, error)
	Stats(ctx context.Context, orgID, cattleID string, from, to *time.Time) (models.HealthStats, error)
	Recent(ctx context.Context, orgID, cattleID string, from, to *time.Time, limit int64) ([]models.HealthRecord, error)
	Alerts(ctx context.Context, orgID string, since time.Time, cattleIDs []string) ([]models.HealthRecord, error)
}

// CattleDirectory resolves cattle for access checks and alert scoping.
type CattleDirectory interface {
	FindByID(ctx context.Context, orgID, id string) (*models.Cattle, error)
	ListIDsByAssignee(ctx context.Context, orgID, userID string) ([]string, error)
}

// Service implements the health log.
type Service struct {
	repo   Repository
	cattle CattleDirectory
	logger *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewService wires a new health service instance.
func NewService(repo Repository, cattle CattleDirectory, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		cattle: cattle,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// RecordInput carries one health event.
type RecordInput struct {
	CattleID    string
	RecordType  models.HealthRecordType
	Description string
	Medication  string
	Dosage      string
	Timestamp   time.Time
}

// Record appends one health event for a cattle the actor can access.
// A zero timestamp defaults to now.
func (s *Service) Record(ctx context.Context, actor models.Actor, in RecordInput) (*models.HealthRecord, error) {
	switch in.RecordType {
	case models.HealthDisease, models.HealthInjection, models.HealthCheckup:
	default:
		return nil, apperr.Validation("recordType must be DISEASE, INJECTION or CHECKUP")
	}
	if in.Description == "" {
		return nil, apperr.Validation("description is required")
	}
	if _, err := s.accessibleCattle(ctx, actor, in.CattleID); err != nil {
		return nil, err
	}

	ts := in.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}
	rec := models.HealthRecord{
		ID:             s.newID(),
		CattleID:       in.CattleID,
		OrganizationID: actor.OrganizationID,
		RecordType:     in.RecordType,
		Description:    in.Description,
		Medication:     in.Medication,
		Dosage:         in.Dosage,
		Timestamp:      ts,
		RecordedByID:   actor.UserID,
		CreatedAt:      s.now(),
	}

	if err := s.repo.Insert(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("health event recorded",
		zap.String("cattle_id", rec.CattleID),
		zap.String("record_type", string(rec.RecordType)))

	return &rec, nil
}

// History returns a page of one cattle's health records, newest first,
// optionally narrowed to one record type.
func (s *Service) History(ctx context.Context, actor models.Actor, cattleID string, recordType models.HealthRecordType, page, limit int64) ([]models.HealthRecord, int64, error) {
	if _, err := s.accessibleCattle(ctx, actor, cattleID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListByCattle(ctx, actor.OrganizationID, cattleID, recordType, page, limit)
}

// Stats summarizes one cattle's health history by record type,
// optionally over [from, to], together with the most recent records.
func (s *Service) Stats(ctx context.Context, actor models.Actor, cattleID string, from, to *time.Time) (models.HealthStats, []models.HealthRecord, error) {
	if _, err := s.accessibleCattle(ctx, actor, cattleID); err != nil {
		return models.HealthStats{}, nil, err
	}

	stats, err := s.repo.Stats(ctx, actor.OrganizationID, cattleID, from, to)
	if err != nil {
		return models.HealthStats{}, nil, err
	}
	recent, err := s.repo.Recent(ctx, actor.OrganizationID, cattleID, from, to, recentLimit)
	if err != nil {
		return models.HealthStats{}, nil, err
	}
	return stats, recent, nil
}

// Alerts returns the disease records of the last 30 days visible to
// the actor: the whole organization for an admin, only assigned cattle
// for a regular user.
func (s *Service) Alerts(ctx context.Context, actor models.Actor) ([]models.HealthRecord, error) {
	since := s.now().AddDate(0, 0, -alertWindowDays)

	var cattleIDs []string
	if !actor.IsAdmin() {
		ids, err := s.cattle.ListIDsByAssignee(ctx, actor.OrganizationID, actor.UserID)
		if err != nil {
			return nil, err
		}
		if ids == nil {
			ids = []string{}
		}
		cattleIDs = ids
	}
	return s.repo.Alerts(ctx, actor.OrganizationID, since, cattleIDs)
}

func (s *Service) accessibleCattle(ctx context.Context, actor models.Actor, cattleID string) (*models.Cattle, error) {
	cattle, err := s.cattle.FindByID(ctx, actor.OrganizationID, cattleID)
	if err != nil {
		return nil, err
	}
	if cattle == nil {
		return nil, apperr.NotFound("cattle %s not found", cattleID)
	}
	if !actor.IsAdmin() && cattle.AssignedUserID != actor.UserID {
		return nil, apperr.Forbidden("access denied to cattle %s", cattleID)
	}
	return cattle, nil
}
