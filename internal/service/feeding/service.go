// Package feeding records daily feeding events per cattle and
// summarizes them. Records are append-only; corrections are new
// entries.
package feeding

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dairyherd/internal/domain/apperr"
	"dairyherd/internal/domain/models"
)

const recentLimit = 5

// Repository is the persistence surface of the feeding log.
type Repository interface {
	Insert(ctx context.Context, rec models.FeedingRecord) error
	InsertMany(ctx context.Context, recs []models.FeedingRecord) error
	ListByCattle(ctx context.Context, orgID, cattleID string, page, limit int64) ([]models.FeedingRecord, int64, error)
	Stats(ctx context.Context, orgID, cattleID string, from, to *time.Time) (models.FeedingStats, error)
	Recent(ctx context.Context, orgID, cattleID string, from, to *time.Time, limit int64) ([]models.FeedingRecord, error)
}

// CattleDirectory resolves the cattle a record points at.
type CattleDirectory interface {
	FindByID(ctx context.Context, orgID, id string) (*models.Cattle, error)
}

// Service implements the feeding log.
type Service struct {
	repo   Repository
	cattle CattleDirectory
	logger *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewService wires a new feeding service instance.
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

// RecordInput carries one feeding event.
type RecordInput struct {
	CattleID   string
	FeedType   string
	Quantity   float64
	WaterGiven bool
	Timestamp  time.Time
}

// Record appends one feeding event for a cattle the actor can access.
// A zero timestamp defaults to now.
func (s *Service) Record(ctx context.Context, actor models.Actor, in RecordInput) (*models.FeedingRecord, error) {
	if err := validate(in.FeedType, in.Quantity); err != nil {
		return nil, err
	}
	if _, err := s.accessibleCattle(ctx, actor, in.CattleID); err != nil {
		return nil, err
	}

	rec := s.build(actor, in)
	if err := s.repo.Insert(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("feeding recorded",
		zap.String("cattle_id", rec.CattleID),
		zap.String("feed_type", rec.FeedType))

	return &rec, nil
}

// BatchInput carries one feeding event applied to several cattle.
type BatchInput struct {
	CattleIDs  []string
	FeedType   string
	Quantity   float64
	WaterGiven bool
	Timestamp  time.Time
}

// BatchRecord appends the same feeding event for several cattle. All
// cattle must exist and be accessible to the actor or nothing is
// written.
func (s *Service) BatchRecord(ctx context.Context, actor models.Actor, in BatchInput) ([]models.FeedingRecord, error) {
	if len(in.CattleIDs) == 0 {
		return nil, apperr.Validation("cattleIds is required")
	}
	if err := validate(in.FeedType, in.Quantity); err != nil {
		return nil, err
	}

	for _, id := range in.CattleIDs {
		if _, err := s.accessibleCattle(ctx, actor, id); err != nil {
			return nil, apperr.Validation("some cattle not found or access denied")
		}
	}

	recs := make([]models.FeedingRecord, 0, len(in.CattleIDs))
	for _, id := range in.CattleIDs {
		recs = append(recs, s.build(actor, RecordInput{
			CattleID:   id,
			FeedType:   in.FeedType,
			Quantity:   in.Quantity,
			WaterGiven: in.WaterGiven,
			Timestamp:  in.Timestamp,
		}))
	}

	if err := s.repo.InsertMany(ctx, recs); err != nil {
		return nil, err
	}

	s.logger.Info("batch feeding recorded",
		zap.Int("cattle_count", len(recs)),
		zap.String("feed_type", in.FeedType))

	return recs, nil
}

// History returns a page of one cattle's feeding records, newest
// first.
func (s *Service) History(ctx context.Context, actor models.Actor, cattleID string, page, limit int64) ([]models.FeedingRecord, int64, error) {
	if _, err := s.accessibleCattle(ctx, actor, cattleID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListByCattle(ctx, actor.OrganizationID, cattleID, page, limit)
}

// Stats summarizes one cattle's feeding history, optionally over
// [from, to], together with the most recent records.
func (s *Service) Stats(ctx context.Context, actor models.Actor, cattleID string, from, to *time.Time) (models.FeedingStats, []models.FeedingRecord, error) {
	if _, err := s.accessibleCattle(ctx, actor, cattleID); err != nil {
		return models.FeedingStats{}, nil, err
	}

	stats, err := s.repo.Stats(ctx, actor.OrganizationID, cattleID, from, to)
	if err != nil {
		return models.FeedingStats{}, nil, err
	}
	recent, err := s.repo.Recent(ctx, actor.OrganizationID, cattleID, from, to, recentLimit)
	if err != nil {
		return models.FeedingStats{}, nil, err
	}
	return stats, recent, nil
}

func (s *Service) build(actor models.Actor, in RecordInput) models.FeedingRecord {
	ts := in.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}
	return models.FeedingRecord{
		ID:             s.newID(),
		CattleID:       in.CattleID,
		OrganizationID: actor.OrganizationID,
		FeedType:       in.FeedType,
		Quantity:       in.Quantity,
		WaterGiven:     in.WaterGiven,
		Timestamp:      ts,
		RecordedByID:   actor.UserID,
		CreatedAt:      s.now(),
	}
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

func validate(feedType string, quantity float64) error {
	if feedType == "" {
		return apperr.Validation("feedType is required")
	}
	if quantity <= 0 {
		return apperr.Validation("quantity must be positive")
	}
	return nil
}
