package breeding

import (
	"context"
	"time"

	"dairyherd/internal/domain/models"
)

// Repository is the persistence surface the lifecycle engine needs for
// semination and pregnancy records.
type Repository interface {
	InsertSemination(ctx context.Context, rec models.SeminationRecord) error
	FindSeminationByID(ctx context.Context, orgID, id string) (*models.SeminationRecord, error)
	FindOpenSemination(ctx context.Context, orgID, cattleID string) (*models.SeminationRecord, error)
	UpdateSeminationOutcome(ctx context.Context, orgID, id string, isPregnant bool, checkedAt time.Time, notes string) error
	ListSeminationsByCattle(ctx context.Context, orgID, cattleID string) ([]models.SeminationRecord, error)
	PendingChecks(ctx context.Context, orgID string, asOf time.Time) ([]models.SeminationRecord, error)

	InsertPregnancy(ctx context.Context, rec models.PregnancyRecord) error
	FindPregnancyByID(ctx context.Context, orgID, id string) (*models.PregnancyRecord, error)
	FindInProgressPregnancy(ctx context.Context, orgID, cattleID string) (*models.PregnancyRecord, error)
	MarkDelivered(ctx context.Context, orgID, id string, deliveredAt time.Time, calfID, notes string) error
	MarkSeparated(ctx context.Context, orgID, id, notes string) error
	ListPregnanciesByCattle(ctx context.Context, orgID, cattleID string) ([]models.PregnancyRecord, error)
	CountPregnancies(ctx context.Context, orgID string, cattleIDs []string, now time.Time) (models.PregnancyStats, error)
}

// CattleRegistry is the narrow view of the cattle registry consumed by
// the lifecycle engine: lookups, status mutation and calf creation.
type CattleRegistry interface {
	FindByID(ctx context.Context, orgID, id string) (*models.Cattle, error)
	UpdateStatus(ctx context.Context, orgID, id string, status models.CattleStatus) error
	CreateCalf(ctx context.Context, calf models.Cattle) error
	ListIDsByAssignee(ctx context.Context, orgID, userID string) ([]string, error)
}

// Transactor runs a function inside one logical store transaction.
// Each lifecycle operation executes its writes through this so partial
// application is never observable.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
