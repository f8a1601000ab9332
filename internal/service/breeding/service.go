// Package breeding implements the breeding lifecycle engine: the
// state machine that moves a dam through semination, pregnancy check,
// delivery and calf separation, with every transition's side effects
// applied in one store transaction.
package breeding

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dairyherd/internal/domain/apperr"
	"dairyherd/internal/domain/models"
)

// Service orchestrates lifecycle operations. All four entry points
// re-verify access on the cattle reachable from the record, plan the
// transition, and apply the full effect set atomically.
type Service struct {
	repo   Repository
	cattle CattleRegistry
	tx     Transactor
	logger *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewService wires a new lifecycle engine instance.
func NewService(repo Repository, cattle CattleRegistry, tx Transactor, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		cattle: cattle,
		tx:     tx,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// RecordSeminationInput carries the fields of a new semination event.
type RecordSeminationInput struct {
	CattleID       string
	SeminationDate time.Time
	Notes          string
}

// RecordSemination opens a new reproductive thread for a dam. Fails
// with InvalidState when an unresolved semination or an in-progress
// pregnancy already exists for the cattle.
func (s *Service) RecordSemination(ctx context.Context, actor models.Actor, in RecordSeminationInput) (*models.SeminationRecord, error) {
	if in.CattleID == "" {
		return nil, apperr.Validation("cattleId is required")
	}
	if in.SeminationDate.IsZero() {
		return nil, apperr.Validation("seminationDate is required")
	}

	dam, err := s.cattle.FindByID(ctx, actor.OrganizationID, in.CattleID)
	if err != nil {
		return nil, err
	}
	if dam == nil {
		return nil, apperr.NotFound("cattle %s not found", in.CattleID)
	}
	if err := checkAccess(actor, dam); err != nil {
		return nil, err
	}

	openSem, err := s.repo.FindOpenSemination(ctx, actor.OrganizationID, dam.ID)
	if err != nil {
		return nil, err
	}
	inProgress, err := s.repo.FindInProgressPregnancy(ctx, actor.OrganizationID, dam.ID)
	if err != nil {
		return nil, err
	}

	rec := models.SeminationRecord{
		ID:             s.newID(),
		CattleID:       dam.ID,
		OrganizationID: actor.OrganizationID,
		SeminationDate: in.SeminationDate,
		Notes:          in.Notes,
		CreatedByID:    actor.UserID,
		CreatedAt:      s.now(),
	}

	effects, err := planSemination(dam, openSem, inProgress, rec)
	if err != nil {
		return nil, err
	}

	if err := s.apply(ctx, actor.OrganizationID, effects); err != nil {
		return nil, err
	}

	s.logger.Info("semination recorded",
		zap.String("cattle_id", dam.ID),
		zap.String("record_id", effects.NewSemination.ID),
		zap.Time("check_date", effects.NewSemination.CheckDate))

	return effects.NewSemination, nil
}

// CheckPregnancyInput carries the outcome of the 15th-day check.
type CheckPregnancyInput struct {
	IsPregnant bool
	Notes      string
}

// CheckPregnancy records the pregnancy check outcome on a semination
// record. On a positive outcome it also opens the pregnancy record and
// marks the dam PREGNANT. The outcome is one-shot: a second call on a
// settled record fails with InvalidState.
func (s *Service) CheckPregnancy(ctx context.Context, actor models.Actor, recordID string, in CheckPregnancyInput) (*models.SeminationRecord, *models.PregnancyRecord, error) {
	rec, err := s.repo.FindSeminationByID(ctx, actor.OrganizationID, recordID)
	if err != nil {
		return nil, nil, err
	}
	if rec == nil {
		return nil, nil, apperr.NotFound("semination record %s not found", recordID)
	}

	dam, err := s.cattle.FindByID(ctx, actor.OrganizationID, rec.CattleID)
	if err != nil {
		return nil, nil, err
	}
	if dam == nil {
		return nil, nil, apperr.NotFound("cattle %s not found", rec.CattleID)
	}
	if err := checkAccess(actor, dam); err != nil {
		return nil, nil, err
	}

	pregnancy := models.PregnancyRecord{
		ID:                 s.newID(),
		CattleID:           rec.CattleID,
		OrganizationID:     actor.OrganizationID,
		SeminationRecordID: rec.ID,
		CreatedByID:        actor.UserID,
		CreatedAt:          s.now(),
	}

	effects, err := planCheck(rec, pregnancy, in.IsPregnant, in.Notes, s.now())
	if err != nil {
		return nil, nil, err
	}

	if err := s.apply(ctx, actor.OrganizationID, effects); err != nil {
		return nil, nil, err
	}

	updated := *rec
	updated.IsPregnant = &effects.Outcome.IsPregnant
	updated.CheckedAt = &effects.Outcome.CheckedAt
	updated.Notes = effects.Outcome.Notes

	s.logger.Info("pregnancy check recorded",
		zap.String("record_id", rec.ID),
		zap.Bool("is_pregnant", in.IsPregnant))

	return &updated, effects.NewPregnancy, nil
}

// RecordDeliveryInput carries the delivery event details.
type RecordDeliveryInput struct {
	ActualDeliveryDate time.Time
	Calf               models.CalfAttributes
	Notes              string
}

// RecordDelivery closes a pregnancy: it creates the calf row, marks
// the record DELIVERED and returns the dam to ACTIVE, all in one
// transaction. Fails with InvalidState unless the record is
// IN_PROGRESS.
func (s *Service) RecordDelivery(ctx context.Context, actor models.Actor, pregnancyID string, in RecordDeliveryInput) (*models.PregnancyRecord, *models.Cattle, error) {
	if in.ActualDeliveryDate.IsZero() {
		return nil, nil, apperr.Validation("actualDeliveryDate is required")
	}
	if in.Calf.TagNumber == "" {
		return nil, nil, apperr.Validation("calf tagNumber is required")
	}
	if in.Calf.Name == "" {
		return nil, nil, apperr.Validation("calf name is required")
	}
	if in.Calf.Gender != models.GenderFemale && in.Calf.Gender != models.GenderMale {
		return nil, nil, apperr.Validation("calf gender must be FEMALE or MALE")
	}

	pregnancy, err := s.repo.FindPregnancyByID(ctx, actor.OrganizationID, pregnancyID)
	if err != nil {
		return nil, nil, err
	}
	if pregnancy == nil {
		return nil, nil, apperr.NotFound("pregnancy record %s not found", pregnancyID)
	}

	dam, err := s.cattle.FindByID(ctx, actor.OrganizationID, pregnancy.CattleID)
	if err != nil {
		return nil, nil, err
	}
	if dam == nil {
		return nil, nil, apperr.NotFound("cattle %s not found", pregnancy.CattleID)
	}
	if err := checkAccess(actor, dam); err != nil {
		return nil, nil, err
	}

	calf := models.Cattle{
		ID:        s.newID(),
		TagNumber: in.Calf.TagNumber,
		Name:      in.Calf.Name,
		Breed:     in.Calf.Breed,
		Gender:    in.Calf.Gender,
		CreatedAt: s.now(),
		UpdatedAt: s.now(),
	}

	effects, err := planDelivery(pregnancy, dam, calf, in.ActualDeliveryDate, in.Notes)
	if err != nil {
		return nil, nil, err
	}

	if err := s.apply(ctx, actor.OrganizationID, effects); err != nil {
		return nil, nil, err
	}

	updated := *pregnancy
	updated.Status = models.PregnancyDelivered
	updated.ActualDeliveryDate = &effects.Delivery.DeliveredAt
	updated.CalfID = effects.Delivery.CalfID
	updated.Notes = effects.Delivery.Notes

	s.logger.Info("delivery recorded",
		zap.String("pregnancy_id", pregnancy.ID),
		zap.String("dam_id", dam.ID),
		zap.String("calf_id", effects.NewCalf.ID))

	return &updated, effects.NewCalf, nil
}

// MarkSeparation ends the calf's dependency period. Only valid on a
// DELIVERED record once 15 days have passed since delivery; an early
// attempt fails with TooEarly carrying the eligible date.
func (s *Service) MarkSeparation(ctx context.Context, actor models.Actor, pregnancyID, notes string) (*models.PregnancyRecord, error) {
	pregnancy, err := s.repo.FindPregnancyByID(ctx, actor.OrganizationID, pregnancyID)
	if err != nil {
		return nil, err
	}
	if pregnancy == nil {
		return nil, apperr.NotFound("pregnancy record %s not found", pregnancyID)
	}

	dam, err := s.cattle.FindByID(ctx, actor.OrganizationID, pregnancy.CattleID)
	if err != nil {
		return nil, err
	}
	if dam == nil {
		return nil, apperr.NotFound("cattle %s not found", pregnancy.CattleID)
	}
	if err := checkAccess(actor, dam); err != nil {
		return nil, err
	}

	var calf *models.Cattle
	if pregnancy.CalfID != "" {
		calf, err = s.cattle.FindByID(ctx, actor.OrganizationID, pregnancy.CalfID)
		if err != nil {
			return nil, err
		}
	}

	effects, err := planSeparation(pregnancy, calf, notes, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.apply(ctx, actor.OrganizationID, effects); err != nil {
		return nil, err
	}

	updated := *pregnancy
	updated.Status = models.PregnancySeparated
	updated.Notes = effects.Separation.Notes

	s.logger.Info("separation marked",
		zap.String("pregnancy_id", pregnancy.ID),
		zap.String("calf_id", pregnancy.CalfID))

	return &updated, nil
}

// SeminationHistory returns the semination records of one cattle,
// newest first.
func (s *Service) SeminationHistory(ctx context.Context, actor models.Actor, cattleID string) ([]models.SeminationRecord, error) {
	cattle, err := s.cattle.FindByID(ctx, actor.OrganizationID, cattleID)
	if err != nil {
		return nil, err
	}
	if cattle == nil {
		return nil, apperr.NotFound("cattle %s not found", cattleID)
	}
	if err := checkAccess(actor, cattle); err != nil {
		return nil, err
	}
	return s.repo.ListSeminationsByCattle(ctx, actor.OrganizationID, cattleID)
}

// PregnancyRecords returns the pregnancy records of one cattle, newest
// first.
func (s *Service) PregnancyRecords(ctx context.Context, actor models.Actor, cattleID string) ([]models.PregnancyRecord, error) {
	cattle, err := s.cattle.FindByID(ctx, actor.OrganizationID, cattleID)
	if err != nil {
		return nil, err
	}
	if cattle == nil {
		return nil, apperr.NotFound("cattle %s not found", cattleID)
	}
	if err := checkAccess(actor, cattle); err != nil {
		return nil, err
	}
	return s.repo.ListPregnanciesByCattle(ctx, actor.OrganizationID, cattleID)
}

// PendingChecks returns the due, unresolved semination records visible
// to the actor: all of the organization's for an admin, only those on
// assigned cattle for a regular user.
func (s *Service) PendingChecks(ctx context.Context, actor models.Actor) ([]models.SeminationRecord, error) {
	recs, err := s.repo.PendingChecks(ctx, actor.OrganizationID, s.now())
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() {
		return recs, nil
	}

	visible := make([]models.SeminationRecord, 0, len(recs))
	for _, rec := range recs {
		cattle, err := s.cattle.FindByID(ctx, actor.OrganizationID, rec.CattleID)
		if err != nil {
			return nil, err
		}
		if cattle != nil && cattle.AssignedUserID == actor.UserID {
			visible = append(visible, rec)
		}
	}
	return visible, nil
}

// Stats summarizes the pregnancy pipeline for the actor's scope.
func (s *Service) Stats(ctx context.Context, actor models.Actor) (models.PregnancyStats, error) {
	var cattleIDs []string
	if !actor.IsAdmin() {
		ids, err := s.cattle.ListIDsByAssignee(ctx, actor.OrganizationID, actor.UserID)
		if err != nil {
			return models.PregnancyStats{}, err
		}
		if ids == nil {
			ids = []string{}
		}
		cattleIDs = ids
	}
	return s.repo.CountPregnancies(ctx, actor.OrganizationID, cattleIDs, s.now())
}

// apply executes one planned effect set inside a single store
// transaction.
func (s *Service) apply(ctx context.Context, orgID string, effects Effects) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if effects.NewSemination != nil {
			if err := s.repo.InsertSemination(ctx, *effects.NewSemination); err != nil {
				return err
			}
		}
		if effects.Outcome != nil {
			out := effects.Outcome
			if err := s.repo.UpdateSeminationOutcome(ctx, orgID, out.RecordID, out.IsPregnant, out.CheckedAt, out.Notes); err != nil {
				return err
			}
		}
		if effects.NewPregnancy != nil {
			if err := s.repo.InsertPregnancy(ctx, *effects.NewPregnancy); err != nil {
				return err
			}
		}
		if effects.NewCalf != nil {
			if err := s.cattle.CreateCalf(ctx, *effects.NewCalf); err != nil {
				return err
			}
		}
		if effects.Delivery != nil {
			d := effects.Delivery
			if err := s.repo.MarkDelivered(ctx, orgID, d.RecordID, d.DeliveredAt, d.CalfID, d.Notes); err != nil {
				return err
			}
		}
		if effects.Separation != nil {
			if err := s.repo.MarkSeparated(ctx, orgID, effects.Separation.RecordID, effects.Separation.Notes); err != nil {
				return err
			}
		}
		for _, su := range effects.StatusUpdates {
			if err := s.cattle.UpdateStatus(ctx, orgID, su.CattleID, su.Status); err != nil {
				return err
			}
		}
		return nil
	})
}
