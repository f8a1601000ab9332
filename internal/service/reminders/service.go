// Package reminders implements the scheduled sweeps that discover
// breeding records past a date threshold and emit reminder
// notifications for them. Each sweep processes its due set item by
// item: a failure on one record is logged and never aborts the rest.
package reminders

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"dairyherd/internal/domain/models"
)

// BreedingReader is the query surface the sweeps need over breeding
// records. Sweeps run across all tenants.
type BreedingReader interface {
	DueChecks(ctx context.Context, asOf time.Time) ([]models.SeminationRecord, error)
	DueSeparations(ctx context.Context, cutoff time.Time) ([]models.PregnancyRecord, error)
	UpcomingDeliveries(ctx context.Context, from, to time.Time) ([]models.PregnancyRecord, error)
}

// CattleReader resolves the cattle a record points at.
type CattleReader interface {
	FindByID(ctx context.Context, orgID, id string) (*models.Cattle, error)
}

// Dispatcher is the notification collaborator: a durable inbox write
// plus a fire-and-forget push delivery.
type Dispatcher interface {
	Persist(ctx context.Context, userID, cattleID string, typ models.NotificationType, title, message string) (*models.Notification, error)
	Deliver(ctx context.Context, userID, title, body string, metadata map[string]string) error
}

// Service runs the reminder sweeps.
type Service struct {
	breeding BreedingReader
	cattle   CattleReader
	notifier Dispatcher
	logger   *zap.Logger

	now func() time.Time
}

// NewService wires a new reminder sweep service.
func NewService(breeding BreedingReader, cattle CattleReader, notifier Dispatcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		breeding: breeding,
		cattle:   cattle,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// SweepPregnancyChecks finds semination records whose check date has
// passed without an outcome and reminds the cattle's assigned user,
// falling back to the record's creator when unassigned. Reminders
// repeat every sweep until the check is recorded; the nagging is
// intended. Returns the number of reminders emitted.
func (s *Service) SweepPregnancyChecks(ctx context.Context) (int, error) {
	s.logger.Info("running pregnancy check sweep")

	due, err := s.breeding.DueChecks(ctx, endOfDay(s.now()))
	if err != nil {
		return 0, fmt.Errorf("query due checks: %w", err)
	}
	s.logger.Info("pending pregnancy checks found", zap.Int("count", len(due)))

	emitted := 0
	for _, rec := range due {
		if err := s.remindCheck(ctx, rec); err != nil {
			s.logger.Error("failed to send pregnancy check reminder",
				zap.String("record_id", rec.ID),
				zap.String("cattle_id", rec.CattleID),
				zap.Error(err))
			continue
		}
		emitted++
	}

	s.logger.Info("pregnancy check sweep completed", zap.Int("emitted", emitted))
	return emitted, nil
}

func (s *Service) remindCheck(ctx context.Context, rec models.SeminationRecord) error {
	cattle, err := s.cattle.FindByID(ctx, rec.OrganizationID, rec.CattleID)
	if err != nil {
		return err
	}
	if cattle == nil {
		return fmt.Errorf("cattle %s not found", rec.CattleID)
	}

	target := cattle.AssignedUserID
	if target == "" {
		target = rec.CreatedByID
	}

	title := "Pregnancy Check Due"
	message := fmt.Sprintf("Pregnancy check is due for %s (%s)", cattle.Name, cattle.TagNumber)

	if _, err := s.notifier.Persist(ctx, target, cattle.ID, models.NotificationPregnancyCheckDue, title, message); err != nil {
		return err
	}

	if err := s.notifier.Deliver(ctx, target, title, message, map[string]string{
		"type":      string(models.NotificationPregnancyCheckDue),
		"cattleId":  cattle.ID,
		"cattleTag": cattle.TagNumber,
	}); err != nil {
		// Push failure does not undo the durable notification.
		s.logger.Warn("push delivery failed for check reminder",
			zap.String("cattle_id", cattle.ID), zap.Error(err))
	}
	return nil
}

// SweepSeparations finds delivered pregnancies whose calf has been
// with the dam for at least the separation window and is still not
// separated, and reminds the dam's assigned user. The window is open
// ended so a missed sweep run does not permanently drop the reminder.
// Returns the number of reminders emitted.
func (s *Service) SweepSeparations(ctx context.Context) (int, error) {
	s.logger.Info("running separation sweep")

	cutoff := endOfDay(s.now()).AddDate(0, 0, -models.SeparationAfterDays)
	due, err := s.breeding.DueSeparations(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("query due separations: %w", err)
	}
	s.logger.Info("pending separations found", zap.Int("count", len(due)))

	emitted := 0
	for _, rec := range due {
		if err := s.remindSeparation(ctx, rec); err != nil {
			s.logger.Error("failed to send separation reminder",
				zap.String("record_id", rec.ID),
				zap.String("cattle_id", rec.CattleID),
				zap.Error(err))
			continue
		}
		emitted++
	}

	s.logger.Info("separation sweep completed", zap.Int("emitted", emitted))
	return emitted, nil
}

func (s *Service) remindSeparation(ctx context.Context, rec models.PregnancyRecord) error {
	dam, err := s.cattle.FindByID(ctx, rec.OrganizationID, rec.CattleID)
	if err != nil {
		return err
	}
	if dam == nil {
		return fmt.Errorf("cattle %s not found", rec.CattleID)
	}

	calfName := "calf"
	if rec.CalfID != "" {
		if calf, err := s.cattle.FindByID(ctx, rec.OrganizationID, rec.CalfID); err == nil && calf != nil {
			calfName = calf.Name
		}
	}

	target := dam.AssignedUserID
	if target == "" {
		target = rec.CreatedByID
	}

	title := "Separation Reminder"
	message := fmt.Sprintf("Time to separate %s from %s", calfName, dam.Name)

	if _, err := s.notifier.Persist(ctx, target, dam.ID, models.NotificationSeparationDue, title, message); err != nil {
		return err
	}

	if err := s.notifier.Deliver(ctx, target, title, message, map[string]string{
		"type":     string(models.NotificationSeparationDue),
		"cattleId": dam.ID,
		"calfId":   rec.CalfID,
	}); err != nil {
		s.logger.Warn("push delivery failed for separation reminder",
			zap.String("cattle_id", dam.ID), zap.Error(err))
	}
	return nil
}

// SweepMilestones finds in-progress pregnancies expected to deliver
// within the next week and notifies the assigned user of the days
// remaining. One durable notification is persisted per due record per
// run; a push failure is logged and does not roll it back. Returns the
// number of reminders emitted.
func (s *Service) SweepMilestones(ctx context.Context) (int, error) {
	s.logger.Info("running pregnancy milestone sweep")

	now := s.now()
	due, err := s.breeding.UpcomingDeliveries(ctx, now, now.AddDate(0, 0, 7))
	if err != nil {
		return 0, fmt.Errorf("query upcoming deliveries: %w", err)
	}
	s.logger.Info("upcoming deliveries found", zap.Int("count", len(due)))

	emitted := 0
	for _, rec := range due {
		if err := s.remindMilestone(ctx, rec, now); err != nil {
			s.logger.Error("failed to send milestone reminder",
				zap.String("record_id", rec.ID),
				zap.String("cattle_id", rec.CattleID),
				zap.Error(err))
			continue
		}
		emitted++
	}

	s.logger.Info("pregnancy milestone sweep completed", zap.Int("emitted", emitted))
	return emitted, nil
}

func (s *Service) remindMilestone(ctx context.Context, rec models.PregnancyRecord, now time.Time) error {
	dam, err := s.cattle.FindByID(ctx, rec.OrganizationID, rec.CattleID)
	if err != nil {
		return err
	}
	if dam == nil {
		return fmt.Errorf("cattle %s not found", rec.CattleID)
	}

	target := dam.AssignedUserID
	if target == "" {
		target = rec.CreatedByID
	}

	days := daysUntil(now, rec.ExpectedDeliveryDate)
	title := "Pregnancy Milestone"
	message := fmt.Sprintf("%s is expected to deliver in %d day(s)", dam.Name, days)

	if _, err := s.notifier.Persist(ctx, target, dam.ID, models.NotificationMilestone, title, message); err != nil {
		return err
	}

	if err := s.notifier.Deliver(ctx, target, title, message, map[string]string{
		"type":                 string(models.NotificationMilestone),
		"cattleId":             dam.ID,
		"cattleTag":            dam.TagNumber,
		"expectedDeliveryDate": rec.ExpectedDeliveryDate.Format(time.RFC3339),
	}); err != nil {
		s.logger.Warn("push delivery failed for milestone reminder",
			zap.String("cattle_id", dam.ID), zap.Error(err))
	}
	return nil
}

// endOfDay returns the last instant of t's calendar day.
func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}

// daysUntil is the ceiling of the day difference between now and
// target.
func daysUntil(now, target time.Time) int {
	return int(math.Ceil(target.Sub(now).Hours() / 24))
}
