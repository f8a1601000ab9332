package breeding

import (
	"time"

	"dairyherd/internal/domain/apperr"
	"dairyherd/internal/domain/models"
)

// The lifecycle engine separates deciding from doing: each operation
// first plans the full effect set for its event against an in-memory
// snapshot of the record chain, then the service applies the plan
// inside one store transaction. Every status mutation and record write
// an event causes is visible here, in one place.

// StatusUpdate is one cattle status mutation to apply.
type StatusUpdate struct {
	CattleID string
	Status   models.CattleStatus
}

// SeminationOutcome is the update applied to a semination record when
// its pregnancy check result is recorded.
type SeminationOutcome struct {
	RecordID   string
	IsPregnant bool
	CheckedAt  time.Time
	Notes      string
}

// DeliveryUpdate transitions a pregnancy record to DELIVERED.
type DeliveryUpdate struct {
	RecordID    string
	DeliveredAt time.Time
	CalfID      string
	Notes       string
}

// SeparationUpdate transitions a pregnancy record to SEPARATED.
type SeparationUpdate struct {
	RecordID string
	Notes    string
}

// Effects describes every side effect of one lifecycle event. Zero or
// more of the fields are set depending on the event; the service
// applies all of them atomically.
type Effects struct {
	NewSemination *models.SeminationRecord
	Outcome       *SeminationOutcome
	NewPregnancy  *models.PregnancyRecord
	Delivery      *DeliveryUpdate
	Separation    *SeparationUpdate
	NewCalf       *models.Cattle
	StatusUpdates []StatusUpdate
}

// checkAccess enforces the role-scoped access rule on the cattle an
// operation reaches: a USER actor only touches cattle assigned to
// them, an ADMIN any cattle in their organization.
func checkAccess(actor models.Actor, cattle *models.Cattle) error {
	if cattle.OrganizationID != actor.OrganizationID {
		return apperr.NotFound("cattle %s not found", cattle.ID)
	}
	if actor.IsAdmin() {
		return nil
	}
	if cattle.AssignedUserID != actor.UserID {
		return apperr.Forbidden("access denied to cattle %s", cattle.ID)
	}
	return nil
}

// planSemination validates a new semination against the dam's open
// reproductive thread and derives the check date. At most one thread
// may be open per cattle: an unresolved semination or an in-progress
// pregnancy blocks a new one.
func planSemination(dam *models.Cattle, openSem *models.SeminationRecord, inProgress *models.PregnancyRecord, rec models.SeminationRecord) (Effects, error) {
	if openSem != nil {
		return Effects{}, apperr.InvalidState("cattle %s already has an unresolved semination record", dam.ID)
	}
	if inProgress != nil {
		return Effects{}, apperr.InvalidState("cattle %s has a pregnancy in progress", dam.ID)
	}

	rec.CheckDate = rec.SeminationDate.AddDate(0, 0, models.CheckAfterDays)

	effects := Effects{NewSemination: &rec}

	// A PREGNANT status without an in-progress pregnancy record is
	// inconsistent data; repair it back to ACTIVE.
	if dam.Status == models.StatusPregnant {
		effects.StatusUpdates = append(effects.StatusUpdates, StatusUpdate{CattleID: dam.ID, Status: models.StatusActive})
	}

	return effects, nil
}

// planCheck records the pregnancy check outcome. The outcome is a
// one-shot: once IsPregnant is set the record is settled and a second
// check is rejected. A positive outcome additionally opens a pregnancy
// record and marks the dam PREGNANT.
func planCheck(rec *models.SeminationRecord, pregnancy models.PregnancyRecord, isPregnant bool, notes string, now time.Time) (Effects, error) {
	if rec.Checked() {
		return Effects{}, apperr.InvalidState("semination record %s already has a check outcome", rec.ID)
	}

	if notes == "" {
		notes = rec.Notes
	}

	effects := Effects{
		Outcome: &SeminationOutcome{
			RecordID:   rec.ID,
			IsPregnant: isPregnant,
			CheckedAt:  now,
			Notes:      notes,
		},
	}

	if isPregnant {
		pregnancy.ExpectedDeliveryDate = rec.SeminationDate.AddDate(0, models.GestationMonths, 0)
		pregnancy.Status = models.PregnancyInProgress
		effects.NewPregnancy = &pregnancy
		effects.StatusUpdates = append(effects.StatusUpdates, StatusUpdate{CattleID: rec.CattleID, Status: models.StatusPregnant})
	}

	return effects, nil
}

// planDelivery validates and describes a delivery: the calf row, the
// record transition and the dam's return to ACTIVE. The calf inherits
// the dam's assignee and starts in the pending dependency period.
func planDelivery(pregnancy *models.PregnancyRecord, dam *models.Cattle, calf models.Cattle, deliveredAt time.Time, notes string) (Effects, error) {
	if pregnancy.Status != models.PregnancyInProgress {
		return Effects{}, apperr.InvalidState("pregnancy record %s is not in progress", pregnancy.ID)
	}

	if notes == "" {
		notes = pregnancy.Notes
	}

	calf.DateOfBirth = deliveredAt
	calf.ParentID = dam.ID
	calf.AssignedUserID = dam.AssignedUserID
	calf.OrganizationID = dam.OrganizationID
	calf.Status = models.StatusSeparatedPending

	return Effects{
		NewCalf: &calf,
		Delivery: &DeliveryUpdate{
			RecordID:    pregnancy.ID,
			DeliveredAt: deliveredAt,
			CalfID:      calf.ID,
			Notes:       notes,
		},
		StatusUpdates: []StatusUpdate{{CattleID: dam.ID, Status: models.StatusActive}},
	}, nil
}

// planSeparation validates the separation window and describes the
// record transition plus the calf's release from its pending status.
func planSeparation(pregnancy *models.PregnancyRecord, calf *models.Cattle, notes string, now time.Time) (Effects, error) {
	if pregnancy.Status != models.PregnancyDelivered {
		return Effects{}, apperr.InvalidState("pregnancy record %s is not delivered", pregnancy.ID)
	}

	eligibleAt := pregnancy.SeparationEligibleAt()
	if now.Before(eligibleAt) {
		return Effects{}, apperr.TooEarly(eligibleAt, "separation allowed from %s", eligibleAt.Format("2006-01-02"))
	}

	if notes == "" {
		notes = pregnancy.Notes
	}

	effects := Effects{
		Separation: &SeparationUpdate{RecordID: pregnancy.ID, Notes: notes},
	}
	if calf != nil && calf.Status == models.StatusSeparatedPending {
		effects.StatusUpdates = append(effects.StatusUpdates, StatusUpdate{CattleID: calf.ID, Status: models.StatusActive})
	}

	return effects, nil
}
