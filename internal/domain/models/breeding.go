package models

import "time"

// Breeding lifecycle date arithmetic. The check falls 15 days after
// semination, expected delivery 9 calendar months after, and a calf
// may be separated from the dam 15 days after delivery.
const (
	CheckAfterDays      = 15
	GestationMonths     = 9
	SeparationAfterDays = 15
)

// SeminationRecord is the start of one reproductive thread for a dam.
// CheckDate is derived once at creation and never recomputed.
// IsPregnant is tri-state: nil until the outcome of the pregnancy
// check is recorded, then fixed.
type SeminationRecord struct {
	ID             string     `bson:"_id" json:"id"`
	CattleID       string     `bson:"cattle_id" json:"cattleId"`
	OrganizationID string     `bson:"organization_id" json:"organizationId"`
	SeminationDate time.Time  `bson:"semination_date" json:"seminationDate"`
	CheckDate      time.Time  `bson:"check_date" json:"checkDate"`
	IsPregnant     *bool      `bson:"is_pregnant,omitempty" json:"isPregnant"`
	CheckedAt      *time.Time `bson:"checked_at,omitempty" json:"checkedAt,omitempty"`
	Notes          string     `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedByID    string     `bson:"created_by_id" json:"createdById"`
	CreatedAt      time.Time  `bson:"created_at" json:"createdAt"`
}

// Checked reports whether the pregnancy check outcome has been
// recorded for this semination.
func (r SeminationRecord) Checked() bool {
	return r.IsPregnant != nil
}

// PregnancyStatus is the linear state of a pregnancy record. There are
// no back-transitions.
type PregnancyStatus string

const (
	PregnancyInProgress PregnancyStatus = "IN_PROGRESS"
	PregnancyDelivered  PregnancyStatus = "DELIVERED"
	PregnancySeparated  PregnancyStatus = "SEPARATED"
)

// PregnancyRecord tracks a confirmed pregnancy from the positive check
// through delivery and calf separation. One-to-one with the
// originating SeminationRecord.
type PregnancyRecord struct {
	ID                   string          `bson:"_id" json:"id"`
	CattleID             string          `bson:"cattle_id" json:"cattleId"`
	OrganizationID       string          `bson:"organization_id" json:"organizationId"`
	SeminationRecordID   string          `bson:"semination_record_id" json:"seminationRecordId"`
	ExpectedDeliveryDate time.Time       `bson:"expected_delivery_date" json:"expectedDeliveryDate"`
	ActualDeliveryDate   *time.Time      `bson:"actual_delivery_date,omitempty" json:"actualDeliveryDate,omitempty"`
	CalfID               string          `bson:"calf_id,omitempty" json:"calfId,omitempty"`
	Status               PregnancyStatus `bson:"status" json:"status"`
	Notes                string          `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedByID          string          `bson:"created_by_id" json:"createdById"`
	CreatedAt            time.Time       `bson:"created_at" json:"createdAt"`
}

// SeparationEligibleAt returns the first instant at which the calf of
// a delivered pregnancy may be separated.
func (p PregnancyRecord) SeparationEligibleAt() time.Time {
	if p.ActualDeliveryDate == nil {
		return time.Time{}
	}
	return p.ActualDeliveryDate.AddDate(0, 0, SeparationAfterDays)
}

// PregnancyStats summarizes the breeding pipeline for a herd scope.
type PregnancyStats struct {
	Total             int64 `json:"totalPregnancies"`
	InProgress        int64 `json:"inProgressPregnancies"`
	Delivered         int64 `json:"deliveredPregnancies"`
	Separated         int64 `json:"separatedPregnancies"`
	PendingDeliveries int64 `json:"pendingDeliveries"`
}
