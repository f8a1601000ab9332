package models

import "time"

// CattleStatus is the current lifecycle status of a cattle individual.
type CattleStatus string

const (
	// StatusActive is the normal resting state.
	StatusActive CattleStatus = "ACTIVE"
	// StatusPregnant is set when a pregnancy check comes back positive
	// and cleared again when delivery is recorded.
	StatusPregnant CattleStatus = "PREGNANT"
	// StatusSeparatedPending marks a calf still in its dependency
	// period, before separation from the dam is recorded.
	StatusSeparatedPending CattleStatus = "SEPARATED_PENDING"
	// StatusDeceased is a tombstone. Cattle are never hard-deleted.
	StatusDeceased CattleStatus = "DECEASED"
)

// Gender of a cattle individual.
type Gender string

const (
	GenderFemale Gender = "FEMALE"
	GenderMale   Gender = "MALE"
)

// Cattle is one animal in the herd. TagNumber is unique within an
// organization. ParentID is a weak back-reference to the dam; deleting
// (tombstoning) the dam does not cascade.
type Cattle struct {
	ID             string       `bson:"_id" json:"id"`
	TagNumber      string       `bson:"tag_number" json:"tagNumber"`
	Name           string       `bson:"name" json:"name"`
	Breed          string       `bson:"breed" json:"breed"`
	Gender         Gender       `bson:"gender" json:"gender"`
	DateOfBirth    time.Time    `bson:"date_of_birth" json:"dateOfBirth"`
	PhotoURL       string       `bson:"photo_url,omitempty" json:"photoUrl,omitempty"`
	ParentID       string       `bson:"parent_id,omitempty" json:"parentId,omitempty"`
	AssignedUserID string       `bson:"assigned_user_id,omitempty" json:"assignedUserId,omitempty"`
	OrganizationID string       `bson:"organization_id" json:"organizationId"`
	Status         CattleStatus `bson:"status" json:"status"`
	CreatedAt      time.Time    `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time    `bson:"updated_at" json:"updatedAt"`
}

// CattleFilter narrows herd listings.
type CattleFilter struct {
	AssignedUserID string
	Status         CattleStatus
	Search         string
	Page           int64
	Limit          int64
}

// CalfAttributes are the birth details captured when a delivery is
// recorded. Parent, assignee, organization and date of birth are
// derived from the dam and the delivery, not supplied by the caller.
type CalfAttributes struct {
	TagNumber string `json:"tagNumber"`
	Name      string `json:"name"`
	Breed     string `json:"breed"`
	Gender    Gender `json:"gender"`
}
