package models

import "time"

// HealthRecordType classifies health events.
type HealthRecordType string

const (
	HealthDisease   HealthRecordType = "DISEASE"
	HealthInjection HealthRecordType = "INJECTION"
	HealthCheckup   HealthRecordType = "CHECKUP"
)

// HealthRecord is one health event for a cattle. Medication and Dosage
// are free-form and usually set for DISEASE and INJECTION entries.
type HealthRecord struct {
	ID             string           `bson:"_id" json:"id"`
	CattleID       string           `bson:"cattle_id" json:"cattleId"`
	OrganizationID string           `bson:"organization_id" json:"organizationId"`
	RecordType     HealthRecordType `bson:"record_type" json:"recordType"`
	Description    string           `bson:"description" json:"description"`
	Medication     string           `bson:"medication,omitempty" json:"medication,omitempty"`
	Dosage         string           `bson:"dosage,omitempty" json:"dosage,omitempty"`
	Timestamp      time.Time        `bson:"timestamp" json:"timestamp"`
	RecordedByID   string           `bson:"recorded_by_id" json:"recordedById"`
	CreatedAt      time.Time        `bson:"created_at" json:"createdAt"`
}

// HealthStats summarizes the health history of one cattle by record
// type.
type HealthStats struct {
	TotalRecords   int64 `json:"totalRecords"`
	DiseaseCount   int64 `json:"diseaseCount"`
	InjectionCount int64 `json:"injectionCount"`
	CheckupCount   int64 `json:"checkupCount"`
}
