package models

import "time"

// FeedingRecord is one feeding event for a cattle. Quantity is in
// kilograms of the given feed type.
type FeedingRecord struct {
	ID             string    `bson:"_id" json:"id"`
	CattleID       string    `bson:"cattle_id" json:"cattleId"`
	OrganizationID string    `bson:"organization_id" json:"organizationId"`
	FeedType       string    `bson:"feed_type" json:"feedType"`
	Quantity       float64   `bson:"quantity" json:"quantity"`
	WaterGiven     bool      `bson:"water_given" json:"waterGiven"`
	Timestamp      time.Time `bson:"timestamp" json:"timestamp"`
	RecordedByID   string    `bson:"recorded_by_id" json:"recordedById"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
}

// FeedingStats summarizes the feeding history of one cattle, optionally
// over a date range.
type FeedingStats struct {
	TotalFeedings   int64   `json:"totalFeedings"`
	TotalQuantity   float64 `json:"totalQuantity"`
	WaterGivenCount int64   `json:"waterGivenCount"`
	AverageQuantity float64 `json:"averageQuantity"`
}
