package models

import "time"

// Organization is the tenant isolation boundary. Every cattle, record
// and user belongs to exactly one organization, and every query is
// scoped to one.
type Organization struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
