package models

import "time"

// NotificationType classifies reminder notifications.
type NotificationType string

const (
	NotificationPregnancyCheckDue NotificationType = "PREGNANCY_CHECK_DUE"
	NotificationSeparationDue     NotificationType = "SEPARATION_REMINDER"
	NotificationMilestone         NotificationType = "MILESTONE_REMINDER"
)

// Notification is a durable in-app notification, created by the
// reminder sweeps and surfaced in the user's inbox regardless of
// whether the push delivery succeeded.
type Notification struct {
	ID        string           `bson:"_id" json:"id"`
	UserID    string           `bson:"user_id" json:"userId"`
	CattleID  string           `bson:"cattle_id" json:"cattleId"`
	Type      NotificationType `bson:"type" json:"type"`
	Title     string           `bson:"title" json:"title"`
	Message   string           `bson:"message" json:"message"`
	CreatedAt time.Time        `bson:"created_at" json:"createdAt"`
	IsRead    bool             `bson:"is_read" json:"isRead"`
}
