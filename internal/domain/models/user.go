package models

import "time"

// Role determines the access scope of a user: admins operate on any
// cattle in their organization, regular users only on cattle assigned
// to them.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// User is a farm worker or administrator account.
type User struct {
	ID             string    `bson:"_id" json:"id"`
	Username       string    `bson:"username" json:"username"`
	Email          string    `bson:"email" json:"email"`
	PasswordHash   string    `bson:"password_hash" json:"-"`
	Role           Role      `bson:"role" json:"role"`
	OrganizationID string    `bson:"organization_id" json:"organizationId"`
	FCMToken       string    `bson:"fcm_token,omitempty" json:"-"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
}

// Actor is the access context attached to every service operation. It
// is resolved once by the auth middleware; services never look it up
// themselves.
type Actor struct {
	UserID         string
	Role           Role
	OrganizationID string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
