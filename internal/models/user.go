package models

import (
	"time"
)

// UserRole mirrors listing.Role values as stored on user documents.
type UserRole string

const (
	UserRoleUser         UserRole = "user"
	UserRoleAgent        UserRole = "agent"
	UserRoleCompanyAdmin UserRole = "company_admin"
	UserRoleAdmin        UserRole = "admin"
)

// NotificationPreferences lets users silence individual channels.
type NotificationPreferences struct {
	Email    bool `bson:"email" json:"email"`
	WhatsApp bool `bson:"whatsapp" json:"whatsapp"`
}

// User represents an account holder: owner of primary listings and,
// for staff roles, an approval actor.
type User struct {
	Base                    `bson:",inline"`
	Name                    string                   `bson:"name" json:"name"`
	Email                   string                   `bson:"email" json:"email"`
	Phone                   string                   `bson:"phone" json:"phone"`
	PasswordHash            string                   `bson:"password" json:"-"`
	Role                    UserRole                 `bson:"role" json:"role"`
	Suspended               bool                     `bson:"suspended" json:"suspended"`
	NotificationPreferences *NotificationPreferences `bson:"notification_preferences,omitempty" json:"notification_preferences,omitempty"`
	FreeTierListings        *int                     `bson:"free_tier_listings,omitempty" json:"free_tier_listings,omitempty"` // User-specific override
	CreatedAt               time.Time                `bson:"created_at" json:"created_at"`
	UpdatedAt               time.Time                `bson:"updated_at" json:"updated_at"`
	Deleted                 bool                     `bson:"deleted" json:"-"` // Soft delete flag
}

// WantsEmail reports whether owner email notifications are enabled.
// Unset preferences default to on.
func (u *User) WantsEmail() bool {
	return u.NotificationPreferences == nil || u.NotificationPreferences.Email
}

// WantsWhatsApp reports whether owner WhatsApp notifications are
// enabled. Unset preferences default to on.
func (u *User) WantsWhatsApp() bool {
	return u.NotificationPreferences == nil || u.NotificationPreferences.WhatsApp
}
