package models

import (
	"time"

	"urgentsales/server/internal/utils"
)

// Inquiry is a buyer's message about one listing. ListingOrigin and
// ListingID address the listing across both stores; ListingOrigin is
// "primary" or "free".
type Inquiry struct {
	Base          `bson:",inline"`
	ListingOrigin string       `bson:"listing_origin" json:"listing_origin"`
	ListingID     string       `bson:"listing_id" json:"listing_id"`
	UserID        *utils.SixID `bson:"user_id,omitempty" json:"user_id,omitempty"` // nil for guests
	Email         string       `bson:"email" json:"email"`
	Phone         string       `bson:"phone,omitempty" json:"phone,omitempty"`
	Message       string       `bson:"message" json:"message"`
	Sent          bool         `bson:"sent" json:"sent"` // owner email handled by background task
	CreatedAt     time.Time    `bson:"created_at" json:"created_at"`
	Deleted       bool         `bson:"deleted" json:"-"`
}
