// Package listing holds the core domain logic for property listings:
// the canonical listing shape, the approval state machine, the
// dual-source merge and the ownership rules. It has no knowledge of
// HTTP, MongoDB or SQL; persistence is reached through the Source
// interface only.
package listing

import (
	"fmt"
	"time"
)

// Origin identifies which physical store owns a listing record.
// Listing IDs are only unique within their origin; (Origin, ID) is the
// true identity of a listing everywhere in the system.
type Origin string

const (
	// OriginPrimary is the main listings collection, created by
	// account-holding users.
	OriginPrimary Origin = "primary"
	// OriginFree is the legacy guest-submission table. Records there
	// carry contact details instead of a user ID.
	OriginFree Origin = "free"
)

// ParseOrigin converts a raw string to an Origin, returning an error
// for unknown values.
func ParseOrigin(s string) (Origin, error) {
	switch Origin(s) {
	case OriginPrimary, OriginFree:
		return Origin(s), nil
	}
	return "", &ValidationError{Field: "origin", Msg: fmt.Sprintf("unknown origin %q", s)}
}

// ApprovalStatus gates public visibility of a listing.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

// ParseStatus converts a raw string to an ApprovalStatus.
func ParseStatus(s string) (ApprovalStatus, error) {
	switch ApprovalStatus(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return ApprovalStatus(s), nil
	}
	return "", &ValidationError{Field: "status", Msg: fmt.Sprintf("unknown approval status %q", s)}
}

// ContactInfo is the owner identity attached to free-origin listings,
// which have no user account behind them.
type ContactInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Key is the globally unique identity of a listing. IDs from the two
// origins are expected to collide, so a bare ID must never be used to
// address a listing across sources.
type Key struct {
	Origin Origin
	ID     string
}

func (k Key) String() string {
	return string(k.Origin) + ":" + k.ID
}

// Listing is the canonical, source-agnostic listing shape. Source
// adapters are responsible for mapping their native column names and
// types onto it before it reaches any other component.
type Listing struct {
	ID     string         `json:"id"`
	Origin Origin         `json:"origin"`
	Status ApprovalStatus `json:"approval_status"`

	// Decision bookkeeping. ApprovedBy stays empty for free-origin
	// listings: the legacy table has no column for it.
	RejectionReason string     `json:"rejection_reason,omitempty"`
	ApprovedBy      string     `json:"approved_by,omitempty"`
	ApprovalDate    *time.Time `json:"approval_date,omitempty"`

	// Ownership: exactly one of UserID (primary) or Contact (free) is set.
	UserID  string       `json:"user_id,omitempty"`
	Contact *ContactInfo `json:"contact,omitempty"`

	Title        string   `json:"title"`
	Description  string   `json:"description"`
	PropertyType string   `json:"property_type"` // apartment, villa, plot, commercial...
	SaleType     string   `json:"sale_type"`     // sale or rent
	City         string   `json:"city"`
	Location     string   `json:"location"`
	Price        float64  `json:"price"`
	AreaSqFt     float64  `json:"area_sqft"`
	Bedrooms     int      `json:"bedrooms"`
	Bathrooms    int      `json:"bathrooms"`
	Amenities    []string `json:"amenities"`
	ImageURLs    []string `json:"image_urls"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Key returns the (origin, id) identity of the listing.
func (l Listing) Key() Key {
	return Key{Origin: l.Origin, ID: l.ID}
}

// Normalize fills the defaults every consumer may rely on: a new
// submission is always pending and slice fields are never nil.
func (l *Listing) Normalize() {
	if l.Status == "" {
		l.Status = StatusPending
	}
	if l.Amenities == nil {
		l.Amenities = []string{}
	}
	if l.ImageURLs == nil {
		l.ImageURLs = []string{}
	}
}
