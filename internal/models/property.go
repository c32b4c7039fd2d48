package models

import (
	"time"

	"urgentsales/server/internal/utils"
)

// Property is the primary-store listing document. Field names follow
// the collection's snake_case columns; the mongostore adapter maps
// them onto the canonical listing shape.
type Property struct {
	Base            `bson:",inline"`
	UserID          utils.SixID  `bson:"user_id" json:"user_id"`
	Title           string       `bson:"title" json:"title"`
	Description     string       `bson:"description" json:"description"`
	PropertyType    string       `bson:"property_type" json:"property_type"` // apartment, villa, plot, commercial...
	SaleType        string       `bson:"sale_type" json:"sale_type"`         // sale or rent
	City            string       `bson:"city" json:"city"`
	Location        string       `bson:"location" json:"location"`
	Price           float64      `bson:"price" json:"price"`
	AreaSqFt        float64      `bson:"area_sqft" json:"area_sqft"`
	Bedrooms        int          `bson:"bedrooms" json:"bedrooms"`
	Bathrooms       int          `bson:"bathrooms" json:"bathrooms"`
	Amenities       []string     `bson:"amenities" json:"amenities"`
	ImageKeys       []string     `bson:"image_keys" json:"image_keys"` // S3 keys
	ApprovalStatus  string       `bson:"approval_status" json:"approval_status"`
	RejectionReason string       `bson:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`
	ApprovedBy      *utils.SixID `bson:"approved_by,omitempty" json:"approved_by,omitempty"`
	ApprovalDate    *time.Time   `bson:"approval_date,omitempty" json:"approval_date,omitempty"`
	CreatedAt       time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time    `bson:"updated_at" json:"updated_at"`
	Deleted         bool         `bson:"deleted" json:"-"` // Soft delete flag
}
