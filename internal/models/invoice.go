package models

import (
	"time"

	"urgentsales/server/internal/utils"
)

// InvoiceLineItem represents a single billed listing period.
type InvoiceLineItem struct {
	ListingID    string    `bson:"listing_id" json:"listing_id"`
	ListingTitle string    `bson:"listing_title" json:"listing_title"` // Denormalized for display
	StartDate    time.Time `bson:"start" json:"start"`
	BilledUntil  time.Time `bson:"billed_until" json:"billed_until"`
	Amount       float64   `bson:"amount" json:"amount"`
}

// Invoice represents a bill issued to a user for listings beyond the
// free tier. Payment collection happens outside this system; PaidAt is
// recorded when the payment webhook confirms it.
type Invoice struct {
	Base          `bson:",inline"`
	UserID        utils.SixID       `bson:"user_id" json:"user_id"`
	InvoiceNumber string            `bson:"invoice_number" json:"invoice_number"`
	Items         []InvoiceLineItem `bson:"items" json:"items"`
	CurrencyCode  string            `bson:"currency_code" json:"currency_code"`
	Subtotal      float64           `bson:"subtotal" json:"subtotal"`
	Total         float64           `bson:"total" json:"total"`
	IssuedAt      time.Time         `bson:"issued_at" json:"issued_at"`
	DueAt         time.Time         `bson:"due" json:"due"`
	Sent          bool              `bson:"sent" json:"sent"` // true after the email task runs
	PaidAt        *time.Time        `bson:"paid_at,omitempty" json:"paid_at,omitempty"`
	Deleted       bool              `bson:"deleted" json:"-"`
}
