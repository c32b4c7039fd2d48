package pgstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urgentsales/server/internal/listing"
)

func legacyRow() freeRow {
	created := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	return freeRow{
		ID:             42,
		OwnerName:      " Ravi Kumar ",
		OwnerEmail:     " Ravi@Example.com ",
		OwnerPhone:     "+91 98765 43210",
		Title:          "2BHK near metro",
		PropertyType:   "apartment",
		SaleType:       "sale",
		City:           "Hyderabad",
		PriceText:      "2500000",
		AreaText:       "1050.5",
		BedroomsText:   "2",
		BathroomsText:  "2",
		AmenitiesText:  "parking, lift ,,gym",
		ImagesText:     "",
		ApprovalStatus: "approved",
		CreatedAt:      created,
		UpdatedAt:      created,
	}
}

func TestNormalizeRowCleanData(t *testing.T) {
	l := normalizeRow(legacyRow())

	assert.Equal(t, "42", l.ID)
	assert.Equal(t, listing.OriginFree, l.Origin)
	assert.Equal(t, listing.StatusApproved, l.Status)
	assert.Equal(t, "Ravi Kumar", l.Contact.Name)
	assert.Equal(t, "Ravi@Example.com", l.Contact.Email)
	assert.Equal(t, 2500000.0, l.Price)
	assert.Equal(t, 1050.5, l.AreaSqFt)
	assert.Equal(t, 2, l.Bedrooms)
	assert.Equal(t, []string{"parking", "lift", "gym"}, l.Amenities)
	require.NotNil(t, l.ImageURLs)
	assert.Empty(t, l.ImageURLs)
}

func TestNormalizeRowMalformedNumerics(t *testing.T) {
	r := legacyRow()
	r.PriceText = "not-a-number"
	r.AreaText = "N/A"
	r.BedroomsText = "two"
	r.BathroomsText = ""

	l := normalizeRow(r)

	assert.Equal(t, 0.0, l.Price)
	assert.Equal(t, 0.0, l.AreaSqFt)
	assert.Equal(t, 0, l.Bedrooms)
	assert.Equal(t, 0, l.Bathrooms)
	assert.Equal(t, listing.StatusApproved, l.Status, "bad numerics must not change the row's status")
}

func TestNormalizeRowLegacyCurrencyFormats(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"25,00,000", 2500000},
		{"₹1500000", 1500000},
		{"Rs. 90000", 90000},
		{" 120000 ", 120000},
		{"1200000.50", 1200000.50},
	}
	for _, tc := range cases {
		r := legacyRow()
		r.PriceText = tc.raw
		assert.Equal(t, tc.want, normalizeRow(r).Price, "raw %q", tc.raw)
	}
}

func TestNormalizeRowNegativePriceCoercedToZero(t *testing.T) {
	r := legacyRow()
	r.PriceText = "-500"
	assert.Equal(t, 0.0, normalizeRow(r).Price)
}

func TestNormalizeRowFloatBedroomsTruncated(t *testing.T) {
	r := legacyRow()
	r.BedroomsText = "3.0"
	assert.Equal(t, 3, normalizeRow(r).Bedrooms)
}

func TestNormalizeRowCarriesApprovalDate(t *testing.T) {
	decided := time.Date(2025, 3, 12, 14, 30, 0, 0, time.UTC)
	r := legacyRow()
	r.ApprovalDate = &decided

	l := normalizeRow(r)

	require.NotNil(t, l.ApprovalDate)
	assert.Equal(t, decided, *l.ApprovalDate)
}

func TestNormalizeRowUndecidedHasNoApprovalDate(t *testing.T) {
	r := legacyRow()
	r.ApprovalStatus = "pending"
	assert.Nil(t, normalizeRow(r).ApprovalDate)
}

func TestNormalizeRowUnknownStatusFallsBackToPending(t *testing.T) {
	r := legacyRow()
	r.ApprovalStatus = "LIVE"
	assert.Equal(t, listing.StatusPending, normalizeRow(r).Status)
}
