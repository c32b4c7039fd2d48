package pgstore

import (
	"strconv"
	"strings"
	"time"

	"urgentsales/server/internal/listing"
)

// freeRow mirrors the legacy free_listings table. Numeric columns were
// created as TEXT years ago and carry whatever the old PHP form posted,
// so every numeric field goes through coercion.
type freeRow struct {
	ID              int64
	OwnerName       string
	OwnerEmail      string
	OwnerPhone      string
	Title           string
	Description     string
	PropertyType    string
	SaleType        string
	City            string
	Location        string
	PriceText       string
	AreaText        string
	BedroomsText    string
	BathroomsText   string
	AmenitiesText   string
	ImagesText      string
	ApprovalStatus  string
	RejectionReason string
	ApprovalDate    *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// normalizeRow maps a legacy row onto the canonical listing shape.
// Malformed numerics become 0 and are logged rather than failing the
// whole result set.
func normalizeRow(r freeRow) listing.Listing {
	id := strconv.FormatInt(r.ID, 10)

	status, err := listing.ParseStatus(r.ApprovalStatus)
	if err != nil {
		listing.WarnDataQuality(listing.OriginFree, id, "approval_status", r.ApprovalStatus)
		status = listing.StatusPending
	}

	l := listing.Listing{
		ID:              id,
		Origin:          listing.OriginFree,
		Status:          status,
		RejectionReason: r.RejectionReason,
		ApprovalDate:    r.ApprovalDate,
		Contact: &listing.ContactInfo{
			Name:  strings.TrimSpace(r.OwnerName),
			Email: strings.TrimSpace(r.OwnerEmail),
			Phone: strings.TrimSpace(r.OwnerPhone),
		},
		Title:        r.Title,
		Description:  r.Description,
		PropertyType: r.PropertyType,
		SaleType:     r.SaleType,
		City:         r.City,
		Location:     r.Location,
		Price:        coerceFloat(id, "price", r.PriceText),
		AreaSqFt:     coerceFloat(id, "area_sqft", r.AreaText),
		Bedrooms:     coerceInt(id, "bedrooms", r.BedroomsText),
		Bathrooms:    coerceInt(id, "bathrooms", r.BathroomsText),
		Amenities:    splitList(r.AmenitiesText),
		ImageURLs:    splitList(r.ImagesText),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	l.Normalize()
	return l
}

// coerceFloat parses a legacy text numeric. Currency symbols, grouping
// commas and stray whitespace are stripped first; anything still
// unparseable yields 0 with a data-quality warning.
func coerceFloat(id, field, raw string) float64 {
	cleaned := cleanNumeric(raw)
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v < 0 {
		listing.WarnDataQuality(listing.OriginFree, id, field, raw)
		return 0
	}
	return v
}

func coerceInt(id, field, raw string) int {
	cleaned := cleanNumeric(raw)
	if cleaned == "" {
		return 0
	}
	// Rows like "2.0" show up; accept the float form and truncate.
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v < 0 {
		listing.WarnDataQuality(listing.OriginFree, id, field, raw)
		return 0
	}
	return int(v)
}

func cleanNumeric(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "₹")
	s = strings.TrimPrefix(s, "Rs.")
	s = strings.TrimPrefix(s, "Rs")
	return strings.TrimSpace(s)
}

// splitList expands the legacy comma-separated columns.
func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
