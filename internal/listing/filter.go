package listing

import "fmt"

// Filter selects listings across both sources. Source adapters
// translate it to their native field names and types.
type Filter struct {
	Status       *ApprovalStatus
	City         string // case-insensitive substring match
	PropertyType string
	SaleType     string
	MinPrice     *float64
	MaxPrice     *float64

	// Owner identity. OwnerUserID narrows the primary source,
	// OwnerEmail the free source.
	OwnerUserID string
	OwnerEmail  string
}

// Validate rejects nonsensical ranges before any source is queried.
func (f Filter) Validate() error {
	if f.MinPrice != nil && *f.MinPrice < 0 {
		return &ValidationError{Field: "min_price", Msg: "must not be negative"}
	}
	if f.MaxPrice != nil && *f.MaxPrice < 0 {
		return &ValidationError{Field: "max_price", Msg: "must not be negative"}
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return &ValidationError{Field: "price", Msg: "min_price exceeds max_price"}
	}
	return nil
}

// Sort orders for the merged result set.
type Sort string

const (
	SortNewest    Sort = "newest"
	SortOldest    Sort = "oldest"
	SortPriceAsc  Sort = "price_asc"
	SortPriceDesc Sort = "price_desc"
	SortAreaAsc   Sort = "area_asc"
	SortAreaDesc  Sort = "area_desc"
)

// ParseSort maps a raw query value to a Sort. Empty means newest
// first.
func ParseSort(s string) (Sort, error) {
	if s == "" {
		return SortNewest, nil
	}
	switch Sort(s) {
	case SortNewest, SortOldest, SortPriceAsc, SortPriceDesc, SortAreaAsc, SortAreaDesc:
		return Sort(s), nil
	}
	return "", &ValidationError{Field: "sort", Msg: fmt.Sprintf("unknown sort %q", s)}
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is 1-based pagination applied to the merged result set, never
// per source.
type Page struct {
	Number int
	Size   int
}

// Clamp fills defaults and caps the page size.
func (p Page) Clamp() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// ResultPage is one page of the merged feed.
type ResultPage struct {
	Items    []Listing `json:"items"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}
