package listing

import (
	"context"
	"log"
	"sort"
)

// Merger produces one homogeneous feed out of heterogeneous listing
// sources. A source returning zero rows is fine; a source failing
// outright degrades the feed to the surviving sources with a logged
// warning, because read availability beats completeness here. Only
// when every source fails does List return an error.
type Merger struct {
	sources []Source
}

// NewMerger builds a Merger over the given sources.
func NewMerger(sources ...Source) *Merger {
	return &Merger{sources: sources}
}

// List fetches from every source, concatenates the normalized records,
// applies the requested global order and cuts the requested page.
// Sorting and pagination deliberately happen after concatenation:
// per-source ordering cannot produce a correct global order.
func (m *Merger) List(ctx context.Context, f Filter, s Sort, p Page) (ResultPage, error) {
	if err := f.Validate(); err != nil {
		return ResultPage{}, err
	}
	p = p.Clamp()

	var merged []Listing
	var firstErr error
	failed := 0
	for _, src := range m.sources {
		items, err := src.List(ctx, f)
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = &StorageError{Origin: src.Origin(), Op: "list", Err: err}
			}
			log.Printf("WARN: listing source %s failed, serving degraded results: %v", src.Origin(), err)
			continue
		}
		merged = append(merged, items...)
	}
	if failed == len(m.sources) && failed > 0 {
		return ResultPage{}, firstErr
	}

	sortListings(merged, s)

	total := len(merged)
	start := (p.Number - 1) * p.Size
	if start > total {
		start = total
	}
	end := start + p.Size
	if end > total {
		end = total
	}

	items := make([]Listing, end-start)
	copy(items, merged[start:end])

	return ResultPage{
		Items:    items,
		Total:    total,
		Page:     p.Number,
		PageSize: p.Size,
	}, nil
}

// Get resolves one listing by its (origin, id) identity.
func (m *Merger) Get(ctx context.Context, key Key) (Listing, error) {
	src, err := m.source(key.Origin)
	if err != nil {
		return Listing{}, err
	}
	return src.Get(ctx, key.ID)
}

// Source returns the source owning the given origin.
func (m *Merger) Source(origin Origin) (Source, error) {
	return m.source(origin)
}

func (m *Merger) source(origin Origin) (Source, error) {
	for _, src := range m.sources {
		if src.Origin() == origin {
			return src, nil
		}
	}
	return nil, &ValidationError{Field: "origin", Msg: "no source registered for origin " + string(origin)}
}

// sortListings orders the merged slice. Ties fall back to newest
// first, then key, so pagination stays stable across requests.
func sortListings(items []Listing, s Sort) {
	less := func(a, b Listing) bool {
		return a.CreatedAt.After(b.CreatedAt)
	}
	switch s {
	case SortOldest:
		less = func(a, b Listing) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortPriceAsc:
		less = func(a, b Listing) bool { return a.Price < b.Price }
	case SortPriceDesc:
		less = func(a, b Listing) bool { return a.Price > b.Price }
	case SortAreaAsc:
		less = func(a, b Listing) bool { return a.AreaSqFt < b.AreaSqFt }
	case SortAreaDesc:
		less = func(a, b Listing) bool { return a.AreaSqFt > b.AreaSqFt }
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.Key().String() < b.Key().String()
	})
}
