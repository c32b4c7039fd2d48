package listing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource is an in-memory Source for merge tests.
type fakeSource struct {
	origin  Origin
	items   []Listing
	listErr error
}

func (f *fakeSource) Origin() Origin { return f.origin }

func (f *fakeSource) List(ctx context.Context, fl Filter) ([]Listing, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []Listing
	for _, l := range f.items {
		if fl.Status != nil && l.Status != *fl.Status {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (f *fakeSource) Get(ctx context.Context, id string) (Listing, error) {
	for _, l := range f.items {
		if l.ID == id {
			return l, nil
		}
	}
	return Listing{}, ErrNotFound
}

func (f *fakeSource) ApplyDecision(ctx context.Context, id string, out Outcome) (Listing, error) {
	for i, l := range f.items {
		if l.ID != id {
			continue
		}
		if l.Status != out.FromStatus {
			return Listing{}, ErrAlreadyDecided
		}
		l.Status = out.Status
		l.RejectionReason = out.Reason
		l.ApprovedBy = out.ApprovedBy
		decidedAt := out.DecidedAt
		l.ApprovalDate = &decidedAt
		f.items[i] = l
		return l, nil
	}
	return Listing{}, ErrNotFound
}

func at(day int) time.Time {
	return time.Date(2026, 1, day, 0, 0, 0, 0, time.UTC)
}

func approvedListing(origin Origin, id string, price float64, created time.Time) Listing {
	l := Listing{
		ID:        id,
		Origin:    origin,
		Status:    StatusApproved,
		Title:     "Listing " + id,
		Price:     price,
		CreatedAt: created,
	}
	l.Normalize()
	return l
}

func TestMerger_EmptySourcePassesThrough(t *testing.T) {
	a := approvedListing(OriginPrimary, "P1", 100, at(1))
	b := approvedListing(OriginPrimary, "P2", 200, at(2))
	primary := &fakeSource{origin: OriginPrimary, items: []Listing{a, b}}
	free := &fakeSource{origin: OriginFree}

	page, err := NewMerger(primary, free).List(context.Background(), Filter{}, SortNewest, Page{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Items, 2)
	// Content unchanged, shape normalized.
	assert.Equal(t, b, page.Items[0])
	assert.Equal(t, a, page.Items[1])
	assert.NotNil(t, page.Items[0].Amenities)
	assert.NotNil(t, page.Items[0].ImageURLs)
}

func TestMerger_GlobalPriceSortAcrossSources(t *testing.T) {
	primary := &fakeSource{origin: OriginPrimary, items: []Listing{
		approvedListing(OriginPrimary, "P1", 1000000, at(5)),
	}}
	free := &fakeSource{origin: OriginFree, items: []Listing{
		approvedListing(OriginFree, "F1", 2000000, at(1)),
	}}

	page, err := NewMerger(primary, free).List(context.Background(), Filter{}, SortPriceDesc, Page{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "F1", page.Items[0].ID, "the pricier listing wins regardless of source")
	assert.Equal(t, "P1", page.Items[1].ID)
}

func TestMerger_IDCollisionAcrossSources(t *testing.T) {
	// Both tables can hand out the same local id; the merged feed must
	// keep both apart by (origin, id).
	primary := &fakeSource{origin: OriginPrimary, items: []Listing{
		approvedListing(OriginPrimary, "42", 100, at(3)),
	}}
	free := &fakeSource{origin: OriginFree, items: []Listing{
		approvedListing(OriginFree, "42", 200, at(3)),
	}}

	page, err := NewMerger(primary, free).List(context.Background(), Filter{}, SortNewest, Page{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.NotEqual(t, page.Items[0].Key(), page.Items[1].Key())
}

func TestMerger_StatusFilter(t *testing.T) {
	pend := approvedListing(OriginFree, "F1", 100, at(1))
	pend.Status = StatusPending
	free := &fakeSource{origin: OriginFree, items: []Listing{
		pend,
		approvedListing(OriginFree, "F2", 100, at(2)),
	}}

	st := StatusPending
	page, err := NewMerger(free).List(context.Background(), Filter{Status: &st}, SortNewest, Page{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "F1", page.Items[0].ID)
}

func TestMerger_PaginationAfterMerge(t *testing.T) {
	primary := &fakeSource{origin: OriginPrimary}
	free := &fakeSource{origin: OriginFree}
	for day := 1; day <= 5; day++ {
		primary.items = append(primary.items, approvedListing(OriginPrimary, string(rune('A'+day)), 0, at(day*2)))
		free.items = append(free.items, approvedListing(OriginFree, string(rune('A'+day)), 0, at(day*2-1)))
	}

	m := NewMerger(primary, free)
	first, err := m.List(context.Background(), Filter{}, SortNewest, Page{Number: 1, Size: 4})
	require.NoError(t, err)
	second, err := m.List(context.Background(), Filter{}, SortNewest, Page{Number: 2, Size: 4})
	require.NoError(t, err)

	assert.Equal(t, 10, first.Total)
	require.Len(t, first.Items, 4)
	require.Len(t, second.Items, 4)

	// Pages interleave both sources in one strict global order.
	var seen []time.Time
	for _, l := range append(first.Items, second.Items...) {
		seen = append(seen, l.CreatedAt)
	}
	for i := 1; i < len(seen); i++ {
		assert.False(t, seen[i].After(seen[i-1]), "merged pages must be globally ordered")
	}
}

func TestMerger_PageBeyondEnd(t *testing.T) {
	free := &fakeSource{origin: OriginFree, items: []Listing{approvedListing(OriginFree, "F1", 1, at(1))}}
	page, err := NewMerger(free).List(context.Background(), Filter{}, SortNewest, Page{Number: 9, Size: 50})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Total)
}

func TestMerger_OneSourceFailingDegrades(t *testing.T) {
	primary := &fakeSource{origin: OriginPrimary, listErr: errors.New("connection refused")}
	free := &fakeSource{origin: OriginFree, items: []Listing{approvedListing(OriginFree, "F1", 1, at(1))}}

	page, err := NewMerger(primary, free).List(context.Background(), Filter{}, SortNewest, Page{})
	require.NoError(t, err, "a single failing source must not fail the read path")
	assert.Equal(t, 1, page.Total)
}

func TestMerger_AllSourcesFailing(t *testing.T) {
	primary := &fakeSource{origin: OriginPrimary, listErr: errors.New("down")}
	free := &fakeSource{origin: OriginFree, listErr: errors.New("down too")}

	_, err := NewMerger(primary, free).List(context.Background(), Filter{}, SortNewest, Page{})
	var serr *StorageError
	assert.ErrorAs(t, err, &serr)
}

func TestMerger_InvalidFilter(t *testing.T) {
	lo, hi := 100.0, 50.0
	_, err := NewMerger().List(context.Background(), Filter{MinPrice: &lo, MaxPrice: &hi}, SortNewest, Page{})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}
