package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urgentsales/server/internal/listing"
)

type stubSource struct {
	origin   listing.Origin
	items    map[string]listing.Listing
	applied  []listing.Outcome
	applyErr error
}

func newStubSource(origin listing.Origin, items ...listing.Listing) *stubSource {
	s := &stubSource{origin: origin, items: map[string]listing.Listing{}}
	for _, l := range items {
		s.items[l.ID] = l
	}
	return s
}

func (s *stubSource) Origin() listing.Origin { return s.origin }

func (s *stubSource) List(ctx context.Context, f listing.Filter) ([]listing.Listing, error) {
	var out []listing.Listing
	for _, l := range s.items {
		if f.Status != nil && l.Status != *f.Status {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (s *stubSource) Get(ctx context.Context, id string) (listing.Listing, error) {
	l, ok := s.items[id]
	if !ok {
		return listing.Listing{}, listing.ErrNotFound
	}
	return l, nil
}

func (s *stubSource) ApplyDecision(ctx context.Context, id string, out listing.Outcome) (listing.Listing, error) {
	if s.applyErr != nil {
		return listing.Listing{}, s.applyErr
	}
	l, ok := s.items[id]
	if !ok {
		return listing.Listing{}, listing.ErrNotFound
	}
	if l.Status != out.FromStatus {
		return listing.Listing{}, listing.ErrAlreadyDecided
	}
	l.Status = out.Status
	l.RejectionReason = out.Reason
	l.ApprovedBy = out.ApprovedBy
	s.items[id] = l
	s.applied = append(s.applied, out)
	return l, nil
}

type recordingNotifier struct {
	sent []listing.Notification
}

func (r *recordingNotifier) NotifyDecision(ctx context.Context, l listing.Listing, n listing.Notification) {
	r.sent = append(r.sent, n)
}

func pendingListing(origin listing.Origin, id string) listing.Listing {
	l := listing.Listing{
		ID:        id,
		Origin:    origin,
		Status:    listing.StatusPending,
		Title:     "3BHK Villa",
		City:      "Chennai",
		Price:     7500000,
		CreatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	l.Normalize()
	return l
}

func newTestService(notifier DecisionNotifier, sources ...listing.Source) IListingService {
	return NewListingService(listing.NewMerger(sources...), nil, nil, nil, notifier)
}

func TestDecideApprovesAndNotifies(t *testing.T) {
	src := newStubSource(listing.OriginPrimary, pendingListing(listing.OriginPrimary, "01ABCD"))
	notifier := &recordingNotifier{}
	svc := newTestService(notifier, src)

	admin := listing.Actor{ID: "02ADMN", Role: listing.RoleAdmin}
	key := listing.Key{Origin: listing.OriginPrimary, ID: "01ABCD"}

	updated, err := svc.Decide(context.Background(), key, listing.Decision{Approve: true}, admin)
	require.NoError(t, err)
	assert.Equal(t, listing.StatusApproved, updated.Status)
	assert.Equal(t, "02ADMN", updated.ApprovedBy)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, listing.StatusApproved, notifier.sent[0].Outcome)
	assert.Equal(t, "3BHK Villa", notifier.sent[0].Title)

	require.Len(t, src.applied, 1)
	assert.Equal(t, listing.StatusPending, src.applied[0].FromStatus)
}

func TestDecideRejectRequiresReason(t *testing.T) {
	src := newStubSource(listing.OriginFree, pendingListing(listing.OriginFree, "42"))
	notifier := &recordingNotifier{}
	svc := newTestService(notifier, src)

	key := listing.Key{Origin: listing.OriginFree, ID: "42"}
	_, err := svc.Decide(context.Background(), key, listing.Decision{Approve: false, Reason: "  "},
		listing.Actor{ID: "02ADMN", Role: listing.RoleAdmin})

	var verr *listing.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, src.applied, "nothing may be persisted when the decision is invalid")
	assert.Empty(t, notifier.sent)
}

func TestDecideConcurrentLoserGetsNoOp(t *testing.T) {
	src := newStubSource(listing.OriginPrimary, pendingListing(listing.OriginPrimary, "01ABCD"))
	src.applyErr = listing.ErrAlreadyDecided
	notifier := &recordingNotifier{}
	svc := newTestService(notifier, src)

	key := listing.Key{Origin: listing.OriginPrimary, ID: "01ABCD"}
	_, err := svc.Decide(context.Background(), key, listing.Decision{Approve: true},
		listing.Actor{ID: "02ADMN", Role: listing.RoleAdmin})

	assert.True(t, IsNoOpDecision(err))
	assert.Empty(t, notifier.sent, "no notification for a decision that did not change anything")
}

func TestDecideUnknownOrigin(t *testing.T) {
	svc := newTestService(&recordingNotifier{}, newStubSource(listing.OriginPrimary))
	_, err := svc.Decide(context.Background(),
		listing.Key{Origin: listing.Origin("bogus"), ID: "1"},
		listing.Decision{Approve: true}, listing.Actor{ID: "02ADMN"})
	require.Error(t, err)
}

func TestDecideMissingListing(t *testing.T) {
	svc := newTestService(&recordingNotifier{}, newStubSource(listing.OriginFree))
	_, err := svc.Decide(context.Background(),
		listing.Key{Origin: listing.OriginFree, ID: "999"},
		listing.Decision{Approve: true}, listing.Actor{ID: "02ADMN"})
	assert.True(t, errors.Is(err, listing.ErrNotFound))
}

func TestSearchOnlyServesApproved(t *testing.T) {
	approved := pendingListing(listing.OriginPrimary, "A1")
	approved.Status = listing.StatusApproved
	src := newStubSource(listing.OriginPrimary, approved, pendingListing(listing.OriginPrimary, "A2"))
	svc := newTestService(&recordingNotifier{}, src)

	rejected := listing.StatusRejected
	page, err := svc.Search(context.Background(),
		listing.Filter{Status: &rejected}, listing.SortNewest, listing.Page{})
	require.NoError(t, err)

	require.Len(t, page.Items, 1, "caller-supplied status must be overridden")
	assert.Equal(t, "A1", page.Items[0].ID)
}

func TestValidateSubmissionGuestContact(t *testing.T) {
	in := SubmissionInput{
		Title:        "Plot in Guntur",
		City:         "Guntur",
		PropertyType: "plot",
		SaleType:     "sale",
		Price:        900000,
		Contact:      listing.ContactInfo{Email: "not-an-email", Phone: "98765 43210"},
	}
	var verr *listing.ValidationError
	require.ErrorAs(t, validateSubmission(in, true), &verr)
	assert.Equal(t, "contact_email", verr.Field)

	in.Contact.Email = "owner@example.com"
	assert.NoError(t, validateSubmission(in, true))

	in.Contact.Phone = "12345"
	require.ErrorAs(t, validateSubmission(in, true), &verr)
	assert.Equal(t, "contact_phone", verr.Field)
}
