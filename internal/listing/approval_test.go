package listing

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var decisionTime = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

func pendingListing(origin Origin) Listing {
	return Listing{
		ID:     "L1",
		Origin: origin,
		Status: StatusPending,
		Title:  "2BHK Flat",
		City:   "Hyderabad",
		Price:  4500000,
	}
}

func TestDecide_ApprovePending(t *testing.T) {
	l := pendingListing(OriginPrimary)

	out, err := Decide(l, Decision{Approve: true}, "admin-7", decisionTime)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, out.FromStatus)
	assert.Equal(t, StatusApproved, out.Status)
	assert.Equal(t, "admin-7", out.ApprovedBy)
	assert.Equal(t, decisionTime, out.DecidedAt)
	assert.Empty(t, out.Reason)

	assert.Equal(t, StatusApproved, out.Notification.Outcome)
	assert.Equal(t, "2BHK Flat", out.Notification.Title)
	assert.Equal(t, "Hyderabad", out.Notification.City)
	assert.Equal(t, float64(4500000), out.Notification.Price)
}

func TestDecide_ApprovedByNotRecordedForFreeOrigin(t *testing.T) {
	// The free table has no approved_by column; the asymmetry is part
	// of the data model, not something to paper over.
	out, err := Decide(pendingListing(OriginFree), Decision{Approve: true}, "admin-7", decisionTime)
	require.NoError(t, err)
	assert.Empty(t, out.ApprovedBy)
	assert.Equal(t, StatusApproved, out.Status)
}

func TestDecide_RejectRequiresReason(t *testing.T) {
	for _, reason := range []string{"", "   ", "\t\n"} {
		_, err := Decide(pendingListing(OriginFree), Decision{Approve: false, Reason: reason}, "admin-7", decisionTime)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "reason %q should be rejected", reason)
		assert.Equal(t, "reason", verr.Field)
	}
}

func TestDecide_RejectCarriesTrimmedReason(t *testing.T) {
	out, err := Decide(pendingListing(OriginFree), Decision{Approve: false, Reason: "  Missing photos  "}, "admin-7", decisionTime)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, out.Status)
	assert.Equal(t, "Missing photos", out.Reason)
	assert.Equal(t, "Missing photos", out.Notification.Reason)
}

func TestDecide_AlreadyDecidedIsNoOp(t *testing.T) {
	cases := []struct {
		name    string
		current ApprovalStatus
		d       Decision
	}{
		{"approve approved", StatusApproved, Decision{Approve: true}},
		{"reject rejected", StatusRejected, Decision{Approve: false, Reason: "dup"}},
		{"approve rejected without redecide", StatusRejected, Decision{Approve: true}},
		{"reject approved without redecide", StatusApproved, Decision{Approve: false, Reason: "spam"}},
		{"redecide into same state", StatusApproved, Decision{Approve: true, Redecide: true}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			l := pendingListing(OriginPrimary)
			l.Status = c.current
			_, err := Decide(l, c.d, "admin-7", decisionTime)
			assert.True(t, errors.Is(err, ErrAlreadyDecided))
		})
	}
}

func TestDecide_RedecideFlipsSettledDecision(t *testing.T) {
	l := pendingListing(OriginPrimary)
	l.Status = StatusRejected

	out, err := Decide(l, Decision{Approve: true, Redecide: true}, "admin-2", decisionTime)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, out.FromStatus)
	assert.Equal(t, StatusApproved, out.Status)

	l.Status = StatusApproved
	out, err = Decide(l, Decision{Approve: false, Reason: "expired", Redecide: true}, "admin-2", decisionTime)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, out.FromStatus)
	assert.Equal(t, StatusRejected, out.Status)
	assert.Equal(t, "expired", out.Reason)
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"pending", "approved", "rejected"} {
		got, err := ParseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, ApprovalStatus(s), got)
	}
	_, err := ParseStatus("archived")
	assert.Error(t, err)
}

func TestParseOrigin(t *testing.T) {
	for _, s := range []string{"primary", "free"} {
		got, err := ParseOrigin(s)
		require.NoError(t, err)
		assert.Equal(t, Origin(s), got)
	}
	_, err := ParseOrigin("")
	assert.Error(t, err)
}
