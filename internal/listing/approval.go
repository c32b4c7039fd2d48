package listing

import (
	"strings"
	"time"
)

// Decision is an admin's verdict on one pending listing.
type Decision struct {
	Approve bool
	// Reason is required when rejecting and ignored when approving.
	Reason string
	// Redecide permits flipping a settled decision (approved to
	// rejected or back). Without it, deciding a non-pending listing is
	// reported as ErrAlreadyDecided. A listing never returns to
	// pending.
	Redecide bool
}

// Outcome is the computed effect of a decision: the fields to persist
// plus the notification owed to the submitter. It is produced by
// Decide and applied by a Source as one conditional update.
type Outcome struct {
	// FromStatus is the state the listing must still be in when the
	// update lands. The conditional write keeps two racing admins from
	// silently overwriting each other.
	FromStatus ApprovalStatus
	Status     ApprovalStatus
	Reason     string
	// ApprovedBy is persisted for primary-origin listings only; the
	// free table has no such column.
	ApprovedBy string
	DecidedAt  time.Time

	Notification Notification
}

// Notification describes the owner message owed after a state
// transition. Delivery is someone else's problem; failures there must
// never surface as errors of the decision itself.
type Notification struct {
	Outcome ApprovalStatus
	Reason  string
	Title   string
	City    string
	Price   float64
}

// Decide computes the outcome of an admin decision on a listing. It is
// pure: no I/O, no clock reads. It returns ErrAlreadyDecided when the
// listing has already left pending (and Redecide is not set, or the
// requested state is the one it is already in), and a ValidationError
// when a rejection carries no reason.
func Decide(l Listing, d Decision, adminID string, now time.Time) (Outcome, error) {
	target := StatusApproved
	if !d.Approve {
		target = StatusRejected
		if strings.TrimSpace(d.Reason) == "" {
			return Outcome{}, &ValidationError{Field: "reason", Msg: "rejection requires a non-empty reason"}
		}
	}

	if l.Status != StatusPending {
		if !d.Redecide || l.Status == target {
			return Outcome{}, ErrAlreadyDecided
		}
	}

	out := Outcome{
		FromStatus: l.Status,
		Status:     target,
		DecidedAt:  now,
		Notification: Notification{
			Outcome: target,
			Title:   l.Title,
			City:    l.City,
			Price:   l.Price,
		},
	}
	if target == StatusRejected {
		out.Reason = strings.TrimSpace(d.Reason)
		out.Notification.Reason = out.Reason
	}
	if l.Origin == OriginPrimary {
		out.ApprovedBy = adminID
	}
	return out, nil
}
