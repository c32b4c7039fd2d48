package listing

import "context"

// Source is the persistence contract one physical listing store must
// satisfy. Implementations return listings already normalized to the
// canonical shape, with Origin tagged and numeric text coerced.
type Source interface {
	// Origin identifies which store this source is.
	Origin() Origin

	// List returns all records matching the filter, translated to the
	// source's native fields. No ordering or pagination: both happen
	// after the merge.
	List(ctx context.Context, f Filter) ([]Listing, error)

	// Get returns one record by its source-local ID, or ErrNotFound.
	Get(ctx context.Context, id string) (Listing, error)

	// ApplyDecision persists an approval outcome as a single
	// conditional update guarded by out.FromStatus. It returns the
	// updated listing, ErrNotFound when no record exists, or
	// ErrAlreadyDecided when the record exists but its status moved
	// since the outcome was computed.
	ApplyDecision(ctx context.Context, id string, out Outcome) (Listing, error)
}
