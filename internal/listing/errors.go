package listing

import (
	"errors"
	"fmt"
	"log"
)

// ErrNotFound reports that no listing exists for the given (origin, id).
var ErrNotFound = errors.New("listing not found")

// ErrAlreadyDecided reports that a decision was requested on a listing
// that has already left the pending state. Callers treat it as a no-op
// signal, not a failure: the prior decision is never overwritten
// silently.
var ErrAlreadyDecided = errors.New("listing already decided")

// ValidationError reports malformed caller input (blank rejection
// reason, unknown enum value, bad filter range). Maps to HTTP 400.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// ForbiddenError reports a failed ownership check. Maps to HTTP 403.
type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string {
	return e.Msg
}

// StorageError wraps a datastore failure. Mutating operations surface
// it to the caller; the read-side merge tolerates it per source and
// degrades instead.
type StorageError struct {
	Origin Origin
	Op     string
	Err    error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s (%s): %v", e.Op, e.Origin, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// WarnDataQuality records a non-fatal data-quality condition found
// while normalizing a source record, e.g. a numeric column holding
// non-numeric text. The record still flows through with a defaulted
// value; the log line is the only trace.
func WarnDataQuality(origin Origin, id, field, raw string) {
	log.Printf("DATA-QUALITY: %s listing %s: field %q holds unparseable value %q, defaulting to 0", origin, id, field, raw)
}
