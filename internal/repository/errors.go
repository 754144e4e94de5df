// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrNotFound covers any missing catalog or order row, while
// ErrStatusConflict signals that a guarded status transition found the
// row in an unexpected state (a duplicate callback or a contested seat).
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist or is
// soft-deleted/inactive. Handlers should translate this into 404.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into 403.
var ErrForbidden = errors.New("forbidden")

// ErrStatusConflict is returned when a guarded update matched fewer rows
// than expected because the current status differed from the guard:
// a seat already HELD/BOOKED, or a transaction no longer PENDING.
// Handlers should translate this into 409.
var ErrStatusConflict = errors.New("status conflict")

// ErrIllegalTransition is returned before touching the database when the
// requested status change is not a legal transition. It indicates a
// programming error at the call site, not bad client input.
var ErrIllegalTransition = errors.New("illegal status transition")
