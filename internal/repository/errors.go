// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// booking service and handlers to distinguish between failure
// scenarios without inspecting SQL errors. For example, ErrForbidden
// indicates that the current user is not authorized to act on a
// resource owned by someone else, while ErrConflict signals that a
// state-machine precondition did not hold (a slot that is no longer
// free, a booking that already exists for that window).
package repository

import "errors"

// ErrSlotNotFound is returned when a slot id does not resolve to a row.
var ErrSlotNotFound = errors.New("slot not found")

// ErrBookingNotFound is returned when a booking id does not resolve to a row.
var ErrBookingNotFound = errors.New("booking not found")

// ErrTutorNotFound is returned when a user has no tutor profile.
var ErrTutorNotFound = errors.New("tutor not found")

// ErrStudentNotFound is returned when a user has no student profile.
var ErrStudentNotFound = errors.New("student not found")

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a conditional state transition
// matched zero rows: the slot was not free, not reserved by the
// caller, or the booking was not in the required status. The loser
// of a race on the same row observes this error and must report it
// rather than retry. Handlers should translate it into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrAlreadyRated is returned when a rating is submitted for a
// booking whose rating or feedback row already exists. Ratings are
// write-once.
var ErrAlreadyRated = errors.New("already rated")
