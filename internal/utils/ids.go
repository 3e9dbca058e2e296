// Package utils provides small shared helpers.  ids.go covers the
// human-facing display references for profile identifiers: storage
// keys are plain numeric ids everywhere in the system, and the
// role-prefixed form (t000123, s000045) is a presentation concern
// produced and parsed only here.
package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Display-reference role prefixes.
const (
	tutorRefPrefix   = "t"
	studentRefPrefix = "s"
)

// ErrBadRef is returned when a display reference cannot be parsed.
var ErrBadRef = errors.New("malformed reference")

// FormatTutorRef renders a tutor id in the zero-padded display form,
// e.g. 123 → "t000123".  Ids wider than six digits keep their full
// width.
func FormatTutorRef(id uint64) string {
	return fmt.Sprintf("%s%06d", tutorRefPrefix, id)
}

// FormatStudentRef renders a student id in the display form, e.g.
// 45 → "s000045".
func FormatStudentRef(id uint64) string {
	return fmt.Sprintf("%s%06d", studentRefPrefix, id)
}

// ParseTutorRef extracts the numeric id from a tutor display
// reference.  It accepts any digit width but requires the "t"
// prefix.
func ParseTutorRef(ref string) (uint64, error) {
	return parseRef(ref, tutorRefPrefix)
}

// ParseStudentRef extracts the numeric id from a student display
// reference.
func ParseStudentRef(ref string) (uint64, error) {
	return parseRef(ref, studentRefPrefix)
}

func parseRef(ref, prefix string) (uint64, error) {
	if !strings.HasPrefix(ref, prefix) {
		return 0, fmt.Errorf("%w: %q", ErrBadRef, ref)
	}
	digits := strings.TrimPrefix(ref, prefix)
	if digits == "" {
		return 0, fmt.Errorf("%w: %q", ErrBadRef, ref)
	}
	id, err := strconv.ParseUint(digits, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadRef, ref)
	}
	return id, nil
}
