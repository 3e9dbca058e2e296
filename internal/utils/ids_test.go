package utils

import (
	"errors"
	"testing"
)

func TestFormatTutorRef(t *testing.T) {
	cases := []struct {
		id   uint64
		want string
	}{
		{1, "t000001"},
		{123, "t000123"},
		{999999, "t999999"},
		{1234567, "t1234567"},
	}
	for _, c := range cases {
		if got := FormatTutorRef(c.id); got != c.want {
			t.Errorf("FormatTutorRef(%d) = %q, want %q", c.id, got, c.want)
		}
	}
}

func TestFormatStudentRef(t *testing.T) {
	if got := FormatStudentRef(45); got != "s000045" {
		t.Errorf("FormatStudentRef(45) = %q, want s000045", got)
	}
}

func TestParseRefRoundTrip(t *testing.T) {
	for _, id := range []uint64{1, 42, 999999, 1234567} {
		got, err := ParseTutorRef(FormatTutorRef(id))
		if err != nil {
			t.Fatalf("ParseTutorRef round trip for %d: %v", id, err)
		}
		if got != id {
			t.Errorf("round trip for %d gave %d", id, got)
		}
	}
}

func TestParseRefRejectsMalformed(t *testing.T) {
	bad := []string{"", "t", "s000045", "x000123", "t00a12", "t000000", "123"}
	for _, ref := range bad {
		if _, err := ParseTutorRef(ref); !errors.Is(err, ErrBadRef) {
			t.Errorf("ParseTutorRef(%q): expected ErrBadRef, got %v", ref, err)
		}
	}
}
