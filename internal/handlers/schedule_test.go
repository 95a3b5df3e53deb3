package handlers

import (
	"testing"
	"time"
)

func TestParseScheduleDate(t *testing.T) {
	got, err := parseScheduleDate("2025-01-10")
	if err != nil {
		t.Fatalf("plain date should parse: %v", err)
	}
	want := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}

	got, err = parseScheduleDate("2025-01-10T14:30:00Z")
	if err != nil {
		t.Fatalf("timestamp should parse: %v", err)
	}
	if !got.Equal(want) {
		t.Fatalf("expected timestamp to collapse to day start, got %s", got)
	}

	if _, err := parseScheduleDate("not-a-date"); err == nil {
		t.Fatal("expected error for malformed input")
	}
}
