package datefmt

import (
	"testing"
	"time"
)

func TestStartOfHour(t *testing.T) {
	in := time.Date(2025, 1, 10, 14, 37, 52, 999, time.UTC)
	got := StartOfHour(in)
	want := time.Date(2025, 1, 10, 14, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestStartOfHourKeepsLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	in := time.Date(2025, 6, 2, 9, 30, 0, 0, loc)
	got := StartOfHour(in)
	if got.Location() != loc {
		t.Fatalf("expected location %v, got %v", loc, got.Location())
	}
	if got.Hour() != 9 || got.Minute() != 0 {
		t.Fatalf("expected 09:00 local, got %s", got.Format("15:04"))
	}
}

func TestLong(t *testing.T) {
	in := time.Date(2025, 1, 10, 14, 0, 0, 0, time.UTC)
	if got := Long(in); got != "dia 10 de janeiro, às 14:00h" {
		t.Fatalf("unexpected format: %q", got)
	}
	// Day zero-padded, hour unpadded.
	in = time.Date(2025, 12, 3, 8, 30, 0, 0, time.UTC)
	if got := Long(in); got != "dia 03 de dezembro, às 8:30h" {
		t.Fatalf("unexpected format: %q", got)
	}
}
