package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gobarber/gobarber/internal/model"
)

func TestParsePage(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"", 1},
		{"1", 1},
		{"3", 3},
		{"0", 1},
		{"-2", 1},
		{"abc", 1},
		{" 2 ", 2},
	}
	for _, c := range cases {
		if got := parsePage(c.raw); got != c.want {
			t.Errorf("parsePage(%q) = %d, want %d", c.raw, got, c.want)
		}
	}
}

func TestParseBookingDate(t *testing.T) {
	got, err := parseBookingDate("2025-01-10T14:30:00Z")
	if err != nil {
		t.Fatalf("expected RFC3339 date to parse: %v", err)
	}
	if got.Hour() != 14 || got.Minute() != 30 {
		t.Fatalf("unexpected parse result: %s", got)
	}

	if _, err := parseBookingDate("10/01/2025"); err == nil {
		t.Fatal("expected error for non ISO-8601 input")
	}
	if _, err := parseBookingDate(""); err == nil {
		t.Fatal("expected error for empty date")
	}
}

func TestParseBookingDateWithoutOffset(t *testing.T) {
	got, err := parseBookingDate("2025-01-10T14:00:00")
	if err != nil {
		t.Fatalf("offset-less ISO-8601 timestamp should parse: %v", err)
	}
	if got.Hour() != 14 || got.Minute() != 0 {
		t.Fatalf("unexpected parse result: %s", got)
	}
	if got.Location() != time.Local {
		t.Fatalf("expected local interpretation, got %v", got.Location())
	}
}

func TestCancelable(t *testing.T) {
	now := time.Date(2025, 1, 10, 11, 0, 0, 0, time.UTC)

	if !cancelable(now.Add(3*time.Hour), now) {
		t.Fatal("3 hours ahead should be cancelable")
	}
	if cancelable(now.Add(1*time.Hour), now) {
		t.Fatal("1 hour ahead should not be cancelable")
	}
	// Exactly 2 hours ahead: the window has closed.
	if cancelable(now.Add(2*time.Hour), now) {
		t.Fatal("exactly 2 hours ahead should not be cancelable")
	}
	if cancelable(now.Add(-1*time.Hour), now) {
		t.Fatal("past appointments are never cancelable")
	}
}

func TestCancelRejection(t *testing.T) {
	now := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	active := model.AppointmentDetail{
		Appointment: model.Appointment{
			ID:     1,
			UserID: 42,
			Date:   now.Add(3 * time.Hour),
		},
	}

	if status, _ := cancelRejection(active, 42, now); status != 0 {
		t.Fatalf("owner canceling in time should pass, got status %d", status)
	}

	status, msg := cancelRejection(active, 7, now)
	if status != http.StatusUnauthorized || msg != "You don't have permission to cancel this appointment" {
		t.Fatalf("non-owner: got %d %q", status, msg)
	}

	canceledAt := now.Add(-time.Hour)
	canceled := active
	canceled.CanceledAt = &canceledAt
	status, msg = cancelRejection(canceled, 42, now)
	if status != http.StatusBadRequest || msg != "Appointment is already canceled" {
		t.Fatalf("already canceled: got %d %q", status, msg)
	}

	soon := active
	soon.Date = now.Add(time.Hour)
	status, msg = cancelRejection(soon, 42, now)
	if status != http.StatusUnauthorized || msg != "You can only cancel appointments 2 hours in advance" {
		t.Fatalf("inside window: got %d %q", status, msg)
	}

	// Ownership is checked before state: a non-owner probing a canceled
	// appointment still gets the permission rejection.
	status, _ = cancelRejection(canceled, 7, now)
	if status != http.StatusUnauthorized {
		t.Fatalf("non-owner on canceled appointment: got %d", status)
	}
}

func TestSlotUnavailableMessage(t *testing.T) {
	// The misspelling is part of the API contract.
	if slotUnavailableMessage != "Appointment date is not avaliable" {
		t.Fatalf("unexpected message: %q", slotUnavailableMessage)
	}
}
