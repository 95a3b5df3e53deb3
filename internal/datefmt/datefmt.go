// Package datefmt holds the date helpers shared by booking and mail text:
// hour-slot normalization and the pt-BR long format used in user-facing
// messages.
package datefmt

import (
	"fmt"
	"time"
)

var months = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// StartOfHour zeroes minutes, seconds and nanoseconds, keeping the location.
func StartOfHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

// Long renders a timestamp the way booking messages phrase it:
// "dia 05 de maio, às 8:00h". The day is zero-padded, the hour is not.
func Long(t time.Time) string {
	return fmt.Sprintf("dia %02d de %s, às %d:%02dh", t.Day(), months[t.Month()-1], t.Hour(), t.Minute())
}
