package model

import "time"

// User is an account in the directory. Providers (Provider == true) can
// receive bookings; every user can book.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Provider     bool
	AvatarID     *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// File is stored avatar metadata. Path is the on-disk name; the public URL
// is derived from the application base URL.
type File struct {
	ID        int64
	Name      string
	Path      string
	CreatedAt time.Time
}

// Appointment occupies one provider hour slot. Date is always normalized to
// the start of an hour; CanceledAt nil means the appointment is active.
type Appointment struct {
	ID         int64
	UserID     int64
	ProviderID int64
	Date       time.Time
	CanceledAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Canceled reports whether the appointment left the active state.
func (a Appointment) Canceled() bool {
	return a.CanceledAt != nil
}

// AppointmentDetail is an appointment with the joined identities needed by
// the cancellation flow.
type AppointmentDetail struct {
	Appointment
	ProviderName  string
	ProviderEmail string
	UserName      string
}

// Avatar is the public projection of a stored file.
type Avatar struct {
	ID   int64
	Path string
}

// Provider is the public identity joined into appointment listings.
type Provider struct {
	ID     int64
	Name   string
	Avatar *Avatar
}

// AppointmentSummary is one row of a client's upcoming-appointments listing.
type AppointmentSummary struct {
	ID       int64
	Date     time.Time
	Provider Provider
}

// ScheduleItem is one row of a provider's day schedule.
type ScheduleItem struct {
	ID       int64
	Date     time.Time
	UserName string
}

// Notification is an in-app message directed at a provider. Append-only:
// booking creates one, nothing in this service mutates or deletes them.
type Notification struct {
	ID        int64
	Content   string
	UserID    int64
	Read      bool
	CreatedAt time.Time
}
