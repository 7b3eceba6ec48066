package entity

import (
	"context"
	"strings"
	"time"
)

const StatusRegistered = "Registered"

// Registration is one landing-page submission as persisted in the registrations table.
// SeminarAssigned, Attended and Notes are filled in later by a human.
type Registration struct {
	Timestamp       time.Time `json:"timestamp"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone,omitempty"`
	SeminarDate     string    `json:"seminarDate,omitempty"`
	Timeline        string    `json:"timeline,omitempty"`
	Status          string    `json:"status"`
	SeminarAssigned string    `json:"seminarAssigned,omitempty"`
	Attended        string    `json:"attended,omitempty"`
	Notes           string    `json:"notes,omitempty"`
}

// Factory
func NewRegistration(firstName, lastName, email, phone, seminarDate, timeline string, ts time.Time) *Registration {
	return &Registration{
		Timestamp:   ts,
		FirstName:   strings.TrimSpace(firstName),
		LastName:    strings.TrimSpace(lastName),
		Email:       strings.TrimSpace(email),
		Phone:       phone,
		SeminarDate: seminarDate,
		Timeline:    timeline,
		Status:      StatusRegistered,
	}
}

func (r *Registration) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// SameEmail compares emails case-insensitively, ignoring surrounding blanks.
func (r *Registration) SameEmail(email string) bool {
	a := strings.TrimSpace(r.Email)
	b := strings.TrimSpace(email)
	return a != "" && strings.EqualFold(a, b)
}

// RowStore is the append-only table registrations are written to.
type RowStore interface {
	// EnsureTable creates the table and writes the schema header when it does not exist yet.
	// It reports whether the table was created by this call.
	EnsureTable(ctx context.Context, schema Schema) (bool, error)
	Registrations(ctx context.Context, schema Schema) ([]Registration, error)
	Append(ctx context.Context, schema Schema, reg *Registration) error
}

// UniqueAppender is implemented by stores that can append and check email uniqueness atomically.
type UniqueAppender interface {
	AppendIfAbsent(ctx context.Context, schema Schema, reg *Registration) (bool, error)
}
