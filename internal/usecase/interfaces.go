package usecase

import (
	"context"

	"github.com/landingkit/seminar-signups/internal/entity"
)

type Mailer interface {
	Send(ctx context.Context, msg entity.Email) error
}

type EmailComposer interface {
	Confirmation(reg *entity.Registration, format entity.ConfirmationFormat) (entity.Email, error)
	Notification(reg *entity.Registration, to string) (entity.Email, error)
}

// DuplicateGuard claims an email atomically across concurrent submissions.
type DuplicateGuard interface {
	Claim(ctx context.Context, email string) (bool, error)
	Release(ctx context.Context, email string) error
}

type MetricsRecorder interface {
	RecordRegistration(outcome string)
	RecordEmail(kind string, err error)
}

const (
	OutcomeRegistered = "registered"
	OutcomeDuplicate  = "duplicate"
	OutcomeRejected   = "rejected"
	OutcomeFailed     = "failed"
)

type noopRecorder struct{}

func (noopRecorder) RecordRegistration(string) {}
func (noopRecorder) RecordEmail(string, error) {}
