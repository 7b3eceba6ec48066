package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/landingkit/seminar-signups/internal/entity"
)

type RegisterUseCase struct {
	Store         entity.RowStore
	Mailer        Mailer
	Composer      EmailComposer
	Guard         DuplicateGuard
	Metrics       MetricsRecorder
	Policy        entity.Policy
	OperatorEmail string
	Logger        *zap.Logger
	Now           func() time.Time
}

func NewRegisterUseCase(
	store entity.RowStore,
	mailer Mailer,
	composer EmailComposer,
	policy entity.Policy,
	operatorEmail string,
	logger *zap.Logger,
) *RegisterUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegisterUseCase{
		Store:         store,
		Mailer:        mailer,
		Composer:      composer,
		Metrics:       noopRecorder{},
		Policy:        policy,
		OperatorEmail: operatorEmail,
		Logger:        logger,
		Now:           time.Now,
	}
}

// WithGuard enables the atomic email claim in front of the store.
func (uc *RegisterUseCase) WithGuard(g DuplicateGuard) *RegisterUseCase {
	uc.Guard = g
	return uc
}

func (uc *RegisterUseCase) WithMetrics(m MetricsRecorder) *RegisterUseCase {
	if m != nil {
		uc.Metrics = m
	}
	return uc
}

// Execute stores one submission and sends the registrant and operator emails.
// Email failures are logged and never change the result.
func (uc *RegisterUseCase) Execute(ctx context.Context, input RegisterInput) (*RegisterOutput, error) {
	input = NormalizeRegisterInput(input)
	if errs := ValidateRegisterInput(input); len(errs) > 0 {
		uc.Metrics.RecordRegistration(OutcomeRejected)
		return nil, &DomainError{Code: CodeValidation, Message: joinValidationErrors(errs)}
	}

	reg := entity.NewRegistration(
		input.FirstName, input.LastName, input.Email,
		string(input.Phone), string(input.SeminarDate), string(input.Timeline),
		uc.receivedAt(string(input.Timestamp)),
	)
	schema := uc.Policy.Schema

	created, err := uc.Store.EnsureTable(ctx, schema)
	if err != nil {
		uc.Metrics.RecordRegistration(OutcomeFailed)
		return nil, storeError("open registrations table", err)
	}
	if created {
		uc.Logger.Info("registrations table created",
			zap.String("schema", string(schema.Name)), zap.Int("columns", len(schema.Columns)))
	}

	if uc.Policy.SkipsDuplicates() {
		duplicate, err := uc.appendUnique(ctx, reg)
		if err != nil {
			uc.Metrics.RecordRegistration(OutcomeFailed)
			return nil, err
		}
		if duplicate {
			uc.Logger.Info("duplicate email detected", zap.String("email", reg.Email))
			uc.Metrics.RecordRegistration(OutcomeDuplicate)
			uc.sendConfirmation(ctx, reg)
			return &RegisterOutput{Status: StatusSuccess, Message: MessageAlreadyRegistered, Duplicate: true}, nil
		}
	} else if err := uc.Store.Append(ctx, schema, reg); err != nil {
		uc.Metrics.RecordRegistration(OutcomeFailed)
		return nil, storeError("append registration", err)
	}

	uc.Logger.Info("registration stored", zap.String("email", reg.Email), zap.String("seminar_date", reg.SeminarDate))
	uc.Metrics.RecordRegistration(OutcomeRegistered)

	uc.sendConfirmation(ctx, reg)
	uc.sendNotification(ctx, reg)

	return &RegisterOutput{Status: StatusSuccess, Message: MessageRegistered}, nil
}

func (uc *RegisterUseCase) receivedAt(raw string) time.Time {
	if raw == "" {
		return uc.Now()
	}
	ts, ok := entity.ParseTimestamp(raw)
	if !ok {
		uc.Logger.Warn("unparseable timestamp, using receipt time", zap.String("timestamp", raw))
		return uc.Now()
	}
	return ts
}

// appendUnique reports true when the email is already registered; in that case nothing is appended.
func (uc *RegisterUseCase) appendUnique(ctx context.Context, reg *entity.Registration) (bool, error) {
	claimed := false
	if uc.Guard != nil {
		first, err := uc.Guard.Claim(ctx, reg.Email)
		switch {
		case err != nil:
			uc.Logger.Warn("duplicate guard unavailable, falling back to table scan", zap.Error(err))
		case !first:
			return true, nil
		default:
			claimed = true
		}
	}

	inserted, err := uc.insertIfAbsent(ctx, reg)
	if err != nil {
		if claimed {
			if rerr := uc.Guard.Release(ctx, reg.Email); rerr != nil {
				uc.Logger.Warn("release duplicate guard claim", zap.Error(rerr), zap.String("email", reg.Email))
			}
		}
		return false, err
	}
	return !inserted, nil
}

// insertIfAbsent falls back to a linear scan when the store has no atomic append.
// Two concurrent submissions of the same email can both pass the scan; that race is accepted
// for such stores unless a DuplicateGuard is configured.
func (uc *RegisterUseCase) insertIfAbsent(ctx context.Context, reg *entity.Registration) (bool, error) {
	schema := uc.Policy.Schema

	if ua, ok := uc.Store.(entity.UniqueAppender); ok {
		inserted, err := ua.AppendIfAbsent(ctx, schema, reg)
		if err != nil {
			return false, storeError("append registration", err)
		}
		return inserted, nil
	}

	existing, err := uc.Store.Registrations(ctx, schema)
	if err != nil {
		return false, storeError("read registrations", err)
	}
	for i := range existing {
		if existing[i].SameEmail(reg.Email) {
			return false, nil
		}
	}

	if err := uc.Store.Append(ctx, schema, reg); err != nil {
		return false, storeError("append registration", err)
	}
	return true, nil
}

func (uc *RegisterUseCase) sendConfirmation(ctx context.Context, reg *entity.Registration) {
	msg, err := uc.Composer.Confirmation(reg, uc.Policy.Confirmation)
	if err != nil {
		uc.emailFailed(entity.EmailConfirmation, reg.Email, err)
		return
	}
	uc.send(ctx, msg)
}

func (uc *RegisterUseCase) sendNotification(ctx context.Context, reg *entity.Registration) {
	if uc.OperatorEmail == "" {
		uc.Logger.Warn("operator address not configured, skipping notification")
		return
	}
	msg, err := uc.Composer.Notification(reg, uc.OperatorEmail)
	if err != nil {
		uc.emailFailed(entity.EmailNotification, uc.OperatorEmail, err)
		return
	}
	uc.send(ctx, msg)
}

func (uc *RegisterUseCase) send(ctx context.Context, msg entity.Email) {
	if err := uc.Mailer.Send(ctx, msg); err != nil {
		uc.emailFailed(msg.Kind, msg.To, err)
		return
	}
	uc.Metrics.RecordEmail(string(msg.Kind), nil)
	uc.Logger.Info("email sent", zap.String("kind", string(msg.Kind)), zap.String("to", msg.To))
}

func (uc *RegisterUseCase) emailFailed(kind entity.EmailKind, to string, err error) {
	uc.Metrics.RecordEmail(string(kind), err)
	uc.Logger.Error("email not sent", zap.String("kind", string(kind)), zap.String("to", to), zap.Error(err))
}
