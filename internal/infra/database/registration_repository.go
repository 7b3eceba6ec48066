package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/landingkit/seminar-signups/internal/entity"
)

// RegistrationRepository stores registrations in a Postgres table that mirrors the
// spreadsheet columns. All administrative columns exist regardless of schema; the compact
// schema simply leaves Seminar Assigned and Attended empty.
//
// The table and the email index are created on the first EnsureTable call only. When the
// index cannot be built because the table already holds duplicate emails, AppendIfAbsent
// falls back to a conditional insert.
type RegistrationRepository struct {
	DB           *sql.DB
	Table        string
	UniqueEmails bool

	logger  *zap.Logger
	mu      sync.Mutex
	ensured bool
	indexed bool
}

func NewRegistrationRepository(db *sql.DB, table string, uniqueEmails bool, logger *zap.Logger) *RegistrationRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationRepository{DB: db, Table: table, UniqueEmails: uniqueEmails, logger: logger}
}

func (r *RegistrationRepository) table() string {
	return pq.QuoteIdentifier(r.Table)
}

func (r *RegistrationRepository) EnsureTable(ctx context.Context, schema entity.Schema) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ensured {
		return false, nil
	}

	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT to_regclass($1) IS NOT NULL`, r.table()).Scan(&exists); err != nil {
		return false, fmt.Errorf("check table %s: %w", r.Table, err)
	}

	query := `
		CREATE TABLE IF NOT EXISTS ` + r.table() + ` (
			id               BIGSERIAL PRIMARY KEY,
			registered_at    TIMESTAMPTZ NOT NULL,
			first_name       TEXT NOT NULL,
			last_name        TEXT NOT NULL,
			email            TEXT NOT NULL,
			phone            TEXT NOT NULL DEFAULT '',
			seminar_date     TEXT NOT NULL DEFAULT '',
			timeline         TEXT NOT NULL DEFAULT '',
			status           TEXT NOT NULL DEFAULT 'Registered',
			seminar_assigned TEXT NOT NULL DEFAULT '',
			attended         TEXT NOT NULL DEFAULT '',
			notes            TEXT NOT NULL DEFAULT ''
		)`
	if _, err := r.DB.ExecContext(ctx, query); err != nil {
		return false, fmt.Errorf("create table %s: %w", r.Table, err)
	}

	if r.UniqueEmails {
		index := pq.QuoteIdentifier(r.Table + "_email_key")
		_, err := r.DB.ExecContext(ctx,
			`CREATE UNIQUE INDEX IF NOT EXISTS `+index+` ON `+r.table()+` (lower(email))`)
		switch {
		case err == nil:
			r.indexed = true
		case isUniqueViolation(err):
			r.logger.Error("email index not created, table already holds duplicate emails; using conditional insert",
				zap.String("table", r.Table), zap.Error(err))
		default:
			return false, fmt.Errorf("create email index: %w", err)
		}
	}

	r.ensured = true
	return !exists, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (r *RegistrationRepository) hasIndex() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.indexed
}

func (r *RegistrationRepository) Registrations(ctx context.Context, schema entity.Schema) ([]entity.Registration, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT registered_at, first_name, last_name, email, phone, seminar_date,
		       timeline, status, seminar_assigned, attended, notes
		FROM `+r.table()+`
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []entity.Registration
	for rows.Next() {
		var reg entity.Registration
		var ts time.Time
		if err := rows.Scan(&ts, &reg.FirstName, &reg.LastName, &reg.Email, &reg.Phone, &reg.SeminarDate,
			&reg.Timeline, &reg.Status, &reg.SeminarAssigned, &reg.Attended, &reg.Notes); err != nil {
			return nil, err
		}
		reg.Timestamp = ts.UTC()
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

const insertColumns = `(registered_at, first_name, last_name, email, phone, seminar_date,
		 timeline, status, seminar_assigned, attended, notes)`

func (r *RegistrationRepository) Append(ctx context.Context, schema entity.Schema, reg *entity.Registration) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO `+r.table()+` `+insertColumns+`
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		insertArgs(reg)...,
	)
	return err
}

// AppendIfAbsent relies on the lower(email) unique index, so concurrent inserts of one email yield one row.
// Call EnsureTable first.
func (r *RegistrationRepository) AppendIfAbsent(ctx context.Context, schema entity.Schema, reg *entity.Registration) (bool, error) {
	if !r.UniqueEmails {
		return false, fmt.Errorf("table %s has no unique email index", r.Table)
	}

	query := `INSERT INTO ` + r.table() + ` ` + insertColumns + `
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT DO NOTHING`
	if !r.hasIndex() {
		// without the index two concurrent inserts of one email can both pass the check
		query = `INSERT INTO ` + r.table() + ` ` + insertColumns + `
		SELECT $1::timestamptz, $2::text, $3::text, $4::text, $5::text, $6::text,
		       $7::text, $8::text, $9::text, $10::text, $11::text
		WHERE NOT EXISTS (SELECT 1 FROM ` + r.table() + ` WHERE lower(email) = lower($4::text))`
	}

	res, err := r.DB.ExecContext(ctx, query, insertArgs(reg)...)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *RegistrationRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

func insertArgs(reg *entity.Registration) []interface{} {
	return []interface{}{
		reg.Timestamp,
		reg.FirstName,
		reg.LastName,
		strings.TrimSpace(reg.Email),
		reg.Phone,
		reg.SeminarDate,
		reg.Timeline,
		reg.Status,
		reg.SeminarAssigned,
		reg.Attended,
		reg.Notes,
	}
}
