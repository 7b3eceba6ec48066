package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landingkit/seminar-signups/internal/entity"
)

var testTS = time.Date(2025, 1, 14, 19, 0, 0, 0, time.UTC)

func newMockRepo(t *testing.T, unique bool) (*RegistrationRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRegistrationRepository(db, "seminar_registrations", unique, nil), mock
}

func testRegistration() *entity.Registration {
	return entity.NewRegistration("Test", "User", "test@example.com", "(555) 123-4567", "Tuesday, Jan 14 at 7:00 PM EST", "6-12 months", testTS)
}

func TestEnsureTableCreatesTableAndIndex(t *testing.T) {
	repo, mock := newMockRepo(t, true)

	mock.ExpectQuery(`SELECT to_regclass\(\$1\) IS NOT NULL`).
		WithArgs(`"seminar_registrations"`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "seminar_registrations"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE UNIQUE INDEX IF NOT EXISTS "seminar_registrations_email_key" ON "seminar_registrations" \(lower\(email\)\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	created, err := repo.EnsureTable(context.Background(), entity.ExtendedSchema())
	require.NoError(t, err)
	assert.True(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureTableExistingWithoutIndex(t *testing.T) {
	repo, mock := newMockRepo(t, false)

	mock.ExpectQuery(`SELECT to_regclass`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	created, err := repo.EnsureTable(context.Background(), entity.CompactSchema())
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func expectEnsureTable(mock sqlmock.Sqlmock, indexErr error) {
	mock.ExpectQuery(`SELECT to_regclass`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	idx := mock.ExpectExec(`CREATE UNIQUE INDEX IF NOT EXISTS`)
	if indexErr != nil {
		idx.WillReturnError(indexErr)
	} else {
		idx.WillReturnResult(sqlmock.NewResult(0, 0))
	}
}

func TestAppendIfAbsent(t *testing.T) {
	repo, mock := newMockRepo(t, true)
	reg := testRegistration()

	expectEnsureTable(mock, nil)
	_, err := repo.EnsureTable(context.Background(), entity.ExtendedSchema())
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO "seminar_registrations" .* ON CONFLICT DO NOTHING`).
		WithArgs(testTS, "Test", "User", "test@example.com", "(555) 123-4567",
			"Tuesday, Jan 14 at 7:00 PM EST", "6-12 months", "Registered", "", "", "").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO "seminar_registrations" .* ON CONFLICT DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := repo.AppendIfAbsent(context.Background(), entity.ExtendedSchema(), reg)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.AppendIfAbsent(context.Background(), entity.ExtendedSchema(), reg)
	require.NoError(t, err)
	assert.False(t, inserted)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendIfAbsentRequiresIndex(t *testing.T) {
	repo, _ := newMockRepo(t, false)

	_, err := repo.AppendIfAbsent(context.Background(), entity.ExtendedSchema(), testRegistration())
	assert.Error(t, err)
}

func TestAppendPropagatesErrors(t *testing.T) {
	repo, mock := newMockRepo(t, false)
	mock.ExpectExec(`INSERT INTO "seminar_registrations"`).WillReturnError(errors.New("connection reset"))

	err := repo.Append(context.Background(), entity.CompactSchema(), testRegistration())
	assert.ErrorContains(t, err, "connection reset")
}

func TestRegistrations(t *testing.T) {
	repo, mock := newMockRepo(t, false)

	cols := []string{"registered_at", "first_name", "last_name", "email", "phone", "seminar_date",
		"timeline", "status", "seminar_assigned", "attended", "notes"}
	mock.ExpectQuery(`SELECT registered_at, first_name`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(testTS, "Test", "User", "test@example.com", "", "", "", "Registered", "Jan 14", "yes", "called back"))

	regs, err := repo.Registrations(context.Background(), entity.ExtendedSchema())
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.Equal(t, "test@example.com", regs[0].Email)
	assert.Equal(t, "Jan 14", regs[0].SeminarAssigned)
	assert.Equal(t, "called back", regs[0].Notes)
	assert.True(t, regs[0].Timestamp.Equal(testTS))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureTableRunsOnce(t *testing.T) {
	repo, mock := newMockRepo(t, true)
	expectEnsureTable(mock, nil)

	for i := 0; i < 3; i++ {
		_, err := repo.EnsureTable(context.Background(), entity.ExtendedSchema())
		require.NoError(t, err)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestEnsureTableWithExistingDuplicates - a table filled while duplicates were allowed keeps accepting registrations
func TestEnsureTableWithExistingDuplicates(t *testing.T) {
	repo, mock := newMockRepo(t, true)
	expectEnsureTable(mock, &pq.Error{Code: "23505", Message: "could not create unique index"})

	_, err := repo.EnsureTable(context.Background(), entity.ExtendedSchema())
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO "seminar_registrations" .* SELECT .* WHERE NOT EXISTS \(SELECT 1 FROM "seminar_registrations" WHERE lower\(email\) = lower\(\$4::text\)\)`).
		WithArgs(testTS, "Test", "User", "test@example.com", "(555) 123-4567",
			"Tuesday, Jan 14 at 7:00 PM EST", "6-12 months", "Registered", "", "", "").
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := repo.AppendIfAbsent(context.Background(), entity.ExtendedSchema(), testRegistration())
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureTableIndexFailure(t *testing.T) {
	repo, mock := newMockRepo(t, true)
	expectEnsureTable(mock, errors.New("permission denied"))

	_, err := repo.EnsureTable(context.Background(), entity.ExtendedSchema())
	assert.ErrorContains(t, err, "create email index")
}
