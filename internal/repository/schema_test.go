package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectSchemaTables(mock sqlmock.Sqlmock) {
	for _, table := range []string{"admins", "teachers", "students", "feedback"} {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS " + table).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
}

func TestSchemaRepositoryInitFreshDatabase(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSchemaRepository(db)

	expectSchemaTables(mock)
	// Fresh feedback table: the statement above creates it without student_id,
	// so the migration probe reports the column missing and adds it.
	mock.ExpectQuery("information_schema.columns").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta("ALTER TABLE feedback ADD COLUMN student_id TEXT")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM admins WHERE username = $1)")).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("INSERT INTO admins").
		WithArgs("admin", "digest").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Init(context.Background(), "admin", "digest"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchemaRepositoryInitIdempotent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSchemaRepository(db)

	expectSchemaTables(mock)
	// Column already migrated and the admin already seeded: no writes happen.
	mock.ExpectQuery("information_schema.columns").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM admins WHERE username = $1)")).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	require.NoError(t, repo.Init(context.Background(), "admin", "digest"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchemaRepositoryInitKeepsExistingAdminPassword(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSchemaRepository(db)

	expectSchemaTables(mock)
	mock.ExpectQuery("information_schema.columns").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	// The probe finds the username, so the differing digest is never written.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM admins WHERE username = $1)")).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	require.NoError(t, repo.Init(context.Background(), "admin", "rotated-digest"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
