package database_test

import (
	"bytes"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"whisprdraw-backend/internal/database"
)

var (
	createTable   = regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")
	countApplied  = regexp.QuoteMeta("SELECT COUNT(*) FROM schema_migrations WHERE name = $1")
	recordApplied = regexp.QuoteMeta("INSERT INTO schema_migrations (name, applied_at) VALUES ($1, NOW())")
)

func expectCount(mock sqlmock.Sqlmock, name string, count int) {
	mock.ExpectQuery(countApplied).
		WithArgs(name).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(count))
}

func TestMigrator_AppliesPendingInOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(createTable).WillReturnResult(sqlmock.NewResult(0, 0))

	expectCount(mock, "001_create_projects.sql", 1)

	expectCount(mock, "002_create_image_pairs.sql", 0)
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS image_pairs").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(recordApplied).WithArgs("002_create_image_pairs.sql").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	expectCount(mock, "003_row_level_security.sql", 0)
	mock.ExpectBegin()
	mock.ExpectExec("ALTER TABLE projects ENABLE ROW LEVEL SECURITY").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(recordApplied).WithArgs("003_row_level_security.sql").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	applied, err := database.NewMigratorWithDB(db, zerolog.Nop()).Run()
	require.NoError(t, err)
	assert.Equal(t, []string{"002_create_image_pairs.sql", "003_row_level_security.sql"}, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrator_RollsBackFailedMigration(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(createTable).WillReturnResult(sqlmock.NewResult(0, 0))
	expectCount(mock, "001_create_projects.sql", 0)
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS projects").WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	applied, err := database.NewMigratorWithDB(db, zerolog.Nop()).Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute migration 001_create_projects.sql")
	assert.Empty(t, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_SkipsWithoutURL(t *testing.T) {
	var buf bytes.Buffer

	applied, err := database.Migrate("", zerolog.New(&buf))
	require.NoError(t, err)
	assert.Empty(t, applied)
	assert.Contains(t, buf.String(), "migrations will be skipped")
}

func TestMigrate_UnreachableDatabase(t *testing.T) {
	_, err := database.Migrate("postgres://user@127.0.0.1:1/app?sslmode=disable&connect_timeout=1", zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping database")
}
