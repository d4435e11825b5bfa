// Package testutil provides helpers for repository tests backed by go-sqlmock.
//
//	db, mock := testutil.NewMockDB(t)
//	mock.ExpectExec(testutil.Query("INSERT INTO audit_records")).WillReturnResult(sqlmock.NewResult(0, 1))
//
// Expectations are verified automatically when the test finishes.
package testutil

import (
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewMockDB returns a *sql.DB driven by sqlmock. Unmet expectations fail the test on cleanup.
func NewMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	return db, mock
}

// Query turns a literal SQL fragment into a pattern for sqlmock's regexp matcher.
func Query(fragment string) string {
	return regexp.QuoteMeta(fragment)
}
