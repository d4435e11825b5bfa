package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	apperrors "github.com/allisson/carevault/internal/errors"
	"github.com/allisson/carevault/internal/testutil"
)

func newAssignment() *accessDomain.CareTeamAssignment {
	return &accessDomain.CareTeamAssignment{
		PatientID:   uuid.Must(uuid.NewV7()),
		ClinicianID: uuid.Must(uuid.NewV7()),
		AssignedBy:  uuid.Must(uuid.NewV7()),
		CreatedAt:   time.Now().UTC(),
	}
}

func TestPostgreSQLCareTeamRepository_IsAssigned(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewPostgreSQLCareTeamRepository(db)
	a := newAssignment()

	mock.ExpectQuery(testutil.Query("SELECT EXISTS(SELECT 1 FROM care_team_assignments")).
		WithArgs(a.PatientID, a.ClinicianID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.IsAssigned(context.Background(), a.PatientID, a.ClinicianID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPostgreSQLCareTeamRepository_Assign(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLCareTeamRepository(db)
		a := newAssignment()

		mock.ExpectExec(testutil.Query("INSERT INTO care_team_assignments")).
			WithArgs(a.PatientID, a.ClinicianID, a.AssignedBy, a.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Assign(context.Background(), a))
	})

	t.Run("Error_Duplicate", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLCareTeamRepository(db)

		mock.ExpectExec(testutil.Query("INSERT INTO care_team_assignments")).
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Assign(context.Background(), newAssignment())
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}

func TestPostgreSQLCareTeamRepository_Remove(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLCareTeamRepository(db)
		a := newAssignment()

		mock.ExpectExec(testutil.Query("DELETE FROM care_team_assignments")).
			WithArgs(a.PatientID, a.ClinicianID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Remove(context.Background(), a.PatientID, a.ClinicianID))
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLCareTeamRepository(db)

		mock.ExpectExec(testutil.Query("DELETE FROM care_team_assignments")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Remove(context.Background(), uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, accessDomain.ErrAssignmentNotFound)
	})
}

func TestPostgreSQLCareTeamRepository_ListByPatient(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewPostgreSQLCareTeamRepository(db)
	a := newAssignment()

	mock.ExpectQuery(testutil.Query("FROM care_team_assignments")).
		WithArgs(a.PatientID).
		WillReturnRows(sqlmock.NewRows([]string{"patient_id", "clinician_id", "assigned_by", "created_at"}).
			AddRow(a.PatientID.String(), a.ClinicianID.String(), a.AssignedBy.String(), a.CreatedAt))

	got, err := repo.ListByPatient(context.Background(), a.PatientID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a, got[0])
}

func TestMySQLCareTeamRepository(t *testing.T) {
	t.Run("Success_AssignBinaryIDs", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewMySQLCareTeamRepository(db)
		a := newAssignment()

		pid, _ := a.PatientID.MarshalBinary()
		cid, _ := a.ClinicianID.MarshalBinary()
		by, _ := a.AssignedBy.MarshalBinary()

		mock.ExpectExec(testutil.Query("INSERT INTO care_team_assignments")).
			WithArgs(pid, cid, by, a.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Assign(context.Background(), a))
	})

	t.Run("Error_AssignDuplicate", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewMySQLCareTeamRepository(db)

		mock.ExpectExec(testutil.Query("INSERT INTO care_team_assignments")).
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

		assert.ErrorIs(t, repo.Assign(context.Background(), newAssignment()), apperrors.ErrConflict)
	})

	t.Run("Success_IsAssigned", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewMySQLCareTeamRepository(db)
		a := newAssignment()

		pid, _ := a.PatientID.MarshalBinary()
		cid, _ := a.ClinicianID.MarshalBinary()

		mock.ExpectQuery(testutil.Query("SELECT EXISTS")).
			WithArgs(pid, cid).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		ok, err := repo.IsAssigned(context.Background(), a.PatientID, a.ClinicianID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Success_ListByPatient", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewMySQLCareTeamRepository(db)
		a := newAssignment()

		pid, _ := a.PatientID.MarshalBinary()
		cid, _ := a.ClinicianID.MarshalBinary()
		by, _ := a.AssignedBy.MarshalBinary()

		mock.ExpectQuery(testutil.Query("FROM care_team_assignments")).
			WithArgs(pid).
			WillReturnRows(sqlmock.NewRows([]string{"patient_id", "clinician_id", "assigned_by", "created_at"}).
				AddRow(pid, cid, by, a.CreatedAt))

		got, err := repo.ListByPatient(context.Background(), a.PatientID)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, a, got[0])
	})

	t.Run("Error_RemoveDatabase", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewMySQLCareTeamRepository(db)

		mock.ExpectExec(testutil.Query("DELETE FROM care_team_assignments")).
			WillReturnError(errors.New("lock wait timeout"))

		err := repo.Remove(context.Background(), uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7()))
		assert.ErrorContains(t, err, "failed to remove clinician")
	})
}
