package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/carevault/internal/audit/domain"
	auditServiceMocks "github.com/allisson/carevault/internal/audit/service/mocks"
	"github.com/allisson/carevault/internal/audit/usecase/mocks"
	apperrors "github.com/allisson/carevault/internal/errors"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRecord() *auditDomain.AuditRecord {
	return &auditDomain.AuditRecord{
		ActorID:    uuid.Must(uuid.NewV7()),
		ActorRole:  "clinician",
		Action:     auditDomain.ActionPIIRead,
		Resource:   "patient",
		ResourceID: uuid.Must(uuid.NewV7()).String(),
		Success:    true,
	}
}

func TestSink_Record(t *testing.T) {
	t.Run("Success_SignsPersistsAndMirrors", func(t *testing.T) {
		repo := mocks.NewMockAuditRepository(t)
		signer := auditServiceMocks.NewMockSigner(t)
		mirror := auditServiceMocks.NewMockMirror(t)

		md := auditDomain.RequestMetadata{RequestID: "req-42", IPAddress: "10.1.1.1"}
		ctx := auditDomain.WithRequestMetadata(context.Background(), md)
		record := newRecord()

		signer.On("Sign", record).Return([]byte("sig"), nil).Once()
		repo.On("Create", mock.Anything, mock.MatchedBy(func(r *auditDomain.AuditRecord) bool {
			return string(r.Signature) == "sig" && r.RequestMetadata == md
		})).Return(nil).Once()
		mirror.On("Mirror", mock.Anything, record, true).Return(nil).Once()

		sink := NewSink(repo, signer, mirror, discardLogger())
		require.NoError(t, sink.Record(ctx, record))

		assert.NotEqual(t, uuid.Nil, record.ID)
		assert.False(t, record.CreatedAt.IsZero())
		assert.Equal(t, time.UTC, record.CreatedAt.Location())
		assert.Equal(t, record.CreatedAt, record.CreatedAt.Truncate(time.Microsecond))
	})

	t.Run("Error_PrimaryFailureIsAuditWrite", func(t *testing.T) {
		repo := mocks.NewMockAuditRepository(t)
		signer := auditServiceMocks.NewMockSigner(t)
		mirror := auditServiceMocks.NewMockMirror(t)

		record := newRecord()
		dbErr := errors.New("connection refused")

		signer.On("Sign", record).Return([]byte("sig"), nil).Once()
		repo.On("Create", mock.Anything, record).Return(dbErr).Once()
		mirror.On("Mirror", mock.Anything, record, false).Return(nil).Once()

		sink := NewSink(repo, signer, mirror, discardLogger())
		err := sink.Record(context.Background(), record)

		assert.ErrorIs(t, err, auditDomain.ErrAuditWrite)
		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("Error_MirrorFailureDoesNotMaskPrimaryFailure", func(t *testing.T) {
		repo := mocks.NewMockAuditRepository(t)
		signer := auditServiceMocks.NewMockSigner(t)
		mirror := auditServiceMocks.NewMockMirror(t)

		record := newRecord()
		dbErr := errors.New("disk full")

		signer.On("Sign", record).Return(nil, nil).Once()
		repo.On("Create", mock.Anything, record).Return(dbErr).Once()
		mirror.On("Mirror", mock.Anything, record, false).Return(errors.New("pipe closed")).Once()

		sink := NewSink(repo, signer, mirror, discardLogger())
		err := sink.Record(context.Background(), record)

		assert.ErrorIs(t, err, auditDomain.ErrAuditWrite)
		assert.ErrorIs(t, err, dbErr)
		assert.NotContains(t, err.Error(), "pipe closed")
	})

	t.Run("Success_MirrorFailureIsOnlyLogged", func(t *testing.T) {
		repo := mocks.NewMockAuditRepository(t)
		signer := auditServiceMocks.NewMockSigner(t)
		mirror := auditServiceMocks.NewMockMirror(t)

		record := newRecord()

		signer.On("Sign", record).Return([]byte("sig"), nil).Once()
		repo.On("Create", mock.Anything, record).Return(nil).Once()
		mirror.On("Mirror", mock.Anything, record, true).Return(errors.New("pipe closed")).Once()

		sink := NewSink(repo, signer, mirror, discardLogger())
		assert.NoError(t, sink.Record(context.Background(), record))
	})

	t.Run("Success_CanceledContextStillPersists", func(t *testing.T) {
		repo := mocks.NewMockAuditRepository(t)
		signer := auditServiceMocks.NewMockSigner(t)

		record := newRecord()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		signer.On("Sign", record).Return([]byte("sig"), nil).Once()
		repo.On("Create", mock.MatchedBy(func(c context.Context) bool {
			return c.Err() == nil
		}), record).Return(nil).Once()

		sink := NewSink(repo, signer, nil, discardLogger())
		assert.NoError(t, sink.Record(ctx, record))
	})

	t.Run("Error_SignFailure", func(t *testing.T) {
		repo := mocks.NewMockAuditRepository(t)
		signer := auditServiceMocks.NewMockSigner(t)

		record := newRecord()
		signer.On("Sign", record).Return(nil, errors.New("bad details")).Once()

		sink := NewSink(repo, signer, nil, discardLogger())
		err := sink.Record(context.Background(), record)

		assert.ErrorIs(t, err, auditDomain.ErrAuditWrite)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestSink_List(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := mocks.NewMockAuditRepository(t)
		signer := auditServiceMocks.NewMockSigner(t)

		actorID := uuid.Must(uuid.NewV7())
		filter := auditDomain.ListFilter{ActorID: &actorID}
		expected := []*auditDomain.AuditRecord{newRecord()}

		repo.On("List", mock.Anything, 0, 50, filter).Return(expected, nil).Once()

		sink := NewSink(repo, signer, nil, discardLogger())
		records, err := sink.List(context.Background(), 0, 50, filter)

		require.NoError(t, err)
		assert.Equal(t, expected, records)
	})

	t.Run("Error_InvalidTimeRange", func(t *testing.T) {
		repo := mocks.NewMockAuditRepository(t)
		signer := auditServiceMocks.NewMockSigner(t)

		to := time.Now().UTC()
		from := to.Add(time.Hour)

		sink := NewSink(repo, signer, nil, discardLogger())
		_, err := sink.List(context.Background(), 0, 50, auditDomain.ListFilter{From: &from, To: &to})

		assert.ErrorIs(t, err, auditDomain.ErrInvalidTimeRange)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestSink_Verify(t *testing.T) {
	t.Run("Success_CountsEveryCategory", func(t *testing.T) {
		repo := mocks.NewMockAuditRepository(t)
		signer := auditServiceMocks.NewMockSigner(t)

		valid := newRecord()
		valid.ID = uuid.Must(uuid.NewV7())
		valid.Signature = []byte("good")

		tampered := newRecord()
		tampered.ID = uuid.Must(uuid.NewV7())
		tampered.Signature = []byte("bad")

		unsigned := newRecord()
		unsigned.ID = uuid.Must(uuid.NewV7())

		to := time.Now().UTC()
		from := to.Add(-24 * time.Hour)

		repo.On("List", mock.Anything, 0, verifyBatchSize, auditDomain.ListFilter{From: &from, To: &to}).
			Return([]*auditDomain.AuditRecord{valid, tampered, unsigned}, nil).
			Once()
		signer.On("Verify", valid).Return(nil).Once()
		signer.On("Verify", tampered).Return(auditDomain.ErrSignatureInvalid).Once()

		sink := NewSink(repo, signer, nil, discardLogger())
		report, err := sink.Verify(context.Background(), from, to)

		require.NoError(t, err)
		assert.Equal(t, int64(3), report.TotalChecked)
		assert.Equal(t, int64(2), report.SignedCount)
		assert.Equal(t, int64(1), report.UnsignedCount)
		assert.Equal(t, int64(1), report.ValidCount)
		assert.Equal(t, int64(1), report.InvalidCount)
		assert.Equal(t, []uuid.UUID{tampered.ID}, report.InvalidIDs)
	})

	t.Run("Error_RepositoryFailure", func(t *testing.T) {
		repo := mocks.NewMockAuditRepository(t)
		signer := auditServiceMocks.NewMockSigner(t)

		to := time.Now().UTC()
		from := to.Add(-time.Hour)

		repo.On("List", mock.Anything, 0, verifyBatchSize, mock.Anything).
			Return(nil, errors.New("timeout")).
			Once()

		sink := NewSink(repo, signer, nil, discardLogger())
		_, err := sink.Verify(context.Background(), from, to)
		assert.Error(t, err)
	})

	t.Run("Error_InvalidTimeRange", func(t *testing.T) {
		sink := NewSink(mocks.NewMockAuditRepository(t), auditServiceMocks.NewMockSigner(t), nil, discardLogger())
		now := time.Now()
		_, err := sink.Verify(context.Background(), now, now.Add(-time.Minute))
		assert.ErrorIs(t, err, auditDomain.ErrInvalidTimeRange)
	})
}
