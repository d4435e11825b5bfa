package dto

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	auditDomain "github.com/allisson/carevault/internal/audit/domain"
)

func TestMapAuditRecordToResponse(t *testing.T) {
	record := &auditDomain.AuditRecord{
		ID:         uuid.Must(uuid.NewV7()),
		ActorID:    uuid.Must(uuid.NewV7()),
		ActorRole:  "admin",
		Action:     auditDomain.ActionCareTeamChange,
		Resource:   "patient",
		ResourceID: "p-1",
		Success:    true,
		Signature:  []byte{0xde, 0xad},
		CreatedAt:  time.Now().UTC(),
	}

	resp := MapAuditRecordToResponse(record)

	assert.Equal(t, record.ID.String(), resp.ID)
	assert.Equal(t, "care_team.change", resp.Action)
	assert.Equal(t, "dead", resp.Signature)
}

func TestMapAuditRecordsToListResponse_Empty(t *testing.T) {
	resp := MapAuditRecordsToListResponse(nil)
	assert.NotNil(t, resp.Data)
	assert.Empty(t, resp.Data)
}

func TestMapVerificationReportToResponse(t *testing.T) {
	bad := uuid.Must(uuid.NewV7())

	resp := MapVerificationReportToResponse(&auditDomain.VerificationReport{
		TotalChecked: 3,
		SignedCount:  3,
		ValidCount:   2,
		InvalidCount: 1,
		InvalidIDs:   []uuid.UUID{bad},
	})

	assert.False(t, resp.Passed)
	assert.Equal(t, []string{bad.String()}, resp.InvalidIDs)

	clean := MapVerificationReportToResponse(&auditDomain.VerificationReport{TotalChecked: 1, UnsignedCount: 1})
	assert.True(t, clean.Passed)
	assert.Empty(t, clean.InvalidIDs)
}
