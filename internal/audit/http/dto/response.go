// Package dto provides data transfer objects for the audit HTTP API.
package dto

import (
	"encoding/hex"
	"time"

	auditDomain "github.com/allisson/carevault/internal/audit/domain"
)

// AuditRecordResponse represents an audit record in API responses.
type AuditRecordResponse struct {
	ID              string                      `json:"id"`
	ActorID         string                      `json:"actor_id"`
	ActorRole       string                      `json:"actor_role"`
	Action          string                      `json:"action"`
	Resource        string                      `json:"resource"`
	ResourceID      string                      `json:"resource_id"`
	Success         bool                        `json:"success"`
	ErrorMessage    string                      `json:"error_message,omitempty"`
	RequestMetadata auditDomain.RequestMetadata `json:"request_metadata"`
	Details         map[string]any              `json:"details,omitempty"`
	Signature       string                      `json:"signature,omitempty"`
	CreatedAt       time.Time                   `json:"created_at"`
}

// MapAuditRecordToResponse converts a domain audit record to an API response.
func MapAuditRecordToResponse(r *auditDomain.AuditRecord) AuditRecordResponse {
	return AuditRecordResponse{
		ID:              r.ID.String(),
		ActorID:         r.ActorID.String(),
		ActorRole:       r.ActorRole,
		Action:          string(r.Action),
		Resource:        r.Resource,
		ResourceID:      r.ResourceID,
		Success:         r.Success,
		ErrorMessage:    r.ErrorMessage,
		RequestMetadata: r.RequestMetadata,
		Details:         r.Details,
		Signature:       hex.EncodeToString(r.Signature),
		CreatedAt:       r.CreatedAt,
	}
}

// ListAuditRecordsResponse represents a page of audit records.
type ListAuditRecordsResponse struct {
	Data []AuditRecordResponse `json:"data"`
}

// MapAuditRecordsToListResponse converts domain audit records to a list response.
func MapAuditRecordsToListResponse(records []*auditDomain.AuditRecord) ListAuditRecordsResponse {
	data := make([]AuditRecordResponse, 0, len(records))
	for _, r := range records {
		data = append(data, MapAuditRecordToResponse(r))
	}
	return ListAuditRecordsResponse{Data: data}
}

// VerificationResponse summarizes a signature verification run.
type VerificationResponse struct {
	TotalChecked  int64    `json:"total_checked"`
	SignedCount   int64    `json:"signed_count"`
	UnsignedCount int64    `json:"unsigned_count"`
	ValidCount    int64    `json:"valid_count"`
	InvalidCount  int64    `json:"invalid_count"`
	InvalidIDs    []string `json:"invalid_ids"`
	Passed        bool     `json:"passed"`
}

// MapVerificationReportToResponse converts a verification report to an API response.
func MapVerificationReportToResponse(r *auditDomain.VerificationReport) VerificationResponse {
	ids := make([]string, 0, len(r.InvalidIDs))
	for _, id := range r.InvalidIDs {
		ids = append(ids, id.String())
	}
	return VerificationResponse{
		TotalChecked:  r.TotalChecked,
		SignedCount:   r.SignedCount,
		UnsignedCount: r.UnsignedCount,
		ValidCount:    r.ValidCount,
		InvalidCount:  r.InvalidCount,
		InvalidIDs:    ids,
		Passed:        r.InvalidCount == 0,
	}
}
