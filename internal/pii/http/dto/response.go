package dto

import (
	"time"

	apperrors "github.com/allisson/carevault/internal/errors"
	piiDomain "github.com/allisson/carevault/internal/pii/domain"
	piiUseCase "github.com/allisson/carevault/internal/pii/usecase"
)

// RecordResponse is the projection of a record returned to clients.
type RecordResponse struct {
	ID               string            `json:"id"`
	Kind             string            `json:"kind"`
	OwnerID          string            `json:"owner_id"`
	Masking          string            `json:"masking"`
	Fields           map[string]string `json:"fields"`
	HasEncryptedData map[string]bool   `json:"hasEncryptedData"`
	FailedFields     []string          `json:"failed_fields,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// MapRecordToResponse converts a safe record into its response.
func MapRecordToResponse(record *piiDomain.SafeRecord) RecordResponse {
	return RecordResponse{
		ID:               record.ID.String(),
		Kind:             string(record.Kind),
		OwnerID:          record.OwnerID.String(),
		Masking:          string(record.Masking),
		Fields:           record.Fields,
		HasEncryptedData: record.HasEncryptedData,
		FailedFields:     record.FailedFields(),
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
	}
}

// RevealBatchItem is one entry of a batch reveal response. Exactly one of
// Record and Error is set.
type RevealBatchItem struct {
	ID     string          `json:"id"`
	Record *RecordResponse `json:"record,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// RevealBatchResponse wraps the per-record results of a batch reveal.
type RevealBatchResponse struct {
	Data []RevealBatchItem `json:"data"`
}

// MapRevealResultsToResponse converts batch results. Failures are reported
// with the same error codes the single-record endpoints use.
func MapRevealResultsToResponse(results []*piiUseCase.RevealResult) RevealBatchResponse {
	items := make([]RevealBatchItem, 0, len(results))
	for _, result := range results {
		item := RevealBatchItem{ID: result.RecordID.String()}
		if result.Err != nil {
			item.Error = errorCode(result.Err)
		} else {
			resp := MapRecordToResponse(result.Record)
			item.Record = &resp
		}
		items = append(items, item)
	}
	return RevealBatchResponse{Data: items}
}

func errorCode(err error) string {
	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	case apperrors.Is(err, apperrors.ErrForbidden):
		return "forbidden"
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		return "invalid_input"
	default:
		return "internal_error"
	}
}
