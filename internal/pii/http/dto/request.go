// Package dto provides data transfer objects for the records API.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/carevault/internal/validation"
)

// CreateRecordRequest contains the owner and plaintext fields of a new record.
type CreateRecordRequest struct {
	OwnerID string            `json:"owner_id"`
	Fields  map[string]string `json:"fields"`
}

// Validate checks the request shape. Field contents are validated by the use case.
func (r *CreateRecordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.OwnerID, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Fields, validation.Required),
	)
}

// UpdateRecordRequest contains the fields to replace.
type UpdateRecordRequest struct {
	Fields map[string]string `json:"fields"`
}

// Validate checks that at least one field is present.
func (r *UpdateRecordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Fields, validation.Required),
	)
}

// RevealRequest names the fields to decrypt. Empty means every sensitive field.
type RevealRequest struct {
	Fields []string `json:"fields"`
}

// Validate checks that no requested field name is blank.
func (r *RevealRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Fields, validation.Each(validation.Required, customValidation.NotBlank)),
	)
}

// RevealBatchRequest names the records and fields of a batch reveal.
type RevealBatchRequest struct {
	IDs    []string `json:"ids"`
	Fields []string `json:"fields"`
}

// Validate checks the id list and field names.
func (r *RevealBatchRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.IDs, validation.Required, validation.Each(validation.Required)),
		validation.Field(&r.Fields, validation.Each(validation.Required, customValidation.NotBlank)),
	)
}
