package domain

import (
	"github.com/allisson/carevault/internal/errors"
)

var (
	// ErrUnknownKind indicates a record kind that has no field classification.
	ErrUnknownKind = errors.Wrap(errors.ErrInvalidInput, "unknown record kind")

	// ErrUnknownField indicates a field name that is not part of the record kind.
	ErrUnknownField = errors.Wrap(errors.ErrInvalidInput, "unknown field")

	// ErrValidation indicates PII values rejected before encryption.
	ErrValidation = errors.Wrap(errors.ErrInvalidInput, "pii validation failed")

	// ErrInvalidMaskingLevel indicates a masking level outside none, partial and full.
	ErrInvalidMaskingLevel = errors.Wrap(errors.ErrInvalidInput, "invalid masking level")

	// ErrUnmaskedView indicates a masked view asked for plaintext. Plaintext is
	// only returned by a reveal.
	ErrUnmaskedView = errors.Wrap(errors.ErrInvalidInput, "unmasked values require a reveal")

	// ErrRecordNotFound indicates the record does not exist.
	ErrRecordNotFound = errors.Wrap(errors.ErrNotFound, "record not found")

	// ErrLookupValueTaken indicates another record already uses a unique lookup value.
	ErrLookupValueTaken = errors.Wrap(errors.ErrConflict, "value already registered")

	// ErrBatchTooLarge indicates a batch reveal over the allowed size.
	ErrBatchTooLarge = errors.Wrap(errors.ErrInvalidInput, "too many records in batch")
)
