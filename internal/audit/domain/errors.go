package domain

import (
	"github.com/allisson/carevault/internal/errors"
)

var (
	// ErrAuditWrite indicates the primary audit store rejected an append. The
	// operation that produced the record must fail as well.
	ErrAuditWrite = errors.New("audit write failed")

	// ErrSignatureInvalid indicates an audit record signature does not verify.
	ErrSignatureInvalid = errors.New("audit record signature invalid")

	// ErrInvalidTimeRange indicates a verification or listing range that ends before it starts.
	ErrInvalidTimeRange = errors.Wrap(errors.ErrInvalidInput, "end must be after start")
)
