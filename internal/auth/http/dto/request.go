// Package dto provides request and response types for the auth HTTP API.
package dto

import (
	validation "github.com/jellydator/validation"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	transportDomain "github.com/allisson/carevault/internal/transport/domain"
	customValidation "github.com/allisson/carevault/internal/validation"
)

// LoginRequest is the decrypted login payload.
type LoginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Timestamp int64  `json:"timestamp"`
}

// Validate checks that all credential parts are present.
func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.Timestamp, validation.Required, validation.Min(int64(1))),
	)
}

// ToCredentials converts the request to transport credentials.
func (r *LoginRequest) ToCredentials() *transportDomain.Credentials {
	return &transportDomain.Credentials{
		Email:     r.Email,
		Password:  r.Password,
		Timestamp: r.Timestamp,
	}
}

// CreateUserRequest registers a login account.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Validate checks the request shape. Password strength is enforced by the use case.
func (r *CreateUserRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, customValidation.Email),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.Role, validation.Required, validation.In(
			string(accessDomain.RoleAdmin),
			string(accessDomain.RoleClinician),
			string(accessDomain.RolePatient),
		)),
	)
}
