// Package validation holds the jellydator/validation rules shared by the DTOs
// and use cases.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/carevault/internal/errors"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9(][0-9 ().\-]*[0-9]$`)
)

// WrapValidationError turns a validation failure into ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// PasswordStrength is a validation.Rule for account passwords.
type PasswordStrength struct {
	MinLength      int
	RequireUpper   bool
	RequireLower   bool
	RequireNumber  bool
	RequireSpecial bool
}

type charClass struct {
	required bool
	code     string
	what     string
	match    func(rune) bool
}

func isSpecial(r rune) bool { return unicode.IsPunct(r) || unicode.IsSymbol(r) }

// Validate reports the first unmet requirement.
func (p PasswordStrength) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_password_strength", "password must be a string")
	}

	if len(s) < p.MinLength {
		return validation.NewError(
			"validation_password_min_length",
			fmt.Sprintf("password must be at least %d characters", p.MinLength),
		)
	}

	classes := []charClass{
		{p.RequireUpper, "uppercase", "an uppercase letter", unicode.IsUpper},
		{p.RequireLower, "lowercase", "a lowercase letter", unicode.IsLower},
		{p.RequireNumber, "number", "a number", unicode.IsNumber},
		{p.RequireSpecial, "special", "a special character", isSpecial},
	}
	for _, class := range classes {
		if class.required && !strings.ContainsFunc(s, class.match) {
			return validation.NewError(
				"validation_password_"+class.code,
				"password must contain at least "+class.what,
			)
		}
	}

	return nil
}

// Email checks the address shape only; deliverability is not verified.
var Email = validation.NewStringRuleWithError(
	emailRegex.MatchString,
	validation.NewError("validation_email_format", "must be a valid email address"),
)

// NotBlank rejects strings that are empty after trimming.
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool { return strings.TrimSpace(s) != "" },
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Phone accepts 7 to 15 digits, optionally prefixed with + and separated by
// spaces, dots, dashes or parentheses.
var Phone = validation.NewStringRuleWithError(
	func(s string) bool {
		if !phoneRegex.MatchString(s) {
			return false
		}
		digits := 0
		for _, r := range s {
			if unicode.IsDigit(r) {
				digits++
			}
		}
		return digits >= 7 && digits <= 15
	},
	validation.NewError("validation_phone_format", "must be a valid phone number"),
)
