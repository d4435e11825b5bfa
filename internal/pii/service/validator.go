package service

import (
	"slices"
	"time"

	validation "github.com/jellydator/validation"

	piiDomain "github.com/allisson/carevault/internal/pii/domain"
	customValidation "github.com/allisson/carevault/internal/validation"
)

func rulesFor(fieldType piiDomain.FieldType) []validation.Rule {
	rules := []validation.Rule{customValidation.NotBlank}
	switch fieldType {
	case piiDomain.FieldEmail:
		rules = append(rules, validation.Length(3, 254), customValidation.Email)
	case piiDomain.FieldPhone:
		rules = append(rules, customValidation.Phone)
	case piiDomain.FieldName:
		rules = append(rules, validation.Length(1, 100))
	case piiDomain.FieldDate:
		rules = append(rules, validation.Date(time.DateOnly).Error("must be a date in YYYY-MM-DD format"))
	default:
		rules = append(rules, validation.Length(1, 4096))
	}
	return rules
}

func validatePII(kind piiDomain.Kind, fields map[string]string) piiDomain.ValidationResult {
	result := piiDomain.ValidationResult{IsValid: true}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		spec, err := piiDomain.Spec(kind, name)
		if err != nil {
			result.Errors = append(result.Errors, piiDomain.FieldError{Field: name, Message: err.Error()})
			continue
		}

		if err := validation.Validate(fields[name], rulesFor(spec.Type)...); err != nil {
			result.Errors = append(result.Errors, piiDomain.FieldError{Field: name, Message: err.Error()})
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result
}
