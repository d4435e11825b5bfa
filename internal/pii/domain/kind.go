// Package domain defines PII record kinds, their field classification and the
// outward-facing projections of a record.
package domain

import (
	accessDomain "github.com/allisson/carevault/internal/access/domain"
)

// Kind is the type of domain object a PII record belongs to.
type Kind string

const (
	KindUser    Kind = "user"
	KindPatient Kind = "patient"
)

// ParseKind validates a kind coming from a URL or a CLI flag.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindUser, KindPatient:
		return Kind(s), nil
	default:
		return "", ErrUnknownKind
	}
}

// ResourceType maps the kind onto the resource type the access gate checks.
func (k Kind) ResourceType() accessDomain.ResourceType {
	if k == KindPatient {
		return accessDomain.ResourcePatient
	}
	return accessDomain.ResourceUser
}

// FieldType selects validation and partial masking rules.
type FieldType string

const (
	FieldEmail   FieldType = "email"
	FieldPhone   FieldType = "phone"
	FieldName    FieldType = "name"
	FieldDate    FieldType = "date"
	FieldGeneric FieldType = "generic"
)

// StoragePolicy decides where a field value is persisted.
type StoragePolicy int

const (
	// StoreEncrypted keeps only the ciphertext.
	StoreEncrypted StoragePolicy = iota + 1
	// StoreClear keeps the value in clear. Used for non-sensitive attributes.
	StoreClear
	// StoreBoth keeps a normalized clear copy for lookups and the ciphertext for display.
	StoreBoth
)

// FieldSpec classifies one field of a record kind.
type FieldSpec struct {
	Name     string
	Type     FieldType
	Policy   StoragePolicy
	Required bool
}

// Sensitive reports whether the field has an encrypted copy.
func (s FieldSpec) Sensitive() bool {
	return s.Policy == StoreEncrypted || s.Policy == StoreBoth
}

var fieldSpecs = map[Kind][]FieldSpec{
	KindUser: {
		{Name: "email", Type: FieldEmail, Policy: StoreBoth, Required: true},
		{Name: "first_name", Type: FieldName, Policy: StoreEncrypted, Required: true},
		{Name: "last_name", Type: FieldName, Policy: StoreEncrypted, Required: true},
		{Name: "phone", Type: FieldPhone, Policy: StoreEncrypted},
		{Name: "locale", Type: FieldGeneric, Policy: StoreClear},
	},
	KindPatient: {
		{Name: "email", Type: FieldEmail, Policy: StoreBoth},
		{Name: "first_name", Type: FieldName, Policy: StoreEncrypted, Required: true},
		{Name: "last_name", Type: FieldName, Policy: StoreEncrypted, Required: true},
		{Name: "date_of_birth", Type: FieldDate, Policy: StoreEncrypted, Required: true},
		{Name: "phone", Type: FieldPhone, Policy: StoreEncrypted},
		{Name: "address", Type: FieldGeneric, Policy: StoreEncrypted},
		{Name: "insurance_number", Type: FieldGeneric, Policy: StoreEncrypted},
		{Name: "medical_notes", Type: FieldGeneric, Policy: StoreEncrypted},
		{Name: "gender", Type: FieldGeneric, Policy: StoreClear},
	},
}

// Specs returns the field specs of a kind in declaration order.
func Specs(kind Kind) ([]FieldSpec, error) {
	specs, ok := fieldSpecs[kind]
	if !ok {
		return nil, ErrUnknownKind
	}
	return specs, nil
}

// Spec returns the spec of one field.
func Spec(kind Kind, name string) (FieldSpec, error) {
	specs, err := Specs(kind)
	if err != nil {
		return FieldSpec{}, err
	}
	for _, s := range specs {
		if s.Name == name {
			return s, nil
		}
	}
	return FieldSpec{}, ErrUnknownField
}

// SensitiveFields returns the names of every field of kind that is encrypted at rest.
func SensitiveFields(kind Kind) []string {
	var names []string
	for _, s := range fieldSpecs[kind] {
		if s.Sensitive() {
			names = append(names, s.Name)
		}
	}
	return names
}

// MissingRequired returns the required fields of kind absent from fields.
func MissingRequired(kind Kind, fields map[string]string) []string {
	var missing []string
	for _, s := range fieldSpecs[kind] {
		if !s.Required {
			continue
		}
		if _, ok := fields[s.Name]; !ok {
			missing = append(missing, s.Name)
		}
	}
	return missing
}
