package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	piiDomain "github.com/allisson/carevault/internal/pii/domain"
)

func TestMask(t *testing.T) {
	tests := []struct {
		name      string
		fieldType piiDomain.FieldType
		value     string
		want      string
	}{
		{"email", piiDomain.FieldEmail, "jane.doe@example.com", "j******e@example.com"},
		{"email_short_local", piiDomain.FieldEmail, "jd@example.com", "j*@example.com"},
		{"email_single_char", piiDomain.FieldEmail, "j@example.com", "j@example.com"},
		{"email_without_at", piiDomain.FieldEmail, "janedoe", "***edoe"},
		{"phone", piiDomain.FieldPhone, "(555) 010-9999", "(***) ***-9999"},
		{"phone_short", piiDomain.FieldPhone, "1234", "****"},
		{"name", piiDomain.FieldName, "Jane", "J***"},
		{"name_unicode", piiDomain.FieldName, "Ñúñez", "Ñ****"},
		{"date", piiDomain.FieldDate, "1990-04-12", "1990-**-**"},
		{"date_not_iso", piiDomain.FieldDate, "12/04/1990", "******1990"},
		{"generic", piiDomain.FieldGeneric, "INS-0042-7781", "*********7781"},
		{"generic_short", piiDomain.FieldGeneric, "abc", "***"},
		{"empty", piiDomain.FieldName, "", ""},
		{"sentinel_untouched", piiDomain.FieldName, piiDomain.DecryptionFailed, piiDomain.DecryptionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Mask(tt.fieldType, tt.value)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Mask(tt.fieldType, tt.value))
		})
	}
}
