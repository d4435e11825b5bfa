package service

import (
	"strings"
	"time"

	piiDomain "github.com/allisson/carevault/internal/pii/domain"
)

const maskRune = '*'

// Mask partially redacts value according to its field type. The output only
// depends on the input.
func Mask(fieldType piiDomain.FieldType, value string) string {
	if value == "" || value == piiDomain.DecryptionFailed {
		return value
	}

	switch fieldType {
	case piiDomain.FieldEmail:
		return maskEmail(value)
	case piiDomain.FieldPhone:
		return maskPhone(value)
	case piiDomain.FieldName:
		return keepFirst(value)
	case piiDomain.FieldDate:
		return maskDate(value)
	default:
		return keepLast(value, 4)
	}
}

// maskEmail keeps the first and last character of the local part and the domain.
func maskEmail(value string) string {
	at := strings.LastIndexByte(value, '@')
	if at <= 0 {
		return keepLast(value, 4)
	}

	local := []rune(value[:at])
	domain := value[at:]

	if len(local) <= 2 {
		return string(local[0]) + strings.Repeat(string(maskRune), len(local)-1) + domain
	}

	masked := make([]rune, len(local))
	for i := range masked {
		masked[i] = maskRune
	}
	masked[0] = local[0]
	masked[len(local)-1] = local[len(local)-1]
	return string(masked) + domain
}

// maskPhone keeps the last four digits and the original separators.
func maskPhone(value string) string {
	digits := 0
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits++
		}
	}

	keep := 4
	if digits <= keep {
		keep = 0
	}

	out := []rune(value)
	seen := 0
	for i, r := range out {
		if r < '0' || r > '9' {
			continue
		}
		seen++
		if seen <= digits-keep {
			out[i] = maskRune
		}
	}
	return string(out)
}

// maskDate keeps the year of an ISO date.
func maskDate(value string) string {
	if _, err := time.Parse(time.DateOnly, value); err != nil {
		return keepLast(value, 4)
	}
	return value[:4] + "-**-**"
}

func keepFirst(value string) string {
	runes := []rune(value)
	for i := 1; i < len(runes); i++ {
		runes[i] = maskRune
	}
	return string(runes)
}

func keepLast(value string, n int) string {
	runes := []rune(value)
	if len(runes) <= n {
		return strings.Repeat(string(maskRune), len(runes))
	}
	for i := 0; i < len(runes)-n; i++ {
		runes[i] = maskRune
	}
	return string(runes)
}
