package utils

import (
	"strings"
	"time"
)

const (
	LayoutISODate   = "2006-01-02"
	LayoutLocalDate = "02/01/2006"
)

var dateOfBirthLayouts = []string{
	LayoutISODate,
	LayoutLocalDate,
	time.RFC3339,
	"2006",
}

// ParseDateOfBirth accepts yyyy-MM-dd, dd/MM/yyyy, RFC3339 and a bare year.
func ParseDateOfBirth(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateOfBirthLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// BirthYear returns 0 when the date cannot be parsed.
func BirthYear(dateOfBirth string) int {
	parsed, ok := ParseDateOfBirth(dateOfBirth)
	if !ok {
		return 0
	}
	return parsed.Year()
}

// FormatFHIRDate normalizes a date of birth to yyyy-MM-dd, leaving unknown formats untouched.
func FormatFHIRDate(dateOfBirth string) string {
	parsed, ok := ParseDateOfBirth(dateOfBirth)
	if !ok {
		return dateOfBirth
	}
	if len(strings.TrimSpace(dateOfBirth)) == 4 {
		return dateOfBirth
	}
	return parsed.Format(LayoutISODate)
}
