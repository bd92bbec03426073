package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CapitalizeGivenName upper-cases the first letter and the letter after the
// first interior space. The second letter is left alone when the space is
// followed by another space.
func CapitalizeGivenName(name string) string {
	name = capitalizeFirst(name)

	pos := strings.Index(name, " ")
	if pos <= 0 || pos+1 >= len(name) {
		return name
	}
	if name[pos+1] == ' ' {
		return name
	}
	return name[:pos+1] + capitalizeFirst(name[pos+1:])
}

func capitalizeFirst(value string) string {
	if value == "" {
		return value
	}
	r, size := utf8.DecodeRuneInString(value)
	return string(unicode.ToUpper(r)) + value[size:]
}

// StripSpaces removes every space, as identifiers are sent upstream without them.
func StripSpaces(value string) string {
	return strings.ReplaceAll(value, " ", "")
}
