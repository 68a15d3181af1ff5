package spreadsheet

import (
	"strings"
	"unicode"
)

// Digits strips everything except 0-9 from a cell value. Numeric spreadsheet
// cells often arrive with a trailing ".0" artifact, and identifiers may carry
// embedded separators ("102-0103717" -> "1020103717"); both are tolerated.
func Digits(v string) string {
	s := strings.TrimSpace(v)
	if s == "" {
		return ""
	}
	s = strings.TrimSuffix(s, ".0")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Code normalizes a school statistical code. Unlike Digits it preserves
// letters ("M3964353" stays intact), strips the ".0" artifact and internal
// separators ("70308-1" -> "703081"), and upper-cases the result.
func Code(v string) string {
	s := strings.TrimSpace(v)
	if s == "" {
		return ""
	}
	s = strings.TrimSuffix(s, ".0")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// ParseBool coerces the truthy/falsy vocabulary found in the source files
// (English and Arabic). Unrecognized input defaults to true: absence of a
// flag implies the record is active.
func ParseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "0", "false", "no", "n", "لا":
		return false
	case "1", "true", "yes", "y", "نعم":
		return true
	}
	return true
}
