package commerce

import (
	"regexp"
	"strings"
)

// The platform has no first-class customer-number or company field, so both
// are encoded in the free-text note. The canonical format written by the
// portal's own registration flow is "Kundennummer: <n>, Unternehmen: <c>",
// but the note is also edited by humans and by older tooling with looser
// conventions, so extraction falls back through progressively weaker
// heuristics instead of trusting the canonical format alone.
var (
	customerNumberPattern = regexp.MustCompile(`(?i)Kundennummer:\s*([^,\n]+)`)
	companyNamePattern    = regexp.MustCompile(`(?i)Unternehmen:\s*([^,\n]+)`)
	leadingDigitsPattern  = regexp.MustCompile(`^\d+`)
	allDigitsPattern      = regexp.MustCompile(`^\d+$`)
)

// ExtractCustomerNumber recovers a customer number from a note field.
// Malformed or empty input yields an empty string, never an error.
//
// Tiers, first match wins:
//  1. canonical "Kundennummer: <n>" label (case-insensitive)
//  2. note consisting of digits only, returned verbatim
//  3. a leading run of digits
func ExtractCustomerNumber(note string) string {
	if m := customerNumberPattern.FindStringSubmatch(note); m != nil {
		return strings.TrimSpace(m[1])
	}

	trimmed := strings.TrimSpace(note)
	if allDigitsPattern.MatchString(trimmed) {
		return trimmed
	}
	if m := leadingDigitsPattern.FindString(trimmed); m != "" {
		return m
	}
	return ""
}

// ExtractCompanyName recovers a company name from a note field.
// Only the canonical "Unternehmen: <c>" label is recognized; there is no
// safe fallback for free-text company names.
func ExtractCompanyName(note string) string {
	if m := companyNamePattern.FindStringSubmatch(note); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// ComposeNote renders the canonical note format from structured values.
// Empty values are omitted; both empty yields an empty note.
func ComposeNote(customerNumber, companyName string) string {
	parts := make([]string, 0, 2)
	if customerNumber != "" {
		parts = append(parts, "Kundennummer: "+customerNumber)
	}
	if companyName != "" {
		parts = append(parts, "Unternehmen: "+companyName)
	}
	return strings.Join(parts, ", ")
}
