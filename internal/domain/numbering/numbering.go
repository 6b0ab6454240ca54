// Package numbering renders canonical document identifiers.
//
// The rendered string is the bit-exact contract with downstream printing
// and filing: DEV-YYYY-DDMM-NNNNNN-II for quotations and
// INV-YYYY-DDMM-NNNNNN-II for invoices. Everything here is pure: the
// sequence value comes from the caller, no I/O happens.
package numbering

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"fabriq/internal/core/apperror"
	"fabriq/internal/core/sequence"
)

// MaxSequence is the documented limit of the numbering scheme: 999,999
// documents per kind per year (6-digit zero-padded counter).
const MaxSequence int64 = 999_999

// stripDiacritics removes combining marks after NFD decomposition,
// so "Élodie" folds to "Elodie".
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Initials derives the two-letter client code: first letter of the first
// name component plus first letter of the last component, uppercased with
// diacritics stripped. Fails with InvalidClientName when the name does not
// contain at least two components starting with a letter.
func Initials(clientName string) (string, error) {
	parts := strings.Fields(clientName)
	if len(parts) < 2 {
		return "", apperror.NewInvalidClientName(clientName)
	}

	first, ok := initialOf(parts[0])
	if !ok {
		return "", apperror.NewInvalidClientName(clientName)
	}
	last, ok := initialOf(parts[len(parts)-1])
	if !ok {
		return "", apperror.NewInvalidClientName(clientName)
	}

	return first + last, nil
}

// initialOf extracts the folded, uppercased first letter of a name component.
func initialOf(component string) (string, bool) {
	folded, _, err := transform.String(stripDiacritics, component)
	if err != nil {
		folded = component
	}
	for _, r := range folded {
		if unicode.IsLetter(r) {
			return string(unicode.ToUpper(r)), true
		}
		// Leading apostrophes or hyphens are skipped, anything else is rejected.
		if r != '\'' && r != '-' {
			return "", false
		}
	}
	return "", false
}

// Format renders the canonical identifier for a document:
// {PREFIX}-{YYYY}-{DDMM}-{NNNNNN}-{II}.
//
// The date supplies the year, day and month fields (day-month order, so
// December 31st renders as 3112). seq is the allocated counter value,
// zero-padded to 6 digits. Deterministic: same inputs, same identifier.
func Format(kind sequence.Kind, date time.Time, seq int64, clientName string) (string, error) {
	if seq < 1 {
		return "", apperror.NewValidation("sequence value must be positive").
			WithDetail("value", seq)
	}
	if seq > MaxSequence {
		return "", apperror.NewSequenceOverflow(kind.String(), date.Year(), seq)
	}

	initials, err := Initials(clientName)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%04d-%s-%06d-%s",
		kind.Prefix(), date.Year(), date.Format("0201"), seq, initials), nil
}
