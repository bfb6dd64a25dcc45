package normalize

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/caseflow-app/client-aggregator/constants"
	"github.com/caseflow-app/client-aggregator/internal/common"
)

// identifierFields get digit/letter-only cleanup: fiscal and identity
// numbers are compared without spacing or punctuation noise.
var identifierFields = map[string]struct{}{
	"nif":             {},
	"niss":            {},
	"cc_number":       {},
	"passport_number": {},
	"iban":            {},
}

// Field canonicalizes one scalar (non-salary) field value according to
// its kind. The returned string is the comparable form stored next to
// the raw value in a FieldRecord.
func Field(name string, kind constants.FieldKind, raw string) (string, error) {
	switch kind {
	case constants.FieldMoney:
		amt, err := Money(raw, "")
		if err != nil {
			return "", err
		}
		return amt.Value.StringFixed(2) + " " + amt.CurrencyCode, nil
	case constants.FieldDate:
		t, ok := Date(raw)
		if !ok {
			return "", fmt.Errorf("date %q: %w", raw, common.ErrUnparsableValue)
		}
		return t.Format("2006-01-02"), nil
	default:
		return text(name, raw)
	}
}

func text(name, raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("field %q empty: %w", name, common.ErrNormalizationFailed)
	}
	if _, ok := identifierFields[strings.ToLower(name)]; ok {
		cleaned := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return unicode.ToUpper(r)
			}
			return -1
		}, s)
		if cleaned == "" {
			return "", fmt.Errorf("field %q empty after cleanup: %w", name, common.ErrNormalizationFailed)
		}
		return cleaned, nil
	}
	return strings.Join(strings.Fields(s), " "), nil
}
