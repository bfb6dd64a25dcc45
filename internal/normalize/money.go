package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/caseflow-app/client-aggregator/internal/common"
)

// Amount is a parsed monetary value in a canonical currency code.
type Amount struct {
	Value        decimal.Decimal
	CurrencyCode string
}

var currencySymbols = map[string]string{
	"€":  "EUR",
	"$":  "USD",
	"£":  "GBP",
	"R$": "BRL",
}

var (
	reCurrencyCode = regexp.MustCompile(`(?i)\b(EUR|USD|GBP|BRL|CHF|CAD|AUD)\b`)
	reNumber       = regexp.MustCompile(`-?[\d][\d.,\s\x{00a0}]*`)
)

// Money parses a raw monetary string into a fixed-precision decimal plus
// an ISO currency code. Both "1.234,56" (European) and "1,234.56"
// grouping are accepted. currencyHint is used when the text itself
// carries no symbol or code; it defaults to EUR. Returns
// common.ErrUnparsableValue when no numeric pattern matches.
func Money(raw, currencyHint string) (Amount, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Amount{}, fmt.Errorf("money %q: %w", raw, common.ErrUnparsableValue)
	}

	currency := strings.ToUpper(strings.TrimSpace(currencyHint))
	if m := reCurrencyCode.FindString(s); m != "" {
		currency = strings.ToUpper(m)
		s = strings.Replace(s, m, "", 1)
	} else {
		// longest symbols first so R$ is not read as $
		for _, sym := range []string{"R$", "€", "£", "$"} {
			if strings.Contains(s, sym) {
				currency = currencySymbols[sym]
				s = strings.Replace(s, sym, "", 1)
				break
			}
		}
	}
	if currency == "" {
		currency = "EUR"
	}

	num := reNumber.FindString(s)
	if num == "" {
		return Amount{}, fmt.Errorf("money %q: %w", raw, common.ErrUnparsableValue)
	}
	num = strings.Map(func(r rune) rune {
		if r == ' ' || r == ' ' {
			return -1
		}
		return r
	}, num)

	canonical, ok := canonicalNumber(num)
	if !ok {
		return Amount{}, fmt.Errorf("money %q: %w", raw, common.ErrUnparsableValue)
	}
	d, err := decimal.NewFromString(canonical)
	if err != nil {
		return Amount{}, fmt.Errorf("money %q: %w", raw, common.ErrUnparsableValue)
	}
	return Amount{Value: d, CurrencyCode: currency}, nil
}

// canonicalNumber rewrites a grouped numeric string into plain
// dot-decimal form. When both separators appear, the rightmost one is
// the decimal separator. A single trailing separator with one or two
// digits after it is a decimal separator; with three digits it is read
// as thousands grouping ("1.500" and "1,500" both mean 1500).
func canonicalNumber(num string) (string, bool) {
	lastComma := strings.LastIndex(num, ",")
	lastDot := strings.LastIndex(num, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			num = strings.ReplaceAll(num, ".", "")
			num = strings.Replace(num, ",", ".", 1)
		} else {
			num = strings.ReplaceAll(num, ",", "")
		}
	case lastComma >= 0:
		if isGrouping(num, ",") {
			num = strings.ReplaceAll(num, ",", "")
		} else if strings.Count(num, ",") == 1 {
			num = strings.Replace(num, ",", ".", 1)
		} else {
			return "", false
		}
	case lastDot >= 0:
		if isGrouping(num, ".") {
			num = strings.ReplaceAll(num, ".", "")
		} else if strings.Count(num, ".") > 1 {
			return "", false
		}
	}

	if num == "" || num == "-" {
		return "", false
	}
	return num, true
}

// isGrouping reports whether every group after the first separator has
// exactly three digits, i.e. the separators are thousands grouping
// rather than a decimal point.
func isGrouping(num, sep string) bool {
	parts := strings.Split(strings.TrimPrefix(num, "-"), sep)
	if len(parts) < 2 {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 {
			return false
		}
	}
	return true
}
