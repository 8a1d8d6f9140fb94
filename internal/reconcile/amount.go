package reconcile

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"ArthaFlowSaas/internal/faults"
)

var (
	currencyPrefixRe = regexp.MustCompile(`(?i)^(rp|idr|usd|eur|sgd|\$|€)\s*\.?\s*`)
	numericShapeRe   = regexp.MustCompile(`^[0-9][0-9.,]*$`)
	groupedDotsRe    = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)
	groupedCommasRe  = regexp.MustCompile(`^\d{1,3}(,\d{3})+$`)
)

// NormalizeAmount disambiguates a locale-ambiguous numeric string by counting
// separators. Repeated "." or "," groups of exactly three digits are thousands
// separators and are stripped; a single trailing two-digit ",NN" or ".NN" is a
// decimal point. "1.500.000" and "1,500,000" both normalize to 1500000;
// "1.500.000,25" normalizes to 1500000.25.
func NormalizeAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = currencyPrefixRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.TrimSuffix(s, "-")
	if s == "" {
		return decimal.Zero, faults.Invalid("amount", "empty amount string")
	}
	if !numericShapeRe.MatchString(s) {
		return decimal.Zero, faults.Invalid("amount", "not a numeric string: "+raw)
	}

	intPart := s
	fracPart := ""

	// A single trailing ,NN or .NN of length two is a decimal point, unless
	// the same separator also appears earlier as a three-digit grouping.
	if i := lastSeparator(s); i >= 0 {
		tail := s[i+1:]
		if len(tail) == 2 && !isGroupingSeparator(s, s[i]) {
			intPart = s[:i]
			fracPart = tail
		}
	}

	intPart = strings.ReplaceAll(intPart, ".", "")
	intPart = strings.ReplaceAll(intPart, ",", "")
	if intPart == "" {
		intPart = "0"
	}
	norm := intPart
	if fracPart != "" {
		norm = intPart + "." + fracPart
	}
	d, err := decimal.NewFromString(norm)
	if err != nil {
		return decimal.Zero, faults.Invalid("amount", "unparseable amount: "+raw)
	}
	return d, nil
}

func lastSeparator(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' || s[i] == ',' {
			return i
		}
	}
	return -1
}

// isGroupingSeparator reports whether sep is used as a thousands grouping in
// s, i.e. every occurrence is followed by exactly three digits through to the
// next separator or the end.
func isGroupingSeparator(s string, sep byte) bool {
	switch sep {
	case '.':
		return groupedDotsRe.MatchString(s)
	case ',':
		return groupedCommasRe.MatchString(s)
	}
	return false
}

// FormatAmountID renders d with Indonesian grouping: dots for thousands, a
// comma before a two-digit fraction. 1500000 → "1.500.000".
func FormatAmountID(d decimal.Decimal) string {
	return formatGrouped(d, '.', ',')
}

// FormatAmountEN renders d with English grouping: commas for thousands, a dot
// before a two-digit fraction. 1500000 → "1,500,000".
func FormatAmountEN(d decimal.Decimal) string {
	return formatGrouped(d, ',', '.')
}

func formatGrouped(d decimal.Decimal, group, point byte) string {
	s := d.String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart = s[:i]
		fracPart = s[i+1:]
		if len(fracPart) == 1 {
			fracPart += "0"
		}
	}
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(group)
		}
		b.WriteRune(c)
	}
	if fracPart != "" {
		b.WriteByte(point)
		b.WriteString(fracPart)
	}
	return b.String()
}
