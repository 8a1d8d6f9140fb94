package reconcile

import (
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/shopspring/decimal"
)

// Severity grades a field mismatch.
type Severity string

const (
	SeverityNone    Severity = ""
	SeverityWarning Severity = "warning"
	SeverityBlocker Severity = "blocker"
)

// Similarity thresholds and the numeric tolerance, per matching policy.
const (
	SimilarityMatch   = 0.75
	SimilarityWarning = 0.50
	NumericTolerance  = 0.01 // 1% of the expected value
)

var punctRe = regexp.MustCompile(`[^a-z0-9 ]+`)

// normalizeText lowercases, strips punctuation and collapses whitespace so the
// similarity score ignores case and formatting noise.
func normalizeText(s string) string {
	s = strings.ToLower(s)
	s = punctRe.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// Similarity is a Levenshtein ratio over normalized text in [0,1].
func Similarity(a, b string) float64 {
	na, nb := normalizeText(a), normalizeText(b)
	if na == "" && nb == "" {
		return 1.0
	}
	if na == "" || nb == "" {
		return 0.0
	}
	dist := levenshtein.ComputeDistance(na, nb)
	max := len([]rune(na))
	if l := len([]rune(nb)); l > max {
		max = l
	}
	return 1.0 - float64(dist)/float64(max)
}

// FieldResult is one per-field comparison record in the report.
type FieldResult struct {
	Field    string   `json:"field"`
	Expected string   `json:"expected"`
	Detected string   `json:"detected"`
	Score    float64  `json:"score"`
	Severity Severity `json:"severity,omitempty"`
	Matched  bool     `json:"matched"`
	// RawTextHit marks a literal corroboration of the expected value inside
	// the merged raw text, which overrides a failing score.
	RawTextHit bool `json:"raw_text_hit,omitempty"`
}

// compareText grades a text field. A literal substring hit of the normalized
// expected value inside the normalized raw text upgrades a failing score to a
// match; it defends against parser gaps.
func compareText(field, expected, detected, rawText string) FieldResult {
	res := FieldResult{Field: field, Expected: expected, Detected: detected}
	res.Score = Similarity(expected, detected)
	if normExp := normalizeText(expected); normExp != "" &&
		strings.Contains(normalizeText(rawText), normExp) {
		res.RawTextHit = true
	}
	switch {
	case res.Score >= SimilarityMatch:
		res.Matched = true
	case res.RawTextHit:
		res.Matched = true
	case detected == "":
		// Field absent from every pass: a parsing ambiguity, surfaced as a
		// softer mismatch rather than an error.
		res.Severity = SeverityWarning
	case res.Score >= SimilarityWarning:
		res.Severity = SeverityWarning
	default:
		res.Severity = SeverityBlocker
	}
	return res
}

// compareNumeric grades a numeric field: match when the absolute difference is
// within tolerance of the expected value, or when the expected value appears
// as a formatted substring anywhere in the raw text.
func compareNumeric(field string, expected decimal.Decimal, detected string, rawText string) FieldResult {
	res := FieldResult{Field: field, Expected: expected.String(), Detected: detected}
	got, err := NormalizeAmount(detected)
	if err == nil {
		diff := got.Sub(expected).Abs()
		limit := expected.Abs().Mul(decimal.NewFromFloat(NumericTolerance))
		if diff.LessThanOrEqual(limit) {
			res.Matched = true
			res.Score = 1.0
		}
	}
	if !res.Matched && amountInText(expected, rawText) {
		res.Matched = true
		res.RawTextHit = true
		res.Score = 1.0
	}
	if !res.Matched {
		res.Severity = SeverityBlocker
		if detected == "" {
			// Field absent from every pass: a parsing ambiguity, surfaced as
			// a softer mismatch rather than an error.
			res.Severity = SeverityWarning
		}
	}
	return res
}

// amountInText checks every common rendering of the expected value against the
// raw text: Indonesian grouping, English grouping and the plain form.
func amountInText(expected decimal.Decimal, rawText string) bool {
	if rawText == "" {
		return false
	}
	for _, form := range []string{
		FormatAmountID(expected),
		FormatAmountEN(expected),
		expected.String(),
	} {
		if strings.Contains(rawText, form) {
			return true
		}
	}
	return false
}
