package reconcile

import (
	"github.com/shopspring/decimal"
)

// RecordedFields are the transaction values the engine reconciles the
// document against. Callers overlay correction patches before passing them in;
// the engine itself never touches persistent state.
type RecordedFields struct {
	VendorName    string
	InvoiceNumber string
	GrandTotal    decimal.Decimal
	ItemsTotal    decimal.Decimal
	HasItems      bool
}

// Summary rolls the per-field outcomes up for the report consumer.
type Summary struct {
	TotalFields  int `json:"total_fields"`
	MatchedCount int `json:"matched_count"`
	WarningCount int `json:"warning_count"`
	BlockerCount int `json:"blocker_count"`
}

// Report is the machine-checkable reconciliation outcome.
type Report struct {
	Match      bool          `json:"match"`
	Mismatches []FieldResult `json:"mismatches"`
	Matches    []FieldResult `json:"matches"`
	Parsed     ParsedInvoice `json:"parsed"`
	Summary    Summary       `json:"summary"`
	Confidence float64       `json:"confidence"`
}

// Engine reconciles extracted document text against recorded transaction
// fields. It is pure and deterministic: identical inputs always produce the
// identical report, and unrelated transactions may be reconciled in parallel.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// Reconcile merges the extraction passes, parses the merged text and grades
// vendor name, invoice number, grand total and items total against the
// recorded fields.
func (e *Engine) Reconcile(recorded RecordedFields, blocks []TextBlock) Report {
	parsed := MergeBlocks(blocks)
	report := Report{Parsed: parsed, Confidence: MaxConfidence(blocks)}

	results := []FieldResult{
		compareText("vendor_name", recorded.VendorName, parsed.VendorName, parsed.RawText),
		compareText("invoice_number", recorded.InvoiceNumber, parsed.InvoiceNumber, parsed.RawText),
		compareNumeric("grand_total", recorded.GrandTotal, parsed.GrandTotal, parsed.RawText),
	}
	if recorded.HasItems {
		detected := ""
		if len(parsed.Items) > 0 {
			detected = ItemsTotal(parsed.Items).String()
		}
		results = append(results, compareNumeric("items_total", recorded.ItemsTotal, detected, parsed.RawText))
	}

	for _, r := range results {
		report.Summary.TotalFields++
		if r.Matched {
			report.Summary.MatchedCount++
			report.Matches = append(report.Matches, r)
			continue
		}
		switch r.Severity {
		case SeverityWarning:
			report.Summary.WarningCount++
		case SeverityBlocker:
			report.Summary.BlockerCount++
		}
		report.Mismatches = append(report.Mismatches, r)
	}

	report.Match = verdict(report)
	return report
}

// verdict applies the overall policy: the document matches unless at least one
// blocker mismatch or more than two accumulated warnings are present.
// Raw-text corroboration of both the invoice number and the amount overrides
// an otherwise failing verdict.
func verdict(report Report) bool {
	failing := report.Summary.BlockerCount >= 1 || report.Summary.WarningCount > 2
	if !failing {
		return true
	}
	if corroborated(report, "invoice_number") && corroborated(report, "grand_total") {
		return true
	}
	return false
}

func corroborated(report Report, field string) bool {
	for _, r := range append(report.Matches, report.Mismatches...) {
		if r.Field == field {
			return r.Matched || r.RawTextHit
		}
	}
	return false
}

// MismatchedFieldNames lists the fields an exception case should allowlist.
func (r Report) MismatchedFieldNames() []string {
	names := make([]string, 0, len(r.Mismatches))
	for _, m := range r.Mismatches {
		name := m.Field
		if name == "items_total" {
			name = "items"
		}
		names = append(names, name)
	}
	return names
}
