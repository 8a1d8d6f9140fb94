package reconcile

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func invoiceBlocks() []TextBlock {
	return []TextBlock{
		{Zone: ZoneHeader, Confidence: 0.93, Text: "Vendor: PT Maju Jaya\n" +
			"Invoice No: INV-2024-0042\n" +
			"Tanggal 12 Januari 2024"},
		{Zone: ZoneItems, Confidence: 0.88, Text: "Sewa Gedung  2  750.000  1.500.000"},
		{Zone: ZoneTotal, Confidence: 0.91, Text: "Grand Total : Rp 1.500.000"},
	}
}

func TestReconcileCleanMatch(t *testing.T) {
	e := NewEngine()
	recorded := RecordedFields{
		VendorName:    "PT Maju Jaya",
		InvoiceNumber: "INV-2024-0042",
		GrandTotal:    decimal.NewFromInt(1500000),
		ItemsTotal:    decimal.NewFromInt(1500000),
		HasItems:      true,
	}

	report := e.Reconcile(recorded, invoiceBlocks())

	if !report.Match {
		t.Fatalf("expected match, mismatches: %+v", report.Mismatches)
	}
	if report.Summary.TotalFields != 4 || report.Summary.MatchedCount != 4 {
		t.Errorf("summary = %+v, want 4/4 matched", report.Summary)
	}
	if report.Confidence != 0.93 {
		t.Errorf("confidence = %v, want 0.93", report.Confidence)
	}
}

func TestReconcileBlockerFailsVerdict(t *testing.T) {
	e := NewEngine()
	recorded := RecordedFields{
		VendorName:    "PT Maju Jaya",
		InvoiceNumber: "INV-2024-0042",
		GrandTotal:    decimal.NewFromInt(9750000),
	}

	report := e.Reconcile(recorded, invoiceBlocks())

	if report.Match {
		t.Fatal("a blocker on grand_total must fail the verdict")
	}
	if report.Summary.BlockerCount != 1 {
		t.Errorf("summary = %+v, want one blocker", report.Summary)
	}
}

func TestReconcileCorroborationOverridesFailingVerdict(t *testing.T) {
	e := NewEngine()
	// The vendor line is garbled beyond the warning threshold, but the invoice
	// number and the amount are both literally present in the raw text.
	blocks := []TextBlock{
		{Zone: ZoneHeader, Confidence: 0.55, Text: "Vendor: XQ##R ZZA\n" +
			"Invoice No: INV-2024-0042"},
		{Zone: ZoneTotal, Confidence: 0.60, Text: "Grand Total : Rp 1.500.000"},
	}
	recorded := RecordedFields{
		VendorName:    "PT Maju Jaya",
		InvoiceNumber: "INV-2024-0042",
		GrandTotal:    decimal.NewFromInt(1500000),
	}

	report := e.Reconcile(recorded, blocks)

	if !report.Match {
		t.Fatalf("corroborated invoice number and amount should override, mismatches: %+v",
			report.Mismatches)
	}
	if report.Summary.BlockerCount != 1 {
		t.Errorf("vendor blocker should still be recorded, summary = %+v", report.Summary)
	}
}

func TestReconcileMissingFieldsAreWarnings(t *testing.T) {
	e := NewEngine()
	recorded := RecordedFields{
		VendorName:    "PT Maju Jaya",
		InvoiceNumber: "INV-2024-0042",
		GrandTotal:    decimal.NewFromInt(1500000),
	}

	report := e.Reconcile(recorded, []TextBlock{
		{Zone: ZoneFallback, Confidence: 0.2, Text: "halaman kosong"},
	})

	if report.Match {
		t.Fatal("three warnings exceed the accumulated-warning budget")
	}
	if report.Summary.WarningCount != 3 || report.Summary.BlockerCount != 0 {
		t.Errorf("summary = %+v, want three warnings and no blockers", report.Summary)
	}
}

func TestReconcileDeterministic(t *testing.T) {
	e := NewEngine()
	recorded := RecordedFields{
		VendorName:    "PT Maju Jaya",
		InvoiceNumber: "INV-2024-0042",
		GrandTotal:    decimal.NewFromInt(1500000),
		ItemsTotal:    decimal.NewFromInt(1500000),
		HasItems:      true,
	}

	first := e.Reconcile(recorded, invoiceBlocks())
	second := e.Reconcile(recorded, invoiceBlocks())
	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs produced different reports")
	}
}

func TestMismatchedFieldNames(t *testing.T) {
	r := Report{Mismatches: []FieldResult{
		{Field: "vendor_name"},
		{Field: "items_total"},
	}}
	got := r.MismatchedFieldNames()
	want := []string{"vendor_name", "items"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MismatchedFieldNames() = %v, want %v", got, want)
	}
}
