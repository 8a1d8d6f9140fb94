package reconcile

import (
	"testing"
)

func TestMergeBlocks(t *testing.T) {
	blocks := []TextBlock{
		{Zone: ZoneHeader, Confidence: 0.93, Text: "Vendor: PT Maju Jaya\n" +
			"Invoice No: INV-2024-0042\n" +
			"Cost Center: CC-310"},
		{Zone: ZoneItems, Confidence: 0.88, Text: "Description  Qty  Unit Price  Total\n" +
			"Sewa Gedung  2  750.000  1.500.000"},
		{Zone: ZoneTotal, Confidence: 0.91, Text: "Grand Total : Rp 1.500.000"},
		{Zone: ZoneFallback, Confidence: 0.40, Text: "Tanggal 12 Januari 2024\n" +
			"Keterangan: Sewa kantor bulan Januari"},
	}

	inv := MergeBlocks(blocks)

	if inv.VendorName != "PT Maju Jaya" {
		t.Errorf("vendor = %q", inv.VendorName)
	}
	if inv.InvoiceNumber != "INV-2024-0042" {
		t.Errorf("invoice number = %q", inv.InvoiceNumber)
	}
	if inv.CostCenter != "CC-310" {
		t.Errorf("cost center = %q", inv.CostCenter)
	}
	if inv.GrandTotal != "1.500.000" {
		t.Errorf("grand total = %q", inv.GrandTotal)
	}
	if len(inv.Items) != 1 || inv.Items[0].Description != "Sewa Gedung" {
		t.Errorf("items = %+v", inv.Items)
	}
	// Date and description were absent from the dedicated zones and must come
	// from the fallback pass.
	if inv.InvoiceDate != "12 Januari 2024" {
		t.Errorf("invoice date = %q", inv.InvoiceDate)
	}
	if inv.Description != "Sewa kantor bulan Januari" {
		t.Errorf("description = %q", inv.Description)
	}
}

func TestMergeBlocksFallbackNeverOverridesPrimary(t *testing.T) {
	blocks := []TextBlock{
		{Zone: ZoneHeader, Text: "Vendor: PT Maju Jaya"},
		{Zone: ZoneFallback, Text: "Vendor: CV Salah Baca"},
	}
	inv := MergeBlocks(blocks)
	if inv.VendorName != "PT Maju Jaya" {
		t.Errorf("fallback overrode the primary zone: vendor = %q", inv.VendorName)
	}
}

func TestMergeBlocksRawTextConcatenation(t *testing.T) {
	blocks := []TextBlock{
		{Zone: ZoneHeader, Text: "Vendor: PT Maju Jaya"},
		{Zone: ZoneItems, Text: "   "},
		{Zone: ZoneTotal, Text: "Jumlah: 500.000"},
	}
	inv := MergeBlocks(blocks)
	want := "Vendor: PT Maju Jaya\nJumlah: 500.000\n"
	if inv.RawText != want {
		t.Errorf("raw text = %q, want %q", inv.RawText, want)
	}
}

func TestMaxConfidence(t *testing.T) {
	blocks := []TextBlock{
		{Confidence: 0.40}, {Confidence: 0.93}, {Confidence: 0.88},
	}
	if got := MaxConfidence(blocks); got != 0.93 {
		t.Errorf("MaxConfidence = %v, want 0.93", got)
	}
	if got := MaxConfidence(nil); got != 0 {
		t.Errorf("MaxConfidence(nil) = %v, want 0", got)
	}
}
