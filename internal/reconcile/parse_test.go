package reconcile

import (
	"testing"
)

func TestParseItemLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantDesc string
		wantAcct string
		wantQty  string
		wantUnit string
		wantTot  string
		wantOK   bool
	}{
		{
			name:     "three numeric tokens",
			line:     "Sewa Gedung Kantor  2  750.000  1.500.000",
			wantDesc: "Sewa Gedung Kantor",
			wantQty:  "2", wantUnit: "750000", wantTot: "1500000",
			wantOK: true,
		},
		{
			name:     "two numeric tokens defaults qty to one",
			line:     "Biaya Konsultasi\t500.000\t500.000",
			wantDesc: "Biaya Konsultasi",
			wantQty:  "1", wantUnit: "500000", wantTot: "500000",
			wantOK: true,
		},
		{
			name:     "pipe delimited with account code",
			line:     "Jasa Audit | 61-EXP-001 | 1 | 2.500.000 | 2.500.000",
			wantDesc: "Jasa Audit",
			wantAcct: "61-EXP-001",
			wantQty:  "1", wantUnit: "2500000", wantTot: "2500000",
			wantOK: true,
		},
		{
			name:   "too few tokens",
			line:   "just a description",
			wantOK: false,
		},
		{
			name:   "single numeric token",
			line:   "Konsumsi Rapat  150.000",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, ok := parseItemLine(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("parseItemLine(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if item.Description != tt.wantDesc {
				t.Errorf("description = %q, want %q", item.Description, tt.wantDesc)
			}
			if item.AccountCode != tt.wantAcct {
				t.Errorf("account code = %q, want %q", item.AccountCode, tt.wantAcct)
			}
			if item.Quantity.String() != tt.wantQty {
				t.Errorf("quantity = %s, want %s", item.Quantity, tt.wantQty)
			}
			if item.UnitPrice.String() != tt.wantUnit {
				t.Errorf("unit price = %s, want %s", item.UnitPrice, tt.wantUnit)
			}
			if item.LineTotal.String() != tt.wantTot {
				t.Errorf("line total = %s, want %s", item.LineTotal, tt.wantTot)
			}
		})
	}
}

func TestParseItemLinesSkipsHeaderRows(t *testing.T) {
	text := "No. Description  Qty  Unit Price  Total\n" +
		"Sewa Gedung  2  750.000  1.500.000\n" +
		"\n" +
		"Keterangan  Qty  Harga\n" +
		"ATK Kantor  5  20.000  100.000\n"

	items := parseItemLines(text)
	if len(items) != 2 {
		t.Fatalf("parseItemLines returned %d items, want 2", len(items))
	}
	if items[0].Description != "Sewa Gedung" {
		t.Errorf("first item description = %q", items[0].Description)
	}
	if got := ItemsTotal(items); got.String() != "1600000" {
		t.Errorf("ItemsTotal = %s, want 1600000", got)
	}
}
