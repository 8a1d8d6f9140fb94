package trx

import (
	"testing"
)

func TestBuildItems(t *testing.T) {
	header := []string{"description", "account_code", "quantity", "unit_price"}

	t.Run("valid rows", func(t *testing.T) {
		records := [][]string{
			header,
			{"Sewa Gedung", "61-EXP-001", "2", "750000"},
			{" ATK Kantor ", "", "5", "20000.50"},
		}
		items, results, ok := buildItems(records)
		if !ok {
			t.Fatalf("expected clean build, results: %+v", results)
		}
		if len(items) != 2 {
			t.Fatalf("items = %d, want 2", len(items))
		}
		if items[0].AccountCode != "61-EXP-001" {
			t.Errorf("account code = %q", items[0].AccountCode)
		}
		if items[1].Description != "ATK Kantor" {
			t.Errorf("description not trimmed: %q", items[1].Description)
		}
		if results[0].Row != 2 || !results[0].OK {
			t.Errorf("first row result = %+v", results[0])
		}
	})

	t.Run("one bad row rejects the file", func(t *testing.T) {
		records := [][]string{
			header,
			{"Sewa Gedung", "61-EXP-001", "2", "750000"},
			{"Konsumsi Rapat", "", "0", "150000"},
			{"", "61-EXP-002", "1", "50000"},
			{"Transportasi", "61-EXP-003", "3", "-100"},
			{"short row"},
		}
		_, results, ok := buildItems(records)
		if ok {
			t.Fatal("a bad row must reject the whole file")
		}
		if len(results) != 5 {
			t.Fatalf("results = %d, want 5", len(results))
		}
		wantOK := []bool{true, false, false, false, false}
		for i, want := range wantOK {
			if results[i].OK != want {
				t.Errorf("row %d ok = %v, want %v (%s)", results[i].Row, results[i].OK, want, results[i].Reason)
			}
		}
		for _, res := range results[1:] {
			if res.Reason == "" {
				t.Errorf("row %d rejected without a reason", res.Row)
			}
		}
	})
}

func TestGetFileExt(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"items.CSV", ".csv"},
		{"laporan.Xlsx", ".xlsx"},
		{"arsip.xls", ".xls"},
		{"noext", ""},
	}
	for _, tt := range tests {
		if got := getFileExt(tt.filename); got != tt.want {
			t.Errorf("getFileExt(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}
