package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		min  float64
		max  float64
	}{
		{"PT Maju Jaya", "PT Maju Jaya", 1.0, 1.0},
		{"PT Maju Jaya", "pt. maju jaya", 1.0, 1.0},
		{"PT Maju Jaya", "PT Maju Jay", 0.9, 1.0},
		{"PT Maju Jaya", "CV Sentosa Abadi", 0.0, 0.4},
		{"", "", 1.0, 1.0},
		{"PT Maju Jaya", "", 0.0, 0.0},
	}
	for _, tt := range tests {
		got := Similarity(tt.a, tt.b)
		if got < tt.min || got > tt.max {
			t.Errorf("Similarity(%q, %q) = %.3f, want within [%.2f, %.2f]",
				tt.a, tt.b, got, tt.min, tt.max)
		}
	}
}

func TestCompareText(t *testing.T) {
	tests := []struct {
		name         string
		expected     string
		detected     string
		rawText      string
		wantMatched  bool
		wantSeverity Severity
		wantRawHit   bool
	}{
		{
			name:     "close variant matches",
			expected: "PT Maju Jaya", detected: "PT. MAJU JAYA",
			wantMatched: true,
		},
		{
			name:     "moderate drift is a warning",
			expected: "INV-2024-0042", detected: "INV-2019-7742",
			wantMatched: false, wantSeverity: SeverityWarning,
		},
		{
			name:     "unrelated value is a blocker",
			expected: "INV-2024-0042", detected: "PO/7781/X",
			wantMatched: false, wantSeverity: SeverityBlocker,
		},
		{
			name:     "raw text hit overrides a failing score",
			expected: "INV-2024-0042", detected: "PO/7781/X",
			rawText:     "Nomor Faktur: INV-2024-0042 tanggal 12 Januari 2024",
			wantMatched: true, wantRawHit: true,
		},
		{
			name:     "absent detection is a warning not a blocker",
			expected: "PT Maju Jaya", detected: "",
			wantMatched: false, wantSeverity: SeverityWarning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := compareText("vendor_name", tt.expected, tt.detected, tt.rawText)
			if res.Matched != tt.wantMatched {
				t.Errorf("matched = %v, want %v (score %.3f)", res.Matched, tt.wantMatched, res.Score)
			}
			if res.Severity != tt.wantSeverity {
				t.Errorf("severity = %q, want %q", res.Severity, tt.wantSeverity)
			}
			if res.RawTextHit != tt.wantRawHit {
				t.Errorf("raw text hit = %v, want %v", res.RawTextHit, tt.wantRawHit)
			}
		})
	}
}

func TestCompareNumeric(t *testing.T) {
	expected := decimal.NewFromInt(1500000)

	t.Run("exact value matches", func(t *testing.T) {
		res := compareNumeric("grand_total", expected, "1.500.000", "")
		if !res.Matched || res.Score != 1.0 {
			t.Fatalf("matched = %v score = %.2f, want match at 1.0", res.Matched, res.Score)
		}
	})

	t.Run("within one percent tolerance", func(t *testing.T) {
		res := compareNumeric("grand_total", expected, "1.490.000", "")
		if !res.Matched {
			t.Fatalf("1.490.000 against 1.500.000 should match within tolerance")
		}
	})

	t.Run("outside tolerance is a blocker", func(t *testing.T) {
		res := compareNumeric("grand_total", expected, "1.400.000", "")
		if res.Matched || res.Severity != SeverityBlocker {
			t.Fatalf("matched = %v severity = %q, want blocker", res.Matched, res.Severity)
		}
	})

	t.Run("formatted substring in raw text corroborates", func(t *testing.T) {
		res := compareNumeric("grand_total", expected, "not-a-number",
			"Grand Total : Rp 1.500.000")
		if !res.Matched || !res.RawTextHit {
			t.Fatalf("matched = %v raw hit = %v, want corroborated match", res.Matched, res.RawTextHit)
		}
	})

	t.Run("absent detection is a warning", func(t *testing.T) {
		res := compareNumeric("grand_total", expected, "", "")
		if res.Matched || res.Severity != SeverityWarning {
			t.Fatalf("matched = %v severity = %q, want warning", res.Matched, res.Severity)
		}
	})
}

func TestAmountInText(t *testing.T) {
	v := decimal.NewFromInt(1500000)
	tests := []struct {
		raw  string
		want bool
	}{
		{"Total tagihan Rp 1.500.000,-", true},
		{"Amount due: 1,500,000 IDR", true},
		{"total 1500000", true},
		{"total 1.500.001", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := amountInText(v, tt.raw); got != tt.want {
			t.Errorf("amountInText(1500000, %q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
