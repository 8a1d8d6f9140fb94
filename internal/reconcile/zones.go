package reconcile

import (
	"regexp"
	"strings"
)

// Zone is the semantic responsibility assigned to one text-extraction pass.
// ZoneFallback is only ever used to fill gaps the dedicated zones left empty.
type Zone string

const (
	ZoneHeader   Zone = "header"
	ZoneItems    Zone = "items"
	ZoneTotal    Zone = "total"
	ZoneFallback Zone = "fallback"
)

// TextBlock is one extraction pass: its zone, the raw text the extractor
// produced for that pass, and the extractor's confidence for it.
type TextBlock struct {
	Zone       Zone    `json:"zone"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// ParsedInvoice is the structured result of merging all passes.
type ParsedInvoice struct {
	VendorName    string       `json:"vendor_name"`
	InvoiceNumber string       `json:"invoice_number"`
	InvoiceDate   string       `json:"invoice_date"`
	CostCenter    string       `json:"cost_center"`
	Description   string       `json:"description"`
	Items         []ParsedItem `json:"items"`
	GrandTotal    string       `json:"grand_total"`
	RawText       string       `json:"raw_text"`
}

var (
	vendorRe  = regexp.MustCompile(`(?im)^\s*(?:vendor|supplier|from|penjual)\s*[:\-]\s*(.+?)\s*$`)
	invoiceRe = regexp.MustCompile(`(?im)(?:invoice\s*(?:no|number|#)?|inv|faktur|no\.?\s*faktur)\s*[.:#]?\s*([A-Z0-9][A-Z0-9/\-.]{2,})`)
	costRe    = regexp.MustCompile(`(?im)(?:cost\s*cent(?:er|re)|cc|pusat\s*biaya)\s*[.:#]?\s*([A-Z0-9][A-Z0-9\-]*)`)
	descRe    = regexp.MustCompile(`(?im)^\s*(?:description|keterangan|memo)\s*[:\-]\s*(.+?)\s*$`)
	totalRe   = regexp.MustCompile(`(?im)(?:grand\s*total|total\s*(?:due|amount|tagihan)?|jumlah)\s*[.:]?\s*(?:rp|idr|usd|\$)?\s*\.?\s*([0-9][0-9.,]*)`)

	// Numeric and textual date shapes, including Indonesian month names.
	dateRes = []*regexp.Regexp{
		regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`),
		regexp.MustCompile(`\b(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})\b`),
		regexp.MustCompile(`(?i)\b(\d{1,2}\s+(?:Jan(?:uari)?|Feb(?:ruari)?|Mar(?:et)?|Apr(?:il)?|Mei|May|Jun(?:i)?|Jul(?:i)?|Agustus|Aug|Sep(?:tember)?|Okt(?:ober)?|Oct|Nov(?:ember)?|Des(?:ember)?|Dec)[a-z]*\s+\d{4})\b`),
	}
)

// MergeBlocks runs zone-specific extraction against each zone's primary block
// and retries still-empty fields against the fallback block. A fallback hit
// never overrides a value the primary block already produced.
func MergeBlocks(blocks []TextBlock) ParsedInvoice {
	var header, items, total, fallback string
	var raw strings.Builder
	for _, b := range blocks {
		switch b.Zone {
		case ZoneHeader:
			header += b.Text + "\n"
		case ZoneItems:
			items += b.Text + "\n"
		case ZoneTotal:
			total += b.Text + "\n"
		case ZoneFallback:
			fallback += b.Text + "\n"
		}
		if strings.TrimSpace(b.Text) != "" {
			raw.WriteString(b.Text)
			raw.WriteString("\n")
		}
	}

	inv := ParsedInvoice{RawText: raw.String()}

	inv.VendorName = firstGroup(vendorRe, header)
	inv.InvoiceNumber = firstGroup(invoiceRe, header)
	inv.InvoiceDate = firstDate(header)
	inv.CostCenter = firstGroup(costRe, header)
	inv.Description = firstGroup(descRe, header)

	inv.Items = parseItemLines(items)
	inv.GrandTotal = firstGroup(totalRe, total)

	// Gap-filling pass against the fallback block only.
	if inv.VendorName == "" {
		inv.VendorName = firstGroup(vendorRe, fallback)
	}
	if inv.InvoiceNumber == "" {
		inv.InvoiceNumber = firstGroup(invoiceRe, fallback)
	}
	if inv.InvoiceDate == "" {
		inv.InvoiceDate = firstDate(fallback)
	}
	if inv.CostCenter == "" {
		inv.CostCenter = firstGroup(costRe, fallback)
	}
	if inv.Description == "" {
		inv.Description = firstGroup(descRe, fallback)
	}
	if len(inv.Items) == 0 {
		inv.Items = parseItemLines(fallback)
	}
	if inv.GrandTotal == "" {
		inv.GrandTotal = firstGroup(totalRe, fallback)
	}

	return inv
}

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func firstDate(text string) string {
	for _, re := range dateRes {
		if m := re.FindStringSubmatch(text); len(m) >= 2 {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// MaxConfidence is the confidence figure reported for the whole merge: the
// best confidence any contributing pass achieved.
func MaxConfidence(blocks []TextBlock) float64 {
	max := 0.0
	for _, b := range blocks {
		if b.Confidence > max {
			max = b.Confidence
		}
	}
	return max
}
