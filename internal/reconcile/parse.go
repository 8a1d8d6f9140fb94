package reconcile

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ParsedItem is one detail line recovered from the items zone.
type ParsedItem struct {
	Description string          `json:"description"`
	AccountCode string          `json:"account_code,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

var (
	itemSplitRe   = regexp.MustCompile(`\s{2,}|\t+|\s*\|\s*`)
	accountCodeRe = regexp.MustCompile(`^\d+-[A-Za-z0-9]+-[A-Za-z0-9]+$`)
	numericTokRe  = regexp.MustCompile(`^(?:rp|idr|\$)?\s*\.?\s*-?[0-9][0-9.,]*$`)
	headerLineRe  = regexp.MustCompile(`(?i)^\s*(?:no\.?\s+)?(?:description|item|qty|quantity|keterangan|uraian)\b`)
)

// parseItemLines splits each candidate row on multi-space/tab/pipe delimiters.
// The rightmost 2-3 numeric tokens are quantity, unit price and line total in
// that order from the right; a token shaped like an account code
// (digits-segment-segment) is lifted out, and whatever remains left of the
// quantity token is the description.
func parseItemLines(text string) []ParsedItem {
	var items []ParsedItem
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || headerLineRe.MatchString(line) {
			continue
		}
		item, ok := parseItemLine(line)
		if ok {
			items = append(items, item)
		}
	}
	return items
}

func parseItemLine(line string) (ParsedItem, bool) {
	tokens := itemSplitRe.Split(line, -1)
	var fields []string
	for _, t := range tokens {
		t = strings.TrimSpace(t)
		if t != "" {
			fields = append(fields, t)
		}
	}
	if len(fields) < 2 {
		return ParsedItem{}, false
	}

	// Collect trailing numeric tokens, rightmost first, at most three.
	var nums []decimal.Decimal
	cut := len(fields)
	for i := len(fields) - 1; i >= 0 && len(nums) < 3; i-- {
		if !numericTokRe.MatchString(strings.ToLower(fields[i])) {
			break
		}
		d, err := NormalizeAmount(fields[i])
		if err != nil {
			break
		}
		nums = append(nums, d)
		cut = i
	}
	if len(nums) < 2 {
		return ParsedItem{}, false
	}

	item := ParsedItem{}
	// nums is rightmost-first: [total, price, qty] or [total, price].
	switch len(nums) {
	case 3:
		item.LineTotal = nums[0]
		item.UnitPrice = nums[1]
		item.Quantity = nums[2]
	case 2:
		item.LineTotal = nums[0]
		item.UnitPrice = nums[1]
		item.Quantity = decimal.NewFromInt(1)
	}

	var descParts []string
	for _, f := range fields[:cut] {
		if accountCodeRe.MatchString(f) && item.AccountCode == "" {
			item.AccountCode = f
			continue
		}
		descParts = append(descParts, f)
	}
	item.Description = strings.Join(descParts, " ")
	if item.Description == "" && item.AccountCode == "" {
		return ParsedItem{}, false
	}
	return item, true
}

// ItemsTotal sums the parsed line totals.
func ItemsTotal(items []ParsedItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal)
	}
	return total
}
