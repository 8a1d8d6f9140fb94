package lifecycle

import (
	"time"

	"github.com/shopspring/decimal"
)

// Flags is the per-transaction control block. It used to be a loose JSON bag;
// it is now an explicit versioned struct so invariants are checkable at
// compile time. Stored as a jsonb column, FlagsVersion bumps on shape changes.
type Flags struct {
	Version         int               `json:"version"`
	LockedFinal     bool              `json:"locked_final"`
	EditableFields  []string          `json:"editable_fields,omitempty"`
	LastReconcile   string            `json:"last_reconcile,omitempty"` // "match" | "mismatch"
	CorrectionPatch map[string]string `json:"correction_patch,omitempty"`
	EscalatedAt     *time.Time        `json:"escalated_at,omitempty"`
}

const FlagsVersion = 1

// HasEditable reports whether the approver's grant covers field.
func (f Flags) HasEditable(field string) bool {
	for _, v := range f.EditableFields {
		if v == field {
			return true
		}
	}
	return false
}

// Transaction is the live aggregate row. Exactly one row per Code lineage has
// ActiveVersion set; archived rows keep their old Version with
// StatusSuperseded and ActiveVersion cleared.
type Transaction struct {
	ID               string            `json:"transaction_id"`
	Code             string            `json:"transaction_code"`
	Type             string            `json:"transaction_type"`
	OwnerUserID      string            `json:"owner_user_id"`
	VendorName       string            `json:"vendor_name"`
	InvoiceNumber    string            `json:"invoice_number"`
	InvoiceDate      string            `json:"invoice_date"`
	CostCenter       string            `json:"cost_center"`
	Description      string            `json:"description"`
	Amount           decimal.Decimal   `json:"amount"`
	Currency         string            `json:"currency"`
	Status           Status            `json:"status"`
	Version          int               `json:"version"`
	ActiveVersion    bool              `json:"active_version"`
	RevisionDeadline *time.Time        `json:"revision_deadline,omitempty"`
	RevisionCount    int               `json:"revision_count"`
	Flags            Flags             `json:"flags"`
	CreatedAt        time.Time         `json:"created_at"`
	SubmittedAt      *time.Time        `json:"submitted_at,omitempty"`
	ReviewedAt       *time.Time        `json:"reviewed_at,omitempty"`
	ApprovedAt       *time.Time        `json:"approved_at,omitempty"`
	CompletedAt      *time.Time        `json:"completed_at,omitempty"`
	Items            []TransactionItem `json:"items,omitempty"`
}

// TransactionItem is one invoice line. LineTotal is always Quantity*UnitPrice;
// the parent Amount is the item sum whenever items exist.
type TransactionItem struct {
	ID          string          `json:"item_id"`
	Description string          `json:"description"`
	AccountCode string          `json:"account_code"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// SumItems recomputes line totals and returns the aggregate amount.
func SumItems(items []TransactionItem) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		items[i].LineTotal = items[i].Quantity.Mul(items[i].UnitPrice)
		total = total.Add(items[i].LineTotal)
	}
	return total
}

// FieldValue resolves a wire field name against the recorded transaction,
// used when overlaying correction patches for a recheck.
func (t *Transaction) FieldValue(field string) string {
	switch field {
	case "vendor_name":
		return t.VendorName
	case "invoice_number":
		return t.InvoiceNumber
	case "invoice_date":
		return t.InvoiceDate
	case "cost_center":
		return t.CostCenter
	case "description":
		return t.Description
	case "grand_total":
		return t.Amount.String()
	}
	return ""
}

// KnownFields is the set of wire names an approver may grant or a case may
// allowlist.
var KnownFields = []string{
	"vendor_name", "invoice_number", "invoice_date",
	"cost_center", "description", "items", "grand_total",
}

func KnownField(name string) bool {
	for _, f := range KnownFields {
		if f == name {
			return true
		}
	}
	return false
}
