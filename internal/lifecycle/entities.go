package lifecycle

import (
	"time"

	"ArthaFlowSaas/internal/reconcile"
)

// TransactionDocument is one uploaded source document. Rows are append-only:
// a later upload supersedes an earlier one but never deletes it.
type TransactionDocument struct {
	ID            string                  `json:"document_id"`
	TransactionID string                  `json:"transaction_id"`
	FileRef       string                  `json:"file_ref"`
	RawText       string                  `json:"raw_text"`
	Blocks        []reconcile.TextBlock   `json:"blocks"`
	Parsed        reconcile.ParsedInvoice `json:"parsed"`
	MatchStatus   string                  `json:"match_status"` // "match" | "mismatch"
	Confidence    float64                 `json:"confidence"`
	CreatedAt     time.Time               `json:"created_at"`
}

// Exception case statuses.
const (
	CaseOpen     = "OPEN"
	CaseResolved = "RESOLVED"
)

// ExceptionCase is the correction loop opened when a submission fails
// reconciliation. Only one OPEN case may exist per transaction.
type ExceptionCase struct {
	ID              string            `json:"case_id"`
	TransactionID   string            `json:"transaction_id"`
	OwnerUserID     string            `json:"owner_user_id"`
	Allowlist       []string          `json:"allowlist"`
	Patch           map[string]string `json:"patch"`
	MismatchSummary string            `json:"mismatch_summary"`
	Status          string            `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	ResolvedAt      *time.Time        `json:"resolved_at,omitempty"`
}

// Allowed reports whether field may be patched on this case.
func (c *ExceptionCase) Allowed(field string) bool {
	for _, f := range c.Allowlist {
		if f == field {
			return true
		}
	}
	return false
}
