// Package exception runs the correction loop for transactions whose document
// failed reconciliation at submission precheck.
package exception

import (
	"context"
	"strings"
	"time"

	"ArthaFlowSaas/internal/faults"
	"ArthaFlowSaas/internal/lifecycle"
	"ArthaFlowSaas/internal/reconcile"
)

// Store is the persistence slice the manager needs.
type Store interface {
	GetTransaction(ctx context.Context, id string) (*lifecycle.Transaction, error)
	LatestDocument(ctx context.Context, trxID string) (*lifecycle.TransactionDocument, error)
	SetDocumentMatchStatus(ctx context.Context, documentID, matchStatus string) error
	InsertCase(ctx context.Context, c *lifecycle.ExceptionCase) error
	GetCase(ctx context.Context, caseID string) (*lifecycle.ExceptionCase, error)
	UpdateCasePatch(ctx context.Context, c *lifecycle.ExceptionCase) error
	ResolveCase(ctx context.Context, caseID string, resolvedAt time.Time) error
}

// Submitter is invoked when a recheck resolves the case: the correction patch
// rides along as an audit artifact.
type Submitter interface {
	SubmitFromPrecheck(ctx context.Context, tx *lifecycle.Transaction, actorUserID string, patch map[string]string) error
}

// AuditSink receives fire-and-forget activity records.
type AuditSink interface {
	Audit(trxID, action, actorUserID, comment string)
}

type Manager struct {
	store     Store
	engine    *reconcile.Engine
	submitter Submitter
	sink      AuditSink
}

func NewManager(store Store, engine *reconcile.Engine, submitter Submitter, sink AuditSink) *Manager {
	return &Manager{store: store, engine: engine, submitter: submitter, sink: sink}
}

// CreateCase opens the correction case for a transaction parked in
// precheck_locked. The allowlist is exactly the mismatched field names.
func (m *Manager) CreateCase(ctx context.Context, tx *lifecycle.Transaction, mismatched []string, summary string) (*lifecycle.ExceptionCase, error) {
	if tx.Status != lifecycle.StatusPrecheckLock {
		return nil, faults.Locked("create exception case", tx.Status.String())
	}
	if len(mismatched) == 0 {
		return nil, faults.Invalid("mismatched_fields", "no mismatched fields to correct")
	}
	c := &lifecycle.ExceptionCase{
		TransactionID:   tx.ID,
		OwnerUserID:     tx.OwnerUserID,
		Allowlist:       mismatched,
		Patch:           map[string]string{},
		MismatchSummary: summary,
	}
	if err := m.store.InsertCase(ctx, c); err != nil {
		return nil, err
	}
	m.sink.Audit(tx.ID, "EXCEPTION_CASE_OPENED", tx.OwnerUserID, summary)
	return c, nil
}

// Patch merges corrections into the accumulating patch, last write wins per
// field. Any key outside the allowlist rejects the whole call.
func (m *Manager) Patch(ctx context.Context, caseID, actorUserID string, fields map[string]string) (*lifecycle.ExceptionCase, error) {
	c, err := m.store.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.OwnerUserID != actorUserID {
		return nil, faults.AccessDenied(actorUserID, "case belongs to another user")
	}
	if c.Status != lifecycle.CaseOpen {
		return nil, faults.Locked("patch", c.Status)
	}
	for field := range fields {
		if !c.Allowed(field) {
			return nil, faults.Invalid(field, "field is not in the correction allowlist")
		}
	}
	for field, value := range fields {
		c.Patch[field] = value
	}
	if err := m.store.UpdateCasePatch(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Recheck re-runs the reconciliation engine with the transaction's immutable
// recorded values overlaid by the current patch, against the latest uploaded
// document. A match resolves the case and triggers submission with the patch
// attached; a continued mismatch keeps the case open with a fresh summary.
func (m *Manager) Recheck(ctx context.Context, caseID, actorUserID string) (*lifecycle.ExceptionCase, reconcile.Report, error) {
	c, err := m.store.GetCase(ctx, caseID)
	if err != nil {
		return nil, reconcile.Report{}, err
	}
	if c.OwnerUserID != actorUserID {
		return nil, reconcile.Report{}, faults.AccessDenied(actorUserID, "case belongs to another user")
	}
	if c.Status != lifecycle.CaseOpen {
		return nil, reconcile.Report{}, faults.Locked("recheck", c.Status)
	}

	tx, err := m.store.GetTransaction(ctx, c.TransactionID)
	if err != nil {
		return nil, reconcile.Report{}, err
	}
	doc, err := m.store.LatestDocument(ctx, c.TransactionID)
	if err != nil {
		return nil, reconcile.Report{}, err
	}

	recorded, err := OverlayPatch(tx, c.Patch)
	if err != nil {
		return nil, reconcile.Report{}, err
	}
	report := m.engine.Reconcile(recorded, doc.Blocks)

	if !report.Match {
		c.MismatchSummary = SummarizeMismatches(report)
		if err := m.store.UpdateCasePatch(ctx, c); err != nil {
			return nil, reconcile.Report{}, err
		}
		return c, report, nil
	}

	now := time.Now()
	if err := m.store.ResolveCase(ctx, c.ID, now); err != nil {
		return nil, reconcile.Report{}, err
	}
	c.Status = lifecycle.CaseResolved
	c.ResolvedAt = &now
	if err := m.store.SetDocumentMatchStatus(ctx, doc.ID, "match"); err != nil {
		return nil, reconcile.Report{}, err
	}

	tx.Flags.LastReconcile = "match"
	if err := m.submitter.SubmitFromPrecheck(ctx, tx, actorUserID, c.Patch); err != nil {
		return nil, reconcile.Report{}, err
	}
	m.sink.Audit(tx.ID, "EXCEPTION_CASE_RESOLVED", actorUserID, "")
	return c, report, nil
}

// OverlayPatch resolves the recorded fields the engine compares against:
// transaction values with the case's corrections applied on top. The stored
// row stays untouched until submission attaches the patch.
func OverlayPatch(tx *lifecycle.Transaction, patch map[string]string) (reconcile.RecordedFields, error) {
	recorded := reconcile.RecordedFields{
		VendorName:    tx.VendorName,
		InvoiceNumber: tx.InvoiceNumber,
		GrandTotal:    tx.Amount,
		ItemsTotal:    lifecycle.SumItems(tx.Items),
		HasItems:      len(tx.Items) > 0,
	}
	if v, ok := patch["vendor_name"]; ok {
		recorded.VendorName = v
	}
	if v, ok := patch["invoice_number"]; ok {
		recorded.InvoiceNumber = v
	}
	if v, ok := patch["grand_total"]; ok {
		d, err := reconcile.NormalizeAmount(v)
		if err != nil {
			return recorded, err
		}
		recorded.GrandTotal = d
	}
	return recorded, nil
}

// SummarizeMismatches renders the compact per-field summary stored on the case.
func SummarizeMismatches(report reconcile.Report) string {
	var parts []string
	for _, mm := range report.Mismatches {
		parts = append(parts, mm.Field+" ("+string(mm.Severity)+")")
	}
	return strings.Join(parts, ", ")
}
