// Package revision governs the deadline-bound edit window an approver grants
// when returning a transaction, and the escalation sweep that closes windows
// that expired without a resubmission.
package revision

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"ArthaFlowSaas/internal/faults"
	"ArthaFlowSaas/internal/lifecycle"
)

// Store is the persistence slice the manager needs.
type Store interface {
	GetTransaction(ctx context.Context, id string) (*lifecycle.Transaction, error)
	UpdateHeader(ctx context.Context, t *lifecycle.Transaction, expected lifecycle.Status) error
	ReplaceItems(ctx context.Context, trxID string, items []lifecycle.TransactionItem, amount decimal.Decimal, expected lifecycle.Status) error
	ExpiredReturned(ctx context.Context, limit int) ([]*lifecycle.Transaction, error)
	Escalate(ctx context.Context, trxID string, escalatedAt time.Time) (bool, error)
	EnqueueResolution(ctx context.Context, trxID, ownerUserID, reason string) error
}

// Resubmitter sends the revised transaction back into the approval queue.
type Resubmitter interface {
	Resubmit(ctx context.Context, tx *lifecycle.Transaction, actorUserID, notes string) error
}

// Sink receives fire-and-forget audit records and silent user notices.
type Sink interface {
	Audit(trxID, action, actorUserID, comment string)
	Signal(userID, kind, message string)
}

type Manager struct {
	store     Store
	guard     *lifecycle.Guard
	resubmit  Resubmitter
	sink      Sink
	batchSize int
}

func NewManager(store Store, guard *lifecycle.Guard, resubmit Resubmitter, sink Sink, batchSize int) *Manager {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Manager{store: store, guard: guard, resubmit: resubmit, sink: sink, batchSize: batchSize}
}

// GetRevisionAccess validates that actor may edit the returned transaction
// right now and reports which field groups the approver opened up.
func (m *Manager) GetRevisionAccess(ctx context.Context, trxID, actorUserID string) (*lifecycle.Transaction, []string, error) {
	tx, err := m.store.GetTransaction(ctx, trxID)
	if err != nil {
		return nil, nil, err
	}
	if tx.OwnerUserID != actorUserID {
		return nil, nil, faults.AccessDenied(actorUserID, "only the owner may revise")
	}
	if tx.Status != lifecycle.StatusReturned {
		return nil, nil, faults.Locked("revision", tx.Status.String())
	}
	if tx.RevisionDeadline == nil || time.Now().After(*tx.RevisionDeadline) {
		return nil, nil, faults.Invalid("revision_deadline", "deadline has passed")
	}
	return tx, tx.Flags.EditableFields, nil
}

// Changes carries the two independently gated change groups of a revision.
type Changes struct {
	Header map[string]string           `json:"header,omitempty"`
	Items  []lifecycle.TransactionItem `json:"items,omitempty"`
}

// SaveRevision applies the change groups the approver's editable-field grant
// permits. An items replacement recomputes the amount from the new item sum.
func (m *Manager) SaveRevision(ctx context.Context, trxID, actorUserID string, changes Changes) (*lifecycle.Transaction, error) {
	tx, _, err := m.GetRevisionAccess(ctx, trxID, actorUserID)
	if err != nil {
		return nil, err
	}

	if len(changes.Header) > 0 {
		for field, value := range changes.Header {
			if !tx.Flags.HasEditable(field) {
				return nil, faults.Invalid(field, "field was not opened for revision")
			}
			switch field {
			case "vendor_name":
				tx.VendorName = value
			case "invoice_number":
				tx.InvoiceNumber = value
			case "invoice_date":
				tx.InvoiceDate = value
			case "cost_center":
				tx.CostCenter = value
			case "description":
				tx.Description = value
			case "grand_total":
				d, err := decimal.NewFromString(value)
				if err != nil {
					return nil, faults.Invalid(field, "not a valid amount")
				}
				if len(tx.Items) > 0 {
					return nil, faults.Invalid(field, "amount is derived from items while items exist")
				}
				tx.Amount = d
			default:
				return nil, faults.Invalid(field, "unknown header field")
			}
		}
		if err := m.store.UpdateHeader(ctx, tx, lifecycle.StatusReturned); err != nil {
			return nil, err
		}
	}

	if changes.Items != nil {
		if !tx.Flags.HasEditable("items") {
			return nil, faults.Invalid("items", "items were not opened for revision")
		}
		if len(changes.Items) == 0 {
			return nil, faults.Invalid("items", "items replacement must not be empty")
		}
		amount := lifecycle.SumItems(changes.Items)
		if err := m.store.ReplaceItems(ctx, trxID, changes.Items, amount, lifecycle.StatusReturned); err != nil {
			return nil, err
		}
		tx.Items = changes.Items
		tx.Amount = amount
	}

	m.sink.Audit(trxID, "REVISION_SAVED", actorUserID, "")
	return tx, nil
}

// Resubmit closes the revision window by delegating to the submitter.
func (m *Manager) Resubmit(ctx context.Context, trxID, actorUserID, notes string) (*lifecycle.Transaction, error) {
	tx, _, err := m.GetRevisionAccess(ctx, trxID, actorUserID)
	if err != nil {
		return nil, err
	}
	if err := m.resubmit.Resubmit(ctx, tx, actorUserID, notes); err != nil {
		return nil, err
	}
	return tx, nil
}

// EscalationReason tags the downstream work items the sweep produces.
const EscalationReason = "revision window expired without resubmission"

// EscalateExpired is the sweep body: it closes every returned transaction
// whose deadline passed, enqueues a resolution work item per row and notifies
// the owner silently. Safe to invoke redundantly and concurrently: the
// per-row UPDATE re-checks the precondition, so a row is processed at most
// once no matter how many sweeps race. A failing row is logged and skipped,
// never aborting the rest of the batch. Returns the number of rows escalated.
func (m *Manager) EscalateExpired(ctx context.Context) (int, error) {
	candidates, err := m.store.ExpiredReturned(ctx, m.batchSize)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, tx := range candidates {
		now := time.Now()
		ok, err := m.store.Escalate(ctx, tx.ID, now)
		if err != nil {
			log.Printf("[ERROR] escalation of %s failed, continuing: %v", tx.ID, err)
			continue
		}
		if !ok {
			// Lost the race to another sweep or a last-second resubmit.
			continue
		}
		processed++

		if err := m.store.EnqueueResolution(ctx, tx.ID, tx.OwnerUserID, EscalationReason); err != nil {
			log.Printf("[ERROR] enqueue resolution item for %s failed: %v", tx.ID, err)
		}
		m.sink.Signal(tx.OwnerUserID, "escalation",
			"Transaction "+tx.Code+" was closed for accounting resolution: "+EscalationReason)
		m.sink.Audit(tx.ID, "ESCALATED", "system", EscalationReason)
	}
	return processed, nil
}
