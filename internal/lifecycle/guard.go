package lifecycle

import (
	"time"

	"ArthaFlowSaas/internal/faults"
)

// DefaultRevisionWindow is the editable window granted when an approver
// returns a transaction without an explicit deadline.
const DefaultRevisionWindow = 48 * time.Hour

// Guard is the single gatekeeper for status-dependent mutations. Every other
// component calls through here before acting.
type Guard struct{}

func NewGuard() *Guard { return &Guard{} }

// EnsureEditable fails unless header/items edits are legal for the current status.
func (g *Guard) EnsureEditable(tx *Transaction) error {
	if !statusIn(tx.Status, editableStatuses) {
		return faults.Locked("edit", tx.Status.String())
	}
	return nil
}

// EnsureSubmittable fails unless actor owns the transaction and a first
// submission is legal from the current status.
func (g *Guard) EnsureSubmittable(tx *Transaction, actorUserID string) error {
	if tx.OwnerUserID != actorUserID {
		return faults.AccessDenied(actorUserID, "only the owner may submit")
	}
	if !statusIn(tx.Status, submittableStatuses) {
		return faults.Locked("submit", tx.Status.String())
	}
	return nil
}

// EnsureReviewable fails unless approve/reject/return is legal.
func (g *Guard) EnsureReviewable(tx *Transaction) error {
	if !statusIn(tx.Status, reviewableStatuses) {
		return faults.Locked("review", tx.Status.String())
	}
	return nil
}

// EnsureTransition validates an arbitrary edge against the transition table.
func (g *Guard) EnsureTransition(tx *Transaction, to Status) error {
	if !CanTransition(tx.Status, to) {
		return faults.Locked("transition to "+to.String(), tx.Status.String())
	}
	return nil
}

// ReturnSpec is the approver's grant when sending a transaction back:
// which fields the owner may touch and until when.
type ReturnSpec struct {
	EditableFields []string
	Deadline       *time.Time
	Comment        string
}

// ApplyReturn mutates tx in memory for a return decision: clears the final
// lock, installs the editable-field grant and deadline, bumps the revision
// counter. Persistence is the caller's problem.
func (g *Guard) ApplyReturn(tx *Transaction, spec ReturnSpec, now time.Time) error {
	if err := g.EnsureReviewable(tx); err != nil {
		return err
	}
	for _, f := range spec.EditableFields {
		if !KnownField(f) {
			return faults.Invalid(f, "unknown editable field")
		}
	}
	deadline := now.Add(DefaultRevisionWindow)
	if spec.Deadline != nil {
		deadline = *spec.Deadline
	}
	tx.Status = StatusReturned
	tx.Flags.LockedFinal = false
	tx.Flags.EditableFields = spec.EditableFields
	tx.RevisionDeadline = &deadline
	tx.RevisionCount++
	reviewed := now
	tx.ReviewedAt = &reviewed
	return nil
}

// ApplyReject is terminal: sets the immutable lock flag.
func (g *Guard) ApplyReject(tx *Transaction, now time.Time) error {
	if err := g.EnsureReviewable(tx); err != nil {
		return err
	}
	tx.Status = StatusRejected
	tx.Flags.LockedFinal = true
	reviewed := now
	tx.ReviewedAt = &reviewed
	return nil
}

// ApplyApprove stamps the approval.
func (g *Guard) ApplyApprove(tx *Transaction, now time.Time) error {
	if err := g.EnsureReviewable(tx); err != nil {
		return err
	}
	tx.Status = StatusApproved
	reviewed := now
	tx.ReviewedAt = &reviewed
	tx.ApprovedAt = &reviewed
	return nil
}
