// Package submission moves a transaction into the approval queue and owns the
// archive-then-advance versioning behavior on resubmission.
package submission

import (
	"context"
	"time"

	"ArthaFlowSaas/internal/lifecycle"
)

// TransactionStore is the slice of the persistence layer the submitter needs.
type TransactionStore interface {
	TransitionStatus(ctx context.Context, t *lifecycle.Transaction, from lifecycle.Status) error
	AdvanceVersion(ctx context.Context, prior, advanced *lifecycle.Transaction) error
}

// AuditSink receives fire-and-forget activity records.
type AuditSink interface {
	Audit(trxID, action, actorUserID, comment string)
}

type Submitter struct {
	guard *lifecycle.Guard
	store TransactionStore
	sink  AuditSink
}

func NewSubmitter(guard *lifecycle.Guard, store TransactionStore, sink AuditSink) *Submitter {
	return &Submitter{guard: guard, store: store, sink: sink}
}

// Submit transitions a draft/in-progress transaction to submitted: stamps the
// submit time, sets the lock flag and optionally attaches an exception patch
// as audit metadata. The status write is conditioned on the status the caller
// observed, so a concurrent submit loses cleanly.
func (s *Submitter) Submit(ctx context.Context, tx *lifecycle.Transaction, actorUserID string, patch map[string]string) error {
	if err := s.guard.EnsureSubmittable(tx, actorUserID); err != nil {
		return err
	}
	return s.finishSubmit(ctx, tx, actorUserID, patch, "SUBMIT")
}

// SubmitFromPrecheck is the submission path a resolved exception case
// triggers: the transaction sits in precheck_locked, outside the normal
// submittable set, and carries the correction patch as an audit artifact.
func (s *Submitter) SubmitFromPrecheck(ctx context.Context, tx *lifecycle.Transaction, actorUserID string, patch map[string]string) error {
	if err := s.guard.EnsureTransition(tx, lifecycle.StatusSubmitted); err != nil {
		return err
	}
	return s.finishSubmit(ctx, tx, actorUserID, patch, "SUBMIT_AFTER_CORRECTION")
}

func (s *Submitter) finishSubmit(ctx context.Context, tx *lifecycle.Transaction, actorUserID string, patch map[string]string, action string) error {
	from := tx.Status
	now := time.Now()
	tx.Status = lifecycle.StatusSubmitted
	tx.SubmittedAt = &now
	tx.Flags.LockedFinal = true
	tx.Flags.EditableFields = nil
	if patch != nil {
		tx.Flags.CorrectionPatch = patch
	}
	if err := s.store.TransitionStatus(ctx, tx, from); err != nil {
		return err
	}
	s.sink.Audit(tx.ID, action, actorUserID, "")
	return nil
}

// Resubmit advances a returned transaction into the approval queue again:
// the live row moves to resubmitted at version+1 with the active marker kept,
// and an immutable archived clone of the pre-mutation row is written with the
// old version number and superseded status. Both writes happen in one store
// transaction, live-row first so the (code, version) slot is free before the
// archive insert claims it.
func (s *Submitter) Resubmit(ctx context.Context, tx *lifecycle.Transaction, actorUserID, notes string) error {
	if tx.OwnerUserID != actorUserID {
		return s.guard.EnsureSubmittable(tx, actorUserID) // uniform AccessDeniedError
	}
	if err := s.guard.EnsureTransition(tx, lifecycle.StatusResubmitted); err != nil {
		return err
	}

	prior := *tx
	now := time.Now()

	advanced := *tx
	advanced.Status = lifecycle.StatusResubmitted
	advanced.Version = tx.Version + 1
	advanced.ActiveVersion = true
	advanced.SubmittedAt = &now
	advanced.RevisionDeadline = nil
	advanced.Flags.LockedFinal = true
	advanced.Flags.EditableFields = nil

	if err := s.store.AdvanceVersion(ctx, &prior, &advanced); err != nil {
		return err
	}
	*tx = advanced
	s.sink.Audit(tx.ID, "RESUBMIT", actorUserID, notes)
	return nil
}
