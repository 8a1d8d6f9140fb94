package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"ArthaFlowSaas/internal/faults"
)

func newTestTx(status Status) *Transaction {
	return &Transaction{
		ID:          "trx-1",
		Code:        "TRX-2024-0007",
		OwnerUserID: "user-owner",
		Status:      status,
		Version:     1,
	}
}

func TestEnsureEditable(t *testing.T) {
	g := NewGuard()
	for _, s := range []Status{StatusInProgress, StatusDraft, StatusReturned} {
		if err := g.EnsureEditable(newTestTx(s)); err != nil {
			t.Errorf("EnsureEditable(%s) = %v, want nil", s, err)
		}
	}
	for _, s := range []Status{StatusSubmitted, StatusPrecheckLock, StatusApproved, StatusRejected} {
		err := g.EnsureEditable(newTestTx(s))
		var locked *faults.LockedStateError
		if !errors.As(err, &locked) {
			t.Errorf("EnsureEditable(%s) = %v, want LockedStateError", s, err)
		}
	}
}

func TestEnsureSubmittable(t *testing.T) {
	g := NewGuard()

	t.Run("owner from submittable status", func(t *testing.T) {
		if err := g.EnsureSubmittable(newTestTx(StatusDraft), "user-owner"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("non-owner is denied before status is considered", func(t *testing.T) {
		err := g.EnsureSubmittable(newTestTx(StatusApproved), "user-other")
		var denied *faults.AccessDeniedError
		if !errors.As(err, &denied) {
			t.Fatalf("err = %v, want AccessDeniedError", err)
		}
	})

	t.Run("owner from non-submittable status is locked", func(t *testing.T) {
		err := g.EnsureSubmittable(newTestTx(StatusReturned), "user-owner")
		var locked *faults.LockedStateError
		if !errors.As(err, &locked) {
			t.Fatalf("err = %v, want LockedStateError", err)
		}
	})
}

func TestApplyReturn(t *testing.T) {
	g := NewGuard()
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("default deadline is the revision window", func(t *testing.T) {
		tx := newTestTx(StatusSubmitted)
		tx.Flags.LockedFinal = true
		spec := ReturnSpec{EditableFields: []string{"items", "grand_total"}}
		if err := g.ApplyReturn(tx, spec, now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tx.Status != StatusReturned {
			t.Errorf("status = %s", tx.Status)
		}
		if tx.Flags.LockedFinal {
			t.Error("return must clear the final lock")
		}
		if want := now.Add(DefaultRevisionWindow); !tx.RevisionDeadline.Equal(want) {
			t.Errorf("deadline = %v, want %v", tx.RevisionDeadline, want)
		}
		if tx.RevisionCount != 1 {
			t.Errorf("revision count = %d, want 1", tx.RevisionCount)
		}
		if !tx.Flags.HasEditable("items") || !tx.Flags.HasEditable("grand_total") {
			t.Errorf("editable grant = %v", tx.Flags.EditableFields)
		}
	})

	t.Run("explicit deadline wins", func(t *testing.T) {
		tx := newTestTx(StatusResubmitted)
		deadline := now.Add(6 * time.Hour)
		spec := ReturnSpec{EditableFields: []string{"items"}, Deadline: &deadline}
		if err := g.ApplyReturn(tx, spec, now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !tx.RevisionDeadline.Equal(deadline) {
			t.Errorf("deadline = %v, want %v", tx.RevisionDeadline, deadline)
		}
	})

	t.Run("unknown editable field is rejected", func(t *testing.T) {
		tx := newTestTx(StatusSubmitted)
		err := g.ApplyReturn(tx, ReturnSpec{EditableFields: []string{"vendor_nmae"}}, now)
		var invalid *faults.ValidationError
		if !errors.As(err, &invalid) {
			t.Fatalf("err = %v, want ValidationError", err)
		}
		if tx.Status != StatusSubmitted {
			t.Errorf("status mutated on rejected spec: %s", tx.Status)
		}
	})

	t.Run("not reviewable", func(t *testing.T) {
		err := g.ApplyReturn(newTestTx(StatusDraft), ReturnSpec{}, now)
		var locked *faults.LockedStateError
		if !errors.As(err, &locked) {
			t.Fatalf("err = %v, want LockedStateError", err)
		}
	})
}

func TestApplyReject(t *testing.T) {
	g := NewGuard()
	now := time.Now()
	tx := newTestTx(StatusUnderReview)
	if err := g.ApplyReject(tx, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Status != StatusRejected || !tx.Flags.LockedFinal {
		t.Errorf("status = %s lockedFinal = %v, want rejected and locked", tx.Status, tx.Flags.LockedFinal)
	}
	if tx.ReviewedAt == nil {
		t.Error("reviewed stamp missing")
	}
}

func TestApplyApprove(t *testing.T) {
	g := NewGuard()
	now := time.Now()

	tx := newTestTx(StatusResubmitted)
	if err := g.ApplyApprove(tx, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Status != StatusApproved {
		t.Errorf("status = %s", tx.Status)
	}
	if tx.ApprovedAt == nil || tx.ReviewedAt == nil {
		t.Error("approval stamps missing")
	}

	if err := g.ApplyApprove(newTestTx(StatusRejected), now); err == nil {
		t.Error("approving a rejected transaction must fail")
	}
}

func TestSumItems(t *testing.T) {
	items := []TransactionItem{
		{Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(750000)},
		{Quantity: decimal.NewFromInt(3), UnitPrice: decimal.RequireFromString("20000.50")},
	}
	total := SumItems(items)
	if total.String() != "1560001.5" {
		t.Errorf("SumItems = %s, want 1560001.5", total)
	}
	if items[0].LineTotal.String() != "1500000" {
		t.Errorf("line total not recomputed: %s", items[0].LineTotal)
	}
}
