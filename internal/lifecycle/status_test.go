package lifecycle

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusInProgress, StatusDraft, true},
		{StatusInProgress, StatusSubmitted, true},
		{StatusDraft, StatusInProgress, true},
		{StatusDraft, StatusPrecheckLock, true},
		{StatusPrecheckLock, StatusSubmitted, true},
		{StatusPrecheckLock, StatusDraft, true},
		{StatusSubmitted, StatusUnderReview, true},
		{StatusSubmitted, StatusApproved, true},
		{StatusSubmitted, StatusReturned, true},
		{StatusResubmitted, StatusApproved, true},
		{StatusResubmitted, StatusReturned, true},
		{StatusUnderReview, StatusRejected, true},
		{StatusReturned, StatusResubmitted, true},
		{StatusReturned, StatusNeedsAcctFix, true},

		{StatusInProgress, StatusApproved, false},
		{StatusDraft, StatusReturned, false},
		{StatusPrecheckLock, StatusApproved, false},
		{StatusSubmitted, StatusDraft, false},
		{StatusReturned, StatusSubmitted, false},
		{StatusApproved, StatusReturned, false},
		{StatusRejected, StatusResubmitted, false},
		{StatusNeedsAcctFix, StatusDraft, false},
		{StatusSuperseded, StatusSubmitted, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTerminal(t *testing.T) {
	for _, s := range []Status{StatusRejected, StatusNeedsAcctFix, StatusSuperseded} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	// Approved admits no further transitions but is not terminal in the
	// archival sense; it stays a live queryable row.
	for _, s := range []Status{StatusInProgress, StatusSubmitted, StatusReturned, StatusApproved} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestTerminalStatusesHaveNoEdges(t *testing.T) {
	for from, targets := range transitions {
		if from.Terminal() && len(targets) > 0 {
			t.Errorf("terminal status %s has outgoing edges %v", from, targets)
		}
	}
}

func TestValid(t *testing.T) {
	if !StatusUnderReview.Valid() {
		t.Error("under_review should be a live status")
	}
	if StatusSuperseded.Valid() {
		t.Error("superseded is archive-only, never a live status")
	}
	if Status("frobnicated").Valid() {
		t.Error("unknown status should not validate")
	}
}
