package lifecycle

// Status is the closed set of lifecycle states a live transaction row can be
// in. Archived rows carry StatusSuperseded, which is never a live status.
type Status string

const (
	StatusInProgress    Status = "in_progress"
	StatusDraft         Status = "draft"
	StatusReturned      Status = "returned"
	StatusPrecheckLock  Status = "precheck_locked"
	StatusSubmitted     Status = "submitted"
	StatusResubmitted   Status = "resubmitted"
	StatusUnderReview   Status = "under_review"
	StatusApproved      Status = "approved"
	StatusRejected      Status = "rejected"
	StatusNeedsAcctFix  Status = "closed_needs_accounting_resolution"
	StatusSuperseded    Status = "superseded"
)

func (s Status) String() string { return string(s) }

// Valid reports whether s is a member of the live status set.
func (s Status) Valid() bool {
	switch s {
	case StatusInProgress, StatusDraft, StatusReturned, StatusPrecheckLock,
		StatusSubmitted, StatusResubmitted, StatusUnderReview,
		StatusApproved, StatusRejected, StatusNeedsAcctFix:
		return true
	}
	return false
}

// Terminal statuses admit no further transition.
func (s Status) Terminal() bool {
	switch s {
	case StatusRejected, StatusNeedsAcctFix, StatusSuperseded:
		return true
	}
	return false
}

// transitions is the single authoritative transition table. Every guarded
// mutation checks here; no per-operation status lists anywhere else.
var transitions = map[Status][]Status{
	StatusInProgress:   {StatusDraft, StatusPrecheckLock, StatusSubmitted},
	StatusDraft:        {StatusInProgress, StatusPrecheckLock, StatusSubmitted},
	StatusPrecheckLock: {StatusSubmitted, StatusDraft},
	StatusSubmitted:    {StatusUnderReview, StatusApproved, StatusRejected, StatusReturned},
	StatusResubmitted:  {StatusUnderReview, StatusApproved, StatusRejected, StatusReturned},
	StatusUnderReview:  {StatusApproved, StatusRejected, StatusReturned},
	StatusReturned:     {StatusResubmitted, StatusNeedsAcctFix},
	StatusApproved:     {},
	StatusRejected:     {},
	StatusNeedsAcctFix: {},
}

// CanTransition reports whether from → to is a legal edge.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// editableStatuses are the states in which header/items may be mutated.
var editableStatuses = []Status{StatusInProgress, StatusDraft, StatusReturned}

// submittableStatuses are the states from which a first submit is legal.
var submittableStatuses = []Status{StatusDraft, StatusInProgress}

// reviewableStatuses are the states in which approve/reject/return are legal.
var reviewableStatuses = []Status{StatusSubmitted, StatusResubmitted, StatusUnderReview}

func statusIn(s Status, set []Status) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
