package submission

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArthaFlowSaas/internal/lifecycle"
)

type fakeStore struct {
	transitions []transitionCall
	prior       *lifecycle.Transaction
	advanced    *lifecycle.Transaction
}

type transitionCall struct {
	status lifecycle.Status
	from   lifecycle.Status
}

func (s *fakeStore) TransitionStatus(_ context.Context, t *lifecycle.Transaction, from lifecycle.Status) error {
	s.transitions = append(s.transitions, transitionCall{status: t.Status, from: from})
	return nil
}

func (s *fakeStore) AdvanceVersion(_ context.Context, prior, advanced *lifecycle.Transaction) error {
	p, a := *prior, *advanced
	s.prior, s.advanced = &p, &a
	return nil
}

type fakeSink struct {
	actions []string
}

func (f *fakeSink) Audit(trxID, action, actorUserID, comment string) {
	f.actions = append(f.actions, action)
}

func draftTx() *lifecycle.Transaction {
	return &lifecycle.Transaction{
		ID:            "trx-1",
		Code:          "TRX-2024-0007",
		OwnerUserID:   "user-owner",
		Amount:        decimal.NewFromInt(1500000),
		Status:        lifecycle.StatusDraft,
		Version:       1,
		ActiveVersion: true,
	}
}

func newTestSubmitter() (*Submitter, *fakeStore, *fakeSink) {
	st := &fakeStore{}
	sink := &fakeSink{}
	return NewSubmitter(lifecycle.NewGuard(), st, sink), st, sink
}

func TestSubmit(t *testing.T) {
	s, st, sink := newTestSubmitter()
	tx := draftTx()

	err := s.Submit(context.Background(), tx, "user-owner", nil)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusSubmitted, tx.Status)
	assert.True(t, tx.Flags.LockedFinal)
	assert.NotNil(t, tx.SubmittedAt)
	require.Len(t, st.transitions, 1)
	assert.Equal(t, lifecycle.StatusDraft, st.transitions[0].from)
	assert.Equal(t, []string{"SUBMIT"}, sink.actions)
}

func TestSubmitByNonOwner(t *testing.T) {
	s, st, _ := newTestSubmitter()
	tx := draftTx()

	err := s.Submit(context.Background(), tx, "user-other", nil)
	assert.Error(t, err)
	assert.Equal(t, lifecycle.StatusDraft, tx.Status)
	assert.Empty(t, st.transitions)
}

func TestSubmitFromPrecheck(t *testing.T) {
	s, st, sink := newTestSubmitter()
	tx := draftTx()
	tx.Status = lifecycle.StatusPrecheckLock
	patch := map[string]string{"grand_total": "1.500.000"}

	err := s.SubmitFromPrecheck(context.Background(), tx, "user-owner", patch)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusSubmitted, tx.Status)
	assert.Equal(t, patch, tx.Flags.CorrectionPatch)
	require.Len(t, st.transitions, 1)
	assert.Equal(t, lifecycle.StatusPrecheckLock, st.transitions[0].from)
	assert.Equal(t, []string{"SUBMIT_AFTER_CORRECTION"}, sink.actions)
}

func TestSubmitFromPrecheckIllegalEdge(t *testing.T) {
	s, _, _ := newTestSubmitter()
	tx := draftTx()
	tx.Status = lifecycle.StatusApproved

	err := s.SubmitFromPrecheck(context.Background(), tx, "user-owner", nil)
	assert.Error(t, err)
}

func TestResubmit(t *testing.T) {
	s, st, sink := newTestSubmitter()
	deadline := time.Now().Add(time.Hour)
	tx := draftTx()
	tx.Status = lifecycle.StatusReturned
	tx.Version = 3
	tx.RevisionDeadline = &deadline
	tx.Flags.EditableFields = []string{"items"}

	err := s.Resubmit(context.Background(), tx, "user-owner", "items corrected")
	require.NoError(t, err)

	// The live row advanced in place.
	assert.Equal(t, lifecycle.StatusResubmitted, tx.Status)
	assert.Equal(t, 4, tx.Version)
	assert.True(t, tx.ActiveVersion)
	assert.True(t, tx.Flags.LockedFinal)
	assert.Nil(t, tx.Flags.EditableFields)
	assert.Nil(t, tx.RevisionDeadline)
	assert.NotNil(t, tx.SubmittedAt)

	// The archive snapshot keeps the pre-mutation row.
	require.NotNil(t, st.prior)
	assert.Equal(t, 3, st.prior.Version)
	assert.Equal(t, lifecycle.StatusReturned, st.prior.Status)
	assert.Equal(t, []string{"items"}, st.prior.Flags.EditableFields)

	require.NotNil(t, st.advanced)
	assert.Equal(t, 4, st.advanced.Version)
	assert.Equal(t, lifecycle.StatusResubmitted, st.advanced.Status)

	assert.Equal(t, []string{"RESUBMIT"}, sink.actions)
}

func TestResubmitByNonOwner(t *testing.T) {
	s, st, _ := newTestSubmitter()
	tx := draftTx()
	tx.Status = lifecycle.StatusReturned

	err := s.Resubmit(context.Background(), tx, "user-other", "")
	assert.Error(t, err)
	assert.Nil(t, st.prior)
	assert.Equal(t, 1, tx.Version)
}

func TestResubmitIllegalEdge(t *testing.T) {
	s, _, _ := newTestSubmitter()
	tx := draftTx() // draft has no edge to resubmitted

	err := s.Resubmit(context.Background(), tx, "user-owner", "")
	assert.Error(t, err)
}
