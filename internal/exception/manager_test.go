package exception

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArthaFlowSaas/internal/lifecycle"
	"ArthaFlowSaas/internal/reconcile"
)

type fakeStore struct {
	tx       *lifecycle.Transaction
	doc      *lifecycle.TransactionDocument
	cases    map[string]*lifecycle.ExceptionCase
	inserted []*lifecycle.ExceptionCase
	resolved []string
	docMatch map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		cases:    map[string]*lifecycle.ExceptionCase{},
		docMatch: map[string]string{},
	}
}

func (s *fakeStore) GetTransaction(_ context.Context, id string) (*lifecycle.Transaction, error) {
	return s.tx, nil
}

func (s *fakeStore) LatestDocument(_ context.Context, trxID string) (*lifecycle.TransactionDocument, error) {
	return s.doc, nil
}

func (s *fakeStore) SetDocumentMatchStatus(_ context.Context, documentID, matchStatus string) error {
	s.docMatch[documentID] = matchStatus
	return nil
}

func (s *fakeStore) InsertCase(_ context.Context, c *lifecycle.ExceptionCase) error {
	c.ID = "case-1"
	c.Status = lifecycle.CaseOpen
	s.cases[c.ID] = c
	s.inserted = append(s.inserted, c)
	return nil
}

func (s *fakeStore) GetCase(_ context.Context, caseID string) (*lifecycle.ExceptionCase, error) {
	return s.cases[caseID], nil
}

func (s *fakeStore) UpdateCasePatch(_ context.Context, c *lifecycle.ExceptionCase) error {
	s.cases[c.ID] = c
	return nil
}

func (s *fakeStore) ResolveCase(_ context.Context, caseID string, _ time.Time) error {
	s.resolved = append(s.resolved, caseID)
	return nil
}

type fakeSubmitter struct {
	calls []submitCall
}

type submitCall struct {
	trxID string
	actor string
	patch map[string]string
}

func (f *fakeSubmitter) SubmitFromPrecheck(_ context.Context, tx *lifecycle.Transaction, actorUserID string, patch map[string]string) error {
	f.calls = append(f.calls, submitCall{trxID: tx.ID, actor: actorUserID, patch: patch})
	return nil
}

type fakeSink struct {
	actions []string
}

func (f *fakeSink) Audit(trxID, action, actorUserID, comment string) {
	f.actions = append(f.actions, action)
}

func lockedTx() *lifecycle.Transaction {
	return &lifecycle.Transaction{
		ID:            "trx-1",
		Code:          "TRX-2024-0007",
		OwnerUserID:   "user-owner",
		VendorName:    "PT Maju Jaya",
		InvoiceNumber: "INV-2024-0042",
		Amount:        decimal.NewFromInt(1500000),
		Status:        lifecycle.StatusPrecheckLock,
	}
}

func newTestManager() (*Manager, *fakeStore, *fakeSubmitter, *fakeSink) {
	st := newFakeStore()
	sub := &fakeSubmitter{}
	sink := &fakeSink{}
	return NewManager(st, reconcile.NewEngine(), sub, sink), st, sub, sink
}

func TestCreateCase(t *testing.T) {
	m, st, _, sink := newTestManager()

	c, err := m.CreateCase(context.Background(), lockedTx(),
		[]string{"vendor_name", "grand_total"}, "vendor_name (blocker), grand_total (blocker)")
	require.NoError(t, err)
	assert.Equal(t, lifecycle.CaseOpen, c.Status)
	assert.Equal(t, []string{"vendor_name", "grand_total"}, c.Allowlist)
	assert.Len(t, st.inserted, 1)
	assert.Contains(t, sink.actions, "EXCEPTION_CASE_OPENED")
}

func TestCreateCaseRequiresPrecheckLock(t *testing.T) {
	m, _, _, _ := newTestManager()
	tx := lockedTx()
	tx.Status = lifecycle.StatusSubmitted

	_, err := m.CreateCase(context.Background(), tx, []string{"vendor_name"}, "")
	assert.Error(t, err)
}

func TestCreateCaseRequiresMismatchedFields(t *testing.T) {
	m, _, _, _ := newTestManager()
	_, err := m.CreateCase(context.Background(), lockedTx(), nil, "")
	assert.Error(t, err)
}

func TestPatch(t *testing.T) {
	m, st, _, _ := newTestManager()
	c, err := m.CreateCase(context.Background(), lockedTx(), []string{"vendor_name", "grand_total"}, "")
	require.NoError(t, err)

	t.Run("last write wins per field", func(t *testing.T) {
		_, err := m.Patch(context.Background(), c.ID, "user-owner",
			map[string]string{"vendor_name": "PT Maju Jaya Tbk"})
		require.NoError(t, err)
		got, err := m.Patch(context.Background(), c.ID, "user-owner",
			map[string]string{"vendor_name": "PT Maju Jaya", "grand_total": "1.500.000"})
		require.NoError(t, err)
		assert.Equal(t, "PT Maju Jaya", got.Patch["vendor_name"])
		assert.Equal(t, "1.500.000", got.Patch["grand_total"])
	})

	t.Run("field outside the allowlist rejects the whole call", func(t *testing.T) {
		before := len(st.cases[c.ID].Patch)
		_, err := m.Patch(context.Background(), c.ID, "user-owner",
			map[string]string{"vendor_name": "x", "invoice_number": "INV-9"})
		assert.Error(t, err)
		assert.Len(t, st.cases[c.ID].Patch, before)
	})

	t.Run("wrong user is denied", func(t *testing.T) {
		_, err := m.Patch(context.Background(), c.ID, "user-other",
			map[string]string{"vendor_name": "x"})
		assert.Error(t, err)
	})

	t.Run("resolved case is locked", func(t *testing.T) {
		st.cases[c.ID].Status = lifecycle.CaseResolved
		defer func() { st.cases[c.ID].Status = lifecycle.CaseOpen }()
		_, err := m.Patch(context.Background(), c.ID, "user-owner",
			map[string]string{"vendor_name": "x"})
		assert.Error(t, err)
	})
}

func uploadedDoc() *lifecycle.TransactionDocument {
	return &lifecycle.TransactionDocument{
		ID:            "doc-1",
		TransactionID: "trx-1",
		MatchStatus:   "mismatch",
		Blocks: []reconcile.TextBlock{
			{Zone: reconcile.ZoneHeader, Confidence: 0.9, Text: "Vendor: PT Maju Jaya\nInvoice No: INV-2024-0042"},
			{Zone: reconcile.ZoneTotal, Confidence: 0.9, Text: "Grand Total : Rp 1.500.000"},
		},
	}
}

func TestRecheckResolvesOnMatch(t *testing.T) {
	m, st, sub, sink := newTestManager()
	st.tx = lockedTx()
	// The recorded amount was fat-fingered against the document.
	st.tx.Amount = decimal.NewFromInt(9750000)
	st.doc = uploadedDoc()
	c, err := m.CreateCase(context.Background(), st.tx, []string{"grand_total"}, "grand_total (blocker)")
	require.NoError(t, err)

	_, err = m.Patch(context.Background(), c.ID, "user-owner",
		map[string]string{"grand_total": "1.500.000"})
	require.NoError(t, err)

	got, report, err := m.Recheck(context.Background(), c.ID, "user-owner")
	require.NoError(t, err)
	assert.True(t, report.Match)
	assert.Equal(t, lifecycle.CaseResolved, got.Status)
	assert.NotNil(t, got.ResolvedAt)
	assert.Equal(t, []string{"case-1"}, st.resolved)
	assert.Equal(t, "match", st.docMatch["doc-1"])
	require.Len(t, sub.calls, 1)
	assert.Equal(t, "trx-1", sub.calls[0].trxID)
	assert.Equal(t, "1.500.000", sub.calls[0].patch["grand_total"])
	assert.Contains(t, sink.actions, "EXCEPTION_CASE_RESOLVED")
}

func TestRecheckKeepsCaseOpenOnMismatch(t *testing.T) {
	m, st, sub, _ := newTestManager()
	st.tx = lockedTx()
	st.tx.Amount = decimal.NewFromInt(9750000)
	st.doc = uploadedDoc()
	c, err := m.CreateCase(context.Background(), st.tx, []string{"grand_total"}, "grand_total (blocker)")
	require.NoError(t, err)

	// No correction applied: the recorded amount still disagrees.
	got, report, err := m.Recheck(context.Background(), c.ID, "user-owner")
	require.NoError(t, err)
	assert.False(t, report.Match)
	assert.Equal(t, lifecycle.CaseOpen, got.Status)
	assert.Contains(t, got.MismatchSummary, "grand_total")
	assert.Empty(t, st.resolved)
	assert.Empty(t, sub.calls)
}

func TestOverlayPatch(t *testing.T) {
	tx := lockedTx()
	recorded, err := OverlayPatch(tx, map[string]string{
		"vendor_name": "PT Sentosa Abadi",
		"grand_total": "2.750.000",
	})
	require.NoError(t, err)
	assert.Equal(t, "PT Sentosa Abadi", recorded.VendorName)
	assert.Equal(t, "INV-2024-0042", recorded.InvoiceNumber)
	assert.True(t, recorded.GrandTotal.Equal(decimal.NewFromInt(2750000)))

	_, err = OverlayPatch(tx, map[string]string{"grand_total": "not a number"})
	assert.Error(t, err)
}
