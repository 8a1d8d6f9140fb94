package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"ArthaFlowSaas/internal/faults"
	"ArthaFlowSaas/internal/lifecycle"
)

const trxColumns = `
	transaction_id, transaction_code, transaction_type, owner_user_id,
	vendor_name, invoice_number, invoice_date, cost_center, description,
	amount, currency, status, version, active_version,
	revision_deadline, revision_count, flags,
	created_at, submitted_at, reviewed_at, approved_at, completed_at`

func scanTransaction(row pgx.Row) (*lifecycle.Transaction, error) {
	var t lifecycle.Transaction
	var status string
	var flagsRaw []byte
	var amount decimal.Decimal
	err := row.Scan(
		&t.ID, &t.Code, &t.Type, &t.OwnerUserID,
		&t.VendorName, &t.InvoiceNumber, &t.InvoiceDate, &t.CostCenter, &t.Description,
		&amount, &t.Currency, &status, &t.Version, &t.ActiveVersion,
		&t.RevisionDeadline, &t.RevisionCount, &flagsRaw,
		&t.CreatedAt, &t.SubmittedAt, &t.ReviewedAt, &t.ApprovedAt, &t.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Amount = amount
	t.Status = lifecycle.Status(status)
	unmarshalFlags(flagsRaw, &t.Flags)
	return &t, nil
}

// CreateTransaction inserts a new lineage at version 1, status in_progress.
func (s *Store) CreateTransaction(ctx context.Context, t *lifecycle.Transaction) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	t.Version = 1
	t.ActiveVersion = true
	t.Status = lifecycle.StatusInProgress
	t.CreatedAt = time.Now()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO trxmaster (`+trxColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)`,
		t.ID, t.Code, t.Type, t.OwnerUserID,
		t.VendorName, t.InvoiceNumber, t.InvoiceDate, t.CostCenter, t.Description,
		t.Amount, t.Currency, t.Status.String(), t.Version, t.ActiveVersion,
		t.RevisionDeadline, t.RevisionCount, marshalFlags(t.Flags),
		t.CreatedAt, t.SubmittedAt, t.ReviewedAt, t.ApprovedAt, t.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return s.replaceItems(ctx, t.ID, t.Items)
}

// GetTransaction loads one row with its items.
func (s *Store) GetTransaction(ctx context.Context, id string) (*lifecycle.Transaction, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.pool.QueryRow(ctx, `SELECT `+trxColumns+` FROM trxmaster WHERE transaction_id = $1`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, faults.NotFound("transaction", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load transaction: %w", err)
	}
	if err := s.loadItems(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// GetActiveByCode loads the single active-version row of a code lineage.
func (s *Store) GetActiveByCode(ctx context.Context, code string) (*lifecycle.Transaction, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.pool.QueryRow(ctx,
		`SELECT `+trxColumns+` FROM trxmaster WHERE transaction_code = $1 AND active_version = true`, code)
	t, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, faults.NotFound("transaction", code)
	}
	if err != nil {
		return nil, fmt.Errorf("load active transaction: %w", err)
	}
	if err := s.loadItems(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ListByOwner returns the active-version rows a user owns, newest first.
func (s *Store) ListByOwner(ctx context.Context, ownerUserID string) ([]*lifecycle.Transaction, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT `+trxColumns+` FROM trxmaster
		 WHERE owner_user_id = $1 AND active_version = true
		 ORDER BY created_at DESC`, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []*lifecycle.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListVersions returns every row of a code lineage, archived included.
func (s *Store) ListVersions(ctx context.Context, code string) ([]*lifecycle.Transaction, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT `+trxColumns+` FROM trxmaster WHERE transaction_code = $1 ORDER BY version`, code)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var out []*lifecycle.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) loadItems(ctx context.Context, t *lifecycle.Transaction) error {
	rows, err := s.pool.Query(ctx, `
		SELECT item_id, description, account_code, quantity, unit_price, line_total
		FROM trxitems WHERE transaction_id = $1 ORDER BY item_id`, t.ID)
	if err != nil {
		return fmt.Errorf("load items: %w", err)
	}
	defer rows.Close()

	t.Items = nil
	for rows.Next() {
		var it lifecycle.TransactionItem
		if err := rows.Scan(&it.ID, &it.Description, &it.AccountCode, &it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return err
		}
		t.Items = append(t.Items, it)
	}
	return rows.Err()
}

func (s *Store) replaceItems(ctx context.Context, trxID string, items []lifecycle.TransactionItem) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM trxitems WHERE transaction_id = $1`, trxID); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.New().String()
		}
		_, err := s.pool.Exec(ctx, `
			INSERT INTO trxitems (item_id, transaction_id, description, account_code, quantity, unit_price, line_total)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			items[i].ID, trxID, items[i].Description, items[i].AccountCode,
			items[i].Quantity, items[i].UnitPrice, items[i].LineTotal)
		if err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
	}
	return nil
}

// UpdateHeader persists header fields and the recomputed amount, conditioned
// on the status the caller validated against.
func (s *Store) UpdateHeader(ctx context.Context, t *lifecycle.Transaction, expected lifecycle.Status) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := s.pool.Exec(ctx, `
		UPDATE trxmaster SET
			vendor_name=$1, invoice_number=$2, invoice_date=$3, cost_center=$4,
			description=$5, amount=$6, currency=$7, flags=$8
		WHERE transaction_id=$9 AND status=$10`,
		t.VendorName, t.InvoiceNumber, t.InvoiceDate, t.CostCenter,
		t.Description, t.Amount, t.Currency, marshalFlags(t.Flags),
		t.ID, expected.String())
	if err != nil {
		return fmt.Errorf("update header: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return faults.NotFound("transaction", t.ID)
	}
	return nil
}

// ReplaceItems swaps the item set and the recomputed amount, conditioned on
// the observed status.
func (s *Store) ReplaceItems(ctx context.Context, trxID string, items []lifecycle.TransactionItem, amount decimal.Decimal, expected lifecycle.Status) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	dbtx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer dbtx.Rollback(ctx)

	tag, err := dbtx.Exec(ctx,
		`UPDATE trxmaster SET amount=$1 WHERE transaction_id=$2 AND status=$3`,
		amount, trxID, expected.String())
	if err != nil {
		return fmt.Errorf("update amount: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return faults.NotFound("transaction", trxID)
	}
	if _, err := dbtx.Exec(ctx, `DELETE FROM trxitems WHERE transaction_id = $1`, trxID); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.New().String()
		}
		_, err := dbtx.Exec(ctx, `
			INSERT INTO trxitems (item_id, transaction_id, description, account_code, quantity, unit_price, line_total)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			items[i].ID, trxID, items[i].Description, items[i].AccountCode,
			items[i].Quantity, items[i].UnitPrice, items[i].LineTotal)
		if err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
	}
	return dbtx.Commit(ctx)
}

// TransitionStatus is the single guarded status write: it only fires when the
// row still carries the status the caller saw, and persists the flag block and
// lifecycle timestamps alongside.
func (s *Store) TransitionStatus(ctx context.Context, t *lifecycle.Transaction, from lifecycle.Status) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := s.pool.Exec(ctx, `
		UPDATE trxmaster SET
			status=$1, flags=$2, revision_deadline=$3, revision_count=$4,
			submitted_at=$5, reviewed_at=$6, approved_at=$7, completed_at=$8
		WHERE transaction_id=$9 AND status=$10`,
		t.Status.String(), marshalFlags(t.Flags), t.RevisionDeadline, t.RevisionCount,
		t.SubmittedAt, t.ReviewedAt, t.ApprovedAt, t.CompletedAt,
		t.ID, from.String())
	if err != nil {
		return fmt.Errorf("transition status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return faults.NotFound("transaction", t.ID)
	}
	return nil
}

// AdvanceVersion performs the resubmission write pair inside one database
// transaction: the live row is advanced first, freeing the (code, version)
// identity slot, and only then is the archived pre-mutation clone inserted
// with the old version, superseded status and the active marker cleared.
func (s *Store) AdvanceVersion(ctx context.Context, prior *lifecycle.Transaction, advanced *lifecycle.Transaction) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	dbtx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer dbtx.Rollback(ctx)

	tag, err := dbtx.Exec(ctx, `
		UPDATE trxmaster SET
			status=$1, version=$2, active_version=true, flags=$3,
			revision_deadline=NULL, submitted_at=$4
		WHERE transaction_id=$5 AND status=$6 AND version=$7 AND active_version=true`,
		advanced.Status.String(), advanced.Version, marshalFlags(advanced.Flags),
		advanced.SubmittedAt,
		prior.ID, prior.Status.String(), prior.Version)
	if err != nil {
		return fmt.Errorf("advance live row: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return faults.NotFound("transaction", prior.ID)
	}

	archiveID := uuid.New().String()
	_, err = dbtx.Exec(ctx, `
		INSERT INTO trxmaster (`+trxColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)`,
		archiveID, prior.Code, prior.Type, prior.OwnerUserID,
		prior.VendorName, prior.InvoiceNumber, prior.InvoiceDate, prior.CostCenter, prior.Description,
		prior.Amount, prior.Currency, lifecycle.StatusSuperseded.String(), prior.Version, false,
		prior.RevisionDeadline, prior.RevisionCount, marshalFlags(prior.Flags),
		prior.CreatedAt, prior.SubmittedAt, prior.ReviewedAt, prior.ApprovedAt, prior.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert archive row: %w", err)
	}
	return dbtx.Commit(ctx)
}

// ExpiredReturned lists active-version transactions sitting in returned with
// a deadline strictly in the past. Candidates only; the escalation itself is
// re-checked row by row.
func (s *Store) ExpiredReturned(ctx context.Context, limit int) ([]*lifecycle.Transaction, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT `+trxColumns+` FROM trxmaster
		WHERE active_version = true AND status = $1 AND revision_deadline < now()
		ORDER BY revision_deadline
		LIMIT $2`, lifecycle.StatusReturned.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("select expired returned: %w", err)
	}
	defer rows.Close()

	var out []*lifecycle.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Escalate atomically closes one expired revision window. The precondition is
// re-evaluated inside the UPDATE, so a sweep racing another sweep or a
// concurrent resubmit affects zero rows and reports false.
func (s *Store) Escalate(ctx context.Context, trxID string, escalatedAt time.Time) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := s.pool.Exec(ctx, `
		UPDATE trxmaster SET
			status=$1,
			flags = flags || jsonb_build_object('locked_final', true, 'escalated_at', to_jsonb($2::timestamptz)),
			completed_at=$2
		WHERE transaction_id=$3 AND status=$4 AND active_version=true AND revision_deadline < now()`,
		lifecycle.StatusNeedsAcctFix.String(), escalatedAt,
		trxID, lifecycle.StatusReturned.String())
	if err != nil {
		return false, fmt.Errorf("escalate transaction: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
