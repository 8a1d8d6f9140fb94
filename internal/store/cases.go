package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"ArthaFlowSaas/internal/faults"
	"ArthaFlowSaas/internal/lifecycle"
)

// InsertCase opens a correction case. The partial unique index on
// (transaction_id) WHERE status='OPEN' backs the one-open-case invariant; a
// violation is reported as a validation error.
func (s *Store) InsertCase(ctx context.Context, c *lifecycle.ExceptionCase) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.Status = lifecycle.CaseOpen
	c.CreatedAt = time.Now()
	if c.Patch == nil {
		c.Patch = map[string]string{}
	}

	allowJSON, _ := json.Marshal(c.Allowlist)
	patchJSON, _ := json.Marshal(c.Patch)

	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM trxexceptioncases WHERE transaction_id=$1 AND status=$2)`,
		c.TransactionID, lifecycle.CaseOpen).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check open case: %w", err)
	}
	if exists {
		return faults.Invalid("transaction_id", "an open exception case already exists for this transaction")
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO trxexceptioncases
			(case_id, transaction_id, owner_user_id, allowlist, patch, mismatch_summary, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		c.ID, c.TransactionID, c.OwnerUserID, allowJSON, patchJSON,
		c.MismatchSummary, c.Status, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert case: %w", err)
	}
	return nil
}

func (s *Store) scanCase(row pgx.Row) (*lifecycle.ExceptionCase, error) {
	var c lifecycle.ExceptionCase
	var allowJSON, patchJSON []byte
	err := row.Scan(&c.ID, &c.TransactionID, &c.OwnerUserID, &allowJSON, &patchJSON,
		&c.MismatchSummary, &c.Status, &c.CreatedAt, &c.ResolvedAt)
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal(allowJSON, &c.Allowlist)
	_ = json.Unmarshal(patchJSON, &c.Patch)
	if c.Patch == nil {
		c.Patch = map[string]string{}
	}
	return &c, nil
}

// GetCase loads a case by id.
func (s *Store) GetCase(ctx context.Context, caseID string) (*lifecycle.ExceptionCase, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.pool.QueryRow(ctx, `
		SELECT case_id, transaction_id, owner_user_id, allowlist, patch, mismatch_summary, status, created_at, resolved_at
		FROM trxexceptioncases WHERE case_id = $1`, caseID)
	c, err := s.scanCase(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, faults.NotFound("exception case", caseID)
	}
	if err != nil {
		return nil, fmt.Errorf("load case: %w", err)
	}
	return c, nil
}

// OpenCaseForTransaction loads the single OPEN case of a transaction.
func (s *Store) OpenCaseForTransaction(ctx context.Context, trxID string) (*lifecycle.ExceptionCase, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.pool.QueryRow(ctx, `
		SELECT case_id, transaction_id, owner_user_id, allowlist, patch, mismatch_summary, status, created_at, resolved_at
		FROM trxexceptioncases WHERE transaction_id = $1 AND status = $2`, trxID, lifecycle.CaseOpen)
	c, err := s.scanCase(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, faults.NotFound("open exception case for transaction", trxID)
	}
	if err != nil {
		return nil, fmt.Errorf("load open case: %w", err)
	}
	return c, nil
}

// UpdateCasePatch persists the accumulated patch and refreshed summary,
// conditioned on the case still being OPEN.
func (s *Store) UpdateCasePatch(ctx context.Context, c *lifecycle.ExceptionCase) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	patchJSON, _ := json.Marshal(c.Patch)
	tag, err := s.pool.Exec(ctx, `
		UPDATE trxexceptioncases SET patch=$1, mismatch_summary=$2
		WHERE case_id=$3 AND status=$4`,
		patchJSON, c.MismatchSummary, c.ID, lifecycle.CaseOpen)
	if err != nil {
		return fmt.Errorf("update case patch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return faults.NotFound("exception case", c.ID)
	}
	return nil
}

// ResolveCase flips an OPEN case to RESOLVED.
func (s *Store) ResolveCase(ctx context.Context, caseID string, resolvedAt time.Time) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := s.pool.Exec(ctx, `
		UPDATE trxexceptioncases SET status=$1, resolved_at=$2
		WHERE case_id=$3 AND status=$4`,
		lifecycle.CaseResolved, resolvedAt, caseID, lifecycle.CaseOpen)
	if err != nil {
		return fmt.Errorf("resolve case: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return faults.NotFound("exception case", caseID)
	}
	return nil
}
