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
	"ArthaFlowSaas/internal/reconcile"
)

// InsertDocument appends a new document row. Earlier rows are never touched;
// LatestDocument decides which one counts.
func (s *Store) InsertDocument(ctx context.Context, d *lifecycle.TransactionDocument) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	d.CreatedAt = time.Now()

	blocksJSON, err := json.Marshal(d.Blocks)
	if err != nil {
		return fmt.Errorf("marshal blocks: %w", err)
	}
	parsedJSON, err := json.Marshal(d.Parsed)
	if err != nil {
		return fmt.Errorf("marshal parsed: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO trxdocuments
			(document_id, transaction_id, file_ref, raw_text, blocks, parsed, match_status, confidence, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		d.ID, d.TransactionID, d.FileRef, d.RawText, blocksJSON, parsedJSON,
		d.MatchStatus, d.Confidence, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// LatestDocument loads the most recent upload for a transaction.
func (s *Store) LatestDocument(ctx context.Context, trxID string) (*lifecycle.TransactionDocument, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var d lifecycle.TransactionDocument
	var blocksJSON, parsedJSON []byte
	err := s.pool.QueryRow(ctx, `
		SELECT document_id, transaction_id, file_ref, raw_text, blocks, parsed, match_status, confidence, created_at
		FROM trxdocuments WHERE transaction_id = $1
		ORDER BY created_at DESC LIMIT 1`, trxID).Scan(
		&d.ID, &d.TransactionID, &d.FileRef, &d.RawText, &blocksJSON, &parsedJSON,
		&d.MatchStatus, &d.Confidence, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, faults.NotFound("document for transaction", trxID)
	}
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if err := json.Unmarshal(blocksJSON, &d.Blocks); err != nil {
		return nil, fmt.Errorf("decode blocks: %w", err)
	}
	var parsed reconcile.ParsedInvoice
	if err := json.Unmarshal(parsedJSON, &parsed); err != nil {
		return nil, fmt.Errorf("decode parsed: %w", err)
	}
	d.Parsed = parsed
	return &d, nil
}

// SetDocumentMatchStatus records the reconciliation outcome on the document row.
func (s *Store) SetDocumentMatchStatus(ctx context.Context, documentID, matchStatus string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := s.pool.Exec(ctx,
		`UPDATE trxdocuments SET match_status=$1 WHERE document_id=$2`, matchStatus, documentID)
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return faults.NotFound("document", documentID)
	}
	return nil
}
