package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ResolutionItem is one downstream "needs accounting resolution" work item.
type ResolutionItem struct {
	ID            string    `json:"item_id"`
	TransactionID string    `json:"transaction_id"`
	OwnerUserID   string    `json:"owner_user_id"`
	Reason        string    `json:"reason"`
	EnqueuedAt    time.Time `json:"enqueued_at"`
}

// EnqueueResolution appends a work item for the accounting resolution queue.
func (s *Store) EnqueueResolution(ctx context.Context, trxID, ownerUserID, reason string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO trxresolutionqueue (item_id, transaction_id, owner_user_id, reason, enqueued_at)
		VALUES ($1,$2,$3,$4,now())`,
		uuid.New().String(), trxID, ownerUserID, reason)
	if err != nil {
		return fmt.Errorf("enqueue resolution item: %w", err)
	}
	return nil
}

// ListResolutionQueue returns pending work items, oldest first.
func (s *Store) ListResolutionQueue(ctx context.Context, limit int) ([]ResolutionItem, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT item_id, transaction_id, owner_user_id, reason, enqueued_at
		FROM trxresolutionqueue ORDER BY enqueued_at LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list resolution queue: %w", err)
	}
	defer rows.Close()

	var out []ResolutionItem
	for rows.Next() {
		var it ResolutionItem
		if err := rows.Scan(&it.ID, &it.TransactionID, &it.OwnerUserID, &it.Reason, &it.EnqueuedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
