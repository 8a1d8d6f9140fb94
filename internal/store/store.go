// Package store is the pgx persistence layer for the transaction aggregate.
// Every mutating statement is conditioned on the status the caller observed,
// so a concurrent writer surfaces as a zero-row update, never a lost write.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"ArthaFlowSaas/internal/lifecycle"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Pool exposes the underlying pool for callers that cross store boundaries
// (the escalation sweep shares it with the notification sink).
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

const opTimeout = 30 * time.Second

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, opTimeout)
}

func marshalFlags(f lifecycle.Flags) []byte {
	f.Version = lifecycle.FlagsVersion
	b, err := json.Marshal(f)
	if err != nil {
		return []byte(`{"version":1}`)
	}
	return b
}

func unmarshalFlags(b []byte, f *lifecycle.Flags) {
	if len(b) == 0 {
		return
	}
	_ = json.Unmarshal(b, f)
}
