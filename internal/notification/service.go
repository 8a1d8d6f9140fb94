package notification

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"ArthaFlowSaas/internal/logger"
)

// Sink is the fire-and-forget audit/notification writer. A failed append is
// logged to the error sink and dropped: it never rolls back or blocks the
// state transition that produced it.
type Sink struct {
	pool      *pgxpool.Pool
	publisher Publisher

	mu     sync.Mutex
	recent []string
}

// Publisher receives each signal for live delivery, e.g. an SSE stream.
// Delivery is best effort; the durable copy is the notification row.
type Publisher interface {
	Publish(userID, kind, message string)
}

func NewSink(pool *pgxpool.Pool) *Sink {
	return &Sink{pool: pool}
}

// SetPublisher wires a live delivery channel. Optional.
func (s *Sink) SetPublisher(p Publisher) {
	s.publisher = p
}

// Audit appends an activity record for a transaction transition.
func (s *Sink) Audit(trxID, action, actorUserID, comment string) {
	s.remember("audit:" + action + ":" + trxID)
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit(action + " " + trxID + " by " + actorUserID)
	}
	if s.pool == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO trxauditactions (action_id, transaction_id, action, actor_user_id, comment, created_at)
		VALUES ($1,$2,$3,$4,$5,now())`,
		uuid.New().String(), trxID, action, actorUserID, comment)
	if err != nil {
		log.Printf("[ERROR] audit append failed (dropped): %v", err)
	}
}

// Signal records a silent, non-blocking notice for a user, e.g. the owner of
// an escalated transaction. The user sees it on next login; nothing waits on it.
func (s *Sink) Signal(userID, kind, message string) {
	s.remember("signal:" + kind + ":" + userID)
	if s.publisher != nil {
		s.publisher.Publish(userID, kind, message)
	}
	if s.pool == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO trxnotifications (notification_id, user_id, kind, message, created_at)
		VALUES ($1,$2,$3,$4,now())`,
		uuid.New().String(), userID, kind, message)
	if err != nil {
		log.Printf("[ERROR] signal append failed (dropped): %v", err)
	}
}

func (s *Sink) remember(entry string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent = append(s.recent, entry)
	if len(s.recent) > 256 {
		s.recent = s.recent[len(s.recent)-256:]
	}
}

// Recent returns the in-process tail of emitted records, newest last. Used by
// the heartbeat endpoint and tests.
func (s *Sink) Recent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.recent))
	copy(out, s.recent)
	return out
}
