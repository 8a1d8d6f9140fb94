package session

import (
	"testing"
	"time"
)

func TestSessionLifecycle(t *testing.T) {
	m := NewManager(time.Hour)

	s := m.CreateSession("user-1")
	if s.ID == "" || s.UserID != "user-1" {
		t.Fatalf("session = %+v", s)
	}

	got, ok := m.GetSession(s.ID)
	if !ok || got.ID != s.ID {
		t.Fatalf("GetSession = %+v, %v", got, ok)
	}

	m.DeleteSession(s.ID)
	if _, ok := m.GetSession(s.ID); ok {
		t.Error("deleted session still resolvable")
	}
}

func TestExpiredSessionIsDead(t *testing.T) {
	m := NewManager(time.Hour)
	s := m.CreateSession("user-1")

	m.mu.Lock()
	m.sessions[s.ID].ExpiresAt = time.Now().Add(-time.Minute)
	m.mu.Unlock()

	if _, ok := m.GetSession(s.ID); ok {
		t.Error("expired session still resolvable")
	}
}

func TestTouchExtendsExpiry(t *testing.T) {
	m := NewManager(time.Hour)
	s := m.CreateSession("user-1")

	m.mu.Lock()
	m.sessions[s.ID].ExpiresAt = time.Now().Add(time.Minute)
	m.mu.Unlock()

	m.Touch(s.ID)

	got, ok := m.GetSession(s.ID)
	if !ok {
		t.Fatal("touched session vanished")
	}
	if got.ExpiresAt.Before(time.Now().Add(30 * time.Minute)) {
		t.Errorf("expiry not extended: %v", got.ExpiresAt)
	}
}

func TestCleanupExpired(t *testing.T) {
	m := NewManager(time.Hour)
	live := m.CreateSession("user-live")
	dead := m.CreateSession("user-dead")

	m.mu.Lock()
	m.sessions[dead.ID].ExpiresAt = time.Now().Add(-time.Minute)
	m.mu.Unlock()

	evicted := m.CleanupExpired()
	if len(evicted) != 1 || evicted[0] != dead.ID {
		t.Fatalf("evicted = %v, want [%s]", evicted, dead.ID)
	}
	if _, ok := m.GetSession(live.ID); !ok {
		t.Error("live session evicted")
	}
}
