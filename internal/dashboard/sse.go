package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// SSEClient is one owner's live notification stream.
type SSEClient struct {
	userID   string
	writer   http.ResponseWriter
	flusher  http.Flusher
	done     chan bool
	lastPing time.Time
}

// SSEServer pushes silent notifications (returns, escalations, review
// outcomes) to connected owners. One connection per user; a new connection
// replaces the old one.
type SSEServer struct {
	mu         sync.RWMutex
	clients    map[string]*SSEClient
	pingTicker *time.Ticker
	stopCh     chan struct{}
}

var globalSSEServer *SSEServer

func NewSSEServer() *SSEServer {
	s := &SSEServer{
		clients: make(map[string]*SSEClient),
		stopCh:  make(chan struct{}),
	}
	globalSSEServer = s

	s.pingTicker = time.NewTicker(30 * time.Second)
	go s.pingClients()

	return s
}

func GetSSEServer() *SSEServer {
	return globalSSEServer
}

// HandleSSE upgrades the request into a notification stream for user_id.
func (s *SSEServer) HandleSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id parameter required", http.StatusBadRequest)
		return
	}

	client := &SSEClient{
		userID:   userID,
		writer:   w,
		flusher:  flusher,
		done:     make(chan bool),
		lastPing: time.Now(),
	}

	s.mu.Lock()
	if existing, exists := s.clients[userID]; exists {
		close(existing.done)
	}
	s.clients[userID] = client
	s.mu.Unlock()

	s.sendToClient(client, map[string]interface{}{
		"type": "connected",
		"time": time.Now().Format(time.RFC3339),
	})

	defer func() {
		s.mu.Lock()
		if s.clients[userID] == client {
			delete(s.clients, userID)
		}
		s.mu.Unlock()
	}()

	select {
	case <-client.done:
		return
	case <-r.Context().Done():
		return
	case <-s.stopCh:
		return
	}
}

// Publish pushes one notification to a user's stream, dropping it silently
// when the user is not connected.
func (s *SSEServer) Publish(userID, kind, message string) {
	s.mu.RLock()
	client, ok := s.clients[userID]
	s.mu.RUnlock()
	if !ok {
		return
	}
	s.sendToClient(client, map[string]interface{}{
		"type":    kind,
		"message": message,
		"time":    time.Now().Format(time.RFC3339),
	})
}

func (s *SSEServer) sendToClient(client *SSEClient, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(client.writer, "data: %s\n\n", jsonData); err != nil {
		return err
	}
	client.flusher.Flush()
	return nil
}

func (s *SSEServer) pingClients() {
	for {
		select {
		case <-s.stopCh:
			s.pingTicker.Stop()
			return
		case <-s.pingTicker.C:
			s.mu.RLock()
			clients := make([]*SSEClient, 0, len(s.clients))
			for _, c := range s.clients {
				clients = append(clients, c)
			}
			s.mu.RUnlock()
			for _, c := range clients {
				s.sendToClient(c, map[string]interface{}{"type": "ping"})
			}
		}
	}
}

func (s *SSEServer) Stop() {
	close(s.stopCh)
}
