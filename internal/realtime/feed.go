// internal/realtime/feed.go
package realtime

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Event is one change-feed entry. Delivery is at-least-once and possibly
// out of order across reconnects; consumers deduplicate by NotificationID.
type Event struct {
	NotificationID uuid.UUID `json:"notification_id"`
	OrderID        uuid.UUID `json:"order_id"`
	CompanyID      uuid.UUID `json:"company_id"`
	Type           string    `json:"type"`
	CreatedAt      time.Time `json:"created_at"`
}

const sessionBufferSize = 64

// Session is one dashboard session's live subscription. Events arrives on C
// until the session is replaced, unsubscribed, or the hub shuts down.
type Session struct {
	Key       string
	CompanyID uuid.UUID
	C         chan Event

	closeOnce sync.Once
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.C)
	})
}

// Hub fans change-feed events out to company-scoped dashboard sessions.
// Subscribing twice with the same session key replaces the earlier
// subscription, which keeps re-subscription idempotent.
type Hub struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]map[string]*Session
	closed   bool
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[uuid.UUID]map[string]*Session),
	}
}

func (h *Hub) Subscribe(companyID uuid.UUID, sessionKey string) *Session {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		s := &Session{Key: sessionKey, CompanyID: companyID, C: make(chan Event)}
		s.close()
		return s
	}

	byKey, ok := h.sessions[companyID]
	if !ok {
		byKey = make(map[string]*Session)
		h.sessions[companyID] = byKey
	}

	if prev, ok := byKey[sessionKey]; ok {
		prev.close()
	}

	s := &Session{
		Key:       sessionKey,
		CompanyID: companyID,
		C:         make(chan Event, sessionBufferSize),
	}
	byKey[sessionKey] = s

	logrus.WithFields(logrus.Fields{
		"company_id":  companyID,
		"session_key": sessionKey,
	}).Debug("feed session subscribed")

	return s
}

func (h *Hub) Unsubscribe(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	byKey, ok := h.sessions[s.CompanyID]
	if !ok {
		return
	}
	// Only remove if this exact session is still registered; a replacement
	// with the same key must survive the old stream's teardown.
	if current, ok := byKey[s.Key]; ok && current == s {
		delete(byKey, s.Key)
		if len(byKey) == 0 {
			delete(h.sessions, s.CompanyID)
		}
	}
	s.close()
}

// Publish delivers ev to every session of the company. Slow sessions with
// a full buffer drop the event; the poll-on-reconnect pass covers the gap.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}

	for _, s := range h.sessions[ev.CompanyID] {
		select {
		case s.C <- ev:
		default:
			logrus.WithFields(logrus.Fields{
				"company_id":  ev.CompanyID,
				"session_key": s.Key,
			}).Warn("feed session buffer full, dropping event")
		}
	}
}

func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, byKey := range h.sessions {
		count += len(byKey)
	}
	return count
}

// Close tears down every session; subsequent Subscribe calls return
// already-closed sessions.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for _, byKey := range h.sessions {
		for _, s := range byKey {
			s.close()
		}
	}
	h.sessions = make(map[uuid.UUID]map[string]*Session)
}
