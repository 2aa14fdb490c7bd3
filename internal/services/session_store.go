package services

import (
	"sync"

	"github.com/VitaliyFgiol/Bot/internal/models"
)

// SessionStore is the single process-wide holder of per-chat UI state.
// Sessions are created on first use and live for the process lifetime;
// there is no expiry.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*sessionEntry
}

type sessionEntry struct {
	mu      sync.Mutex
	session *models.ChatSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int64]*sessionEntry)}
}

// WithSession runs fn with the chat's session while holding that chat's
// lock, so transitions for one chat never interleave. Different chats
// proceed in parallel.
func (s *SessionStore) WithSession(chatID int64, fn func(*models.ChatSession) error) error {
	entry := s.entry(chatID)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.session)
}

func (s *SessionStore) entry(chatID int64) *sessionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[chatID]
	if !ok {
		entry = &sessionEntry{session: &models.ChatSession{ChatID: chatID}}
		s.sessions[chatID] = entry
	}
	return entry
}
