package store

import (
	"sync"

	"github.com/ateliergo/atelier/internal/models"
)

// MemoryStore is an in-memory Store used by tests and throwaway setups.
type MemoryStore struct {
	mu       sync.Mutex
	profiles map[string]models.Profile
	messages map[string][]models.ConversationMessage
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]models.Profile),
		messages: make(map[string][]models.ConversationMessage),
	}
}

// GetProfile returns the stored profile or (nil, nil) when absent.
func (s *MemoryStore) GetProfile(userID string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, nil
	}
	out := p.Clone()
	return &out, nil
}

// SaveProfile stores or replaces the whole profile record.
func (s *MemoryStore) SaveProfile(p models.Profile) error {
	if p.UserID == "" {
		return models.ErrEmptyUserID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = p.Clone()
	return nil
}

// AddMessage appends a message and trims the log to the sliding window cap.
func (s *MemoryStore) AddMessage(userID string, m models.ConversationMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := append(s.messages[userID], m)
	if len(log) > models.MaxConversationLength {
		log = log[len(log)-models.MaxConversationLength:]
	}
	s.messages[userID] = log
	return nil
}

// GetMessages returns up to limit most recent messages, oldest first.
func (s *MemoryStore) GetMessages(userID string, limit int) ([]models.ConversationMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.messages[userID]
	if limit <= 0 || limit > len(log) {
		limit = len(log)
	}
	out := make([]models.ConversationMessage, limit)
	copy(out, log[len(log)-limit:])
	return out, nil
}

// ClearMessages drops the whole conversation log for a user.
func (s *MemoryStore) ClearMessages(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.messages, userID)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
