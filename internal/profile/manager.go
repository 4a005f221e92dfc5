// Package profile owns the durable per-user profile record.
//
// All reads and writes go through the Manager, which serializes mutations per
// user and keeps the record's update timestamp honest. The AI field-merge step
// lives here too so its guardrails sit next to the data they protect.
package profile

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ateliergo/atelier/internal/models"
	"github.com/ateliergo/atelier/internal/store"
)

// Manager mediates every profile read and mutation.
type Manager struct {
	store store.Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a profile manager over the given store.
func NewManager(st store.Store) *Manager {
	return &Manager{
		store: st,
		locks: make(map[string]*sync.Mutex),
	}
}

// userLock returns the per-user mutex, creating it on first use.
func (m *Manager) userLock(userID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[userID] = lock
	}
	return lock
}

// Get returns the user's profile, materializing and persisting a default
// record on first contact. A get is never a pure read: after it returns, the
// profile exists in the store.
func (m *Manager) Get(userID string) (models.Profile, error) {
	if userID == "" {
		return models.Profile{}, models.ErrEmptyUserID
	}
	lock := m.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	p, err := m.store.GetProfile(userID)
	if err != nil {
		return models.Profile{}, fmt.Errorf("failed to load profile for %s: %w", userID, err)
	}
	if p != nil {
		return *p, nil
	}

	fresh := models.NewProfile(userID)
	if err := m.store.SaveProfile(fresh); err != nil {
		return models.Profile{}, fmt.Errorf("failed to persist new profile for %s: %w", userID, err)
	}
	slog.Info("Manager.Get created new profile", "userID", userID)
	return fresh, nil
}

// Update applies fn to the user's profile under the per-user lock and persists
// the result with a fresh update timestamp. The profile is materialized first
// if absent.
func (m *Manager) Update(userID string, fn func(*models.Profile)) error {
	if userID == "" {
		return models.ErrEmptyUserID
	}
	lock := m.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	stored, err := m.store.GetProfile(userID)
	if err != nil {
		return fmt.Errorf("failed to load profile for %s: %w", userID, err)
	}
	var p models.Profile
	if stored != nil {
		p = *stored
	} else {
		p = models.NewProfile(userID)
	}

	fn(&p)
	p.UserID = userID
	p.UpdatedAt = time.Now()

	if err := m.store.SaveProfile(p); err != nil {
		return fmt.Errorf("failed to save profile for %s: %w", userID, err)
	}
	return nil
}

// SetField writes one named field through the profile's field routing.
func (m *Manager) SetField(userID, name, value string) error {
	var setErr error
	err := m.Update(userID, func(p *models.Profile) {
		setErr = p.SetField(name, value)
	})
	if err != nil {
		return err
	}
	return setErr
}

// SetFields writes several named fields with a single timestamp bump. The
// first routing error aborts the whole write.
func (m *Manager) SetFields(userID string, fields map[string]string) error {
	var setErr error
	err := m.Update(userID, func(p *models.Profile) {
		for _, name := range sortedKeys(fields) {
			if e := p.SetField(name, fields[name]); e != nil {
				setErr = fmt.Errorf("field %s: %w", name, e)
				return
			}
		}
	})
	if err != nil {
		return err
	}
	return setErr
}

// Reset reinitializes every profile field except the user id and clears the
// conversation history. The record starts over with fresh timestamps.
func (m *Manager) Reset(userID string) error {
	if err := m.Update(userID, func(p *models.Profile) {
		*p = models.NewProfile(userID)
	}); err != nil {
		return err
	}
	if err := m.store.ClearMessages(userID); err != nil {
		return fmt.Errorf("failed to clear history for %s: %w", userID, err)
	}
	slog.Info("Manager.Reset profile reset", "userID", userID)
	return nil
}

// MarkMediaGroup records a multi-image submission id and reports whether it
// was already seen. The first caller for a given id gets false; every later
// caller gets true.
func (m *Manager) MarkMediaGroup(userID, groupID string) (bool, error) {
	seen := false
	err := m.Update(userID, func(p *models.Profile) {
		if p.MediaGroupSeen(groupID) {
			seen = true
			return
		}
		p.MediaGroupsSeen = append(p.MediaGroupsSeen, groupID)
	})
	if err != nil {
		return false, err
	}
	return seen, nil
}

// MergeAIFields folds AI-contributed profile updates into the record. Only
// keys that genuinely changed are written; protected metadata and placeholder
// values are dropped by the diff, and questionnaire keys the user has already
// answered are never overwritten. Returns the keys actually applied.
func (m *Manager) MergeAIFields(userID string, before, after map[string]string) ([]string, error) {
	diff := DiffFields(before, after)
	if len(diff) == 0 {
		return nil, nil
	}

	var applied []string
	err := m.Update(userID, func(p *models.Profile) {
		for _, key := range sortedKeys(diff) {
			if models.IsQuestionKey(key) {
				if _, answered := p.Answers[models.QuestionKey(key)]; answered {
					continue
				}
			}
			if e := p.SetField(key, diff[key]); e != nil {
				// Protected keys are filtered by the diff; anything else
				// routes to Extra, so this should not happen.
				slog.Warn("Manager.MergeAIFields skipped field", "error", e, "userID", userID, "field", key)
				continue
			}
			applied = append(applied, key)
		}
	})
	if err != nil {
		return nil, err
	}
	if len(applied) > 0 {
		slog.Info("Manager.MergeAIFields applied updates", "userID", userID, "fields", applied)
	}
	return applied, nil
}
