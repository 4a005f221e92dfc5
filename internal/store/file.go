package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/ateliergo/atelier/internal/models"
)

// Constants for file store configuration.
const (
	// DefaultDirPermissions defines the default permissions for data directories.
	DefaultDirPermissions = 0755
	// DefaultFilePermissions defines the default permissions for data files.
	DefaultFilePermissions = 0644

	profilesFileName      = "users.json"
	conversationsFileName = "conversations.json"
)

// FileStore persists profiles and conversation logs as two JSON files keyed by
// user id, mirroring the layout the assistant has always used on disk.
type FileStore struct {
	profilesPath      string
	conversationsPath string
	mu                sync.Mutex
}

// NewFileStore creates a file-backed store rooted at the directory given by
// the DSN option. The directory is created if missing.
func NewFileStore(opts ...Option) (*FileStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Error("FileStore data directory not set")
		return nil, fmt.Errorf("data directory not set")
	}

	if err := os.MkdirAll(cfg.DSN, DefaultDirPermissions); err != nil {
		slog.Error("FileStore failed to create data directory", "error", err, "dir", cfg.DSN)
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	slog.Debug("FileStore data directory verified/created", "dir", cfg.DSN)

	return &FileStore{
		profilesPath:      filepath.Join(cfg.DSN, profilesFileName),
		conversationsPath: filepath.Join(cfg.DSN, conversationsFileName),
	}, nil
}

// loadTable reads a JSON table from disk into dst. A missing, unreadable or
// corrupt file leaves dst empty: the store restarts fresh rather than failing.
func loadTable[T any](path string, dst *map[string]T) {
	*dst = make(map[string]T)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("FileStore failed to read table, treating as empty", "error", err, "path", path)
		}
		return
	}
	if err := json.Unmarshal(data, dst); err != nil {
		slog.Error("FileStore table corrupt, treating as empty", "error", err, "path", path)
		*dst = make(map[string]T)
	}
}

// saveTable writes a JSON table atomically via a temp file and rename.
func saveTable[T any](path string, table map[string]T) error {
	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal table: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace table: %w", err)
	}
	return nil
}

// GetProfile returns the stored profile or (nil, nil) when absent.
func (s *FileStore) GetProfile(userID string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var profiles map[string]models.Profile
	loadTable(s.profilesPath, &profiles)

	p, ok := profiles[userID]
	if !ok {
		slog.Debug("FileStore GetProfile not found", "userID", userID)
		return nil, nil
	}
	return &p, nil
}

// SaveProfile stores or replaces the whole profile record.
func (s *FileStore) SaveProfile(p models.Profile) error {
	if p.UserID == "" {
		return models.ErrEmptyUserID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var profiles map[string]models.Profile
	loadTable(s.profilesPath, &profiles)
	profiles[p.UserID] = p

	if err := saveTable(s.profilesPath, profiles); err != nil {
		slog.Error("FileStore SaveProfile failed", "error", err, "userID", p.UserID)
		return err
	}
	slog.Debug("FileStore SaveProfile succeeded", "userID", p.UserID)
	return nil
}

// AddMessage appends a message and enforces the sliding window cap.
func (s *FileStore) AddMessage(userID string, m models.ConversationMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var conversations map[string][]models.ConversationMessage
	loadTable(s.conversationsPath, &conversations)

	log := append(conversations[userID], m)
	if len(log) > models.MaxConversationLength {
		log = log[len(log)-models.MaxConversationLength:]
	}
	conversations[userID] = log

	if err := saveTable(s.conversationsPath, conversations); err != nil {
		slog.Error("FileStore AddMessage failed", "error", err, "userID", userID)
		return err
	}
	return nil
}

// GetMessages returns up to limit most recent messages, oldest first. A limit
// beyond what is stored returns everything available.
func (s *FileStore) GetMessages(userID string, limit int) ([]models.ConversationMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var conversations map[string][]models.ConversationMessage
	loadTable(s.conversationsPath, &conversations)

	log := conversations[userID]
	if limit > 0 && len(log) > limit {
		log = log[len(log)-limit:]
	}
	return append([]models.ConversationMessage(nil), log...), nil
}

// ClearMessages drops the whole conversation log for a user.
func (s *FileStore) ClearMessages(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var conversations map[string][]models.ConversationMessage
	loadTable(s.conversationsPath, &conversations)

	if _, ok := conversations[userID]; !ok {
		return nil
	}
	delete(conversations, userID)

	if err := saveTable(s.conversationsPath, conversations); err != nil {
		slog.Error("FileStore ClearMessages failed", "error", err, "userID", userID)
		return err
	}
	slog.Debug("FileStore ClearMessages succeeded", "userID", userID)
	return nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error {
	return nil
}
