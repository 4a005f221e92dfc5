package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/ateliergo/atelier/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists profiles and conversation logs in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN is a file path to the database file; its directory is created if
// missing, and migrations run on open.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(cfg.DSN)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("SQLiteStore failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		slog.Error("SQLiteStore failed to open connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLiteStore ping failed", "error", err)
		return nil, err
	}
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("SQLiteStore failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLiteStore opened and migrated", "dsn", cfg.DSN)

	return &SQLiteStore{db: db}, nil
}

// GetProfile returns the stored profile or (nil, nil) when absent.
func (s *SQLiteStore) GetProfile(userID string) (*models.Profile, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM profiles WHERE user_id = ?`, userID).Scan(&data)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore GetProfile not found", "userID", userID)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetProfile failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to query profile for %s: %w", userID, err)
	}

	var p models.Profile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		// Corrupt row: restart this user fresh rather than failing the turn.
		slog.Error("SQLiteStore profile row corrupt, treating as absent", "error", err, "userID", userID)
		return nil, nil
	}
	return &p, nil
}

// SaveProfile stores or replaces the whole profile record.
func (s *SQLiteStore) SaveProfile(p models.Profile) error {
	if p.UserID == "" {
		return models.ErrEmptyUserID
	}
	data, err := json.Marshal(p)
	if err != nil {
		slog.Error("SQLiteStore SaveProfile marshal failed", "error", err, "userID", p.UserID)
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO profiles (user_id, data, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		p.UserID, string(data), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		slog.Error("SQLiteStore SaveProfile failed", "error", err, "userID", p.UserID)
		return fmt.Errorf("failed to save profile for %s: %w", p.UserID, err)
	}
	slog.Debug("SQLiteStore SaveProfile succeeded", "userID", p.UserID)
	return nil
}

// AddMessage appends a message and trims the log to the sliding window cap.
func (s *SQLiteStore) AddMessage(userID string, m models.ConversationMessage) error {
	_, err := s.db.Exec(`INSERT INTO conversation_messages (user_id, sender, body, timestamp) VALUES (?, ?, ?, ?)`,
		userID, string(m.Sender), m.Text, m.Timestamp)
	if err != nil {
		slog.Error("SQLiteStore AddMessage failed", "error", err, "userID", userID)
		return fmt.Errorf("failed to insert message for %s: %w", userID, err)
	}

	_, err = s.db.Exec(`
		DELETE FROM conversation_messages
		WHERE user_id = ? AND id NOT IN (
			SELECT id FROM conversation_messages
			WHERE user_id = ? ORDER BY id DESC LIMIT ?
		)`, userID, userID, models.MaxConversationLength)
	if err != nil {
		slog.Error("SQLiteStore AddMessage trim failed", "error", err, "userID", userID)
		return fmt.Errorf("failed to trim messages for %s: %w", userID, err)
	}
	return nil
}

// GetMessages returns up to limit most recent messages, oldest first.
func (s *SQLiteStore) GetMessages(userID string, limit int) ([]models.ConversationMessage, error) {
	if limit <= 0 {
		limit = models.MaxConversationLength
	}
	rows, err := s.db.Query(`
		SELECT sender, body, timestamp FROM (
			SELECT id, sender, body, timestamp FROM conversation_messages
			WHERE user_id = ? ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`, userID, limit)
	if err != nil {
		slog.Error("SQLiteStore GetMessages query failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to query messages for %s: %w", userID, err)
	}
	defer rows.Close()

	var messages []models.ConversationMessage
	for rows.Next() {
		var m models.ConversationMessage
		var sender string
		if err := rows.Scan(&sender, &m.Text, &m.Timestamp); err != nil {
			slog.Error("SQLiteStore GetMessages scan failed", "error", err, "userID", userID)
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		m.Sender = models.Sender(sender)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		slog.Error("SQLiteStore GetMessages rows iteration failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to iterate message rows: %w", err)
	}
	return messages, nil
}

// ClearMessages drops the whole conversation log for a user.
func (s *SQLiteStore) ClearMessages(userID string) error {
	_, err := s.db.Exec(`DELETE FROM conversation_messages WHERE user_id = ?`, userID)
	if err != nil {
		slog.Error("SQLiteStore ClearMessages failed", "error", err, "userID", userID)
		return fmt.Errorf("failed to clear messages for %s: %w", userID, err)
	}
	slog.Debug("SQLiteStore ClearMessages succeeded", "userID", userID)
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	return s.db.Close()
}
