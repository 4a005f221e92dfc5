package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	_ "embed"

	"github.com/ateliergo/atelier/internal/models"
	_ "github.com/lib/pq"
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists profiles and conversation logs in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL store with the given DSN.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("PostgresStore failed to open connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("PostgresStore ping failed", "error", err)
		return nil, err
	}
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("PostgresStore failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("PostgresStore opened and migrated")

	return &PostgresStore{db: db}, nil
}

// GetProfile returns the stored profile or (nil, nil) when absent.
func (s *PostgresStore) GetProfile(userID string) (*models.Profile, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM profiles WHERE user_id = $1`, userID).Scan(&data)
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore GetProfile not found", "userID", userID)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetProfile failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to query profile for %s: %w", userID, err)
	}

	var p models.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		slog.Error("PostgresStore profile row corrupt, treating as absent", "error", err, "userID", userID)
		return nil, nil
	}
	return &p, nil
}

// SaveProfile stores or replaces the whole profile record.
func (s *PostgresStore) SaveProfile(p models.Profile) error {
	if p.UserID == "" {
		return models.ErrEmptyUserID
	}
	data, err := json.Marshal(p)
	if err != nil {
		slog.Error("PostgresStore SaveProfile marshal failed", "error", err, "userID", p.UserID)
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO profiles (user_id, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at`,
		p.UserID, data, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		slog.Error("PostgresStore SaveProfile failed", "error", err, "userID", p.UserID)
		return fmt.Errorf("failed to save profile for %s: %w", p.UserID, err)
	}
	slog.Debug("PostgresStore SaveProfile succeeded", "userID", p.UserID)
	return nil
}

// AddMessage appends a message and trims the log to the sliding window cap.
func (s *PostgresStore) AddMessage(userID string, m models.ConversationMessage) error {
	_, err := s.db.Exec(`INSERT INTO conversation_messages (user_id, sender, body, timestamp) VALUES ($1, $2, $3, $4)`,
		userID, string(m.Sender), m.Text, m.Timestamp)
	if err != nil {
		slog.Error("PostgresStore AddMessage failed", "error", err, "userID", userID)
		return fmt.Errorf("failed to insert message for %s: %w", userID, err)
	}

	_, err = s.db.Exec(`
		DELETE FROM conversation_messages
		WHERE user_id = $1 AND id NOT IN (
			SELECT id FROM conversation_messages
			WHERE user_id = $1 ORDER BY id DESC LIMIT $2
		)`, userID, models.MaxConversationLength)
	if err != nil {
		slog.Error("PostgresStore AddMessage trim failed", "error", err, "userID", userID)
		return fmt.Errorf("failed to trim messages for %s: %w", userID, err)
	}
	return nil
}

// GetMessages returns up to limit most recent messages, oldest first.
func (s *PostgresStore) GetMessages(userID string, limit int) ([]models.ConversationMessage, error) {
	if limit <= 0 {
		limit = models.MaxConversationLength
	}
	rows, err := s.db.Query(`
		SELECT sender, body, timestamp FROM (
			SELECT id, sender, body, timestamp FROM conversation_messages
			WHERE user_id = $1 ORDER BY id DESC LIMIT $2
		) recent ORDER BY id ASC`, userID, limit)
	if err != nil {
		slog.Error("PostgresStore GetMessages query failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to query messages for %s: %w", userID, err)
	}
	defer rows.Close()

	var messages []models.ConversationMessage
	for rows.Next() {
		var m models.ConversationMessage
		var sender string
		if err := rows.Scan(&sender, &m.Text, &m.Timestamp); err != nil {
			slog.Error("PostgresStore GetMessages scan failed", "error", err, "userID", userID)
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		m.Sender = models.Sender(sender)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		slog.Error("PostgresStore GetMessages rows iteration failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to iterate message rows: %w", err)
	}
	return messages, nil
}

// ClearMessages drops the whole conversation log for a user.
func (s *PostgresStore) ClearMessages(userID string) error {
	_, err := s.db.Exec(`DELETE FROM conversation_messages WHERE user_id = $1`, userID)
	if err != nil {
		slog.Error("PostgresStore ClearMessages failed", "error", err, "userID", userID)
		return fmt.Errorf("failed to clear messages for %s: %w", userID, err)
	}
	slog.Debug("PostgresStore ClearMessages succeeded", "userID", userID)
	return nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing PostgreSQL database connection")
	return s.db.Close()
}
