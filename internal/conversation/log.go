// Package conversation maintains the bounded per-user dialogue history.
//
// Every user and assistant turn is appended to the store, which enforces the
// sliding window; callers read back a recent slice to build AI context.
package conversation

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ateliergo/atelier/internal/models"
	"github.com/ateliergo/atelier/internal/store"
)

// ContextWindow is how many recent messages are handed to the AI as context.
const ContextWindow = 5

// Log records and retrieves conversation history through a store backend.
type Log struct {
	store store.Store
}

// NewLog creates a conversation log over the given store.
func NewLog(st store.Store) *Log {
	return &Log{store: st}
}

// Append records one turn with the current timestamp. Empty text is recorded
// as-is; the router decides upstream what is worth logging.
func (l *Log) Append(userID, text string, sender models.Sender) error {
	m := models.ConversationMessage{
		Text:      text,
		Sender:    sender,
		Timestamp: time.Now(),
	}
	if err := l.store.AddMessage(userID, m); err != nil {
		slog.Error("Log.Append failed", "error", err, "userID", userID, "sender", sender)
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// Recent returns up to limit most recent messages, oldest first. Asking for
// more than is stored returns everything without error.
func (l *Log) Recent(userID string, limit int) ([]models.ConversationMessage, error) {
	messages, err := l.store.GetMessages(userID, limit)
	if err != nil {
		slog.Error("Log.Recent failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}
	return messages, nil
}

// Clear drops the whole history for a user.
func (l *Log) Clear(userID string) error {
	if err := l.store.ClearMessages(userID); err != nil {
		slog.Error("Log.Clear failed", "error", err, "userID", userID)
		return fmt.Errorf("failed to clear messages: %w", err)
	}
	return nil
}
