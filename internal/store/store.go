// Package store provides storage backends for Atelier.
//
// Two independent record sets are persisted per user: the profile and the
// bounded conversation log. Backends exist for JSON files, SQLite and
// PostgreSQL, plus an in-memory store for tests.
package store

import (
	"strings"

	"github.com/ateliergo/atelier/internal/models"
)

// Store is the persistence contract shared by all backends.
//
// GetProfile returns (nil, nil) when no profile exists; materializing a
// default record is the profile manager's job, not the store's. AddMessage
// enforces the models.MaxConversationLength sliding window on every append.
type Store interface {
	GetProfile(userID string) (*models.Profile, error)
	SaveProfile(p models.Profile) error

	AddMessage(userID string, m models.ConversationMessage) error
	GetMessages(userID string, limit int) ([]models.ConversationMessage, error)
	ClearMessages(userID string) error

	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	// DSN is the backend connection string: a file path or directory for the
	// file and SQLite backends, a postgres:// URL for PostgreSQL.
	DSN string
}

// Option defines a configuration option for a store backend.
type Option func(*Opts)

// WithDSN sets the backend connection string.
func WithDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// DetectDSNType inspects a DSN and reports the backend type it selects:
// "postgres", "sqlite" or "file".
func DetectDSNType(dsn string) string {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres"
	case strings.Contains(dsn, "host="), strings.Contains(dsn, "dbname="):
		return "postgres"
	case strings.HasSuffix(dsn, ".db"), strings.HasSuffix(dsn, ".sqlite"), strings.HasSuffix(dsn, ".sqlite3"):
		return "sqlite"
	default:
		return "file"
	}
}
