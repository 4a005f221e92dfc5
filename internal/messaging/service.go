// Package messaging abstracts the chat transport behind a pluggable Service
// interface and drives the per-turn dialogue loop over it.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ateliergo/atelier/internal/models"
)

// Constants shared across Service implementations.
const (
	// DefaultChannelBufferSize defines the default buffer size for inbound message channels
	DefaultChannelBufferSize = 100
	// DefaultChannelTimeout defines the default timeout for non-blocking channel operations
	DefaultChannelTimeout = 1 * time.Second
)

// ErrServiceStopped is returned when an operation is attempted on a stopped service.
var ErrServiceStopped = errors.New("messaging service is stopped")

// phoneNumberRegex strips everything that is not a digit from a recipient.
var phoneNumberRegex = regexp.MustCompile(`[^0-9]`)

// Service defines a pluggable message delivery abstraction.
// It supports sending messages and provides a channel of inbound messages.
type Service interface {
	// ValidateAndCanonicalizeRecipient validates and canonicalizes a recipient identifier.
	// Returns the canonicalized recipient and an error if validation fails.
	// This allows each service to implement its own recipient validation rules.
	ValidateAndCanonicalizeRecipient(recipient string) (string, error)

	// SendMessage sends a plain text message to a recipient.
	SendMessage(ctx context.Context, to string, body string) error

	// SendChoices sends a message together with a list of discrete options.
	// Transports without native button support render the options as text.
	SendChoices(ctx context.Context, to string, body string, options []models.Option) error

	// Start begins any background processing (e.g., polling for events).
	Start(ctx context.Context) error

	// Stop stops background processing and cleans up resources.
	Stop() error

	// Messages returns a channel of inbound user messages.
	Messages() <-chan models.IncomingMessage
}

// renderChoices appends a numbered option list to a message body. Numbering
// matters: users on plain-text transports answer with the option number.
func renderChoices(body string, options []models.Option) string {
	if len(options) == 0 {
		return body
	}
	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n")
	for i, opt := range options {
		fmt.Fprintf(&b, "\n%d. %s", i+1, opt.Label)
	}
	return b.String()
}
