package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ateliergo/atelier/internal/models"
	"github.com/ateliergo/atelier/internal/whatsapp"
	"go.mau.fi/whatsmeow/types/events"
)

// WhatsAppService implements Service using the Whatsmeow-based whatsapp client.
type WhatsAppService struct {
	client   whatsapp.WhatsAppSender
	waClient *whatsapp.Client // Access to underlying client for event handling
	messages chan models.IncomingMessage
	done     chan struct{}

	mu      sync.RWMutex
	stopped bool
}

// NewWhatsAppService creates a new WhatsAppService wrapping the given WhatsAppSender.
func NewWhatsAppService(client whatsapp.WhatsAppSender) *WhatsAppService {
	service := &WhatsAppService{
		client:   client,
		messages: make(chan models.IncomingMessage, DefaultChannelBufferSize),
		done:     make(chan struct{}),
	}

	// If the client is a full Client (not just an interface), store it for event handling
	if waClient, ok := client.(*whatsapp.Client); ok {
		service.waClient = waClient
		slog.Debug("WhatsAppService created with full client for event handling")
	} else {
		slog.Debug("WhatsAppService created with interface client (likely mock)")
	}

	return service
}

// ValidateAndCanonicalizeRecipient validates and canonicalizes a WhatsApp phone number.
// It removes all non-numeric characters and validates the result has at least 6 digits.
func (s *WhatsAppService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	if recipient == "" {
		return "", fmt.Errorf("recipient cannot be empty")
	}

	canonical := phoneNumberRegex.ReplaceAllString(recipient, "")
	if canonical == "" {
		return "", fmt.Errorf("invalid phone number: no digits found in recipient %q", recipient)
	}
	if len(canonical) < 6 {
		return "", fmt.Errorf("invalid phone number: %q is too short (minimum 6 digits required)", canonical)
	}

	if canonical != recipient {
		slog.Debug("WhatsAppService canonicalized recipient", "original", recipient, "canonical", canonical)
	}

	return canonical, nil
}

// Start begins background processing (e.g., event polling).
func (s *WhatsAppService) Start(ctx context.Context) error {
	slog.Debug("WhatsAppService Start invoked")

	if s.waClient != nil {
		slog.Debug("WhatsAppService starting event handler")
		go s.handleEvents(ctx)
		slog.Debug("WhatsAppService event handler started")
	} else {
		slog.Debug("WhatsAppService no full client available, skipping event handling (likely mock)")
	}

	return nil
}

// Stop stops background processing. Emits in flight hold the read lock, so
// the channels are only closed once no event callback is mid-send.
func (s *WhatsAppService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}
	s.stopped = true
	close(s.done)
	close(s.messages)
	slog.Info("WhatsAppService stopped and channels closed")
	return nil
}

// SendMessage sends a plain text message to the given recipient.
func (s *WhatsAppService) SendMessage(ctx context.Context, to string, body string) error {
	canonicalTo, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		slog.Error("WhatsAppService SendMessage validation error", "error", err, "to", to)
		return err
	}

	slog.Debug("WhatsAppService SendMessage invoked", "to", canonicalTo, "body_length", len(body))
	if err := s.client.SendMessage(ctx, canonicalTo, body); err != nil {
		slog.Error("WhatsAppService SendMessage error", "error", err, "to", canonicalTo)
		return err
	}
	slog.Info("WhatsAppService message sent", "to", canonicalTo)
	return nil
}

// SendChoices sends a message with options rendered as a numbered text list.
// WhatsApp interactive buttons are not available through whatsmeow for this
// use case, so the options ride along in the message body.
func (s *WhatsAppService) SendChoices(ctx context.Context, to string, body string, options []models.Option) error {
	return s.SendMessage(ctx, to, renderChoices(body, options))
}

// Messages returns a channel of inbound user messages.
func (s *WhatsAppService) Messages() <-chan models.IncomingMessage {
	return s.messages
}

// handleEvents processes WhatsApp events and feeds them into the messages channel
func (s *WhatsAppService) handleEvents(ctx context.Context) {
	slog.Debug("WhatsAppService handleEvents starting")

	if s.waClient == nil || s.waClient.GetClient() == nil {
		slog.Error("WhatsAppService handleEvents: no client available")
		return
	}

	s.waClient.GetClient().AddEventHandler(func(evt interface{}) {
		switch v := evt.(type) {
		case *events.Message:
			s.handleIncomingMessage(ctx, v)
		default:
			// Ignore other event types
		}
	})

	slog.Debug("WhatsAppService event handler registered")

	// Keep handler running until context is cancelled
	<-ctx.Done()
	slog.Debug("WhatsAppService handleEvents stopping due to context cancellation")
}

// handleIncomingMessage converts a WhatsApp event into an IncomingMessage.
// Text and image messages are forwarded; everything else is skipped.
func (s *WhatsAppService) handleIncomingMessage(ctx context.Context, evt *events.Message) {
	if evt.Message == nil {
		return
	}

	msg := models.IncomingMessage{
		UserID: evt.Info.Sender.User,
		Time:   evt.Info.Timestamp.Unix(),
	}

	switch {
	case evt.Message.Conversation != nil:
		msg.Text = *evt.Message.Conversation
	case evt.Message.ExtendedTextMessage != nil && evt.Message.ExtendedTextMessage.Text != nil:
		msg.Text = *evt.Message.ExtendedTextMessage.Text
	case evt.Message.ImageMessage != nil:
		img := evt.Message.ImageMessage
		data, err := s.client.DownloadImage(ctx, img)
		if err != nil {
			slog.Error("WhatsAppService image download failed", "error", err, "from", msg.UserID)
			return
		}
		msg.Photo = data
		msg.Caption = img.GetCaption()
	default:
		// Skip non-text, non-image messages (audio, documents, etc.)
		slog.Debug("WhatsAppService ignoring unsupported message", "from", evt.Info.Sender.String())
		return
	}

	slog.Debug("WhatsAppService processing incoming message",
		"from", msg.UserID, "text_length", len(msg.Text), "photo", msg.IsPhoto())

	s.safeEmitMessage(msg)
}

// safeEmitMessage pushes an inbound message into the messages channel. The
// read lock is held across the send so Stop cannot close the channel under a
// late event callback.
func (s *WhatsAppService) safeEmitMessage(msg models.IncomingMessage) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped {
		slog.Warn("WhatsAppService dropping inbound message (service stopped)", "from", msg.UserID)
		return
	}

	select {
	case s.messages <- msg:
		slog.Info("WhatsAppService incoming message forwarded", "from", msg.UserID)
	case <-time.After(DefaultChannelTimeout):
		slog.Warn("WhatsAppService messages channel blocked, dropping message", "from", msg.UserID, "timeout", DefaultChannelTimeout)
	}
}
