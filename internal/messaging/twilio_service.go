package messaging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ateliergo/atelier/internal/models"
	"github.com/ateliergo/atelier/internal/twiliowhatsapp"
)

// TwilioService implements the Service interface using the Twilio API.
// Inbound messages arrive over the webhook handler rather than a live socket.
type TwilioService struct {
	client   twiliowhatsapp.TwilioWhatsAppSender // Could be real Twilio client or MockClient
	messages chan models.IncomingMessage
	done     chan struct{}
	mu       sync.RWMutex
	stopped  bool
}

// NewTwilioService creates a new TwilioService wrapping the given sender.
func NewTwilioService(client twiliowhatsapp.TwilioWhatsAppSender) *TwilioService {
	return &TwilioService{
		client:   client,
		messages: make(chan models.IncomingMessage, DefaultChannelBufferSize),
		done:     make(chan struct{}),
	}
}

// ValidateAndCanonicalizeRecipient validates and canonicalizes a WhatsApp phone number.
// It removes all non-numeric characters and validates the result has at least 6 digits.
func (s *TwilioService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
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
		slog.Debug("TwilioService canonicalized recipient", "original", recipient, "canonical", canonical)
	}

	return canonical, nil
}

// Start is a no-op for Twilio (inbound traffic arrives via webhook)
func (s *TwilioService) Start(ctx context.Context) error {
	return nil
}

// Stop closes channels and stops the service
func (s *TwilioService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}
	s.stopped = true
	close(s.done)

	go func() {
		time.Sleep(50 * time.Millisecond)
		close(s.messages)
	}()

	return nil
}

// SendMessage sends a message via Twilio.
func (s *TwilioService) SendMessage(ctx context.Context, to string, body string) error {
	s.mu.RLock()
	if s.stopped {
		s.mu.RUnlock()
		return ErrServiceStopped
	}
	s.mu.RUnlock()

	canonicalTo, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		slog.Error("TwilioService SendMessage validation error", "error", err, "to", to)
		return err
	}

	return s.client.SendMessage(ctx, "+"+canonicalTo, body)
}

// SendChoices sends a message with options rendered as a numbered text list,
// since the Twilio Go SDK does not expose WhatsApp interactive buttons.
func (s *TwilioService) SendChoices(ctx context.Context, to string, body string, options []models.Option) error {
	return s.SendMessage(ctx, to, renderChoices(body, options))
}

// Messages returns the channel of inbound user messages.
func (s *TwilioService) Messages() <-chan models.IncomingMessage {
	return s.messages
}

// WebhookHandler handles inbound Twilio webhook requests.
// It parses incoming messages and emits them into the Messages() channel.
// Multi-image submissions share the inbound MessageSid, which doubles as the
// media group id so only the first image in a batch gets analyzed.
func (s *TwilioService) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	slog.Info("Twilio webhook received")

	if err := r.ParseForm(); err != nil {
		slog.Error("Failed to parse Twilio webhook form", "error", err)
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	from := r.FormValue("From")
	body := r.FormValue("Body")
	if from == "" {
		slog.Warn("Twilio webhook missing From field")
		http.Error(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	userID, err := s.ValidateAndCanonicalizeRecipient(from)
	if err != nil {
		slog.Warn("Twilio webhook invalid From field", "from", from, "error", err)
		http.Error(w, "Invalid sender", http.StatusBadRequest)
		return
	}

	msg := models.IncomingMessage{
		UserID: userID,
		Time:   time.Now().Unix(),
	}

	numMedia, _ := strconv.Atoi(r.FormValue("NumMedia"))
	if numMedia > 0 {
		data, err := s.fetchMedia(r.Context(), r.FormValue("MediaUrl0"))
		if err != nil {
			slog.Error("Twilio webhook media fetch failed", "error", err, "from", userID)
			http.Error(w, "Media fetch failed", http.StatusBadGateway)
			return
		}
		msg.Photo = data
		msg.Caption = body
		if numMedia > 1 {
			msg.MediaGroupID = r.FormValue("MessageSid")
		}
	} else {
		if body == "" {
			slog.Warn("Twilio webhook missing Body field", "from", userID)
			http.Error(w, "Missing required fields", http.StatusBadRequest)
			return
		}
		msg.Text = body
	}

	slog.Info("Inbound WhatsApp message from Twilio", "from", userID, "photo", msg.IsPhoto())
	s.safeEmitMessage(msg)

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// fetchMedia downloads an inbound media attachment from the Twilio CDN.
func (s *TwilioService) fetchMedia(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("media URL is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build media request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("media fetch returned status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read media body: %w", err)
	}
	return data, nil
}

// safeEmitMessage safely pushes messages into the messages channel.
func (s *TwilioService) safeEmitMessage(msg models.IncomingMessage) {
	s.mu.RLock()
	stopped := s.stopped
	s.mu.RUnlock()
	if stopped {
		slog.Warn("TwilioService dropping inbound message (service stopped)", "from", msg.UserID)
		return
	}

	select {
	case s.messages <- msg:
		slog.Debug("TwilioService emitted inbound message", "from", msg.UserID)
	case <-time.After(DefaultChannelTimeout):
		slog.Warn("TwilioService messages channel blocked, dropping message", "from", msg.UserID)
	}
}
