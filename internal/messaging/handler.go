package messaging

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ateliergo/atelier/internal/flow"
	"github.com/ateliergo/atelier/internal/i18n"
	"github.com/ateliergo/atelier/internal/models"
	"github.com/google/uuid"
)

// MessageRouter routes one inbound message to zero or more replies.
// It is implemented by flow.Router.
type MessageRouter interface {
	Handle(ctx context.Context, msg models.IncomingMessage) ([]models.Reply, error)
}

// Handler drains the transport's inbound channel and drives one dialogue turn
// per message. Turns run sequentially so per-user state transitions stay in
// arrival order.
type Handler struct {
	service Service
	router  MessageRouter
}

// NewHandler creates a Handler over the given transport and router.
func NewHandler(service Service, router MessageRouter) *Handler {
	return &Handler{service: service, router: router}
}

// Run processes inbound messages until the context is cancelled or the
// transport's channel closes.
func (h *Handler) Run(ctx context.Context) error {
	slog.Info("Handler Run starting")
	for {
		select {
		case <-ctx.Done():
			slog.Info("Handler Run stopping due to context cancellation")
			return ctx.Err()
		case msg, ok := <-h.service.Messages():
			if !ok {
				slog.Info("Handler Run stopping, messages channel closed")
				return nil
			}
			h.handleTurn(ctx, msg)
		}
	}
}

// handleTurn routes a single message and delivers the resulting replies.
// Routing failures degrade to a localized apology so the user is never met
// with silence.
func (h *Handler) handleTurn(ctx context.Context, msg models.IncomingMessage) {
	turnID := uuid.NewString()
	logger := slog.With("turn_id", turnID, "user_id", msg.UserID)
	logger.Debug("Handler turn started", "photo", msg.IsPhoto(), "text_length", len(msg.Text))

	replies, err := h.router.Handle(ctx, msg)
	if err != nil {
		// Invalid input means there is no addressable sender to apologize
		// to, so the turn is just dropped.
		if errors.Is(err, flow.ErrInvalidInput) {
			logger.Warn("Handler dropping unroutable message", "error", err)
			return
		}
		logger.Error("Handler turn routing failed", "error", err)
		lang := i18n.Detect(turnText(msg))
		apologyKey := "error_processing"
		if msg.IsPhoto() {
			apologyKey = "error_photo"
		}
		if sendErr := h.service.SendMessage(ctx, msg.UserID, i18n.T(apologyKey, lang)); sendErr != nil {
			logger.Error("Handler failed to deliver apology", "error", sendErr)
		}
		return
	}

	for _, reply := range replies {
		var sendErr error
		if len(reply.Options) > 0 {
			sendErr = h.service.SendChoices(ctx, msg.UserID, reply.Text, reply.Options)
		} else {
			sendErr = h.service.SendMessage(ctx, msg.UserID, reply.Text)
		}
		if sendErr != nil {
			logger.Error("Handler reply delivery failed", "error", sendErr)
			return
		}
	}

	logger.Debug("Handler turn completed", "replies", len(replies))
}

// turnText picks whichever text the message carries for language detection.
func turnText(msg models.IncomingMessage) string {
	if msg.Text != "" {
		return msg.Text
	}
	return msg.Caption
}
