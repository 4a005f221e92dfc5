// Package flow routes inbound messages to the right handler: the survey
// state machine, the destructive-reset confirmation, slash commands, photo
// analysis, product search, or the free AI dialogue.
package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ateliergo/atelier/internal/conversation"
	"github.com/ateliergo/atelier/internal/genai"
	"github.com/ateliergo/atelier/internal/i18n"
	"github.com/ateliergo/atelier/internal/models"
	"github.com/ateliergo/atelier/internal/products"
	"github.com/ateliergo/atelier/internal/profile"
	"github.com/ateliergo/atelier/internal/survey"
)

// Router dispatches each inbound message exactly once, by strict priority:
// survey mode first, then an armed confirmation, then commands, photos,
// specific product questions and finally the AI dialogue.
type Router struct {
	profiles  *profile.Manager
	log       *conversation.Log
	survey    *survey.Engine
	confirm   *ConfirmProtocol
	assistant *Assistant
}

// NewRouter wires the dialogue router from its collaborators.
func NewRouter(profiles *profile.Manager, log *conversation.Log, ai genai.ClientInterface) *Router {
	return &Router{
		profiles:  profiles,
		log:       log,
		survey:    survey.NewEngine(profiles, log),
		confirm:   NewConfirmProtocol(profiles, log),
		assistant: NewAssistant(profiles, log, ai),
	}
}

// Handle processes one inbound message and returns the replies to send.
// A nil reply slice with nil error means the message was deliberately
// ignored. Errors escaping Handle are classified: input the router cannot
// act on matches ErrInvalidInput, shutdown-interrupted AI calls match
// ErrCollaborator, and everything else is a persistence failure wrapped in
// ErrStorage.
func (r *Router) Handle(ctx context.Context, msg models.IncomingMessage) ([]models.Reply, error) {
	replies, err := r.route(ctx, msg)
	if err != nil && !errors.Is(err, ErrInvalidInput) && !errors.Is(err, ErrCollaborator) && !errors.Is(err, ErrStorage) {
		err = fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return replies, err
}

func (r *Router) route(ctx context.Context, msg models.IncomingMessage) ([]models.Reply, error) {
	if msg.UserID == "" {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, models.ErrEmptyUserID)
	}

	p, err := r.profiles.Get(msg.UserID)
	if err != nil {
		return nil, err
	}

	input := strings.TrimSpace(msg.Text)
	if msg.Callback != "" {
		input = strings.TrimSpace(msg.Callback)
	}

	// Photos bypass text routing but are silently dropped mid-survey, so the
	// questionnaire cannot be derailed. An armed reset confirmation also
	// outranks analysis: the photo is not an answer, so the question is
	// repeated and the confirmation stays armed.
	if msg.IsPhoto() {
		if p.InSurveyMode {
			slog.Debug("Router.Handle photo ignored during survey", "userID", msg.UserID)
			return nil, nil
		}
		if p.PendingConfirmation == models.ConfirmationReset {
			return r.confirm.Reprompt(msg.UserID, language(p, msg.Caption))
		}
		return r.assistant.HandlePhoto(ctx, msg)
	}

	if input == "" {
		return nil, nil
	}

	if p.InSurveyMode {
		return r.survey.HandleAnswer(msg.UserID, input)
	}

	if p.PendingConfirmation == models.ConfirmationReset {
		return r.confirm.Handle(msg.UserID, input, language(p, input))
	}

	if cmd := commandName(input); cmd != "" {
		return r.handleCommand(msg.UserID, cmd, p, input)
	}

	// Bare survey trigger words, as promised by the nudge text.
	switch strings.ToLower(input) {
	case "тест":
		return r.survey.Start(msg.UserID, models.LanguageRussian)
	case "survey":
		return r.survey.Start(msg.UserID, models.LanguageEnglish)
	}

	// A specific product question is answered with marketplace links without
	// an AI round trip.
	lang := i18n.Detect(input)
	if q := products.Detect(input, lang); q != nil && q.Specific {
		slog.Info("Router.Handle product query", "userID", msg.UserID, "category", q.Category, "product", q.Product)
		response := products.FormatResponse(q, products.Links(q))
		if err := r.log.Append(msg.UserID, input, models.SenderUser); err != nil {
			return nil, err
		}
		if err := r.log.Append(msg.UserID, response, models.SenderBot); err != nil {
			return nil, err
		}
		return []models.Reply{{Text: response}}, nil
	}

	return r.assistant.HandleText(ctx, msg.UserID, input)
}

func (r *Router) handleCommand(userID, cmd string, p models.Profile, input string) ([]models.Reply, error) {
	lang := language(p, input)
	switch cmd {
	case "start":
		reply := models.Reply{Text: welcomeText(p, lang)}
		if err := r.log.Append(userID, reply.Text, models.SenderBot); err != nil {
			return nil, err
		}
		if err := r.profiles.Update(userID, func(p *models.Profile) {
			p.GreetingSent = true
		}); err != nil {
			return nil, err
		}
		return []models.Reply{reply}, nil
	case "help":
		return []models.Reply{{Text: helpText(lang)}}, nil
	case "status":
		return []models.Reply{{Text: statusText(p, lang)}}, nil
	case "restart":
		return r.confirm.RequestReset(userID, lang)
	case "test":
		return r.survey.Start(userID, models.LanguageRussian)
	case "survey":
		return r.survey.Start(userID, models.LanguageEnglish)
	default:
		slog.Debug("Router.handleCommand unknown command", "userID", userID, "command", cmd)
		return []models.Reply{{Text: helpText(lang)}}, nil
	}
}

// language picks the dialogue language: the profile's pinned language when
// set, otherwise detected from the current input.
func language(p models.Profile, input string) models.Language {
	if p.Language != "" {
		return p.Language
	}
	return i18n.Detect(input)
}
