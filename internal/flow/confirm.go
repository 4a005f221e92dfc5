package flow

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ateliergo/atelier/internal/conversation"
	"github.com/ateliergo/atelier/internal/i18n"
	"github.com/ateliergo/atelier/internal/models"
	"github.com/ateliergo/atelier/internal/profile"
)

// Confirmation vocabularies. The assistant accepts either language's word
// regardless of the dialogue language.
var (
	yesAnswers = map[string]bool{"да": true, "yes": true, "y": true, "д": true}
	noAnswers  = map[string]bool{"нет": true, "no": true, "n": true, "н": true}
)

// ConfirmProtocol runs the destructive-reset confirmation exchange. A reset
// never happens in one step: the first request arms a pending confirmation on
// the profile, and only an explicit yes actually destroys data.
type ConfirmProtocol struct {
	profiles *profile.Manager
	log      *conversation.Log
}

// NewConfirmProtocol creates the reset confirmation handler.
func NewConfirmProtocol(profiles *profile.Manager, log *conversation.Log) *ConfirmProtocol {
	return &ConfirmProtocol{profiles: profiles, log: log}
}

// RequestReset handles the reset command. A profile with nothing worth
// deleting is refused outright without arming the confirmation.
func (c *ConfirmProtocol) RequestReset(userID string, lang models.Language) ([]models.Reply, error) {
	p, err := c.profiles.Get(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if !p.HasData() {
		reply := models.Reply{Text: i18n.T("nothing_to_reset", lang)}
		if err := c.log.Append(userID, reply.Text, models.SenderBot); err != nil {
			return nil, err
		}
		return []models.Reply{reply}, nil
	}

	err = c.profiles.Update(userID, func(p *models.Profile) {
		p.PendingConfirmation = models.ConfirmationReset
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	slog.Info("ConfirmProtocol.RequestReset confirmation armed", "userID", userID)

	reply := models.Reply{Text: i18n.T("reset_prompt", lang)}
	if err := c.log.Append(userID, reply.Text, models.SenderBot); err != nil {
		return nil, err
	}
	return []models.Reply{reply}, nil
}

// Reprompt repeats the armed confirmation question without consuming an
// answer. Used when a non-text turn arrives while a reset is pending; the
// confirmation stays armed.
func (c *ConfirmProtocol) Reprompt(userID string, lang models.Language) ([]models.Reply, error) {
	reply := models.Reply{Text: i18n.T("confirm_reprompt", lang)}
	if err := c.log.Append(userID, reply.Text, models.SenderBot); err != nil {
		return nil, err
	}
	return []models.Reply{reply}, nil
}

// Handle consumes the user's answer to an armed reset confirmation. Yes
// destroys the profile and history; no disarms and changes nothing else; any
// other text re-prompts and the confirmation stays armed.
func (c *ConfirmProtocol) Handle(userID, input string, lang models.Language) ([]models.Reply, error) {
	if err := c.log.Append(userID, input, models.SenderUser); err != nil {
		return nil, err
	}
	answer := strings.ToLower(strings.TrimSpace(input))

	switch {
	case yesAnswers[answer]:
		if err := c.profiles.Reset(userID); err != nil {
			slog.Error("ConfirmProtocol.Handle reset failed", "error", err, "userID", userID)
			reply := models.Reply{Text: i18n.T("reset_failed", lang)}
			if logErr := c.log.Append(userID, reply.Text, models.SenderBot); logErr != nil {
				return nil, logErr
			}
			return []models.Reply{reply}, nil
		}
		slog.Info("ConfirmProtocol.Handle reset confirmed", "userID", userID)
		// The history was just wiped with the profile; the completion notice
		// starts the fresh log.
		reply := models.Reply{Text: i18n.T("reset_done", lang)}
		if err := c.log.Append(userID, reply.Text, models.SenderBot); err != nil {
			return nil, err
		}
		return []models.Reply{reply}, nil

	case noAnswers[answer]:
		err := c.profiles.Update(userID, func(p *models.Profile) {
			p.PendingConfirmation = ""
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		slog.Info("ConfirmProtocol.Handle reset cancelled", "userID", userID)
		reply := models.Reply{Text: i18n.T("reset_cancelled", lang)}
		if err := c.log.Append(userID, reply.Text, models.SenderBot); err != nil {
			return nil, err
		}
		return []models.Reply{reply}, nil

	default:
		// Unrecognized answer: the confirmation stays armed.
		reply := models.Reply{Text: i18n.T("confirm_reprompt", lang)}
		if err := c.log.Append(userID, reply.Text, models.SenderBot); err != nil {
			return nil, err
		}
		return []models.Reply{reply}, nil
	}
}
