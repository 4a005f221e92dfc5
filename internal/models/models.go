// Package models defines the core data structures for Atelier.
//
// It includes the per-user profile record, conversation messages, and the
// inbound/outbound message types shared across modules.
package models

import (
	"errors"
	"time"
)

// Language identifies a dialogue language supported by the assistant.
type Language string

const (
	// LanguageRussian selects Russian prompt and reply text.
	LanguageRussian Language = "ru"
	// LanguageEnglish selects English prompt and reply text.
	LanguageEnglish Language = "en"
)

// Sender identifies which side of the conversation produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// QuestionKey identifies one questionnaire field in the user profile.
type QuestionKey string

const (
	KeyPreferredStyle          QuestionKey = "preferred_style"
	KeyColorPreference         QuestionKey = "color_preference"
	KeyMaterialPreference      QuestionKey = "material_preference"
	KeySpaceType               QuestionKey = "space_type"
	KeyRoomPreference          QuestionKey = "room_preference"
	KeyLayoutStyle             QuestionKey = "layout_style"
	KeyFunctionalityPreference QuestionKey = "functionality_preference"
	KeyLightingPreference      QuestionKey = "lighting_preference"
	KeyStoragePreference       QuestionKey = "storage_preference"
	KeyBudgetRange             QuestionKey = "budget_range"
	KeyTimeline                QuestionKey = "timeline"
	KeyProjectPriority         QuestionKey = "project_priority"
	KeyLifestyle               QuestionKey = "lifestyle"
	KeyFamilyNeeds             QuestionKey = "family_needs"
	KeyPersonalTouch           QuestionKey = "personal_touch"
)

// Protected profile field names that no merge step may ever write.
const (
	FieldUserID    = "user_id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
	FieldLanguage  = "language"
)

// ConfirmationReset tags a pending profile-reset confirmation.
const ConfirmationReset = "reset"

// Validation constants shared across modules.
const (
	// MaxReplyLength defines the maximum outgoing reply length before truncation.
	MaxReplyLength = 3000
	// MaxConversationLength defines the per-user sliding window of stored messages.
	MaxConversationLength = 50
)

// Error variables for better error handling and testability.
var (
	ErrEmptyUserID  = errors.New("user id cannot be empty")
	ErrProtectedKey = errors.New("field is protected metadata")
)

// Profile is the durable per-user record of preferences, flags and survey answers.
// It is a closed record type: every known field is explicit, and anything the AI
// contributes outside the known set lands in Extra so a typo can never shadow a
// real field.
type Profile struct {
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Language Language `json:"language,omitempty"`

	SurveyCompleted bool        `json:"survey_completed"`
	InSurveyMode    bool        `json:"in_survey_mode"`
	SurveyState     QuestionKey `json:"survey_state,omitempty"`

	PendingConfirmation string `json:"pending_confirmation,omitempty"`
	GreetingSent        bool   `json:"greeting_sent,omitempty"`

	Answers map[QuestionKey]string `json:"answers,omitempty"`
	Extra   map[string]string      `json:"extra,omitempty"`

	// MediaGroupsSeen records already-processed multi-image submission ids so a
	// group is analyzed at most once.
	MediaGroupsSeen []string `json:"media_groups_seen,omitempty"`
}

// NewProfile creates a default profile for a user, timestamps set to now.
func NewProfile(userID string) Profile {
	now := time.Now()
	return Profile{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy of the profile.
func (p Profile) Clone() Profile {
	out := p
	if p.Answers != nil {
		out.Answers = make(map[QuestionKey]string, len(p.Answers))
		for k, v := range p.Answers {
			out.Answers[k] = v
		}
	}
	if p.Extra != nil {
		out.Extra = make(map[string]string, len(p.Extra))
		for k, v := range p.Extra {
			out.Extra[k] = v
		}
	}
	if p.MediaGroupsSeen != nil {
		out.MediaGroupsSeen = append([]string(nil), p.MediaGroupsSeen...)
	}
	return out
}

// HasData reports whether the profile carries anything worth resetting.
func (p Profile) HasData() bool {
	return len(p.Answers) > 0 || len(p.Extra) > 0 || p.SurveyCompleted || p.InSurveyMode
}

// IsQuestionKey reports whether name is one of the questionnaire field names.
func IsQuestionKey(name string) bool {
	switch QuestionKey(name) {
	case KeyPreferredStyle, KeyColorPreference, KeyMaterialPreference, KeySpaceType,
		KeyRoomPreference, KeyLayoutStyle, KeyFunctionalityPreference, KeyLightingPreference,
		KeyStoragePreference, KeyBudgetRange, KeyTimeline, KeyProjectPriority,
		KeyLifestyle, KeyFamilyNeeds, KeyPersonalTouch:
		return true
	}
	return false
}

// IsProtectedField reports whether name is metadata that merges must never touch.
func IsProtectedField(name string) bool {
	return name == FieldUserID || name == FieldCreatedAt || name == FieldUpdatedAt
}

// Field returns the value of a named string field, looking through the known
// scalar fields, the questionnaire answers and the extra map in that order.
func (p Profile) Field(name string) (string, bool) {
	switch name {
	case FieldUserID:
		return p.UserID, true
	case FieldLanguage:
		if p.Language == "" {
			return "", false
		}
		return string(p.Language), true
	}
	if IsQuestionKey(name) {
		v, ok := p.Answers[QuestionKey(name)]
		return v, ok
	}
	v, ok := p.Extra[name]
	return v, ok
}

// SetField writes a named string field. Protected metadata is rejected; known
// questionnaire keys go to Answers; everything else goes to Extra.
func (p *Profile) SetField(name, value string) error {
	if IsProtectedField(name) {
		return ErrProtectedKey
	}
	switch name {
	case FieldLanguage:
		p.Language = Language(value)
		return nil
	}
	if IsQuestionKey(name) {
		if p.Answers == nil {
			p.Answers = make(map[QuestionKey]string)
		}
		p.Answers[QuestionKey(name)] = value
		return nil
	}
	if p.Extra == nil {
		p.Extra = make(map[string]string)
	}
	p.Extra[name] = value
	return nil
}

// Fields flattens the profile's string-valued fields into a snapshot map used
// by the AI field-merge step. Protected metadata is included so a diff against
// it can prove the merge never touched it.
func (p Profile) Fields() map[string]string {
	out := map[string]string{
		FieldUserID:    p.UserID,
		FieldCreatedAt: p.CreatedAt.Format(time.RFC3339Nano),
		FieldUpdatedAt: p.UpdatedAt.Format(time.RFC3339Nano),
	}
	if p.Language != "" {
		out[FieldLanguage] = string(p.Language)
	}
	for k, v := range p.Answers {
		out[string(k)] = v
	}
	for k, v := range p.Extra {
		out[k] = v
	}
	return out
}

// MediaGroupSeen reports whether the given media group id was already processed.
func (p Profile) MediaGroupSeen(groupID string) bool {
	for _, id := range p.MediaGroupsSeen {
		if id == groupID {
			return true
		}
	}
	return false
}

// ConversationMessage is one exchanged message in the per-user bounded log.
type ConversationMessage struct {
	Text      string    `json:"message"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// IncomingMessage is one inbound unit of input from the chat transport.
type IncomingMessage struct {
	// UserID is the stable per-user identifier assigned by the transport.
	UserID string
	// Text carries the message text; empty for photo-only messages.
	Text string
	// Photo carries raw image bytes when the user sent an image.
	Photo []byte
	// Caption carries the optional text attached to a photo.
	Caption string
	// MediaGroupID groups multiple images submitted together; empty when the
	// transport has no such concept or the message stands alone.
	MediaGroupID string
	// Callback carries a discrete-choice selection (first survey question only).
	Callback string
	// Time is the transport-reported unix timestamp.
	Time int64
}

// IsPhoto reports whether the message carries an image payload.
func (m IncomingMessage) IsPhoto() bool {
	return len(m.Photo) > 0
}

// Option is one discrete choice offered alongside a reply.
type Option struct {
	Label string `json:"label"`
	Data  string `json:"data"`
}

// Reply is one outbound message, optionally paired with discrete choices.
type Reply struct {
	Text    string   `json:"text"`
	Options []Option `json:"options,omitempty"`
}
