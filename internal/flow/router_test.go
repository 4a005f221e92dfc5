package flow

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"reflect"
	"strings"
	"testing"

	"github.com/ateliergo/atelier/internal/conversation"
	"github.com/ateliergo/atelier/internal/models"
	"github.com/ateliergo/atelier/internal/profile"
	"github.com/ateliergo/atelier/internal/store"
	"github.com/ateliergo/atelier/internal/survey"
)

// mockAI implements genai.ClientInterface for testing.
type mockAI struct {
	textResponse   string
	textErr        error
	visionResponse string
	visionErr      error
	textCalls      int
	visionCalls    int
	lastUserMsg    string
}

func (m *mockAI) CompleteText(ctx context.Context, systemPrompt string, history []models.ConversationMessage, userMessage string) (string, error) {
	m.textCalls++
	m.lastUserMsg = userMessage
	return m.textResponse, m.textErr
}

func (m *mockAI) CompleteVision(ctx context.Context, systemPrompt string, history []models.ConversationMessage, promptText string, imageData []byte) (string, error) {
	m.visionCalls++
	return m.visionResponse, m.visionErr
}

type fixture struct {
	router   *Router
	profiles *profile.Manager
	log      *conversation.Log
	ai       *mockAI
	st       store.Store
}

func newFixture() *fixture {
	st := store.NewMemoryStore()
	profiles := profile.NewManager(st)
	log := conversation.NewLog(st)
	ai := &mockAI{textResponse: "ai answer", visionResponse: "vision answer"}
	return &fixture{
		router:   NewRouter(profiles, log, ai),
		profiles: profiles,
		log:      log,
		ai:       ai,
		st:       st,
	}
}

func testPhoto(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 3, 3))); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func handle(t *testing.T, f *fixture, msg models.IncomingMessage) []models.Reply {
	t.Helper()
	replies, err := f.router.Handle(context.Background(), msg)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	return replies
}

func TestBlankMessageIgnored(t *testing.T) {
	f := newFixture()
	replies := handle(t, f, models.IncomingMessage{UserID: "u1", Text: "   "})
	if replies != nil {
		t.Errorf("blank message produced replies: %+v", replies)
	}
	if f.ai.textCalls != 0 {
		t.Error("blank message reached the AI")
	}
}

func TestEmptyUserIDRejected(t *testing.T) {
	f := newFixture()
	_, err := f.router.Handle(context.Background(), models.IncomingMessage{Text: "hi"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if errors.Is(err, ErrStorage) {
		t.Errorf("invalid input misclassified as storage failure: %v", err)
	}
}

func TestSurveyModeTakesTextPriority(t *testing.T) {
	f := newFixture()
	handle(t, f, models.IncomingMessage{UserID: "u1", Text: "/test"})

	// While surveying, even a product-looking question is a survey answer.
	handle(t, f, models.IncomingMessage{UserID: "u1", Text: "modern"})
	handle(t, f, models.IncomingMessage{UserID: "u1", Text: "где купить диван?"})

	p, err := f.profiles.Get("u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Answers[models.KeyColorPreference] != "где купить диван?" {
		t.Errorf("survey answer not recorded verbatim: %q", p.Answers[models.KeyColorPreference])
	}
	if f.ai.textCalls != 0 {
		t.Error("survey answers must not reach the AI")
	}
}

func TestSurveyCallbackRouted(t *testing.T) {
	f := newFixture()
	handle(t, f, models.IncomingMessage{UserID: "u1", Text: "/test"})
	handle(t, f, models.IncomingMessage{UserID: "u1", Callback: "style_classic"})

	p, err := f.profiles.Get("u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Answers[models.KeyPreferredStyle] != "classic" {
		t.Errorf("callback choice not recorded: %q", p.Answers[models.KeyPreferredStyle])
	}
}

func TestPhotoIgnoredDuringSurvey(t *testing.T) {
	f := newFixture()
	handle(t, f, models.IncomingMessage{UserID: "u1", Text: "/test"})

	replies := handle(t, f, models.IncomingMessage{UserID: "u1", Photo: testPhoto(t)})
	if replies != nil {
		t.Errorf("photo during survey produced replies: %+v", replies)
	}
	if f.ai.visionCalls != 0 {
		t.Error("photo during survey reached the vision model")
	}
}

func TestRestartWithNoDataRefused(t *testing.T) {
	f := newFixture()
	replies := handle(t, f, models.IncomingMessage{UserID: "u1", Text: "/restart"})
	if len(replies) != 1 || !strings.Contains(replies[0].Text, "no saved data") {
		t.Fatalf("expected the nothing-to-reset notice, got %+v", replies)
	}

	p, err := f.profiles.Get("u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.PendingConfirmation != "" {
		t.Error("confirmation armed despite empty profile")
	}

	// A yes right after must be an ordinary AI turn, not a reset.
	handle(t, f, models.IncomingMessage{UserID: "u1", Text: "yes"})
	if f.ai.textCalls != 1 {
		t.Error("yes after refused reset did not reach the AI")
	}
}

func TestRestartCancelLeavesProfileUntouched(t *testing.T) {
	f := newFixture()
	if err := f.profiles.SetFields("u1", map[string]string{
		"preferred_style": "modern",
		"has_pets":        "yes",
	}); err != nil {
		t.Fatalf("SetFields: %v", err)
	}
	beforeProfile, err := f.profiles.Get("u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	handle(t, f, models.IncomingMessage{UserID: "u1", Text: "/restart"})
	replies := handle(t, f, models.IncomingMessage{UserID: "u1", Text: "нет"})
	if len(replies) != 1 || !strings.Contains(strings.ToLower(replies[0].Text), "отмен") {
		t.Fatalf("expected the cancellation notice, got %+v", replies)
	}

	after, err := f.profiles.Get("u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if after.PendingConfirmation != "" {
		t.Error("cancellation left the confirmation armed")
	}
	if !reflect.DeepEqual(after.Answers, beforeProfile.Answers) || !reflect.DeepEqual(after.Extra, beforeProfile.Extra) {
		t.Error("cancellation changed profile fields")
	}
	if after.CreatedAt != beforeProfile.CreatedAt {
		t.Error("cancellation changed CreatedAt")
	}
}

func TestRestartConfirmResetsEverything(t *testing.T) {
	f := newFixture()
	if err := f.profiles.SetFields("u1", map[string]string{
		"preferred_style": "modern",
		"has_pets":        "yes",
	}); err != nil {
		t.Fatalf("SetFields: %v", err)
	}
	handle(t, f, models.IncomingMessage{UserID: "u1", Text: "привет"})

	handle(t, f, models.IncomingMessage{UserID: "u1", Text: "/restart"})
	replies := handle(t, f, models.IncomingMessage{UserID: "u1", Text: "да"})
	if len(replies) != 1 || !strings.Contains(replies[0].Text, "сброшены") {
		t.Fatalf("expected the reset-done notice, got %+v", replies)
	}

	p, err := f.profiles.Get("u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.UserID != "u1" {
		t.Errorf("UserID = %q", p.UserID)
	}
	if p.HasData() || p.PendingConfirmation != "" {
		t.Errorf("reset left data behind: %+v", p)
	}

	msgs, err := f.log.Recent("u1", 100)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	// Only the post-reset exchange survives.
	for _, m := range msgs {
		if m.Text == "привет" {
			t.Error("old history survived the reset")
		}
	}
}

func TestRestartInvalidAnswerKeepsConfirmationArmed(t *testing.T) {
	f := newFixture()
	if err := f.profiles.SetField("u1", "preferred_style", "modern"); err != nil {
		t.Fatalf("SetField: %v", err)
	}

	handle(t, f, models.IncomingMessage{UserID: "u1", Text: "/restart"})
	handle(t, f, models.IncomingMessage{UserID: "u1", Text: "может быть"})

	p, err := f.profiles.Get("u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.PendingConfirmation != models.ConfirmationReset {
		t.Error("ambiguous answer disarmed the confirmation")
	}
	if f.ai.textCalls != 0 {
		t.Error("ambiguous confirmation answer reached the AI")
	}

	// A yes afterwards still works.
	handle(t, f, models.IncomingMessage{UserID: "u1", Text: "y"})
	p, err = f.profiles.Get("u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.HasData() {
		t.Error("late yes did not reset")
	}
}

func TestProductQueryShortCircuitsAI(t *testing.T) {
	f := newFixture()
	handle(t, f, models.IncomingMessage{UserID: "u1", Text: "/start"})

	replies := handle(t, f, models.IncomingMessage{UserID: "u1", Text: "где купить такой диван?"})
	if len(replies) != 1 {
		t.Fatalf("got %d replies, want 1", len(replies))
	}
	if !strings.Contains(replies[0].Text, "wildberries.by") {
		t.Errorf("product reply missing marketplace links: %q", replies[0].Text)
	}
	if f.ai.textCalls != 0 {
		t.Error("specific product query reached the AI")
	}
}

func TestProductMentionGoesToAI(t *testing.T) {
	f := newFixture()
	handle(t, f, models.IncomingMessage{UserID: "u1", Text: "/start"})

	handle(t, f, models.IncomingMessage{UserID: "u1", Text: "мне нравятся диваны в стиле лофт"})
	if f.ai.textCalls != 1 {
		t.Errorf("product mention should reach the AI, calls = %d", f.ai.textCalls)
	}
}

func TestBareSurveyTriggers(t *testing.T) {
	f := newFixture()
	handle(t, f, models.IncomingMessage{UserID: "u1", Text: "тест"})
	p, err := f.profiles.Get("u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !p.InSurveyMode || p.Language != models.LanguageRussian {
		t.Errorf("bare trigger did not start the russian survey: %+v", p)
	}

	handle(t, f, models.IncomingMessage{UserID: "u2", Text: "survey"})
	p2, err := f.profiles.Get("u2")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !p2.InSurveyMode || p2.Language != models.LanguageEnglish {
		t.Errorf("bare trigger did not start the english survey: %+v", p2)
	}
}

func TestCommands(t *testing.T) {
	f := newFixture()

	replies := handle(t, f, models.IncomingMessage{UserID: "u1", Text: "/help"})
	if len(replies) != 1 || !strings.Contains(replies[0].Text, "/restart") {
		t.Errorf("help missing command list: %+v", replies)
	}

	replies = handle(t, f, models.IncomingMessage{UserID: "u1", Text: "/status"})
	if len(replies) != 1 || !strings.Contains(replies[0].Text, "not completed") {
		t.Errorf("status for fresh profile: %+v", replies)
	}

	replies = handle(t, f, models.IncomingMessage{UserID: "u1", Text: "/start"})
	if len(replies) != 1 || !strings.Contains(replies[0].Text, "Welcome") {
		t.Errorf("start reply: %+v", replies)
	}
}

func TestStatusAfterSurveyShowsAnswers(t *testing.T) {
	f := newFixture()
	handle(t, f, models.IncomingMessage{UserID: "u1", Text: "/test"})
	handle(t, f, models.IncomingMessage{UserID: "u1", Text: "modern"})
	for i := 1; i < len(survey.Questions); i++ {
		handle(t, f, models.IncomingMessage{UserID: "u1", Text: "ответ"})
	}

	replies := handle(t, f, models.IncomingMessage{UserID: "u1", Text: "/status"})
	if len(replies) != 1 {
		t.Fatalf("got %d replies", len(replies))
	}
	if !strings.Contains(replies[0].Text, "modern") {
		t.Error("status missing the chosen style")
	}
	if !strings.Contains(replies[0].Text, "пройден") {
		t.Errorf("status is not the completed variant: %q", replies[0].Text[:60])
	}
}

func TestSurveyScenario(t *testing.T) {
	f := newFixture()

	replies := handle(t, f, models.IncomingMessage{UserID: "u1", Text: "/test"})
	if len(replies) != 2 {
		t.Fatalf("expected intro and first question, got %d replies", len(replies))
	}
	if len(replies[1].Options) != 6 {
		t.Fatalf("first question carries %d options", len(replies[1].Options))
	}

	replies = handle(t, f, models.IncomingMessage{UserID: "u1", Text: "modern"})
	p, err := f.profiles.Get("u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Answers[models.KeyPreferredStyle] != "modern" {
		t.Errorf("preferred_style = %q", p.Answers[models.KeyPreferredStyle])
	}
	found := false
	for _, r := range replies {
		if strings.Contains(r.Text, "ВОПРОС 2") {
			found = true
		}
	}
	if !found {
		t.Error("color question not asked after style choice")
	}
}

func TestPhotoRepromptsArmedConfirmation(t *testing.T) {
	f := newFixture()
	if err := f.profiles.SetFields("u1", map[string]string{"preferred_style": "modern"}); err != nil {
		t.Fatalf("SetFields: %v", err)
	}
	handle(t, f, models.IncomingMessage{UserID: "u1", Text: "/restart"})

	// A photo is not an answer: the question is repeated and nothing is
	// analyzed.
	replies := handle(t, f, models.IncomingMessage{UserID: "u1", Photo: testPhoto(t)})
	if len(replies) != 1 || !strings.Contains(replies[0].Text, "yes") {
		t.Fatalf("expected the confirmation reprompt, got %+v", replies)
	}
	if f.ai.visionCalls != 0 {
		t.Error("photo reached the vision model past an armed confirmation")
	}

	p, err := f.profiles.Get("u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.PendingConfirmation != models.ConfirmationReset {
		t.Error("reprompt disarmed the confirmation")
	}

	// The confirmation still works afterwards.
	replies = handle(t, f, models.IncomingMessage{UserID: "u1", Text: "да"})
	if len(replies) != 1 || !strings.Contains(replies[0].Text, "сброшены") {
		t.Fatalf("expected the reset notice, got %+v", replies)
	}
}

// brokenStore fails every operation so error classification is observable.
type brokenStore struct{ err error }

func (b *brokenStore) GetProfile(userID string) (*models.Profile, error) { return nil, b.err }

func (b *brokenStore) SaveProfile(p models.Profile) error { return b.err }

func (b *brokenStore) AddMessage(userID string, m models.ConversationMessage) error { return b.err }

func (b *brokenStore) GetMessages(userID string, limit int) ([]models.ConversationMessage, error) {
	return nil, b.err
}

func (b *brokenStore) ClearMessages(userID string) error { return b.err }

func (b *brokenStore) Close() error { return nil }

func TestStorageErrorsClassified(t *testing.T) {
	st := &brokenStore{err: errors.New("disk gone")}
	profiles := profile.NewManager(st)
	log := conversation.NewLog(st)
	router := NewRouter(profiles, log, &mockAI{textResponse: "ai answer"})

	_, err := router.Handle(context.Background(), models.IncomingMessage{UserID: "u1", Text: "hello"})
	if !errors.Is(err, ErrStorage) {
		t.Errorf("expected ErrStorage, got %v", err)
	}
	if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrCollaborator) {
		t.Errorf("storage failure misclassified: %v", err)
	}
}
