package flow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ateliergo/atelier/internal/models"
)

func TestHandleTextGreetsOnce(t *testing.T) {
	f := newFixture()

	replies := handle(t, f, models.IncomingMessage{UserID: "u1", Text: "hello"})
	if len(replies) != 2 {
		t.Fatalf("first turn should greet and answer, got %d replies", len(replies))
	}
	if replies[1].Text != "ai answer" {
		t.Errorf("second reply = %q", replies[1].Text)
	}

	replies = handle(t, f, models.IncomingMessage{UserID: "u1", Text: "hello again"})
	if len(replies) != 1 {
		t.Fatalf("later turns should not greet, got %d replies", len(replies))
	}
}

func TestHandleTextAIFailureDegrades(t *testing.T) {
	f := newFixture()
	f.ai.textErr = errors.New("model down")

	replies := handle(t, f, models.IncomingMessage{UserID: "u1", Text: "расскажи про планировку"})
	last := replies[len(replies)-1]
	if !strings.Contains(last.Text, "произошла ошибка") {
		t.Errorf("expected the localized apology, got %q", last.Text)
	}

	// The failed turn is still logged.
	msgs, err := f.log.Recent("u1", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(msgs) < 2 {
		t.Fatalf("turn not logged, %d messages", len(msgs))
	}
}

func TestHandleTextSurveyNudge(t *testing.T) {
	f := newFixture()
	handle(t, f, models.IncomingMessage{UserID: "u1", Text: "привет"})

	replies := handle(t, f, models.IncomingMessage{UserID: "u1", Text: "дай персональный совет по дизайну"})
	last := replies[len(replies)-1]
	if !strings.Contains(last.Text, "тест") {
		t.Errorf("expected the survey nudge, got %q", last.Text)
	}

	// Completed survey silences the nudge.
	if err := f.profiles.Update("u1", func(p *models.Profile) {
		p.SurveyCompleted = true
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	replies = handle(t, f, models.IncomingMessage{UserID: "u1", Text: "дай персональный совет по дизайну"})
	last = replies[len(replies)-1]
	if strings.Contains(last.Text, "Напишите 'тест'") {
		t.Error("nudge shown despite completed survey")
	}
}

func TestHandleTextNoNudgeOnAIFailure(t *testing.T) {
	f := newFixture()
	f.ai.textErr = errors.New("model down")

	replies := handle(t, f, models.IncomingMessage{UserID: "u1", Text: "personal design advice please"})
	last := replies[len(replies)-1]
	if strings.Contains(last.Text, "survey") {
		t.Errorf("nudge appended to an apology: %q", last.Text)
	}
}

func TestHandleTextTruncatesLongReplies(t *testing.T) {
	f := newFixture()
	f.ai.textResponse = strings.Repeat("а", models.MaxReplyLength+500)

	replies := handle(t, f, models.IncomingMessage{UserID: "u1", Text: "привет"})
	last := replies[len(replies)-1]
	if !strings.HasSuffix(last.Text, "... (ответ обрезан)") {
		t.Error("long reply missing the truncation marker")
	}
	if len([]rune(last.Text)) > models.MaxReplyLength+50 {
		t.Errorf("reply too long: %d runes", len([]rune(last.Text)))
	}
}

func TestHandleTextExtractsInterests(t *testing.T) {
	f := newFixture()
	handle(t, f, models.IncomingMessage{UserID: "u1", Text: "могу прислать фото комнаты?"})

	p, err := f.profiles.Get("u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Extra["photo_interest"] != "true" {
		t.Errorf("photo_interest not extracted: %+v", p.Extra)
	}
	if p.Language != models.LanguageRussian {
		t.Errorf("language not pinned: %q", p.Language)
	}
}

func TestHandlePhotoAnalyzes(t *testing.T) {
	f := newFixture()
	replies := handle(t, f, models.IncomingMessage{UserID: "u1", Photo: testPhoto(t)})
	if len(replies) != 1 || replies[0].Text != "vision answer" {
		t.Fatalf("replies = %+v", replies)
	}
	if f.ai.visionCalls != 1 {
		t.Errorf("visionCalls = %d", f.ai.visionCalls)
	}

	msgs, err := f.log.Recent("u1", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d log entries, want 2", len(msgs))
	}
	if !strings.HasPrefix(msgs[0].Text, "[Photo: ") {
		t.Errorf("user turn = %q", msgs[0].Text)
	}
}

func TestHandlePhotoVisionFallsBackToText(t *testing.T) {
	f := newFixture()
	f.ai.visionErr = errors.New("vision down")
	f.ai.textResponse = "text fallback answer"

	replies := handle(t, f, models.IncomingMessage{UserID: "u1", Photo: testPhoto(t)})
	if len(replies) != 1 || replies[0].Text != "text fallback answer" {
		t.Fatalf("replies = %+v", replies)
	}
	if f.ai.textCalls != 1 {
		t.Errorf("text model not tried, calls = %d", f.ai.textCalls)
	}
}

func TestHandlePhotoMetadataFallback(t *testing.T) {
	f := newFixture()
	f.ai.visionErr = errors.New("vision down")
	f.ai.textErr = errors.New("text down")

	replies := handle(t, f, models.IncomingMessage{UserID: "u1", Photo: testPhoto(t), Caption: "что скажете?"})
	if len(replies) != 1 {
		t.Fatalf("got %d replies", len(replies))
	}
	if !strings.Contains(replies[0].Text, "3x3") || !strings.Contains(replies[0].Text, "png") {
		t.Errorf("metadata fallback missing image facts: %q", replies[0].Text)
	}
}

func TestHandlePhotoUndecodableFallback(t *testing.T) {
	f := newFixture()
	f.ai.visionErr = errors.New("vision down")
	f.ai.textErr = errors.New("text down")

	replies := handle(t, f, models.IncomingMessage{UserID: "u1", Photo: []byte("not an image"), Caption: "hm"})
	if len(replies) != 1 {
		t.Fatalf("got %d replies", len(replies))
	}
	if !strings.Contains(replies[0].Text, "What I can analyze") {
		t.Errorf("expected the apology fallback, got %q", replies[0].Text)
	}
}

func TestHandlePhotoMediaGroupFirstAnalyzed(t *testing.T) {
	f := newFixture()

	// The first image of a group gets the full analysis.
	replies := handle(t, f, models.IncomingMessage{UserID: "u1", Photo: testPhoto(t), MediaGroupID: "g1"})
	if len(replies) != 1 || replies[0].Text != "vision answer" {
		t.Fatalf("first group photo not analyzed: %+v", replies)
	}
	if f.ai.visionCalls != 1 {
		t.Errorf("vision calls = %d, want 1", f.ai.visionCalls)
	}

	// Siblings of the same group get the one-photo explanation instead.
	replies = handle(t, f, models.IncomingMessage{UserID: "u1", Photo: testPhoto(t), MediaGroupID: "g1"})
	if len(replies) != 1 || !strings.Contains(replies[0].Text, "one photo at a time") {
		t.Fatalf("expected the one-photo explanation, got %+v", replies)
	}
	if f.ai.visionCalls != 1 {
		t.Error("sibling group photo reached the vision model")
	}

	// A single photo afterwards is analyzed normally.
	replies = handle(t, f, models.IncomingMessage{UserID: "u1", Photo: testPhoto(t)})
	if len(replies) != 1 || replies[0].Text != "vision answer" {
		t.Errorf("standalone photo after group: %+v", replies)
	}
	if f.ai.visionCalls != 2 {
		t.Errorf("vision calls = %d, want 2", f.ai.visionCalls)
	}
}

func TestTruncate(t *testing.T) {
	short := "short reply"
	if got := Truncate(short, models.LanguageEnglish); got != short {
		t.Errorf("short text modified: %q", got)
	}

	long := strings.Repeat("x", models.MaxReplyLength+1)
	got := Truncate(long, models.LanguageEnglish)
	if !strings.HasSuffix(got, "... (ответ обрезан)") {
		t.Error("missing truncation marker")
	}
}

func TestHandleTextCancelledContext(t *testing.T) {
	f := newFixture()
	f.ai.textErr = errors.New("context canceled")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.router.Handle(ctx, models.IncomingMessage{UserID: "u1", Text: "hello"})
	if !errors.Is(err, ErrCollaborator) {
		t.Errorf("expected ErrCollaborator, got %v", err)
	}
	if errors.Is(err, ErrStorage) {
		t.Errorf("shutdown AI failure misclassified as storage: %v", err)
	}
}

func TestHandlePhotoCancelledContext(t *testing.T) {
	f := newFixture()
	f.ai.visionErr = errors.New("context canceled")
	f.ai.textErr = errors.New("context canceled")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.router.Handle(ctx, models.IncomingMessage{UserID: "u1", Photo: testPhoto(t)})
	if !errors.Is(err, ErrCollaborator) {
		t.Errorf("expected ErrCollaborator, got %v", err)
	}
}
