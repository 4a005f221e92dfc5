package profile

import (
	"reflect"
	"testing"

	"github.com/ateliergo/atelier/internal/models"
	"github.com/ateliergo/atelier/internal/store"
)

func newTestManager() (*Manager, store.Store) {
	st := store.NewMemoryStore()
	return NewManager(st), st
}

func TestGetMaterializesDefault(t *testing.T) {
	m, st := newTestManager()

	p, err := m.Get("u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.UserID != "u1" {
		t.Errorf("UserID = %q", p.UserID)
	}
	if p.SurveyCompleted || p.InSurveyMode {
		t.Error("default profile must not claim survey state")
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Error("default profile missing timestamps")
	}

	// The default record must now exist in the store: a get is never pure.
	stored, err := st.GetProfile("u1")
	if err != nil {
		t.Fatalf("store.GetProfile: %v", err)
	}
	if stored == nil {
		t.Fatal("Get did not persist the new profile")
	}
}

func TestGetEmptyUserID(t *testing.T) {
	m, _ := newTestManager()
	if _, err := m.Get(""); err != models.ErrEmptyUserID {
		t.Fatalf("expected ErrEmptyUserID, got %v", err)
	}
}

func TestUpdateBumpsTimestamp(t *testing.T) {
	m, _ := newTestManager()
	p, err := m.Get("u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if err := m.Update("u1", func(p *models.Profile) {
		p.GreetingSent = true
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := m.Get("u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.GreetingSent {
		t.Error("Update change lost")
	}
	if got.UpdatedAt.Before(p.UpdatedAt) {
		t.Error("UpdatedAt went backwards")
	}
	if !got.CreatedAt.Equal(p.CreatedAt) {
		t.Error("Update must not touch CreatedAt")
	}
}

func TestSetFieldsRoutesAndBumpsOnce(t *testing.T) {
	m, _ := newTestManager()
	err := m.SetFields("u1", map[string]string{
		"preferred_style": "modern",
		"language":        "en",
		"has_pets":        "yes",
	})
	if err != nil {
		t.Fatalf("SetFields: %v", err)
	}

	p, err := m.Get("u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Answers[models.KeyPreferredStyle] != "modern" {
		t.Errorf("preferred_style = %q", p.Answers[models.KeyPreferredStyle])
	}
	if p.Language != models.LanguageEnglish {
		t.Errorf("language = %q", p.Language)
	}
	if p.Extra["has_pets"] != "yes" {
		t.Errorf("has_pets = %q", p.Extra["has_pets"])
	}
}

func TestResetReinitializesEverythingButUserID(t *testing.T) {
	m, st := newTestManager()
	if err := m.SetFields("u1", map[string]string{
		"preferred_style":  "modern",
		"color_preference": "warm",
		"has_pets":         "yes",
	}); err != nil {
		t.Fatalf("SetFields: %v", err)
	}
	if err := m.Update("u1", func(p *models.Profile) {
		p.SurveyCompleted = true
		p.PendingConfirmation = models.ConfirmationReset
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := st.AddMessage("u1", models.ConversationMessage{Text: "hi", Sender: models.SenderUser}); err != nil {
		t.Fatalf("AddMessage: %v", err)
	}

	if err := m.Reset("u1"); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	p, err := m.Get("u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.UserID != "u1" {
		t.Errorf("UserID = %q", p.UserID)
	}
	if p.HasData() {
		t.Errorf("reset profile still has data: %+v", p)
	}
	if p.PendingConfirmation != "" || p.SurveyCompleted || p.InSurveyMode {
		t.Error("reset left flags set")
	}
	if len(p.Answers) != 0 || len(p.Extra) != 0 {
		t.Error("reset left fields behind")
	}

	msgs, err := st.GetMessages("u1", 0)
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("reset left %d conversation messages", len(msgs))
	}
}

func TestMarkMediaGroup(t *testing.T) {
	m, _ := newTestManager()

	seen, err := m.MarkMediaGroup("u1", "g1")
	if err != nil {
		t.Fatalf("MarkMediaGroup: %v", err)
	}
	if seen {
		t.Error("first mark reported already seen")
	}

	seen, err = m.MarkMediaGroup("u1", "g1")
	if err != nil {
		t.Fatalf("MarkMediaGroup: %v", err)
	}
	if !seen {
		t.Error("second mark did not report already seen")
	}

	// A different group id starts fresh.
	seen, err = m.MarkMediaGroup("u1", "g2")
	if err != nil {
		t.Fatalf("MarkMediaGroup: %v", err)
	}
	if seen {
		t.Error("unrelated group reported already seen")
	}
}

func TestDiffFields(t *testing.T) {
	before := map[string]string{
		"user_id":         "u1",
		"created_at":      "2026-01-01T00:00:00Z",
		"preferred_style": "modern",
		"has_pets":        "yes",
	}
	after := map[string]string{
		"user_id":          "HACKED",
		"created_at":       "1970-01-01T00:00:00Z",
		"preferred_style":  "modern",
		"has_pets":         "no",
		"color_preference": "warm",
		"budget_range":     "",
		"timeline":         "null",
		"lifestyle":        "None",
	}

	diff := DiffFields(before, after)
	want := map[string]string{
		"has_pets":         "no",
		"color_preference": "warm",
	}
	if !reflect.DeepEqual(diff, want) {
		t.Errorf("DiffFields = %v, want %v", diff, want)
	}
}

func TestMergeAIFieldsSurveyAnswersWin(t *testing.T) {
	m, _ := newTestManager()
	if err := m.SetField("u1", "preferred_style", "classic"); err != nil {
		t.Fatalf("SetField: %v", err)
	}

	before := map[string]string{}
	after := map[string]string{
		"preferred_style": "industrial",
		"room_preference": "bedroom",
		"mood":            "cozy",
	}
	applied, err := m.MergeAIFields("u1", before, after)
	if err != nil {
		t.Fatalf("MergeAIFields: %v", err)
	}
	if !reflect.DeepEqual(applied, []string{"mood", "room_preference"}) {
		t.Errorf("applied = %v", applied)
	}

	p, err := m.Get("u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Answers[models.KeyPreferredStyle] != "classic" {
		t.Errorf("answered question overwritten: %q", p.Answers[models.KeyPreferredStyle])
	}
	if p.Answers[models.KeyRoomPreference] != "bedroom" {
		t.Errorf("unanswered question not filled: %q", p.Answers[models.KeyRoomPreference])
	}
	if p.Extra["mood"] != "cozy" {
		t.Errorf("extra field not applied: %q", p.Extra["mood"])
	}
}

func TestMergeAIFieldsIdempotent(t *testing.T) {
	m, _ := newTestManager()

	before, err := m.Get("u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	after := before.Fields()
	after["mood"] = "cozy"

	if _, err := m.MergeAIFields("u1", before.Fields(), after); err != nil {
		t.Fatalf("MergeAIFields: %v", err)
	}
	first, err := m.Get("u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	// Applying the same answer snapshot again changes nothing.
	applied, err := m.MergeAIFields("u1", first.Fields(), after)
	if err != nil {
		t.Fatalf("MergeAIFields: %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("second merge applied %v", applied)
	}
	second, err := m.Get("u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(first.Answers, second.Answers) || !reflect.DeepEqual(first.Extra, second.Extra) {
		t.Error("repeat merge changed the profile")
	}
}
