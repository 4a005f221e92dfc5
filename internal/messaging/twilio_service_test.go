package messaging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ateliergo/atelier/internal/models"
	"github.com/ateliergo/atelier/internal/twiliowhatsapp"
)

// Ensure TwilioService implements Service interface
func TestTwilioService_ImplementsService(t *testing.T) {
	var _ Service = (*TwilioService)(nil)
}

func postWebhook(t *testing.T, svc *TwilioService, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook/twilio", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	svc.WebhookHandler(rec, req)
	return rec
}

func receiveMessage(t *testing.T, svc *TwilioService) models.IncomingMessage {
	t.Helper()
	select {
	case msg := <-svc.Messages():
		return msg
	case <-time.After(time.Second):
		t.Fatal("expected inbound message, got none")
		return models.IncomingMessage{}
	}
}

func TestTwilioService_WebhookTextMessage(t *testing.T) {
	svc := NewTwilioService(twiliowhatsapp.NewMockClient())

	rec := postWebhook(t, svc, url.Values{
		"From":       {"whatsapp:+375291234567"},
		"Body":       {"привет"},
		"MessageSid": {"SM001"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	msg := receiveMessage(t, svc)
	if msg.UserID != "375291234567" {
		t.Errorf("expected canonical user id, got %q", msg.UserID)
	}
	if msg.Text != "привет" {
		t.Errorf("unexpected text %q", msg.Text)
	}
	if msg.IsPhoto() {
		t.Error("text message should not carry a photo")
	}
}

func TestTwilioService_WebhookMediaMessage(t *testing.T) {
	media := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("fake-image-bytes"))
	}))
	defer media.Close()

	svc := NewTwilioService(twiliowhatsapp.NewMockClient())

	rec := postWebhook(t, svc, url.Values{
		"From":       {"whatsapp:+375291234567"},
		"Body":       {"что думаешь об этой комнате?"},
		"MessageSid": {"SM002"},
		"NumMedia":   {"2"},
		"MediaUrl0":  {media.URL + "/img0"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	msg := receiveMessage(t, svc)
	if string(msg.Photo) != "fake-image-bytes" {
		t.Errorf("unexpected photo payload %q", msg.Photo)
	}
	if msg.Caption != "что думаешь об этой комнате?" {
		t.Errorf("unexpected caption %q", msg.Caption)
	}
	if msg.MediaGroupID != "SM002" {
		t.Errorf("multi-image submission should carry the MessageSid as group id, got %q", msg.MediaGroupID)
	}
}

func TestTwilioService_WebhookSingleImageHasNoGroup(t *testing.T) {
	media := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("img"))
	}))
	defer media.Close()

	svc := NewTwilioService(twiliowhatsapp.NewMockClient())
	postWebhook(t, svc, url.Values{
		"From":       {"whatsapp:+375291234567"},
		"MessageSid": {"SM003"},
		"NumMedia":   {"1"},
		"MediaUrl0":  {media.URL},
	})

	msg := receiveMessage(t, svc)
	if msg.MediaGroupID != "" {
		t.Errorf("single image should not carry a group id, got %q", msg.MediaGroupID)
	}
}

func TestTwilioService_WebhookMissingFields(t *testing.T) {
	svc := NewTwilioService(twiliowhatsapp.NewMockClient())

	rec := postWebhook(t, svc, url.Values{"Body": {"hello"}})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing From should be rejected, got %d", rec.Code)
	}

	rec = postWebhook(t, svc, url.Values{"From": {"whatsapp:+375291234567"}})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing Body should be rejected, got %d", rec.Code)
	}
}

func TestTwilioService_SendMessageAfterStop(t *testing.T) {
	mock := twiliowhatsapp.NewMockClient()
	svc := NewTwilioService(mock)
	if err := svc.Stop(); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}

	if err := svc.SendMessage(context.Background(), "375291234567", "hello"); err != ErrServiceStopped {
		t.Errorf("expected ErrServiceStopped, got %v", err)
	}
	if len(mock.SentMessages) != 0 {
		t.Errorf("stopped service should not send, got %d messages", len(mock.SentMessages))
	}
}

func TestTwilioService_SendMessagePrefixesPlus(t *testing.T) {
	mock := twiliowhatsapp.NewMockClient()
	svc := NewTwilioService(mock)

	if err := svc.SendMessage(context.Background(), "375 29 123-45-67", "hello"); err != nil {
		t.Fatalf("SendMessage returned error: %v", err)
	}
	if len(mock.SentMessages) != 1 {
		t.Fatalf("expected 1 sent message, got %d", len(mock.SentMessages))
	}
	if mock.SentMessages[0].To != "+375291234567" {
		t.Errorf("expected E.164 recipient, got %q", mock.SentMessages[0].To)
	}
}
