package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"seoflow/internal/config"
)

func slackConfig(webhookURL string) *config.Config {
	cfg := config.Default()
	cfg.Notifications.Method = "slack"
	cfg.Notifications.SlackWebhookURL = webhookURL
	return &cfg
}

func TestSlackRunCompletedPostsSummary(t *testing.T) {
	var received map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	service := NewService(slackConfig(server.URL))
	err := service.NotifyRunCompleted(context.Background(), "Keyword Research", 9, 1, 2, 95*time.Second)
	if err != nil {
		t.Fatalf("NotifyRunCompleted failed: %v", err)
	}
	text := received["text"]
	if !strings.Contains(text, "Keyword Research") || !strings.Contains(text, "1 failed") {
		t.Fatalf("unexpected summary text %q", text)
	}
}

func TestSlackErrorStatusSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	service := NewService(slackConfig(server.URL))
	if err := service.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for failing webhook")
	}
}

func TestNoneMethodIsNoop(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.Method = "none"
	service := NewService(&cfg)
	if err := service.NotifyRunStarted(context.Background(), "Planning", 3); err != nil {
		t.Fatalf("noop should never fail: %v", err)
	}
}

func TestCaptureRecordsMessages(t *testing.T) {
	capture := NewCapture()
	_ = capture.NotifyRunCompleted(context.Background(), "Writing", 2, 0, 0, time.Minute)
	_ = capture.NotifyError(context.Background(), context.DeadlineExceeded, "publishing")

	messages := capture.Messages()
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if !strings.Contains(messages[1], "publishing") {
		t.Fatalf("unexpected error message %q", messages[1])
	}
}
