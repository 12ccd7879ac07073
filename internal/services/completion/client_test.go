package completion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"seoflow/internal/config"
	"seoflow/internal/services"
)

func chatResponse(content string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{
				"message": map[string]any{
					"content": content,
				},
			},
		},
	}
}

func TestClientHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test" {
			t.Fatalf("unexpected authorization header %q", got)
		}
		if err := json.NewEncoder(w).Encode(chatResponse(`{"ok":true}`)); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(config.OpenAI{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestClientCompleteJSONStripsCodeFence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewEncoder(w).Encode(chatResponse("```json\n{\"title\":\"Fenced\"}\n```")); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(config.OpenAI{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	content, err := client.CompleteJSON(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("CompleteJSON returned error: %v", err)
	}
	var parsed struct {
		Title string `json:"title"`
	}
	if err := DecodeJSON(content, &parsed); err != nil {
		t.Fatalf("DecodeJSON failed: %v", err)
	}
	if parsed.Title != "Fenced" {
		t.Fatalf("unexpected title %q", parsed.Title)
	}
}

func TestClientRetriesRateLimitThenSucceeds(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		if err := json.NewEncoder(w).Encode(chatResponse("recovered")); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(
		config.OpenAI{APIKey: "test", BaseURL: server.URL, Model: "demo-model"},
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
	)
	content, err := client.Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if content != "recovered" {
		t.Fatalf("unexpected content %q", content)
	}
	if hits.Load() != 2 {
		t.Fatalf("expected 2 requests, got %d", hits.Load())
	}
	if len(slept) != 1 || slept[0] != time.Second {
		t.Fatalf("expected single 1s Retry-After sleep, got %v", slept)
	}
}

func TestClientRateLimitExhaustionTagsMarker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(
		config.OpenAI{APIKey: "test", BaseURL: server.URL, Model: "demo-model"},
		WithRetryMaxAttempts(2),
		WithSleeper(func(time.Duration) {}),
	)
	_, err := client.Complete(context.Background(), "system", "user")
	if err == nil {
		t.Fatal("expected error after retries exhausted")
	}
	if !errors.Is(err, services.ErrRateLimited) {
		t.Fatalf("expected rate limit marker, got %v", err)
	}
	if !services.Retryable(err) {
		t.Fatal("expected rate limit error to classify as retryable")
	}
}

func TestClientUnauthorizedIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(config.OpenAI{APIKey: "bad", BaseURL: server.URL, Model: "demo-model"})
	_, err := client.Complete(context.Background(), "system", "user")
	if err == nil {
		t.Fatal("expected error for unauthorized")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration marker, got %v", err)
	}
	if !services.Fatal(err) {
		t.Fatal("expected unauthorized to classify as fatal")
	}
}

func TestClientRequiresPrompts(t *testing.T) {
	client := NewClient(config.OpenAI{APIKey: "test", Model: "demo-model"})
	if _, err := client.Complete(context.Background(), "", "user"); err == nil {
		t.Fatal("expected error for empty system prompt")
	}
	if _, err := client.Complete(context.Background(), "system", ""); err == nil {
		t.Fatal("expected error for empty user prompt")
	}
}

func TestDecodeJSONExtractsEmbeddedObject(t *testing.T) {
	var parsed struct {
		Score int `json:"score"`
	}
	payload := "Here is the audit you asked for:\n{\"score\": 62}\nLet me know if you need more."
	if err := DecodeJSON(payload, &parsed); err != nil {
		t.Fatalf("DecodeJSON failed: %v", err)
	}
	if parsed.Score != 62 {
		t.Fatalf("unexpected score %d", parsed.Score)
	}
}

func TestFakeConsumesQueueThenDefault(t *testing.T) {
	fake := NewFake(`{"score": 62}`, `{"score": 85}`)

	first, err := fake.CompleteJSON(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("CompleteJSON failed: %v", err)
	}
	if !strings.Contains(first, "62") {
		t.Fatalf("unexpected first payload %q", first)
	}
	second, _ := fake.CompleteJSON(context.Background(), "sys", "user")
	if !strings.Contains(second, "85") {
		t.Fatalf("unexpected second payload %q", second)
	}

	third, _ := fake.CompleteJSON(context.Background(), "sys", "user")
	var parsed struct {
		Title string `json:"title"`
		OK    bool   `json:"ok"`
	}
	if err := DecodeJSON(third, &parsed); err != nil {
		t.Fatalf("default payload must decode: %v", err)
	}
	if !parsed.OK || parsed.Title == "" {
		t.Fatalf("unexpected default payload fields: %#v", parsed)
	}
	if calls := fake.Calls(); len(calls) != 3 {
		t.Fatalf("expected 3 recorded calls, got %d", len(calls))
	}
}
