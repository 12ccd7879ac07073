package imagegen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"seoflow/internal/config"
	"seoflow/internal/services"
)

func TestGenerateReturnsFirstImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images/generations" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["n"] != float64(1) {
			t.Fatalf("expected n=1, got %v", req["n"])
		}
		payload := map[string]any{
			"data": []any{map[string]any{"url": "https://cdn.example.com/img.png"}},
		}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(config.ImageGen{APIKey: "test", BaseURL: server.URL, Model: "gpt-image-1"})
	image, err := client.Generate(context.Background(), "a home gym")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if image.URL != "https://cdn.example.com/img.png" {
		t.Fatalf("unexpected url %q", image.URL)
	}
}

func TestGenerateEmptyDataIsInvalidResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer server.Close()

	client := NewClient(config.ImageGen{APIKey: "test", BaseURL: server.URL})
	_, err := client.Generate(context.Background(), "prompt")
	if !errors.Is(err, services.ErrInvalidResponse) {
		t.Fatalf("expected invalid response marker, got %v", err)
	}
}

func TestGenerateRequiresPromptAndKey(t *testing.T) {
	client := NewClient(config.ImageGen{APIKey: "test"})
	if _, err := client.Generate(context.Background(), "  "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	client = NewClient(config.ImageGen{})
	if _, err := client.Generate(context.Background(), "prompt"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestFakeDerivesStableURLs(t *testing.T) {
	fake := NewFake()
	first, err := fake.Generate(context.Background(), "a home gym")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	second, _ := fake.Generate(context.Background(), "a home gym")
	if first.URL != second.URL {
		t.Fatalf("expected stable url, got %q vs %q", first.URL, second.URL)
	}
	if len(fake.Prompts()) != 2 {
		t.Fatalf("expected 2 prompts recorded, got %d", len(fake.Prompts()))
	}
}
