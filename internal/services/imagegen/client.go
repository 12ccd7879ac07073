// Package imagegen wraps the OpenAI-compatible image generation API.
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"seoflow/internal/config"
	"seoflow/internal/services"
)

const defaultHTTPTimeout = 180 * time.Second

// Image is one generated asset.
type Image struct {
	URL     string
	B64Data string
}

// Service is the image generation surface workflows depend on.
type Service interface {
	// Generate produces one image for the supplied prompt.
	Generate(ctx context.Context, prompt string) (Image, error)
}

// Client talks to an OpenAI-compatible images endpoint.
type Client struct {
	cfg        config.ImageGen
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs an image generation client from configuration.
func NewClient(cfg config.ImageGen, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = "https://api.openai.com/v1"
	}
	return client
}

type generationRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size,omitempty"`
}

type generationResponse struct {
	Data []struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate implements Service.
func (c *Client) Generate(ctx context.Context, prompt string) (Image, error) {
	var empty Image
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return empty, services.Wrap(services.ErrValidation, "imagegen", "generate", "prompt required", nil)
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return empty, services.Wrap(services.ErrConfiguration, "imagegen", "generate", "api key required", nil)
	}

	endpoint, err := url.JoinPath(c.cfg.BaseURL, "images", "generations")
	if err != nil {
		return empty, services.Wrap(services.ErrValidation, "imagegen", "generate", "build url", err)
	}
	encoded, err := json.Marshal(generationRequest{
		Model:  c.cfg.Model,
		Prompt: prompt,
		N:      1,
		Size:   c.cfg.Size,
	})
	if err != nil {
		return empty, services.Wrap(services.ErrValidation, "imagegen", "generate", "encode body", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return empty, services.Wrap(services.ErrValidation, "imagegen", "generate", "new request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, services.Wrap(services.ErrUpstream, "imagegen", "generate", "http error", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return empty, services.Wrap(services.ErrUpstream, "imagegen", "generate", "read body", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return empty, services.Wrap(services.ErrRateLimited, "imagegen", "generate", "rate limited", nil)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return empty, services.Wrap(services.ErrConfiguration, "imagegen", "generate", fmt.Sprintf("http %d", resp.StatusCode), nil)
	case resp.StatusCode >= http.StatusMultipleChoices:
		return empty, services.Wrap(services.ErrUpstream, "imagegen", "generate", fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	var decoded generationResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return empty, services.Wrap(services.ErrInvalidResponse, "imagegen", "generate", "decode response", err)
	}
	if decoded.Error != nil {
		return empty, services.Wrap(services.ErrUpstream, "imagegen", "generate", decoded.Error.Message, nil)
	}
	if len(decoded.Data) == 0 || (decoded.Data[0].URL == "" && decoded.Data[0].B64JSON == "") {
		return empty, services.Wrap(services.ErrInvalidResponse, "imagegen", "generate", "empty image data", nil)
	}
	return Image{URL: decoded.Data[0].URL, B64Data: decoded.Data[0].B64JSON}, nil
}
