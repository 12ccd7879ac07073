// Package wordpress publishes articles through the WordPress REST API.
package wordpress

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

const defaultHTTPTimeout = 60 * time.Second

// Post is the content submitted for publication.
type Post struct {
	Title           string
	Slug            string
	Content         string
	Excerpt         string
	Status          string
	FeaturedImage   string
	MetaDescription string
}

// Published describes the article after the CMS accepted it.
type Published struct {
	ID   int64
	URL  string
	Slug string
}

// Service is the publishing surface workflows depend on.
type Service interface {
	// Publish creates a post and returns its CMS identity.
	Publish(ctx context.Context, post Post) (Published, error)
}

// Client talks to a WordPress site using application passwords.
type Client struct {
	cfg        config.WordPress
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

// NewClient constructs a WordPress client from configuration.
func NewClient(cfg config.WordPress, opts ...Option) *Client {
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
	return client
}

type createPostRequest struct {
	Title   string `json:"title"`
	Slug    string `json:"slug,omitempty"`
	Content string `json:"content"`
	Excerpt string `json:"excerpt,omitempty"`
	Status  string `json:"status"`
}

type createPostResponse struct {
	ID   int64  `json:"id"`
	Link string `json:"link"`
	Slug string `json:"slug"`
}

// Publish implements Service.
func (c *Client) Publish(ctx context.Context, post Post) (Published, error) {
	var empty Published
	if strings.TrimSpace(post.Title) == "" {
		return empty, services.Wrap(services.ErrValidation, "wordpress", "publish", "title required", nil)
	}
	if strings.TrimSpace(c.cfg.URL) == "" {
		return empty, services.Wrap(services.ErrConfiguration, "wordpress", "publish", "site url required", nil)
	}
	if c.cfg.Username == "" || c.cfg.AppPassword == "" {
		return empty, services.Wrap(services.ErrConfiguration, "wordpress", "publish", "credentials required", nil)
	}

	status := post.Status
	if status == "" {
		status = c.cfg.DefaultStatus
	}

	endpoint, err := url.JoinPath(c.cfg.URL, "wp-json", "wp", "v2", "posts")
	if err != nil {
		return empty, services.Wrap(services.ErrValidation, "wordpress", "publish", "build url", err)
	}
	encoded, err := json.Marshal(createPostRequest{
		Title:   post.Title,
		Slug:    post.Slug,
		Content: post.Content,
		Excerpt: post.Excerpt,
		Status:  status,
	})
	if err != nil {
		return empty, services.Wrap(services.ErrValidation, "wordpress", "publish", "encode body", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return empty, services.Wrap(services.ErrValidation, "wordpress", "publish", "new request", err)
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.AppPassword)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, services.Wrap(services.ErrUpstream, "wordpress", "publish", "http error", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return empty, services.Wrap(services.ErrUpstream, "wordpress", "publish", "read body", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return empty, services.Wrap(services.ErrRateLimited, "wordpress", "publish", "rate limited", nil)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return empty, services.Wrap(services.ErrConfiguration, "wordpress", "publish", fmt.Sprintf("http %d", resp.StatusCode), nil)
	case resp.StatusCode >= http.StatusMultipleChoices:
		return empty, services.Wrap(services.ErrUpstream, "wordpress", "publish", fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	var decoded createPostResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return empty, services.Wrap(services.ErrInvalidResponse, "wordpress", "publish", "decode response", err)
	}
	if decoded.ID == 0 {
		return empty, services.Wrap(services.ErrInvalidResponse, "wordpress", "publish", "missing post id", nil)
	}
	return Published{ID: decoded.ID, URL: decoded.Link, Slug: decoded.Slug}, nil
}
