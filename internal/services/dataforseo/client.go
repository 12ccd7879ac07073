// Package dataforseo wraps the DataForSEO keyword research API.
package dataforseo

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

// KeywordMetrics carries the research data for one keyword.
type KeywordMetrics struct {
	Keyword      string
	SearchVolume int
	Competition  float64
	CPC          float64
}

// Ranking is one organic SERP position for a tracked keyword.
type Ranking struct {
	Keyword  string
	Position int
	URL      string
}

// Service is the keyword research surface workflows depend on.
type Service interface {
	// SearchVolume returns metrics for the supplied keywords.
	SearchVolume(ctx context.Context, keywords []string) ([]KeywordMetrics, error)
	// Rankings returns the organic position of a domain for each keyword.
	// Keywords the domain does not rank for are omitted.
	Rankings(ctx context.Context, domain string, keywords []string) ([]Ranking, error)
}

// Client talks to the DataForSEO v3 API using basic auth.
type Client struct {
	cfg        config.DataForSEO
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

// NewClient constructs a DataForSEO client from configuration.
func NewClient(cfg config.DataForSEO, opts ...Option) *Client {
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = "https://api.dataforseo.com/v3"
	}
	return client
}

type task struct {
	StatusCode    int             `json:"status_code"`
	StatusMessage string          `json:"status_message"`
	Result        json.RawMessage `json:"result"`
}

type apiResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Tasks         []task `json:"tasks"`
}

type volumeResult struct {
	Keyword      string  `json:"keyword"`
	SearchVolume int     `json:"search_volume"`
	Competition  float64 `json:"competition"`
	CPC          float64 `json:"cpc"`
}

type serpResult struct {
	Keyword string `json:"keyword"`
	Items   []struct {
		Type    string `json:"type"`
		RankAbs int    `json:"rank_absolute"`
		Domain  string `json:"domain"`
		URL     string `json:"url"`
	} `json:"items"`
}

// SearchVolume implements Service.
func (c *Client) SearchVolume(ctx context.Context, keywords []string) ([]KeywordMetrics, error) {
	if len(keywords) == 0 {
		return nil, nil
	}
	payload := []map[string]any{{
		"keywords":      keywords,
		"location_code": c.cfg.LocationCode,
		"language_code": c.cfg.LanguageCode,
	}}

	raw, err := c.post(ctx, "search-volume", "keywords_data/google_ads/search_volume/live", payload)
	if err != nil {
		return nil, err
	}

	var results []volumeResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, services.Wrap(services.ErrInvalidResponse, "dataforseo", "search-volume", "decode result", err)
	}

	metrics := make([]KeywordMetrics, 0, len(results))
	for _, result := range results {
		metrics = append(metrics, KeywordMetrics{
			Keyword:      result.Keyword,
			SearchVolume: result.SearchVolume,
			Competition:  result.Competition,
			CPC:          result.CPC,
		})
	}
	return metrics, nil
}

// Rankings implements Service. It issues one SERP task per keyword and keeps
// only positions belonging to the supplied domain.
func (c *Client) Rankings(ctx context.Context, domain string, keywords []string) ([]Ranking, error) {
	domain = normalizeDomain(domain)
	if domain == "" {
		return nil, services.Wrap(services.ErrValidation, "dataforseo", "rankings", "domain required", nil)
	}
	if len(keywords) == 0 {
		return nil, nil
	}

	payload := make([]map[string]any, 0, len(keywords))
	for _, keyword := range keywords {
		payload = append(payload, map[string]any{
			"keyword":       keyword,
			"location_code": c.cfg.LocationCode,
			"language_code": c.cfg.LanguageCode,
			"depth":         100,
		})
	}

	raw, err := c.post(ctx, "rankings", "serp/google/organic/live/regular", payload)
	if err != nil {
		return nil, err
	}

	var results []serpResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, services.Wrap(services.ErrInvalidResponse, "dataforseo", "rankings", "decode result", err)
	}

	var rankings []Ranking
	for _, result := range results {
		for _, item := range result.Items {
			if item.Type != "organic" {
				continue
			}
			if normalizeDomain(item.Domain) != domain {
				continue
			}
			rankings = append(rankings, Ranking{
				Keyword:  result.Keyword,
				Position: item.RankAbs,
				URL:      item.URL,
			})
			break
		}
	}
	return rankings, nil
}

func (c *Client) post(ctx context.Context, op, path string, payload any) (json.RawMessage, error) {
	if c.cfg.Login == "" || c.cfg.Password == "" {
		return nil, services.Wrap(services.ErrConfiguration, "dataforseo", op, "credentials required", nil)
	}

	endpoint, err := url.JoinPath(c.cfg.BaseURL, path)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "dataforseo", op, "build url", err)
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "dataforseo", op, "encode body", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "dataforseo", op, "new request", err)
	}
	req.SetBasicAuth(c.cfg.Login, c.cfg.Password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrUpstream, "dataforseo", op, "http error", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrUpstream, "dataforseo", op, "read body", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, services.Wrap(services.ErrRateLimited, "dataforseo", op, "rate limited", nil)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, services.Wrap(services.ErrConfiguration, "dataforseo", op, fmt.Sprintf("http %d", resp.StatusCode), nil)
	case resp.StatusCode >= http.StatusMultipleChoices:
		return nil, services.Wrap(services.ErrUpstream, "dataforseo", op, fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	var decoded apiResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, services.Wrap(services.ErrInvalidResponse, "dataforseo", op, "decode response", err)
	}
	if len(decoded.Tasks) == 0 {
		return nil, services.Wrap(services.ErrInvalidResponse, "dataforseo", op, "empty task list", nil)
	}

	// Collect results across tasks so multi-task requests flatten into one
	// result array.
	var merged []json.RawMessage
	for _, t := range decoded.Tasks {
		if t.StatusCode >= 40000 {
			return nil, services.Wrap(services.ErrUpstream, "dataforseo", op, fmt.Sprintf("task failed: %s", t.StatusMessage), nil)
		}
		if len(t.Result) == 0 {
			continue
		}
		var chunk []json.RawMessage
		if err := json.Unmarshal(t.Result, &chunk); err != nil {
			return nil, services.Wrap(services.ErrInvalidResponse, "dataforseo", op, "decode task result", err)
		}
		merged = append(merged, chunk...)
	}
	flattened, err := json.Marshal(merged)
	if err != nil {
		return nil, services.Wrap(services.ErrInvalidResponse, "dataforseo", op, "merge task results", err)
	}
	return flattened, nil
}

func normalizeDomain(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.TrimPrefix(value, "https://")
	value = strings.TrimPrefix(value, "http://")
	value = strings.TrimPrefix(value, "www.")
	if idx := strings.Index(value, "/"); idx >= 0 {
		value = value[:idx]
	}
	return value
}
