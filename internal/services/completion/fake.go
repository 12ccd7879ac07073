package completion

import (
	"context"
	"sync"
)

// defaultFakePayload carries every field name the workflows parse so a
// single canned response satisfies any JSON schema in the pipeline.
const defaultFakePayload = `{
  "keywords": ["dry run keyword one", "dry run keyword two", "dry run keyword three"],
  "gaps": [{"topic": "dry run gap topic", "competitor": "example.com", "opportunity": "underserved"}],
  "title": "Dry Run Article Title",
  "slug": "dry-run-article-title",
  "angle": "practical guide",
  "audience": "general readers",
  "meta_description": "A dry run meta description for pipeline verification.",
  "outline": ["Introduction", "Main Section", "Conclusion"],
  "cluster": "dry run cluster",
  "body": "Dry run article body used to exercise the pipeline without a live model.",
  "score": 85,
  "findings": [],
  "image_prompt": "A clean illustrative image for a dry run article.",
  "alt_text": "Dry run illustration",
  "posts": [{"platform": "linkedin", "text": "Dry run social post."}],
  "subject": "Dry run email subject",
  "preview": "Dry run preview text",
  "email_body": "Dry run email body.",
  "tier": "warm",
  "recommendations": ["Keep publishing consistently."],
  "ok": true
}`

// FakeCall records one request made against the fake.
type FakeCall struct {
	SystemPrompt string
	UserPrompt   string
	JSONOnly     bool
}

// Fake is an in-memory Service for dry-run mode and tests. Scripted
// responses are consumed in order; once exhausted (or when none are
// scripted) the default payload is returned.
type Fake struct {
	mu      sync.Mutex
	queue   []string
	calls   []FakeCall
	Default string
	Err     error
}

// NewFake constructs a fake seeded with optional scripted responses.
func NewFake(responses ...string) *Fake {
	return &Fake{queue: append([]string(nil), responses...), Default: defaultFakePayload}
}

// Enqueue appends a scripted response.
func (f *Fake) Enqueue(payload string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, payload)
}

// Calls returns a copy of the recorded requests.
func (f *Fake) Calls() []FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]FakeCall, len(f.calls))
	copy(cp, f.calls)
	return cp
}

// Complete implements Service.
func (f *Fake) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f.next(ctx, systemPrompt, userPrompt, false)
}

// CompleteJSON implements Service.
func (f *Fake) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f.next(ctx, systemPrompt, userPrompt, true)
}

// HealthCheck implements Service.
func (f *Fake) HealthCheck(ctx context.Context) error {
	return f.Err
}

func (f *Fake) next(ctx context.Context, systemPrompt, userPrompt string, jsonOnly bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, FakeCall{SystemPrompt: systemPrompt, UserPrompt: userPrompt, JSONOnly: jsonOnly})
	if f.Err != nil {
		return "", f.Err
	}
	if len(f.queue) > 0 {
		payload := f.queue[0]
		f.queue = f.queue[1:]
		return payload, nil
	}
	return f.Default, nil
}
