package imagegen

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"sync"
)

// Fake is an in-memory Service for dry-run mode and tests. URLs are derived
// from the prompt so reruns see identical assets.
type Fake struct {
	mu      sync.Mutex
	prompts []string
	Err     error
}

// NewFake constructs an image generation fake.
func NewFake() *Fake {
	return &Fake{}
}

// Prompts returns a copy of every prompt seen.
func (f *Fake) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]string, len(f.prompts))
	copy(cp, f.prompts)
	return cp
}

// Generate implements Service.
func (f *Fake) Generate(ctx context.Context, prompt string) (Image, error) {
	if err := ctx.Err(); err != nil {
		return Image{}, err
	}
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.Err != nil {
		return Image{}, f.Err
	}
	sum := sha1.Sum([]byte(strings.TrimSpace(prompt)))
	return Image{URL: "https://images.invalid/" + hex.EncodeToString(sum[:8]) + ".png"}, nil
}
