package wordpress

import (
	"context"
	"fmt"
	"sync"
)

// Fake is an in-memory Service for dry-run mode and tests.
type Fake struct {
	mu     sync.Mutex
	nextID int64
	posts  []Post
	Err    error
}

// NewFake constructs a publishing fake.
func NewFake() *Fake {
	return &Fake{nextID: 100}
}

// Posts returns a copy of every post published.
func (f *Fake) Posts() []Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]Post, len(f.posts))
	copy(cp, f.posts)
	return cp
}

// Publish implements Service.
func (f *Fake) Publish(ctx context.Context, post Post) (Published, error) {
	if err := ctx.Err(); err != nil {
		return Published{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return Published{}, f.Err
	}
	f.nextID++
	f.posts = append(f.posts, post)
	slug := post.Slug
	if slug == "" {
		slug = fmt.Sprintf("post-%d", f.nextID)
	}
	return Published{
		ID:   f.nextID,
		URL:  "https://example.com/" + slug,
		Slug: slug,
	}, nil
}
