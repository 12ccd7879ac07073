package notify

import (
	"context"
	"sync"
	"time"
)

// Capture is a Service that records every message for assertions in tests.
type Capture struct {
	mu       sync.Mutex
	messages []string
	Err      error
}

// NewCapture constructs a recording notification service.
func NewCapture() *Capture {
	return &Capture{}
}

// Messages returns a copy of everything sent so far.
func (c *Capture) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make([]string, len(c.messages))
	copy(cp, c.messages)
	return cp
}

func (c *Capture) record(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, text)
	return c.Err
}

func (c *Capture) NotifyRunStarted(_ context.Context, workflowName string, pending int) error {
	return c.record(runSummaryText(workflowName, 0, 0, pending, 0))
}

func (c *Capture) NotifyRunCompleted(_ context.Context, workflowName string, processed, failed, skipped int, duration time.Duration) error {
	return c.record(runSummaryText(workflowName, processed, failed, skipped, duration))
}

func (c *Capture) NotifyError(_ context.Context, err error, contextLabel string) error {
	return c.record(errorText(err, contextLabel))
}

func (c *Capture) TestNotification(context.Context) error {
	return c.record("test")
}
