package mailer

import (
	"context"
	"sync"
)

// MemoryDispatcher records messages instead of delivering them. Useful for
// tests. Not intended for production use.
type MemoryDispatcher struct {
	mu   sync.Mutex
	sent []Message
}

func NewMemoryDispatcher() *MemoryDispatcher { return &MemoryDispatcher{} }

func (d *MemoryDispatcher) Dispatch(ctx context.Context, msg Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, msg)
	return nil
}

func (d *MemoryDispatcher) Sent() []Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Message, len(d.sent))
	copy(out, d.sent)
	return out
}
