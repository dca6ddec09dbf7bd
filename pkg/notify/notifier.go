// Package notify delivers fire-and-forget user notifications. Sinks must
// never block statement execution.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Notification is one user-facing message with an auto-dismiss duration.
type Notification struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Message   string        `json:"message"`
	Duration  time.Duration `json:"durationMs"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Notifier is the sink interface the gateway emits into.
type Notifier interface {
	Notify(title, message string, duration time.Duration)
}

// LogSink writes notifications to a zerolog logger.
type LogSink struct {
	log zerolog.Logger
}

// NewLogSink creates a logging sink.
func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

// Notify implements Notifier.
func (s *LogSink) Notify(title, message string, duration time.Duration) {
	s.log.Info().
		Str("title", title).
		Dur("duration", duration).
		Msg(message)
}

// Buffer is a bounded in-memory sink drained by the notifications API.
// When full, the oldest entries are dropped; delivery is best effort.
type Buffer struct {
	mu       sync.Mutex
	items    []Notification
	capacity int
}

// NewBuffer creates a buffer holding at most capacity notifications.
func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 16
	}
	return &Buffer{capacity: capacity}
}

// Notify implements Notifier.
func (b *Buffer) Notify(title, message string, duration time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.items) >= b.capacity {
		b.items = b.items[1:]
	}
	b.items = append(b.items, Notification{
		ID:        uuid.NewString(),
		Title:     title,
		Message:   message,
		Duration:  duration,
		CreatedAt: time.Now().UTC(),
	})
}

// Drain returns and clears all pending notifications.
func (b *Buffer) Drain() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.items
	b.items = nil
	return out
}

// Multi fans a notification out to several sinks.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(title, message string, duration time.Duration) {
	for _, n := range m {
		n.Notify(title, message, duration)
	}
}
