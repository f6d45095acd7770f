// Package notify delivers user-facing toasts for mutation outcomes.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notification is a one-time message for the operator.
type Notification struct {
	ID      string    `json:"id"`
	Kind    Kind      `json:"kind"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier receives mutation outcomes.
type Notifier interface {
	Success(ctx context.Context, title, message string)
	Error(ctx context.Context, title, message string)
}

// DefaultQueueSize bounds a Queue created with a non-positive size.
const DefaultQueueSize = 50

// Queue keeps the most recent notifications until they are popped.
type Queue struct {
	mu    sync.Mutex
	items []Notification
	size  int
	now   func() time.Time
}

// NewQueue returns a queue holding at most size notifications; older ones
// are dropped first.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{size: size, now: time.Now}
}

func (q *Queue) Success(_ context.Context, title, message string) {
	q.push(KindSuccess, title, message)
}

func (q *Queue) Error(_ context.Context, title, message string) {
	q.push(KindError, title, message)
}

func (q *Queue) push(kind Kind, title, message string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, Notification{
		ID:      uuid.NewString(),
		Kind:    kind,
		Title:   title,
		Message: message,
		At:      q.now(),
	})
	if over := len(q.items) - q.size; over > 0 {
		q.items = q.items[over:]
	}
}

// Pop removes and returns the oldest notification.
func (q *Queue) Pop() (Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return Notification{}, false
	}
	n := q.items[0]
	q.items = q.items[1:]
	return n, true
}

// Drain removes and returns every queued notification, oldest first.
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}

// Len reports the number of queued notifications.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Log writes notifications to a structured logger.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) Success(ctx context.Context, title, message string) {
	l.logger.InfoContext(ctx, title, "message", message)
}

func (l *Log) Error(ctx context.Context, title, message string) {
	l.logger.WarnContext(ctx, title, "message", message)
}

// Multi fans out to every notifier in order.
type Multi []Notifier

func (m Multi) Success(ctx context.Context, title, message string) {
	for _, n := range m {
		if n != nil {
			n.Success(ctx, title, message)
		}
	}
}

func (m Multi) Error(ctx context.Context, title, message string) {
	for _, n := range m {
		if n != nil {
			n.Error(ctx, title, message)
		}
	}
}

// Discard drops every notification.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Success(context.Context, string, string) {}
func (discard) Error(context.Context, string, string)   {}
