package console

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ToastLevel is the severity of a toast notification.
type ToastLevel string

const (
	ToastInfo    ToastLevel = "info"
	ToastSuccess ToastLevel = "success"
	ToastWarning ToastLevel = "warning"
	ToastError   ToastLevel = "error"
)

const sessionExpiredMessage = "Your session has expired. Please sign in again."

// Toast is a transient, non-blocking notification shown to the viewer.
type Toast struct {
	ID      string     `json:"id"`
	Level   ToastLevel `json:"level"`
	Message string     `json:"message"`
	At      time.Time  `json:"at"`
}

// Notifier surfaces toasts to the viewer.
type Notifier interface {
	Notify(ctx context.Context, level ToastLevel, message string)
}

// NotifierFunc adapts a function into a Notifier.
type NotifierFunc func(ctx context.Context, level ToastLevel, message string)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, level ToastLevel, message string) {
	f(ctx, level, message)
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, ToastLevel, string) {}

func normalizeNotifier(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

// ToastQueue collects toasts raised while serving one request.
type ToastQueue struct {
	mu     sync.Mutex
	toasts []Toast
	now    func() time.Time
}

// NewToastQueue creates an empty queue.
func NewToastQueue() *ToastQueue {
	return &ToastQueue{now: time.Now}
}

// Notify appends a toast.
func (q *ToastQueue) Notify(_ context.Context, level ToastLevel, message string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.toasts = append(q.toasts, Toast{
		ID:      uuid.NewString(),
		Level:   level,
		Message: message,
		At:      q.now(),
	})
}

// Toasts returns a copy of the queued toasts.
func (q *ToastQueue) Toasts() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Toast(nil), q.toasts...)
}

// Drain returns the queued toasts and empties the queue.
func (q *ToastQueue) Drain() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.toasts
	q.toasts = nil
	return out
}

// Count returns the number of queued toasts at level, or all toasts when level is empty.
func (q *ToastQueue) Count(level ToastLevel) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if level == "" {
		return len(q.toasts)
	}
	n := 0
	for _, toast := range q.toasts {
		if toast.Level == level {
			n++
		}
	}
	return n
}

// failureMessage picks the toast text for a failed backend call.
func failureMessage(err error, fallback string) string {
	var auth unauthorizedError
	if errors.As(err, &auth) && auth.Unauthorized() {
		return sessionExpiredMessage
	}
	return fallback
}
