// Package notify delivers transient success and error notices to staff.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"groom-admin-backend/internal/models"
)

// Display durations of the dashboard toasts.
const (
	SuccessDuration = 2 * time.Second
	ErrorDuration   = 5 * time.Second
)

type Notifier interface {
	Notify(ctx context.Context, n models.Notice)
}

func Success(message string) models.Notice {
	return models.Notice{
		Level:      models.NoticeSuccess,
		Message:    message,
		DurationMS: SuccessDuration.Milliseconds(),
	}
}

func Failure(message string) models.Notice {
	return models.Notice{
		Level:      models.NoticeError,
		Message:    message,
		DurationMS: ErrorDuration.Milliseconds(),
	}
}

// Collector keeps the notices raised while serving one request so they can
// be returned in the response body.
type Collector struct {
	mu      sync.Mutex
	notices []models.Notice
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Notify(_ context.Context, n models.Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, n)
}

// Notices returns a copy of everything collected so far.
func (c *Collector) Notices() []models.Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Notice(nil), c.notices...)
}

// Logger writes notices to a structured logger.
type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

func (l *Logger) Notify(ctx context.Context, n models.Notice) {
	level := slog.LevelInfo
	if n.Level == models.NoticeError {
		level = slog.LevelWarn
	}
	l.logger.Log(ctx, level, "notice", "level", string(n.Level), "message", n.Message)
}

// Multi fans a notice out to every notifier in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n models.Notice) {
	for _, notifier := range m {
		if notifier != nil {
			notifier.Notify(ctx, n)
		}
	}
}

// Discard drops every notice.
type Discard struct{}

func (Discard) Notify(context.Context, models.Notice) {}
