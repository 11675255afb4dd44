// Package notify delivers human-facing summaries of completed operations.
//
// Notifiers are advisory: they never affect outcomes, and implementations
// must swallow their own failures.
package notify

import (
	"context"
	"log/slog"
)

// Notifier receives a one-line summary after an operation completes.
type Notifier interface {
	Notify(ctx context.Context, summary string)
}

// LogNotifier writes summaries through a slog.Logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a Notifier backed by the given logger. A nil logger
// uses slog.Default.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs the summary at info level.
func (n *LogNotifier) Notify(ctx context.Context, summary string) {
	n.logger.InfoContext(ctx, summary)
}

// Nop discards all notifications.
type Nop struct{}

// Notify does nothing.
func (Nop) Notify(context.Context, string) {}
