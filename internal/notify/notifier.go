// Package notify delivers operational notices (startup success, fatal startup
// failures) to an out-of-band channel.
package notify

import (
	"context"
	"log/slog"
)

// Severity selects the presentation of a notice.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "info"
}

// Field is an extra key/value line attached to a notice.
type Field struct {
	Title  string
	Value  string
	Inline bool
}

// Notifier posts a notice. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(ctx context.Context, severity Severity, title, message string, fields ...Field) error
}

// LogNotifier writes notices to a structured logger. It is used when no
// webhook is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a LogNotifier writing to logger.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger.With("component", "notify")}
}

func (n *LogNotifier) Notify(ctx context.Context, severity Severity, title, message string, fields ...Field) error {
	attrs := []any{"title", title}
	for _, f := range fields {
		attrs = append(attrs, f.Title, f.Value)
	}
	level := slog.LevelInfo
	if severity == SeverityError {
		level = slog.LevelError
	}
	n.logger.Log(ctx, level, message, attrs...)
	return nil
}
