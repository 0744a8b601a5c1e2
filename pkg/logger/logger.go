// Package logger builds the process-wide *slog.Logger for Campus Social and
// provides attribute helpers so the same keys are used everywhere.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the handler.
type Format string

const (
	// FormatJSON is used in production (log aggregators).
	FormatJSON Format = "json"
	// FormatText is used in development.
	FormatText Format = "text"
)

// ParseLevel parses a level name. Unknown names yield Info.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Options configures the logger.
type Options struct {
	Output    io.Writer
	Level     slog.Level
	Format    Format
	AddSource bool

	// Service is attached to every record when set.
	Service string
}

// DefaultOptions returns text output at Info level on stdout.
func DefaultOptions() Options {
	return Options{
		Output: os.Stdout,
		Level:  slog.LevelInfo,
		Format: FormatText,
	}
}

// New creates a logger from opts.
func New(opts Options) *slog.Logger {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     opts.Level,
		AddSource: opts.AddSource,
	}

	var handler slog.Handler
	if opts.Format == FormatJSON {
		handler = slog.NewJSONHandler(opts.Output, handlerOpts)
	} else {
		handler = slog.NewTextHandler(opts.Output, handlerOpts)
	}

	l := slog.New(handler)
	if opts.Service != "" {
		l = l.With(slog.String("service", opts.Service))
	}
	return l
}

// ForEnvironment picks JSON in production and text elsewhere.
func ForEnvironment(env string, level slog.Level) Options {
	opts := DefaultOptions()
	opts.Level = level
	if env == "production" {
		opts.Format = FormatJSON
	}
	return opts
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Context key for logger.
type ctxKey struct{}

// WithContext returns a new context with the logger attached.
func WithContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext retrieves the logger from context, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// Campus Social attribute helpers.
func UserID(id int64) slog.Attr { return slog.Int64("user_id", id) }
func PostID(id int64) slog.Attr { return slog.Int64("post_id", id) }
func Role(role string) slog.Attr { return slog.String("role", role) }
func Event(name string) slog.Attr { return slog.String("event", name) }
func Component(name string) slog.Attr { return slog.String("component", name) }
func Operation(name string) slog.Attr { return slog.String("operation", name) }

// Err creates an error attribute. A nil error yields an empty attribute,
// which slog drops.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}
