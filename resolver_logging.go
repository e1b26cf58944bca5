package world

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ResolveLevel grades a ResolveEvent.
type ResolveLevel int

const (
	LevelDebug ResolveLevel = iota
	LevelWarn
	LevelError
)

func (l ResolveLevel) String() string {
	switch l {
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "debug"
	}
}

// ResolveEvent describes one placeholder substitution or loop outcome.
type ResolveEvent struct {
	Level       ResolveLevel
	Kind        string
	Placeholder string
	Pass        int
	Value       string
	Duration    time.Duration
	Err         error
	Stack       []byte
}

// ResolveLogger records resolver events.
type ResolveLogger interface {
	LogResolve(ResolveEvent)
}

// ResolveLoggerFunc adapts a function to ResolveLogger.
type ResolveLoggerFunc func(ResolveEvent)

// LogResolve implements ResolveLogger.
func (f ResolveLoggerFunc) LogResolve(event ResolveEvent) {
	if f != nil {
		f(event)
	}
}

type noopResolveLogger struct{}

func (noopResolveLogger) LogResolve(ResolveEvent) {}

// SlogLogger forwards events to logger at the matching slog level.
func SlogLogger(logger *slog.Logger) ResolveLogger {
	if logger == nil {
		return noopResolveLogger{}
	}
	return ResolveLoggerFunc(func(event ResolveEvent) {
		level := slog.LevelDebug
		switch event.Level {
		case LevelWarn:
			level = slog.LevelWarn
		case LevelError:
			level = slog.LevelError
		}
		attrs := []slog.Attr{
			slog.String("kind", event.Kind),
			slog.String("placeholder", event.Placeholder),
			slog.Int("pass", event.Pass),
		}
		if event.Duration > 0 {
			attrs = append(attrs, slog.Duration("duration", event.Duration))
		}
		if event.Err != nil {
			attrs = append(attrs, slog.String("error", event.Err.Error()))
		}
		if len(event.Stack) > 0 {
			attrs = append(attrs, slog.String("stack", string(event.Stack)))
		}
		logger.LogAttrs(context.Background(), level, eventMessage(event), attrs...)
	})
}

func eventMessage(event ResolveEvent) string {
	switch {
	case errors.Is(event.Err, ErrNotConverged):
		return "template did not converge"
	case event.Err != nil:
		return "placeholder unresolved"
	default:
		return "placeholder resolved"
	}
}
