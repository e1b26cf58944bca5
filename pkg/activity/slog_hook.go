package activity

import (
	"context"
	"log/slog"
)

// LogHook writes every event to logger at debug level.
func LogHook(logger *slog.Logger) ActivityHook {
	return HookFunc(func(ctx context.Context, event Event) error {
		if logger == nil {
			return nil
		}
		attrs := []slog.Attr{
			slog.String("verb", event.Verb),
			slog.String("object_type", event.ObjectType),
			slog.String("object_id", event.ObjectID),
			slog.String("channel", event.Channel),
		}
		if event.ActorID != "" {
			attrs = append(attrs, slog.String("actor", event.ActorID))
		}
		if len(event.Metadata) > 0 {
			attrs = append(attrs, slog.Any("metadata", event.Metadata))
		}
		logger.LogAttrs(ctx, slog.LevelDebug, "document activity", attrs...)
		return nil
	})
}
