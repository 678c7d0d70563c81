package telemetry

import (
	"context"
	"fmt"
	"log/slog"
)

// errorFormattingMiddleware rewrites error attributes into a group carrying
// the message and the concrete type, so JSON output never shows "{}".
func errorFormattingMiddleware(ctx context.Context, record slog.Record, next func(context.Context, slog.Record) error) error {
	formatted := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		formatted.AddAttrs(formatErrorAttr(attr))
		return true
	})
	return next(ctx, formatted)
}

func formatErrorAttr(attr slog.Attr) slog.Attr {
	if attr.Value.Kind() != slog.KindAny {
		return attr
	}
	err, ok := attr.Value.Any().(error)
	if !ok || err == nil {
		return attr
	}
	return slog.Group(attr.Key,
		slog.String("msg", err.Error()),
		slog.String("type", fmt.Sprintf("%T", err)),
	)
}
