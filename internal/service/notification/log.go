package notification

import (
	"context"
	"log/slog"

	"github.com/samber/lo"
)

// LogSink 只打日志, 用于本地调试和 dry run
type LogSink struct{}

func (LogSink) Deliver(ctx context.Context, destination string, msg Message) error {
	slog.InfoContext(ctx, "notification", "destination", destination, "title", msg.Title,
		"fields", lo.Map(msg.Fields, func(f Field, _ int) string { return f.Name + ": " + f.Value }))
	return nil
}
