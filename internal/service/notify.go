package service

import (
	"context"
	"log/slog"

	"github.com/tuanvumaihuynh/stockroom/internal/notification"
)

// NotificationSink receives events once the transaction that raised them has committed.
type NotificationSink interface {
	Publish(ctx context.Context, ev notification.Event) error
}

// publishAll never fails: a lost notification must not undo a committed write.
func publishAll(ctx context.Context, logger *slog.Logger, sink NotificationSink, events []notification.Event) {
	for _, ev := range events {
		if err := sink.Publish(ctx, ev); err != nil {
			logger.ErrorContext(ctx, "error publishing notification",
				slog.String("type", string(ev.Type)),
				slog.String("message", ev.Message),
				slog.Any("error", err),
			)
		}
	}
}
