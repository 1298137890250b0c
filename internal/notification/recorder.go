// Package notification records in-app notifications raised by inventory and sales operations.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/stockroom/internal/model"
	"github.com/tuanvumaihuynh/stockroom/internal/repository"
)

type Event struct {
	Type         model.NotificationType
	Message      string
	RelatedTo    *uuid.UUID
	RelatedModel string
}

// Recorder stores events as notifications, dropping the types disabled in settings.
type Recorder struct {
	logger           *slog.Logger
	notificationRepo repository.NotificationRepository
	settingsRepo     repository.SettingsRepository
}

func NewRecorder(
	logger *slog.Logger,
	notificationRepo repository.NotificationRepository,
	settingsRepo repository.SettingsRepository,
) *Recorder {
	return &Recorder{
		logger:           logger.With(slog.String("component", "notification_recorder")),
		notificationRepo: notificationRepo,
		settingsRepo:     settingsRepo,
	}
}

func (r *Recorder) Publish(ctx context.Context, ev Event) error {
	settings, found, err := r.settingsRepo.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("settings repository get settings: %w", err)
	}
	if !found {
		settings = model.DefaultSettings()
	}

	if !settings.NotificationSettings.Allows(ev.Type) {
		r.logger.DebugContext(ctx, "notification disabled by settings", slog.String("type", string(ev.Type)))
		return nil
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate uuid v7: %w", err)
	}

	if err := r.notificationRepo.CreateNotification(ctx, model.Notification{
		ID:           id,
		Type:         ev.Type,
		Message:      ev.Message,
		RelatedTo:    ev.RelatedTo,
		RelatedModel: ev.RelatedModel,
		IsRead:       false,
		CreatedAt:    time.Now(),
	}); err != nil {
		return fmt.Errorf("notification repository create notification: %w", err)
	}

	return nil
}
