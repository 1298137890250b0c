package notification_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/stockroom/internal/model"
	"github.com/tuanvumaihuynh/stockroom/internal/notification"
	"github.com/tuanvumaihuynh/stockroom/internal/repository"
	"github.com/tuanvumaihuynh/stockroom/internal/storage/db"
)

type mockNotificationRepo struct {
	repository.NotificationRepository

	created   []model.Notification
	createErr error
}

func (m *mockNotificationRepo) CreateNotification(_ context.Context, n model.Notification) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, n)
	return nil
}

type mockSettingsRepo struct {
	settings *model.Settings
	err      error
}

func (m *mockSettingsRepo) WithDB(db.DB) repository.SettingsRepository { return m }

func (m *mockSettingsRepo) GetSettings(context.Context) (model.Settings, bool, error) {
	if m.err != nil {
		return model.Settings{}, false, m.err
	}
	if m.settings == nil {
		return model.Settings{}, false, nil
	}
	return *m.settings, true, nil
}

func (m *mockSettingsRepo) UpsertSettings(context.Context, model.Settings) error { return nil }

func newRecorder(notifications *mockNotificationRepo, settings *mockSettingsRepo) *notification.Recorder {
	return notification.NewRecorder(slog.New(slog.NewTextHandler(io.Discard, nil)), notifications, settings)
}

func TestRecorderPublish(t *testing.T) {
	ctx := context.Background()

	t.Run("Should store the event as an unread notification", func(t *testing.T) {
		notifications := &mockNotificationRepo{}
		r := newRecorder(notifications, &mockSettingsRepo{})
		saleID := uuid.New()

		err := r.Publish(ctx, notification.Event{
			Type:         model.NotificationTypeNewSale,
			Message:      "New sale recorded: INV-240101-0001 for $45.00",
			RelatedTo:    &saleID,
			RelatedModel: model.RelatedModelSale,
		})
		require.NoError(t, err)

		require.Len(t, notifications.created, 1)
		n := notifications.created[0]
		assert.NotEqual(t, uuid.Nil, n.ID)
		assert.Equal(t, model.NotificationTypeNewSale, n.Type)
		assert.Equal(t, saleID, *n.RelatedTo)
		assert.False(t, n.IsRead)
		assert.False(t, n.CreatedAt.IsZero())
	})

	t.Run("Should drop types disabled in settings", func(t *testing.T) {
		settings := model.DefaultSettings()
		settings.NotificationSettings.LowStock = false
		notifications := &mockNotificationRepo{}
		r := newRecorder(notifications, &mockSettingsRepo{settings: &settings})

		require.NoError(t, r.Publish(ctx, notification.Event{Type: model.NotificationTypeLowStock}))
		require.NoError(t, r.Publish(ctx, notification.Event{Type: model.NotificationTypeProductAdded}))

		require.Len(t, notifications.created, 1)
		assert.Equal(t, model.NotificationTypeProductAdded, notifications.created[0].Type)
	})

	t.Run("Should return store errors", func(t *testing.T) {
		r := newRecorder(&mockNotificationRepo{createErr: errors.New("db down")}, &mockSettingsRepo{})

		err := r.Publish(ctx, notification.Event{Type: model.NotificationTypeNewSale})
		assert.ErrorContains(t, err, "db down")

		r = newRecorder(&mockNotificationRepo{}, &mockSettingsRepo{err: errors.New("settings down")})
		err = r.Publish(ctx, notification.Event{Type: model.NotificationTypeNewSale})
		assert.ErrorContains(t, err, "settings down")
	})
}
