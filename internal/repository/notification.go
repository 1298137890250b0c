package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/stockroom/internal/apperr"
	"github.com/tuanvumaihuynh/stockroom/internal/model"
	"github.com/tuanvumaihuynh/stockroom/internal/storage/db"
)

type ListNotificationsParams struct {
	Type   model.NotificationType
	IsRead *bool
	Offset int
	Limit  int
}

type NotificationRepository interface {
	WithDB(db db.DB) NotificationRepository
	CreateNotification(ctx context.Context, n model.Notification) error
	ListNotifications(ctx context.Context, params ListNotificationsParams) ([]model.Notification, int64, error)
	CountUnread(ctx context.Context) (int64, error)
	// MarkNotifications sets is_read on the given ids, or on every notification when ids is nil.
	MarkNotifications(ctx context.Context, ids []uuid.UUID, isRead bool) (int64, error)
	MarkNotification(ctx context.Context, id uuid.UUID, isRead bool) (model.Notification, error)
	DeleteNotification(ctx context.Context, id uuid.UUID) error
}

type notificationRepository struct {
	db db.DB
}

func NewNotificationRepository(db db.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r notificationRepository) WithDB(db db.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r notificationRepository) CreateNotification(ctx context.Context, n model.Notification) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO notifications (id, type, message, related_to, related_model, is_read, created_at)
		VALUES (@id, @type, @message, @related_to, @related_model, @is_read, @created_at)
	`, pgx.NamedArgs{
		"id":            n.ID,
		"type":          string(n.Type),
		"message":       n.Message,
		"related_to":    n.RelatedTo,
		"related_model": n.RelatedModel,
		"is_read":       n.IsRead,
		"created_at":    n.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r notificationRepository) ListNotifications(ctx context.Context, params ListNotificationsParams) ([]model.Notification, int64, error) {
	const filter = `
		WHERE (@type = '' OR type = @type)
			AND (@is_read::boolean IS NULL OR is_read = @is_read::boolean)
	`
	args := pgx.NamedArgs{
		"type":    string(params.Type),
		"is_read": params.IsRead,
		"offset":  params.Offset,
		"limit":   params.Limit,
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM notifications `+filter, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+selectNotificationColumns+`
		FROM notifications `+filter+`
		ORDER BY created_at DESC, id
		OFFSET @offset LIMIT @limit
	`, args)
	if err != nil {
		return nil, 0, fmt.Errorf("select notifications: %w", err)
	}

	notifications, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Notification, error) {
		return scanNotification(row)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("collect notifications: %w", err)
	}

	return notifications, total, nil
}

func (r notificationRepository) CountUnread(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE NOT is_read`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (r notificationRepository) MarkNotifications(ctx context.Context, ids []uuid.UUID, isRead bool) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE notifications
		SET is_read = @is_read
		WHERE @ids::uuid[] IS NULL OR id = ANY(@ids::uuid[])
	`, pgx.NamedArgs{
		"ids":     ids,
		"is_read": isRead,
	})
	if err != nil {
		return 0, fmt.Errorf("mark notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r notificationRepository) MarkNotification(ctx context.Context, id uuid.UUID, isRead bool) (model.Notification, error) {
	n, err := scanNotification(r.db.QueryRow(ctx, `
		UPDATE notifications
		SET is_read = $2
		WHERE id = $1
		RETURNING `+selectNotificationColumns, id, isRead))
	if err != nil {
		if db.IsNoRows(err) {
			return model.Notification{}, apperr.NotificationNotFoundErr.WithMsgf("notification %s not found", id)
		}
		return model.Notification{}, fmt.Errorf("mark notification: %w", err)
	}
	return n, nil
}

func (r notificationRepository) DeleteNotification(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotificationNotFoundErr.WithMsgf("notification %s not found", id)
	}
	return nil
}

const selectNotificationColumns = `id, type, message, related_to, related_model, is_read, created_at`

func scanNotification(row pgx.Row) (model.Notification, error) {
	var (
		n   model.Notification
		typ string
	)
	err := row.Scan(&n.ID, &typ, &n.Message, &n.RelatedTo, &n.RelatedModel, &n.IsRead, &n.CreatedAt)
	n.Type = model.NotificationType(typ)
	return n, err
}
