package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/stockroom/internal/apperr"
	"github.com/tuanvumaihuynh/stockroom/internal/model"
	"github.com/tuanvumaihuynh/stockroom/internal/repository"
)

type ListNotificationsParams struct {
	Page   int
	Limit  int
	Type   model.NotificationType
	IsRead *bool
}

type ListNotificationsResult struct {
	Notifications []model.Notification
	UnreadCount   int64
	Pagination    model.Pagination
}

// UpdateNotificationsParams either marks everything read or sets IsRead (default true) on IDs.
type UpdateNotificationsParams struct {
	MarkAllAsRead bool
	IDs           []uuid.UUID
	IsRead        *bool
}

type NotificationService interface {
	ListNotifications(ctx context.Context, params ListNotificationsParams) (ListNotificationsResult, error)
	UpdateNotifications(ctx context.Context, params UpdateNotificationsParams) (string, error)
	MarkNotification(ctx context.Context, id uuid.UUID, isRead *bool) (model.Notification, error)
	DeleteNotification(ctx context.Context, id uuid.UUID) error
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
}

func NewNotificationService(notificationRepo repository.NotificationRepository) NotificationService {
	return &notificationService{notificationRepo: notificationRepo}
}

func (s *notificationService) ListNotifications(ctx context.Context, params ListNotificationsParams) (ListNotificationsResult, error) {
	page, limit, offset := pageBounds(params.Page, params.Limit, 20)

	notifications, total, err := s.notificationRepo.ListNotifications(ctx, repository.ListNotificationsParams{
		Type:   params.Type,
		IsRead: params.IsRead,
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return ListNotificationsResult{}, fmt.Errorf("notification repository list notifications: %w", err)
	}

	unread, err := s.notificationRepo.CountUnread(ctx)
	if err != nil {
		return ListNotificationsResult{}, fmt.Errorf("notification repository count unread: %w", err)
	}

	return ListNotificationsResult{
		Notifications: notifications,
		UnreadCount:   unread,
		Pagination:    model.NewPagination(total, page, limit),
	}, nil
}

func (s *notificationService) UpdateNotifications(ctx context.Context, params UpdateNotificationsParams) (string, error) {
	if params.MarkAllAsRead {
		if _, err := s.notificationRepo.MarkNotifications(ctx, nil, true); err != nil {
			return "", fmt.Errorf("notification repository mark notifications: %w", err)
		}
		return "All notifications marked as read", nil
	}

	if params.IDs == nil {
		return "", apperr.InvalidNotificationErr
	}

	isRead := params.IsRead == nil || *params.IsRead
	if _, err := s.notificationRepo.MarkNotifications(ctx, params.IDs, isRead); err != nil {
		return "", fmt.Errorf("notification repository mark notifications: %w", err)
	}

	return "Notifications updated successfully", nil
}

func (s *notificationService) MarkNotification(ctx context.Context, id uuid.UUID, isRead *bool) (model.Notification, error) {
	n, err := s.notificationRepo.MarkNotification(ctx, id, isRead == nil || *isRead)
	if err != nil {
		return model.Notification{}, fmt.Errorf("notification repository mark notification: %w", err)
	}
	return n, nil
}

func (s *notificationService) DeleteNotification(ctx context.Context, id uuid.UUID) error {
	if err := s.notificationRepo.DeleteNotification(ctx, id); err != nil {
		return fmt.Errorf("notification repository delete notification: %w", err)
	}
	return nil
}
