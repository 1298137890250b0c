package http

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/stockroom/internal/model"
	"github.com/tuanvumaihuynh/stockroom/internal/service"
)

type updateNotificationsRequest struct {
	MarkAllAsRead bool        `json:"markAllAsRead"`
	IDs           []uuid.UUID `json:"ids"`
	IsRead        *bool       `json:"isRead"`
}

type markNotificationRequest struct {
	IsRead *bool `json:"isRead"`
}

type listNotificationsResponse struct {
	Notifications []model.Notification `json:"notifications"`
	UnreadCount   int64                `json:"unreadCount"`
	Pagination    model.Pagination     `json:"pagination"`
}

func (s *Service) listNotifications(w http.ResponseWriter, r *http.Request) error {
	page, err := bindPage(r)
	if err != nil {
		return err
	}

	typ, err := queryValue[model.NotificationType](r, "type")
	if err != nil {
		return err
	}
	isRead, err := queryParam[bool](r, "isRead")
	if err != nil {
		return err
	}

	res, err := s.svcs.Notification.ListNotifications(r.Context(), service.ListNotificationsParams{
		Page:   page.Page,
		Limit:  page.Limit,
		Type:   typ,
		IsRead: isRead,
	})
	if err != nil {
		return fmt.Errorf("notification service list notifications: %w", err)
	}

	return s.writeJSON(w, r, http.StatusOK, listNotificationsResponse{
		Notifications: orEmpty(res.Notifications),
		UnreadCount:   res.UnreadCount,
		Pagination:    res.Pagination,
	})
}

func (s *Service) updateNotifications(w http.ResponseWriter, r *http.Request) error {
	var req updateNotificationsRequest
	if err := s.decodeBody(r, &req, false); err != nil {
		return err
	}

	msg, err := s.svcs.Notification.UpdateNotifications(r.Context(), service.UpdateNotificationsParams{
		MarkAllAsRead: req.MarkAllAsRead,
		IDs:           req.IDs,
		IsRead:        req.IsRead,
	})
	if err != nil {
		return fmt.Errorf("notification service update notifications: %w", err)
	}

	return s.writeJSON(w, r, http.StatusOK, messageResponse{Message: msg})
}

func (s *Service) markNotification(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "notification")
	if err != nil {
		return err
	}

	var req markNotificationRequest
	if err := s.decodeBody(r, &req, true); err != nil {
		return err
	}

	n, err := s.svcs.Notification.MarkNotification(r.Context(), id, req.IsRead)
	if err != nil {
		return fmt.Errorf("notification service mark notification: %w", err)
	}

	return s.writeJSON(w, r, http.StatusOK, n)
}

func (s *Service) deleteNotification(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "notification")
	if err != nil {
		return err
	}

	if err := s.svcs.Notification.DeleteNotification(r.Context(), id); err != nil {
		return fmt.Errorf("notification service delete notification: %w", err)
	}

	return s.writeJSON(w, r, http.StatusOK, messageResponse{Message: "Notification deleted successfully"})
}
