package dto

import "github.com/SscSPs/ebank_backoffice/internal/core/domain"

// ListNotificationsParams defines query parameters for listing notifications.
type ListNotificationsParams struct {
	UnreadOnly bool `form:"unreadOnly"`
}

// NotificationCountsResponse reports inbox counters.
type NotificationCountsResponse struct {
	Total  int64 `json:"total"`
	Unread int64 `json:"unread"`
}

// ListNotificationsResponse wraps a user's notifications.
type ListNotificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
}
