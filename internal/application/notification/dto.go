package notification

import (
	"time"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/notification"
)

// NotificationListFilter pages through a user's inbox
type NotificationListFilter struct {
	Page       int  `form:"page"`
	PageSize   int  `form:"page_size"`
	UnreadOnly bool `form:"unread"`
}

// NotificationResponse is one inbox entry as seen by the client
type NotificationResponse struct {
	ID        uuid.UUID  `json:"id"`
	Kind      string     `json:"kind"`
	Title     string     `json:"title"`
	Message   string     `json:"message,omitempty"`
	OrderID   *uuid.UUID `json:"order_id,omitempty"`
	Read      bool       `json:"read"`
	CreatedAt time.Time  `json:"created_at"`
}

// ToNotificationResponse maps a notification to its client view
func ToNotificationResponse(n *notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Kind:      string(n.Kind),
		Title:     n.Title,
		Message:   n.Message,
		OrderID:   n.OrderID,
		Read:      n.IsRead(),
		CreatedAt: n.CreatedAt,
	}
}

// ToNotificationResponses maps a slice of notifications
func ToNotificationResponses(items []notification.Notification) []NotificationResponse {
	responses := make([]NotificationResponse, 0, len(items))
	for idx := range items {
		responses = append(responses, ToNotificationResponse(&items[idx]))
	}
	return responses
}
