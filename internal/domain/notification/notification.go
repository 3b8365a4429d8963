package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/shared"
)

// Kind categorizes notifications for client-side rendering
type Kind string

const (
	KindOrderPlaced   Kind = "ORDER_PLACED"
	KindOrderStatus   Kind = "ORDER_STATUS"
	KindReturnRequest Kind = "RETURN_REQUEST"
	KindReturnDecided Kind = "RETURN_DECIDED"
	KindLowStock      Kind = "LOW_STOCK"
	KindSystem        Kind = "SYSTEM"
)

// Notification is one inbox entry for a user
type Notification struct {
	shared.BaseEntity
	UserID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_notif_user_read,priority:1"`
	Kind    Kind       `gorm:"type:varchar(30);not null"`
	Title   string     `gorm:"type:varchar(200);not null"`
	Message string     `gorm:"type:varchar(1000)"`
	OrderID *uuid.UUID `gorm:"type:uuid"`
	ReadAt  *time.Time `gorm:"index:idx_notif_user_read,priority:2"`
}

// TableName returns the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}

// NewNotification creates an unread notification for a user
func NewNotification(userID uuid.UUID, kind Kind, title, message string, orderID *uuid.UUID) (*Notification, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Notification title cannot be empty")
	}

	return &Notification{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		Kind:       kind,
		Title:      title,
		Message:    message,
		OrderID:    orderID,
	}, nil
}

// MarkRead stamps the notification as read, idempotently
func (n *Notification) MarkRead() {
	if n.ReadAt == nil {
		now := time.Now()
		n.ReadAt = &now
		n.UpdatedAt = now
	}
}

// IsRead reports whether the notification has been read
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// NotificationRepository defines the persistence interface for notifications
type NotificationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (*shared.Paginated[Notification], error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	Save(ctx context.Context, n *Notification) error
	SaveAll(ctx context.Context, ns []*Notification) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}
