package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/notification"
	"github.com/locallift/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// NotificationService serves a user's inbox. Entries are created by the
// event handlers in this package, never directly by API calls.
type NotificationService struct {
	repo   notification.NotificationRepository
	logger *zap.Logger
}

func NewNotificationService(repo notification.NotificationRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		repo:   repo,
		logger: logger.Named("notification-service"),
	}
}

// List returns the user's notifications, newest first
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, filter NotificationListFilter) (*shared.Paginated[NotificationResponse], error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.UnreadOnly {
		domainFilter.Filters["unread"] = true
	}

	page, err := s.repo.FindByUser(ctx, userID, domainFilter)
	if err != nil {
		return nil, err
	}

	return &shared.Paginated[NotificationResponse]{
		Items:      ToNotificationResponses(page.Items),
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

// UnreadCount returns the badge count for the user's inbox
func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead marks one notification as read. Only the owner may do so.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	n, err := s.repo.FindByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return shared.ErrForbidden
	}
	if n.IsRead() {
		return nil
	}
	n.MarkRead()
	return s.repo.Save(ctx, n)
}

// MarkAllRead clears the user's unread badge in one statement
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, userID)
}

// Prune deletes notifications older than the retention window. Meant to
// be called from a maintenance loop, not the API.
func (s *NotificationService) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	deleted, err := s.repo.DeleteOlderThan(ctx, time.Now().Add(-retention))
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("pruned notifications", zap.Int64("deleted", deleted))
	}
	return deleted, nil
}
