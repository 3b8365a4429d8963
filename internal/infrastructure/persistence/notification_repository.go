package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/notification"
	"github.com/locallift/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormNotificationRepository implements NotificationRepository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// FindByID finds a notification by ID
func (r *GormNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	var n notification.Notification
	if err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// FindByUser returns a user's notifications, newest first. An "unread"
// filter restricts the query to unread entries.
func (r *GormNotificationRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (*shared.Paginated[notification.Notification], error) {
	query := r.db.WithContext(ctx).Model(&notification.Notification{}).
		Where("user_id = ?", userID)
	if unread, ok := filter.Filters["unread"].(bool); ok && unread {
		query = query.Where("read_at IS NULL")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var notifications []notification.Notification
	if err := applyFilter(query, filter).Find(&notifications).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(notifications, total, filter.Page, filter.PageSize)
	return &result, nil
}

// CountUnread counts a user's unread notifications
func (r *GormNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&notification.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}

// Save creates or updates a notification
func (r *GormNotificationRepository) Save(ctx context.Context, n *notification.Notification) error {
	return r.db.WithContext(ctx).Save(n).Error
}

// SaveAll inserts a batch of notifications, used by event-driven fan-out
func (r *GormNotificationRepository) SaveAll(ctx context.Context, ns []*notification.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&ns).Error
}

// MarkAllRead marks all of a user's unread notifications as read
func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&notification.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Updates(map[string]interface{}{
			"read_at":    now,
			"updated_at": now,
		}).Error
}

// DeleteOlderThan prunes notifications created before the cutoff, returning
// the number of rows removed
func (r *GormNotificationRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", before).
		Delete(&notification.Notification{})
	return result.RowsAffected, result.Error
}

var _ notification.NotificationRepository = (*GormNotificationRepository)(nil)
