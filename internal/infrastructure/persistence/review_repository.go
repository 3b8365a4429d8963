package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/review"
	"github.com/locallift/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormReviewRepository implements ReviewRepository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// FindByID finds a review by ID
func (r *GormReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*review.Review, error) {
	var rev review.Review
	if err := r.db.WithContext(ctx).First(&rev, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rev, nil
}

// FindByProduct returns a product's reviews, newest first
func (r *GormReviewRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) (*shared.Paginated[review.Review], error) {
	query := r.db.WithContext(ctx).Model(&review.Review{}).
		Where("product_id = ?", productID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var reviews []review.Review
	if err := applyFilter(query, filter).Find(&reviews).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(reviews, total, filter.Page, filter.PageSize)
	return &result, nil
}

// FindByUserAndProduct finds the one review a user may have for a product
func (r *GormReviewRepository) FindByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*review.Review, error) {
	var rev review.Review
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&rev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rev, nil
}

// ExistsByUserAndProduct reports whether the user already reviewed the product
func (r *GormReviewRepository) ExistsByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&review.Review{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	return count > 0, err
}

// StatsForProduct aggregates average rating and review count in one query
func (r *GormReviewRepository) StatsForProduct(ctx context.Context, productID uuid.UUID) (review.Stats, error) {
	var row struct {
		Average float64
		Count   int
	}
	err := r.db.WithContext(ctx).Model(&review.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&row).Error
	if err != nil {
		return review.Stats{}, err
	}
	return review.Stats{Average: row.Average, Count: row.Count}, nil
}

// Save creates or updates a review
func (r *GormReviewRepository) Save(ctx context.Context, rev *review.Review) error {
	return r.db.WithContext(ctx).Save(rev).Error
}

// Delete removes a review
func (r *GormReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&review.Review{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ review.ReviewRepository = (*GormReviewRepository)(nil)
