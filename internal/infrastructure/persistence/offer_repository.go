package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/promotion"
	"github.com/locallift/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormOfferRepository implements OfferRepository using GORM
type GormOfferRepository struct {
	db *gorm.DB
}

// NewGormOfferRepository creates a new GormOfferRepository
func NewGormOfferRepository(db *gorm.DB) *GormOfferRepository {
	return &GormOfferRepository{db: db}
}

// FindByID finds an offer by ID
func (r *GormOfferRepository) FindByID(ctx context.Context, id uuid.UUID) (*promotion.Offer, error) {
	var offer promotion.Offer
	if err := r.db.WithContext(ctx).First(&offer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &offer, nil
}

// FindByCode finds an offer by its code. Codes are stored uppercased.
func (r *GormOfferRepository) FindByCode(ctx context.Context, code string) (*promotion.Offer, error) {
	var offer promotion.Offer
	err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&offer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &offer, nil
}

// FindAll finds offers matching the filter, for admin views
func (r *GormOfferRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[promotion.Offer], error) {
	query := r.db.WithContext(ctx).Model(&promotion.Offer{})
	if filter.Search != "" {
		pattern := "%" + strings.ToUpper(filter.Search) + "%"
		query = query.Where("code LIKE ?", pattern)
	}
	if status, ok := filter.Filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var offers []promotion.Offer
	if err := applyFilter(query, filter).Find(&offers).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(offers, total, filter.Page, filter.PageSize)
	return &result, nil
}

// FindActive returns offers that are active and inside their validity window
func (r *GormOfferRepository) FindActive(ctx context.Context) ([]promotion.Offer, error) {
	now := time.Now()
	var offers []promotion.Offer
	err := r.db.WithContext(ctx).
		Where("status = ? AND start_date <= ? AND expiry_date > ?", promotion.OfferStatusActive, now, now).
		Order("expiry_date ASC").
		Find(&offers).Error
	return offers, err
}

// ExistsByCode reports whether an offer with the code already exists
func (r *GormOfferRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&promotion.Offer{}).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		Count(&count).Error
	return count > 0, err
}

// Save creates or updates an offer
func (r *GormOfferRepository) Save(ctx context.Context, offer *promotion.Offer) error {
	return r.db.WithContext(ctx).Save(offer).Error
}

// Delete removes an offer
func (r *GormOfferRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&promotion.Offer{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// IncrementRedemptions bumps the redemption counter. The conditional update
// respects MaxRedemptions so two concurrent checkouts cannot push the counter
// past the cap; zero means unlimited.
func (r *GormOfferRepository) IncrementRedemptions(ctx context.Context, id uuid.UUID) error {
	return r.incrementRedemptions(r.db.WithContext(ctx), id)
}

func (r *GormOfferRepository) incrementRedemptions(db *gorm.DB, id uuid.UUID) error {
	result := db.Model(&promotion.Offer{}).
		Where("id = ? AND (max_redemptions = 0 OR redemption_count < max_redemptions)", id).
		UpdateColumn("redemption_count", gorm.Expr("redemption_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("COUPON_EXHAUSTED", "Coupon redemption limit reached")
	}
	return nil
}

// WithTx returns a repository bound to the given transaction
func (r *GormOfferRepository) WithTx(tx *gorm.DB) *GormOfferRepository {
	return &GormOfferRepository{db: tx}
}

var _ promotion.OfferRepository = (*GormOfferRepository)(nil)
