package review

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/shared"
)

// Review is a customer's rating of a product they received.
// One review per (user, product); enforced both here via ExistsByUserAndProduct
// and by a unique index at the persistence layer.
type Review struct {
	shared.BaseEntity
	ProductID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_review_user_product,priority:2"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_user_product,priority:1"`
	UserName  string    `gorm:"type:varchar(100);not null"`
	Rating    int       `gorm:"not null"`
	Comment   string    `gorm:"type:varchar(2000)"`
}

// TableName returns the table name for GORM
func (Review) TableName() string {
	return "reviews"
}

// NewReview creates a review with a 1..5 star rating
func NewReview(productID, userID uuid.UUID, userName string, rating int, comment string) (*Review, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if rating < 1 || rating > 5 {
		return nil, shared.NewDomainError("INVALID_RATING", "Rating must be between 1 and 5")
	}

	return &Review{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		UserID:     userID,
		UserName:   userName,
		Rating:     rating,
		Comment:    comment,
	}, nil
}

// Edit updates the rating and comment of an existing review
func (r *Review) Edit(rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return shared.NewDomainError("INVALID_RATING", "Rating must be between 1 and 5")
	}
	r.Rating = rating
	r.Comment = comment
	r.UpdatedAt = time.Now()
	return nil
}

// Stats aggregates review ratings for one product
type Stats struct {
	Average float64
	Count   int
}

// ReviewRepository defines the persistence interface for reviews
type ReviewRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Review, error)
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) (*shared.Paginated[Review], error)
	FindByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*Review, error)
	ExistsByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	StatsForProduct(ctx context.Context, productID uuid.UUID) (Stats, error)
	Save(ctx context.Context, r *Review) error
	Delete(ctx context.Context, id uuid.UUID) error
}
