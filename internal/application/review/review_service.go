package review

import (
	"context"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/catalog"
	"github.com/locallift/backend/internal/domain/identity"
	"github.com/locallift/backend/internal/domain/order"
	"github.com/locallift/backend/internal/domain/review"
	"github.com/locallift/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ReviewService manages product reviews. Writing requires a verified
// purchase: the customer must have a delivered order containing the
// product. After every write the product's denormalized rating aggregate
// is recomputed from the reviews table.
type ReviewService struct {
	reviewRepo  review.ReviewRepository
	orderRepo   order.OrderRepository
	productRepo catalog.ProductRepository
	userRepo    identity.UserRepository
	logger      *zap.Logger
}

func NewReviewService(
	reviewRepo review.ReviewRepository,
	orderRepo order.OrderRepository,
	productRepo catalog.ProductRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		logger:      logger.Named("review-service"),
	}
}

// Create posts a review for a delivered product. One review per customer
// per product; repeats are a conflict, not an edit.
func (s *ReviewService) Create(ctx context.Context, userID, productID uuid.UUID, req CreateReviewRequest) (*ReviewResponse, error) {
	if _, err := s.productRepo.FindListed(ctx, productID); err != nil {
		return nil, err
	}

	delivered, err := s.orderRepo.ExistsDeliveredWithProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if !delivered {
		return nil, shared.NewDomainError("PURCHASE_REQUIRED", "Only customers with a delivered order can review this product")
	}

	exists, err := s.reviewRepo.ExistsByUserAndProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_REVIEWED", "You have already reviewed this product")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	r, err := review.NewReview(productID, userID, user.Name, req.Rating, req.Comment)
	if err != nil {
		return nil, err
	}
	if err := s.reviewRepo.Save(ctx, r); err != nil {
		return nil, err
	}

	s.refreshProductStats(ctx, productID)

	resp := ToReviewResponse(r)
	return &resp, nil
}

// Update edits the author's own review and recomputes the product stats
func (s *ReviewService) Update(ctx context.Context, userID, reviewID uuid.UUID, req UpdateReviewRequest) (*ReviewResponse, error) {
	r, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, shared.ErrForbidden
	}
	if err := r.Edit(req.Rating, req.Comment); err != nil {
		return nil, err
	}
	if err := s.reviewRepo.Save(ctx, r); err != nil {
		return nil, err
	}

	s.refreshProductStats(ctx, r.ProductID)

	resp := ToReviewResponse(r)
	return &resp, nil
}

// Delete removes a review. The author or an admin may delete it.
func (s *ReviewService) Delete(ctx context.Context, userID uuid.UUID, isAdmin bool, reviewID uuid.UUID) error {
	r, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if !isAdmin && r.UserID != userID {
		return shared.ErrForbidden
	}
	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		return err
	}

	s.refreshProductStats(ctx, r.ProductID)
	return nil
}

// ListByProduct returns a product's reviews, newest first
func (s *ReviewService) ListByProduct(ctx context.Context, productID uuid.UUID, filter ReviewListFilter) (*shared.Paginated[ReviewResponse], error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}

	page, err := s.reviewRepo.FindByProduct(ctx, productID, domainFilter)
	if err != nil {
		return nil, err
	}

	return &shared.Paginated[ReviewResponse]{
		Items:      ToReviewResponses(page.Items),
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

// refreshProductStats recomputes the product's rating aggregate from the
// reviews table. A failure here leaves a stale aggregate until the next
// write, so it is logged rather than surfaced to the customer.
func (s *ReviewService) refreshProductStats(ctx context.Context, productID uuid.UUID) {
	stats, err := s.reviewRepo.StatsForProduct(ctx, productID)
	if err != nil {
		s.logger.Warn("failed to compute review stats",
			zap.String("product_id", productID.String()), zap.Error(err))
		return
	}
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		s.logger.Warn("failed to load product for stats refresh",
			zap.String("product_id", productID.String()), zap.Error(err))
		return
	}
	product.ApplyReviewStats(stats.Average, stats.Count)
	if err := s.productRepo.Save(ctx, product); err != nil {
		s.logger.Warn("failed to save review stats",
			zap.String("product_id", productID.String()), zap.Error(err))
	}
}
