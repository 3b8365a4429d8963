package promotion

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/promotion"
	"github.com/locallift/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OfferService manages the coupon catalog. All write operations are
// admin-only; the caller enforces the role before invoking them.
type OfferService struct {
	offerRepo promotion.OfferRepository
	logger    *zap.Logger
}

func NewOfferService(offerRepo promotion.OfferRepository, logger *zap.Logger) *OfferService {
	return &OfferService{
		offerRepo: offerRepo,
		logger:    logger.Named("offer-service"),
	}
}

// Create registers a new coupon. The code must be unique; restriction and
// cap settings are applied after construction so validation stays in the
// aggregate.
func (s *OfferService) Create(ctx context.Context, req CreateOfferRequest) (*OfferResponse, error) {
	exists, err := s.offerRepo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("CODE_TAKEN", "An offer with this code already exists")
	}

	offer, err := promotion.NewOffer(req.Code, req.Description, promotion.DiscountType(req.DiscountType),
		req.Value, req.MinOrderValue, req.StartDate, req.ExpiryDate)
	if err != nil {
		return nil, err
	}

	if req.Category != "" {
		if err := offer.RestrictToCategory(req.Category); err != nil {
			return nil, err
		}
	} else if len(req.ProductIDs) > 0 {
		if err := offer.RestrictToProducts(req.ProductIDs); err != nil {
			return nil, err
		}
	}
	if req.MaxRedemptions > 0 {
		if err := offer.SetMaxRedemptions(req.MaxRedemptions); err != nil {
			return nil, err
		}
	}

	if err := s.offerRepo.Save(ctx, offer); err != nil {
		return nil, err
	}

	s.logger.Info("offer created",
		zap.String("code", offer.Code),
		zap.String("type", string(offer.DiscountType)))

	resp := ToOfferResponse(offer)
	return &resp, nil
}

// Update mutates the fields an admin may change after creation. Code,
// discount type and value are immutable; retire the offer and create a
// new one instead.
func (s *OfferService) Update(ctx context.Context, id uuid.UUID, req UpdateOfferRequest) (*OfferResponse, error) {
	offer, err := s.offerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		offer.Description = *req.Description
		offer.UpdatedAt = time.Now()
	}
	if req.ExpiryDate != nil {
		if !req.ExpiryDate.After(offer.StartDate) {
			return nil, shared.NewDomainError("INVALID_WINDOW", "Expiry date must be after start date")
		}
		offer.ExpiryDate = *req.ExpiryDate
		offer.UpdatedAt = time.Now()
	}
	if req.MaxRedemptions != nil {
		if err := offer.SetMaxRedemptions(*req.MaxRedemptions); err != nil {
			return nil, err
		}
	}
	if req.Active != nil {
		if *req.Active {
			offer.Activate()
		} else {
			offer.Deactivate()
		}
	}

	if err := s.offerRepo.Save(ctx, offer); err != nil {
		return nil, err
	}

	resp := ToOfferResponse(offer)
	return &resp, nil
}

// Deactivate withdraws an offer from checkout without deleting its
// redemption history.
func (s *OfferService) Deactivate(ctx context.Context, id uuid.UUID) error {
	offer, err := s.offerRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	offer.Deactivate()
	return s.offerRepo.Save(ctx, offer)
}

// Delete removes an offer outright. Offers that have been redeemed are
// kept for order history and deactivated instead.
func (s *OfferService) Delete(ctx context.Context, id uuid.UUID) error {
	offer, err := s.offerRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if offer.RedemptionCount > 0 {
		offer.Deactivate()
		return s.offerRepo.Save(ctx, offer)
	}
	return s.offerRepo.Delete(ctx, id)
}

// GetByID returns a single offer
func (s *OfferService) GetByID(ctx context.Context, id uuid.UUID) (*OfferResponse, error) {
	offer, err := s.offerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOfferResponse(offer)
	return &resp, nil
}

// List returns a paginated admin view of all offers
func (s *OfferService) List(ctx context.Context, filter OfferListFilter) (*shared.Paginated[OfferResponse], error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.Search = filter.Search
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	page, err := s.offerRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	return &shared.Paginated[OfferResponse]{
		Items:      ToOfferResponses(page.Items),
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

// ListActive returns offers currently usable at checkout, for the
// storefront promotions page.
func (s *OfferService) ListActive(ctx context.Context) ([]OfferResponse, error) {
	offers, err := s.offerRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	return ToOfferResponses(offers), nil
}

// Validate pre-checks a code against a cart total without redeeming it.
// Unknown codes report invalid rather than an error so the storefront can
// show inline feedback.
func (s *OfferService) Validate(ctx context.Context, req ValidateOfferRequest) (*ValidationResponse, error) {
	offer, err := s.offerRepo.FindByCode(ctx, req.Code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return &ValidationResponse{Valid: false, Discount: decimal.Zero, Reason: string(promotion.ReasonInvalidCode)}, nil
		}
		return nil, err
	}

	result := offer.Validate(req.CartTotal, time.Now())
	return &ValidationResponse{Valid: result.Valid, Discount: result.Discount, Reason: string(result.Reason)}, nil
}
