package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/identity"
	"github.com/locallift/backend/internal/domain/inventory"
	"github.com/locallift/backend/internal/domain/order"
	"github.com/locallift/backend/internal/domain/promotion"
	"github.com/locallift/backend/internal/domain/shared"
	"github.com/locallift/backend/internal/domain/shared/valueobject"
	"github.com/locallift/backend/internal/domain/shopping"
	"github.com/locallift/backend/internal/infrastructure/config"
	"github.com/locallift/backend/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CheckoutService places orders. The whole placement runs in one database
// transaction: conditional stock decrements, ledger entries, coupon
// redemption, the order insert, vendor index rows and outbox events all
// commit together or not at all.
type CheckoutService struct {
	db          *gorm.DB
	orderRepo   *persistence.GormOrderRepository
	productRepo *persistence.GormProductRepository
	entryRepo   *persistence.GormVendorOrderEntryRepository
	stockRepo   *persistence.GormStockEntryRepository
	offerRepo   *persistence.GormOfferRepository
	userRepo    identity.UserRepository
	cartRepo    shopping.CartRepository
	checkoutCfg config.CheckoutConfig
	logger      *zap.Logger
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(
	db *gorm.DB,
	orderRepo *persistence.GormOrderRepository,
	productRepo *persistence.GormProductRepository,
	entryRepo *persistence.GormVendorOrderEntryRepository,
	stockRepo *persistence.GormStockEntryRepository,
	offerRepo *persistence.GormOfferRepository,
	userRepo identity.UserRepository,
	cartRepo shopping.CartRepository,
	checkoutCfg config.CheckoutConfig,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		db:          db,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		entryRepo:   entryRepo,
		stockRepo:   stockRepo,
		offerRepo:   offerRepo,
		userRepo:    userRepo,
		cartRepo:    cartRepo,
		checkoutCfg: checkoutCfg,
		logger:      logger,
	}
}

// Checkout places an order for the customer
func (s *CheckoutService) Checkout(ctx context.Context, customerID uuid.UUID, req CheckoutRequest) (*OrderResponse, error) {
	items, fromCart, err := s.resolveItems(ctx, customerID, req)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Nothing to check out")
	}

	address, err := s.resolveAddress(ctx, customerID, req)
	if err != nil {
		return nil, err
	}

	o, err := order.NewOrder(customerID, address)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txProducts := s.productRepo.WithTx(tx)
		ledger := make([]*inventory.StockEntry, 0, len(items))

		for _, input := range items {
			product, err := txProducts.FindListed(ctx, input.ProductID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return shared.NewDomainError("PRODUCT_UNAVAILABLE", "A product in the order is no longer available")
				}
				return err
			}

			// The conditional decrement is the oversell guard: it only
			// succeeds when enough stock remains at commit time.
			if err := txProducts.DecrementStock(ctx, product.ID, input.Quantity); err != nil {
				return err
			}

			// Re-read within the transaction so the ledger records the
			// stock level the decrement actually produced, not the one
			// from the initial read. Matters when another committed
			// checkout raced us or the request repeats a product line.
			decremented, err := txProducts.FindByID(ctx, product.ID)
			if err != nil {
				return err
			}

			vendorID := product.VendorID
			if _, err := o.AddItem(product.ID, vendorID, product.Name, firstImage(product.Images), input.Color, input.Size, input.Quantity, product.PriceMoney()); err != nil {
				return err
			}

			entry, err := inventory.NewStockEntry(product.ID, customerID, -input.Quantity, decremented.Stock+input.Quantity, inventory.ReasonOrder, o.ID.String())
			if err != nil {
				return err
			}
			ledger = append(ledger, entry)
		}

		if req.CouponCode != "" {
			if err := s.applyCoupon(ctx, tx, txProducts, o, req.CouponCode); err != nil {
				return err
			}
		}

		if err := o.Place(); err != nil {
			return err
		}

		if err := s.orderRepo.SaveInTx(ctx, tx, o); err != nil {
			return err
		}

		entries := make([]order.VendorOrderEntry, 0, 2)
		for _, vendorID := range o.VendorIDs() {
			entries = append(entries, order.NewVendorOrderEntry(o, vendorID))
		}
		if err := s.entryRepo.SaveAllInTx(ctx, tx, entries); err != nil {
			return err
		}

		return s.stockRepo.SaveAllInTx(ctx, tx, ledger)
	})
	if err != nil {
		return nil, err
	}

	if fromCart || req.ClearCart {
		s.clearCart(ctx, customerID)
	}

	s.logger.Info("Order placed",
		zap.String("order_id", o.ID.String()),
		zap.String("customer_id", customerID.String()),
		zap.String("total", o.TotalAmount.String()))

	resp := ToOrderResponse(o)
	return &resp, nil
}

// ValidateCoupon checks a coupon against a prospective cart total without
// redeeming it
func (s *CheckoutService) ValidateCoupon(ctx context.Context, code string, cartTotal valueobject.Money) (*promotion.ValidationResult, error) {
	offer, err := s.offerRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return &promotion.ValidationResult{Valid: false, Reason: promotion.ReasonInvalidCode}, nil
		}
		return nil, err
	}
	result := offer.Validate(cartTotal.Amount(), time.Now())
	return &result, nil
}

// applyCoupon evaluates and redeems a coupon inside the checkout transaction.
// Every read goes through tx-bound repositories so the validation and the
// redemption see the same snapshot.
func (s *CheckoutService) applyCoupon(ctx context.Context, tx *gorm.DB, txProducts *persistence.GormProductRepository, o *order.Order, code string) error {
	fail := func(reason promotion.RejectionReason) error {
		if s.checkoutCfg.LenientCoupon {
			s.logger.Warn("Ignoring invalid coupon",
				zap.String("code", code),
				zap.String("reason", string(reason)))
			return nil
		}
		return shared.NewDomainError("COUPON_"+string(reason), "Coupon cannot be applied")
	}

	txOffers := s.offerRepo.WithTx(tx)
	offer, err := txOffers.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return fail(promotion.ReasonInvalidCode)
		}
		return err
	}

	eligible := s.eligibleTotal(ctx, txProducts, o, offer)
	result := offer.Validate(eligible, time.Now())
	if !result.Valid {
		return fail(result.Reason)
	}

	if err := txOffers.IncrementRedemptions(ctx, offer.ID); err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			return fail(promotion.ReasonExhausted)
		}
		return err
	}

	return o.ApplyCoupon(offer.Code, valueobject.NewMoneyUSD(result.Discount))
}

// eligibleTotal sums the order lines the offer's scope covers. Scoped coupons
// only discount their matching items.
func (s *CheckoutService) eligibleTotal(ctx context.Context, products *persistence.GormProductRepository, o *order.Order, offer *promotion.Offer) decimal.Decimal {
	if offer.Scope == promotion.ScopeAll {
		return o.SubTotal
	}
	total := decimal.Zero
	for idx := range o.Items {
		item := &o.Items[idx]
		category := ""
		if offer.Scope == promotion.ScopeCategory {
			if product, err := products.FindByID(ctx, item.ProductID); err == nil {
				category = product.Category
			}
		}
		if offer.AppliesTo(item.ProductID, category) {
			total = total.Add(item.Amount)
		}
	}
	return total
}

func (s *CheckoutService) resolveItems(ctx context.Context, customerID uuid.UUID, req CheckoutRequest) ([]CheckoutItemInput, bool, error) {
	if len(req.Items) > 0 {
		return req.Items, false, nil
	}

	cart, err := s.cartRepo.FindByUser(ctx, customerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, false, shared.NewDomainError("EMPTY_ORDER", "Cart is empty")
		}
		return nil, false, err
	}

	items := make([]CheckoutItemInput, 0, len(cart.Items))
	for idx := range cart.Items {
		line := &cart.Items[idx]
		items = append(items, CheckoutItemInput{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Color:     line.Color,
			Size:      line.Size,
		})
	}
	return items, true, nil
}

func (s *CheckoutService) resolveAddress(ctx context.Context, customerID uuid.UUID, req CheckoutRequest) (order.ShippingAddress, error) {
	if req.Address != nil {
		return order.ShippingAddress{
			Line1:      req.Address.Line1,
			Line2:      req.Address.Line2,
			City:       req.Address.City,
			State:      req.Address.State,
			PostalCode: req.Address.PostalCode,
			Country:    req.Address.Country,
			Phone:      req.Address.Phone,
		}, nil
	}

	user, err := s.userRepo.FindByID(ctx, customerID)
	if err != nil {
		return order.ShippingAddress{}, err
	}

	var addr *identity.Address
	if req.AddressID != nil {
		addr = user.FindAddress(*req.AddressID)
	} else {
		for idx := range user.Addresses {
			if user.Addresses[idx].IsDefault {
				addr = &user.Addresses[idx]
				break
			}
		}
	}
	if addr == nil {
		return order.ShippingAddress{}, shared.NewDomainError("MISSING_ADDRESS", "No shipping address provided")
	}

	return order.ShippingAddress{
		Line1:      addr.Line1,
		Line2:      addr.Line2,
		City:       addr.City,
		State:      addr.State,
		PostalCode: addr.PostalCode,
		Country:    addr.Country,
		Phone:      addr.Phone,
	}, nil
}

func (s *CheckoutService) clearCart(ctx context.Context, customerID uuid.UUID) {
	cart, err := s.cartRepo.FindByUser(ctx, customerID)
	if err != nil {
		return
	}
	cart.Clear()
	if err := s.cartRepo.ReplaceItems(ctx, cart); err != nil {
		s.logger.Warn("Failed to clear cart after checkout", zap.Error(err))
	}
}

func firstImage(images []string) string {
	if len(images) == 0 {
		return ""
	}
	return images[0]
}
