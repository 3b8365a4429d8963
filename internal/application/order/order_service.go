package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/catalog"
	"github.com/locallift/backend/internal/domain/inventory"
	"github.com/locallift/backend/internal/domain/order"
	"github.com/locallift/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Actor identifies who is acting on an order and in what capacity
type Actor struct {
	ID       uuid.UUID
	IsAdmin  bool
	IsVendor bool
}

// OrderService handles the order lifecycle after placement: status
// transitions, cancellation, returns and exchanges
type OrderService struct {
	orderRepo   order.OrderRepository
	entryRepo   order.VendorOrderEntryRepository
	productRepo catalog.ProductRepository
	stockRepo   inventory.StockEntryRepository
	logger      *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo order.OrderRepository,
	entryRepo order.VendorOrderEntryRepository,
	productRepo catalog.ProductRepository,
	stockRepo inventory.StockEntryRepository,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		entryRepo:   entryRepo,
		productRepo: productRepo,
		stockRepo:   stockRepo,
		logger:      logger,
	}
}

// GetByID loads an order, enforcing visibility: customers see their own
// orders, vendors see orders containing their items, admins see everything
func (s *OrderService) GetByID(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.loadVisible(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// ListByCustomer lists the customer's own orders
func (s *OrderService) ListByCustomer(ctx context.Context, customerID uuid.UUID, filter OrderListFilter) ([]OrderResponse, int64, error) {
	page, err := s.orderRepo.FindByCustomer(ctx, customerID, toOrderDomainFilter(filter))
	if err != nil {
		return nil, 0, err
	}
	return ToOrderResponses(page.Items), page.Total, nil
}

// ListByVendor lists orders containing the vendor's items, using the
// vendor order index so the orders table is only hit for the page itself
func (s *OrderService) ListByVendor(ctx context.Context, vendorID uuid.UUID, filter OrderListFilter) ([]OrderResponse, int64, error) {
	ids, total, err := s.entryRepo.FindOrderIDsByVendor(ctx, vendorID, toOrderDomainFilter(filter))
	if err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return []OrderResponse{}, total, nil
	}

	orders, err := s.orderRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	// FindByIDs does not preserve order; restore newest-first from the index
	byID := make(map[uuid.UUID]*order.Order, len(orders))
	for idx := range orders {
		byID[orders[idx].ID] = &orders[idx]
	}
	responses := make([]OrderResponse, 0, len(ids))
	for _, id := range ids {
		if o, ok := byID[id]; ok {
			responses = append(responses, ToOrderResponse(o))
		}
	}
	return responses, total, nil
}

// ListAll lists every order, for admin views
func (s *OrderService) ListAll(ctx context.Context, filter OrderListFilter) ([]OrderResponse, int64, error) {
	page, err := s.orderRepo.FindAll(ctx, toOrderDomainFilter(filter))
	if err != nil {
		return nil, 0, err
	}
	return ToOrderResponses(page.Items), page.Total, nil
}

// UpdateStatus advances an order through its lifecycle. Vendors may only
// move orders that contain their items through fulfillment states; admins
// may apply any legal transition; customers use Cancel instead.
func (s *OrderService) UpdateStatus(ctx context.Context, actor Actor, orderID uuid.UUID, req UpdateStatusRequest) (*OrderResponse, error) {
	target := order.Status(req.Status)
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown order status")
	}

	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch {
	case actor.IsAdmin:
		// any legal transition
	case actor.IsVendor:
		if !s.vendorTouchesOrder(ctx, actor.ID, o) {
			return nil, shared.ErrForbidden
		}
		if !vendorMayTarget(target) {
			return nil, shared.ErrForbidden
		}
	default:
		return nil, shared.ErrForbidden
	}

	if err := o.TransitionTo(target, req.Note); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	if err := s.entryRepo.UpdateStatusByOrder(ctx, o.ID, o.Status); err != nil {
		s.logger.Error("Failed to mirror status to vendor index", zap.Error(err))
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", o.ID.String()),
		zap.String("status", string(o.Status)))

	resp := ToOrderResponse(o)
	return &resp, nil
}

// Cancel lets the customer cancel a not-yet-shipped order. Stock returns to
// the shelf with ledger entries.
func (s *OrderService) Cancel(ctx context.Context, customerID, orderID uuid.UUID, note string) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(customerID) {
		return nil, shared.ErrForbidden
	}

	if err := o.CancelByCustomer(note); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	if err := s.entryRepo.UpdateStatusByOrder(ctx, o.ID, o.Status); err != nil {
		s.logger.Error("Failed to mirror status to vendor index", zap.Error(err))
	}

	s.restock(ctx, customerID, o, "order cancelled")

	resp := ToOrderResponse(o)
	return &resp, nil
}

// RequestReturn asks for a return within the delivery window
func (s *OrderService) RequestReturn(ctx context.Context, customerID, orderID uuid.UUID, req ReturnRequestInput) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(customerID) {
		return nil, shared.ErrForbidden
	}
	if err := o.RequestReturn(req.Reason, time.Now()); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// RequestExchange asks for an exchange within the delivery window
func (s *OrderService) RequestExchange(ctx context.Context, customerID, orderID uuid.UUID, req ReturnRequestInput) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(customerID) {
		return nil, shared.ErrForbidden
	}
	if err := o.RequestExchange(req.Reason, time.Now()); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// DecideReturn approves or rejects a pending return. Approval moves the
// order to RETURNED and restocks the items.
func (s *OrderService) DecideReturn(ctx context.Context, actor Actor, orderID uuid.UUID, req ReturnDecisionRequest) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !s.mayDecide(ctx, actor, o) {
		return nil, shared.ErrForbidden
	}

	if err := o.DecideReturn(req.Approve, req.Note); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}

	if req.Approve {
		if err := s.entryRepo.UpdateStatusByOrder(ctx, o.ID, o.Status); err != nil {
			s.logger.Error("Failed to mirror status to vendor index", zap.Error(err))
		}
		s.restock(ctx, actor.ID, o, "return approved")
	}

	resp := ToOrderResponse(o)
	return &resp, nil
}

// DecideExchange approves or rejects a pending exchange. Exchanges swap
// goods, so no restock happens here.
func (s *OrderService) DecideExchange(ctx context.Context, actor Actor, orderID uuid.UUID, req ReturnDecisionRequest) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !s.mayDecide(ctx, actor, o) {
		return nil, shared.ErrForbidden
	}

	if err := o.DecideExchange(req.Approve); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}

	resp := ToOrderResponse(o)
	return &resp, nil
}

// restock puts the order's units back on the shelf with ledger entries.
// Failures log rather than fail the calling operation; the ledger keeps the
// discrepancy visible.
func (s *OrderService) restock(ctx context.Context, actorID uuid.UUID, o *order.Order, note string) {
	reason := inventory.ReasonRestock
	for idx := range o.Items {
		item := &o.Items[idx]
		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			s.logger.Error("Restock skipped for missing product",
				zap.String("product_id", item.ProductID.String()))
			continue
		}
		if err := s.productRepo.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Error("Failed to restock product",
				zap.String("product_id", item.ProductID.String()), zap.Error(err))
			continue
		}
		entry, err := inventory.NewStockEntry(item.ProductID, actorID, item.Quantity, product.Stock, reason, o.ID.String()+" "+note)
		if err != nil {
			continue
		}
		if err := s.stockRepo.Save(ctx, entry); err != nil {
			s.logger.Error("Failed to write restock ledger entry", zap.Error(err))
		}
	}
}

func (s *OrderService) loadVisible(ctx context.Context, actor Actor, orderID uuid.UUID) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	switch {
	case actor.IsAdmin:
		return o, nil
	case o.IsOwnedBy(actor.ID):
		return o, nil
	case actor.IsVendor && s.vendorTouchesOrder(ctx, actor.ID, o):
		return o, nil
	default:
		return nil, shared.ErrForbidden
	}
}

func (s *OrderService) mayDecide(ctx context.Context, actor Actor, o *order.Order) bool {
	if actor.IsAdmin {
		return true
	}
	return actor.IsVendor && s.vendorTouchesOrder(ctx, actor.ID, o)
}

// vendorTouchesOrder checks the item snapshots first and falls back to the
// vendor's product ids for legacy rows without a vendor snapshot
func (s *OrderService) vendorTouchesOrder(ctx context.Context, vendorID uuid.UUID, o *order.Order) bool {
	if o.ContainsVendor(vendorID) {
		return true
	}
	ids, err := s.productRepo.FindIDsByVendor(ctx, vendorID)
	if err != nil {
		return false
	}
	owned := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		owned[id] = struct{}{}
	}
	for idx := range o.Items {
		if _, ok := owned[o.Items[idx].ProductID]; ok {
			return true
		}
	}
	return false
}

func vendorMayTarget(target order.Status) bool {
	switch target {
	case order.StatusProcessing, order.StatusShipped, order.StatusDelivered:
		return true
	default:
		return false
	}
}

func toOrderDomainFilter(filter OrderListFilter) shared.Filter {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.ReturnStatus != "" {
		domainFilter.Filters["return_status"] = filter.ReturnStatus
	}
	return domainFilter
}
