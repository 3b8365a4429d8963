package shopping

import (
	"time"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/catalog"
	"github.com/locallift/backend/internal/domain/shopping"
	"github.com/shopspring/decimal"
)

// AddCartItemRequest puts a product into the cart
type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
	Color     string    `json:"color" binding:"max=50"`
	Size      string    `json:"size" binding:"max=50"`
}

// UpdateCartItemRequest changes the quantity of a cart line
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// CartItemResponse is one cart line joined with live product data
type CartItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductImage string          `json:"product_image,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"quantity"`
	Color        string          `json:"color,omitempty"`
	Size         string          `json:"size,omitempty"`
	Available    bool            `json:"available"`
	InStock      bool            `json:"in_stock"`
}

// CartResponse is the user's full cart with a computed subtotal over the
// lines that are still purchasable
type CartResponse struct {
	ID       uuid.UUID          `json:"id"`
	Items    []CartItemResponse `json:"items"`
	SubTotal decimal.Decimal    `json:"sub_total"`
}

// WishlistEntryResponse is one saved product
type WishlistEntryResponse struct {
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductImage string          `json:"product_image,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Available    bool            `json:"available"`
	SavedAt      time.Time       `json:"saved_at"`
}

// buildCartResponse joins cart lines against the product map. Lines whose
// product has been delisted stay visible but are flagged unavailable and
// excluded from the subtotal.
func buildCartResponse(cart *shopping.Cart, products map[uuid.UUID]*catalog.Product) CartResponse {
	resp := CartResponse{
		ID:       cart.ID,
		Items:    make([]CartItemResponse, 0, len(cart.Items)),
		SubTotal: decimal.Zero,
	}
	for idx := range cart.Items {
		item := &cart.Items[idx]
		line := CartItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Color:     item.Color,
			Size:      item.Size,
		}
		if product, ok := products[item.ProductID]; ok && !product.IsDeleted {
			line.ProductName = product.Name
			line.UnitPrice = product.Price
			line.Available = true
			line.InStock = product.Stock >= item.Quantity
			if len(product.Images) > 0 {
				line.ProductImage = product.Images[0]
			}
			resp.SubTotal = resp.SubTotal.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		resp.Items = append(resp.Items, line)
	}
	return resp
}
