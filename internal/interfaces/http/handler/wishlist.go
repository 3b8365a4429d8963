package handler

import (
	"github.com/gin-gonic/gin"
	shoppingapp "github.com/locallift/backend/internal/application/shopping"
)

// WishlistHandler handles wishlist endpoints
type WishlistHandler struct {
	BaseHandler
	wishlistService *shoppingapp.WishlistService
}

func NewWishlistHandler(wishlistService *shoppingapp.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService}
}

// List handles GET /wishlist
func (h *WishlistHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	entries, err := h.wishlistService.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// Add handles POST /wishlist/:productId
func (h *WishlistHandler) Add(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	if err := h.wishlistService.Add(c.Request.Context(), userID, productID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Remove handles DELETE /wishlist/:productId
func (h *WishlistHandler) Remove(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	if err := h.wishlistService.Remove(c.Request.Context(), userID, productID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
