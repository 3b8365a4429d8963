package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	inventoryapp "github.com/locallift/backend/internal/application/inventory"
)

// InventoryHandler handles stock ledger and low-stock endpoints
type InventoryHandler struct {
	BaseHandler
	inventoryService  *inventoryapp.InventoryService
	lowStockThreshold int
}

func NewInventoryHandler(inventoryService *inventoryapp.InventoryService, lowStockThreshold int) *InventoryHandler {
	return &InventoryHandler{
		inventoryService:  inventoryService,
		lowStockThreshold: lowStockThreshold,
	}
}

// LedgerForProduct handles GET /vendor/products/:id/ledger
func (h *InventoryHandler) LedgerForProduct(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	productID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var filter inventoryapp.LedgerFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.inventoryService.LedgerForProduct(c.Request.Context(), actorID, isAdmin(c), productID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// Ledger handles GET /admin/inventory/ledger
func (h *InventoryHandler) Ledger(c *gin.Context) {
	var filter inventoryapp.LedgerFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.inventoryService.Ledger(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// LowStock handles GET /vendor/inventory/low-stock
func (h *InventoryHandler) LowStock(c *gin.Context) {
	vendorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	threshold := h.lowStockThreshold
	if raw := c.Query("threshold"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.BadRequest(c, "Invalid threshold")
			return
		}
		threshold = parsed
	}

	products, err := h.inventoryService.LowStock(c.Request.Context(), vendorID, threshold)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}
