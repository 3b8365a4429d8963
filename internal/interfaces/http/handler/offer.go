package handler

import (
	"github.com/gin-gonic/gin"
	promotionapp "github.com/locallift/backend/internal/application/promotion"
)

// OfferHandler handles coupon endpoints
type OfferHandler struct {
	BaseHandler
	offerService *promotionapp.OfferService
}

func NewOfferHandler(offerService *promotionapp.OfferService) *OfferHandler {
	return &OfferHandler{offerService: offerService}
}

// Create handles POST /admin/offers
func (h *OfferHandler) Create(c *gin.Context) {
	var req promotionapp.CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.offerService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Update handles PUT /admin/offers/:id
func (h *OfferHandler) Update(c *gin.Context) {
	offerID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid offer ID")
		return
	}

	var req promotionapp.UpdateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.offerService.Update(c.Request.Context(), offerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /admin/offers/:id
func (h *OfferHandler) Delete(c *gin.Context) {
	offerID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid offer ID")
		return
	}

	if err := h.offerService.Delete(c.Request.Context(), offerID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Get handles GET /admin/offers/:id
func (h *OfferHandler) Get(c *gin.Context) {
	offerID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid offer ID")
		return
	}

	resp, err := h.offerService.GetByID(c.Request.Context(), offerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List handles GET /admin/offers
func (h *OfferHandler) List(c *gin.Context) {
	var filter promotionapp.OfferListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.offerService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// ListActive handles GET /offers, the public promotions listing
func (h *OfferHandler) ListActive(c *gin.Context) {
	offers, err := h.offerService.ListActive(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, offers)
}

// Validate handles POST /offers/validate, the storefront coupon pre-check
func (h *OfferHandler) Validate(c *gin.Context) {
	var req promotionapp.ValidateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.offerService.Validate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
