package handler

import (
	"github.com/gin-gonic/gin"
	identityapp "github.com/locallift/backend/internal/application/identity"
	"github.com/locallift/backend/internal/domain/shared"
)

// UserHandler handles profile and address endpoints
type UserHandler struct {
	BaseHandler
	userService *identityapp.UserService
}

func NewUserHandler(userService *identityapp.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetProfile handles GET /users/me
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateProfile handles PUT /users/me
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req identityapp.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.userService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ChangePassword handles PUT /users/me/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req identityapp.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), userID, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddAddress handles POST /users/me/addresses
func (h *UserHandler) AddAddress(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req identityapp.AddAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.userService.AddAddress(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// RemoveAddress handles DELETE /users/me/addresses/:id
func (h *UserHandler) RemoveAddress(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	addressID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid address ID")
		return
	}

	if err := h.userService.RemoveAddress(c.Request.Context(), userID, addressID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SetDefaultAddress handles PUT /users/me/addresses/:id/default
func (h *UserHandler) SetDefaultAddress(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	addressID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid address ID")
		return
	}

	if err := h.userService.SetDefaultAddress(c.Request.Context(), userID, addressID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListUsers handles GET /admin/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	filter := shared.DefaultFilter()
	var query struct {
		Page     int    `form:"page"`
		PageSize int    `form:"page_size"`
		Search   string `form:"search"`
		Role     string `form:"role"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if query.Page > 0 {
		filter.Page = query.Page
	}
	if query.PageSize > 0 {
		filter.PageSize = query.PageSize
	}
	filter.Search = query.Search
	if query.Role != "" {
		filter.Filters["role"] = query.Role
	}

	users, total, err := h.userService.ListUsers(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, users, total, filter.Page, filter.PageSize, totalPages(total, filter.PageSize))
}

// totalPages derives the page count the same way the repositories do
func totalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		pages++
	}
	return pages
}
