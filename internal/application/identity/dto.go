package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/identity"
)

// RegisterRequest represents a request to create an account
type RegisterRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
	Role      string `json:"role" binding:"omitempty,oneof=customer business"`
	StoreName string `json:"store_name" binding:"omitempty,max=200"`
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest updates the account profile
type UpdateProfileRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=100"`
	StoreName string `json:"store_name" binding:"omitempty,max=200"`
}

// ChangePasswordRequest rotates the account password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
}

// AddAddressRequest adds a shipping address
type AddAddressRequest struct {
	Label      string `json:"label" binding:"omitempty,max=50"`
	Line1      string `json:"line1" binding:"required,max=200"`
	Line2      string `json:"line2" binding:"omitempty,max=200"`
	City       string `json:"city" binding:"required,max=100"`
	State      string `json:"state" binding:"omitempty,max=100"`
	PostalCode string `json:"postal_code" binding:"required,max=20"`
	Country    string `json:"country" binding:"required,max=100"`
	Phone      string `json:"phone" binding:"omitempty,max=30"`
}

// UserResponse is the public view of an account
type UserResponse struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Role        string            `json:"role"`
	StoreName   string            `json:"store_name,omitempty"`
	Addresses   []AddressResponse `json:"addresses,omitempty"`
	LastLoginAt *time.Time        `json:"last_login_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// AddressResponse is the public view of a shipping address
type AddressResponse struct {
	ID         uuid.UUID `json:"id"`
	Label      string    `json:"label,omitempty"`
	Line1      string    `json:"line1"`
	Line2      string    `json:"line2,omitempty"`
	City       string    `json:"city"`
	State      string    `json:"state,omitempty"`
	PostalCode string    `json:"postal_code"`
	Country    string    `json:"country"`
	Phone      string    `json:"phone,omitempty"`
	IsDefault  bool      `json:"is_default"`
}

// AuthResponse bundles tokens with the authenticated user
type AuthResponse struct {
	AccessToken           string       `json:"access_token"`
	RefreshToken          string       `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time    `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time    `json:"refresh_token_expires_at"`
	TokenType             string       `json:"token_type"`
	User                  UserResponse `json:"user"`
}

// ToUserResponse maps a user aggregate to its public view
func ToUserResponse(user *identity.User) UserResponse {
	addresses := make([]AddressResponse, 0, len(user.Addresses))
	for idx := range user.Addresses {
		addresses = append(addresses, ToAddressResponse(&user.Addresses[idx]))
	}
	return UserResponse{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        user.Role.String(),
		StoreName:   user.StoreName,
		Addresses:   addresses,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}

// ToAddressResponse maps an address to its public view
func ToAddressResponse(addr *identity.Address) AddressResponse {
	return AddressResponse{
		ID:         addr.ID,
		Label:      addr.Label,
		Line1:      addr.Line1,
		Line2:      addr.Line2,
		City:       addr.City,
		State:      addr.State,
		PostalCode: addr.PostalCode,
		Country:    addr.Country,
		Phone:      addr.Phone,
		IsDefault:  addr.IsDefault,
	}
}
