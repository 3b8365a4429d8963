package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/identity"
	"github.com/locallift/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// UserService handles profile and address management
type UserService struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, logger: logger}
}

// GetProfile loads a user's profile with addresses
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// UpdateProfile changes name and store name
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.UpdateProfile(req.Name, req.StoreName); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// ChangePassword rotates the password after verifying the current one
func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.ChangePassword(req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}
	s.logger.Info("Password changed", zap.String("user_id", userID.String()))
	return nil
}

// AddAddress appends a shipping address
func (s *UserService) AddAddress(ctx context.Context, userID uuid.UUID, req AddAddressRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.AddAddress(identity.Address{
		Label:      req.Label,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		Phone:      req.Phone,
	})
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// RemoveAddress deletes a shipping address
func (s *UserService) RemoveAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.RemoveAddress(addressID); err != nil {
		return err
	}
	return s.userRepo.Save(ctx, user)
}

// SetDefaultAddress marks an address as the shipping default
func (s *UserService) SetDefaultAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.SetDefaultAddress(addressID); err != nil {
		return err
	}
	return s.userRepo.Save(ctx, user)
}

// ListUsers lists accounts for admin views
func (s *UserService) ListUsers(ctx context.Context, filter shared.Filter) ([]UserResponse, int64, error) {
	users, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.userRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UserResponse, 0, len(users))
	for idx := range users {
		responses = append(responses, ToUserResponse(&users[idx]))
	}
	return responses, total, nil
}
