package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/identity"
	"github.com/locallift/backend/internal/domain/shared"
	"github.com/locallift/backend/internal/infrastructure/auth"
	"github.com/locallift/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-that-is-long-enough",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "locallift-test",
	})
}

func newTestAuthService(repo *MockUserRepository) *AuthService {
	return NewAuthService(repo, newTestJWTService(), auth.NewInMemoryTokenBlacklist(), zap.NewNop())
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("registers customer and returns tokens", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("ExistsByEmail", ctx, "jane@example.com").Return(false, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

		svc := newTestAuthService(repo)
		resp, err := svc.Register(ctx, RegisterRequest{
			Name:     "Jane",
			Email:    "jane@example.com",
			Password: "supersecret1",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, "customer", resp.User.Role)
		repo.AssertExpectations(t)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("ExistsByEmail", ctx, "jane@example.com").Return(true, nil)

		svc := newTestAuthService(repo)
		_, err := svc.Register(ctx, RegisterRequest{
			Name:     "Jane",
			Email:    "jane@example.com",
			Password: "supersecret1",
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "EMAIL_TAKEN", domainErr.Code)
	})

	t.Run("business registration requires store name", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("ExistsByEmail", ctx, "shop@example.com").Return(false, nil)

		svc := newTestAuthService(repo)
		_, err := svc.Register(ctx, RegisterRequest{
			Name:     "Shop Owner",
			Email:    "shop@example.com",
			Password: "supersecret1",
			Role:     "business",
		})
		require.Error(t, err)
	})

	t.Run("admin cannot self-register", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestAuthService(repo)
		_, err := svc.Register(ctx, RegisterRequest{
			Name:     "Mallory",
			Email:    "mallory@example.com",
			Password: "supersecret1",
			Role:     "admin",
		})
		require.Error(t, err)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	user, err := identity.NewUser("Jane", "jane@example.com", "supersecret1", identity.RoleCustomer)
	require.NoError(t, err)
	user.ClearDomainEvents()

	t.Run("valid credentials return tokens", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByEmail", ctx, "jane@example.com").Return(user, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

		svc := newTestAuthService(repo)
		resp, err := svc.Login(ctx, LoginRequest{Email: "jane@example.com", Password: "supersecret1"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.Equal(t, user.ID, resp.User.ID)
	})

	t.Run("wrong password is rejected without detail", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByEmail", ctx, "jane@example.com").Return(user, nil)

		svc := newTestAuthService(repo)
		_, err := svc.Login(ctx, LoginRequest{Email: "jane@example.com", Password: "wrong"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
	})

	t.Run("unknown email maps to the same error as wrong password", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByEmail", ctx, "ghost@example.com").Return(nil, shared.ErrNotFound)

		svc := newTestAuthService(repo)
		_, err := svc.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "whatever"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()

	user, err := identity.NewUser("Jane", "jane@example.com", "supersecret1", identity.RoleCustomer)
	require.NoError(t, err)
	user.ClearDomainEvents()

	t.Run("valid refresh token rotates the pair", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByEmail", ctx, "jane@example.com").Return(user, nil)
		repo.On("FindByID", ctx, user.ID).Return(user, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

		svc := newTestAuthService(repo)
		login, err := svc.Login(ctx, LoginRequest{Email: "jane@example.com", Password: "supersecret1"})
		require.NoError(t, err)

		refreshed, err := svc.Refresh(ctx, RefreshRequest{RefreshToken: login.RefreshToken})
		require.NoError(t, err)
		assert.NotEmpty(t, refreshed.AccessToken)

		// The used refresh token is retired and cannot be replayed.
		_, err = svc.Refresh(ctx, RefreshRequest{RefreshToken: login.RefreshToken})
		require.Error(t, err)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestAuthService(repo)
		_, err := svc.Refresh(ctx, RefreshRequest{RefreshToken: "not-a-token"})
		require.Error(t, err)
	})
}
