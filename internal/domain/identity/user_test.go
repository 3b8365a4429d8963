package identity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("creates customer with hashed password", func(t *testing.T) {
		user, err := NewUser("Alice", "Alice@Example.com", "s3cret-pass", RoleCustomer)
		require.NoError(t, err)

		assert.Equal(t, "alice@example.com", user.Email)
		assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
		assert.True(t, user.CheckPassword("s3cret-pass"))
		assert.False(t, user.CheckPassword("wrong"))
		assert.Len(t, user.GetDomainEvents(), 1)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		_, err := NewUser("Alice", "not-an-email", "s3cret-pass", RoleCustomer)
		assert.Error(t, err)
	})

	t.Run("rejects short password", func(t *testing.T) {
		_, err := NewUser("Alice", "alice@example.com", "short", RoleCustomer)
		assert.Error(t, err)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := NewUser("Alice", "alice@example.com", "s3cret-pass", Role("superuser"))
		assert.Error(t, err)
	})
}

func TestRole_IsValid(t *testing.T) {
	assert.True(t, RoleCustomer.IsValid())
	assert.True(t, RoleBusiness.IsValid())
	assert.True(t, RoleAdmin.IsValid())
	assert.False(t, Role("root").IsValid())
}

func TestUser_ChangePassword(t *testing.T) {
	user, err := NewUser("Alice", "alice@example.com", "s3cret-pass", RoleCustomer)
	require.NoError(t, err)

	t.Run("rejects wrong current password", func(t *testing.T) {
		assert.Error(t, user.ChangePassword("wrong", "another-pass"))
	})

	t.Run("changes password with correct current", func(t *testing.T) {
		require.NoError(t, user.ChangePassword("s3cret-pass", "another-pass"))
		assert.True(t, user.CheckPassword("another-pass"))
		assert.False(t, user.CheckPassword("s3cret-pass"))
	})
}

func TestUser_AddAddress(t *testing.T) {
	user, err := NewUser("Bob", "bob@example.com", "s3cret-pass", RoleCustomer)
	require.NoError(t, err)

	user.AddAddress(Address{Line1: "1 Main St", City: "Springfield"})
	user.AddAddress(Address{Line1: "2 Side St", City: "Springfield"})

	require.Len(t, user.Addresses, 2)
	assert.True(t, user.Addresses[0].IsDefault)
	assert.False(t, user.Addresses[1].IsDefault)
	assert.Equal(t, user.ID, user.Addresses[0].UserID)

	found := user.FindAddress(user.Addresses[1].ID)
	require.NotNil(t, found)
	assert.Equal(t, "2 Side St", found.Line1)

	assert.Nil(t, user.FindAddress(uuid.New()))
}

func TestUser_RecordLogin(t *testing.T) {
	user, err := NewUser("Bob", "bob@example.com", "s3cret-pass", RoleBusiness)
	require.NoError(t, err)

	now := time.Now()
	user.RecordLogin(now)
	require.NotNil(t, user.LastLoginAt)
	assert.True(t, user.LastLoginAt.Equal(now))
	assert.True(t, user.IsVendor())
	assert.False(t, user.IsAdmin())
}
