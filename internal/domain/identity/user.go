package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role represents the capability level of a user
type Role string

const (
	RoleCustomer Role = "customer"
	RoleBusiness Role = "business"
	RoleAdmin    Role = "admin"
)

// IsValid returns true if the role is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleBusiness, RoleAdmin:
		return true
	}
	return false
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// Password cost for bcrypt
const bcryptCost = 12

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Address is a saved shipping address belonging to a user
type Address struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Label      string    `gorm:"type:varchar(50)"`
	Line1      string    `gorm:"type:varchar(200);not null"`
	Line2      string    `gorm:"type:varchar(200)"`
	City       string    `gorm:"type:varchar(100);not null"`
	State      string    `gorm:"type:varchar(100)"`
	PostalCode string    `gorm:"type:varchar(20)"`
	Country    string    `gorm:"type:varchar(100)"`
	Phone      string    `gorm:"type:varchar(30)"`
	IsDefault  bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName returns the table name for GORM
func (Address) TableName() string {
	return "addresses"
}

// User represents an account in the marketplace.
// Vendors are users with RoleBusiness; admins moderate the platform.
type User struct {
	shared.BaseAggregateRoot
	Name         string    `gorm:"type:varchar(100);not null"`
	Email        string    `gorm:"type:varchar(254);not null;uniqueIndex"`
	PasswordHash string    `gorm:"type:varchar(100);not null"`
	Role         Role      `gorm:"type:varchar(20);not null;default:'customer'"`
	StoreName    string    `gorm:"type:varchar(200)"` // vendors only
	Addresses    []Address `gorm:"foreignKey:UserID"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a new user with a hashed password
func NewUser(name, email, password string, role Role) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Email:             strings.ToLower(strings.TrimSpace(email)),
		PasswordHash:      string(hash),
		Role:              role,
		Addresses:         make([]Address, 0),
	}

	user.AddDomainEvent(NewUserRegisteredEvent(user))

	return user, nil
}

// CheckPassword verifies a plaintext password against the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ChangePassword validates and rehashes the password
func (u *User) ChangePassword(current, next string) error {
	if !u.CheckPassword(current) {
		return shared.NewDomainError("UNAUTHORIZED", "Current password is incorrect")
	}
	if err := validatePassword(next); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcryptCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	u.PasswordHash = string(hash)
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// UpdateProfile changes the display name and, for vendors, the store name
func (u *User) UpdateProfile(name, storeName string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	u.Name = name
	if u.IsVendor() {
		u.StoreName = strings.TrimSpace(storeName)
	}
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// RecordLogin stamps the last successful login time
func (u *User) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
	u.UpdatedAt = time.Now()
}

// AddAddress appends a shipping address. The first address becomes the default.
func (u *User) AddAddress(addr Address) {
	addr.ID = uuid.New()
	addr.UserID = u.ID
	if len(u.Addresses) == 0 {
		addr.IsDefault = true
	}
	now := time.Now()
	addr.CreatedAt = now
	addr.UpdatedAt = now
	u.Addresses = append(u.Addresses, addr)
	u.UpdatedAt = now
}

// FindAddress returns the address with the given id, or nil
func (u *User) FindAddress(id uuid.UUID) *Address {
	for idx := range u.Addresses {
		if u.Addresses[idx].ID == id {
			return &u.Addresses[idx]
		}
	}
	return nil
}

// RemoveAddress deletes an address. Removing the default promotes the first
// remaining address.
func (u *User) RemoveAddress(id uuid.UUID) error {
	for idx := range u.Addresses {
		if u.Addresses[idx].ID == id {
			wasDefault := u.Addresses[idx].IsDefault
			u.Addresses = append(u.Addresses[:idx], u.Addresses[idx+1:]...)
			if wasDefault && len(u.Addresses) > 0 {
				u.Addresses[0].IsDefault = true
			}
			u.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.ErrNotFound
}

// SetDefaultAddress marks one address as the shipping default
func (u *User) SetDefaultAddress(id uuid.UUID) error {
	found := false
	for idx := range u.Addresses {
		if u.Addresses[idx].ID == id {
			found = true
		}
	}
	if !found {
		return shared.ErrNotFound
	}
	for idx := range u.Addresses {
		u.Addresses[idx].IsDefault = u.Addresses[idx].ID == id
	}
	u.UpdatedAt = time.Now()
	return nil
}

// IsVendor returns true for business accounts
func (u *User) IsVendor() bool {
	return u.Role == RoleBusiness
}

// IsAdmin returns true for admin accounts
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Email format is invalid")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}
