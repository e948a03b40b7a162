package domain

import (
	"context"
	"time"
)

// Role is the capability class of a user. The set is closed; see authz for
// what each role may do.
type Role string

const (
	RoleSystemAdmin Role = "SYSTEM_ADMIN"
	RoleNormalUser  Role = "NORMAL_USER"
	RoleStoreOwner  Role = "STORE_OWNER"
)

// Roles lists every known role.
var Roles = []Role{RoleSystemAdmin, RoleNormalUser, RoleStoreOwner}

// ParseRole returns the role named by s, or false when s is not a known role.
func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// User represents a registered account.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Address      string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserSummary is a user row annotated with how many stores they own and how
// many ratings they have written.
type UserSummary struct {
	User
	StoreCount  int
	RatingCount int
}

// Caller is the identity resolved for an authenticated request.
type Caller struct {
	ID   int64
	Role Role
}

// CallerOf returns the Caller for the given user.
func CallerOf(u *User) Caller {
	return Caller{ID: u.ID, Role: u.Role}
}

// UserFilter narrows and orders a user listing.
type UserFilter struct {
	Search    string // case-insensitive substring over name, email and address
	Role      Role   // exact match; empty means any role
	SortBy    string // one of UserSortFields
	Direction SortDirection
}

// UserSortFields are the sort keys accepted for user listings.
var UserSortFields = []string{"name", "email", "address", "role", "createdAt"}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	List(ctx context.Context, filter UserFilter) ([]UserSummary, error)
	ListRecent(ctx context.Context, limit int) ([]User, error)
	Count(ctx context.Context) (int, error)
}
