// Package authz decides which operations a caller's role permits.
//
// Authorization is a stateless predicate over (role, action). Ownership of a
// resource is never taken from client input: operations scoped to "my
// stores" read the caller's own ID.
package authz

import (
	"fmt"

	"github.com/msomdec/store-rating/internal/domain"
)

// Action is an operation guarded by role.
type Action int

const (
	ListUsers Action = iota
	CreateUser
	ViewAdminDashboard
	ListStores
	CreateStore
	SubmitRating
	ViewOwnerDashboard
)

func (a Action) String() string {
	switch a {
	case ListUsers:
		return "list users"
	case CreateUser:
		return "create user"
	case ViewAdminDashboard:
		return "view admin dashboard"
	case ListStores:
		return "list stores"
	case CreateStore:
		return "create store"
	case SubmitRating:
		return "submit rating"
	case ViewOwnerDashboard:
		return "view owner dashboard"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Allowed reports whether role may perform action.
func Allowed(role domain.Role, action Action) bool {
	switch role {
	case domain.RoleSystemAdmin:
		switch action {
		case ListUsers, CreateUser, ViewAdminDashboard, ListStores, CreateStore, SubmitRating:
			return true
		}
	case domain.RoleNormalUser:
		switch action {
		case ListStores, SubmitRating:
			return true
		}
	case domain.RoleStoreOwner:
		switch action {
		case ListStores, SubmitRating, ViewOwnerDashboard:
			return true
		}
	}
	return false
}

// Authorize returns nil when caller may perform action, otherwise an error
// wrapping domain.ErrForbidden. A zero caller is unauthenticated.
func Authorize(caller domain.Caller, action Action) error {
	if caller.ID == 0 {
		return domain.ErrUnauthorized
	}
	if !Allowed(caller.Role, action) {
		return fmt.Errorf("%w: %s may not %s", domain.ErrForbidden, caller.Role, action)
	}
	return nil
}
