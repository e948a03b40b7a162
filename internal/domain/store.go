package domain

import (
	"context"
	"time"
)

// Store is a rateable business. Every store has exactly one owner.
type Store struct {
	ID        int64
	Name      string
	Email     string
	Address   string
	OwnerID   int64
	Owner     UserRef
	CreatedAt time.Time
}

// UserRef is the public part of a user shown next to stores and ratings.
type UserRef struct {
	ID    int64
	Name  string
	Email string
}

// StoreFilter narrows and orders a store listing.
type StoreFilter struct {
	Search    string // case-insensitive substring over name, email and address
	SortBy    string // one of StoreSortFields
	Direction SortDirection
}

// StoreSortFields are the sort keys accepted for store listings.
var StoreSortFields = []string{"name", "email", "address", "createdAt"}

// StoreRepository defines persistence operations for stores.
type StoreRepository interface {
	// CreateWithOwner inserts the store and, in the same transaction, promotes
	// the owner to STORE_OWNER when promote is true. Either both writes
	// happen or neither does.
	CreateWithOwner(ctx context.Context, store *Store, promote bool) error
	GetByID(ctx context.Context, id int64) (*Store, error)
	List(ctx context.Context, filter StoreFilter) ([]Store, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]Store, error)
	ListRecent(ctx context.Context, limit int) ([]Store, error)
	Count(ctx context.Context) (int, error)
}
