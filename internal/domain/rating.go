package domain

import (
	"context"
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Rating is one user's score for one store. There is at most one Rating per
// (UserID, StoreID) pair.
type Rating struct {
	ID        int64
	UserID    int64
	StoreID   int64
	Value     int
	User      UserRef
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RatingRepository defines persistence operations for the rating ledger.
type RatingRepository interface {
	// Upsert creates the rating for (UserID, StoreID) or overwrites the value
	// and UpdatedAt of the existing one. The stored row is written back into
	// rating. created reports whether a new row was inserted.
	Upsert(ctx context.Context, rating *Rating) (created bool, err error)
	Find(ctx context.Context, userID, storeID int64) (*Rating, error)
	ListByStore(ctx context.Context, storeID int64) ([]Rating, error)
	// ListByStores returns ratings for all given stores keyed by store ID,
	// with rater identity filled in.
	ListByStores(ctx context.Context, storeIDs []int64) (map[int64][]Rating, error)
	Count(ctx context.Context) (int, error)
}
