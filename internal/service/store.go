package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/msomdec/store-rating/internal/authz"
	"github.com/msomdec/store-rating/internal/domain"
	"github.com/msomdec/store-rating/internal/metrics"
)

// StoreView is a store together with its derived rating statistics.
type StoreView struct {
	domain.Store
	Summary domain.RatingSummary
	// CallerRating is the requesting user's own rating, nil when they have
	// not rated the store.
	CallerRating *domain.Rating
}

// OwnedStore is one entry of the owner dashboard.
type OwnedStore struct {
	domain.Store
	Summary domain.RatingSummary
	Ratings []domain.Rating
}

// OwnerDashboard is the store owner's feedback overview.
type OwnerDashboard struct {
	Stores       []OwnedStore
	TotalRatings int
}

// StoreService implements store listing, creation and the owner dashboard.
type StoreService struct {
	users   domain.UserRepository
	stores  domain.StoreRepository
	ratings domain.RatingRepository
}

// NewStoreService creates a new StoreService.
func NewStoreService(users domain.UserRepository, stores domain.StoreRepository, ratings domain.RatingRepository) *StoreService {
	return &StoreService{users: users, stores: stores, ratings: ratings}
}

// ListStores returns stores matching the query with their aggregates and the
// caller's own rating.
func (s *StoreService) ListStores(ctx context.Context, caller domain.Caller, q ListQuery) ([]StoreView, error) {
	if err := authz.Authorize(caller, authz.ListStores); err != nil {
		return nil, err
	}

	filter := domain.StoreFilter{
		Search:    strings.TrimSpace(q.Search),
		SortBy:    q.SortBy,
		Direction: domain.SortDirection(strings.ToLower(q.SortDirection)),
	}
	if verr := validateListing(filter.SortBy, filter.Direction, domain.StoreSortFields); verr != nil {
		return nil, verr
	}

	stores, err := s.stores.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	return summarizeStores(ctx, s.ratings, stores, caller.ID)
}

// CreateStore registers a store for the user named by OwnerEmail. A
// NORMAL_USER owner is promoted to STORE_OWNER in the same transaction.
// Other roles keep their role.
func (s *StoreService) CreateStore(ctx context.Context, caller domain.Caller, in NewStore) (*domain.Store, error) {
	if err := authz.Authorize(caller, authz.CreateStore); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	owner, err := s.users.GetByEmail(ctx, in.OwnerEmail)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("owner %s: %w", in.OwnerEmail, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("look up owner: %w", err)
	}

	store := &domain.Store{
		Name:    in.Name,
		Email:   in.Email,
		Address: in.Address,
		OwnerID: owner.ID,
	}
	promote := owner.Role == domain.RoleNormalUser
	if err := s.stores.CreateWithOwner(ctx, store, promote); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("create store: %w", err)
	}

	store.Owner = domain.UserRef{ID: owner.ID, Name: owner.Name, Email: owner.Email}
	metrics.StoreCreated(promote)
	return store, nil
}

// OwnerDashboard returns every store owned by the caller with its ratings
// and aggregates. The owner is always the caller.
func (s *StoreService) OwnerDashboard(ctx context.Context, caller domain.Caller) (*OwnerDashboard, error) {
	if err := authz.Authorize(caller, authz.ViewOwnerDashboard); err != nil {
		return nil, err
	}

	stores, err := s.stores.ListByOwner(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("list owned stores: %w", err)
	}

	byStore, err := s.ratings.ListByStores(ctx, storeIDs(stores))
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}

	d := &OwnerDashboard{Stores: make([]OwnedStore, 0, len(stores))}
	for _, st := range stores {
		ratings := byStore[st.ID]
		if ratings == nil {
			ratings = []domain.Rating{}
		}
		summary := domain.Summarize(ratings)
		d.TotalRatings += summary.Count
		d.Stores = append(d.Stores, OwnedStore{Store: st, Summary: summary, Ratings: ratings})
	}
	return d, nil
}

// summarizeStores attaches rating aggregates to each store. When callerID is
// non-zero the caller's own rating is attached as well.
func summarizeStores(ctx context.Context, ratings domain.RatingRepository, stores []domain.Store, callerID int64) ([]StoreView, error) {
	byStore, err := ratings.ListByStores(ctx, storeIDs(stores))
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}

	views := make([]StoreView, 0, len(stores))
	for _, st := range stores {
		rs := byStore[st.ID]
		v := StoreView{Store: st, Summary: domain.Summarize(rs)}
		if callerID != 0 {
			v.CallerRating = domain.RatingBy(rs, callerID)
		}
		views = append(views, v)
	}
	return views, nil
}

func storeIDs(stores []domain.Store) []int64 {
	ids := make([]int64, len(stores))
	for i, st := range stores {
		ids[i] = st.ID
	}
	return ids
}
