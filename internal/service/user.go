package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/msomdec/store-rating/internal/authz"
	"github.com/msomdec/store-rating/internal/domain"
)

// ListQuery carries the raw search and sort parameters of a listing request.
type ListQuery struct {
	Search        string
	Role          string // user listings only
	SortBy        string
	SortDirection string
}

// AdminDashboard is the system administrator's overview.
type AdminDashboard struct {
	TotalUsers   int
	TotalStores  int
	TotalRatings int
	RecentUsers  []domain.User
	RecentStores []StoreView
}

// UserService implements administrator operations over users and the admin
// dashboard.
type UserService struct {
	users       domain.UserRepository
	stores      domain.StoreRepository
	ratings     domain.RatingRepository
	bcryptCost  int
	recentLimit int
}

// NewUserService creates a new UserService.
func NewUserService(users domain.UserRepository, stores domain.StoreRepository, ratings domain.RatingRepository, bcryptCost, recentLimit int) *UserService {
	if recentLimit <= 0 {
		recentLimit = 5
	}
	return &UserService{
		users:       users,
		stores:      stores,
		ratings:     ratings,
		bcryptCost:  bcryptCost,
		recentLimit: recentLimit,
	}
}

// ListUsers returns users matching the query, each with store and rating counts.
func (s *UserService) ListUsers(ctx context.Context, caller domain.Caller, q ListQuery) ([]domain.UserSummary, error) {
	if err := authz.Authorize(caller, authz.ListUsers); err != nil {
		return nil, err
	}

	filter, verr := userFilter(q)
	if verr != nil {
		return nil, verr
	}

	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// CreateUser creates an account with any role.
func (s *UserService) CreateUser(ctx context.Context, caller domain.Caller, in NewUser) (*domain.User, error) {
	if err := authz.Authorize(caller, authz.CreateUser); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	return createAccount(ctx, s.users, s.bcryptCost, in.Name, in.Email, in.Password, in.Address, in.Role)
}

// Dashboard returns platform totals and the most recent users and stores.
func (s *UserService) Dashboard(ctx context.Context, caller domain.Caller) (*AdminDashboard, error) {
	if err := authz.Authorize(caller, authz.ViewAdminDashboard); err != nil {
		return nil, err
	}

	var (
		d   AdminDashboard
		err error
	)
	if d.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, err
	}
	if d.TotalStores, err = s.stores.Count(ctx); err != nil {
		return nil, err
	}
	if d.TotalRatings, err = s.ratings.Count(ctx); err != nil {
		return nil, err
	}
	if d.RecentUsers, err = s.users.ListRecent(ctx, s.recentLimit); err != nil {
		return nil, err
	}

	stores, err := s.stores.ListRecent(ctx, s.recentLimit)
	if err != nil {
		return nil, err
	}
	if d.RecentStores, err = summarizeStores(ctx, s.ratings, stores, 0); err != nil {
		return nil, err
	}
	return &d, nil
}

func userFilter(q ListQuery) (domain.UserFilter, *domain.ValidationError) {
	filter := domain.UserFilter{
		Search:    strings.TrimSpace(q.Search),
		SortBy:    q.SortBy,
		Direction: domain.SortDirection(strings.ToLower(q.SortDirection)),
	}

	verr := validateListing(filter.SortBy, filter.Direction, domain.UserSortFields)
	if q.Role != "" {
		role, ok := domain.ParseRole(q.Role)
		if !ok {
			if verr == nil {
				verr = &domain.ValidationError{Fields: map[string]string{}}
			}
			verr.Fields["role"] = "must be one of SYSTEM_ADMIN, NORMAL_USER, STORE_OWNER"
		}
		filter.Role = role
	}
	return filter, verr
}
