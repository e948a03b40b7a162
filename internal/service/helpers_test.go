package service_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/msomdec/store-rating/internal/domain"
	"github.com/msomdec/store-rating/internal/repository/sqlite"
	"github.com/msomdec/store-rating/internal/service"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests-0123456789"
	testPassword  = "Passw0rd!"
)

type testEnv struct {
	db      *sqlite.DB
	auth    *service.AuthService
	users   *service.UserService
	stores  *service.StoreService
	ratings *service.RatingService
	admin   domain.Caller
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))
	t.Cleanup(func() { db.Close() })

	// Cost 4 keeps bcrypt fast in tests.
	env := &testEnv{
		db:      db,
		auth:    service.NewAuthService(db.Users(), testJWTSecret, time.Hour, 4),
		users:   service.NewUserService(db.Users(), db.Stores(), db.Ratings(), 4, 5),
		stores:  service.NewStoreService(db.Users(), db.Stores(), db.Ratings()),
		ratings: service.NewRatingService(db.Stores(), db.Ratings()),
	}

	created, err := env.auth.EnsureAdmin(context.Background(), service.NewUser{
		Name:     "Platform Administrator Account",
		Email:    "admin@example.com",
		Password: testPassword,
		Address:  "1 Admin Road",
	})
	require.NoError(t, err)
	require.True(t, created)

	admin, err := db.Users().GetByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	env.admin = domain.CallerOf(admin)
	return env
}

// newUser creates an account through the admin API and returns its caller.
func (e *testEnv) newUser(t *testing.T, email string, role domain.Role) domain.Caller {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), e.admin, service.NewUser{
		Name:     "Regular Test Account Holder",
		Email:    email,
		Password: testPassword,
		Address:  "22 Test Lane",
		Role:     role,
	})
	require.NoError(t, err)
	return domain.CallerOf(u)
}

// newStore creates a store owned by ownerEmail and returns it.
func (e *testEnv) newStore(t *testing.T, name, ownerEmail string) *domain.Store {
	t.Helper()
	st, err := e.stores.CreateStore(context.Background(), e.admin, service.NewStore{
		Name:       name,
		Email:      "contact@" + fmt.Sprint(len(name)) + ".example.com",
		Address:    "5 Market Square",
		OwnerEmail: ownerEmail,
	})
	require.NoError(t, err)
	return st
}
