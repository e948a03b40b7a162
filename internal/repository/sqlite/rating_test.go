package sqlite_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msomdec/store-rating/internal/domain"
)

func TestRatingRepository_UpsertCreatesThenUpdates(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createUser(t, db, "Owner Of The Rated Store", "o@example.com", domain.RoleStoreOwner)
	rater := createUser(t, db, "Rater Of Stores Everywhere", "r@example.com", domain.RoleNormalUser)
	store := createStore(t, db, "Rated Corner Grocery", owner)

	first := &domain.Rating{UserID: rater.ID, StoreID: store.ID, Value: 4}
	created, err := db.Ratings().Upsert(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, first.ID)
	assert.True(t, first.CreatedAt.Equal(first.UpdatedAt))
	assert.Equal(t, rater.ID, first.User.ID)
	assert.Equal(t, rater.Name, first.User.Name)
	assert.Equal(t, rater.Email, first.User.Email)

	second := &domain.Rating{UserID: rater.ID, StoreID: store.ID, Value: 2}
	created, err = db.Ratings().Upsert(ctx, second)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.Value)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt), "created_at must be preserved")
	assert.False(t, second.UpdatedAt.Before(first.UpdatedAt))
	assert.Equal(t, rater.Email, second.User.Email)

	all, err := db.Ratings().ListByStore(ctx, store.ID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 2, all[0].Value)
	assert.Equal(t, rater.Name, all[0].User.Name)
}

func TestRatingRepository_UpsertSameValueTwice(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createUser(t, db, "Owner Of The Rated Store", "o@example.com", domain.RoleStoreOwner)
	rater := createUser(t, db, "Rater Of Stores Everywhere", "r@example.com", domain.RoleNormalUser)
	store := createStore(t, db, "Idempotent Book Shop", owner)

	a := &domain.Rating{UserID: rater.ID, StoreID: store.ID, Value: 3}
	_, err := db.Ratings().Upsert(ctx, a)
	require.NoError(t, err)
	b := &domain.Rating{UserID: rater.ID, StoreID: store.ID, Value: 3}
	_, err = db.Ratings().Upsert(ctx, b)
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.True(t, a.CreatedAt.Equal(b.CreatedAt))

	n, err := db.Ratings().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRatingRepository_ConcurrentUpsertKeepsOneRow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createUser(t, db, "Owner Of The Rated Store", "o@example.com", domain.RoleStoreOwner)
	rater := createUser(t, db, "Rater Of Stores Everywhere", "r@example.com", domain.RoleNormalUser)
	store := createStore(t, db, "Busy Downtown Diner", owner)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			_, err := db.Ratings().Upsert(ctx, &domain.Rating{UserID: rater.ID, StoreID: store.ID, Value: v%5 + 1})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	n, err := db.Ratings().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRatingRepository_UnknownStore(t *testing.T) {
	db := newTestDB(t)
	rater := createUser(t, db, "Rater Of Stores Everywhere", "r@example.com", domain.RoleNormalUser)

	_, err := db.Ratings().Upsert(context.Background(), &domain.Rating{UserID: rater.ID, StoreID: 777, Value: 5})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRatingRepository_FindAndListByStores(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createUser(t, db, "Owner Of The Rated Store", "o@example.com", domain.RoleStoreOwner)
	u1 := createUser(t, db, "First Rater Of The Stores", "u1@example.com", domain.RoleNormalUser)
	u2 := createUser(t, db, "Second Rater Of The Stores", "u2@example.com", domain.RoleNormalUser)
	s1 := createStore(t, db, "First Store On The Block", owner)
	s2 := createStore(t, db, "Second Store On The Block", owner)
	s3 := createStore(t, db, "Third Store Nobody Rated", owner)

	for _, r := range []domain.Rating{
		{UserID: u1.ID, StoreID: s1.ID, Value: 5},
		{UserID: u2.ID, StoreID: s1.ID, Value: 3},
		{UserID: u1.ID, StoreID: s2.ID, Value: 1},
	} {
		_, err := db.Ratings().Upsert(ctx, &r)
		require.NoError(t, err)
	}

	got, err := db.Ratings().Find(ctx, u2.ID, s1.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Value)

	_, err = db.Ratings().Find(ctx, u2.ID, s2.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	byStore, err := db.Ratings().ListByStores(ctx, []int64{s1.ID, s2.ID, s3.ID})
	require.NoError(t, err)
	assert.Len(t, byStore[s1.ID], 2)
	assert.Len(t, byStore[s2.ID], 1)
	assert.Empty(t, byStore[s3.ID])

	empty, err := db.Ratings().ListByStores(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
