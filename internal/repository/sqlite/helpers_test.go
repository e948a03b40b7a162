package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/msomdec/store-rating/internal/domain"
	"github.com/msomdec/store-rating/internal/repository/sqlite"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createUser(t *testing.T, db *sqlite.DB, name, email string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: "hash",
		Address:      "1 Test Street",
		Role:         role,
	}
	if err := db.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func createStore(t *testing.T, db *sqlite.DB, name string, owner *domain.User) *domain.Store {
	t.Helper()
	s := &domain.Store{
		Name:    name,
		Email:   fmt.Sprintf("%d@stores.example.com", len(name)),
		Address: name + " Avenue",
		OwnerID: owner.ID,
	}
	if err := db.Stores().CreateWithOwner(context.Background(), s, false); err != nil {
		t.Fatalf("create store %s: %v", name, err)
	}
	return s
}
