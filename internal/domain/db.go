package domain

import "context"

// Database defines lifecycle operations for the underlying database.
// The implementation owns its migration files, so the storage backend can be
// replaced without touching services.
type Database interface {
	Migrate(ctx context.Context) error
	Close() error
}
