package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	sqlitedrv "modernc.org/sqlite"

	"github.com/msomdec/store-rating/internal/domain"
	"github.com/msomdec/store-rating/internal/repository/sqlite/migrations"
)

// foldFunc is the SQL function used for case-insensitive search. SQLite's
// LOWER() folds ASCII only; foldFunc folds all of Unicode the same way
// likePattern folds the search term.
const foldFunc = "fold"

func init() {
	if err := sqlitedrv.RegisterDeterministicScalarFunction(foldFunc, 1, fold); err != nil {
		panic(fmt.Sprintf("register %s: %v", foldFunc, err))
	}
}

func fold(_ *sqlitedrv.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	}
	return args[0], nil
}

// DB is the SQLite-backed store for users, stores and ratings.
// It implements domain.Database and hands out the repositories.
type DB struct {
	SqlDB *sql.DB
}

// New opens a SQLite database at the given path with WAL journaling and
// foreign keys enabled.
func New(dbPath string) (*DB, error) {
	// Pragmas go in the DSN so every pooled connection gets them.
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_time_format=sqlite"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite has a single writer; one connection serializes writes in-process.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(context.Background()); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{SqlDB: sqlDB}, nil
}

// Wrap adapts an already opened *sql.DB.
func Wrap(sqlDB *sql.DB) *DB {
	return &DB{SqlDB: sqlDB}
}

// Migrate applies the embedded schema migrations.
func (d *DB) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, d.SqlDB)
}

func (d *DB) Close() error {
	return d.SqlDB.Close()
}

func (d *DB) Users() domain.UserRepository {
	return &userRepo{db: d.SqlDB}
}

func (d *DB) Stores() domain.StoreRepository {
	return &storeRepo{db: d.SqlDB}
}

func (d *DB) Ratings() domain.RatingRepository {
	return &ratingRepo{db: d.SqlDB}
}

// isUniqueConstraintError reports whether err is a SQLite UNIQUE violation.
func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isForeignKeyError reports whether err is a SQLite FOREIGN KEY violation.
func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// likePattern builds a LIKE pattern matching s anywhere, escaping LIKE
// wildcards with '\'. Compare it against fold(column).
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(r.Replace(s)) + "%"
}

// orderBy maps a whitelisted sort field to an ORDER BY clause, breaking ties
// on idCol. The second result is false for an unknown field or direction.
func orderBy(columns map[string]string, idCol, field string, dir domain.SortDirection) (string, bool) {
	if field == "" {
		field = "name"
	}
	col, ok := columns[field]
	if !ok {
		return "", false
	}
	d := "ASC"
	switch dir {
	case "", domain.SortAsc:
	case domain.SortDesc:
		d = "DESC"
	default:
		return "", false
	}
	return fmt.Sprintf("ORDER BY %s %s, %s %s", col, d, idCol, d), true
}
