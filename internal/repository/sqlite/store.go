package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/store-rating/internal/domain"
)

type storeRepo struct {
	db *sql.DB
}

const storeSelect = `SELECT s.id, s.name, s.email, s.address, s.owner_id, u.name, u.email, s.created_at
	FROM stores s JOIN users u ON u.id = s.owner_id`

var storeSortColumns = map[string]string{
	"name":      "s.name",
	"email":     "s.email",
	"address":   "s.address",
	"createdAt": "s.created_at",
}

func scanStore(row interface{ Scan(...any) error }, s *domain.Store) error {
	if err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Address, &s.OwnerID, &s.Owner.Name, &s.Owner.Email, &s.CreatedAt); err != nil {
		return err
	}
	s.Owner.ID = s.OwnerID
	return nil
}

func (r *storeRepo) CreateWithOwner(ctx context.Context, store *domain.Store, promote bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	if promote {
		result, err := tx.ExecContext(ctx,
			`UPDATE users SET role = ?, updated_at = ? WHERE id = ?`,
			domain.RoleStoreOwner, now, store.OwnerID,
		)
		if err != nil {
			return fmt.Errorf("promote owner: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("promote owner rows affected: %w", err)
		}
		if n == 0 {
			return domain.ErrNotFound
		}
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO stores (name, email, address, owner_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		store.Name, store.Email, store.Address, store.OwnerID, now,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert store: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get store id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit store: %w", err)
	}

	store.ID = id
	store.CreatedAt = now
	return nil
}

func (r *storeRepo) GetByID(ctx context.Context, id int64) (*domain.Store, error) {
	s := &domain.Store{}
	err := scanStore(r.db.QueryRowContext(ctx, storeSelect+` WHERE s.id = ?`, id), s)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query store by id: %w", err)
	}
	return s, nil
}

func (r *storeRepo) List(ctx context.Context, filter domain.StoreFilter) ([]domain.Store, error) {
	order, ok := orderBy(storeSortColumns, "s.id", filter.SortBy, filter.Direction)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported sort %q %q", domain.ErrInvalidInput, filter.SortBy, filter.Direction)
	}

	query := storeSelect + ` WHERE 1 = 1`
	var args []any
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query += ` AND (fold(s.name) LIKE ? ESCAPE '\' OR fold(s.email) LIKE ? ESCAPE '\' OR fold(s.address) LIKE ? ESCAPE '\')`
		args = append(args, p, p, p)
	}
	query += " " + order

	return r.query(ctx, "list stores", query, args...)
}

func (r *storeRepo) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Store, error) {
	return r.query(ctx, "list stores by owner", storeSelect+` WHERE s.owner_id = ? ORDER BY s.name, s.id`, ownerID)
}

func (r *storeRepo) ListRecent(ctx context.Context, limit int) ([]domain.Store, error) {
	return r.query(ctx, "list recent stores", storeSelect+` ORDER BY s.created_at DESC, s.id DESC LIMIT ?`, limit)
}

func (r *storeRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stores`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count stores: %w", err)
	}
	return n, nil
}

func (r *storeRepo) query(ctx context.Context, op, query string, args ...any) ([]domain.Store, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var stores []domain.Store
	for rows.Next() {
		var s domain.Store
		if err := scanStore(rows, &s); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}
