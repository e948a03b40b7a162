package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/msomdec/store-rating/internal/domain"
)

type ratingRepo struct {
	db *sql.DB
}

// ratingSelect reads ratings together with the rater's public identity.
const ratingSelect = `SELECT t.id, t.user_id, t.store_id, t.rating, t.created_at, t.updated_at, u.name, u.email
	FROM ratings t JOIN users u ON u.id = t.user_id`

func scanRating(row interface{ Scan(...any) error }, r *domain.Rating) error {
	if err := row.Scan(&r.ID, &r.UserID, &r.StoreID, &r.Value, &r.CreatedAt, &r.UpdatedAt,
		&r.User.Name, &r.User.Email); err != nil {
		return err
	}
	r.User.ID = r.UserID
	return nil
}

// Upsert relies on UNIQUE(user_id, store_id): a concurrent duplicate insert
// turns into an update of the existing row instead of a second row.
func (r *ratingRepo) Upsert(ctx context.Context, rating *domain.Rating) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM ratings WHERE user_id = ? AND store_id = ?`,
		rating.UserID, rating.StoreID,
	).Scan(&existing)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("look up rating: %w", err)
	}
	created := errors.Is(err, sql.ErrNoRows)

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO ratings (user_id, store_id, rating, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, store_id)
		 DO UPDATE SET rating = excluded.rating, updated_at = excluded.updated_at`,
		rating.UserID, rating.StoreID, rating.Value, now, now,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return false, domain.ErrNotFound
		}
		return false, fmt.Errorf("upsert rating: %w", err)
	}

	err = scanRating(tx.QueryRowContext(ctx,
		ratingSelect+` WHERE t.user_id = ? AND t.store_id = ?`,
		rating.UserID, rating.StoreID), rating)
	if err != nil {
		return false, fmt.Errorf("read back rating: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit rating: %w", err)
	}
	return created, nil
}

func (r *ratingRepo) Find(ctx context.Context, userID, storeID int64) (*domain.Rating, error) {
	rating := &domain.Rating{}
	err := scanRating(r.db.QueryRowContext(ctx,
		ratingSelect+` WHERE t.user_id = ? AND t.store_id = ?`,
		userID, storeID), rating)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find rating: %w", err)
	}
	return rating, nil
}

func (r *ratingRepo) ListByStore(ctx context.Context, storeID int64) ([]domain.Rating, error) {
	byStore, err := r.ListByStores(ctx, []int64{storeID})
	if err != nil {
		return nil, err
	}
	return byStore[storeID], nil
}

func (r *ratingRepo) ListByStores(ctx context.Context, storeIDs []int64) (map[int64][]domain.Rating, error) {
	result := make(map[int64][]domain.Rating, len(storeIDs))
	if len(storeIDs) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(storeIDs))
	args := make([]any, len(storeIDs))
	for i, id := range storeIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(
		ratingSelect+` WHERE t.store_id IN (%s) ORDER BY t.updated_at DESC, t.id DESC`,
		strings.Join(placeholders, ","),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ratings by stores: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rt domain.Rating
		if err := scanRating(rows, &rt); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		result[rt.StoreID] = append(result[rt.StoreID], rt)
	}
	return result, rows.Err()
}

func (r *ratingRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ratings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count ratings: %w", err)
	}
	return n, nil
}
