package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/store-rating/internal/domain"
)

type userRepo struct {
	db *sql.DB
}

const userColumns = `id, name, email, password_hash, address, role, created_at, updated_at`

var userSortColumns = map[string]string{
	"name":      "u.name",
	"email":     "u.email",
	"address":   "u.address",
	"role":      "u.role",
	"createdAt": "u.created_at",
}

func scanUser(row interface{ Scan(...any) error }, u *domain.User) error {
	return row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Address, &u.Role, &u.CreatedAt, &u.UpdatedAt)
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, address, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Name, user.Email, user.PasswordHash, user.Address, user.Role, now, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user := &domain.User{}
	err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id), user)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	return user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user := &domain.User{}
	err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email), user)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return user, nil
}

func (r *userRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepo) List(ctx context.Context, filter domain.UserFilter) ([]domain.UserSummary, error) {
	order, ok := orderBy(userSortColumns, "u.id", filter.SortBy, filter.Direction)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported sort %q %q", domain.ErrInvalidInput, filter.SortBy, filter.Direction)
	}

	query := `SELECT u.id, u.name, u.email, u.password_hash, u.address, u.role, u.created_at, u.updated_at,
		(SELECT COUNT(*) FROM stores s WHERE s.owner_id = u.id),
		(SELECT COUNT(*) FROM ratings t WHERE t.user_id = u.id)
		FROM users u WHERE 1 = 1`
	var args []any
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query += ` AND (fold(u.name) LIKE ? ESCAPE '\' OR fold(u.email) LIKE ? ESCAPE '\' OR fold(u.address) LIKE ? ESCAPE '\')`
		args = append(args, p, p, p)
	}
	if filter.Role != "" {
		query += ` AND u.role = ?`
		args = append(args, filter.Role)
	}
	query += " " + order

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.UserSummary
	for rows.Next() {
		var s domain.UserSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.PasswordHash, &s.Address, &s.Role,
			&s.CreatedAt, &s.UpdatedAt, &s.StoreCount, &s.RatingCount); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, s)
	}
	return users, rows.Err()
}

func (r *userRepo) ListRecent(ctx context.Context, limit int) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
