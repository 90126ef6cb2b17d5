package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Rahmadjon0038/avto-test-backend/internal/model"
)

// UserRepository handles user data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, first_name, last_name, phone, password_hash, role,
	is_subscribed, subscription_start, subscription_end, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Phone, &u.PasswordHash,
		&u.Role, &u.IsSubscribed, &u.SubscriptionStart, &u.SubscriptionEnd,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return u, nil
}

// GetByID retrieves a user by primary key.
func (r *UserRepository) GetByID(ctx context.Context, id int) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByPhone retrieves a user by phone number.
func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE phone = $1`, phone))
}

// Create inserts a new user. Returns ErrDuplicate if the phone is taken.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (first_name, last_name, phone, password_hash, role)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		u.FirstName, u.LastName, u.Phone, u.PasswordHash, u.Role,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// UpdateSubscription stores a user's new subscription window.
func (r *UserRepository) UpdateSubscription(ctx context.Context, userID int, start, end time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users
		 SET is_subscribed = TRUE, subscription_start = $1, subscription_end = $2, updated_at = NOW()
		 WHERE id = $3`, start, end, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
