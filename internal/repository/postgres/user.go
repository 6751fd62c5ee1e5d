package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"librental-backend/internal/domain"
	"librental-backend/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, name, password_hash, role, active, created_on`

func scanUser(row interface{ Scan(dest ...any) error }) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.Active, &u.CreatedOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (email, name, password_hash, role, active, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	return conn(ctx, r.db).QueryRowContext(ctx, query,
		u.Email, u.Name, u.PasswordHash, u.Role, u.Active, time.Now()).Scan(&u.ID)
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(conn(ctx, r.db).QueryRowContext(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(conn(ctx, r.db).QueryRowContext(ctx, query, email))
}
