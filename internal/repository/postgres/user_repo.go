package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskBoard/internal/logger"
	"taskBoard/internal/models/user"
	repo "taskBoard/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const selectUser = `SELECT id, google_id, first_name, last_name, email, created_at, updated_at FROM users`

// UserStore reads and writes users through the pool owned by Storage.
type UserStore struct {
	pool *pgxpool.Pool
}

func (s *Storage) Users() *UserStore {
	return &UserStore{pool: s.pool}
}

func scanUser(row rowScanner) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(&u.ID, &u.GoogleID, &u.FirstName, &u.LastName, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserStore) Create(ctx context.Context, u *user.User) error {
	start := time.Now()

	query := `INSERT INTO users (id, google_id, first_name, last_name, email, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
				RETURNING created_at, updated_at`

	err := s.pool.QueryRow(ctx, query, u.ID, u.GoogleID, u.FirstName, u.LastName, u.Email).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repo.ErrDuplicate
		}
		logger.Error("Repository: failed to insert user", err)
		return fmt.Errorf("insert user: %w", err)
	}

	warnIfSlow("create_user", start, slowQuery)
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.getOne(ctx, selectUser+` WHERE id = $1`, id)
}

func (s *UserStore) GetByGoogleID(ctx context.Context, googleID string) (*user.User, error) {
	return s.getOne(ctx, selectUser+` WHERE google_id = $1`, googleID)
}

func (s *UserStore) getOne(ctx context.Context, query string, arg any) (*user.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: failed to get user", err)
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*user.User, error) {
	if len(ids) == 0 {
		return []*user.User{}, nil
	}
	return s.getMany(ctx, selectUser+` WHERE id = ANY($1::uuid[])`, uuidStrings(ids))
}

func (s *UserStore) ListExcept(ctx context.Context, excluded uuid.UUID) ([]*user.User, error) {
	return s.getMany(ctx, selectUser+` WHERE id <> $1 ORDER BY first_name, last_name`, excluded)
}

func (s *UserStore) getMany(ctx context.Context, query string, args ...any) ([]*user.User, error) {
	start := time.Now()

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: failed to list users", err)
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []*user.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	warnIfSlow("list_users", start, slowQuery)
	return users, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
