package service

import (
	"context"
	"time"

	"taskBoard/internal/auth"
	"taskBoard/internal/models/task"
	"taskBoard/internal/models/user"

	"github.com/google/uuid"
)

type TaskRepository interface {
	HealthCheck(ctx context.Context) error
	Create(ctx context.Context, t *task.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error)
	List(ctx context.Context) ([]*task.Task, error)
	// Update stores the mutable fields of t if t.Version still matches and
	// appends the given history entries in the same write.
	Update(ctx context.Context, t *task.Task, appended ...task.HistoryEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*user.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*user.User, error)
	ListExcept(ctx context.Context, excluded uuid.UUID) ([]*user.User, error)
}

type IdentityVerifier interface {
	Verify(ctx context.Context, rawToken string) (*auth.Identity, error)
}

type SessionIssuer interface {
	Issue(userID uuid.UUID, googleID string) (string, *auth.Claims, error)
}

type SessionRevoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
}
