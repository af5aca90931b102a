package handlers

import (
	"context"

	"taskBoard/internal/auth"
	"taskBoard/internal/models/task"
	"taskBoard/internal/models/user"
	"taskBoard/internal/service"

	"github.com/google/uuid"
)

type TaskService interface {
	HealthCheck(ctx context.Context) error
	CreateTask(ctx context.Context, actor uuid.UUID, in service.TaskInput) (*task.Task, error)
	ListTasks(ctx context.Context) ([]service.TaskView, error)
	GetTask(ctx context.Context, id uuid.UUID) (*service.TaskView, error)
	ChangeStatus(ctx context.Context, actor, id uuid.UUID, change service.StatusChange) (*service.StatusChangeResult, error)
	UpdateTask(ctx context.Context, actor, id uuid.UUID, in service.TaskInput) (*task.Task, error)
	DeleteTask(ctx context.Context, actor, id uuid.UUID) error
	ListUsers(ctx context.Context, actor uuid.UUID) ([]*user.User, error)
}

type AuthService interface {
	Login(ctx context.Context, rawToken string) (*service.LoginResult, error)
	Profile(ctx context.Context, id uuid.UUID) (*user.User, error)
	Logout(ctx context.Context, claims *auth.Claims) error
}
