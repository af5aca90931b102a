package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskBoard/internal/logger"
	"taskBoard/internal/models/task"
	"taskBoard/internal/models/user"
	rep "taskBoard/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskView is a task with its assignee resolved; Assignee is nil when unassigned.
type TaskView struct {
	Task     *task.Task
	Assignee *user.User
}

type StatusChangeResult struct {
	Task           *task.Task
	PreviousStatus task.Status
	NewStatus      task.Status
}

type TaskService struct {
	tasks TaskRepository
	users UserRepository
	now   func() time.Time
}

func NewTaskService(tasks TaskRepository, users UserRepository) *TaskService {
	return &TaskService{
		tasks: tasks,
		users: users,
		now:   time.Now,
	}
}

func (s *TaskService) WithClock(now func() time.Time) *TaskService {
	s.now = now
	return s
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.tasks.HealthCheck(ctx); err != nil {
		return fmt.Errorf("service health check: %w", err)
	}
	return nil
}

func (s *TaskService) CreateTask(ctx context.Context, actor uuid.UUID, in TaskInput) (*task.Task, error) {
	v, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}

	opts := append(v.options(), task.WithStatus(v.status))
	t := task.New(actor, s.now().UTC(), opts...)

	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	logger.Info("Service: task created",
		zap.String("task_id", t.ID.String()),
		zap.String("owner_id", actor.String()),
	)
	return t, nil
}

func (s *TaskService) ListTasks(ctx context.Context) ([]TaskView, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0)
	for _, t := range tasks {
		if !t.HasAssignee() {
			continue
		}
		if _, ok := seen[*t.AssigneeID]; !ok {
			seen[*t.AssigneeID] = struct{}{}
			ids = append(ids, *t.AssigneeID)
		}
	}

	byID := make(map[uuid.UUID]*user.User, len(ids))
	if len(ids) > 0 {
		assignees, err := s.users.GetByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("resolve assignees: %w", err)
		}
		for _, u := range assignees {
			byID[u.ID] = u
		}
	}

	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		view := TaskView{Task: t}
		if t.HasAssignee() {
			view.Assignee = byID[*t.AssigneeID]
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *TaskService) GetTask(ctx context.Context, id uuid.UUID) (*TaskView, error) {
	t, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &TaskView{Task: t}
	if t.HasAssignee() {
		assignee, err := s.users.GetByID(ctx, *t.AssigneeID)
		switch {
		case err == nil:
			view.Assignee = assignee
		case !errors.Is(err, rep.ErrNotFound):
			return nil, fmt.Errorf("resolve assignee: %w", err)
		}
	}
	return view, nil
}

// ChangeStatus moves a task to a new status if the actor is allowed to.
func (s *TaskService) ChangeStatus(ctx context.Context, actor, id uuid.UUID, change StatusChange) (*StatusChangeResult, error) {
	requested := task.Status(change.Status)
	if !requested.Valid() {
		return nil, NewValidationError("status", "Invalid status value")
	}

	t, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := t.Status
	now := s.now().UTC()
	entry, err := task.Transition(t, actor, requested, strings.TrimSpace(change.Comment), now)
	if err != nil {
		logger.Info("Service: status change denied",
			zap.String("task_id", id.String()),
			zap.String("actor_id", actor.String()),
			zap.String("requested", string(requested)),
		)
		return nil, NewBusinessError(CodeTransitionForbidden, task.DenialMessage(err)).Wrap(err)
	}
	t.UpdatedAt = now

	if err := s.persist(ctx, t, entry); err != nil {
		return nil, err
	}

	return &StatusChangeResult{
		Task:           t,
		PreviousStatus: previous,
		NewStatus:      requested,
	}, nil
}

// UpdateTask replaces the editable fields of a task. A status that differs
// from the current one goes through the same rule as ChangeStatus.
func (s *TaskService) UpdateTask(ctx context.Context, actor, id uuid.UUID, in TaskInput) (*task.Task, error) {
	v, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}

	t, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Version != nil && *in.Version != t.Version {
		return nil, NewVersionConflict(id.String())
	}

	now := s.now().UTC()
	var appended []task.HistoryEntry
	if in.Status != "" && v.status != t.Status {
		entry, err := task.Transition(t, actor, v.status, "", now)
		if err != nil {
			return nil, NewBusinessError(CodeTransitionForbidden, task.DenialMessage(err)).Wrap(err)
		}
		appended = append(appended, entry)
	}

	for _, opt := range v.options() {
		opt(t)
	}
	t.UpdatedAt = now

	if err := s.persist(ctx, t, appended...); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, actor, id uuid.UUID) error {
	t, err := s.getTask(ctx, id)
	if err != nil {
		return err
	}
	if t.OwnerID != actor {
		return NewBusinessError(CodeDeleteForbidden, MsgOnlyOwnerCanDelete,
			ToDetail("id", id.String()))
	}

	if err := s.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return NewNotFound("Task", id.String())
		}
		return fmt.Errorf("delete task: %w", err)
	}

	logger.Info("Service: task deleted", zap.String("task_id", id.String()))
	return nil
}

// ListUsers returns everyone except the caller, for the assignee picker.
func (s *TaskService) ListUsers(ctx context.Context, actor uuid.UUID) ([]*user.User, error) {
	users, err := s.users.ListExcept(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *TaskService) getTask(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: task not found", zap.String("target_id", id.String()))
			return nil, NewNotFound("Task", id.String())
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskService) persist(ctx context.Context, t *task.Task, appended ...task.HistoryEntry) error {
	err := s.tasks.Update(ctx, t, appended...)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, rep.ErrVersionConflict):
		logger.Warn("Service: version conflict", zap.String("task_id", t.ID.String()))
		return NewVersionConflict(t.ID.String()).Wrap(err)
	case errors.Is(err, rep.ErrNotFound):
		return NewNotFound("Task", t.ID.String())
	default:
		return fmt.Errorf("update task: %w", err)
	}
}
