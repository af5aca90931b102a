package inmemory

import (
	"context"
	"slices"
	"sync"
	"time"

	"taskBoard/internal/logger"
	"taskBoard/internal/models/task"
	repo "taskBoard/internal/repository"

	"github.com/google/uuid"
)

type TaskStorage struct {
	storage map[uuid.UUID]*task.Task
	mtx     *sync.RWMutex
	ids     []uuid.UUID
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[uuid.UUID]*task.Task),
		mtx:     &sync.RWMutex{},
		ids:     []uuid.UUID{},
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	logger.Info("Repository: in-memory storage is healthy")
	return nil
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[taskToCreate.ID]; ok {
		return repo.ErrDuplicate
	}

	now := time.Now()
	if taskToCreate.CreatedAt.IsZero() {
		taskToCreate.CreatedAt = now
	}
	taskToCreate.UpdatedAt = taskToCreate.CreatedAt
	taskToCreate.Version = 1

	s.storage[taskToCreate.ID] = taskToCreate.Clone()
	s.ids = append(s.ids, taskToCreate.ID)
	return nil
}

// Update replaces the mutable fields when the version matches and appends the
// given entries to the stored history. The caller's history is rebuilt from
// the stored one, so nothing it did to earlier entries is kept. UpdatedAt is
// kept as given; a zero value means now.
func (s *TaskStorage) Update(ctx context.Context, taskToUpdate *task.Task, appended ...task.HistoryEntry) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, ok := s.storage[taskToUpdate.ID]
	if !ok {
		return repo.ErrNotFound
	}
	if stored.Version != taskToUpdate.Version {
		return repo.ErrVersionConflict
	}

	history := append(slices.Clone(stored.StatusHistory), appended...)

	updated := taskToUpdate.Clone()
	updated.OwnerID = stored.OwnerID
	updated.CreatedAt = stored.CreatedAt
	if updated.UpdatedAt.IsZero() {
		updated.UpdatedAt = time.Now()
	}
	updated.Version = stored.Version + 1
	updated.StatusHistory = history
	s.storage[updated.ID] = updated

	taskToUpdate.UpdatedAt = updated.UpdatedAt
	taskToUpdate.Version = updated.Version
	taskToUpdate.StatusHistory = slices.Clone(history)
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return taskToGet.Clone(), nil
}

// List returns every task, newest first.
func (s *TaskStorage) List(ctx context.Context) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*task.Task, 0, len(s.ids))
	for i := len(s.ids) - 1; i >= 0; i-- {
		res = append(res, s.storage[s.ids[i]].Clone())
	}
	return res, nil
}

func (s *TaskStorage) Delete(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	s.ids = slices.DeleteFunc(s.ids, func(v uuid.UUID) bool { return v == id })
	return nil
}
