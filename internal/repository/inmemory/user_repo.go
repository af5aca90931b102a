package inmemory

import (
	"context"
	"sync"

	"taskBoard/internal/models/user"
	repo "taskBoard/internal/repository"

	"github.com/google/uuid"
)

type UserStorage struct {
	storage  map[uuid.UUID]*user.User
	byGoogle map[string]uuid.UUID
	byEmail  map[string]uuid.UUID
	mtx      *sync.RWMutex
	ids      []uuid.UUID
}

func NewUserStorage() *UserStorage {
	return &UserStorage{
		storage:  make(map[uuid.UUID]*user.User),
		byGoogle: make(map[string]uuid.UUID),
		byEmail:  make(map[string]uuid.UUID),
		mtx:      &sync.RWMutex{},
	}
}

func (s *UserStorage) Create(ctx context.Context, userToCreate *user.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.byGoogle[userToCreate.GoogleID]; ok {
		return repo.ErrDuplicate
	}
	if _, ok := s.byEmail[userToCreate.Email]; ok {
		return repo.ErrDuplicate
	}

	s.storage[userToCreate.ID] = userToCreate.Clone()
	s.byGoogle[userToCreate.GoogleID] = userToCreate.ID
	s.byEmail[userToCreate.Email] = userToCreate.ID
	s.ids = append(s.ids, userToCreate.ID)
	return nil
}

func (s *UserStorage) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	u, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return u.Clone(), nil
}

func (s *UserStorage) GetByGoogleID(ctx context.Context, googleID string) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	id, ok := s.byGoogle[googleID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return s.storage[id].Clone(), nil
}

// GetByIDs skips ids that do not exist.
func (s *UserStorage) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*user.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.storage[id]; ok {
			res = append(res, u.Clone())
		}
	}
	return res, nil
}

func (s *UserStorage) ListExcept(ctx context.Context, excluded uuid.UUID) ([]*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*user.User, 0, len(s.ids))
	for _, id := range s.ids {
		if id == excluded {
			continue
		}
		res = append(res, s.storage[id].Clone())
	}
	return res, nil
}
