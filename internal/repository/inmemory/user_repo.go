package inmemory

import (
	"context"
	"sort"
	"sync"

	"taskDesk/internal/models/user"
	repo "taskDesk/internal/repository"
)

type UserStorage struct {
	storage map[string]*user.User
	mtx     *sync.RWMutex
}

func NewUserStorage() *UserStorage {
	return &UserStorage{
		storage: make(map[string]*user.User),
		mtx:     &sync.RWMutex{},
	}
}

// Put добавляет или заменяет пользователя; пользователи приходят из сидов
func (s *UserStorage) Put(ctx context.Context, u *user.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	copied := *u
	s.storage[u.ID] = &copied
	return nil
}

func (s *UserStorage) GetByID(ctx context.Context, id string) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	u, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *UserStorage) ListByRole(ctx context.Context, role user.Role) ([]*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*user.User{}
	for _, u := range s.storage {
		if u.Role == role {
			copied := *u
			res = append(res, &copied)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}
