package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"taskDesk/internal/models/notification"
	repo "taskDesk/internal/repository"

	"github.com/google/uuid"
)

type NotificationStorage struct {
	storage map[uuid.UUID]*notification.Notification
	mtx     *sync.RWMutex
}

func NewNotificationStorage() *NotificationStorage {
	return &NotificationStorage{
		storage: make(map[uuid.UUID]*notification.Notification),
		mtx:     &sync.RWMutex{},
	}
}

func (s *NotificationStorage) Create(ctx context.Context, n *notification.Notification) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if n.UUID == uuid.Nil {
		n.UUID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	copied := *n
	s.storage[n.UUID] = &copied
	return nil
}

func (s *NotificationStorage) ExistsSince(ctx context.Context, userID string, taskID uuid.UUID, kind notification.Kind, since time.Time) (bool, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for _, n := range s.storage {
		if n.UserID != userID || n.Kind != kind || n.TaskID == nil || *n.TaskID != taskID {
			continue
		}
		if n.CreatedAt.After(since) {
			return true, nil
		}
	}
	return false, nil
}

func (s *NotificationStorage) ListByUser(ctx context.Context, userID string) ([]*notification.Notification, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*notification.Notification{}
	for _, n := range s.storage {
		if n.UserID == userID {
			copied := *n
			res = append(res, &copied)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res, nil
}

func (s *NotificationStorage) GetByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	n, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	copied := *n
	return &copied, nil
}

func (s *NotificationStorage) MarkRead(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	n, ok := s.storage[id]
	if !ok {
		return repo.ErrNotFound
	}
	n.Read = true
	return nil
}
