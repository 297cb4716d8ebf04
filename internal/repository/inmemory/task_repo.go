package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"taskDesk/internal/logger"
	"taskDesk/internal/models/task"
	repo "taskDesk/internal/repository"

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
	logger.Info("Repository: Соединение стабильно")
	return nil
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if taskToCreate.CreatedAt.IsZero() {
		taskToCreate.CreatedAt = time.Now()
	}
	taskToCreate.Version = 1

	s.storage[taskToCreate.UUID] = taskToCreate.Clone()
	s.ids = append(s.ids, taskToCreate.UUID)
	return nil
}

func (s *TaskStorage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existed, ok := s.storage[taskToUpdate.UUID]
	if !ok {
		return repo.ErrNotFound
	}
	if existed.Version != taskToUpdate.Version {
		return repo.ErrVersionConflict
	}

	now := time.Now()
	taskToUpdate.UpdatedAt = &now
	taskToUpdate.Version++
	s.storage[taskToUpdate.UUID] = taskToUpdate.Clone()

	return nil
}

// обновление полей завершения без проверки версии: пишет только триггер
func (s *TaskStorage) UpdateCompletion(ctx context.Context, id uuid.UUID, daysTaken int, completedAt time.Time) (int, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existed, ok := s.storage[id]
	if !ok {
		return 0, repo.ErrNotFound
	}

	days := daysTaken
	at := completedAt
	existed.DaysTaken = &days
	existed.CompletedAt = &at
	existed.Version++

	return existed.Version, nil
}

// полное удаление
func (s *TaskStorage) Delete(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
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

// все задачи, новые первыми
func (s *TaskStorage) ListAll(ctx context.Context) ([]*task.Task, error) {
	return s.filter(func(t *task.Task) bool { return true }), nil
}

// задачи сотрудника по возрастанию дедлайна
func (s *TaskStorage) ListByAssignee(ctx context.Context, employeeID string) ([]*task.Task, error) {
	res := s.filter(func(t *task.Task) bool { return t.AssignedEmployeeID == employeeID })
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Deadline.Before(res[j].Deadline)
	})
	return res, nil
}

func (s *TaskStorage) ListNotCompleted(ctx context.Context) ([]*task.Task, error) {
	return s.filter(func(t *task.Task) bool { return t.Status != task.StatusCompleted }), nil
}

func (s *TaskStorage) filter(keep func(*task.Task) bool) []*task.Task {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for i := len(s.ids) - 1; i >= 0; i-- {
		t := s.storage[s.ids[i]]
		if keep(t) {
			res = append(res, t.Clone())
		}
	}
	return res
}
