package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskDesk/internal/logger"
	"taskDesk/internal/models/notification"
	"taskDesk/internal/models/task"
	"taskDesk/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики

type TaskService struct {
	repo       repository.TaskRepository
	users      repository.UserRepository
	notifier   Notifier
	completion CompletionHook
	now        func() time.Time
}

func NewTaskService(repo repository.TaskRepository, users repository.UserRepository, notifier Notifier, completion CompletionHook) *TaskService {
	return &TaskService{
		repo:       repo,
		users:      users,
		notifier:   notifier,
		completion: completion,
		now:        time.Now,
	}
}

// WithClock подменяет часы сервиса
func (s *TaskService) WithClock(now func() time.Time) *TaskService {
	s.now = now
	return s
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	return nil
}

// CreateTask сохраняет новую задачу в статусе Pending и уведомляет исполнителя.
// Ошибка уведомления не отменяет создание.
func (s *TaskService) CreateTask(ctx context.Context, createdBy string, draft *task.Task) (*task.Task, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	assignee, err := s.users.GetByID(ctx, draft.AssignedEmployeeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewValidationError("assigned_employee_id", "сотрудник не найден")
		}
		return nil, fmt.Errorf("получение исполнителя: %w", err)
	}

	newTask := draft.Clone()
	newTask.UUID = uuid.New()
	newTask.AssignedEmployeeName = assignee.DisplayName
	newTask.Status = task.StatusPending
	newTask.CreatedBy = createdBy
	newTask.CreatedAt = s.now()
	newTask.UpdatedAt = nil
	newTask.CompletedAt = nil
	newTask.DaysTaken = nil
	if newTask.Priority == "" {
		newTask.Priority = task.PriorityMedium
	}

	if err := s.repo.Create(ctx, newTask); err != nil {
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	logger.Info("Service: Задача создана",
		zap.String("task_id", newTask.UUID.String()),
		zap.String("assignee", newTask.AssignedEmployeeID))

	taskID := newTask.UUID
	note := notification.New(newTask.AssignedEmployeeID, notification.KindTaskAssigned,
		"New Task Assigned",
		"You have been assigned a new task: "+newTask.Title,
		&taskID, s.now())
	if err := s.notifier.Notify(ctx, note); err != nil {
		logger.Error("Service: Не удалось создать уведомление о назначении", err,
			zap.String("task_id", newTask.UUID.String()))
	}

	return newTask, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
			return nil, NewNotFound("задача", id.String())
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return t, nil
}

// ListTasks возвращает все задачи или только задачи сотрудника, если assignee задан
func (s *TaskService) ListTasks(ctx context.Context, assignee string) ([]*task.Task, error) {
	var (
		tasks []*task.Task
		err   error
	)
	if assignee == "" {
		tasks, err = s.repo.ListAll(ctx)
	} else {
		tasks, err = s.repo.ListByAssignee(ctx, assignee)
	}
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

// UpdateTask применяет опции к текущему состоянию задачи, проверяет переход
// статуса и сохраняет. version = 0 отключает сверку версии клиента.
// После записи вызывается обработчик завершения, его ошибка возвращается.
func (s *TaskService) UpdateTask(ctx context.Context, id uuid.UUID, version int, options ...task.TaskOption) (*task.Task, error) {
	current, err := s.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if version != 0 && version != current.Version {
		return nil, NewVersionConflict(id.String(), repository.ErrVersionConflict)
	}

	before := current.Clone()
	for _, opt := range options {
		if opt != nil {
			opt(current)
		}
	}

	if !current.Status.Valid() {
		return nil, NewValidationError("status", "неизвестный статус")
	}
	if !task.CanTransition(before.Status, current.Status) {
		return nil, NewInvalidTransition(string(before.Status), string(current.Status))
	}
	if !current.Priority.Valid() {
		return nil, NewValidationError("priority", "неизвестный приоритет")
	}
	if !task.ValidCategory(current.TaskCategory, current.TaskType) {
		return nil, NewValidationError("task_type", "тип не относится к категории")
	}

	if current.AssignedEmployeeID != before.AssignedEmployeeID {
		assignee, err := s.users.GetByID(ctx, current.AssignedEmployeeID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, NewValidationError("assigned_employee_id", "сотрудник не найден")
			}
			return nil, fmt.Errorf("получение исполнителя: %w", err)
		}
		current.AssignedEmployeeName = assignee.DisplayName
	}

	if err := s.repo.Update(ctx, current); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, NewNotFound("задача", id.String())
		case errors.Is(err, repository.ErrVersionConflict):
			logger.Warn("Service: Конфликт версий", zap.String("task_id", id.String()))
			return nil, NewVersionConflict(id.String(), err)
		}
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}

	if err := s.completion.OnUpdate(ctx, before, current); err != nil {
		return nil, fmt.Errorf("обработка завершения задачи: %w", err)
	}

	return current, nil
}

// DeleteTask удаляет задачу без возможности восстановления
func (s *TaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewNotFound("задача", id.String())
		}
		return fmt.Errorf("удаление задачи: %w", err)
	}

	logger.Info("Service: Задача удалена", zap.String("task_id", id.String()))
	return nil
}

func validateDraft(t *task.Task) error {
	if t.Title == "" {
		return NewValidationError("title", "название не может быть пустым")
	}
	if t.ClientName == "" {
		return NewValidationError("client_name", "клиент должен быть указан")
	}
	if t.AssignedEmployeeID == "" {
		return NewValidationError("assigned_employee_id", "исполнитель должен быть указан")
	}
	if t.Deadline.IsZero() {
		return NewValidationError("deadline", "дедлайн должен быть задан")
	}
	if t.Priority != "" && !t.Priority.Valid() {
		return NewValidationError("priority", "неизвестный приоритет")
	}
	if t.EstimatedDuration < 0 {
		return NewValidationError("estimated_duration", "не может быть отрицательной")
	}
	if t.NetInvoiceAmount < 0 {
		return NewValidationError("net_invoice_amount", "не может быть отрицательной")
	}
	if !task.ValidCategory(t.TaskCategory, t.TaskType) {
		return NewValidationError("task_type", "тип не относится к категории")
	}
	return nil
}
