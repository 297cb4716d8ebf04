package repository

import (
	"context"
	"time"

	"taskDesk/internal/models/notification"
	"taskDesk/internal/models/report"
	"taskDesk/internal/models/task"
	"taskDesk/internal/models/user"

	"github.com/google/uuid"
)

type TaskRepository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *task.Task) error
	// Update сохраняет задачу с проверкой версии
	Update(context.Context, *task.Task) error
	// UpdateCompletion пишет только days_taken и completed_at, возвращает новую версию
	UpdateCompletion(ctx context.Context, id uuid.UUID, daysTaken int, completedAt time.Time) (int, error)
	Delete(context.Context, uuid.UUID) error
	GetByID(context.Context, uuid.UUID) (*task.Task, error)
	ListAll(context.Context) ([]*task.Task, error)
	ListByAssignee(context.Context, string) ([]*task.Task, error)
	ListNotCompleted(context.Context) ([]*task.Task, error)
}

type NotificationRepository interface {
	Create(context.Context, *notification.Notification) error
	// ExistsSince ищет уведомление вида kind по паре (user, task), созданное строго после since
	ExistsSince(ctx context.Context, userID string, taskID uuid.UUID, kind notification.Kind, since time.Time) (bool, error)
	ListByUser(context.Context, string) ([]*notification.Notification, error)
	GetByID(context.Context, uuid.UUID) (*notification.Notification, error)
	MarkRead(context.Context, uuid.UUID) error
}

type ReportRepository interface {
	Append(context.Context, *report.DailyReport) error
	List(context.Context) ([]*report.DailyReport, error)
}

type UserRepository interface {
	GetByID(context.Context, string) (*user.User, error)
	ListByRole(context.Context, user.Role) ([]*user.User, error)
}

// Store объединяет все хранилища одного бэкенда
type Store struct {
	Tasks         TaskRepository
	Notifications NotificationRepository
	Reports       ReportRepository
	Users         UserRepository
	Close         func(context.Context) error
}
