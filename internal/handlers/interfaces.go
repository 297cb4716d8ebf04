package handlers

import (
	"context"

	"taskDesk/internal/models/notification"
	"taskDesk/internal/models/report"
	"taskDesk/internal/models/task"
	"taskDesk/internal/worker"

	"github.com/google/uuid"
)

type TaskService interface {
	HealthCheck(context.Context) error
	CreateTask(ctx context.Context, createdBy string, draft *task.Task) (*task.Task, error)
	GetTaskByID(context.Context, uuid.UUID) (*task.Task, error)
	ListTasks(ctx context.Context, assignee string) ([]*task.Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, version int, options ...task.TaskOption) (*task.Task, error)
	DeleteTask(context.Context, uuid.UUID) error
}

type NotificationService interface {
	ListForUser(ctx context.Context, userID string) ([]*notification.Notification, error)
	MarkRead(ctx context.Context, userID string, id uuid.UUID) error
}

type ReportService interface {
	ListReports(context.Context) ([]*report.DailyReport, error)
}

// JobRunner запускает периодическую задачу вне расписания
type JobRunner interface {
	RunNow(ctx context.Context, name string) (worker.Result, error)
	Jobs() []string
}
