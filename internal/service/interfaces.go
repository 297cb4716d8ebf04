package service

import (
	"context"

	"taskDesk/internal/models/notification"
	"taskDesk/internal/models/task"
)

// Notifier - сохранение уведомления с попыткой push
type Notifier interface {
	Notify(context.Context, *notification.Notification) error
}

// CompletionHook вызывается после каждой успешной записи задачи
type CompletionHook interface {
	OnUpdate(ctx context.Context, before, after *task.Task) error
}
