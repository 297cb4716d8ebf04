package worker

import (
	"context"
	"fmt"
	"math"
	"time"

	"taskDesk/internal/logger"
	"taskDesk/internal/models/task"
	"taskDesk/internal/repository"

	"go.uber.org/zap"
)

const day = 24 * time.Hour

// CompletionTrigger реагирует на обновление задачи и при переходе
// в Completed проставляет days_taken и completed_at
type CompletionTrigger struct {
	tasks repository.TaskRepository
	now   Clock
}

func NewCompletionTrigger(tasks repository.TaskRepository, now Clock) *CompletionTrigger {
	if now == nil {
		now = time.Now
	}
	return &CompletionTrigger{tasks: tasks, now: now}
}

// OnUpdate получает состояние задачи до и после записи. Срабатывает только
// на ребре "не Completed" -> Completed; ошибка возвращается вызывающему.
func (c *CompletionTrigger) OnUpdate(ctx context.Context, before, after *task.Task) error {
	if before.Status == task.StatusCompleted || after.Status != task.StatusCompleted {
		return nil
	}

	completedAt := c.now()
	days := DaysTaken(before.CreatedAt, completedAt)

	version, err := c.tasks.UpdateCompletion(ctx, after.UUID, days, completedAt)
	if err != nil {
		return fmt.Errorf("запись времени выполнения: %w", err)
	}

	after.DaysTaken = &days
	after.CompletedAt = &completedAt
	after.Version = version

	logger.Info("Worker: Задача завершена",
		zap.String("task_id", after.UUID.String()),
		zap.Int("days_taken", days))
	return nil
}

// DaysTaken - прошедшее время в сутках с округлением вверх, без привязки к
// календарным границам и без ограничения снизу
func DaysTaken(createdAt, completedAt time.Time) int {
	elapsed := completedAt.Sub(createdAt)
	return int(math.Ceil(float64(elapsed) / float64(day)))
}
