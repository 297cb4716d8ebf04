package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskDesk/internal/logger"
	"taskDesk/internal/models/notification"
	"taskDesk/internal/models/task"
	"taskDesk/internal/notifier"
	"taskDesk/internal/repository"

	"go.uber.org/zap"
)

// alertScan - общий проход сканеров: выбрать задачи, для каждой создать
// уведомление не чаще раза в час
type alertScan struct {
	name     string
	kind     notification.Kind
	tasks    repository.TaskRepository
	notifier *notifier.Notifier
	now      Clock
	selectFn func(now time.Time, tasks []*task.Task) []*task.Task
	title    string
	message  func(t *task.Task) string
}

func (s *alertScan) run(ctx context.Context) Result {
	start := time.Now()
	res := Result{Job: s.name}

	err := s.scan(ctx, &res)
	res.Duration = time.Since(start)
	if err != nil {
		res.Error = err.Error()
		logger.Error("Worker: прогон прерван", err,
			zap.String("job", s.name),
			zap.Int("checked", res.Checked),
			zap.Int("emitted", res.Emitted))
		return res
	}

	logger.Info("Worker: Завершение проверки задач",
		zap.String("job", s.name),
		zap.Duration("ms", res.Duration),
		zap.Int("checked", res.Checked),
		zap.Int("emitted", res.Emitted),
		zap.Int("failed", res.Failed))
	return res
}

func (s *alertScan) scan(ctx context.Context, res *Result) error {
	now := s.now()

	active, err := s.tasks.ListNotCompleted(ctx)
	if err != nil {
		return fmt.Errorf("получение незавершённых задач: %w", err)
	}

	due := s.selectFn(now, active)
	res.Checked = len(due)

	for _, t := range due {
		if err := ctx.Err(); err != nil {
			return err
		}

		taskID := t.UUID
		note := notification.New(t.AssignedEmployeeID, s.kind, s.title, s.message(t), &taskID, now)

		created, err := s.notifier.NotifyOnce(ctx, now, note)
		if err != nil {
			if errors.Is(err, notifier.ErrLookup) {
				return err
			}
			// запись одного уведомления не удалась, остальные задачи не трогаем
			res.Failed++
			logger.Warn("Worker: Ошибка создания уведомления",
				zap.String("job", s.name),
				zap.String("task_id", t.UUID.String()),
				zap.Error(err))
			continue
		}
		if created {
			res.Emitted++
		}
	}
	return nil
}
