package worker

import (
	"context"
	"fmt"
	"time"

	"taskDesk/internal/models/notification"
	"taskDesk/internal/models/task"
	"taskDesk/internal/notifier"
	"taskDesk/internal/repository"
)

const OverdueScannerName = "overdue_scanner"

type OverdueScanner struct {
	scan alertScan
}

func NewOverdueScanner(tasks repository.TaskRepository, n *notifier.Notifier, now Clock) *OverdueScanner {
	if now == nil {
		now = time.Now
	}
	return &OverdueScanner{
		scan: alertScan{
			name:     OverdueScannerName,
			kind:     notification.KindTaskOverdue,
			tasks:    tasks,
			notifier: n,
			now:      now,
			selectFn: Overdue,
			title:    "Task Overdue",
			message: func(t *task.Task) string {
				return fmt.Sprintf("Task \"%s\" is now overdue", t.Title)
			},
		},
	}
}

func (w *OverdueScanner) Name() string { return OverdueScannerName }

func (w *OverdueScanner) Run(ctx context.Context) Result {
	return w.scan.run(ctx)
}

// Overdue отбирает незавершённые задачи с дедлайном строго раньше now
func Overdue(now time.Time, tasks []*task.Task) []*task.Task {
	res := []*task.Task{}
	for _, t := range tasks {
		if t.IsCompleted() {
			continue
		}
		if t.Deadline.Before(now) {
			res = append(res, t)
		}
	}
	return res
}
