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

const DeadlineScannerName = "deadline_scanner"

// ApproachingWindow - насколько заранее предупреждать о дедлайне
const ApproachingWindow = 24 * time.Hour

type DeadlineScanner struct {
	scan alertScan
}

func NewDeadlineScanner(tasks repository.TaskRepository, n *notifier.Notifier, now Clock) *DeadlineScanner {
	if now == nil {
		now = time.Now
	}
	return &DeadlineScanner{
		scan: alertScan{
			name:     DeadlineScannerName,
			kind:     notification.KindDeadlineApproaching,
			tasks:    tasks,
			notifier: n,
			now:      now,
			selectFn: ApproachingDeadline,
			title:    "Deadline Approaching",
			message: func(t *task.Task) string {
				return fmt.Sprintf("Task \"%s\" is due within 24 hours", t.Title)
			},
		},
	}
}

func (s *DeadlineScanner) Name() string { return DeadlineScannerName }

func (s *DeadlineScanner) Run(ctx context.Context) Result {
	return s.scan.run(ctx)
}

// ApproachingDeadline отбирает незавершённые задачи, у которых до дедлайна
// осталось больше нуля и не больше 24 часов
func ApproachingDeadline(now time.Time, tasks []*task.Task) []*task.Task {
	res := []*task.Task{}
	for _, t := range tasks {
		if t.IsCompleted() {
			continue
		}
		left := t.Deadline.Sub(now)
		if left > 0 && left <= ApproachingWindow {
			res = append(res, t)
		}
	}
	return res
}
