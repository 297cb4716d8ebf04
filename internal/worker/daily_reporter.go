package worker

import (
	"context"
	"fmt"
	"time"

	"taskDesk/internal/logger"
	"taskDesk/internal/models/report"
	"taskDesk/internal/models/task"
	"taskDesk/internal/models/user"
	"taskDesk/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DailyReporterName = "daily_reporter"

type DailyReporter struct {
	tasks   repository.TaskRepository
	reports repository.ReportRepository
	users   repository.UserRepository
	loc     *time.Location
	now     Clock
}

func NewDailyReporter(tasks repository.TaskRepository, reports repository.ReportRepository, users repository.UserRepository, loc *time.Location, now Clock) *DailyReporter {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &DailyReporter{
		tasks:   tasks,
		reports: reports,
		users:   users,
		loc:     loc,
		now:     now,
	}
}

func (r *DailyReporter) Name() string { return DailyReporterName }

func (r *DailyReporter) Run(ctx context.Context) Result {
	start := time.Now()
	res := Result{Job: DailyReporterName}

	rep, recipients, err := r.Generate(ctx)
	res.Duration = time.Since(start)
	if err != nil {
		res.Error = err.Error()
		logger.Error("Worker: Ошибка формирования ежедневного отчёта", err, zap.Duration("ms", res.Duration))
		return res
	}

	res.Checked = rep.TasksCompletedToday + rep.TasksPending + rep.OverdueTasks
	res.Emitted = 1

	// доставка отчёта (почта) не реализована: только список получателей
	logger.Info("Worker: Ежедневный отчёт сформирован",
		zap.String("report_id", rep.UUID.String()),
		zap.Time("date", rep.Date),
		zap.Int("completed_today", rep.TasksCompletedToday),
		zap.Int("pending", rep.TasksPending),
		zap.Int("overdue", rep.OverdueTasks),
		zap.Strings("admin_emails", recipients),
		zap.Duration("ms", res.Duration))
	return res
}

// Generate строит отчёт в памяти, сохраняет его одной записью и
// возвращает адреса администраторов
func (r *DailyReporter) Generate(ctx context.Context) (*report.DailyReport, []string, error) {
	now := r.now()

	tasks, err := r.tasks.ListAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("получение задач: %w", err)
	}

	rep := BuildDailyReport(now, r.loc, tasks)

	if err := r.reports.Append(ctx, rep); err != nil {
		return nil, nil, fmt.Errorf("сохранение отчёта: %w", err)
	}

	admins, err := r.users.ListByRole(ctx, user.RoleAdmin)
	if err != nil {
		return rep, nil, fmt.Errorf("получение администраторов: %w", err)
	}

	emails := make([]string, 0, len(admins))
	for _, a := range admins {
		if a.Email != "" {
			emails = append(emails, a.Email)
		}
	}

	return rep, emails, nil
}

// BuildDailyReport разбивает задачи на завершённые сегодня (по времени в loc),
// ожидающие и просроченные
func BuildDailyReport(now time.Time, loc *time.Location, tasks []*task.Task) *report.DailyReport {
	dayStart, dayEnd := dayBounds(now, loc)

	rep := &report.DailyReport{
		UUID:        uuid.New(),
		Date:        dayStart,
		TaskDetails: []report.TaskDetail{},
		GeneratedAt: now,
	}

	for _, t := range tasks {
		if t.Status == task.StatusCompleted && t.CompletedAt != nil &&
			!t.CompletedAt.Before(dayStart) && t.CompletedAt.Before(dayEnd) {

			rep.TasksCompletedToday++

			days := 0
			if t.DaysTaken != nil {
				days = *t.DaysTaken
			}
			rep.TaskDetails = append(rep.TaskDetails, report.TaskDetail{
				TaskID:    t.UUID,
				TaskTitle: t.Title,
				DaysTaken: days,
				Status:    t.Status,
			})
		}

		if t.Status == task.StatusPending {
			rep.TasksPending++
		}

		if t.Status != task.StatusCompleted && t.Deadline.Before(now) {
			rep.OverdueTasks++
		}
	}

	return rep
}

// полночь сегодня и завтра в заданной зоне
func dayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := now.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
