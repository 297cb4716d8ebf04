package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskDesk/internal/models/notification"
	"taskDesk/internal/models/task"
	"taskDesk/internal/models/user"
	"taskDesk/internal/notifier"
	repo "taskDesk/internal/repository"
	"taskDesk/internal/repository/inmemory"
	"taskDesk/internal/worker"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type brokenTasks struct {
	*inmemory.TaskStorage
}

func (brokenTasks) ListNotCompleted(context.Context) ([]*task.Task, error) {
	return nil, errors.New("connection reset")
}

func (brokenTasks) ListAll(context.Context) ([]*task.Task, error) {
	return nil, errors.New("connection reset")
}

// rejectingNotifications отказывает в записи уведомлений по одной задаче
type rejectingNotifications struct {
	*inmemory.NotificationStorage
	taskID uuid.UUID
}

func (r rejectingNotifications) Create(ctx context.Context, n *notification.Notification) error {
	if n.TaskID != nil && *n.TaskID == r.taskID {
		return errors.New("write rejected")
	}
	return r.NotificationStorage.Create(ctx, n)
}

type WorkerSuite struct {
	suite.Suite
	ctx   context.Context
	now   time.Time
	store repo.Store
	users *inmemory.UserStorage
}

func (s *WorkerSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	s.store, s.users = inmemory.NewStore()
}

func (s *WorkerSuite) clock() time.Time { return s.now }

func (s *WorkerSuite) createTask(title string, deadline time.Time, status task.Status) *task.Task {
	t := &task.Task{
		UUID:               uuid.New(),
		Title:              title,
		AssignedEmployeeID: "emp-1",
		Deadline:           deadline,
		Priority:           task.PriorityMedium,
		Status:             status,
		CreatedAt:          s.now.Add(-72 * time.Hour),
	}
	s.Require().NoError(s.store.Tasks.Create(s.ctx, t))
	return t
}

func (s *WorkerSuite) notifier() *notifier.Notifier {
	return notifier.New(s.store.Notifications, s.store.Users, nil)
}

func (s *WorkerSuite) notificationsOf(kind notification.Kind) []*notification.Notification {
	all, err := s.store.Notifications.ListByUser(s.ctx, "emp-1")
	s.Require().NoError(err)

	res := []*notification.Notification{}
	for _, n := range all {
		if n.Kind == kind {
			res = append(res, n)
		}
	}
	return res
}

func (s *WorkerSuite) TestDeadlineScanner_WithinWindowOnce() {
	t := s.createTask("Quarterly VAT", s.now.Add(10*time.Hour), task.StatusInProgress)
	s.createTask("Far away", s.now.Add(48*time.Hour), task.StatusPending)

	scanner := worker.NewDeadlineScanner(s.store.Tasks, s.notifier(), s.clock)

	res := scanner.Run(s.ctx)
	s.Empty(res.Error)
	s.Equal(1, res.Checked)
	s.Equal(1, res.Emitted)

	notes := s.notificationsOf(notification.KindDeadlineApproaching)
	s.Require().Len(notes, 1)
	s.Equal("Deadline Approaching", notes[0].Title)
	s.Equal(`Task "Quarterly VAT" is due within 24 hours`, notes[0].Message)
	s.Equal(t.UUID, *notes[0].TaskID)
	s.False(notes[0].Read)

	// повторный прогон через полчаса ничего не добавляет
	s.now = s.now.Add(30 * time.Minute)
	res = scanner.Run(s.ctx)
	s.Equal(0, res.Emitted)
	s.Len(s.notificationsOf(notification.KindDeadlineApproaching), 1)
}

func (s *WorkerSuite) TestOverdueScanner_OnlyOverdueKind() {
	s.createTask("Payroll", s.now.Add(-time.Hour), task.StatusPending)

	deadline := worker.NewDeadlineScanner(s.store.Tasks, s.notifier(), s.clock)
	overdue := worker.NewOverdueScanner(s.store.Tasks, s.notifier(), s.clock)

	s.Equal(0, deadline.Run(s.ctx).Emitted)
	s.Equal(1, overdue.Run(s.ctx).Emitted)

	s.Empty(s.notificationsOf(notification.KindDeadlineApproaching))
	notes := s.notificationsOf(notification.KindTaskOverdue)
	s.Require().Len(notes, 1)
	s.Equal("Task Overdue", notes[0].Title)
	s.Equal(`Task "Payroll" is now overdue`, notes[0].Message)
}

func (s *WorkerSuite) TestScanners_DeadlineEqualToNow() {
	s.createTask("Boundary", s.now, task.StatusPending)

	s.Equal(0, worker.NewDeadlineScanner(s.store.Tasks, s.notifier(), s.clock).Run(s.ctx).Emitted)
	s.Equal(0, worker.NewOverdueScanner(s.store.Tasks, s.notifier(), s.clock).Run(s.ctx).Emitted)
}

func (s *WorkerSuite) TestScanners_SkipCompleted() {
	s.createTask("Done late", s.now.Add(-time.Hour), task.StatusCompleted)
	s.createTask("Done early", s.now.Add(time.Hour), task.StatusCompleted)

	s.Equal(0, worker.NewDeadlineScanner(s.store.Tasks, s.notifier(), s.clock).Run(s.ctx).Checked)
	s.Equal(0, worker.NewOverdueScanner(s.store.Tasks, s.notifier(), s.clock).Run(s.ctx).Checked)
}

func (s *WorkerSuite) TestOverdueScanner_ReadErrorAbortsRun() {
	tasks := brokenTasks{inmemory.NewTaskStorage()}
	res := worker.NewOverdueScanner(tasks, s.notifier(), s.clock).Run(s.ctx)

	s.NotEmpty(res.Error)
	s.Equal(0, res.Emitted)
}

func (s *WorkerSuite) TestOverdueScanner_WriteErrorSkipsRecord() {
	bad := s.createTask("Rejected", s.now.Add(-2*time.Hour), task.StatusPending)
	s.createTask("Accepted", s.now.Add(-3*time.Hour), task.StatusInProgress)

	notes := rejectingNotifications{
		NotificationStorage: inmemory.NewNotificationStorage(),
		taskID:              bad.UUID,
	}
	n := notifier.New(notes, s.store.Users, nil)

	res := worker.NewOverdueScanner(s.store.Tasks, n, s.clock).Run(s.ctx)
	s.Empty(res.Error)
	s.Equal(2, res.Checked)
	s.Equal(1, res.Emitted)
	s.Equal(1, res.Failed)

	stored, err := notes.ListByUser(s.ctx, "emp-1")
	s.Require().NoError(err)
	s.Require().Len(stored, 1)
	s.Contains(stored[0].Message, "Accepted")
}

func (s *WorkerSuite) TestDailyReporter_Counts() {
	completedAt := s.now.Add(-2 * time.Hour)
	for i := 0; i < 5; i++ {
		t := s.createTask("Filed", s.now.Add(time.Hour), task.StatusCompleted)
		_, err := s.store.Tasks.UpdateCompletion(s.ctx, t.UUID, i+1, completedAt)
		s.Require().NoError(err)
	}
	// завершена вчера: в отчёт не попадает
	old := s.createTask("Yesterday", s.now.Add(time.Hour), task.StatusCompleted)
	_, err := s.store.Tasks.UpdateCompletion(s.ctx, old.UUID, 1, s.now.Add(-30*time.Hour))
	s.Require().NoError(err)

	s.createTask("Pending on time", s.now.Add(5*time.Hour), task.StatusPending)
	s.createTask("Pending late", s.now.Add(-5*time.Hour), task.StatusPending)
	s.createTask("Pending later", s.now.Add(50*time.Hour), task.StatusPending)
	s.createTask("Held late", s.now.Add(-time.Hour), task.StatusOnHold)

	s.Require().NoError(s.users.Put(s.ctx, &user.User{ID: "a1", Email: "boss@firm.test", Role: user.RoleAdmin}))
	s.Require().NoError(s.users.Put(s.ctx, &user.User{ID: "m1", Email: "lead@firm.test", Role: user.RoleManager}))

	reporter := worker.NewDailyReporter(s.store.Tasks, s.store.Reports, s.store.Users, time.UTC, s.clock)
	rep, emails, err := reporter.Generate(s.ctx)
	s.Require().NoError(err)

	s.Equal(5, rep.TasksCompletedToday)
	s.Equal(3, rep.TasksPending)
	s.Equal(2, rep.OverdueTasks)
	s.Len(rep.TaskDetails, 5)
	s.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), rep.Date)
	s.Equal(s.now, rep.GeneratedAt)
	s.Equal([]string{"boss@firm.test"}, emails)

	stored, err := s.store.Reports.List(s.ctx)
	s.Require().NoError(err)
	s.Len(stored, 1)
}

func (s *WorkerSuite) TestDailyReporter_ReadErrorAbortsRun() {
	reporter := worker.NewDailyReporter(brokenTasks{inmemory.NewTaskStorage()}, s.store.Reports, s.store.Users, time.UTC, s.clock)

	res := reporter.Run(s.ctx)
	s.NotEmpty(res.Error)

	stored, err := s.store.Reports.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(stored)
}

func (s *WorkerSuite) TestCompletionTrigger_StampsOnTransition() {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)

	t := &task.Task{UUID: uuid.New(), Title: "Audit", Status: task.StatusInProgress, CreatedAt: created}
	s.Require().NoError(s.store.Tasks.Create(s.ctx, t))

	before := t.Clone()
	after := t.Clone()
	after.Status = task.StatusCompleted
	s.Require().NoError(s.store.Tasks.Update(s.ctx, after))

	trigger := worker.NewCompletionTrigger(s.store.Tasks, s.clock)
	s.Require().NoError(trigger.OnUpdate(s.ctx, before, after))

	s.Require().NotNil(after.DaysTaken)
	s.Equal(3, *after.DaysTaken)

	stored, err := s.store.Tasks.GetByID(s.ctx, t.UUID)
	s.Require().NoError(err)
	s.Equal(stored.Version, after.Version)
	s.Require().NotNil(stored.DaysTaken)
	s.Equal(3, *stored.DaysTaken)
	s.Equal(s.now, *stored.CompletedAt)
}

func (s *WorkerSuite) TestCompletionTrigger_IgnoresOtherEdits() {
	stamped := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	days := 1

	t := &task.Task{UUID: uuid.New(), Title: "Audit", Status: task.StatusCompleted, CreatedAt: stamped.Add(-time.Hour)}
	s.Require().NoError(s.store.Tasks.Create(s.ctx, t))
	_, err := s.store.Tasks.UpdateCompletion(s.ctx, t.UUID, days, stamped)
	s.Require().NoError(err)

	before, err := s.store.Tasks.GetByID(s.ctx, t.UUID)
	s.Require().NoError(err)
	after := before.Clone()
	after.ProgressNotes = "filed with the state"

	trigger := worker.NewCompletionTrigger(s.store.Tasks, s.clock)
	s.Require().NoError(trigger.OnUpdate(s.ctx, before, after))

	stored, err := s.store.Tasks.GetByID(s.ctx, t.UUID)
	s.Require().NoError(err)
	s.Equal(days, *stored.DaysTaken)
	s.Equal(stamped, *stored.CompletedAt)
}

func TestWorkerSuite(t *testing.T) {
	suite.Run(t, new(WorkerSuite))
}

func TestDaysTaken(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		completed time.Time
		want      int
	}{
		{name: "same instant", completed: base, want: 0},
		{name: "one minute", completed: base.Add(time.Minute), want: 1},
		{name: "exactly one day", completed: base.Add(24 * time.Hour), want: 1},
		{name: "two days ten hours", completed: time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC), want: 3},
		{name: "negative elapsed is not clamped", completed: base.Add(-25 * time.Hour), want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, worker.DaysTaken(base, tt.completed))
		})
	}
}

func TestBuildDailyReport_UsesLocationMidnight(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 03:00 UTC 2 марта - ещё 1 марта в Нью-Йорке
	now := time.Date(2024, 3, 2, 3, 0, 0, 0, time.UTC)
	late := time.Date(2024, 3, 1, 23, 0, 0, 0, loc)
	early := time.Date(2024, 2, 29, 23, 0, 0, 0, loc)

	tasks := []*task.Task{
		{UUID: uuid.New(), Status: task.StatusCompleted, CompletedAt: &late},
		{UUID: uuid.New(), Status: task.StatusCompleted, CompletedAt: &early},
	}

	rep := worker.BuildDailyReport(now, loc, tasks)
	assert.Equal(t, 1, rep.TasksCompletedToday)
	assert.Equal(t, 0, rep.TaskDetails[0].DaysTaken)
	assert.True(t, rep.Date.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, loc)))
}

func TestApproachingDeadline_Window(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	edge := &task.Task{Status: task.StatusPending, Deadline: now.Add(worker.ApproachingWindow)}
	past := &task.Task{Status: task.StatusPending, Deadline: now.Add(time.Nanosecond + worker.ApproachingWindow)}

	got := worker.ApproachingDeadline(now, []*task.Task{edge, past})
	assert.Equal(t, []*task.Task{edge}, got)
}
