package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"taskDesk/internal/config"
	"taskDesk/internal/models/notification"
	"taskDesk/internal/models/report"
	"taskDesk/internal/models/task"
	"taskDesk/internal/models/user"
	"taskDesk/internal/repository"
	"taskDesk/internal/repository/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresTestSuite для интеграционных тестов с PostgreSQL
type PostgresTestSuite struct {
	suite.Suite
	container testcontainers.Container
	connURL   string
	store     repository.Store
	users     *postgres.UserStorage
	ctx       context.Context
}

// SetupSuite запускается один раз перед всеми тестами
func (s *PostgresTestSuite) SetupSuite() {
	s.ctx = context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	s.Require().NoError(err)
	s.container = container

	host, err := container.Host(s.ctx)
	s.Require().NoError(err)
	port, err := container.MappedPort(s.ctx, "5432")
	s.Require().NoError(err)

	s.connURL = fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	// Open применяет миграции
	s.store, err = postgres.Open(s.ctx, config.PostgresConfig{URL: s.connURL, MaxConnections: 4})
	s.Require().NoError(err)

	storage, err := postgres.New(s.ctx, config.PostgresConfig{URL: s.connURL})
	s.Require().NoError(err)
	s.users = storage.Users()
	s.T().Cleanup(storage.Close)
}

// TearDownSuite очищает после всех тестов
func (s *PostgresTestSuite) TearDownSuite() {
	if s.store.Close != nil {
		_ = s.store.Close(s.ctx)
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

// SetupTest очищает таблицы перед каждым тестом
func (s *PostgresTestSuite) SetupTest() {
	conn, err := pgx.Connect(s.ctx, s.connURL)
	s.Require().NoError(err)
	defer conn.Close(s.ctx)

	_, err = conn.Exec(s.ctx, "TRUNCATE tasks, notifications, daily_reports, users")
	s.Require().NoError(err)
}

func TestPostgresTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционные тесты в коротком режиме")
	}
	suite.Run(t, new(PostgresTestSuite))
}

func (s *PostgresTestSuite) newTask(title, assignee string, deadline time.Time, status task.Status) *task.Task {
	t := &task.Task{
		UUID:               uuid.New(),
		ClientName:         "Acme LLC",
		Title:              title,
		AssignedEmployeeID: assignee,
		Deadline:           deadline.UTC().Truncate(time.Microsecond),
		Priority:           task.PriorityHigh,
		Status:             status,
		TaskCategory:       task.CategoryTax,
		TaskType:           "E-file",
	}
	s.Require().NoError(s.store.Tasks.Create(s.ctx, t))
	return t
}

func (s *PostgresTestSuite) TestTasks_CreateAndGet() {
	created := s.newTask("File 1040", "emp-1", time.Now().Add(24*time.Hour), task.StatusPending)
	assert.Equal(s.T(), 1, created.Version)

	got, err := s.store.Tasks.GetByID(s.ctx, created.UUID)
	s.Require().NoError(err)
	assert.Equal(s.T(), "File 1040", got.Title)
	assert.Equal(s.T(), task.StatusPending, got.Status)
	assert.Equal(s.T(), "E-file", got.TaskType)
	assert.True(s.T(), created.Deadline.Equal(got.Deadline))
	assert.Nil(s.T(), got.DaysTaken)
	assert.Nil(s.T(), got.CompletedAt)

	_, err = s.store.Tasks.GetByID(s.ctx, uuid.New())
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestTasks_UpdateVersioning() {
	created := s.newTask("Payroll Q1", "emp-1", time.Now().Add(time.Hour), task.StatusPending)

	first, err := s.store.Tasks.GetByID(s.ctx, created.UUID)
	s.Require().NoError(err)
	stale, err := s.store.Tasks.GetByID(s.ctx, created.UUID)
	s.Require().NoError(err)

	first.Status = task.StatusInProgress
	s.Require().NoError(s.store.Tasks.Update(s.ctx, first))
	assert.Equal(s.T(), 2, first.Version)
	assert.NotNil(s.T(), first.UpdatedAt)

	stale.Title = "stale write"
	assert.ErrorIs(s.T(), s.store.Tasks.Update(s.ctx, stale), repository.ErrVersionConflict)

	ghost := &task.Task{UUID: uuid.New(), Version: 1}
	assert.ErrorIs(s.T(), s.store.Tasks.Update(s.ctx, ghost), repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestTasks_UpdateCompletion() {
	created := s.newTask("Audit", "emp-1", time.Now(), task.StatusCompleted)
	at := time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)

	version, err := s.store.Tasks.UpdateCompletion(s.ctx, created.UUID, 3, at)
	s.Require().NoError(err)

	got, err := s.store.Tasks.GetByID(s.ctx, created.UUID)
	s.Require().NoError(err)
	s.Require().NotNil(got.DaysTaken)
	assert.Equal(s.T(), 3, *got.DaysTaken)
	assert.True(s.T(), at.Equal(*got.CompletedAt))
	assert.Equal(s.T(), got.Version, version)

	_, err = s.store.Tasks.UpdateCompletion(s.ctx, uuid.New(), 1, at)
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestTasks_Delete() {
	created := s.newTask("Bookkeeping", "emp-1", time.Now(), task.StatusPending)

	s.Require().NoError(s.store.Tasks.Delete(s.ctx, created.UUID))

	_, err := s.store.Tasks.GetByID(s.ctx, created.UUID)
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
	assert.ErrorIs(s.T(), s.store.Tasks.Delete(s.ctx, created.UUID), repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestTasks_Lists() {
	base := time.Now()
	s.newTask("late", "emp-1", base.Add(48*time.Hour), task.StatusPending)
	s.newTask("soon", "emp-1", base.Add(time.Hour), task.StatusOnHold)
	s.newTask("done", "emp-2", base.Add(2*time.Hour), task.StatusCompleted)

	all, err := s.store.Tasks.ListAll(s.ctx)
	s.Require().NoError(err)
	assert.Len(s.T(), all, 3)

	mine, err := s.store.Tasks.ListByAssignee(s.ctx, "emp-1")
	s.Require().NoError(err)
	s.Require().Len(mine, 2)
	assert.Equal(s.T(), "soon", mine[0].Title)

	open, err := s.store.Tasks.ListNotCompleted(s.ctx)
	s.Require().NoError(err)
	assert.Len(s.T(), open, 2)
}

func (s *PostgresTestSuite) TestNotifications() {
	taskID := uuid.New()
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	n := notification.New("emp-1", notification.KindTaskOverdue, "Task Overdue", "m", &taskID, at)
	s.Require().NoError(s.store.Notifications.Create(s.ctx, n))
	s.Require().NoError(s.store.Notifications.Create(s.ctx,
		notification.New("emp-1", notification.KindTaskAssigned, "New Task Assigned", "m", nil, at.Add(time.Minute))))

	exists, err := s.store.Notifications.ExistsSince(s.ctx, "emp-1", taskID, notification.KindTaskOverdue, at.Add(-time.Hour))
	s.Require().NoError(err)
	assert.True(s.T(), exists)

	exists, err = s.store.Notifications.ExistsSince(s.ctx, "emp-1", taskID, notification.KindTaskOverdue, at)
	s.Require().NoError(err)
	assert.False(s.T(), exists, "created_at равный since не считается")

	list, err := s.store.Notifications.ListByUser(s.ctx, "emp-1")
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	assert.Equal(s.T(), notification.KindTaskAssigned, list[0].Kind)
	assert.Nil(s.T(), list[0].TaskID)

	s.Require().NoError(s.store.Notifications.MarkRead(s.ctx, n.UUID))
	got, err := s.store.Notifications.GetByID(s.ctx, n.UUID)
	s.Require().NoError(err)
	assert.True(s.T(), got.Read)
	assert.Equal(s.T(), taskID, *got.TaskID)

	assert.ErrorIs(s.T(), s.store.Notifications.MarkRead(s.ctx, uuid.New()), repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestReports() {
	for day := 1; day <= 2; day++ {
		s.Require().NoError(s.store.Reports.Append(s.ctx, &report.DailyReport{
			UUID:                uuid.New(),
			Date:                time.Date(2024, 3, day, 5, 0, 0, 0, time.UTC),
			TasksCompletedToday: day,
			TaskDetails: []report.TaskDetail{
				{TaskID: uuid.New(), TaskTitle: "Filed", DaysTaken: day, Status: task.StatusCompleted},
			},
			GeneratedAt: time.Date(2024, 3, day, 14, 0, 0, 0, time.UTC),
		}))
	}

	list, err := s.store.Reports.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	assert.Equal(s.T(), 2, list[0].TasksCompletedToday)
	s.Require().Len(list[0].TaskDetails, 1)
	assert.Equal(s.T(), "Filed", list[0].TaskDetails[0].TaskTitle)
}

func (s *PostgresTestSuite) TestUsers() {
	s.Require().NoError(s.users.Put(s.ctx, &user.User{ID: "a1", Email: "boss@firm.test", Role: user.RoleAdmin}))
	s.Require().NoError(s.users.Put(s.ctx, &user.User{ID: "s1", Email: "s@firm.test", Role: user.RoleStaff, FCMToken: "tok"}))

	admins, err := s.store.Users.ListByRole(s.ctx, user.RoleAdmin)
	s.Require().NoError(err)
	s.Require().Len(admins, 1)
	assert.Equal(s.T(), "boss@firm.test", admins[0].Email)

	staff, err := s.store.Users.GetByID(s.ctx, "s1")
	s.Require().NoError(err)
	assert.Equal(s.T(), "tok", staff.FCMToken)

	_, err = s.store.Users.GetByID(s.ctx, "nobody")
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestHealthCheck() {
	assert.NoError(s.T(), s.store.Tasks.HealthCheck(s.ctx))
}

// Unit тесты (без базы данных)
func TestStorage_New(t *testing.T) {
	tests := []struct {
		name    string
		connURL string
	}{
		{name: "invalid connection string", connURL: "invalid://%%"},
		{name: "unparsable port", connURL: "postgres://u:p@localhost:notaport/db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := postgres.New(context.Background(), config.PostgresConfig{URL: tt.connURL})
			assert.Error(t, err)
		})
	}
}

func TestStorage_Close(t *testing.T) {
	// Close на пустом хранилище не паникует
	storage := &postgres.Storage{}
	assert.NotPanics(t, func() {
		storage.Close()
	})
}

func TestStorage_ImplementsRepositories(t *testing.T) {
	storage := &postgres.Storage{}

	var _ repository.TaskRepository = storage
	var _ repository.NotificationRepository = storage.Notifications()
	var _ repository.ReportRepository = storage.Reports()
	var _ repository.UserRepository = storage.Users()
	require.NotNil(t, storage.Users())
}
