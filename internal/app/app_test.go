package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"taskDesk/internal/app"
	"taskDesk/internal/config"
	"taskDesk/internal/handlers/dto"
	"taskDesk/internal/middleware"
	"taskDesk/internal/models/report"
	"taskDesk/internal/models/user"
	"taskDesk/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "app-test-secret"

const fixtures = `
users:
  - id: adm-1
    email: admin@firm.test
    display_name: Ada Admin
    role: admin
  - id: emp-1
    email: dana@firm.test
    display_name: Dana Staff
    role: staff
tasks:
  - title: Quarterly payroll
    client_name: Acme LLC
    assigned_to: emp-1
    deadline_in: 2h
    task_category: Accounting Services
    task_type: Payroll
  - title: Late return
    client_name: Beta Inc
    assigned_to: emp-1
    deadline_in: -3h
`

func testConfig(t *testing.T) *config.Config {
	seedPath := filepath.Join(t.TempDir(), "seed.yml")
	require.NoError(t, os.WriteFile(seedPath, []byte(fixtures), 0o600))

	return &config.Config{
		Server:     config.ServerConfig{Host: "127.0.0.1", Port: "0"},
		Repository: config.RepositoryConfig{Type: "inmemory", SeedFile: seedPath},
		Scheduler: config.SchedulerConfig{
			Timezone:        "America/New_York",
			DailyReportCron: "0 9 * * *",
			DeadlineCron:    "0 * * * *",
			OverdueCron:     "0 * * * *",
			JobTimeout:      time.Minute,
		},
		Auth: config.AuthConfig{JWTSecret: secret},
	}
}

type client struct {
	t       *testing.T
	handler http.Handler
}

func (c client) call(method, path, userID string, role user.Role, body any, out any) int {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	tok, err := middleware.IssueToken([]byte(secret), userID, role, time.Hour)
	require.NoError(c.t, err)
	req.Header.Set("Authorization", "Bearer "+tok)

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	if out != nil && w.Code < 300 {
		require.NoError(c.t, json.NewDecoder(w.Body).Decode(out))
	}
	return w.Code
}

func (c client) runJob(name string) dto.JobRunResponse {
	var res dto.JobRunResponse
	code := c.call("POST", "/admin/jobs/"+name+"/run", "adm-1", user.RoleAdmin, nil, &res)
	require.Equal(c.t, http.StatusOK, code)
	return res
}

func TestApp_EndToEnd(t *testing.T) {
	ctx := context.Background()
	a := app.New(testConfig(t))
	require.NoError(t, a.Init(ctx))
	t.Cleanup(func() { _ = a.Shutdown(ctx) })

	c := client{t: t, handler: a.Handler()}

	assert.Equal(t, 1, c.runJob(worker.DeadlineScannerName).Emitted)
	assert.Equal(t, 1, c.runJob(worker.OverdueScannerName).Emitted)
	// повторный прогон в течение часа дублей не создаёт
	assert.Equal(t, 0, c.runJob(worker.OverdueScannerName).Emitted)

	var notes []dto.NotificationResponse
	require.Equal(t, http.StatusOK, c.call("GET", "/notifications", "emp-1", user.RoleStaff, nil, &notes))
	assert.Len(t, notes, 2)

	var tasks []dto.TaskResponse
	require.Equal(t, http.StatusOK, c.call("GET", "/tasks", "emp-1", user.RoleStaff, nil, &tasks))
	require.Len(t, tasks, 2)

	target := tasks[0]
	var updated dto.TaskResponse
	code := c.call("PUT", fmt.Sprintf("/tasks/%s", target.UUID), "emp-1", user.RoleStaff,
		map[string]any{"version": target.Version, "status": "Completed"}, &updated)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Completed", updated.Status)

	var stored dto.TaskResponse
	require.Equal(t, http.StatusOK, c.call("GET", fmt.Sprintf("/tasks/%s", target.UUID), "emp-1", user.RoleStaff, nil, &stored))
	require.NotNil(t, stored.DaysTaken)
	require.NotNil(t, stored.CompletedAt)

	assert.Equal(t, stored.Version, updated.Version)

	// устаревшая версия
	code = c.call("PUT", fmt.Sprintf("/tasks/%s", target.UUID), "emp-1", user.RoleStaff,
		map[string]any{"version": target.Version, "progress_notes": "late note"}, nil)
	assert.Equal(t, http.StatusConflict, code)

	// версия из ответа на завершение актуальна
	code = c.call("PUT", fmt.Sprintf("/tasks/%s", target.UUID), "emp-1", user.RoleStaff,
		map[string]any{"version": updated.Version, "progress_notes": "sent to client"}, nil)
	assert.Equal(t, http.StatusOK, code)

	// исполнитель не меняет поля кроме статуса и заметок
	code = c.call("PUT", fmt.Sprintf("/tasks/%s", target.UUID), "emp-1", user.RoleStaff,
		map[string]any{"title": "renamed"}, nil)
	assert.Equal(t, http.StatusForbidden, code)

	report1 := c.runJob(worker.DailyReporterName)
	assert.Equal(t, 1, report1.Emitted)

	var reports []report.DailyReport
	require.Equal(t, http.StatusOK, c.call("GET", "/reports", "emp-1", user.RoleStaff, nil, &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, 1, reports[0].TasksCompletedToday)
	assert.Equal(t, 1, reports[0].TasksPending)
	assert.Len(t, reports[0].TaskDetails, 1)

	assert.Equal(t, []string{worker.DailyReporterName, worker.DeadlineScannerName, worker.OverdueScannerName}, a.Scheduler().Jobs())

	path := fmt.Sprintf("/tasks/%s", target.UUID)
	assert.Equal(t, http.StatusForbidden, c.call("DELETE", path, "mgr-1", user.RoleManager, nil, nil))
	assert.Equal(t, http.StatusNoContent, c.call("DELETE", path, "adm-1", user.RoleAdmin, nil, nil))
	assert.Equal(t, http.StatusNotFound, c.call("GET", path, "adm-1", user.RoleAdmin, nil, nil))
}

func TestApp_InitRequiresSecret(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.JWTSecret = ""

	a := app.New(cfg)
	assert.Error(t, a.Init(context.Background()))
	_ = a.Shutdown(context.Background())
}

func TestApp_InitRejectsBadCron(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scheduler.OverdueCron = "every hour"

	a := app.New(cfg)
	assert.Error(t, a.Init(context.Background()))
	_ = a.Shutdown(context.Background())
}
