package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskDesk/internal/logger"
	"taskDesk/internal/models/task"
	repo "taskDesk/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const taskColumns = `uuid,
				client_name,
				title,
				description,
				assigned_employee_id,
				assigned_employee_name,
				deadline,
				priority,
				status,
				estimated_duration,
				net_invoice_amount,
				progress_notes,
				task_type,
				task_category,
				created_at,
				updated_at,
				completed_at,
				created_by,
				days_taken,
				version`

func scanTask(row pgx.Row) (*task.Task, error) {
	t := &task.Task{}
	err := row.Scan(
		&t.UUID,
		&t.ClientName,
		&t.Title,
		&t.Description,
		&t.AssignedEmployeeID,
		&t.AssignedEmployeeName,
		&t.Deadline,
		&t.Priority,
		&t.Status,
		&t.EstimatedDuration,
		&t.NetInvoiceAmount,
		&t.ProgressNotes,
		&t.TaskType,
		&t.TaskCategory,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.CompletedAt,
		&t.CreatedBy,
		&t.DaysTaken,
		&t.Version,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()

	if taskToCreate.CreatedAt.IsZero() {
		taskToCreate.CreatedAt = time.Now()
	}

	query := `INSERT INTO tasks
				(uuid, client_name, title, description, assigned_employee_id, assigned_employee_name,
				 deadline, priority, status, estimated_duration, net_invoice_amount, progress_notes,
				 task_type, task_category, created_at, created_by, version)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, 1)
				RETURNING version`

	err := s.pool.QueryRow(ctx, query,
		taskToCreate.UUID,
		taskToCreate.ClientName,
		taskToCreate.Title,
		taskToCreate.Description,
		taskToCreate.AssignedEmployeeID,
		taskToCreate.AssignedEmployeeName,
		taskToCreate.Deadline,
		taskToCreate.Priority,
		taskToCreate.Status,
		taskToCreate.EstimatedDuration,
		taskToCreate.NetInvoiceAmount,
		taskToCreate.ProgressNotes,
		taskToCreate.TaskType,
		taskToCreate.TaskCategory,
		taskToCreate.CreatedAt,
		taskToCreate.CreatedBy,
	).Scan(&taskToCreate.Version)

	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	warnIfSlow(start, "create_task")
	return nil
}

func (s *Storage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	start := time.Now()

	query := `UPDATE tasks
			SET client_name = $1,
				title = $2,
				description = $3,
				assigned_employee_id = $4,
				assigned_employee_name = $5,
				deadline = $6,
				priority = $7,
				status = $8,
				estimated_duration = $9,
				net_invoice_amount = $10,
				progress_notes = $11,
				task_type = $12,
				task_category = $13,
				version = version + 1,
				updated_at = NOW()
			WHERE uuid = $14 AND version = $15
			RETURNING updated_at, version`

	err := s.pool.QueryRow(ctx, query,
		taskToUpdate.ClientName,
		taskToUpdate.Title,
		taskToUpdate.Description,
		taskToUpdate.AssignedEmployeeID,
		taskToUpdate.AssignedEmployeeName,
		taskToUpdate.Deadline,
		taskToUpdate.Priority,
		taskToUpdate.Status,
		taskToUpdate.EstimatedDuration,
		taskToUpdate.NetInvoiceAmount,
		taskToUpdate.ProgressNotes,
		taskToUpdate.TaskType,
		taskToUpdate.TaskCategory,
		taskToUpdate.UUID,
		taskToUpdate.Version,
	).Scan(&taskToUpdate.UpdatedAt, &taskToUpdate.Version)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s.missingOrConflict(ctx, taskToUpdate)
		}
		logger.Error("Repository: Не удалось обновить задачу", err)
		return fmt.Errorf("обновление задачи: %w", err)
	}

	warnIfSlow(start, "update_task")
	return nil
}

// ни одна строка не обновилась: либо задачи нет, либо версия устарела
func (s *Storage) missingOrConflict(ctx context.Context, t *task.Task) error {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tasks WHERE uuid = $1)`, t.UUID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("проверка существования задачи: %w", err)
	}
	if !exists {
		return repo.ErrNotFound
	}

	logger.Warn("Конфликт версий при обновлении задачи",
		zap.String("task_id", t.UUID.String()),
		zap.Int("expected_version", t.Version))
	return repo.ErrVersionConflict
}

func (s *Storage) UpdateCompletion(ctx context.Context, id uuid.UUID, daysTaken int, completedAt time.Time) (int, error) {
	start := time.Now()

	query := `UPDATE tasks
			SET days_taken = $1,
				completed_at = $2,
				version = version + 1
			WHERE uuid = $3
			RETURNING version`

	var version int
	err := s.pool.QueryRow(ctx, query, daysTaken, completedAt, id).Scan(&version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось записать завершение задачи", err, zap.Duration("ms", time.Since(start)))
		return 0, fmt.Errorf("запись завершения задачи: %w", err)
	}

	warnIfSlow(start, "update_completion")
	return version, nil
}

// полное удаление из БД
func (s *Storage) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()

	query := `DELETE FROM tasks
				WHERE uuid = $1`

	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		logger.Error("Repository: Не удалось удалить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление задачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	warnIfSlow(start, "delete_task")
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	start := time.Now()

	query := `SELECT ` + taskColumns + `
				FROM tasks
				WHERE uuid = $1`

	t, err := scanTask(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	warnIfSlow(start, "get_task")
	return t, nil
}

func (s *Storage) ListAll(ctx context.Context) ([]*task.Task, error) {
	return s.list(ctx, "list_all",
		`SELECT `+taskColumns+` FROM tasks ORDER BY created_at DESC`)
}

func (s *Storage) ListByAssignee(ctx context.Context, employeeID string) ([]*task.Task, error) {
	return s.list(ctx, "list_by_assignee",
		`SELECT `+taskColumns+` FROM tasks WHERE assigned_employee_id = $1 ORDER BY deadline ASC`,
		employeeID)
}

func (s *Storage) ListNotCompleted(ctx context.Context) ([]*task.Task, error) {
	return s.list(ctx, "list_not_completed",
		`SELECT `+taskColumns+` FROM tasks WHERE status <> $1`,
		task.StatusCompleted)
}

func (s *Storage) list(ctx context.Context, op, query string, args ...any) ([]*task.Task, error) {
	start := time.Now()

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zapOp(op), zapMs(start))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("сканирование задачи: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	warnIfSlow(start, op)
	return tasks, nil
}
