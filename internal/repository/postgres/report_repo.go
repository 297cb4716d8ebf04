package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"taskDesk/internal/logger"
	"taskDesk/internal/models/report"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ReportStorage struct {
	pool *pgxpool.Pool
}

func (s *ReportStorage) Append(ctx context.Context, r *report.DailyReport) error {
	start := time.Now()

	details := r.TaskDetails
	if details == nil {
		details = []report.TaskDetail{}
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("кодирование деталей отчёта: %w", err)
	}

	query := `INSERT INTO daily_reports
				(uuid, report_date, tasks_completed_today, tasks_pending, overdue_tasks, task_details, generated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = s.pool.Exec(ctx, query,
		r.UUID, r.Date, r.TasksCompletedToday, r.TasksPending, r.OverdueTasks, raw, r.GeneratedAt)
	if err != nil {
		logger.Error("Repository: Не удалось сохранить отчёт", err, zapMs(start))
		return fmt.Errorf("сохранение отчёта: %w", err)
	}

	warnIfSlow(start, "append_report")
	return nil
}

func (s *ReportStorage) List(ctx context.Context) ([]*report.DailyReport, error) {
	start := time.Now()

	query := `SELECT uuid, report_date, tasks_completed_today, tasks_pending, overdue_tasks, task_details, generated_at
				FROM daily_reports
				ORDER BY report_date DESC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		logger.Error("Repository: Не удалось получить отчёты", err, zapMs(start))
		return nil, fmt.Errorf("получение отчётов: %w", err)
	}
	defer rows.Close()

	res := []*report.DailyReport{}
	for rows.Next() {
		r := &report.DailyReport{}
		var raw []byte
		if err := rows.Scan(&r.UUID, &r.Date, &r.TasksCompletedToday, &r.TasksPending, &r.OverdueTasks, &raw, &r.GeneratedAt); err != nil {
			return nil, fmt.Errorf("сканирование отчёта: %w", err)
		}
		if err := json.Unmarshal(raw, &r.TaskDetails); err != nil {
			return nil, fmt.Errorf("разбор деталей отчёта: %w", err)
		}
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	warnIfSlow(start, "list_reports")
	return res, nil
}
