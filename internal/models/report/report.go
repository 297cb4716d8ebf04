package report

import (
	"time"

	"taskDesk/internal/models/task"

	"github.com/google/uuid"
)

// DailyReport - неизменяемый снимок состояния задач за день
type DailyReport struct {
	UUID                uuid.UUID    `json:"id" db:"uuid"`
	Date                time.Time    `json:"date" db:"date"`
	TasksCompletedToday int          `json:"tasks_completed_today" db:"tasks_completed_today"`
	TasksPending        int          `json:"tasks_pending" db:"tasks_pending"`
	OverdueTasks        int          `json:"overdue_tasks" db:"overdue_tasks"`
	TaskDetails         []TaskDetail `json:"task_details" db:"task_details"`
	GeneratedAt         time.Time    `json:"generated_at" db:"generated_at"`
}

type TaskDetail struct {
	TaskID    uuid.UUID   `json:"task_id"`
	TaskTitle string      `json:"task_title"`
	DaysTaken int         `json:"days_taken"`
	Status    task.Status `json:"status"`
}
