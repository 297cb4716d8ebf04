package dto

import (
	"time"

	"taskDesk/internal/models/notification"
	"taskDesk/internal/models/report"
	"taskDesk/internal/models/task"
	"taskDesk/internal/worker"

	"github.com/google/uuid"
)

type CreateTaskRequest struct {
	ClientName         string        `json:"client_name"`
	Title              string        `json:"title"`
	Description        string        `json:"description"`
	AssignedEmployeeID string        `json:"assigned_employee_id"`
	Deadline           time.Time     `json:"deadline"`
	Priority           task.Priority `json:"priority"`
	EstimatedDuration  float64       `json:"estimated_duration"`
	NetInvoiceAmount   float64       `json:"net_invoice_amount"`
	ProgressNotes      string        `json:"progress_notes"`
	TaskType           string        `json:"task_type"`
	TaskCategory       string        `json:"task_category"`
}

func (r CreateTaskRequest) ToTask() *task.Task {
	return &task.Task{
		ClientName:         r.ClientName,
		Title:              r.Title,
		Description:        r.Description,
		AssignedEmployeeID: r.AssignedEmployeeID,
		Deadline:           r.Deadline,
		Priority:           r.Priority,
		EstimatedDuration:  r.EstimatedDuration,
		NetInvoiceAmount:   r.NetInvoiceAmount,
		ProgressNotes:      r.ProgressNotes,
		TaskType:           r.TaskType,
		TaskCategory:       r.TaskCategory,
	}
}

// UpdateTaskRequest: отсутствующее поле не меняется. Version - версия,
// которую видел клиент; 0 отключает проверку.
type UpdateTaskRequest struct {
	Version            int            `json:"version"`
	ClientName         *string        `json:"client_name,omitempty"`
	Title              *string        `json:"title,omitempty"`
	Description        *string        `json:"description,omitempty"`
	AssignedEmployeeID *string        `json:"assigned_employee_id,omitempty"`
	Deadline           *time.Time     `json:"deadline,omitempty"`
	Priority           *task.Priority `json:"priority,omitempty"`
	Status             *task.Status   `json:"status,omitempty"`
	EstimatedDuration  *float64       `json:"estimated_duration,omitempty"`
	NetInvoiceAmount   *float64       `json:"net_invoice_amount,omitempty"`
	ProgressNotes      *string        `json:"progress_notes,omitempty"`
	TaskType           *string        `json:"task_type,omitempty"`
	TaskCategory       *string        `json:"task_category,omitempty"`
}

// Options переводит запрос в опции; пустые опции (nil) сервис пропускает
func (r UpdateTaskRequest) Options() []task.TaskOption {
	var opts []task.TaskOption
	if r.ClientName != nil {
		opts = append(opts, task.WithClientName(*r.ClientName))
	}
	if r.Title != nil {
		opts = append(opts, task.WithTitle(*r.Title))
	}
	if r.Description != nil {
		opts = append(opts, task.WithDescription(*r.Description))
	}
	if r.AssignedEmployeeID != nil {
		opts = append(opts, task.WithAssignee(*r.AssignedEmployeeID, ""))
	}
	if r.Deadline != nil {
		opts = append(opts, task.WithDeadline(*r.Deadline))
	}
	if r.Priority != nil {
		opts = append(opts, task.WithPriority(*r.Priority))
	}
	if r.Status != nil {
		opts = append(opts, task.WithStatus(*r.Status))
	}
	if r.EstimatedDuration != nil {
		opts = append(opts, task.WithEstimatedDuration(*r.EstimatedDuration))
	}
	if r.NetInvoiceAmount != nil {
		opts = append(opts, task.WithNetInvoiceAmount(*r.NetInvoiceAmount))
	}
	if r.ProgressNotes != nil {
		opts = append(opts, task.WithProgressNotes(*r.ProgressNotes))
	}
	if r.TaskCategory != nil {
		opts = append(opts, task.WithTaskCategory(*r.TaskCategory))
	}
	if r.TaskType != nil {
		opts = append(opts, task.WithTaskType(*r.TaskType))
	}
	return opts
}

// ProgressOnly: запрос меняет только статус и заметки о ходе работы
func (r UpdateTaskRequest) ProgressOnly() bool {
	return r.ClientName == nil &&
		r.Title == nil &&
		r.Description == nil &&
		r.AssignedEmployeeID == nil &&
		r.Deadline == nil &&
		r.Priority == nil &&
		r.EstimatedDuration == nil &&
		r.NetInvoiceAmount == nil &&
		r.TaskType == nil &&
		r.TaskCategory == nil
}

type TaskResponse struct {
	UUID                 uuid.UUID  `json:"id"`
	ClientName           string     `json:"client_name"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	AssignedEmployeeID   string     `json:"assigned_employee_id"`
	AssignedEmployeeName string     `json:"assigned_employee_name"`
	Deadline             time.Time  `json:"deadline"`
	Priority             string     `json:"priority"`
	Status               string     `json:"status"`
	EstimatedDuration    float64    `json:"estimated_duration"`
	NetInvoiceAmount     float64    `json:"net_invoice_amount"`
	ProgressNotes        string     `json:"progress_notes,omitempty"`
	TaskType             string     `json:"task_type,omitempty"`
	TaskCategory         string     `json:"task_category,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            *time.Time `json:"updated_at,omitempty"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	CreatedBy            string     `json:"created_by"`
	DaysTaken            *int       `json:"days_taken,omitempty"`
	Version              int        `json:"version"`
	IsOverdue            bool       `json:"is_overdue"`
}

func FromTask(t *task.Task, now time.Time) TaskResponse {
	return TaskResponse{
		UUID:                 t.UUID,
		ClientName:           t.ClientName,
		Title:                t.Title,
		Description:          t.Description,
		AssignedEmployeeID:   t.AssignedEmployeeID,
		AssignedEmployeeName: t.AssignedEmployeeName,
		Deadline:             t.Deadline,
		Priority:             string(t.Priority),
		Status:               string(t.Status),
		EstimatedDuration:    t.EstimatedDuration,
		NetInvoiceAmount:     t.NetInvoiceAmount,
		ProgressNotes:        t.ProgressNotes,
		TaskType:             t.TaskType,
		TaskCategory:         t.TaskCategory,
		CreatedAt:            t.CreatedAt,
		UpdatedAt:            t.UpdatedAt,
		CompletedAt:          t.CompletedAt,
		CreatedBy:            t.CreatedBy,
		DaysTaken:            t.DaysTaken,
		Version:              t.Version,
		IsOverdue:            t.Status != task.StatusCompleted && t.Deadline.Before(now),
	}
}

func FromTaskList(tasks []*task.Task, now time.Time) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t, now)
	}
	return result
}

type NotificationResponse struct {
	UUID      uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Type      string     `json:"type"`
	TaskID    *uuid.UUID `json:"task_id,omitempty"`
	Read      bool       `json:"read"`
	CreatedAt time.Time  `json:"created_at"`
}

func FromNotifications(notes []*notification.Notification) []NotificationResponse {
	result := make([]NotificationResponse, len(notes))
	for i, n := range notes {
		result[i] = NotificationResponse{
			UUID:      n.UUID,
			Title:     n.Title,
			Message:   n.Message,
			Type:      string(n.Kind),
			TaskID:    n.TaskID,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		}
	}
	return result
}

// отчёты уже совпадают с формой ответа
func FromReports(reports []*report.DailyReport) []*report.DailyReport {
	if reports == nil {
		return []*report.DailyReport{}
	}
	return reports
}

type JobRunResponse struct {
	Job        string `json:"job"`
	Checked    int    `json:"checked"`
	Emitted    int    `json:"emitted"`
	Failed     int    `json:"failed"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

func FromResult(r worker.Result) JobRunResponse {
	return JobRunResponse{
		Job:        r.Job,
		Checked:    r.Checked,
		Emitted:    r.Emitted,
		Failed:     r.Failed,
		DurationMs: r.Duration.Milliseconds(),
		Error:      r.Error,
	}
}
