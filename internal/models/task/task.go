package task

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	UUID                 uuid.UUID  `json:"id" db:"uuid"`
	ClientName           string     `json:"client_name" db:"client_name"`
	Title                string     `json:"title" db:"title"`
	Description          string     `json:"description" db:"description"`
	AssignedEmployeeID   string     `json:"assigned_employee_id" db:"assigned_employee_id"`
	AssignedEmployeeName string     `json:"assigned_employee_name" db:"assigned_employee_name"`
	Deadline             time.Time  `json:"deadline" db:"deadline"`
	Priority             Priority   `json:"priority" db:"priority"`
	Status               Status     `json:"status" db:"status"`
	EstimatedDuration    float64    `json:"estimated_duration" db:"estimated_duration"`
	NetInvoiceAmount     float64    `json:"net_invoice_amount" db:"net_invoice_amount"`
	ProgressNotes        string     `json:"progress_notes,omitempty" db:"progress_notes"`
	TaskType             string     `json:"task_type,omitempty" db:"task_type"`
	TaskCategory         string     `json:"task_category,omitempty" db:"task_category"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt            *time.Time `json:"updated_at,omitempty" db:"updated_at"`
	CompletedAt          *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedBy            string     `json:"created_by" db:"created_by"`
	DaysTaken            *int       `json:"days_taken,omitempty" db:"days_taken"`
	Version              int        `json:"version" db:"version"`
}

type Status string
type Priority string

const StatusPending Status = "Pending"
const StatusInProgress Status = "In Progress"
const StatusOnHold Status = "On Hold"
const StatusCompleted Status = "Completed"

const PriorityLow Priority = "Low"
const PriorityMedium Priority = "Medium"
const PriorityHigh Priority = "High"
const PriorityUrgent Priority = "Urgent"

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusOnHold, StatusCompleted:
		return true
	}
	return false
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// переходы статусов; повтор того же статуса разрешён отдельно
var transitions = map[Status][]Status{
	StatusPending:    {StatusInProgress, StatusOnHold, StatusCompleted},
	StatusInProgress: {StatusOnHold, StatusCompleted},
	StatusOnHold:     {StatusInProgress, StatusCompleted},
}

// CanTransition сообщает, допустим ли переход from -> to.
// Completed конечный: из него выйти нельзя.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (t *Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// Clone возвращает независимую копию, нужна для снимка "до" при обновлении
func (t *Task) Clone() *Task {
	c := *t
	if t.UpdatedAt != nil {
		v := *t.UpdatedAt
		c.UpdatedAt = &v
	}
	if t.CompletedAt != nil {
		v := *t.CompletedAt
		c.CompletedAt = &v
	}
	if t.DaysTaken != nil {
		v := *t.DaysTaken
		c.DaysTaken = &v
	}
	return &c
}
