package notification

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	UUID      uuid.UUID  `json:"id" db:"uuid"`
	UserID    string     `json:"user_id" db:"user_id"`
	Title     string     `json:"title" db:"title"`
	Message   string     `json:"message" db:"message"`
	Kind      Kind       `json:"type" db:"kind"`
	TaskID    *uuid.UUID `json:"task_id,omitempty" db:"task_id"`
	Read      bool       `json:"read" db:"read"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

type Kind string

const KindTaskAssigned Kind = "task_assigned"
const KindDeadlineApproaching Kind = "deadline_approaching"
const KindTaskOverdue Kind = "task_overdue"

// DedupWindow - окно, в котором повторное уведомление того же вида
// по той же задаче не создаётся
const DedupWindow = time.Hour

func New(userID string, kind Kind, title, message string, taskID *uuid.UUID, now time.Time) *Notification {
	return &Notification{
		UUID:      uuid.New(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Kind:      kind,
		TaskID:    taskID,
		Read:      false,
		CreatedAt: now,
	}
}
