package mongodb

import (
	"time"

	"taskDesk/internal/models/notification"
	"taskDesk/internal/models/report"
	"taskDesk/internal/models/task"
	"taskDesk/internal/models/user"

	"github.com/google/uuid"
)

// документы хранят идентификаторы строками, время - в UTC с точностью до миллисекунд

type taskDoc struct {
	ID                   string     `bson:"_id"`
	ClientName           string     `bson:"clientName"`
	Title                string     `bson:"title"`
	Description          string     `bson:"description"`
	AssignedEmployeeID   string     `bson:"assignedEmployeeId"`
	AssignedEmployeeName string     `bson:"assignedEmployeeName"`
	Deadline             time.Time  `bson:"deadline"`
	Priority             string     `bson:"priority"`
	Status               string     `bson:"status"`
	EstimatedDuration    float64    `bson:"estimatedDuration"`
	NetInvoiceAmount     float64    `bson:"netInvoiceAmount"`
	ProgressNotes        string     `bson:"progressNotes,omitempty"`
	TaskType             string     `bson:"taskType,omitempty"`
	TaskCategory         string     `bson:"taskCategory,omitempty"`
	CreatedAt            time.Time  `bson:"createdAt"`
	UpdatedAt            *time.Time `bson:"updatedAt,omitempty"`
	CompletedAt          *time.Time `bson:"completedAt,omitempty"`
	CreatedBy            string     `bson:"createdBy"`
	DaysTaken            *int       `bson:"daysTaken,omitempty"`
	Version              int        `bson:"version"`
}

func fromTask(t *task.Task) taskDoc {
	return taskDoc{
		ID:                   t.UUID.String(),
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
	}
}

func (d taskDoc) toTask() (*task.Task, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	t := &task.Task{
		UUID:                 id,
		ClientName:           d.ClientName,
		Title:                d.Title,
		Description:          d.Description,
		AssignedEmployeeID:   d.AssignedEmployeeID,
		AssignedEmployeeName: d.AssignedEmployeeName,
		Deadline:             d.Deadline,
		Priority:             task.Priority(d.Priority),
		Status:               task.Status(d.Status),
		EstimatedDuration:    d.EstimatedDuration,
		NetInvoiceAmount:     d.NetInvoiceAmount,
		ProgressNotes:        d.ProgressNotes,
		TaskType:             d.TaskType,
		TaskCategory:         d.TaskCategory,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
		CompletedAt:          d.CompletedAt,
		CreatedBy:            d.CreatedBy,
		DaysTaken:            d.DaysTaken,
		Version:              d.Version,
	}
	// отсутствующий приоритет в старых документах
	if t.Priority == "" {
		t.Priority = task.PriorityMedium
	}
	return t, nil
}

type notificationDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"userId"`
	Title     string    `bson:"title"`
	Message   string    `bson:"message"`
	Kind      string    `bson:"type"`
	TaskID    string    `bson:"taskId,omitempty"`
	Read      bool      `bson:"read"`
	CreatedAt time.Time `bson:"createdAt"`
}

func fromNotification(n *notification.Notification) notificationDoc {
	doc := notificationDoc{
		ID:        n.UUID.String(),
		UserID:    n.UserID,
		Title:     n.Title,
		Message:   n.Message,
		Kind:      string(n.Kind),
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
	if n.TaskID != nil {
		doc.TaskID = n.TaskID.String()
	}
	return doc
}

func (d notificationDoc) toNotification() (*notification.Notification, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	n := &notification.Notification{
		UUID:      id,
		UserID:    d.UserID,
		Title:     d.Title,
		Message:   d.Message,
		Kind:      notification.Kind(d.Kind),
		Read:      d.Read,
		CreatedAt: d.CreatedAt,
	}
	if d.TaskID != "" {
		taskID, err := uuid.Parse(d.TaskID)
		if err != nil {
			return nil, err
		}
		n.TaskID = &taskID
	}
	return n, nil
}

type taskDetailDoc struct {
	TaskID    string `bson:"taskId"`
	TaskTitle string `bson:"taskTitle"`
	DaysTaken int    `bson:"daysTaken"`
	Status    string `bson:"status"`
}

type reportDoc struct {
	ID                  string          `bson:"_id"`
	Date                time.Time       `bson:"date"`
	TasksCompletedToday int             `bson:"tasksCompletedToday"`
	TasksPending        int             `bson:"tasksPending"`
	OverdueTasks        int             `bson:"overdueTasks"`
	TaskDetails         []taskDetailDoc `bson:"taskDetails"`
	GeneratedAt         time.Time       `bson:"generatedAt"`
}

func fromReport(r *report.DailyReport) reportDoc {
	details := make([]taskDetailDoc, 0, len(r.TaskDetails))
	for _, d := range r.TaskDetails {
		details = append(details, taskDetailDoc{
			TaskID:    d.TaskID.String(),
			TaskTitle: d.TaskTitle,
			DaysTaken: d.DaysTaken,
			Status:    string(d.Status),
		})
	}
	return reportDoc{
		ID:                  r.UUID.String(),
		Date:                r.Date,
		TasksCompletedToday: r.TasksCompletedToday,
		TasksPending:        r.TasksPending,
		OverdueTasks:        r.OverdueTasks,
		TaskDetails:         details,
		GeneratedAt:         r.GeneratedAt,
	}
}

func (d reportDoc) toReport() (*report.DailyReport, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	r := &report.DailyReport{
		UUID:                id,
		Date:                d.Date,
		TasksCompletedToday: d.TasksCompletedToday,
		TasksPending:        d.TasksPending,
		OverdueTasks:        d.OverdueTasks,
		TaskDetails:         make([]report.TaskDetail, 0, len(d.TaskDetails)),
		GeneratedAt:         d.GeneratedAt,
	}
	for _, det := range d.TaskDetails {
		taskID, err := uuid.Parse(det.TaskID)
		if err != nil {
			return nil, err
		}
		r.TaskDetails = append(r.TaskDetails, report.TaskDetail{
			TaskID:    taskID,
			TaskTitle: det.TaskTitle,
			DaysTaken: det.DaysTaken,
			Status:    task.Status(det.Status),
		})
	}
	return r, nil
}

type userDoc struct {
	ID          string    `bson:"_id"`
	Email       string    `bson:"email"`
	DisplayName string    `bson:"displayName"`
	Role        string    `bson:"role"`
	FCMToken    string    `bson:"fcmToken,omitempty"`
	CreatedAt   time.Time `bson:"createdAt"`
}

func fromUser(u *user.User) userDoc {
	return userDoc{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
		FCMToken:    u.FCMToken,
		CreatedAt:   u.CreatedAt,
	}
}

func (d userDoc) toUser() *user.User {
	return &user.User{
		ID:          d.ID,
		Email:       d.Email,
		DisplayName: d.DisplayName,
		Role:        user.Role(d.Role),
		FCMToken:    d.FCMToken,
		CreatedAt:   d.CreatedAt,
	}
}
