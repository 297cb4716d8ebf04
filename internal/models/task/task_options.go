package task

import (
	"time"
)

type TaskOption func(*Task)

func WithTitle(title string) TaskOption {
	if title == "" {
		return nil
	}
	return func(task *Task) {
		task.Title = title
	}
}

func WithDescription(description string) TaskOption {
	if description == "" {
		return nil
	}
	return func(task *Task) {
		task.Description = description
	}
}

func WithClientName(clientName string) TaskOption {
	if clientName == "" {
		return nil
	}
	return func(task *Task) {
		task.ClientName = clientName
	}
}

func WithStatus(status Status) TaskOption {
	if status == "" {
		return nil
	}
	return func(task *Task) {
		task.Status = status
	}
}

func WithPriority(priority Priority) TaskOption {
	if priority == "" {
		return nil
	}
	return func(task *Task) {
		task.Priority = priority
	}
}

func WithDeadline(deadline time.Time) TaskOption {
	if deadline.IsZero() {
		return nil
	}
	return func(task *Task) {
		task.Deadline = deadline
	}
}

func WithAssignee(id, name string) TaskOption {
	if id == "" {
		return nil
	}
	return func(task *Task) {
		task.AssignedEmployeeID = id
		task.AssignedEmployeeName = name
	}
}

func WithProgressNotes(notes string) TaskOption {
	return func(task *Task) {
		task.ProgressNotes = notes
	}
}

func WithEstimatedDuration(hours float64) TaskOption {
	if hours <= 0 {
		return nil
	}
	return func(task *Task) {
		task.EstimatedDuration = hours
	}
}

func WithNetInvoiceAmount(amount float64) TaskOption {
	if amount < 0 {
		return nil
	}
	return func(task *Task) {
		task.NetInvoiceAmount = amount
	}
}

func WithTaskCategory(category string) TaskOption {
	if category == "" {
		return nil
	}
	return func(task *Task) {
		task.TaskCategory = category
	}
}

func WithTaskType(taskType string) TaskOption {
	if taskType == "" {
		return nil
	}
	return func(task *Task) {
		task.TaskType = taskType
	}
}
