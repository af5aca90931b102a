package task

import (
	"time"

	"github.com/google/uuid"
)

type TaskOption func(*Task)

func WithTitle(title string) TaskOption {
	return func(task *Task) {
		task.Title = title
	}
}

func WithDescription(description string) TaskOption {
	return func(task *Task) {
		task.Description = description
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

// WithAssignee sets or clears the assignee; nil means unassigned.
func WithAssignee(id *uuid.UUID) TaskOption {
	return func(task *Task) {
		if id == nil {
			task.AssigneeID = nil
			return
		}
		assignee := *id
		task.AssigneeID = &assignee
	}
}

func WithLabels(labels []string) TaskOption {
	return func(task *Task) {
		task.Labels = append([]string{}, labels...)
	}
}

func WithDueDate(dueDate *time.Time) TaskOption {
	return func(task *Task) {
		if dueDate == nil {
			task.DueDate = nil
			return
		}
		d := *dueDate
		task.DueDate = &d
	}
}
