package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"taskBoard/internal/models/task"
	rep "taskBoard/internal/repository"

	"github.com/google/uuid"
)

// TaskInput is the unvalidated body of a create or full-replace request.
type TaskInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	AssigneeID  string
	Labels      []string
	DueDate     string
	// Version is the version the client last saw; nil skips the check.
	Version *int
}

// StatusChange is the body of a status-only move.
type StatusChange struct {
	Status  string
	Comment string
}

type validTask struct {
	title       string
	description string
	status      task.Status
	priority    task.Priority
	assignee    *uuid.UUID
	labels      []string
	dueDate     *time.Time
}

// Zone-less layouts are read as UTC; datetime-local inputs send them.
var dueDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

// validate checks the fields in order and stops at the first bad one.
func (s *TaskService) validate(ctx context.Context, in TaskInput) (*validTask, error) {
	v := &validTask{
		title:       strings.TrimSpace(in.Title),
		description: strings.TrimSpace(in.Description),
		status:      task.StatusOpen,
		priority:    task.PriorityMedium,
	}

	if v.title == "" {
		return nil, NewValidationError("title", "Title is required")
	}
	if v.description == "" {
		return nil, NewValidationError("description", "Description is required")
	}

	if in.Priority != "" {
		v.priority = task.Priority(in.Priority)
		if !v.priority.Valid() {
			return nil, NewValidationError("priority", "Invalid priority value")
		}
	}

	if in.Status != "" {
		v.status = task.Status(in.Status)
		if !v.status.Valid() {
			return nil, NewValidationError("status", "Invalid status value")
		}
	}

	if raw := strings.TrimSpace(in.AssigneeID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, NewValidationError("assigneeId", "Invalid assignee ID")
		}
		if _, err := s.users.GetByID(ctx, id); err != nil {
			if errors.Is(err, rep.ErrNotFound) {
				return nil, NewValidationError("assigneeId", "Assignee does not exist")
			}
			return nil, err
		}
		v.assignee = &id
	}

	if raw := strings.TrimSpace(in.DueDate); raw != "" {
		due, ok := parseDueDate(raw)
		if !ok {
			return nil, NewValidationError("dueDate", "Invalid due date")
		}
		v.dueDate = &due
	}

	v.labels = cleanLabels(in.Labels)
	return v, nil
}

// options turns validated input into task options; status is left to the caller.
func (v *validTask) options() []task.TaskOption {
	return []task.TaskOption{
		task.WithTitle(v.title),
		task.WithDescription(v.description),
		task.WithPriority(v.priority),
		task.WithAssignee(v.assignee),
		task.WithLabels(v.labels),
		task.WithDueDate(v.dueDate),
	}
}

func parseDueDate(raw string) (time.Time, bool) {
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func cleanLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
