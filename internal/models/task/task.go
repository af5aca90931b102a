package task

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID            uuid.UUID      `json:"id" db:"id"`
	Title         string         `json:"title" db:"title"`
	Description   string         `json:"description" db:"description"`
	Status        Status         `json:"status" db:"status"`
	Priority      Priority       `json:"priority" db:"priority"`
	OwnerID       uuid.UUID      `json:"ownerId" db:"owner_id"`
	AssigneeID    *uuid.UUID     `json:"assigneeId,omitempty" db:"assignee_id"`
	Labels        []string       `json:"labels" db:"labels"`
	DueDate       *time.Time     `json:"dueDate,omitempty" db:"due_date"`
	StatusHistory []HistoryEntry `json:"statusHistory" db:"-"`
	Version       int            `json:"version" db:"version"`
	CreatedAt     time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time      `json:"updatedAt" db:"updated_at"`
}

// HistoryEntry is one record of the append-only status log.
type HistoryEntry struct {
	Status    Status    `json:"status" db:"status"`
	ChangedBy uuid.UUID `json:"changedBy" db:"changed_by"`
	ChangedAt time.Time `json:"changedAt" db:"changed_at"`
	Comment   string    `json:"comment,omitempty" db:"comment"`
}

type Status string
type Priority string

const StatusOpen Status = "Open"
const StatusInProgress Status = "In Progress"
const StatusReview Status = "Review"
const StatusDone Status = "Done"

const PriorityLow Priority = "Low"
const PriorityMedium Priority = "Medium"
const PriorityHigh Priority = "High"

const CreatedComment = "Task created"

var statuses = []Status{StatusOpen, StatusInProgress, StatusReview, StatusDone}
var priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (s Status) Valid() bool {
	return slices.Contains(statuses, s)
}

func (p Priority) Valid() bool {
	return slices.Contains(priorities, p)
}

func Statuses() []Status {
	return slices.Clone(statuses)
}

// New builds a task owned by owner with its creation record already in the history.
func New(owner uuid.UUID, now time.Time, opts ...TaskOption) *Task {
	t := &Task{
		ID:        uuid.New(),
		Status:    StatusOpen,
		Priority:  PriorityMedium,
		OwnerID:   owner,
		Labels:    []string{},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}

	t.StatusHistory = []HistoryEntry{{
		Status:    t.Status,
		ChangedBy: owner,
		ChangedAt: now,
		Comment:   CreatedComment,
	}}
	return t
}

func (t *Task) HasAssignee() bool {
	return t.AssigneeID != nil && *t.AssigneeID != uuid.Nil
}

// Clone returns a deep copy; storages hand out clones so callers never share state.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	if t.AssigneeID != nil {
		id := *t.AssigneeID
		c.AssigneeID = &id
	}
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	c.Labels = slices.Clone(t.Labels)
	if c.Labels == nil {
		c.Labels = []string{}
	}
	c.StatusHistory = slices.Clone(t.StatusHistory)
	return &c
}
