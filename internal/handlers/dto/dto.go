package dto

import (
	"time"

	"taskBoard/internal/models/task"
	"taskBoard/internal/models/user"
	"taskBoard/internal/service"

	"github.com/google/uuid"
)

// TaskRequest is the body of create and full-replace requests.
type TaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	AssigneeID  *string  `json:"assigneeId"`
	Labels      []string `json:"labels"`
	DueDate     *string  `json:"dueDate"`
	Version     *int     `json:"version,omitempty"`
}

func (r TaskRequest) ToInput() service.TaskInput {
	in := service.TaskInput{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		Labels:      r.Labels,
		Version:     r.Version,
	}
	if r.AssigneeID != nil {
		in.AssigneeID = *r.AssigneeID
	}
	if r.DueDate != nil {
		in.DueDate = *r.DueDate
	}
	return in
}

type StatusRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment,omitempty"`
}

func (r StatusRequest) ToChange() service.StatusChange {
	return service.StatusChange{Status: r.Status, Comment: r.Comment}
}

type AssigneeResponse struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
}

type TaskResponse struct {
	ID            uuid.UUID           `json:"id"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Status        task.Status         `json:"status"`
	Priority      task.Priority       `json:"priority"`
	OwnerID       uuid.UUID           `json:"ownerId"`
	AssigneeID    *uuid.UUID          `json:"assigneeId"`
	Assignee      *AssigneeResponse   `json:"assignee"`
	Labels        []string            `json:"labels"`
	DueDate       *time.Time          `json:"dueDate"`
	StatusHistory []task.HistoryEntry `json:"statusHistory"`
	Version       int                 `json:"version"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

func FromTask(t *task.Task, assignee *user.User) TaskResponse {
	resp := TaskResponse{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Status:        t.Status,
		Priority:      t.Priority,
		OwnerID:       t.OwnerID,
		AssigneeID:    t.AssigneeID,
		Labels:        t.Labels,
		DueDate:       t.DueDate,
		StatusHistory: t.StatusHistory,
		Version:       t.Version,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	if resp.Labels == nil {
		resp.Labels = []string{}
	}
	if resp.StatusHistory == nil {
		resp.StatusHistory = []task.HistoryEntry{}
	}
	if assignee != nil {
		resp.Assignee = &AssigneeResponse{
			ID:        assignee.ID,
			FirstName: assignee.FirstName,
			LastName:  assignee.LastName,
		}
	}
	return resp
}

func FromTaskViews(views []service.TaskView) []TaskResponse {
	result := make([]TaskResponse, len(views))
	for i, v := range views {
		result[i] = FromTask(v.Task, v.Assignee)
	}
	return result
}

type StatusChangeResponse struct {
	Task           TaskResponse `json:"task"`
	PreviousStatus task.Status  `json:"previousStatus"`
	NewStatus      task.Status  `json:"newStatus"`
}

func FromStatusChange(res *service.StatusChangeResult) StatusChangeResponse {
	return StatusChangeResponse{
		Task:           FromTask(res.Task, nil),
		PreviousStatus: res.PreviousStatus,
		NewStatus:      res.NewStatus,
	}
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
}

func FromUsers(users []*user.User) []UserResponse {
	result := make([]UserResponse, len(users))
	for i, u := range users {
		result[i] = UserResponse{
			ID:        u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
		}
	}
	return result
}

// ProfileResponse is a user record without the Google subject id.
type ProfileResponse struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func FromProfile(u *user.User) ProfileResponse {
	return ProfileResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
