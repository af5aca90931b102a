package handlers

import (
	"net/http"
	"time"

	"taskBoard/internal/auth"
	"taskBoard/internal/handlers/dto"
	"taskBoard/internal/logger"
	"taskBoard/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const serviceName = "task-board"

type TaskHandler struct {
	TaskService TaskService
}

func NewTaskHandler(taskService TaskService) TaskHandler {
	return TaskHandler{
		TaskService: taskService,
	}
}

func (s *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: health check failed", err)
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unhealthy"),
			toPayload("service", serviceName),
			toPayload("message", "Storage is unavailable"))
		return
	}
	responseWithJSON(w, http.StatusOK,
		toPayload("status", "healthy"),
		toPayload("service", serviceName),
		toPayload("time", time.Now().UTC()))
}

func (s *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var request dto.TaskRequest
	if status, msg, err := decodeJSON(w, r, &request); err != nil {
		logger.Warn("HTTP: failed to read JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, status, msg)
		return
	}

	created, err := s.TaskService.CreateTask(r.Context(), actor, request.ToInput())
	if err != nil {
		handleServiceError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: task created",
		zap.String("task_id", created.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithMessage(w, http.StatusCreated, "Task created successfully",
		toPayload("task", dto.FromTask(created, nil)))
}

func (s *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	views, err := s.TaskService.ListTasks(r.Context())
	if err != nil {
		handleServiceError(w, r, err, "list_tasks")
		return
	}

	responseWithMessage(w, http.StatusOK, "Tasks fetched successfully",
		toPayload("tasks", dto.FromTaskViews(views)))
}

func (s *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskIDFrom(w, r)
	if !ok {
		return
	}

	view, err := s.TaskService.GetTask(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "get_task")
		return
	}

	responseWithMessage(w, http.StatusOK, "Task fetched successfully",
		toPayload("task", dto.FromTask(view.Task, view.Assignee)))
}

func (s *TaskHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := taskIDFrom(w, r)
	if !ok {
		return
	}

	var request dto.StatusRequest
	if status, msg, err := decodeJSON(w, r, &request); err != nil {
		logger.Warn("HTTP: failed to read JSON", zap.Error(err))
		responseWithError(w, status, msg)
		return
	}

	result, err := s.TaskService.ChangeStatus(r.Context(), actor, id, request.ToChange())
	if err != nil {
		handleServiceError(w, r, err, "change_status")
		return
	}

	logger.Info("HTTP_OUT: task status changed",
		zap.String("task_id", id.String()),
		zap.String("from", string(result.PreviousStatus)),
		zap.String("to", string(result.NewStatus)),
		zap.Duration("ms", time.Since(start)))

	responseWithMessage(w, http.StatusOK, "Task status updated successfully",
		toPayload("data", dto.FromStatusChange(result)))
}

func (s *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := taskIDFrom(w, r)
	if !ok {
		return
	}

	var request dto.TaskRequest
	if status, msg, err := decodeJSON(w, r, &request); err != nil {
		logger.Warn("HTTP: failed to read JSON", zap.Error(err))
		responseWithError(w, status, msg)
		return
	}

	updated, err := s.TaskService.UpdateTask(r.Context(), actor, id, request.ToInput())
	if err != nil {
		handleServiceError(w, r, err, "update_task")
		return
	}

	responseWithMessage(w, http.StatusOK, "Task updated successfully",
		toPayload("task", dto.FromTask(updated, nil)))
}

func (s *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := taskIDFrom(w, r)
	if !ok {
		return
	}

	if err := s.TaskService.DeleteTask(r.Context(), actor, id); err != nil {
		handleServiceError(w, r, err, "delete_task")
		return
	}

	responseWithMessage(w, http.StatusOK, "Task deleted successfully")
}

func (s *TaskHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	users, err := s.TaskService.ListUsers(r.Context(), actor)
	if err != nil {
		handleServiceError(w, r, err, "list_users")
		return
	}

	responseWithMessage(w, http.StatusOK, "Users fetched successfully",
		toPayload("users", dto.FromUsers(users)))
}

// actorFrom returns the authenticated user id or answers 401.
func actorFrom(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	actor, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		responseWithError(w, http.StatusUnauthorized, middleware.MsgTokenMissing)
		return uuid.Nil, false
	}
	return actor, true
}

func taskIDFrom(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		logger.Warn("HTTP: invalid task id",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "Invalid task ID")
		return uuid.Nil, false
	}
	return id, true
}
