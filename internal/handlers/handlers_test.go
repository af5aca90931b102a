package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskBoard/internal/auth"
	"taskBoard/internal/handlers"
	"taskBoard/internal/models/task"
	"taskBoard/internal/models/user"
	"taskBoard/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTaskService) CreateTask(ctx context.Context, actor uuid.UUID, in service.TaskInput) (*task.Task, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) ListTasks(ctx context.Context) ([]service.TaskView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.TaskView), args.Error(1)
}

func (m *MockTaskService) GetTask(ctx context.Context, id uuid.UUID) (*service.TaskView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TaskView), args.Error(1)
}

func (m *MockTaskService) ChangeStatus(ctx context.Context, actor, id uuid.UUID, change service.StatusChange) (*service.StatusChangeResult, error) {
	args := m.Called(ctx, actor, id, change)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StatusChangeResult), args.Error(1)
}

func (m *MockTaskService) UpdateTask(ctx context.Context, actor, id uuid.UUID, in service.TaskInput) (*task.Task, error) {
	args := m.Called(ctx, actor, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) DeleteTask(ctx context.Context, actor, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockTaskService) ListUsers(ctx context.Context, actor uuid.UUID) ([]*user.User, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*user.User), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, rawToken string) (*service.LoginResult, error) {
	args := m.Called(ctx, rawToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

func (m *MockAuthService) Profile(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	args := m.Called(ctx, claims)
	return args.Error(0)
}

var _ handlers.TaskService = (*MockTaskService)(nil)
var _ handlers.AuthService = (*MockAuthService)(nil)

// newRequest builds a request as the router and auth middleware would hand it over.
func newRequest(method, body string, actor uuid.UUID, id string) *http.Request {
	req := httptest.NewRequest(method, "/api/v1/task", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	ctx := req.Context()
	if actor != uuid.Nil {
		ctx = auth.WithClaims(ctx, &auth.Claims{UserID: actor.String()})
	}
	if id != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestTaskHandler_HealthCheck(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockTaskService)
		expectedStatus int
	}{
		{
			name: "success - healthy",
			setupMock: func(m *MockTaskService) {
				m.On("HealthCheck", mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "error - unhealthy",
			setupMock: func(m *MockTaskService) {
				m.On("HealthCheck", mock.Anything).Return(errors.New("service unavailable"))
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTaskService)
			tt.setupMock(mockService)
			handler := handlers.NewTaskHandler(mockService)

			w := httptest.NewRecorder()
			handler.HealthCheck(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), "task-board")
			mockService.AssertExpectations(t)
		})
	}
}

func TestTaskHandler_CreateTask(t *testing.T) {
	actor := uuid.New()
	created := task.New(actor, time.Now(), task.WithTitle("Test Task"), task.WithDescription("Test Description"))

	tests := []struct {
		name            string
		body            string
		contentType     string
		actor           uuid.UUID
		setupMock       func(*MockTaskService)
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:        "success - create task",
			body:        `{"title":"Test Task","description":"Test Description","labels":["a"],"dueDate":"2024-06-01","assigneeId":null}`,
			contentType: "application/json",
			actor:       actor,
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, actor, service.TaskInput{
					Title:       "Test Task",
					Description: "Test Description",
					Labels:      []string{"a"},
					DueDate:     "2024-06-01",
				}).Return(created, nil)
			},
			expectedStatus:  http.StatusCreated,
			expectedMessage: "Task created successfully",
		},
		{
			name:            "error - invalid content type",
			body:            `{}`,
			contentType:     "text/plain",
			actor:           actor,
			setupMock:       func(m *MockTaskService) {},
			expectedStatus:  http.StatusUnsupportedMediaType,
			expectedMessage: "Content-Type must be application/json",
		},
		{
			name:            "error - invalid JSON",
			body:            `{invalid json}`,
			contentType:     "application/json",
			actor:           actor,
			setupMock:       func(m *MockTaskService) {},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid request body",
		},
		{
			name:            "error - labels not an array",
			body:            `{"title":"t","description":"d","labels":"urgent"}`,
			contentType:     "application/json",
			actor:           actor,
			setupMock:       func(m *MockTaskService) {},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Labels must be an array",
		},
		{
			name:        "error - validation",
			body:        `{"title":"","description":"d"}`,
			contentType: "application/json",
			actor:       actor,
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, actor, mock.Anything).
					Return(nil, service.NewValidationError("title", "Title is required"))
			},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Title is required",
		},
		{
			name:        "error - service error is hidden",
			body:        `{"title":"t","description":"d"}`,
			contentType: "application/json",
			actor:       actor,
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, actor, mock.Anything).
					Return(nil, errors.New("pq: connection refused"))
			},
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "Internal server error",
		},
		{
			name:            "error - no authenticated user",
			body:            `{"title":"t","description":"d"}`,
			contentType:     "application/json",
			setupMock:       func(m *MockTaskService) {},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Access token is missing or invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTaskService)
			tt.setupMock(mockService)
			handler := handlers.NewTaskHandler(mockService)

			req := newRequest(http.MethodPost, tt.body, tt.actor, "")
			req.Header.Set("Content-Type", tt.contentType)
			w := httptest.NewRecorder()

			handler.CreateTask(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			body := decode(t, w)
			assert.Equal(t, tt.expectedStatus < 400, body["success"])
			assert.Equal(t, tt.expectedMessage, body["message"])
			if tt.expectedStatus == http.StatusCreated {
				createdTask := body["task"].(map[string]any)
				assert.Equal(t, "Test Task", createdTask["title"])
				assert.Equal(t, "Open", createdTask["status"])
				assert.Len(t, createdTask["statusHistory"], 1)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestTaskHandler_ListTasks(t *testing.T) {
	assigneeID := uuid.New()
	assigned := task.New(uuid.New(), time.Now(), task.WithAssignee(&assigneeID))
	unassigned := task.New(uuid.New(), time.Now())

	mockService := new(MockTaskService)
	mockService.On("ListTasks", mock.Anything).Return([]service.TaskView{
		{Task: assigned, Assignee: &user.User{ID: assigneeID, FirstName: "Ann", LastName: "Lee", Email: "ann@example.com"}},
		{Task: unassigned},
	}, nil)
	handler := handlers.NewTaskHandler(mockService)

	w := httptest.NewRecorder()
	handler.ListTasks(w, newRequest(http.MethodGet, "", uuid.New(), ""))

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	tasks := body["tasks"].([]any)
	require.Len(t, tasks, 2)

	first := tasks[0].(map[string]any)
	assignee := first["assignee"].(map[string]any)
	assert.Equal(t, "Ann", assignee["firstName"])
	assert.NotContains(t, assignee, "email")
	assert.Nil(t, tasks[1].(map[string]any)["assignee"])
	assert.Equal(t, []any{}, tasks[1].(map[string]any)["labels"])
}

func TestTaskHandler_ChangeStatus(t *testing.T) {
	actor := uuid.New()
	taskID := uuid.New()
	moved := task.New(actor, time.Now())
	moved.Status = task.StatusReview

	tests := []struct {
		name            string
		id              string
		body            string
		setupMock       func(*MockTaskService)
		expectedStatus  int
		expectedMessage string
	}{
		{
			name: "success - status changed",
			id:   taskID.String(),
			body: `{"status":"Review","comment":"ready"}`,
			setupMock: func(m *MockTaskService) {
				m.On("ChangeStatus", mock.Anything, actor, taskID, service.StatusChange{Status: "Review", Comment: "ready"}).
					Return(&service.StatusChangeResult{Task: moved, PreviousStatus: task.StatusOpen, NewStatus: task.StatusReview}, nil)
			},
			expectedStatus:  http.StatusOK,
			expectedMessage: "Task status updated successfully",
		},
		{
			name: "denied - only owner finishes",
			id:   taskID.String(),
			body: `{"status":"Done"}`,
			setupMock: func(m *MockTaskService) {
				m.On("ChangeStatus", mock.Anything, actor, taskID, mock.Anything).
					Return(nil, service.NewBusinessError(service.CodeTransitionForbidden, task.MsgOnlyOwnerCanFinish))
			},
			expectedStatus:  http.StatusForbidden,
			expectedMessage: task.MsgOnlyOwnerCanFinish,
		},
		{
			name: "error - not found",
			id:   taskID.String(),
			body: `{"status":"Done"}`,
			setupMock: func(m *MockTaskService) {
				m.On("ChangeStatus", mock.Anything, actor, taskID, mock.Anything).
					Return(nil, service.NewNotFound("Task", taskID.String()))
			},
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "Task not found",
		},
		{
			name: "error - version conflict",
			id:   taskID.String(),
			body: `{"status":"Done"}`,
			setupMock: func(m *MockTaskService) {
				m.On("ChangeStatus", mock.Anything, actor, taskID, mock.Anything).
					Return(nil, service.NewVersionConflict(taskID.String()))
			},
			expectedStatus:  http.StatusConflict,
			expectedMessage: "Task was modified by another request, reload and try again",
		},
		{
			name:            "error - malformed id",
			id:              "123",
			body:            `{"status":"Done"}`,
			setupMock:       func(m *MockTaskService) {},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid task ID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTaskService)
			tt.setupMock(mockService)
			handler := handlers.NewTaskHandler(mockService)

			w := httptest.NewRecorder()
			handler.ChangeStatus(w, newRequest(http.MethodPatch, tt.body, actor, tt.id))

			assert.Equal(t, tt.expectedStatus, w.Code)
			body := decode(t, w)
			assert.Equal(t, tt.expectedMessage, body["message"])
			if tt.expectedStatus == http.StatusOK {
				data := body["data"].(map[string]any)
				assert.Equal(t, "Open", data["previousStatus"])
				assert.Equal(t, "Review", data["newStatus"])
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestTaskHandler_UpdateTask(t *testing.T) {
	actor := uuid.New()
	taskID := uuid.New()
	version := 4
	updated := task.New(actor, time.Now(), task.WithTitle("Renamed"))

	mockService := new(MockTaskService)
	mockService.On("UpdateTask", mock.Anything, actor, taskID, mock.MatchedBy(func(in service.TaskInput) bool {
		return in.Title == "Renamed" && in.Version != nil && *in.Version == version
	})).Return(updated, nil)
	handler := handlers.NewTaskHandler(mockService)

	w := httptest.NewRecorder()
	handler.UpdateTask(w, newRequest(http.MethodPut, `{"title":"Renamed","description":"d","version":4}`, actor, taskID.String()))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Task updated successfully", body["message"])
	mockService.AssertExpectations(t)
}

func TestTaskHandler_DeleteTask(t *testing.T) {
	actor := uuid.New()
	taskID := uuid.New()

	t.Run("success - deleted", func(t *testing.T) {
		mockService := new(MockTaskService)
		mockService.On("DeleteTask", mock.Anything, actor, taskID).Return(nil)
		handler := handlers.NewTaskHandler(mockService)

		w := httptest.NewRecorder()
		handler.DeleteTask(w, newRequest(http.MethodDelete, "", actor, taskID.String()))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Task deleted successfully", decode(t, w)["message"])
	})

	t.Run("denied - not owner", func(t *testing.T) {
		mockService := new(MockTaskService)
		mockService.On("DeleteTask", mock.Anything, actor, taskID).
			Return(service.NewBusinessError(service.CodeDeleteForbidden, service.MsgOnlyOwnerCanDelete))
		handler := handlers.NewTaskHandler(mockService)

		w := httptest.NewRecorder()
		handler.DeleteTask(w, newRequest(http.MethodDelete, "", actor, taskID.String()))

		assert.Equal(t, http.StatusForbidden, w.Code)
		body := decode(t, w)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, service.MsgOnlyOwnerCanDelete, body["message"])
	})
}

func TestTaskHandler_ListUsers(t *testing.T) {
	actor := uuid.New()
	mockService := new(MockTaskService)
	mockService.On("ListUsers", mock.Anything, actor).Return([]*user.User{
		{ID: uuid.New(), GoogleID: "secret-sub", FirstName: "Bob", Email: "bob@example.com"},
	}, nil)
	handler := handlers.NewTaskHandler(mockService)

	w := httptest.NewRecorder()
	handler.ListUsers(w, newRequest(http.MethodGet, "", actor, ""))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "secret-sub")
	body := decode(t, w)
	users := body["users"].([]any)
	require.Len(t, users, 1)
	assert.Equal(t, "bob@example.com", users[0].(map[string]any)["email"])
}

func TestAuthHandler_GoogleLogin(t *testing.T) {
	cookieCfg := handlers.CookieConfig{Name: "Authtoken", TTL: 24 * time.Hour}
	u := &user.User{ID: uuid.New(), GoogleID: "sub", FirstName: "Ann", Email: "ann@example.com"}

	t.Run("error - missing bearer token", func(t *testing.T) {
		handler := handlers.NewAuthHandler(new(MockAuthService), cookieCfg)
		w := httptest.NewRecorder()
		handler.GoogleLogin(w, httptest.NewRequest(http.MethodPost, "/auth/google-login", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "No authentication token provided", decode(t, w)["message"])
	})

	t.Run("error - identity rejected", func(t *testing.T) {
		authService := new(MockAuthService)
		authService.On("Login", mock.Anything, "bad").
			Return(nil, service.NewBusinessError(service.CodeIdentityRejected, service.MsgEmailNotVerified))
		handler := handlers.NewAuthHandler(authService, cookieCfg)

		req := httptest.NewRequest(http.MethodPost, "/auth/google-login", nil)
		req.Header.Set("Authorization", "Bearer bad")
		w := httptest.NewRecorder()
		handler.GoogleLogin(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, service.MsgEmailNotVerified, decode(t, w)["message"])
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("error - email taken", func(t *testing.T) {
		authService := new(MockAuthService)
		authService.On("Login", mock.Anything, "other").
			Return(nil, service.NewBusinessError(service.CodeEmailTaken, service.MsgEmailTaken))
		handler := handlers.NewAuthHandler(authService, cookieCfg)

		req := httptest.NewRequest(http.MethodPost, "/auth/google-login", nil)
		req.Header.Set("Authorization", "Bearer other")
		w := httptest.NewRecorder()
		handler.GoogleLogin(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		body := decode(t, w)
		assert.Equal(t, service.MsgEmailTaken, body["message"])
		assert.Equal(t, service.CodeEmailTaken, body["error"])
		assert.Empty(t, w.Result().Cookies())
	})

	for _, created := range []bool{true, false} {
		authService := new(MockAuthService)
		authService.On("Login", mock.Anything, "google-id-token").Return(&service.LoginResult{
			User:      u,
			Token:     "session-token",
			ExpiresAt: time.Now().Add(24 * time.Hour),
			Created:   created,
		}, nil)
		handler := handlers.NewAuthHandler(authService, cookieCfg)

		req := httptest.NewRequest(http.MethodPost, "/auth/google-login", nil)
		req.Header.Set("Authorization", "Bearer google-id-token")
		w := httptest.NewRecorder()
		handler.GoogleLogin(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		if created {
			assert.Equal(t, "User registered and logged in successfully", body["message"])
		} else {
			assert.Equal(t, "User logged in successfully", body["message"])
		}
		assert.NotContains(t, body["user"], "googleId")

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "Authtoken", cookies[0].Name)
		assert.Equal(t, "session-token", cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, 24*60*60, cookies[0].MaxAge)
		assert.Equal(t, "/", cookies[0].Path)
	}
}

func TestAuthHandler_ProfileAndLogout(t *testing.T) {
	actor := uuid.New()
	cookieCfg := handlers.CookieConfig{Name: "Authtoken", TTL: time.Hour, Secure: true}

	t.Run("profile not found", func(t *testing.T) {
		authService := new(MockAuthService)
		authService.On("Profile", mock.Anything, actor).Return(nil, service.NewNotFound("User", actor.String()))
		handler := handlers.NewAuthHandler(authService, cookieCfg)

		w := httptest.NewRecorder()
		handler.Profile(w, newRequest(http.MethodGet, "", actor, ""))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "User not found", decode(t, w)["message"])
	})

	t.Run("logout clears cookie", func(t *testing.T) {
		authService := new(MockAuthService)
		authService.On("Logout", mock.Anything, mock.MatchedBy(func(c *auth.Claims) bool {
			return c != nil && c.UserID == actor.String()
		})).Return(nil)
		handler := handlers.NewAuthHandler(authService, cookieCfg)

		w := httptest.NewRecorder()
		handler.Logout(w, newRequest(http.MethodPost, "", actor, ""))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Logged out successfully", decode(t, w)["message"])
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "", cookies[0].Value)
		assert.True(t, cookies[0].MaxAge < 0)
		assert.True(t, cookies[0].Secure)
		assert.Equal(t, http.SameSiteNoneMode, cookies[0].SameSite)
		authService.AssertExpectations(t)
	})
}
