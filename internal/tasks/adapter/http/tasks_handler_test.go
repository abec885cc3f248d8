package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sharederrors "tasky/internal/shared/errors"
	taskshttp "tasky/internal/tasks/adapter/http"
	"tasky/internal/tasks/domain/model"
	"tasky/internal/tasks/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type mockUserUsecase struct {
	mock.Mock
}

func (m *mockUserUsecase) ListUsers(ctx context.Context) ([]*model.User, error) {
	args := m.Called(ctx)
	if users, ok := args.Get(0).([]*model.User); ok {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserUsecase) CreateUser(ctx context.Context, req usecase.CreateUserRequest) (*model.User, error) {
	args := m.Called(ctx, req)
	if user, ok := args.Get(0).(*model.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserUsecase) GetUser(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*model.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserUsecase) UpdateUser(ctx context.Context, id string, req usecase.UpdateUserRequest) (*model.User, error) {
	args := m.Called(ctx, id, req)
	if user, ok := args.Get(0).(*model.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserUsecase) DeleteUser(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockTaskUsecase struct {
	mock.Mock
}

func (m *mockTaskUsecase) ListTasks(ctx context.Context, page, limit int) (*model.TaskPage, error) {
	args := m.Called(ctx, page, limit)
	if p, ok := args.Get(0).(*model.TaskPage); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskUsecase) CreateTask(ctx context.Context, req usecase.CreateTaskRequest) (*model.Task, error) {
	args := m.Called(ctx, req)
	if task, ok := args.Get(0).(*model.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskUsecase) GetTask(ctx context.Context, id string) (*model.Task, error) {
	args := m.Called(ctx, id)
	if task, ok := args.Get(0).(*model.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskUsecase) ListUserTasks(ctx context.Context, userID string) ([]*model.Task, error) {
	args := m.Called(ctx, userID)
	if tasks, ok := args.Get(0).([]*model.Task); ok {
		return tasks, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskUsecase) UpdateTask(ctx context.Context, id string, req usecase.UpdateTaskRequest) (*model.Task, error) {
	args := m.Called(ctx, id, req)
	if task, ok := args.Get(0).(*model.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskUsecase) DeleteTask(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(ctx context.Context, rp *readpref.ReadPref) error {
	return p.err
}

type TasksHTTPTestSuite struct {
	suite.Suite
	app   *fiber.App
	users *mockUserUsecase
	tasks *mockTaskUsecase
}

func (s *TasksHTTPTestSuite) SetupTest() {
	s.users = &mockUserUsecase{}
	s.tasks = &mockTaskUsecase{}
	s.app = fiber.New()

	api := s.app.Group("/api/v1")
	taskshttp.NewTasksHTTPHandler(s.users, s.tasks, 0).RegisterRoutes(api)
}

func (s *TasksHTTPTestSuite) do(method, path, body string) (*http.Response, map[string]interface{}) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(req)
	require.NoError(s.T(), err)

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(s.T(), json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func (s *TasksHTTPTestSuite) TestCreateUser_PasswordNotReturned() {
	id := primitive.NewObjectID()
	req := usecase.CreateUserRequest{Name: "Ada", Email: "ada@example.com", Password: "s3cret-pass"}
	s.users.On("CreateUser", mock.Anything, req).
		Return(&model.User{ID: id, Name: "Ada", Email: "ada@example.com", Password: "$2a$10$hash"}, nil)

	resp, body := s.do("POST", "/api/v1/users", `{"name":"Ada","email":"ada@example.com","password":"s3cret-pass"}`)
	assert.Equal(s.T(), http.StatusCreated, resp.StatusCode)
	assert.Equal(s.T(), id.Hex(), body["userId"])
	user := body["user"].(map[string]interface{})
	assert.NotContains(s.T(), user, "password")
	s.users.AssertExpectations(s.T())
}

func (s *TasksHTTPTestSuite) TestCreateUser_BadBody() {
	resp, body := s.do("POST", "/api/v1/users", `{"name":`)
	assert.Equal(s.T(), http.StatusBadRequest, resp.StatusCode)
	assert.Equal(s.T(), "Invalid request body", body["error"])
}

func (s *TasksHTTPTestSuite) TestCreateUser_ValidationDetails() {
	verr := sharederrors.NewValidationErrors().Add("document", "email is required", nil).ToAppError()
	s.users.On("CreateUser", mock.Anything, mock.Anything).Return(nil, verr)

	resp, body := s.do("POST", "/api/v1/users", `{"name":"Ada"}`)
	assert.Equal(s.T(), http.StatusBadRequest, resp.StatusCode)
	assert.Len(s.T(), body["details"], 1)
}

func (s *TasksHTTPTestSuite) TestGetUser_Errors() {
	s.users.On("GetUser", mock.Anything, "bad").
		Return(nil, sharederrors.NewValidationError("invalid user id").WithCode("INVALID_ID"))
	s.users.On("GetUser", mock.Anything, "65f000000000000000000000").
		Return(nil, sharederrors.NewNotFoundError("user"))

	resp, body := s.do("GET", "/api/v1/users/bad", "")
	assert.Equal(s.T(), http.StatusBadRequest, resp.StatusCode)
	assert.Equal(s.T(), "INVALID_ID", body["code"])

	resp, body = s.do("GET", "/api/v1/users/65f000000000000000000000", "")
	assert.Equal(s.T(), http.StatusNotFound, resp.StatusCode)
	assert.Equal(s.T(), "user not found", body["error"])
}

func (s *TasksHTTPTestSuite) TestListUsers_HidesInternalCause() {
	s.users.On("ListUsers", mock.Anything).
		Return(nil, sharederrors.WrapError(errors.New("dial tcp 10.0.0.3:27017"), "failed to list user"))

	resp, body := s.do("GET", "/api/v1/users", "")
	assert.Equal(s.T(), http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(s.T(), "failed to list user", body["error"])
}

func (s *TasksHTTPTestSuite) TestListTasks_PassesPagination() {
	s.tasks.On("ListTasks", mock.Anything, 2, 50).
		Return(&model.TaskPage{Tasks: []*model.Task{}, Page: 2, Limit: 30, Total: 31}, nil)

	resp, body := s.do("GET", "/api/v1/tasks?page=2&limit=50", "")
	assert.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.EqualValues(s.T(), 30, body["limit"])
	assert.EqualValues(s.T(), 31, body["total"])
}

func (s *TasksHTTPTestSuite) TestListTasks_Defaults() {
	s.tasks.On("ListTasks", mock.Anything, 1, usecase.DefaultPageLimit).
		Return(&model.TaskPage{Tasks: []*model.Task{}, Page: 1, Limit: 10}, nil)

	resp, _ := s.do("GET", "/api/v1/tasks", "")
	assert.Equal(s.T(), http.StatusOK, resp.StatusCode)
	s.tasks.AssertExpectations(s.T())
}

func (s *TasksHTTPTestSuite) TestCreateTask() {
	owner := primitive.NewObjectID()
	id := primitive.NewObjectID()
	req := usecase.CreateTaskRequest{Title: "write docs", UserID: owner.Hex()}
	s.tasks.On("CreateTask", mock.Anything, req).Return(&model.Task{ID: id, Title: "write docs", UserID: owner}, nil)

	resp, body := s.do("POST", "/api/v1/tasks", `{"title":"write docs","userId":"`+owner.Hex()+`"}`)
	assert.Equal(s.T(), http.StatusCreated, resp.StatusCode)
	assert.Equal(s.T(), id.Hex(), body["taskId"])
}

func (s *TasksHTTPTestSuite) TestListUserTasks_RouteNotShadowed() {
	owner := primitive.NewObjectID().Hex()
	s.tasks.On("ListUserTasks", mock.Anything, owner).Return([]*model.Task{{Title: "a"}}, nil)

	req := httptest.NewRequest("GET", "/api/v1/tasks/user/"+owner, nil)
	resp, err := s.app.Test(req)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), http.StatusOK, resp.StatusCode)

	var tasks []map[string]interface{}
	require.NoError(s.T(), json.NewDecoder(resp.Body).Decode(&tasks))
	assert.Len(s.T(), tasks, 1)
	s.tasks.AssertNotCalled(s.T(), "GetTask", mock.Anything, mock.Anything)
}

func (s *TasksHTTPTestSuite) TestUpdateAndDeleteTask() {
	id := primitive.NewObjectID().Hex()
	s.tasks.On("UpdateTask", mock.Anything, id, usecase.UpdateTaskRequest{Title: "done", Completed: true}).
		Return(&model.Task{Title: "done", Completed: true}, nil)
	s.tasks.On("DeleteTask", mock.Anything, id).Return(sharederrors.NewNotFoundError("task"))

	resp, body := s.do("PUT", "/api/v1/tasks/"+id, `{"title":"done","completed":true}`)
	assert.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(s.T(), "Task updated successfully", body["message"])

	resp, body = s.do("DELETE", "/api/v1/tasks/"+id, "")
	assert.Equal(s.T(), http.StatusNotFound, resp.StatusCode)
	assert.Equal(s.T(), "task not found", body["error"])
}

func TestTasksHTTPTestSuite(t *testing.T) {
	suite.Run(t, new(TasksHTTPTestSuite))
}

func TestProbes(t *testing.T) {
	newApp := func(err error) *fiber.App {
		app := fiber.New()
		app.Get("/", taskshttp.Welcome)
		taskshttp.NewProbeHandler(fakePinger{err: err}, nil).RegisterRoutes(app.Group("/api/v1"))
		return app
	}

	app := newApp(nil)
	for path, want := range map[string]string{
		"/api/v1/health":  "UP",
		"/api/v1/healthz": "ALIVE",
		"/api/v1/readyz":  "READY",
	} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, want, body["status"], path)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	text, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "Welcome to Tasky API", string(text))

	resp, err = newApp(errors.New("no reachable servers")).Test(httptest.NewRequest("GET", "/api/v1/readyz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
