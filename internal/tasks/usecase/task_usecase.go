package usecase

import (
	"context"
	"strings"

	schemamodel "tasky/internal/schema/domain/model"
	sharederrors "tasky/internal/shared/errors"
	"tasky/internal/shared/logger"
	"tasky/internal/tasks/domain/model"
	"tasky/internal/tasks/domain/repository"
)

// Pagination bounds for task listings
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 30
)

// TaskUsecaseInterface defines the task use cases
type TaskUsecaseInterface interface {
	ListTasks(ctx context.Context, page, limit int) (*model.TaskPage, error)
	CreateTask(ctx context.Context, req CreateTaskRequest) (*model.Task, error)
	GetTask(ctx context.Context, id string) (*model.Task, error)
	ListUserTasks(ctx context.Context, userID string) ([]*model.Task, error)
	UpdateTask(ctx context.Context, id string, req UpdateTaskRequest) (*model.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// CreateTaskRequest is the body of POST /tasks
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	UserID      string `json:"userId"`
}

// UpdateTaskRequest is the body of PUT /tasks/:taskId
type UpdateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// TaskUsecase implements TaskUsecaseInterface
type TaskUsecase struct {
	tasks  repository.TaskRepository
	users  repository.UserRepository
	rule   schemamodel.ValidationRule
	logger logger.Logger
}

// NewTaskUsecase creates a task usecase checking new tasks against rule
func NewTaskUsecase(tasks repository.TaskRepository, users repository.UserRepository, rule schemamodel.ValidationRule, log logger.Logger) *TaskUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &TaskUsecase{tasks: tasks, users: users, rule: rule, logger: log.WithComponent("tasks")}
}

// NormalizePage clamps page to at least 1 and limit to [1, MaxPageLimit]
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}

// ListTasks returns one page of tasks with the total count
func (uc *TaskUsecase) ListTasks(ctx context.Context, page, limit int) (*model.TaskPage, error) {
	page, limit = NormalizePage(page, limit)

	total, err := uc.tasks.Count(ctx)
	if err != nil {
		return nil, mapRepositoryError(err, "task", "count")
	}

	tasks, err := uc.tasks.List(ctx, int64((page-1)*limit), int64(limit))
	if err != nil {
		return nil, mapRepositoryError(err, "task", "list")
	}

	return &model.TaskPage{Tasks: tasks, Page: page, Limit: limit, Total: total}, nil
}

// CreateTask validates the task, confirms the owner exists and stores it
func (uc *TaskUsecase) CreateTask(ctx context.Context, req CreateTaskRequest) (*model.Task, error) {
	task := &model.Task{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Completed:   req.Completed,
	}
	if req.UserID != "" {
		oid, err := parseID(req.UserID, "user")
		if err != nil {
			return nil, err
		}
		task.UserID = oid
	}

	if err := checkDocument(uc.rule, task.Document()); err != nil {
		return nil, err
	}

	if _, err := uc.users.GetByID(ctx, task.UserID); err != nil {
		return nil, mapRepositoryError(err, "user", "get")
	}

	if err := uc.tasks.Create(ctx, task); err != nil {
		return nil, mapRepositoryError(err, "task", "create")
	}

	uc.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"taskId": task.ID.Hex(),
		"userId": task.UserID.Hex(),
	}).Info("Task created")
	return task, nil
}

// GetTask returns the task with the given ID
func (uc *TaskUsecase) GetTask(ctx context.Context, id string) (*model.Task, error) {
	oid, err := parseID(id, "task")
	if err != nil {
		return nil, err
	}

	task, err := uc.tasks.GetByID(ctx, oid)
	if err != nil {
		return nil, mapRepositoryError(err, "task", "get")
	}
	return task, nil
}

// ListUserTasks returns the tasks owned by userID
func (uc *TaskUsecase) ListUserTasks(ctx context.Context, userID string) ([]*model.Task, error) {
	oid, err := parseID(userID, "user")
	if err != nil {
		return nil, err
	}

	tasks, err := uc.tasks.ListByUser(ctx, oid)
	if err != nil {
		return nil, mapRepositoryError(err, "task", "list")
	}
	return tasks, nil
}

// UpdateTask replaces title, description and completed of a task
func (uc *TaskUsecase) UpdateTask(ctx context.Context, id string, req UpdateTaskRequest) (*model.Task, error) {
	oid, err := parseID(id, "task")
	if err != nil {
		return nil, err
	}

	task := &model.Task{
		ID:          oid,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Completed:   req.Completed,
	}
	if task.Title == "" {
		return nil, sharederrors.NewValidationErrors().Add("title", "title is required", nil).ToAppError()
	}

	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, mapRepositoryError(err, "task", "update")
	}
	return uc.GetTask(ctx, id)
}

// DeleteTask removes the task with the given ID
func (uc *TaskUsecase) DeleteTask(ctx context.Context, id string) error {
	oid, err := parseID(id, "task")
	if err != nil {
		return err
	}
	if err := uc.tasks.Delete(ctx, oid); err != nil {
		return mapRepositoryError(err, "task", "delete")
	}

	uc.logger.WithContext(ctx).WithFields(map[string]interface{}{"taskId": id}).Info("Task deleted")
	return nil
}
