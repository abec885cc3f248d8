package http

import (
	"context"
	"errors"
	"time"

	sharederrors "tasky/internal/shared/errors"
	"tasky/internal/shared/utils"
	"tasky/internal/tasks/usecase"

	"github.com/gofiber/fiber/v2"
)

const defaultRequestTimeout = 10 * time.Second

// TasksHTTPHandler serves the users and tasks REST API
type TasksHTTPHandler struct {
	users   usecase.UserUsecaseInterface
	tasks   usecase.TaskUsecaseInterface
	timeout time.Duration
}

// NewTasksHTTPHandler creates the handler. timeout bounds each request's database work.
func NewTasksHTTPHandler(users usecase.UserUsecaseInterface, tasks usecase.TaskUsecaseInterface, timeout time.Duration) *TasksHTTPHandler {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &TasksHTTPHandler{users: users, tasks: tasks, timeout: timeout}
}

// RegisterRoutes mounts /users and /tasks on router
func (h *TasksHTTPHandler) RegisterRoutes(router fiber.Router) {
	users := router.Group("/users")
	users.Get("/", h.ListUsers)
	users.Post("/", h.CreateUser)
	users.Get("/:userId", h.GetUser)
	users.Put("/:userId", h.UpdateUser)
	users.Delete("/:userId", h.DeleteUser)

	tasks := router.Group("/tasks")
	tasks.Get("/", h.ListTasks)
	tasks.Post("/", h.CreateTask)
	tasks.Get("/user/:userId", h.ListUserTasks)
	tasks.Get("/:taskId", h.GetTask)
	tasks.Put("/:taskId", h.UpdateTask)
	tasks.Delete("/:taskId", h.DeleteTask)
}

// ListUsers handles GET /users
func (h *TasksHTTPHandler) ListUsers(c *fiber.Ctx) error {
	ctx, cancel := h.requestContext(c, "list-users")
	defer cancel()

	users, err := h.users.ListUsers(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"users": users, "count": len(users)})
}

// CreateUser handles POST /users
func (h *TasksHTTPHandler) CreateUser(c *fiber.Ctx) error {
	var req usecase.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, sharederrors.NewValidationError("Invalid request body").WithCause(err))
	}

	ctx, cancel := h.requestContext(c, "create-user")
	defer cancel()

	user, err := h.users.CreateUser(ctx, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"userId":  user.ID.Hex(),
		"user":    user,
	})
}

// GetUser handles GET /users/:userId
func (h *TasksHTTPHandler) GetUser(c *fiber.Ctx) error {
	ctx, cancel := h.requestContext(c, "get-user")
	defer cancel()

	user, err := h.users.GetUser(ctx, c.Params("userId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(user)
}

// UpdateUser handles PUT /users/:userId
func (h *TasksHTTPHandler) UpdateUser(c *fiber.Ctx) error {
	var req usecase.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, sharederrors.NewValidationError("Invalid request body").WithCause(err))
	}

	ctx, cancel := h.requestContext(c, "update-user")
	defer cancel()

	user, err := h.users.UpdateUser(ctx, c.Params("userId"), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User updated successfully", "user": user})
}

// DeleteUser handles DELETE /users/:userId
func (h *TasksHTTPHandler) DeleteUser(c *fiber.Ctx) error {
	ctx, cancel := h.requestContext(c, "delete-user")
	defer cancel()

	if err := h.users.DeleteUser(ctx, c.Params("userId")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

// ListTasks handles GET /tasks?page=&limit=
func (h *TasksHTTPHandler) ListTasks(c *fiber.Ctx) error {
	ctx, cancel := h.requestContext(c, "list-tasks")
	defer cancel()

	page, err := h.tasks.ListTasks(ctx, c.QueryInt("page", 1), c.QueryInt("limit", usecase.DefaultPageLimit))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(page)
}

// CreateTask handles POST /tasks
func (h *TasksHTTPHandler) CreateTask(c *fiber.Ctx) error {
	var req usecase.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, sharederrors.NewValidationError("Invalid request body").WithCause(err))
	}

	ctx, cancel := h.requestContext(c, "create-task")
	defer cancel()

	task, err := h.tasks.CreateTask(ctx, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Task created successfully",
		"taskId":  task.ID.Hex(),
		"task":    task,
	})
}

// GetTask handles GET /tasks/:taskId
func (h *TasksHTTPHandler) GetTask(c *fiber.Ctx) error {
	ctx, cancel := h.requestContext(c, "get-task")
	defer cancel()

	task, err := h.tasks.GetTask(ctx, c.Params("taskId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(task)
}

// ListUserTasks handles GET /tasks/user/:userId
func (h *TasksHTTPHandler) ListUserTasks(c *fiber.Ctx) error {
	ctx, cancel := h.requestContext(c, "list-user-tasks")
	defer cancel()

	tasks, err := h.tasks.ListUserTasks(ctx, c.Params("userId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(tasks)
}

// UpdateTask handles PUT /tasks/:taskId
func (h *TasksHTTPHandler) UpdateTask(c *fiber.Ctx) error {
	var req usecase.UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, sharederrors.NewValidationError("Invalid request body").WithCause(err))
	}

	ctx, cancel := h.requestContext(c, "update-task")
	defer cancel()

	task, err := h.tasks.UpdateTask(ctx, c.Params("taskId"), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Task updated successfully", "task": task})
}

// DeleteTask handles DELETE /tasks/:taskId
func (h *TasksHTTPHandler) DeleteTask(c *fiber.Ctx) error {
	ctx, cancel := h.requestContext(c, "delete-task")
	defer cancel()

	if err := h.tasks.DeleteTask(ctx, c.Params("taskId")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Task deleted successfully"})
}

func (h *TasksHTTPHandler) requestContext(c *fiber.Ctx, operation string) (context.Context, context.CancelFunc) {
	return context.WithTimeout(utils.WithOperation(c.UserContext(), operation), h.timeout)
}

// writeError renders err with the status it carries. Causes stay out of the body.
func writeError(c *fiber.Ctx, err error) error {
	status := sharederrors.HTTPStatus(err)

	var appErr *sharederrors.AppError
	if !errors.As(err, &appErr) {
		return c.Status(status).JSON(fiber.Map{"error": "Internal server error"})
	}

	body := fiber.Map{"error": appErr.Message, "type": appErr.Type}
	if appErr.Code != "" {
		body["code"] = appErr.Code
	}
	if problems, ok := appErr.Details["validation_errors"]; ok {
		body["details"] = problems
	}
	return c.Status(status).JSON(body)
}
