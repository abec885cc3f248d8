package tasks

import (
	"context"
	"fmt"
	"time"

	schemamodel "tasky/internal/schema/domain/model"
	"tasky/internal/shared/logger"
	taskshttp "tasky/internal/tasks/adapter/http"
	"tasky/internal/tasks/adapter/persistence/mongodb"
	"tasky/internal/tasks/usecase"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

// TasksModule represents the users and tasks REST API
type TasksModule struct {
	userRepo *mongodb.MongoUserRepository
	taskRepo *mongodb.MongoTaskRepository
	users    usecase.UserUsecaseInterface
	tasks    usecase.TaskUsecaseInterface
	handler  *taskshttp.TasksHTTPHandler
	probes   *taskshttp.ProbeHandler
}

// SpecsDeclared reports whether specs declare both collections the module serves
func SpecsDeclared(specs []schemamodel.CollectionSpec) bool {
	_, users := schemamodel.FindSpec(specs, schemamodel.UsersCollection)
	_, tasks := schemamodel.FindSpec(specs, schemamodel.TasksCollection)
	return users && tasks
}

// NewTasksModule creates the module. specs supplies the users and tasks rules
// that request payloads are checked against; they must be the same specs the
// schema bootstrapper enforces.
func NewTasksModule(client *mongo.Client, db *mongo.Database, specs []schemamodel.CollectionSpec, log logger.Logger) (*TasksModule, error) {
	usersSpec, ok := schemamodel.FindSpec(specs, schemamodel.UsersCollection)
	if !ok {
		return nil, fmt.Errorf("no spec declared for collection %q", schemamodel.UsersCollection)
	}
	tasksSpec, ok := schemamodel.FindSpec(specs, schemamodel.TasksCollection)
	if !ok {
		return nil, fmt.Errorf("no spec declared for collection %q", schemamodel.TasksCollection)
	}

	userRepo := mongodb.NewMongoUserRepository(db)
	taskRepo := mongodb.NewMongoTaskRepository(db)

	users := usecase.NewUserUsecase(userRepo, usersSpec.Rule(), log)
	tasks := usecase.NewTaskUsecase(taskRepo, userRepo, tasksSpec.Rule(), log)

	return &TasksModule{
		userRepo: userRepo,
		taskRepo: taskRepo,
		users:    users,
		tasks:    tasks,
		handler:  taskshttp.NewTasksHTTPHandler(users, tasks, 10*time.Second),
		probes:   taskshttp.NewProbeHandler(client, log),
	}, nil
}

// EnsureIndexes creates the secondary indexes. Call it after the collections exist.
func (m *TasksModule) EnsureIndexes(ctx context.Context) error {
	if err := m.userRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create users indexes: %w", err)
	}
	if err := m.taskRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create tasks indexes: %w", err)
	}
	return nil
}

// RegisterRoutes mounts probes and the REST API on router
func (m *TasksModule) RegisterRoutes(router fiber.Router) {
	m.probes.RegisterRoutes(router)
	m.handler.RegisterRoutes(router)
}

// Welcome is the handler for the root path
func (m *TasksModule) Welcome() fiber.Handler {
	return taskshttp.Welcome
}
