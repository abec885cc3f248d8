package di

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tasky/internal/config"
	"tasky/internal/schema"
	schemamodel "tasky/internal/schema/domain/model"
	"tasky/internal/shared/logger"
	"tasky/internal/tasks"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Container owns the process-wide connections and modules and shuts them down in order
type Container struct {
	mu sync.RWMutex
	// Module instances
	SchemaModule *schema.SchemaModule
	TasksModule  *tasks.TasksModule
	// Connections
	MongoClient *mongo.Client
	MongoDB     *mongo.Database
	Redis       *redis.Client
	// Configuration
	Config *config.Config
	// Logger
	Logger logger.Logger
}

// NewContainer creates a new DI container
func NewContainer(cfg *config.Config, log logger.Logger) *Container {
	if log == nil {
		log = logger.NewLogger()
	}
	return &Container{Config: cfg, Logger: log}
}

// Connect opens MongoDB and, when configured, Redis
func (c *Container) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	connectCtx, cancel := context.WithTimeout(ctx, c.Config.Mongo.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(c.Config.Mongo.URI))
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	c.MongoClient = client
	c.MongoDB = client.Database(c.Config.Mongo.Database)
	c.Logger.WithFields(map[string]interface{}{"database": c.Config.Mongo.Database}).
		Info("MongoDB connection established")

	if rdb := config.NewRedisClient(c.Config.Redis); rdb != nil {
		if err := rdb.Ping(connectCtx).Err(); err != nil {
			_ = rdb.Close()
			return fmt.Errorf("failed to ping Redis at %s: %w", c.Config.Redis.Addr, err)
		}
		c.Redis = rdb
		c.Logger.Info("Redis connection established, bootstrap lock enabled")
	}
	return nil
}

// InitializeSchema creates the schema module
func (c *Container) InitializeSchema() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.MongoDB == nil {
		return errors.New("MongoDB must be connected before the schema module")
	}

	var locks redis.Cmdable
	if c.Redis != nil {
		locks = c.Redis
	}

	module, err := schema.NewSchemaModule(c.MongoDB, locks, c.Config, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create schema module: %w", err)
	}
	c.SchemaModule = module
	return nil
}

// InitializeTasks creates the tasks module from the schema module's specs
func (c *Container) InitializeTasks() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.SchemaModule == nil {
		return errors.New("schema module must be initialized before the tasks module")
	}

	module, err := tasks.NewTasksModule(c.MongoClient, c.MongoDB, c.SchemaModule.Specs(), c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create tasks module: %w", err)
	}
	c.TasksModule = module
	return nil
}

// Bootstrap ensures every declared collection and then the tasks indexes.
// Indexes are only created once every collection is in place, since creating
// an index on a missing collection would create it without its validator.
func (c *Container) Bootstrap(ctx context.Context) (*schemamodel.Report, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.SchemaModule == nil {
		return nil, errors.New("schema module is not initialized")
	}

	report, err := c.SchemaModule.Bootstrap(ctx)
	if err != nil {
		return report, err
	}

	if c.TasksModule != nil {
		if err := c.TasksModule.EnsureIndexes(ctx); err != nil {
			return report, err
		}
	}
	return report, nil
}

// HealthCheck pings the connections held by the container
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.MongoClient != nil {
		if err := c.MongoClient.Ping(ctx, nil); err != nil {
			return fmt.Errorf("MongoDB health check failed: %w", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("Redis health check failed: %w", err)
		}
	}
	return nil
}

// Cleanup releases modules and connections in reverse order of initialization
func (c *Container) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error

	c.TasksModule = nil
	c.SchemaModule = nil

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
		c.Redis = nil
	}

	if c.MongoClient != nil {
		if err := c.MongoClient.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to disconnect MongoDB: %w", err))
		}
		c.MongoClient = nil
		c.MongoDB = nil
	}

	return errors.Join(errs...)
}

// Close gracefully shuts down all services in the container with timeout
func (c *Container) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.Cleanup(ctx); err != nil {
		c.Logger.Warnf("Cleanup errors occurred: %v", err)
		return err
	}
	c.Logger.Info("Container resources closed")
	return nil
}
