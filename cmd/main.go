package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tasky/internal/config"
	"tasky/internal/di"
	sharederrors "tasky/internal/shared/errors"
	"tasky/internal/shared/logger"
	"tasky/internal/shared/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	os.Exit(run(cfg))
}

// run owns every resource so deferred cleanup happens before the process exits
func run(cfg *config.Config) int {
	appLogger := logger.NewLogger()
	accessLogger, err := logger.NewAccessLogger()
	if err != nil {
		appLogger.Errorf("Failed to create access logger: %v", err)
		return 1
	}
	defer func() { _ = accessLogger.Sync() }()

	appLogger.WithFields(map[string]interface{}{
		"environment": cfg.Environment,
		"database":    cfg.Mongo.Database,
	}).Info("Tasky starting")

	container := di.NewContainer(cfg, appLogger)
	defer func() {
		if err := container.Close(); err != nil {
			appLogger.Errorf("Failed to close container: %v", err)
		}
	}()

	ctx := context.Background()
	if err := container.Connect(ctx); err != nil {
		appLogger.Errorf("%v", err)
		return 1
	}
	if err := container.InitializeSchema(); err != nil {
		appLogger.Errorf("%v", err)
		return 1
	}
	if err := container.InitializeTasks(); err != nil {
		appLogger.Errorf("%v", err)
		return 1
	}

	if cfg.Schema.Enabled {
		if _, err := container.Bootstrap(ctx); err != nil {
			if cfg.Schema.FailOnError {
				appLogger.Errorf("Collection bootstrap failed: %v", err)
				return 1
			}
			appLogger.Warnf("Collection bootstrap failed, continuing because SCHEMA_FAIL_ON_ERROR=false: %v", err)
		}
	} else {
		appLogger.Warn("Collection bootstrap disabled; collections and indexes are assumed to exist")
	}

	app := newApp(container, appLogger, accessLogger)

	serverAddr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	appLogger.Infof("All modules initialized. Starting HTTP server on %s", serverAddr)

	serverShutdown := make(chan error, 1)
	go func() {
		serverShutdown <- app.Listen(serverAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverShutdown:
		if err != nil {
			appLogger.Errorf("Server failed: %v", err)
			return 1
		}
	case sig := <-quit:
		appLogger.Infof("Received shutdown signal: %v", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			appLogger.Errorf("Server forced to shutdown: %v", err)
		}
		appLogger.Info("HTTP server stopped")
	}
	return 0
}

func newApp(container *di.Container, appLogger logger.Logger, accessLogger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Tasky API v1.0",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
			}
			appLogger.WithContext(c.UserContext()).Errorf("HTTP error: %v", err)
			return c.Status(sharederrors.HTTPStatus(err)).JSON(fiber.Map{
				"error": "Internal Server Error",
			})
		},
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.AccessLog(accessLogger))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,HEAD,PUT,DELETE,OPTIONS",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, " + middleware.HeaderRequestID,
		ExposeHeaders: middleware.HeaderRequestID,
	}))

	app.Get("/", container.TasksModule.Welcome())

	api := app.Group("/api/v1")
	container.TasksModule.RegisterRoutes(api)
	container.SchemaModule.RegisterRoutes(api)

	return app
}
