package schema

import (
	"context"
	"fmt"

	"tasky/internal/config"
	schemahttp "tasky/internal/schema/adapter/http"
	"tasky/internal/schema/adapter/lock"
	"tasky/internal/schema/adapter/persistence/mongodb"
	"tasky/internal/schema/adapter/security"
	"tasky/internal/schema/adapter/specfile"
	"tasky/internal/schema/domain/model"
	"tasky/internal/schema/domain/repository"
	"tasky/internal/schema/usecase"
	"tasky/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// SchemaModule wires the collection bootstrapper and its admin endpoints
type SchemaModule struct {
	specs        []model.CollectionSpec
	bootstrapper *usecase.SchemaBootstrapper
	handler      *schemahttp.SchemaHTTPHandler
	tokens       *security.AdminTokenService
	config       *config.Config
	logger       logger.Logger
}

// NewSchemaModule creates the module. redisClient may be nil, in which case
// bootstrap runs are not serialised across processes.
func NewSchemaModule(db mongodb.Database, redisClient redis.Cmdable, cfg *config.Config, log logger.Logger) (*SchemaModule, error) {
	if log == nil {
		log = logger.NewLogger()
	}

	specs, err := specfile.Load(cfg.Schema.SpecFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load collection specs: %w", err)
	}

	policy, err := model.ParseConflictPolicy(cfg.Schema.ConflictPolicy)
	if err != nil {
		return nil, err
	}

	var locker repository.Locker = lock.NoopLocker{}
	if redisClient != nil {
		locker = lock.NewRedisLocker(redisClient, cfg.Schema.LockTTL, log)
	}

	catalog := mongodb.NewMongoCollectionCatalog(db, log)
	bootstrapper := usecase.NewSchemaBootstrapper(catalog, locker, log, usecase.BootstrapperConfig{
		Policy:      policy,
		Concurrency: cfg.Schema.Concurrency,
		LockKey:     "tasky:schema-bootstrap:" + db.Name(),
	})

	module := &SchemaModule{
		specs:        specs,
		bootstrapper: bootstrapper,
		handler:      schemahttp.NewSchemaHTTPHandler(bootstrapper, specs, cfg.Schema.Timeout),
		config:       cfg,
		logger:       log.WithComponent("schema"),
	}

	if cfg.Admin.JWTSecret != "" {
		module.tokens, err = security.NewAdminTokenService(cfg.Admin.JWTSecret, cfg.Admin.JWTIssuer)
		if err != nil {
			return nil, fmt.Errorf("failed to create admin token service: %w", err)
		}
	}

	return module, nil
}

// Specs returns the declared collection specs
func (m *SchemaModule) Specs() []model.CollectionSpec {
	return m.specs
}

// GetUsecase returns the bootstrapper for callers outside the module
func (m *SchemaModule) GetUsecase() usecase.SchemaUsecaseInterface {
	return m.bootstrapper
}

// Bootstrap runs EnsureCollections over the declared specs within the configured timeout
func (m *SchemaModule) Bootstrap(ctx context.Context) (*model.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, m.config.Schema.Timeout)
	defer cancel()
	return m.bootstrapper.EnsureCollections(ctx, m.specs)
}

// RegisterRoutes mounts the admin endpoints. They stay unmounted without an admin secret.
func (m *SchemaModule) RegisterRoutes(router fiber.Router) {
	if m.tokens == nil {
		m.logger.Info("ADMIN_JWT_SECRET not set, admin schema endpoints disabled")
		return
	}
	m.handler.RegisterRoutes(router, m.tokens)
}
