package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Conflict policies understood by the schema bootstrapper.
const (
	ConflictPolicyStrict  = "strict"
	ConflictPolicyLenient = "lenient"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port string `env:"SERVER_PORT" envDefault:"3000"`
}

// MongoConfig holds the MongoDB connection settings
type MongoConfig struct {
	URI            string        `env:"MONGODB_URI"`
	Database       string        `env:"MONGODB_DATABASE" envDefault:"tasky"`
	ConnectTimeout time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"10s"`
}

// SchemaConfig controls the collection bootstrap run at startup
type SchemaConfig struct {
	Enabled        bool          `env:"SCHEMA_BOOTSTRAP_ENABLED" envDefault:"true"`
	Timeout        time.Duration `env:"SCHEMA_BOOTSTRAP_TIMEOUT" envDefault:"30s"`
	Concurrency    int           `env:"SCHEMA_BOOTSTRAP_CONCURRENCY" envDefault:"1"`
	ConflictPolicy string        `env:"SCHEMA_CONFLICT_POLICY" envDefault:"strict"`
	SpecFile       string        `env:"SCHEMA_SPEC_FILE"`
	FailOnError    bool          `env:"SCHEMA_FAIL_ON_ERROR" envDefault:"true"`
	LockTTL        time.Duration `env:"SCHEMA_LOCK_TTL" envDefault:"1m"`
}

// RedisConfig is optional; an empty Addr disables the bootstrap lock
type RedisConfig struct {
	Addr       string `env:"REDIS_ADDR"`
	Password   string `env:"REDIS_PASSWORD"`
	Database   int    `env:"REDIS_DB" envDefault:"0"`
	MaxRetries int    `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	PoolSize   int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
	EnableTLS  bool   `env:"REDIS_TLS" envDefault:"false"`
}

// AdminConfig guards the admin schema endpoints; an empty secret disables them
type AdminConfig struct {
	JWTSecret string `env:"ADMIN_JWT_SECRET"`
	JWTIssuer string `env:"ADMIN_JWT_ISSUER" envDefault:"tasky-admin"`
}

// Config holds all configuration for the service and the schemactl CLI.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	Server ServerConfig
	Mongo  MongoConfig
	Schema SchemaConfig
	Redis  RedisConfig
	Admin  AdminConfig
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Environment)
	return env == "prod" || env == "production"
}

// LoadDotEnv loads a .env file outside production. A missing file is not an error.
func LoadDotEnv() {
	if env := strings.ToLower(os.Getenv("ENVIRONMENT")); env == "prod" || env == "production" {
		return
	}
	_ = godotenv.Load()
}

// LoadConfig loads configuration from environment variables and applies defaults.
func LoadConfig() (*Config, error) {
	return LoadConfigWith(nil)
}

// LoadConfigWith parses the environment, lets apply override fields (for
// example from command-line flags) and then validates the result.
func LoadConfigWith(apply func(*Config)) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load configuration from environment: " + err.Error() +
			". Please ensure all required environment variables are set.")
	}

	if apply != nil {
		apply(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints env tags cannot express
func (c *Config) Validate() error {
	if c.Mongo.URI == "" {
		return errors.New("mongodb_uri is required")
	}
	if c.Mongo.Database == "" {
		return errors.New("mongodb_database cannot be empty")
	}

	c.Schema.ConflictPolicy = strings.ToLower(strings.TrimSpace(c.Schema.ConflictPolicy))
	if c.Schema.ConflictPolicy == "" {
		c.Schema.ConflictPolicy = ConflictPolicyStrict
	}
	if c.Schema.ConflictPolicy != ConflictPolicyStrict && c.Schema.ConflictPolicy != ConflictPolicyLenient {
		return errors.New("schema_conflict_policy must be one of 'strict' or 'lenient'")
	}
	if c.Schema.Concurrency < 1 {
		c.Schema.Concurrency = 1
	}
	if c.Schema.Timeout <= 0 {
		return errors.New("schema_bootstrap_timeout must be positive")
	}
	if c.Schema.LockTTL <= 0 {
		c.Schema.LockTTL = time.Minute
	}
	return c.Admin.Validate()
}

// Validate rejects admin secrets too short to sign tokens with. An empty
// secret is valid and disables the admin endpoints.
func (a AdminConfig) Validate() error {
	if a.JWTSecret != "" && len(a.JWTSecret) < 16 {
		return errors.New("admin_jwt_secret must be at least 16 characters long")
	}
	return nil
}

// LoadAdminConfig parses only the admin settings, for tools that sign tokens
// without connecting to MongoDB.
func LoadAdminConfig() (*AdminConfig, error) {
	cfg := &AdminConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load admin configuration from environment: " + err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
