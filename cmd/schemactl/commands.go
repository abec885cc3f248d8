package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"tasky/internal/config"
	"tasky/internal/di"
	"tasky/internal/schema/adapter/persistence/mongodb"
	"tasky/internal/schema/adapter/security"
	"tasky/internal/schema/adapter/specfile"
	"tasky/internal/shared/logger"
	"tasky/internal/tasks"

	"github.com/urfave/cli/v3"
	"go.mongodb.org/mongo-driver/bson"
)

// Command errors.
var (
	ErrBootstrapFailed = errors.New("one or more collections were not ensured")
	ErrNoAdminSecret   = errors.New("ADMIN_JWT_SECRET is not set")
)

func bootstrapCommand() *cli.Command {
	return &cli.Command{
		Name:   "bootstrap",
		Usage:  "Create missing collections with their validators and report conflicts",
		Action: runBootstrap,
	}
}

func planCommand() *cli.Command {
	return &cli.Command{
		Name:   "plan",
		Usage:  "Show what bootstrap would do without changing the database",
		Action: runPlan,
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Print the declared collections and their derived validators",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"o"},
				Usage:   "output format: json or yaml",
				Value:   "json",
			},
		},
		Action: runShow,
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Issue a bearer token for the admin schema endpoints",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "subject",
				Usage: "who the token is issued to",
				Value: "schemactl",
			},
			&cli.DurationFlag{
				Name:  "ttl",
				Usage: "token lifetime",
				Value: time.Hour,
			},
		},
		Action: runToken,
	}
}

// openContainer connects and wires the modules a bootstrap needs
func openContainer(ctx context.Context, cfg *config.Config) (*di.Container, error) {
	container := di.NewContainer(cfg, logger.NewLogger())
	if err := container.Connect(ctx); err != nil {
		return nil, err
	}
	if err := initializeModules(container); err != nil {
		_ = container.Close()
		return nil, err
	}
	return container, nil
}

// initializeModules wires the schema module, and the tasks module only when
// the spec set declares its collections, so a custom spec file without users
// and tasks still bootstraps. Without the tasks module no indexes are created.
func initializeModules(container *di.Container) error {
	if err := container.InitializeSchema(); err != nil {
		return err
	}
	if !tasks.SpecsDeclared(container.SchemaModule.Specs()) {
		return nil
	}
	return container.InitializeTasks()
}

func runBootstrap(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	container, err := openContainer(ctx, cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	report, err := container.Bootstrap(ctx)
	if report != nil {
		newRenderer(os.Stdout, cmd.Bool("no-color")).Report(report)
	}
	if err != nil {
		if report != nil && !report.OK() {
			return fmt.Errorf("%w: %v", ErrBootstrapFailed, err)
		}
		return err
	}
	return nil
}

func runPlan(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	container, err := openContainer(ctx, cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	planCtx, cancel := context.WithTimeout(ctx, cfg.Schema.Timeout)
	defer cancel()

	report, err := container.SchemaModule.GetUsecase().Plan(planCtx, container.SchemaModule.Specs())
	if report != nil {
		newRenderer(os.Stdout, cmd.Bool("no-color")).Report(report)
	}
	return err
}

func runShow(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("spec-file")
	if path == "" {
		path = os.Getenv("SCHEMA_SPEC_FILE")
	}

	specs, err := specfile.Load(path)
	if err != nil {
		return err
	}

	switch cmd.String("format") {
	case "yaml", "yml":
		out, err := specfile.Marshal(specs)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	case "json":
		docs := make(bson.A, 0, len(specs))
		for _, spec := range specs {
			docs = append(docs, bson.D{
				{Key: "collection", Value: spec.Name},
				{Key: "validator", Value: mongodb.Validator(spec.Rule())},
			})
		}
		out, err := bson.MarshalExtJSONIndent(bson.D{{Key: "collections", Value: docs}}, false, false, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(os.Stdout, string(out))
		return err
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", cmd.String("format"))
	}
}

func runToken(ctx context.Context, cmd *cli.Command) error {
	admin, err := config.LoadAdminConfig()
	if err != nil {
		return err
	}
	if admin.JWTSecret == "" {
		return ErrNoAdminSecret
	}

	tokens, err := security.NewAdminTokenService(admin.JWTSecret, admin.JWTIssuer)
	if err != nil {
		return err
	}
	token, err := tokens.Issue(cmd.String("subject"), cmd.Duration("ttl"))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, token)
	return err
}
